// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

// Context is the set of GL entry points that the driver
// records commands through.
// It exists as an interface so that the driver can target
// a loaded GL implementation, a tracing wrapper or a test
// double interchangeably. Implementations are assumed to
// dispatch against a single underlying GL context, current
// on the calling goroutine's thread.
//
// Object names are raw GL names. The driver performs its
// own bookkeeping and never asks the context about object
// lifetimes.
type Context interface {
	// Framebuffer objects.
	GenFramebuffer() uint32
	DeleteFramebuffer(fb uint32)
	BindFramebuffer(target Enum, fb uint32)
	CheckFramebufferStatus(target Enum) Enum
	FramebufferTexture2D(target, attachment, textarget Enum, tex uint32, level int)
	FramebufferTextureLayer(target, attachment Enum, tex uint32, level, layer int)
	FramebufferRenderbuffer(target, attachment Enum, rb uint32)
	InvalidateFramebuffer(target Enum, attachments []Enum)
	DrawBuffers(bufs []Enum)
	ReadBuffer(src Enum)

	// Renderbuffer objects.
	GenRenderbuffer() uint32
	DeleteRenderbuffer(rb uint32)
	BindRenderbuffer(target Enum, rb uint32)
	RenderbufferStorage(target, internalformat Enum, width, height int)
	RenderbufferStorageMultisample(target Enum, samples int, internalformat Enum, width, height int)

	// Texture objects, to the extent needed for render
	// target storage.
	GenTexture() uint32
	DeleteTexture(tex uint32)
	BindTexture(target Enum, tex uint32)
	TexStorage2D(target Enum, levels int, internalformat Enum, width, height int)
	TexStorage3D(target Enum, levels int, internalformat Enum, width, height, depth int)
	TexStorage2DMultisample(target Enum, samples int, internalformat Enum, width, height int, fixedlocations bool)

	// Clears and write masks.
	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	ClearStencil(s int)
	Clear(mask Enum)
	ColorMask(r, g, b, a bool)
	DepthMask(m bool)
	StencilMask(m uint32)

	// Fixed state.
	Enable(cap Enum)
	Disable(cap Enum)
	IsEnabled(cap Enum) bool
	Viewport(x, y, width, height int)
	DepthRangef(n, f float32)
	Scissor(x, y, width, height int)
	PixelStorei(pname Enum, v int)

	// Transfers.
	ReadPixels(x, y, width, height int, format, typ Enum, data []byte)
	CopyTexSubImage2D(target Enum, level, xoffset, yoffset, x, y, width, height int)
	BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask, filter Enum)

	// Queries.
	GetInteger(pname Enum) int
	GetInteger4(pname Enum) [4]int
	GetString(pname Enum) string
	GetStringi(pname Enum, i int) string
	GetError() Enum

	// Debug annotations. These must be safe to call even
	// when the context does not implement them natively.
	ObjectLabel(identifier Enum, name uint32, label string)
	PushDebugGroup(msg string)
	PopDebugGroup()
	InsertDebugMarker(msg string)

	// Ordering.
	MemoryBarrier(barriers Enum)
	Flush()
	Finish()

	// DrawableSize returns the pixel dimensions of the
	// context's current drawable, or zeros when there is
	// no display surface.
	DrawableSize() (width, height int)

	// Present hands the context's current drawable to the
	// window system. It fails when the context renders to
	// no surface.
	Present() error
}
