// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/gviegas/rhi/driver"
)

// Surface is the window system hookup that presentation
// dispatches through. wsi windows satisfy it.
type Surface interface {
	// SwapBuffers presents the surface's back buffer.
	SwapBuffers()

	// FramebufferSize returns the surface dimensions in
	// pixels.
	FramebufferSize() (width, height int)
}

// SetSurface attaches the display surface that Present
// targets. A nil surface detaches.
// It has no effect on drivers created with NewWith.
func (d *Driver) SetSurface(s Surface) {
	if c, ok := d.ctx.(*procContext); ok {
		c.surface = s
	}
}

// procContext implements Context by dispatching through
// entry points resolved from the system's GL library.
// Optional entry points are nil when the implementation
// does not expose them; the methods account for that.
type procContext struct {
	genFramebuffers         func(n int32, fbs *uint32)
	deleteFramebuffers      func(n int32, fbs *uint32)
	bindFramebuffer         func(target Enum, fb uint32)
	checkFramebufferStatus  func(target Enum) Enum
	framebufferTexture2D    func(target, attachment, textarget Enum, tex uint32, level int32)
	framebufferTextureLayer func(target, attachment Enum, tex uint32, level, layer int32)
	framebufferRenderbuffer func(target, attachment, rbtarget Enum, rb uint32)
	invalidateFramebuffer   func(target Enum, n int32, atts *Enum)
	drawBuffers             func(n int32, bufs *Enum)
	readBuffer              func(src Enum)

	genRenderbuffers               func(n int32, rbs *uint32)
	deleteRenderbuffers            func(n int32, rbs *uint32)
	bindRenderbuffer               func(target Enum, rb uint32)
	renderbufferStorage            func(target, internal Enum, width, height int32)
	renderbufferStorageMultisample func(target Enum, samples int32, internal Enum, width, height int32)

	genTextures             func(n int32, texs *uint32)
	deleteTextures          func(n int32, texs *uint32)
	bindTexture             func(target Enum, tex uint32)
	texStorage2D            func(target Enum, levels int32, internal Enum, width, height int32)
	texStorage3D            func(target Enum, levels int32, internal Enum, width, height, depth int32)
	texStorage2DMultisample func(target Enum, samples int32, internal Enum, width, height int32, fixed bool)

	clearColor   func(r, g, b, a float32)
	clearDepthf  func(d float32)
	clearDepth   func(d float64)
	clearStencil func(s int32)
	clear        func(mask Enum)
	colorMask    func(r, g, b, a bool)
	depthMask    func(m bool)
	stencilMask  func(m uint32)

	enable      func(cap Enum)
	disable     func(cap Enum)
	isEnabled   func(cap Enum) bool
	viewport    func(x, y, width, height int32)
	depthRangef func(n, f float32)
	depthRange  func(n, f float64)
	scissor     func(x, y, width, height int32)
	pixelStorei func(pname Enum, v int32)

	readPixels        func(x, y, width, height int32, format, typ Enum, data *byte)
	copyTexSubImage2D func(target Enum, level, xoffset, yoffset, x, y, width, height int32)
	blitFramebuffer   func(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter Enum)

	getIntegerv func(pname Enum, v *int32)
	getString   func(pname Enum) *byte
	getStringi  func(pname Enum, i uint32) *byte
	getError    func() Enum

	objectLabel        func(identifier Enum, name uint32, length int32, label string)
	pushDebugGroup     func(source Enum, id uint32, length int32, msg string)
	popDebugGroup      func()
	debugMessageInsert func(source, typ Enum, id uint32, severity Enum, length int32, msg string)

	memoryBarrier func(barriers Enum)
	flush         func()
	finish        func()

	surface Surface
}

// bind resolves every entry point that the driver
// dispatches through. Entry points that the floor version
// guarantees must resolve; the rest may stay nil.
func (c *procContext) bind(lookup func(name string) uintptr) error {
	required := []struct {
		fn   any
		name string
	}{
		{&c.genFramebuffers, "glGenFramebuffers"},
		{&c.deleteFramebuffers, "glDeleteFramebuffers"},
		{&c.bindFramebuffer, "glBindFramebuffer"},
		{&c.checkFramebufferStatus, "glCheckFramebufferStatus"},
		{&c.framebufferTexture2D, "glFramebufferTexture2D"},
		{&c.framebufferTextureLayer, "glFramebufferTextureLayer"},
		{&c.framebufferRenderbuffer, "glFramebufferRenderbuffer"},
		{&c.drawBuffers, "glDrawBuffers"},
		{&c.readBuffer, "glReadBuffer"},
		{&c.genRenderbuffers, "glGenRenderbuffers"},
		{&c.deleteRenderbuffers, "glDeleteRenderbuffers"},
		{&c.bindRenderbuffer, "glBindRenderbuffer"},
		{&c.renderbufferStorage, "glRenderbufferStorage"},
		{&c.renderbufferStorageMultisample, "glRenderbufferStorageMultisample"},
		{&c.genTextures, "glGenTextures"},
		{&c.deleteTextures, "glDeleteTextures"},
		{&c.bindTexture, "glBindTexture"},
		{&c.clearColor, "glClearColor"},
		{&c.clearStencil, "glClearStencil"},
		{&c.clear, "glClear"},
		{&c.colorMask, "glColorMask"},
		{&c.depthMask, "glDepthMask"},
		{&c.stencilMask, "glStencilMask"},
		{&c.enable, "glEnable"},
		{&c.disable, "glDisable"},
		{&c.isEnabled, "glIsEnabled"},
		{&c.viewport, "glViewport"},
		{&c.scissor, "glScissor"},
		{&c.pixelStorei, "glPixelStorei"},
		{&c.readPixels, "glReadPixels"},
		{&c.copyTexSubImage2D, "glCopyTexSubImage2D"},
		{&c.blitFramebuffer, "glBlitFramebuffer"},
		{&c.getIntegerv, "glGetIntegerv"},
		{&c.getString, "glGetString"},
		{&c.getError, "glGetError"},
		{&c.flush, "glFlush"},
		{&c.finish, "glFinish"},
	}
	optional := []struct {
		fn    any
		names []string
	}{
		{&c.invalidateFramebuffer, []string{"glInvalidateFramebuffer"}},
		{&c.texStorage2D, []string{"glTexStorage2D", "glTexStorage2DEXT"}},
		{&c.texStorage3D, []string{"glTexStorage3D", "glTexStorage3DEXT"}},
		{&c.texStorage2DMultisample, []string{"glTexStorage2DMultisample"}},
		{&c.clearDepthf, []string{"glClearDepthf"}},
		{&c.clearDepth, []string{"glClearDepth"}},
		{&c.depthRangef, []string{"glDepthRangef"}},
		{&c.depthRange, []string{"glDepthRange"}},
		{&c.getStringi, []string{"glGetStringi"}},
		{&c.objectLabel, []string{"glObjectLabel", "glObjectLabelKHR"}},
		{&c.pushDebugGroup, []string{"glPushDebugGroup", "glPushDebugGroupKHR"}},
		{&c.popDebugGroup, []string{"glPopDebugGroup", "glPopDebugGroupKHR"}},
		{&c.debugMessageInsert, []string{"glDebugMessageInsert", "glDebugMessageInsertKHR"}},
		{&c.memoryBarrier, []string{"glMemoryBarrier"}},
	}
	for _, e := range required {
		a := lookup(e.name)
		if a == 0 {
			return fmt.Errorf("%w: missing %s", driver.ErrNotInstalled, e.name)
		}
		purego.RegisterFunc(e.fn, a)
	}
	for _, e := range optional {
		for _, n := range e.names {
			if a := lookup(n); a != 0 {
				purego.RegisterFunc(e.fn, a)
				break
			}
		}
	}
	// Exactly one of each f/double pair must be present.
	if c.clearDepthf == nil && c.clearDepth == nil {
		return fmt.Errorf("%w: missing glClearDepth", driver.ErrNotInstalled)
	}
	if c.depthRangef == nil && c.depthRange == nil {
		return fmt.Errorf("%w: missing glDepthRange", driver.ErrNotInstalled)
	}
	return nil
}

// gostring converts a NUL-terminated C string into a Go
// string.
func gostring(p *byte) string {
	if p == nil {
		return ""
	}
	var b []byte
	for ; *p != 0; p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1)) {
		b = append(b, *p)
	}
	return string(b)
}

func (c *procContext) GenFramebuffer() uint32 {
	var fb uint32
	c.genFramebuffers(1, &fb)
	return fb
}

func (c *procContext) DeleteFramebuffer(fb uint32) { c.deleteFramebuffers(1, &fb) }

func (c *procContext) BindFramebuffer(target Enum, fb uint32) { c.bindFramebuffer(target, fb) }

func (c *procContext) CheckFramebufferStatus(target Enum) Enum {
	return c.checkFramebufferStatus(target)
}

func (c *procContext) FramebufferTexture2D(target, attachment, textarget Enum, tex uint32, level int) {
	c.framebufferTexture2D(target, attachment, textarget, tex, int32(level))
}

func (c *procContext) FramebufferTextureLayer(target, attachment Enum, tex uint32, level, layer int) {
	c.framebufferTextureLayer(target, attachment, tex, int32(level), int32(layer))
}

func (c *procContext) FramebufferRenderbuffer(target, attachment Enum, rb uint32) {
	c.framebufferRenderbuffer(target, attachment, RENDERBUFFER, rb)
}

func (c *procContext) InvalidateFramebuffer(target Enum, attachments []Enum) {
	if c.invalidateFramebuffer == nil || len(attachments) == 0 {
		return
	}
	c.invalidateFramebuffer(target, int32(len(attachments)), &attachments[0])
}

func (c *procContext) DrawBuffers(bufs []Enum) {
	if len(bufs) == 0 {
		return
	}
	c.drawBuffers(int32(len(bufs)), &bufs[0])
}

func (c *procContext) ReadBuffer(src Enum) { c.readBuffer(src) }

func (c *procContext) GenRenderbuffer() uint32 {
	var rb uint32
	c.genRenderbuffers(1, &rb)
	return rb
}

func (c *procContext) DeleteRenderbuffer(rb uint32) { c.deleteRenderbuffers(1, &rb) }

func (c *procContext) BindRenderbuffer(target Enum, rb uint32) { c.bindRenderbuffer(target, rb) }

func (c *procContext) RenderbufferStorage(target, internalformat Enum, width, height int) {
	c.renderbufferStorage(target, internalformat, int32(width), int32(height))
}

func (c *procContext) RenderbufferStorageMultisample(target Enum, samples int, internalformat Enum, width, height int) {
	c.renderbufferStorageMultisample(target, int32(samples), internalformat, int32(width), int32(height))
}

func (c *procContext) GenTexture() uint32 {
	var tex uint32
	c.genTextures(1, &tex)
	return tex
}

func (c *procContext) DeleteTexture(tex uint32) { c.deleteTextures(1, &tex) }

func (c *procContext) BindTexture(target Enum, tex uint32) { c.bindTexture(target, tex) }

func (c *procContext) TexStorage2D(target Enum, levels int, internalformat Enum, width, height int) {
	c.texStorage2D(target, int32(levels), internalformat, int32(width), int32(height))
}

func (c *procContext) TexStorage3D(target Enum, levels int, internalformat Enum, width, height, depth int) {
	c.texStorage3D(target, int32(levels), internalformat, int32(width), int32(height), int32(depth))
}

func (c *procContext) TexStorage2DMultisample(target Enum, samples int, internalformat Enum, width, height int, fixedlocations bool) {
	c.texStorage2DMultisample(target, int32(samples), internalformat, int32(width), int32(height), fixedlocations)
}

func (c *procContext) ClearColor(r, g, b, a float32) { c.clearColor(r, g, b, a) }

func (c *procContext) ClearDepth(d float32) {
	if c.clearDepthf != nil {
		c.clearDepthf(d)
	} else {
		c.clearDepth(float64(d))
	}
}

func (c *procContext) ClearStencil(s int) { c.clearStencil(int32(s)) }

func (c *procContext) Clear(mask Enum) { c.clear(mask) }

func (c *procContext) ColorMask(r, g, b, a bool) { c.colorMask(r, g, b, a) }

func (c *procContext) DepthMask(m bool) { c.depthMask(m) }

func (c *procContext) StencilMask(m uint32) { c.stencilMask(m) }

func (c *procContext) Enable(cap Enum) { c.enable(cap) }

func (c *procContext) Disable(cap Enum) { c.disable(cap) }

func (c *procContext) IsEnabled(cap Enum) bool { return c.isEnabled(cap) }

func (c *procContext) Viewport(x, y, width, height int) {
	c.viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *procContext) DepthRangef(n, f float32) {
	if c.depthRangef != nil {
		c.depthRangef(n, f)
	} else {
		c.depthRange(float64(n), float64(f))
	}
}

func (c *procContext) Scissor(x, y, width, height int) {
	c.scissor(int32(x), int32(y), int32(width), int32(height))
}

func (c *procContext) PixelStorei(pname Enum, v int) { c.pixelStorei(pname, int32(v)) }

func (c *procContext) ReadPixels(x, y, width, height int, format, typ Enum, data []byte) {
	if len(data) == 0 {
		return
	}
	c.readPixels(int32(x), int32(y), int32(width), int32(height), format, typ, &data[0])
}

func (c *procContext) CopyTexSubImage2D(target Enum, level, xoffset, yoffset, x, y, width, height int) {
	c.copyTexSubImage2D(target, int32(level), int32(xoffset), int32(yoffset), int32(x), int32(y), int32(width), int32(height))
}

func (c *procContext) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask, filter Enum) {
	c.blitFramebuffer(int32(sx0), int32(sy0), int32(sx1), int32(sy1), int32(dx0), int32(dy0), int32(dx1), int32(dy1), mask, filter)
}

func (c *procContext) GetInteger(pname Enum) int {
	var v int32
	c.getIntegerv(pname, &v)
	return int(v)
}

func (c *procContext) GetInteger4(pname Enum) [4]int {
	var v [4]int32
	c.getIntegerv(pname, &v[0])
	return [4]int{int(v[0]), int(v[1]), int(v[2]), int(v[3])}
}

func (c *procContext) GetString(pname Enum) string { return gostring(c.getString(pname)) }

func (c *procContext) GetStringi(pname Enum, i int) string {
	if c.getStringi == nil {
		return ""
	}
	return gostring(c.getStringi(pname, uint32(i)))
}

func (c *procContext) GetError() Enum { return c.getError() }

func (c *procContext) ObjectLabel(identifier Enum, name uint32, label string) {
	if c.objectLabel == nil {
		return
	}
	c.objectLabel(identifier, name, -1, label)
}

func (c *procContext) PushDebugGroup(msg string) {
	if c.pushDebugGroup == nil {
		return
	}
	c.pushDebugGroup(DEBUG_SOURCE_APPLICATION, 0, -1, msg)
}

func (c *procContext) PopDebugGroup() {
	if c.popDebugGroup == nil {
		return
	}
	c.popDebugGroup()
}

func (c *procContext) InsertDebugMarker(msg string) {
	if c.debugMessageInsert == nil {
		return
	}
	c.debugMessageInsert(DEBUG_SOURCE_APPLICATION, DEBUG_TYPE_MARKER, 0, DEBUG_SEVERITY_NOTIFICATION, -1, msg)
}

func (c *procContext) MemoryBarrier(barriers Enum) {
	if c.memoryBarrier == nil {
		return
	}
	c.memoryBarrier(barriers)
}

func (c *procContext) Flush() { c.flush() }

func (c *procContext) Finish() { c.finish() }

func (c *procContext) DrawableSize() (width, height int) {
	if c.surface == nil {
		return 0, 0
	}
	return c.surface.FramebufferSize()
}

func (c *procContext) Present() error {
	if c.surface == nil {
		return errors.New("gl: no display surface attached")
	}
	c.surface.SwapBuffers()
	return nil
}
