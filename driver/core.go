// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

// GPU is the main interface to an underlying driver
// implementation.
// It is used to create other types and to execute commands.
// A GPU is obtained from a call to Driver.Open.
type GPU interface {
	// Driver returns the Driver that owns the GPU.
	Driver() Driver

	// NewCmdBuffer creates a new command buffer.
	NewCmdBuffer() (CmdBuffer, error)

	// NewTexture creates a new texture.
	NewTexture(t *TexDesc) (Texture, error)

	// NewFramebuf creates a new framebuffer from a
	// render target description.
	// The descriptor is validated and then realized in
	// full before the call returns, so a nil error means
	// that the framebuffer is complete and ready to be
	// targeted by render passes.
	NewFramebuf(fd *FramebufDesc) (Framebuf, error)

	// CurrentFramebuf wraps the render target that is
	// bound to the underlying context at the time of the
	// call, such as a window system's back buffer.
	// The GPU does not own the wrapped target. Drivers
	// may return a cached Framebuf when the same target
	// is wrapped more than once.
	CurrentFramebuf() (Framebuf, error)

	// Limits returns the implementation limits.
	// They are immutable for the lifetime of the GPU.
	Limits() Limits
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external
// memory that is not managed by GC, so Destroy must be
// called explicitly to ensure such memory is deallocated.
type Destroyer interface {
	Destroy()
}

// CmdBuffer is the interface that defines a command buffer.
// Commands are recorded through encoders obtained from the
// command buffer. The usage is as follows:
//
// To record rendering commands:
//  1. call NewRenderEncoder with the render pass and the
//     framebuffer that the pass targets
//  2. call Set*/Insert* methods to configure state
//  3. call End
//
// To record compute commands:
//  1. call NewComputeEncoder
//  2. call Barrier/Insert* methods as needed
//  3. call End
//
// Encoders must not be nested. An encoder obtained from a
// command buffer must be ended before the next call to
// NewRenderEncoder or NewComputeEncoder, and prior to
// Present and the Wait* methods.
//
// Drivers whose execution model is serialized, rather than
// queue-based, may perform the recorded work eagerly, in
// which case WaitScheduled and WaitCompleted degenerate to
// the same synchronization point. Callers must not assume
// that this holds for every driver.
type CmdBuffer interface {
	Destroyer

	// NewRenderEncoder begins the encoding of a render
	// pass targeting a given framebuffer.
	// The pass and framebuffer must be valid and must
	// agree with each other on attachment indices.
	// Textures listed in deps are kept alive and their
	// writes made visible for the duration of the pass.
	NewRenderEncoder(pass *RenderPass, fb Framebuf, deps Deps) (RenderEncoder, error)

	// NewComputeEncoder begins the encoding of compute
	// work.
	NewComputeEncoder() (ComputeEncoder, error)

	// Present schedules the presentation of a drawable's
	// textures to the display surface.
	// It must not be called while an encoder is live.
	Present(st SurfaceTextures) error

	// WaitScheduled blocks until the driver has accepted
	// all work recorded so far for execution.
	WaitScheduled() error

	// WaitCompleted blocks until all work recorded so far
	// has fully retired.
	WaitCompleted() error
}

// Deps lists resources that a pass consumes but does not
// bind as render targets.
type Deps struct {
	Textures []Texture
}

// RenderEncoder is the interface that records state for a
// single render pass.
// Creating the encoder binds the pass's framebuffer and
// applies its load operations. Ending the encoder resolves
// multisample attachments and applies store operations.
type RenderEncoder interface {
	// SetViewport sets the viewport rectangle.
	// The framebuffer's own viewport is in effect until
	// this method is called.
	SetViewport(vp Viewport)

	// SetScissor sets the scissor rectangle.
	SetScissor(sciss Scissor)

	// InsertMarker inserts a debug marker into the
	// command stream. It has no effect when the driver
	// does not support debug annotations.
	InsertMarker(name string)

	// End completes the pass.
	// The encoder must not be used after End returns.
	End() error
}

// ComputeEncoder is the interface that records compute
// work. Dispatching requires pipeline state and thus is
// defined by pipeline encoder extensions, not here.
type ComputeEncoder interface {
	// Barrier orders memory accesses of preceding work
	// against subsequent work.
	Barrier()

	// InsertMarker inserts a debug marker into the
	// command stream.
	InsertMarker(name string)

	// End completes the encoding.
	// The encoder must not be used after End returns.
	End() error
}

// Viewport defines the bounds of a viewport.
type Viewport struct {
	X, Y, Width, Height, Znear, Zfar float32
}

// Scissor defines a scissor rectangle.
type Scissor struct {
	X, Y, Width, Height int
}

// Limits describes implementation limits.
// These may vary across drivers and devices.
type Limits struct {
	// Maximum width and height of 2D textures.
	MaxSize2D int
	// Maximum width and height of cube textures.
	MaxSizeCube int
	// Maximum number of layers in an array texture.
	MaxLayers int

	// Maximum number of color render targets in a
	// framebuffer.
	MaxColorTargets int
	// Maximum width/height for a framebuffer.
	MaxFBSize [2]int
	// Maximum number of layers in a framebuffer.
	MaxFBLayers int
	// Maximum sample count of render targets.
	MaxSamples int

	// Maximum dimensions of a viewport rectangle.
	MaxViewport [2]int
}
