// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"fmt"

	"github.com/gviegas/rhi/driver"
)

// cmdBuffer implements driver.CmdBuffer.
// The context executes work as it is recorded, so the
// command buffer is a sequencer rather than a container.
type cmdBuffer struct {
	d   *Driver
	rec bool
}

// NewCmdBuffer creates a new command buffer.
func (d *Driver) NewCmdBuffer() (driver.CmdBuffer, error) {
	return &cmdBuffer{d: d}, nil
}

// NewRenderEncoder begins the encoding of a render pass
// targeting a given framebuffer.
func (c *cmdBuffer) NewRenderEncoder(pass *driver.RenderPass, fb driver.Framebuf, deps driver.Deps) (driver.RenderEncoder, error) {
	if c.rec {
		return nil, fmt.Errorf("%w: encoder already recording", driver.ErrInvalidArgument)
	}
	if pass == nil {
		return nil, fmt.Errorf("%w: nil RenderPass", driver.ErrInvalidArgument)
	}
	if fb == nil {
		return nil, fmt.Errorf("%w: nil Framebuf", driver.ErrInvalidArgument)
	}
	b, ok := fb.(framebufBinder)
	if !ok || b.drv() != c.d {
		return nil, fmt.Errorf("%w: framebuffer from another driver", driver.ErrInvalidArgument)
	}
	indices := fb.ColorIndices()
	max := -1
	if n := len(indices); n > 0 {
		max = indices[n-1]
	}
	if len(pass.Colors) > max+1 {
		return nil, fmt.Errorf("%w: render pass targets more color attachments than the framebuffer provides",
			driver.ErrInvalidArgument)
	}
	// Work executes in order on the context, so the
	// dependency textures need no explicit tracking.
	_ = deps

	g := newBindingGuard(c.d.ctx, &c.d.feat)
	c.d.ctx.PushDebugGroup("render pass")
	// An inherited scissor box must not clip load clears.
	prevSciss := c.d.ctx.IsEnabled(SCISSOR_TEST)
	c.d.ctx.Disable(SCISSOR_TEST)
	if err := b.bind(pass); err != nil {
		if prevSciss {
			c.d.ctx.Enable(SCISSOR_TEST)
		}
		c.d.ctx.PopDebugGroup()
		g.restore()
		return nil, err
	}
	vp := fb.Viewport()
	c.d.ctx.Viewport(int(vp.X), int(vp.Y), int(vp.Width), int(vp.Height))
	c.d.ctx.DepthRangef(vp.Znear, vp.Zfar)
	c.rec = true
	return &renderEncoder{c: c, fb: b, g: g, prevSciss: prevSciss}, nil
}

// NewComputeEncoder begins the encoding of compute work.
func (c *cmdBuffer) NewComputeEncoder() (driver.ComputeEncoder, error) {
	if c.rec {
		return nil, fmt.Errorf("%w: encoder already recording", driver.ErrInvalidArgument)
	}
	c.d.ctx.PushDebugGroup("compute")
	c.rec = true
	return &computeEncoder{c: c}, nil
}

// Present schedules the presentation of a drawable's
// textures to the display surface.
func (c *cmdBuffer) Present(st driver.SurfaceTextures) error {
	if c.rec {
		return fmt.Errorf("%w: presenting with a live encoder", driver.ErrInvalidArgument)
	}
	if st.Color == nil || !st.Color.Implicit() {
		return fmt.Errorf("%w: drawable is not surface storage", driver.ErrCannotPresent)
	}
	c.d.ctx.Flush()
	if err := c.d.ctx.Present(); err != nil {
		return fmt.Errorf("%w: %v", driver.ErrCannotPresent, err)
	}
	return nil
}

// WaitScheduled blocks until the context has accepted all
// work recorded so far.
// Execution is serialized, so this is the same
// synchronization point as WaitCompleted.
func (c *cmdBuffer) WaitScheduled() error {
	c.d.ctx.Finish()
	return nil
}

// WaitCompleted blocks until all work recorded so far has
// fully retired.
func (c *cmdBuffer) WaitCompleted() error {
	c.d.ctx.Finish()
	return nil
}

// Destroy destroys the command buffer.
func (c *cmdBuffer) Destroy() {
	if c == nil {
		return
	}
	*c = cmdBuffer{}
}

// renderEncoder implements driver.RenderEncoder.
// Creating it binds the framebuffer and applies load
// operations; End resolves, applies store operations and
// puts the guarded bindings back.
type renderEncoder struct {
	c         *cmdBuffer
	fb        framebufBinder
	g         bindingGuard
	sciss     bool
	prevSciss bool
	ended     bool
}

// SetViewport sets the viewport rectangle.
func (e *renderEncoder) SetViewport(vp driver.Viewport) {
	ctx := e.c.d.ctx
	ctx.Viewport(int(vp.X), int(vp.Y), int(vp.Width), int(vp.Height))
	ctx.DepthRangef(vp.Znear, vp.Zfar)
}

// SetScissor sets the scissor rectangle.
func (e *renderEncoder) SetScissor(sciss driver.Scissor) {
	ctx := e.c.d.ctx
	ctx.Enable(SCISSOR_TEST)
	ctx.Scissor(sciss.X, sciss.Y, sciss.Width, sciss.Height)
	e.sciss = true
}

// InsertMarker inserts a debug marker into the command
// stream.
func (e *renderEncoder) InsertMarker(name string) {
	e.c.d.ctx.InsertDebugMarker(name)
}

// End completes the pass.
func (e *renderEncoder) End() error {
	if e.ended {
		return nil
	}
	e.fb.resolveBlit()
	e.fb.unbind()
	// The scissor test goes back to the state it had when
	// encoding began.
	if e.prevSciss {
		e.c.d.ctx.Enable(SCISSOR_TEST)
	} else if e.sciss {
		e.c.d.ctx.Disable(SCISSOR_TEST)
	}
	e.c.d.ctx.PopDebugGroup()
	e.g.restore()
	e.c.rec = false
	e.ended = true
	return checkContextError(e.c.d.ctx)
}

// computeEncoder implements driver.ComputeEncoder.
type computeEncoder struct {
	c     *cmdBuffer
	ended bool
}

// Barrier orders memory accesses of preceding work against
// subsequent work. It has no effect when the context lacks
// memory barriers.
func (e *computeEncoder) Barrier() {
	if e.c.d.feat.barrier {
		e.c.d.ctx.MemoryBarrier(ALL_BARRIER_BITS)
	}
}

// InsertMarker inserts a debug marker into the command
// stream.
func (e *computeEncoder) InsertMarker(name string) {
	e.c.d.ctx.InsertDebugMarker(name)
}

// End completes the encoding.
func (e *computeEncoder) End() error {
	if e.ended {
		return nil
	}
	e.c.d.ctx.PopDebugGroup()
	e.c.rec = false
	e.ended = true
	return checkContextError(e.c.d.ctx)
}
