// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

// bindingGuard captures the context's renderbuffer and
// framebuffer bindings so that driver operations which
// must rebind, such as framebuffer realization and
// readback, can put client state back on every exit path.
//
// A framebuffer binding whose completeness probe does not
// report a usable state is not captured; restore then
// rebinds the default framebuffer for that target. The
// renderbuffer binding is always captured. Restore itself
// is unconditional and is expected to run deferred.
type bindingGuard struct {
	ctx   Context
	split bool

	renderbuf uint32
	read      uint32
	draw      uint32
}

// newBindingGuard captures the current bindings.
func newBindingGuard(ctx Context, feat *features) bindingGuard {
	g := bindingGuard{ctx: ctx, split: feat.readDrawFB}
	g.renderbuf = uint32(ctx.GetInteger(RENDERBUFFER_BINDING))
	if g.split {
		if usableBinding(ctx, READ_FRAMEBUFFER) {
			g.read = uint32(ctx.GetInteger(READ_FRAMEBUFFER_BINDING))
		}
		if usableBinding(ctx, DRAW_FRAMEBUFFER) {
			g.draw = uint32(ctx.GetInteger(FRAMEBUFFER_BINDING))
		}
	} else {
		if usableBinding(ctx, FRAMEBUFFER) {
			g.draw = uint32(ctx.GetInteger(FRAMEBUFFER_BINDING))
		}
	}
	return g
}

// usableBinding reports whether the framebuffer bound to
// target is in a state worth restoring.
func usableBinding(ctx Context, target Enum) bool {
	switch ctx.CheckFramebufferStatus(target) {
	case FRAMEBUFFER_COMPLETE, FRAMEBUFFER_UNDEFINED:
		// Undefined means the default framebuffer of a
		// surfaceless context; binding zero is valid.
		return true
	}
	return false
}

// restore puts the captured bindings back.
func (g *bindingGuard) restore() {
	if g.split {
		g.ctx.BindFramebuffer(READ_FRAMEBUFFER, g.read)
		g.ctx.BindFramebuffer(DRAW_FRAMEBUFFER, g.draw)
	} else {
		g.ctx.BindFramebuffer(FRAMEBUFFER, g.draw)
	}
	g.ctx.BindRenderbuffer(RENDERBUFFER, g.renderbuf)
}
