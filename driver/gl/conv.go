// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"github.com/gviegas/rhi/driver"
)

// convTexFormat converts a driver.TexFormat to the GL
// internalformat/format/type triple used for storage,
// transfers and readback.
func convTexFormat(f driver.TexFormat) (internal, format, typ Enum) {
	switch f {
	case driver.RGBA8un:
		return RGBA8, RGBA, UNSIGNED_BYTE
	case driver.RGBA8sRGB:
		return SRGB8_ALPHA8, RGBA, UNSIGNED_BYTE
	case driver.BGRA8un:
		// Sized BGRA storage is not portable; swizzle on
		// transfer instead.
		return RGBA8, BGRA, UNSIGNED_BYTE
	case driver.RGB10A2un:
		return RGB10_A2, RGBA, UNSIGNED_INT_2_10_10_10_REV
	case driver.RGBA32ui:
		return RGBA32UI, RGBA_INTEGER, UNSIGNED_INT
	case driver.D16un:
		return DEPTH_COMPONENT16, DEPTH_COMPONENT, UNSIGNED_SHORT
	case driver.D32f:
		return DEPTH_COMPONENT32F, DEPTH_COMPONENT, FLOAT
	case driver.S8ui:
		return STENCIL_INDEX8, STENCIL_INDEX, UNSIGNED_BYTE
	case driver.D24unS8ui:
		return DEPTH24_STENCIL8, DEPTH_STENCIL, UNSIGNED_INT_24_8
	}

	// Expected to be unreachable.
	return NONE, NONE, NONE
}

// convAttachment converts a depth and/or stencil format to
// the attachment point it must bind to.
func convAttachment(f driver.TexFormat) Enum {
	p := f.Props()
	switch {
	case p.Depth && p.Stencil:
		return DEPTH_STENCIL_ATTACHMENT
	case p.Depth:
		return DEPTH_ATTACHMENT
	case p.Stencil:
		return STENCIL_ATTACHMENT
	}

	// Expected to be unreachable.
	return NONE
}

// colorAttachment returns the attachment point of the
// color attachment at index i.
func colorAttachment(i int) Enum {
	return COLOR_ATTACHMENT0 + Enum(i)
}

// convStatus converts a framebuffer status to a string
// suitable for error reporting.
func convStatus(status Enum) string {
	switch status {
	case FRAMEBUFFER_COMPLETE:
		return "complete"
	case FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return "incomplete attachment"
	case FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return "missing attachment"
	case FRAMEBUFFER_INCOMPLETE_DIMENSIONS:
		return "attachment dimensions do not match"
	case FRAMEBUFFER_INCOMPLETE_DRAW_BUFFER:
		return "incomplete draw buffer"
	case FRAMEBUFFER_INCOMPLETE_READ_BUFFER:
		return "incomplete read buffer"
	case FRAMEBUFFER_INCOMPLETE_MULTISAMPLE:
		return "inconsistent sample counts"
	case FRAMEBUFFER_UNSUPPORTED:
		return "attachment combination unsupported"
	case FRAMEBUFFER_UNDEFINED:
		return "undefined framebuffer"
	}
	return "unknown status"
}
