// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"fmt"
	"strings"
)

// features describes what the underlying context is
// capable of. It is resolved once, when the driver opens,
// from the version and extension strings.
type features struct {
	es           bool
	major, minor int

	// Split read/draw framebuffer targets.
	readDrawFB bool
	// glInvalidateFramebuffer.
	invalidate bool
	// Integer texture formats and RGBA_INTEGER readback.
	integerTex bool
	// FRAMEBUFFER_SRGB write control.
	srgbWrite bool
	// KHR_debug labels and groups.
	debugLabel bool
	// Multisample renderbuffers and textures.
	msaaTarget bool
	// glDrawBuffers.
	drawBuffers bool
	// Immutable texture storage.
	texStorage bool
	// glMemoryBarrier.
	barrier bool
	// PACK_ROW_LENGTH during readback.
	packRowLen bool
}

// atLeast reports whether the context version is at least
// major.minor.
func (f *features) atLeast(major, minor int) bool {
	return f.major > major || f.major == major && f.minor >= minor
}

// parseVersion splits a GL_VERSION string into a version
// number and client API variant.
func parseVersion(s string) (major, minor int, es bool, err error) {
	const esPrefix = "OpenGL ES "
	v := s
	if strings.HasPrefix(v, esPrefix) {
		es = true
		v = v[len(esPrefix):]
	}
	if _, err = fmt.Sscanf(v, "%d.%d", &major, &minor); err != nil {
		err = fmt.Errorf("gl: malformed version string %q", s)
	}
	return
}

// queryExtensions returns the context's extension set.
// Contexts at version 3.0 or newer are queried through
// the indexed form.
func queryExtensions(ctx Context, indexed bool) map[string]bool {
	exts := make(map[string]bool)
	if indexed {
		n := ctx.GetInteger(NUM_EXTENSIONS)
		for i := 0; i < n; i++ {
			exts[ctx.GetStringi(EXTENSIONS, i)] = true
		}
	} else {
		for _, e := range strings.Fields(ctx.GetString(EXTENSIONS)) {
			exts[e] = true
		}
	}
	return exts
}

// queryFeatures resolves the feature set of ctx.
func queryFeatures(ctx Context) (features, error) {
	var f features
	var err error
	f.major, f.minor, f.es, err = parseVersion(ctx.GetString(VERSION))
	if err != nil {
		return features{}, err
	}
	exts := queryExtensions(ctx, f.atLeast(3, 0))

	if f.es {
		f.readDrawFB = f.atLeast(3, 0)
		f.invalidate = f.atLeast(3, 0)
		f.integerTex = f.atLeast(3, 0)
		f.srgbWrite = exts["GL_EXT_sRGB_write_control"]
		f.debugLabel = f.atLeast(3, 2) || exts["GL_KHR_debug"]
		f.msaaTarget = f.atLeast(3, 0)
		f.drawBuffers = f.atLeast(3, 0) || exts["GL_EXT_draw_buffers"]
		f.texStorage = f.atLeast(3, 0)
		f.barrier = f.atLeast(3, 1)
		f.packRowLen = f.atLeast(3, 0)
	} else {
		f.readDrawFB = f.atLeast(3, 0) || exts["GL_ARB_framebuffer_object"]
		f.invalidate = f.atLeast(4, 3) || exts["GL_ARB_invalidate_subdata"]
		f.integerTex = f.atLeast(3, 0)
		f.srgbWrite = f.atLeast(3, 0) || exts["GL_ARB_framebuffer_sRGB"]
		f.debugLabel = f.atLeast(4, 3) || exts["GL_KHR_debug"]
		f.msaaTarget = f.atLeast(3, 0) || exts["GL_ARB_framebuffer_object"]
		f.drawBuffers = f.atLeast(2, 0)
		f.texStorage = f.atLeast(4, 2) || exts["GL_ARB_texture_storage"]
		f.barrier = f.atLeast(4, 2) || exts["GL_ARB_shader_image_load_store"]
		f.packRowLen = true
	}
	return f, nil
}
