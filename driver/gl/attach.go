// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"github.com/gviegas/rhi/driver"
)

// attachParams identifies the sub-resource of a texture
// that a framebuffer binding addresses, and whether the
// binding is for reading or for drawing.
type attachParams struct {
	layer  int
	face   int
	level  int
	stereo bool
	read   bool
}

// writeParams returns the default parameters used when a
// framebuffer is first realized: sub-resource zero, bound
// for drawing.
func writeParams() attachParams {
	return attachParams{}
}

// readParams resolves the parameters for a readback of the
// sub-resource selected by rng.
func readParams(rng driver.TexRange) attachParams {
	return attachParams{
		layer: rng.Layer,
		face:  rng.Face,
		level: rng.Level,
		read:  true,
	}
}

// passColorParams resolves the parameters for the color
// attachment at index i as addressed by a pass.
func passColorParams(pass *driver.RenderPass, i int, mode driver.FramebufMode) attachParams {
	var p attachParams
	if i < len(pass.Colors) {
		c := &pass.Colors[i]
		p.layer = c.Layer
		p.face = c.Face
		p.level = c.Level
	}
	p.stereo = mode == driver.FStereo
	return p
}

// passDepthParams resolves the parameters for the depth
// attachment as addressed by a pass.
func passDepthParams(pass *driver.RenderPass, mode driver.FramebufMode) attachParams {
	return attachParams{
		layer:  pass.Depth.Layer,
		face:   pass.Depth.Face,
		level:  pass.Depth.Level,
		stereo: mode == driver.FStereo,
	}
}
