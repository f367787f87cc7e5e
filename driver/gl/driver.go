// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package gl implements driver interfaces using the
// OpenGL API.
//
// The driver records no commands of its own; every call
// dispatches against the GL context that was current on
// the goroutine that opened the driver. Callers must keep
// that context current for as long as the driver is open.
package gl

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gviegas/rhi/driver"
)

const driverName = "opengl"

// Capacity of the wrapped framebuffer cache.
// Contexts juggle very few external framebuffers, so this
// need not be large.
const fbcacheCap = 8

// Driver implements driver.Driver and driver.GPU.
type Driver struct {
	proc

	ctx  Context
	feat features
	lim  driver.Limits

	// Wrapped context framebuffers, keyed by their GL
	// names. See CurrentFramebuf.
	fbcache *lru.Cache[uint32, *currentFramebuf]
}

func init() {
	driver.Register(&Driver{})
}

// NewWith creates a driver that dispatches through a
// caller-provided context, rather than loading the
// system's GL library. It is intended for tracing
// wrappers and test doubles; most code should open the
// registered driver instead.
func NewWith(ctx Context) (*Driver, error) {
	d := &Driver{ctx: ctx}
	if err := d.initContext(); err != nil {
		return nil, err
	}
	return d, nil
}

// Open initializes the driver.
// The calling goroutine must hold a current GL context,
// such as one made current through the wsi package.
func (d *Driver) Open() (gpu driver.GPU, err error) {
	if d.ctx != nil {
		return d, nil
	}
	if err = d.open(); err != nil {
		goto fail
	}
	d.ctx = d.proc.context()
	if err = d.initContext(); err != nil {
		goto fail
	}
	return d, nil
fail:
	d.Close()
	return nil, err
}

// initContext probes the current context and prepares
// state derived from it. d.ctx must be set.
func (d *Driver) initContext() error {
	feat, err := queryFeatures(d.ctx)
	if err != nil {
		// Version queries only fail when no context is
		// current on the calling goroutine.
		return fmt.Errorf("%w: %v", driver.ErrNoDevice, err)
	}
	d.feat = feat
	d.setLimits()
	cache, err := lru.New[uint32, *currentFramebuf](fbcacheCap)
	if err != nil {
		return err
	}
	d.fbcache = cache
	return checkContextError(d.ctx)
}

// setLimits queries the context's implementation limits.
func (d *Driver) setLimits() {
	ctx := d.ctx
	maxColor := 1
	if d.feat.drawBuffers {
		maxColor = ctx.GetInteger(MAX_COLOR_ATTACHMENTS)
	}
	fbSize := ctx.GetInteger(MAX_RENDERBUFFER_SIZE)
	fbW, fbH := fbSize, fbSize
	fbLayers := ctx.GetInteger(MAX_ARRAY_TEXTURE_LAYERS)
	if d.feat.barrier {
		// 4.3/ES 3.1 expose framebuffer limits directly.
		fbW = ctx.GetInteger(MAX_FRAMEBUFFER_WIDTH)
		fbH = ctx.GetInteger(MAX_FRAMEBUFFER_HEIGHT)
		fbLayers = ctx.GetInteger(MAX_FRAMEBUFFER_LAYERS)
	}
	vp := ctx.GetInteger4(MAX_VIEWPORT_DIMS)
	d.lim = driver.Limits{
		MaxSize2D:   ctx.GetInteger(MAX_TEXTURE_SIZE),
		MaxSizeCube: ctx.GetInteger(MAX_CUBE_MAP_TEXTURE_SIZE),
		MaxLayers:   ctx.GetInteger(MAX_ARRAY_TEXTURE_LAYERS),

		MaxColorTargets: maxColor,
		MaxFBSize:       [2]int{fbW, fbH},
		MaxFBLayers:     fbLayers,
		MaxSamples:      ctx.GetInteger(MAX_SAMPLES),

		MaxViewport: [2]int{vp[0], vp[1]},
	}
}

// Name returns the driver name.
func (d *Driver) Name() string { return driverName }

// Close deinitializes the driver.
func (d *Driver) Close() {
	if d == nil {
		return
	}
	if d.ctx != nil {
		// Let outstanding work retire before the library
		// goes away.
		d.ctx.Finish()
	}
	if d.fbcache != nil {
		d.fbcache.Purge()
	}
	d.close()
	*d = Driver{}
}

// Driver returns the receiver (for driver.GPU conformance).
func (d *Driver) Driver() driver.Driver { return d }

// Limits returns the implementation limits.
func (d *Driver) Limits() driver.Limits { return d.lim }

// Features reports the version of the underlying context
// and whether it is OpenGL ES.
func (d *Driver) Features() (major, minor int, es bool) {
	return d.feat.major, d.feat.minor, d.feat.es
}

// NextDrawable returns surface textures describing the
// context's drawable (for driver.Presenter conformance).
func (d *Driver) NextDrawable() (driver.SurfaceTextures, error) {
	w, h := d.ctx.DrawableSize()
	if w < 1 || h < 1 {
		return driver.SurfaceTextures{}, fmt.Errorf("%w: context has no drawable", driver.ErrCannotPresent)
	}
	return driver.SurfaceTextures{
		Color: &dummyTexture{width: w, height: h, fmt: driver.RGBA8un},
	}, nil
}

// checkContextError drains the context's error queue and
// returns an error derived from the first code found.
// If no error code is pending, it returns nil instead.
func checkContextError(ctx Context) error {
	var err error
	// Each error category holds at most one pending flag,
	// so the drain is bounded in practice; the cap guards
	// against misbehaving contexts.
	for i := 0; i < 8; i++ {
		code := ctx.GetError()
		if code == NO_ERROR {
			break
		}
		if err != nil {
			continue
		}
		switch code {
		case OUT_OF_MEMORY:
			err = driver.ErrNoMemory
		case CONTEXT_LOST:
			err = driver.ErrFatal
		case INVALID_FRAMEBUFFER_OPERATION:
			err = driver.ErrIncomplete
		default:
			err = fmt.Errorf("gl: error 0x%x", uint32(code))
		}
	}
	return err
}
