// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"fmt"

	"github.com/gviegas/rhi/driver"
)

// currentFramebuf implements driver.Framebuf by wrapping
// whatever framebuffer the context had bound when the
// wrapper was created. The underlying object is owned by
// the context or by other code; destroying the wrapper
// does not delete it.
type currentFramebuf struct {
	d     *Driver
	name  uint32
	vp    [4]int
	vport driver.Viewport
	tex   *dummyTexture
}

// CurrentFramebuf returns a framebuffer wrapping the
// context's current binding. It may return a cached
// Framebuf when the same binding is wrapped again.
func (d *Driver) CurrentFramebuf() (driver.Framebuf, error) {
	name := uint32(d.ctx.GetInteger(FRAMEBUFFER_BINDING))
	if f, ok := d.fbcache.Get(name); ok {
		return f, nil
	}
	vp := d.ctx.GetInteger4(VIEWPORT)
	if err := checkContextError(d.ctx); err != nil {
		return nil, err
	}
	f := &currentFramebuf{
		d:    d,
		name: name,
		vp:   vp,
		vport: driver.Viewport{
			X:      float32(vp[0]),
			Y:      float32(vp[1]),
			Width:  float32(vp[2]),
			Height: float32(vp[3]),
			Zfar:   1,
		},
		// The actual storage is unknowable, so a
		// placeholder sized after the viewport stands in.
		// Every default framebuffer reads back through
		// the RGBA/UNSIGNED_BYTE pair.
		tex: &dummyTexture{
			width:  vp[2],
			height: vp[3],
			fmt:    driver.RGBA8un,
		},
	}
	d.fbcache.Add(name, f)
	return f, nil
}

// bind rebinds the wrapped framebuffer and restores the
// viewport captured at wrap time. Unlike assembled
// framebuffers, whose contents are undefined unless
// loaded, the wrapped target is cleared whenever the pass
// does not ask to load it.
func (f *currentFramebuf) bind(pass *driver.RenderPass) error {
	ctx := f.d.ctx
	ctx.BindFramebuffer(FRAMEBUFFER, f.name)
	ctx.Viewport(f.vp[0], f.vp[1], f.vp[2], f.vp[3])

	var mask Enum
	if len(pass.Colors) > 0 && pass.Colors[0].Load != driver.LLoad {
		c := pass.Colors[0].Clear
		ctx.ColorMask(true, true, true, true)
		ctx.ClearColor(c[0], c[1], c[2], c[3])
		mask |= COLOR_BUFFER_BIT
	}
	if pass.Depth.Load != driver.LLoad {
		ctx.DepthMask(true)
		ctx.ClearDepth(pass.Depth.Clear)
		mask |= DEPTH_BUFFER_BIT
	}
	if pass.Stencil.Load != driver.LLoad {
		ctx.StencilMask(0xff)
		ctx.ClearStencil(int(pass.Stencil.Clear))
		mask |= STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		ctx.Clear(mask)
	}
	return nil
}

// unbind is a no-op; the wrapped framebuffer's contents
// always outlive the pass.
func (f *currentFramebuf) unbind() {}

func (f *currentFramebuf) resolveBlit() {}

func (f *currentFramebuf) drv() *Driver { return f.d }

// Destroy drops the wrapper.
// The wrapped framebuffer itself is not owned by the
// driver and remains valid.
func (f *currentFramebuf) Destroy() {
	if f == nil {
		return
	}
	if f.d != nil {
		f.d.fbcache.Remove(f.name)
	}
	*f = currentFramebuf{}
}

// Viewport returns the viewport captured at wrap time.
func (f *currentFramebuf) Viewport() driver.Viewport { return f.vport }

// Mode returns FMono; wrapped framebuffers never render
// in stereo or multiview.
func (f *currentFramebuf) Mode() driver.FramebufMode { return driver.FMono }

// ColorIndices returns the sole color attachment index.
func (f *currentFramebuf) ColorIndices() []int { return []int{0} }

// Color returns a placeholder describing the wrapped
// framebuffer's color storage.
func (f *currentFramebuf) Color(i int) driver.Texture {
	if i == 0 {
		return f.tex
	}
	return nil
}

func (f *currentFramebuf) ResolveColor(i int) driver.Texture { return nil }

func (f *currentFramebuf) Depth() driver.Texture { return nil }

func (f *currentFramebuf) ResolveDepth() driver.Texture { return nil }

func (f *currentFramebuf) Stencil() driver.Texture { return nil }

// UpdateDrawable fails; the wrapped framebuffer's storage
// belongs to the context.
func (f *currentFramebuf) UpdateDrawable(color driver.Texture) error {
	return fmt.Errorf("%w: updating the drawable of a wrapped framebuffer", driver.ErrUnsupported)
}

// UpdateSurfaces fails; the wrapped framebuffer's storage
// belongs to the context.
func (f *currentFramebuf) UpdateSurfaces(st driver.SurfaceTextures) error {
	return fmt.Errorf("%w: updating the surfaces of a wrapped framebuffer", driver.ErrUnsupported)
}

// CopyBytesColor reads pixels of the wrapped framebuffer
// back into dst.
func (f *currentFramebuf) CopyBytesColor(i int, dst []byte, rng driver.TexRange, bytesPerRow int) error {
	if i != 0 {
		return fmt.Errorf("%w: readback is limited to color attachment 0", driver.ErrUnsupported)
	}
	format, typ, rowBytes, err := readPixelsArgs(&f.d.feat, f.tex, &rng, bytesPerRow)
	if err != nil {
		return err
	}
	if len(dst) < rowBytes*rng.Height {
		return fmt.Errorf("%w: destination holds fewer than %d bytes", driver.ErrInvalidArgument, rowBytes*rng.Height)
	}

	ctx := f.d.ctx
	g := newBindingGuard(ctx, &f.d.feat)
	defer g.restore()
	ctx.BindFramebuffer(readTarget(&f.d.feat), f.name)
	ctx.Flush()

	restore, err := packPixelStore(ctx, &f.d.feat, rowBytes, f.tex.Format().Props().Size, rng.Width)
	if err != nil {
		return err
	}
	defer restore()
	ctx.ReadPixels(rng.X, rng.Y, rng.Width, rng.Height, format, typ, dst)
	return checkContextError(ctx)
}

// CopyBytesDepth reads back the depth buffer.
// The underlying API cannot express it.
func (f *currentFramebuf) CopyBytesDepth(dst []byte, rng driver.TexRange, bytesPerRow int) error {
	return fmt.Errorf("%w: depth readback", driver.ErrUnsupported)
}

// CopyBytesStencil reads back the stencil buffer.
// The underlying API cannot express it.
func (f *currentFramebuf) CopyBytesStencil(dst []byte, rng driver.TexRange, bytesPerRow int) error {
	return fmt.Errorf("%w: stencil readback", driver.ErrUnsupported)
}

// CopyTextureColor copies pixels of the wrapped
// framebuffer within rng into dst.
func (f *currentFramebuf) CopyTextureColor(i int, dst driver.Texture, rng driver.TexRange) error {
	if i != 0 {
		return fmt.Errorf("%w: copy is limited to color attachment 0", driver.ErrUnsupported)
	}
	if err := rng.Validate(); err != nil {
		return err
	}
	tx, err := f.d.backendTex(dst)
	if err != nil {
		return err
	}
	if tx.rb {
		return fmt.Errorf("%w: copy into render target storage", driver.ErrUnsupported)
	}

	ctx := f.d.ctx
	g := newBindingGuard(ctx, &f.d.feat)
	defer g.restore()
	ctx.BindFramebuffer(readTarget(&f.d.feat), f.name)
	ctx.Flush()
	ctx.BindTexture(tx.target, tx.name)
	ctx.CopyTexSubImage2D(tx.target, rng.Level, 0, 0, rng.X, rng.Y, rng.Width, rng.Height)
	return checkContextError(ctx)
}
