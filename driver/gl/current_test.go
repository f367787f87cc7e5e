// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"errors"
	"slices"
	"testing"

	"github.com/gviegas/rhi/driver"
)

func TestCurrentFramebuf(t *testing.T) {
	d, ctx := newFakeDriver(t, "4.6")
	ctx.withSurface(32, 24)

	fb, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	cf := fb.(*currentFramebuf)
	if cf.name != 0 {
		t.Errorf("wrapped framebuffer:\nhave %d\nwant 0", cf.name)
	}
	if want := (driver.Viewport{Width: 32, Height: 24, Zfar: 1}); fb.Viewport() != want {
		t.Errorf("Framebuf.Viewport:\nhave %+v\nwant %+v", fb.Viewport(), want)
	}
	if fb.Mode() != driver.FMono {
		t.Errorf("Framebuf.Mode:\nhave %v\nwant %v", fb.Mode(), driver.FMono)
	}
	if want := []int{0}; !slices.Equal(fb.ColorIndices(), want) {
		t.Errorf("Framebuf.ColorIndices:\nhave %v\nwant %v", fb.ColorIndices(), want)
	}
	col := fb.Color(0)
	if col == nil || !col.Implicit() {
		t.Fatal("Framebuf.Color(0) does not report implicit storage")
	}
	if w, h := col.Size(); w != 32 || h != 24 {
		t.Errorf("color placeholder size:\nhave %dx%d\nwant 32x24", w, h)
	}
	if col.Format() != driver.RGBA8un {
		t.Errorf("color placeholder format:\nhave %v\nwant %v", col.Format(), driver.RGBA8un)
	}
	if fb.Color(1) != nil || fb.Depth() != nil || fb.Stencil() != nil {
		t.Error("Framebuf reports attachments beyond color 0")
	}
	if fb.ResolveColor(0) != nil || fb.ResolveDepth() != nil {
		t.Error("Framebuf reports resolve attachments")
	}

	// Wrapping the same binding again hits the cache.
	again, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	if again != fb {
		t.Error("CurrentFramebuf created a second wrapper for the same binding")
	}

	// A different binding gets its own wrapper.
	name := completeFB(ctx)
	other, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	if other == fb {
		t.Error("CurrentFramebuf reused a wrapper across bindings")
	}
	if of := other.(*currentFramebuf); of.name != name {
		t.Errorf("wrapped framebuffer:\nhave %d\nwant %d", of.name, name)
	}

	// The first wrapper is still cached.
	ctx.BindFramebuffer(FRAMEBUFFER, 0)
	third, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	if third != fb {
		t.Error("CurrentFramebuf dropped a cached wrapper")
	}
}

func TestCurrentFramebufBind(t *testing.T) {
	d, ctx := newFakeDriver(t, "4.6")
	ctx.withSurface(32, 24)
	fb, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	cf := fb.(*currentFramebuf)

	// Disturb the state the wrapper captured.
	completeFB(ctx)
	ctx.Viewport(1, 2, 3, 4)
	ctx.ColorMask(false, false, false, false)
	ctx.DepthMask(false)
	ctx.StencilMask(0)

	// The wrapped target is cleared unless the pass loads
	// it; LDontCare clears as well.
	pass := driver.RenderPass{
		Colors: []driver.ColorTarget{{Load: driver.LDontCare, Clear: [4]float32{0, 0, 1, 1}}},
	}
	if err := cf.bind(&pass); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ctx.drawFB != 0 {
		t.Errorf("bound framebuffer:\nhave %d\nwant 0", ctx.drawFB)
	}
	if ctx.vp != [4]int{0, 0, 32, 24} {
		t.Errorf("viewport after bind:\nhave %v\nwant [0 0 32 24]", ctx.vp)
	}
	if ctx.clears != 1 || ctx.lastClearMask != COLOR_BUFFER_BIT|DEPTH_BUFFER_BIT|STENCIL_BUFFER_BIT {
		t.Errorf("clear:\nhave n=%d mask=0x%x\nwant n=1 mask=0x%x",
			ctx.clears, uint32(ctx.lastClearMask), COLOR_BUFFER_BIT|DEPTH_BUFFER_BIT|STENCIL_BUFFER_BIT)
	}
	checkFill(t, ctx.surface, [4]uint8{0, 0, 255, 255})
	if ctx.colMask != [4]bool{true, true, true, true} || !ctx.depMask || ctx.stenMask != 0xff {
		t.Error("bind did not force the write masks on")
	}

	// Loads preserve the target.
	pass = driver.RenderPass{
		Colors:  []driver.ColorTarget{{Load: driver.LLoad}},
		Depth:   driver.DepthTarget{Load: driver.LLoad},
		Stencil: driver.StencilTarget{Load: driver.LLoad},
	}
	if err := cf.bind(&pass); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ctx.clears != 1 {
		t.Errorf("clears after load-only bind:\nhave %d\nwant 1", ctx.clears)
	}

	// Store operations never apply to wrapped targets.
	cf.unbind()
	cf.resolveBlit()
	if len(ctx.invalidations) != 0 {
		t.Errorf("invalidations:\nhave %v\nwant none", ctx.invalidations)
	}
}

func TestCurrentFramebufReadback(t *testing.T) {
	d, ctx := newFakeDriver(t, "4.6")
	ctx.withSurface(8, 8)
	fb, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	gradImg(ctx.surface)

	dst := make([]byte, 8*8*4)
	if err := fb.CopyBytesColor(0, dst, driver.Range2D(0, 0, 8, 8), 0); err != nil {
		t.Fatalf("CopyBytesColor: %v", err)
	}
	for _, p := range [][2]int{{0, 0}, {5, 3}, {7, 7}} {
		o := (p[1]*8 + p[0]) * 4
		if have, want := [4]uint8(dst[o:o+4]), pixAt(ctx.surface, p[0], p[1]); have != want {
			t.Errorf("readback at (%d, %d):\nhave %v\nwant %v", p[0], p[1], have, want)
		}
	}
	if ctx.flushes == 0 {
		t.Error("CopyBytesColor did not flush pending work")
	}
	if ctx.pack[PACK_ALIGNMENT] != 4 || ctx.pack[PACK_ROW_LENGTH] != 0 {
		t.Errorf("pack state after CopyBytesColor:\nhave align=%d rowlen=%d\nwant align=4 rowlen=0",
			ctx.pack[PACK_ALIGNMENT], ctx.pack[PACK_ROW_LENGTH])
	}

	sub := make([]byte, 2*2*4)
	if err := fb.CopyBytesColor(0, sub, driver.Range2D(2, 3, 2, 2), 0); err != nil {
		t.Fatalf("CopyBytesColor (sub-region): %v", err)
	}
	if have, want := [4]uint8(sub[:4]), pixAt(ctx.surface, 2, 3); have != want {
		t.Errorf("sub-region readback:\nhave %v\nwant %v", have, want)
	}

	if err := fb.CopyBytesColor(1, dst, driver.Range2D(0, 0, 8, 8), 0); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("CopyBytesColor(1):\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}
	if err := fb.CopyBytesColor(0, dst[:16], driver.Range2D(0, 0, 8, 8), 0); !errors.Is(err, driver.ErrInvalidArgument) {
		t.Errorf("CopyBytesColor (short dst):\nhave %v\nwant %v", err, driver.ErrInvalidArgument)
	}
	if err := fb.CopyBytesDepth(dst, driver.Range2D(0, 0, 8, 8), 0); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("CopyBytesDepth:\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}
	if err := fb.CopyBytesStencil(dst, driver.Range2D(0, 0, 8, 8), 0); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("CopyBytesStencil:\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}

	// Copies into a sampleable texture.
	tex := colorTex(t, d, 8, 8)
	if err := fb.CopyTextureColor(0, tex, driver.Range2D(0, 0, 8, 8)); err != nil {
		t.Fatalf("CopyTextureColor: %v", err)
	}
	if have, want := pixAt(texImage(ctx, tex, 0), 1, 2), pixAt(ctx.surface, 1, 2); have != want {
		t.Errorf("copied pixel (1, 2):\nhave %v\nwant %v", have, want)
	}
	rb := targetTex(t, d, driver.RGBA8un, 8, 8, 1)
	if err := fb.CopyTextureColor(0, rb, driver.Range2D(0, 0, 8, 8)); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("CopyTextureColor (render target):\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}
	if err := fb.CopyTextureColor(1, tex, driver.Range2D(0, 0, 8, 8)); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("CopyTextureColor(1):\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}

	if ctx.drawFB != 0 || ctx.readFB != 0 {
		t.Errorf("bindings after readback:\nhave read=%d draw=%d\nwant read=0 draw=0", ctx.readFB, ctx.drawFB)
	}
}

func TestCurrentFramebufUpdate(t *testing.T) {
	d, ctx := newFakeDriver(t, "4.6")
	ctx.withSurface(8, 8)
	fb, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	col := fb.Color(0)

	if err := fb.UpdateDrawable(colorTex(t, d, 8, 8)); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("UpdateDrawable:\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}
	if err := fb.UpdateSurfaces(driver.SurfaceTextures{Color: colorTex(t, d, 8, 8)}); !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("UpdateSurfaces:\nhave %v\nwant %v", err, driver.ErrUnsupported)
	}
	if fb.Color(0) != col {
		t.Error("failed update changed the wrapper")
	}
}

func TestCurrentFramebufDestroy(t *testing.T) {
	d, ctx := newFakeDriver(t, "4.6")
	name := completeFB(ctx)
	fb, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	cf := fb.(*currentFramebuf)

	fb.Destroy()
	// The wrapped object belongs to whoever bound it.
	if ctx.fbs[name] == nil {
		t.Error("Destroy deleted the wrapped framebuffer object")
	}
	if cf.d != nil || cf.name != 0 || cf.tex != nil {
		t.Errorf("wrapper after Destroy:\nhave %+v\nwant zero value", *cf)
	}

	// The cache entry is gone, so wrapping again starts
	// fresh.
	again, err := d.CurrentFramebuf()
	if err != nil {
		t.Fatalf("CurrentFramebuf: %v", err)
	}
	if again.(*currentFramebuf) == cf {
		t.Error("CurrentFramebuf returned a destroyed wrapper")
	}

	var nilFB *currentFramebuf
	nilFB.Destroy()
}
