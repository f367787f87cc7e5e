// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/gviegas/rhi/driver"
)

// framebufBinder is the backend side of driver.Framebuf.
// Encoders bind and unbind render targets through it.
type framebufBinder interface {
	driver.Framebuf

	// bind makes the framebuffer current and applies the
	// pass's load operations.
	bind(pass *driver.RenderPass) error

	// unbind applies the pass's store operations.
	unbind()

	// resolveBlit resolves multisample attachments into
	// the companion framebuffer, if any.
	resolveBlit()

	// drv returns the owning driver.
	drv() *Driver
}

// fullViewport returns a viewport covering a width x
// height target with depth range [0, 1].
func fullViewport(width, height int) driver.Viewport {
	return driver.Viewport{
		Width:  float32(width),
		Height: float32(height),
		Zfar:   1,
	}
}

// customFramebuf implements driver.Framebuf for render
// targets assembled from client textures.
type customFramebuf struct {
	d       *Driver
	name    uint32
	desc    driver.FramebufDesc
	indices []int
	vport   driver.Viewport
	resolve *customFramebuf

	// Sub-resources currently attached, keyed by color
	// index. Missing entries mean the defaults from
	// realization.
	curColor map[int]attachParams
	curDepth attachParams

	// Cached pass of the most recent bind.
	pass    driver.RenderPass
	hasPass bool

	// Single implicit color attachment; the context's own
	// target stands in and no framebuffer object exists.
	implicit bool

	stencilOn bool
	init      bool
}

// NewFramebuf creates a new framebuffer from a render
// target description.
func (d *Driver) NewFramebuf(fd *driver.FramebufDesc) (driver.Framebuf, error) {
	if fd == nil {
		return nil, fmt.Errorf("%w: nil FramebufDesc", driver.ErrInvalidArgument)
	}
	f := &customFramebuf{d: d}
	g := newBindingGuard(d.ctx, &d.feat)
	defer g.restore()
	if err := f.initialize(fd); err != nil {
		return nil, err
	}
	return f, nil
}

// initialize realizes the framebuffer described by fd.
// It must be called exactly once; further calls fail with
// driver.ErrInitialized and leave the framebuffer as it
// was. The caller is responsible for guarding bindings.
func (f *customFramebuf) initialize(fd *driver.FramebufDesc) error {
	if f.init {
		return driver.ErrInitialized
	}
	if err := fd.Validate(); err != nil {
		return err
	}
	indices := fd.ColorIndices()
	if n := f.d.lim.MaxColorTargets; len(indices) > 0 && indices[len(indices)-1] >= n {
		return fmt.Errorf("%w: color attachment index exceeds MaxColorTargets", driver.ErrInvalidArgument)
	}

	// A lone implicit color attachment means that the
	// context's current target is the storage; there is
	// nothing to attach and no framebuffer object.
	if len(indices) == 1 && fd.Colors[indices[0]].Texture.Implicit() {
		if fd.Depth.Texture != nil || fd.Stencil.Texture != nil {
			return fmt.Errorf("%w: implicit storage cannot be combined with other attachments",
				driver.ErrInvalidArgument)
		}
		w, h := fd.Colors[indices[0]].Texture.Size()
		f.desc = *fd
		f.desc.Colors = maps.Clone(fd.Colors)
		f.indices = indices
		f.vport = fullViewport(w, h)
		f.implicit = true
		f.init = true
		return nil
	}

	texes := make(map[int]*texture, len(indices))
	for _, i := range indices {
		tx, err := f.d.backendTex(fd.Colors[i].Texture)
		if err != nil {
			return err
		}
		texes[i] = tx
	}
	var depth, stencil *texture
	var err error
	if fd.Depth.Texture != nil {
		if depth, err = f.d.backendTex(fd.Depth.Texture); err != nil {
			return err
		}
	}
	if fd.Stencil.Texture != nil {
		if stencil, err = f.d.backendTex(fd.Stencil.Texture); err != nil {
			return err
		}
	}

	ctx := f.d.ctx
	name := ctx.GenFramebuffer()
	ctx.BindFramebuffer(FRAMEBUFFER, name)
	for _, i := range indices {
		texes[i].attachColor(FRAMEBUFFER, i, writeParams())
	}
	if depth != nil {
		depth.attachDepthStencil(FRAMEBUFFER, writeParams())
	}
	if stencil != nil && stencil != depth {
		stencil.attachDepthStencil(FRAMEBUFFER, writeParams())
	}
	if len(indices) > 0 && f.d.feat.drawBuffers {
		bufs := make([]Enum, len(indices))
		for k, i := range indices {
			bufs[k] = colorAttachment(i)
		}
		ctx.DrawBuffers(bufs)
	}
	if status := ctx.CheckFramebufferStatus(FRAMEBUFFER); status != FRAMEBUFFER_COMPLETE {
		ctx.DeleteFramebuffer(name)
		return fmt.Errorf("%w: %s (0x%x)", driver.ErrIncomplete, convStatus(status), uint32(status))
	}

	// Companion framebuffer targeting the resolve
	// textures. Validate guarantees all-or-none.
	var resolve *customFramebuf
	if len(indices) > 0 && fd.Colors[indices[0]].Resolve != nil {
		rd := driver.FramebufDesc{
			Colors: make(map[int]driver.AttachDesc, len(indices)),
			Mode:   fd.Mode,
		}
		for _, i := range indices {
			rd.Colors[i] = driver.AttachDesc{Texture: fd.Colors[i].Resolve}
		}
		if fd.Depth.Resolve != nil {
			rd.Depth = driver.AttachDesc{Texture: fd.Depth.Resolve}
		}
		resolve = &customFramebuf{d: f.d}
		if err := resolve.initialize(&rd); err != nil {
			ctx.DeleteFramebuffer(name)
			return fmt.Errorf("resolve framebuffer: %w", err)
		}
	}

	if fd.Name != "" && f.d.feat.debugLabel {
		ctx.ObjectLabel(FRAMEBUFFER, name, fd.Name)
	}

	f.name = name
	f.desc = *fd
	f.desc.Colors = maps.Clone(fd.Colors)
	f.indices = indices
	f.resolve = resolve
	f.vport = f.attachmentViewport()
	f.init = true
	return nil
}

// attachmentViewport derives the full viewport from the
// first live attachment.
func (f *customFramebuf) attachmentViewport() driver.Viewport {
	for _, i := range f.indices {
		w, h := f.desc.Colors[i].Texture.Size()
		return fullViewport(w, h)
	}
	if f.desc.Depth.Texture != nil {
		w, h := f.desc.Depth.Texture.Size()
		return fullViewport(w, h)
	}
	if f.desc.Stencil.Texture != nil {
		w, h := f.desc.Stencil.Texture.Size()
		return fullViewport(w, h)
	}
	return driver.Viewport{Zfar: 1}
}

// hasStencil reports whether any attachment carries a
// stencil aspect.
func (f *customFramebuf) hasStencil() bool {
	if f.desc.Stencil.Texture != nil {
		return true
	}
	d := f.desc.Depth.Texture
	return d != nil && d.Format().Props().Stencil
}

// storeOf returns the pass's store operation for the color
// attachment at index i.
func (f *customFramebuf) storeOf(i int) driver.StoreOp {
	if f.hasPass && i < len(f.pass.Colors) {
		return f.pass.Colors[i].Store
	}
	return driver.SDontCare
}

// setCurColor records the sub-resource attached at color
// index i. The default selection is kept implicit.
func (f *customFramebuf) setCurColor(i int, p attachParams) {
	if p == (attachParams{}) {
		delete(f.curColor, i)
		return
	}
	if f.curColor == nil {
		f.curColor = make(map[int]attachParams)
	}
	f.curColor[i] = p
}

// bind makes the framebuffer current and applies the
// pass's load operations. The pass is cached so that
// unbind and resolveBlit can honor its store operations.
func (f *customFramebuf) bind(pass *driver.RenderPass) error {
	ctx := f.d.ctx
	if f.implicit {
		ctx.BindFramebuffer(FRAMEBUFFER, 0)
	} else {
		ctx.BindFramebuffer(FRAMEBUFFER, f.name)
		// Re-attach slots whose pass addresses a sub-resource
		// other than the one currently bound.
		for _, i := range f.indices {
			if p := passColorParams(pass, i, f.desc.Mode); p != f.curColor[i] {
				if tx, err := f.d.backendTex(f.desc.Colors[i].Texture); err == nil {
					tx.attachColor(FRAMEBUFFER, i, p)
					f.setCurColor(i, p)
				}
			}
		}
		if f.desc.Depth.Texture != nil {
			if p := passDepthParams(pass, f.desc.Mode); p != f.curDepth {
				if tx, err := f.d.backendTex(f.desc.Depth.Texture); err == nil {
					tx.attachDepthStencil(FRAMEBUFFER, p)
					f.curDepth = p
				}
			}
		}
	}

	f.pass = *pass
	f.pass.Colors = slices.Clone(pass.Colors)
	f.hasPass = true

	// Clears only land when the corresponding write
	// masks are on, so force them on first.
	var mask Enum
	for _, i := range f.indices {
		if i >= len(pass.Colors) || pass.Colors[i].Load != driver.LClear {
			continue
		}
		c := pass.Colors[i].Clear
		ctx.ColorMask(true, true, true, true)
		ctx.ClearColor(c[0], c[1], c[2], c[3])
		mask |= COLOR_BUFFER_BIT
	}
	if f.desc.Depth.Texture != nil && pass.Depth.Load == driver.LClear {
		ctx.DepthMask(true)
		ctx.ClearDepth(pass.Depth.Clear)
		mask |= DEPTH_BUFFER_BIT
	}
	if f.hasStencil() && pass.Stencil.Load == driver.LClear {
		ctx.StencilMask(0xff)
		ctx.ClearStencil(int(pass.Stencil.Clear))
		mask |= STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		ctx.Clear(mask)
	}

	if f.hasStencil() {
		ctx.Enable(STENCIL_TEST)
		f.stencilOn = true
	}
	return nil
}

// unbind applies the cached pass's store operations.
// Attachments whose contents need not outlive the pass are
// handed to the driver as discard hints.
func (f *customFramebuf) unbind() {
	ctx := f.d.ctx
	if f.d.feat.invalidate && f.hasPass && !f.implicit {
		var att []Enum
		if _, ok := f.desc.Colors[0]; ok && len(f.pass.Colors) > 0 {
			if op := f.pass.Colors[0].Store; op != driver.SStore {
				att = append(att, COLOR_ATTACHMENT0)
			}
		}
		if f.desc.Depth.Texture != nil && f.pass.Depth.Store != driver.SStore {
			att = append(att, DEPTH_ATTACHMENT)
		}
		if f.hasStencil() && f.pass.Stencil.Store != driver.SStore {
			att = append(att, STENCIL_ATTACHMENT)
		}
		if len(att) > 0 {
			// A preceding resolve leaves its companion
			// bound, so bind the pass's own target again.
			ctx.BindFramebuffer(FRAMEBUFFER, f.name)
			ctx.InvalidateFramebuffer(FRAMEBUFFER, att)
		}
	}
	if f.stencilOn {
		ctx.Disable(STENCIL_TEST)
		f.stencilOn = false
	}
}

// resolveBlit resolves multisample color attachments into
// the companion framebuffer, attachment by attachment.
// Only attachments whose store operation requests a
// resolve take part when a pass is cached.
func (f *customFramebuf) resolveBlit() {
	if f.resolve == nil {
		return
	}
	ctx := f.d.ctx
	w := int(f.vport.Width)
	h := int(f.vport.Height)
	ctx.BindFramebuffer(READ_FRAMEBUFFER, f.name)
	ctx.BindFramebuffer(DRAW_FRAMEBUFFER, f.resolve.name)
	for _, i := range f.indices {
		if f.hasPass && f.storeOf(i) != driver.SResolve {
			continue
		}
		ctx.ReadBuffer(colorAttachment(i))
		// The blit writes to every draw buffer, so
		// narrow the list to the one being resolved.
		ctx.DrawBuffers([]Enum{colorAttachment(i)})
		ctx.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, COLOR_BUFFER_BIT, NEAREST)
	}
	if f.desc.Depth.Resolve != nil && (!f.hasPass || f.pass.Depth.Store == driver.SResolve) {
		ctx.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, DEPTH_BUFFER_BIT, NEAREST)
	}
	// Put the resolve framebuffer's draw buffer list
	// back the way its realization left it.
	if len(f.resolve.indices) > 0 && f.d.feat.drawBuffers {
		bufs := make([]Enum, len(f.resolve.indices))
		for k, i := range f.resolve.indices {
			bufs[k] = colorAttachment(i)
		}
		ctx.DrawBuffers(bufs)
	}
}

func (f *customFramebuf) drv() *Driver { return f.d }

// Destroy destroys the framebuffer.
// Attached textures are client-owned and are unaffected.
func (f *customFramebuf) Destroy() {
	if f == nil {
		return
	}
	if f.resolve != nil {
		f.resolve.Destroy()
	}
	if f.name != 0 {
		f.d.ctx.DeleteFramebuffer(f.name)
	}
	*f = customFramebuf{}
}

// Viewport returns the viewport covering the framebuffer.
func (f *customFramebuf) Viewport() driver.Viewport { return f.vport }

// Mode returns the framebuffer's mode.
func (f *customFramebuf) Mode() driver.FramebufMode { return f.desc.Mode }

// ColorIndices returns the color attachment indices in
// ascending order.
func (f *customFramebuf) ColorIndices() []int { return slices.Clone(f.indices) }

// Color returns the color attachment at index i.
func (f *customFramebuf) Color(i int) driver.Texture {
	if c, ok := f.desc.Colors[i]; ok {
		return c.Texture
	}
	return nil
}

// ResolveColor returns the resolve texture of the color
// attachment at index i.
func (f *customFramebuf) ResolveColor(i int) driver.Texture {
	if c, ok := f.desc.Colors[i]; ok {
		return c.Resolve
	}
	return nil
}

// Depth returns the depth attachment.
func (f *customFramebuf) Depth() driver.Texture { return f.desc.Depth.Texture }

// ResolveDepth returns the resolve texture of the depth
// attachment.
func (f *customFramebuf) ResolveDepth() driver.Texture { return f.desc.Depth.Resolve }

// Stencil returns the stencil attachment.
func (f *customFramebuf) Stencil() driver.Texture { return f.desc.Stencil.Texture }

// UpdateDrawable exchanges color attachment slot 0.
func (f *customFramebuf) UpdateDrawable(color driver.Texture) error {
	return f.updateSurfaces(driver.SurfaceTextures{Color: color}, false)
}

// UpdateSurfaces exchanges color attachment slot 0 and the
// depth attachment.
func (f *customFramebuf) UpdateSurfaces(st driver.SurfaceTextures) error {
	return f.updateSurfaces(st, true)
}

func (f *customFramebuf) updateSurfaces(st driver.SurfaceTextures, withDepth bool) error {
	sameColor := f.desc.Colors[0].Texture == st.Color
	sameDepth := !withDepth || f.desc.Depth.Texture == st.Depth
	if sameColor && sameDepth {
		return nil
	}
	if f.implicit {
		// There is nothing attached; just track the new
		// surface description.
		if st.Color != nil && !st.Color.Implicit() {
			return fmt.Errorf("%w: explicit texture on an implicit framebuffer", driver.ErrInvalidArgument)
		}
		f.swapSlots(st, withDepth, sameColor, sameDepth)
		return nil
	}

	ctx := f.d.ctx
	g := newBindingGuard(ctx, &f.d.feat)
	defer g.restore()
	ctx.BindFramebuffer(FRAMEBUFFER, f.name)

	if !sameColor {
		if cur := f.desc.Colors[0].Texture; cur != nil && st.Color == nil {
			// Detach, preserving the texture's contents,
			// and leave the slot empty.
			if tx, err := f.d.backendTex(cur); err == nil {
				tx.detachColor(FRAMEBUFFER, 0, true)
			}
		}
		if st.Color != nil {
			tx, err := f.d.backendTex(st.Color)
			if err != nil {
				return err
			}
			tx.attachColor(FRAMEBUFFER, 0, writeParams())
		}
	}
	if withDepth && !sameDepth {
		if cur := f.desc.Depth.Texture; cur != nil && st.Depth == nil {
			if tx, err := f.d.backendTex(cur); err == nil {
				tx.detachDepthStencil(FRAMEBUFFER)
			}
		}
		if st.Depth != nil {
			tx, err := f.d.backendTex(st.Depth)
			if err != nil {
				return err
			}
			tx.attachDepthStencil(FRAMEBUFFER, writeParams())
		}
	}
	f.swapSlots(st, withDepth, sameColor, sameDepth)
	return nil
}

// swapSlots updates the descriptor and dependent state
// after a drawable exchange.
func (f *customFramebuf) swapSlots(st driver.SurfaceTextures, withDepth, sameColor, sameDepth bool) {
	if !sameColor {
		delete(f.curColor, 0)
		if st.Color == nil {
			delete(f.desc.Colors, 0)
		} else {
			if f.desc.Colors == nil {
				f.desc.Colors = make(map[int]driver.AttachDesc, 1)
			}
			c := f.desc.Colors[0]
			c.Texture = st.Color
			f.desc.Colors[0] = c
			w, h := st.Color.Size()
			f.vport = fullViewport(w, h)
		}
		f.indices = f.desc.ColorIndices()
	}
	if withDepth && !sameDepth {
		f.curDepth = attachParams{}
		f.desc.Depth.Texture = st.Depth
	}
}

// readTarget returns the binding target used for readback.
func readTarget(feat *features) Enum {
	if feat.readDrawFB {
		return READ_FRAMEBUFFER
	}
	return FRAMEBUFFER
}

// bindForRead binds the framebuffer for reading and points
// the read buffer at the sub-resource selected by rng.
func (f *customFramebuf) bindForRead(rng driver.TexRange) {
	ctx := f.d.ctx
	target := readTarget(&f.d.feat)
	if f.implicit {
		ctx.BindFramebuffer(target, 0)
		return
	}
	ctx.BindFramebuffer(target, f.name)
	if len(f.indices) > 0 {
		i := f.indices[0]
		if p := readParams(rng); p != f.curColor[i] {
			if tx, err := f.d.backendTex(f.desc.Colors[i].Texture); err == nil {
				tx.attachColor(target, i, p)
				f.setCurColor(i, p)
			}
		}
		// Contexts without multiple render targets read
		// from their sole color attachment already.
		if f.d.feat.drawBuffers {
			ctx.ReadBuffer(colorAttachment(i))
		}
	}
}

// packPixelStore narrows PACK_* state for a readback of
// rowBytes-sized rows and returns a function restoring the
// defaults.
func packPixelStore(ctx Context, feat *features, rowBytes, pixelBytes, width int) (func(), error) {
	align := 8
	for rowBytes%align != 0 {
		align >>= 1
	}
	ctx.PixelStorei(PACK_ALIGNMENT, align)
	rowLen := 0
	if rowBytes != pixelBytes*width {
		if !feat.packRowLen {
			ctx.PixelStorei(PACK_ALIGNMENT, 4)
			return nil, fmt.Errorf("%w: readback row pitch", driver.ErrUnsupported)
		}
		if rowBytes%pixelBytes != 0 {
			ctx.PixelStorei(PACK_ALIGNMENT, 4)
			return nil, fmt.Errorf("%w: bytesPerRow is not a multiple of the pixel size", driver.ErrInvalidArgument)
		}
		rowLen = rowBytes / pixelBytes
		ctx.PixelStorei(PACK_ROW_LENGTH, rowLen)
	}
	return func() {
		ctx.PixelStorei(PACK_ALIGNMENT, 4)
		if rowLen != 0 {
			ctx.PixelStorei(PACK_ROW_LENGTH, 0)
		}
	}, nil
}

// readPixelsArgs resolves the external format/type pair
// and row layout for a readback of tex within rng.
func readPixelsArgs(feat *features, tex driver.Texture, rng *driver.TexRange, bytesPerRow int) (format, typ Enum, rowBytes int, err error) {
	if err = rng.Validate(); err != nil {
		return
	}
	if rng.Layers != 1 || rng.Levels != 1 || rng.Faces != 1 {
		err = fmt.Errorf("%w: readback addresses a single sub-resource", driver.ErrInvalidArgument)
		return
	}
	props := tex.Format().Props()
	switch {
	case props.Depth || props.Stencil:
		err = fmt.Errorf("%w: depth/stencil readback", driver.ErrUnsupported)
		return
	case props.Integer && !feat.integerTex:
		err = fmt.Errorf("%w: integer readback", driver.ErrUnsupported)
		return
	}
	if props.Integer {
		// Integer targets read back through the
		// RGBA_INTEGER/UNSIGNED_INT pair.
		format, typ = RGBA_INTEGER, UNSIGNED_INT
	} else {
		// The RGBA/UNSIGNED_BYTE pair is valid for every
		// normalized color target.
		format, typ = RGBA, UNSIGNED_BYTE
	}
	rowBytes = bytesPerRow
	if rowBytes == 0 {
		rowBytes = props.Size * rng.Width
	}
	return
}

// CopyBytesColor reads pixels of the color attachment at
// index i back into dst.
// Only attachment 0 supports readback in this driver.
func (f *customFramebuf) CopyBytesColor(i int, dst []byte, rng driver.TexRange, bytesPerRow int) error {
	if i != 0 {
		return fmt.Errorf("%w: readback is limited to color attachment 0", driver.ErrUnsupported)
	}
	tex := f.Color(0)
	if tex == nil {
		return fmt.Errorf("%w: no color attachment at index 0", driver.ErrInvalidArgument)
	}
	format, typ, rowBytes, err := readPixelsArgs(&f.d.feat, tex, &rng, bytesPerRow)
	if err != nil {
		return err
	}
	if len(dst) < rowBytes*rng.Height {
		return fmt.Errorf("%w: destination holds fewer than %d bytes", driver.ErrInvalidArgument, rowBytes*rng.Height)
	}

	ctx := f.d.ctx
	g := newBindingGuard(ctx, &f.d.feat)
	defer g.restore()

	// Pending writes must land before reading back, and a
	// throwaway framebuffer keeps the read binding away
	// from client state.
	tmp := &customFramebuf{d: f.d}
	err = tmp.initialize(&driver.FramebufDesc{
		Colors: map[int]driver.AttachDesc{0: {Texture: tex}},
	})
	if err != nil {
		return err
	}
	defer tmp.Destroy()
	tmp.bindForRead(rng)
	ctx.Flush()

	restore, err := packPixelStore(ctx, &f.d.feat, rowBytes, tex.Format().Props().Size, rng.Width)
	if err != nil {
		return err
	}
	defer restore()
	ctx.ReadPixels(rng.X, rng.Y, rng.Width, rng.Height, format, typ, dst)
	return checkContextError(ctx)
}

// CopyBytesDepth reads back the depth attachment.
// The underlying API cannot express it; use a depth
// readback pass instead.
func (f *customFramebuf) CopyBytesDepth(dst []byte, rng driver.TexRange, bytesPerRow int) error {
	return fmt.Errorf("%w: depth readback", driver.ErrUnsupported)
}

// CopyBytesStencil reads back the stencil attachment.
// The underlying API cannot express it.
func (f *customFramebuf) CopyBytesStencil(dst []byte, rng driver.TexRange, bytesPerRow int) error {
	return fmt.Errorf("%w: stencil readback", driver.ErrUnsupported)
}

// CopyTextureColor copies pixels of the color attachment
// at index i within rng into dst.
func (f *customFramebuf) CopyTextureColor(i int, dst driver.Texture, rng driver.TexRange) error {
	if i != 0 {
		return fmt.Errorf("%w: copy is limited to color attachment 0", driver.ErrUnsupported)
	}
	if f.Color(0) == nil {
		return fmt.Errorf("%w: no color attachment at index 0", driver.ErrInvalidArgument)
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
	f.bindForRead(rng)
	ctx.Flush()
	ctx.BindTexture(tx.target, tx.name)
	ctx.CopyTexSubImage2D(tx.target, rng.Level, 0, 0, rng.X, rng.Y, rng.Width, rng.Height)
	return checkContextError(ctx)
}
