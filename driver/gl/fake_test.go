// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"errors"
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// fakeContext implements Context in memory.
// Color storage is backed by NRGBA images so that clears,
// blits and readback can be checked pixel by pixel.
// Depth and stencil contents are not modeled; operations
// on them only update bookkeeping.
type fakeContext struct {
	version string
	exts    []string
	limits  map[Enum]int

	names uint32
	fbs   map[uint32]*fakeFramebuffer
	rbs   map[uint32]*fakeRenderbuffer
	texs  map[uint32]*fakeTexture

	readFB   uint32
	drawFB   uint32
	rbBound  uint32
	texBound map[Enum]uint32

	caps      map[Enum]bool
	vp        [4]int
	depthRng  [2]float32
	sciss     [4]int
	clearCol  [4]float32
	clearDep  float32
	clearSten int
	colMask   [4]bool
	depMask   bool
	stenMask  uint32
	pack      map[Enum]int

	surface    *image.NRGBA
	presented  int
	presentErr error

	// Completeness overrides, keyed by framebuffer name.
	status map[uint32]Enum
	errq   []Enum

	invalidations []fakeInvalidation
	labels        map[[2]uint32]string
	groups        []string
	markers       []string
	barriers      int
	flushes       int
	finishes      int
	clears        int
	lastClearMask Enum
}

type fakeInvalidation struct {
	target Enum
	atts   []Enum
}

type fakeFramebuffer struct {
	def      bool
	color    map[int]fakeAttachment
	depth    fakeAttachment
	stencil  fakeAttachment
	drawBufs []Enum
	readBuf  Enum
}

// fakeAttachment records what FramebufferTexture2D and
// friends attached. The zero value means nothing attached.
type fakeAttachment struct {
	rb        bool
	name      uint32
	texTarget Enum
	level     int
	layer     int
	layered   bool
}

type fakeTexture struct {
	target    Enum
	internal  Enum
	w, h      int
	levels    int
	layers    int
	samples   int
	immutable bool
	imgs      map[int]*image.NRGBA
}

func (t *fakeTexture) img(level int) *image.NRGBA {
	if t.imgs == nil {
		t.imgs = make(map[int]*image.NRGBA)
	}
	if m := t.imgs[level]; m != nil {
		return m
	}
	w, h := t.w>>level, t.h>>level
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	t.imgs[level] = m
	return m
}

type fakeRenderbuffer struct {
	internal Enum
	w, h     int
	samples  int
	m        *image.NRGBA
}

func (r *fakeRenderbuffer) img() *image.NRGBA {
	if r.m == nil {
		r.m = image.NewNRGBA(image.Rect(0, 0, r.w, r.h))
	}
	return r.m
}

// newFake creates a context reporting the given version
// and extension strings. It has no display surface; see
// withSurface.
func newFake(version string, exts ...string) *fakeContext {
	return &fakeContext{
		version:  version,
		exts:     exts,
		fbs:      map[uint32]*fakeFramebuffer{0: {def: true, readBuf: BACK}},
		rbs:      make(map[uint32]*fakeRenderbuffer),
		texs:     make(map[uint32]*fakeTexture),
		texBound: make(map[Enum]uint32),
		caps:     make(map[Enum]bool),
		colMask:  [4]bool{true, true, true, true},
		depMask:  true,
		stenMask: ^uint32(0),
		pack:     map[Enum]int{PACK_ALIGNMENT: 4},
		status:   make(map[uint32]Enum),
		labels:   make(map[[2]uint32]string),
		limits: map[Enum]int{
			MAX_TEXTURE_SIZE:          8192,
			MAX_CUBE_MAP_TEXTURE_SIZE: 8192,
			MAX_ARRAY_TEXTURE_LAYERS:  256,
			MAX_COLOR_ATTACHMENTS:     8,
			MAX_RENDERBUFFER_SIZE:     8192,
			MAX_SAMPLES:               8,
			MAX_FRAMEBUFFER_WIDTH:     16384,
			MAX_FRAMEBUFFER_HEIGHT:    16384,
			MAX_FRAMEBUFFER_LAYERS:    2048,
		},
	}
}

// withSurface gives the default framebuffer a w x h back
// buffer.
func (c *fakeContext) withSurface(w, h int) *fakeContext {
	c.surface = image.NewNRGBA(image.Rect(0, 0, w, h))
	c.vp = [4]int{0, 0, w, h}
	return c
}

func (c *fakeContext) pushErr(code Enum) { c.errq = append(c.errq, code) }

func (c *fakeContext) boundFB(target Enum) *fakeFramebuffer {
	if target == READ_FRAMEBUFFER {
		return c.fbs[c.readFB]
	}
	return c.fbs[c.drawFB]
}

func (fb *fakeFramebuffer) drawBuffers() []Enum {
	if len(fb.drawBufs) > 0 {
		return fb.drawBufs
	}
	if fb.def {
		return []Enum{BACK}
	}
	return []Enum{COLOR_ATTACHMENT0}
}

func (c *fakeContext) setAttachment(fb *fakeFramebuffer, attachment Enum, att fakeAttachment) {
	switch {
	case attachment >= COLOR_ATTACHMENT0 && attachment < COLOR_ATTACHMENT0+32:
		i := int(attachment - COLOR_ATTACHMENT0)
		if att.name == 0 {
			delete(fb.color, i)
		} else {
			if fb.color == nil {
				fb.color = make(map[int]fakeAttachment)
			}
			fb.color[i] = att
		}
	case attachment == DEPTH_ATTACHMENT:
		fb.depth = att
	case attachment == STENCIL_ATTACHMENT:
		fb.stencil = att
	case attachment == DEPTH_STENCIL_ATTACHMENT:
		fb.depth = att
		fb.stencil = att
	default:
		c.pushErr(INVALID_ENUM)
	}
}

// attImage resolves the color storage behind a draw/read
// buffer selection of fb.
func (c *fakeContext) attImage(fb *fakeFramebuffer, buf Enum) *image.NRGBA {
	if fb == nil || buf == NONE {
		return nil
	}
	if fb.def {
		if buf == BACK {
			return c.surface
		}
		return nil
	}
	if buf < COLOR_ATTACHMENT0 || buf >= COLOR_ATTACHMENT0+32 {
		return nil
	}
	att := fb.color[int(buf-COLOR_ATTACHMENT0)]
	switch {
	case att.name == 0:
		return nil
	case att.rb:
		if r := c.rbs[att.name]; r != nil {
			return r.img()
		}
	default:
		if t := c.texs[att.name]; t != nil {
			return t.img(att.level)
		}
	}
	return nil
}

// attDims returns the dimensions and sample count of an
// attachment's storage.
func (c *fakeContext) attDims(att fakeAttachment) (w, h, samples int, ok bool) {
	switch {
	case att.name == 0:
		return 0, 0, 0, false
	case att.rb:
		if r := c.rbs[att.name]; r != nil {
			return r.w, r.h, max(r.samples, 1), true
		}
	default:
		if t := c.texs[att.name]; t != nil {
			return t.w >> att.level, t.h >> att.level, max(t.samples, 1), true
		}
	}
	return 0, 0, 0, false
}

func (c *fakeContext) GenFramebuffer() uint32 {
	c.names++
	c.fbs[c.names] = &fakeFramebuffer{readBuf: COLOR_ATTACHMENT0}
	return c.names
}

func (c *fakeContext) DeleteFramebuffer(fb uint32) {
	delete(c.fbs, fb)
	if c.drawFB == fb {
		c.drawFB = 0
	}
	if c.readFB == fb {
		c.readFB = 0
	}
}

func (c *fakeContext) BindFramebuffer(target Enum, fb uint32) {
	if c.fbs[fb] == nil {
		c.fbs[fb] = &fakeFramebuffer{readBuf: COLOR_ATTACHMENT0}
	}
	switch target {
	case FRAMEBUFFER:
		c.readFB, c.drawFB = fb, fb
	case READ_FRAMEBUFFER:
		c.readFB = fb
	case DRAW_FRAMEBUFFER:
		c.drawFB = fb
	default:
		c.pushErr(INVALID_ENUM)
	}
}

func (c *fakeContext) CheckFramebufferStatus(target Enum) Enum {
	name := c.drawFB
	if target == READ_FRAMEBUFFER {
		name = c.readFB
	}
	if s, ok := c.status[name]; ok {
		return s
	}
	fb := c.fbs[name]
	if fb == nil {
		return FRAMEBUFFER_UNDEFINED
	}
	if fb.def {
		if c.surface == nil {
			return FRAMEBUFFER_UNDEFINED
		}
		return FRAMEBUFFER_COMPLETE
	}
	var atts []fakeAttachment
	for _, a := range fb.color {
		atts = append(atts, a)
	}
	if fb.depth.name != 0 {
		atts = append(atts, fb.depth)
	}
	if fb.stencil.name != 0 {
		atts = append(atts, fb.stencil)
	}
	if len(atts) == 0 {
		return FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
	}
	w, h, samples := -1, -1, -1
	for _, a := range atts {
		aw, ah, as, ok := c.attDims(a)
		if !ok {
			return FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		if w == -1 {
			w, h, samples = aw, ah, as
			continue
		}
		if aw != w || ah != h {
			return FRAMEBUFFER_INCOMPLETE_DIMENSIONS
		}
		if as != samples {
			return FRAMEBUFFER_INCOMPLETE_MULTISAMPLE
		}
	}
	return FRAMEBUFFER_COMPLETE
}

func (c *fakeContext) FramebufferTexture2D(target, attachment, textarget Enum, tex uint32, level int) {
	var att fakeAttachment
	if tex != 0 {
		att = fakeAttachment{name: tex, texTarget: textarget, level: level}
	}
	c.setAttachment(c.boundFB(target), attachment, att)
}

func (c *fakeContext) FramebufferTextureLayer(target, attachment Enum, tex uint32, level, layer int) {
	var att fakeAttachment
	if tex != 0 {
		att = fakeAttachment{name: tex, level: level, layer: layer, layered: true}
	}
	c.setAttachment(c.boundFB(target), attachment, att)
}

func (c *fakeContext) FramebufferRenderbuffer(target, attachment Enum, rb uint32) {
	var att fakeAttachment
	if rb != 0 {
		att = fakeAttachment{rb: true, name: rb}
	}
	c.setAttachment(c.boundFB(target), attachment, att)
}

func (c *fakeContext) InvalidateFramebuffer(target Enum, attachments []Enum) {
	atts := make([]Enum, len(attachments))
	copy(atts, attachments)
	c.invalidations = append(c.invalidations, fakeInvalidation{target, atts})
}

func (c *fakeContext) DrawBuffers(bufs []Enum) {
	fb := c.fbs[c.drawFB]
	fb.drawBufs = make([]Enum, len(bufs))
	copy(fb.drawBufs, bufs)
}

func (c *fakeContext) ReadBuffer(src Enum) {
	c.fbs[c.readFB].readBuf = src
}

func (c *fakeContext) GenRenderbuffer() uint32 {
	c.names++
	c.rbs[c.names] = &fakeRenderbuffer{}
	return c.names
}

func (c *fakeContext) DeleteRenderbuffer(rb uint32) {
	delete(c.rbs, rb)
	if c.rbBound == rb {
		c.rbBound = 0
	}
}

func (c *fakeContext) BindRenderbuffer(target Enum, rb uint32) {
	if rb != 0 && c.rbs[rb] == nil {
		c.rbs[rb] = &fakeRenderbuffer{}
	}
	c.rbBound = rb
}

func (c *fakeContext) RenderbufferStorage(target, internalformat Enum, width, height int) {
	r := c.rbs[c.rbBound]
	if r == nil {
		c.pushErr(INVALID_OPERATION)
		return
	}
	r.internal = internalformat
	r.w, r.h = width, height
	r.samples = 1
}

func (c *fakeContext) RenderbufferStorageMultisample(target Enum, samples int, internalformat Enum, width, height int) {
	c.RenderbufferStorage(target, internalformat, width, height)
	if r := c.rbs[c.rbBound]; r != nil {
		r.samples = samples
	}
}

func (c *fakeContext) GenTexture() uint32 {
	c.names++
	c.texs[c.names] = &fakeTexture{}
	return c.names
}

func (c *fakeContext) DeleteTexture(tex uint32) {
	delete(c.texs, tex)
}

func (c *fakeContext) BindTexture(target Enum, tex uint32) {
	if tex != 0 && c.texs[tex] == nil {
		c.texs[tex] = &fakeTexture{}
	}
	c.texBound[bindTarget(target)] = tex
}

// bindTarget maps cube faces onto the cube bind point.
func bindTarget(target Enum) Enum {
	if target >= TEXTURE_CUBE_MAP_POSITIVE_X && target < TEXTURE_CUBE_MAP_POSITIVE_X+6 {
		return TEXTURE_CUBE_MAP
	}
	return target
}

func (c *fakeContext) storage(target Enum, levels int, internal Enum, w, h, layers, samples int) {
	t := c.texs[c.texBound[bindTarget(target)]]
	if t == nil || t.immutable {
		c.pushErr(INVALID_OPERATION)
		return
	}
	t.target = bindTarget(target)
	t.internal = internal
	t.w, t.h = w, h
	t.levels = levels
	t.layers = layers
	t.samples = samples
	t.immutable = true
}

func (c *fakeContext) TexStorage2D(target Enum, levels int, internalformat Enum, width, height int) {
	c.storage(target, levels, internalformat, width, height, 1, 1)
}

func (c *fakeContext) TexStorage3D(target Enum, levels int, internalformat Enum, width, height, depth int) {
	c.storage(target, levels, internalformat, width, height, depth, 1)
}

func (c *fakeContext) TexStorage2DMultisample(target Enum, samples int, internalformat Enum, width, height int, fixedlocations bool) {
	c.storage(target, 1, internalformat, width, height, 1, samples)
}

func (c *fakeContext) ClearColor(r, g, b, a float32) { c.clearCol = [4]float32{r, g, b, a} }

func (c *fakeContext) ClearDepth(d float32) { c.clearDep = d }

func (c *fakeContext) ClearStencil(s int) { c.clearSten = s }

func (c *fakeContext) Clear(mask Enum) {
	c.clears++
	c.lastClearMask = mask
	if mask&COLOR_BUFFER_BIT == 0 {
		return
	}
	fb := c.fbs[c.drawFB]
	for _, b := range fb.drawBuffers() {
		if img := c.attImage(fb, b); img != nil {
			c.fillColor(img)
		}
	}
}

func (c *fakeContext) fillColor(img *image.NRGBA) {
	r := img.Rect
	if c.caps[SCISSOR_TEST] {
		box := image.Rect(c.sciss[0], c.sciss[1], c.sciss[0]+c.sciss[2], c.sciss[1]+c.sciss[3])
		r = r.Intersect(box)
	}
	var px [4]uint8
	for i, v := range c.clearCol {
		px[i] = uint8(v*255 + 0.5)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			o := img.PixOffset(x, y)
			for i := 0; i < 4; i++ {
				if c.colMask[i] {
					img.Pix[o+i] = px[i]
				}
			}
		}
	}
}

func (c *fakeContext) ColorMask(r, g, b, a bool) { c.colMask = [4]bool{r, g, b, a} }

func (c *fakeContext) DepthMask(m bool) { c.depMask = m }

func (c *fakeContext) StencilMask(m uint32) { c.stenMask = m }

func (c *fakeContext) Enable(cap Enum) { c.caps[cap] = true }

func (c *fakeContext) Disable(cap Enum) { c.caps[cap] = false }

func (c *fakeContext) IsEnabled(cap Enum) bool { return c.caps[cap] }

func (c *fakeContext) Viewport(x, y, width, height int) { c.vp = [4]int{x, y, width, height} }

func (c *fakeContext) DepthRangef(n, f float32) { c.depthRng = [2]float32{n, f} }

func (c *fakeContext) Scissor(x, y, width, height int) { c.sciss = [4]int{x, y, width, height} }

func (c *fakeContext) PixelStorei(pname Enum, v int) { c.pack[pname] = v }

func (c *fakeContext) ReadPixels(x, y, width, height int, format, typ Enum, data []byte) {
	fb := c.fbs[c.readFB]
	img := c.attImage(fb, fb.readBuf)
	if img == nil {
		c.pushErr(INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	align := c.pack[PACK_ALIGNMENT]
	if align == 0 {
		align = 4
	}
	pitch := width
	if n := c.pack[PACK_ROW_LENGTH]; n > 0 {
		pitch = n
	}
	rowBytes := (pitch*4 + align - 1) / align * align
	for row := 0; row < height; row++ {
		src := img.PixOffset(x, y+row)
		dst := row * rowBytes
		if dst+width*4 > len(data) || src+width*4 > len(img.Pix) {
			c.pushErr(INVALID_VALUE)
			return
		}
		copy(data[dst:dst+width*4], img.Pix[src:src+width*4])
	}
}

func (c *fakeContext) CopyTexSubImage2D(target Enum, level, xoffset, yoffset, x, y, width, height int) {
	fb := c.fbs[c.readFB]
	src := c.attImage(fb, fb.readBuf)
	t := c.texs[c.texBound[bindTarget(target)]]
	if src == nil || t == nil {
		c.pushErr(INVALID_FRAMEBUFFER_OPERATION)
		return
	}
	dst := t.img(level)
	xdraw.Draw(dst, image.Rect(xoffset, yoffset, xoffset+width, yoffset+height), src, image.Pt(x, y), xdraw.Src)
}

func (c *fakeContext) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask, filter Enum) {
	if mask&COLOR_BUFFER_BIT == 0 {
		return
	}
	rfb := c.fbs[c.readFB]
	src := c.attImage(rfb, rfb.readBuf)
	if src == nil {
		return
	}
	dfb := c.fbs[c.drawFB]
	var scaler xdraw.Interpolator = xdraw.NearestNeighbor
	if filter == LINEAR {
		scaler = xdraw.ApproxBiLinear
	}
	for _, b := range dfb.drawBuffers() {
		if dst := c.attImage(dfb, b); dst != nil {
			sr := image.Rect(sx0, sy0, sx1, sy1)
			dr := image.Rect(dx0, dy0, dx1, dy1)
			scaler.Scale(dst, dr, src, sr, xdraw.Src, nil)
		}
	}
}

func (c *fakeContext) GetInteger(pname Enum) int {
	switch pname {
	case FRAMEBUFFER_BINDING:
		return int(c.drawFB)
	case READ_FRAMEBUFFER_BINDING:
		return int(c.readFB)
	case RENDERBUFFER_BINDING:
		return int(c.rbBound)
	case NUM_EXTENSIONS:
		return len(c.exts)
	case PACK_ALIGNMENT, PACK_ROW_LENGTH:
		return c.pack[pname]
	}
	return c.limits[pname]
}

func (c *fakeContext) GetInteger4(pname Enum) [4]int {
	switch pname {
	case VIEWPORT:
		return c.vp
	case MAX_VIEWPORT_DIMS:
		return [4]int{16384, 16384, 0, 0}
	}
	return [4]int{}
}

func (c *fakeContext) GetString(pname Enum) string {
	switch pname {
	case VERSION:
		return c.version
	case EXTENSIONS:
		return strings.Join(c.exts, " ")
	case RENDERER, VENDOR:
		return "fake"
	}
	return ""
}

func (c *fakeContext) GetStringi(pname Enum, i int) string {
	if pname == EXTENSIONS && i >= 0 && i < len(c.exts) {
		return c.exts[i]
	}
	return ""
}

func (c *fakeContext) GetError() Enum {
	if len(c.errq) == 0 {
		return NO_ERROR
	}
	code := c.errq[0]
	c.errq = c.errq[1:]
	return code
}

func (c *fakeContext) ObjectLabel(identifier Enum, name uint32, label string) {
	c.labels[[2]uint32{uint32(identifier), name}] = label
}

func (c *fakeContext) PushDebugGroup(msg string) { c.groups = append(c.groups, msg) }

func (c *fakeContext) PopDebugGroup() {
	if n := len(c.groups); n > 0 {
		c.groups = c.groups[:n-1]
	}
}

func (c *fakeContext) InsertDebugMarker(msg string) { c.markers = append(c.markers, msg) }

func (c *fakeContext) MemoryBarrier(barriers Enum) { c.barriers++ }

func (c *fakeContext) Flush() { c.flushes++ }

func (c *fakeContext) Finish() { c.finishes++ }

func (c *fakeContext) DrawableSize() (width, height int) {
	if c.surface == nil {
		return 0, 0
	}
	b := c.surface.Bounds()
	return b.Dx(), b.Dy()
}

func (c *fakeContext) Present() error {
	if c.surface == nil {
		return errors.New("fake: no display surface")
	}
	if c.presentErr != nil {
		return c.presentErr
	}
	c.presented++
	return nil
}
