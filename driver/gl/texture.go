// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"fmt"

	"github.com/gviegas/rhi/driver"
)

// texture implements driver.Texture.
// Storage is either a texture object or, for TTarget
// kinds, a renderbuffer.
type texture struct {
	d       *Driver
	name    uint32
	target  Enum
	rb      bool
	fmt     driver.TexFormat
	width   int
	height  int
	layers  int
	levels  int
	samples int
	usage   driver.Usage
}

// maxLevels returns the length of the full mip chain of a
// width x height texture.
func maxLevels(width, height int) int {
	n := 1
	for width > 1 || height > 1 {
		width >>= 1
		height >>= 1
		n++
	}
	return n
}

// NewTexture creates a new texture.
func (d *Driver) NewTexture(t *driver.TexDesc) (driver.Texture, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil TexDesc", driver.ErrInvalidArgument)
	}
	desc := *t
	if desc.Layers == 0 {
		desc.Layers = 1
	}
	if desc.Levels == 0 {
		desc.Levels = 1
	}
	if desc.Samples == 0 {
		desc.Samples = 1
	}
	switch {
	case desc.Format == driver.FInvalid:
		return nil, fmt.Errorf("%w: invalid texture format", driver.ErrInvalidArgument)
	case desc.Format.Props().Integer && !d.feat.integerTex:
		return nil, fmt.Errorf("%w: integer texture formats", driver.ErrUnsupported)
	case desc.Width < 1 || desc.Height < 1:
		return nil, fmt.Errorf("%w: texture extent is zero or negative", driver.ErrInvalidArgument)
	case desc.Width > d.lim.MaxSize2D || desc.Height > d.lim.MaxSize2D:
		return nil, fmt.Errorf("%w: texture extent exceeds MaxSize2D", driver.ErrInvalidArgument)
	case desc.Layers < 1 || desc.Layers > d.lim.MaxLayers:
		return nil, fmt.Errorf("%w: invalid layer count", driver.ErrInvalidArgument)
	case desc.Levels < 1 || desc.Levels > maxLevels(desc.Width, desc.Height):
		return nil, fmt.Errorf("%w: invalid level count", driver.ErrInvalidArgument)
	case desc.Samples < 1 || desc.Samples&(desc.Samples-1) != 0:
		return nil, fmt.Errorf("%w: sample count must be a power of two", driver.ErrInvalidArgument)
	case desc.Samples > 1 && desc.Levels > 1:
		return nil, fmt.Errorf("%w: multisample textures cannot have mip levels", driver.ErrInvalidArgument)
	case desc.Samples > 1 && !d.feat.msaaTarget:
		return nil, fmt.Errorf("%w: multisample render targets", driver.ErrUnsupported)
	case desc.Samples > d.lim.MaxSamples:
		return nil, fmt.Errorf("%w: sample count exceeds MaxSamples", driver.ErrUnsupported)
	case desc.Kind != driver.TTarget && !d.feat.texStorage:
		return nil, fmt.Errorf("%w: immutable texture storage", driver.ErrUnsupported)
	}

	tex := texture{
		d:       d,
		fmt:     desc.Format,
		width:   desc.Width,
		height:  desc.Height,
		layers:  desc.Layers,
		levels:  desc.Levels,
		samples: desc.Samples,
		usage:   desc.Usage,
	}
	internal, _, _ := convTexFormat(desc.Format)
	ctx := d.ctx

	switch desc.Kind {
	case driver.T2D:
		if desc.Layers != 1 {
			return nil, fmt.Errorf("%w: layer count of a 2D texture must be 1", driver.ErrInvalidArgument)
		}
		tex.name = ctx.GenTexture()
		if desc.Samples > 1 {
			tex.target = TEXTURE_2D_MULTISAMPLE
			ctx.BindTexture(tex.target, tex.name)
			ctx.TexStorage2DMultisample(tex.target, desc.Samples, internal, desc.Width, desc.Height, true)
		} else {
			tex.target = TEXTURE_2D
			ctx.BindTexture(tex.target, tex.name)
			ctx.TexStorage2D(tex.target, desc.Levels, internal, desc.Width, desc.Height)
		}
	case driver.T2DArray:
		if desc.Samples != 1 {
			return nil, fmt.Errorf("%w: multisample array textures", driver.ErrUnsupported)
		}
		tex.name = ctx.GenTexture()
		tex.target = TEXTURE_2D_ARRAY
		ctx.BindTexture(tex.target, tex.name)
		ctx.TexStorage3D(tex.target, desc.Levels, internal, desc.Width, desc.Height, desc.Layers)
	case driver.TCube:
		switch {
		case desc.Width != desc.Height:
			return nil, fmt.Errorf("%w: cube textures must be square", driver.ErrInvalidArgument)
		case desc.Width > d.lim.MaxSizeCube:
			return nil, fmt.Errorf("%w: texture extent exceeds MaxSizeCube", driver.ErrInvalidArgument)
		case desc.Layers != 1 || desc.Samples != 1:
			return nil, fmt.Errorf("%w: cube texture arrays and samples", driver.ErrUnsupported)
		}
		tex.name = ctx.GenTexture()
		tex.target = TEXTURE_CUBE_MAP
		ctx.BindTexture(tex.target, tex.name)
		ctx.TexStorage2D(tex.target, desc.Levels, internal, desc.Width, desc.Height)
	case driver.TTarget:
		if desc.Layers != 1 || desc.Levels != 1 {
			return nil, fmt.Errorf("%w: render target storage has a single 2D sub-resource", driver.ErrInvalidArgument)
		}
		g := newBindingGuard(ctx, &d.feat)
		defer g.restore()
		tex.name = ctx.GenRenderbuffer()
		tex.target = RENDERBUFFER
		tex.rb = true
		ctx.BindRenderbuffer(RENDERBUFFER, tex.name)
		if desc.Samples > 1 {
			ctx.RenderbufferStorageMultisample(RENDERBUFFER, desc.Samples, internal, desc.Width, desc.Height)
		} else {
			ctx.RenderbufferStorage(RENDERBUFFER, internal, desc.Width, desc.Height)
		}
	default:
		return nil, fmt.Errorf("%w: unknown texture kind", driver.ErrInvalidArgument)
	}

	if err := checkContextError(ctx); err != nil {
		tex.release()
		return nil, err
	}
	if desc.Name != "" && d.feat.debugLabel {
		if tex.rb {
			ctx.ObjectLabel(RENDERBUFFER, tex.name, desc.Name)
		} else {
			ctx.ObjectLabel(TEXTURE, tex.name, desc.Name)
		}
	}
	return &tex, nil
}

// release deletes the GL object without zeroing t.
func (t *texture) release() {
	if t.name == 0 {
		return
	}
	if t.rb {
		t.d.ctx.DeleteRenderbuffer(t.name)
	} else {
		t.d.ctx.DeleteTexture(t.name)
	}
}

// Destroy destroys the texture.
func (t *texture) Destroy() {
	if t == nil {
		return
	}
	t.release()
	*t = texture{}
}

// Size returns the dimensions of mip level 0.
func (t *texture) Size() (width, height int) { return t.width, t.height }

// Format returns the pixel format.
func (t *texture) Format() driver.TexFormat { return t.fmt }

// Samples returns the sample count.
func (t *texture) Samples() int { return t.samples }

// Layers returns the number of array layers.
func (t *texture) Layers() int { return t.layers }

// Levels returns the number of mip levels.
func (t *texture) Levels() int { return t.levels }

// Implicit reports whether the storage is context-owned.
func (t *texture) Implicit() bool { return false }

// attachColor attaches the sub-resource selected by p to
// the color attachment point at index i of the framebuffer
// bound to target.
func (t *texture) attachColor(target Enum, i int, p attachParams) {
	t.attach(target, colorAttachment(i), p)
}

// attachDepthStencil attaches the sub-resource selected by
// p to the attachment point that t's format calls for.
func (t *texture) attachDepthStencil(target Enum, p attachParams) {
	t.attach(target, convAttachment(t.fmt), p)
}

func (t *texture) attach(target, point Enum, p attachParams) {
	ctx := t.d.ctx
	switch {
	case t.rb:
		ctx.FramebufferRenderbuffer(target, point, t.name)
	case t.target == TEXTURE_CUBE_MAP:
		face := TEXTURE_CUBE_MAP_POSITIVE_X + Enum(p.face)
		ctx.FramebufferTexture2D(target, point, face, t.name, p.level)
	case t.target == TEXTURE_2D_ARRAY:
		// Stereo passes address the eye layers directly.
		ctx.FramebufferTextureLayer(target, point, t.name, p.level, p.layer)
	default:
		ctx.FramebufferTexture2D(target, point, t.target, t.name, p.level)
	}
}

// detachColor breaks the color attachment at index i of
// the framebuffer bound to target.
// The texture's contents are unaffected; preserve is
// accepted for parity with drivers whose detach may
// discard otherwise.
func (t *texture) detachColor(target Enum, i int, preserve bool) {
	t.detach(target, colorAttachment(i))
}

// detachDepthStencil breaks the depth and/or stencil
// attachment of the framebuffer bound to target.
func (t *texture) detachDepthStencil(target Enum) {
	t.detach(target, convAttachment(t.fmt))
}

func (t *texture) detach(target, point Enum) {
	ctx := t.d.ctx
	if t.rb {
		ctx.FramebufferRenderbuffer(target, point, 0)
	} else {
		ctx.FramebufferTexture2D(target, point, TEXTURE_2D, 0, 0)
	}
}

// dummyTexture stands in for storage that the context owns
// implicitly, such as the back buffer of the default
// framebuffer. It carries size and format information only
// and cannot be attached nor detached.
type dummyTexture struct {
	width  int
	height int
	fmt    driver.TexFormat
}

// Destroy destroys the texture.
// The underlying storage is context-owned, so this is a
// no-op.
func (t *dummyTexture) Destroy() {}

// Size returns the dimensions of the implicit storage.
func (t *dummyTexture) Size() (width, height int) { return t.width, t.height }

// Format returns the pixel format, which may be FInvalid
// when the context does not expose it.
func (t *dummyTexture) Format() driver.TexFormat { return t.fmt }

// Samples returns the sample count.
func (t *dummyTexture) Samples() int { return 1 }

// Layers returns the number of array layers.
func (t *dummyTexture) Layers() int { return 1 }

// Levels returns the number of mip levels.
func (t *dummyTexture) Levels() int { return 1 }

// Implicit reports whether the storage is context-owned.
func (t *dummyTexture) Implicit() bool { return true }

// backendTex asserts that t is an attachable texture
// created by this driver.
func (d *Driver) backendTex(t driver.Texture) (*texture, error) {
	switch tx := t.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil texture", driver.ErrInvalidArgument)
	case *texture:
		if tx.d == d {
			return tx, nil
		}
	case *dummyTexture:
		return nil, fmt.Errorf("%w: implicit storage cannot be attached", driver.ErrInvalidArgument)
	}
	return nil, fmt.Errorf("%w: texture from another driver", driver.ErrInvalidArgument)
}
