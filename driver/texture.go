// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"fmt"
	"math"
)

// TexFormat describes the format of a texture's pixels.
type TexFormat int

// Texture formats.
const (
	FInvalid TexFormat = iota
	// Color, 8-bit channels.
	RGBA8un
	RGBA8sRGB
	BGRA8un
	// Color, packed.
	RGB10A2un
	// Color, integer.
	RGBA32ui
	// Depth/Stencil.
	D16un
	D32f
	S8ui
	D24unS8ui
)

// FmtProps describes invariant properties of a TexFormat.
type FmtProps struct {
	// Size is the number of bytes per pixel.
	Size int
	// Aspect/encoding flags.
	Depth   bool
	Stencil bool
	SRGB    bool
	Integer bool
}

// Props returns the properties of format f.
func (f TexFormat) Props() FmtProps {
	switch f {
	case RGBA8un, BGRA8un:
		return FmtProps{Size: 4}
	case RGBA8sRGB:
		return FmtProps{Size: 4, SRGB: true}
	case RGB10A2un:
		return FmtProps{Size: 4}
	case RGBA32ui:
		return FmtProps{Size: 16, Integer: true}
	case D16un:
		return FmtProps{Size: 2, Depth: true}
	case D32f:
		return FmtProps{Size: 4, Depth: true}
	case S8ui:
		return FmtProps{Size: 1, Stencil: true}
	case D24unS8ui:
		return FmtProps{Size: 4, Depth: true, Stencil: true}
	}
	return FmtProps{}
}

// BytesPerRow returns the storage size, in bytes, of one
// row of pixels in format f. It is zero for FInvalid.
func (f TexFormat) BytesPerRow(width int) int {
	return f.Props().Size * width
}

// TexKind is the type of texture storage.
type TexKind int

// Texture kinds.
const (
	// Two-dimensional texture, optionally multisampled.
	T2D TexKind = iota
	// Array of two-dimensional textures.
	T2DArray
	// Cube texture with six faces.
	TCube
	// Render target whose storage cannot be sampled.
	// It trades sampling for a more direct mapping to
	// the underlying API's transient target storage.
	TTarget
)

// Usage is a mask of texture usages.
type Usage int

// Usages.
const (
	UCopySrc Usage = 1 << iota
	UCopyDst
	UShaderSample
	URenderTarget
)

// TexDesc describes a texture to be created.
type TexDesc struct {
	Kind    TexKind
	Format  TexFormat
	Width   int
	Height  int
	Layers  int
	Levels  int
	Samples int
	Usage   Usage
	// Name is a debug label for the texture. It may be
	// ignored by the driver.
	Name string
}

// Texture is the interface that defines GPU texture storage
// insofar as render target attachment is concerned.
// Upload, sampling and view creation are defined by the
// resource extensions of the specific driver packages.
type Texture interface {
	Destroyer

	// Size returns the dimensions of mip level 0.
	Size() (width, height int)

	// Format returns the pixel format.
	Format() TexFormat

	// Samples returns the sample count. It is 1 for
	// non-multisampled textures.
	Samples() int

	// Layers returns the number of array layers.
	Layers() int

	// Levels returns the number of mip levels.
	Levels() int

	// Implicit reports whether the texture's storage is
	// provided implicitly by the platform, such as a
	// surface owned by the window system. Implicit
	// storage cannot be attached nor detached by client
	// code.
	Implicit() bool
}

// TexRange identifies a region within a texture: an origin
// and extent in texels plus layer, mip level and cube face
// sub-resource selections.
// The zero value of the count fields means one; a range
// never addresses zero texels.
type TexRange struct {
	// Origin of the region, in texels.
	X, Y, Z int
	// Extent of the region, in texels.
	Width, Height, Depth int
	// Sub-resource selections.
	Layer, Layers int
	Level, Levels int
	Face, Faces   int
}

// Range2D returns a TexRange addressing a width x height
// region at x/y of layer 0, level 0, face 0.
func Range2D(x, y, width, height int) TexRange {
	return TexRange{
		X:     x,
		Y:     y,
		Width: width, Height: height, Depth: 1,
		Layers: 1, Levels: 1, Faces: 1,
	}
}

var errRange = fmt.Errorf("%w: invalid texture range", ErrInvalidArgument)

// Validate checks that the range addresses a non-empty,
// representable region.
// Extents and counts must be at least one, sums of offset
// and extent must fit in 32 bits, and face selections must
// stay within the six faces of a cube.
func (r *TexRange) Validate() error {
	wrap := func(s string) error {
		return fmt.Errorf("%w: %s", errRange, s)
	}
	switch {
	case r.Width < 1 || r.Height < 1 || r.Depth < 1:
		return wrap("extent is zero or negative")
	case r.Layers < 1 || r.Levels < 1 || r.Faces < 1:
		return wrap("count is zero or negative")
	case r.X < 0 || r.Y < 0 || r.Z < 0 || r.Layer < 0 || r.Level < 0 || r.Face < 0:
		return wrap("origin is negative")
	case r.X+r.Width > math.MaxUint32 || r.Y+r.Height > math.MaxUint32 || r.Z+r.Depth > math.MaxUint32:
		return wrap("extent exceeds 32 bits")
	case r.Layer+r.Layers > math.MaxUint32 || r.Level+r.Levels > math.MaxUint32:
		return wrap("sub-resource count exceeds 32 bits")
	case r.Face > 5:
		return wrap("face must be less than 6")
	case r.Face+r.Faces > 6:
		return wrap("face range exceeds 6 faces")
	}
	return nil
}
