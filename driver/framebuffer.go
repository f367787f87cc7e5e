// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// ErrInitialized means that an attempt was made to
// initialize a framebuffer that had been initialized
// already. The framebuffer's state is left unchanged.
var ErrInitialized = errors.New("driver: framebuffer already initialized")

// ErrInvalidArgument means that a descriptor or parameter
// violates a structural rule, such as the resolve symmetry
// of color attachments, an attachment index that does not
// exist, or a resource that belongs to another driver.
var ErrInvalidArgument = errors.New("driver: invalid argument")

// ErrIncomplete means that the underlying implementation
// rejected an attachment combination. The error string
// includes the decoded status reported by the API.
var ErrIncomplete = errors.New("driver: incomplete framebuffer")

// ErrUnsupported means that an operation is not supported,
// either by the device or by the specific framebuffer
// variant on which it was invoked.
var ErrUnsupported = errors.New("driver: unsupported operation")

// LoadOp is the type of an attachment's load operation.
type LoadOp int

// Load operations.
const (
	LDontCare LoadOp = iota
	LClear
	LLoad
)

// StoreOp is the type of an attachment's store operation.
type StoreOp int

// Store operations.
const (
	SDontCare StoreOp = iota
	SStore
	// SResolve stores the attachment's multisample
	// content resolved into its resolve texture. The
	// multisample content itself becomes undefined.
	SResolve
)

// FramebufMode selects how a framebuffer's attachments map
// to views.
type FramebufMode int

// Framebuffer modes.
const (
	FMono FramebufMode = iota
	FStereo
	FMultiview
)

// AttachDesc describes a single render target attachment.
// Resolve, when set, receives the multisample resolve of
// Texture at the end of passes whose store operation is
// SResolve.
type AttachDesc struct {
	Texture Texture
	Resolve Texture
}

// FramebufDesc describes the attachments of a framebuffer.
// Color attachments are keyed by index; indices need not
// be contiguous nor start at zero, but each must be below
// the MaxColorTargets limit.
type FramebufDesc struct {
	Colors  map[int]AttachDesc
	Depth   AttachDesc
	Stencil AttachDesc
	Mode    FramebufMode
	// Name is a debug label for the framebuffer. It may
	// be ignored by the driver.
	Name string
}

// ColorIndices returns the color attachment indices of fd
// in ascending order.
func (fd *FramebufDesc) ColorIndices() []int {
	idx := maps.Keys(fd.Colors)
	slices.Sort(idx)
	return idx
}

// Validate checks the structural rules of fd.
// Every color index must be non-negative, every color
// attachment must have a texture, and either all color
// attachments define a resolve texture or none of them do.
func (fd *FramebufDesc) Validate() error {
	nresolve := 0
	for i, c := range fd.Colors {
		if i < 0 {
			return fmt.Errorf("%w: negative color attachment index", ErrInvalidArgument)
		}
		if c.Texture == nil {
			return fmt.Errorf("%w: color attachment with no texture", ErrInvalidArgument)
		}
		if c.Resolve != nil {
			nresolve++
		}
	}
	if nresolve != 0 && nresolve != len(fd.Colors) {
		return fmt.Errorf("%w: when a resolve texture is set on a color attachment, all of them must set one",
			ErrInvalidArgument)
	}
	return nil
}

// ColorTarget describes how a render pass treats one color
// attachment.
type ColorTarget struct {
	Load  LoadOp
	Store StoreOp
	Clear [4]float32
	// Sub-resource of the attachment to render into.
	Layer int
	Face  int
	Level int
}

// DepthTarget describes how a render pass treats the depth
// attachment.
type DepthTarget struct {
	Load  LoadOp
	Store StoreOp
	Clear float32
	Layer int
	Face  int
	Level int
}

// StencilTarget describes how a render pass treats the
// stencil attachment.
type StencilTarget struct {
	Load  LoadOp
	Store StoreOp
	Clear uint32
}

// RenderPass describes the load/store behavior of a single
// pass over a framebuffer.
// Colors is index-aligned with the framebuffer's color
// attachment indices; entries whose index is absent from
// the framebuffer are ignored.
type RenderPass struct {
	Colors  []ColorTarget
	Depth   DepthTarget
	Stencil StencilTarget
}

// Framebuf is the interface that defines a set of render
// targets for render passes, either created from client
// textures or wrapped from the context's current target.
type Framebuf interface {
	Destroyer

	// Viewport returns the viewport that covers the
	// framebuffer in full. Its dimensions are those of
	// the first live attachment and its depth range is
	// [0, 1].
	Viewport() Viewport

	// Mode returns the framebuffer's mode.
	Mode() FramebufMode

	// ColorIndices returns the color attachment indices
	// in ascending order.
	ColorIndices() []int

	// Color returns the color attachment at index i, or
	// nil if the slot is empty.
	Color(i int) Texture

	// ResolveColor returns the resolve texture of the
	// color attachment at index i, or nil.
	ResolveColor(i int) Texture

	// Depth returns the depth attachment, or nil.
	Depth() Texture

	// ResolveDepth returns the resolve texture of the
	// depth attachment, or nil.
	ResolveDepth() Texture

	// Stencil returns the stencil attachment, or nil.
	Stencil() Texture

	// UpdateDrawable exchanges the texture in color
	// attachment slot 0. A nil texture detaches the
	// current one, preserving its contents, and leaves
	// the slot empty. Updating with the texture that is
	// already attached has no effect.
	UpdateDrawable(color Texture) error

	// UpdateSurfaces exchanges color attachment 0 and
	// the depth attachment with a drawable's surface
	// textures. Nil fields detach as in UpdateDrawable.
	UpdateSurfaces(st SurfaceTextures) error

	// CopyBytesColor reads pixels of the color
	// attachment at index i within rng back into dst.
	// dst must hold bytesPerRow bytes for each of the
	// rng.Height rows. Rows are tightly packed when
	// bytesPerRow is zero.
	CopyBytesColor(i int, dst []byte, rng TexRange, bytesPerRow int) error

	// CopyBytesDepth reads back the depth attachment.
	CopyBytesDepth(dst []byte, rng TexRange, bytesPerRow int) error

	// CopyBytesStencil reads back the stencil attachment.
	CopyBytesStencil(dst []byte, rng TexRange, bytesPerRow int) error

	// CopyTextureColor copies pixels of the color
	// attachment at index i within rng into dst at the
	// range's sub-resource origin.
	CopyTextureColor(i int, dst Texture, rng TexRange) error
}
