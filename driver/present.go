// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
)

// ErrCannotPresent means that the driver and/or device do not
// support presentation, or that the context has no display
// surface to present to.
var ErrCannotPresent = errors.New("driver: presentation not supported")

// ErrWindow represents an error related to a specific window.
// This error usually indicates that a window misconfiguration
// is preventing correct operation. For instance, the driver
// may require a visible window to present.
var ErrWindow = errors.New("driver: window-related error")

// SurfaceTextures pairs the textures of a drawable surface.
// Color identifies the surface proper; Depth, when set, is
// the depth buffer that accompanies it.
type SurfaceTextures struct {
	Color Texture
	Depth Texture
}

// Presenter is the interface that a GPU may implement
// to enable presentation on a display.
type Presenter interface {
	// NextDrawable returns the surface textures of the
	// drawable that the context will present next.
	// For implementations that render through an
	// implicit target, the returned color texture
	// reports implicit storage and merely describes the
	// surface; it cannot be attached by client code.
	NextDrawable() (SurfaceTextures, error)
}
