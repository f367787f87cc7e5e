// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package gl

import (
	"syscall"

	"github.com/ebitengine/purego"

	"github.com/gviegas/rhi/driver"
)

// proc is responsible for loading and unloading the GL
// library.
type proc struct {
	h   syscall.Handle
	gpa func(name string) uintptr
	ctx procContext
}

// open loads the GL library and resolves the entry points
// that the driver dispatches through.
func (p *proc) open() error {
	h, err := syscall.LoadLibrary("opengl32.dll")
	if err != nil {
		return driver.ErrNotInstalled
	}
	p.h = h
	if a, err := syscall.GetProcAddress(h, "wglGetProcAddress"); err == nil && a != 0 {
		purego.RegisterFunc(&p.gpa, a)
	}
	if err := p.ctx.bind(p.lookup); err != nil {
		p.close()
		return err
	}
	return nil
}

// lookup resolves a single entry point.
// Symbols newer than 1.1 only resolve through
// wglGetProcAddress, and only while a context is current.
func (p *proc) lookup(name string) uintptr {
	if p.gpa != nil {
		// Failures may come back as small non-zero
		// sentinel values rather than null.
		switch a := p.gpa(name); a {
		case 0, 1, 2, 3, ^uintptr(0):
		default:
			return a
		}
	}
	if a, err := syscall.GetProcAddress(p.h, name); err == nil {
		return a
	}
	return 0
}

// close unloads the GL library and invalidates all
// entry points.
func (p *proc) close() {
	if p.h != 0 {
		syscall.FreeLibrary(p.h)
	}
	*p = proc{}
}

// context returns the Context backed by the loaded
// library.
func (p *proc) context() Context { return &p.ctx }
