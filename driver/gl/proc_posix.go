// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build !windows

package gl

import (
	"runtime"

	"github.com/ebitengine/purego"

	"github.com/gviegas/rhi/driver"
)

// proc is responsible for loading and unloading the GL
// library.
type proc struct {
	h   uintptr
	gpa func(name string) uintptr
	ctx procContext
}

// open loads the GL library and resolves the entry points
// that the driver dispatches through.
func (p *proc) open() error {
	var libs []string
	switch runtime.GOOS {
	default:
		panic("unsupported OS: " + runtime.GOOS)
	case "android":
		libs = []string{"libGLESv3.so", "libGLESv2.so"}
	case "linux", "freebsd":
		libs = []string{"libGL.so.1", "libGL.so", "libGLESv2.so.2"}
	case "darwin":
		libs = []string{"/System/Library/Frameworks/OpenGL.framework/Versions/Current/OpenGL"}
	}
	var h uintptr
	var err error
	for _, lib := range libs {
		if h, err = purego.Dlopen(lib, purego.RTLD_LAZY|purego.RTLD_GLOBAL); err == nil {
			break
		}
	}
	if err != nil {
		return driver.ErrNotInstalled
	}
	p.h = h
	// Extension entry points need not be exported by the
	// library itself; resolve them through the loader
	// when it provides a lookup of its own.
	for _, sym := range [...]string{"glXGetProcAddressARB", "eglGetProcAddress"} {
		if a, err := purego.Dlsym(h, sym); err == nil && a != 0 {
			purego.RegisterFunc(&p.gpa, a)
			break
		}
	}
	if err := p.ctx.bind(p.lookup); err != nil {
		p.close()
		return err
	}
	return nil
}

// lookup resolves a single entry point.
func (p *proc) lookup(name string) uintptr {
	if a, err := purego.Dlsym(p.h, name); err == nil && a != 0 {
		return a
	}
	if p.gpa != nil {
		return p.gpa(name)
	}
	return 0
}

// close unloads the GL library and invalidates all
// entry points.
func (p *proc) close() {
	if p.h != 0 {
		purego.Dlclose(p.h)
	}
	*p = proc{}
}

// context returns the Context backed by the loaded
// library.
func (p *proc) context() Context { return &p.ctx }
