// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build cgo && !nowsi

package wsi

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	if err := initGLFW(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		initDummy()
	}
}

// initGLFW initializes the GLFW platform.
// Note that glfw requires that initialization, window
// creation and event dispatching happen on the main
// thread.
func initGLFW() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("wsi: failed to initialize glfw: %v", err)
	}
	newWindow = newWindowGLFW
	dispatch = dispatchGLFW
	setAppName = setAppNameGLFW
	swapInterval = swapIntervalGLFW
	platform = GLFW
	return nil
}

// windowGLFW implements Window.
type windowGLFW struct {
	win    *glfw.Window
	width  int
	height int
	title  string
	hidden bool
}

// newWindowGLFW creates a new window.
// Windows are created hidden; call Map to show them.
func newWindowGLFW(width, height int, title string) (Window, error) {
	glfw.WindowHint(glfw.Visible, glfw.False)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("wsi: failed to create window: %v", err)
	}
	win.SetInputMode(glfw.LockKeyMods, glfw.True)
	w := &windowGLFW{
		win:    win,
		width:  width,
		height: height,
		title:  title,
		hidden: true,
	}
	w.setCallbacks()
	return w, nil
}

// setCallbacks routes the window's glfw callbacks to the
// global handlers. The callbacks fire during Dispatch.
func (w *windowGLFW) setCallbacks() {
	w.win.SetCloseCallback(func(*glfw.Window) {
		if windowHandler != nil {
			windowHandler.WindowClose(w)
		}
	})
	w.win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if windowHandler != nil {
			windowHandler.WindowResize(w, width, height)
		}
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if keyboardHandler == nil {
			return
		}
		if focused {
			keyboardHandler.KeyboardIn(w)
		} else {
			keyboardHandler.KeyboardOut(w)
		}
	})
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if keyboardHandler == nil || action == glfw.Repeat {
			return
		}
		keyboardHandler.KeyboardKey(keyFrom(int(key)), action == glfw.Press, modFrom(mods))
	})
	w.win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if pointerHandler == nil {
			return
		}
		if entered {
			x, y := w.win.GetCursorPos()
			pointerHandler.PointerIn(w, int(x), int(y))
		} else {
			pointerHandler.PointerOut(w)
		}
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if pointerHandler != nil {
			pointerHandler.PointerMotion(int(x), int(y))
		}
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, btn glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if pointerHandler != nil {
			x, y := w.win.GetCursorPos()
			pointerHandler.PointerButton(btnFrom(btn), action == glfw.Press, int(x), int(y))
		}
	})
}

// Map makes the window visible.
func (w *windowGLFW) Map() error {
	if w.hidden {
		w.win.Show()
		w.hidden = false
	}
	return nil
}

// Unmap hides the window.
func (w *windowGLFW) Unmap() error {
	if !w.hidden {
		w.win.Hide()
		w.hidden = true
	}
	return nil
}

// Resize resizes the window.
func (w *windowGLFW) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("wsi: width/height less than or equal 0")
	}
	if width != w.width || height != w.height {
		w.win.SetSize(width, height)
		w.width = width
		w.height = height
	}
	return nil
}

// SetTitle sets the window's title.
func (w *windowGLFW) SetTitle(title string) error {
	if title != w.title {
		w.win.SetTitle(title)
		w.title = title
	}
	return nil
}

// Close closes the window.
func (w *windowGLFW) Close() {
	if w != nil {
		closeWindow(w)
		if w.win != nil {
			w.win.Destroy()
		}
		*w = windowGLFW{}
	}
}

// Width returns the window's width.
func (w *windowGLFW) Width() int { return w.width }

// Height returns the window's height.
func (w *windowGLFW) Height() int { return w.height }

// Title returns the window's title.
func (w *windowGLFW) Title() string { return w.title }

// MakeContextCurrent binds the window's GL context to the
// calling thread.
func (w *windowGLFW) MakeContextCurrent() { w.win.MakeContextCurrent() }

// SwapBuffers presents the window's back buffer.
func (w *windowGLFW) SwapBuffers() { w.win.SwapBuffers() }

// FramebufferSize returns the dimensions of the window's
// drawable region.
func (w *windowGLFW) FramebufferSize() (width, height int) {
	return w.win.GetFramebufferSize()
}

// modFrom converts glfw modifier bits into a Modifier
// mask.
func modFrom(mods glfw.ModifierKey) Modifier {
	var m Modifier
	if mods&glfw.ModCapsLock != 0 {
		m |= ModCapsLock
	}
	if mods&glfw.ModShift != 0 {
		m |= ModShift
	}
	if mods&glfw.ModControl != 0 {
		m |= ModCtrl
	}
	if mods&glfw.ModAlt != 0 {
		m |= ModAlt
	}
	return m
}

// btnFrom converts a glfw mouse button into a Button
// value.
func btnFrom(btn glfw.MouseButton) Button {
	switch btn {
	case glfw.MouseButtonLeft:
		return BtnLeft
	case glfw.MouseButtonRight:
		return BtnRight
	case glfw.MouseButtonMiddle:
		return BtnMiddle
	case glfw.MouseButton4:
		return BtnBackward
	case glfw.MouseButton5:
		return BtnForward
	}
	return BtnUnknown
}

// dispatchGLFW dispatches queued events.
func dispatchGLFW() { glfw.PollEvents() }

// setAppNameGLFW updates the string used to identify the
// application. It only affects windows created afterwards.
func setAppNameGLFW(s string) {
	glfw.WindowHintString(glfw.X11ClassName, s)
	glfw.WindowHintString(glfw.X11InstanceName, s)
}

// swapIntervalGLFW sets the swap interval of the current
// context.
func swapIntervalGLFW(i int) { glfw.SwapInterval(i) }
