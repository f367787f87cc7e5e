// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Command rhidemo exercises the OpenGL driver end to end.
// It opens a window, drives clear-only render passes over a
// multisample framebuffer and the window's back buffer,
// presents every frame, and can write the rendered result
// to a PNG file (press S, or let the run finish).
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"math"
	"math/bits"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"

	"github.com/gviegas/rhi/driver"
	"github.com/gviegas/rhi/driver/gl"
	"github.com/gviegas/rhi/wsi"
)

// Window creation and event dispatch must happen on the
// main thread.
func init() { runtime.LockOSThread() }

func main() {
	log.SetPrefix("rhidemo: ")
	log.SetFlags(0)

	var (
		configFile = flag.String("config", "rhidemo.toml", "configuration file")
		cpuprofile = flag.Bool("cpuprofile", false, "write a CPU profile")
		frames     = flag.Int("frames", 0, "frame count override")
	)
	flag.Parse()
	conf := readConfig(*configFile)
	if *frames > 0 {
		conf.Frames = *frames
	}
	if *cpuprofile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	if wsi.PlatformInUse() == wsi.None {
		log.Fatal("No window system available")
	}
	wsi.SetAppName("rhidemo")
	win, err := wsi.NewWindow(conf.Width, conf.Height, conf.Title)
	if err != nil {
		log.Fatalf("Couldn't create window: %v", err)
	}
	defer win.Close()
	win.MakeContextCurrent()
	if conf.VSync {
		wsi.SwapInterval(1)
	} else {
		wsi.SwapInterval(0)
	}

	drv := glDriver()
	gpu, err := drv.Open()
	if err != nil {
		log.Fatalf("Couldn't open driver: %v", err)
	}
	defer drv.Close()
	drv.SetSurface(win)

	major, minor, es := drv.Features()
	api := "OpenGL"
	if es {
		api = "OpenGL ES"
	}
	log.Printf("Using %s %d.%d", api, major, minor)
	lim := gpu.Limits()
	log.Printf("Render targets up to %dx%d, %d samples", lim.MaxFBSize[0], lim.MaxFBSize[1], lim.MaxSamples)

	onscreen, err := gpu.CurrentFramebuf()
	if err != nil {
		log.Fatalf("Couldn't wrap the window's framebuffer: %v", err)
	}

	samples := conf.Samples
	if samples < 1 || conf.disabled("msaa") {
		samples = 1
	}
	samples = 1 << (bits.Len(uint(samples)) - 1)
	if samples > lim.MaxSamples {
		samples = lim.MaxSamples
	}

	// The offscreen pass renders into a multisample target
	// that resolves into a plain texture, and readback goes
	// through a single-sample framebuffer whose sole
	// attachment is that texture. With the offscreen pass
	// disabled, readback falls back to the back buffer.
	readback := onscreen
	var offscreen driver.Framebuf
	if !conf.disabled("offscreen") {
		fbW, fbH := win.FramebufferSize()
		msaa, err := gpu.NewTexture(&driver.TexDesc{
			Kind:    driver.TTarget,
			Format:  driver.RGBA8un,
			Width:   fbW,
			Height:  fbH,
			Samples: samples,
			Usage:   driver.URenderTarget,
			Name:    "offscreen color",
		})
		if err != nil {
			log.Fatalf("Couldn't create the offscreen target: %v", err)
		}
		defer msaa.Destroy()
		resolved, err := gpu.NewTexture(&driver.TexDesc{
			Kind:   driver.T2D,
			Format: driver.RGBA8un,
			Width:  fbW,
			Height: fbH,
			Usage:  driver.URenderTarget | driver.UCopySrc,
			Name:   "offscreen resolve",
		})
		if err != nil {
			log.Fatalf("Couldn't create the resolve texture: %v", err)
		}
		defer resolved.Destroy()
		offscreen, err = gpu.NewFramebuf(&driver.FramebufDesc{
			Colors: map[int]driver.AttachDesc{
				0: {Texture: msaa, Resolve: resolved},
			},
			Name: "offscreen",
		})
		if err != nil {
			log.Fatalf("Couldn't create the offscreen framebuffer: %v", err)
		}
		defer offscreen.Destroy()
		readback, err = gpu.NewFramebuf(&driver.FramebufDesc{
			Colors: map[int]driver.AttachDesc{0: {Texture: resolved}},
			Name:   "readback",
		})
		if err != nil {
			log.Fatalf("Couldn't create the readback framebuffer: %v", err)
		}
		defer readback.Destroy()
	}

	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		log.Fatalf("Couldn't create a command buffer: %v", err)
	}
	defer cb.Destroy()

	var h handlerState
	wsi.SetWindowHandler(&h)
	wsi.SetKeyboardHandler(&h)
	win.Map()

	clear := [4]float32{0, 0, 0, 1}
	start := time.Now()
	for frame := 0; !h.done; frame++ {
		if conf.Frames > 0 && frame == conf.Frames {
			break
		}
		wsi.Dispatch()
		if h.done {
			break
		}

		r, g, b := clearColor(time.Since(start).Seconds())
		if conf.SRGB {
			r, g, b = srgbEncode(r), srgbEncode(g), srgbEncode(b)
		}
		clear = [4]float32{r, g, b, 1}

		if offscreen != nil {
			if err := encodeClear(cb, offscreen, driver.SResolve, clear, "offscreen clear"); err != nil {
				log.Fatalf("Offscreen pass failed: %v", err)
			}
		}
		if err := encodeClear(cb, onscreen, driver.SStore, clear, "window clear"); err != nil {
			log.Fatalf("Window pass failed: %v", err)
		}

		// The back buffer's contents are undefined after a
		// swap, so readback has to precede presentation.
		if h.shoot && conf.Screenshot != "" {
			h.shoot = false
			writeScreenshot(readback, conf.Screenshot)
		}

		st, err := drv.NextDrawable()
		if err != nil {
			log.Fatalf("Couldn't acquire the drawable: %v", err)
		}
		if err := cb.Present(st); err != nil {
			log.Fatalf("Couldn't present: %v", err)
		}
	}
	if err := cb.WaitCompleted(); err != nil {
		log.Printf("Wait failed: %v", err)
	}

	if conf.Screenshot != "" {
		// One more pass so the file reflects the last frame
		// even though that frame has been swapped away.
		target, store := onscreen, driver.SStore
		if offscreen != nil {
			target, store = offscreen, driver.SResolve
		}
		if err := encodeClear(cb, target, store, clear, "screenshot clear"); err != nil {
			log.Fatalf("Screenshot pass failed: %v", err)
		}
		writeScreenshot(readback, conf.Screenshot)
	}
}

// handlerState tracks window events between dispatches.
type handlerState struct {
	done  bool
	shoot bool
}

func (h *handlerState) WindowClose(wsi.Window) { h.done = true }

func (h *handlerState) WindowResize(win wsi.Window, newWidth, newHeight int) {
	log.Printf("Window resized to %dx%d", newWidth, newHeight)
}

func (h *handlerState) KeyboardIn(wsi.Window)  {}
func (h *handlerState) KeyboardOut(wsi.Window) {}

func (h *handlerState) KeyboardKey(key wsi.Key, pressed bool, modMask wsi.Modifier) {
	if !pressed {
		return
	}
	switch key {
	case wsi.KeyEsc:
		h.done = true
	case wsi.KeyS:
		h.shoot = true
	}
}

// glDriver finds the gl driver in the registry.
// Attaching a wsi surface requires the concrete type, so
// the lookup asserts it.
func glDriver() *gl.Driver {
	for _, d := range driver.Drivers() {
		if d, ok := d.(*gl.Driver); ok {
			return d
		}
	}
	log.Fatal("No gl driver registered")
	return nil
}

// encodeClear records a render pass over fb that clears its
// color attachment and applies the given store operation.
func encodeClear(cb driver.CmdBuffer, fb driver.Framebuf, store driver.StoreOp, clear [4]float32, marker string) error {
	enc, err := cb.NewRenderEncoder(&driver.RenderPass{
		Colors: []driver.ColorTarget{{
			Load:  driver.LClear,
			Store: store,
			Clear: clear,
		}},
	}, fb, driver.Deps{})
	if err != nil {
		return err
	}
	enc.InsertMarker(marker)
	return enc.End()
}

// clearColor derives the background color at time t,
// cycling through the hues once every few seconds.
func clearColor(t float64) (r, g, b float32) {
	const period = 6
	a := t * 2 * math.Pi / period
	r = float32(0.5 + 0.5*math.Sin(a))
	g = float32(0.5 + 0.5*math.Sin(a+2*math.Pi/3))
	b = float32(0.5 + 0.5*math.Sin(a+4*math.Pi/3))
	return
}

// srgbEncode applies the sRGB transfer function to a linear
// intensity value.
func srgbEncode(x float32) float32 {
	if x <= 0.0031308 {
		return 12.92 * x
	}
	return float32(1.055*math.Pow(float64(x), 1/2.4) - 0.055)
}

func writeScreenshot(fb driver.Framebuf, path string) {
	if err := screenshot(fb, path); err != nil {
		log.Printf("Couldn't write %s: %v", path, err)
		return
	}
	log.Printf("Wrote %s", path)
}

// screenshot reads back color attachment 0 of fb and
// encodes it as a PNG file at path.
func screenshot(fb driver.Framebuf, path string) error {
	vp := fb.Viewport()
	w, h := int(vp.Width), int(vp.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := fb.CopyBytesColor(0, img.Pix, driver.Range2D(0, 0, w, h), img.Stride); err != nil {
		return err
	}
	flipRows(img.Pix, img.Stride, h)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// flipRows reverses the row order of pix in place.
// Readback rows run bottom-up while image files run
// top-down.
func flipRows(pix []byte, stride, rows int) {
	tmp := make([]byte, stride)
	for i, j := 0, rows-1; i < j; i, j = i+1, j-1 {
		top := pix[i*stride : (i+1)*stride]
		bot := pix[j*stride : (j+1)*stride]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}
