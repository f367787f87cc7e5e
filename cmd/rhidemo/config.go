// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"log"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

// config drives the demo.
// Every field has a usable default, so running without a
// configuration file works.
type config struct {
	Width  int
	Height int
	Title  string

	// Sample count of the offscreen pass.
	// It is rounded down to a power of two and clamped
	// to what the context supports.
	Samples int

	// VSync selects the swap interval: one vertical
	// blank when set, immediate swaps otherwise.
	VSync bool

	// SRGB encodes clear colors with the sRGB transfer
	// function before handing them to the driver.
	SRGB bool

	// Screenshot is the PNG file written when the demo
	// finishes. Pressing S during the run writes it as
	// well. An empty string disables the readback.
	Screenshot string

	// Frames caps the number of rendered frames.
	// Zero runs until the window closes.
	Frames int

	// Disable lists features to skip regardless of what
	// the context supports. Recognized entries are
	// "msaa" and "offscreen".
	Disable []string
}

func defaultConfig() config {
	return config{
		Width:      960,
		Height:     540,
		Title:      "rhi demo",
		Samples:    4,
		VSync:      true,
		Screenshot: "rhidemo.png",
	}
}

// readConfig decodes the TOML file at path over the
// defaults. A missing file is not an error; fields that
// the file omits keep their default values.
func readConfig(path string) config {
	conf := defaultConfig()
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		if os.IsNotExist(err) {
			return conf
		}
		log.Fatalf("Couldn't read config file: %v", err)
	}
	return conf
}

func (c *config) disabled(feature string) bool {
	return slices.Contains(c.Disable, feature)
}
