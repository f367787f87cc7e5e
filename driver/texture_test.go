// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"fmt"
	"math"
	"testing"
)

func TestRange2D(t *testing.T) {
	r := Range2D(16, 32, 256, 128)
	if err := r.Validate(); err != nil {
		t.Fatalf("Range2D(16, 32, 256, 128).Validate\nhave %v\nwant nil", err)
	}
	cases := [...]struct {
		field string
		have  int
		want  int
	}{
		{"X", r.X, 16},
		{"Y", r.Y, 32},
		{"Width", r.Width, 256},
		{"Height", r.Height, 128},
		{"Depth", r.Depth, 1},
		{"Layers", r.Layers, 1},
		{"Levels", r.Levels, 1},
		{"Faces", r.Faces, 1},
	}
	for _, c := range cases {
		if c.have != c.want {
			t.Errorf("Range2D(16, 32, 256, 128): r.%s\nhave %d\nwant %d", c.field, c.have, c.want)
		}
	}
}

func TestRangeValidate(t *testing.T) {
	valid := func() TexRange {
		return TexRange{
			Width: 64, Height: 64, Depth: 1,
			Layers: 1, Levels: 1, Faces: 1,
		}
	}
	cases := [...]struct {
		name string
		set  func(*TexRange)
		ok   bool
	}{
		{"default", func(r *TexRange) {}, true},
		{"offset", func(r *TexRange) { r.X, r.Y = 128, 1024 }, true},
		{"subresource", func(r *TexRange) { r.Layer, r.Level = 5, 3 }, true},
		{"cube", func(r *TexRange) { r.Face, r.Faces = 2, 4 }, true},
		{"maxExtent", func(r *TexRange) { r.X, r.Width = 0, math.MaxUint32 }, true},
		{"zeroWidth", func(r *TexRange) { r.Width = 0 }, false},
		{"zeroHeight", func(r *TexRange) { r.Height = 0 }, false},
		{"zeroDepth", func(r *TexRange) { r.Depth = 0 }, false},
		{"zeroLayers", func(r *TexRange) { r.Layers = 0 }, false},
		{"zeroLevels", func(r *TexRange) { r.Levels = 0 }, false},
		{"zeroFaces", func(r *TexRange) { r.Faces = 0 }, false},
		{"negativeX", func(r *TexRange) { r.X = -1 }, false},
		{"negativeLayer", func(r *TexRange) { r.Layer = -2 }, false},
		{"widthOverflow", func(r *TexRange) { r.X, r.Width = 1, math.MaxUint32 }, false},
		{"heightOverflow", func(r *TexRange) { r.Y, r.Height = math.MaxUint32, 2 }, false},
		{"layerOverflow", func(r *TexRange) { r.Layer = math.MaxUint32 }, false},
		{"face6", func(r *TexRange) { r.Face = 6 }, false},
		{"faceRange", func(r *TexRange) { r.Face, r.Faces = 3, 4 }, false},
	}
	for _, c := range cases {
		r := valid()
		c.set(&r)
		err := r.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: r.Validate\nhave %v\nwant nil", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: r.Validate\nhave nil\nwant non-nil", c.name)
		}
	}
}

func TestFmtProps(t *testing.T) {
	cases := [...]struct {
		fmt  TexFormat
		want FmtProps
	}{
		{RGBA8un, FmtProps{Size: 4}},
		{BGRA8un, FmtProps{Size: 4}},
		{RGBA8sRGB, FmtProps{Size: 4, SRGB: true}},
		{RGB10A2un, FmtProps{Size: 4}},
		{RGBA32ui, FmtProps{Size: 16, Integer: true}},
		{D16un, FmtProps{Size: 2, Depth: true}},
		{D32f, FmtProps{Size: 4, Depth: true}},
		{S8ui, FmtProps{Size: 1, Stencil: true}},
		{D24unS8ui, FmtProps{Size: 4, Depth: true, Stencil: true}},
		{FInvalid, FmtProps{}},
	}
	for _, c := range cases {
		call := fmt.Sprintf("TexFormat(%d).Props()", c.fmt)
		if p := c.fmt.Props(); p != c.want {
			t.Errorf("%s\nhave %v\nwant %v", call, p, c.want)
		}
	}
	if n := RGBA8un.BytesPerRow(256); n != 1024 {
		t.Errorf("RGBA8un.BytesPerRow(256)\nhave %d\nwant 1024", n)
	}
	if n := RGBA32ui.BytesPerRow(16); n != 256 {
		t.Errorf("RGBA32ui.BytesPerRow(16)\nhave %d\nwant 256", n)
	}
}
