// Copyright 2024 Gustavo C. Viegas. All rights reserved.

//go:build !cgo || nowsi

package wsi

func init() {
	initDummy()
}
