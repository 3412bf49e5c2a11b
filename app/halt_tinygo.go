//go:build tinygo

package app

// halt parks the CPU for good.
func halt() { select {} }
