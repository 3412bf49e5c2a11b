//go:build tinygo && baremetal

package main

import (
	"kestrel/app"
	"kestrel/hal"
)

func main() {
	app.Run(hal.New())
}
