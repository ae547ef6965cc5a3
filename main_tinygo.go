//go:build tinygo && baremetal

package main

import (
	"tonefirmata/app"
	"tonefirmata/hal"
	"tonefirmata/toneos/melody"
)

func main() {
	song, _ := melody.Builtin("intro")
	cfg := app.DefaultConfig()
	cfg.Song = &song
	cfg.Keypad = true
	app.RunWithConfig(hal.New(), cfg)
}
