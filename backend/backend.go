// Package backend defines the interface a rendering frontend implements:
// draw a frame, translate platform input into joypad presses, clean up.
package backend

import "github.com/kestrel-emu/dmgcore/video"

// Backend is one complete output platform for the emulator core.
type Backend interface {
	Init(callbacks Callbacks) error
	Update(frame *video.Framebuffer) error
	Cleanup() error
}

// Callbacks lets a backend report input and request shutdown without
// importing the machine package directly.
type Callbacks struct {
	OnKeyPress   func(button uint8)
	OnKeyRelease func(button uint8)
	OnQuit       func()
}
