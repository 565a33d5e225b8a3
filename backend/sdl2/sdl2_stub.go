//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/kestrel-emu/dmgcore/backend"
	"github.com/kestrel-emu/dmgcore/video"
)

// Backend stubs out the SDL2 renderer for builds without the sdl2 tag (and
// the SDL2 development libraries its cgo bindings require).
type Backend struct{}

func New() *Backend { return &Backend{} }

func (b *Backend) Init(callbacks backend.Callbacks) error {
	return fmt.Errorf("sdl2 backend not available: rebuild with -tags sdl2 and the SDL2 development libraries installed")
}

func (b *Backend) Update(frame *video.Framebuffer) error {
	return fmt.Errorf("sdl2 backend not available")
}

func (b *Backend) Cleanup() error { return nil }
