//go:build sdl2

// Package sdl2 renders the framebuffer through an SDL2 window. Building
// it requires the SDL2 development libraries and the sdl2 build tag; see
// sdl2_stub.go for the default build's fallback.
package sdl2

import (
	"fmt"
	"unsafe"

	"github.com/kestrel-emu/dmgcore/backend"
	"github.com/kestrel-emu/dmgcore/machine"
	"github.com/kestrel-emu/dmgcore/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	pixelScale = 3
	windowW    = video.Width * pixelScale
	windowH    = video.Height * pixelScale
)

var shadeRGBA = [4]uint32{
	0xFFFFFFFF,
	0x989898FF,
	0x4C4C4CFF,
	0x000000FF,
}

// Backend renders through an accelerated SDL2 renderer and a streaming
// texture sized to the Game Boy's native resolution, scaled up on present.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	pixels   []byte

	callbacks backend.Callbacks
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(callbacks backend.Callbacks) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	window, err := sdl.CreateWindow("dmgcore", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, windowW, windowH, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	b.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	b.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, video.Width, video.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	b.texture = texture
	b.pixels = make([]byte, video.Width*video.Height*4)
	b.running = true

	b.callbacks = callbacks
	return nil
}

func (b *Backend) Update(frame *video.Framebuffer) error {
	if !b.running {
		return nil
	}
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		b.handleEvent(event)
	}
	if !b.running {
		return nil
	}

	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			rgba := shadeRGBA[frame.At(x, y)]
			idx := (y*video.Width + x) * 4
			b.pixels[idx] = byte(rgba >> 24)
			b.pixels[idx+1] = byte(rgba >> 16)
			b.pixels[idx+2] = byte(rgba >> 8)
			b.pixels[idx+3] = byte(rgba)
		}
	}
	b.texture.Update(nil, unsafe.Pointer(&b.pixels[0]), video.Width*4)
	b.renderer.Clear()
	b.renderer.Copy(b.texture, nil, nil)
	b.renderer.Present()
	return nil
}

func (b *Backend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		b.running = false
		if b.callbacks.OnQuit != nil {
			b.callbacks.OnQuit()
		}
	case *sdl.KeyboardEvent:
		btn, ok := keyToButton(e.Keysym.Sym)
		if !ok {
			if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
				b.running = false
				if b.callbacks.OnQuit != nil {
					b.callbacks.OnQuit()
				}
			}
			return
		}
		if e.Type == sdl.KEYDOWN && b.callbacks.OnKeyPress != nil {
			b.callbacks.OnKeyPress(btn)
		} else if e.Type == sdl.KEYUP && b.callbacks.OnKeyRelease != nil {
			b.callbacks.OnKeyRelease(btn)
		}
	}
}

func keyToButton(key sdl.Keycode) (uint8, bool) {
	switch key {
	case sdl.K_RETURN:
		return uint8(machine.ButtonStart), true
	case sdl.K_RIGHT:
		return uint8(machine.ButtonRight), true
	case sdl.K_LEFT:
		return uint8(machine.ButtonLeft), true
	case sdl.K_UP:
		return uint8(machine.ButtonUp), true
	case sdl.K_DOWN:
		return uint8(machine.ButtonDown), true
	case sdl.K_a:
		return uint8(machine.ButtonA), true
	case sdl.K_s:
		return uint8(machine.ButtonB), true
	case sdl.K_q:
		return uint8(machine.ButtonSelect), true
	}
	return 0, false
}

func (b *Backend) Cleanup() error {
	if b.texture != nil {
		b.texture.Destroy()
	}
	if b.renderer != nil {
		b.renderer.Destroy()
	}
	if b.window != nil {
		b.window.Destroy()
	}
	sdl.Quit()
	return nil
}
