// Package terminal renders the framebuffer into a tcell screen using
// half-block characters, two Game Boy scanlines per terminal row.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kestrel-emu/dmgcore/backend"
	"github.com/kestrel-emu/dmgcore/machine"
	"github.com/kestrel-emu/dmgcore/video"
)

const (
	minTermWidth  = video.Width
	minTermHeight = video.Height/2 + 2
)

var shadeColors = [4]tcell.Color{
	tcell.ColorWhite,
	tcell.ColorSilver,
	tcell.ColorGray,
	tcell.ColorBlack,
}

// Backend renders through tcell. A terminal smaller than the framebuffer
// is a fatal condition per the CLI's exit-code contract, not something
// this backend papers over by drawing a warning and carrying on.
type Backend struct {
	screen  tcell.Screen
	running bool
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(callbacks backend.Callbacks) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	w, h := screen.Size()
	if w < minTermWidth || h < minTermHeight {
		screen.Fini()
		return fmt.Errorf("terminal too small for TUI: need at least %dx%d, have %dx%d", minTermWidth, minTermHeight, w, h)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	b.screen = screen
	b.running = true

	go b.pollInput(callbacks)

	return nil
}

func (b *Backend) pollInput(callbacks backend.Callbacks) {
	for b.running {
		ev := b.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			b.handleKey(ev, callbacks)
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}

func (b *Backend) handleKey(ev *tcell.EventKey, callbacks backend.Callbacks) {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		b.running = false
		if callbacks.OnQuit != nil {
			callbacks.OnQuit()
		}
		return
	}

	btn, ok := keyToButton(ev)
	if !ok {
		return
	}
	if callbacks.OnKeyPress != nil {
		callbacks.OnKeyPress(btn)
	}
	if callbacks.OnKeyRelease != nil {
		go func() {
			time.Sleep(80 * time.Millisecond)
			callbacks.OnKeyRelease(btn)
		}()
	}
}

func keyToButton(ev *tcell.EventKey) (uint8, bool) {
	switch ev.Key() {
	case tcell.KeyEnter:
		return uint8(machine.ButtonStart), true
	case tcell.KeyRight:
		return uint8(machine.ButtonRight), true
	case tcell.KeyLeft:
		return uint8(machine.ButtonLeft), true
	case tcell.KeyUp:
		return uint8(machine.ButtonUp), true
	case tcell.KeyDown:
		return uint8(machine.ButtonDown), true
	}
	switch ev.Rune() {
	case 'a':
		return uint8(machine.ButtonA), true
	case 's':
		return uint8(machine.ButtonB), true
	case 'q':
		return uint8(machine.ButtonSelect), true
	}
	return 0, false
}

func (b *Backend) Update(frame *video.Framebuffer) error {
	b.screen.Clear()
	for y := 0; y < video.Height; y += 2 {
		for x := 0; x < video.Width; x++ {
			top := frame.At(x, y)
			bottom := uint8(0)
			if y+1 < video.Height {
				bottom = frame.At(x, y+1)
			}
			char, fg, bg := halfBlock(top, bottom)
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			b.screen.SetContent(x, y/2+1, char, nil, style)
		}
	}
	b.screen.Show()
	return nil
}

func halfBlock(top, bottom uint8) (rune, tcell.Color, tcell.Color) {
	topColor := shadeColors[top]
	bottomColor := shadeColors[bottom]
	if top == bottom {
		return '█', topColor, tcell.ColorDefault
	}
	return '▀', topColor, bottomColor
}

func (b *Backend) Cleanup() error {
	b.running = false
	if b.screen != nil {
		b.screen.Fini()
	}
	return nil
}
