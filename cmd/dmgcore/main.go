package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/kestrel-emu/dmgcore/backend"
	"github.com/kestrel-emu/dmgcore/backend/sdl2"
	"github.com/kestrel-emu/dmgcore/backend/terminal"
	"github.com/kestrel-emu/dmgcore/machine"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore -b boot.gb -c cart.gb"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "b", Value: "boot.gb", Usage: "boot ROM image path"},
		cli.StringFlag{Name: "c", Value: "cart.gb", Usage: "cartridge ROM image path"},
		cli.BoolFlag{Name: "l", Usage: "copy the Nintendo logo from the boot ROM into the cartridge header mirror"},
		cli.BoolFlag{Name: "headless", Usage: "run without a display backend"},
		cli.IntFlag{Name: "frames", Usage: "number of frames to run in headless mode", Value: 0},
		cli.BoolFlag{Name: "sdl2", Usage: "use the SDL2 backend instead of the terminal backend"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	bootPath := c.String("b")
	cartPath := c.String("c")

	boot, err := os.ReadFile(bootPath)
	if err != nil {
		return fmt.Errorf("reading boot rom: %w", err)
	}
	cart, err := os.ReadFile(cartPath)
	if err != nil {
		return fmt.Errorf("reading cartridge rom: %w", err)
	}

	m := machine.New(slog.Default())
	if err := m.LoadCartridge(cart); err != nil {
		return err
	}
	m.LoadBootROM(boot)
	if c.Bool("l") {
		m.CopyLogoFromBootROM(boot)
	}

	if c.Bool("headless") {
		return runHeadless(m, c.Int("frames"))
	}
	return runWithBackend(m, c.Bool("sdl2"))
}

func runHeadless(m *machine.Machine, frames int) error {
	if frames <= 0 {
		return errors.New("headless mode requires -frames with a positive value")
	}
	m.DisablePacing()
	for i := 0; i < frames && !m.Stopped(); i++ {
		if err := m.RunUntilFrame(); err != nil {
			return err
		}
	}
	return nil
}

func runWithBackend(m *machine.Machine, useSDL2 bool) error {
	var b backend.Backend
	if useSDL2 {
		b = sdl2.New()
	} else {
		b = terminal.New()
	}

	quit := false
	callbacks := backend.Callbacks{
		OnKeyPress:   func(btn uint8) { m.HandleKeyPress(machine.Button(btn)) },
		OnKeyRelease: func(btn uint8) { m.HandleKeyRelease(machine.Button(btn)) },
		OnQuit:       func() { quit = true },
	}

	if err := b.Init(callbacks); err != nil {
		return err
	}
	defer b.Cleanup()

	for !quit && !m.Stopped() {
		if err := m.RunUntilFrame(); err != nil {
			return err
		}
		if err := b.Update(m.GetCurrentFrame()); err != nil {
			return err
		}
	}
	return nil
}
