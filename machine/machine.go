// Package machine wires the CPU, address space, timer, graphics
// controller, audio register bank and OAM DMA unit into one runnable
// unit, and is the one place that owns the dmgerr.Recover boundary:
// everything below this package may raise a dmgerr.Fatal, but only
// Machine.Run, Machine.RunUntilFrame and Machine.Step catch it and turn it
// into a returned error.
package machine

import (
	"log/slog"

	"github.com/kestrel-emu/dmgcore/addr"
	"github.com/kestrel-emu/dmgcore/audio"
	"github.com/kestrel-emu/dmgcore/bit"
	"github.com/kestrel-emu/dmgcore/clock"
	"github.com/kestrel-emu/dmgcore/cpu"
	"github.com/kestrel-emu/dmgcore/dmgerr"
	"github.com/kestrel-emu/dmgcore/memory"
	"github.com/kestrel-emu/dmgcore/timer"
	"github.com/kestrel-emu/dmgcore/video"
)

// Button re-exports memory.Button so callers don't need to import memory
// just to report input.
type Button = memory.Button

const (
	ButtonA      = memory.ButtonA
	ButtonB      = memory.ButtonB
	ButtonSelect = memory.ButtonSelect
	ButtonStart  = memory.ButtonStart
	ButtonRight  = memory.ButtonRight
	ButtonLeft   = memory.ButtonLeft
	ButtonUp     = memory.ButtonUp
	ButtonDown   = memory.ButtonDown
)

// Machine is the top-level emulator instance.
type Machine struct {
	cpu   *cpu.CPU
	mem   *memory.AddressSpace
	ppu   *video.Controller
	tmr   *timer.Timer
	aud   *audio.Registers
	joy   *memory.Joypad
	ser   *memory.Serial
	clock *clock.Bus
	cart  *memory.Cartridge
	dma   *dmaUnit

	ifReg uint8
	ieReg uint8

	frameReady bool
	logger     *slog.Logger
}

// New returns a Machine with every subsystem wired together but no
// cartridge loaded; LoadCartridge must be called before Run.
func New(logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{mem: memory.New(), clock: clock.NewBus(), logger: logger}

	m.joy = memory.NewJoypad(func() { m.requestInterrupt(addr.Joypad) })
	m.ser = memory.NewSerial(func() { m.requestInterrupt(addr.Serial) }, logger)
	m.tmr = timer.New(func() { m.requestInterrupt(addr.Timer) })
	m.aud = audio.New()
	m.dma = newDMAUnit(m.mem.Read, m.mem.Write)
	m.ppu = video.New(
		func(a uint16) uint8 { return m.mem.Read(a) },
		func(offset uint8) uint8 { return m.mem.Read(addr.OAMStart + uint16(offset)) },
		func() { m.requestInterrupt(addr.VBlank); m.frameReady = true },
		func() { m.requestInterrupt(addr.LCDSTAT) },
		nil,
	)

	m.mem.RegisterDirect(addr.IF, &m.ifReg)
	m.mem.RegisterDirect(addr.IE, &m.ieReg)

	m.mem.RegisterCallback(addr.P1, m.joy.Callback)
	m.mem.RegisterCallback(addr.SB, m.ser.Callback)
	m.mem.RegisterCallback(addr.SC, m.ser.Callback)
	m.mem.RegisterCallback(addr.DIV, m.tmr.Callback)
	m.mem.RegisterCallback(addr.TIMA, m.tmr.Callback)
	m.mem.RegisterCallback(addr.TMA, m.tmr.Callback)
	m.mem.RegisterCallback(addr.TAC, m.tmr.Callback)
	for a := addr.AudioStart; a <= 0xFF26; a++ {
		m.mem.RegisterCallback(a, m.aud.Callback)
	}
	for a := uint16(0xFF30); a <= 0xFF3F; a++ {
		m.mem.RegisterCallback(a, m.aud.WaveCallback)
	}

	m.mem.RegisterDirect(addr.LCDC, &m.ppu.LCDC)
	m.mem.RegisterCallback(addr.STAT, m.ppu.STATCallback)
	m.mem.RegisterDirect(addr.SCY, &m.ppu.SCY)
	m.mem.RegisterDirect(addr.SCX, &m.ppu.SCX)
	m.mem.RegisterCallback(addr.LY, m.ppu.LYCallback)
	m.mem.RegisterDirect(addr.LYC, &m.ppu.LYC)
	m.mem.RegisterCallback(addr.DMA, m.dmaCallback)
	m.mem.RegisterDirect(addr.BGP, &m.ppu.BGP)
	m.mem.RegisterDirect(addr.OBP0, &m.ppu.OBP0)
	m.mem.RegisterDirect(addr.OBP1, &m.ppu.OBP1)
	m.mem.RegisterDirect(addr.WY, &m.ppu.WY)
	m.mem.RegisterDirect(addr.WX, &m.ppu.WX)

	m.mem.RegisterCallback(addr.BOOT, m.bootCallback)

	m.clock.Subscribe(m.tmr)
	m.clock.Subscribe(m.ppu)
	m.clock.Subscribe(m.ser)
	m.clock.Subscribe(m.dma)

	m.cpu = cpu.New(m)

	return m
}

func (m *Machine) requestInterrupt(i addr.Interrupt) {
	m.ifReg = bit.Set(i.Bit(), m.ifReg)
}

func (m *Machine) dmaCallback(address uint16, value uint8, isWrite bool) uint8 {
	if !isWrite {
		return 0xFF
	}
	m.dma.Start(uint16(value) << 8)
	return 0
}

func (m *Machine) bootCallback(address uint16, value uint8, isWrite bool) uint8 {
	if isWrite && value != 0 {
		m.mem.UnmapBootROM()
	}
	return 0
}

// Read, Write and Tick implement cpu.Bus.
func (m *Machine) Read(address uint16) uint8  { return m.mem.Read(address) }
func (m *Machine) Write(address uint16, v uint8) { m.mem.Write(address, v) }
func (m *Machine) Tick(cycles uint8)          { m.clock.Add(cycles) }

// LoadCartridge parses rom's header and installs the matching bank
// controller.
func (m *Machine) LoadCartridge(rom []byte) error {
	cart, err := memory.LoadCartridge(rom)
	if err != nil {
		return err
	}
	m.cart = cart
	m.mem.LoadCartridge(cart)
	return nil
}

// LoadBootROM maps boot over the cartridge's first page and resets PC to
// 0x0000 so the boot sequence runs before the cartridge's own entry point.
func (m *Machine) LoadBootROM(boot []byte) {
	m.mem.LoadBootROM(boot)
	m.cpu.ResetProgramCounter(0x0000)
}

// CopyLogoFromBootROM is the -l testing aid: it overwrites the loaded
// cartridge's logo bytes with the boot ROM's own copy.
func (m *Machine) CopyLogoFromBootROM(boot []byte) {
	if m.cart != nil {
		m.cart.CopyLogoFrom(boot)
	}
}

// DisablePacing turns off wall-clock pacing, for headless/frame-count runs
// and tests.
func (m *Machine) DisablePacing() { m.clock.DisablePacing() }

// HandleKeyPress and HandleKeyRelease forward to the joypad matrix.
func (m *Machine) HandleKeyPress(b Button)   { m.joy.Press(b) }
func (m *Machine) HandleKeyRelease(b Button) { m.joy.Release(b) }

// GetCurrentFrame returns the graphics controller's framebuffer.
func (m *Machine) GetCurrentFrame() *video.Framebuffer { return m.ppu.Frame() }

// Stopped reports whether the CPU executed STOP and is parked, the one
// condition the CLI treats as a clean exit rather than a fatal error.
func (m *Machine) Stopped() bool { return m.cpu.Stopped() }

// Step executes exactly one CPU instruction boundary, recovering any
// dmgerr.Fatal raised along the way into a returned error.
func (m *Machine) Step() (err error) {
	defer dmgerr.Recover(&err)
	_, stepErr := m.cpu.Step()
	if stepErr != nil {
		return stepErr
	}
	return nil
}

// RunUntilFrame steps the CPU until the graphics controller has completed
// one full frame (a VBlank entry), returning any fatal error encountered.
func (m *Machine) RunUntilFrame() (err error) {
	defer dmgerr.Recover(&err)
	m.frameReady = false
	for !m.frameReady {
		if _, stepErr := m.cpu.Step(); stepErr != nil {
			return stepErr
		}
	}
	return nil
}

// Run steps the CPU forever, until a STOP instruction parks the CPU or a
// fatal error is raised.
func (m *Machine) Run() (err error) {
	defer dmgerr.Recover(&err)
	for !m.cpu.Stopped() {
		if _, stepErr := m.cpu.Step(); stepErr != nil {
			return stepErr
		}
	}
	return nil
}
