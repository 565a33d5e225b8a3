package machine

import "github.com/kestrel-emu/dmgcore/addr"

// dmaUnit is OAM DMA: once armed by a write to 0xFF46, it copies one byte
// per machine cycle (4 T-cycles) from source+n into OAM+n, deactivating
// once it has copied all 0xA0 bytes.
type dmaUnit struct {
	active  bool
	counter uint8
	source  uint16
	sub     uint8

	read  func(address uint16) uint8
	write func(address uint16, value uint8)
}

func newDMAUnit(read func(uint16) uint8, write func(uint16, uint8)) *dmaUnit {
	return &dmaUnit{read: read, write: write}
}

// Start arms the transfer from source (the high byte written to 0xFF46,
// shifted into a full address).
func (d *dmaUnit) Start(source uint16) {
	d.active = true
	d.counter = 0
	d.sub = 0
	d.source = source
}

func (d *dmaUnit) Active() bool { return d.active }

// Tick is driven by the clock bus alongside the timer and PPU.
func (d *dmaUnit) Tick(cycles uint8) {
	for i := uint8(0); i < cycles; i++ {
		d.step()
	}
}

func (d *dmaUnit) step() {
	if !d.active {
		return
	}
	d.sub++
	if d.sub < 4 {
		return
	}
	d.sub = 0

	d.write(addr.OAMStart+uint16(d.counter), d.read(d.source+uint16(d.counter)))
	d.counter++
	if d.counter >= 0xA0 {
		d.active = false
	}
}
