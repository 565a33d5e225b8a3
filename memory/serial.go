package memory

import (
	"log/slog"

	"github.com/kestrel-emu/dmgcore/addr"
)

// cyclesPerByte approximates the internal-clock serial transfer rate
// (8192Hz bit clock, 8 bits) in T-cycles at the 4.194304MHz system clock.
const cyclesPerByte = 4096

// Serial is a minimal SB/SC register pair with no link partner: a
// transfer started with the internal clock selected completes on its own
// after cyclesPerByte, logs the byte that would have gone out, shifts in
// all-ones (an unconnected line reads high), and raises Serial.
type Serial struct {
	sb           uint8
	sc           uint8
	transferring bool
	remaining    int

	requestInterrupt func()
	logger           *slog.Logger
}

func NewSerial(requestInterrupt func(), logger *slog.Logger) *Serial {
	return &Serial{requestInterrupt: requestInterrupt, logger: logger}
}

func (s *Serial) Tick(cycles uint8) {
	if !s.transferring {
		return
	}
	s.remaining -= int(cycles)
	if s.remaining > 0 {
		return
	}
	s.transferring = false
	s.sc &^= 0x80
	if s.logger != nil {
		s.logger.Debug("serial transfer complete, no link partner", "byte", s.sb)
	}
	s.sb = 0xFF
	if s.requestInterrupt != nil {
		s.requestInterrupt()
	}
}

// Callback is installed on both addr.SB and addr.SC.
func (s *Serial) Callback(address uint16, value uint8, isWrite bool) uint8 {
	switch address {
	case addr.SB:
		if isWrite {
			s.sb = value
			return 0
		}
		return s.sb
	case addr.SC:
		if isWrite {
			s.sc = value | 0x7E
			if value&0x81 == 0x81 {
				s.transferring = true
				s.remaining = cyclesPerByte
			}
			return 0
		}
		return s.sc
	default:
		return 0xFF
	}
}
