package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerOnValues(t *testing.T) {
	r := New()
	assert.Equal(t, uint8(0x80), r.Callback(0xFF10, 0, false))
	assert.Equal(t, uint8(0xBF), r.Callback(0xFF14, 0, false))
}

func TestNR52GatesOtherWrites(t *testing.T) {
	r := New()
	r.Callback(0xFF26, 0x00, true) // power off
	r.Callback(0xFF12, 0x55, true)
	assert.Equal(t, uint8(0xF3), r.Callback(0xFF12, 0, false), "write while powered off is dropped")

	r.Callback(0xFF26, 0x80, true) // power on
	r.Callback(0xFF12, 0x55, true)
	assert.Equal(t, uint8(0x55), r.Callback(0xFF12, 0, false))
}

func TestWaveRAMAlwaysWritable(t *testing.T) {
	r := New()
	r.Callback(0xFF26, 0x00, true)
	r.WaveCallback(0xFF30, 0xAB, true)
	assert.Equal(t, uint8(0xAB), r.WaveCallback(0xFF30, 0, false))
}
