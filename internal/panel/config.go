// Package panel turns composited frames into binary code modulation (BCM)
// bitplanes for a HUB75 style parallel bus LED matrix.
package panel

import (
	"fmt"
	"time"
)

// Bus word bits. One 16-bit word is clocked out per column and bitplane.
const (
	BitR1 uint16 = 1 << 0
	BitG1 uint16 = 1 << 1
	BitB1 uint16 = 1 << 2
	BitR2 uint16 = 1 << 3
	BitG2 uint16 = 1 << 4
	BitB2 uint16 = 1 << 5

	BitA uint16 = 1 << 6
	BitB uint16 = 1 << 7
	BitC uint16 = 1 << 8
	BitD uint16 = 1 << 9
	BitE uint16 = 1 << 10

	BitLAT uint16 = 1 << 11
	BitOEN uint16 = 1 << 12

	// BusWidth is the number of bus lines carrying data.
	BusWidth = 13
)

// MaxBitplanes is the colour depth of a channel.
const MaxBitplanes = 8

// Config holds the panel geometry and timing.
type Config struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	// Bitplanes is the BCM depth K; the top K bits of each channel are shown.
	Bitplanes    int `yaml:"bitplanes" json:"bitplanes"`
	MaxFrameRate int `yaml:"max_frame_rate" json:"max_frame_rate"`
	// LowPowerBrightness caps the brightness while the supply is weak.
	LowPowerBrightness int  `yaml:"low_power_brightness" json:"low_power_brightness"`
	ClockDivider       int  `yaml:"clkm_div_num" json:"clkm_div_num"`
	ClockInverted      bool `yaml:"is_clk_inverted" json:"is_clk_inverted"`
	// SwapPairs compensates for a bus FIFO that emits columns in swapped pairs.
	SwapPairs bool `yaml:"swap_pairs" json:"swap_pairs"`
}

// DefaultConfig returns the reference 128x32 panel settings.
func DefaultConfig() Config {
	return Config{
		Width:              128,
		Height:             32,
		Bitplanes:          7,
		MaxFrameRate:       30,
		LowPowerBrightness: 20,
		ClockDivider:       4,
		ClockInverted:      true,
		SwapPairs:          true,
	}
}

// FramePeriod is the minimum time between two frames.
func (c Config) FramePeriod() time.Duration {
	rate := c.MaxFrameRate
	if rate <= 0 {
		rate = 30
	}
	return time.Duration(1000/rate) * time.Millisecond
}

// Rows is the number of scan rows; the panel drives two rows per address.
func (c Config) Rows() int { return c.Height / 2 }

// Validate reports configurations the encoder cannot drive.
func (c Config) Validate() error {
	if c.Bitplanes < 1 || c.Bitplanes > MaxBitplanes {
		return fmt.Errorf("bitplanes must be 1..%d, got %d", MaxBitplanes, c.Bitplanes)
	}
	if c.Width < 2 {
		return fmt.Errorf("width must be at least 2, got %d", c.Width)
	}
	if c.SwapPairs && c.Width%2 != 0 {
		return fmt.Errorf("width must be even when swapping column pairs, got %d", c.Width)
	}
	if c.Height < 2 || c.Height%2 != 0 {
		return fmt.Errorf("height must be even, got %d", c.Height)
	}
	if c.Rows() > 32 {
		return fmt.Errorf("at most 32 address rows are supported, got %d", c.Rows())
	}
	return nil
}
