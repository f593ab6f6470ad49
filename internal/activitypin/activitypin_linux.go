//go:build linux

package activitypin

import (
	"time"

	gpiocdev "github.com/warthog618/go-gpiocdev"
)

// blipDuration is spec §6.12's "high for 150ms".
const blipDuration = 150 * time.Millisecond

type gpioPin struct {
	line *gpiocdev.Line
}

// Open requests offset on the named gpiochip device as an output line
// initially low.
func Open(chip string, offset int) (Indicator, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &gpioPin{line: line}, nil
}

// Blip drives the line high, then low again after blipDuration.
func (p *gpioPin) Blip() {
	_ = p.line.SetValue(1)
	go func() {
		time.Sleep(blipDuration)
		_ = p.line.SetValue(0)
	}()
}

func (p *gpioPin) Close() error {
	return p.line.Close()
}
