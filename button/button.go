// Package button watches a GPIO refresh button. Presses are delivered as
// edge events on a channel; debouncing beyond edge detection is the draw
// loop's cooldown window.
package button

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// pollInterval is how often the pin level is sampled.
const pollInterval = 100 * time.Millisecond

// pin is the minimal surface used from a GPIO input, split out so tests can
// substitute a fake.
type pin interface {
	Read() gpio.Level
}

// Watch opens pinName (e.g. "GPIO5"), pulled up, and starts a goroutine that
// sends on presses for every high-to-low edge. Sends never block: a press
// during an in-flight draw is coalesced or dropped.
func Watch(pinName string, presses chan<- struct{}) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initializing gpio host: %w", err)
	}

	p := gpioreg.ByName(pinName)
	if p == nil {
		return fmt.Errorf("no such gpio pin: %s", pinName)
	}
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return fmt.Errorf("configuring %s as input: %w", pinName, err)
	}

	go poll(p, presses)
	return nil
}

func poll(p pin, presses chan<- struct{}) {
	wasPressed := false
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		pressed := p.Read() == gpio.Low
		if pressed && !wasPressed {
			select {
			case presses <- struct{}{}:
			default:
			}
		}
		wasPressed = pressed
	}
}
