package button

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"periph.io/x/conn/v3/gpio"
)

// fakePin replays a scripted sequence of levels, then holds the last one.
type fakePin struct {
	mu     sync.Mutex
	levels []gpio.Level
}

func (f *fakePin) Read() gpio.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.levels) == 0 {
		return gpio.High
	}
	l := f.levels[0]
	if len(f.levels) > 1 {
		f.levels = f.levels[1:]
	}
	return l
}

func TestPollEmitsOnFallingEdgeOnly(t *testing.T) {
	// High, press held for three samples, release: exactly one event.
	p := &fakePin{levels: []gpio.Level{gpio.High, gpio.Low, gpio.Low, gpio.Low, gpio.High}}
	presses := make(chan struct{}, 4)

	go poll(p, presses)

	select {
	case <-presses:
	case <-time.After(2 * time.Second):
		t.Fatal("no press detected")
	}

	select {
	case <-presses:
		t.Fatal("held button reported more than one press")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatchRejectsUnknownPin(t *testing.T) {
	err := Watch("not-a-real-pin", make(chan struct{}, 1))
	assert.Error(t, err)
}
