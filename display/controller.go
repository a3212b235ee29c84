package display

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"
)

// State is the panel power state.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateReady
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// DefaultInitTimeout bounds panel initialization. A panel stuck mid-init is
// a hardware safety problem; exceeding this is fatal to the process so a
// supervisor can restart from a clean state.
const DefaultInitTimeout = 45 * time.Second

// ErrInitTimeout is returned when the panel failed to initialize within the
// bounded time. Callers must treat it as fatal.
var ErrInitTimeout = errors.New("panel initialization timed out")

// Controller drives a Panel through Idle -> Initializing -> Ready ->
// Sleeping. It is not safe for concurrent use; the draw loop serializes all
// access.
type Controller struct {
	panel          Panel
	sleepAfterDraw bool
	initTimeout    time.Duration
	state          State
}

// NewController wraps panel. With sleepAfterDraw the panel is put to sleep
// after every push; otherwise it stays ready and later draws skip
// re-initialization.
func NewController(panel Panel, sleepAfterDraw bool) *Controller {
	return &Controller{
		panel:          panel,
		sleepAfterDraw: sleepAfterDraw,
		initTimeout:    DefaultInitTimeout,
		state:          StateIdle,
	}
}

// State reports the current power state.
func (c *Controller) State() State {
	return c.state
}

// Draw pushes a full frame, initializing the panel first if needed.
func (c *Controller) Draw(img image.Image) error {
	if err := c.ensureReady(); err != nil {
		return err
	}
	if err := c.panel.DisplayFull(img); err != nil {
		return fmt.Errorf("pushing frame: %w", err)
	}
	return c.maybeSleep()
}

// DrawPartial pushes only region of the frame.
func (c *Controller) DrawPartial(img image.Image, region image.Rectangle) error {
	if err := c.ensureReady(); err != nil {
		return err
	}
	if err := c.panel.DisplayPartial(img, region); err != nil {
		return fmt.Errorf("pushing partial frame: %w", err)
	}
	return c.maybeSleep()
}

// ensureReady initializes the panel unless it is already ready. Init runs on
// its own goroutine purely to bound its duration; the caller blocks until it
// finishes or the deadline expires.
func (c *Controller) ensureReady() error {
	if c.state == StateReady {
		return nil
	}

	c.state = StateInitializing
	slog.Info("Initializing panel", "timeout", c.initTimeout)

	done := make(chan error, 1)
	go func() {
		done <- c.panel.Init()
	}()

	select {
	case err := <-done:
		if err != nil {
			c.state = StateIdle
			return fmt.Errorf("initializing panel: %w", err)
		}
		c.state = StateReady
		return nil
	case <-time.After(c.initTimeout):
		return ErrInitTimeout
	}
}

func (c *Controller) maybeSleep() error {
	if !c.sleepAfterDraw {
		return nil
	}
	c.state = StateSleeping
	err := c.panel.Sleep()
	c.state = StateIdle
	if err != nil {
		return fmt.Errorf("sleeping panel: %w", err)
	}
	return nil
}
