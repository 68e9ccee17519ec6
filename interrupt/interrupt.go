// Package interrupt turns asynchronous operator signals into requests the
// ping loop polls between exchanges.
package interrupt

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Signal is a pending operator request. Higher values take precedence.
type Signal int

const (
	None Signal = iota
	DisplayRequested
	StopRequested
)

func (s Signal) String() string {
	switch s {
	case None:
		return "none"
	case DisplayRequested:
		return "display"
	case StopRequested:
		return "stop"
	default:
		return "unknown"
	}
}

// Controller holds the pending request shared between the signal handler and
// the ping loop.
type Controller struct {
	mu    sync.Mutex
	state Signal
	wake  chan struct{}
}

func NewController() *Controller {
	return &Controller{wake: make(chan struct{}, 1)}
}

// Raise records a request. A stop request is never downgraded: once raised it
// stays pending and wins over any display request.
func (c *Controller) Raise(sig Signal) {
	c.mu.Lock()
	if sig > c.state {
		c.state = sig
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Take returns the pending request and clears it if it was a display
// request. StopRequested is terminal and remains pending.
func (c *Controller) Take() Signal {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s == DisplayRequested {
		c.state = None
	}
	return s
}

// Pending returns the pending request without clearing it.
func (c *Controller) Pending() Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait returns a channel that receives after Raise, so that a sleeping loop
// can wake up and poll.
func (c *Controller) Wait() <-chan struct{} {
	return c.wake
}

// ErrAlreadyRegistered is returned when a second controller is registered
// with the process signal handlers.
var ErrAlreadyRegistered = errors.New("interrupt handler already registered")

var registered uint32

// Register routes the process termination and display signals to c for the
// rest of the process lifetime. It may only be called once.
func Register(c *Controller) error {
	if c == nil {
		return errors.New("nil controller")
	}
	if !atomic.CompareAndSwapUint32(&registered, 0, 1) {
		return ErrAlreadyRegistered
	}

	ch := make(chan os.Signal, 4)
	signal.Notify(ch, append(append([]os.Signal{}, stopSignals...), displaySignals...)...)

	go func() {
		for sig := range ch {
			c.Raise(Classify(sig))
		}
	}()

	return nil
}

// Classify maps an OS signal to the request it stands for.
func Classify(sig os.Signal) Signal {
	for _, s := range stopSignals {
		if s == sig {
			return StopRequested
		}
	}
	for _, s := range displaySignals {
		if s == sig {
			return DisplayRequested
		}
	}
	return None
}
