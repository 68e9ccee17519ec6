package interrupt_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/thetooth/pingctl/interrupt"
)

func TestIdle(t *testing.T) {
	c := interrupt.NewController()
	if got := c.Take(); got != interrupt.None {
		t.Errorf("Expected no pending request, got %v", got)
	}
}

func TestDisplayIsCleared(t *testing.T) {
	c := interrupt.NewController()
	c.Raise(interrupt.DisplayRequested)

	if got := c.Pending(); got != interrupt.DisplayRequested {
		t.Fatalf("Expected display pending, got %v", got)
	}
	if got := c.Take(); got != interrupt.DisplayRequested {
		t.Fatalf("Expected display, got %v", got)
	}
	if got := c.Take(); got != interrupt.None {
		t.Errorf("Display must be cleared after it is taken, got %v", got)
	}
}

func TestStopIsTerminal(t *testing.T) {
	c := interrupt.NewController()
	c.Raise(interrupt.StopRequested)

	for i := 0; i < 3; i++ {
		if got := c.Take(); got != interrupt.StopRequested {
			t.Fatalf("Stop must stay pending, got %v", got)
		}
	}
}

func TestStopWins(t *testing.T) {
	tests := []struct {
		name  string
		order []interrupt.Signal
	}{
		{"display then stop", []interrupt.Signal{interrupt.DisplayRequested, interrupt.StopRequested}},
		{"stop then display", []interrupt.Signal{interrupt.StopRequested, interrupt.DisplayRequested}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := interrupt.NewController()
			for _, sig := range tt.order {
				c.Raise(sig)
			}
			if got := c.Take(); got != interrupt.StopRequested {
				t.Errorf("Expected stop to take precedence, got %v", got)
			}
		})
	}
}

func TestWait(t *testing.T) {
	c := interrupt.NewController()

	select {
	case <-c.Wait():
		t.Fatal("Unexpected wakeup")
	default:
	}

	// several raises coalesce into one wakeup and never block
	c.Raise(interrupt.DisplayRequested)
	c.Raise(interrupt.DisplayRequested)

	select {
	case <-c.Wait():
	case <-time.After(time.Second):
		t.Fatal("Expected a wakeup after raise")
	}
}

func TestConcurrentRaise(t *testing.T) {
	c := interrupt.NewController()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Raise(interrupt.DisplayRequested)
		}()
		go func() {
			defer wg.Done()
			c.Take()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Raise(interrupt.StopRequested)
	}()
	wg.Wait()

	if got := c.Take(); got != interrupt.StopRequested {
		t.Errorf("Expected stop after concurrent raises, got %v", got)
	}
}

func TestClassify(t *testing.T) {
	if got := interrupt.Classify(os.Interrupt); got != interrupt.StopRequested {
		t.Errorf("Expected interrupt to request a stop, got %v", got)
	}
	if got := interrupt.Classify(os.Kill); got != interrupt.None {
		t.Errorf("Expected kill to be ignored, got %v", got)
	}
}
