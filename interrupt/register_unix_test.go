//go:build unix

package interrupt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/thetooth/pingctl/interrupt"
	"golang.org/x/sys/unix"
)

func TestRegister(t *testing.T) {
	c := interrupt.NewController()
	if err := interrupt.Register(c); err != nil {
		t.Fatal(err)
	}
	if err := interrupt.Register(interrupt.NewController()); !errors.Is(err, interrupt.ErrAlreadyRegistered) {
		t.Fatalf("Expected second registration to fail, got %v", err)
	}

	if got := interrupt.Classify(unix.SIGQUIT); got != interrupt.DisplayRequested {
		t.Fatalf("Expected SIGQUIT to request a display, got %v", got)
	}

	if err := unix.Kill(unix.Getpid(), unix.SIGQUIT); err != nil {
		t.Fatal(err)
	}

	select {
	case <-c.Wait():
	case <-time.After(5 * time.Second):
		t.Fatal("Signal was not delivered to the controller")
	}
	if got := c.Take(); got != interrupt.DisplayRequested {
		t.Errorf("Expected display request, got %v", got)
	}
}
