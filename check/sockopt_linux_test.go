//go:build linux

package check

import (
	"syscall"
	"testing"
)

func TestExplainPlatformError(t *testing.T) {
	if got := ExplainPlatformError(syscall.EPERM); got != "EPERM: operation not permitted" {
		t.Errorf("Unexpected explanation %q", got)
	}
	if got := ExplainPlatformError(syscall.Errno(4095)); got != syscall.Errno(4095).Error() {
		t.Errorf("Unexpected explanation for unknown code %q", got)
	}
}
