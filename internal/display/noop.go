package display

import (
	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// Compile-time interface check.
var _ domain.DisplayPeripheral = (*NoOp)(nil)

// NoOp is a display peripheral that swallows everything. Used for
// headless runs and as a stand-in when no peripheral is attached.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op display peripheral.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// DisplayMessage logs and drops the message.
func (n *NoOp) DisplayMessage(text string) error {
	n.log.Debug("display no-op: would show %q", text)
	return nil
}

// IsConnected always reports false.
func (n *NoOp) IsConnected() bool { return false }
