package conversation

import (
	"fmt"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// Compile-time interface check.
var _ domain.RingNotifier = (*UINotifier)(nil)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// UINotifier forwards ring lifecycle events to the host terminal so
// the user sees why the room suddenly got loud.
type UINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewUINotifier creates a notifier printing through printFn.
// If printFn is nil, fmt.Printf is used.
func NewUINotifier(log *logger.Logger, printFn PrintFunc) *UINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &UINotifier{log: log, printFn: printFn}
}

// RingStarted announces a firing alarm.
func (n *UINotifier) RingStarted(a *domain.Alarm) {
	n.log.Info("ring started: %q (%s)", a.Name, a.TimeLabel())
	n.printFn("⏰ %s — %s  (stop / snooze)", a.TimeLabel(), a.Name)
}

// RingStopped announces the end of a ring.
func (n *UINotifier) RingStopped(a *domain.Alarm) {
	n.log.Info("ring stopped: %q", a.Name)
	n.printFn("Alarm %q stopped.", a.Name)
}
