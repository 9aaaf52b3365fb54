package kiosk

import (
	"fmt"
	"log/slog"
	"time"

	"certificate-terminal/internal/domain"
)

// Screen is one registered kiosk screen. Rendering happens in the
// frontend; the backend screen object exists for identity and hooks.
type Screen interface {
	ID() domain.Screen
}

// Showable is the optional capability a screen implements to run logic
// when it becomes active. A failing hook is logged but never prevents
// the screen switch.
type Showable interface {
	OnShow() error
}

// transitions lists the user-driven edges of the screen graph. Every
// path leads back to Start; no screen is reachable in a fresh session
// without passing through Start first.
var transitions = map[domain.Screen][]domain.Screen{
	domain.ScreenStart:    {domain.ScreenTutorial, domain.ScreenForm},
	domain.ScreenTutorial: {domain.ScreenForm, domain.ScreenStart},
	domain.ScreenForm:     {domain.ScreenReview, domain.ScreenStart},
	domain.ScreenReview:   {domain.ScreenForm, domain.ScreenPrinting},
	domain.ScreenPrinting: {domain.ScreenDone, domain.ScreenStart},
	domain.ScreenDone:     {domain.ScreenStart},
}

// Navigator is the kiosk navigation state machine: current screen,
// session state, and the idle-driven auto reset. All methods must run
// on the UI dispatch loop; only the idle timer fires elsewhere, and it
// reposts itself through the configured post function.
type Navigator struct {
	screens       map[domain.Screen]Screen
	current       domain.Screen
	session       *Session
	idleSuspended bool
	idleTimeout   time.Duration
	idleTimer     *time.Timer

	// post marshals timer callbacks onto the UI dispatch loop.
	post func(func())
	// onChange notifies the frontend about the active screen.
	onChange func(domain.Screen)
}

// NewNavigator creates the state machine. A zero idleTimeout disables
// the automatic reset.
func NewNavigator(idleTimeout time.Duration, post func(func()), onChange func(domain.Screen)) *Navigator {
	if post == nil {
		post = func(task func()) { task() }
	}
	return &Navigator{
		screens:     make(map[domain.Screen]Screen),
		session:     NewSession(),
		idleTimeout: idleTimeout,
		post:        post,
		onChange:    onChange,
	}
}

// Register adds a screen to the machine.
func (n *Navigator) Register(screen Screen) {
	n.screens[screen.ID()] = screen
}

// Current returns the active screen id.
func (n *Navigator) Current() domain.Screen {
	return n.current
}

// Session returns the shared per-visitor state.
func (n *Navigator) Session() *Session {
	return n.session
}

// IdleSuspended reports whether the auto-reset timer is disarmed.
func (n *Navigator) IdleSuspended() bool {
	return n.idleSuspended
}

// Show switches to the requested screen. The transition must be an
// edge of the screen graph (the initial switch to Start is always
// allowed). The target's OnShow hook runs after activation; a hook
// failure is logged and the switch stands.
func (n *Navigator) Show(target domain.Screen) error {
	screen, ok := n.screens[target]
	if !ok {
		return fmt.Errorf("screen %q does not exist", target)
	}

	if n.current != "" && target != n.current && !edgeAllowed(n.current, target) {
		return fmt.Errorf("no transition %s -> %s", n.current, target)
	}

	n.activate(screen)
	return nil
}

// SetIdleSuspended toggles the auto-reset timer. The Printing screen
// suspends it for the duration of a job; completion or error re-arms.
func (n *Navigator) SetIdleSuspended(suspended bool) {
	n.idleSuspended = suspended
	if suspended {
		n.stopIdleTimer()
		return
	}
	n.armIdleTimer()
}

// Touch records a user input event and pushes the idle deadline.
func (n *Navigator) Touch() {
	if !n.idleSuspended {
		n.armIdleTimer()
	}
}

// Home clears the session and returns to Start, bypassing the edge
// check. Used by the idle timeout, the Done screen, and the error
// panel's home action; this is the single place transient personal
// data is discarded.
func (n *Navigator) Home() {
	n.session.Clear()
	if screen, ok := n.screens[domain.ScreenStart]; ok {
		n.activate(screen)
	}
}

// activate performs the screen switch, hook, and idle re-arm.
func (n *Navigator) activate(screen Screen) {
	n.current = screen.ID()

	if showable, ok := screen.(Showable); ok {
		if err := showable.OnShow(); err != nil {
			slog.Error("screen on-show hook failed", "screen", screen.ID(), "error", err)
		}
	}

	if n.onChange != nil {
		n.onChange(n.current)
	}
	if !n.idleSuspended {
		n.armIdleTimer()
	}
}

// armIdleTimer (re)starts the countdown to the automatic reset.
func (n *Navigator) armIdleTimer() {
	n.stopIdleTimer()
	if n.idleTimeout <= 0 {
		return
	}
	n.idleTimer = time.AfterFunc(n.idleTimeout, func() {
		n.post(n.handleIdleTimeout)
	})
}

// stopIdleTimer disarms a pending reset.
func (n *Navigator) stopIdleTimer() {
	if n.idleTimer != nil {
		n.idleTimer.Stop()
		n.idleTimer = nil
	}
}

// handleIdleTimeout runs on the UI loop when the deadline fires.
// Suspension is rechecked: a job may have started after the timer was
// armed.
func (n *Navigator) handleIdleTimeout() {
	if n.idleSuspended {
		return
	}
	slog.Info("idle timeout, resetting kiosk", "screen", n.current)
	n.Home()
}

// edgeAllowed checks the transition table.
func edgeAllowed(from, to domain.Screen) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}
