package kiosk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"certificate-terminal/internal/domain"
)

// stubScreen is a plain screen without hooks.
type stubScreen struct {
	id domain.Screen
}

func (s *stubScreen) ID() domain.Screen { return s.id }

// hookScreen records OnShow invocations and can fail the hook.
type hookScreen struct {
	id      domain.Screen
	shows   int
	hookErr error
}

func (s *hookScreen) ID() domain.Screen { return s.id }

func (s *hookScreen) OnShow() error {
	s.shows++
	return s.hookErr
}

// register fills a navigator with all six kiosk screens.
func registerAll(n *Navigator) {
	for _, id := range []domain.Screen{
		domain.ScreenStart,
		domain.ScreenTutorial,
		domain.ScreenForm,
		domain.ScreenReview,
		domain.ScreenPrinting,
		domain.ScreenDone,
	} {
		n.Register(&stubScreen{id: id})
	}
}

// TestShowFollowsScreenGraph walks the full visitor path and rejects
// edges not in the graph.
func TestShowFollowsScreenGraph(t *testing.T) {
	n := NewNavigator(0, nil, nil)
	registerAll(n)

	require.NoError(t, n.Show(domain.ScreenStart))
	for _, target := range []domain.Screen{
		domain.ScreenForm,
		domain.ScreenReview,
		domain.ScreenPrinting,
		domain.ScreenDone,
		domain.ScreenStart,
	} {
		require.NoError(t, n.Show(target), "to %s", target)
		require.Equal(t, target, n.Current())
	}

	// Done is only reachable from Printing.
	require.Error(t, n.Show(domain.ScreenDone))
	require.Equal(t, domain.ScreenStart, n.Current())
}

// TestShowUnknownScreen reports missing registrations.
func TestShowUnknownScreen(t *testing.T) {
	n := NewNavigator(0, nil, nil)
	err := n.Show(domain.ScreenStart)
	require.Error(t, err)
}

// TestShowRunsOnShowHook verifies the optional capability fires and
// that a failing hook does not prevent the switch.
func TestShowRunsOnShowHook(t *testing.T) {
	n := NewNavigator(0, nil, nil)
	registerAll(n)
	form := &hookScreen{id: domain.ScreenForm, hookErr: errors.New("hook broke")}
	n.Register(form)

	require.NoError(t, n.Show(domain.ScreenStart))
	require.NoError(t, n.Show(domain.ScreenForm))
	require.Equal(t, 1, form.shows)
	require.Equal(t, domain.ScreenForm, n.Current())
}

// TestShowNotifiesOnChange pushes every activation to the frontend
// callback.
func TestShowNotifiesOnChange(t *testing.T) {
	var seen []domain.Screen
	n := NewNavigator(0, nil, func(s domain.Screen) { seen = append(seen, s) })
	registerAll(n)

	require.NoError(t, n.Show(domain.ScreenStart))
	require.NoError(t, n.Show(domain.ScreenForm))
	require.Equal(t, []domain.Screen{domain.ScreenStart, domain.ScreenForm}, seen)
}

// TestHomeClearsSession discards personal data and lands on Start.
func TestHomeClearsSession(t *testing.T) {
	n := NewNavigator(0, nil, nil)
	registerAll(n)
	require.NoError(t, n.Show(domain.ScreenStart))
	require.NoError(t, n.Show(domain.ScreenForm))

	n.Session().SetForm(domain.FormData{Name: "Мила"})
	n.Session().SetLastJobID("job-1")
	n.Home()

	require.Equal(t, domain.ScreenStart, n.Current())
	require.True(t, n.Session().Empty())
}

// TestIdleTimeoutResetsKiosk verifies the auto reset: screen back to
// Start and session emptied, regardless of the prior screen.
func TestIdleTimeoutResetsKiosk(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Stop()

	n := NewNavigator(20*time.Millisecond, loop.Post, nil)
	registerAll(n)
	loop.Do(func() {
		require.NoError(t, n.Show(domain.ScreenStart))
		require.NoError(t, n.Show(domain.ScreenForm))
		n.Session().SetForm(domain.FormData{Name: "Мила"})
	})

	require.Eventually(t, func() bool {
		var current domain.Screen
		var empty bool
		loop.Do(func() {
			current = n.Current()
			empty = n.Session().Empty()
		})
		return current == domain.ScreenStart && empty
	}, time.Second, 5*time.Millisecond)
}

// TestIdleSuspensionBlocksReset: while suspended, elapsed time never
// forces a screen change.
func TestIdleSuspensionBlocksReset(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Stop()

	n := NewNavigator(10*time.Millisecond, loop.Post, nil)
	registerAll(n)
	loop.Do(func() {
		require.NoError(t, n.Show(domain.ScreenStart))
		require.NoError(t, n.Show(domain.ScreenForm))
		require.NoError(t, n.Show(domain.ScreenReview))
		require.NoError(t, n.Show(domain.ScreenPrinting))
		n.SetIdleSuspended(true)
		n.Session().SetForm(domain.FormData{Name: "Мила"})
	})

	time.Sleep(80 * time.Millisecond)

	loop.Do(func() {
		require.Equal(t, domain.ScreenPrinting, n.Current())
		require.False(t, n.Session().Empty())
	})
}

// TestIdleResumesAfterSuspension re-arms the timer when the job ends.
func TestIdleResumesAfterSuspension(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Stop()

	n := NewNavigator(20*time.Millisecond, loop.Post, nil)
	registerAll(n)
	loop.Do(func() {
		require.NoError(t, n.Show(domain.ScreenStart))
		require.NoError(t, n.Show(domain.ScreenForm))
		n.SetIdleSuspended(true)
	})

	time.Sleep(60 * time.Millisecond)
	loop.Do(func() {
		require.Equal(t, domain.ScreenForm, n.Current())
		n.SetIdleSuspended(false)
	})

	require.Eventually(t, func() bool {
		var current domain.Screen
		loop.Do(func() { current = n.Current() })
		return current == domain.ScreenStart
	}, time.Second, 5*time.Millisecond)
}

// TestTouchPushesDeadline keeps an active visitor on their screen.
func TestTouchPushesDeadline(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Stop()

	n := NewNavigator(60*time.Millisecond, loop.Post, nil)
	registerAll(n)
	loop.Do(func() {
		require.NoError(t, n.Show(domain.ScreenStart))
		require.NoError(t, n.Show(domain.ScreenForm))
	})

	// Keep touching more often than the timeout.
	for i := 0; i < 5; i++ {
		time.Sleep(25 * time.Millisecond)
		loop.Do(n.Touch)
	}

	loop.Do(func() {
		require.Equal(t, domain.ScreenForm, n.Current())
	})
}
