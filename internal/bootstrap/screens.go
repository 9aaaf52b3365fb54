package bootstrap

import (
	"time"

	"certificate-terminal/internal/domain"
)

// The attract, tutorial, form, and review screens are rendered purely
// by the frontend; their backend objects exist for navigation identity.
type startScreen struct{}

func (startScreen) ID() domain.Screen { return domain.ScreenStart }

type tutorialScreen struct{}

func (tutorialScreen) ID() domain.Screen { return domain.ScreenTutorial }

type formScreen struct{}

func (formScreen) ID() domain.Screen { return domain.ScreenForm }

type reviewScreen struct{}

func (reviewScreen) ID() domain.Screen { return domain.ScreenReview }

// printingScreen starts the print job the moment it becomes active, so
// the visitor watches live progress from the first frame.
type printingScreen struct {
	app *App
}

func (printingScreen) ID() domain.Screen { return domain.ScreenPrinting }

func (s printingScreen) OnShow() error {
	return s.app.startJob()
}

// doneScreen shows the success message and returns home on its own
// after a short dwell, covering visitors who walk away with the paper.
type doneScreen struct {
	app   *App
	timer *time.Timer
}

func (*doneScreen) ID() domain.Screen { return domain.ScreenDone }

func (s *doneScreen) OnShow() error {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.app.doneDwell, func() {
		s.app.loop.Post(func() {
			if s.app.nav.Current() == domain.ScreenDone {
				s.app.nav.Home()
			}
		})
	})
	return nil
}
