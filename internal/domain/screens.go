package domain

// Screen identifies one kiosk screen. Use these constants everywhere
// instead of hardcoding strings.
type Screen string

const (
	ScreenStart    Screen = "Start"
	ScreenTutorial Screen = "Tutorial"
	ScreenForm     Screen = "Form"
	ScreenReview   Screen = "Review"
	ScreenPrinting Screen = "Printing"
	ScreenDone     Screen = "Done"
)

// Session keys shared between screens for the lifetime of one visitor.
const (
	SessionKeyFormData  = "form_data"
	SessionKeyLastJobID = "last_job_id"
)
