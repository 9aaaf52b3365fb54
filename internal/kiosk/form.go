package kiosk

import (
	"strconv"
	"strings"
	"time"

	"certificate-terminal/internal/domain"
)

// Localized blocking messages shown on the form screen.
const (
	msgFieldsMissing = "Popunite sva obavezna polja."
	msgBadBirthDate  = "Datum rođenja nije ispravan."
)

// FormError is a user-correctable form problem with the message the
// form screen blocks on.
type FormError struct {
	Message string
}

// Error returns the localized message.
func (e *FormError) Error() string {
	return e.Message
}

// ValidateForm gates the Form to Review transition: every field must
// be present and the birth date must be a plausible calendar day.
func ValidateForm(form domain.FormData) error {
	required := []string{
		form.Name,
		form.ParentName,
		form.BirthYear,
		form.BirthMonth,
		form.BirthDay,
		form.Place,
		form.Municipality,
		form.Class,
		form.Program,
		form.Reason,
	}
	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return &FormError{Message: msgFieldsMissing}
		}
	}

	year, errY := strconv.Atoi(strings.TrimSpace(form.BirthYear))
	month, errM := strconv.Atoi(strings.TrimSpace(form.BirthMonth))
	day, errD := strconv.Atoi(strings.TrimSpace(form.BirthDay))
	if errY != nil || errM != nil || errD != nil {
		return &FormError{Message: msgBadBirthDate}
	}
	if year < 1900 || year > 2100 {
		return &FormError{Message: msgBadBirthDate}
	}

	// Normalization catches impossible days such as 31.2.
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return &FormError{Message: msgBadBirthDate}
	}

	return nil
}
