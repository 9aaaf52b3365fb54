package kiosk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"certificate-terminal/internal/domain"
)

func completeForm() domain.FormData {
	return domain.FormData{
		Name:         "Мила Павловић",
		ParentName:   "Јован",
		BirthYear:    "2006",
		BirthMonth:   "11",
		BirthDay:     "3",
		Place:        "Касиндо",
		Municipality: "Источна Илиџа",
		Class:        "ТРЕЋИ",
		Program:      "ЕЛЕКТРОТЕХНИКА",
		Reason:       "ПОТВРДА О СТАТУСУ",
	}
}

// TestValidateFormComplete accepts a fully filled form.
func TestValidateFormComplete(t *testing.T) {
	require.NoError(t, ValidateForm(completeForm()))
}

// TestValidateFormMissingField blocks on any blank required field.
func TestValidateFormMissingField(t *testing.T) {
	form := completeForm()
	form.Reason = "  "

	err := ValidateForm(form)
	var ferr *FormError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, msgFieldsMissing, ferr.Message)
}

// TestValidateFormBadDate rejects implausible calendar dates.
func TestValidateFormBadDate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.FormData)
	}{
		{"day 31 in february", func(f *domain.FormData) { f.BirthMonth = "2"; f.BirthDay = "31" }},
		{"month 13", func(f *domain.FormData) { f.BirthMonth = "13" }},
		{"year before 1900", func(f *domain.FormData) { f.BirthYear = "1850" }},
		{"non-numeric day", func(f *domain.FormData) { f.BirthDay = "three" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := completeForm()
			tc.mutate(&form)

			err := ValidateForm(form)
			var ferr *FormError
			require.ErrorAs(t, err, &ferr)
			require.Equal(t, msgBadBirthDate, ferr.Message)
		})
	}
}
