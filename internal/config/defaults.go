package config

import "certificate-terminal/internal/domain"

// Pick lists offered by the form screen. The terminal serves one school,
// so these are fixed rather than database-driven.
var (
	Classes = []string{"ПРВИ", "ДРУГИ", "ТРЕЋИ", "ЧЕТВРТИ"}

	Programs = []string{
		"УГОСТИТЕЉСТВО И ТУРИЗАМ",
		"МАШИНСТВО И ОБРАДА МЕТАЛА",
		"ЕЛЕКТРОТЕХНИКА",
		"САОБРАЋАЈ",
	}

	Reasons = []string{
		"УЧЛАЊЕЊА У ОМЛАДИНСКУ ЗАДРУГУ",
		"ПРЕПИС СВЈЕДОЧАНСТВА",
		"ПОТВРДА О СТАТУСУ",
	}
)

// Hint text shown in the empty place/municipality inputs.
const (
	PlaceHint        = "нпр. Касиндо"
	MunicipalityHint = "нпр. Источна Илиџа"
)

// DebugFormData prefills the form when POTVRDE_DEBUG_MODE is enabled,
// so a full pipeline run needs no typing on the test bench.
func DebugFormData() domain.FormData {
	return domain.FormData{
		Name:         "Велимир Палексић",
		ParentName:   "Велимир",
		BirthYear:    "2000",
		BirthMonth:   "1",
		BirthDay:     "1",
		Place:        "Касиндо",
		Municipality: "Источна Илиџа",
		Class:        "ДРУГИ",
		Program:      "МАШИНСТВО И ОБРАДА МЕТАЛА",
		Reason:       "ПРЕПИС СВЈЕДОЧАНСТВА",
	}
}
