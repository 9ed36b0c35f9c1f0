// Package colors normalizes Magic color identities and maps them to their
// community names.
package colors

import (
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// Colorless is the normalized identity of a colorless commander.
const Colorless = "C"

// Order is the canonical WUBRG order.
var Order = []models.ManaColor{models.White, models.Blue, models.Black, models.Red, models.Green}

var orderIndex = map[rune]int{'W': 0, 'U': 1, 'B': 2, 'R': 3, 'G': 4}

// names covers every subset of WUBRG in canonical order.
var names = map[string]string{
	"C": "Colorless",

	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",

	"WU": "Azorius",
	"WB": "Orzhov",
	"WR": "Boros",
	"WG": "Selesnya",
	"UB": "Dimir",
	"UR": "Izzet",
	"UG": "Simic",
	"BR": "Rakdos",
	"BG": "Golgari",
	"RG": "Gruul",

	"WUB": "Esper",
	"WUR": "Jeskai",
	"WUG": "Bant",
	"WBR": "Mardu",
	"WBG": "Abzan",
	"WRG": "Naya",
	"UBR": "Grixis",
	"UBG": "Sultai",
	"URG": "Temur",
	"BRG": "Jund",

	"WUBR": "Non-Green",
	"WUBG": "Non-Red",
	"WURG": "Non-Black",
	"WBRG": "Non-Blue",
	"UBRG": "Non-White",

	"WUBRG": "5-Color",
}

// Normalize returns the canonical WUBRG form of a color identity string.
// Characters other than W, U, B, R and G are dropped (case-insensitive) and
// duplicates collapse. An empty result is "C".
func Normalize(identity string) string {
	var present [5]bool
	for _, r := range strings.ToUpper(identity) {
		if idx, ok := orderIndex[r]; ok {
			present[idx] = true
		}
	}

	var b strings.Builder
	for i, ok := range present {
		if ok {
			b.WriteString(string(Order[i]))
		}
	}
	if b.Len() == 0 {
		return Colorless
	}
	return b.String()
}

// Join concatenates a color list into its canonical identity string.
func Join(identity []models.ManaColor) string {
	var b strings.Builder
	for _, c := range identity {
		b.WriteString(string(c))
	}
	return Normalize(b.String())
}

// Parse splits an identity string into canonical colors. Colorless yields an empty slice.
func Parse(identity string) []models.ManaColor {
	normalized := Normalize(identity)
	if normalized == Colorless {
		return []models.ManaColor{}
	}
	out := make([]models.ManaColor, 0, len(normalized))
	for _, r := range normalized {
		out = append(out, models.ManaColor(string(r)))
	}
	return out
}

// Sort returns a copy of identity in WUBRG order with duplicates and invalid colors removed.
func Sort(identity []models.ManaColor) []models.ManaColor {
	return Parse(Join(identity))
}

// Name returns the community name of a color identity, e.g. "UB" -> "Dimir".
func Name(identity string) string {
	return names[Normalize(identity)]
}

// Label formats an identity for display, e.g. "Dimir (UB)".
// Colorless is shown as just "Colorless".
func Label(identity string) string {
	normalized := Normalize(identity)
	if normalized == Colorless {
		return names[Colorless]
	}
	return names[normalized] + " (" + normalized + ")"
}
