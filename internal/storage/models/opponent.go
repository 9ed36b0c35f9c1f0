package models

import (
	"encoding/json"
	"strings"
)

// Opponent is another player at the table.
//
// Older records stored only the commander name in "name" and had no
// "commander" field. Those are normalized when decoded: Commander holds the
// commander name, Name is empty and Legacy is set so the record is written
// back in its original shape.
type Opponent struct {
	Name          string      // Player name, empty when unknown
	Commander     string      // Commander name
	ColorIdentity []ManaColor // Optional
	Legacy        bool
}

type opponentJSON struct {
	Name          string      `json:"name"`
	Commander     *string     `json:"commander,omitempty"`
	ColorIdentity []ManaColor `json:"colorIdentity,omitempty"`
}

// LegacyOpponent builds an opponent from a legacy commander-only record.
func LegacyOpponent(commander string) Opponent {
	return Opponent{Commander: commander, Legacy: true}
}

// HasPlayer reports whether the opponent names a real player.
func (o Opponent) HasPlayer() bool {
	return !o.Legacy && o.Commander != "" && strings.TrimSpace(o.Name) != ""
}

// UnmarshalJSON decodes both the current and the legacy record shapes.
func (o *Opponent) UnmarshalJSON(data []byte) error {
	var raw opponentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.ColorIdentity = raw.ColorIdentity
	if raw.Commander == nil {
		o.Name = ""
		o.Commander = raw.Name
		o.Legacy = true
		return nil
	}

	o.Name = raw.Name
	o.Commander = *raw.Commander
	o.Legacy = false
	return nil
}

// MarshalJSON writes the opponent back in the shape it was read in.
func (o Opponent) MarshalJSON() ([]byte, error) {
	if o.Legacy {
		return json.Marshal(opponentJSON{Name: o.Commander, ColorIdentity: o.ColorIdentity})
	}
	commander := o.Commander
	return json.Marshal(opponentJSON{Name: o.Name, Commander: &commander, ColorIdentity: o.ColorIdentity})
}
