package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpponent_UnmarshalCurrent(t *testing.T) {
	var o Opponent
	require.NoError(t, json.Unmarshal([]byte(`{"name":"bob","commander":"Edgar Markov","colorIdentity":["W","B","R"]}`), &o))

	assert.Equal(t, "bob", o.Name)
	assert.Equal(t, "Edgar Markov", o.Commander)
	assert.Equal(t, []ManaColor{White, Black, Red}, o.ColorIdentity)
	assert.False(t, o.Legacy)
	assert.True(t, o.HasPlayer())
}

func TestOpponent_UnmarshalLegacy(t *testing.T) {
	var o Opponent
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Sliver Queen"}`), &o))

	assert.Equal(t, "", o.Name)
	assert.Equal(t, "Sliver Queen", o.Commander)
	assert.True(t, o.Legacy)
	assert.False(t, o.HasPlayer())
}

func TestOpponent_UnmarshalEmptyCommander(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		commander string
		hasPlayer bool
	}{
		{"empty commander", `{"name":"Sam","commander":""}`, "", false},
		{"blank commander", `{"name":"Sam","commander":"  "}`, "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Opponent
			require.NoError(t, json.Unmarshal([]byte(tt.data), &o))

			assert.Equal(t, "Sam", o.Name, "a present commander field keeps name as the player")
			assert.Equal(t, tt.commander, o.Commander)
			assert.False(t, o.Legacy)
			assert.Equal(t, tt.hasPlayer, o.HasPlayer())

			out, err := json.Marshal(o)
			require.NoError(t, err)
			assert.JSONEq(t, tt.data, string(out))
		})
	}
}

func TestOpponent_MarshalKeepsShape(t *testing.T) {
	legacy, err := json.Marshal(LegacyOpponent("Sliver Queen"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Sliver Queen"}`, string(legacy))

	current, err := json.Marshal(Opponent{Name: "bob", Commander: "Edgar Markov"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"bob","commander":"Edgar Markov"}`, string(current))
}

func TestOpponent_HasPlayer(t *testing.T) {
	assert.False(t, Opponent{Name: "  ", Commander: "Krenko"}.HasPlayer())
	assert.False(t, Opponent{Name: "bob"}.HasPlayer())
	assert.True(t, Opponent{Name: "bob", Commander: "Krenko"}.HasPlayer())
}

func TestGame_Month(t *testing.T) {
	assert.Equal(t, "2024-03", (&Game{Date: "2024-03-15"}).Month())
	assert.Equal(t, "", (&Game{Date: "bad"}).Month())
	assert.Equal(t, "", (&Game{Date: "20240315"}).Month())
}
