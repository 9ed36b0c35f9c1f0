package models

// ManaColor is one of the five colors of Magic.
type ManaColor string

const (
	White ManaColor = "W"
	Blue  ManaColor = "U"
	Black ManaColor = "B"
	Red   ManaColor = "R"
	Green ManaColor = "G"
)

// Commander is the legendary creature leading a deck.
// Fetched once from the card-data service and treated as immutable.
type Commander struct {
	Name          string      `json:"name"`
	ColorIdentity []ManaColor `json:"colorIdentity"`
	Type          string      `json:"type"`
}

// DecklistCard is a single entry in a decklist.
type DecklistCard struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Decklist holds the optional card contents of a deck.
type Decklist struct {
	Cards     []DecklistCard `json:"cards"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

// Deck represents a user's Commander deck.
type Deck struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Commander Commander `json:"commander"`
	DateAdded string    `json:"dateAdded"`
	Archived  bool      `json:"archived,omitempty"`
	SortOrder *int      `json:"sortOrder,omitempty"` // Dense 0-based rank, nil sorts last
	Decklist  *Decklist `json:"decklist,omitempty"`
}

// SnapshotCommander is the subset of a commander stored with each game.
type SnapshotCommander struct {
	Name          string      `json:"name"`
	ColorIdentity []ManaColor `json:"colorIdentity"`
}

// DeckSnapshot is a copy of the deck taken when the game was logged.
// Editing the deck later does not change past games.
type DeckSnapshot struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Commander SnapshotCommander `json:"commander"`
}

// Snapshot returns the game snapshot of the deck.
func (d *Deck) Snapshot() DeckSnapshot {
	colors := make([]ManaColor, len(d.Commander.ColorIdentity))
	copy(colors, d.Commander.ColorIdentity)
	return DeckSnapshot{
		ID:   d.ID,
		Name: d.Name,
		Commander: SnapshotCommander{
			Name:          d.Commander.Name,
			ColorIdentity: colors,
		},
	}
}

// Game is one recorded game of Commander.
type Game struct {
	ID                  int64        `json:"id"`
	Date                string       `json:"date"` // YYYY-MM-DD
	MyDeck              DeckSnapshot `json:"myDeck"`
	Won                 bool         `json:"won"`
	WinnerColorIdentity string       `json:"winnerColorIdentity"`        // Concatenated letters, "C" for colorless
	WinningCommander    string       `json:"winningCommander,omitempty"` // Only set on losses
	Opponents           []Opponent   `json:"opponents"`
	TotalPlayers        int          `json:"totalPlayers"`
}

// Month returns the "YYYY-MM" bucket of the game date, or "" when the date is malformed.
func (g *Game) Month() string {
	if len(g.Date) < 7 || g.Date[4] != '-' {
		return ""
	}
	return g.Date[:7]
}
