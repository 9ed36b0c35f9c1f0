package friends

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// Alphabet is the friend ID symbol set: A-Z and 2-9 without 0, O, 1, I and L.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// MaxIDAttempts bounds the collision probes made when creating a friend ID.
const MaxIDAttempts = 10

// IDGenerator produces candidate friend IDs.
type IDGenerator func() (string, error)

// GenerateFriendID returns a random friend ID drawn uniformly from Alphabet.
func GenerateFriendID() (string, error) {
	size := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, models.FriendIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// NormalizeFriendID trims and uppercases user input.
func NormalizeFriendID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
