package models

// FriendIDLength is the length of a generated friend ID.
const FriendIDLength = 8

// FriendRequest is a pending request stored on the recipient's profile.
type FriendRequest struct {
	FromFriendID string `json:"fromFriendId"`
	FromUsername string `json:"fromUsername"`
	Timestamp    string `json:"timestamp"` // RFC 3339
}

// UserProfile is the per-user document.
type UserProfile struct {
	UID                   string          `json:"uid"`
	Email                 string          `json:"email"`
	FriendID              string          `json:"friendId,omitempty"`
	Username              string          `json:"username,omitempty"`
	Friends               []string        `json:"friends"`
	PendingFriendRequests []FriendRequest `json:"pendingFriendRequests"`
	Decks                 []Deck          `json:"decks"`
	Games                 []Game          `json:"games"`
	PodBuddies            []string        `json:"podBuddies"`
}

// HasFriend reports whether friendID is in the profile's friends list.
func (p *UserProfile) HasFriend(friendID string) bool {
	for _, f := range p.Friends {
		if f == friendID {
			return true
		}
	}
	return false
}

// FindRequest returns the pending request sent by fromFriendID.
func (p *UserProfile) FindRequest(fromFriendID string) (FriendRequest, bool) {
	for _, req := range p.PendingFriendRequests {
		if req.FromFriendID == fromFriendID {
			return req, true
		}
	}
	return FriendRequest{}, false
}

// ProfileFields is a partial profile written with merge semantics.
// Nil fields are left untouched.
type ProfileFields struct {
	Email    *string
	FriendID *string
	Username *string
	Friends  []string // Only written when non-nil
}

// ProfileData is what the client needs to show its own identity.
type ProfileData struct {
	FriendID string `json:"friendId"`
	Username string `json:"username"`
}

// Friend is a resolved entry of a friends list.
type Friend struct {
	FriendID  string `json:"friendId"`
	Username  string `json:"username"`
	DeckCount int    `json:"deckCount"`
	GameCount int    `json:"gameCount"`
}

// FriendPublicData is the read-only view of a friend used for stat viewing.
type FriendPublicData struct {
	FriendID string `json:"friendId"`
	Username string `json:"username"`
	Decks    []Deck `json:"decks"`
	Games    []Game `json:"games"`
}
