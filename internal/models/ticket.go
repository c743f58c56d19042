package models

import "time"

// ShareTicket is a persisted, time- and use-bounded grant allowing
// decryption of one entry snapshot without the master secret. The payload
// is encrypted under a key derived from the access token, which is never
// stored; the ticket id alone cannot decrypt anything.
type ShareTicket struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner"`
	EncryptedPayload []byte    `json:"encrypted_payload"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`

	// MaxUses caps successful accesses; 0 means unlimited.
	MaxUses  int `json:"max_uses"`
	UseCount int `json:"use_count"`

	// Valid is a monotonic latch: once false it never becomes true again.
	Valid bool `json:"valid"`
}

// Expired reports whether the ticket's lifetime has passed at now.
func (t *ShareTicket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Exhausted reports whether the use budget is spent.
func (t *ShareTicket) Exhausted() bool {
	return t.MaxUses > 0 && t.UseCount >= t.MaxUses
}

// SharedEntry is the redacted snapshot placed inside a ticket: display
// fields plus the plaintext password. It never carries key material or
// internal flags.
type SharedEntry struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	Website  string `json:"website"`
	Notes    string `json:"notes"`
	Category string `json:"category"`
	SharedBy string `json:"shared_by"`
}
