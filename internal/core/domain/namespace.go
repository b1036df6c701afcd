package domain

import (
	"strconv"
	"strings"
	"time"
)

// NormalizeNamespace strips every non-ASCII character from name.
// Nothing else is changed: no trimming, no case folding. Two names that
// differ only in stripped characters map to the same namespace.
func NormalizeNamespace(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r <= 0x7F {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EntryID returns the index entry ID for the chunk at sequenceIndex
// within an ingestion run into namespace.
func EntryID(namespace string, sequenceIndex int) string {
	return namespace + "-" + strconv.Itoa(sequenceIndex)
}

// NamespaceRecord marks a namespace as owned by a user.
type NamespaceRecord struct {
	// Name is the normalised namespace name.
	Name string `json:"name"`

	// UserEmail identifies the owner.
	UserEmail string `json:"user_email"`

	// CreatedAt is when the namespace was first ingested.
	CreatedAt time.Time `json:"created_at"`
}

// Sender identifies who wrote a persisted message.
type Sender string

// Message senders.
const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one persisted line of a chat transcript.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Namespace string    `json:"namespace"`
	UserEmail string    `json:"user_email"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
