package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Owner is a profile record for a represented individual. Exactly one owner
// is the primary subject of a deployment; others may appear as mentioned
// people inside chat messages.
type Owner struct {
	ID        int64
	Name      string
	Age       int
	Hobbies   []string // JSON array stored as text
	Values    string
	Country   string
	Birth     string
	CreatedAt time.Time
}

type Project struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	TechStack   []string // JSON array stored as text
	CreatedAt   time.Time
}

type Experience struct {
	ID          int64
	OwnerID     int64
	Company     string
	Position    string
	Period      string
	Description string
	CreatedAt   time.Time
}

// KnowledgeChunk is a retrievable piece of reference text with extracted
// keyword tags. Chunks belong to the global pool, not to an owner.
type KnowledgeChunk struct {
	ID        string
	Content   string
	Keywords  []string // JSON array stored as text
	Source    string
	CreatedAt time.Time
}

// ChatTurn is one message in an owner's conversation history. Append-only.
type ChatTurn struct {
	ID        string
	OwnerID   int64
	Role      string // "user", "assistant" or "system"
	Content   string
	CreatedAt time.Time
}

type Reservation struct {
	ID          string
	Name        string
	Email       string
	PhoneNumber string
	Date        time.Time
	Message     string
	CreatedAt   time.Time
}

type GalleryItem struct {
	ID          int64
	Title       string
	Description string
	ImageURL    string
	CreatedAt   time.Time
}
