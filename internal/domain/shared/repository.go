package shared

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListOptions represents query options for cursor-paginated listings.
// The cursor is opaque to callers and forward-only.
type ListOptions struct {
	Limit  int
	Cursor string
}

// DefaultListOptions returns list options with default values
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 50}
}

// Normalize clamps the limit into the supported range
func (o *ListOptions) Normalize() {
	if o.Limit < 1 || o.Limit > 200 {
		o.Limit = 50
	}
}

// Page represents a cursor-paginated result. NextCursor is empty when the
// listing is exhausted.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Cursor is the decoded position of a forward-only listing cursor, ordered by
// creation time descending with the record ID as tiebreaker.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode serializes the cursor into an opaque URL-safe string
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor string produced by Encode
func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, ErrInvalidInput
	}
	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor id: %w", err)
	}
	return Cursor{CreatedAt: createdAt, ID: id}, nil
}
