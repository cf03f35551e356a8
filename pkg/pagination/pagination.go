// Package pagination implements the keyset paging used by the order-history
// and catalog listings. Pages walk (created_at, id) descending, so rows
// created after a cursor was handed out never shift an open page.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when a listing request names none.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single page may request.
	MaxLimit = 100
)

// Params holds the paging inputs parsed from a listing request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the decoded keyset anchor: the creation instant and id of the
// last row on the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit], falling
// back to DefaultLimit for zero or negative requests.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchLimit is the normalized page size plus one look-ahead row. The extra
// row only signals that another page exists and is never returned.
func FetchLimit(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor packs an anchor row's key into an opaque URL-safe token.
func EncodeCursor(createdAt time.Time, id uuid.UUID) string {
	payload := strconv.FormatInt(createdAt.UTC().UnixNano(), 10) + ":" + id.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor unpacks a token produced by EncodeCursor. A blank token means
// the first page and yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	rawNanos, rawID, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("malformed cursor")
	}

	nanos, err := strconv.ParseInt(rawNanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor id: %w", err)
	}
	return &Cursor{
		CreatedAt: time.Unix(0, nanos).UTC(),
		ID:        id,
	}, nil
}
