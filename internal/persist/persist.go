// Package persist serialises a history.Store to a JSON document and keeps it
// on disk.
//
// Document format:
//
//	{
//	  "entries":  [ {"id": 3, "content": "...", "created_at": "..."}, ... ],
//	  "max_size": 100,
//	  "next_id":  4
//	}
//
// Decoding never fails: a missing, empty, malformed or inconsistent document
// yields a fresh empty store. A corrupt file is therefore indistinguishable
// from first run.
package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"go.klb.dev/clipdeck/internal/history"
)

// document is the root JSON structure stored on disk.
type document struct {
	Entries []history.Entry `json:"entries"`
	MaxSize int             `json:"max_size"`
	NextID  uint64          `json:"next_id"`
}

// Encode serialises s. The only error source is JSON marshalling.
func Encode(s *history.Store) ([]byte, error) {
	doc := document{
		Entries: s.Entries(),
		MaxSize: s.MaxSize(),
		NextID:  s.NextID(),
	}
	if doc.Entries == nil {
		doc.Entries = []history.Entry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return data, nil
}

// Decode parses data into a store. maxSize is used when the document carries
// no usable bound of its own, and for the empty store returned on any error.
func Decode(data []byte, maxSize int) *history.Store {
	if len(data) == 0 {
		return history.New(maxSize)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("history document unreadable, starting empty", "err", err)
		return history.New(maxSize)
	}
	if err := doc.check(); err != nil {
		slog.Warn("history document inconsistent, starting empty", "err", err)
		return history.New(maxSize)
	}

	bound := doc.MaxSize
	if bound <= 0 {
		bound = maxSize
	}
	return history.Restore(doc.Entries, bound, doc.nextID())
}

// check enforces the store invariants that JSON alone cannot express.
func (d *document) check() error {
	contents := make(map[string]struct{}, len(d.Entries))
	ids := make(map[uint64]struct{}, len(d.Entries))
	for i, e := range d.Entries {
		if e.Content == "" {
			return fmt.Errorf("entry %d: empty content", i)
		}
		if _, dup := contents[e.Content]; dup {
			return fmt.Errorf("entry %d: duplicate content", i)
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("entry %d: duplicate id %d", i, e.ID)
		}
		contents[e.Content] = struct{}{}
		ids[e.ID] = struct{}{}
	}
	return nil
}

// nextID returns the persisted next_id, repaired upward if it would reuse an
// existing id (older documents may omit the field entirely).
func (d *document) nextID() uint64 {
	var highest uint64
	for _, e := range d.Entries {
		highest = max(highest, e.ID)
	}
	return max(d.NextID, highest+1, 1)
}
