// Package history implements the bounded, deduplicating clipboard history.
//
// A Store keeps entries in most-recently-used order: index 0 is the newest.
// Pushing content that already exists moves the existing entry to the front
// instead of creating a duplicate. The store never holds more than MaxSize
// entries; the oldest are dropped from the tail.
//
// Store is a plain data structure with no I/O and no locking. Callers that
// share a Store across goroutines must guard it themselves (see package state).
package history

import (
	"slices"
	"time"
)

// DefaultMaxSize is the bound used when none (or a non-positive one) is given.
const DefaultMaxSize = 100

// Entry is a single clipboard snapshot.
type Entry struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the ordered history. The zero value is not usable; call New.
type Store struct {
	entries []Entry
	maxSize int
	nextID  uint64

	now func() time.Time
}

// New returns an empty store bounded to maxSize entries.
func New(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{
		maxSize: maxSize,
		nextID:  1,
		now:     utcNow,
	}
}

// Restore rebuilds a store from previously persisted state. The caller is
// responsible for having validated entries (see persist.Decode).
func Restore(entries []Entry, maxSize int, nextID uint64) *Store {
	s := New(maxSize)
	s.entries = slices.Clone(entries)
	s.nextID = nextID
	s.truncate()
	return s
}

func utcNow() time.Time { return time.Now().UTC() }

// SetClock replaces the time source used for CreatedAt. Tests only.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Push records content as the most recent entry and reports whether the
// store changed.
//
//   - empty content is rejected
//   - content equal to the newest entry is a no-op (clipboard poll noise)
//   - content found further down moves to the front, keeping its ID and
//     refreshing CreatedAt
//   - anything else becomes a new entry; the tail is trimmed to MaxSize
func (s *Store) Push(content string) bool {
	if content == "" {
		return false
	}
	if len(s.entries) > 0 && s.entries[0].Content == content {
		return false
	}

	if pos := s.index(content); pos > 0 {
		e := s.entries[pos]
		e.CreatedAt = s.now()
		s.entries = slices.Delete(s.entries, pos, pos+1)
		s.entries = slices.Insert(s.entries, 0, e)
		return true
	}

	e := Entry{
		ID:        s.nextID,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.nextID++
	s.entries = slices.Insert(s.entries, 0, e)
	s.truncate()
	return true
}

// Entries returns a copy of the history, newest first.
func (s *Store) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Get looks up an entry by ID.
func (s *Store) Get(id uint64) (Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// MaxSize returns the entry bound.
func (s *Store) MaxSize() int { return s.maxSize }

// NextID returns the ID the next new entry will get.
func (s *Store) NextID() uint64 { return s.nextID }

// Resize changes the bound, dropping the oldest entries if the store is now
// over it. Used at startup to apply the configured limit to a loaded history.
func (s *Store) Resize(maxSize int) {
	if maxSize <= 0 {
		return
	}
	s.maxSize = maxSize
	s.truncate()
}

// Clone returns a deep copy that shares nothing with s.
func (s *Store) Clone() *Store {
	return &Store{
		entries: slices.Clone(s.entries),
		maxSize: s.maxSize,
		nextID:  s.nextID,
		now:     s.now,
	}
}

func (s *Store) index(content string) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.Content == content })
}

func (s *Store) truncate() {
	if len(s.entries) > s.maxSize {
		clear(s.entries[s.maxSize:])
		s.entries = s.entries[:s.maxSize]
	}
}

// Preview returns the first n runes of s on a single line, with CR and LF
// replaced by spaces.
func Preview(s string, n int) string {
	out := make([]rune, 0, min(len(s), n))
	for _, r := range s {
		if len(out) == n {
			break
		}
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
