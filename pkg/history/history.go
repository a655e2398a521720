// Package history keeps a bounded, ordered record of accepted clipboard
// values. The store is in-memory only and lives for the process lifetime.
//
// Ordering is most-recent-first. Recording a fingerprint that already
// exists promotes the existing item to the front instead of duplicating
// it; when the store is full the oldest item is evicted. Both behaviors
// come for free from the underlying LRU.
package history

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Veraticus/cliphub/pkg/fingerprint"
)

const (
	// DefaultCapacity is the default number of history items retained.
	DefaultCapacity = 10

	// storedContentLimit caps the runes kept per item. Item.Size still
	// records the true original length.
	storedContentLimit = 1000

	// previewLimit caps the preview length in runes.
	previewLimit = 64
)

// ErrNotFound indicates a history lookup with an out-of-range index.
var ErrNotFound = errors.New("history: item not found")

// Item is a single history entry.
type Item struct {
	Content     string                  `json:"content"`
	Preview     string                  `json:"preview"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	Timestamp   time.Time               `json:"timestamp"`
	Size        int                     `json:"size"`
}

// Store is a capacity-capped, most-recent-first clipboard history.
// It is safe for concurrent use.
type Store struct {
	cache *lru.Cache[fingerprint.Fingerprint, Item]
}

// New creates a history store. Capacity defaults to DefaultCapacity when
// zero or negative.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	// lru.New only fails for non-positive sizes, which we just excluded.
	cache, _ := lru.New[fingerprint.Fingerprint, Item](capacity)
	return &Store{cache: cache}
}

// Record inserts content at the front of the history. If fp is already
// the front item this is a no-op; if fp exists elsewhere the item is
// promoted and refreshed with the new occurrence. Exceeding capacity
// evicts the oldest item.
func (s *Store) Record(content string, fp fingerprint.Fingerprint, at time.Time) {
	if newest, ok := s.newest(); ok && newest == fp {
		return
	}

	s.cache.Add(fp, Item{
		Content:     truncateRunes(content, storedContentLimit),
		Preview:     makePreview(content),
		Fingerprint: fp,
		Timestamp:   at,
		Size:        utf8.RuneCountInString(content),
	})
}

// List returns a snapshot of all items, most recent first.
func (s *Store) List() []Item {
	keys := s.cache.Keys() // oldest to newest

	items := make([]Item, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if item, ok := s.cache.Peek(keys[i]); ok {
			items = append(items, item)
		}
	}
	return items
}

// Use returns the item at position index (0 = most recent) without
// removing or reordering it. Returns ErrNotFound for a bad index.
func (s *Store) Use(index int) (Item, error) {
	items := s.List()
	if index < 0 || index >= len(items) {
		return Item{}, ErrNotFound
	}
	return items[index], nil
}

// Clear removes all items.
func (s *Store) Clear() {
	s.cache.Purge()
}

// Len returns the number of items currently stored.
func (s *Store) Len() int {
	return s.cache.Len()
}

// newest returns the fingerprint of the front item, if any.
func (s *Store) newest() (fingerprint.Fingerprint, bool) {
	keys := s.cache.Keys()
	if len(keys) == 0 {
		return fingerprint.Zero, false
	}
	return keys[len(keys)-1], true
}

// makePreview produces a short single-line rendering of content.
func makePreview(content string) string {
	line := strings.Join(strings.Fields(content), " ")
	return truncateRunes(line, previewLimit)
}

// truncateRunes limits s to at most limit runes.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
