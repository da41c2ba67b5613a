// Package store persists page stroke lists on the local device.
package store

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/state"
)

// PageStore saves and loads the strokes of a page, keyed by page ID.
// Load reports ok=false when the page has nothing readable stored.
type PageStore interface {
	Save(pageID string, strokes []state.Stroke) error
	Load(pageID string) (strokes []state.Stroke, ok bool)
}

var ErrEmptyPageID = errors.New("page id is empty")

const keyPrefix = "page."

// Key is the preference key a page's content is stored under.
func Key(pageID string) string {
	return keyPrefix + pageID
}

func encode(pageID string, strokes []state.Stroke) (string, error) {
	if strings.TrimSpace(pageID) == "" {
		return "", ErrEmptyPageID
	}
	content, err := state.EncodeStrokes(strokes)
	if err != nil {
		return "", errors.Wrapf(err, "encode page %s", pageID)
	}
	return content, nil
}

func decode(pageID, content string) ([]state.Stroke, bool) {
	if content == "" {
		return nil, false
	}
	strokes, err := state.DecodeStrokes(content)
	if err != nil {
		log.Warnf("Page %s has unreadable content, starting empty: %v", pageID, err)
		return []state.Stroke{}, false
	}
	return strokes, true
}

// PreferencesStore keeps pages in a fyne preferences set, the per-device
// key/value storage of the running app.
type PreferencesStore struct {
	prefs fyne.Preferences
}

func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

func (s *PreferencesStore) Save(pageID string, strokes []state.Stroke) error {
	content, err := encode(pageID, strokes)
	if err != nil {
		return err
	}
	s.prefs.SetString(Key(pageID), content)
	return nil
}

func (s *PreferencesStore) Load(pageID string) ([]state.Stroke, bool) {
	return decode(pageID, s.prefs.String(Key(pageID)))
}

// Raw returns the stored content of a page as written.
func (s *PreferencesStore) Raw(pageID string) string {
	return s.prefs.String(Key(pageID))
}

// Delete forgets a page, used when its notebook or the page itself is removed.
func (s *PreferencesStore) Delete(pageID string) {
	s.prefs.RemoveValue(Key(pageID))
}

// MemoryStore keeps serialized pages in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]string)}
}

func (s *MemoryStore) Save(pageID string, strokes []state.Stroke) error {
	content, err := encode(pageID, strokes)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[pageID] = content
	return nil
}

func (s *MemoryStore) Load(pageID string) ([]state.Stroke, bool) {
	s.mu.RLock()
	content := s.pages[pageID]
	s.mu.RUnlock()
	return decode(pageID, content)
}

// Put stores raw content as-is, bypassing encoding.
func (s *MemoryStore) Put(pageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[pageID] = content
}

func (s *MemoryStore) Raw(pageID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages[pageID]
}

func (s *MemoryStore) Delete(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, pageID)
}
