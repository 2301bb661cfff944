/*
Package store implements the persistent document store of the dashboard.

A small fixed set of named JSON documents (state, gallery, sold, lobby
history, chart mirror) lives in flat files under one data directory. Reads
never fail: absent or corrupt documents degrade to their empty default with a
warning. Writes replace the file through a temp-file rename so no partial
content is ever observable. A store-wide mutex serializes every
read-modify-write, so concurrent mutations see last-committed-wins semantics.
*/
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"vaultboard/internal/app/model"
	"vaultboard/internal/pkg/logx"
)

// Document file names within the data directory.
const (
	stateFile   = "state.json"
	galleryFile = "gallery.json"
	soldFile    = "sold.json"
	historyFile = "lobby-history.json"
	chartFile   = "chart.json"
)

const (
	// MaxChatHistory caps the retained lobby history; the oldest entries are
	// evicted first once the cap is reached.
	MaxChatHistory = 100

	// DefaultChartAddress is served when no chart mirror has been written yet
	// (wrapped SOL mint).
	DefaultChartAddress = "So11111111111111111111111111111111111111112"
)

// ErrNotFound is returned when a delete target is absent from its collection.
var ErrNotFound = errors.New("item not found")

// Store owns the durable JSON documents exclusively.
type Store struct {
	dir string

	// mu serializes read-modify-write cycles across all documents.
	mu sync.Mutex

	logger zerolog.Logger
}

// New creates the data directory if needed and initializes missing documents
// to their empty defaults.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dir:    dir,
		logger: logx.Logger().With().Str("component", "Store").Logger(),
	}

	defaults := map[string]string{
		stateFile:   "{}",
		galleryFile: "[]",
		soldFile:    "[]",
		historyFile: "[]",
	}
	for name, content := range defaults {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("initialize %s: %w", name, err)
			}
		}
	}

	return s, nil
}

// readJSON loads a document into dst. Absent or malformed documents leave dst
// untouched so callers keep their empty default.
func (s *Store) readJSON(name string, dst any) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("document", name).Msg("Document read failed, using empty default.")
		}
		return
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn().Err(err).Str("document", name).Msg("Document is malformed, using empty default.")
	}
}

// writeJSON atomically replaces a document's content.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}

	return nil
}

// State returns the current dashboard state document.
func (s *Store) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *Store) stateLocked() model.State {
	state := model.State{}
	s.readJSON(stateFile, &state)
	return state
}

// MergeState applies updates to the state document and persists the result.
// The merged state is returned for broadcasting.
func (s *Store) MergeState(updates model.State) (model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.stateLocked().Merge(updates)

	if err := s.writeJSON(stateFile, merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// Chart returns the chart mirror document, falling back to the default mint.
func (s *Store) Chart() model.Chart {
	s.mu.Lock()
	defer s.mu.Unlock()

	chart := model.Chart{Address: DefaultChartAddress}
	s.readJSON(chartFile, &chart)
	if chart.Address == "" {
		chart.Address = DefaultChartAddress
	}
	return chart
}

// WriteChart mirrors the contract address into the chart document.
func (s *Store) WriteChart(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(chartFile, model.Chart{Address: address})
}

// Gallery returns the gallery collection.
func (s *Store) Gallery() []model.GalleryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(galleryFile)
}

// Sold returns the sold collection.
func (s *Store) Sold() []model.GalleryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(soldFile)
}

func (s *Store) listLocked(name string) []model.GalleryItem {
	items := []model.GalleryItem{}
	s.readJSON(name, &items)
	return items
}

// AppendGallery appends uploaded items to the gallery collection.
func (s *Store) AppendGallery(items ...model.GalleryItem) error {
	return s.appendItems(galleryFile, items)
}

// AppendSold appends uploaded items to the sold collection.
func (s *Store) AppendSold(items ...model.GalleryItem) error {
	return s.appendItems(soldFile, items)
}

func (s *Store) appendItems(name string, items []model.GalleryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.listLocked(name)
	list = append(list, items...)
	return s.writeJSON(name, list)
}

// DeleteGallery removes the first gallery item whose name or url matches and
// returns it so the caller can clean up the stored image. Returns ErrNotFound
// when nothing matches; the collection is left unchanged.
func (s *Store) DeleteGallery(name, url string) (model.GalleryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.listLocked(galleryFile)

	index := -1
	for i, item := range list {
		if (name != "" && item.Name == name) || (url != "" && item.URL == url) {
			index = i
			break
		}
	}

	if index == -1 {
		return model.GalleryItem{}, ErrNotFound
	}

	target := list[index]
	list = append(list[:index], list[index+1:]...)

	if err := s.writeJSON(galleryFile, list); err != nil {
		return model.GalleryItem{}, err
	}

	return target, nil
}

// DeleteSold removes every sold item whose name matches, compared
// case-insensitively after trimming. A name with no matches is not an error.
func (s *Store) DeleteSold(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := strings.ToLower(strings.TrimSpace(name))

	list := s.listLocked(soldFile)
	kept := list[:0]
	for _, item := range list {
		if strings.ToLower(strings.TrimSpace(item.Name)) != want {
			kept = append(kept, item)
		}
	}

	return s.writeJSON(soldFile, kept)
}

// ChatHistory returns the full retained lobby history, oldest first.
func (s *Store) ChatHistory() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.historyLocked()
}

func (s *Store) historyLocked() []model.ChatMessage {
	history := []model.ChatMessage{}
	s.readJSON(historyFile, &history)
	return history
}

// ChatHistoryTail returns up to the last n history entries, oldest first.
func (s *Store) ChatHistoryTail(n int) []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.historyLocked()
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}

// AppendChatMessage appends a message to the history, evicting the oldest
// entries beyond MaxChatHistory.
func (s *Store) AppendChatMessage(msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.historyLocked()
	history = append(history, msg)

	if len(history) > MaxChatHistory {
		history = history[len(history)-MaxChatHistory:]
	}

	return s.writeJSON(historyFile, history)
}
