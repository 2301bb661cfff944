package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"vaultboard/internal/app/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func TestNewInitializesDefaults(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(dir); err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for name, want := range map[string]string{
		"state.json":         "{}",
		"gallery.json":       "[]",
		"sold.json":          "[]",
		"lobby-history.json": "[]",
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s initialized to %q, want %q", name, data, want)
		}
	}
}

func TestReadDegradesToDefaultOnCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gallery.json"), []byte("?!"), 0o644); err != nil {
		t.Fatal(err)
	}

	if state := s.State(); len(state) != 0 {
		t.Errorf("corrupt state document returned %v, want empty default", state)
	}
	if gallery := s.Gallery(); len(gallery) != 0 {
		t.Errorf("corrupt gallery document returned %v, want empty default", gallery)
	}
}

func TestMergeStatePersistsAndReturnsMerged(t *testing.T) {
	s := newTestStore(t)

	first := model.State{"tokenStats": map[string]any{"holders": float64(100)}, "burnPercent": float64(10)}
	if _, err := s.MergeState(first); err != nil {
		t.Fatalf("MergeState() failed: %v", err)
	}

	merged, err := s.MergeState(model.State{"tokenStats": map[string]any{"holders": float64(200)}})
	if err != nil {
		t.Fatalf("MergeState() failed: %v", err)
	}

	stats, ok := merged["tokenStats"].(map[string]any)
	if !ok {
		t.Fatalf("tokenStats is %T, want object", merged["tokenStats"])
	}
	if stats["holders"] != float64(200) {
		t.Errorf("holders = %v, want 200", stats["holders"])
	}
	if merged["burnPercent"] != float64(10) {
		t.Errorf("burnPercent = %v, want 10 retained from previous write", merged["burnPercent"])
	}

	// A fresh read must observe the committed merge.
	reread := s.State()
	if reread["burnPercent"] != float64(10) {
		t.Errorf("reread burnPercent = %v, want 10", reread["burnPercent"])
	}
}

func TestMergeStateNullClears(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.MergeState(model.State{"nextPurchase": map[string]any{"goal": float64(50)}}); err != nil {
		t.Fatalf("MergeState() failed: %v", err)
	}

	merged, err := s.MergeState(model.State{"nextPurchase": nil})
	if err != nil {
		t.Fatalf("MergeState() failed: %v", err)
	}

	v, present := merged["nextPurchase"]
	if !present {
		t.Fatal("nextPurchase was removed, want explicit null")
	}
	if v != nil {
		t.Errorf("nextPurchase = %v, want null", v)
	}

	// The persisted document must carry the explicit null too.
	reread := s.State()
	if v, present := reread["nextPurchase"]; !present || v != nil {
		t.Errorf("persisted nextPurchase = (%v, present=%v), want explicit null", v, present)
	}
}

func TestChartDefaultsAndMirror(t *testing.T) {
	s := newTestStore(t)

	if got := s.Chart().Address; got != DefaultChartAddress {
		t.Errorf("Chart() = %q, want default address %q", got, DefaultChartAddress)
	}

	if err := s.WriteChart("abc123"); err != nil {
		t.Fatalf("WriteChart() failed: %v", err)
	}

	if got := s.Chart().Address; got != "abc123" {
		t.Errorf("Chart() = %q, want mirrored address", got)
	}
}

func TestDeleteGalleryByNameOrURL(t *testing.T) {
	tests := []struct {
		name       string
		deleteName string
		deleteURL  string
		wantURL    string
	}{
		{name: "by name alone", deleteName: "Ape #1", wantURL: "/uploads/a.png"},
		{name: "by url alone", deleteURL: "/uploads/b.png", wantURL: "/uploads/b.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			seed := []model.GalleryItem{
				{Name: "Ape #1", Price: "2.5", URL: "/uploads/a.png"},
				{Name: "Ape #2", Price: "3", URL: "/uploads/b.png"},
				{Name: "Ape #1", Price: "4", URL: "/uploads/c.png"},
			}
			if err := s.AppendGallery(seed...); err != nil {
				t.Fatalf("AppendGallery() failed: %v", err)
			}

			target, err := s.DeleteGallery(tt.deleteName, tt.deleteURL)
			if err != nil {
				t.Fatalf("DeleteGallery() failed: %v", err)
			}
			if target.URL != tt.wantURL {
				t.Errorf("deleted item url = %q, want %q (first match only)", target.URL, tt.wantURL)
			}

			if got := len(s.Gallery()); got != 2 {
				t.Errorf("gallery length = %d, want 2 after single deletion", got)
			}
		})
	}
}

func TestDeleteGalleryNotFoundLeavesCollectionUnchanged(t *testing.T) {
	s := newTestStore(t)
	if err := s.AppendGallery(model.GalleryItem{Name: "Ape #1", URL: "/uploads/a.png"}); err != nil {
		t.Fatalf("AppendGallery() failed: %v", err)
	}

	_, err := s.DeleteGallery("Nope", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteGallery() error = %v, want ErrNotFound", err)
	}

	if got := len(s.Gallery()); got != 1 {
		t.Errorf("gallery length = %d, want 1 (unchanged)", got)
	}
}

func TestDeleteSoldRemovesAllCaseInsensitiveMatches(t *testing.T) {
	s := newTestStore(t)
	seed := []model.GalleryItem{
		{Name: "Ape #1", URL: "/uploads/a.png"},
		{Name: "  ape #1 ", URL: "/uploads/b.png"},
		{Name: "Ape #2", URL: "/uploads/c.png"},
	}
	if err := s.AppendSold(seed...); err != nil {
		t.Fatalf("AppendSold() failed: %v", err)
	}

	if err := s.DeleteSold("APE #1"); err != nil {
		t.Fatalf("DeleteSold() failed: %v", err)
	}

	sold := s.Sold()
	if len(sold) != 1 || sold[0].Name != "Ape #2" {
		t.Errorf("sold after delete = %+v, want only Ape #2", sold)
	}

	// Deleting a name with no matches is not an error.
	if err := s.DeleteSold("ghost"); err != nil {
		t.Errorf("DeleteSold() with no matches returned %v, want nil", err)
	}
}

func TestChatHistoryCapEvictsOldestFirst(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < MaxChatHistory+1; i++ {
		msg := model.ChatMessage{Username: "Alice", Text: fmt.Sprintf("msg-%d", i), Timestamp: int64(i + 1)}
		if err := s.AppendChatMessage(msg); err != nil {
			t.Fatalf("AppendChatMessage() failed: %v", err)
		}
	}

	history := s.ChatHistory()
	if len(history) != MaxChatHistory {
		t.Fatalf("history length = %d, want %d", len(history), MaxChatHistory)
	}

	if history[0].Text != "msg-1" {
		t.Errorf("oldest retained message = %q, want msg-1 (msg-0 evicted)", history[0].Text)
	}
	if history[len(history)-1].Text != fmt.Sprintf("msg-%d", MaxChatHistory) {
		t.Errorf("newest message = %q, want msg-%d", history[len(history)-1].Text, MaxChatHistory)
	}
}

func TestChatHistoryTail(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 60; i++ {
		if err := s.AppendChatMessage(model.ChatMessage{Username: "Bob", Text: fmt.Sprintf("msg-%d", i)}); err != nil {
			t.Fatalf("AppendChatMessage() failed: %v", err)
		}
	}

	tail := s.ChatHistoryTail(50)
	if len(tail) != 50 {
		t.Fatalf("tail length = %d, want 50", len(tail))
	}
	if tail[0].Text != "msg-10" || tail[49].Text != "msg-59" {
		t.Errorf("tail spans %q..%q, want msg-10..msg-59 in insertion order", tail[0].Text, tail[49].Text)
	}

	short := s.ChatHistoryTail(100)
	if len(short) != 60 {
		t.Errorf("tail of short history length = %d, want 60", len(short))
	}
}

func TestWriteIsAtomicFromReaderPerspective(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := s.MergeState(model.State{"a": float64(1)}); err != nil {
		t.Fatalf("MergeState() failed: %v", err)
	}

	// No temp files may survive a completed write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "state.json" && filepath.Ext(e.Name()) != ".json" {
			t.Errorf("stray file %q left behind after write", e.Name())
		}
	}

	// The committed file must be complete valid JSON.
	data, err := os.ReadFile(filepath.Join(dir, "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		t.Errorf("state.json is not valid JSON after write: %v", err)
	}
}
