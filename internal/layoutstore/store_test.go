package layoutstore

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/tiletree/internal/tiling"
)

func sampleTree() *tiling.SerializedNode {
	return &tiling.SerializedNode{
		Type:      "container",
		Direction: tiling.Horizontal,
		Ratios:    []float64{0.3, 0.7},
		Children: []*tiling.SerializedNode{
			{Type: "window", Window: 11},
			{Type: "window", Window: 12},
		},
	}
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	tree := sampleTree()
	if err := s.Save("coding", tree, 2); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err := s.Load("coding")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Name != "coding" || snap.Windows != 2 {
		t.Errorf("metadata = %q/%d, want coding/2", snap.Name, snap.Windows)
	}
	if !reflect.DeepEqual(snap.Tree, tree) {
		t.Errorf("tree diverged: %+v", snap.Tree)
	}
	if snap.SavedAt.IsZero() {
		t.Errorf("saved_at not recorded")
	}
}

func TestListSorted(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.Save(name, sampleTree(), 2); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	names, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	if err := s.Save("gone", sampleTree(), 2); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load("gone"); err == nil {
		t.Fatalf("load succeeded after delete")
	}
	if err := s.Delete("gone"); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestInvalidNames(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"", "  ", "../escape", "a/b", ".."} {
		if err := s.Save(name, sampleTree(), 2); err == nil {
			t.Errorf("save accepted invalid name %q", name)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	s := newStore(t)
	if _, err := s.Load("nope"); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("err = %v, want does-not-exist", err)
	}
}

func TestAutosaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.yaml")

	snap, err := LoadFile(path)
	if err != nil || snap != nil {
		t.Fatalf("missing autosave: snap=%v err=%v, want nil/nil", snap, err)
	}

	if err := SaveFile(path, sampleTree(), 2); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err = LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap == nil || !reflect.DeepEqual(snap.Tree, sampleTree()) {
		t.Fatalf("autosave round trip diverged")
	}
}
