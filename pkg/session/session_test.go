package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/taskweb/pkg/cache"
	taskerrors "github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
)

func sampleSession(ttl time.Duration) *Session {
	l := graph.Layout{
		VizType:  "force",
		Strategy: "longest-path",
		Nodes: []graph.LayoutNode{
			{ID: "a", Level: 0, X: 10, Y: 20},
			{ID: "b", Level: 1, X: 30, Y: 40},
		},
		Links: []graph.LayoutLink{{Source: "a", Target: "b", Type: "Other", Color: "#ccc"}},
	}
	return New("hash", l, map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}, ttl)
}

func TestNew(t *testing.T) {
	sess := sampleSession(time.Hour)
	if err := taskerrors.ValidateRenderID(sess.ID); err != nil {
		t.Errorf("New().ID = %q is not a render id: %v", sess.ID, err)
	}
	if sess.IsExpired() {
		t.Error("fresh session should not be expired")
	}
	if got := sess.Formats(); len(got) != 2 || got[0] != "json" || got[1] != "svg" {
		t.Errorf("Formats() = %v, want [json svg]", got)
	}
	if _, ok := sess.Artifact("png"); ok {
		t.Error("Artifact(png) should be missing")
	}
	if New("", graph.Layout{}, nil, time.Hour).Artifacts == nil {
		t.Error("New() should never leave Artifacts nil")
	}
	if GenerateID() == GenerateID() {
		t.Error("GenerateID() returned the same id twice")
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	sess := sampleSession(time.Hour)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err = store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want session")
	}
	if string(got.Artifacts["svg"]) != "<svg/>" {
		t.Errorf("svg artifact = %q", got.Artifacts["svg"])
	}
	if n, ok := got.Layout.Node("b"); !ok || n.Level != 1 || n.X != 30 {
		t.Errorf("layout node b = %+v, %v", n, ok)
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("Get() after Delete() should be nil")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup() error: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, store)
}

func TestCacheStore(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, NewCacheStore(c, cache.NewScopedKeyer(nil, "server:")))
}

func TestCacheStoreRejectsExpired(t *testing.T) {
	store := NewCacheStore(cache.NewNullCache(), nil)
	err := store.Set(context.Background(), sampleSession(-time.Minute))
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Set(expired) = %v, want %v", err, ErrExpired)
	}
}

func TestExpiredSessionsAreHidden(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	sess := sampleSession(-time.Minute)
	_ = mem.Set(ctx, sess)
	if got, _ := mem.Get(ctx, sess.ID); got != nil {
		t.Error("MemoryStore.Get(expired) should be nil")
	}
	if mem.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expired Get", mem.Len())
	}

	dir := t.TempDir()
	files, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = files.Set(ctx, sess)
	if got, _ := files.Get(ctx, sess.ID); got != nil {
		t.Error("FileStore.Get(expired) should be nil")
	}
	if _, err := os.Stat(filepath.Join(dir, sess.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired session file should be removed")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	live := sampleSession(time.Hour)
	dead := sampleSession(-time.Hour)
	_ = store.Set(ctx, live)
	_ = store.Set(ctx, dead)
	_ = os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0600)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != live.ID+".json" {
		t.Errorf("after Cleanup() dir holds %v, want only the live session", entries)
	}
	if store.Path() != dir {
		t.Errorf("Path() = %q, want %q", store.Path(), dir)
	}
}
