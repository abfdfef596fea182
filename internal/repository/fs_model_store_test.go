package repository

import (
	"bytes"
	"testing"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
)

func TestFSModelStoreRoundTrip(t *testing.T) {
	store, err := NewFSModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, ok, err := store.Load("BTCUSDT", domrepo.IV1h); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	want := []byte(`{"forest":null}`)
	if err := store.Save("BTCUSDT", domrepo.IV1h, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load("BTCUSDT", domrepo.IV1h)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("artifact mismatch: %s", got)
	}
}

func TestFSModelStoreReplace(t *testing.T) {
	store, err := NewFSModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save("ETHUSDT", domrepo.IV5m, []byte("v1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := store.Save("ETHUSDT", domrepo.IV5m, []byte("v2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, ok, err := store.Load("ETHUSDT", domrepo.IV5m)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected last write to win, got %s", got)
	}
}

func TestFSModelStoreSanitizesKeys(t *testing.T) {
	store, err := NewFSModelStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save("../evil", domrepo.IV1m, []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load("../evil", domrepo.IV1m)
	if err != nil || !ok || string(got) != "x" {
		t.Fatalf("expected sanitized key round trip, got ok=%v err=%v", ok, err)
	}
}
