package storage

import (
	"errors"
	"math/big"
	"testing"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected key not found, got %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	value, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(value) != "v" {
		t.Fatalf("unexpected value %q", value)
	}
	ok, err := db.Has([]byte("k"))
	if err != nil || !ok {
		t.Fatalf("has: %v %v", ok, err)
	}
	if err := db.Delete([]byte("k")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.Get([]byte("k")); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected deleted key missing, got %v", err)
	}
}

func TestMemDBDetachesValues(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	value := []byte("original")
	if err := db.Put([]byte("k"), value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'X'
	stored, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(stored) != "original" {
		t.Fatalf("stored value aliases the caller's slice: %q", stored)
	}
}

func TestJSONCodecRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	type payload struct {
		Supply *big.Int `json:"supply"`
		Day    uint64   `json:"day"`
	}
	in := payload{Supply: big.NewInt(685_000), Day: 42}
	if err := SaveJSON(db, []byte("snapshot"), in); err != nil {
		t.Fatalf("save: %v", err)
	}
	var out payload
	if err := LoadJSON(db, []byte("snapshot"), &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Supply.Cmp(in.Supply) != 0 || out.Day != in.Day {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if err := LoadJSON(db, []byte("absent"), &out); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected key not found, got %v", err)
	}
}
