package id

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	if !IsID32(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
	// round-trips to a v4 uuid
	u, err := uuid.FromBytes(b)
	if err != nil {
		t.Fatalf("uuid.FromBytes: %v", err)
	}
	if u.Version() != 4 {
		t.Fatalf("uuid version = %d, want 4", u.Version())
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewID32_NoUppercaseOrHyphen(t *testing.T) {
	id := NewID32()
	if strings.ToLower(id) != id {
		t.Fatalf("found uppercase letter in id: %q", id)
	}
	if strings.Contains(id, "-") {
		t.Fatalf("found hyphen in id: %q", id)
	}
}

func TestValidKey(t *testing.T) {
	valid := []string{
		"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		strings.Repeat("a", 32),
		NewID32(),
		uuid.NewString(),
	}
	for _, s := range valid {
		if !ValidKey(s) {
			t.Fatalf("ValidKey should accept %q", s)
		}
	}

	invalid := []string{
		"",
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
		"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
		"not-a-key",
	}
	for _, s := range invalid {
		if ValidKey(s) {
			t.Fatalf("ValidKey should reject %q", s)
		}
	}
}
