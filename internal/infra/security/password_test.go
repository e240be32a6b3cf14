package security

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if hash == "Str0ng!Pass" {
		t.Fatal("hash must not equal the plaintext password")
	}

	ok, err := VerifyPassword("Str0ng!Pass", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify against its own hash")
	}
}

func TestHashPassword_SaltedHashesDiffer(t *testing.T) {
	first, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected two hashes of the same password to differ")
	}
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("Wr0ng!Pass", hash)
	if err != nil {
		t.Fatalf("expected mismatch to be a clean false, got error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestVerifyPassword_LongPasswordsNotTruncated(t *testing.T) {
	// bcrypt on its own ignores everything past 72 bytes; the pre-hash
	// folds the full input, so bytes past that boundary must matter.
	prefix := strings.Repeat("a", 80)
	hash, err := HashPassword(prefix + "one")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword(prefix+"two", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("expected passwords differing past 72 bytes to be distinct")
	}
}

func TestVerifyPassword_DummyHashNeverMatches(t *testing.T) {
	for _, candidate := range []string{"", "password", "Str0ng!Pass", DummyPasswordHash} {
		ok, err := VerifyPassword(candidate, DummyPasswordHash)
		if err != nil {
			t.Fatalf("VerifyPassword(%q) returned error: %v", candidate, err)
		}
		if ok {
			t.Fatalf("expected %q to never match the dummy hash", candidate)
		}
	}
}

func TestVerifyPassword_MalformedHashIsHardError(t *testing.T) {
	if _, err := VerifyPassword("Str0ng!Pass", "not-a-bcrypt-hash"); err == nil {
		t.Fatal("expected malformed hash to be an error, not a mismatch")
	}
}
