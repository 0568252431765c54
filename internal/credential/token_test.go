package credential

import (
	"testing"
)

// TestTokenHashesDoNotCollide is the "Token indistinguishability" property:
// the persisted hash depends only on the token bytes, and across 100000
// freshly minted tokens no two hashes collide.
func TestTokenHashesDoNotCollide(t *testing.T) {
	const iterations = 100000
	seen := make(map[string]struct{}, iterations)
	plaintexts := make(map[string]struct{}, iterations)

	for i := 0; i < iterations; i++ {
		plaintext, hash, err := MintToken()
		if err != nil {
			t.Fatalf("MintToken failed: %v", err)
		}
		if _, dup := seen[hash]; dup {
			t.Fatalf("hash collision after %d tokens", i)
		}
		if _, dup := plaintexts[plaintext]; dup {
			t.Fatalf("plaintext collision after %d tokens", i)
		}
		seen[hash] = struct{}{}
		plaintexts[plaintext] = struct{}{}
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	plaintext, hash, err := MintToken()
	if err != nil {
		t.Fatal(err)
	}
	again, err := HashToken(plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if again != hash {
		t.Fatalf("HashToken(plaintext) = %q, want %q", again, hash)
	}
}

func TestHashTokenRejectsMalformedBase64(t *testing.T) {
	if _, err := HashToken("not base64!!!"); err == nil {
		t.Fatal("expected error for malformed base64 input")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword("wrong password", hash) {
		t.Fatal("expected mismatched password to fail verification")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if VerifyPassword("anything", "not-a-valid-hash") {
		t.Fatal("expected malformed hash to fail verification")
	}
}
