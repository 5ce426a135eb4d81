package crypto

import "testing"

func TestGenerateTokenLength(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	// 32 bytes base64url-encoded without padding is 43 characters.
	if len(token) != 43 {
		t.Fatalf("unexpected token length %d", len(token))
	}
}

func TestGenerateTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		token, err := GenerateToken(32)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatal("expected tokens to be unique")
		}
		seen[token] = struct{}{}
	}
}
