package remotejob

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignedTokenValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", "AKID123:secret456", false},
		{"no separator", "AKID123secret456", true},
		{"two separators", "a:b:c", true},
		{"empty access key", ":secret", true},
		{"empty secret", "AKID123:", true},
		{"empty", "", true},
		{"only separator", ":", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SignedToken(tt.key).Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				e, ok := AsError(err)
				if !ok || !e.IsInvalidCredential() {
					t.Fatalf("expected invalid credential error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSignedTokenClaims(t *testing.T) {
	cred := SignedToken("my-access:my-secret")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	req, _ := http.NewRequest(http.MethodPost, "https://api.example.com/v1/videos", nil)
	if err := cred.Apply(req, now); err != nil {
		t.Fatal(err)
	}

	auth := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		t.Fatalf("Authorization = %q, want Bearer token", auth)
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(auth[len(prefix):], claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected signing method %v", tok.Header["alg"])
		}
		return []byte("my-secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}
	if !tok.Valid {
		t.Fatal("token did not verify")
	}

	if claims.Issuer != "my-access" {
		t.Errorf("iss = %q, want %q", claims.Issuer, "my-access")
	}
	if got, want := claims.ExpiresAt.Time, now.Add(30*time.Minute); !got.Equal(want) {
		t.Errorf("exp = %v, want %v", got, want)
	}
	if got, want := claims.NotBefore.Time, now.Add(-5*time.Second); !got.Equal(want) {
		t.Errorf("nbf = %v, want %v", got, want)
	}
}

func TestSignedTokenMintsFreshTokens(t *testing.T) {
	cred := SignedToken("access:secret")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mint := func(at time.Time) string {
		req, _ := http.NewRequest(http.MethodGet, "https://api.example.com/v1/tasks/1", nil)
		if err := cred.Apply(req, at); err != nil {
			t.Fatal(err)
		}
		return req.Header.Get("Authorization")
	}

	first := mint(base)
	second := mint(base.Add(time.Second))
	if first == second {
		t.Fatal("tokens minted at different times should differ")
	}

	// Same mint time yields the same claims, so the token is stable.
	if again := mint(base); again != first {
		t.Fatal("token minting should be deterministic for a fixed time")
	}
}

func TestBearerKey(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
	if err := BearerKey("tok-123").Apply(req, time.Now()); err != nil {
		t.Fatal(err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", got)
	}

	if err := BearerKey("").Validate(); err == nil {
		t.Fatal("empty key should not validate")
	}
}

func TestHeaderKey(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
	if err := HeaderKey("xi-api-key", "k").Apply(req, time.Now()); err != nil {
		t.Fatal(err)
	}
	if got := req.Header.Get("xi-api-key"); got != "k" {
		t.Fatalf("xi-api-key = %q", got)
	}

	if err := HeaderKey("xi-api-key", "").Validate(); err == nil {
		t.Fatal("empty value should not validate")
	}
}
