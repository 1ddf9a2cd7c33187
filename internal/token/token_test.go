package token

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	svc := New("test-secret-key", time.Hour)

	email := "alice@example.com"
	tok, err := svc.Issue(email)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if tok == "" {
		t.Error("Issue() returned empty token")
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if subject != email {
		t.Errorf("Verify() subject = %v, want %v", subject, email)
	}
}

func TestVerifyInvalidToken(t *testing.T) {
	svc := New("test-secret-key", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "random string",
			token: "not.a.valid.token",
		},
		{
			name:  "malformed jwt",
			token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if err == nil {
				t.Error("Verify() should return error for invalid token")
			}
			if err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	svc1 := New("secret-key-1", time.Hour)
	svc2 := New("secret-key-2", time.Hour)

	tok, err := svc1.Issue("bob@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = svc2.Verify(tok)
	if err != ErrInvalidToken {
		t.Errorf("Verify() with different secret: expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := New("test-secret-key", 1*time.Millisecond)

	tok, err := svc.Issue("carol@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Wait for the token to expire
	time.Sleep(10 * time.Millisecond)

	_, err = svc.Verify(tok)
	if err != ErrInvalidToken {
		t.Errorf("Verify() on expired token: expected ErrInvalidToken, got %v", err)
	}
}
