package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	s := New("secret", time.Hour)
	token, err := s.Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := s.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "admin" {
		t.Fatalf("expected subject admin, got %s", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := New("secret-a", time.Hour).Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := New("secret-b", time.Hour).Verify(token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := New("secret", time.Minute)
	issued := time.Now()
	s.now = func() time.Time { return issued }
	token, err := s.Issue("admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := s.Verify(token); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestDisabledWithoutSecret(t *testing.T) {
	s := New("", time.Hour)
	if s.Enabled() {
		t.Fatalf("expected disabled auth")
	}
	if _, err := s.Issue("admin"); err == nil {
		t.Fatalf("expected issue to fail without secret")
	}
}
