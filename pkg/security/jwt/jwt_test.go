package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/blog/pkg/auth"
)

func clockAt(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSigner([]byte("super-secret"), "blog", 15*time.Minute, WithClock(clockAt(now)))

	tok, err := s.Issue(context.Background(), "user-123")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, "."))

	got, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	issuer := NewSigner([]byte("secret"), "blog", 15*time.Minute, WithClock(clockAt(now)))
	tok, err := issuer.Issue(context.Background(), "u1")
	require.NoError(t, err)

	for _, after := range []time.Duration{15*time.Minute + time.Second, 16 * time.Minute, 48 * time.Hour} {
		verifier := NewSigner([]byte("secret"), "blog", 15*time.Minute, WithClock(clockAt(now.Add(after))))
		_, err := verifier.Verify(tok)
		assert.ErrorIs(t, err, auth.ErrExpired, "after %s", after)
	}

	verifier := NewSigner([]byte("secret"), "blog", 15*time.Minute, WithClock(clockAt(now.Add(14*time.Minute))))
	_, err = verifier.Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewSigner([]byte("right-secret"), "blog", time.Hour).Issue(context.Background(), "u2")
	require.NoError(t, err)

	_, err = NewSigner([]byte("wrong-secret"), "blog", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestVerify_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewSigner([]byte("k"), "someone-else", time.Hour).Issue(context.Background(), "u3")
	require.NoError(t, err)

	_, err = NewSigner([]byte("k"), "blog", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestVerify_AlteredLastCharacter(t *testing.T) {
	t.Parallel()

	s := NewSigner([]byte("secret"), "blog", time.Hour)
	tok, err := s.Issue(context.Background(), "u4")
	require.NoError(t, err)

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := len(tok) - 1
	for _, r := range alphabet {
		if byte(r) == tok[last] {
			continue
		}
		altered := tok[:last] + string(r)
		_, err := s.Verify(altered)
		assert.ErrorIs(t, err, auth.ErrInvalidSignature, "last char %q", r)
	}
}

func TestVerify_TamperedBytes(t *testing.T) {
	t.Parallel()

	s := NewSigner([]byte("secret"), "blog", time.Hour)
	tok, err := s.Issue(context.Background(), "u4")
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		replacement := byte('A')
		if tok[i] == 'A' {
			replacement = 'B'
		}
		tampered := tok[:i] + string(replacement) + tok[i+1:]
		_, err := s.Verify(tampered)
		assert.ErrorIs(t, err, auth.ErrInvalidSignature, "position %d", i)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	// alg "none" token with a valid-looking payload
	none := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1NSIsImV4cCI6NDEwMjQ0NDgwMH0."
	_, err := NewSigner([]byte("k"), "", time.Hour).Verify(none)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}

func TestVerify_MalformedAndMissing(t *testing.T) {
	t.Parallel()

	s := NewSigner([]byte("k"), "blog", time.Hour)

	_, err := s.Verify("")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = s.Verify("not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}
