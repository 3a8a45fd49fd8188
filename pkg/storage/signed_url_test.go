package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	token, expiresAt, err := signer.Generate("handler-1", "docs/invoice_42.pdf")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	recipientID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "handler-1", recipientID)
	require.Equal(t, "docs/invoice_42.pdf", relPath)
	require.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)

	token, _, err := signer.Generate("handler-1", "docs/invoice_42.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Minute)
	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", -time.Minute)

	token, _, err := signer.Generate("handler-1", "docs/invoice_42.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	_, relPath, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "docs/invoice_42.pdf", relPath)
}

func TestSignedURLRequiresInput(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Minute)
	_, _, err := signer.Generate("", "docs/invoice_42.pdf")
	require.Error(t, err)
	_, _, err = signer.Generate("handler-1", "")
	require.Error(t, err)
}
