package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret(MinSecretBytes)
	require.NoError(t, err)
	assert.Len(t, secret, MinSecretBytes*2)

	_, err = hex.DecodeString(secret)
	assert.NoError(t, err)

	other, err := GenerateSecret(MinSecretBytes)
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestGenerateSecret_TooShort(t *testing.T) {
	_, err := GenerateSecret(16)
	assert.Error(t, err)
}
