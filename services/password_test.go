package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.Len(t, strings.Split(hash, "$"), 2)

	other, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ per hash")

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		stored   string
		provided string
		want     bool
		wantErr  bool
	}{
		{name: "match", stored: hash, provided: "correct horse", want: true},
		{name: "mismatch", stored: hash, provided: "battery staple"},
		{name: "no separator", stored: "abc", provided: "x", wantErr: true},
		{name: "bad base64", stored: "!!$!!", provided: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.stored, tt.provided)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHash)
				assert.False(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
