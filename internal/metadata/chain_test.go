package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHead(t *testing.T) {
	tests := []struct {
		name     string
		versions map[string]string
		want     string
		wantErr  error
	}{
		{name: "new object", versions: map[string]string{}, want: ""},
		{name: "nil map", versions: nil, want: ""},
		{name: "single version", versions: map[string]string{"h1": ""}, want: "h1"},
		{name: "three versions", versions: map[string]string{"h1": "", "h2": "h1", "h3": "h2"}, want: "h3"},
		{name: "fork", versions: map[string]string{"h1": "", "h2": "h1", "h3": "h1"}, wantErr: ErrBrokenChain},
		{name: "two roots", versions: map[string]string{"h1": "", "h2": ""}, wantErr: ErrBrokenChain},
		{name: "unreachable", versions: map[string]string{"h1": "", "h3": "h2"}, wantErr: ErrBrokenChain},
		{name: "detached cycle", versions: map[string]string{"h1": "", "a": "b", "b": "a"}, wantErr: ErrBrokenChain},
		{name: "cycle through root", versions: map[string]string{"h1": "", "": "h1"}, wantErr: ErrBrokenChain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, err := Head(tt.versions)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, head)
		})
	}
}

func TestHistory(t *testing.T) {
	history, err := History(map[string]string{"h3": "h2", "h1": "", "h2": "h1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2", "h3"}, history)

	_, err = History(map[string]string{"h1": "", "h2": ""})
	assert.ErrorIs(t, err, ErrBrokenChain)
}

func TestValidateHash(t *testing.T) {
	assert.NoError(t, validateHash("abc"))
	assert.ErrorIs(t, validateHash(""), ErrInvalidHash)
	assert.ErrorIs(t, validateHash("path"), ErrInvalidHash)
}
