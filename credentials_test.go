// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCredentials(t *testing.T) {
	t.Run("enabled entry", func(t *testing.T) {
		path := writeCredentials(t, `{"values":[{"key":"private_key","value":"sk_live_1","enabled":true}]}`)
		creds, err := LoadCredentials(path)
		require.NoError(t, err)
		assert.Equal(t, "sk_live_1", creds.APIKey)
	})
	t.Run("absent enabled counts as enabled", func(t *testing.T) {
		path := writeCredentials(t, `{"values":[{"key":"private_key","value":"sk_live_2"}]}`)
		creds, err := LoadCredentials(path)
		require.NoError(t, err)
		assert.Equal(t, "sk_live_2", creds.APIKey)
	})
	t.Run("disabled entry skipped", func(t *testing.T) {
		path := writeCredentials(t, `{"values":[
			{"key":"private_key","value":"sk_old","enabled":false},
			{"key":"private_key","value":"sk_new","enabled":true}
		]}`)
		creds, err := LoadCredentials(path)
		require.NoError(t, err)
		assert.Equal(t, "sk_new", creds.APIKey)
	})
	t.Run("other keys ignored", func(t *testing.T) {
		path := writeCredentials(t, `{"values":[
			{"key":"public_key","value":"pk_x","enabled":true},
			{"key":"private_key","value":"sk_y","enabled":true}
		]}`)
		creds, err := LoadCredentials(path)
		require.NoError(t, err)
		assert.Equal(t, "sk_y", creds.APIKey)
	})
	t.Run("no private key", func(t *testing.T) {
		path := writeCredentials(t, `{"values":[{"key":"public_key","value":"pk_x"}]}`)
		_, err := LoadCredentials(path)
		assert.ErrorContains(t, err, "no enabled private_key entry")
	})
	t.Run("invalid JSON", func(t *testing.T) {
		path := writeCredentials(t, `{"values":`)
		_, err := LoadCredentials(path)
		assert.ErrorContains(t, err, "not valid JSON")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
