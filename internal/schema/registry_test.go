package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh096/InsightVerify/pkg/logger"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry(logger.NewTestLogger())

	s, ok := r.Get("aadhaar")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "aadhaar_number", "date_of_birth", "address"}, s.Names())

	_, ok = r.Get("library_card")
	assert.False(t, ok)

	types := r.Types()
	assert.Contains(t, types, "aadhaar")
	assert.Contains(t, types, "gate_score_card")
	assert.Contains(t, types, "phd_certificate")
}

func TestRegistryLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"document_types": [
			{
				"type": "library_card",
				"fields": [
					{"name": "name", "hint": "String"},
					{"name": "card_number", "hint": "Integer"}
				]
			}
		]
	}`), 0644))

	r := NewRegistry(logger.NewTestLogger())
	require.NoError(t, r.LoadFile(path))

	s, ok := r.Get("library_card")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "card_number"}, s.Names())

	// Loading a file replaces the builtins entirely.
	_, ok = r.Get("aadhaar")
	assert.False(t, ok)
}

func TestRegistryLoadFileRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `not json at all`},
		{"missing document_types", `{"schemas": []}`},
		{"empty document_types", `{"document_types": []}`},
		{"field without hint", `{"document_types": [{"type": "x", "fields": [{"name": "n"}]}]}`},
		{"unknown keys", `{"document_types": [{"type": "x", "fields": [{"name": "n", "hint": "String", "extra": 1}]}]}`},
		{"duplicate type", `{"document_types": [
			{"type": "x", "fields": [{"name": "n", "hint": "String"}]},
			{"type": "x", "fields": [{"name": "m", "hint": "String"}]}
		]}`},
		{"duplicate field", `{"document_types": [
			{"type": "x", "fields": [{"name": "n", "hint": "String"}, {"name": "n", "hint": "Integer"}]}
		]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "registry.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			r := NewRegistry(logger.NewTestLogger())
			require.Error(t, r.LoadFile(path))

			// A rejected file must not disturb the builtins.
			_, ok := r.Get("aadhaar")
			assert.True(t, ok)
		})
	}
}
