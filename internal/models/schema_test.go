package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSchemaMarshalKeepsOrder(t *testing.T) {
	s := FieldSchema{
		{Name: "zebra", Hint: "String"},
		{Name: "alpha", Hint: "Integer"},
		{Name: "middle", Hint: "Date, format: DD-MM-YYYY"},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":"String","alpha":"Integer","middle":"Date, format: DD-MM-YYYY"}`, string(data))
}

func TestFieldSchemaValidate(t *testing.T) {
	assert.Error(t, FieldSchema{}.Validate())
	assert.Error(t, FieldSchema{{Name: "", Hint: "String"}}.Validate())
	assert.Error(t, FieldSchema{{Name: "a", Hint: "x"}, {Name: "a", Hint: "y"}}.Validate())
	assert.NoError(t, FieldSchema{{Name: "a", Hint: "x"}, {Name: "b", Hint: "y"}}.Validate())
}

func TestMediaType(t *testing.T) {
	assert.True(t, MediaTypePNG.IsImage())
	assert.True(t, MediaTypeJPEG.IsImage())
	assert.False(t, MediaTypePDF.IsImage())
	assert.True(t, MediaTypePDF.Supported())
	assert.False(t, MediaType("image/gif").Supported())
	assert.Equal(t, ".pdf", MediaTypePDF.Ext())
}

func TestKnownDocumentLabel(t *testing.T) {
	assert.True(t, KnownDocumentLabel("aadhaar"))
	assert.True(t, KnownDocumentLabel("other"))
	assert.False(t, KnownDocumentLabel("passport"))
}
