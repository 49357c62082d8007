package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// registryFileSchema constrains the shape of an external registry file before
// it replaces the built-in document-type table.
const registryFileSchema = `{
  "type": "object",
  "required": ["document_types"],
  "properties": {
    "document_types": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["type", "fields"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "fields": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name", "hint"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "hint": {"type": "string", "minLength": 1}
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

type registryFile struct {
	DocumentTypes []struct {
		Type   string         `json:"type"`
		Fields []models.Field `json:"fields"`
	} `json:"document_types"`
}

// Registry maps document-type identifiers to their field schemas.
type Registry struct {
	schemas map[string]models.FieldSchema
	logger  logger.Logger
}

// NewRegistry builds a registry preloaded with the built-in document types.
func NewRegistry(log logger.Logger) *Registry {
	r := &Registry{
		schemas: make(map[string]models.FieldSchema),
		logger:  log,
	}
	for docType, fields := range builtinSchemas() {
		r.schemas[docType] = fields
	}
	return r
}

// LoadFile replaces the registry contents with the document types declared in
// a JSON registry file. The file is validated against a JSON Schema first so a
// malformed registry never half-loads.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema registry: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("schema registry is not valid JSON: %w", err)
	}

	compiled, err := jsonschema.CompileString("registry.schema.json", registryFileSchema)
	if err != nil {
		return fmt.Errorf("failed to compile registry schema: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema registry rejected: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode schema registry: %w", err)
	}

	loaded := make(map[string]models.FieldSchema, len(file.DocumentTypes))
	for _, dt := range file.DocumentTypes {
		fields := models.FieldSchema(dt.Fields)
		if err := fields.Validate(); err != nil {
			return fmt.Errorf("schema registry entry %q: %w", dt.Type, err)
		}
		if _, ok := loaded[dt.Type]; ok {
			return fmt.Errorf("schema registry declares %q twice", dt.Type)
		}
		loaded[dt.Type] = fields
	}

	r.schemas = loaded
	r.logger.Info("Loaded schema registry file",
		logger.String("path", path),
		logger.Int("documentTypes", len(loaded)),
	)
	return nil
}

// Get returns the schema registered for a document type.
func (r *Registry) Get(docType string) (models.FieldSchema, bool) {
	s, ok := r.schemas[docType]
	return s, ok
}

// Types lists the registered document types, sorted for stable output.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.schemas))
	for t := range r.schemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func builtinSchemas() map[string]models.FieldSchema {
	return map[string]models.FieldSchema{
		"aadhaar": {
			{Name: "name", Hint: "String"},
			{Name: "aadhaar_number", Hint: "Integer, format: 12 digit number"},
			{Name: "date_of_birth", Hint: "String format: DD-MM-YYYY"},
			{Name: "address", Hint: "String"},
		},
		"birth_certificate": {
			{Name: "name", Hint: "String"},
			{Name: "date_of_birth", Hint: "Date, format: DD-MM-YYYY"},
		},
		"marksheet": {
			{Name: "name", Hint: "String"},
			{Name: "date_of_birth", Hint: "Date, Format: DD-MM-YYYY"},
		},
		"degree_certificate": {
			{Name: "name", Hint: "String"},
			{Name: "university", Hint: "String"},
			{Name: "date_of_birth", Hint: "Date Format (DD-MM-YYYY)"},
			{Name: "degree", Hint: "String"},
			{Name: "cgpa", Hint: "Float"},
			{Name: "percentage", Hint: "Float"},
			{Name: "class", Hint: "String"},
			{Name: "qualification_degree", Hint: "String"},
		},
		"proof_of_class": {
			{Name: "name", Hint: "String"},
			{Name: "class", Hint: "String"},
		},
		"provisional_certificate": {
			{Name: "name", Hint: "String"},
			{Name: "degree", Hint: "String"},
			{Name: "university", Hint: "String"},
			{Name: "passing_year", Hint: "Integer"},
			{Name: "qualification_degree", Hint: "String"},
		},
		"experience_certificate": {
			{Name: "from_date", Hint: "String Format(YYYY-MM-DD)"},
			{Name: "to_date", Hint: "String Format(YYYY-MM-DD)"},
		},
		"gate_score_card": {
			{Name: "name", Hint: "String"},
			{Name: "year", Hint: "Integer(YYYY), Year of the GATE examination"},
			{Name: "marks_out_of_100", Hint: "Float, 0.0 to 100.0"},
			{Name: "all_india_rank_in_this_paper", Hint: "Integer"},
			{Name: "gate_score", Hint: "Integer, 0 to 1000"},
		},
		"proof_of_category": {
			{Name: "name", Hint: "String"},
			{Name: "category", Hint: "String"},
		},
		"proof_of_address": {
			{Name: "name", Hint: "String"},
			{Name: "address", Hint: "String"},
		},
		"phd_certificate": {
			{Name: "name", Hint: "String"},
			{Name: "university", Hint: "String"},
			{Name: "date_of_reg", Hint: "String (YYYY-MM-DD)"},
			{Name: "title_of_project", Hint: "String"},
			{Name: "no_of_papers_published", Hint: "Integer"},
			{Name: "no_of_conference_attended", Hint: "Integer"},
		},
	}
}
