package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// KnowledgeBase is the JSON schema of a persisted knowledge-base record.
var KnowledgeBase = map[string]any{
	"type":     "object",
	"required": []string{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"question", "answer"},
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"answer":   map[string]any{"type": "string"},
				},
			},
		},
	},
}

// maxReported caps how many violations end up in one error message.
const maxReported = 3

// Validator checks JSON documents against schemas, caching each compiled
// schema by its serialized form.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{}
}

var defaultValidator = NewValidator()

// ValidateKnowledgeBase checks a raw record against KnowledgeBase.
func ValidateKnowledgeBase(doc []byte) error {
	return defaultValidator.Validate(KnowledgeBase, doc)
}

// Validate checks doc against schemaData, which may be a map, a struct or
// a JSON string.
func (v *Validator) Validate(schemaData any, doc []byte) error {
	compiled, err := v.compile(schemaData)
	if err != nil {
		return fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", summarize(errs))
}

func (v *Validator) compile(schemaData any) (*gojsonschema.Schema, error) {
	var raw []byte
	if s, ok := schemaData.(string); ok {
		raw = []byte(s)
	} else {
		b, err := json.Marshal(schemaData)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	key := string(raw)

	if cached, ok := v.cache.Load(key); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, compiled)
	return compiled, nil
}

func summarize(errs []string) string {
	if len(errs) <= maxReported {
		return strings.Join(errs, "; ")
	}
	return fmt.Sprintf("%s; ... and %d more", strings.Join(errs[:maxReported], "; "), len(errs)-maxReported)
}
