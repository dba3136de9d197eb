package schema

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKnowledgeBase(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "empty list", doc: `{"questions":[]}`},
		{name: "one entry", doc: `{"questions":[{"question":"hi","answer":"hello"}]}`},
		{name: "extra fields allowed", doc: `{"questions":[{"question":"hi","answer":"hello","source":"faq"}],"version":1}`},
		{name: "missing questions", doc: `{}`, wantErr: true},
		{name: "questions not array", doc: `{"questions":"hi"}`, wantErr: true},
		{name: "missing answer", doc: `{"questions":[{"question":"hi"}]}`, wantErr: true},
		{name: "answer not string", doc: `{"questions":[{"question":"hi","answer":42}]}`, wantErr: true},
		{name: "top level array", doc: `[]`, wantErr: true},
		{name: "not json", doc: `{"questions":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKnowledgeBase([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_CachesCompiledSchema(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Validate(KnowledgeBase, []byte(`{"questions":[]}`)))
	require.NoError(t, v.Validate(KnowledgeBase, []byte(`{"questions":[]}`)))

	count := 0
	v.cache.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count)
}

func TestValidator_StringSchema(t *testing.T) {
	v := NewValidator()
	s := `{"type":"object","required":["name"]}`
	assert.NoError(t, v.Validate(s, []byte(`{"name":"general"}`)))
	assert.Error(t, v.Validate(s, []byte(`{}`)))
}

func TestValidator_InvalidSchema(t *testing.T) {
	v := NewValidator()
	err := v.Validate(`{"type": 12}`, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schema definition")
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "a; b", summarize([]string{"a", "b"}))

	many := make([]string, 5)
	for i := range many {
		many[i] = fmt.Sprintf("e%d", i)
	}
	got := summarize(many)
	assert.True(t, strings.HasPrefix(got, "e0; e1; e2"))
	assert.Contains(t, got, "and 2 more")
}
