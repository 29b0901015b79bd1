package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/Neo-sk01/newmatter-sub000/internal/normalizer"
)

// maxSampleRows bounds how much of the file is shown to the model.
const maxSampleRows = 5

const mappingSystemTemplate = `You map CSV columns of sales lead lists onto a fixed set of lead fields.
Answer with a single JSON object and nothing else, shaped as:
{"mapping": {"<column>": "<field>", ...}, "splitName": {"column": "<column>", "firstNameFirst": true}}
Use only these fields: %s.
Map every column exactly once. Use "customField" for useful data with no matching field
and "ignore" for internal identifiers or empty columns. Include "splitName" only when a
single column holds the full name and no column holds first or last names.`

// MappingSuggester asks a language model for a column mapping.
type MappingSuggester struct {
	model   llms.Model
	timeout time.Duration
}

func NewMappingSuggester(model llms.Model, timeout time.Duration) *MappingSuggester {
	return &MappingSuggester{model: model, timeout: timeout}
}

// SuggestMapping returns the model's mapping over columns. Any answer that
// names no known column is an error.
func (s *MappingSuggester) SuggestMapping(ctx context.Context, columns []string, sampleRows []normalizer.RawRow) (normalizer.ColumnMapping, *normalizer.SplitNameRule, error) {
	user, err := mappingUserPrompt(columns, sampleRows)
	if err != nil {
		return nil, nil, err
	}
	answer, err := completeJSON(ctx, s.model, s.timeout, mappingSystemPrompt(), user)
	if err != nil {
		return nil, nil, err
	}
	mapping, split, err := normalizer.ResolveSuggestedMapping(columns, []byte(answer))
	if err != nil {
		return nil, nil, fmt.Errorf("unusable mapping suggestion: %w", err)
	}
	return mapping, split, nil
}

func mappingSystemPrompt() string {
	names := make([]string, 0, len(normalizer.AllFields))
	for _, f := range normalizer.AllFields {
		names = append(names, string(f))
	}
	return fmt.Sprintf(mappingSystemTemplate, strings.Join(names, ", "))
}

func mappingUserPrompt(columns []string, sampleRows []normalizer.RawRow) (string, error) {
	if len(sampleRows) > maxSampleRows {
		sampleRows = sampleRows[:maxSampleRows]
	}
	payload := struct {
		Columns    []string            `json:"columns"`
		SampleRows []normalizer.RawRow `json:"sampleRows"`
	}{Columns: columns, SampleRows: sampleRows}
	if payload.SampleRows == nil {
		payload.SampleRows = []normalizer.RawRow{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode mapping request: %w", err)
	}
	return "Map these CSV columns:\n" + string(raw), nil
}
