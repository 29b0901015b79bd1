package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnusableSuggestion is returned when a suggested mapping names no known
// column.
var ErrUnusableSuggestion = errors.New("suggested mapping is unusable")

// suggestionEnvelope is the wrapped answer shape; the mapping itself may be
// forward, reverse or a list of pairs.
type suggestionEnvelope struct {
	Mapping   json.RawMessage `json:"mapping"`
	Mappings  json.RawMessage `json:"mappings"`
	SplitName *struct {
		Column         string `json:"column"`
		FirstNameFirst *bool  `json:"firstNameFirst"`
	} `json:"splitName"`
}

type suggestionPair struct {
	Column    string `json:"column"`
	Header    string `json:"header"`
	CSVColumn string `json:"csvColumn"`
	Field     string `json:"field"`
	Target    string `json:"target"`
	MapsTo    string `json:"mapsTo"`
}

func (p suggestionPair) column() string { return firstNonEmpty(p.Column, p.Header, p.CSVColumn) }
func (p suggestionPair) field() string  { return firstNonEmpty(p.Field, p.Target, p.MapsTo) }

// ResolveSuggestedMapping converts any of the accepted suggestion shapes into
// a ColumnMapping over columns:
//
//	{"First Name": "firstName"}                      forward
//	{"firstName": "First Name"}                      reverse
//	[{"column": "First Name", "field": "firstName"}] pairs
//
// optionally wrapped as {"mapping": ..., "splitName": {...}}. Unknown columns
// are dropped and unknown field tags become customField.
func ResolveSuggestedMapping(columns []string, payload []byte) (ColumnMapping, *SplitNameRule, error) {
	var env suggestionEnvelope
	inner := json.RawMessage(payload)
	if err := json.Unmarshal(payload, &env); err == nil {
		switch {
		case len(env.Mapping) > 0:
			inner = env.Mapping
		case len(env.Mappings) > 0:
			inner = env.Mappings
		}
	}

	resolver := newColumnResolver(columns)
	raw := make(map[string]Field)

	var pairs []suggestionPair
	var flat map[string]json.RawMessage
	switch {
	case json.Unmarshal(inner, &pairs) == nil:
		for _, p := range pairs {
			resolver.assign(raw, p.column(), p.field())
		}
	case json.Unmarshal(inner, &flat) == nil:
		keys := make([]string, 0, len(flat))
		for k := range flat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		reversed := resolver.looksReversed(keys)
		for _, k := range keys {
			if reversed {
				for _, col := range stringList(flat[k]) {
					resolver.assign(raw, col, k)
				}
				continue
			}
			var fieldName string
			if json.Unmarshal(flat[k], &fieldName) == nil {
				resolver.assign(raw, k, fieldName)
			}
		}
	default:
		return nil, nil, fmt.Errorf("%w: not a JSON object or array", ErrUnusableSuggestion)
	}

	mapping := NewColumnMapping(columns, raw)
	if len(mapping) == 0 {
		return nil, nil, fmt.Errorf("%w: no known columns", ErrUnusableSuggestion)
	}

	var split *SplitNameRule
	if env.SplitName != nil {
		if col, ok := resolver.resolve(env.SplitName.Column); ok {
			split = &SplitNameRule{Column: col, FirstNameFirst: true}
			if env.SplitName.FirstNameFirst != nil {
				split.FirstNameFirst = *env.SplitName.FirstNameFirst
			}
		}
	}
	return mapping, split, nil
}

type columnResolver struct {
	exact map[string]string
	loose map[string]string
}

func newColumnResolver(columns []string) *columnResolver {
	r := &columnResolver{
		exact: make(map[string]string, len(columns)),
		loose: make(map[string]string, len(columns)),
	}
	for _, c := range columns {
		r.exact[c] = c
		key := strings.ToLower(strings.TrimSpace(c))
		if _, taken := r.loose[key]; !taken {
			r.loose[key] = c
		}
	}
	return r
}

// resolve finds the header column a model referred to, tolerating case and
// surrounding whitespace differences.
func (r *columnResolver) resolve(name string) (string, bool) {
	if c, ok := r.exact[name]; ok {
		return c, true
	}
	c, ok := r.loose[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

func (r *columnResolver) assign(raw map[string]Field, column, fieldName string) {
	col, ok := r.resolve(column)
	if !ok || strings.TrimSpace(fieldName) == "" {
		return
	}
	f, ok := ParseField(fieldName)
	if !ok {
		f = FieldCustom
	}
	raw[col] = f
}

// looksReversed reports whether a flat object is keyed by field tags rather
// than by header columns.
func (r *columnResolver) looksReversed(keys []string) bool {
	var columnKeys, fieldKeys int
	for _, k := range keys {
		if _, ok := r.resolve(k); ok {
			columnKeys++
			continue
		}
		if f, ok := ParseField(k); ok && f.Valid() {
			fieldKeys++
		}
	}
	return fieldKeys > columnKeys
}

func stringList(v json.RawMessage) []string {
	var one string
	if json.Unmarshal(v, &one) == nil {
		return []string{one}
	}
	var many []string
	if json.Unmarshal(v, &many) == nil {
		return many
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
