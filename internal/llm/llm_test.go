package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/normalizer"
)

// fakeModel answers every request with a canned reply and records the prompt.
type fakeModel struct {
	reply    string
	err      error
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *fakeModel) text(role llms.ChatMessageType) string {
	for _, m := range f.messages {
		if m.Role != role {
			continue
		}
		for _, p := range m.Parts {
			if t, ok := p.(llms.TextContent); ok {
				return t.Text
			}
		}
	}
	return ""
}

func TestNewModel(t *testing.T) {
	_, err := NewModel(Config{Provider: "openai", Model: "gpt-4o-mini"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewModel(Config{Provider: "anthropic"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewModel(Config{Provider: "carrier-pigeon", APIKey: "k"})
	assert.Error(t, err)

	m, err := NewModel(Config{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("  {\"a\":1} "))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}```"))
}

func TestSuggestMapping(t *testing.T) {
	columns := []string{"Name", "Work Email", "Employer"}
	rows := normalizer.RowsFromMaps(columns, []map[string]string{
		{"Name": "Jane Doe", "Work Email": "jane@acme.io", "Employer": "Acme"},
	})

	t.Run("Fenced Wrapped Answer", func(t *testing.T) {
		model := &fakeModel{reply: "```json\n" + `{"mapping":{"Name":"fullName","Work Email":"email","Employer":"company"},"splitName":{"column":"Name","firstNameFirst":true}}` + "\n```"}
		s := NewMappingSuggester(model, time.Second)

		mapping, split, err := s.SuggestMapping(context.Background(), columns, rows)
		require.NoError(t, err)
		assert.Equal(t, normalizer.ColumnMapping{
			"Name":       normalizer.FieldFullName,
			"Work Email": normalizer.FieldEmail,
			"Employer":   normalizer.FieldCompany,
		}, mapping)
		require.NotNil(t, split)
		assert.Equal(t, "Name", split.Column)

		assert.Contains(t, model.text(llms.ChatMessageTypeSystem), "customField")
		assert.Contains(t, model.text(llms.ChatMessageTypeHuman), `"columns":["Name","Work Email","Employer"]`)
		assert.Contains(t, model.text(llms.ChatMessageTypeHuman), `"jane@acme.io"`)
	})

	t.Run("Only Five Sample Rows Are Sent", func(t *testing.T) {
		many := make([]map[string]string, 0, 8)
		for _, email := range []string{"r1@x.io", "r2@x.io", "r3@x.io", "r4@x.io", "r5@x.io", "r6@x.io", "r7@x.io"} {
			many = append(many, map[string]string{"Work Email": email})
		}
		model := &fakeModel{reply: `{"Work Email":"email"}`}
		_, _, err := NewMappingSuggester(model, 0).SuggestMapping(context.Background(), columns, normalizer.RowsFromMaps(columns, many))
		require.NoError(t, err)
		assert.Contains(t, model.text(llms.ChatMessageTypeHuman), "r5@x.io")
		assert.NotContains(t, model.text(llms.ChatMessageTypeHuman), "r6@x.io")
	})

	t.Run("Transport Error", func(t *testing.T) {
		model := &fakeModel{err: errors.New("503 overloaded")}
		_, _, err := NewMappingSuggester(model, time.Second).SuggestMapping(context.Background(), columns, rows)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503 overloaded")
	})

	t.Run("Unusable Answer", func(t *testing.T) {
		model := &fakeModel{reply: `{"Phone Number":"phone"}`}
		_, _, err := NewMappingSuggester(model, time.Second).SuggestMapping(context.Background(), columns, rows)
		assert.ErrorIs(t, err, normalizer.ErrUnusableSuggestion)
	})
}

func TestDraftEmail(t *testing.T) {
	lead := models.Lead{FirstName: "Kerry", LastName: "Largier", Company: "Yuppiechef", Title: "Head of Growth"}
	prompt := models.Prompt{
		Name:     "intro",
		Template: "Introduce our product to {{.FullName}}, {{.Title}} at {{.Company}}. Sign as {{.Sender}}.",
		Tone:     "friendly",
	}

	t.Run("JSON Answer", func(t *testing.T) {
		model := &fakeModel{reply: `{"subject":" Quick idea for Yuppiechef ","body":"Hi Kerry,\n\nWould you be open to a chat?"}`}
		email, err := NewDrafter(model, time.Second).DraftEmail(context.Background(), prompt, lead, "Acme Sales")
		require.NoError(t, err)
		assert.Equal(t, "Quick idea for Yuppiechef", email.Subject)
		assert.Equal(t, "Hi Kerry,\n\nWould you be open to a chat?", email.Body)

		assert.Equal(t, "Introduce our product to Kerry Largier, Head of Growth at Yuppiechef. Sign as Acme Sales.",
			model.text(llms.ChatMessageTypeHuman))
		assert.Contains(t, model.text(llms.ChatMessageTypeSystem), "Tone: friendly.")
	})

	t.Run("Plain Text Answer", func(t *testing.T) {
		model := &fakeModel{reply: "Subject: Hello Kerry\nHi Kerry,\nShort note."}
		email, err := NewDrafter(model, time.Second).DraftEmail(context.Background(), prompt, lead, "")
		require.NoError(t, err)
		assert.Equal(t, "Hello Kerry", email.Subject)
		assert.Equal(t, "Hi Kerry,\nShort note.", email.Body)
	})

	t.Run("Empty Body", func(t *testing.T) {
		model := &fakeModel{reply: `{"subject":"only a subject"}`}
		_, err := NewDrafter(model, time.Second).DraftEmail(context.Background(), prompt, lead, "")
		assert.Error(t, err)
	})

	t.Run("Broken Template", func(t *testing.T) {
		model := &fakeModel{reply: `{}`}
		_, err := NewDrafter(model, time.Second).DraftEmail(context.Background(), models.Prompt{Template: "{{.FirstName"}, lead, "")
		assert.ErrorIs(t, err, ErrInvalidTemplate)
		assert.Nil(t, model.messages, "model is not called")
	})
}
