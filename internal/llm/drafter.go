package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/Neo-sk01/newmatter-sub000/internal/models"
)

// ErrInvalidTemplate is returned when a prompt template cannot be rendered.
var ErrInvalidTemplate = errors.New("invalid prompt template")

const draftSystemPrompt = `You write short, personalised B2B outreach emails.
Answer with a single JSON object and nothing else: {"subject": "...", "body": "..."}.
The body is plain text without a signature placeholder.`

// Drafter turns a prompt template and a lead into an email.
type Drafter struct {
	model   llms.Model
	timeout time.Duration
}

func NewDrafter(model llms.Model, timeout time.Duration) *Drafter {
	return &Drafter{model: model, timeout: timeout}
}

// draftData is what prompt templates see: every lead field plus the sender.
type draftData struct {
	models.Lead
	Sender string
}

// RenderPrompt executes the prompt template against the lead.
func RenderPrompt(prompt models.Prompt, lead models.Lead, sender string) (string, error) {
	tmpl, err := template.New(prompt.Name).Option("missingkey=zero").Parse(prompt.Template)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, draftData{Lead: lead, Sender: sender}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	return buf.String(), nil
}

// DraftEmail renders the prompt for lead and asks the model for the email.
func (d *Drafter) DraftEmail(ctx context.Context, prompt models.Prompt, lead models.Lead, sender string) (models.DraftedEmail, error) {
	instructions, err := RenderPrompt(prompt, lead, sender)
	if err != nil {
		return models.DraftedEmail{}, err
	}
	system := draftSystemPrompt
	if prompt.Tone != "" {
		system += "\nTone: " + prompt.Tone + "."
	}
	answer, err := completeJSON(ctx, d.model, d.timeout, system, instructions)
	if err != nil {
		return models.DraftedEmail{}, err
	}
	return parseDraft(answer)
}

// parseDraft reads the JSON answer, or failing that treats the first line
// as the subject and the rest as the body.
func parseDraft(answer string) (models.DraftedEmail, error) {
	var email models.DraftedEmail
	if err := json.Unmarshal([]byte(answer), &email); err == nil && email.Body != "" {
		email.Subject = strings.TrimSpace(email.Subject)
		email.Body = strings.TrimSpace(email.Body)
		return email, nil
	}

	subject, body, _ := strings.Cut(strings.TrimSpace(answer), "\n")
	subject = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(subject), "Subject:"))
	body = strings.TrimSpace(body)
	if body == "" {
		return models.DraftedEmail{}, errors.New("llm answer has no email body")
	}
	return models.DraftedEmail{Subject: subject, Body: body}, nil
}
