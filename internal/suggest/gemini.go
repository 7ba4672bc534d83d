package suggest

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

//go:embed prompts/task_name.txt
var taskNamePrompt string

var taskNameTmpl = template.Must(template.New("task_name").Parse(taskNamePrompt))

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("task suggestions are not configured")

// Suggester turns a free-form prompt into a task name.
type Suggester interface {
	SuggestTaskName(ctx context.Context, prompt string) (string, error)
}

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.7)
	m.SetMaxOutputTokens(64)
	return &Gemini{client: client, model: m}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) SuggestTaskName(ctx context.Context, prompt string) (string, error) {
	var buf bytes.Buffer
	if err := taskNameTmpl.Execute(&buf, struct{ Prompt string }{Prompt: prompt}); err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return cleanName(string(text)), nil
}

// cleanName strips quoting and keeps the first line of the model output.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'`* ")
	return strings.TrimSpace(s)
}
