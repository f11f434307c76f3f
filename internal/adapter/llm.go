// Package adapter provides filesystem, LLM and report storage adapters.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	m "gooze.dev/pkg/testforge/internal/model"
)

// Generator produces code from a system and user prompt pair.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Validator reviews generated code and reports issues.
type Validator interface {
	Validate(ctx context.Context, code string, className string) (m.ValidationReport, error)
}

// OpenAIConfig configures the chat completion client.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIAdapter implements Generator and Validator on a chat completion API.
type OpenAIAdapter struct {
	client *openai.Client
	model  string
	temp   float32
}

// NewOpenAIAdapter creates an adapter from config. The API key is required;
// base URL is optional and allows OpenAI-compatible local endpoints.
func NewOpenAIAdapter(cfg OpenAIConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
		slog.Warn("no model configured, using default", "model", model)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("initializing LLM client", "model", model, "base_url", cfg.BaseURL)

	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		temp:   cfg.Temperature,
	}, nil
}

// Generate implements Generator.
func (a *OpenAIAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	slog.Debug("requesting completion", "model", a.model)

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("completion request failed", "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	slog.Debug("received completion", "finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

const validationSystemPrompt = "You are a meticulous Java code reviewer. " +
	"Review the test class for import and compilation problems and respond with a single JSON object, no prose."

// Validate implements Validator. The model is asked for a structured JSON
// report; an unparseable reply degrades to WARNING with empty collections,
// a transport failure yields an ERROR report alongside the error.
func (a *OpenAIAdapter) Validate(ctx context.Context, code string, className string) (m.ValidationReport, error) {
	reply, err := a.Generate(ctx, validationSystemPrompt, buildValidationPrompt(code, className))
	if err != nil {
		return m.ValidationReport{
			Status:         m.ValidationError,
			CriticalIssues: []string{fmt.Sprintf("validation failed: %v", err)},
			Assessment:     "validator unavailable",
		}, err
	}

	report, ok := ParseValidationReply(reply)
	if !ok {
		slog.Warn("could not parse validation reply, degrading to WARNING", "class", className)

		return m.ValidationReport{
			Status:            m.ValidationWarning,
			CriticalIssues:    []string{},
			MissingImports:    []string{},
			UnusedImports:     []string{},
			CompilationErrors: []string{},
			Recommendations:   []string{},
			Assessment:        "validator reply was not parseable",
		}, nil
	}

	return report, nil
}

func buildValidationPrompt(code, className string) string {
	var b strings.Builder

	b.WriteString("Validate this generated test class for ")
	b.WriteString(className)
	b.WriteString(".\n\n```java\n")
	b.WriteString(code)
	b.WriteString("\n```\n\n")
	b.WriteString(`Respond with JSON only, using this shape:
{
  "validation_status": "PASS|WARNING|FAIL",
  "critical_issues": ["..."],
  "missing_imports": ["fully.qualified.Import"],
  "unused_imports": ["fully.qualified.Import"],
  "compilation_errors": ["..."],
  "recommendations": ["..."],
  "overall_assessment": "..."
}`)

	return b.String()
}

// ParseValidationReply extracts a ValidationReport from a model reply. The
// reply may wrap the JSON in a code fence or surround it with prose.
func ParseValidationReply(reply string) (m.ValidationReport, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")

	if start < 0 || end <= start {
		return m.ValidationReport{}, false
	}

	var report m.ValidationReport
	if err := json.Unmarshal([]byte(reply[start:end+1]), &report); err != nil {
		return m.ValidationReport{}, false
	}

	switch report.Status {
	case m.ValidationPass, m.ValidationWarning, m.ValidationFail, m.ValidationError:
	default:
		return m.ValidationReport{}, false
	}

	return report, true
}
