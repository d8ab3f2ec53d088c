package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/pkg/types"
)

// ErrNoResponse signals the model returned no choices
var ErrNoResponse = errors.New("no response from AI")

// AIAssistant uses OpenAI to propose review fixes
type AIAssistant struct {
	client *openai.Client
	logger *zap.Logger
	model  string
}

// NewAIAssistant creates a new AI assistant. An empty baseURL uses the
// public OpenAI endpoint.
func NewAIAssistant(apiKey, model, baseURL string, logger *zap.Logger) *AIAssistant {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	return &AIAssistant{
		client: openai.NewClientWithConfig(cfg),
		logger: logger,
		model:  model,
	}
}

// Propose sends the unresolved review comments to the model and parses the
// proposed change per issue
func (a *AIAssistant) Propose(ctx context.Context, d *types.PullRequestDiscussion) (*Plan, error) {
	var prompt bytes.Buffer
	if err := WriteLLM(&prompt, d, Options{}); err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	prompt.WriteString(responseFormat)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert software engineer helping a developer resolve code review comments on a GitHub pull request.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.String(),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoResponse
	}

	plan := parsePlan(resp.Choices[0].Message.Content)
	if plan.Summary == "" {
		plan.Summary = fmt.Sprintf("Proposed changes for PR #%d", d.Number)
	}

	a.logger.Info("generated review plan",
		zap.Int("pr_number", d.Number),
		zap.Int("suggestions", len(plan.Suggestions)),
	)

	return plan, nil
}

const responseFormat = `
Do not wait for confirmation this time. Reply only in this format:
SUMMARY: <one sentence overview>
ISSUE 1: <the change you would make>
ISSUE 2: ...
`

func parsePlan(response string) *Plan {
	plan := &Plan{Suggestions: []Suggestion{}}
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			plan.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "ISSUE "):
			rest := strings.TrimPrefix(line, "ISSUE ")
			num, change, ok := strings.Cut(rest, ":")
			if !ok {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(num))
			if err != nil {
				continue
			}
			plan.Suggestions = append(plan.Suggestions, Suggestion{Issue: n, Change: strings.TrimSpace(change)})
		}
	}
	return plan
}

// WritePlan prints the plan below the review dump
func WritePlan(w io.Writer, plan *Plan) error {
	var sb strings.Builder
	sb.WriteString("\n## Proposed Changes\n")
	sb.WriteString(plan.Summary + "\n\n")
	for _, s := range plan.Suggestions {
		fmt.Fprintf(&sb, "- Issue %d: %s\n", s.Issue, s.Change)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
