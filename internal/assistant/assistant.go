// Package assistant answers free-form questions about the user's finances
// with Gemini. The model sees a compact snapshot of the profile, computed
// metrics, and recent transactions; it never sees other users' data.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/agusantonetti/smartmoney/internal/domain"
)

// DefaultModelName is the Gemini model used when config leaves it empty.
const DefaultModelName = "gemini-2.5-flash"

// requestTimeout bounds a single model call.
const requestTimeout = 15 * time.Second

// recentTransactionLimit caps how many transactions go into the prompt.
const recentTransactionLimit = 20

// Answer is the structured reply the model is asked for.
type Answer struct {
	Reply       string   `json:"reply"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Snapshot is the financial context handed to the model.
type Snapshot struct {
	Profile      domain.FinancialProfile
	Metrics      domain.FinancialMetrics
	Transactions []domain.Transaction
}

// Assistant wraps the Gemini client.
type Assistant struct {
	model string
	log   zerolog.Logger
}

// New creates an Assistant. An empty model selects DefaultModelName.
func New(model string, log zerolog.Logger) *Assistant {
	if model == "" {
		model = DefaultModelName
	}
	return &Assistant{model: model, log: log}
}

// Ask sends the question with the snapshot as context and returns the
// model's structured answer.
func (a *Assistant) Ask(ctx context.Context, question string, snap Snapshot) (*Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt, err := buildPrompt(question, snap)
	if err != nil {
		return nil, fmt.Errorf("assistant: build prompt: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("assistant: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("assistant: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var answer Answer
	if err := json.Unmarshal([]byte(clean), &answer); err != nil {
		// The model occasionally ignores the JSON instruction; keep the
		// plain text instead of failing the request.
		a.log.Warn().Err(err).Msg("Assistant reply was not JSON")
		return &Answer{Reply: strings.TrimSpace(rawText)}, nil
	}
	if answer.Reply == "" {
		return nil, fmt.Errorf("assistant: reply field missing in model output")
	}
	return &answer, nil
}

func buildPrompt(question string, snap Snapshot) (string, error) {
	if len(snap.Transactions) > recentTransactionLimit {
		snap.Transactions = snap.Transactions[:recentTransactionLimit]
	}

	contextJSON, err := json.Marshal(map[string]interface{}{
		"profile":            snap.Profile,
		"metrics":            snap.Metrics,
		"recentTransactions": snap.Transactions,
	})
	if err != nil {
		return "", err
	}

	prompt :=
		"You are a personal finance assistant for a traveler managing money in ARS and USD.\n\n" +
			"Task:\n" +
			"- Answer the user's question using ONLY the financial context below.\n" +
			"- All amounts in the context are in ARS unless stated otherwise.\n" +
			"- Be concrete: cite the numbers you used.\n" +
			"- Output STRICT JSON only (no comments, no extra text).\n\n" +
			"Output object fields:\n" +
			"- \"reply\": string, the answer in the user's language\n" +
			"- \"suggestions\": array of up to 3 short follow-up actions, or omit it\n\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"{\" and end with \"}\".\n\n" +
			"Financial context:\n" + string(contextJSON) + "\n\n" +
			"Question: " + question + "\n"

	return prompt, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
			s = strings.TrimSpace(s)
		}
	}

	return s
}
