package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"progress-service/internal/engine"
	"progress-service/internal/models"
)

// Generator produces a fresh question snapshot for an AI practice attempt.
// Implementations must fail closed: either a fully well-formed set of
// questions or an error, never a partial set.
type Generator interface {
	Generate(ctx context.Context, topic, difficulty string, count, optionCount int) ([]models.AttemptQuestion, error)
}

// LLMGenerator calls an OpenAI-compatible chat completions endpoint and
// parses the response into attempt questions.
type LLMGenerator struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Model   string
}

func NewLLMGenerator(baseURL, apiKey, model string, timeout time.Duration) *LLMGenerator {
	return &LLMGenerator{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
	}
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Stream      bool                    `json:"stream"`
	Temperature *float64                `json:"temperature,omitempty"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

// generatedQuestion is the JSON shape the model is instructed to emit.
type generatedQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

const systemPrompt = `You are a quiz author for a professional training platform.
Reply with a JSON array only, no prose, no markdown fences. Each element:
{"question": string, "options": [%d strings], "correct_index": 0-based int, "explanation": string}.
Produce exactly %d questions.`

func (g *LLMGenerator) Generate(ctx context.Context, topic, difficulty string, count, optionCount int) ([]models.AttemptQuestion, error) {
	userPrompt := fmt.Sprintf("Topic: %s\nDifficulty: %s\nWrite %d multiple-choice questions with %d options each.",
		topic, difficulty, count, optionCount)

	temp := 0.7
	reqBody := chatCompletionRequest{
		Model: g.Model,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: fmt.Sprintf(systemPrompt, optionCount, count)},
			{Role: "user", Content: userPrompt},
		},
		Stream:      false,
		Temperature: &temp,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &engine.GenerationError{Reason: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &engine.GenerationError{Reason: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, &engine.GenerationError{Reason: "calling generation service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &engine.GenerationError{Reason: fmt.Sprintf("generation service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, &engine.GenerationError{Reason: "decoding response", Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &engine.GenerationError{Reason: "empty completion"}
	}

	questions, err := ParseQuestions(completion.Choices[0].Message.Content, count, optionCount)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// ParseQuestions decodes and validates model output. Anything short of
// exactly count well-formed questions is a GenerationError; the caller
// must not create a partial attempt.
func ParseQuestions(content string, count, optionCount int) ([]models.AttemptQuestion, error) {
	content = stripFences(content)

	var raw []generatedQuestion
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &engine.GenerationError{Reason: "malformed question JSON", Err: err}
	}
	if len(raw) != count {
		return nil, &engine.GenerationError{Reason: fmt.Sprintf("expected %d questions, got %d", count, len(raw))}
	}

	questions := make([]models.AttemptQuestion, len(raw))
	for i, q := range raw {
		if strings.TrimSpace(q.Question) == "" {
			return nil, &engine.GenerationError{Reason: fmt.Sprintf("question %d has empty text", i)}
		}
		if len(q.Options) != optionCount {
			return nil, &engine.GenerationError{Reason: fmt.Sprintf("question %d has %d options, want %d", i, len(q.Options), optionCount)}
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return nil, &engine.GenerationError{Reason: fmt.Sprintf("question %d option %d is empty", i, j)}
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= optionCount {
			return nil, &engine.GenerationError{Reason: fmt.Sprintf("question %d correct index %d out of range", i, q.CorrectIndex)}
		}
		questions[i] = models.AttemptQuestion{
			Content:      q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
	}
	return questions, nil
}

// stripFences tolerates models that wrap JSON in markdown fences despite
// the instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
