package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const maxReplyTokens = 150

// Remote asks a chat-completion endpoint to pick a move.
type Remote struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewRemote(url, apiKey, model string, timeout time.Duration) *Remote {
	return &Remote{URL: url, APIKey: apiKey, Model: model, Timeout: timeout}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r *Remote) Suggest(ctx context.Context, req Request) (string, error) {
	if len(req.Moves) == 0 {
		return "", ErrNoLegalMoves
	}
	p := presetFor(req.Difficulty)
	body := chatRequest{
		Model: r.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.prompt},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature: p.temperature,
		MaxTokens:   maxReplyTokens,
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	timeout := r.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return "", context.DeadlineExceeded
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := r.post(body, timeout)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}

func (r *Remote) post(body chatRequest, timeout time.Duration) (string, error) {
	agent := fiber.Post(r.URL)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+r.APIKey)
	agent.JSON(body)
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	status, raw, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("suggestion request: %w", errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrMalformedReply, status)
	}

	var reply chatResponse
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedReply)
	}
	text := strings.TrimSpace(reply.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedReply)
	}
	return text, nil
}

func userPrompt(req Request) string {
	moves, _ := json.Marshal(req.Moves)
	return fmt.Sprintf(`%s

Current position (FEN):
%s

Legal moves (you MUST pick one of these):
%s

Answer ONLY with the algebraic notation of the chosen move.`, presetFor(req.Difficulty).prompt, req.FEN, moves)
}
