package executor

import (
	"context"
	"time"

	"presto-copilot-be/pkg/genai"
	"presto-copilot-be/pkg/store"
)

// Generator is the slice of the genai client the executor needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, req *genai.GenerateContentRequest) (*genai.GenerateContentResponse, error)
}

// Outcome classifies how a query ended.
type Outcome string

const (
	OutcomeAnswered   Outcome = "answered"
	OutcomeEmpty      Outcome = "empty"
	OutcomeOverloaded Outcome = "overloaded"
	OutcomeAPIError   Outcome = "api_error"
)

// Failed reports whether the outcome is one of the failure arms.
func (o Outcome) Failed() bool {
	return o == OutcomeOverloaded || o == OutcomeAPIError
}

// Result is the terminal state of one executed query.
type Result struct {
	Text     string
	Outcome  Outcome
	Attempts int
	Err      error
}

// QueryExecutor sends a grounded query and absorbs transient overload by
// retrying with a fixed delay up to an attempt cap. Any other failure is
// terminal on the spot. The executor never mutates history; it only reads
// the snapshot it is given.
type QueryExecutor struct {
	gen         Generator
	maxAttempts int
	retryDelay  time.Duration

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewQueryExecutor(gen Generator, maxAttempts int, retryDelay time.Duration) *QueryExecutor {
	return &QueryExecutor{
		gen:         gen,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Ask runs one query grounded in storeName, carrying the full transcript.
// The delay runs only between attempts; the final attempt returns without
// sleeping.
func (e *QueryExecutor) Ask(ctx context.Context, storeName, model, systemInstruction string, turns []store.Turn) Result {
	req := buildRequest(storeName, systemInstruction, turns)

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		res, err := e.gen.GenerateContent(ctx, model, req)
		if err == nil {
			text := res.Text()
			outcome := OutcomeAnswered
			if text == "" {
				outcome = OutcomeEmpty
			}
			return Result{Text: text, Outcome: outcome, Attempts: attempt}
		}

		if !genai.IsOverloaded(err) {
			return Result{Outcome: OutcomeAPIError, Attempts: attempt, Err: err}
		}
		lastErr = err

		if attempt == e.maxAttempts {
			break
		}
		if err := e.sleep(ctx, e.retryDelay); err != nil {
			return Result{Outcome: OutcomeAPIError, Attempts: attempt, Err: err}
		}
	}

	return Result{Outcome: OutcomeOverloaded, Attempts: e.maxAttempts, Err: lastErr}
}

// buildRequest maps domain turns onto the wire format. Assistant turns go out
// under the API's "model" role.
func buildRequest(storeName, systemInstruction string, turns []store.Turn) *genai.GenerateContentRequest {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := genai.RoleUser
		if turn.Role == store.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: turn.Text}},
			Role:  role,
		})
	}

	req := &genai.GenerateContentRequest{
		Contents: contents,
		Tools: []*genai.Tool{
			{FileSearch: &genai.FileSearch{FileSearchStoreNames: []string{storeName}}},
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}
	return req
}
