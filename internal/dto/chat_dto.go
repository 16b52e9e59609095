package dto

import (
	"fmt"
	"time"
)

type CreateSessionRequest struct {
	StoreKey string `json:"store_key,omitempty"`
	Model    string `json:"model,omitempty"`
}

type ConfigureSessionRequest struct {
	StoreKey string `json:"store_key,omitempty"`
	Model    string `json:"model,omitempty"`
}

type SessionResponse struct {
	Id        string    `json:"id"`
	StoreKey  string    `json:"store_key"`
	StoreName string    `json:"store_name"`
	Model     string    `json:"model"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatTurnResponse struct {
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryPairResponse is one question/answer pair. All pairs but the newest
// are flagged collapsed so clients can render them folded behind the title.
type HistoryPairResponse struct {
	Index     int              `json:"index"`
	Title     string           `json:"title"`
	Collapsed bool             `json:"collapsed"`
	User      ChatTurnResponse `json:"user"`
	Assistant ChatTurnResponse `json:"assistant"`
}

type GetChatHistoryResponse struct {
	SessionId string                `json:"session_id"`
	Pairs     []HistoryPairResponse `json:"pairs"`
}

type SendChatRequest struct {
	Chat string `json:"chat" validate:"required"`
}

const (
	ChatOutcomeAnswered = "answered"
	ChatOutcomeEmpty    = "empty"
	ChatOutcomeFailed   = "failed"

	FailureReasonOverloaded = "overloaded"
	FailureReasonAPIError   = "api_error"
)

type SendChatResponse struct {
	SessionId     string            `json:"session_id"`
	Outcome       string            `json:"outcome"`                  // "answered" | "empty" | "failed"
	FailureReason string            `json:"failure_reason,omitempty"` // "overloaded" | "api_error"
	Attempts      int               `json:"attempts"`
	Sent          *ChatTurnResponse `json:"sent"`
	Reply         *ChatTurnResponse `json:"reply"`
}

// --- Catalog DTOs ---

type StoreCatalogEntry struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

type DocumentResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	MimeType    string `json:"mime_type,omitempty"`
	SizeBytes   string `json:"size_bytes,omitempty"`
}

type ModelCatalogResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}

// --- Typed Errors ---
// The error handler middleware maps these onto HTTP statuses.

// ThrottledError rejects a query sent before the per-session minimum
// interval elapsed. Rejection still counts as a request for the window.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return "query submitted too soon after the previous one"
}

// ThrottledData is the data payload for 429 responses
type ThrottledData struct {
	RetryAfterMs int64 `json:"retry_after_ms"`
}

// ThrottledResponse is the full 429 response structure
type ThrottledResponse struct {
	Success   bool          `json:"success"`
	Code      int           `json:"code"`
	Message   string        `json:"message"`
	ErrorType string        `json:"error_type"`
	Data      ThrottledData `json:"data"`
}

// SessionBusyError rejects a query while another one is still in flight for
// the same session.
type SessionBusyError struct {
	SessionId string
}

func (e *SessionBusyError) Error() string {
	return "a query is already in flight for this session"
}

type SessionNotFoundError struct {
	SessionId string
}

func (e *SessionNotFoundError) Error() string {
	return "session not found or expired"
}

type UnknownStoreError struct {
	Key string
}

func (e *UnknownStoreError) Error() string {
	return fmt.Sprintf("unknown store key %q", e.Key)
}

type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q", e.Model)
}

// StoreResolutionError wraps an upstream failure while resolving a store.
// Resolution failures are never cached; the next request retries.
type StoreResolutionError struct {
	DisplayName string
	Err         error
}

func (e *StoreResolutionError) Error() string {
	return fmt.Sprintf("resolve store %q: %v", e.DisplayName, e.Err)
}

func (e *StoreResolutionError) Unwrap() error {
	return e.Err
}
