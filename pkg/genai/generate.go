package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Wire roles used by the generateContent endpoint.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

// FileSearch grounds generation in the documents of the named stores.
type FileSearch struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type Tool struct {
	FileSearch *FileSearch `json:"fileSearch,omitempty"`
}

type GenerateContentRequest struct {
	Contents          []*Content `json:"contents"`
	SystemInstruction *Content   `json:"systemInstruction,omitempty"`
	Tools             []*Tool    `json:"tools,omitempty"`
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates []*Candidate `json:"candidates"`
}

// Text returns the concatenated text parts of the first candidate. A response
// without candidate content yields the empty string; that is a valid answer
// shape, not an error.
func (r *GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// GenerateContent runs one generation call against the given model. The
// request carries the full conversation; the API holds no session state.
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	var res GenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", model)
	if err := c.doRequest(ctx, http.MethodPost, path, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
