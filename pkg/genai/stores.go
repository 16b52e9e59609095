package genai

import (
	"context"
	"net/http"
	"net/url"
)

// FileSearchStore is a hosted document store. Name is the server-assigned
// resource name (fileSearchStores/...); DisplayName is the human label the
// application selects stores by.
type FileSearchStore struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

type listFileSearchStoresResponse struct {
	FileSearchStores []*FileSearchStore `json:"fileSearchStores"`
	NextPageToken    string             `json:"nextPageToken"`
}

// ListFileSearchStores returns every store of the project, walking all pages.
func (c *Client) ListFileSearchStores(ctx context.Context) ([]*FileSearchStore, error) {
	stores := make([]*FileSearchStore, 0)
	pageToken := ""
	for {
		path := "/fileSearchStores"
		if pageToken != "" {
			path += "?pageToken=" + url.QueryEscape(pageToken)
		}

		var page listFileSearchStoresResponse
		if err := c.doRequest(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		stores = append(stores, page.FileSearchStores...)

		if page.NextPageToken == "" {
			return stores, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateFileSearchStore creates an empty store under the given display name.
func (c *Client) CreateFileSearchStore(ctx context.Context, displayName string) (*FileSearchStore, error) {
	payload := &FileSearchStore{DisplayName: displayName}
	var created FileSearchStore
	if err := c.doRequest(ctx, http.MethodPost, "/fileSearchStores", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Document is a file ingested into a store.
type Document struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	SizeBytes   string `json:"sizeBytes,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

type listDocumentsResponse struct {
	Documents     []*Document `json:"documents"`
	NextPageToken string      `json:"nextPageToken"`
}

// ListDocuments lists the documents of a store, walking all pages. storeName
// is the full resource name returned by the store endpoints.
func (c *Client) ListDocuments(ctx context.Context, storeName string) ([]*Document, error) {
	docs := make([]*Document, 0)
	pageToken := ""
	for {
		path := "/" + storeName + "/documents"
		if pageToken != "" {
			path += "?pageToken=" + url.QueryEscape(pageToken)
		}

		var page listDocumentsResponse
		if err := c.doRequest(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		docs = append(docs, page.Documents...)

		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}
