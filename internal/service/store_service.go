// FILE: internal/service/store_service.go
package service

import (
	"context"
	"fmt"
	"sync"

	"presto-copilot-be/internal/config"
	"presto-copilot-be/internal/constant"
	"presto-copilot-be/internal/dto"
	"presto-copilot-be/internal/pkg/logger"
	"presto-copilot-be/pkg/genai"

	"github.com/patrickmn/go-cache"
)

// StoreAPI is the slice of the generative language client the store
// service depends on.
type StoreAPI interface {
	ListFileSearchStores(ctx context.Context) ([]*genai.FileSearchStore, error)
	CreateFileSearchStore(ctx context.Context, displayName string) (*genai.FileSearchStore, error)
	ListDocuments(ctx context.Context, storeName string) ([]*genai.Document, error)
}

type IStoreService interface {
	// Catalog returns the configured stores in catalog order.
	Catalog() []*dto.StoreCatalogEntry
	// Models returns the configured model list and the default model.
	Models() *dto.ModelCatalogResponse
	// ValidateSelection checks a store key and model against the catalog.
	ValidateSelection(storeKey, model string) error
	// Resolve maps a catalog key to the store resource name, creating the
	// remote store on first use. Successful resolutions are remembered for
	// the process lifetime.
	Resolve(ctx context.Context, storeKey string) (string, error)
	// Documents lists the files ingested into a store.
	Documents(ctx context.Context, storeKey string) ([]*dto.DocumentResponse, error)
}

type storeService struct {
	api       StoreAPI
	cfg       *config.ChatConfig
	logger    logger.ILogger
	stores    *cache.Cache // displayName -> resource name
	documents *cache.Cache // displayName -> []*dto.DocumentResponse
	mu        sync.Mutex   // serializes remote resolution
}

func NewStoreService(api StoreAPI, cfg *config.ChatConfig, logger logger.ILogger) IStoreService {
	return &storeService{
		api:       api,
		cfg:       cfg,
		logger:    logger,
		stores:    cache.New(cache.NoExpiration, 0),
		documents: cache.New(cfg.DocumentCacheTTL, 2*cfg.DocumentCacheTTL),
	}
}

func (s *storeService) Catalog() []*dto.StoreCatalogEntry {
	entries := make([]*dto.StoreCatalogEntry, 0, len(s.cfg.StoreCatalogOrder))
	for _, key := range s.cfg.StoreCatalogOrder {
		entries = append(entries, &dto.StoreCatalogEntry{
			Key:         key,
			DisplayName: s.cfg.StoreCatalog[key],
		})
	}
	return entries
}

func (s *storeService) Models() *dto.ModelCatalogResponse {
	models := make([]string, len(s.cfg.Models))
	copy(models, s.cfg.Models)
	return &dto.ModelCatalogResponse{
		Models:  models,
		Default: s.cfg.DefaultModel(),
	}
}

func (s *storeService) ValidateSelection(storeKey, model string) error {
	if _, ok := s.cfg.StoreCatalog[storeKey]; !ok {
		return &dto.UnknownStoreError{Key: storeKey}
	}
	for _, m := range s.cfg.Models {
		if m == model {
			return nil
		}
	}
	return &dto.UnknownModelError{Model: model}
}

func (s *storeService) Resolve(ctx context.Context, storeKey string) (string, error) {
	displayName, ok := s.cfg.StoreCatalog[storeKey]
	if !ok {
		return "", &dto.UnknownStoreError{Key: storeKey}
	}

	if cached, found := s.stores.Get(displayName); found {
		return cached.(string), nil
	}

	// One resolver at a time, otherwise two sessions selecting a fresh
	// store could both miss the listing and create duplicates.
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, found := s.stores.Get(displayName); found {
		return cached.(string), nil
	}

	name, err := s.lookupOrCreate(ctx, displayName)
	if err != nil {
		// Not cached: the next request retries the remote call.
		return "", &dto.StoreResolutionError{DisplayName: displayName, Err: err}
	}

	s.stores.Set(displayName, name, cache.NoExpiration)
	return name, nil
}

func (s *storeService) lookupOrCreate(ctx context.Context, displayName string) (string, error) {
	existing, err := s.api.ListFileSearchStores(ctx)
	if err != nil {
		return "", fmt.Errorf("list file search stores: %w", err)
	}

	for _, st := range existing {
		if st.DisplayName == displayName {
			s.logger.Info(constant.LogModuleStore, "Resolved existing file search store", map[string]interface{}{
				"display_name": displayName,
				"store_name":   st.Name,
			})
			return st.Name, nil
		}
	}

	created, err := s.api.CreateFileSearchStore(ctx, displayName)
	if err != nil {
		return "", fmt.Errorf("create file search store %q: %w", displayName, err)
	}

	s.logger.Info(constant.LogModuleStore, "Created file search store", map[string]interface{}{
		"display_name": displayName,
		"store_name":   created.Name,
	})
	return created.Name, nil
}

func (s *storeService) Documents(ctx context.Context, storeKey string) ([]*dto.DocumentResponse, error) {
	displayName, ok := s.cfg.StoreCatalog[storeKey]
	if !ok {
		return nil, &dto.UnknownStoreError{Key: storeKey}
	}

	if cached, found := s.documents.Get(displayName); found {
		return cached.([]*dto.DocumentResponse), nil
	}

	storeName, err := s.Resolve(ctx, storeKey)
	if err != nil {
		return nil, err
	}

	docs, err := s.api.ListDocuments(ctx, storeName)
	if err != nil {
		return nil, &dto.StoreResolutionError{DisplayName: displayName, Err: err}
	}

	responses := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, &dto.DocumentResponse{
			Name:        doc.Name,
			DisplayName: doc.DisplayName,
			MimeType:    doc.MimeType,
			SizeBytes:   doc.SizeBytes,
		})
	}

	s.documents.Set(displayName, responses, cache.DefaultExpiration)
	return responses, nil
}
