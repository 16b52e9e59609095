// FILE: internal/service/chatbot_service.go
package service

import (
	"context"
	"sort"
	"time"

	"presto-copilot-be/internal/config"
	"presto-copilot-be/internal/constant"
	"presto-copilot-be/internal/dto"
	"presto-copilot-be/internal/pkg/logger"
	"presto-copilot-be/internal/repository/memory"
	"presto-copilot-be/pkg/events"
	"presto-copilot-be/pkg/rag/executor"
	"presto-copilot-be/pkg/rag/prompt"
	"presto-copilot-be/pkg/rag/throttle"
	"presto-copilot-be/pkg/store"

	"github.com/google/uuid"
)

// QueryAsker runs one grounded query against a store and reports the
// terminal outcome. Satisfied by executor.QueryExecutor.
type QueryAsker interface {
	Ask(ctx context.Context, storeName, model, systemInstruction string, turns []store.Turn) executor.Result
}

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	GetChatHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	ConfigureSession(ctx context.Context, sessionId string, request *dto.ConfigureSessionRequest) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// chatbotService coordinates sessions, throttling and query execution
type chatbotService struct {
	cfg          *config.ChatConfig
	storeService IStoreService
	sessionRepo  *memory.SessionRepository
	queryAsker   QueryAsker
	guard        *throttle.Guard
	publisher    IPublisherService
	logger       logger.ILogger
	instruction  string
}

func NewChatbotService(
	cfg *config.ChatConfig,
	storeService IStoreService,
	sessionRepo *memory.SessionRepository,
	queryAsker QueryAsker,
	guard *throttle.Guard,
	publisher IPublisherService,
	logger logger.ILogger,
) IChatbotService {
	instruction := prompt.NewGroundedBuilder(cfg.AnswerLanguage).Build()

	return &chatbotService{
		cfg:          cfg,
		storeService: storeService,
		sessionRepo:  sessionRepo,
		queryAsker:   queryAsker,
		guard:        guard,
		publisher:    publisher,
		logger:       logger,
		instruction:  instruction,
	}
}

// CreateSession creates a new chat session over the selected store and model.
// Omitted fields fall back to the catalog defaults.
func (cs *chatbotService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	storeKey := request.StoreKey
	if storeKey == "" {
		storeKey = cs.cfg.DefaultStoreKey()
	}
	model := request.Model
	if model == "" {
		model = cs.cfg.DefaultModel()
	}

	if err := cs.storeService.ValidateSelection(storeKey, model); err != nil {
		return nil, err
	}

	// Resolve eagerly so a broken store surfaces at creation, not on the
	// first question.
	storeName, err := cs.storeService.Resolve(ctx, storeKey)
	if err != nil {
		return nil, err
	}

	sess := store.NewSession(uuid.NewString(), store.Selection{
		StoreKey:  storeKey,
		StoreName: storeName,
		Model:     model,
	})
	cs.sessionRepo.Save(sess)

	cs.logger.Info(constant.LogModuleChat, "Chat session created", map[string]interface{}{
		"session_id": sess.ID,
		"store_key":  storeKey,
		"model":      model,
	})

	return cs.sessionResponse(sess), nil
}

// GetAllSessions lists the live sessions, newest first.
func (cs *chatbotService) GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	sessions := cs.sessionRepo.All()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	response := make([]*dto.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		response = append(response, cs.sessionResponse(sess))
	}

	return response, nil
}

// GetChatHistory returns the retained conversation as question/answer pairs.
func (cs *chatbotService) GetChatHistory(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error) {
	sess, found := cs.sessionRepo.Get(sessionId)
	if !found {
		return nil, &dto.SessionNotFoundError{SessionId: sessionId}
	}

	pairs := sess.History.Pairs()
	pairResponses := make([]dto.HistoryPairResponse, 0, len(pairs))
	for i, pair := range pairs {
		pairResponses = append(pairResponses, dto.HistoryPairResponse{
			Index:     i,
			Title:     pairTitle(pair.User.Text),
			Collapsed: i < len(pairs)-1,
			User:      chatTurnResponse(pair.User),
			Assistant: chatTurnResponse(pair.Assistant),
		})
	}

	return &dto.GetChatHistoryResponse{
		SessionId: sess.ID,
		Pairs:     pairResponses,
	}, nil
}

// SendChat runs one grounded query for the session and appends the exchange
// to its history. Failures still produce an assistant turn so the
// conversation stays pair-aligned.
func (cs *chatbotService) SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	sess, found := cs.sessionRepo.Get(sessionId)
	if !found {
		return nil, &dto.SessionNotFoundError{SessionId: sessionId}
	}

	if !sess.BeginQuery() {
		return nil, &dto.SessionBusyError{SessionId: sessionId}
	}
	defer sess.EndQuery()

	if !cs.guard.CheckAndRecord(sess) {
		return nil, &dto.ThrottledError{RetryAfter: cs.guard.Interval()}
	}

	sel := sess.Selection()

	userTurn := store.Turn{Role: store.RoleUser, Text: request.Chat, CreatedAt: time.Now()}
	sess.History.Append(userTurn)

	result := cs.queryAsker.Ask(ctx, sel.StoreName, sel.Model, cs.instruction, sess.History.Snapshot())

	replyText := result.Text
	if result.Outcome.Failed() {
		replyText = constant.FallbackAnswer
	}

	replyTurn := store.Turn{Role: store.RoleAssistant, Text: replyText, CreatedAt: time.Now()}
	sess.History.Append(replyTurn)
	sess.History.Truncate(cs.cfg.MaxTurns)

	cs.sessionRepo.Save(sess)

	cs.publishQueryCompleted(ctx, sess.ID, sel, result)

	if result.Outcome.Failed() {
		cs.logger.Warn(constant.LogModuleChat, "Query failed after retries", map[string]interface{}{
			"session_id": sess.ID,
			"outcome":    string(result.Outcome),
			"attempts":   result.Attempts,
			"error":      errorDetail(result.Err),
		})
	} else {
		cs.logger.Info(constant.LogModuleChat, "Query completed", map[string]interface{}{
			"session_id": sess.ID,
			"outcome":    string(result.Outcome),
			"attempts":   result.Attempts,
		})
	}

	outcome, failureReason := outcomeLabels(result.Outcome)

	return &dto.SendChatResponse{
		SessionId:     sess.ID,
		Outcome:       outcome,
		FailureReason: failureReason,
		Attempts:      result.Attempts,
		Sent:          turnResponseRef(userTurn),
		Reply:         turnResponseRef(replyTurn),
	}, nil
}

// ConfigureSession switches the store or model of a live session. History is
// kept so the conversation continues against the new selection.
func (cs *chatbotService) ConfigureSession(ctx context.Context, sessionId string, request *dto.ConfigureSessionRequest) (*dto.SessionResponse, error) {
	sess, found := cs.sessionRepo.Get(sessionId)
	if !found {
		return nil, &dto.SessionNotFoundError{SessionId: sessionId}
	}

	sel := sess.Selection()
	storeKey := sel.StoreKey
	if request.StoreKey != "" {
		storeKey = request.StoreKey
	}
	model := sel.Model
	if request.Model != "" {
		model = request.Model
	}

	if err := cs.storeService.ValidateSelection(storeKey, model); err != nil {
		return nil, err
	}

	storeName := sel.StoreName
	if storeKey != sel.StoreKey {
		resolved, err := cs.storeService.Resolve(ctx, storeKey)
		if err != nil {
			return nil, err
		}
		storeName = resolved
	}

	sess.Reconfigure(store.Selection{
		StoreKey:  storeKey,
		StoreName: storeName,
		Model:     model,
	})
	cs.sessionRepo.Save(sess)

	cs.logger.Info(constant.LogModuleChat, "Chat session reconfigured", map[string]interface{}{
		"session_id": sess.ID,
		"store_key":  storeKey,
		"model":      model,
	})

	return cs.sessionResponse(sess), nil
}

// DeleteSession removes a chat session
func (cs *chatbotService) DeleteSession(ctx context.Context, sessionId string) error {
	if _, found := cs.sessionRepo.Get(sessionId); !found {
		return &dto.SessionNotFoundError{SessionId: sessionId}
	}

	cs.sessionRepo.Delete(sessionId)

	cs.logger.Info(constant.LogModuleChat, "Chat session deleted", map[string]interface{}{
		"session_id": sessionId,
	})

	return nil
}

func (cs *chatbotService) publishQueryCompleted(ctx context.Context, sessionId string, sel store.Selection, result executor.Result) {
	event := events.NewQueryCompletedEvent(sessionId, sel.StoreKey, sel.Model, string(result.Outcome), result.Attempts)

	// Usage accounting is auxiliary, a publish failure never fails the chat.
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Warn(constant.LogModuleChat, "Failed to publish query event", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

func (cs *chatbotService) sessionResponse(sess *store.Session) *dto.SessionResponse {
	sel := sess.Selection()
	return &dto.SessionResponse{
		Id:        sess.ID,
		StoreKey:  sel.StoreKey,
		StoreName: sel.StoreName,
		Model:     sel.Model,
		Turns:     sess.History.Len(),
		CreatedAt: sess.CreatedAt,
	}
}

// pairTitle derives the collapsible heading for a finished exchange from the
// first 30 characters of the question.
func pairTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= 30 {
		return question
	}
	return string(runes[:30]) + "..."
}

func chatTurnResponse(turn store.Turn) dto.ChatTurnResponse {
	return dto.ChatTurnResponse{
		Role:      turn.Role,
		Chat:      turn.Text,
		CreatedAt: turn.CreatedAt,
	}
}

func turnResponseRef(turn store.Turn) *dto.ChatTurnResponse {
	resp := chatTurnResponse(turn)
	return &resp
}

func outcomeLabels(outcome executor.Outcome) (string, string) {
	switch outcome {
	case executor.OutcomeAnswered:
		return dto.ChatOutcomeAnswered, ""
	case executor.OutcomeEmpty:
		return dto.ChatOutcomeEmpty, ""
	case executor.OutcomeOverloaded:
		return dto.ChatOutcomeFailed, dto.FailureReasonOverloaded
	default:
		return dto.ChatOutcomeFailed, dto.FailureReasonAPIError
	}
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
