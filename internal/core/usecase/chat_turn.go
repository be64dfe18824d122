package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// ChatTurnUseCase drives one conversational turn: the context-switch
// detector runs first on every turn; a positive detection short-circuits
// with the trigger's canned confirmation, otherwise the turn resolves scope,
// retrieves grounding and asks the completion service.
type ChatTurnUseCase struct {
	sessions    ports.SessionStore
	embedder    ports.Embedder
	detector    *ContextSwitchDetector
	scope       *ScopeResolver
	retriever   *RetrieveUseCase
	completion  ports.CompletionService
	logger      *slog.Logger
	instruments ports.PipelineInstruments

	// searchGlobalDefault seeds the global-merge flag of newly started
	// sessions; existing sessions keep whatever flag they carry.
	searchGlobalDefault bool
}

func NewChatTurnUseCase(
	sessions ports.SessionStore,
	embedder ports.Embedder,
	detector *ContextSwitchDetector,
	scope *ScopeResolver,
	retriever *RetrieveUseCase,
	completion ports.CompletionService,
	logger *slog.Logger,
	searchGlobalDefault bool,
) *ChatTurnUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatTurnUseCase{
		sessions:            sessions,
		embedder:            embedder,
		detector:            detector,
		scope:               scope,
		retriever:           retriever,
		completion:          completion,
		logger:              logger,
		instruments:         noopInstruments{},
		searchGlobalDefault: searchGlobalDefault,
	}
}

// WithInstruments attaches the metric registry; detected category switches
// are counted through it.
func (uc *ChatTurnUseCase) WithInstruments(in ports.PipelineInstruments) *ChatTurnUseCase {
	if in != nil {
		uc.instruments = in
	}
	return uc
}

// StartSession creates a session with the configured scoping defaults: the
// miscellaneous category active and the global-merge flag taken from
// configuration, never from the caller.
func (uc *ChatTurnUseCase) StartSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session := &domain.Session{
		ID:             sessionID,
		ActiveCategory: domain.CategoryMiscellaneous,
		SearchGlobal:   uc.searchGlobalDefault,
		Documents:      make(map[domain.Category][]domain.Document),
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (uc *ChatTurnUseCase) Respond(ctx context.Context, sessionID, utterance string) (*ports.TurnResult, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	// The utterance is embedded once per turn and shared between detection
	// and retrieval.
	vector, err := uc.embedder.EmbedQuery(ctx, utterance)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed utterance", err)
	}

	if trigger := uc.detector.Detect(vector, session.ActiveCategory); trigger != nil {
		return uc.switchTo(ctx, session, trigger)
	}

	searchable, err := uc.scope.Resolve(ctx, session)
	if err != nil {
		return nil, err
	}

	fragments, err := uc.retriever.RetrieveVector(ctx, vector, searchable, 0)
	if err != nil {
		return nil, err
	}

	prompt := utterance
	if block := BuildGroundingBlock(fragments); block != "" {
		prompt = block + "\n\n" + utterance
	}

	reply, err := uc.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	uc.appendTurn(ctx, sessionID, utterance, reply)
	return &ports.TurnResult{
		Reply:    reply,
		Category: session.ActiveCategory,
		Sources:  fragments,
	}, nil
}

// SwitchCategory changes the active category explicitly. Visibility changes
// atomically with the switch; an unknown name rejects the whole request.
func (uc *ChatTurnUseCase) SwitchCategory(ctx context.Context, sessionID, category string) (*domain.Session, error) {
	parsed, err := domain.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.SetActiveCategory(ctx, sessionID, parsed); err != nil {
		return nil, fmt.Errorf("set active category: %w", err)
	}
	return uc.sessions.Get(ctx, sessionID)
}

func (uc *ChatTurnUseCase) switchTo(ctx context.Context, session *domain.Session, trigger *domain.PreparedTrigger) (*ports.TurnResult, error) {
	if err := uc.sessions.SetActiveCategory(ctx, session.ID, trigger.Category); err != nil {
		return nil, fmt.Errorf("switch category: %w", err)
	}
	uc.logger.Info("context_switched", "session_id", session.ID, "from", session.ActiveCategory, "to", trigger.Category)
	uc.instruments.IncContextSwitch(string(trigger.Category))

	uc.appendStatus(ctx, session.ID, trigger.Confirmation)
	return &ports.TurnResult{
		Reply:    trigger.Confirmation,
		Switched: true,
		Category: trigger.Category,
	}, nil
}

func (uc *ChatTurnUseCase) appendTurn(ctx context.Context, sessionID, utterance, reply string) {
	now := time.Now().UTC()
	for _, msg := range []domain.Message{
		{Sender: domain.SenderUser, Text: utterance, Timestamp: now},
		{Sender: domain.SenderAssistant, Text: reply, Timestamp: now},
	} {
		if err := uc.sessions.AppendMessage(ctx, sessionID, msg); err != nil {
			uc.logger.Warn("append_turn_message_failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

func (uc *ChatTurnUseCase) appendStatus(ctx context.Context, sessionID, text string) {
	msg := domain.Message{Sender: domain.SenderSystem, Text: text, Timestamp: time.Now().UTC()}
	if err := uc.sessions.AppendMessage(ctx, sessionID, msg); err != nil {
		uc.logger.Warn("append_status_message_failed", "session_id", sessionID, "error", err)
	}
}
