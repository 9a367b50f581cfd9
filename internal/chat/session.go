// Package chat runs one request/response exchange against the history file.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diogo/helper/internal/api"
	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/history"
	"github.com/diogo/helper/internal/input"
	"github.com/diogo/helper/internal/models"
)

// Stage is a step of a run. A run only moves forward; any error stops it at
// the stage reached so far.
type Stage int

const (
	StageStart Stage = iota
	StageConfigResolved
	StageHistoryLoaded
	StageConversationReady
	StageMessageAssembled
	StageReplyReceived
	StagePersisted
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageConfigResolved:
		return "config-resolved"
	case StageHistoryLoaded:
		return "history-loaded"
	case StageConversationReady:
		return "conversation-ready"
	case StageMessageAssembled:
		return "message-assembled"
	case StageReplyReceived:
		return "reply-received"
	case StagePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Result describes a completed run
type Result struct {
	ConversationID int64
	// Created is true when the run started a new conversation
	Created    bool
	Reply      models.Message
	Completion *models.Completion
	History    *history.History
}

// Session executes a single exchange with the settings it was built with
type Session struct {
	settings  config.Settings
	completer api.Completer
	store     *history.Store
	resolver  *input.Resolver
	logger    *zap.Logger
	onStage   func(Stage)
	stage     Stage
}

// Option configures a Session
type Option func(*Session)

// WithStore overrides the history store built from the settings
func WithStore(store *history.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithResolver overrides the text resolver
func WithResolver(resolver *input.Resolver) Option {
	return func(s *Session) {
		s.resolver = resolver
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStageHook registers fn to be called each time the session advances
func WithStageHook(fn func(Stage)) Option {
	return func(s *Session) {
		s.onStage = fn
	}
}

// NewSession creates a session. The settings must already be resolved.
func NewSession(settings config.Settings, completer api.Completer, opts ...Option) *Session {
	s := &Session{
		settings:  settings,
		completer: completer,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = history.NewStore(settings.HistoryPath, history.WithLogger(s.logger))
	}
	if s.resolver == nil {
		s.resolver = input.NewResolver()
	}
	return s
}

// Stage returns the last stage the session reached
func (s *Session) Stage() Stage {
	return s.stage
}

// Run performs the exchange. The history file is written only after a reply
// has been received; on any error it is left as it was.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	s.advance(StageConfigResolved)

	h, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	s.advance(StageHistoryLoaded, zap.Bool("exists", h != nil))

	h, conv, created, err := s.prepareConversation(h)
	if err != nil {
		return nil, err
	}
	s.advance(StageConversationReady,
		zap.Int64("conversation", conv.ID),
		zap.Bool("created", created))

	content, err := s.resolver.Assemble(s.settings.Fragments)
	if err != nil {
		return nil, err
	}
	conv.Append(models.NewUserMessage(content))
	s.advance(StageMessageAssembled, zap.Int("chars", len(content)))

	completion, err := s.completer.Complete(ctx, s.settings.Model, conv.Messages)
	if err != nil {
		return nil, err
	}
	conv.Append(completion.Message)
	s.advance(StageReplyReceived, zap.String("finish_reason", completion.FinishReason))

	if err := s.store.Save(h); err != nil {
		return nil, err
	}
	s.advance(StagePersisted, zap.Uint64("revision", h.Revision))

	return &Result{
		ConversationID: conv.ID,
		Created:        created,
		Reply:          completion.Message,
		Completion:     completion,
		History:        h,
	}, nil
}

// prepareConversation starts a new conversation when asked to or when there
// is no history yet, and otherwise selects the requested or current one. An
// explicit id never creates a conversation.
func (s *Session) prepareConversation(h *history.History) (*history.History, *history.Conversation, bool, error) {
	if h == nil && s.settings.ConversationID != nil {
		return nil, nil, false, apierrors.NewLookupError(*s.settings.ConversationID)
	}
	if h == nil || s.settings.New {
		if h == nil {
			h = history.New()
		}
		system, err := s.systemMessage()
		if err != nil {
			return nil, nil, false, err
		}
		return h, h.NewConversation(system), true, nil
	}

	id := h.CurrentConversationID
	if s.settings.ConversationID != nil {
		id = *s.settings.ConversationID
	}
	conv, err := h.Select(id)
	if err != nil {
		return nil, nil, false, err
	}
	return h, conv, false, nil
}

// systemMessage resolves the configured system prompt. An empty source or
// empty content yields no system message.
func (s *Session) systemMessage() (*models.Message, error) {
	if s.settings.SystemPrompt == "" {
		return nil, nil
	}
	content, err := s.resolver.Resolve(s.settings.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("system prompt: %w", err)
	}
	if content == "" {
		return nil, nil
	}
	msg := models.NewSystemMessage(content)
	return &msg, nil
}

func (s *Session) advance(stage Stage, fields ...zap.Field) {
	s.stage = stage
	s.logger.Debug("session "+stage.String(), fields...)
	if s.onStage != nil {
		s.onStage(stage)
	}
}
