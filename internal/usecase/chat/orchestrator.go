package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/metrics"
	"github.com/futig/rag-playground/internal/pkg/logger"
	pkgRetry "github.com/futig/rag-playground/internal/pkg/retry"
	"github.com/futig/rag-playground/internal/usecase/quality"
	pkghttp "github.com/futig/rag-playground/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const unknownModel = "unknown"

type Options struct {
	Defaults entity.RAGConfig

	// SupersedeInFlight makes a new send cancel the running one instead of being rejected.
	SupersedeInFlight bool

	HistoryClearRetry bool
	Retry             pkgRetry.RetryConfig
}

// Orchestrator owns the conversation state of one session: messages, the latest
// retrieval batch and the RAG parameters. Network calls never run under mu.
type Orchestrator struct {
	mu       sync.Mutex
	messages []entity.Message
	results  []entity.SearchResult
	config   entity.RAGConfig

	coordinator *Coordinator
	backend     RAGConnector
	prompts     PromptRenderer
	evaluator   QualityEvaluator
	sessions    SessionStore
	metrics     MetricsRecorder
	opts        Options
	logger      *zap.Logger

	now func() time.Time
}

func NewOrchestrator(
	backend RAGConnector,
	prompts PromptRenderer,
	evaluator QualityEvaluator,
	sessions SessionStore,
	metricsRecorder MetricsRecorder,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		config:      opts.Defaults,
		coordinator: NewCoordinator(),
		backend:     backend,
		prompts:     prompts,
		evaluator:   evaluator,
		sessions:    sessions,
		metrics:     metricsRecorder,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// SendMessage appends the user message, runs retrieval (chat mode) and generation,
// and appends the assistant answer. Backend failures become an error-flagged
// assistant message and are not returned; only rejection and cancellation are.
func (o *Orchestrator) SendMessage(ctx context.Context, content string, mode entity.Mode) (*entity.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, entity.ErrEmptyMessage
	}
	if err := mode.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q", err, mode)
	}

	ctx = logger.WithAction(ctx, "send_message")
	ctx = logger.AddFields(ctx, zap.String("mode", string(mode)))

	o.mu.Lock()
	if o.coordinator.Active() && !o.opts.SupersedeInFlight {
		o.mu.Unlock()
		o.metrics.ObserveRequest(string(mode), metrics.OutcomeRejected, 0)
		return nil, entity.ErrRequestInFlight
	}

	tok := o.coordinator.Begin(ctx)
	history := make([]entity.Message, 0, len(o.messages))
	for _, m := range o.messages {
		if !m.Error {
			history = append(history, m)
		}
	}
	o.messages = append(o.messages, entity.Message{
		Role:      entity.RoleUser,
		Content:   content,
		Timestamp: o.now(),
	})
	cfg := o.config
	o.mu.Unlock()

	started := o.now()
	sessionID := o.sessions.ID()

	var (
		answer   *entity.Answer
		results  []entity.SearchResult
		callErr  error
		template string
	)
	switch mode {
	case entity.ModeChat:
		results, callErr = o.retrieve(tok, sessionID, content, cfg)
		if callErr == nil {
			answer, template, callErr = o.chat(tok, sessionID, content, results, history, cfg)
		}
	case entity.ModeAsk:
		answer, callErr = o.ask(tok, sessionID, content, cfg)
	}
	elapsed := o.now().Sub(started)

	o.mu.Lock()
	defer o.mu.Unlock()

	if callErr != nil && tok.Context().Err() != nil {
		superseded := o.coordinator.Superseded(tok)
		o.coordinator.Finish(tok)
		o.metrics.ObserveRequest(string(mode), metrics.OutcomeCanceled, elapsed)
		ctxzap.Info(ctx, "request canceled", zap.Bool("superseded", superseded))
		if superseded {
			return nil, entity.ErrRequestSuperseded
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrRequestCanceled, context.Canceled)
	}

	if !o.coordinator.Finish(tok) {
		// A newer send or Cancel took over while the call completed; drop the result.
		o.metrics.ObserveRequest(string(mode), metrics.OutcomeCanceled, elapsed)
		if o.coordinator.Superseded(tok) {
			return nil, entity.ErrRequestSuperseded
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrRequestCanceled, context.Canceled)
	}

	if callErr != nil {
		ctxzap.Error(ctx, "rag request failed", zap.Error(callErr))
		o.metrics.ObserveRequest(string(mode), metrics.OutcomeError, elapsed)

		msg := entity.Message{
			Role:      entity.RoleAssistant,
			Content:   failureReason(callErr),
			Timestamp: o.now(),
			Error:     true,
		}
		o.messages = append(o.messages, msg)
		return &msg, nil
	}

	if answer.SessionID != "" && answer.SessionID != sessionID {
		if err := o.sessions.Set(answer.SessionID); err != nil {
			ctxzap.Warn(ctx, "failed to persist backend session id", zap.Error(err))
		}
		sessionID = answer.SessionID
	}

	meta := &entity.MessageMetadata{
		Model:          answer.Model,
		Tokens:         answer.Tokens,
		ProcessingTime: elapsed,
		PromptTemplate: template,
		SessionID:      sessionID,
	}
	if mode == entity.ModeChat {
		count := len(results)
		meta.SearchResultCount = &count
	}

	msg := entity.Message{
		Role:      entity.RoleAssistant,
		Content:   answer.Content,
		Timestamp: o.now(),
		Metadata:  meta,
	}
	o.messages = append(o.messages, msg)
	o.metrics.ObserveRequest(string(mode), metrics.OutcomeSuccess, elapsed)

	ctxzap.Info(ctx, "answer received",
		zap.String("model", meta.Model),
		zap.Int("tokens", meta.Tokens),
		zap.Duration("elapsed", elapsed),
	)

	return &msg, nil
}

// retrieve fetches passages for query and publishes them as the current results
// if tok still owns the conversation.
func (o *Orchestrator) retrieve(tok *Token, sessionID, query string, cfg entity.RAGConfig) ([]entity.SearchResult, error) {
	threshold := cfg.Threshold
	results, err := o.backend.Search(tok.Context(), sessionID, &entity.SearchRequest{
		Query:     query,
		TopK:      cfg.TopK,
		Threshold: &threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	report := o.evaluator.Evaluate(results)
	o.metrics.ObserveSearch(len(results), string(report.QualityRating))

	o.mu.Lock()
	if o.coordinator.IsCurrent(tok) {
		o.results = results
	}
	o.mu.Unlock()

	ctxzap.Debug(tok.Context(), "search results received",
		zap.Int("count", len(results)),
		zap.Float64("average_score", report.AverageScore),
	)

	return results, nil
}

func (o *Orchestrator) chat(
	tok *Token,
	sessionID, query string,
	results []entity.SearchResult,
	history []entity.Message,
	cfg entity.RAGConfig,
) (*entity.Answer, string, error) {
	prompt := o.prompts.RenderPrompt(entity.PromptContext{
		UserQuery:           query,
		SearchResults:       results,
		ConversationHistory: history,
	})
	template := o.prompts.ActiveTemplateID()

	resp, err := o.backend.Chat(tok.Context(), &entity.ChatRequest{
		Query:         query,
		Prompt:        prompt,
		SearchResults: results,
		Config:        cfg,
		SessionID:     sessionID,
	})
	if err != nil {
		return nil, template, fmt.Errorf("chat: %w", err)
	}

	return toAnswer(resp), template, nil
}

// ask goes straight to the backend with the raw query; templates only shape chat mode.
func (o *Orchestrator) ask(tok *Token, sessionID, query string, cfg entity.RAGConfig) (*entity.Answer, error) {
	resp, err := o.backend.Ask(tok.Context(), &entity.AskRequest{
		Query:     query,
		Config:    &cfg,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	return toAnswer(resp), nil
}

func toAnswer(resp *entity.ChatResponse) *entity.Answer {
	model := resp.Model
	if model == "" {
		model = unknownModel
	}
	return &entity.Answer{
		Content:   resp.Content,
		SessionID: resp.SessionID,
		Model:     model,
		Tokens:    resp.Tokens,
	}
}

// failureReason renders err as the text of an error-flagged assistant message.
func failureReason(err error) string {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}

	switch {
	case errors.Is(err, pkghttp.ErrEmptyResponse):
		return "The server returned an empty response."
	case errors.Is(err, pkghttp.ErrMalformedResponse):
		return "The server returned a response that could not be read."
	}

	return err.Error()
}

// Cancel aborts the in-flight request. It reports whether there was one.
func (o *Orchestrator) Cancel() bool {
	return o.coordinator.Cancel()
}

func (o *Orchestrator) Loading() bool {
	return o.coordinator.Active()
}

func (o *Orchestrator) SessionID() string {
	return o.sessions.ID()
}

func (o *Orchestrator) Messages() []entity.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]entity.Message, len(o.messages))
	copy(out, o.messages)
	return out
}

func (o *Orchestrator) SearchResults() []entity.SearchResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]entity.SearchResult, len(o.results))
	copy(out, o.results)
	return out
}

func (o *Orchestrator) Config() entity.RAGConfig {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.config
}

// UpdateConfig applies the valid fields of patch. Invalid fields are reported
// in the returned error and leave their current values untouched.
func (o *Orchestrator) UpdateConfig(patch entity.RAGConfigPatch) (entity.RAGConfig, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	merged, err := o.config.Merge(patch)
	o.config = merged
	return merged, err
}

func (o *Orchestrator) EvaluateSearchQuality() quality.Report {
	return o.evaluator.Evaluate(o.SearchResults())
}

// OptimizeParameters adjusts topK and threshold from feedback on the current results.
func (o *Orchestrator) OptimizeParameters(feedback quality.Feedback) (entity.RAGConfigPatch, entity.RAGConfig, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	patch := o.evaluator.Optimize(o.results, feedback, o.config)
	if patch.IsEmpty() {
		return patch, o.config, nil
	}

	merged, err := o.config.Merge(patch)
	if err != nil {
		return patch, o.config, fmt.Errorf("apply optimized parameters: %w", err)
	}
	o.config = merged
	return patch, merged, nil
}

// ClearMessages drops the local conversation and asks the backend to forget it.
// The server-side clear is best-effort: failures are logged and counted only.
func (o *Orchestrator) ClearMessages(ctx context.Context) {
	ctx = logger.WithAction(ctx, "clear_messages")

	o.mu.Lock()
	o.coordinator.Cancel()
	o.messages = nil
	o.results = nil
	o.mu.Unlock()

	sessionID := o.sessions.ID()
	if sessionID == "" {
		return
	}
	ctx = logger.WithSession(ctx, sessionID)

	clearCtx := ctx
	if o.opts.Retry.Timeout > 0 {
		var cancel context.CancelFunc
		clearCtx, cancel = context.WithTimeout(ctx, o.opts.Retry.Timeout)
		defer cancel()
	}

	clearHistory := func() error {
		return o.backend.ClearHistory(clearCtx, sessionID)
	}

	var err error
	if o.opts.HistoryClearRetry {
		err = retry.Do(clearHistory, o.opts.Retry.ToRetryOptions(clearCtx)...)
	} else {
		err = clearHistory()
	}
	if err != nil {
		o.metrics.HistoryClearFailed()
		ctxzap.Warn(ctx, "failed to clear server history", zap.Error(err))
		return
	}

	ctxzap.Info(ctx, "server history cleared")
}

// LoadHistory replaces the local conversation with the backend's transcript.
func (o *Orchestrator) LoadHistory(ctx context.Context) ([]entity.Message, error) {
	ctx = logger.WithAction(ctx, "load_history")

	raw, err := o.backend.FetchHistory(ctx, o.sessions.ID())
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	messages := ParseHistory(raw, o.now())
	o.ReplaceMessages(messages)

	ctxzap.Info(ctx, "history loaded", zap.Int("messages", len(messages)))

	return o.Messages(), nil
}

// ReplaceMessages swaps in a conversation, e.g. an activated thread.
// Any in-flight request is canceled so its answer cannot land in the new conversation.
func (o *Orchestrator) ReplaceMessages(messages []entity.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.coordinator.Cancel()
	o.messages = make([]entity.Message, len(messages))
	copy(o.messages, messages)
	o.results = nil
}

// ResetSession cancels any request, clears local state and rotates the session id.
func (o *Orchestrator) ResetSession(ctx context.Context) (string, error) {
	o.mu.Lock()
	o.coordinator.Cancel()
	o.messages = nil
	o.results = nil
	o.mu.Unlock()

	id, err := o.sessions.Reset()
	if err != nil {
		return "", fmt.Errorf("reset session: %w", err)
	}

	ctxzap.Info(ctx, "session rotated", zap.String("session_id", id))
	return id, nil
}
