package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/rag-playground/internal/api"
	chatapi "github.com/futig/rag-playground/internal/api/chat"
	documentapi "github.com/futig/rag-playground/internal/api/document"
	promptapi "github.com/futig/rag-playground/internal/api/prompt"
	searchapi "github.com/futig/rag-playground/internal/api/search"
	threadapi "github.com/futig/rag-playground/internal/api/thread"
	"github.com/futig/rag-playground/internal/cli"
	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	documentconn "github.com/futig/rag-playground/internal/integration/document"
	"github.com/futig/rag-playground/internal/integration/rag"
	threadconn "github.com/futig/rag-playground/internal/integration/thread"
	"github.com/futig/rag-playground/internal/metrics"
	pkglogger "github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/futig/rag-playground/internal/usecase/chat"
	"github.com/futig/rag-playground/internal/usecase/document"
	"github.com/futig/rag-playground/internal/usecase/prompt"
	"github.com/futig/rag-playground/internal/usecase/quality"
	"github.com/futig/rag-playground/internal/usecase/search"
	"github.com/futig/rag-playground/internal/usecase/session"
	"github.com/futig/rag-playground/internal/usecase/thread"
	"go.uber.org/zap"
)

type ragBackend interface {
	chat.RAGConnector
	search.SearchConnector
}

// core holds the use cases shared by the HTTP facade and the REPL.
type core struct {
	cfg      *config.Config
	recorder *metrics.Recorder
	sessions *session.Store
	prompts  *prompt.Engine
	chat     *chat.Orchestrator
	threads  *thread.Store
	docs     *document.Coordinator
	search   *search.Service
}

func buildCore(cfg *config.Config, logger *zap.Logger) (*core, error) {
	sessions := session.NewStore(cfg.SessionCfg.FilePath, logger)
	sessionID, err := sessions.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	logger.Info("Session ready", zap.String("session_id", sessionID))

	// Initialize external service connectors (with mock support)
	var (
		backend         ragBackend
		threadConnector thread.ThreadConnector
		docConnector    document.DocumentConnector
	)

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for the RAG backend")
		ragMock, err := rag.NewMockConnector(logger)
		if err != nil {
			return nil, fmt.Errorf("init mock retrieval backend: %w", err)
		}
		backend = ragMock
		threadConnector = threadconn.NewMockConnector(logger)
		docConnector = documentconn.NewMockConnector(ragMock, logger)
	} else {
		logger.Info("Using real connectors for the RAG backend", zap.String("url", cfg.BackendCfg.Url))
		backend = rag.NewConnector(cfg.BackendCfg, logger)
		threadConnector = threadconn.NewConnector(cfg.BackendCfg, logger)
		docConnector = documentconn.NewConnector(cfg.BackendCfg, logger)
	}

	recorder := metrics.NewRecorder()
	uploadValidator := validator.NewValidator(cfg.UploadCfg)
	prompts := prompt.NewEngine(cfg.PromptCfg.DefaultTemplate)

	orchestrator := chat.NewOrchestrator(
		backend,
		prompts,
		quality.NewEvaluator(),
		sessions,
		recorder,
		chat.Options{
			Defaults:          cfg.RAGCfg.ToEntity(),
			SupersedeInFlight: cfg.ChatCfg.SupersedeInFlight,
			HistoryClearRetry: cfg.ChatCfg.HistoryClearRetry,
			Retry:             cfg.BackendCfg.Retry,
		},
		logger,
	)
	logger.Info("Use cases initialized")

	return &core{
		cfg:      cfg,
		recorder: recorder,
		sessions: sessions,
		prompts:  prompts,
		chat:     orchestrator,
		threads:  thread.NewStore(threadConnector, uploadValidator, recorder, cfg.CacheCfg, logger),
		docs:     document.NewCoordinator(docConnector, uploadValidator, recorder, cfg.CacheCfg, logger),
		search:   search.NewService(backend, uploadValidator, logger),
	}, nil
}

// Build assembles the local HTTP facade.
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogCfg, true)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.APICfg.Addr),
	)

	c, err := buildCore(cfg, logger)
	if err != nil {
		return nil, err
	}

	router := api.SetupRouter(cfg.APICfg, newHandlers(c), c.recorder.Registry(), logger)
	logger.Info("HTTP router configured")

	// The write timeout must outlive the slowest chat call.
	server := &http.Server{
		Addr:         cfg.APICfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APICfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully")

	return &App{
		server:          server,
		shutdownTimeout: cfg.APICfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

func newHandlers(c *core) api.Handlers {
	return api.Handlers{
		Chat:     chatapi.NewHandler(c.chat, entity.Mode(c.cfg.ChatCfg.DefaultMode)),
		Prompt:   promptapi.NewHandler(c.prompts),
		Thread:   threadapi.NewHandler(c.threads, c.sessions, c.chat),
		Document: documentapi.NewHandler(c.docs, c.sessions),
		Search:   searchapi.NewHandler(c.search, c.sessions),
	}
}

// BuildPlayground assembles the interactive REPL. Logs go to the file only.
func BuildPlayground() (*cli.Playground, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogCfg, false)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building playground", zap.String("environment", cfg.Environment))

	c, err := buildCore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	playground := cli.New(cli.Deps{
		Chat:      c.chat,
		Prompts:   c.prompts,
		Threads:   c.threads,
		Documents: c.docs,
		Search:    c.search,
		Sessions:  c.sessions,
		Mode:      entity.Mode(c.cfg.ChatCfg.DefaultMode),
	}, logger)

	return playground, logger, nil
}
