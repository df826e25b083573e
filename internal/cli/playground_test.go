package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/futig/rag-playground/internal/config"
	"github.com/futig/rag-playground/internal/entity"
	documentconn "github.com/futig/rag-playground/internal/integration/document"
	"github.com/futig/rag-playground/internal/integration/rag"
	threadconn "github.com/futig/rag-playground/internal/integration/thread"
	"github.com/futig/rag-playground/internal/metrics"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/futig/rag-playground/internal/usecase/chat"
	"github.com/futig/rag-playground/internal/usecase/document"
	"github.com/futig/rag-playground/internal/usecase/prompt"
	"github.com/futig/rag-playground/internal/usecase/quality"
	"github.com/futig/rag-playground/internal/usecase/search"
	"github.com/futig/rag-playground/internal/usecase/session"
	"github.com/futig/rag-playground/internal/usecase/thread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	p    *Playground
	out  *bytes.Buffer
	chat *chat.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	color.NoColor = true

	logger := zap.NewNop()

	sessions := session.NewStore(filepath.Join(t.TempDir(), "session"), logger)
	_, err := sessions.LoadOrCreate()
	require.NoError(t, err)

	backend, err := rag.NewMockConnector(logger)
	require.NoError(t, err)

	recorder := metrics.NewRecorder()
	v := validator.NewValidator(config.UploadConfig{MaxFileSize: 10 << 20})
	cacheCfg := config.CacheConfig{TTL: time.Minute, CleanupInterval: time.Minute}
	prompts := prompt.NewEngine(prompt.TemplateRAGEnhanced)

	orchestrator := chat.NewOrchestrator(backend, prompts, quality.NewEvaluator(), sessions, recorder, chat.Options{
		Defaults: entity.DefaultRAGConfig(),
	}, logger)

	p := New(Deps{
		Chat:      orchestrator,
		Prompts:   prompts,
		Threads:   thread.NewStore(threadconn.NewMockConnector(logger), v, recorder, cacheCfg, logger),
		Documents: document.NewCoordinator(documentconn.NewMockConnector(backend, logger), v, recorder, cacheCfg, logger),
		Search:    search.NewService(backend, v, logger),
		Sessions:  sessions,
		Mode:      entity.ModeAsk,
	}, logger)

	out := &bytes.Buffer{}
	p.SetOutput(out)

	return &fixture{p: p, out: out, chat: orchestrator}
}

func (f *fixture) exec(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	require.NoError(t, f.p.Execute(context.Background(), line))
	return f.out.String()
}

func TestExecute_SendInBothModes(t *testing.T) {
	f := newFixture(t)

	out := f.exec(t, "what is rag?")
	assert.Contains(t, out, "without retrieval")
	assert.Contains(t, out, "mock-llm")

	out = f.exec(t, "/mode chat")
	assert.Contains(t, out, "Mode: chat")

	out = f.exec(t, "explain topK")
	assert.Contains(t, out, "grounded on")
	assert.NotEmpty(t, f.chat.SearchResults())

	out = f.exec(t, "/results")
	assert.Contains(t, out, "1. ")

	require.Len(t, f.chat.Messages(), 4)
	out = f.exec(t, "/messages")
	assert.Contains(t, out, "you what is rag?")
}

func TestExecute_ModeRejectsUnknown(t *testing.T) {
	f := newFixture(t)

	out := f.exec(t, "/mode loud")
	assert.Contains(t, out, "Usage: /mode ask|chat")
	assert.Equal(t, entity.ModeAsk, f.p.mode)
}

func TestExecute_Config(t *testing.T) {
	f := newFixture(t)

	out := f.exec(t, "/config topK=3 threshold=0.5")
	assert.Contains(t, out, "topK=3")
	assert.Equal(t, 3, f.chat.Config().TopK)
	assert.InDelta(t, 0.5, f.chat.Config().Threshold, 1e-9)

	out = f.exec(t, "/config topK=many")
	assert.Contains(t, out, "✗")
	assert.Equal(t, 3, f.chat.Config().TopK)
}

func TestParseConfigPatch(t *testing.T) {
	patch, err := parseConfigPatch("topK=5 maxTokens=100 temperature=0.2 searchMode=MMR")
	require.NoError(t, err)
	require.NotNil(t, patch.TopK)
	assert.Equal(t, 5, *patch.TopK)
	assert.Equal(t, 100, *patch.MaxTokens)
	assert.InDelta(t, 0.2, *patch.Temperature, 1e-9)
	assert.Equal(t, entity.SearchModeMMR, *patch.SearchMode)
	assert.Nil(t, patch.Threshold)

	_, err = parseConfigPatch("topK")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)

	_, err = parseConfigPatch("colour=blue")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestExecute_Templates(t *testing.T) {
	f := newFixture(t)

	out := f.exec(t, "/templates")
	assert.Contains(t, out, "* "+prompt.TemplateRAGEnhanced)

	f.exec(t, "/template "+prompt.TemplateGeneralQA)
	assert.Equal(t, prompt.TemplateGeneralQA, f.p.deps.Prompts.Selected())

	out = f.exec(t, "/template nope")
	assert.Contains(t, out, "not found")

	f.exec(t, "/custom Answer briefly: {userQuery}")
	assert.Equal(t, "Answer briefly: {userQuery}", f.p.deps.Prompts.CustomPrompt())

	f.exec(t, "/custom off")
	assert.Empty(t, f.p.deps.Prompts.CustomPrompt())

	out = f.exec(t, "/validate hello {}")
	assert.Contains(t, out, entity.ErrEmptyVariable.Error())
}

func TestExecute_ThreadLifecycle(t *testing.T) {
	f := newFixture(t)

	out := f.exec(t, "/thread new Planning")
	require.Contains(t, out, "Thread created: ")
	id := strings.TrimSpace(strings.TrimPrefix(out, "Thread created: "))

	out = f.exec(t, "/threads")
	assert.Contains(t, out, "Planning")
	assert.Contains(t, out, string(entity.ThreadStatusActive))

	f.exec(t, "some local message")
	require.NotEmpty(t, f.chat.Messages())

	out = f.exec(t, "/thread open "+id)
	assert.Contains(t, out, "Loaded 0 messages.")
	assert.Empty(t, f.chat.Messages())

	f.exec(t, "/thread archive "+id)
	out = f.exec(t, "/thread archive "+id)
	assert.Contains(t, out, "✗")

	out = f.exec(t, "/thread delete "+id)
	assert.Contains(t, out, "Thread deleted.")

	out = f.exec(t, "/thread open")
	assert.Contains(t, out, "Usage: /thread")
}

func TestExecute_UploadAndSearch(t *testing.T) {
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "gophers.txt")
	require.NoError(t, os.WriteFile(path, []byte("Gophers are burrowing rodents that dig tunnels."), 0o600))

	out := f.exec(t, "/upload "+path+" Gopher facts")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, `Uploaded "Gopher facts"`)

	out = f.exec(t, "/docs")
	assert.Contains(t, out, "Gopher facts")

	out = f.exec(t, "/search burrowing gophers")
	assert.Contains(t, out, "Gophers are burrowing")
	assert.Contains(t, out, "page 1 of")

	out = f.exec(t, "/prev")
	assert.Contains(t, out, entity.ErrNoPreviousPage.Error())

	out = f.exec(t, "/upload "+filepath.Join(t.TempDir(), "missing.txt"))
	assert.Contains(t, out, "✗")
}

func TestExecute_ExportMarkdown(t *testing.T) {
	f := newFixture(t)
	f.exec(t, "hello there")

	path := filepath.Join(t.TempDir(), "chat.md")
	out := f.exec(t, "/export md "+path)
	assert.Contains(t, out, "Saved "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello there")

	out = f.exec(t, "/export rtf "+path)
	assert.Contains(t, out, "✗")
}

func TestExecute_SessionReset(t *testing.T) {
	f := newFixture(t)
	before := f.chat.SessionID()

	f.exec(t, "hello")
	out := f.exec(t, "/reset")
	assert.Contains(t, out, "New session: ")
	assert.NotEqual(t, before, f.chat.SessionID())
	assert.Empty(t, f.chat.Messages())
}

func TestExecute_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	out := f.exec(t, "/frobnicate")
	assert.Contains(t, out, "Unknown command /frobnicate")
}

func TestRun_ExitAndEOF(t *testing.T) {
	f := newFixture(t)

	err := f.p.Run(context.Background(), strings.NewReader("/help\n/exit\n"), nil)
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "/upload <path> [title]")
	assert.Contains(t, f.out.String(), msgBye)

	f.out.Reset()
	err = f.p.Run(context.Background(), strings.NewReader("/session\n"), nil)
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "Session: "+f.chat.SessionID())
}

type interruptibleChat struct {
	Conversation
	loading  atomic.Bool
	canceled atomic.Int32
}

func (c *interruptibleChat) Loading() bool { return c.loading.Load() }

func (c *interruptibleChat) Cancel() bool {
	c.canceled.Add(1)
	return true
}

func TestWatchInterrupts(t *testing.T) {
	fake := &interruptibleChat{}
	fake.loading.Store(true)
	p := &Playground{deps: Deps{Chat: fake}, out: &bytes.Buffer{}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupts := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		p.watchInterrupts(ctx, cancel, interrupts)
		close(done)
	}()

	interrupts <- os.Interrupt
	assert.Eventually(t, func() bool { return fake.canceled.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, ctx.Err())

	fake.loading.Store(false)
	interrupts <- os.Interrupt

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on idle interrupt")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
