package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var errExit = errors.New("exit")

type Deps struct {
	Chat      Conversation
	Prompts   PromptCatalog
	Threads   ThreadStore
	Documents DocumentCoordinator
	Search    SearchService
	Sessions  SessionProvider
	Mode      entity.Mode
}

// Playground is the interactive terminal front end. Commands run one at a time;
// only interrupts are handled concurrently.
type Playground struct {
	deps     Deps
	mode     entity.Mode
	out      io.Writer
	logger   *zap.Logger
	commands map[string]command
}

func New(deps Deps, logger *zap.Logger) *Playground {
	mode := deps.Mode
	if mode.Validate() != nil {
		mode = entity.ModeChat
	}

	p := &Playground{
		deps:   deps,
		mode:   mode,
		out:    os.Stdout,
		logger: logger,
	}
	p.commands = make(map[string]command)
	for _, c := range p.commandList() {
		p.commands[c.name] = c
	}
	return p
}

// SetOutput redirects everything the playground prints.
func (p *Playground) SetOutput(w io.Writer) {
	p.out = w
}

// Run reads commands from in until /exit, EOF, ctx cancellation or an interrupt
// while idle. An interrupt during a request cancels that request instead.
func (p *Playground) Run(ctx context.Context, in io.Reader, interrupts <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctxzap.ToContext(ctx, p.logger))
	defer cancel()

	go p.watchInterrupts(ctx, cancel, interrupts)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	p.println(msgWelcome)
	faintStyle.Fprintf(p.out, "session %s · mode %s\n", p.deps.Chat.SessionID(), p.mode)

	for {
		userStyle.Fprintf(p.out, "%s> ", p.mode)

		select {
		case <-ctx.Done():
			p.println()
			p.println(msgBye)
			return nil
		case line, ok := <-lines:
			if !ok {
				p.println()
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if err := p.Execute(ctx, line); errors.Is(err, errExit) {
				p.println(msgBye)
				return nil
			}
		}
	}
}

func (p *Playground) watchInterrupts(ctx context.Context, stop context.CancelFunc, interrupts <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-interrupts:
			if !ok {
				return
			}
			if p.deps.Chat.Loading() {
				p.deps.Chat.Cancel()
				continue
			}
			stop()
			return
		}
	}
}

// Execute runs one input line: a slash command or a message in the current mode.
func (p *Playground) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if !strings.HasPrefix(line, "/") {
		p.send(ctx, line)
		return nil
	}

	name, args, _ := strings.Cut(line[1:], " ")
	args = strings.TrimSpace(args)

	c, ok := p.commands[strings.ToLower(name)]
	if !ok {
		p.warn("Unknown command /" + name + ". Type /help for the list.")
		return nil
	}

	ctx = logger.WithAction(ctx, "cli_"+c.name)
	err := c.run(ctx, args)
	switch {
	case err == nil:
	case errors.Is(err, errExit):
		return err
	case errors.Is(err, errUsage):
		p.warn("Usage: /" + c.name + " " + c.usage)
	default:
		ctxzap.Warn(ctx, "command failed", zap.Error(err))
		p.fail(err)
	}
	return nil
}

func (p *Playground) send(ctx context.Context, content string) {
	ctx = logger.AddFields(logger.WithAction(ctx, "cli_send"), zap.String("mode", string(p.mode)))

	faintStyle.Fprintln(p.out, "thinking… (Ctrl+C to cancel)")

	msg, err := p.deps.Chat.SendMessage(ctx, content, p.mode)
	if err != nil {
		if !errors.Is(err, entity.ErrRequestCanceled) {
			ctxzap.Warn(ctx, "send failed", zap.Error(err))
		}
		p.fail(err)
		return
	}
	p.printMessage(*msg)
}
