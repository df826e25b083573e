package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/futig/rag-playground/internal/pkg/validator"
	"github.com/futig/rag-playground/internal/usecase/quality"
	"github.com/futig/rag-playground/internal/usecase/search"
)

var errUsage = errors.New("usage")

type command struct {
	name  string
	usage string
	help  string
	run   func(ctx context.Context, args string) error
}

func (p *Playground) commandList() []command {
	return []command{
		{name: "help", help: "show this list", run: p.help},
		{name: "mode", usage: "ask|chat", help: "switch between direct answers and retrieval-augmented chat", run: p.setMode},
		{name: "cancel", help: "cancel the running request", run: p.cancel},
		{name: "clear", help: "clear the conversation here and on the server", run: p.clear},
		{name: "history", help: "load the server-side history of this session", run: p.history},
		{name: "messages", help: "print the current conversation", run: p.messages},
		{name: "config", usage: "[key=value ...]", help: "show or change topK, threshold, maxTokens, temperature, searchMode", run: p.config},
		{name: "quality", help: "rate the latest retrieval", run: p.quality},
		{name: "feedback", usage: "positive|negative", help: "tune retrieval parameters from feedback", run: p.feedback},
		{name: "results", help: "show the latest retrieval results", run: p.results},
		{name: "vector", usage: "<v1,v2,...>", help: "search by a raw embedding vector", run: p.vector},
		{name: "templates", help: "list prompt templates", run: p.templates},
		{name: "template", usage: "<id>", help: "select a prompt template", run: p.selectTemplate},
		{name: "custom", usage: "<text>|off", help: "set or clear a custom prompt override", run: p.custom},
		{name: "validate", usage: "<text>", help: "check a prompt for problems", run: p.validate},
		{name: "threads", help: "list conversation threads", run: p.threads},
		{name: "thread", usage: "new <title> | open|archive|delete <id>", help: "manage conversation threads", run: p.thread},
		{name: "upload", usage: "<path> [title]", help: "upload a document for retrieval", run: p.upload},
		{name: "docs", help: "list uploaded documents", run: p.docs},
		{name: "search", usage: "<query>", help: "run a paged advanced search", run: p.search},
		{name: "next", help: "next page of the last search", run: p.nextPage},
		{name: "prev", help: "previous page of the last search", run: p.previousPage},
		{name: "export", usage: "md|pdf|docx <path>", help: "save the conversation to a file", run: p.export},
		{name: "session", help: "show the session id", run: p.session},
		{name: "reset", help: "start a fresh session", run: p.reset},
		{name: "exit", help: "quit", run: func(context.Context, string) error { return errExit }},
	}
}

func (p *Playground) help(context.Context, string) error {
	p.header("Commands")
	for _, c := range p.commandList() {
		usage := "/" + c.name
		if c.usage != "" {
			usage += " " + c.usage
		}
		p.printf("  %-42s %s\n", usage, c.help)
	}
	p.println("Anything else is sent as a message. Ctrl+C cancels a running request.")
	return nil
}

func (p *Playground) setMode(_ context.Context, args string) error {
	mode := entity.Mode(strings.ToLower(args))
	if err := mode.Validate(); err != nil {
		return errUsage
	}
	p.mode = mode
	p.println("Mode: " + string(mode))
	return nil
}

func (p *Playground) cancel(context.Context, string) error {
	if p.deps.Chat.Cancel() {
		p.println("Request canceled.")
	} else {
		p.warn("Nothing to cancel.")
	}
	return nil
}

func (p *Playground) clear(ctx context.Context, _ string) error {
	p.deps.Chat.ClearMessages(ctx)
	p.println("Conversation cleared.")
	return nil
}

func (p *Playground) history(ctx context.Context, _ string) error {
	messages, err := p.deps.Chat.LoadHistory(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		p.warn("The server has no history for this session.")
		return nil
	}
	for _, m := range messages {
		p.printMessage(m)
	}
	return nil
}

func (p *Playground) messages(context.Context, string) error {
	messages := p.deps.Chat.Messages()
	if len(messages) == 0 {
		p.warn("No messages yet.")
		return nil
	}
	for _, m := range messages {
		p.printMessage(m)
	}
	return nil
}

func (p *Playground) config(_ context.Context, args string) error {
	if args != "" {
		patch, err := parseConfigPatch(args)
		if err != nil {
			return err
		}
		// Valid fields are applied even when another one is rejected.
		if _, err := p.deps.Chat.UpdateConfig(patch); err != nil {
			p.fail(err)
		}
	}

	cfg := p.deps.Chat.Config()
	p.header("RAG parameters")
	p.printf("  topK=%d threshold=%.2f maxTokens=%d temperature=%.2f searchMode=%s\n",
		cfg.TopK, cfg.Threshold, cfg.MaxTokens, cfg.Temperature, cfg.SearchMode)
	return nil
}

func parseConfigPatch(args string) (entity.RAGConfigPatch, error) {
	var patch entity.RAGConfigPatch

	for _, pair := range strings.Fields(args) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return patch, fmt.Errorf("%w: %q is not key=value", entity.ErrInvalidFormat, pair)
		}

		switch strings.ToLower(key) {
		case "topk":
			n, err := strconv.Atoi(value)
			if err != nil {
				return patch, fmt.Errorf("%w: topK: %w", entity.ErrInvalidParameter, err)
			}
			patch.TopK = &n
		case "threshold":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return patch, fmt.Errorf("%w: threshold: %w", entity.ErrInvalidParameter, err)
			}
			patch.Threshold = &f
		case "maxtokens":
			n, err := strconv.Atoi(value)
			if err != nil {
				return patch, fmt.Errorf("%w: maxTokens: %w", entity.ErrInvalidParameter, err)
			}
			patch.MaxTokens = &n
		case "temperature":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return patch, fmt.Errorf("%w: temperature: %w", entity.ErrInvalidParameter, err)
			}
			patch.Temperature = &f
		case "searchmode":
			mode := entity.SearchMode(strings.ToLower(value))
			patch.SearchMode = &mode
		default:
			return patch, fmt.Errorf("%w: unknown key %q", entity.ErrInvalidParameter, key)
		}
	}

	return patch, nil
}

func (p *Playground) quality(context.Context, string) error {
	report := p.deps.Chat.EvaluateSearchQuality()
	p.printf("Average score %.3f, %d high-quality results, rating %s\n",
		report.AverageScore, report.HighQualityCount, report.QualityRating)
	return nil
}

func (p *Playground) feedback(_ context.Context, args string) error {
	feedback, err := quality.ParseFeedback(strings.ToLower(args))
	if err != nil {
		return errUsage
	}

	applied, cfg, err := p.deps.Chat.OptimizeParameters(feedback)
	if err != nil {
		return err
	}
	if applied.IsEmpty() {
		p.println("Parameters unchanged.")
		return nil
	}
	p.printf("Parameters updated: topK=%d threshold=%.2f\n", cfg.TopK, cfg.Threshold)
	return nil
}

func (p *Playground) results(context.Context, string) error {
	p.printResults(p.deps.Chat.SearchResults())
	return nil
}

func (p *Playground) vector(ctx context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	results, err := p.deps.Chat.SearchByEmbedding(ctx, args, 0)
	if err != nil {
		return err
	}
	p.printResults(results)
	return nil
}

func (p *Playground) templates(context.Context, string) error {
	selected := p.deps.Prompts.Selected()
	p.header("Prompt templates")
	for _, t := range p.deps.Prompts.Templates() {
		marker := " "
		if t.ID == selected {
			marker = "*"
		}
		p.printf(" %s %-40s %-10s %s\n", marker, t.ID, t.Category, t.Name)
	}
	if custom := p.deps.Prompts.CustomPrompt(); strings.TrimSpace(custom) != "" {
		p.warn("A custom prompt overrides the selection. Use /custom off to clear it.")
	}
	return nil
}

func (p *Playground) selectTemplate(_ context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	if err := p.deps.Prompts.SelectTemplate(args); err != nil {
		return err
	}
	p.println("Template: " + args)
	return nil
}

func (p *Playground) custom(_ context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	if strings.EqualFold(args, "off") {
		args = ""
	}
	if err := p.deps.Prompts.SetCustomPrompt(args); err != nil {
		return err
	}
	if args == "" {
		p.println("Custom prompt cleared.")
	} else {
		p.println("Custom prompt set.")
	}
	return nil
}

func (p *Playground) validate(_ context.Context, args string) error {
	res := p.deps.Prompts.ValidatePrompt(args)
	if res.Valid {
		p.println("Prompt is valid.")
		return nil
	}
	for _, e := range res.Errors {
		p.warn("- " + e)
	}
	return nil
}

func (p *Playground) threads(ctx context.Context, _ string) error {
	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	threads, err := p.deps.Threads.ListForSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(threads) == 0 {
		p.warn("No threads yet. Create one with /thread new <title>.")
		return nil
	}

	p.header("Threads")
	for _, t := range threads {
		p.printf("  %s  %-8s %3d msgs  %s\n", t.ID, t.Status, len(t.Messages), t.Title)
	}
	return nil
}

func (p *Playground) thread(ctx context.Context, args string) error {
	action, rest, _ := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return errUsage
	}

	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	switch strings.ToLower(action) {
	case "new":
		t, err := p.deps.Threads.Create(ctx, sessionID, &entity.CreateThreadRequest{Title: rest})
		if err != nil {
			return err
		}
		p.println("Thread created: " + t.ID)
	case "open":
		messages, err := p.deps.Threads.Activate(ctx, sessionID, rest)
		if err != nil {
			return err
		}
		p.deps.Chat.ReplaceMessages(messages)
		p.printf("Loaded %d messages.\n", len(messages))
	case "archive":
		if err := p.deps.Threads.Archive(ctx, sessionID, rest); err != nil {
			return err
		}
		p.println("Thread archived.")
	case "delete":
		if err := p.deps.Threads.Delete(ctx, sessionID, rest); err != nil {
			return err
		}
		p.println("Thread deleted.")
	default:
		return errUsage
	}
	return nil
}

func (p *Playground) upload(ctx context.Context, args string) error {
	path, title, _ := strings.Cut(args, " ")
	if path == "" {
		return errUsage
	}

	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	file := entity.FileUpload{
		Filename:    filepath.Base(path),
		ContentType: validator.ContentTypeFor(path),
		Size:        info.Size(),
		Content:     f,
	}

	doc, err := p.deps.Documents.Upload(ctx, sessionID, file, entity.UploadMetadata{Title: strings.TrimSpace(title)}, func(fraction float64) {
		faintStyle.Fprintf(p.out, "\ruploading %3.0f%%", fraction*100)
	})
	p.println()
	if err != nil {
		return err
	}

	p.printf("Uploaded %q as %s (%d chunks).\n", doc.Title, doc.ID, doc.TotalChunks)
	return nil
}

func (p *Playground) docs(ctx context.Context, _ string) error {
	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	docs, err := p.deps.Documents.List(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		p.warn("No documents uploaded.")
		return nil
	}

	p.header("Documents")
	for _, d := range docs {
		p.printf("  %s  %3d chunks  %s\n", d.ID, d.TotalChunks, d.Title)
	}
	return nil
}

func (p *Playground) search(ctx context.Context, args string) error {
	if args == "" {
		return errUsage
	}

	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	resp, err := p.deps.Search.Search(ctx, sessionID, entity.AdvancedSearchRequest{
		Query:      args,
		SearchType: entity.SearchTypeSemantic,
		Size:       search.DefaultPageSize,
	})
	if err != nil {
		return err
	}
	p.printPage(resp)
	return nil
}

func (p *Playground) nextPage(ctx context.Context, _ string) error {
	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	resp, err := p.deps.Search.NextPage(ctx, sessionID)
	if err != nil {
		return err
	}
	p.printPage(resp)
	return nil
}

func (p *Playground) previousPage(ctx context.Context, _ string) error {
	sessionID, err := p.deps.Sessions.Require()
	if err != nil {
		return err
	}

	resp, err := p.deps.Search.PreviousPage(ctx, sessionID)
	if err != nil {
		return err
	}
	p.printPage(resp)
	return nil
}

func (p *Playground) printPage(resp *entity.AdvancedSearchResponse) {
	p.printResults(resp.Results)
	faintStyle.Fprintf(p.out, "page %d of %d · %d total\n", resp.Page+1, max(resp.TotalPages, 1), resp.TotalElements)
}

func (p *Playground) export(_ context.Context, args string) error {
	rawFormat, path, _ := strings.Cut(args, " ")
	path = strings.TrimSpace(path)
	if rawFormat == "" {
		return errUsage
	}

	format, err := entity.ParseExportFormat(rawFormat)
	if err != nil {
		return err
	}

	export, err := p.deps.Chat.ExportTranscript(format)
	if err != nil {
		return err
	}
	if path == "" {
		path = export.Filename
	}

	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	p.println("Saved " + path)
	return nil
}

func (p *Playground) session(context.Context, string) error {
	p.println("Session: " + p.deps.Chat.SessionID())
	return nil
}

func (p *Playground) reset(ctx context.Context, _ string) error {
	id, err := p.deps.Chat.ResetSession(ctx)
	if err != nil {
		return err
	}
	p.println("New session: " + id)
	return nil
}
