package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/futig/rag-playground/internal/entity"
)

const (
	msgWelcome = `RAG Playground
Type a question to talk to the backend, or /help for commands.`

	msgBye = "Bye."
)

var (
	userStyle      = color.New(color.FgCyan, color.Bold)
	assistantStyle = color.New(color.FgGreen, color.Bold)
	systemStyle    = color.New(color.FgMagenta)
	errorStyle     = color.New(color.FgRed)
	warnStyle      = color.New(color.FgYellow)
	faintStyle     = color.New(color.Faint)
	headerStyle    = color.New(color.Bold, color.Underline)
)

func (p *Playground) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *Playground) printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *Playground) header(text string) {
	headerStyle.Fprintln(p.out, text)
}

func (p *Playground) warn(text string) {
	warnStyle.Fprintln(p.out, text)
}

func (p *Playground) fail(err error) {
	errorStyle.Fprintln(p.out, "✗ "+describeError(err))
}

func (p *Playground) printMessage(m entity.Message) {
	switch {
	case m.Error:
		errorStyle.Fprintf(p.out, "assistant ✗ ")
		p.println(m.Content)
		return
	case m.Role == entity.RoleUser:
		userStyle.Fprintf(p.out, "you ")
	case m.Role == entity.RoleSystem:
		systemStyle.Fprintf(p.out, "system ")
	default:
		assistantStyle.Fprintf(p.out, "assistant ")
	}
	p.println(m.Content)

	if m.Metadata != nil {
		faintStyle.Fprintln(p.out, metadataLine(m.Metadata))
	}
}

func metadataLine(md *entity.MessageMetadata) string {
	parts := []string{md.Model}
	if md.Tokens > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", md.Tokens))
	}
	parts = append(parts, md.ProcessingTime.Round(time.Millisecond).String())
	if md.SearchResultCount != nil {
		parts = append(parts, fmt.Sprintf("%d results", *md.SearchResultCount))
	}
	if md.PromptTemplate != "" {
		parts = append(parts, "template "+md.PromptTemplate)
	}
	return "  " + strings.Join(parts, " · ")
}

func (p *Playground) printResults(results []entity.SearchResult) {
	if len(results) == 0 {
		p.warn("No search results.")
		return
	}
	for i, r := range results {
		assistantStyle.Fprintf(p.out, "%d. ", i+1)
		p.printf("%s\n", truncate(r.Content, 200))
		faintStyle.Fprintf(p.out, "   score %.3f · %s\n", r.Score, r.Source)
	}
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}
