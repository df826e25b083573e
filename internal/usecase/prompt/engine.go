package prompt

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/google/uuid"
)

const (
	NoSearchResults = "No search results."
	NoHistory       = "No conversation history."

	historyWindow = 5
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// Engine owns the template catalog, the selected template and the custom override.
// It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	templates map[string]entity.PromptTemplate
	order     []string
	selected  string
	custom    string
	now       func() time.Time
}

func NewEngine(defaultTemplate string) *Engine {
	e := &Engine{
		templates: make(map[string]entity.PromptTemplate),
		selected:  defaultTemplate,
		now:       time.Now,
	}

	for _, t := range builtinTemplates(e.now()) {
		e.templates[t.ID] = t
		e.order = append(e.order, t.ID)
	}

	if _, ok := e.templates[e.selected]; !ok {
		e.selected = TemplateGeneralQA
	}

	return e
}

// RenderPrompt renders the selected template. A non-blank custom prompt is returned verbatim,
// and a missing template degrades to the raw user query.
func (e *Engine) RenderPrompt(pc entity.PromptContext) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if strings.TrimSpace(e.custom) != "" {
		return e.custom
	}

	t, ok := e.templates[e.selected]
	if !ok {
		return pc.UserQuery
	}

	return render(t, pc)
}

// RenderTemplate renders a specific template regardless of the selection.
func (e *Engine) RenderTemplate(id string, pc entity.PromptContext) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.templates[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, id)
	}
	return render(t, pc), nil
}

// ActiveTemplateID names what RenderPrompt will use.
func (e *Engine) ActiveTemplateID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if strings.TrimSpace(e.custom) != "" {
		return CustomTemplateID
	}
	return e.selected
}

func render(t entity.PromptTemplate, pc entity.PromptContext) string {
	rendered := t.Template
	for _, name := range t.Variables {
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", variableValue(name, pc))
	}
	return rendered
}

func variableValue(name string, pc entity.PromptContext) string {
	switch name {
	case "userQuery":
		return pc.UserQuery
	case "searchResults":
		return FormatSearchResults(pc.SearchResults)
	case "conversationHistory":
		return FormatHistory(pc.ConversationHistory)
	default:
		return pc.Metadata[name]
	}
}

func FormatSearchResults(results []entity.SearchResult) string {
	if len(results) == 0 {
		return NoSearchResults
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		source := r.Source
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("%d. %s\n   score: %.3f\n   source: %s", i+1, r.Content, r.Score, source))
	}
	return strings.Join(parts, "\n\n")
}

// FormatHistory keeps only the most recent turns.
func FormatHistory(history []entity.Message) string {
	if len(history) == 0 {
		return NoHistory
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// ValidatePrompt rejects blank text and empty placeholders. Unknown names are allowed
// and stay literal when rendered.
func (e *Engine) ValidatePrompt(text string) entity.ValidationResult {
	return validateText(text)
}

func validateText(text string) entity.ValidationResult {
	var errs []string

	if strings.TrimSpace(text) == "" {
		errs = append(errs, entity.ErrEmptyPrompt.Error())
	}

	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if strings.TrimSpace(m[1]) == "" {
			errs = append(errs, entity.ErrEmptyVariable.Error())
			break
		}
	}

	return entity.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateTemplate additionally requires every declared variable to occur in the text.
func (e *Engine) ValidateTemplate(t entity.PromptTemplate) entity.ValidationResult {
	res := validateText(t.Template)

	if strings.TrimSpace(t.Name) == "" {
		res.Errors = append(res.Errors, "template name is empty")
	}

	for _, name := range t.Variables {
		if strings.TrimSpace(name) == "" {
			res.Errors = append(res.Errors, entity.ErrEmptyVariable.Error())
			continue
		}
		if !strings.Contains(t.Template, "{"+name+"}") {
			res.Errors = append(res.Errors, fmt.Sprintf("variable %q is not used in the template", name))
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func invalidTemplate(res entity.ValidationResult) error {
	return fmt.Errorf("%w: %s", entity.ErrInvalidTemplate, strings.Join(res.Errors, "; "))
}

// AddTemplate stores a new template under a generated id.
func (e *Engine) AddTemplate(t entity.PromptTemplate) (*entity.PromptTemplate, error) {
	if res := e.ValidateTemplate(t); !res.Valid {
		return nil, invalidTemplate(res)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	t.ID = "template_" + uuid.NewString()
	t.Variables = slices.Clone(t.Variables)
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Category == "" {
		t.Category = entity.CategoryGeneral
	}
	if t.Version == "" {
		t.Version = "1.0.0"
	}

	e.templates[t.ID] = t
	e.order = append(e.order, t.ID)

	return &t, nil
}

// UpdateTemplate merges the patch into an existing template. Last write wins.
func (e *Engine) UpdateTemplate(id string, patch entity.PromptTemplatePatch) (*entity.PromptTemplate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, id)
	}

	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Template != nil {
		t.Template = *patch.Template
	}
	if patch.Variables != nil {
		t.Variables = slices.Clone(patch.Variables)
	}
	if patch.Version != nil {
		t.Version = *patch.Version
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}

	if res := e.ValidateTemplate(t); !res.Valid {
		return nil, invalidTemplate(res)
	}

	t.UpdatedAt = e.now()
	e.templates[id] = t

	return &t, nil
}

// DeleteTemplate removes a template but never the last one.
// Deleting the selected template leaves rendering on the raw-query fallback until another is selected.
func (e *Engine) DeleteTemplate(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.templates[id]; !ok {
		return fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, id)
	}
	if len(e.templates) == 1 {
		return entity.ErrLastTemplate
	}

	delete(e.templates, id)
	e.order = slices.DeleteFunc(e.order, func(s string) bool { return s == id })

	return nil
}

func (e *Engine) Template(id string) (*entity.PromptTemplate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.templates[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (e *Engine) Templates() []entity.PromptTemplate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	templates := make([]entity.PromptTemplate, 0, len(e.order))
	for _, id := range e.order {
		templates = append(templates, e.templates[id])
	}
	return templates
}

func (e *Engine) TemplatesByCategory(category entity.TemplateCategory) []entity.PromptTemplate {
	var templates []entity.PromptTemplate
	for _, t := range e.Templates() {
		if t.Category == category {
			templates = append(templates, t)
		}
	}
	return templates
}

func (e *Engine) SelectTemplate(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.templates[id]; !ok {
		return fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, id)
	}
	e.selected = id
	return nil
}

func (e *Engine) Selected() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.selected
}

// SetCustomPrompt installs an override prompt. Blank text clears the override.
func (e *Engine) SetCustomPrompt(text string) error {
	if strings.TrimSpace(text) != "" {
		if res := validateText(text); !res.Valid {
			return invalidTemplate(res)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.custom = text
	return nil
}

func (e *Engine) CustomPrompt() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.custom
}
