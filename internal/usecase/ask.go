package usecase

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"shastra/internal/domain"
	"shastra/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// AskResult is a generated answer together with the passages that
// informed it. Grounded is false when no passages survived retrieval
// and the model answered from its own knowledge.
type AskResult struct {
	Answer   string
	Model    string
	Sources  []domain.RetrievedPassage
	Groups   []CategoryGroup
	Grounded bool
}

// AskUseCase answers a question by retrieving passages and feeding them
// to a chain of generators, tried in order until one succeeds.
type AskUseCase struct {
	search     *SearchUseCase
	generators []port.Generator
	logger     *zap.Logger
}

// NewAskUseCase creates a new ask use case.
func NewAskUseCase(search *SearchUseCase, generators []port.Generator, logger *zap.Logger) *AskUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskUseCase{
		search:     search,
		generators: generators,
		logger:     logger,
	}
}

// Ask retrieves passages for the question and generates an answer.
// Retrieval errors propagate to the caller; an empty retrieval result
// is not an error and produces an answer from general knowledge.
func (u *AskUseCase) Ask(ctx context.Context, question string, opts SearchOptions) (*AskResult, error) {
	sources, err := u.search.Search(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	groups := GroupByCategory(sources)
	grounded := len(sources) > 0

	prompt, err := renderPrompt(question, groups, grounded)
	if err != nil {
		return nil, err
	}

	answer, model, err := u.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &AskResult{
		Answer:   strings.TrimSpace(answer),
		Model:    model,
		Sources:  sources,
		Groups:   groups,
		Grounded: grounded,
	}, nil
}

// generate tries each generator in order and returns the first answer.
func (u *AskUseCase) generate(ctx context.Context, prompt string) (string, string, error) {
	if len(u.generators) == 0 {
		return "", "", &domain.GenerationError{Err: errors.New("no generation models configured")}
	}

	var lastErr error
	tried := make([]string, 0, len(u.generators))
	for _, g := range u.generators {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		tried = append(tried, g.ModelName())
		answer, err := g.Generate(ctx, prompt)
		if err != nil {
			u.logger.Warn("generation failed, trying next model",
				zap.String("model", g.ModelName()),
				zap.Error(err))
			lastErr = err
			continue
		}
		return answer, g.ModelName(), nil
	}
	return "", "", &domain.GenerationError{Models: tried, Err: lastErr}
}

// promptData is the payload rendered into the ask templates.
type promptData struct {
	Question string
	Groups   []CategoryGroup
}

// renderPrompt builds the generation prompt. Grounded questions get the
// full context template, questions with no retrieved passages get the
// general-knowledge one.
func renderPrompt(question string, groups []CategoryGroup, grounded bool) (string, error) {
	name := "templates/ask_general.txt"
	if grounded {
		name = "templates/ask.txt"
	}

	content, err := promptTemplates.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("ask").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
	}).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Question: question, Groups: groups}); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
