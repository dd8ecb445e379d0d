package changelog

import (
	"context"
	"fmt"
	"io"
	"os"
)

// PromptBuilder renders commits into a single prompt.
type PromptBuilder func(commits []CommitRecord) string

// Emitter writes the model's Markdown verbatim.
type Emitter struct {
	W io.Writer
}

func (e Emitter) Emit(markdown string) error {
	if _, err := io.WriteString(e.W, markdown); err != nil {
		return fmt.Errorf("write changelog: %w", err)
	}
	return nil
}

// WriteFile emits markdown to path. It is only called once the model has
// answered, so a failed run never leaves a file behind.
func WriteFile(path, markdown string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := (Emitter{W: f}).Emit(markdown); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Generator wires the stages together. Each stage is injectable so it can be
// replaced by a fake in tests.
type Generator struct {
	Source     Source
	Prompt     PromptBuilder
	Summarizer Summarizer
}

// Generate runs Source -> Prompt -> Summarizer and returns the Markdown.
func (g Generator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ValidateCount(req.Count); err != nil {
		return "", err
	}

	commits, err := g.Source.Fetch(ctx, req)
	if err != nil {
		return "", err
	}
	if len(commits) == 0 {
		return "", Errorf(ErrNoCommitsFound, "no commits found in %s", req.Source)
	}

	return g.Summarizer.Summarize(ctx, g.Prompt(commits))
}
