package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/kgraphdb/kgraph/internal/llmcli"
	"github.com/kgraphdb/kgraph/internal/privacy"
)

// synthClient is the subset of llmcli.Client the WRITE step needs.
type synthClient interface {
	Synthesize(ctx context.Context, model, prompt string) (string, llmcli.Usage, error)
}

// writeResult is WRITE's output before VALIDATE.
type writeResult struct {
	Content      string
	InputTokens  int64
	OutputTokens int64
}

func buildSystemPrompt(outline Outline, audience privacy.Audience, editorialPrompt string) string {
	var b strings.Builder
	b.WriteString("You write a single cohesive wiki article from the numbered source documents that follow.\n")
	b.WriteString("Output format rules: no preamble, no meta-commentary, start directly with a single H1 title.\n")
	b.WriteString("Preserve code blocks verbatim. Note disagreements between sources explicitly rather than silently picking one.\n\n")
	fmt.Fprintf(&b, "Suggested title: %s\n", outline.Title)
	fmt.Fprintf(&b, "Sections to cover: %s\n", strings.Join(outline.Sections, ", "))
	if len(outline.FocusEntities) > 0 {
		fmt.Fprintf(&b, "Entity focus: %s\n", strings.Join(outline.FocusEntities, ", "))
	}
	b.WriteString("\n")
	b.WriteString(privacy.PromptSection(audience))
	if editorialPrompt != "" {
		b.WriteString("\n\nEditorial Guidance:\n")
		b.WriteString(editorialPrompt)
	}
	return b.String()
}

func buildUserMessage(sources []Source) string {
	var b strings.Builder
	for i, s := range sources {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "Source %d: %s\n\n%s\n", i+1, s.Title, s.Content)
	}
	return b.String()
}

// write runs WRITE per spec.md §4.13: a single invocation for the "stuff"
// strategy, or a chunk-summarize-then-merge pass for "hierarchical".
func write(ctx context.Context, client synthClient, model string, strategy Strategy, outline Outline, sources []Source, audience privacy.Audience, editorialPrompt string) (*writeResult, error) {
	systemPrompt := buildSystemPrompt(outline, audience, editorialPrompt)

	if strategy == StrategyStuff {
		prompt := systemPrompt + "\n\n" + buildUserMessage(sources)
		content, usage, err := client.Synthesize(ctx, model, prompt)
		if err != nil {
			return nil, fmt.Errorf("synthesis call: %w", err)
		}
		return &writeResult{Content: content, InputTokens: usage.InputTokens, OutputTokens: usage.OutputTokens}, nil
	}

	chunks := chunkSources(sources, HierarchicalChunkSize)
	var virtualSources []Source
	var totalIn, totalOut int64
	for i, chunk := range chunks {
		summaryPrompt := "Summarize the following sources in 500-1000 words with no preamble.\n\n" + buildUserMessage(chunk)
		summary, usage, err := client.Synthesize(ctx, model, summaryPrompt)
		if err != nil {
			return nil, fmt.Errorf("summarizing chunk %d: %w", i, err)
		}
		totalIn += usage.InputTokens
		totalOut += usage.OutputTokens
		virtualSources = append(virtualSources, Source{
			DocumentID: -int64(i + 1),
			Title:      fmt.Sprintf("Chunk %d summary", i+1),
			Content:    summary,
		})
	}

	mergePrompt := systemPrompt + "\n\n" + buildUserMessage(virtualSources)
	content, usage, err := client.Synthesize(ctx, model, mergePrompt)
	if err != nil {
		return nil, fmt.Errorf("final merge: %w", err)
	}
	totalIn += usage.InputTokens
	totalOut += usage.OutputTokens

	return &writeResult{Content: content, InputTokens: totalIn, OutputTokens: totalOut}, nil
}
