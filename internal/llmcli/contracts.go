package llmcli

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExtractedEntity is one entity/relationship-bearing item from the JSON
// contract used by entity extraction (spec.md §6): the CLI is prompted to
// respond with exactly one JSON object on stdout.
type ExtractedEntity struct {
	Entity     string  `json:"entity"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// ExtractedRelationship is one relationship edge from the extraction
// contract.
type ExtractedRelationship struct {
	Source           string  `json:"source"`
	Target           string  `json:"target"`
	RelationshipType string  `json:"relationship_type"`
	Confidence       float64 `json:"confidence"`
}

type extractionResponse struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

// ExtractEntities runs the CLI with a prompt asking for the JSON entity
// contract and parses the response. The prompt is built by the caller
// (internal/extractor) so this package stays ignorant of document content
// shaping.
func (c *Client) ExtractEntities(ctx context.Context, model, prompt string) ([]ExtractedEntity, []ExtractedRelationship, Usage, error) {
	out, usage, err := c.Run(ctx, model, prompt, "--output-format", "json")
	if err != nil {
		return nil, nil, usage, err
	}

	var resp extractionResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, nil, usage, fmt.Errorf("parsing extraction response: %w", err)
	}
	return resp.Entities, resp.Relationships, usage, nil
}

// Synthesize runs the CLI with a prompt asking for raw markdown (the
// WRITE step of spec.md §4.13's synthesis pipeline) and returns it
// unparsed.
func (c *Client) Synthesize(ctx context.Context, model, prompt string) (string, Usage, error) {
	return c.Run(ctx, model, prompt)
}
