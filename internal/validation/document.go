// Package validation validates documents before they're saved, adapted from
// the teacher's internal/validation issue-validator chain (the same
// Chain-of-composable-validators shape, re-keyed from types.Issue to
// types.Document).
package validation

import (
	"fmt"
	"strings"

	"github.com/kgraphdb/kgraph/internal/types"
)

// MaxTitleLength and MaxContentLength bound what saveCmd will accept,
// catching accidental paste-the-whole-file-as-a-title mistakes.
const (
	MaxTitleLength   = 500
	MaxContentLength = 2_000_000
)

// DocumentValidator validates a document and returns an error describing the
// first problem found, or nil if the document is acceptable.
type DocumentValidator func(doc *types.Document) error

// Chain composes validators into one, running them in order and stopping at
// the first error.
func Chain(validators ...DocumentValidator) DocumentValidator {
	return func(doc *types.Document) error {
		for _, v := range validators {
			if err := v(doc); err != nil {
				return err
			}
		}
		return nil
	}
}

// TitleRequired rejects documents with an empty or whitespace-only title.
func TitleRequired() DocumentValidator {
	return func(doc *types.Document) error {
		if strings.TrimSpace(doc.Title) == "" {
			return fmt.Errorf("title is required")
		}
		return nil
	}
}

// TitleLength rejects titles longer than MaxTitleLength.
func TitleLength() DocumentValidator {
	return func(doc *types.Document) error {
		if len(doc.Title) > MaxTitleLength {
			return fmt.Errorf("title exceeds %d characters", MaxTitleLength)
		}
		return nil
	}
}

// ContentLength rejects content longer than MaxContentLength.
func ContentLength() DocumentValidator {
	return func(doc *types.Document) error {
		if len(doc.Content) > MaxContentLength {
			return fmt.Errorf("content exceeds %d bytes", MaxContentLength)
		}
		return nil
	}
}

// Default is the validator chain saveCmd runs before every write.
func Default() DocumentValidator {
	return Chain(TitleRequired(), TitleLength(), ContentLength())
}
