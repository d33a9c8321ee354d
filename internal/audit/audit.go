// Package audit provides an append-only JSONL trail of LLM calls and other
// notable events, adapted from the teacher's internal/audit/audit.go. The
// teacher locates its log under a discovered .beads directory; this module
// has no such directory-discovery helper of its own; it locates its log
// next to the configured database instead.
package audit

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the audit log file name stored alongside the database.
const FileName = "audit.jsonl"

const idPrefix = "evt-"

// Entry is a generic append-only audit event. Kind plus the typed fields
// cover the common cases (llm_call, tool_call); Extra covers everything
// else without growing the struct forever.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	Actor      string `json:"actor,omitempty"`
	DocumentID int64  `json:"document_id,omitempty"`
	TopicID    int64  `json:"topic_id,omitempty"`

	Model        string `json:"model,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
	Response     string `json:"response,omitempty"`
	InputTokens  int64  `json:"input_tokens,omitempty"`
	OutputTokens int64  `json:"output_tokens,omitempty"`
	Error        string `json:"error,omitempty"`

	ToolName string `json:"tool_name,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Logger appends entries to one audit file. The zero value is unusable;
// construct with New.
type Logger struct {
	path string
}

// New returns a Logger that writes to FileName inside dir (normally the
// directory holding the SQLite database file).
func New(dir string) *Logger {
	return &Logger{path: filepath.Join(dir, FileName)}
}

func (l *Logger) ensureFile() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return fmt.Errorf("creating audit directory: %w", err)
	}
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking audit log: %w", err)
	}
	return os.WriteFile(l.path, []byte{}, 0644) //nolint:gosec // audit log is append-only and not sensitive beyond what callers put in Entry
}

// Append writes e as a single JSON line. Best-effort by convention: callers
// should never fail the operation they're auditing just because logging
// failed.
func (l *Logger) Append(e *Entry) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil entry")
	}
	if e.Kind == "" {
		return "", fmt.Errorf("kind is required")
	}
	if err := l.ensureFile(); err != nil {
		return "", err
	}

	if e.ID == "" {
		id, err := newID()
		if err != nil {
			return "", err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	} else {
		e.CreatedAt = e.CreatedAt.UTC()
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) //nolint:gosec // intended permissions
	if err != nil {
		return "", fmt.Errorf("opening audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return "", fmt.Errorf("writing audit entry: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("flushing audit log: %w", err)
	}
	return e.ID, nil
}

func newID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating audit id: %w", err)
	}
	return idPrefix + hex.EncodeToString(b[:]), nil
}
