package privacy

import (
	"strings"
	"testing"
)

func TestRedactCredentials(t *testing.T) {
	content := `api_key: "sk-abcdefghijklmnop"`
	out, counts := Redact(content)
	if counts.Credentials == 0 {
		t.Errorf("expected at least one credential redacted, counts=%+v", counts)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected [REDACTED] marker in output, got %q", out)
	}
}

func TestRedactHomePaths(t *testing.T) {
	content := "See /Users/alice/projects/kg for details."
	out, counts := Redact(content)
	if counts.Paths == 0 {
		t.Errorf("expected path redaction, counts=%+v", counts)
	}
	if !strings.Contains(out, "~/") {
		t.Errorf("expected anonymized path, got %q", out)
	}
}

func TestRedactRFC1918IPs(t *testing.T) {
	content := "The server runs at 192.168.1.5 in staging."
	out, counts := Redact(content)
	if counts.IPs == 0 {
		t.Errorf("expected an internal IP redacted, counts=%+v", counts)
	}
	if !strings.Contains(out, "[INTERNAL_IP]") {
		t.Errorf("expected [INTERNAL_IP] marker, got %q", out)
	}
}

func TestRedactTemporalDeictics(t *testing.T) {
	content := "We are currently migrating the database."
	out, counts := Redact(content)
	if counts.TemporalMarkers == 0 {
		t.Errorf("expected a temporal marker wrapped, counts=%+v", counts)
	}
	if !strings.Contains(out, "[TEMPORAL:") {
		t.Errorf("expected [TEMPORAL: marker, got %q", out)
	}
}

func TestRedactCollapsesBlankLines(t *testing.T) {
	content := "one\n\n\n\ntwo"
	out, _ := Redact(content)
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("expected triple+ blank lines collapsed, got %q", out)
	}
}

func TestStripTemporalMarkersRestoresBareText(t *testing.T) {
	out := StripTemporalMarkers("We are [TEMPORAL:currently] migrating.")
	if strings.Contains(out, "[TEMPORAL") {
		t.Errorf("expected marker stripped, got %q", out)
	}
	if !strings.Contains(out, "currently") {
		t.Errorf("expected bare text preserved, got %q", out)
	}
}

func TestValidateRedactsSurvivingCredential(t *testing.T) {
	out, warnings := Validate(`token: "abcd1234efgh5678"`)
	if len(warnings) == 0 {
		t.Error("expected a warning about the surviving credential")
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected credential redacted, got %q", out)
	}
}

func TestPromptSectionVariesByAudience(t *testing.T) {
	me := PromptSection(AudienceMe)
	team := PromptSection(AudienceTeam)
	public := PromptSection(AudiencePublic)
	if me == team || team == public || me == public {
		t.Error("expected distinct prompt sections per audience")
	}
}
