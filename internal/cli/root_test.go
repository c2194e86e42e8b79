package cli

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"testing"

	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

type verifierFake struct {
	events []domain.ProgressEvent
	got    domain.VerificationRequest
}

func (f *verifierFake) Verify(_ context.Context, req domain.VerificationRequest) iter.Seq[domain.ProgressEvent] {
	f.got = req
	return func(yield func(domain.ProgressEvent) bool) {
		for _, e := range f.events {
			if !yield(e) {
				return
			}
		}
	}
}

func executeCmd(factory VerifierFactory, stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := newRootCmd(factory)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeFactory(v *verifierFake) VerifierFactory {
	return func(config.Config, *slog.Logger) (ports.DocumentVerifier, func(), error) {
		return v, func() {}, nil
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	stdout, _, err := executeCmd(fakeFactory(&verifierFake{}), "", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"verify", "classify-text", "checklist"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("expected %q in help output", name)
		}
	}
}

func TestVerifyPrintsReport(t *testing.T) {
	v := &verifierFake{events: []domain.ProgressEvent{
		{Kind: domain.EventProgress, Stage: domain.StageOpening, Message: "Opening document", Percent: 0},
		{Kind: domain.EventDone, Stage: domain.StageDone, Percent: 100, Report: &domain.VerificationReport{
			DocumentType: domain.DocumentTypeBACT,
			Score:        50,
			Level:        domain.LevelNeedsReview,
			Signature:    domain.SignatureAbsent(),
			Items: []domain.VerificationItemResult{
				{DisplayName: "Berita Acara Commissioning Test (BACT)", Status: domain.ItemOK, Note: "found"},
				{DisplayName: "Tanda Tangan Para Pihak", Status: domain.ItemNotOK, Note: "missing"},
			},
		}},
	}}

	stdout, stderr, err := executeCmd(fakeFactory(v), "", "verify", "--doc-type", "bact", "scan.pdf")
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if v.got.DocumentType != domain.DocumentTypeBACT || v.got.SourcePath != "scan.pdf" {
		t.Fatalf("unexpected request: %+v", v.got)
	}
	if v.got.MimeType != "application/pdf" {
		t.Fatalf("expected pdf mime type, got %q", v.got.MimeType)
	}
	if !strings.Contains(stderr, "[  0%] Opening document") {
		t.Fatalf("expected progress on stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "50.00 (NeedsReview)") || !strings.Contains(stdout, "Tanda Tangan Para Pihak") {
		t.Fatalf("unexpected report output:\n%s", stdout)
	}
}

func TestVerifyReturnsTerminalError(t *testing.T) {
	v := &verifierFake{events: []domain.ProgressEvent{
		{Kind: domain.EventError, Stage: domain.StageError, Message: "document cannot be opened", Percent: 0,
			Err: domain.WrapError(domain.ErrDocumentOpen, "open", errors.New("bad header"))},
	}}

	_, _, err := executeCmd(fakeFactory(v), "", "verify", "-q", "broken.pdf")
	if !domain.IsKind(err, domain.ErrDocumentOpen) {
		t.Fatalf("expected document open error, got %v", err)
	}
}

func TestClassifyTextReadsStdin(t *testing.T) {
	t.Setenv("KEYWORD_RULES_PATH", "")
	stdout, _, err := executeCmd(fakeFactory(&verifierFake{}), "BERITA ACARA UJI TERIMA\nNomor: 123", "classify-text")
	if err != nil {
		t.Fatalf("classify-text error: %v", err)
	}
	if !strings.HasPrefix(stdout, "BAUT") {
		t.Fatalf("expected BAUT, got %q", stdout)
	}
}

func TestClassifyTextUnknown(t *testing.T) {
	t.Setenv("KEYWORD_RULES_PATH", "")
	stdout, _, err := executeCmd(fakeFactory(&verifierFake{}), "", "classify-text", "lorem", "ipsum")
	if err != nil {
		t.Fatalf("classify-text error: %v", err)
	}
	if strings.TrimSpace(stdout) != string(domain.CategoryUnknown) {
		t.Fatalf("expected UNKNOWN, got %q", stdout)
	}
}

func TestChecklistPrintsTemplate(t *testing.T) {
	stdout, _, err := executeCmd(fakeFactory(&verifierFake{}), "", "checklist", "BAUT")
	if err != nil {
		t.Fatalf("checklist error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 16 {
		t.Fatalf("expected header plus 15 items, got %d lines", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], string(domain.CategorySignature)) {
		t.Fatalf("expected signature item last, got %q", lines[len(lines)-1])
	}

	_, _, err = executeCmd(fakeFactory(&verifierFake{}), "", "checklist", "INVOICE")
	if !errors.Is(err, domain.ErrUnknownDocumentType) {
		t.Fatalf("expected unknown document type, got %v", err)
	}
}
