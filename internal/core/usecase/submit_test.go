package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

func TestSubmitSuccess(t *testing.T) {
	repo := &verificationRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewSubmitVerificationUseCase(repo, storage, queue)

	v, err := uc.Submit(context.Background(), "laporan uji terima.pdf", "application/pdf", domain.DocumentTypeBAUT, bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if v.ID == "" || v.Status != domain.VerificationQueued {
		t.Fatalf("expected queued record with id, got %+v", v)
	}
	if repo.created == nil || repo.created.DocumentType != domain.DocumentTypeBAUT {
		t.Fatalf("expected repo.Create call, got %+v", repo.created)
	}
	if queue.requestedID != v.ID {
		t.Fatalf("expected queued id %s, got %s", v.ID, queue.requestedID)
	}
	if !strings.HasSuffix(storage.savedKey, "_laporan_uji_terima.pdf") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if storage.savedBody != "%PDF" {
		t.Fatalf("expected saved body, got %q", storage.savedBody)
	}
}

func TestSubmitRejectsUnknownDocumentType(t *testing.T) {
	storage := &storageFake{}
	uc := NewSubmitVerificationUseCase(&verificationRepoFake{}, storage, &queueFake{})

	_, err := uc.Submit(context.Background(), "a.pdf", "application/pdf", domain.DocumentType("VERIFIKASI_X"), bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("expected nothing stored")
	}
}

func TestSubmitQueueError(t *testing.T) {
	uc := NewSubmitVerificationUseCase(&verificationRepoFake{}, &storageFake{}, &queueFake{publishErr: errors.New("queue down")})

	_, err := uc.Submit(context.Background(), "a.pdf", "application/pdf", domain.DocumentTypeBACT, bytes.NewBufferString("x"))
	if err == nil || !strings.Contains(err.Error(), "publish verification request") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"BAUT Juni.pdf":    "BAUT_Juni.pdf",
		"":                 "document.pdf",
		"ø.pdf":            "_.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestValidateStorageKey(t *testing.T) {
	for _, bad := range []string{"", "../x", "a/b", ".hidden"} {
		if err := validateStorageKey(bad); err == nil {
			t.Fatalf("expected %q rejected", bad)
		}
	}
	if err := validateStorageKey("0b7c_doc.pdf"); err != nil {
		t.Fatalf("expected plain key accepted, got %v", err)
	}
}
