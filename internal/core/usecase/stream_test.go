package usecase

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kirillkom/acceptance-verifier/internal/core/checklist"
	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

func TestStreamPersistsCompletedRun(t *testing.T) {
	repo := &verificationRepoFake{}
	storage := &storageFake{root: t.TempDir()}
	verifier := &verifierFake{events: doneEvents(93.33)}
	uc := NewStreamVerificationUseCase(repo, storage, verifier, 0, nil)

	seq, err := uc.Stream(context.Background(), "baut.pdf", "application/pdf", domain.DocumentTypeBAUT, bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var events []domain.ProgressEvent
	for event := range seq {
		events = append(events, event)
	}
	if len(events) != 2 {
		t.Fatalf("expected all events forwarded, got %d", len(events))
	}
	if events[0].UploadKey == "" || events[0].UploadKey != storage.savedKey || events[1].UploadKey != "" {
		t.Fatalf("expected upload key on the first event only, got %q and %q", events[0].UploadKey, events[1].UploadKey)
	}
	done := events[1]
	if done.Kind != domain.EventDone || done.VerificationID == "" {
		t.Fatalf("expected done event with verification id, got %+v", done)
	}
	if repo.created == nil || repo.created.ID != done.VerificationID || repo.created.Status != domain.VerificationAccepted {
		t.Fatalf("expected ACCEPTED record stored, got %+v", repo.created)
	}
	if !verifier.req.DiscardSource || verifier.req.SourcePath != filepath.Join(storage.root, storage.savedKey) {
		t.Fatalf("unexpected verification request %+v", verifier.req)
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("expected upload kept, deleted %v", storage.deleted)
	}
}

func TestStreamPersistFailureBecomesErrorEvent(t *testing.T) {
	repo := &verificationRepoFake{createErr: errors.New("db down")}
	storage := &storageFake{}
	uc := NewStreamVerificationUseCase(repo, storage, &verifierFake{events: doneEvents(50)}, 0, nil)

	seq, err := uc.Stream(context.Background(), "bact.pdf", "application/pdf", domain.DocumentTypeBACT, bytes.NewBufferString("x"))
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	var last domain.ProgressEvent
	for event := range seq {
		last = event
	}
	if last.Kind != domain.EventError || last.Err == nil {
		t.Fatalf("expected error event, got %+v", last)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != storage.savedKey {
		t.Fatalf("expected upload removed, deleted %v", storage.deleted)
	}
}

func TestStreamRejectsUnknownDocumentType(t *testing.T) {
	storage := &storageFake{}
	uc := NewStreamVerificationUseCase(&verificationRepoFake{}, storage, &verifierFake{}, 0, nil)

	_, err := uc.Stream(context.Background(), "x.pdf", "application/pdf", domain.DocumentType(""), bytes.NewBufferString("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if storage.savedKey != "" {
		t.Fatalf("expected nothing stored")
	}
}

func TestStreamAbandonedRemovesUpload(t *testing.T) {
	storage := &storageFake{root: t.TempDir()}
	repo := &verificationRepoFake{}
	verifier := NewVerifyDocumentUseCase(
		&openerFake{doc: domain.SourceDocument{PageCount: 3}},
		&rasterizerFake{},
		&pageClassifierFake{},
		scannerFake{verdict: domain.SignatureAbsent()},
		checklist.Default(),
		&summarizerFake{},
		&ocrFake{},
		VerifyOptions{WorkDir: t.TempDir()},
	)
	uc := NewStreamVerificationUseCase(repo, storage, verifier, 0, nil)

	seq, err := uc.Stream(context.Background(), "baut.pdf", "application/pdf", domain.DocumentTypeBAUT, bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	upload := filepath.Join(storage.root, storage.savedKey)
	if !fileExists(upload) {
		t.Fatalf("expected upload stored before streaming")
	}

	for event := range seq {
		if event.Stage == domain.StageRendering {
			break
		}
	}
	if fileExists(upload) {
		t.Fatalf("expected upload removed after abandonment")
	}
	if repo.created != nil {
		t.Fatalf("expected no record for an abandoned run")
	}
}

func TestDiscardUpload(t *testing.T) {
	storage := &storageFake{}
	uc := NewStreamVerificationUseCase(&verificationRepoFake{}, storage, &verifierFake{}, 0, nil)
	key := "3f1c2b9e-8a47-4d2e-9c3b-6a5f0e1d2c3b_doc.pdf"

	for _, bad := range []string{"../secrets", "abc_doc.pdf", "doc.pdf"} {
		if err := uc.DiscardUpload(context.Background(), bad); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("key %q: expected invalid input, got %v", bad, err)
		}
	}
	if err := uc.DiscardUpload(context.Background(), key); err != nil {
		t.Fatalf("DiscardUpload() error = %v", err)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != key {
		t.Fatalf("expected key deleted, got %v", storage.deleted)
	}
}

func TestDiscardUploadRefusesStoredRecordKey(t *testing.T) {
	const id = "3f1c2b9e-8a47-4d2e-9c3b-6a5f0e1d2c3b"
	key := id + "_doc.pdf"
	repo := &verificationRepoFake{record: &domain.Verification{ID: id, StorageKey: key}}
	storage := &storageFake{}
	uc := NewStreamVerificationUseCase(repo, storage, &verifierFake{}, 0, nil)

	if err := uc.DiscardUpload(context.Background(), key); !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for a stored record's file, got %v", err)
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("expected stored file kept, deleted %v", storage.deleted)
	}

	repo.record = nil
	repo.getErr = errors.New("db down")
	if err := uc.DiscardUpload(context.Background(), key); err == nil || domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("expected lookup failure to surface, got %v", err)
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("expected nothing deleted when lookup fails, deleted %v", storage.deleted)
	}
}
