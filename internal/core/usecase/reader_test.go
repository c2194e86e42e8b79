package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

type exporterFake struct {
	report *domain.VerificationReport
	err    error
}

func (f *exporterFake) Export(report domain.VerificationReport) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.report = &report
	return []byte("xlsx"), nil
}

func (f *exporterFake) ContentType() string { return "application/test" }

func (f *exporterFake) FileExtension() string { return ".xlsx" }

func TestQueryDeleteRemovesStoredDocument(t *testing.T) {
	repo := &verificationRepoFake{record: &domain.Verification{ID: "ver-1", StorageKey: "ver-1_a.pdf"}}
	storage := &storageFake{}
	uc := NewVerificationQueryUseCase(repo, storage, &exporterFake{})

	if err := uc.Delete(context.Background(), "ver-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "ver-1_a.pdf" {
		t.Fatalf("expected stored document deleted, got %v", storage.deleted)
	}
	if repo.deletedID != "ver-1" {
		t.Fatalf("expected record deleted, got %q", repo.deletedID)
	}
}

func TestQueryGetNotFound(t *testing.T) {
	uc := NewVerificationQueryUseCase(&verificationRepoFake{}, &storageFake{}, &exporterFake{})

	_, err := uc.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrVerificationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQueryExport(t *testing.T) {
	report := domain.VerificationReport{DocumentType: domain.DocumentTypeBACT, Score: 72.73}
	repo := &verificationRepoFake{record: &domain.Verification{ID: "ver-9", Report: &report}}
	exporter := &exporterFake{}
	uc := NewVerificationQueryUseCase(repo, &storageFake{}, exporter)

	out, err := uc.Export(context.Background(), "ver-9")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if out.Filename != "verification_ver-9.xlsx" || out.ContentType != "application/test" || string(out.Data) != "xlsx" {
		t.Fatalf("unexpected export %+v", out)
	}
	if exporter.report == nil || exporter.report.Score != 72.73 {
		t.Fatalf("expected stored report exported")
	}
}

func TestQueryExportWithoutReport(t *testing.T) {
	repo := &verificationRepoFake{record: &domain.Verification{ID: "ver-q", Status: domain.VerificationQueued}}
	uc := NewVerificationQueryUseCase(repo, &storageFake{}, &exporterFake{})

	if _, err := uc.Export(context.Background(), "ver-q"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for pending verification, got %v", err)
	}
}

func TestQueryListClampsLimit(t *testing.T) {
	repo := &verificationRepoFake{record: &domain.Verification{ID: "ver-1"}}
	uc := NewVerificationQueryUseCase(repo, &storageFake{}, &exporterFake{})

	cases := []struct{ in, want int }{{0, DefaultListLimit}, {-3, DefaultListLimit}, {10, 10}, {10000, MaxListLimit}}
	for _, tc := range cases {
		out, err := uc.List(context.Background(), tc.in)
		if err != nil {
			t.Fatalf("List(%d) error = %v", tc.in, err)
		}
		if repo.listLimit != tc.want || len(out) != 1 {
			t.Fatalf("List(%d): expected limit %d, got %d (%d records)", tc.in, tc.want, repo.listLimit, len(out))
		}
	}
}
