package checklist

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

func pagesOf(classes ...domain.Category) []domain.PageRecord {
	pages := make([]domain.PageRecord, 0, len(classes))
	for i, c := range classes {
		pages = append(pages, domain.PageRecord{Index: i, FinalClass: c, Provenance: domain.ProvenanceModel})
	}
	return pages
}

func TestTemplateSizes(t *testing.T) {
	c := Default()
	baut, ok := c.Template(domain.DocumentTypeBAUT)
	if !ok || len(baut) != 15 {
		t.Fatalf("expected 15 BAUT items, got %d", len(baut))
	}
	bact, ok := c.Template(domain.DocumentTypeBACT)
	if !ok || len(bact) != 11 {
		t.Fatalf("expected 11 BACT items, got %d", len(bact))
	}
	if !baut[len(baut)-1].Signature || !bact[len(bact)-1].Signature {
		t.Fatalf("expected signature entry last in both templates")
	}
	for _, item := range baut {
		if item.DisplayName == "BA Lapangan" {
			t.Fatalf("expected field minutes not to be a required BAUT part")
		}
	}
	if DefaultMapping()["BA Lapangan"] != domain.CategoryBALapangan {
		t.Fatalf("expected field minutes mapping kept for custom templates")
	}
}

func TestCompareBAUTAllPartsWithoutSignature(t *testing.T) {
	pages := pagesOf(
		domain.CategoryBAUT, domain.CategorySuratPermintaan, domain.CategorySKTeam,
		domain.CategoryNotaDinas, domain.CategoryDaftarHadirUT, domain.CategoryLaporanUT,
		domain.CategoryRLD, domain.CategoryBOQUT, domain.CategoryOTDRReport, domain.CategoryFormOPM,
		domain.CategoryFotoKegiatan, domain.CategoryFotoMaterial, domain.CategoryFotoPengukuranOPM,
		domain.CategoryFotoRollMeter, domain.CategoryBAUT,
	)

	items, err := Default().Compare(pages, domain.DocumentTypeBAUT, domain.SignatureAbsent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 15 {
		t.Fatalf("expected 15 items, got %d", len(items))
	}
	for _, item := range items[:14] {
		if item.Status != domain.ItemOK {
			t.Fatalf("expected %q OK, got %s (%s)", item.DisplayName, item.Status, item.Note)
		}
	}
	last := items[14]
	if last.DisplayName != "Tanda Tangan Pejabat Berwenang" || last.Category != SignatureSection || last.Status != domain.ItemNotOK {
		t.Fatalf("unexpected signature item: %+v", last)
	}

	score := domain.Score(items)
	if score != 93.33 {
		t.Fatalf("expected score 93.33, got %v", score)
	}
	if domain.LevelFor(score, domain.DefaultAcceptThreshold) != domain.LevelGood {
		t.Fatalf("expected Good level")
	}
}

func TestCompareIsPureAndOrderIndependent(t *testing.T) {
	c := Default()
	a := pagesOf(domain.CategoryBACT, domain.CategoryOTDRReport, domain.CategoryUnknown)
	b := pagesOf(domain.CategoryUnknown, domain.CategoryOTDRReport, domain.CategoryBACT, domain.CategoryBACT)

	first, _ := c.Compare(a, domain.DocumentTypeBACT, domain.SignatureFoundOn(2))
	second, _ := c.Compare(a, domain.DocumentTypeBACT, domain.SignatureFoundOn(2))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical input")
	}
	reordered, _ := c.Compare(b, domain.DocumentTypeBACT, domain.SignatureFoundOn(2))
	if !reflect.DeepEqual(first, reordered) {
		t.Fatalf("expected page order and duplicates not to matter")
	}
	if first[len(first)-1].Status != domain.ItemOK {
		t.Fatalf("expected signature item OK when found")
	}
}

func TestCompareGenericPhotoSatisfiesPhotoItemsOnly(t *testing.T) {
	items, err := Default().Compare(pagesOf(domain.CategoryEvidencePhoto), domain.DocumentTypeBACT, domain.SignatureAbsent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range items {
		isPhoto := item.DisplayName == "Foto Dokumentasi Test Comm" ||
			item.DisplayName == "Foto Capture Survey Address" ||
			item.DisplayName == "Foto Pengukuran OPM"
		if isPhoto && (item.Status != domain.ItemOK || item.Note != NoteFoundViaPhoto) {
			t.Fatalf("expected photo item %q satisfied by generic photo, got %+v", item.DisplayName, item)
		}
		if !isPhoto && item.Status == domain.ItemOK {
			t.Fatalf("expected non-photo item %q not satisfied, got %+v", item.DisplayName, item)
		}
	}
}

func TestCompareUnmappedItemAlwaysFails(t *testing.T) {
	templates := map[domain.DocumentType][]TemplateItem{
		domain.DocumentTypeBAUT: {
			{Section: "Lampiran", DisplayName: "Foto Tiang Terpasang"},
			{Section: "Administrasi Proyek", DisplayName: "Berita Acara Uji Terima (BAUT)"},
			{Section: SignatureSection, DisplayName: "Tanda Tangan", Signature: true},
		},
	}
	c := NewComparator(templates, DefaultMapping())

	items, err := c.Compare(pagesOf(domain.CategoryEvidencePhoto, domain.CategoryBAUT), domain.DocumentTypeBAUT, domain.SignatureFoundOn(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Status != domain.ItemNotOK || items[0].Note != NoteUnmapped {
		t.Fatalf("expected unmapped item to fail, got %+v", items[0])
	}
	if items[1].Status != domain.ItemOK {
		t.Fatalf("expected mapped item OK, got %+v", items[1])
	}
	if len(items) != 3 || items[2].DisplayName != "Tanda Tangan" {
		t.Fatalf("expected signature item last, got %+v", items)
	}
}

func TestCompareUnknownDocumentType(t *testing.T) {
	items, err := Default().Compare(pagesOf(domain.CategoryBAUT), domain.DocumentType("VERIFIKASI_LAIN"), domain.SignatureAbsent())
	if !errors.Is(err, domain.ErrUnknownDocumentType) {
		t.Fatalf("expected ErrUnknownDocumentType, got %v", err)
	}
	if len(items) != 1 || items[0].Status != domain.ItemNotOK {
		t.Fatalf("expected a single error item, got %+v", items)
	}
}

func TestCompareSignatureErrorCountsAsMissing(t *testing.T) {
	items, _ := Default().Compare(nil, domain.DocumentTypeBACT, domain.SignatureFailed("decode page 2"))
	last := items[len(items)-1]
	if last.Status != domain.ItemNotOK || last.Note != "signature scan failed: decode page 2" {
		t.Fatalf("unexpected signature item: %+v", last)
	}
	if domain.Score(items) != 0 {
		t.Fatalf("expected score 0 with nothing detected, got %v", domain.Score(items))
	}
}
