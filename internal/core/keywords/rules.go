package keywords

import (
	"strings"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// Group is the priority band of a rule. Lower groups are evaluated first.
type Group int

const (
	GroupEvidencePhoto Group = iota + 1
	GroupMeasurementForm
	GroupReport
	GroupAdministrative
	GroupTechnical
	GroupGenericPhoto
)

func (g Group) String() string {
	switch g {
	case GroupEvidencePhoto:
		return "evidence_photo"
	case GroupMeasurementForm:
		return "measurement_form"
	case GroupReport:
		return "report"
	case GroupAdministrative:
		return "administrative"
	case GroupTechnical:
		return "technical"
	case GroupGenericPhoto:
		return "generic_photo"
	default:
		return "unknown"
	}
}

// Keyword is a phrase and the similarity it needs. A zero Threshold means the
// engine default.
type Keyword struct {
	Phrase    string
	Threshold float64
}

// Rule maps any of its keywords to Category. Resolve, when set, picks the
// category from the normalized text after a keyword matched.
type Rule struct {
	Group    Group
	Category domain.Category
	Keywords []Keyword
	Resolve  func(normalized string) domain.Category
}

func (r Rule) resolve(normalized string) domain.Category {
	if r.Resolve != nil {
		return r.Resolve(normalized)
	}
	return r.Category
}

func kw(phrase string, threshold float64) Keyword {
	return Keyword{Phrase: phrase, Threshold: threshold}
}

// DefaultRules returns the built-in rule list in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Group: GroupEvidencePhoto, Category: domain.CategoryFotoPengukuranOPM, Keywords: []Keyword{kw("foto pengukuran opm", 80)}},
		{Group: GroupEvidencePhoto, Category: domain.CategoryFotoKegiatan, Keywords: []Keyword{kw("kegiatan uji terima", 80), kw("dokumentasi test comm", 80)}},
		{Group: GroupEvidencePhoto, Category: domain.CategoryFotoMaterial, Keywords: []Keyword{kw("material terpasang", 80)}},
		{Group: GroupEvidencePhoto, Category: domain.CategoryFotoRollMeter, Keywords: []Keyword{kw("roll meter", 80), kw("fault locator", 80)}},
		{Group: GroupEvidencePhoto, Category: domain.CategoryFotoSurveyAddress, Keywords: []Keyword{kw("survey address", 80)}},

		{Group: GroupMeasurementForm, Category: domain.CategoryFormOPM, Keywords: []Keyword{kw("form opm", 80), kw("data pengukuran opm", 80), kw("hasil ukur opm", 80)}},

		{Group: GroupReport, Category: domain.CategoryBAUT, Keywords: []Keyword{kw("berita acara uji terima", 0), kw("baut", 90)}},
		{Group: GroupReport, Category: domain.CategoryBACT, Keywords: []Keyword{kw("berita acara commissioning test", 0), kw("bact", 90)}},
		{Group: GroupReport, Category: domain.CategoryLaporan100, Keywords: []Keyword{kw("laporan hasil pekerjaan", 0), kw("pekerjaan selesai 100", 0)}},
		{Group: GroupReport, Category: domain.CategoryLaporanUT, Keywords: []Keyword{kw("laporan uji terima", 0), kw("laporan ut", 0)}},
		{Group: GroupReport, Category: domain.CategoryBeritaAcaraBarangTiba, Keywords: []Keyword{kw("berita acara barang tiba", 0), kw("bba", 90)}},
		{Group: GroupReport, Category: domain.CategoryBALapangan, Keywords: []Keyword{kw("berita acara lapangan", 0)}},

		{Group: GroupAdministrative, Category: domain.CategorySuratPermintaan, Keywords: []Keyword{kw("surat permintaan uji terima", 0)}},
		{Group: GroupAdministrative, Category: domain.CategorySKTeam, Keywords: []Keyword{kw("sk team uji terima", 0)}},
		{Group: GroupAdministrative, Category: domain.CategoryNotaDinas, Keywords: []Keyword{kw("nota dinas pelaksanaan uji", 0)}},
		{Group: GroupAdministrative, Category: domain.CategoryDaftarHadirUT, Keywords: []Keyword{kw("daftar hadir uji terima", 0)}},
		{Group: GroupAdministrative, Category: domain.CategoryDaftarHadirCT, Keywords: []Keyword{kw("daftar hadir commissioning test", 0)}},

		{Group: GroupTechnical, Category: domain.CategoryRLD, Keywords: []Keyword{kw("as built drawing", 0), kw("red line drawing", 0), kw("rld", 0)}},
		{Group: GroupTechnical, Category: domain.CategoryBOQUT, Keywords: []Keyword{kw("bill of quantity", 0), kw("boq", 90)}, Resolve: resolveBOQ},
		{Group: GroupTechnical, Category: domain.CategoryOTDRReport, Keywords: []Keyword{kw("otdr report", 0), kw("pengukuran otdr", 0)}},

		{Group: GroupGenericPhoto, Category: domain.CategoryEvidencePhoto, Keywords: []Keyword{kw("foto", 75)}},
	}
}

// resolveBOQ splits bill-of-quantity pages into commissioning and acceptance
// variants. The bare "ct" substring check mirrors how the forms are labelled.
func resolveBOQ(normalized string) domain.Category {
	if strings.Contains(normalized, "commissioning") || strings.Contains(normalized, "ct") {
		return domain.CategoryBOQCT
	}
	return domain.CategoryBOQUT
}
