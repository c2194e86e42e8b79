package domain

// Category is the closed set of page content labels produced by classification.
type Category string

const (
	CategoryBAUT                  Category = "BAUT"
	CategoryBACT                  Category = "BACT"
	CategoryLaporan100            Category = "LAPORAN_100%"
	CategoryLaporanUT             Category = "LAPORAN_UT"
	CategoryBeritaAcaraBarangTiba Category = "BERITA_ACARA_BARANG_TIBA"
	CategoryBALapangan            Category = "BA_LAPANGAN"

	CategorySuratPermintaan Category = "SURAT_PERMINTAAN"
	CategorySKTeam          Category = "SK_TEAM"
	CategoryNotaDinas       Category = "NOTA_DINAS"
	CategoryDaftarHadirUT   Category = "DAFTAR_HADIR_UT"
	CategoryDaftarHadirCT   Category = "DAFTAR_HADIR_CT"

	CategoryRLD        Category = "RLD"
	CategoryBOQUT      Category = "BOQ_UT"
	CategoryBOQCT      Category = "BOQ_CT"
	CategoryOTDRReport Category = "OTDR_REPORT"
	CategoryFormOPM    Category = "FORM_OPM"

	CategoryFotoPengukuranOPM Category = "FOTO_PENGUKURAN_OPM"
	CategoryFotoKegiatan      Category = "FOTO_KEGIATAN"
	CategoryFotoMaterial      Category = "FOTO_MATERIAL"
	CategoryFotoRollMeter     Category = "FOTO_ROLL_METER"
	CategoryFotoSurveyAddress Category = "FOTO_SURVEY_ADDRESS"
	CategoryEvidencePhoto     Category = "EVIDENCE_PHOTO_UMUM"

	CategorySignature Category = "SIGNATURE"
	CategoryUnknown   Category = "UNKNOWN"
)

var knownCategories = map[Category]struct{}{
	CategoryBAUT:                  {},
	CategoryBACT:                  {},
	CategoryLaporan100:            {},
	CategoryLaporanUT:             {},
	CategoryBeritaAcaraBarangTiba: {},
	CategoryBALapangan:            {},
	CategorySuratPermintaan:       {},
	CategorySKTeam:                {},
	CategoryNotaDinas:             {},
	CategoryDaftarHadirUT:         {},
	CategoryDaftarHadirCT:         {},
	CategoryRLD:                   {},
	CategoryBOQUT:                 {},
	CategoryBOQCT:                 {},
	CategoryOTDRReport:            {},
	CategoryFormOPM:               {},
	CategoryFotoPengukuranOPM:     {},
	CategoryFotoKegiatan:          {},
	CategoryFotoMaterial:          {},
	CategoryFotoRollMeter:         {},
	CategoryFotoSurveyAddress:     {},
	CategoryEvidencePhoto:         {},
	CategorySignature:             {},
	CategoryUnknown:               {},
}

// IsKnown reports whether c belongs to the closed category set.
func (c Category) IsKnown() bool {
	_, ok := knownCategories[c]
	return ok
}

// ParseCategory coerces an arbitrary label into the closed set.
// Labels outside the set become CategoryUnknown.
func ParseCategory(label string) Category {
	c := Category(label)
	if c.IsKnown() {
		return c
	}
	return CategoryUnknown
}

// Categories returns every known category, UNKNOWN last.
func Categories() []Category {
	return []Category{
		CategoryBAUT, CategoryBACT, CategoryLaporan100, CategoryLaporanUT,
		CategoryBeritaAcaraBarangTiba, CategoryBALapangan,
		CategorySuratPermintaan, CategorySKTeam, CategoryNotaDinas,
		CategoryDaftarHadirUT, CategoryDaftarHadirCT,
		CategoryRLD, CategoryBOQUT, CategoryBOQCT, CategoryOTDRReport, CategoryFormOPM,
		CategoryFotoPengukuranOPM, CategoryFotoKegiatan, CategoryFotoMaterial,
		CategoryFotoRollMeter, CategoryFotoSurveyAddress, CategoryEvidencePhoto,
		CategorySignature, CategoryUnknown,
	}
}
