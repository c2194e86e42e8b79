// Package checklist holds the required-parts tables for each document type and
// compares classified pages against them.
package checklist

import "github.com/kirillkom/acceptance-verifier/internal/core/domain"

// SignatureSection is the section of the terminal signature requirement.
const SignatureSection = "Validasi Akhir"

// TemplateItem is one required document part. Signature marks the terminal
// signature requirement, which is satisfied by the signature scan rather than
// by a page class.
type TemplateItem struct {
	Section     string
	DisplayName string
	Signature   bool
}

// The field minutes (BA Lapangan) are classified but not a required BAUT part;
// their name mapping stays for custom templates that list them.
var bautTemplate = []TemplateItem{
	{Section: "Administrasi Proyek", DisplayName: "Berita Acara Uji Terima (BAUT)"},
	{Section: "Administrasi Proyek", DisplayName: "Surat Permintaan Uji Terima dari Mitra"},
	{Section: "Administrasi Proyek", DisplayName: "SK/Penunjukan Team Uji Terima"},
	{Section: "Administrasi Proyek", DisplayName: "Nota Dinas Pelaksanaan Uji Terima"},
	{Section: "Administrasi Proyek", DisplayName: "Daftar Hadir Uji Terima"},
	{Section: "Administrasi Proyek", DisplayName: "Laporan Uji Terima"},

	{Section: "Lampiran Teknis & Pengukuran", DisplayName: "As-Built Drawing / Red Line Drawing"},
	{Section: "Lampiran Teknis & Pengukuran", DisplayName: "Bill of Quantity (BoQ) UT"},
	{Section: "Lampiran Teknis & Pengukuran", DisplayName: "OTDR Report"},
	{Section: "Lampiran Teknis & Pengukuran", DisplayName: "Form OPM"},

	{Section: "Lampiran Eviden Foto & Material", DisplayName: "Foto Kegiatan Uji Terima"},
	{Section: "Lampiran Eviden Foto & Material", DisplayName: "Foto Material terpasang sesuai BOQ"},
	{Section: "Lampiran Eviden Foto & Material", DisplayName: "Foto Pengukuran OPM"},
	{Section: "Lampiran Eviden Foto & Material", DisplayName: "Foto Roll Meter / Fault Locator"},

	{Section: SignatureSection, DisplayName: "Tanda Tangan Pejabat Berwenang", Signature: true},
}

var bactTemplate = []TemplateItem{
	{Section: "Administrasi Pengujian", DisplayName: "Berita Acara Test Commissioning (BACT)"},
	{Section: "Administrasi Pengujian", DisplayName: "Daftar Hadir Test Commissioning"},

	{Section: "Lampiran Teknis & Pengujian", DisplayName: "Laporan Hasil Pekerjaan Selesai 100%"},
	{Section: "Lampiran Teknis & Pengujian", DisplayName: "BOQ CT"},
	{Section: "Lampiran Teknis & Pengujian", DisplayName: "Berita Acara Barang Tiba (BBA)"},
	{Section: "Lampiran Teknis & Pengujian", DisplayName: "OTDR Report"},
	{Section: "Lampiran Teknis & Pengujian", DisplayName: "Red Line Drawing (RLD)"},

	{Section: "Lampiran Eviden", DisplayName: "Foto Dokumentasi Test Comm"},
	{Section: "Lampiran Eviden", DisplayName: "Foto Capture Survey Address"},
	{Section: "Lampiran Eviden", DisplayName: "Foto Pengukuran OPM"},

	{Section: SignatureSection, DisplayName: "Tanda Tangan Para Pihak", Signature: true},
}

// categoryByName resolves template display names to page categories.
var categoryByName = map[string]domain.Category{
	"Berita Acara Uji Terima (BAUT)":         domain.CategoryBAUT,
	"Laporan Hasil Pekerjaan Selesai 100%":   domain.CategoryLaporan100,
	"Surat Permintaan Uji Terima dari Mitra": domain.CategorySuratPermintaan,
	"SK/Penunjukan Team Uji Terima":          domain.CategorySKTeam,
	"Nota Dinas Pelaksanaan Uji Terima":      domain.CategoryNotaDinas,
	"Daftar Hadir Uji Terima":                domain.CategoryDaftarHadirUT,
	"BA Lapangan":                            domain.CategoryBALapangan,
	"As-Built Drawing / Red Line Drawing":    domain.CategoryRLD,
	"Bill of Quantity (BoQ) UT":              domain.CategoryBOQUT,
	"Laporan Uji Terima":                     domain.CategoryLaporanUT,
	"OTDR Report":                            domain.CategoryOTDRReport,
	"Form OPM":                               domain.CategoryFormOPM,
	"Foto Kegiatan Uji Terima":               domain.CategoryFotoKegiatan,
	"Foto Material terpasang sesuai BOQ":     domain.CategoryFotoMaterial,
	"Foto Pengukuran OPM":                    domain.CategoryFotoPengukuranOPM,
	"Foto Roll Meter / Fault Locator":        domain.CategoryFotoRollMeter,
	"Berita Acara Test Commissioning (BACT)": domain.CategoryBACT,
	"Daftar Hadir Test Commissioning":        domain.CategoryDaftarHadirCT,
	"BOQ CT":                                 domain.CategoryBOQCT,
	"Berita Acara Barang Tiba (BBA)":         domain.CategoryBeritaAcaraBarangTiba,
	"Red Line Drawing (RLD)":                 domain.CategoryRLD,
	"Foto Dokumentasi Test Comm":             domain.CategoryFotoKegiatan,
	"Foto Capture Survey Address":            domain.CategoryFotoSurveyAddress,
	"Tanda Tangan Pejabat Berwenang":         domain.CategorySignature,
	"Tanda Tangan Para Pihak":                domain.CategorySignature,
}

// DefaultTemplates returns a fresh copy of the built-in tables.
func DefaultTemplates() map[domain.DocumentType][]TemplateItem {
	return map[domain.DocumentType][]TemplateItem{
		domain.DocumentTypeBAUT: append([]TemplateItem(nil), bautTemplate...),
		domain.DocumentTypeBACT: append([]TemplateItem(nil), bactTemplate...),
	}
}

// DefaultMapping returns a fresh copy of the display name to category table.
func DefaultMapping() map[string]domain.Category {
	out := make(map[string]domain.Category, len(categoryByName))
	for name, c := range categoryByName {
		out[name] = c
	}
	return out
}
