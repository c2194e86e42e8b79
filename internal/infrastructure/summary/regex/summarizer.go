// Package regex builds a narrative summary by pattern-matching well-known
// fields of an acceptance report.
package regex

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/infrastructure/summary"
)

const (
	DefaultContractor = "PT. Telkom Akses"
	DefaultOwner      = "PT. Telkom Indonesia, Tbk."
)

var (
	titlePattern      = regexp.MustCompile(`(?is)(BERITA ACARA UJI TERIMA|PROYEK|PEKERJAAN)(.{0,250})`)
	contractPattern   = regexp.MustCompile(`(?is)\b(?:KONTRAK|SURAT PESANAN|SP)\b\s*(?:No\.?|Nomor)?\s*:?\s*(.*?)(?:\n|WITEL|PELAKSANA)`)
	locationPattern   = regexp.MustCompile(`(?is)LOKASI\s*:?\s*(.*?)(?:\n|PELAKSANA|WITEL)`)
	contractorPattern = regexp.MustCompile(`(?is)PELAKSANA\s*:?\s*(.*?)(?:\n|TANGGAL|PADA HARI INI)`)
	datePattern       = regexp.MustCompile(`(?i)\d{1,2}\s*(?:Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s*\d{4}`)
	attenuationRegexp = regexp.MustCompile(`(?is)redaman.*?(\d+[.,]\d+)\s*dB`)
	groundingPattern  = regexp.MustCompile(`(?i)(\d+[.,]\d+)\s*Ohm`)
	conclusionPattern = regexp.MustCompile(`(?i)\b(DITERIMA|OK|BAIK|LULUS|SESUAI)\b`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// Facts are the fields lifted from the document pages. Empty fields were not
// found.
type Facts struct {
	Title       string
	Contract    string
	Location    string
	Contractor  string
	Owner       string
	Date        string
	Attenuation string
	Grounding   string
	Conclusion  string
}

type Summarizer struct{}

var _ ports.Summarizer = Summarizer{}

func New() Summarizer {
	return Summarizer{}
}

func (Summarizer) Summarize(ctx context.Context, texts []string, classes []domain.Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return summary.RenderMarkdown(Extract(texts, classes).Markdown())
}

// Extract reads the fields from the main report page (BAUT, then BACT, then
// LAPORAN_UT, then the first page) and the measurement pages.
func Extract(texts []string, classes []domain.Category) Facts {
	pageOf := func(targets ...domain.Category) (string, bool) {
		for _, target := range targets {
			for i, c := range classes {
				if c == target && i < len(texts) {
					return texts[i], true
				}
			}
		}
		return "", false
	}

	main, ok := pageOf(domain.CategoryBAUT, domain.CategoryBACT, domain.CategoryLaporanUT)
	if !ok && len(texts) > 0 {
		main = texts[0]
	}
	full := collapse(strings.Join(texts, " "))

	facts := Facts{Contractor: DefaultContractor, Owner: DefaultOwner}
	if m := titlePattern.FindString(main); m != "" {
		facts.Title = collapse(m)
	}
	if m := contractPattern.FindStringSubmatch(main); m != nil {
		facts.Contract = strings.TrimSpace(tagPattern.ReplaceAllString(m[1], ""))
	}
	if m := locationPattern.FindStringSubmatch(main); m != nil {
		facts.Location = collapse(m[1])
	}
	if m := contractorPattern.FindStringSubmatch(main); m != nil {
		if v := collapse(m[1]); v != "" {
			facts.Contractor = v
		}
	}
	facts.Date = datePattern.FindString(main)

	measurements, ok := pageOf(domain.CategoryFormOPM, domain.CategoryFotoPengukuranOPM)
	if !ok {
		measurements = full
	}
	if m := attenuationRegexp.FindStringSubmatch(measurements); m != nil {
		facts.Attenuation = m[1]
	}
	if m := groundingPattern.FindStringSubmatch(full); m != nil {
		facts.Grounding = m[1]
	}
	if m := conclusionPattern.FindStringSubmatch(main); m != nil {
		facts.Conclusion = strings.ToUpper(m[1])
	}
	return facts
}

// Markdown lays the facts out as the narrative summary.
func (f Facts) Markdown() string {
	var b strings.Builder
	esc := summary.EscapeMarkdown

	b.WriteString("## Title\n\n")
	b.WriteString(orDefault(esc(f.Title), "Document title not found.") + "\n\n")

	b.WriteString("## Background\n\n")
	if f.Contract != "" {
		fmt.Fprintf(&b, "- Contract No. %s\n", esc(f.Contract))
	} else {
		b.WriteString("- Contract number not found.\n")
	}
	fmt.Fprintf(&b, "- Scope: OSP FTTH installation in %s\n", orDefault(esc(f.Location), "an unspecified area"))
	fmt.Fprintf(&b, "- Contractor: **%s**, owner: **%s**\n\n", esc(f.Contractor), esc(f.Owner))

	b.WriteString("## Key points\n\n")
	if f.Attenuation != "" {
		fmt.Fprintf(&b, "- Attenuation test result: %s dB\n", f.Attenuation)
	} else {
		b.WriteString("- Attenuation data not available.\n")
	}
	if f.Grounding != "" {
		fmt.Fprintf(&b, "- Grounding measurement: %s Ohm\n", f.Grounding)
	} else {
		b.WriteString("- Grounding data not available.\n")
	}
	fmt.Fprintf(&b, "- Acceptance test date: %s\n\n", orDefault(esc(f.Date), "not stated"))

	b.WriteString("## Conclusion\n\n")
	if f.Conclusion != "" {
		fmt.Fprintf(&b, "- Work declared **%s**.\n", f.Conclusion)
	} else {
		b.WriteString("- Work status is not stated explicitly.\n")
	}
	return b.String()
}

func collapse(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
