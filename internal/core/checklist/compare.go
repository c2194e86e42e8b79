package checklist

import (
	"fmt"
	"strings"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

const (
	NoteFound         = "found"
	NoteFoundViaPhoto = "found as generic photo evidence"
	NoteMissing       = "not found"
	NoteUnmapped      = "no page category is mapped to this item"
)

// Comparator scores classified pages against a document type's checklist.
// It is read-only after construction.
type Comparator struct {
	templates map[domain.DocumentType][]TemplateItem
	mapping   map[string]domain.Category
}

// NewComparator builds a comparator over explicit tables.
func NewComparator(templates map[domain.DocumentType][]TemplateItem, mapping map[string]domain.Category) *Comparator {
	return &Comparator{templates: templates, mapping: mapping}
}

// Default builds a comparator over the built-in tables.
func Default() *Comparator {
	return NewComparator(DefaultTemplates(), DefaultMapping())
}

// Template returns the checklist for docType.
func (c *Comparator) Template(docType domain.DocumentType) ([]TemplateItem, bool) {
	items, ok := c.templates[docType]
	if !ok || len(items) == 0 {
		return nil, false
	}
	return append([]TemplateItem(nil), items...), true
}

// Compare returns one result per template item in template order, with the
// signature requirement last. An unknown document type yields a single error
// item and ErrUnknownDocumentType.
func (c *Comparator) Compare(pages []domain.PageRecord, docType domain.DocumentType, verdict domain.SignatureVerdict) ([]domain.VerificationItemResult, error) {
	template, ok := c.Template(docType)
	if !ok {
		return []domain.VerificationItemResult{{
			DisplayName: "Error",
			Category:    "Error",
			Status:      domain.ItemNotOK,
			Note:        fmt.Sprintf("document type %q is not supported", docType),
		}}, domain.WrapError(domain.ErrUnknownDocumentType, "compare checklist", fmt.Errorf("document type %q", docType))
	}

	detected := make(map[domain.Category]struct{}, len(pages))
	for _, p := range pages {
		detected[p.FinalClass] = struct{}{}
	}
	_, genericPhoto := detected[domain.CategoryEvidencePhoto]

	results := make([]domain.VerificationItemResult, 0, len(template))
	signatureName := ""
	for _, item := range template {
		if item.Signature {
			signatureName = item.DisplayName
			continue
		}
		results = append(results, c.evaluate(item, detected, genericPhoto))
	}
	if signatureName == "" {
		signatureName = "Tanda Tangan"
	}
	results = append(results, signatureItem(signatureName, verdict))
	return results, nil
}

func (c *Comparator) evaluate(item TemplateItem, detected map[domain.Category]struct{}, genericPhoto bool) domain.VerificationItemResult {
	result := domain.VerificationItemResult{
		DisplayName: item.DisplayName,
		Category:    item.Section,
		Status:      domain.ItemNotOK,
		Note:        NoteMissing,
	}

	target, mapped := c.mapping[item.DisplayName]
	if !mapped {
		// Unmapped items fail even when photo evidence exists.
		result.Note = NoteUnmapped
		return result
	}
	if _, ok := detected[target]; ok {
		result.Status = domain.ItemOK
		result.Note = NoteFound
		return result
	}
	if genericPhoto && strings.Contains(item.DisplayName, "Foto") {
		result.Status = domain.ItemOK
		result.Note = NoteFoundViaPhoto
	}
	return result
}

func signatureItem(name string, verdict domain.SignatureVerdict) domain.VerificationItemResult {
	result := domain.VerificationItemResult{
		DisplayName: name,
		Category:    SignatureSection,
		Status:      domain.ItemNotOK,
	}
	switch verdict.Status {
	case domain.SignatureFound:
		result.Status = domain.ItemOK
		result.Note = fmt.Sprintf("signature mark found on page %d", verdict.Page+1)
	case domain.SignatureError:
		result.Note = "signature scan failed: " + verdict.Reason
	default:
		result.Note = "no signature mark found"
	}
	return result
}
