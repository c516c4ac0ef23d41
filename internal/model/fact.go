package model

import (
	"fmt"
	"strings"

	"github.com/and161185/factshare/internal/errs"
)

// Category tags a fact.
type Category string

const (
	CategoryNutritional Category = "Nutritional"
	CategoryHistorical  Category = "Historical"
	CategoryFunFact     Category = "Fun Fact"
	CategoryCulinary    Category = "Culinary"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryNutritional, CategoryHistorical, CategoryFunFact, CategoryCulinary}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory accepts a category name case-insensitively; "fun-fact" and "fun_fact" also match.
func ParseCategory(s string) (Category, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, k := range Categories {
		if strings.EqualFold(norm, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", errs.ErrValidation, s)
}

// FactDraft is the payload of a create request.
type FactDraft struct {
	Title    string
	Content  string
	Category Category
}

// Normalize trims surrounding whitespace from text fields.
func (d FactDraft) Normalize() FactDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	return d
}

// Validate checks that all fields are present and the category is known.
func (d FactDraft) Validate() error {
	d = d.Normalize()
	switch {
	case d.Title == "":
		return fmt.Errorf("%w: title is required", errs.ErrValidation)
	case d.Content == "":
		return fmt.Errorf("%w: content is required", errs.ErrValidation)
	case !d.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", errs.ErrValidation, d.Category)
	}
	return nil
}

// FactPatch is a partial update; nil fields are left untouched.
type FactPatch struct {
	Title    *string
	Content  *string
	Category *Category
}

// Empty reports whether the patch changes nothing.
func (p FactPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil
}

// Normalize trims surrounding whitespace from the set text fields.
func (p FactPatch) Normalize() FactPatch {
	if p.Title != nil {
		s := strings.TrimSpace(*p.Title)
		p.Title = &s
	}
	if p.Content != nil {
		s := strings.TrimSpace(*p.Content)
		p.Content = &s
	}
	return p
}

// Validate rejects empty patches and set fields that would break a fact.
func (p FactPatch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("%w: nothing to update", errs.ErrValidation)
	}
	p = p.Normalize()
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", errs.ErrValidation)
	}
	if p.Content != nil && *p.Content == "" {
		return fmt.Errorf("%w: content cannot be empty", errs.ErrValidation)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", errs.ErrValidation, *p.Category)
	}
	return nil
}
