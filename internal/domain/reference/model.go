// Package reference holds the controlled vocabularies and organisations that
// populate choice lists and resolve organisation links.
package reference

import "datasets/internal/core/entity"

// Category is a named controlled vocabulary.
type Category struct {
	entity.Dates `yaml:",inline"`
	Reference string `db:"reference" json:"reference" yaml:"reference"`
	Name      string `db:"name" json:"name" yaml:"name"`
}

// CategoryValue is one entry of a Category, identified by (prefix, reference).
type CategoryValue struct {
	entity.Dates `yaml:",inline"`
	Prefix            string `db:"prefix" json:"prefix" yaml:"prefix"`
	Reference         string `db:"reference" json:"reference" yaml:"reference"`
	Name              string `db:"name" json:"name" yaml:"name"`
	CategoryReference string `db:"category_reference" json:"category_reference" yaml:"category-reference"`
}

// WithDefaultPrefix fills an empty prefix with the owning category's
// reference, which is how values are identified when no prefix is given.
func (v CategoryValue) WithDefaultPrefix() CategoryValue {
	if v.Prefix == "" {
		v.Prefix = v.CategoryReference
	}
	return v
}

// SameValue reports whether v and o share the (prefix, reference) identity.
func (v CategoryValue) SameValue(o CategoryValue) bool {
	return v.Prefix == o.Prefix && v.Reference == o.Reference
}

// Organisation is a body that records can be attributed to.
// Organisation holds the "prefix:reference" identifier, e.g. local-authority:BUC.
type Organisation struct {
	entity.Dates `yaml:",inline"`
	Organisation       string  `db:"organisation" json:"organisation" yaml:"organisation"`
	Name               string  `db:"name" json:"name" yaml:"name"`
	LocalAuthorityType *string `db:"local_authority_type" json:"local_authority_type,omitempty" yaml:"local-authority-type"`
	Entity             *int64  `db:"entity" json:"entity,omitempty" yaml:"entity"`
}

// Choice is a (value, label) pair offered by a selector.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
