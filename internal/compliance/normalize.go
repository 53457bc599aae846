package compliance

import "strings"

// EmptyLabel is the canonical form of every empty-shelf alias.
const EmptyLabel = "empty"

// Normalizer canonicalizes product labels and names for comparison.
//
// Normalization lowercases, trims, replaces '-' and '_' with spaces, and
// maps known synonym sets to one canonical token. Missing or blank input
// canonicalizes to EmptyLabel, matching how detectors label bare shelf.
type Normalizer struct {
	synonyms map[string]string
}

// NewNormalizer builds a Normalizer with the built-in synonym table.
func NewNormalizer() *Normalizer {
	n := &Normalizer{synonyms: make(map[string]string)}
	n.AddSynonyms("coca cola", "coke", "coca-cola", "cocacola")
	n.AddSynonyms(EmptyLabel, "empty shelf", "empty space", "emptyspace", "empty_shelf", "empty_space")
	return n
}

// AddSynonyms registers aliases that canonicalize to the given form.
// The canonical form itself is folded first, so callers may pass it in
// any casing or punctuation.
func (n *Normalizer) AddSynonyms(canonical string, aliases ...string) {
	c := fold(canonical)
	n.synonyms[c] = c
	for _, a := range aliases {
		n.synonyms[fold(a)] = c
	}
}

// Normalize returns the canonical form of a product label or name.
func (n *Normalizer) Normalize(name string) string {
	f := fold(name)
	if f == "" {
		return EmptyLabel
	}
	if c, ok := n.synonyms[f]; ok {
		return c
	}
	return f
}

// IsEmpty reports whether a label denotes empty shelf space.
func (n *Normalizer) IsEmpty(label string) bool {
	return n.Normalize(label) == EmptyLabel
}

// fold applies the character-level part of normalization: lowercase, trim,
// and punctuation-to-space folding.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.TrimSpace(s)
}
