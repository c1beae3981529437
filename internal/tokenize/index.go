package tokenize

import "docsmcp/pkg/models"

// IndexReference populates ref.Tokens from its title, identifier (ID), URL
// and abstract — the four fields spec §4.6 names. Returns the same
// reference for chaining.
func IndexReference(ref models.Reference) models.Reference {
	ref.Tokens = Set(
		Tokens(ref.Title),
		Tokens(ref.ID),
		Tokens(ref.URL),
		Tokens(ref.Abstract),
	)
	return ref
}

// BuildIndex tokenizes every reference in refs, in place semantics via
// return (references are small value types, not pointers).
func BuildIndex(refs []models.Reference) []models.Reference {
	out := make([]models.Reference, len(refs))
	for i, r := range refs {
		out[i] = IndexReference(r)
	}
	return out
}
