package invoice

import "sort"

// Record is one invoice fetched from the platform. Identity is the KSeF id
// derived from the package entry name; two records with the same id are the
// same invoice regardless of document contents.
type Record struct {
	KsefID   string
	Document *Document

	// Raw is the original XML of the package entry, retained for hashing in
	// verification links.
	Raw []byte
}

// Set is a collection of records deduplicated by KSeF id.
type Set map[string]Record

func NewSet() Set {
	return make(Set)
}

// Add inserts the record unless a record with the same id is already present.
func (s Set) Add(r Record) {
	if _, ok := s[r.KsefID]; !ok {
		s[r.KsefID] = r
	}
}

// Merge folds other into the set, duplicate ids collapse silently.
func (s Set) Merge(other Set) {
	for _, r := range other {
		s.Add(r)
	}
}

func (s Set) Contains(ksefID string) bool {
	_, ok := s[ksefID]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// IDs returns all KSeF ids in lexical order, for stable output.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
