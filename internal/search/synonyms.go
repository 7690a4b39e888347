package search

import (
	"fmt"
	"sort"

	"github.com/blevesearch/bleve/v2"
)

// ExpandSynonymGroups converts the admin-entered synonym table into its
// fully bidirectional form. Each group is the union of the group key and
// its members; every member of a group maps to the sorted rest of that
// group. A term appearing in several groups merges them transitively
// through its own entry.
//
//	{"tomato": ["tomatoes", "番茄"]}
//
// expands to
//
//	{"tomato": ["tomatoes", "番茄"],
//	 "tomatoes": ["tomato", "番茄"],
//	 "番茄": ["tomato", "tomatoes"]}
func ExpandSynonymGroups(groups map[string][]string) map[string][]string {
	expanded := make(map[string][]string)

	for key, members := range groups {
		group := make(map[string]bool, len(members)+1)
		group[key] = true
		for _, m := range members {
			group[m] = true
		}

		for term := range group {
			for other := range group {
				if other == term {
					continue
				}
				expanded[term] = append(expanded[term], other)
			}
		}
	}

	for term, others := range expanded {
		sort.Strings(others)
		expanded[term] = dedupeSorted(others)
	}
	return expanded
}

func dedupeSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// synonymDocID names the synonym definition document for a term.
func synonymDocID(term string) string {
	return "synonym:" + term
}

// ApplySynonyms writes one synonym definition per expanded term and
// removes definitions for terms no longer present. previous is the
// last-applied expansion, nil on first application.
func (s *SearchIndex) ApplySynonyms(expanded, previous map[string][]string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	synIndex, ok := s.index.(bleve.SynonymIndex)
	if !ok {
		return fmt.Errorf("index does not support synonyms")
	}

	for term, others := range expanded {
		def := &bleve.SynonymDefinition{
			Input:    []string{term},
			Synonyms: others,
		}
		if err := synIndex.IndexSynonym(synonymDocID(term), synonymCollection, def); err != nil {
			return fmt.Errorf("index synonym %q: %w", term, err)
		}
	}

	for term := range previous {
		if _, still := expanded[term]; still {
			continue
		}
		if err := s.index.Delete(synonymDocID(term)); err != nil {
			return fmt.Errorf("delete stale synonym %q: %w", term, err)
		}
	}

	return nil
}
