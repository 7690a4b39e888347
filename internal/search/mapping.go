package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// synonymCollection is the bleve synonym collection all definitions are
// written to.
const synonymCollection = "recipes"

// synonymSourceName links field mappings to the synonym collection.
const synonymSourceName = "recipe-synonyms"

// buildIndexMapping creates the Bleve index mapping for recipe documents.
//
// The mapping is designed with these priorities:
//  1. Full-text search on recipe names, the primary target
//  2. Secondary matches on main ingredient names
//  3. Exact keyword matching on tag names for filtering
//  4. Synonym expansion on name and main_ingredients, so "tomatoes"
//     finds what "tomato" finds
//
// The simple analyzer (lowercase, letter tokens, no stemming) is used
// instead of a language analyzer because recipe and ingredient names
// are short noun phrases, often not English.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	if err := indexMapping.AddSynonymSource(synonymSourceName, map[string]interface{}{
		"collection": synonymCollection,
		"analyzer":   simple.Name,
	}); err != nil {
		return nil, err
	}

	docMapping := bleve.NewDocumentMapping()

	// Name - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.SynonymSource = synonymSourceName
	nameFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Main ingredient names - secondary search target
	mainIngFieldMapping := bleve.NewTextFieldMapping()
	mainIngFieldMapping.Analyzer = simple.Name
	mainIngFieldMapping.SynonymSource = synonymSourceName
	mainIngFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("main_ingredients", mainIngFieldMapping)

	// Tags - keyword analyzer keeps multi-word tag names intact for
	// exact term filtering
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping, nil
}
