package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for event documents.
//
// Name, location and description are analyzed in English so "concerts"
// matches "concert". Category and date are single keyword terms used as
// exact filters.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields ---

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(FieldName, nameFieldMapping)

	// Location keeps place names intact; stemming "Downtown" helps nobody.
	locationFieldMapping := bleve.NewTextFieldMapping()
	locationFieldMapping.Analyzer = simple.Name
	locationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(FieldLocation, locationFieldMapping)

	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(FieldDescription, descFieldMapping)

	// --- Keyword fields ---

	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = keyword.Name
	categoryFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(FieldCategory, categoryFieldMapping)

	dateFieldMapping := bleve.NewTextFieldMapping()
	dateFieldMapping.Analyzer = keyword.Name
	dateFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(FieldDate, dateFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
