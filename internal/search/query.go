package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Limits applied to Params.Limit.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params configures a search query.
type Params struct {
	Query    string // Free text matched against name, location and description
	Category string // Exact category filter (empty = all)
	Limit    int
}

// Result is the outcome of a search.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Facets []FacetCount `json:"categories,omitempty"`
}

// Hit is a single matching event.
type Hit struct {
	EventID    int64             `json:"event_id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a category and the number of hits in it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a query. Hits whose document id is not an event id are dropped.
func (s *SearchIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := clampLimit(params.Limit)

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	req.SortBy([]string{"-_score", FieldDate})
	req.Fields = []string{FieldName}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField(FieldName)
	req.AddFacet(FieldCategory, bleve.NewFacetRequest(FieldCategory, 20))

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		eventID, parseErr := ParseDocID(h.ID)
		if parseErr != nil {
			s.logger.Warn("skipping search hit with foreign id", "doc_id", h.ID)
			continue
		}
		hit := Hit{EventID: eventID, Score: h.Score}
		if n, ok := h.Fields[FieldName].(string); ok {
			hit.Name = n
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if facet, ok := res.Facets[FieldCategory]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Facets = append(result.Facets, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildQuery constructs the Bleve query from params.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	text := strings.TrimSpace(params.Query)
	if text != "" {
		nameMatch := bleve.NewMatchQuery(text)
		nameMatch.SetField(FieldName)
		nameMatch.SetBoost(3.0)

		locationMatch := bleve.NewMatchQuery(text)
		locationMatch.SetField(FieldLocation)
		locationMatch.SetBoost(1.5)

		descMatch := bleve.NewMatchQuery(text)
		descMatch.SetField(FieldDescription)

		// Typo tolerance on the name.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField(FieldName)
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, locationMatch, descMatch, fuzzy}

		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField(FieldName)
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Category != "" {
		cq := bleve.NewTermQuery(params.Category)
		cq.SetField(FieldCategory)
		queries = append(queries, cq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
