package elasticsearch

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
)

// ErrInvalidQuery reports a query tree that cannot be translated.
var ErrInvalidQuery = fmt.Errorf("%w: invalid query", ErrInvalidArgument)

// QueryBuilder translates domain query trees into the service's query DSL.
type QueryBuilder struct{}

// NewQueryBuilder creates a new query builder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// SearchBody renders a full search request body. Totals are always tracked
// exactly.
func (qb *QueryBuilder) SearchBody(req domain.SearchRequest) (map[string]any, error) {
	body := map[string]any{"track_total_hits": true}

	if req.Query != nil {
		query, err := qb.Build(req.Query)
		if err != nil {
			return nil, err
		}
		body["query"] = query
	}

	if req.Size != nil {
		if *req.Size < 0 {
			return nil, fmt.Errorf("%w: negative size", ErrInvalidQuery)
		}
		body["size"] = *req.Size
	}
	if req.From < 0 {
		return nil, fmt.Errorf("%w: negative from", ErrInvalidQuery)
	}
	if req.From > 0 {
		body["from"] = req.From
	}

	if len(req.Sort) > 0 {
		sorts := make([]map[string]any, 0, len(req.Sort))
		for _, s := range req.Sort {
			if s.Field == "" {
				return nil, fmt.Errorf("%w: sort field is empty", ErrInvalidQuery)
			}
			order := s.Order
			if order == "" {
				order = domain.SortAsc
			}
			sorts = append(sorts, map[string]any{s.Field: map[string]any{"order": order}})
		}
		body["sort"] = sorts
	}

	if len(req.Aggregations) > 0 {
		aggs := make(map[string]any, len(req.Aggregations))
		for name, agg := range req.Aggregations {
			if agg.Field == "" {
				return nil, fmt.Errorf("%w: aggregation %s has no field", ErrInvalidQuery, name)
			}
			terms := map[string]any{"field": agg.Field}
			if agg.Size > 0 {
				terms["size"] = agg.Size
			}
			aggs[name] = map[string]any{"terms": terms}
		}
		body["aggs"] = aggs
	}

	return body, nil
}

// Build translates one query node and its children.
func (qb *QueryBuilder) Build(q domain.Query) (map[string]any, error) {
	switch node := q.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil query", ErrInvalidQuery)
	case domain.MatchAllQuery:
		return map[string]any{"match_all": map[string]any{}}, nil
	case domain.MatchQuery:
		return qb.buildMatch(node)
	case domain.BoolQuery:
		return qb.buildBool(node)
	case domain.RangeQuery:
		return qb.buildRange(node)
	case domain.TermQuery:
		if node.Field == "" {
			return nil, fmt.Errorf("%w: term without field", ErrInvalidQuery)
		}
		return map[string]any{"term": map[string]any{node.Field: node.Value}}, nil
	case domain.TermsQuery:
		if node.Field == "" || len(node.Values) == 0 {
			return nil, fmt.Errorf("%w: terms needs a field and values", ErrInvalidQuery)
		}
		return map[string]any{"terms": map[string]any{node.Field: node.Values}}, nil
	case domain.GeoShapeQuery:
		return qb.buildGeoShape(node)
	case domain.MoreLikeThisQuery:
		return qb.buildMoreLikeThis(node)
	case domain.ScriptQuery:
		return qb.buildScript(node)
	case domain.PercolateQuery:
		return qb.buildPercolate(node)
	default:
		return nil, fmt.Errorf("%w: unsupported node %T", ErrInvalidQuery, q)
	}
}

func (qb *QueryBuilder) buildMatch(q domain.MatchQuery) (map[string]any, error) {
	if q.Field == "" {
		return nil, fmt.Errorf("%w: match without field", ErrInvalidQuery)
	}
	if q.Operator == "" {
		return map[string]any{"match": map[string]any{q.Field: q.Value}}, nil
	}
	return map[string]any{"match": map[string]any{
		q.Field: map[string]any{"query": q.Value, "operator": q.Operator},
	}}, nil
}

func (qb *QueryBuilder) buildBool(q domain.BoolQuery) (map[string]any, error) {
	clauses := map[string]any{}
	for _, group := range []struct {
		name    string
		queries []domain.Query
	}{
		{"must", q.Must},
		{"must_not", q.MustNot},
		{"filter", q.Filter},
		{"should", q.Should},
	} {
		if len(group.queries) == 0 {
			continue
		}
		built := make([]map[string]any, 0, len(group.queries))
		for _, child := range group.queries {
			b, err := qb.Build(child)
			if err != nil {
				return nil, fmt.Errorf("bool.%s: %w", group.name, err)
			}
			built = append(built, b)
		}
		clauses[group.name] = built
	}
	return map[string]any{"bool": clauses}, nil
}

func (qb *QueryBuilder) buildRange(q domain.RangeQuery) (map[string]any, error) {
	if q.Field == "" {
		return nil, fmt.Errorf("%w: range without field", ErrInvalidQuery)
	}
	bounds := map[string]any{}
	if q.Gte != nil {
		bounds["gte"] = q.Gte
	}
	if q.Gt != nil {
		bounds["gt"] = q.Gt
	}
	if q.Lte != nil {
		bounds["lte"] = q.Lte
	}
	if q.Lt != nil {
		bounds["lt"] = q.Lt
	}
	if len(bounds) == 0 {
		return nil, fmt.Errorf("%w: range on %s has no bounds", ErrInvalidQuery, q.Field)
	}
	return map[string]any{"range": map[string]any{q.Field: bounds}}, nil
}

func (qb *QueryBuilder) buildGeoShape(q domain.GeoShapeQuery) (map[string]any, error) {
	if q.Field == "" {
		return nil, fmt.Errorf("%w: geo_shape without field", ErrInvalidQuery)
	}
	if q.Shape.Type == "" || q.Shape.Coordinates == nil {
		return nil, fmt.Errorf("%w: geo_shape on %s has no shape", ErrInvalidQuery, q.Field)
	}
	relation := q.Relation
	if relation == "" {
		relation = domain.RelationIntersects
	}
	if !relation.Valid() {
		return nil, fmt.Errorf("%w: unknown spatial relation %q", ErrInvalidQuery, relation)
	}
	return map[string]any{"geo_shape": map[string]any{
		q.Field: map[string]any{"shape": q.Shape, "relation": relation},
	}}, nil
}

func (qb *QueryBuilder) buildMoreLikeThis(q domain.MoreLikeThisQuery) (map[string]any, error) {
	if len(q.Like) == 0 {
		return nil, fmt.Errorf("%w: more_like_this needs like texts", ErrInvalidQuery)
	}
	mlt := map[string]any{"like": q.Like}
	if len(q.Fields) > 0 {
		mlt["fields"] = q.Fields
	}
	if q.MinTermFreq > 0 {
		mlt["min_term_freq"] = q.MinTermFreq
	}
	if q.MinDocFreq > 0 {
		mlt["min_doc_freq"] = q.MinDocFreq
	}
	return map[string]any{"more_like_this": mlt}, nil
}

func (qb *QueryBuilder) buildScript(q domain.ScriptQuery) (map[string]any, error) {
	if q.Source == "" {
		return nil, fmt.Errorf("%w: script without source", ErrInvalidQuery)
	}
	script := map[string]any{"source": q.Source}
	if q.Lang != "" {
		script["lang"] = q.Lang
	}
	if len(q.Params) > 0 {
		script["params"] = q.Params
	}
	return map[string]any{"script": map[string]any{"script": script}}, nil
}

func (qb *QueryBuilder) buildPercolate(q domain.PercolateQuery) (map[string]any, error) {
	if q.Field == "" {
		return nil, fmt.Errorf("%w: percolate without field", ErrInvalidQuery)
	}
	p := map[string]any{"field": q.Field}
	switch {
	case len(q.Documents) > 0:
		p["documents"] = q.Documents
	case q.Index != "" && q.ID != "":
		p["index"] = q.Index
		p["id"] = q.ID
	default:
		return nil, fmt.Errorf("%w: percolate needs documents or an index and id", ErrInvalidQuery)
	}
	return map[string]any{"percolate": p}, nil
}
