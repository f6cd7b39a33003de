package domain

// QueryKind names a query node type.
type QueryKind string

const (
	KindMatch        QueryKind = "match"
	KindMatchAll     QueryKind = "match_all"
	KindBool         QueryKind = "bool"
	KindRange        QueryKind = "range"
	KindTerm         QueryKind = "term"
	KindTerms        QueryKind = "terms"
	KindGeoShape     QueryKind = "geo_shape"
	KindMoreLikeThis QueryKind = "more_like_this"
	KindScript       QueryKind = "script"
	KindPercolate    QueryKind = "percolate"
)

// Query is a node of a structured query tree.
type Query interface {
	Kind() QueryKind
}

// MatchQuery is a full-text match on one field.
type MatchQuery struct {
	Field    string
	Value    any
	Operator string
}

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

// BoolQuery combines child queries.
type BoolQuery struct {
	Must    []Query
	MustNot []Query
	Filter  []Query
	Should  []Query
}

// RangeQuery bounds a field. At least one bound must be set.
type RangeQuery struct {
	Field string
	Gte   any
	Lte   any
	Gt    any
	Lt    any
}

// TermQuery matches an exact value.
type TermQuery struct {
	Field string
	Value any
}

// TermsQuery matches any of several exact values.
type TermsQuery struct {
	Field  string
	Values []any
}

// SpatialRelation relates an indexed shape to the query shape.
type SpatialRelation string

const (
	RelationWithin     SpatialRelation = "within"
	RelationIntersects SpatialRelation = "intersects"
	RelationContains   SpatialRelation = "contains"
	RelationDisjoint   SpatialRelation = "disjoint"
)

// Valid reports whether r is a known relation.
func (r SpatialRelation) Valid() bool {
	switch r {
	case RelationWithin, RelationIntersects, RelationContains, RelationDisjoint:
		return true
	default:
		return false
	}
}

// ShapeType is a GeoJSON-style shape type.
type ShapeType string

const (
	ShapePoint    ShapeType = "point"
	ShapeEnvelope ShapeType = "envelope"
	ShapePolygon  ShapeType = "polygon"
)

// Shape is a geometry in [lon, lat] order.
type Shape struct {
	Type        ShapeType `json:"type"`
	Coordinates any       `json:"coordinates"`
}

// Point returns a point shape.
func Point(lon, lat float64) Shape {
	return Shape{Type: ShapePoint, Coordinates: []float64{lon, lat}}
}

// Envelope returns a bounding box from its upper-left and lower-right corners.
func Envelope(upperLeft, lowerRight [2]float64) Shape {
	return Shape{Type: ShapeEnvelope, Coordinates: [][]float64{upperLeft[:], lowerRight[:]}}
}

// GeoShapeQuery relates a geo_shape field to Shape.
type GeoShapeQuery struct {
	Field    string
	Shape    Shape
	Relation SpatialRelation
}

// MoreLikeThisQuery finds documents similar to the Like texts.
type MoreLikeThisQuery struct {
	Fields      []string
	Like        []string
	MinTermFreq int
	MinDocFreq  int
}

// ScriptQuery filters with a script evaluated per document.
type ScriptQuery struct {
	Source string
	Lang   string
	Params map[string]any
}

// PercolateQuery matches stored queries against documents. Either Documents
// or Index and ID must be set.
type PercolateQuery struct {
	Field     string
	Documents []Document
	Index     string
	ID        string
}

func (MatchQuery) Kind() QueryKind        { return KindMatch }
func (MatchAllQuery) Kind() QueryKind     { return KindMatchAll }
func (BoolQuery) Kind() QueryKind         { return KindBool }
func (RangeQuery) Kind() QueryKind        { return KindRange }
func (TermQuery) Kind() QueryKind         { return KindTerm }
func (TermsQuery) Kind() QueryKind        { return KindTerms }
func (GeoShapeQuery) Kind() QueryKind     { return KindGeoShape }
func (MoreLikeThisQuery) Kind() QueryKind { return KindMoreLikeThis }
func (ScriptQuery) Kind() QueryKind       { return KindScript }
func (PercolateQuery) Kind() QueryKind    { return KindPercolate }

// Match returns a match query.
func Match(field string, value any) MatchQuery {
	return MatchQuery{Field: field, Value: value}
}

// MatchAll returns a match_all query.
func MatchAll() MatchAllQuery {
	return MatchAllQuery{}
}

// Between returns an inclusive range query.
func Between(field string, gte, lte any) RangeQuery {
	return RangeQuery{Field: field, Gte: gte, Lte: lte}
}
