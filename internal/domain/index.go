// Package domain holds the request and result types exchanged with the search service.
package domain

// FieldType is a mapping field type.
type FieldType string

const (
	FieldTypeText       FieldType = "text"
	FieldTypeKeyword    FieldType = "keyword"
	FieldTypeInteger    FieldType = "integer"
	FieldTypeLong       FieldType = "long"
	FieldTypeDate       FieldType = "date"
	FieldTypeGeoShape   FieldType = "geo_shape"
	FieldTypeGeoPoint   FieldType = "geo_point"
	FieldTypePercolator FieldType = "percolator"
)

// FieldMapping declares the type of one field and optional multi-fields.
type FieldMapping struct {
	Type   FieldType               `json:"type"`
	Fields map[string]FieldMapping `json:"fields,omitempty"`
}

// Mapping is an index schema.
type Mapping struct {
	Properties map[string]FieldMapping `json:"properties"`
}

// NewMapping builds a mapping from field name to type.
func NewMapping(fields map[string]FieldType) *Mapping {
	props := make(map[string]FieldMapping, len(fields))
	for name, typ := range fields {
		props[name] = FieldMapping{Type: typ}
	}
	return &Mapping{Properties: props}
}

// CreateIndexRequest describes a new index. Shards of zero leaves the
// service default; Replicas is always sent because zero is meaningful.
type CreateIndexRequest struct {
	Shards   int      `json:"shards"`
	Replicas int      `json:"replicas"`
	Mapping  *Mapping `json:"mapping,omitempty"`
}

// Body renders the request as the service's index-creation body.
func (r CreateIndexRequest) Body() map[string]any {
	settings := map[string]any{"number_of_replicas": r.Replicas}
	if r.Shards > 0 {
		settings["number_of_shards"] = r.Shards
	}

	body := map[string]any{"settings": settings}
	if r.Mapping != nil && len(r.Mapping.Properties) > 0 {
		body["mappings"] = r.Mapping
	}
	return body
}

// IndexAck is the acknowledgement returned by index create and delete.
type IndexAck struct {
	Acknowledged       bool   `json:"acknowledged"`
	ShardsAcknowledged bool   `json:"shards_acknowledged"`
	Index              string `json:"index,omitempty"`
}
