package fixtures

import (
	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
)

// Field and id names shared by the built-in data sets.
const (
	PercolatorField  = "query"
	ThinkingBooksID  = "thinking-books"
	BankShards       = 5
	BankStateKeyword = "state.keyword"
	GeoLocationField = "location"
)

// CustomerIndex is a single-shard index with one text field.
func CustomerIndex() domain.CreateIndexRequest {
	return domain.CreateIndexRequest{
		Shards:   1,
		Replicas: 0,
		Mapping:  domain.NewMapping(map[string]domain.FieldType{"name": domain.FieldTypeText}),
	}
}

// BankIndex holds the accounts sample. Fields are mapped dynamically, so
// string fields get a .keyword sub-field for aggregations.
func BankIndex() domain.CreateIndexRequest {
	return domain.CreateIndexRequest{Shards: BankShards, Replicas: 0}
}

// GeoIndex maps location as a geo_shape.
func GeoIndex() domain.CreateIndexRequest {
	return domain.CreateIndexRequest{
		Shards:   1,
		Replicas: 0,
		Mapping: domain.NewMapping(map[string]domain.FieldType{
			"name":           domain.FieldTypeText,
			GeoLocationField: domain.FieldTypeGeoShape,
		}),
	}
}

// GeoDocuments returns one shop in central Berlin.
func GeoDocuments() []domain.BulkOperation {
	return []domain.BulkOperation{
		{
			Kind: domain.BulkIndex,
			ID:   "1",
			Document: domain.Document{
				"name":           "Wind & Wetter, Berlin, Germany",
				GeoLocationField: domain.Point(13.400544, 52.530286),
			},
		},
	}
}

// LibraryIndex maps books and a percolator field for stored queries.
func LibraryIndex() domain.CreateIndexRequest {
	return domain.CreateIndexRequest{
		Shards:   1,
		Replicas: 0,
		Mapping: domain.NewMapping(map[string]domain.FieldType{
			"title":         domain.FieldTypeText,
			"description":   domain.FieldTypeText,
			"price":         domain.FieldTypeInteger,
			PercolatorField: domain.FieldTypePercolator,
		}),
	}
}

// ThinkingBooksQuery is a stored query matching titles containing "Thinking".
func ThinkingBooksQuery() domain.Document {
	return domain.Document{
		PercolatorField: map[string]any{
			"match": map[string]any{"title": "Thinking"},
		},
	}
}

// Book is one library entry.
type Book struct {
	ID          string
	Title       string
	Description string
	Price       int
}

// Document returns the book source.
func (b Book) Document() domain.Document {
	return domain.Document{
		"title":       b.Title,
		"description": b.Description,
		"price":       b.Price,
	}
}

// Books returns the six library books.
func Books() []Book {
	return []Book{
		{
			ID:    "1",
			Title: "Magic Of Thinking Big",
			Description: "Millions of people throughout the world have improved their lives using The Magic " +
				"of Thinking Big. Dr. David J. Schwartz, long regarded as one of the foremost experts on " +
				"motivation, will help you sell better, manage better, earn more money, and most important " +
				"of all, find greater happiness and peace of mind.",
			Price: 20,
		},
		{
			ID:    "2",
			Title: "The Power of Positive Thinking",
			Description: "The book describes the power positive thinking has and how a firm belief in " +
				"something, does actually help in achieving it",
			Price: 30,
		},
		{
			ID:    "3",
			Title: "Think and Grow Rich",
			Description: "Think And Grow Rich has earned itself the reputation of being considered a textbook " +
				"for actionable techniques that can help one get better at doing anything, not just by rich " +
				"and wealthy, but also by people doing wonderful work in their respective fields.",
			Price: 10,
		},
		{
			ID:    "4",
			Title: "The Magic of thinking Big",
			Description: "First published in 1959, David J Schwartz's classic teachings are as powerful today " +
				"as they were then. Practical, empowering and hugely engaging, this book will not only " +
				"inspire you, it will give you the tools to change your life for the better - starting from now.",
			Price: 12,
		},
		{
			ID:    "5",
			Title: "How to Stop Worrying and Start Living",
			Description: "The book is written to help readers by changing their habit of worrying. The author " +
				"Dale Carnegie has shared his personal experiences, wherein he was mostly unsatisfied and " +
				"worried about lot of life situations.",
			Price: 14,
		},
		{
			ID:    "6",
			Title: "Practicing The Power Of Now",
			Description: "To make the journey into The Power of Now we will need to leave our analytical " +
				"mind and its false created self, the ego, behind.",
			Price: 15,
		},
	}
}

// BookOperations returns the books as bulk index entries.
func BookOperations() []domain.BulkOperation {
	books := Books()
	ops := make([]domain.BulkOperation, len(books))
	for i, b := range books {
		ops[i] = domain.BulkOperation{Kind: domain.BulkIndex, ID: b.ID, Document: b.Document()}
	}
	return ops
}
