package scenario

import (
	"context"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
)

const percolatorSlotField = "_percolator_document_slot"

func init() {
	register(specializedScenario)
}

func specializedScenario() Scenario {
	return Scenario{
		Name:        "specialized",
		Description: "percolator, more_like_this and script queries over a small library",
		Steps: []Step{
			{Name: "create index", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.CreateIndex(ctx, env.Index("library"), fixtures.LibraryIndex())
				return err
			}},
			{Name: "store query", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.IndexDocument(ctx, env.Index("library"), fixtures.ThinkingBooksID,
					fixtures.ThinkingBooksQuery(), elasticsearch.WithCreateOnly())
				if err != nil {
					return err
				}
				return expectTrue(res.Created(), "stored query result %q", res.Result)
			}},
			{Name: "load books", Run: func(ctx context.Context, env *Env) error {
				index := env.Index("library")
				res, err := env.Client.Bulk(ctx, index, fixtures.BookOperations())
				if err != nil {
					return err
				}
				if err = expectEqual("bulk errors", false, res.HasErrors); err != nil {
					return err
				}
				if err = env.Client.Refresh(ctx, index); err != nil {
					return err
				}
				return env.WaitForCount(ctx, index, int64(len(fixtures.Books())+1))
			}},
			{Name: "percolate stored document", Run: func(ctx context.Context, env *Env) error {
				index := env.Index("library")
				return expectPercolated(ctx, env, domain.PercolateQuery{
					Field: fixtures.PercolatorField,
					Index: index,
					ID:    fixtures.Books()[0].ID,
				})
			}},
			{Name: "percolate inline document", Run: func(ctx context.Context, env *Env) error {
				book := fixtures.Books()[0]
				return expectPercolated(ctx, env, domain.PercolateQuery{
					Field: fixtures.PercolatorField,
					Documents: []domain.Document{{
						"title":       book.Title,
						"description": book.Description,
					}},
				})
			}},
			{Name: "more like this", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.Search(ctx, env.Index("library"), domain.SearchRequest{
					Query: domain.MoreLikeThisQuery{
						Fields:      []string{"description"},
						Like:        []string{"Think Big", "Positive Thinking"},
						MinTermFreq: 1,
						MinDocFreq:  1,
					},
				})
				if err != nil {
					return err
				}
				env.Notef("%d similar book(s)", res.Total())
				return expectTrue(res.Total() > 0, "no similar books")
			}},
			{Name: "script filter", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.Search(ctx, env.Index("library"), domain.SearchRequest{
					Query: domain.BoolQuery{Must: []domain.Query{domain.ScriptQuery{
						Source: "doc['price'].size() > 0 && doc['price'].value >= 20",
						Lang:   "painless",
					}}},
				})
				if err != nil {
					return err
				}
				return expectEqual("books priced 20 or more", int64(2), res.Total())
			}},
		},
	}
}

// expectPercolated checks that exactly the thinking-books query matches
// the single percolated document.
func expectPercolated(ctx context.Context, env *Env, q domain.PercolateQuery) error {
	res, err := env.Client.Search(ctx, env.Index("library"), domain.SearchRequest{Query: q})
	if err != nil {
		return err
	}
	if err = expectEqual("total hits", int64(1), res.Total()); err != nil {
		return err
	}
	hit := res.Hits.Hits[0]
	if err = expectEqual("matching query", fixtures.ThinkingBooksID, hit.ID); err != nil {
		return err
	}
	slots, ok := hit.Fields[percolatorSlotField].([]any)
	if !ok {
		return expectTrue(false, "hit has no %s field", percolatorSlotField)
	}
	return expectEqual("percolator slots", 1, len(slots))
}
