package scenario

import (
	"context"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
)

func init() {
	register(documentsScenario)
}

type customer struct {
	Name string `json:"name"`
}

func documentsScenario() Scenario {
	return Scenario{
		Name:        "documents",
		Description: "create-only writes, get, partial update, delete and bulk",
		Steps: []Step{
			{Name: "write to missing index fails", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.IndexDocument(ctx, env.Index("customer"), "1",
					domain.Document{"name": "John Doe"}, elasticsearch.WithRequireIndex())
				return expectError("write before create", err, elasticsearch.ErrNotFound)
			}},
			{Name: "create index", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.CreateIndex(ctx, env.Index("customer"), fixtures.CustomerIndex())
				return err
			}},
			{Name: "create document", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.IndexDocument(ctx, env.Index("customer"), "1",
					domain.Document{"name": "John Doe"}, elasticsearch.WithCreateOnly(), elasticsearch.WithRequireIndex())
				if err != nil {
					return err
				}
				return expectEqual("result", domain.ResultCreated, res.Result)
			}},
			{Name: "create again conflicts", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.IndexDocument(ctx, env.Index("customer"), "1",
					domain.Document{"name": "Someone Else"}, elasticsearch.WithCreateOnly())
				return expectError("second create", err, elasticsearch.ErrConflict)
			}},
			{Name: "get", Run: expectCustomer("John Doe")},
			{Name: "update", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.UpdateDocument(ctx, env.Index("customer"), "1",
					domain.Document{"name": "John Doe Update"})
				if err != nil {
					return err
				}
				return expectEqual("result", domain.ResultUpdated, res.Result)
			}},
			{Name: "get after update", Run: expectCustomer("John Doe Update")},
			{Name: "delete", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.DeleteDocument(ctx, env.Index("customer"), "1")
				if err != nil {
					return err
				}
				return expectEqual("result", domain.ResultDeleted, res.Result)
			}},
			{Name: "get after delete", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.GetDocument(ctx, env.Index("customer"), "1")
				if err != nil {
					return err
				}
				return expectEqual("found", false, res.Found)
			}},
			{Name: "delete again is not found", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.DeleteDocument(ctx, env.Index("customer"), "1")
				return expectError("second delete", err, elasticsearch.ErrNotFound)
			}},
			{Name: "bulk", Run: customerBulk},
		},
	}
}

func expectCustomer(name string) func(context.Context, *Env) error {
	return func(ctx context.Context, env *Env) error {
		var c customer
		found, err := env.Client.GetDocumentInto(ctx, env.Index("customer"), "1", &c)
		if err != nil {
			return err
		}
		if err = expectEqual("found", true, found); err != nil {
			return err
		}
		return expectEqual("name", name, c.Name)
	}
}

func customerBulk(ctx context.Context, env *Env) error {
	ops := []domain.BulkOperation{
		{Kind: domain.BulkIndex, ID: "2", Document: domain.Document{"name": "John Doe"}},
		{Kind: domain.BulkUpdate, ID: "2", Document: domain.Document{"name": "John Doe Update"}},
		{Kind: domain.BulkDelete, ID: "2"},
	}
	res, err := env.Client.Bulk(ctx, env.Index("customer"), ops)
	if err != nil {
		return err
	}
	if err = expectEqual("bulk errors", false, res.HasErrors); err != nil {
		return err
	}
	if err = expectEqual("bulk items", len(ops), len(res.Items)); err != nil {
		return err
	}
	for i, item := range res.Items {
		if err = expectEqual("bulk item kind", ops[i].Kind, item.Kind); err != nil {
			return err
		}
	}
	env.Notef("bulk took %dms", res.Took)
	return nil
}
