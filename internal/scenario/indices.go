package scenario

import (
	"context"

	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
)

func init() {
	register(indicesScenario)
}

func indicesScenario() Scenario {
	return Scenario{
		Name:        "indices",
		Description: "index create, exists and delete",
		Steps: []Step{
			{Name: "create", Run: func(ctx context.Context, env *Env) error {
				ack, err := env.Client.CreateIndex(ctx, env.Index("indices"), fixtures.CustomerIndex())
				if err != nil {
					return err
				}
				return expectTrue(ack.Acknowledged, "create was not acknowledged")
			}},
			{Name: "exists after create", Run: expectExists("indices", true)},
			{Name: "create again conflicts", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.CreateIndex(ctx, env.Index("indices"), fixtures.CustomerIndex())
				return expectError("second create", err, elasticsearch.ErrConflict)
			}},
			{Name: "delete", Run: func(ctx context.Context, env *Env) error {
				ack, err := env.Client.DeleteIndex(ctx, env.Index("indices"))
				if err != nil {
					return err
				}
				return expectTrue(ack.Acknowledged, "delete was not acknowledged")
			}},
			{Name: "absent after delete", Run: expectExists("indices", false)},
			{Name: "delete again is not found", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.DeleteIndex(ctx, env.Index("indices"))
				return expectError("second delete", err, elasticsearch.ErrNotFound)
			}},
		},
	}
}

func expectExists(base string, want bool) func(context.Context, *Env) error {
	return func(ctx context.Context, env *Env) error {
		exists, err := env.Client.IndexExists(ctx, env.Index(base))
		if err != nil {
			return err
		}
		return expectEqual("index exists", want, exists)
	}
}
