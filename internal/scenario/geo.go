package scenario

import (
	"context"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
)

func init() {
	register(geoScenario)
}

func geoScenario() Scenario {
	return Scenario{
		Name:        "geo",
		Description: "geo_shape point within an envelope",
		Steps: []Step{
			{Name: "create index", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.CreateIndex(ctx, env.Index("geo"), fixtures.GeoIndex())
				return err
			}},
			{Name: "index point", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.Bulk(ctx, env.Index("geo"), fixtures.GeoDocuments(),
					elasticsearch.WithRefresh(elasticsearch.RefreshWaitFor))
				if err != nil {
					return err
				}
				return expectEqual("bulk errors", false, res.HasErrors)
			}},
			{Name: "within envelope", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.Search(ctx, env.Index("geo"), domain.SearchRequest{
					Query: domain.BoolQuery{
						Must: []domain.Query{domain.MatchAll()},
						Filter: []domain.Query{domain.GeoShapeQuery{
							Field:    fixtures.GeoLocationField,
							Shape:    domain.Envelope([2]float64{13.0, 53.0}, [2]float64{14.0, 52.0}),
							Relation: domain.RelationWithin,
						}},
					},
				})
				if err != nil {
					return err
				}
				if err = expectEqual("total hits", int64(1), res.Total()); err != nil {
					return err
				}
				return expectIDs("hits", []string{"1"}, res.IDs())
			}},
			{Name: "outside envelope", Run: func(ctx context.Context, env *Env) error {
				res, err := env.Client.Search(ctx, env.Index("geo"), domain.SearchRequest{
					Query: domain.GeoShapeQuery{
						Field:    fixtures.GeoLocationField,
						Shape:    domain.Envelope([2]float64{2.0, 49.0}, [2]float64{3.0, 48.0}),
						Relation: domain.RelationWithin,
					},
				})
				if err != nil {
					return err
				}
				return expectEqual("total hits", int64(0), res.Total())
			}},
		},
	}
}
