package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/search-probe/internal/domain"
	"github.com/jonesrussell/north-cloud/search-probe/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/search-probe/internal/fixtures"
)

// Counts of the canonical 1000-account sample.
const (
	accountsTotal       = 1000
	accountsAge40NotID  = 43
	accountsBalance20to = 217
)

func init() {
	register(searchScenario)
}

func searchScenario() Scenario {
	return Scenario{
		Name:        "search",
		Description: "bank accounts: query string, bool, range and terms aggregation",
		Steps: []Step{
			{Name: "create index", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Client.CreateIndex(ctx, env.Index("bank"), fixtures.BankIndex())
				return err
			}},
			{Name: "load accounts", Run: loadAccounts},
			{Name: "query string sorted", Run: searchAll},
			{Name: "bool must / must_not", Run: searchAge40NotIdaho},
			{Name: "range filter", Run: searchBalanceRange},
			{Name: "terms aggregation", Run: aggregateByState},
		},
	}
}

func loadAccounts(ctx context.Context, env *Env) error {
	ops, err := env.Loader.Load(ctx, env.opts.AccountsFile, env.opts.AccountsURL)
	if err != nil {
		if errors.Is(err, fixtures.ErrFetch) {
			return fmt.Errorf("%w: accounts fixture unavailable: %w", ErrSkipped, err)
		}
		return err
	}

	index := env.Index("bank")
	stats, err := fixtures.Import(ctx, env.Client, index, ops, fixtures.ImportOptions{})
	if err != nil {
		return err
	}
	env.accounts = int64(len(ops))
	env.Notef("imported %d accounts in %d request(s)", stats.Added, stats.Requests)

	if err = env.Client.Refresh(ctx, index); err != nil {
		return err
	}
	return env.WaitForCount(ctx, index, env.accounts)
}

// canonical reports whether the loaded fixture is the well-known sample,
// so exact counts can be asserted.
func (e *Env) canonical() bool {
	return e.accounts == accountsTotal
}

func searchAll(ctx context.Context, env *Env) error {
	res, err := env.Client.SearchURI(ctx, env.Index("bank"), elasticsearch.URISearch{
		Q:    "*",
		Sort: []string{"account_number:asc"},
	})
	if err != nil {
		return err
	}
	if err = expectEqual("total hits", env.accounts, res.Total()); err != nil {
		return err
	}
	if env.canonical() && len(res.Hits.Hits) > 0 {
		return expectEqual("first account", "0", res.Hits.Hits[0].ID)
	}
	return nil
}

func searchAge40NotIdaho(ctx context.Context, env *Env) error {
	res, err := env.Client.Search(ctx, env.Index("bank"), domain.SearchRequest{
		Query: domain.BoolQuery{
			Must:    []domain.Query{domain.Match("age", "40")},
			MustNot: []domain.Query{domain.Match("state", "ID")},
		},
	})
	if err != nil {
		return err
	}
	env.Notef("%d hit(s)", res.Total())
	if !env.canonical() {
		return nil
	}
	return expectEqual("total hits", int64(accountsAge40NotID), res.Total())
}

func searchBalanceRange(ctx context.Context, env *Env) error {
	res, err := env.Client.Search(ctx, env.Index("bank"), domain.SearchRequest{
		Query: domain.BoolQuery{
			Must:   []domain.Query{domain.MatchAll()},
			Filter: []domain.Query{domain.Between("balance", 20000, 30000)},
		},
	})
	if err != nil {
		return err
	}
	env.Notef("%d hit(s)", res.Total())
	if !env.canonical() {
		return nil
	}
	return expectEqual("total hits", int64(accountsBalance20to), res.Total())
}

func aggregateByState(ctx context.Context, env *Env) error {
	res, err := env.Client.Search(ctx, env.Index("bank"), domain.SearchRequest{
		Size:         domain.Ptr(0),
		Aggregations: map[string]domain.TermsAggregation{"group_by_state": {Field: fixtures.BankStateKeyword}},
	})
	if err != nil {
		return err
	}
	terms, err := res.Terms("group_by_state")
	if err != nil {
		return err
	}

	env.Notef("buckets=%d doc_count_error_upper_bound=%d sum_other_doc_count=%d",
		len(terms.Buckets), terms.DocCountErrorUpperBound, terms.SumOtherDocCount)

	if err = expectTrue(len(terms.Buckets) > 0, "no buckets"); err != nil {
		return err
	}
	return expectEqual("bucket counts plus other", env.accounts, terms.BucketTotal()+terms.SumOtherDocCount)
}
