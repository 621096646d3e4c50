package usecase

import (
	"context"
	"errors"
	"testing"

	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/scanner"
)

func TestFetcherFetchFlattensInProviderOrder(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first", byTag: map[string][]domain.RawFragment{"A": numbered("alpha", 2)}}
	broken := &fakeProvider{name: "broken", err: errors.New("http 503")}
	last := &fakeProvider{name: "last", byTag: map[string][]domain.RawFragment{"A": numbered("omega", 1)}}

	f := NewFetcher(FetcherDeps{Providers: []scanner.Provider{first, broken, last}})
	fragments, results := f.Fetch(context.Background(), "A", []string{"alpha"})

	if len(fragments) != 3 || fragments[0].Title != "alpha news 1" || fragments[2].Title != "omega news 1" {
		t.Fatalf("unexpected fragments: %+v", fragments)
	}
	if len(results) != 3 {
		t.Fatalf("expected a result per provider, got %d", len(results))
	}
	for i, name := range []string{"first", "broken", "last"} {
		if results[i].Provider != name || results[i].Label != "A" {
			t.Fatalf("result %d = %s/%s, want %s/A", i, results[i].Provider, results[i].Label, name)
		}
	}
	if results[1].Err == nil || len(results[1].Fragments) != 0 {
		t.Fatalf("failed provider must carry the error and no fragments: %+v", results[1])
	}
	if failure := results[1].Failure(); failure.Provider != "broken" || failure.Error == "" {
		t.Fatalf("unexpected failure record: %+v", failure)
	}
}
