package scanner

import (
	"context"
	"testing"

	"NewsCatcher/internal/domain"
)

type stubProvider struct{ name string }

func (s stubProvider) Name() string { return s.name }

func (s stubProvider) Fetch(context.Context, Request) ([]domain.RawFragment, error) {
	return nil, nil
}

type stubListing struct{ name string }

func (s stubListing) Name() string { return s.name }

func (s stubListing) FetchListing(context.Context, Request) ([]domain.RawFragment, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubProvider{name: "baidu"})
	reg.RegisterListing(stubListing{name: "pedaily-funding"})

	if _, err := reg.Resolve("baidu"); err != nil {
		t.Fatalf("resolve baidu: %v", err)
	}
	if _, err := reg.Resolve("pedaily-funding"); err == nil {
		t.Fatalf("listing must not resolve as query provider")
	}
	if _, err := reg.ResolveListing("pedaily-funding"); err != nil {
		t.Fatalf("resolve listing: %v", err)
	}
	if _, err := reg.ResolveListing("missing"); err == nil {
		t.Fatalf("expected error for missing listing")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "baidu" || names[1] != "pedaily-funding" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"maxKeywords": "3", "empty": ""}}
	if req.Option("maxKeywords", "1") != "3" {
		t.Fatalf("option not read")
	}
	if req.Option("empty", "x") != "x" || req.Option("missing", "y") != "y" {
		t.Fatalf("fallback not applied")
	}
}
