package scanner

import (
	"context"
	"fmt"
	"sort"

	"NewsCatcher/internal/domain"
)

// Category describes a concrete endpoint provided by config (feed URL, listing page, search template).
type Category struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute one provider call.
type Request struct {
	Label      string
	Keywords   []string
	SiteName   string
	Categories []Category
	Options    map[string]string
}

// Option returns a request option or fallback when unset.
func (r Request) Option(key, fallback string) string {
	if v, ok := r.Options[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Provider answers keyword queries for one taxonomy label (search engines, RSS).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.RawFragment, error)
}

// ListingProvider pulls a whole listing page without a query (funding/IPO lists).
type ListingProvider interface {
	Name() string
	FetchListing(ctx context.Context, req Request) ([]domain.RawFragment, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	providers map[string]Provider
	listings  map[string]ListingProvider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: map[string]Provider{},
		listings:  map[string]ListingProvider{},
	}
}

// Register adds or replaces a query provider.
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// RegisterListing adds or replaces a listing provider.
func (r *Registry) RegisterListing(provider ListingProvider) {
	if r.listings == nil {
		r.listings = map[string]ListingProvider{}
	}
	r.listings[provider.Name()] = provider
}

// Resolve returns a query provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

// ResolveListing returns a listing provider by name or an error if it is absent.
func (r *Registry) ResolveListing(name string) (ListingProvider, error) {
	if provider, ok := r.listings[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("listing scanner %s is not registered", name)
}

// Names lists registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers)+len(r.listings))
	for name := range r.providers {
		names = append(names, name)
	}
	for name := range r.listings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
