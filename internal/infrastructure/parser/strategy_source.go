package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsCatcher/internal/config"
	"NewsCatcher/internal/domain"
	"NewsCatcher/internal/scanner"
)

// Bindings is the ordered provider set produced from configured sites.
type Bindings struct {
	Providers []scanner.Provider
	Listings  []scanner.ListingProvider
	Delays    map[string]time.Duration
}

// StrategySource binds config-defined sites to registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Bind resolves every enabled site in declaration order. Site order is provider priority.
func (s *StrategySource) Bind() (Bindings, error) {
	if s.registry == nil {
		return Bindings{}, fmt.Errorf("scanner registry is not configured")
	}

	out := Bindings{Delays: map[string]time.Duration{}}
	for _, site := range s.sites {
		if site.Disabled {
			s.debug("site disabled", "site", site.Name)
			continue
		}

		if site.Delay > 0 {
			out.Delays[site.Name] = site.Delay
		}

		if site.Listing {
			strategy, err := s.registry.ResolveListing(site.Scanner)
			if err != nil {
				return Bindings{}, fmt.Errorf("site %s: %w", site.Name, err)
			}
			out.Listings = append(out.Listings, &boundListing{site: site, strategy: strategy})
			s.debug("listing bound", "site", site.Name, "scanner", site.Scanner)
			continue
		}

		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return Bindings{}, fmt.Errorf("site %s: %w", site.Name, err)
		}
		out.Providers = append(out.Providers, &boundProvider{site: site, strategy: strategy})
		s.debug("provider bound", "site", site.Name, "scanner", site.Scanner, "categories", len(site.Categories))
	}

	if len(out.Providers) == 0 && len(out.Listings) == 0 {
		return Bindings{}, fmt.Errorf("no enabled sites configured")
	}
	return out, nil
}

type boundProvider struct {
	site     config.SiteConfig
	strategy scanner.Provider
}

func (b *boundProvider) Name() string { return b.site.Name }

func (b *boundProvider) Fetch(ctx context.Context, req scanner.Request) ([]domain.RawFragment, error) {
	results, err := b.strategy.Fetch(ctx, bindRequest(req, b.site))
	fillSource(results, b.site.Name)
	return results, err
}

type boundListing struct {
	site     config.SiteConfig
	strategy scanner.ListingProvider
}

func (b *boundListing) Name() string { return b.site.Name }

func (b *boundListing) FetchListing(ctx context.Context, req scanner.Request) ([]domain.RawFragment, error) {
	results, err := b.strategy.FetchListing(ctx, bindRequest(req, b.site))
	fillSource(results, b.site.Name)
	return results, err
}

func bindRequest(req scanner.Request, site config.SiteConfig) scanner.Request {
	req.SiteName = site.Name
	req.Options = site.Options
	req.Categories = toScannerCategories(site.Categories)
	return req
}

func fillSource(results []domain.RawFragment, site string) {
	for i := range results {
		if results[i].Source == "" {
			results[i].Source = site
		}
	}
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
