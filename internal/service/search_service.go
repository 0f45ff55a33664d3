package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shoescout/internal/cache"
	"shoescout/internal/model"
	"shoescout/internal/resell"
	"shoescout/internal/sneaker"

	"github.com/rs/zerolog"
)

var (
	ErrNoShoesFound   = errors.New("no shoes found")
	ErrNoSKUFound     = errors.New("no SKU found for shoe")
	ErrPriceAPIFailed = errors.New("resell price API call failed")
)

// SneakerAPI is the outbound surface the services need from the sneaker
// client.
type SneakerAPI interface {
	Search(ctx context.Context, query string) ([]sneaker.Hit, error)
	ProductPrice(ctx context.Context, styleID string) (map[string]any, error)
	PriceSearch(ctx context.Context, query string) (map[string]any, error)
}

type SearchService interface {
	Search(ctx context.Context, query string) ([]model.Shoe, error)
	DebugSearch(ctx context.Context, query string) (*DebugResult, error)
}

// DebugResult pairs a raw price-API payload with what the normalizer made of
// it, for diagnosing new response shapes.
type DebugResult struct {
	RawAPIResponse map[string]any   `json:"rawApiResponse"`
	NormalizedData model.ResellData `json:"normalizedData"`
}

type searchService struct {
	api    SneakerAPI
	cache  *cache.SearchCache
	logger zerolog.Logger
}

func NewSearchService(api SneakerAPI, searchCache *cache.SearchCache, logger zerolog.Logger) SearchService {
	return &searchService{
		api:    api,
		cache:  searchCache,
		logger: logger.With().Str("service", "SearchService").Logger(),
	}
}

func (s *searchService) Search(ctx context.Context, query string) ([]model.Shoe, error) {
	key := cache.Key(query)
	if results, ok := s.cache.Get(key); ok {
		s.logger.Info().Str("query", query).Msg("Returning cached results")
		return results, nil
	}

	hits, err := s.api.Search(ctx, query)
	if err != nil {
		if errors.Is(err, sneaker.ErrNoResults) {
			return nil, ErrNoShoesFound
		}
		return nil, fmt.Errorf("fetching shoe data: %w", err)
	}
	if len(hits) > 5 {
		hits = hits[:5]
	}

	results := make([]model.Shoe, 0, len(hits))
	for _, h := range hits {
		results = append(results, shoeFromHit(h))
	}

	// Resell enrichment is best effort for the top hit only; a failure here
	// degrades to empty resell fields, never to a failed search.
	if len(results) > 0 && results[0].SKU != "" {
		raw, err := s.lookupResellData(ctx, results[0].SKU, results[0].Title)
		if err != nil {
			s.logger.Debug().Err(err).Str("sku", results[0].SKU).Msg("Resell data fetch failed")
		} else {
			applyResellData(&results[0], resell.Normalize(raw))
		}
	}

	s.cache.Set(key, results)
	return results, nil
}

func (s *searchService) DebugSearch(ctx context.Context, query string) (*DebugResult, error) {
	hits, err := s.api.Search(ctx, query)
	if err != nil {
		if errors.Is(err, sneaker.ErrNoResults) {
			return nil, ErrNoShoesFound
		}
		return nil, fmt.Errorf("fetching shoe data: %w", err)
	}
	if len(hits) == 0 || hits[0].SKU == "" {
		return nil, ErrNoSKUFound
	}

	raw, err := s.api.ProductPrice(ctx, hits[0].SKU)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceAPIFailed, err)
	}
	return &DebugResult{
		RawAPIResponse: raw,
		NormalizedData: resell.Normalize(raw),
	}, nil
}

// lookupResellData tries the direct style-id lookup first, then falls back to
// a free-text search on the price API and picks the entry whose style id
// matches the SKU exactly or as a substring.
func (s *searchService) lookupResellData(ctx context.Context, sku, title string) (map[string]any, error) {
	raw, err := s.api.ProductPrice(ctx, sku)
	if err == nil && len(raw) > 0 {
		return raw, nil
	}

	found, searchErr := s.api.PriceSearch(ctx, title)
	if searchErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, searchErr
	}
	if entry := matchBySKU(found, sku); entry != nil {
		return entry, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no resell entry matching sku %q", sku)
}

// matchBySKU scans the candidate arrays a price-search response may carry for
// an entry whose style id matches. Exact matches win over substring matches.
func matchBySKU(found map[string]any, sku string) map[string]any {
	var substring map[string]any
	for _, key := range []string{"results", "products", "hits", "data"} {
		arr, ok := found[key].([]any)
		if !ok {
			continue
		}
		for _, e := range arr {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			for _, field := range []string{"styleID", "styleId", "sku"} {
				id, ok := entry[field].(string)
				if !ok || id == "" {
					continue
				}
				if strings.EqualFold(id, sku) {
					return entry
				}
				if substring == nil &&
					strings.Contains(strings.ToUpper(id), strings.ToUpper(sku)) {
					substring = entry
				}
			}
		}
	}
	return substring
}

func shoeFromHit(h sneaker.Hit) model.Shoe {
	retail := h.RetailPrice
	if retail == nil || retail == "" || retail == float64(0) {
		retail = "N/A"
	}
	return model.Shoe{
		Title:       h.Title,
		RetailPrice: retail,
		Description: h.Description,
		SKU:         h.SKU,
		ImageURL:    h.Image,
		SizeSpecificPrices: model.PlatformSizePrices{
			StockX:       []model.SizePrice{},
			Goat:         []model.SizePrice{},
			FlightClub:   []model.SizePrice{},
			StadiumGoods: []model.SizePrice{},
		},
		AvailableSizes: []string{},
	}
}

func applyResellData(shoe *model.Shoe, data model.ResellData) {
	shoe.LowestResellPrices = data.LowestResellPrices
	shoe.SizeSpecificPrices = data.SizeSpecificPrices
	shoe.AvailableSizes = data.AvailableSizes
	shoe.ResellLinks = data.ResellLinks
	shoe.ResellDataFound = data.ResellDataFound
}
