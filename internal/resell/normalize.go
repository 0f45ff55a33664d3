// Package resell reconciles the wildly inconsistent JSON payloads returned by
// the reseller price APIs (StockX, GOAT, Flight Club, Stadium Goods semantics)
// into one canonical shape. None of these response formats are documented, so
// every extraction path below is a guess recovered from observed payloads.
// The only guarantee is that malformed or missing fields never panic.
package resell

import (
	"math"
	"sort"
	"strconv"

	"shoescout/internal/model"
)

// Upstream payload keys per platform.
const (
	platformStockX       = "stockX"
	platformGoat         = "goat"
	platformFlightClub   = "flightClub"
	platformStadiumGoods = "stadiumGoods"
)

// Normalize maps one raw reseller-API payload to the canonical resell shape.
func Normalize(raw map[string]any) model.ResellData {
	lowest := asMap(raw["lowestResellPrice"])
	links := asMap(raw["resellLinks"])
	prices := asMap(raw["resellPrices"])

	extractors := map[string]extractor{
		platformStockX:       genericExtractor{},
		platformGoat:         goatExtractor{},
		platformFlightClub:   flightClubExtractor{},
		platformStadiumGoods: genericExtractor{},
	}

	fallback := map[string]*float64{}
	for name, ex := range extractors {
		fallback[name] = ex.lowest(prices[name])
	}
	// StockX sometimes only shows up under lowestResellPrice.
	if fallback[platformStockX] == nil {
		if v, ok := asPrice(lowest[platformStockX]); ok {
			fallback[platformStockX] = &v
		}
	}

	// Prefer the top-level lowestResellPrice block whenever it is present at
	// all, even partially; the per-platform fallback chain is only for
	// payloads that omit it.
	resellPrices := fallback
	if len(lowest) > 0 {
		resellPrices = map[string]*float64{}
		for name := range extractors {
			if v, ok := asPrice(lowest[name]); ok {
				resellPrices[name] = &v
			}
		}
	}

	sizes := newSizeSet()
	sizeSpecific := map[string][]model.SizePrice{}
	for name, ex := range extractors {
		if entries := ex.sizePrices(raw, prices[name], sizes); len(entries) > 0 {
			sizeSpecific[name] = entries
		}
	}

	found := false
	for _, v := range resellPrices {
		if v != nil {
			found = true
			break
		}
	}

	return model.ResellData{
		LowestResellPrices: model.PlatformPrices{
			StockX:       resellPrices[platformStockX],
			Goat:         resellPrices[platformGoat],
			FlightClub:   resellPrices[platformFlightClub],
			StadiumGoods: resellPrices[platformStadiumGoods],
		},
		SizeSpecificPrices: model.PlatformSizePrices{
			StockX:       orEmpty(sizeSpecific[platformStockX]),
			Goat:         orEmpty(sizeSpecific[platformGoat]),
			FlightClub:   orEmpty(sizeSpecific[platformFlightClub]),
			StadiumGoods: orEmpty(sizeSpecific[platformStadiumGoods]),
		},
		AvailableSizes: sizes.sorted(),
		ResellLinks: model.PlatformLinks{
			StockX:       asString(links[platformStockX]),
			Goat:         asString(links[platformGoat]),
			FlightClub:   asString(links[platformFlightClub]),
			StadiumGoods: asString(links[platformStadiumGoods]),
		},
		ResellDataFound: found,
	}
}

// extractor isolates one platform's response-shape guesswork.
type extractor interface {
	// lowest walks the fallback chain for a single lowest price.
	lowest(data any) *float64
	// sizePrices recovers per-size asks. raw is the full payload (some
	// platforms stash size data at the top level), data the platform's entry
	// under resellPrices. Every size encountered is recorded in sizes even
	// when a later extraction path replaces the entries.
	sizePrices(raw map[string]any, data any, sizes *sizeSet) []model.SizePrice
}

type genericExtractor struct{}

func (genericExtractor) lowest(data any) *float64 {
	if arr, ok := data.([]any); ok {
		var min *float64
		for _, e := range arr {
			if p, ok := asPrice(asMap(e)["price"]); ok {
				if min == nil || p < *min {
					v := p
					min = &v
				}
			}
		}
		return min
	}
	if v, ok := asPrice(data); ok {
		return &v
	}
	obj := asMap(data)
	if obj == nil {
		return nil
	}
	if v, ok := asPrice(asMap(obj["newLowestPrice"])["value"]); ok {
		v /= 100
		return &v
	}
	if v, ok := asPrice(asMap(obj["lowestPrice"])["value"]); ok {
		v /= 100
		return &v
	}
	if v, ok := asPrice(obj["price"]); ok {
		return &v
	}
	// Last resort: scan for anything that looks like a price field.
	for _, field := range []string{"price", "lowestPrice", "newLowestPrice", "value", "ask"} {
		if v, ok := asPrice(obj[field]); ok {
			return &v
		}
		if v, ok := asPrice(asMap(obj[field])["value"]); ok {
			v /= 100
			return &v
		}
	}
	return nil
}

// candidate keys under which platforms have been seen to bury size arrays
var sizeArrayKeys = []string{"sizes", "sizeData", "prices", "data", "results", "items"}

func (genericExtractor) sizePrices(_ map[string]any, data any, sizes *sizeSet) []model.SizePrice {
	if arr, ok := data.([]any); ok {
		return collectSizePrices(arr, sizes)
	}
	obj := asMap(data)
	if obj == nil {
		return nil
	}
	for _, key := range sizeArrayKeys {
		if arr, ok := obj[key].([]any); ok {
			if entries := collectSizePrices(arr, sizes); len(entries) > 0 {
				return entries
			}
		}
	}
	// Nested variants like data.prices.sizes
	for _, key := range sizeArrayKeys {
		if nested := asMap(obj[key]); nested != nil {
			if arr, ok := nested["sizes"].([]any); ok {
				if entries := collectSizePrices(arr, sizes); len(entries) > 0 {
					return entries
				}
			}
		}
	}
	// The object itself may be a single size/price pair.
	if size, ok := obj["size"].(string); ok {
		if price, ok := asNumber(obj["price"]); ok {
			sizes.add(size)
			return []model.SizePrice{{Size: size, Price: price}}
		}
	}
	// Alternate market fields carrying their own size arrays.
	for _, field := range []string{"ask", "bid", "lastSale", "marketPrice"} {
		if inner := asMap(obj[field]); inner != nil {
			if arr, ok := inner["sizes"].([]any); ok {
				if entries := collectSizePrices(arr, sizes); len(entries) > 0 {
					return entries
				}
			}
		}
	}
	return nil
}

// goatExtractor handles GOAT's two known deviations: a top-level product[]
// array priced in cents, and resellPrices.goat entries keyed lowestPrice
// instead of price.
type goatExtractor struct {
	genericExtractor
}

func (g goatExtractor) sizePrices(raw map[string]any, data any, sizes *sizeSet) []model.SizePrice {
	entries := g.genericExtractor.sizePrices(raw, data, sizes)

	if arr, ok := raw["product"].([]any); ok {
		var products []model.SizePrice
		for _, e := range arr {
			obj := asMap(e)
			cents, ok := asPrice(obj["lowest_price_cents_usd"])
			if !ok {
				continue
			}
			size := stringifySize(obj["size"])
			if size == "" {
				continue
			}
			products = append(products, model.SizePrice{Size: size, Price: cents / 100})
			sizes.add(size)
		}
		if len(products) > 0 {
			entries = products
		}
	}

	if arr, ok := data.([]any); ok {
		var goat []model.SizePrice
		for _, e := range arr {
			obj := asMap(e)
			price, ok := asPrice(obj["lowestPrice"])
			if !ok {
				continue
			}
			size := stringifySize(obj["size"])
			if size == "" {
				continue
			}
			goat = append(goat, model.SizePrice{Size: size, Price: price})
			sizes.add(size)
		}
		if len(goat) > 0 {
			entries = goat
		}
	}
	return entries
}

// flightClubExtractor handles Flight Club's newSizes array, where the size is
// wrapped in an object and the price lives under lowestPriceOption.
type flightClubExtractor struct {
	genericExtractor
}

func (f flightClubExtractor) sizePrices(raw map[string]any, data any, sizes *sizeSet) []model.SizePrice {
	entries := f.genericExtractor.sizePrices(raw, data, sizes)

	obj := asMap(data)
	if arr, ok := obj["newSizes"].([]any); ok {
		var fc []model.SizePrice
		for _, e := range arr {
			item := asMap(e)
			size := stringifySize(asMap(item["size"])["value"])
			if size == "" {
				continue
			}
			price, ok := asPrice(asMap(item["lowestPriceOption"])["price"])
			if !ok {
				continue
			}
			fc = append(fc, model.SizePrice{Size: size, Price: price})
			sizes.add(size)
		}
		if len(fc) > 0 {
			entries = fc
		}
	}
	return entries
}

func collectSizePrices(arr []any, sizes *sizeSet) []model.SizePrice {
	var out []model.SizePrice
	for _, e := range arr {
		obj := asMap(e)
		size, ok := obj["size"].(string)
		if !ok || size == "" {
			continue
		}
		price, ok := asNumber(obj["price"])
		if !ok {
			continue
		}
		out = append(out, model.SizePrice{Size: size, Price: price})
		sizes.add(size)
	}
	return out
}

type sizeSet struct {
	seen map[string]struct{}
}

func newSizeSet() *sizeSet {
	return &sizeSet{seen: map[string]struct{}{}}
}

func (s *sizeSet) add(size string) {
	s.seen[size] = struct{}{}
}

// sorted returns the union of sizes in ascending numeric order. Sizes that
// fail to parse sort last.
func (s *sizeSet) sorted() []string {
	out := make([]string, 0, len(s.seen))
	for size := range s.seen {
		out = append(out, size)
	}
	sort.Slice(out, func(i, j int) bool {
		return sizeValue(out[i]) < sizeValue(out[j])
	})
	return out
}

func sizeValue(size string) float64 {
	v, err := strconv.ParseFloat(size, 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

func stringifySize(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

// asPrice is asNumber restricted to positive values. Platforms report 0 when
// a listing has no ask, so a zero price means no price.
func asPrice(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok && n > 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func orEmpty(entries []model.SizePrice) []model.SizePrice {
	if entries == nil {
		return []model.SizePrice{}
	}
	return entries
}
