package model

// Shoe is an ephemeral search result: retail data from the search API merged
// with whatever resell data could be recovered for it. Never persisted except
// inside the search cache.
type Shoe struct {
	Title       string `json:"title"`
	RetailPrice any    `json:"retail_price"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	ImageURL    string `json:"image_url"`
	Brand       string `json:"brand,omitempty"`

	LowestResellPrices PlatformPrices     `json:"lowest_resell_prices"`
	SizeSpecificPrices PlatformSizePrices `json:"size_specific_prices"`
	AvailableSizes     []string           `json:"available_sizes"`
	ResellLinks        PlatformLinks      `json:"resell_links"`
	ResellDataFound    bool               `json:"resell_data_found"`
}

// SizePrice is one platform's asking price for one shoe size.
type SizePrice struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// PlatformPrices holds the lowest known resell price per platform. A nil
// entry means no price could be recovered for that platform.
type PlatformPrices struct {
	StockX       *float64 `json:"stockX"`
	Goat         *float64 `json:"goat"`
	FlightClub   *float64 `json:"flightClub"`
	StadiumGoods *float64 `json:"stadiumGoods"`
}

type PlatformSizePrices struct {
	StockX       []SizePrice `json:"stockX"`
	Goat         []SizePrice `json:"goat"`
	FlightClub   []SizePrice `json:"flightClub"`
	StadiumGoods []SizePrice `json:"stadiumGoods"`
}

type PlatformLinks struct {
	StockX       string `json:"stockX"`
	Goat         string `json:"goat"`
	FlightClub   string `json:"flightClub"`
	StadiumGoods string `json:"stadiumGoods"`
}

// ResellData is the canonical shape every reseller API payload is normalized
// into before being merged onto a Shoe.
type ResellData struct {
	LowestResellPrices PlatformPrices     `json:"lowest_resell_prices"`
	SizeSpecificPrices PlatformSizePrices `json:"size_specific_prices"`
	AvailableSizes     []string           `json:"available_sizes"`
	ResellLinks        PlatformLinks      `json:"resell_links"`
	ResellDataFound    bool               `json:"resell_data_found"`
}
