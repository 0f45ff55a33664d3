package service

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"shoescout/internal/model"
	"shoescout/internal/repository"

	"github.com/rs/zerolog"
)

const recommendationTarget = 40

// Keywords appended to a brand name to bias the retail search towards actual
// footwear.
var shoeKeywords = []string{
	"sneakers", "shoes", "jordans", "boots",
	"running shoes", "basketball shoes", "tennis shoes",
}

// A hit must contain at least one of these in its title to count as a shoe.
var shoeTerms = []string{
	"shoe", "sneaker", "jordan", "air force", "air max", "air jordan",
	"runner", "trainer", "boot", "loafer", "oxford", "slip-on", "sandal",
	"flip-flop", "cleat", "basketball", "tennis", "running", "athletic",
	"casual", "formal", "dress shoe", "pump", "heel", "flat", "moccasin",
	"espadrille", "wedge",
}

// The retail search surfaces plenty of apparel and collectibles under brand
// queries; any of these in a title disqualifies the hit.
var excludeTerms = []string{
	"bag", "backpack", "sock", "socks", "tote", "purse", "wallet", "belt",
	"hat", "cap", "beanie", "shirt", "hoodie", "jacket", "pants", "shorts",
	"gloves", "scarf", "card", "trading card", "pokemon", "pokémon",
	"collectible", "figurine", "toy", "accessory", "keychain", "sticker",
	"poster", "phone case", "watch", "sunglasses", "necklace", "bracelet",
	"ring", "earring", "underwear", "brief", "boxer", "bra", "panty",
}

// Looser filter pair used when padding the list from popular brands.
var (
	padShoeTerms    = []string{"shoe", "sneaker", "jordan", "air", "runner", "trainer", "boot"}
	padExcludeTerms = []string{"bag", "sock", "card", "pokemon", "accessory"}
	popularBrands   = []string{"Nike", "Adidas", "Jordan", "New Balance", "Puma", "Vans", "Converse"}
)

type RecommendationService interface {
	// Recommend returns up to recommendationTarget shuffled shoes for the
	// user. A non-empty message explains an empty result.
	Recommend(ctx context.Context, auth0ID string) ([]model.Shoe, string, error)
}

type recommendationService struct {
	userRepo repository.UserRepository
	api      SneakerAPI
	logger   zerolog.Logger
	shuffle  func(n int, swap func(i, j int))
}

func NewRecommendationService(userRepo repository.UserRepository, api SneakerAPI, logger zerolog.Logger) RecommendationService {
	return &recommendationService{
		userRepo: userRepo,
		api:      api,
		logger:   logger.With().Str("service", "RecommendationService").Logger(),
		shuffle:  rand.Shuffle,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, auth0ID string) ([]model.Shoe, string, error) {
	brands, message, err := s.brandsForUser(ctx, auth0ID)
	if err != nil {
		return nil, "", err
	}
	if len(brands) == 0 {
		return []model.Shoe{}, message, nil
	}

	targetPerBrand := (recommendationTarget + len(brands) - 1) / len(brands)
	var recommended []model.Shoe

	for _, brand := range brands {
		var brandShoes []model.Shoe
		for _, keyword := range shoeKeywords {
			if len(brandShoes) >= targetPerBrand {
				break
			}
			hits, err := s.api.Search(ctx, brand+" "+keyword)
			if err != nil {
				s.logger.Error().Err(err).Str("brand", brand).Str("keyword", keyword).
					Msg("Failed to fetch recommendations")
				continue
			}
			for _, hit := range hits {
				if len(brandShoes) >= targetPerBrand {
					break
				}
				if !titleLooksLikeShoe(hit.Title, shoeTerms, excludeTerms) {
					continue
				}
				if containsTitle(brandShoes, hit.Title) {
					continue
				}
				shoe := shoeFromHit(hit)
				shoe.Brand = brand
				brandShoes = append(brandShoes, shoe)
			}
		}
		recommended = append(recommended, brandShoes...)
		s.logger.Info().Str("brand", brand).Int("count", len(brandShoes)).Msg("Collected brand shoes")
	}

	final := recommended
	if len(final) > recommendationTarget {
		s.shuffle(len(final), func(i, j int) { final[i], final[j] = final[j], final[i] })
		final = final[:recommendationTarget]
	} else if len(final) < recommendationTarget {
		final = s.padFromPopularBrands(ctx, final)
	}

	s.shuffle(len(final), func(i, j int) { final[i], final[j] = final[j], final[i] })
	if final == nil {
		final = []model.Shoe{}
	}
	s.logger.Info().Int("count", len(final)).Msg("Returning randomized recommendations")
	return final, "", nil
}

// brandsForUser picks explicit preferences first and falls back to the two
// most frequent brands among the user's favorites.
func (s *recommendationService) brandsForUser(ctx context.Context, auth0ID string) ([]string, string, error) {
	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, "", err
	}
	if user != nil && len(user.Preferences) > 0 {
		s.logger.Info().Strs("brands", user.Preferences).Msg("Using user preferences for recommendations")
		return user.Preferences, "", nil
	}

	favorites, err := s.userRepo.GetFavorites(ctx, auth0ID)
	if err != nil {
		return nil, "", err
	}
	if len(favorites) == 0 {
		return nil, "No preferences or favorites found for user.", nil
	}

	counts := map[string]int{}
	for _, fav := range favorites {
		if fav.Brand != "" {
			counts[fav.Brand]++
		}
	}
	if len(counts) == 0 {
		return nil, "No brand preferences found.", nil
	}

	sorted := make([]string, 0, len(counts))
	for brand := range counts {
		sorted = append(sorted, brand)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if counts[sorted[i]] != counts[sorted[j]] {
			return counts[sorted[i]] > counts[sorted[j]]
		}
		return sorted[i] < sorted[j]
	})
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	s.logger.Info().Strs("brands", sorted).Msg("Using brands from favorites for recommendations")
	return sorted, "", nil
}

func (s *recommendationService) padFromPopularBrands(ctx context.Context, final []model.Shoe) []model.Shoe {
	needed := recommendationTarget - len(final)
	s.logger.Info().Int("needed", needed).Msg("Padding recommendations from popular brands")

	for _, brand := range popularBrands {
		if len(final) >= recommendationTarget {
			break
		}
		hits, err := s.api.Search(ctx, brand+" shoes")
		if err != nil {
			s.logger.Error().Err(err).Str("brand", brand).Msg("Failed to fetch additional shoes")
			continue
		}
		taken := 0
		for _, hit := range hits {
			if len(final) >= recommendationTarget || taken >= needed {
				break
			}
			if !titleLooksLikeShoe(hit.Title, padShoeTerms, padExcludeTerms) {
				continue
			}
			if containsTitle(final, hit.Title) {
				continue
			}
			shoe := shoeFromHit(hit)
			shoe.Brand = brand
			final = append(final, shoe)
			taken++
		}
	}
	return final
}

func titleLooksLikeShoe(title string, include, exclude []string) bool {
	lower := strings.ToLower(title)
	hasShoeTerm := false
	for _, term := range include {
		if strings.Contains(lower, term) {
			hasShoeTerm = true
			break
		}
	}
	if !hasShoeTerm {
		return false
	}
	for _, term := range exclude {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

func containsTitle(shoes []model.Shoe, title string) bool {
	for _, s := range shoes {
		if s.Title == title {
			return true
		}
	}
	return false
}
