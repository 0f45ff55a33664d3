package dto

// RecommendationShoeDTO is one recommended shoe; recommendations never carry
// resell data.
type RecommendationShoeDTO struct {
	Title       string `json:"title"`
	RetailPrice any    `json:"retail_price"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	ImageURL    string `json:"image_url"`
	Brand       string `json:"brand"`
}

type RecommendationsResponseDTO struct {
	Recommendations []RecommendationShoeDTO `json:"recommendations"`
	Message         string                  `json:"message,omitempty"`
}

type HealthResponseDTO struct {
	Status    string `json:"status"`
	Author    string `json:"author"`
	GithubURL string `json:"githubUrl"`
	Version   string `json:"version"`
}

type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
