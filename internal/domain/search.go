package domain

// SearchResultItem is one normalized provider hit. Never persisted.
type SearchResultItem struct {
	Title      string  `json:"title"`
	Address    string  `json:"address"`
	Category   string  `json:"category"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ExternalID string  `json:"naver_place_id"`
}

type SearchResults struct {
	Items []SearchResultItem `json:"items"`
}
