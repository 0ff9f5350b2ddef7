// internal/core/domain/itinerary.go
package domain

// Itinerary is the read-only view of an itinerary owned by the itineraries service.
type Itinerary struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Comments []Comment `json:"comments"`
	Reviews  []Review  `json:"reviews"`
}

type Comment struct {
	UserID string `json:"userId"`
}

type Review struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}
