package models

// DateLayout is the calendar-date form used for Review.Date.
const DateLayout = "2006-01-02"

// Review is one visit to a restaurant.
type Review struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	UserName     string  `json:"userName"`
	Date         string  `json:"date"`
	Score        int     `json:"score"`
	Spent        float64 `json:"spent"`
	Comments     string  `json:"comments,omitempty"`
}

// ReviewDraft holds a review exactly as it was typed into a form or a CSV row,
// before any parsing.
type ReviewDraft struct {
	ID           string
	RestaurantID string
	UserName     string
	Date         string
	Score        string
	Spent        string
	Comments     string
}

// DashboardSummary holds the global figures shown above the dashboard.
type DashboardSummary struct {
	Restaurants    int     `json:"restaurants"`
	ReviewsShared  int     `json:"reviewsShared"`
	TotalSpent     float64 `json:"totalSpent"`
	OverallAverage float64 `json:"overallAverage"`
}
