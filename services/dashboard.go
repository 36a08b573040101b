package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"biteclub/gateway"
	"biteclub/models"
	"biteclub/utils"
)

// Collections is the read side of the persistence gateway.
type Collections interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, gateway.Source)
	ListReviews(ctx context.Context) ([]models.Review, gateway.Source)
}

// DashboardService aggregates reviews per restaurant.
type DashboardService struct {
	logger *utils.Logger
}

func NewDashboardService(logger *utils.Logger) *DashboardService {
	return &DashboardService{logger: logger}
}

// Load reads both collections and builds the ranked view and its summary.
func (s *DashboardService) Load(ctx context.Context, src Collections) ([]models.RestaurantWithStats, models.DashboardSummary) {
	restaurants, _ := src.ListRestaurants(ctx)
	reviews, _ := src.ListReviews(ctx)
	rows := s.Build(restaurants, reviews)
	return rows, s.Summarize(rows, reviews)
}

// Build joins each restaurant with its reviews and orders the result by
// average score, best first. Restaurants with equal averages keep their
// stored order. Reviews pointing at unknown restaurants are ignored.
func (s *DashboardService) Build(restaurants []models.Restaurant, reviews []models.Review) []models.RestaurantWithStats {
	byRestaurant := make(map[string][]models.Review, len(restaurants))
	for _, rv := range reviews {
		byRestaurant[rv.RestaurantID] = append(byRestaurant[rv.RestaurantID], rv)
	}

	rows := make([]models.RestaurantWithStats, 0, len(restaurants))
	for _, r := range restaurants {
		own := byRestaurant[r.ID]
		if own == nil {
			own = []models.Review{}
		}
		row := models.RestaurantWithStats{Restaurant: r, Reviews: own}

		var totalScore int
		for _, rv := range own {
			totalScore += rv.Score
			row.TotalSpent += rv.Spent
		}
		if len(own) > 0 {
			row.AverageScore = float64(totalScore) / float64(len(own))
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AverageScore > rows[j].AverageScore
	})

	if s.logger != nil {
		s.logger.Debug("[dashboard] %d restaurants, %d reviews", len(rows), len(reviews))
	}
	return rows
}

// Summarize computes the global figures. Every review counts, including ones
// whose restaurant is not known locally.
func (s *DashboardService) Summarize(rows []models.RestaurantWithStats, reviews []models.Review) models.DashboardSummary {
	sum := models.DashboardSummary{Restaurants: len(rows), ReviewsShared: len(reviews)}
	if len(reviews) == 0 {
		return sum
	}
	var totalScore int
	for _, rv := range reviews {
		totalScore += rv.Score
		sum.TotalSpent += rv.Spent
	}
	sum.OverallAverage = float64(totalScore) / float64(len(reviews))
	return sum
}

// Print renders the dashboard for a terminal.
func (s *DashboardService) Print(w io.Writer, rows []models.RestaurantWithStats, sum models.DashboardSummary) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🍽  BITECLUB DASHBOARD\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Global Stats\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Restaurants         : \033[1m%d\033[0m\n", sum.Restaurants)
	fmt.Fprintf(w, "  Experiences shared  : \033[1m%d\033[0m\n", sum.ReviewsShared)
	fmt.Fprintf(w, "  Total spent         : \033[1;32m$%.2f\033[0m\n", sum.TotalSpent)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top Rated First\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(rows) == 0 {
		fmt.Fprintf(w, "  No restaurants reviewed yet\n")
	}
	for i, r := range rows {
		stars := strings.Repeat("★", int(r.AverageScore+0.5))
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-34s \033[1;32m%.1f %-5s\033[0m (%d) $%.2f\n",
			i+1, truncate(r.Name, 32), r.AverageScore, stars, len(r.Reviews), r.TotalSpent)
		if r.Address != "" {
			fmt.Fprintf(w, "     %s\n", truncate(r.Address, 48))
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
