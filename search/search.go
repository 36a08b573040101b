// Package search finds candidate restaurants for a free-text query.
package search

import (
	"context"
	"strings"

	"biteclub/models"
	"biteclub/utils"
)

// Provider looks up restaurants. Implementations never fail: any problem is
// logged and reported as an empty result.
type Provider interface {
	Search(ctx context.Context, query string, loc *models.Coordinates) []models.Restaurant
}

// Dedupe drops candidates without an id or whose id was already seen,
// keeping the first occurrence.
func Dedupe(candidates []models.Restaurant) []models.Restaurant {
	seen := utils.NewIDSet()
	out := make([]models.Restaurant, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.ID) == "" || !seen.Add(c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Disabled is used when no provider is configured.
type Disabled struct {
	Logger *utils.Logger
}

func (d Disabled) Search(ctx context.Context, query string, loc *models.Coordinates) []models.Restaurant {
	if d.Logger != nil {
		d.Logger.Warn("[search] No search provider configured, %q returns nothing", query)
	}
	return []models.Restaurant{}
}
