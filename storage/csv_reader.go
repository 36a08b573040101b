package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"biteclub/models"
)

// ReadReviewDrafts reads review rows from CSV. The first row must be a header
// naming at least restaurant_id; recognised columns are id, restaurant_id,
// user_name, date, score, spent and comments, in any order.
func ReadReviewDrafts(r io.Reader) ([]models.ReviewDraft, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["restaurant_id"]; !ok {
		return nil, fmt.Errorf("csv: header has no restaurant_id column")
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var drafts []models.ReviewDraft
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return drafts, fmt.Errorf("csv: read line %d: %w", line, err)
		}
		drafts = append(drafts, models.ReviewDraft{
			ID:           field(rec, "id"),
			RestaurantID: field(rec, "restaurant_id"),
			UserName:     field(rec, "user_name"),
			Date:         field(rec, "date"),
			Score:        field(rec, "score"),
			Spent:        field(rec, "spent"),
			Comments:     field(rec, "comments"),
		})
	}
	return drafts, nil
}
