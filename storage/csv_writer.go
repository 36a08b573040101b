package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"biteclub/models"
)

var (
	dashboardHeader = []string{"id", "name", "address", "maps_url", "reviews", "average_score", "total_spent"}
	reviewHeader    = []string{"id", "restaurant_id", "user_name", "date", "score", "spent", "comments"}
)

// CSVWriter exports dashboard rows or the review log to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteDashboard writes a header and one row per restaurant.
func (c *CSVWriter) WriteDashboard(rows []models.RestaurantWithStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(dashboardHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.Name,
			r.Address,
			r.MapsURL,
			strconv.Itoa(len(r.Reviews)),
			strconv.FormatFloat(r.AverageScore, 'f', 2, 64),
			strconv.FormatFloat(r.TotalSpent, 'f', 2, 64),
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// WriteReviews writes a header and one row per review.
func (c *CSVWriter) WriteReviews(reviews []models.Review) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(reviewHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range reviews {
		record := []string{
			r.ID,
			r.RestaurantID,
			r.UserName,
			r.Date,
			strconv.Itoa(r.Score),
			strconv.FormatFloat(r.Spent, 'f', 2, 64),
			r.Comments,
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
