package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"biteclub/models"
)

func TestCSVWriterDashboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dashboard.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	rows := []models.RestaurantWithStats{{
		Restaurant:   models.Restaurant{ID: "r1", Name: "Noodle Bar", Address: "1 Main St", MapsURL: "https://maps/1"},
		Reviews:      []models.Review{{ID: "v1"}, {ID: "v2"}},
		AverageScore: 4.5,
		TotalSpent:   62.25,
	}}
	if err := w.WriteDashboard(rows); err != nil {
		t.Fatalf("WriteDashboard: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if want := "r1,Noodle Bar,1 Main St,https://maps/1,2,4.50,62.25"; lines[1] != want {
		t.Errorf("row: got %q, want %q", lines[1], want)
	}
}

func TestReadReviewDrafts(t *testing.T) {
	in := "restaurant_id,user_name,score,spent,date,comments\n" +
		"r1,Ana,5,12.50,2024-03-01,\"great, really\"\n" +
		"r2,Ben,3,abc,,\n"

	drafts, err := ReadReviewDrafts(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadReviewDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts: got %d, want 2", len(drafts))
	}
	if drafts[0].RestaurantID != "r1" || drafts[0].Comments != "great, really" || drafts[0].Spent != "12.50" {
		t.Errorf("first draft: got %+v", drafts[0])
	}
	if drafts[1].Spent != "abc" || drafts[1].Date != "" {
		t.Errorf("second draft: got %+v", drafts[1])
	}
}

func TestReadReviewDraftsRequiresRestaurantColumn(t *testing.T) {
	if _, err := ReadReviewDrafts(strings.NewReader("user_name,score\nAna,5\n")); err == nil {
		t.Error("expected error without restaurant_id column")
	}
}
