package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"biteclub/models"
)

// PostgresStore is the remote store: restaurants and reviews tables keyed by
// a text id.
type PostgresStore struct {
	db *sql.DB
}

// DialPostgres is a Dialer. sql.Open only validates the DSN syntax lazily, so
// an unreachable endpoint is reported by the first query, not here.
func DialPostgres(cfg models.RemoteConfig) (RemoteStore, error) {
	return NewPostgresStore(cfg)
}

// NewPostgresStore builds a store for cfg without contacting the server.
func NewPostgresStore(cfg models.RemoteConfig) (*PostgresStore, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	return &PostgresStore{db: db}, nil
}

// BuildDSN merges the credential into the endpoint. The endpoint is either a
// postgres:// URL or a key=value connection string.
func BuildDSN(cfg models.RemoteConfig) (string, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("postgres: empty endpoint")
	}

	if strings.HasPrefix(endpoint, "postgres://") || strings.HasPrefix(endpoint, "postgresql://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return "", fmt.Errorf("postgres: parse endpoint: %w", err)
		}
		if cfg.Credential != "" {
			user := "postgres"
			if u.User != nil && u.User.Username() != "" {
				user = u.User.Username()
			}
			u.User = url.UserPassword(user, cfg.Credential)
		}
		return u.String(), nil
	}

	if cfg.Credential == "" {
		return endpoint, nil
	}
	return endpoint + " password=" + quoteDSNValue(cfg.Credential), nil
}

func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Ping checks that the server is reachable with the configured credential.
func (ps *PostgresStore) Ping(ctx context.Context) error {
	if err := ps.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

// EnsureSchema creates the two tables when they are missing. It is only run
// on explicit operator request; normal operation assumes the schema exists.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS restaurants (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL DEFAULT '',
			address  TEXT NOT NULL DEFAULT '',
			maps_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id            TEXT PRIMARY KEY,
			restaurant_id TEXT          NOT NULL,
			user_name     TEXT          NOT NULL DEFAULT '',
			date          TEXT          NOT NULL DEFAULT '',
			score         INTEGER       NOT NULL,
			spent         NUMERIC(12,2) NOT NULL DEFAULT 0,
			comments      TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_restaurant ON reviews(restaurant_id);
	`)
	if err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := ps.db.QueryContext(ctx, `SELECT id, name, address, maps_url FROM restaurants`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]models.Restaurant, 0)
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.MapsURL); err != nil {
			return nil, fmt.Errorf("postgres: scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

func (ps *PostgresStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT id, restaurant_id, user_name, date, score, spent, COALESCE(comments, '')
		FROM reviews
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(
			&r.ID, &r.RestaurantID, &r.UserName, &r.Date, &r.Score, &r.Spent, &r.Comments,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (ps *PostgresStore) UpsertRestaurant(ctx context.Context, r models.Restaurant) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO restaurants (id, name, address, maps_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name     = EXCLUDED.name,
			address  = EXCLUDED.address,
			maps_url = EXCLUDED.maps_url
	`, r.ID, r.Name, r.Address, r.MapsURL)
	if err != nil {
		return fmt.Errorf("postgres: upsert restaurant %q: %w", r.ID, err)
	}
	return nil
}

func (ps *PostgresStore) UpsertReview(ctx context.Context, r models.Review) error {
	var comments sql.NullString
	if r.Comments != "" {
		comments = sql.NullString{String: r.Comments, Valid: true}
	}
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO reviews (id, restaurant_id, user_name, date, score, spent, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			restaurant_id = EXCLUDED.restaurant_id,
			user_name     = EXCLUDED.user_name,
			date          = EXCLUDED.date,
			score         = EXCLUDED.score,
			spent         = EXCLUDED.spent,
			comments      = EXCLUDED.comments
	`, r.ID, r.RestaurantID, r.UserName, r.Date, r.Score, r.Spent, comments)
	if err != nil {
		return fmt.Errorf("postgres: upsert review %q: %w", r.ID, err)
	}
	return nil
}

func (ps *PostgresStore) DeleteReview(ctx context.Context, id string) error {
	if _, err := ps.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete review %q: %w", id, err)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
