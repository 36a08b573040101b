package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"biteclub/models"
	"biteclub/utils"
)

// DefaultScore is the rating a fresh form starts with.
const DefaultScore = 5

var (
	// amountRegexp captures the first signed decimal in an amount field
	amountRegexp = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	ErrBadScore = errors.New("score is not a number")
	ErrBadDate  = errors.New("date must be YYYY-MM-DD")
)

// ReviewForm turns raw form input into Reviews.
type ReviewForm struct {
	logger *utils.Logger
	now    func() time.Time
	newID  func() string
}

func NewReviewForm(logger *utils.Logger) *ReviewForm {
	return &ReviewForm{logger: logger, now: time.Now, newID: NewID}
}

// NewID generates a review or restaurant id.
func NewID() string {
	return uuid.NewString()
}

// Build parses a draft. An empty id gets a new one, an empty date becomes
// today, an empty score becomes DefaultScore and an amount that does not
// parse becomes zero. Range checks are left to the gateway.
func (f *ReviewForm) Build(d models.ReviewDraft) (models.Review, error) {
	score, err := f.parseScore(d.Score)
	if err != nil {
		return models.Review{}, err
	}
	date, err := f.parseDate(d.Date)
	if err != nil {
		return models.Review{}, err
	}

	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = f.newID()
	}

	return models.Review{
		ID:           id,
		RestaurantID: strings.TrimSpace(d.RestaurantID),
		UserName:     normaliseText(d.UserName),
		Date:         date,
		Score:        score,
		Spent:        f.parseAmount(d.Spent),
		Comments:     strings.TrimSpace(d.Comments),
	}, nil
}

func (f *ReviewForm) parseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultScore, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadScore, raw)
	}
	return n, nil
}

func (f *ReviewForm) parseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return f.now().Format(models.DateLayout), nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadDate, raw)
	}
	return t.Format(models.DateLayout), nil
}

// parseAmount extracts a decimal amount, tolerating currency symbols and
// thousands separators. Anything unparseable is zero.
func (f *ReviewForm) parseAmount(raw string) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	match := amountRegexp.FindString(cleaned)
	if match == "" {
		if raw != "" && f.logger != nil {
			f.logger.Debug("[form] Amount %q is not a number, using 0", raw)
		}
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return v
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
