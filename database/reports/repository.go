package reports

import (
	"database/sql"
	"fmt"
	"time"
)

// Repository runs the reporting aggregations on the raw SQL connection.
// These queries only read review_notes and trades; they never join into
// the auth tables.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new reports repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FailureTypeCount is one slice of the failure-type distribution
type FailureTypeCount struct {
	FailureType string `json:"failure_type"`
	Count       int64  `json:"count"`
}

// EmotionStat aggregates outcomes per emotion tag, e.g. "trades tagged
// '공포' averaged -15% P/L"
type EmotionStat struct {
	Tag               string  `json:"tag"`
	Count             int64   `json:"count"`
	AvgProfitLossRate float64 `json:"avg_profit_loss_rate"`
}

// Report is the per-user aggregation over a trailing window
type Report struct {
	UserID                  int64              `json:"user_id"`
	PeriodDays              int                `json:"period_days"`
	TotalReviews            int64              `json:"total_reviews"`
	FailureTypeDistribution []FailureTypeCount `json:"failure_type_distribution"`
	EmotionStats            []EmotionStat      `json:"emotion_stats"`
	GeneratedAt             time.Time          `json:"generated_at"`
}

// BuildReport aggregates the user's review notes over the trailing window
func (r *Repository) BuildReport(userID int64, days int) (*Report, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	report := &Report{
		UserID:                  userID,
		PeriodDays:              days,
		FailureTypeDistribution: []FailureTypeCount{},
		EmotionStats:            []EmotionStat{},
		GeneratedAt:             time.Now().UTC(),
	}

	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM review_notes
		WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&report.TotalReviews)
	if err != nil {
		return nil, fmt.Errorf("BuildReport count: %w", err)
	}

	if report.TotalReviews == 0 {
		return report, nil
	}

	dist, err := r.failureDistribution(userID, since)
	if err != nil {
		return nil, err
	}
	report.FailureTypeDistribution = dist

	stats, err := r.emotionStats(userID, since)
	if err != nil {
		return nil, err
	}
	report.EmotionStats = stats

	return report, nil
}

// failureDistribution counts notes per primary failure type, most frequent first
func (r *Repository) failureDistribution(userID int64, since time.Time) ([]FailureTypeCount, error) {
	rows, err := r.db.Query(`
		SELECT primary_type, COUNT(*) AS cnt
		FROM review_notes
		WHERE user_id = $1 AND created_at >= $2 AND primary_type <> ''
		GROUP BY primary_type
		ORDER BY cnt DESC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failureDistribution: %w", err)
	}
	defer rows.Close()

	var dist []FailureTypeCount
	for rows.Next() {
		var ftc FailureTypeCount
		if err := rows.Scan(&ftc.FailureType, &ftc.Count); err != nil {
			return nil, fmt.Errorf("failureDistribution scan: %w", err)
		}
		dist = append(dist, ftc)
	}
	return dist, rows.Err()
}

// emotionStats unnests the JSONB emotion tags and joins each tag against
// the trade's derived P/L rate
func (r *Repository) emotionStats(userID int64, since time.Time) ([]EmotionStat, error) {
	rows, err := r.db.Query(`
		SELECT tag, COUNT(*) AS cnt, COALESCE(AVG(t.profit_loss_rate), 0) AS avg_pl
		FROM review_notes rn
		JOIN trades t ON t.id = rn.trade_id
		CROSS JOIN LATERAL jsonb_array_elements_text(rn.emotion_tags) AS tag
		WHERE rn.user_id = $1 AND rn.created_at >= $2
		GROUP BY tag
		ORDER BY cnt DESC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("emotionStats: %w", err)
	}
	defer rows.Close()

	var stats []EmotionStat
	for rows.Next() {
		var es EmotionStat
		if err := rows.Scan(&es.Tag, &es.Count, &es.AvgProfitLossRate); err != nil {
			return nil, fmt.Errorf("emotionStats scan: %w", err)
		}
		stats = append(stats, es)
	}
	return stats, rows.Err()
}
