package models

import (
	"time"

	"invest-retro/database/types"
)

// User represents an account that owns trades and review notes.
// Passwords are stored bcrypt-hashed and never serialized.
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	HashedPassword string    `gorm:"not null" json:"-"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Trade represents a single recorded trade owned by one user.
//
// ProfitLossRate is derived from the free-text trade summary at review
// creation time (the parenthesized signed percentage, e.g. "(-6.5%)").
// It stays nil when no such pattern is present in the text.
type Trade struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64      `gorm:"index;not null" json:"user_id"`
	Ticker         string     `gorm:"size:20;index;not null" json:"ticker"`
	BuyDate        *time.Time `json:"buy_date,omitempty"`
	SellDate       *time.Time `json:"sell_date,omitempty"`
	ProfitLossRate *float64   `gorm:"type:decimal(10,4)" json:"profit_loss_rate,omitempty"`
}

// TableName specifies the table name for Trade
func (Trade) TableName() string {
	return "trades"
}

// ReviewNote pairs a user's subjective account of a trade with the
// objective market snapshot captured at review time and the AI-derived
// failure classification.
//
// Key Fields:
//   - TradeID: 1:1 with Trade, enforced by a unique index. A note is only
//     ever created in the same transaction as its trade.
//   - ChartContext/FinancialContext/NewsContext/MarketContext: the four
//     snapshot sub-sections, each stored verbatim as JSONB. A sub-section
//     that failed upstream holds the provider's error marker instead of data.
//   - PrimaryType: mandatory failure category assigned by the classifier.
//   - SecondaryType: optional co-occurring cause; nil when none.
//   - FinalMemo: free text the owner may attach after reading the feedback;
//     the only field that is ever updated after creation.
type ReviewNote struct {
	ID             int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64            `gorm:"index;not null" json:"user_id"`
	TradeID        int64            `gorm:"uniqueIndex;not null" json:"trade_id"`
	CreatedAt      time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	SubjectiveMemo string           `json:"subjective_memo"`
	EmotionTags    types.StringList `json:"emotion_tags"`

	ChartContext     types.Document `json:"chart_context,omitempty"`
	FinancialContext types.Document `json:"financial_context,omitempty"`
	NewsContext      types.Document `json:"news_context,omitempty"`
	MarketContext    types.Document `json:"market_context,omitempty"`

	AIAnalysis    string  `json:"ai_analysis"`
	AIQuestions   string  `json:"ai_questions"`
	PrimaryType   string  `gorm:"size:50;index" json:"primary_type"`
	SecondaryType *string `gorm:"size:50" json:"secondary_type"`

	FinalMemo *string `json:"final_memo,omitempty"`
}

// TableName specifies the table name for ReviewNote
func (ReviewNote) TableName() string {
	return "review_notes"
}
