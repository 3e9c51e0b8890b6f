package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"unicode/utf8"

	"invest-retro/database"
	models "invest-retro/database/models_pkg"
	"invest-retro/database/types"
	"invest-retro/feedback"
	"invest-retro/llm"
	"invest-retro/marketdata"
)

// Step-level failure kinds. Market data errors pass through from the
// marketdata package; these cover the classification and persistence steps.
var (
	ErrClassification = errors.New("ai analysis failed")
	ErrStorage        = errors.New("failed to save review note")
)

// Input length limits, enforced before any external call
const (
	maxTickerLen    = 20
	minEmotionTags  = 1
	maxEmotionTags  = 10
	maxEmotionLen   = 20
	minMemoLen      = 10
	maxMemoLen      = 2000
	maxFinalMemoLen = 5000
)

// profitLossPattern matches the parenthesized signed percentage embedded
// in the trade summary, e.g. "삼성전자 (-6.5%)"
var profitLossPattern = regexp.MustCompile(`\(([+-]?\d+\.?\d*)%\)`)

// MarketClient fetches the objective snapshot for a ticker
type MarketClient interface {
	FetchContext(ctx context.Context, ticker string) (*marketdata.Snapshot, error)
}

// Classifier runs the compiled prompt through the model
type Classifier interface {
	Classify(ctx context.Context, messages []llm.Message) (*feedback.Output, error)
}

// Repository is the persistence slice the service needs
type Repository interface {
	CreateWithTrade(trade *models.Trade, note *models.ReviewNote) error
	GetByID(id, userID int64) (*models.ReviewNote, error)
	List(userID int64, offset, limit int) ([]models.ReviewNote, error)
	UpdateFinalMemo(id, userID int64, memo string) (*models.ReviewNote, error)
}

// Service orchestrates review creation: snapshot fetch, prompt compilation,
// classification, and the atomic Trade+ReviewNote write. The step order is
// fixed - each step consumes the previous step's output, and no database
// write happens until classification has succeeded.
type Service struct {
	market     MarketClient
	classifier Classifier
	repo       Repository
}

// NewService creates a new review service
func NewService(market MarketClient, classifier Classifier, repo Repository) *Service {
	return &Service{
		market:     market,
		classifier: classifier,
		repo:       repo,
	}
}

// CreateRequest is the inbound payload for review creation
type CreateRequest struct {
	Ticker      string   `json:"ticker"`
	TradeInfo   string   `json:"trade_info"`
	EmotionTags []string `json:"emotion_tags"`
	Memo        string   `json:"memo"`
}

// Validate checks all field constraints. It runs before any external call.
func (r *CreateRequest) Validate() error {
	if r.Ticker == "" {
		return database.NewValidationError("ticker", "must not be empty")
	}
	if utf8.RuneCountInString(r.Ticker) > maxTickerLen {
		return database.NewValidationError("ticker", fmt.Sprintf("must be at most %d characters", maxTickerLen))
	}
	if r.TradeInfo == "" {
		return database.NewValidationError("trade_info", "must not be empty")
	}
	if len(r.EmotionTags) < minEmotionTags || len(r.EmotionTags) > maxEmotionTags {
		return database.NewValidationError("emotion_tags", fmt.Sprintf("must contain between %d and %d tags", minEmotionTags, maxEmotionTags))
	}
	for _, tag := range r.EmotionTags {
		if tag == "" || utf8.RuneCountInString(tag) > maxEmotionLen {
			return database.NewValidationError("emotion_tags", fmt.Sprintf("each tag must be between 1 and %d characters", maxEmotionLen))
		}
	}
	memoLen := utf8.RuneCountInString(r.Memo)
	if memoLen < minMemoLen || memoLen > maxMemoLen {
		return database.NewValidationError("memo", fmt.Sprintf("must be between %d and %d characters", minMemoLen, maxMemoLen))
	}
	return nil
}

// Feedback is the classification result echoed back to the caller. The
// persisted snapshot context is not included here; it is visible via a
// later read.
type Feedback struct {
	Analysis      string  `json:"analysis"`
	Questions     string  `json:"questions"`
	PrimaryType   string  `json:"primary_type"`
	SecondaryType *string `json:"secondary_type"`
}

// CreateReview runs the full pipeline for one authenticated user. Failure
// of any step aborts the whole operation; the Trade and ReviewNote rows
// only ever appear together.
func (s *Service) CreateReview(ctx context.Context, userID int64, req CreateRequest) (*Feedback, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. Objective snapshot. Provider failures abort before any DB write.
	log.Printf("Fetching market context for %s (user %d)", req.Ticker, userID)
	snap, err := s.market.FetchContext(ctx, req.Ticker)
	if err != nil {
		return nil, err
	}

	// 2-3. Compile the prompt and classify. A classification failure also
	// aborts before any DB write.
	messages := feedback.CompilePrompt(feedback.ReviewInput{
		Ticker:      req.Ticker,
		TradeInfo:   req.TradeInfo,
		EmotionTags: req.EmotionTags,
		Memo:        req.Memo,
	}, snap)

	out, err := s.classifier.Classify(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	log.Printf("AI classification complete for user %d: primary_type=%s", userID, out.PrimaryType)

	// 4-5. Derive the P/L rate and persist trade + note atomically
	trade := &models.Trade{
		UserID:         userID,
		Ticker:         req.Ticker,
		ProfitLossRate: ExtractProfitLossRate(req.TradeInfo),
	}
	note := &models.ReviewNote{
		UserID:           userID,
		SubjectiveMemo:   req.Memo,
		EmotionTags:      types.StringList(req.EmotionTags),
		ChartContext:     sectionDocument(snap.Chart),
		FinancialContext: sectionDocument(snap.Financial),
		NewsContext:      sectionDocument(snap.News),
		MarketContext:    sectionDocument(snap.Market),
		AIAnalysis:       out.Analysis,
		AIQuestions:      out.Questions,
		PrimaryType:      out.PrimaryType,
		SecondaryType:    out.SecondaryType,
	}

	if err := s.repo.CreateWithTrade(trade, note); err != nil {
		// The caller gets a generic storage error; the two inserts are not
		// independently meaningful
		log.Printf("Failed to save review for user %d: %v", userID, err)
		return nil, ErrStorage
	}
	log.Printf("Review note %d saved for user %d (trade %d)", note.ID, userID, trade.ID)

	return &Feedback{
		Analysis:      out.Analysis,
		Questions:     out.Questions,
		PrimaryType:   out.PrimaryType,
		SecondaryType: out.SecondaryType,
	}, nil
}

// GetReview returns one of the user's review notes
func (s *Service) GetReview(id, userID int64) (*models.ReviewNote, error) {
	return s.repo.GetByID(id, userID)
}

// ListReviews returns the user's review notes, newest first
func (s *Service) ListReviews(userID int64, offset, limit int) ([]models.ReviewNote, error) {
	return s.repo.List(userID, offset, limit)
}

// UpdateFinalMemo attaches or replaces the owner's final memo on a review
func (s *Service) UpdateFinalMemo(id, userID int64, memo string) (*models.ReviewNote, error) {
	if utf8.RuneCountInString(memo) > maxFinalMemoLen {
		return nil, database.NewValidationError("final_memo", fmt.Sprintf("must be at most %d characters", maxFinalMemoLen))
	}
	return s.repo.UpdateFinalMemo(id, userID, memo)
}

// ExtractProfitLossRate pulls the signed percentage embedded in the trade
// summary text: "삼성전자 (-6.5%)" yields -6.5. Returns nil when no
// parenthesized percentage is present.
func ExtractProfitLossRate(tradeInfo string) *float64 {
	match := profitLossPattern.FindStringSubmatch(tradeInfo)
	if match == nil {
		return nil
	}
	rate, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}
	return &rate
}

// sectionDocument converts a snapshot section to its persisted JSONB form.
// Erroring sections are stored as the provider's error marker so the
// read-back contract can surface exactly what was known at review time.
func sectionDocument(sec marketdata.Section) types.Document {
	if sec.OK() {
		return types.Document(sec.Data)
	}
	doc, err := json.Marshal(map[string]string{"error": sec.Err})
	if err != nil {
		return nil
	}
	return types.Document(doc)
}
