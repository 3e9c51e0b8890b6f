package reviews

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"invest-retro/database"
	models "invest-retro/database/models_pkg"
)

// Repository handles database operations for trades and their review notes
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTrade inserts a trade and its review note atomically. The trade
// insert runs first inside the transaction so its generated id can be set
// as the note's foreign key; any failure on either insert rolls back both.
// Partial writes are never observable.
func (r *Repository) CreateWithTrade(trade *models.Trade, note *models.ReviewNote) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
		note.TradeID = trade.ID
		if err := tx.Create(note).Error; err != nil {
			return fmt.Errorf("insert review note: %w", err)
		}
		return nil
	})
	if err != nil {
		return database.WrapDBError("CreateWithTrade", err)
	}
	return nil
}

// GetByID retrieves a review note owned by the given user. Notes owned by
// other users surface as not-found.
func (r *Repository) GetByID(id, userID int64) (*models.ReviewNote, error) {
	var note models.ReviewNote
	err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("review note", id)
	}
	if err != nil {
		return nil, database.WrapDBError("GetByID", err)
	}
	return &note, nil
}

// List retrieves the user's review notes, newest first
func (r *Repository) List(userID int64, offset, limit int) ([]models.ReviewNote, error) {
	var notes []models.ReviewNote
	query := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset)

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&notes).Error; err != nil {
		return nil, database.WrapDBError("List", err)
	}
	return notes, nil
}

// UpdateFinalMemo sets the owner-editable final memo on a review note and
// returns the updated record. The final memo is the only mutable field.
func (r *Repository) UpdateFinalMemo(id, userID int64, memo string) (*models.ReviewNote, error) {
	result := r.db.
		Model(&models.ReviewNote{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("final_memo", memo)
	if result.Error != nil {
		return nil, database.WrapDBError("UpdateFinalMemo", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, database.NewNotFoundErrorWithID("review note", id)
	}
	return r.GetByID(id, userID)
}
