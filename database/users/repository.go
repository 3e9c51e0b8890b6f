package users

import (
	"errors"

	"gorm.io/gorm"

	"invest-retro/database"
	models "invest-retro/database/models_pkg"
)

// ErrUsernameTaken is returned when registration hits the unique username index
var ErrUsernameTaken = errors.New("username already registered")

// Repository handles database operations for user accounts
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user account
func (r *Repository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return mapCreateError(err)
	}
	return nil
}

// mapCreateError translates the unique-index violation on username into
// ErrUsernameTaken. Requires the connection's TranslateError mode.
func mapCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	return database.WrapDBError("Create", err)
}

// GetByUsername retrieves a user by username
func (r *Repository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundError("user")
	}
	if err != nil {
		return nil, database.WrapDBError("GetByUsername", err)
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *Repository) GetByID(id int64) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.NewNotFoundErrorWithID("user", id)
	}
	if err != nil {
		return nil, database.WrapDBError("GetByID", err)
	}
	return &user, nil
}
