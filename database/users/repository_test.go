package users

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"invest-retro/database"
)

func TestMapCreateError(t *testing.T) {
	if err := mapCreateError(gorm.ErrDuplicatedKey); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicated key should map to ErrUsernameTaken, got %v", err)
	}

	wrapped := fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey)
	if err := mapCreateError(wrapped); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("wrapped duplicated key should map to ErrUsernameTaken, got %v", err)
	}

	other := errors.New("connection reset by peer")
	err := mapCreateError(other)
	if errors.Is(err, ErrUsernameTaken) {
		t.Error("unrelated error must not map to ErrUsernameTaken")
	}
	var dbErr *database.DBError
	if !errors.As(err, &dbErr) {
		t.Errorf("unrelated error should be wrapped as DBError, got %T", err)
	}
}
