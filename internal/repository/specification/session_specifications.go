package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy scopes session queries to the initiating user.
type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// InState filters sessions by workflow state.
type InState struct {
	State string
}

func (s InState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("current_state = ?", s.State)
}
