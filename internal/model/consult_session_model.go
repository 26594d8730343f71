package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConsultSession struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	ChatHistory     datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CompanyInfo     *string        `gorm:"type:text"`
	ResearchResults datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ReportFinal     *string        `gorm:"type:text"`
	CurrentState    string         `gorm:"type:varchar(32);not null;default:'WAITING_FOR_INFO'"`
	ResearchCounter int            `gorm:"not null;default:0"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (ConsultSession) TableName() string {
	return "consult_sessions"
}
