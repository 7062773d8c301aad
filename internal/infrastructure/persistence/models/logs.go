package models

import "time"

// ErrorLogModel is one logged failure
type ErrorLogModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Tag       string    `gorm:"column:type;type:varchar(64);not null;index"`
	Message   string    `gorm:"column:message;type:text"`
	IsWarning bool      `gorm:"column:is_warning;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}

// TableName returns the table name for GORM
func (ErrorLogModel) TableName() string {
	return "asign_yellowcube_logs"
}
