package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/persistence/models"
)

// GormErrorLogRepository records connector failures by operation tag
type GormErrorLogRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ warehouse.ErrorLog = (*GormErrorLogRepository)(nil)

// NewGormErrorLogRepository creates a new GormErrorLogRepository
func NewGormErrorLogRepository(db *gorm.DB) *GormErrorLogRepository {
	return &GormErrorLogRepository{db: db, now: time.Now}
}

// ErrorLogEntry is one row of the error log list
type ErrorLogEntry struct {
	ID        int64     `json:"id"`
	Tag       string    `json:"type"`
	Message   string    `json:"message"`
	IsWarning bool      `json:"isWarning"`
	CreatedAt time.Time `json:"createdAt"`
}

// Log appends a failure
func (r *GormErrorLogRepository) Log(ctx context.Context, tag, message string, isWarning bool) error {
	return r.db.WithContext(ctx).Create(&models.ErrorLogModel{
		Tag:       tag,
		Message:   message,
		IsWarning: isWarning,
		CreatedAt: r.now(),
	}).Error
}

// List returns logged failures, newest first. search matches the tag or
// the message.
func (r *GormErrorLogRepository) List(ctx context.Context, search string) ([]ErrorLogEntry, error) {
	var rows []models.ErrorLogModel
	query := r.db.WithContext(ctx).Model(&models.ErrorLogModel{})
	query = likeAny(query, search, "type", "message")
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]ErrorLogEntry, len(rows))
	for i, row := range rows {
		entries[i] = ErrorLogEntry{
			ID:        row.ID,
			Tag:       row.Tag,
			Message:   row.Message,
			IsWarning: row.IsWarning,
			CreatedAt: row.CreatedAt,
		}
	}
	return entries, nil
}

// Purge deletes entries older than before and returns how many were removed
func (r *GormErrorLogRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.ErrorLogModel{})
	return result.RowsAffected, result.Error
}
