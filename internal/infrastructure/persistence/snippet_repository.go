package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/erp/yellowcube/internal/domain/shared"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/persistence/models"
)

// GormSnippetCatalog reads localized messages from the shop's snippets
type GormSnippetCatalog struct {
	db       *gorm.DB
	localeID int
}

var _ warehouse.MessageCatalog = (*GormSnippetCatalog)(nil)

// NewGormSnippetCatalog creates a catalog. A localeID of 0 takes the first
// snippet regardless of locale.
func NewGormSnippetCatalog(db *gorm.DB, localeID int) *GormSnippetCatalog {
	return &GormSnippetCatalog{db: db, localeID: localeID}
}

// Message returns the snippet value stored under namespace and key
func (c *GormSnippetCatalog) Message(ctx context.Context, namespace, key string) (string, error) {
	query := c.db.WithContext(ctx).
		Where("namespace = ? AND name = ?", namespace, key)
	if c.localeID > 0 {
		query = query.Where(`"localeID" = ?`, c.localeID)
	}

	var model models.SnippetModel
	if err := query.Order("id ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.NewNotFoundError("snippet", fmt.Sprintf("%s/%s", namespace, key))
		}
		return "", err
	}
	return model.Value, nil
}
