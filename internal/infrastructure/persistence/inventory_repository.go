package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/persistence/models"
)

// GormInventoryRepository stores the warehouse stock report
type GormInventoryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ fulfillment.InventoryStore = (*GormInventoryRepository)(nil)

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db, now: time.Now}
}

// InventoryView is one row of the inventory list
type InventoryView struct {
	ID          string                          `json:"id"`
	ArticleID   int64                           `json:"artid"`
	YCArticleNo string                          `json:"ycarticlenr"`
	ArticleNo   string                          `json:"articlenr"`
	Description string                          `json:"artdesc"`
	Additional  fulfillment.InventoryAdditional `json:"additional"`
	UpdatedAt   time.Time                       `json:"createdon"`
}

// StoreInventory resets the stock of accepted articles when asked, then
// upserts every row whose article exists in the shop. Both happen in one
// transaction. It returns the number of stored rows.
func (r *GormInventoryRepository) StoreInventory(ctx context.Context, rows []fulfillment.InventoryRow, resetStock bool) (int, error) {
	stored := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if resetStock {
			if err := r.resetStock(tx); err != nil {
				return err
			}
		}

		now := r.now()
		for _, row := range rows {
			if row.EntryID == "" {
				continue
			}

			var detail models.ShopArticleDetailModel
			result := tx.Select("articleID").Where("ordernumber = ?", row.ArticleNo).Limit(1).Find(&detail)
			if result.Error != nil {
				return fmt.Errorf("lookup article %s: %w", row.ArticleNo, result.Error)
			}
			if result.RowsAffected == 0 {
				continue
			}

			additional, err := json.Marshal(row.Additional)
			if err != nil {
				return fmt.Errorf("failed to marshal inventory info: %w", err)
			}

			item := &models.InventoryItemModel{
				ID:          row.EntryID,
				ArticleID:   detail.ArticleID,
				YCArticleNo: row.YCArticleNo,
				ArticleNo:   row.ArticleNo,
				Description: row.Description,
				Additional:  string(additional),
				UpdatedAt:   now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"createdon", "additional"}),
			}).Create(item).Error; err != nil {
				return fmt.Errorf("store inventory row %s: %w", row.EntryID, err)
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

// resetStock zeroes the shop stock of every article the provider accepted.
// The provider only reports articles with stock, so the others must read 0.
func (r *GormInventoryRepository) resetStock(tx *gorm.DB) error {
	accepted := tx.Model(&models.ArticleResponseModel{}).
		Select("artid").
		Where("status_code = ?", int(warehouse.StatusCodeAccepted))

	if err := tx.Model(&models.ShopArticleDetailModel{}).
		Where(`"articleID" IN (?)`, accepted).
		Update("instock", 0).Error; err != nil {
		return fmt.Errorf("reset stock: %w", err)
	}
	return nil
}

// List returns the stored stock rows, newest first. search matches the
// article numbers, the description or the additional info.
func (r *GormInventoryRepository) List(ctx context.Context, search string) ([]InventoryView, error) {
	var rows []models.InventoryItemModel
	query := r.db.WithContext(ctx).Model(&models.InventoryItemModel{})
	query = likeAny(query, search, "ycarticlenr", "articlenr", "artdesc", "additional")
	if err := query.Order("createdon DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]InventoryView, len(rows))
	for i, row := range rows {
		views[i] = InventoryView{
			ID:          row.ID,
			ArticleID:   row.ArticleID,
			YCArticleNo: row.YCArticleNo,
			ArticleNo:   row.ArticleNo,
			Description: row.Description,
			UpdatedAt:   row.UpdatedAt,
		}
		_ = json.Unmarshal([]byte(row.Additional), &views[i].Additional)
	}
	return views, nil
}
