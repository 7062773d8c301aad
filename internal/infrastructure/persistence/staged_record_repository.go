package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/shared"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/persistence/models"
)

// GormStagedRecordRepository reads the records the shop exported for the
// cron passes
type GormStagedRecordRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ fulfillment.RecordSource = (*GormStagedRecordRepository)(nil)

// NewGormStagedRecordRepository creates a new GormStagedRecordRepository
func NewGormStagedRecordRepository(db *gorm.DB) *GormStagedRecordRepository {
	return &GormStagedRecordRepository{db: db, now: time.Now}
}

// PendingOrders returns the prepaid orders not yet sent, oldest first
func (r *GormStagedRecordRepository) PendingOrders(ctx context.Context) ([]warehouse.OrderRecord, error) {
	var rows []models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Where("sent_at IS NULL AND prepaid = ?", true).
		Order("ordid ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]warehouse.OrderRecord, 0, len(rows))
	for _, row := range rows {
		var order warehouse.OrderRecord
		if err := json.Unmarshal([]byte(row.Payload), &order); err != nil {
			return nil, fmt.Errorf("%w: staged order %d: %v", shared.ErrInvalidInput, row.OrderID, err)
		}
		order.OrderID = row.OrderID
		if order.OrderNumber == "" {
			order.OrderNumber = row.OrderNumber
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// MarkOrderSent flags an order so later passes skip it
func (r *GormStagedRecordRepository) MarkOrderSent(ctx context.Context, orderID int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.StagedOrderModel{}).
		Where("ordid = ?", orderID).
		Update("sent_at", r.now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("staged order", orderID)
	}
	return nil
}

// Articles returns the staged articles of the selection
func (r *GormStagedRecordRepository) Articles(ctx context.Context, selection fulfillment.ArticleSelection) ([]warehouse.ArticleRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.StagedArticleModel{})
	switch selection {
	case fulfillment.SelectActive:
		query = query.Where("active = ?", true)
	case fulfillment.SelectInactive:
		query = query.Where("active = ?", false)
	case fulfillment.SelectAll:
	default:
		return nil, fmt.Errorf("%w: article selection %q", shared.ErrInvalidInput, selection)
	}

	var rows []models.StagedArticleModel
	if err := query.Order("artid ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	articles := make([]warehouse.ArticleRecord, 0, len(rows))
	for _, row := range rows {
		var article warehouse.ArticleRecord
		if err := json.Unmarshal([]byte(row.Payload), &article); err != nil {
			return nil, fmt.Errorf("%w: staged article %d: %v", shared.ErrInvalidInput, row.ArticleID, err)
		}
		article.ArticleID = row.ArticleID
		article.Active = row.Active
		articles = append(articles, article)
	}
	return articles, nil
}

// StageOrder stores an order for the next order pass. Restaging an order
// replaces its payload and makes it pending again.
func (r *GormStagedRecordRepository) StageOrder(ctx context.Context, order warehouse.OrderRecord, prepaid bool) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ordid"}},
			DoUpdates: clause.AssignmentColumns([]string{"ordernumber", "payload", "prepaid", "sent_at"}),
		}).
		Create(&models.StagedOrderModel{
			OrderID:     order.OrderID,
			OrderNumber: order.OrderNumber,
			Payload:     string(payload),
			Prepaid:     prepaid,
			CreatedAt:   r.now(),
		}).Error
}

// StageArticle stores an article for the next article pass
func (r *GormStagedRecordRepository) StageArticle(ctx context.Context, article warehouse.ArticleRecord) error {
	payload, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artid"}},
			DoUpdates: clause.AssignmentColumns([]string{"ordernumber", "active", "payload", "updated_at"}),
		}).
		Create(&models.StagedArticleModel{
			ArticleID:     article.ArticleID,
			ArticleNumber: article.ArticleNumber,
			Active:        article.Active,
			Payload:       string(payload),
			UpdatedAt:     r.now(),
		}).Error
}
