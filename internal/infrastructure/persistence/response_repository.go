package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/shared"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/persistence/models"
)

// GormResponseRepository stores provider responses per article and order
// and answers the reference lookups of the status queries
type GormResponseRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ fulfillment.ResponseStore   = (*GormResponseRepository)(nil)
	_ fulfillment.ReferenceLookup = (*GormResponseRepository)(nil)
)

// NewGormResponseRepository creates a new GormResponseRepository
func NewGormResponseRepository(db *gorm.DB) *GormResponseRepository {
	return &GormResponseRepository{db: db, now: time.Now}
}

// SaveArticleResponse upserts the reply for an article. A reply without a
// reference keeps the stored one.
func (r *GormResponseRepository) SaveArticleResponse(ctx context.Context, articleID int64, resp *warehouse.GenericResponse) error {
	if resp == nil {
		return fmt.Errorf("save article response %d: %w", articleID, warehouse.ErrUnexpectedShape)
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal article response: %w", err)
	}

	now := r.now()
	model := &models.ArticleResponseModel{
		ArticleID:  articleID,
		Reference:  resp.Reference,
		Response:   string(payload),
		StatusType: string(resp.StatusType),
		StatusCode: int(resp.StatusCode),
		LastSentAt: now,
		CreatedAt:  now,
	}

	updates := []string{"yc_response", "status_type", "status_code", "last_sent_at"}
	if resp.Reference != "" {
		updates = append(updates, "yc_reference")
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "artid"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(model).Error
}

// SaveOrderResponse upserts one reply slot of an order. The creation slot
// also records the reference and the send time.
func (r *GormResponseRepository) SaveOrderResponse(ctx context.Context, orderID int64, slot fulfillment.OrderResponseSlot, reference string, resp any) error {
	if resp == nil {
		return fmt.Errorf("save order response %d: %w", orderID, warehouse.ErrUnexpectedShape)
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal order response: %w", err)
	}

	now := r.now()
	model := &models.OrderResponseModel{
		OrderID:   orderID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var updates []string
	switch slot {
	case fulfillment.SlotOrderCreation:
		model.WabResponse = string(payload)
		model.LastSentAt = &now
		updates = []string{"yc_wab_response", "last_sent_at"}
		if reference != "" {
			model.Reference = reference
			updates = append(updates, "yc_reference")
		}
	case fulfillment.SlotOrderStatus:
		model.StatusResponse = string(payload)
		updates = []string{"yc_response"}
	case fulfillment.SlotOrderReply:
		model.WarResponse = string(payload)
		updates = []string{"yc_war_response"}
	default:
		return fmt.Errorf("unknown order response slot %q", slot)
	}
	updates = append(updates, "updated_at")

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ordid"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(model).Error
}

// ArticleReference returns the stored provider reference of an article
func (r *GormResponseRepository) ArticleReference(ctx context.Context, articleID int64) (string, error) {
	var model models.ArticleResponseModel
	if err := r.db.WithContext(ctx).
		Select("yc_reference").
		Where("artid = ?", articleID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.NewNotFoundError("article response", articleID)
		}
		return "", err
	}
	return model.Reference, nil
}

// OrderReference returns the stored provider reference of an order
func (r *GormResponseRepository) OrderReference(ctx context.Context, orderID int64) (string, error) {
	var model models.OrderResponseModel
	if err := r.db.WithContext(ctx).
		Select("yc_reference").
		Where("ordid = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.NewNotFoundError("order response", orderID)
		}
		return "", err
	}
	return model.Reference, nil
}

// OrderNumber returns the shop order number the WAR query is keyed by
func (r *GormResponseRepository) OrderNumber(ctx context.Context, orderID int64) (string, error) {
	var model models.StagedOrderModel
	if err := r.db.WithContext(ctx).
		Select("ordernumber").
		Where("ordid = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.NewNotFoundError("order", orderID)
		}
		return "", err
	}
	return model.OrderNumber, nil
}

// SaveEori stores the EORI number of an order
func (r *GormResponseRepository) SaveEori(ctx context.Context, orderID int64, eori string) error {
	now := r.now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ordid"}},
			DoUpdates: clause.AssignmentColumns([]string{"eori", "updated_at"}),
		}).
		Create(&models.OrderResponseModel{OrderID: orderID, Eori: eori, CreatedAt: now, UpdatedAt: now}).Error
}

// Eori returns the EORI number of an order, or "" when none is stored
func (r *GormResponseRepository) Eori(ctx context.Context, orderID int64) (string, error) {
	var model models.OrderResponseModel
	err := r.db.WithContext(ctx).
		Select("eori").
		Where("ordid = ?", orderID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return model.Eori, nil
}
