package fulfillment

import (
	"context"
	"time"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InventorySync fetches the warehouse stock and stores the available rows
type InventorySync struct {
	service    *Service
	store      InventoryStore
	resetStock bool
	logger     *zap.Logger
}

// NewInventorySync creates a new inventory sync
func NewInventorySync(service *Service, store InventoryStore, resetStock bool, logger *zap.Logger) *InventorySync {
	return &InventorySync{
		service:    service,
		store:      store,
		resetStock: resetStock,
		logger:     logger.Named("inventory_sync"),
	}
}

// Sync fetches the inventory and stores it. The envelope carries the number
// of stored rows.
func (i *InventorySync) Sync(ctx context.Context) warehouse.ResultEnvelope[int] {
	ctx, span := telemetry.StartOperationSpan(ctx, "sync_inventory")
	defer span.End()

	fetched := i.service.FetchInventory(ctx)
	if !fetched.Success {
		return warehouse.Failed[int](warehouse.OperationInventory, fetched.Err)
	}

	rows := AvailableRows(fetched.Data.Articles)
	start := time.Now()
	count, err := i.store.StoreInventory(ctx, rows, i.resetStock)
	if err != nil {
		return failure[int](ctx, i.service, span, warehouse.OperationInventory, TagGetInventory, err, false)
	}

	i.logger.Info("Inventory stored",
		zap.Int("received", len(fetched.Data.Articles)),
		zap.Int("available", len(rows)),
		zap.Int("stored", count),
		zap.Bool("reset_stock", i.resetStock),
		zap.Duration("elapsed", time.Since(start)),
	)
	return warehouse.Succeeded(warehouse.OperationInventory, count, fetched.Outcome)
}

// AvailableRows keeps the free stock rows of the pick location
func AvailableRows(articles []warehouse.InventoryArticle) []InventoryRow {
	rows := make([]InventoryRow, 0, len(articles))
	for _, a := range articles {
		if !a.IsAvailableStock() {
			continue
		}
		rows = append(rows, InventoryRow{
			EntryID:     a.EntryID(),
			YCArticleNo: a.YCArticleNo,
			ArticleNo:   a.ArticleNo,
			Description: a.ArticleDescription,
			Additional: InventoryAdditional{
				EAN:             a.EAN,
				Plant:           a.Plant,
				StorageLocation: a.StorageLocation,
				StockType:       a.StockType,
				QuantityISO:     a.QuantityUOM.ISO,
				QuantityUOM:     a.QuantityUOM.Value,
				YCLot:           a.YCLot,
				Lot:             a.Lot,
				BestBeforeDate:  a.BestBeforeDate,
			},
		})
	}
	return rows
}
