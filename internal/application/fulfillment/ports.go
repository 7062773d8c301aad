package fulfillment

import (
	"context"

	"github.com/erp/yellowcube/internal/domain/warehouse"
)

// Caller invokes a provider operation. It decodes the reply into response
// and returns an error on transport failures and SOAP faults.
type Caller interface {
	Call(ctx context.Context, operation string, request, response any) error
}

// OrderResponseSlot selects where an order response is stored
type OrderResponseSlot string

const (
	SlotOrderCreation OrderResponseSlot = "creation"
	SlotOrderStatus   OrderResponseSlot = "status"
	SlotOrderReply    OrderResponseSlot = "reply"
)

// ResponseStore persists provider responses keyed by record id. Saves are
// upserts, so storing the same response twice is harmless.
type ResponseStore interface {
	SaveArticleResponse(ctx context.Context, articleID int64, resp *warehouse.GenericResponse) error
	SaveOrderResponse(ctx context.Context, orderID int64, slot OrderResponseSlot, reference string, resp any) error
}

// ReferenceLookup resolves the number a status query is keyed by
type ReferenceLookup interface {
	ArticleReference(ctx context.Context, articleID int64) (string, error)
	OrderReference(ctx context.Context, orderID int64) (string, error)
	OrderNumber(ctx context.Context, orderID int64) (string, error)
}

// DocumentSource loads the invoice of an order as base64 text. It returns
// an empty string when the order has no invoice.
type DocumentSource interface {
	InvoiceDocument(ctx context.Context, order warehouse.OrderRecord) (string, error)
}

// SubmissionGuard keeps the same order from being sent twice concurrently
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// InventoryRow is one available stock row ready to be stored
type InventoryRow struct {
	EntryID     string
	YCArticleNo string
	ArticleNo   string
	Description string
	Additional  InventoryAdditional
}

// InventoryAdditional is stored alongside an inventory row as JSON
type InventoryAdditional struct {
	EAN             string  `json:"EAN"`
	Plant           string  `json:"Plant"`
	StorageLocation string  `json:"StorageLocation"`
	StockType       string  `json:"StockType"`
	QuantityISO     string  `json:"QuantityISO"`
	QuantityUOM     float64 `json:"QuantityUOM"`
	YCLot           string  `json:"YCLot"`
	Lot             string  `json:"Lot"`
	BestBeforeDate  string  `json:"BestBeforeDate"`
}

// InventoryStore replaces the stored inventory. When resetStock is set the
// stock of every article accepted by the provider is zeroed first; reset
// and insert happen atomically. Rows whose article is unknown are skipped.
type InventoryStore interface {
	StoreInventory(ctx context.Context, rows []InventoryRow, resetStock bool) (int, error)
}

// ArticleSelection picks staged articles for a cron pass
type ArticleSelection string

const (
	SelectActive   ArticleSelection = "ax"
	SelectInactive ArticleSelection = "ix"
	SelectAll      ArticleSelection = "xx"
)

// RecordSource supplies the staged shop records cron passes work on
type RecordSource interface {
	PendingOrders(ctx context.Context) ([]warehouse.OrderRecord, error)
	MarkOrderSent(ctx context.Context, orderID int64) error
	Articles(ctx context.Context, selection ArticleSelection) ([]warehouse.ArticleRecord, error)
}
