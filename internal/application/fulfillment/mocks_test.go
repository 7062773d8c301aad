package fulfillment

import (
	"context"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/stretchr/testify/mock"
)

// MockCaller is a mock implementation of Caller
type MockCaller struct {
	mock.Mock
}

func (m *MockCaller) Call(ctx context.Context, operation string, request, response any) error {
	args := m.Called(ctx, operation, request, response)
	return args.Error(0)
}

// MockResponseStore is a mock implementation of ResponseStore
type MockResponseStore struct {
	mock.Mock
}

func (m *MockResponseStore) SaveArticleResponse(ctx context.Context, articleID int64, resp *warehouse.GenericResponse) error {
	args := m.Called(ctx, articleID, resp)
	return args.Error(0)
}

func (m *MockResponseStore) SaveOrderResponse(ctx context.Context, orderID int64, slot OrderResponseSlot, reference string, resp any) error {
	args := m.Called(ctx, orderID, slot, reference, resp)
	return args.Error(0)
}

// MockReferenceLookup is a mock implementation of ReferenceLookup
type MockReferenceLookup struct {
	mock.Mock
}

func (m *MockReferenceLookup) ArticleReference(ctx context.Context, articleID int64) (string, error) {
	args := m.Called(ctx, articleID)
	return args.String(0), args.Error(1)
}

func (m *MockReferenceLookup) OrderReference(ctx context.Context, orderID int64) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

func (m *MockReferenceLookup) OrderNumber(ctx context.Context, orderID int64) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

// MockErrorLog is a mock implementation of warehouse.ErrorLog
type MockErrorLog struct {
	mock.Mock
}

func (m *MockErrorLog) Log(ctx context.Context, tag, message string, isWarning bool) error {
	args := m.Called(ctx, tag, message, isWarning)
	return args.Error(0)
}

// MockDocumentSource is a mock implementation of DocumentSource
type MockDocumentSource struct {
	mock.Mock
}

func (m *MockDocumentSource) InvoiceDocument(ctx context.Context, order warehouse.OrderRecord) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

// MockSubmissionGuard is a mock implementation of SubmissionGuard
type MockSubmissionGuard struct {
	mock.Mock
}

func (m *MockSubmissionGuard) Acquire(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// memoryGuard is a SubmissionGuard that keeps its keys in a map
type memoryGuard struct {
	held map[string]bool
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{held: make(map[string]bool)}
}

func (g *memoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, key string) error {
	delete(g.held, key)
	return nil
}

// MockInventoryStore is a mock implementation of InventoryStore
type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) StoreInventory(ctx context.Context, rows []InventoryRow, resetStock bool) (int, error) {
	args := m.Called(ctx, rows, resetStock)
	return args.Int(0), args.Error(1)
}

// MockRecordSource is a mock implementation of RecordSource
type MockRecordSource struct {
	mock.Mock
}

func (m *MockRecordSource) PendingOrders(ctx context.Context) ([]warehouse.OrderRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]warehouse.OrderRecord), args.Error(1)
}

func (m *MockRecordSource) MarkOrderSent(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockRecordSource) Articles(ctx context.Context, selection ArticleSelection) ([]warehouse.ArticleRecord, error) {
	args := m.Called(ctx, selection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]warehouse.ArticleRecord), args.Error(1)
}
