package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func inventoryArticles() []warehouse.InventoryArticle {
	return []warehouse.InventoryArticle{
		{
			YCArticleNo:     "YC001234",
			ArticleNo:       "SW10007",
			EAN:             "000012345",
			Plant:           "Y005",
			StorageLocation: "YAFS",
			StockType:       "F",
			QuantityUOM:     warehouse.InventoryQuantity{ISO: "PCE", Value: 12},
			Lot:             "L1",
		},
		{YCArticleNo: "YC005678", ArticleNo: "SW10008", StorageLocation: "YAFS", StockType: "X"},
		{YCArticleNo: "YC009999", ArticleNo: "SW10009", StorageLocation: "YRET"},
		{YCArticleNo: "YC004444", StorageLocation: "YAFS"},
	}
}

func TestAvailableRows(t *testing.T) {
	rows := AvailableRows(inventoryArticles())

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "1234", row.EntryID)
	assert.Equal(t, "SW10007", row.ArticleNo)
	assert.Equal(t, "PCE", row.Additional.QuantityISO)
	assert.Equal(t, 12.0, row.Additional.QuantityUOM)
	assert.Equal(t, "L1", row.Additional.Lot)
}

func TestInventorySync_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("stores available rows", func(t *testing.T) {
		f := newServiceFixture(nil)
		store := new(MockInventoryStore)
		f.caller.On("Call", mock.Anything, warehouse.OpGetInventory, mock.AnythingOfType("*warehouse.InventoryRequest"), mock.Anything).
			Run(func(args mock.Arguments) {
				resp := args.Get(3).(*warehouse.InventoryResponse)
				resp.Articles = inventoryArticles()
			}).Return(nil)
		store.On("StoreInventory", mock.Anything, mock.MatchedBy(func(rows []InventoryRow) bool {
			return len(rows) == 1 && rows[0].EntryID == "1234"
		}), true).Return(1, nil)

		sync := NewInventorySync(f.service, store, true, zap.NewNop())
		env := sync.Sync(ctx)

		require.True(t, env.Success)
		assert.Equal(t, 1, env.Data)
		assert.Equal(t, warehouse.OutcomeAccepted, env.Outcome)
		store.AssertExpectations(t)
	})

	t.Run("fetch failure skips the store", func(t *testing.T) {
		f := newServiceFixture(nil)
		store := new(MockInventoryStore)
		f.caller.On("Call", mock.Anything, warehouse.OpGetInventory, mock.Anything, mock.Anything).Return(errors.New("fault"))
		f.errorLog.On("Log", mock.Anything, TagGetInventory, mock.Anything, false).Return(nil)

		env := NewInventorySync(f.service, store, false, zap.NewNop()).Sync(ctx)

		assert.False(t, env.Success)
		store.AssertNotCalled(t, "StoreInventory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newServiceFixture(nil)
		store := new(MockInventoryStore)
		f.caller.On("Call", mock.Anything, warehouse.OpGetInventory, mock.Anything, mock.Anything).Return(nil)
		store.On("StoreInventory", mock.Anything, mock.Anything, false).Return(0, errors.New("deadlock"))
		f.errorLog.On("Log", mock.Anything, TagGetInventory, mock.Anything, false).Return(nil)

		env := NewInventorySync(f.service, store, false, zap.NewNop()).Sync(ctx)

		assert.False(t, env.Success)
		assert.Contains(t, env.Message, "deadlock")
	})
}
