package warehouse

import (
	"encoding/json"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Order reply normalization
// ---------------------------------------------------------------------------

const singleDetailReply = `<GetYCCustomerOrderReplyResponse>
  <WAR>
    <GoodsIssue>
      <GoodsIssueHeader><BookingVoucherID>8000001</BookingVoucherID><StatusType>S</StatusType><StatusCode>100</StatusCode></GoodsIssueHeader>
      <CustomerOrderHeader><CustomerOrderNo>20001</CustomerOrderNo><PostalShipmentNo>99.00.123</PostalShipmentNo></CustomerOrderHeader>
      <CustomerOrderList>
        <CustomerOrderDetail><BVPosNo>1</BVPosNo><ArticleNo>SW10001</ArticleNo><QuantityUOM ISO="PCE">2</QuantityUOM></CustomerOrderDetail>
      </CustomerOrderList>
    </GoodsIssue>
  </WAR>
</GetYCCustomerOrderReplyResponse>`

const multiDetailReply = `<GetYCCustomerOrderReplyResponse>
  <WAR>
    <GoodsIssue>
      <GoodsIssueHeader><StatusType>S</StatusType><StatusCode>100</StatusCode></GoodsIssueHeader>
      <CustomerOrderList>
        <CustomerOrderDetail><BVPosNo>1</BVPosNo><ArticleNo>SW10001</ArticleNo></CustomerOrderDetail>
        <CustomerOrderDetail><BVPosNo>2</BVPosNo><ArticleNo>SW10002</ArticleNo></CustomerOrderDetail>
      </CustomerOrderList>
    </GoodsIssue>
  </WAR>
</GetYCCustomerOrderReplyResponse>`

func TestStatusResponse_XMLDetailNormalization(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{"single detail", singleDetailReply, []string{"SW10001"}},
		{"multiple details", multiDetailReply, []string{"SW10001", "SW10002"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp StatusResponse
			require.NoError(t, xml.Unmarshal([]byte(tt.body), &resp))
			require.Len(t, resp.Replies, 1)

			details := resp.Replies[0].GoodsIssue.CustomerOrderList.Details
			require.Len(t, details, len(tt.expected))
			for i, articleNo := range tt.expected {
				assert.Equal(t, articleNo, details[i].ArticleNo)
			}

			statusType, statusCode := resp.Status()
			assert.Equal(t, StatusTypeSuccess, statusType)
			assert.Equal(t, StatusCodeAccepted, statusCode)
		})
	}
}

func TestCustomerOrderList_JSONNormalization(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected int
	}{
		{"object", `{"CustomerOrderDetail":{"BVPosNo":"1","ArticleNo":"A"}}`, 1},
		{"array", `{"CustomerOrderDetail":[{"BVPosNo":"1"},{"BVPosNo":"2"},{"BVPosNo":"3"}]}`, 3},
		{"missing", `{}`, 0},
		{"null", `{"CustomerOrderDetail":null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list CustomerOrderList
			require.NoError(t, json.Unmarshal([]byte(tt.json), &list))
			assert.Len(t, list.Details, tt.expected)
		})
	}
}

func TestStatusResponse_TopLevelStatusWins(t *testing.T) {
	body := `<R><StatusType>E</StatusType><StatusCode>301</StatusCode><StatusText>unknown reference</StatusText></R>`

	var resp StatusResponse
	require.NoError(t, xml.Unmarshal([]byte(body), &resp))

	statusType, statusCode := resp.Status()
	assert.Equal(t, StatusTypeError, statusType)
	assert.Equal(t, StatusCode(301), statusCode)
	assert.Equal(t, "unknown reference", resp.StatusText)
}

// ---------------------------------------------------------------------------
// Inventory
// ---------------------------------------------------------------------------

func TestInventoryArticle_IsAvailableStock(t *testing.T) {
	tests := []struct {
		name     string
		article  InventoryArticle
		expected bool
	}{
		{"free stock", InventoryArticle{ArticleNo: "A", StorageLocation: "YAFS", StockType: "F"}, true},
		{"blank stock type", InventoryArticle{ArticleNo: "A", StorageLocation: "YAFS"}, true},
		{"zero stock type", InventoryArticle{ArticleNo: "A", StorageLocation: "YAFS", StockType: "0"}, true},
		{"blocked stock", InventoryArticle{ArticleNo: "A", StorageLocation: "YAFS", StockType: "S"}, false},
		{"other location", InventoryArticle{ArticleNo: "A", StorageLocation: "YROD", StockType: "F"}, false},
		{"missing article number", InventoryArticle{StorageLocation: "YAFS", StockType: "F"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.article.IsAvailableStock())
		})
	}
}

func TestInventoryArticle_EntryID(t *testing.T) {
	assert.Equal(t, "123456", InventoryArticle{YCArticleNo: "YC00123456"}.EntryID())
	assert.Equal(t, "", InventoryArticle{YCArticleNo: "YC00"}.EntryID())
}

func TestInventoryResponse_Decode(t *testing.T) {
	body := `<GetInventoryResponse>
  <ArticleList>
    <Article><YCArticleNo>YC0000042</YCArticleNo><ArticleNo>SW42</ArticleNo><StorageLocation>YAFS</StorageLocation><StockType>F</StockType><QuantityUOM QuantityISO="PCE">7</QuantityUOM></Article>
    <Article><YCArticleNo>YC0000043</YCArticleNo><ArticleNo>SW43</ArticleNo><StorageLocation>YAFS</StorageLocation><StockType>S</StockType><QuantityUOM QuantityISO="PCE">1</QuantityUOM></Article>
  </ArticleList>
</GetInventoryResponse>`

	var resp InventoryResponse
	require.NoError(t, xml.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Articles, 2)
	assert.Equal(t, "PCE", resp.Articles[0].QuantityUOM.ISO)
	assert.Equal(t, 7.0, resp.Articles[0].QuantityUOM.Value)

	statusType, statusCode := resp.Status()
	assert.Equal(t, StatusTypeSuccess, statusType)
	assert.Equal(t, StatusCodeAccepted, statusCode)
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

func TestExpiryDateType_Unmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected ExpiryDateType
	}{
		{`"Ignore"`, ExpiryIgnore},
		{`"Wocht"`, ExpiryWeek},
		{`"Monat"`, ExpiryMonth},
		{`"jahr"`, ExpiryYear},
		{`2`, ExpiryMonth},
		{`""`, ExpiryIgnore},
		{`null`, ExpiryIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var params ArticleParams
			require.NoError(t, json.Unmarshal([]byte(`{"expdatetype":`+tt.input+`}`), &params))
			assert.Equal(t, tt.expected, params.ExpiryDateType)
		})
	}

	var params ArticleParams
	assert.Error(t, json.Unmarshal([]byte(`{"expdatetype":"Tag"}`), &params))
}

func TestArticleRecord_AllowsESD(t *testing.T) {
	assert.True(t, ArticleRecord{}.AllowsESD())
	assert.False(t, ArticleRecord{ESDID: 3}.AllowsESD())
	assert.True(t, ArticleRecord{ESDID: 3, Params: ArticleParams{IncludeESD: true}}.AllowsESD())
}
