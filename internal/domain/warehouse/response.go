package warehouse

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
)

// StatusCarrier is a response that carries a provider status pair
type StatusCarrier interface {
	Status() (StatusType, StatusCode)
}

// ---------------------------------------------------------------------------
// Generic response
// ---------------------------------------------------------------------------

// GenericResponse is the reply to article inserts, order creation and the
// ART/WAB status queries
type GenericResponse struct {
	StatusType StatusType `xml:"StatusType" json:"StatusType"`
	StatusCode StatusCode `xml:"StatusCode" json:"StatusCode"`
	StatusText string     `xml:"StatusText" json:"StatusText,omitempty"`
	Reference  string     `xml:"Reference" json:"Reference,omitempty"`
}

// Status implements StatusCarrier
func (r *GenericResponse) Status() (StatusType, StatusCode) {
	return r.StatusType, r.StatusCode
}

// ---------------------------------------------------------------------------
// Status query response
// ---------------------------------------------------------------------------

// StatusResponse is the reply to any of the three status queries. The WAR
// query answers with goods issue messages instead of a top-level status.
type StatusResponse struct {
	GenericResponse
	Replies []OrderReply `xml:"WAR" json:"WAR,omitempty"`
}

// Status returns the top-level status, or the status of the first goods
// issue header when the reply has none.
func (r *StatusResponse) Status() (StatusType, StatusCode) {
	if r.StatusType != "" || len(r.Replies) == 0 {
		return r.StatusType, r.StatusCode
	}
	h := r.Replies[0].GoodsIssue.GoodsIssueHeader
	return h.StatusType, h.StatusCode
}

// OrderReply is one goods issue message of a WAR reply
type OrderReply struct {
	GoodsIssue GoodsIssue `xml:"GoodsIssue" json:"GoodsIssue"`
}

// GoodsIssue reports what left the warehouse for a customer order
type GoodsIssue struct {
	GoodsIssueHeader    GoodsIssueHeader    `xml:"GoodsIssueHeader" json:"GoodsIssueHeader"`
	CustomerOrderHeader CustomerOrderHeader `xml:"CustomerOrderHeader" json:"CustomerOrderHeader"`
	CustomerOrderList   CustomerOrderList   `xml:"CustomerOrderList" json:"CustomerOrderList"`
}

// GoodsIssueHeader identifies the booking of a goods issue
type GoodsIssueHeader struct {
	BookingVoucherID   string     `xml:"BookingVoucherID" json:"BookingVoucherID,omitempty"`
	BookingVoucherYear string     `xml:"BookingVoucherYear" json:"BookingVoucherYear,omitempty"`
	DepositorNo        string     `xml:"DepositorNo" json:"DepositorNo,omitempty"`
	StatusType         StatusType `xml:"StatusType" json:"StatusType,omitempty"`
	StatusCode         StatusCode `xml:"StatusCode" json:"StatusCode,omitempty"`
}

// CustomerOrderHeader echoes the order the goods issue belongs to
type CustomerOrderHeader struct {
	YCDeliveryNo      string `xml:"YCDeliveryNo" json:"YCDeliveryNo,omitempty"`
	YCDeliveryDate    string `xml:"YCDeliveryDate" json:"YCDeliveryDate,omitempty"`
	CustomerOrderNo   string `xml:"CustomerOrderNo" json:"CustomerOrderNo,omitempty"`
	CustomerOrderDate string `xml:"CustomerOrderDate" json:"CustomerOrderDate,omitempty"`
	PostalShipmentNo  string `xml:"PostalShipmentNo" json:"PostalShipmentNo,omitempty"`
}

// CustomerOrderList holds the shipped positions. The provider sends a
// single detail as an object and several as an array; both decode to Details.
type CustomerOrderList struct {
	Details []CustomerOrderDetail `xml:"CustomerOrderDetail" json:"CustomerOrderDetail"`
}

// UnmarshalJSON normalizes a single CustomerOrderDetail object into a list
func (l *CustomerOrderList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Detail json.RawMessage `json:"CustomerOrderDetail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	detail := bytes.TrimSpace(raw.Detail)
	switch {
	case len(detail) == 0 || bytes.Equal(detail, []byte("null")):
		l.Details = nil
		return nil
	case detail[0] == '[':
		return json.Unmarshal(detail, &l.Details)
	default:
		var single CustomerOrderDetail
		if err := json.Unmarshal(detail, &single); err != nil {
			return err
		}
		l.Details = []CustomerOrderDetail{single}
		return nil
	}
}

// CustomerOrderDetail is one shipped position
type CustomerOrderDetail struct {
	BVPosNo            string  `xml:"BVPosNo" json:"BVPosNo"`
	CustomerOrderPosNo string  `xml:"CustomerOrderPosNo" json:"CustomerOrderPosNo,omitempty"`
	YCArticleNo        string  `xml:"YCArticleNo" json:"YCArticleNo,omitempty"`
	ArticleNo          string  `xml:"ArticleNo" json:"ArticleNo,omitempty"`
	EAN                string  `xml:"EAN" json:"EAN,omitempty"`
	Lot                string  `xml:"Lot" json:"Lot,omitempty"`
	Plant              string  `xml:"Plant" json:"Plant,omitempty"`
	StorageLocation    string  `xml:"StorageLocation" json:"StorageLocation,omitempty"`
	StockType          string  `xml:"StockType" json:"StockType,omitempty"`
	QuantityUOM        Measure `xml:"QuantityUOM" json:"QuantityUOM"`
	ReturnReason       string  `xml:"ReturnReason" json:"ReturnReason,omitempty"`
	SerialNumbers      string  `xml:"SerialNumbers" json:"SerialNumbers,omitempty"`
}

// ---------------------------------------------------------------------------
// Inventory response (BAR)
// ---------------------------------------------------------------------------

// InventoryResponse is the reply to GetInventory
type InventoryResponse struct {
	GenericResponse
	Articles []InventoryArticle `xml:"ArticleList>Article" json:"ArticleList"`
}

// Status implements StatusCarrier. Inventory replies usually carry no status
// pair; a reply with articles and no status counts as accepted.
func (r *InventoryResponse) Status() (StatusType, StatusCode) {
	if r.StatusType == "" && len(r.Articles) > 0 {
		return StatusTypeSuccess, StatusCodeAccepted
	}
	return r.StatusType, r.StatusCode
}

// InventoryArticle is one stock row of the warehouse
type InventoryArticle struct {
	YCArticleNo        string            `xml:"YCArticleNo" json:"YCArticleNo"`
	ArticleNo          string            `xml:"ArticleNo" json:"ArticleNo"`
	EAN                string            `xml:"EAN" json:"EAN,omitempty"`
	Plant              string            `xml:"Plant" json:"Plant,omitempty"`
	StorageLocation    string            `xml:"StorageLocation" json:"StorageLocation"`
	StockType          string            `xml:"StockType" json:"StockType"`
	QuantityUOM        InventoryQuantity `xml:"QuantityUOM" json:"QuantityUOM"`
	YCLot              string            `xml:"YCLot" json:"YCLot,omitempty"`
	Lot                string            `xml:"Lot" json:"Lot,omitempty"`
	BestBeforeDate     string            `xml:"BestBeforeDate" json:"BestBeforeDate,omitempty"`
	ArticleDescription string            `xml:"ArticleDescription" json:"ArticleDescription,omitempty"`
}

// InventoryQuantity is a stock quantity with its QuantityISO attribute
type InventoryQuantity struct {
	ISO   string  `xml:"QuantityISO,attr" json:"QuantityISO"`
	Value float64 `xml:",chardata" json:"_"`
}

// MarshalXML writes the quantity in plain decimal notation
func (q InventoryQuantity) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "QuantityISO"}, Value: q.ISO})
	return e.EncodeElement(plainDecimal(q.Value), start)
}

// Stock storage location and types that count as available
const (
	StockLocationAvailable = "YAFS"
)

// IsAvailableStock reports whether the row is free stock in the pick location
func (a InventoryArticle) IsAvailableStock() bool {
	if a.ArticleNo == "" || a.StorageLocation != StockLocationAvailable {
		return false
	}
	switch a.StockType {
	case "0", "F", "":
		return true
	default:
		return false
	}
}

// EntryID is the inventory row id: the YC article number without its four
// character prefix.
func (a InventoryArticle) EntryID() string {
	if len(a.YCArticleNo) <= 4 {
		return ""
	}
	return a.YCArticleNo[4:]
}
