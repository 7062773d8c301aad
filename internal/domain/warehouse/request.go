package warehouse

import (
	"encoding/xml"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Shared elements
// ---------------------------------------------------------------------------

// Measure is a value with its ISO unit attribute
type Measure struct {
	ISO   string  `xml:"ISO,attr" json:"ISO"`
	Value float64 `xml:",chardata" json:"_"`
}

// MarshalXML writes the value in plain decimal notation. The provider
// rejects exponents such as 1e+06.
func (m Measure) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "ISO"}, Value: m.ISO})
	return e.EncodeElement(plainDecimal(m.Value), start)
}

func plainDecimal(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// ---------------------------------------------------------------------------
// Article master data (ART)
// ---------------------------------------------------------------------------

// ArticleRequest is the body of InsertArticleMasterData
type ArticleRequest struct {
	ControlReference ControlReference `xml:"ControlReference"`
	ArticleList      ArticleList      `xml:"ArticleList"`
}

// ArticleList wraps the single article of a request
type ArticleList struct {
	Article Article `xml:"Article"`
}

// Article is the provider's article master data record
type Article struct {
	ChangeFlag          ChangeFlag           `xml:"ChangeFlag"`
	DepositorNo         string               `xml:"DepositorNo"`
	PlantID             string               `xml:"PlantID"`
	ArticleNo           string               `xml:"ArticleNo"`
	BaseUOM             string               `xml:"BaseUOM"`
	NetWeight           Measure              `xml:"NetWeight"`
	BatchMngtReq        string               `xml:"BatchMngtReq,omitempty"`
	Restlaufzeit        int                  `xml:"Restlaufzeit,omitempty"`
	PeriodExpDateType   ExpiryDateType       `xml:"PeriodExpDateType,omitempty"`
	SerialNoFlag        string               `xml:"SerialNoFlag,omitempty"`
	UnitsOfMeasure      UnitsOfMeasure       `xml:"UnitsOfMeasure"`
	ArticleDescriptions []ArticleDescription `xml:"ArticleDescriptions>ArticleDescription"`
}

// UnitsOfMeasure holds the packaging dimensions of an article
type UnitsOfMeasure struct {
	EAN               *EAN    `xml:"EAN,omitempty"`
	AlternateUnitISO  string  `xml:"AlternateUnitISO,omitempty"`
	AltNumeratorUOM   string  `xml:"AltNumeratorUOM,omitempty"`
	AltDenominatorUOM string  `xml:"AltDenominatorUOM,omitempty"`
	GrossWeight       Measure `xml:"GrossWeight"`
	Length            Measure `xml:"Length"`
	Width             Measure `xml:"Width"`
	Height            Measure `xml:"Height"`
	Volume            Measure `xml:"Volume"`
}

// EAN is an article number with its EAN type attribute
type EAN struct {
	EANType string `xml:"EANType,attr"`
	Value   string `xml:",chardata"`
}

// ArticleDescription is the article name in one language
type ArticleDescription struct {
	Language string `xml:"ArticleDescriptionLC,attr"`
	Text     string `xml:",chardata"`
}

// ---------------------------------------------------------------------------
// Customer order (WAB)
// ---------------------------------------------------------------------------

// OrderRequest is the body of CreateYCCustomerOrder
type OrderRequest struct {
	ControlReference ControlReference `xml:"ControlReference" validate:"required"`
	Order            Order            `xml:"Order" validate:"required"`
}

// Order is the provider's customer order
type Order struct {
	OrderHeader        OrderHeader        `xml:"OrderHeader" validate:"required"`
	PartnerAddress     PartnerAddress     `xml:"PartnerAddress" validate:"required"`
	ValueAddedServices ValueAddedServices `xml:"ValueAddedServices"`
	Positions          []Position         `xml:"OrderPositions>Position" validate:"required,min=1,dive"`
	OrderDocuments     *OrderDocuments    `xml:"OrderDocuments,omitempty"`
}

// OrderHeader identifies the order
type OrderHeader struct {
	DepositorNo       string `xml:"DepositorNo" validate:"required"`
	CustomerOrderNo   string `xml:"CustomerOrderNo" validate:"required"`
	CustomerOrderDate string `xml:"CustomerOrderDate" validate:"required,len=8,numeric"`
}

// PartnerAddress wraps the ship-to partner
type PartnerAddress struct {
	Partner Partner `xml:"Partner" validate:"required"`
}

// Partner is the ship-to address of an order
type Partner struct {
	PartnerType      string `xml:"PartnerType" validate:"required"`
	PartnerNo        string `xml:"PartnerNo" validate:"required"`
	PartnerReference string `xml:"PartnerReference,omitempty"`
	Title            string `xml:"Title"`
	Name1            string `xml:"Name1" validate:"required"`
	Name2            string `xml:"Name2,omitempty"`
	Name3            string `xml:"Name3,omitempty"`
	Street           string `xml:"Street" validate:"required"`
	CountryCode      string `xml:"CountryCode" validate:"required,iso3166_1_alpha2"`
	ZIPCode          string `xml:"ZIPCode" validate:"required"`
	City             string `xml:"City" validate:"required"`
	Email            string `xml:"Email,omitempty"`
	LanguageCode     string `xml:"LanguageCode" validate:"oneof=de fr it en"`
}

// ValueAddedServices carries the shipping services
type ValueAddedServices struct {
	AdditionalService AdditionalService `xml:"AdditionalService"`
}

// AdditionalService holds the basic and the optional additional shipping service
type AdditionalService struct {
	BasicShippingServices      string `xml:"BasicShippingServices" validate:"required"`
	AdditionalShippingServices string `xml:"AdditionalShippingServices,omitempty"`
}

// Position is one order line. Empty fields are not serialized.
type Position struct {
	PosNo            int    `xml:"PosNo"`
	ArticleNo        string `xml:"ArticleNo,omitempty" validate:"required"`
	Plant            string `xml:"Plant,omitempty"`
	Quantity         int    `xml:"Quantity" validate:"gt=0"`
	QuantityISO      string `xml:"QuantityISO,omitempty"`
	ShortDescription string `xml:"ShortDescription,omitempty"`
	PickingMessage   string `xml:"PickingMessage,omitempty"`
	PickingMessageLC string `xml:"PickingMessageLC,omitempty"`
	ReturnReason     string `xml:"ReturnReason,omitempty"`
}

// OrderDocuments attaches the invoice to the order
type OrderDocuments struct {
	OrderDocumentsFlag int  `xml:"OrderDocumentsFlag"`
	Docs               Docs `xml:"Docs"`
}

// Docs is one attached document, base64 encoded
type Docs struct {
	DocType     string `xml:"DocType"`
	DocMimeType string `xml:"DocMimeType"`
	DocStream   string `xml:"DocStream"`
}

// ---------------------------------------------------------------------------
// Queries (BAR, status)
// ---------------------------------------------------------------------------

// InventoryRequest is the body of GetInventory
type InventoryRequest struct {
	ControlReference ControlReference `xml:"ControlReference"`
}

// StatusRequest is the body of the three status queries. ART and WAB carry
// Reference, WAR carries CustomerOrderNo.
type StatusRequest struct {
	ControlReference ControlReference `xml:"ControlReference"`
	Reference        string           `xml:"Reference,omitempty"`
	CustomerOrderNo  string           `xml:"CustomerOrderNo,omitempty"`
}
