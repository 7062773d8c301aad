package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// ChangeFlag
// ---------------------------------------------------------------------------

// ChangeFlag is the desired effect of an article master data submission
type ChangeFlag string

const (
	ChangeInsert ChangeFlag = "I"
	ChangeUpdate ChangeFlag = "U"
	ChangeDelete ChangeFlag = "D"
)

// IsValid returns true if the flag is known
func (f ChangeFlag) IsValid() bool {
	switch f {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// ExpiryDateType
// ---------------------------------------------------------------------------

// ExpiryDateType is the period of an article's expiry date
type ExpiryDateType int

const (
	ExpiryIgnore ExpiryDateType = 0
	ExpiryWeek   ExpiryDateType = 1
	ExpiryMonth  ExpiryDateType = 2
	ExpiryYear   ExpiryDateType = 3
)

var expiryNames = map[string]ExpiryDateType{
	"ignore": ExpiryIgnore,
	"wocht":  ExpiryWeek,
	"monat":  ExpiryMonth,
	"jahr":   ExpiryYear,
}

// UnmarshalText accepts the stored names (Ignore, Wocht, Monat, Jahr) or
// their numeric codes
func (e *ExpiryDateType) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*e = ExpiryIgnore
		return nil
	}
	if v, ok := expiryNames[strings.ToLower(s)]; ok {
		*e = v
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(ExpiryIgnore) || n > int(ExpiryYear) {
		return fmt.Errorf("invalid expiry date type %q", s)
	}
	*e = ExpiryDateType(n)
	return nil
}

// UnmarshalJSON accepts both "Monat" and 2
func (e *ExpiryDateType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = ExpiryIgnore
		return nil
	}
	return e.UnmarshalText([]byte(strings.Trim(string(data), `"`)))
}

// ---------------------------------------------------------------------------
// Order records
// ---------------------------------------------------------------------------

// OrderRecord is a shop order handed to the connector
type OrderRecord struct {
	OrderID         int64           `json:"ordid" validate:"required"`
	OrderNumber     string          `json:"ordernumber" validate:"required"`
	OrderTime       time.Time       `json:"ordertime"`
	CustomerID      string          `json:"userid"`
	Salutation      string          `json:"sal"`
	FullName        string          `json:"fullname" validate:"required"`
	Company         string          `json:"company"`
	Department      string          `json:"department"`
	AddInfoLines    string          `json:"addinfolines"`
	Street          string          `json:"streetinfo" validate:"required"`
	CountryCode     string          `json:"country" validate:"required,iso3166_1_alpha2"`
	PostalCode      string          `json:"zip"`
	City            string          `json:"city" validate:"required"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Language        string          `json:"language"`
	Shipping        string          `json:"shipping"`
	Items           []OrderLineItem `json:"orderarticles" validate:"required,min=1,dive"`
	InvoiceDocument string          `json:"invoice,omitempty" validate:"omitempty,base64"`
	InvoiceHash     string          `json:"invoicehash,omitempty"`
}

// OrderLineItem is one article line of an order
type OrderLineItem struct {
	ArticleNumber string `json:"articleordernumber" validate:"required"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
	QuantityUnit  string `json:"quantityiso"`
	Name          string `json:"name"`
}

// ---------------------------------------------------------------------------
// Article records
// ---------------------------------------------------------------------------

// ArticleRecord is a shop article handed to the connector
type ArticleRecord struct {
	ArticleID     int64           `json:"artid" validate:"required"`
	ArticleNumber string          `json:"ordernumber" validate:"required"`
	EAN           string          `json:"ean"`
	Name          string          `json:"name"`
	Weight        float64         `json:"weight" validate:"gte=0"`
	Length        float64         `json:"length" validate:"gte=0"`
	Width         float64         `json:"width" validate:"gte=0"`
	Height        float64         `json:"height" validate:"gte=0"`
	Stock         int             `json:"instock"`
	Active        bool            `json:"active"`
	ESDID         int64           `json:"esdid"`
	Params        ArticleParams   `json:"ycparams"`
	Names         []LocalizedName `json:"pronames" validate:"dive"`
}

// ArticleParams are per-article overrides of the module defaults
type ArticleParams struct {
	NetWeightISO     string         `json:"netto"`
	GrossWeightISO   string         `json:"brutto"`
	LengthISO        UnitCode       `json:"length"`
	WidthISO         UnitCode       `json:"width"`
	HeightISO        UnitCode       `json:"height"`
	VolumeISO        VolumeCode     `json:"volume"`
	EANType          string         `json:"eantype"`
	AlternateUnitISO string         `json:"altunitiso"`
	BatchRequired    string         `json:"batchreq"`
	SerialNoFlag     string         `json:"noflag"`
	ExpiryDateType   ExpiryDateType `json:"expdatetype"`
	AltNumerator     string         `json:"altnum"`
	AltDenominator   string         `json:"altdeno"`
	IncludeESD       bool           `json:"incesd"`
}

// LocalizedName is an article name in one locale (e.g. de_CH)
type LocalizedName struct {
	Language string `json:"lang" validate:"required,min=2"`
	Text     string `json:"name"`
}

// AllowsESD reports whether the article may be sent. Articles with an
// electronic download are held back unless explicitly included.
func (a ArticleRecord) AllowsESD() bool {
	return a.ESDID <= 0 || a.Params.IncludeESD
}
