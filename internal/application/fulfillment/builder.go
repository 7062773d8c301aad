package fulfillment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

const (
	maxDescriptionLength = 40
	firstPositionNo      = 10
	positionStep         = 10
	shippingPrefix       = "SPS_"
	returnShipping       = "RETURN"
	defaultBaseUOM       = "PCE"
)

// PostalVerifier checks a postal code for a country
type PostalVerifier interface {
	Verify(ctx context.Context, value, countryCode string) (string, *warehouse.ValidationFailure)
}

// Builder assembles outbound requests from shop records
type Builder struct {
	settings Settings
	postal   PostalVerifier
	validate *validator.Validate
	now      func() time.Time
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithClock overrides the clock used for control reference timestamps
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a new request builder
func NewBuilder(settings Settings, postal PostalVerifier, opts ...BuilderOption) *Builder {
	b := &Builder{
		settings: settings,
		postal:   postal,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ---------- Control reference ----------

// ControlReference builds the envelope header for a message type
func (b *Builder) ControlReference(messageType warehouse.MessageType) warehouse.ControlReference {
	return warehouse.ControlReference{
		Type:          messageType,
		Sender:        b.settings.Sender,
		Receiver:      b.settings.Receiver,
		Timestamp:     warehouse.Timestamp(b.now()),
		OperatingMode: b.settings.OperatingMode,
		Version:       b.settings.Version,
	}
}

// ---------- Article master data ----------

// BuildArticleRequest builds an InsertArticleMasterData request. Articles
// without stock are always sent with the delete flag.
func (b *Builder) BuildArticleRequest(article warehouse.ArticleRecord, flag warehouse.ChangeFlag) (*warehouse.ArticleRequest, error) {
	if !flag.IsValid() {
		return nil, fmt.Errorf("%w: change flag %q", warehouse.ErrInvalidRecord, string(flag))
	}
	if article.Stock == 0 {
		flag = warehouse.ChangeDelete
	}

	p := article.Params
	netISO := firstNonEmpty(p.NetWeightISO, b.settings.NetWeightISO)
	grossISO := firstNonEmpty(p.GrossWeightISO, b.settings.GrossWeightISO)
	lengthISO := warehouse.UnitCode(firstNonEmpty(string(p.LengthISO), string(b.settings.LengthISO)))
	widthISO := warehouse.UnitCode(firstNonEmpty(string(p.WidthISO), string(b.settings.WidthISO)))
	heightISO := warehouse.UnitCode(firstNonEmpty(string(p.HeightISO), string(b.settings.HeightISO)))
	volumeISO := warehouse.VolumeCode(firstNonEmpty(string(p.VolumeISO), string(b.settings.VolumeISO)))
	eanType := firstNonEmpty(p.EANType, b.settings.EANType)
	altUnit := firstNonEmpty(p.AlternateUnitISO, b.settings.AlternateUnitISO)

	volume, err := warehouse.ComputeVolume(
		article.Length, article.Width, article.Height,
		lengthISO, widthISO, heightISO, volumeISO,
	)
	if err != nil {
		return nil, fmt.Errorf("article %s volume: %w", article.ArticleNumber, err)
	}

	ean, err := formatEAN(article.EAN, eanType)
	if err != nil {
		return nil, fmt.Errorf("article %s: %w", article.ArticleNumber, err)
	}

	weight := warehouse.Round3(article.Weight)
	req := &warehouse.ArticleRequest{
		ControlReference: b.ControlReference(warehouse.MessageArticle),
		ArticleList: warehouse.ArticleList{
			Article: warehouse.Article{
				ChangeFlag:        flag,
				DepositorNo:       b.settings.DepositorNo,
				PlantID:           b.settings.PlantID,
				ArticleNo:         article.ArticleNumber,
				BaseUOM:           firstNonEmpty(altUnit, defaultBaseUOM),
				NetWeight:         warehouse.Measure{ISO: netISO, Value: weight},
				BatchMngtReq:      p.BatchRequired,
				Restlaufzeit:      b.settings.TransMaxTime,
				PeriodExpDateType: p.ExpiryDateType,
				SerialNoFlag:      p.SerialNoFlag,
				UnitsOfMeasure: warehouse.UnitsOfMeasure{
					EAN:               ean,
					AlternateUnitISO:  altUnit,
					AltNumeratorUOM:   p.AltNumerator,
					AltDenominatorUOM: p.AltDenominator,
					GrossWeight:       warehouse.Measure{ISO: grossISO, Value: weight},
					Length:            warehouse.Measure{ISO: string(lengthISO), Value: warehouse.Round3(article.Length)},
					Width:             warehouse.Measure{ISO: string(widthISO), Value: warehouse.Round3(article.Width)},
					Height:            warehouse.Measure{ISO: string(heightISO), Value: warehouse.Round3(article.Height)},
					Volume:            warehouse.Measure{ISO: string(volumeISO), Value: volume},
				},
			},
		},
	}

	for _, name := range article.Names {
		req.ArticleList.Article.ArticleDescriptions = append(req.ArticleList.Article.ArticleDescriptions,
			warehouse.ArticleDescription{
				Language: truncate(name.Language, 2),
				Text:     truncate(name.Text, maxDescriptionLength),
			})
	}

	return req, nil
}

// formatEAN zero-pads a numeric EAN to nine digits. An empty EAN yields no
// EAN element.
func formatEAN(value, eanType string) (*warehouse.EAN, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", warehouse.ErrInvalidEAN, value)
	}
	return &warehouse.EAN{EANType: eanType, Value: fmt.Sprintf("%09d", n)}, nil
}

// ---------- Customer order ----------

// BuildOrderRequest builds a CreateYCCustomerOrder request. A postal code
// rejected by the gate aborts the build and is returned as a
// *warehouse.ValidationFailure.
func (b *Builder) BuildOrderRequest(ctx context.Context, order warehouse.OrderRecord, isReturn bool) (*warehouse.OrderRequest, error) {
	zip, failure := b.postal.Verify(ctx, order.PostalCode, order.CountryCode)
	if failure != nil {
		return nil, failure
	}

	lang := ResolveLanguage(order.Language)
	title, err := warehouse.Salutation(lang, warehouse.ParseSalutationCode(order.Salutation))
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", order.OrderNumber, err)
	}

	partner := warehouse.Partner{
		PartnerType:      b.settings.PartnerType,
		PartnerNo:        b.settings.PartnerNo,
		PartnerReference: order.CustomerID,
		Title:            title,
		Name1:            order.FullName,
		Name2:            firstNonEmpty(order.Company, order.Department),
		Name3:            order.AddInfoLines,
		Street:           order.Street,
		CountryCode:      order.CountryCode,
		ZIPCode:          zip,
		City:             order.City,
		Email:            order.Email,
		LanguageCode:     string(lang),
	}

	service := warehouse.AdditionalService{BasicShippingServices: returnShipping}
	if !isReturn {
		service.BasicShippingServices, service.AdditionalShippingServices = DecodeShipping(order.Shipping)
	}

	req := &warehouse.OrderRequest{
		ControlReference: b.ControlReference(warehouse.MessageOrder),
		Order: warehouse.Order{
			OrderHeader: warehouse.OrderHeader{
				DepositorNo:       b.settings.DepositorNo,
				CustomerOrderNo:   order.OrderNumber,
				CustomerOrderDate: order.OrderTime.Format("20060102"),
			},
			PartnerAddress:     warehouse.PartnerAddress{Partner: partner},
			ValueAddedServices: warehouse.ValueAddedServices{AdditionalService: service},
			Positions:          b.positions(order.Items, lang),
		},
	}

	if order.InvoiceDocument != "" {
		req.Order.OrderDocuments = &warehouse.OrderDocuments{
			OrderDocumentsFlag: b.settings.DocumentsFlag(),
			Docs: warehouse.Docs{
				DocType:     b.settings.DocType,
				DocMimeType: strings.ToLower(b.settings.DocMimeType),
				DocStream:   order.InvoiceDocument,
			},
		}
	}

	if err := b.validate.StructCtx(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", warehouse.ErrInvalidOrderRequest, order.OrderNumber, err)
	}
	return req, nil
}

// positions numbers the lines 10, 20, 30 so that lines can be inserted
// downstream without renumbering
func (b *Builder) positions(items []warehouse.OrderLineItem, lang warehouse.Language) []warehouse.Position {
	positions := make([]warehouse.Position, 0, len(items))
	posNo := firstPositionNo
	for _, item := range items {
		positions = append(positions, warehouse.Position{
			PosNo:            posNo,
			ArticleNo:        item.ArticleNumber,
			Plant:            b.settings.PlantID,
			Quantity:         item.Quantity,
			QuantityISO:      firstNonEmpty(item.QuantityUnit, b.settings.QuantityISO),
			ShortDescription: truncate(item.Name, maxDescriptionLength),
			PickingMessageLC: string(lang),
		})
		posNo += positionStep
	}
	return positions
}

// ResolveLanguage returns the primary subtag of a locale tag such as
// "de_CH" when the provider accepts it, else English.
func ResolveLanguage(tag string) warehouse.Language {
	parsed, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return warehouse.LanguageEnglish
	}
	base, _ := parsed.Base()
	lang := warehouse.Language(base.String())
	if !lang.IsValid() {
		return warehouse.LanguageEnglish
	}
	return lang
}

// DecodeShipping splits a shipping code such as "SPS_ECO_SI" into the
// basic ("ECO") and the additional ("SI") shipping service.
func DecodeShipping(value string) (basic, additional string) {
	tokens := strings.Split(strings.ReplaceAll(value, shippingPrefix, ""), "_")
	basic = strings.TrimSpace(tokens[0])
	if len(tokens) > 1 {
		additional = strings.TrimSpace(tokens[len(tokens)-1])
	}
	return basic, additional
}

// ---------- Queries ----------

// BuildInventoryRequest builds a GetInventory request
func (b *Builder) BuildInventoryRequest() *warehouse.InventoryRequest {
	return &warehouse.InventoryRequest{
		ControlReference: b.ControlReference(warehouse.MessageInventory),
	}
}

// BuildStatusRequest builds a status query. For the order reply the
// reference is the order number and the request carries the max wait time.
func (b *Builder) BuildStatusRequest(reference string, messageType warehouse.MessageType) (*warehouse.StatusRequest, error) {
	req := &warehouse.StatusRequest{ControlReference: b.ControlReference(messageType)}
	switch messageType {
	case warehouse.MessageArticle, warehouse.MessageOrder:
		req.Reference = reference
	case warehouse.MessageOrderReply:
		req.ControlReference.TransMaxWait = b.settings.TransMaxTime
		req.CustomerOrderNo = reference
	default:
		return nil, fmt.Errorf("%w: no status query for %q", warehouse.ErrUnknownMessageType, string(messageType))
	}
	return req, nil
}

// ---------- Helpers ----------

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
