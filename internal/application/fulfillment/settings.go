package fulfillment

import (
	"strings"

	"github.com/erp/yellowcube/internal/domain/warehouse"
)

// Settings are the provider parameters and module defaults every request
// is built from
type Settings struct {
	// Control reference
	Sender        string
	Receiver      string
	OperatingMode string
	Version       string
	TransMaxTime  int

	// Depositor and partner
	DepositorNo string
	PlantID     string
	PartnerNo   string
	PartnerType string

	// Article defaults, used when an article carries no override
	NetWeightISO     string
	GrossWeightISO   string
	LengthISO        warehouse.UnitCode
	WidthISO         warehouse.UnitCode
	HeightISO        warehouse.UnitCode
	VolumeISO        warehouse.VolumeCode
	EANType          string
	AlternateUnitISO string

	// Order defaults
	QuantityISO        string
	DocType            string
	DocMimeType        string
	OrderDocumentsFlag string

	// Inventory
	ResetInventory bool
}

// DocumentsFlag is 0 when documents are configured as "no", else 1
func (s Settings) DocumentsFlag() int {
	if strings.EqualFold(strings.TrimSpace(s.OrderDocumentsFlag), "no") {
		return 0
	}
	return 1
}
