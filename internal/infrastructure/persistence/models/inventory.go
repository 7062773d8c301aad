package models

import "time"

// InventoryItemModel is one available stock row of the warehouse. The id is
// the YC article number without its four character prefix.
type InventoryItemModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(32)"`
	ArticleID   int64     `gorm:"column:artid;not null;index"`
	YCArticleNo string    `gorm:"column:ycarticlenr;type:varchar(32);not null"`
	ArticleNo   string    `gorm:"column:articlenr;type:varchar(64);not null"`
	Description string    `gorm:"column:artdesc;type:varchar(255)"`
	Additional  string    `gorm:"column:additional;type:text"`
	UpdatedAt   time.Time `gorm:"column:createdon;not null"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "asign_yellowcube_inventory"
}
