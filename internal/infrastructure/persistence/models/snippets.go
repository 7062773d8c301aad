package models

// SnippetModel is a localized text snippet of the shop
type SnippetModel struct {
	ID        int64  `gorm:"primaryKey"`
	Namespace string `gorm:"column:namespace;type:varchar(255);not null"`
	Name      string `gorm:"column:name;type:varchar(255);not null"`
	Value     string `gorm:"column:value;type:text"`
	LocaleID  int    `gorm:"column:localeID"`
	ShopID    int    `gorm:"column:shopID"`
}

// TableName returns the table name for GORM
func (SnippetModel) TableName() string {
	return "s_core_snippets"
}
