package models

// ShopArticleDetailModel is the shop's article detail row. The connector
// only reads the order number and resets the stock.
type ShopArticleDetailModel struct {
	ID          int64  `gorm:"primaryKey"`
	ArticleID   int64  `gorm:"column:articleID;not null;index"`
	OrderNumber string `gorm:"column:ordernumber;type:varchar(255);not null;index"`
	InStock     int    `gorm:"column:instock;not null;default:0"`
}

// TableName returns the table name for GORM
func (ShopArticleDetailModel) TableName() string {
	return "s_articles_details"
}
