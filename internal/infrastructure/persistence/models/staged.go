package models

import "time"

// StagedOrderModel is an order the shop exported for the connector. Payload
// holds the order record as JSON.
type StagedOrderModel struct {
	OrderID     int64      `gorm:"column:ordid;primaryKey"`
	OrderNumber string     `gorm:"column:ordernumber;type:varchar(64);not null;index"`
	Payload     string     `gorm:"column:payload;type:text;not null"`
	Prepaid     bool       `gorm:"column:prepaid;not null"`
	SentAt      *time.Time `gorm:"column:sent_at;index"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
}

// TableName returns the table name for GORM
func (StagedOrderModel) TableName() string {
	return "asign_yellowcube_staged_orders"
}

// StagedArticleModel is an article the shop exported for the connector
type StagedArticleModel struct {
	ArticleID     int64     `gorm:"column:artid;primaryKey"`
	ArticleNumber string    `gorm:"column:ordernumber;type:varchar(64);not null;uniqueIndex"`
	Active        bool      `gorm:"column:active;not null"`
	Payload       string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (StagedArticleModel) TableName() string {
	return "asign_yellowcube_staged_articles"
}
