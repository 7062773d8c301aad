package models

import "time"

// ArticleResponseModel stores the last provider reply for an article
type ArticleResponseModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	ArticleID  int64     `gorm:"column:artid;not null;uniqueIndex:idx_yc_product_artid"`
	Reference  string    `gorm:"column:yc_reference;type:varchar(64)"`
	Response   string    `gorm:"column:yc_response;type:text"`
	StatusType string    `gorm:"column:status_type;type:varchar(1)"`
	StatusCode int       `gorm:"column:status_code"`
	LastSentAt time.Time `gorm:"column:last_sent_at;not null"`
	CreatedAt  time.Time `gorm:"column:create_date;not null"`
}

// TableName returns the table name for GORM
func (ArticleResponseModel) TableName() string {
	return "asign_yellowcube_product"
}

// OrderResponseModel stores the provider replies for an order: the
// creation reply (WAB), the status reply and the goods issue reply (WAR)
type OrderResponseModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	OrderID        int64      `gorm:"column:ordid;not null;uniqueIndex:idx_yc_orders_ordid"`
	Reference      string     `gorm:"column:yc_reference;type:varchar(64)"`
	WabResponse    string     `gorm:"column:yc_wab_response;type:text"`
	StatusResponse string     `gorm:"column:yc_response;type:text"`
	WarResponse    string     `gorm:"column:yc_war_response;type:text"`
	Eori           string     `gorm:"column:eori;type:varchar(32)"`
	LastSentAt     *time.Time `gorm:"column:last_sent_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (OrderResponseModel) TableName() string {
	return "asign_yellowcube_orders"
}
