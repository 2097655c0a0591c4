package sqlite

import "time"

// Row types mirror the logical relational schema. Metadata columns hold
// the canonical JSON envelope encoding as TEXT.

type conversationRow struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	CustomerID   string    `gorm:"index;type:varchar(64)"`
	CustomerName string    `gorm:"type:varchar(128)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"index;not null"`
	Metadata     string    `gorm:"type:text"`

	Messages []messageRow `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
}

func (conversationRow) TableName() string { return "conversations" }

type messageRow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	ConversationID string    `gorm:"index;not null;type:varchar(64)"`
	Timestamp      time.Time `gorm:"index;not null"`
	SenderType     string    `gorm:"type:varchar(16);not null"`
	SenderName     string    `gorm:"type:varchar(128)"`
	Content        string    `gorm:"type:text;not null"`
	Metadata       string    `gorm:"type:text"`
}

func (messageRow) TableName() string { return "messages" }

type orderRow struct {
	OrderID            string    `gorm:"primaryKey;type:varchar(64)"`
	CustomerID         string    `gorm:"index;type:varchar(64)"`
	CustomerName       string    `gorm:"index;type:varchar(128)"`
	TotalPrice         float64   `gorm:"not null"`
	Status             string    `gorm:"index;type:varchar(32);not null"`
	CreatedAt          time.Time `gorm:"index;not null"`
	UpdatedAt          time.Time `gorm:"not null"`
	EstimatedReadyTime string    `gorm:"type:varchar(64)"`
	ConversationID     string    `gorm:"type:varchar(64)"`
	Metadata           string    `gorm:"type:text"`

	Items []orderItemRow `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	OrderID   string  `gorm:"index;not null;type:varchar(64)"`
	ItemName  string  `gorm:"type:varchar(128);not null"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"`
	Subtotal  float64 `gorm:"not null"`
}

func (orderItemRow) TableName() string { return "order_items" }
