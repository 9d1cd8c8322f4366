package models

import "time"

// Bill is an over-the-counter sale raised against the owner's own
// inventory: SHP-{shopCode}-{seq4} for shops, ADM-{seq4} for the admin.
type Bill struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BillNumber string     `gorm:"size:32;uniqueIndex;not null" json:"billNumber"`
	Owner      Owner      `gorm:"embedded;embeddedPrefix:owner_" json:"owner"`
	Items      []BillItem `gorm:"foreignKey:BillID" json:"items"`

	Subtotal   string `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	TaxPercent string `gorm:"type:decimal(5,2);not null" json:"taxPercent"`
	TaxAmount  string `gorm:"type:decimal(18,2);not null" json:"tax"`
	GrandTotal string `gorm:"type:decimal(18,2);not null" json:"grandTotal"`

	CustomerName string    `gorm:"size:128" json:"customerName"`
	BillDate     time.Time `gorm:"not null" json:"billDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BillItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	BillID    int64 `gorm:"index;not null" json:"billId"`
	ProductID int64 `gorm:"not null" json:"productId"`

	Quantity   string `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitPrice  string `gorm:"type:decimal(18,2);not null" json:"unitPrice"`
	TotalPrice string `gorm:"type:decimal(18,2);not null" json:"totalPrice"`

	ProductName string `gorm:"size:255;not null" json:"productName"`
	ProductSKU  string `gorm:"size:64;not null" json:"productSku"`
	Unit        string `gorm:"size:32;not null" json:"unit"`

	CreatedAt time.Time `json:"createdAt"`
}
