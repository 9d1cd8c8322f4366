package models

import "time"

const (
	OrderStatusPending   = "Pending"
	OrderStatusProcessed = "Processed"
	OrderStatusInvoiced  = "Invoiced"
)

// Order is a shop->admin goods request. Creating one never mutates stock;
// stock moves only on the invoice an admin may raise from it.
type Order struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string      `gorm:"size:32;uniqueIndex;not null" json:"orderId"`
	ShopID      int64       `gorm:"not null;index" json:"shopId"`
	AdminID     *int64      `json:"adminId"`
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	Subtotal   string `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	TaxPercent string `gorm:"type:decimal(5,2);not null" json:"taxPercent"`
	TaxAmount  string `gorm:"type:decimal(18,2);not null" json:"tax"`
	GrandTotal string `gorm:"type:decimal(18,2);not null" json:"grandTotal"`

	Status    string    `gorm:"size:16;not null" json:"status"`
	OrderDate time.Time `gorm:"not null" json:"orderDate"`
	InvoiceID *int64    `json:"invoiceId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64 `gorm:"index;not null" json:"orderId"`
	ProductID int64 `gorm:"not null" json:"productId"`

	Quantity   string `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitPrice  string `gorm:"type:decimal(18,2);not null" json:"unitPrice"`
	TotalPrice string `gorm:"type:decimal(18,2);not null" json:"totalPrice"`

	ProductName string `gorm:"size:255;not null" json:"productName"`
	ProductSKU  string `gorm:"size:64;not null" json:"productSku"`
	Unit        string `gorm:"size:32;not null" json:"unit"`

	CreatedAt time.Time `json:"createdAt"`
}
