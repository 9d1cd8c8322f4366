package models

import "time"

const (
	InvoiceStatusPending   = "Pending"
	InvoiceStatusPartial   = "Partial"
	InvoiceStatusConfirmed = "Confirmed"
)

// Invoice is a committed admin->shop goods transfer. Source stock is
// deducted when the invoice is created; the destination shop's stock moves
// only as the shop confirms receipt item by item.
type Invoice struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber string        `gorm:"size:32;uniqueIndex;not null" json:"invoiceNumber"`
	AdminID       int64         `gorm:"not null;index" json:"adminId"`
	ShopID        int64         `gorm:"not null;index" json:"shopId"`
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	Subtotal   string `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	TaxPercent string `gorm:"type:decimal(5,2);not null" json:"taxPercent"`
	TaxAmount  string `gorm:"type:decimal(18,2);not null" json:"tax"`
	GrandTotal string `gorm:"type:decimal(18,2);not null" json:"grandTotal"`

	Status        string     `gorm:"size:16;not null" json:"status"`
	IssueDate     time.Time  `gorm:"not null" json:"issueDate"`
	ConfirmedDate *time.Time `json:"confirmedDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type InvoiceItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID int64 `gorm:"index;not null" json:"invoiceId"`
	ProductID int64 `gorm:"not null" json:"productId"`

	Quantity         string  `gorm:"type:decimal(18,3);not null" json:"quantity"`
	ReceivedQuantity *string `gorm:"type:decimal(18,3)" json:"receivedQuantity"`
	UnitPrice        string  `gorm:"type:decimal(18,2);not null" json:"unitPrice"`
	TotalPrice       string  `gorm:"type:decimal(18,2);not null" json:"totalPrice"`

	// Snapshots taken at invoice creation; they must survive later renames
	// of the source product.
	ProductName string `gorm:"size:255;not null" json:"productName"`
	ProductSKU  string `gorm:"size:64;not null" json:"productSku"`
	Unit        string `gorm:"size:32;not null" json:"unit"`

	ShopConfirmed bool      `gorm:"not null;default:false" json:"shopConfirmed"`
	CreatedAt     time.Time `json:"createdAt"`
}
