package models

import "time"

// Owner is the tagged variant identifying which tenant holds a document:
// the central admin or a single shop. Exactly one of the two kinds applies.
type Owner struct {
	Kind OwnerKind `gorm:"size:16;not null" json:"kind"`
	ID   int64     `gorm:"not null" json:"id"`
}

type OwnerKind string

const (
	OwnerAdmin OwnerKind = "admin"
	OwnerShop  OwnerKind = "shop"
)

func AdminOwner(id int64) Owner { return Owner{Kind: OwnerAdmin, ID: id} }
func ShopOwner(id int64) Owner  { return Owner{Kind: OwnerShop, ID: id} }

type Shop struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopName string `gorm:"size:128;not null" json:"shopName"`
	Location string `gorm:"size:255" json:"location"`
	// ShopCode namespaces shop-scoped bill numbers, e.g. KA01. Allocated
	// once at creation and never changed afterwards.
	ShopCode  string    `gorm:"size:8;uniqueIndex;not null" json:"shopCode"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	// SKU is unique per owner: the index tag on the embedded Owner spreads
	// onto owner_kind and owner_id, giving one composite unique index.
	SKU         string `gorm:"size:64;not null;uniqueIndex:idx_products_owner_sku" json:"sku"`
	ProductName string `gorm:"size:255;not null" json:"productName"`
	Category    string `gorm:"size:128" json:"category"`
	Unit        string `gorm:"size:32;not null" json:"unit"`
	// StockLevel may go negative: invoices deduct at creation without a
	// minimum-stock guard.
	StockLevel          string         `gorm:"type:decimal(18,3);not null;default:0" json:"stockLevel"`
	StockAlertThreshold string         `gorm:"type:decimal(18,3);not null;default:0" json:"stockAlertThreshold"`
	Owner               Owner          `gorm:"embedded;embeddedPrefix:owner_;uniqueIndex:idx_products_owner_sku" json:"owner"`
	Prices              []ProductPrice `gorm:"foreignKey:ProductID" json:"prices"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

type ProductPrice struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID    int64  `gorm:"index;not null" json:"productId"`
	Unit         string `gorm:"size:32;not null" json:"unit"`
	NetPrice     string `gorm:"type:decimal(18,2);not null" json:"netPrice"`
	SellingPrice string `gorm:"type:decimal(18,2);not null" json:"sellingPrice"`
}

// SequenceCounter backs human-readable identifier allocation. One row per
// scope (invoice:2025, order:2025, bill:shop:KA01, ...), incremented under a
// row lock inside the transaction that consumes the value.
type SequenceCounter struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Scope     string `gorm:"size:64;uniqueIndex;not null"`
	LastValue int64  `gorm:"not null"`
	UpdatedAt time.Time
}
