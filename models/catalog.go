package models

import "time"

// Catalog tables are filled by cmd/loaddata only. The chat flow never reads them.

type DistributionCenter struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:200" json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Product struct {
	ID                   uint    `gorm:"primaryKey" json:"id"`
	Cost                 float64 `json:"cost"`
	Category             string  `gorm:"size:100" json:"category"`
	Name                 string  `gorm:"size:255" json:"name"`
	Brand                string  `gorm:"size:100" json:"brand"`
	RetailPrice          float64 `json:"retail_price"`
	Department           string  `gorm:"size:50" json:"department"`
	SKU                  string  `gorm:"column:sku;size:64" json:"sku"`
	DistributionCenterID *uint   `gorm:"index" json:"distribution_center_id"`
}

type InventoryItem struct {
	ID                          uint       `gorm:"primaryKey" json:"id"`
	ProductID                   *uint      `gorm:"index" json:"product_id"`
	CreatedAt                   *time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	SoldAt                      *time.Time `json:"sold_at"`
	Cost                        float64    `json:"cost"`
	ProductCategory             string     `gorm:"size:100" json:"product_category"`
	ProductName                 string     `gorm:"size:255" json:"product_name"`
	ProductBrand                string     `gorm:"size:100" json:"product_brand"`
	ProductRetailPrice          float64    `json:"product_retail_price"`
	ProductDepartment           string     `gorm:"size:50" json:"product_department"`
	ProductSKU                  string     `gorm:"column:product_sku;size:64" json:"product_sku"`
	ProductDistributionCenterID *uint      `json:"product_distribution_center_id"`
}

type Order struct {
	OrderID     uint       `gorm:"primaryKey" json:"order_id"`
	UserID      *uint      `gorm:"index" json:"user_id"`
	Status      string     `gorm:"size:30" json:"status"`
	Gender      string     `gorm:"size:10" json:"gender"`
	CreatedAt   *time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	ReturnedAt  *time.Time `json:"returned_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	NumOfItem   int        `json:"num_of_item"`
}

type OrderItem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	OrderID         *uint      `gorm:"index" json:"order_id"`
	UserID          *uint      `json:"user_id"`
	ProductID       *uint      `json:"product_id"`
	InventoryItemID *uint      `json:"inventory_item_id"`
	Status          string     `gorm:"size:30" json:"status"`
	CreatedAt       *time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	ShippedAt       *time.Time `json:"shipped_at"`
	DeliveredAt     *time.Time `json:"delivered_at"`
	ReturnedAt      *time.Time `json:"returned_at"`
}

// All lists every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{}, &Conversation{}, &Message{},
		&DistributionCenter{}, &Product{}, &InventoryItem{}, &Order{}, &OrderItem{},
	}
}
