package models

import (
	"time"
)

// Order statuses. The lifecycle is deliberately unconstrained: any status
// may follow any other, the set itself is fixed.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusReady      = "Ready"
	StatusServed     = "Served"
)

var ValidStatuses = map[string]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusReady:      true,
	StatusServed:     true,
}

type CreateOrderRequest struct {
	Items []OrderLine `json:"items" binding:"required,min=1,dive"`
}

// OrderLine is one entry of an incoming order. Price is the client-supplied
// snapshot persisted as-is, zero included (comped items); it is not re-read
// from the items table so later menu price changes leave past orders
// untouched.
type OrderLine struct {
	ItemID int     `json:"id" binding:"required"`
	Qty    int     `json:"qty" binding:"required,gt=0"`
	Price  float64 `json:"price"`
}

type CreateOrderResponse struct {
	OrderNo   int       `json:"orderNo"`
	OrderTime time.Time `json:"orderTime"`
	Status    string    `json:"status"`
}

type OrderSummary struct {
	OrderNo   int             `json:"orderNo"`
	OrderTime time.Time       `json:"orderTime"`
	Status    string          `json:"status"`
	Items     []OrderItemView `json:"items"`
}

// OrderItemView is a line item joined with its menu item name.
type OrderItemView struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

type UpdateStatusRequest struct {
	OrderNo int    `json:"orderNo" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type OrderEvent struct {
	OrderNo  int       `json:"order_no"`
	Type     string    `json:"type"` // created, status_updated, prep_check
	Status   string    `json:"status,omitempty"`
	Total    float64   `json:"total,omitempty"`
	Occurred time.Time `json:"occurred"`
}
