package models

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusPending   OrderStatus = "PENDING"
)

type OrderStatus string

// DisplayedStatus is either an OrderStatus or a status promoted from shipments.
// It is always derived and never stored.
type DisplayedStatus string

const (
	DisplayedIncidence DisplayedStatus = DisplayedStatus(TrackingStatusIncidence)
	DisplayedReturn    DisplayedStatus = DisplayedStatus(TrackingStatusReturn)
	DisplayedCompleted DisplayedStatus = DisplayedStatus(TrackingStatusCompleted)
)

type OrderItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Picture  string `json:"picture"`
}

type Order struct {
	OrderID       string        `json:"order_id"`
	Name          string        `json:"name"`
	LastName      string        `json:"last_name"`
	Email         string        `json:"email"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	PaymentMethod string        `json:"payment_method"`
	CreateDate    string        `json:"create_date"`
	Status        OrderStatus   `json:"status"`
	Items         []OrderItem   `json:"items"`
	Tracking      []TrackingRef `json:"tracking"`
}
