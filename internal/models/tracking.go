package models

// Глобальные статусы отправки, как их отдаёт backend.
const (
	TrackingStatusProcessing TrackingStatus = "PROCESSING"
	TrackingStatusCompleted  TrackingStatus = "COMPLETED"
	TrackingStatusOrigin     TrackingStatus = "ORIGIN"
	TrackingStatusReturn     TrackingStatus = "RETURN"
	TrackingStatusIncidence  TrackingStatus = "INCIDENCE"
)

type TrackingStatus string

// TrackingRef identifies one shipment of an order.
type TrackingRef struct {
	TrackingNumber   string `json:"tracking_number"`
	TrackingProvider string `json:"tracking_provider"`
}

type TrackingEvent struct {
	Code string `json:"code"`
	Text string `json:"text"`
	Date string `json:"date"`
	City string `json:"city"`
}

type TrackingHistory struct {
	GlobalStatus TrackingStatus  `json:"global_status"`
	History      []TrackingEvent `json:"history"`
}
