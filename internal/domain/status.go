package domain

import "regexp"

type (
	// OrderStatus represents the lifecycle state of an order.
	OrderStatus string
	// WorkerStatus represents the availability of a courier.
	WorkerStatus string
	// Severity classifies a notification for the presentation layer.
	Severity string
)

// List of possible order statuses
const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// List of possible courier statuses
const (
	WorkerActive    WorkerStatus = "active"
	WorkerSuspended WorkerStatus = "suspended"
)

// Notification severities
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderAccepted, OrderDelivered, OrderCancelled,
}

var allowedWorkerStatuses = [...]WorkerStatus{
	WorkerActive, WorkerSuspended,
}

// transitions holds the only legal status edges. Delivered and
// cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderAccepted, OrderCancelled},
	OrderAccepted: {OrderDelivered, OrderCancelled},
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether the edge from→to exists in the
// lifecycle table.
func CanTransition(from, to OrderStatus) bool {
	for _, v := range transitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// Valid checks if the WorkerStatus is valid
func (s WorkerStatus) Valid() bool {
	for _, v := range allowedWorkerStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// rePhone is a regex to validate phone numbers
var rePhone = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePhone validates the phone number format
func ValidatePhone(s string) bool {
	return rePhone.MatchString(s)
}
