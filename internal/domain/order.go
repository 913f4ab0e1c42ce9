package domain

import "time"

// Order represents a single delivery order.
//
// Money is carried in whole currency units (int64); the price must be
// positive and becomes immutable once the order is delivered.
type Order struct {
	ID             string     `json:"id"`
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	Price          int64      `json:"price"`
	SenderPhone    string     `json:"senderPhone"`
	RecipientPhone string     `json:"recipientPhone,omitempty"`
	Description    string     `json:"description,omitempty"`
	WorkerID       string     `json:"workerId,omitempty"`
	WorkerName     string     `json:"workerName,omitempty"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	AcceptedAt     *time.Time `json:"acceptedAt,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
}

// Assigned reports whether the order currently has a courier.
func (o *Order) Assigned() bool { return o.WorkerID != "" }

// OrderPatch carries the courier-editable order fields. A nil field
// means "do not change" that attribute.
type OrderPatch struct {
	Origin         *string `json:"origin,omitempty"`
	Destination    *string `json:"destination,omitempty"`
	Price          *int64  `json:"price,omitempty"`
	SenderPhone    *string `json:"senderPhone,omitempty"`
	RecipientPhone *string `json:"recipientPhone,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// Empty reports whether the patch proposes no changes at all.
func (p OrderPatch) Empty() bool {
	return p.Origin == nil && p.Destination == nil && p.Price == nil &&
		p.SenderPhone == nil && p.RecipientPhone == nil && p.Description == nil
}

// AdminPatch extends OrderPatch with the assignment field, which only
// an admin may change.
type AdminPatch struct {
	OrderPatch
	WorkerID *string `json:"workerId,omitempty"`
}

// Empty reports whether the patch proposes no changes at all.
func (p AdminPatch) Empty() bool {
	return p.OrderPatch.Empty() && p.WorkerID == nil
}

// Apply merges the non-nil patch fields into the order.
func (p AdminPatch) Apply(o *Order) {
	if p.Origin != nil {
		o.Origin = *p.Origin
	}
	if p.Destination != nil {
		o.Destination = *p.Destination
	}
	if p.Price != nil {
		o.Price = *p.Price
	}
	if p.SenderPhone != nil {
		o.SenderPhone = *p.SenderPhone
	}
	if p.RecipientPhone != nil {
		o.RecipientPhone = *p.RecipientPhone
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.WorkerID != nil {
		o.WorkerID = *p.WorkerID
	}
}
