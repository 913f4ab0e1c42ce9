package kafka

import (
	"delivery-dispatch/internal/domain"
	dsync "delivery-dispatch/internal/sync"
)

// FeedDTO is the wire shape of one full-collection feed delivery.
type FeedDTO struct {
	Orders         []domain.Order         `json:"orders"`
	Workers        []domain.Worker        `json:"workers"`
	Expenses       []domain.Expense       `json:"expenses"`
	ChangeRequests []domain.ChangeRequest `json:"changeRequests"`
}

// ToDomain converts FeedDTO into sync.Collections.
func ToDomain(dto FeedDTO) dsync.Collections {
	return dsync.Collections{
		Orders:         dto.Orders,
		Workers:        dto.Workers,
		Expenses:       dto.Expenses,
		ChangeRequests: dto.ChangeRequests,
	}
}
