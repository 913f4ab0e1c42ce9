package orders

import (
	"fmt"
	"strconv"
	"strings"

	"delivery-dispatch/internal/domain"
)

// editField pairs a human-readable label with a value extractor. The
// diff walks this list uniformly instead of branching per field, so
// adding a field is a one-line change.
type editField struct {
	label   string
	extract func(*domain.Order) string
}

var editFields = []editField{
	{"origin", func(o *domain.Order) string { return o.Origin }},
	{"destination", func(o *domain.Order) string { return o.Destination }},
	{"price", func(o *domain.Order) string { return strconv.FormatInt(o.Price, 10) }},
	{"sender phone", func(o *domain.Order) string { return o.SenderPhone }},
	{"recipient phone", func(o *domain.Order) string { return o.RecipientPhone }},
	{"description", func(o *domain.Order) string { return o.Description }},
	{"assignment", func(o *domain.Order) string { return o.WorkerName }},
}

// diffOrders returns one "label: old -> new" entry per changed field.
func diffOrders(before, after *domain.Order) []string {
	var out []string
	for _, f := range editFields {
		oldV, newV := f.extract(before), f.extract(after)
		if oldV != newV {
			out = append(out, fmt.Sprintf("%s: %q -> %q", f.label, oldV, newV))
		}
	}
	return out
}

// editNotice builds the courier-facing message for an admin edit.
func editNotice(orderID string, changes []string) string {
	return fmt.Sprintf("order %s updated: %s", orderID, strings.Join(changes, "; "))
}
