package billing

import "fmt"

// NotFoundError reports a missing referenced entity (patient, bill or
// inventory item).
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InsufficientStockError reports a stock-backed line that asked for
// more units than the inventory item has on hand.
type InsufficientStockError struct {
	ItemID    int64
	Name      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for item %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}
