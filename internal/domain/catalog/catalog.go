package catalog

import "github.com/google/uuid"

// Category groups items. Deleting a category deletes its items.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func (c *Category) String() string {
	return c.Name
}

// PaymentMethod is static reference data attached to transactions
type PaymentMethod struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

func (p *PaymentMethod) String() string {
	return p.Label
}
