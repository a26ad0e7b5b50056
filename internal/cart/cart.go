// Package cart holds the shopping cart value and its persistence.
//
// A Cart is an explicit value: callers load it from a Store, mutate it and
// save it back. Lines are keyed by product and unit so the same cut can sit
// in the cart once per kg and once per piece.
package cart

import (
	"errors"
	"time"

	"german-butchery/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// Item is a single cart line
type Item struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	Unit           string          `json:"unit"`
	UnitMultiplier decimal.Decimal `json:"unit_multiplier"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       decimal.Decimal `json:"quantity"`
	Currency       string          `json:"currency"`
}

// LineTotal is the unit price times the quantity, priced the way the order
// line will be
func (i Item) LineTotal() decimal.Decimal {
	return domain.LineTotal(i.UnitPrice, i.Quantity)
}

func (i Item) matches(productID uuid.UUID, unit string) bool {
	return i.ProductID == productID && i.Unit == unit
}

// Cart is an ordered list of lines identified by a client-held id
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart
func New(id string) *Cart {
	return &Cart{ID: id, Items: []Item{}}
}

// Add appends the item, or increments the quantity when the product and unit
// are already present. Price and display fields are refreshed from item.
func (c *Cart) Add(item Item) error {
	if !item.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}

	for i := range c.Items {
		if c.Items[i].matches(item.ProductID, item.Unit) {
			item.Quantity = c.Items[i].Quantity.Add(item.Quantity)
			c.Items[i] = item
			c.touch()
			return nil
		}
	}

	c.Items = append(c.Items, item)
	c.touch()
	return nil
}

// SetQuantity replaces the quantity of a line. Zero or less removes it.
func (c *Cart) SetQuantity(productID uuid.UUID, unit string, quantity decimal.Decimal) error {
	idx := c.indexOf(productID, unit)
	if idx < 0 {
		return ErrItemNotFound
	}

	if !quantity.IsPositive() {
		c.removeAt(idx)
		return nil
	}

	c.Items[idx].Quantity = quantity
	c.touch()
	return nil
}

// Remove drops a line
func (c *Cart) Remove(productID uuid.UUID, unit string) error {
	idx := c.indexOf(productID, unit)
	if idx < 0 {
		return ErrItemNotFound
	}
	c.removeAt(idx)
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.touch()
}

// Get returns a copy of the line for the product and unit
func (c *Cart) Get(productID uuid.UUID, unit string) (Item, bool) {
	idx := c.indexOf(productID, unit)
	if idx < 0 {
		return Item{}, false
	}
	return c.Items[idx], true
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalPrice sums every line total
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalItems sums the quantities of every line
func (c *Cart) TotalItems() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

func (c *Cart) indexOf(productID uuid.UUID, unit string) int {
	for i := range c.Items {
		if c.Items[i].matches(productID, unit) {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch()
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
