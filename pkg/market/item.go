// Package market holds the points marketplace catalogue.
package market

import (
	"context"
	"strings"
	"time"
)

// Item is a marketplace entry purchasable with points.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int       `json:"price"`
	CreatedBy   int64     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the persistence interface for market items.
// ListItems returns newest first.
type Store interface {
	CreateItem(ctx context.Context, item *Item) error
	ListItems(ctx context.Context) ([]Item, error)
}

// New validates and builds an item. An empty name is rejected; a
// non-numeric or missing price becomes 0, matching the original form
// handling.
func New(name, description string, price int, createdBy int64) (*Item, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if price < 0 {
		price = 0
	}
	return &Item{
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}, true
}
