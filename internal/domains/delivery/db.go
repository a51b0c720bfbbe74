// Package delivery implements the food-delivery domain: stores with
// products, delivery orders and the tools that operate on them.
package delivery

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
)

// Attributes accepts either a plain string or a list of strings in task
// data; lists are joined with ", ".
type Attributes string

func (a *Attributes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Attributes(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = Attributes(strings.Join(list, ", "))
		return nil
	}
	return fmt.Errorf("attributes must be a string or a list of strings")
}

// StoreProduct is one delivery food item.
type StoreProduct struct {
	ProductID  string     `json:"product_id"`
	Price      float64    `json:"price"`
	Quantity   int        `json:"quantity"`
	Name       string     `json:"name"`
	StoreID    string     `json:"store_id"`
	StoreName  string     `json:"store_name"`
	Attributes Attributes `json:"attributes"`
	Tags       []string   `json:"tags"`
}

func (p *StoreProduct) Repr() string {
	return fmt.Sprintf("StoreProduct(store_name=%s, store_id=%s, product_name=%s, product_id=%s, attributes=%s, quantity=%d, price=%v, tags=%v)",
		p.StoreName, p.StoreID, p.Name, p.ProductID, p.Attributes, p.Quantity, p.Price, p.Tags)
}

// Store is one delivery restaurant.
type Store struct {
	StoreID  string          `json:"store_id"`
	Name     string          `json:"name"`
	Score    float64         `json:"score"`
	Location entity.Location `json:"location"`
	Tags     []string        `json:"tags"`
	Products []*StoreProduct `json:"products"`
}

// Str is the short store form used by search results and radius search.
func (s *Store) Str() string {
	return fmt.Sprintf("Store(name=%s, store_id=%s, score=%v, location=%s, tags=%v)",
		s.Name, s.StoreID, s.Score, s.Location.Repr(), s.Tags)
}

// Repr includes the full product list.
func (s *Store) Repr() string {
	products := make([]string, len(s.Products))
	for i, p := range s.Products {
		products[i] = p.Repr()
	}
	return fmt.Sprintf("Store(name=%s, store_id=%s, score=%v, location=%s, tags=%v), products=%s",
		s.Name, s.StoreID, s.Score, s.Location.Repr(), s.Tags, strings.Join(products, "\n"))
}

// DB is the delivery-domain database. World is a pointer so cross-domain
// environments can share one world across their domain databases.
type DB struct {
	*env.World
	Stores map[string]*Store `json:"stores"`
}

// NewDB decodes a task environment blob into a fresh delivery database.
func NewDB(raw json.RawMessage) (*DB, error) {
	var db DB
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("decode delivery environment: %w", err)
	}
	if db.World == nil {
		db.World = &env.World{}
	}
	if db.Stores == nil {
		db.Stores = map[string]*Store{}
	}
	if db.Orders == nil {
		db.Orders = map[string]*entity.Order{}
	}
	return &db, nil
}

// Statistics reports catalog sizes.
func (db *DB) Statistics() map[string]any {
	return map[string]any{"num_stores": len(db.Stores)}
}

// sortedStoreIDs gives a deterministic iteration order over the catalog.
func (db *DB) sortedStoreIDs() []string {
	ids := make([]string, 0, len(db.Stores))
	for id := range db.Stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
