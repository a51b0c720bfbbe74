// Package instore implements the in-store domain: shops with packages,
// table bookings and service reservations.
package instore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
)

// ShopProduct is one in-store package.
type ShopProduct struct {
	ProductID string   `json:"product_id"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Name      string   `json:"name"`
	ShopID    string   `json:"shop_id"`
	Tags      []string `json:"tags"`
}

func (p *ShopProduct) Repr() string {
	return fmt.Sprintf("ShopProduct(shop_id=%s, product_id=%s, name=%s, price=%v, quantity=%d, tags=%v)",
		p.ShopID, p.ProductID, p.Name, p.Price, p.Quantity, p.Tags)
}

// Shop is one in-store merchant.
type Shop struct {
	ShopID            string          `json:"shop_id"`
	ShopName          string          `json:"shop_name"`
	Score             float64         `json:"score"`
	Location          entity.Location `json:"location"`
	Tags              []string        `json:"tags"`
	EnableBook        bool            `json:"enable_book"`
	BookPrice         float64         `json:"book_price"`
	EnableReservation bool            `json:"enable_reservation"`
	Products          []*ShopProduct  `json:"products"`
}

// Str is the short shop form used by search results.
func (s *Shop) Str() string {
	return fmt.Sprintf("Shop(shop_name=%s, shop_id=%s, score=%v, location=%s, tags=%v, enable_book=%v, book_price=%v, enable_reservation=%v)",
		s.ShopName, s.ShopID, s.Score, s.Location.Repr(), s.Tags, s.EnableBook, s.BookPrice, s.EnableReservation)
}

// Repr includes the full product list.
func (s *Shop) Repr() string {
	products := make([]string, len(s.Products))
	for i, p := range s.Products {
		products[i] = p.Repr()
	}
	return fmt.Sprintf("Shop(shop_name=%s, shop_id=%s, score=%v, location=%s, tags=%v, enable_book=%v, book_price=%v, enable_reservation=%v, products=%s)",
		s.ShopName, s.ShopID, s.Score, s.Location.Repr(), s.Tags, s.EnableBook, s.BookPrice, s.EnableReservation,
		strings.Join(products, "\n"))
}

// BookInfo is one table booking.
type BookInfo struct {
	BookID        string             `json:"book_id"`
	ShopID        string             `json:"shop_id"`
	BookTime      string             `json:"book_time"`
	UpdateTime    string             `json:"update_time"`
	CustomerID    string             `json:"customer_id"`
	CustomerCount int                `json:"customer_count"`
	BookPrice     float64            `json:"book_price"`
	Status        entity.OrderStatus `json:"status"`
}

func (b *BookInfo) Repr() string {
	return fmt.Sprintf("BookInfo(book_id=%s,shop_id=%s, book_time=%s, customer_id=%s, customer_count=%d, book_price=%v, status=%s",
		b.BookID, b.ShopID, b.BookTime, b.CustomerID, b.CustomerCount, b.BookPrice, b.Status)
}

// ReservationInfo is one service appointment.
type ReservationInfo struct {
	ReservationID   string             `json:"reservation_id"`
	ShopID          string             `json:"shop_id"`
	ReservationTime string             `json:"reservation_time"`
	UpdateTime      string             `json:"update_time"`
	CustomerID      string             `json:"customer_id"`
	CustomerCount   int                `json:"customer_count"`
	Status          entity.OrderStatus `json:"status"`
}

func (r *ReservationInfo) Repr() string {
	return fmt.Sprintf("ReservationInfo(reservation_id=%s,shop_id=%s, reservation_time=%s, customer_id=%s, customer_count=%d, status=%s",
		r.ReservationID, r.ShopID, r.ReservationTime, r.CustomerID, r.CustomerCount, r.Status)
}

// DB is the in-store-domain database. World is a pointer so cross-domain
// environments can share one world across their domain databases.
type DB struct {
	*env.World
	Shops        map[string]*Shop            `json:"shops"`
	Books        map[string]*BookInfo        `json:"books"`
	Reservations map[string]*ReservationInfo `json:"reservations"`
}

// NewDB decodes a task environment blob into a fresh in-store database.
func NewDB(raw json.RawMessage) (*DB, error) {
	var db DB
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("decode instore environment: %w", err)
	}
	if db.World == nil {
		db.World = &env.World{}
	}
	if db.Shops == nil {
		db.Shops = map[string]*Shop{}
	}
	if db.Books == nil {
		db.Books = map[string]*BookInfo{}
	}
	if db.Reservations == nil {
		db.Reservations = map[string]*ReservationInfo{}
	}
	if db.Orders == nil {
		db.Orders = map[string]*entity.Order{}
	}
	return &db, nil
}

// Statistics reports catalog sizes.
func (db *DB) Statistics() map[string]any {
	return map[string]any{"num_stores": len(db.Shops)}
}

func (db *DB) sortedShopIDs() []string {
	ids := make([]string, 0, len(db.Shops))
	for id := range db.Shops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
