// Package ota implements the travel-booking domain: hotels, attractions,
// flights and trains, each selling dated products with finite inventory.
package ota

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
)

// HotelProduct is a room type on a date.
type HotelProduct struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Date      string  `json:"date"`
	RoomType  string  `json:"room_type"`
}

func (p *HotelProduct) Repr() string {
	return fmt.Sprintf("HotelProduct(room_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
		p.RoomType, p.Date, p.Price, p.Quantity, p.ProductID)
}

// AttractionProduct is a ticket type on a date.
type AttractionProduct struct {
	ProductID  string  `json:"product_id"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Date       string  `json:"date"`
	TicketType string  `json:"ticket_type"`
}

func (p *AttractionProduct) Repr() string {
	return fmt.Sprintf("AttractionProduct(ticket_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
		p.TicketType, p.Date, p.Price, p.Quantity, p.ProductID)
}

// FlightProduct is a seat class on a date.
type FlightProduct struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Date      string  `json:"date"`
	SeatType  string  `json:"seat_type"`
}

func (p *FlightProduct) Repr() string {
	return fmt.Sprintf("FlightProduct(seat_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
		p.SeatType, p.Date, p.Price, p.Quantity, p.ProductID)
}

// TrainProduct is a seat class on a date.
type TrainProduct struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Date      string  `json:"date"`
	SeatType  string  `json:"seat_type"`
}

func (p *TrainProduct) Repr() string {
	return fmt.Sprintf("TrainProduct(seat_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
		p.SeatType, p.Date, p.Price, p.Quantity, p.ProductID)
}

// Hotel is one bookable hotel.
type Hotel struct {
	HotelID    string          `json:"hotel_id"`
	HotelName  string          `json:"hotel_name"`
	Score      float64         `json:"score"`
	StarRating int             `json:"star_rating"`
	Location   entity.Location `json:"location"`
	Tags       []string        `json:"tags"`
	Products   []*HotelProduct `json:"products"`
}

func (h *Hotel) Str() string {
	return fmt.Sprintf("Hotel(hotel_id=%s, hotel_name=%s, score=%v, star_rating=%d, location=%s, tags=%v)",
		h.HotelID, h.HotelName, h.Score, h.StarRating, h.Location.Repr(), h.Tags)
}

func (h *Hotel) Repr() string {
	products := make([]string, len(h.Products))
	for i, p := range h.Products {
		products[i] = p.Repr()
	}
	return fmt.Sprintf("Hotel(hotel_id=%s, hotel_name=%s, score=%v, star_rating=%d, location=%s, tags=%v, products=%s)",
		h.HotelID, h.HotelName, h.Score, h.StarRating, h.Location.Repr(), h.Tags, strings.Join(products, "\n"))
}

// Attraction is one ticketed sight.
type Attraction struct {
	AttractionID   string               `json:"attraction_id"`
	AttractionName string               `json:"attraction_name"`
	Location       entity.Location      `json:"location"`
	Description    string               `json:"description"`
	Score          float64              `json:"score"`
	OpeningHours   string               `json:"opening_hours"`
	TicketPrice    float64              `json:"ticket_price"`
	Products       []*AttractionProduct `json:"products"`
}

func (a *Attraction) Str() string {
	return fmt.Sprintf("Attraction(attraction_id=%s, attraction_name=%s, location=%s, description=%s, score=%v, opening_hours=%s, ",
		a.AttractionID, a.AttractionName, a.Location.Repr(), a.Description, a.Score, a.OpeningHours)
}

func (a *Attraction) Repr() string {
	products := make([]string, len(a.Products))
	for i, p := range a.Products {
		products[i] = p.Repr()
	}
	return fmt.Sprintf("Attraction(attraction_id=%s, attraction_name=%s, location=%s, description=%s, score=%v, opening_hours=%s, ticket_price=%v, products=%s)",
		a.AttractionID, a.AttractionName, a.Location.Repr(), a.Description, a.Score, a.OpeningHours, a.TicketPrice,
		strings.Join(products, "\n"))
}

// Flight is one flight with per-date seat products.
type Flight struct {
	FlightID                 string           `json:"flight_id"`
	FlightNumber             string           `json:"flight_number"`
	DepartureCity            string           `json:"departure_city"`
	ArrivalCity              string           `json:"arrival_city"`
	DepartureAirportLocation entity.Location  `json:"departure_airport_location"`
	ArrivalAirportLocation   entity.Location  `json:"arrival_airport_location"`
	DepartureTime            string           `json:"departure_time"`
	ArrivalTime              string           `json:"arrival_time"`
	Tags                     []string         `json:"tags"`
	Products                 []*FlightProduct `json:"products"`
}

func (f *Flight) Str() string {
	return fmt.Sprintf("Flight(flight_id=%s, flight_number=%s, departure_city=%s, arrival_city=%s, departure_airport_location=%s, arrival_airport_location=%s, departure_time=%s, arrival_time=%s, tags=%v)",
		f.FlightID, f.FlightNumber, f.DepartureCity, f.ArrivalCity,
		f.DepartureAirportLocation.Repr(), f.ArrivalAirportLocation.Repr(),
		f.DepartureTime, f.ArrivalTime, f.Tags)
}

func (f *Flight) Repr() string {
	products := make([]string, len(f.Products))
	for i, p := range f.Products {
		products[i] = p.Repr()
	}
	return fmt.Sprintf("Flight(flight_id=%s, flight_number=%s, departure_city=%s, arrival_city=%s, departure_airport_location=%s, arrival_airport_location=%s, departure_time=%s, arrival_time=%s, tags=%v, products=%s)",
		f.FlightID, f.FlightNumber, f.DepartureCity, f.ArrivalCity,
		f.DepartureAirportLocation.Repr(), f.ArrivalAirportLocation.Repr(),
		f.DepartureTime, f.ArrivalTime, f.Tags, strings.Join(products, "\n"))
}

// Train is one train with per-date seat products.
type Train struct {
	TrainID                  string          `json:"train_id"`
	TrainNumber              string          `json:"train_number"`
	DepartureCity            string          `json:"departure_city"`
	ArrivalCity              string          `json:"arrival_city"`
	DepartureStationLocation entity.Location `json:"departure_station_location"`
	ArrivalStationLocation   entity.Location `json:"arrival_station_location"`
	DepartureTime            string          `json:"departure_time"`
	ArrivalTime              string          `json:"arrival_time"`
	Tags                     []string        `json:"tags"`
	Products                 []*TrainProduct `json:"products"`
}

func (t *Train) Str() string {
	return fmt.Sprintf("Train(train_id=%s, train_number=%s, departure_city=%s, arrival_city=%s, departure_station_location=%s, arrival_station_location=%s, departure_time=%s, arrival_time=%s, tags=%v)",
		t.TrainID, t.TrainNumber, t.DepartureCity, t.ArrivalCity,
		t.DepartureStationLocation.Repr(), t.ArrivalStationLocation.Repr(),
		t.DepartureTime, t.ArrivalTime, t.Tags)
}

func (t *Train) Repr() string {
	products := make([]string, len(t.Products))
	for i, p := range t.Products {
		products[i] = p.Repr()
	}
	return fmt.Sprintf("Train(train_id=%s, train_number=%s, departure_city=%s, arrival_city=%s, departure_station_location=%s, arrival_station_location=%s, departure_time=%s, arrival_time=%s, tags=%v, products=%s)",
		t.TrainID, t.TrainNumber, t.DepartureCity, t.ArrivalCity,
		t.DepartureStationLocation.Repr(), t.ArrivalStationLocation.Repr(),
		t.DepartureTime, t.ArrivalTime, t.Tags, strings.Join(products, "\n"))
}

// DB is the OTA-domain database. World is a pointer so cross-domain
// environments can share one world across their domain databases.
type DB struct {
	*env.World
	Hotels      map[string]*Hotel      `json:"hotels"`
	Attractions map[string]*Attraction `json:"attractions"`
	Flights     map[string]*Flight     `json:"flights"`
	Trains      map[string]*Train      `json:"trains"`
}

// NewDB decodes a task environment blob into a fresh OTA database.
func NewDB(raw json.RawMessage) (*DB, error) {
	var db DB
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("decode ota environment: %w", err)
	}
	if db.World == nil {
		db.World = &env.World{}
	}
	if db.Hotels == nil {
		db.Hotels = map[string]*Hotel{}
	}
	if db.Attractions == nil {
		db.Attractions = map[string]*Attraction{}
	}
	if db.Flights == nil {
		db.Flights = map[string]*Flight{}
	}
	if db.Trains == nil {
		db.Trains = map[string]*Train{}
	}
	if db.Orders == nil {
		db.Orders = map[string]*entity.Order{}
	}
	return &db, nil
}

// Statistics reports catalog sizes.
func (db *DB) Statistics() map[string]any {
	return map[string]any{
		"num_hotels":      len(db.Hotels),
		"num_attractions": len(db.Attractions),
		"num_flights":     len(db.Flights),
		"num_trains":      len(db.Trains),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
