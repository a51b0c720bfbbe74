// Package entity holds the domain value types shared by every toolkit:
// locations, weather records and orders. Entities are plain value types;
// field constraints live in explicit parse/validate functions at the edges.
package entity

import (
	"fmt"
	"strings"
)

// Location is a physical address with its geocode.
type Location struct {
	Address   string  `json:"address"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (l Location) Repr() string {
	return fmt.Sprintf("%s longitude:%v,latitude:%v", l.Address, l.Longitude, l.Latitude)
}

// Weather is one city/date weather record.
type Weather struct {
	City        string     `json:"city"`
	Category    string     `json:"category"`
	Datetime    string     `json:"datetime"`
	Temperature [2]float64 `json:"temperature"`
	Humidity    float64    `json:"humidity"`
}

func (w Weather) Repr() string {
	return fmt.Sprintf("city: %s, weather: %s, datetime: %s, temperature: %v~%v, humidity: %v",
		w.City, w.Category, w.Datetime, w.Temperature[0], w.Temperature[1], w.Humidity)
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusUnpaid     OrderStatus = "unpaid"
	StatusPaid       OrderStatus = "paid"
	StatusUnconsumed OrderStatus = "unconsumed"
	StatusConsumed   OrderStatus = "consumed"
	StatusProcessed  OrderStatus = "processed"
	StatusInProgress OrderStatus = "in-progress"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderType tags which scenario an order belongs to.
type OrderType string

const (
	TypeDelivery   OrderType = "delivery"
	TypeInstore    OrderType = "instore"
	TypeHotel      OrderType = "hotel"
	TypeAttraction OrderType = "attraction"
	TypeFlight     OrderType = "flight"
	TypeTrain      OrderType = "train"
)

// LineKind tags which product family an order line came from.
type LineKind string

const (
	LineStoreProduct LineKind = "store_product"
	LineShopProduct  LineKind = "shop_product"
	LineHotelRoom    LineKind = "hotel_room"
	LineTicket       LineKind = "ticket"
	LineFlightSeat   LineKind = "flight_seat"
	LineTrainSeat    LineKind = "train_seat"
)

// OrderLine is one product line item in an order. The populated optional
// fields depend on Kind.
type OrderLine struct {
	Kind       LineKind `json:"kind"`
	ProductID  string   `json:"product_id"`
	Name       string   `json:"name,omitempty"`
	StoreID    string   `json:"store_id,omitempty"`
	StoreName  string   `json:"store_name,omitempty"`
	Price      float64  `json:"price"`
	Quantity   int      `json:"quantity"`
	Attributes string   `json:"attributes,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Date       string   `json:"date,omitempty"`
	RoomType   string   `json:"room_type,omitempty"`
	TicketType string   `json:"ticket_type,omitempty"`
	SeatType   string   `json:"seat_type,omitempty"`
}

func (p OrderLine) Repr() string {
	switch p.Kind {
	case LineStoreProduct:
		return fmt.Sprintf("StoreProduct(store_name=%s, store_id=%s, product_name=%s, product_id=%s, attributes=%s, quantity=%d, price=%v, tags=%v)",
			p.StoreName, p.StoreID, p.Name, p.ProductID, p.Attributes, p.Quantity, p.Price, p.Tags)
	case LineShopProduct:
		return fmt.Sprintf("ShopProduct(shop_id=%s, product_id=%s, name=%s, price=%v, quantity=%d, tags=%v)",
			p.StoreID, p.ProductID, p.Name, p.Price, p.Quantity, p.Tags)
	case LineHotelRoom:
		return fmt.Sprintf("HotelProduct(room_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
			p.RoomType, p.Date, p.Price, p.Quantity, p.ProductID)
	case LineTicket:
		return fmt.Sprintf("AttractionProduct(ticket_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
			p.TicketType, p.Date, p.Price, p.Quantity, p.ProductID)
	case LineFlightSeat:
		return fmt.Sprintf("FlightProduct(seat_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
			p.SeatType, p.Date, p.Price, p.Quantity, p.ProductID)
	case LineTrainSeat:
		return fmt.Sprintf("TrainProduct(seat_type=%s, date=%s, price=%v, quantity=%d, product_id=%s)",
			p.SeatType, p.Date, p.Price, p.Quantity, p.ProductID)
	}
	return fmt.Sprintf("Product(product_id=%s, price=%v, quantity=%d)", p.ProductID, p.Price, p.Quantity)
}

// storeIDField maps order type to the label used for the store id in
// human-readable order dumps.
var storeIDField = map[OrderType]string{
	TypeDelivery:   "store_id",
	TypeInstore:    "shop_id",
	TypeHotel:      "hotel_id",
	TypeAttraction: "attraction_id",
	TypeFlight:     "flight_id",
	TypeTrain:      "train_id",
}

// Order is one purchase with its line items, payment state and timestamps.
type Order struct {
	OrderID      string      `json:"order_id"`
	OrderType    OrderType   `json:"order_type"`
	UserID       string      `json:"user_id"`
	StoreID      string      `json:"store_id"`
	Note         string      `json:"note,omitempty"`
	Location     *Location   `json:"location,omitempty"`
	DispatchTime string      `json:"dispatch_time,omitempty"`
	ShippingTime float64     `json:"shipping_time,omitempty"`
	DeliveryTime string      `json:"delivery_time,omitempty"`
	TotalPrice   float64     `json:"total_price"`
	CreateTime   string      `json:"create_time"`
	UpdateTime   string      `json:"update_time"`
	Status       OrderStatus `json:"status"`
	Products     []OrderLine `json:"products"`
}

// Str is the short human-readable form used by order listings.
func (o *Order) Str() string {
	return fmt.Sprintf("Order(order_id:%s, order_type:%s, user_id:%s, %s:%s, total_price:%v, create_time:%s, update_time:%s, status:%s, ",
		o.OrderID, o.OrderType, o.UserID, storeIDField[o.OrderType], o.StoreID,
		o.TotalPrice, o.CreateTime, o.UpdateTime, o.Status)
}

// Repr is the full human-readable form including line items; delivery
// orders additionally surface their dispatch/shipping/delivery fields.
func (o *Order) Repr() string {
	lines := make([]string, len(o.Products))
	for i, p := range o.Products {
		lines[i] = p.Repr()
	}
	products := strings.Join(lines, ", ")
	if o.OrderType == TypeDelivery {
		return fmt.Sprintf("Order(order_id:%s, order_type:%s, user_id:%s, %s:%s, dispatch_time:%s, shipping_time:%v, delivery_time:%s, total_price:%v, create_time:%s, update_time:%s, note:%s, status:%s, products:[%s])",
			o.OrderID, o.OrderType, o.UserID, storeIDField[o.OrderType], o.StoreID,
			o.DispatchTime, o.ShippingTime, o.DeliveryTime, o.TotalPrice,
			o.CreateTime, o.UpdateTime, o.Note, o.Status, products)
	}
	return fmt.Sprintf("Order(order_id:%s, order_type:%s, user_id:%s, %s:%s, total_price:%v, create_time:%s, update_time:%s, status:%s, products:[%s])",
		o.OrderID, o.OrderType, o.UserID, storeIDField[o.OrderType], o.StoreID,
		o.TotalPrice, o.CreateTime, o.UpdateTime, o.Status, products)
}
