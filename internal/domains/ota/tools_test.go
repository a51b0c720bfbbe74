package ota

import (
	"strings"
	"testing"
	"time"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/lang"
)

func newTestToolkit(t *testing.T) (*Toolkit, *DB) {
	t.Helper()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := &DB{
		World: &env.World{
			Time:   "2025-06-01 12:00:00",
			UserID: "user_1",
			Clock:  func() time.Time { return fixed },
			Orders: map[string]*entity.Order{},
		},
		Hotels: map[string]*Hotel{
			"H1": {
				HotelID:    "H1",
				HotelName:  "临江大酒店",
				Score:      4.7,
				StarRating: 5,
				Location:   entity.Location{Address: "杭州市西湖区北山街1号", Longitude: 120.14, Latitude: 30.25},
				Tags:       []string{"江景", "泳池"},
				Products: []*HotelProduct{
					{ProductID: "R1", Price: 680.0, Quantity: 1, Date: "2025-06-02", RoomType: "大床房"},
				},
			},
		},
		Attractions: map[string]*Attraction{},
		Flights:     map[string]*Flight{},
		Trains: map[string]*Train{
			"T1": {
				TrainID:                  "T1",
				TrainNumber:              "G101",
				DepartureCity:            "北京",
				ArrivalCity:              "上海",
				DepartureStationLocation: entity.Location{Address: "北京南站", Longitude: 116.38, Latitude: 39.86},
				ArrivalStationLocation:   entity.Location{Address: "上海虹桥站", Longitude: 121.32, Latitude: 31.19},
				DepartureTime:            "08:00",
				ArrivalTime:              "13:30",
				Tags:                     []string{"高铁"},
				Products: []*TrainProduct{
					{ProductID: "TS1", Price: 553.0, Quantity: 10, Date: "2025-06-02", SeatType: "二等座"},
					{ProductID: "TS2", Price: 553.0, Quantity: 1, Date: "2025-06-03", SeatType: "二等座"},
				},
			},
		},
	}
	return New(db, lang.Chinese), db
}

func createTrainOrder(t *testing.T, kit *Toolkit, db *DB, quantity int) *entity.Order {
	t.Helper()
	if _, err := kit.Use("create_train_order", map[string]any{
		"train_id": "T1",
		"seat_id":  "TS1",
		"user_id":  "user_1",
		"date":     "2025-06-02",
		"quantity": float64(quantity),
	}); err != nil {
		t.Fatal(err)
	}
	for _, o := range db.Orders {
		if o.OrderType == entity.TypeTrain {
			return o
		}
	}
	t.Fatal("train order not created")
	return nil
}

func TestCreateTrainOrder_Inventory(t *testing.T) {
	kit, db := newTestToolkit(t)
	order := createTrainOrder(t, kit, db, 2)
	if !strings.HasPrefix(order.OrderID, "OO") {
		t.Errorf("train order id should start with OO, got %q", order.OrderID)
	}
	if order.TotalPrice != 1106.0 {
		t.Errorf("total should be 2*553.0, got %v", order.TotalPrice)
	}
	if db.Trains["T1"].Products[0].Quantity != 8 {
		t.Errorf("creation should decrement inventory to 8, got %d", db.Trains["T1"].Products[0].Quantity)
	}

	out, err := kit.Use("create_train_order", map[string]any{
		"train_id": "T1",
		"seat_id":  "TS1",
		"user_id":  "user_1",
		"date":     "2025-06-02",
		"quantity": float64(100),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Insufficient seat inventory") {
		t.Errorf("overbooking should be refused, got %q", out)
	}
}

func TestModifyTrainOrder_InsufficientSeats(t *testing.T) {
	kit, db := newTestToolkit(t)
	order := createTrainOrder(t, kit, db, 2)
	if _, err := kit.Use("pay_train_order", map[string]any{"order_id": order.OrderID}); err != nil {
		t.Fatal(err)
	}

	// The 2025-06-03 leg has a single seat left; moving two tickets fails
	// and leaves the order untouched.
	out, err := kit.Use("modify_train_order", map[string]any{
		"order_id": order.OrderID,
		"user_id":  "user_1",
		"new_date": "2025-06-03",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Insufficient 二等座 seat inventory for new date 2025-06-03") {
		t.Errorf("expected the inventory message, got %q", out)
	}
	if order.Status != entity.StatusPaid {
		t.Errorf("failed modification must not change status, got %s", order.Status)
	}
	if order.Products[0].Date != "2025-06-02" {
		t.Errorf("failed modification must not move the ticket, got %s", order.Products[0].Date)
	}
}

func TestModifyTrainOrder_RequiresPaid(t *testing.T) {
	kit, db := newTestToolkit(t)
	order := createTrainOrder(t, kit, db, 1)
	out, err := kit.Use("modify_train_order", map[string]any{
		"order_id": order.OrderID,
		"user_id":  "user_1",
		"new_date": "2025-06-03",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Only paid orders can be modified") {
		t.Errorf("unpaid order modification should be refused, got %q", out)
	}
}

func TestCancelTrainOrder_RefundWithoutRestock(t *testing.T) {
	kit, db := newTestToolkit(t)
	order := createTrainOrder(t, kit, db, 2)

	// Cancelling an unpaid order refunds nothing.
	out, err := kit.Use("cancel_train_order", map[string]any{"order_id": order.OrderID, "user_id": "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "refund amount: 0") {
		t.Errorf("unpaid cancel should refund 0, got %q", out)
	}
	// Inventory taken at creation stays taken.
	if db.Trains["T1"].Products[0].Quantity != 8 {
		t.Errorf("cancellation must not re-credit inventory, got %d", db.Trains["T1"].Products[0].Quantity)
	}

	out, err = kit.Use("cancel_train_order", map[string]any{"order_id": order.OrderID, "user_id": "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already cancelled") {
		t.Errorf("repeat cancel should say already cancelled, got %q", out)
	}
}

func TestCancelPaidHotelOrder_Refund(t *testing.T) {
	kit, db := newTestToolkit(t)
	if _, err := kit.Use("create_hotel_order", map[string]any{
		"hotel_id": "H1",
		"room_id":  "R1",
		"user_id":  "user_1",
	}); err != nil {
		t.Fatal(err)
	}
	var order *entity.Order
	for _, o := range db.Orders {
		order = o
	}
	if db.Hotels["H1"].Products[0].Quantity != 0 {
		t.Fatalf("room inventory should hit 0 after booking, got %d", db.Hotels["H1"].Products[0].Quantity)
	}
	if _, err := kit.Use("pay_hotel_order", map[string]any{"order_id": order.OrderID}); err != nil {
		t.Fatal(err)
	}
	out, err := kit.Use("cancel_hotel_order", map[string]any{"order_id": order.OrderID, "user_id": "user_1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "refund amount: 680") {
		t.Errorf("paid cancel should refund the total, got %q", out)
	}
	if db.Hotels["H1"].Products[0].Quantity != 0 {
		t.Errorf("cancellation must not re-credit the room, got %d", db.Hotels["H1"].Products[0].Quantity)
	}
}

func TestCreateHotelOrder_SoldOut(t *testing.T) {
	kit, db := newTestToolkit(t)
	db.Hotels["H1"].Products[0].Quantity = 0
	out, err := kit.Use("create_hotel_order", map[string]any{
		"hotel_id": "H1",
		"room_id":  "R1",
		"user_id":  "user_1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "No available rooms at the moment for room R1" {
		t.Errorf("sold-out room should be refused, got %q", out)
	}
}

func TestTrainTicketSearch(t *testing.T) {
	kit, _ := newTestToolkit(t)
	out, err := kit.Use("train_ticket_search", map[string]any{
		"departure":   "北京",
		"destination": "上海",
		"date":        "2025-06-02",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "G101") {
		t.Errorf("search should find the train, got %q", out)
	}
	out, err = kit.Use("train_ticket_search", map[string]any{
		"departure":   "北京",
		"destination": "上海",
		"date":        "2025-07-01",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "No trains found matching the criteria" {
		t.Errorf("no trains on that date, got %q", out)
	}
}

func TestPayOrder_WrongScene(t *testing.T) {
	kit, db := newTestToolkit(t)
	order := createTrainOrder(t, kit, db, 1)
	out, err := kit.Use("pay_hotel_order", map[string]any{"order_id": order.OrderID})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Order "+order.OrderID+" is not a hotel order" {
		t.Errorf("scene mismatch should be refused, got %q", out)
	}
}
