package delivery

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
			Location: []entity.Location{
				{Address: "幸福路1号", Longitude: 116.40, Latitude: 39.90},
			},
			Orders: map[string]*entity.Order{},
		},
		Stores: map[string]*Store{
			"S1": {
				StoreID:  "S1",
				Name:     "川味小馆",
				Score:    4.6,
				Location: entity.Location{Address: "幸福路2号", Longitude: 116.41, Latitude: 39.91},
				Tags:     []string{"川菜", "辣"},
				Products: []*StoreProduct{
					{ProductID: "P1", Price: 28.0, Quantity: 100, Name: "麻婆豆腐", StoreID: "S1", StoreName: "川味小馆", Tags: []string{"豆腐"}},
					{ProductID: "P2", Price: 36.0, Quantity: 100, Name: "回锅肉", StoreID: "S1", StoreName: "川味小馆", Tags: []string{"猪肉"}},
				},
			},
		},
	}
	return New(db, lang.Chinese), db
}

func createOrderArgs() map[string]any {
	return map[string]any{
		"user_id":       "user_1",
		"store_id":      "S1",
		"product_ids":   []any{"P1"},
		"product_cnts":  []any{float64(2)},
		"address":       "幸福路1号",
		"dispatch_time": "2025-06-01 13:00:00",
	}
}

func TestCreateDeliveryOrder(t *testing.T) {
	kit, db := newTestToolkit(t)
	out, err := kit.Use("create_delivery_order", createOrderArgs())
	if err != nil {
		t.Fatal(err)
	}
	if len(db.Orders) != 1 {
		t.Fatalf("expected one order, got %d", len(db.Orders))
	}
	var order *entity.Order
	for _, o := range db.Orders {
		order = o
	}
	if !strings.HasPrefix(order.OrderID, "OT") {
		t.Errorf("delivery order id should start with OT, got %q", order.OrderID)
	}
	if order.Status != entity.StatusUnpaid {
		t.Errorf("new order should be unpaid, got %s", order.Status)
	}
	if order.TotalPrice != 56.0 {
		t.Errorf("total should be 2*28.0, got %v", order.TotalPrice)
	}
	if !strings.Contains(out, order.OrderID) {
		t.Errorf("tool output should surface the order, got %q", out)
	}

	// Re-running the identical call collides on the deterministic id.
	out, err = kit.Use("create_delivery_order", createOrderArgs())
	if err != nil {
		t.Fatal(err)
	}
	if out != "Order already exists" {
		t.Errorf("duplicate creation should be refused, got %q", out)
	}
}

func TestCreateDeliveryOrder_Preconditions(t *testing.T) {
	kit, _ := newTestToolkit(t)

	args := createOrderArgs()
	args["user_id"] = "someone_else"
	out, err := kit.Use("create_delivery_order", args)
	if err != nil {
		t.Fatal(err)
	}
	if out != "User ID does not match" {
		t.Errorf("wrong user should be refused, got %q", out)
	}

	args = createOrderArgs()
	args["dispatch_time"] = "2025-06-01 11:00:00"
	out, err = kit.Use("create_delivery_order", args)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "must be in the future") {
		t.Errorf("past dispatch time should be refused, got %q", out)
	}

	args = createOrderArgs()
	args["product_cnts"] = []any{float64(0)}
	out, err = kit.Use("create_delivery_order", args)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "list is invalid") {
		t.Errorf("non-positive counts should be refused, got %q", out)
	}
}

func TestPayDeliveryOrder_Idempotence(t *testing.T) {
	kit, db := newTestToolkit(t)
	if _, err := kit.Use("create_delivery_order", createOrderArgs()); err != nil {
		t.Fatal(err)
	}
	var orderID string
	for id := range db.Orders {
		orderID = id
	}
	out, err := kit.Use("pay_delivery_order", map[string]any{"order_id": orderID})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Payment successful" {
		t.Errorf("first payment should succeed, got %q", out)
	}
	out, err = kit.Use("pay_delivery_order", map[string]any{"order_id": orderID})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "is not in `unpaid` status") {
		t.Errorf("second payment should be a descriptive no-op, got %q", out)
	}
	if db.Orders[orderID].Status != entity.StatusPaid {
		t.Errorf("order should remain paid, got %s", db.Orders[orderID].Status)
	}
}

func TestCancelDeliveryOrder_Terminal(t *testing.T) {
	kit, db := newTestToolkit(t)
	if _, err := kit.Use("create_delivery_order", createOrderArgs()); err != nil {
		t.Fatal(err)
	}
	var orderID string
	for id := range db.Orders {
		orderID = id
	}
	if _, err := kit.Use("cancel_delivery_order", map[string]any{"order_id": orderID}); err != nil {
		t.Fatal(err)
	}
	if db.Orders[orderID].Status != entity.StatusCancelled {
		t.Fatalf("order should be cancelled, got %s", db.Orders[orderID].Status)
	}
	out, err := kit.Use("cancel_delivery_order", map[string]any{"order_id": orderID})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already cancelled") {
		t.Errorf("repeat cancel should say already cancelled, got %q", out)
	}

	out, err = kit.Use("modify_delivery_order", map[string]any{"order_id": orderID, "note": "少辣"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already cancelled") {
		t.Errorf("modifying a cancelled order should be refused, got %q", out)
	}
}

func TestDeliveryStoreSearch(t *testing.T) {
	kit, _ := newTestToolkit(t)
	out, err := kit.Use("delivery_store_search_recommend", map[string]any{"keywords": []any{"川菜"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "川味小馆") {
		t.Errorf("search should surface the store, got %q", out)
	}
}

func TestDistanceToTime(t *testing.T) {
	if got := DistanceToTime(0); got != 25 {
		t.Errorf("zero distance should cost the 25-minute base, got %v", got)
	}
	if got := DistanceToTime(1000); got != 32 {
		t.Errorf("1km should round to 32 minutes, got %v", got)
	}
}
