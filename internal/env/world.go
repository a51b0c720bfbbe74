// Package env is the tool-execution environment: a per-simulation database
// of mutable domain entities reachable through a registered tool catalog.
// Every simulation owns its own World and toolkit; nothing here is shared
// across concurrent simulations.
package env

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/vitabench/vita/internal/entity"
)

// World is the state every domain database embeds: the simulated clock, the
// active user, world context tables and the mutable order book.
type World struct {
	Time                    string                   `json:"time,omitempty"`
	UserID                  string                   `json:"user_id,omitempty"`
	Weather                 []entity.Weather         `json:"weather,omitempty"`
	Location                []entity.Location        `json:"location,omitempty"`
	UserHistoricalBehaviors map[string]any           `json:"user_historical_behaviors,omitempty"`
	Orders                  map[string]*entity.Order `json:"orders,omitempty"`

	// Clock supplies the real wall clock for order-id salting; tests pin it.
	Clock func() time.Time `json:"-"`
}

const timeLayout = "2006-01-02 15:04:05"

// Now returns the simulated time when the task pinned one, otherwise the
// real clock formatted with layout.
func (w *World) Now(layout string) string {
	if w.Time != "" {
		return w.Time
	}
	return w.clock().Format(layout)
}

func (w *World) clock() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now()
}

func (w *World) ensureOrders() {
	if w.Orders == nil {
		w.Orders = make(map[string]*entity.Order)
	}
}

// AddOrder inserts an order, refusing duplicates.
func (w *World) AddOrder(o *entity.Order) string {
	w.ensureOrders()
	if _, ok := w.Orders[o.OrderID]; ok {
		return "Order already exists"
	}
	w.Orders[o.OrderID] = o
	return "done"
}

type orderIDScenario struct {
	prefix   string
	idPrefix string
	params   []string
}

var orderIDScenarios = map[string]orderIDScenario{
	"delivery":            {"#DELIVERY#", "OT", []string{"user_id"}},
	"hotel":               {"#HOTEL#", "OO", []string{"hotel_id", "product_id", "user_id"}},
	"attraction":          {"#ATTRACTION#", "OO", []string{"user_id"}},
	"flight":              {"#FLIGHT#", "OO", []string{"user_id"}},
	"train":               {"#TRAIN#", "OO", []string{"user_id"}},
	"instore":             {"#INSTORE#", "OI", nil},
	"instore_book":        {"#INSTORE_BOOK#", "OI", nil},
	"instore_reservation": {"#INSTORE_RESV#", "OI", nil},
}

// AssignOrderID derives a deterministic order id:
// idPrefix + first ten hex chars of sha256(scenarioPrefix + params + timestamp).
// A missing required parameter is a programmer error, not a tool-level one.
func (w *World) AssignOrderID(scenario, userID string, extra map[string]string) (string, error) {
	cfg, ok := orderIDScenarios[scenario]
	if !ok {
		return "", fmt.Errorf("unsupported scenario type: %s", scenario)
	}
	input := cfg.prefix
	for _, p := range cfg.params {
		if p == "user_id" {
			input += userID
			continue
		}
		v, ok := extra[p]
		if !ok {
			return "", fmt.Errorf("missing required parameter: %s", p)
		}
		input += v
	}
	ts := float64(w.clock().UnixNano()) / 1e9
	input += strconv.FormatFloat(ts, 'f', -1, 64)
	return cfg.idPrefix + HashString(input)[:10], nil
}

// SortedOrderIDs orders an order book by creation time then id, so order
// listings are stable across runs.
func SortedOrderIDs(orders map[string]*entity.Order) []string {
	ids := make([]string, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := orders[ids[i]], orders[ids[j]]
		if a.CreateTime != b.CreateTime {
			return a.CreateTime < b.CreateTime
		}
		return a.OrderID < b.OrderID
	})
	return ids
}

// HashString returns the hex sha256 of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CanonicalHash hashes any JSON-serializable value with object keys in
// sorted order, so logically equal databases hash equal.
func CanonicalHash(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return "", fmt.Errorf("hash round-trip: %w", err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("hash canonical marshal: %w", err)
	}
	return HashString(string(canonical)), nil
}

// CheckTimeFormat reports whether value parses with the given layout.
func CheckTimeFormat(value, layout string) bool {
	_, err := time.Parse(layout, value)
	return err == nil
}

// CheckDateFormat reports whether value is a yyyy-mm-dd date.
func CheckDateFormat(value string) bool {
	return CheckTimeFormat(value, "2006-01-02")
}

// ParseTime parses a "yyyy-mm-dd HH:MM:SS" timestamp.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

// FormatTime renders t with the conversational timestamp layout.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}
