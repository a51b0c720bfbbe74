package registry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/message"
)

const crossEnvBlob = `{
  "time": "2025-06-01 12:00:00",
  "user_id": "user_1",
  "stores": {
    "S1": {
      "store_id": "S1",
      "name": "面馆",
      "score": 4.5,
      "location": {"address": "路1号", "longitude": 116.4, "latitude": 39.9},
      "tags": ["面"],
      "products": []
    }
  },
  "shops": {
    "SH1": {
      "shop_id": "SH1",
      "shop_name": "理发店",
      "score": 4.0,
      "location": {"address": "路2号", "longitude": 116.5, "latitude": 39.8},
      "tags": ["美发"],
      "enable_book": true,
      "book_price": 0,
      "enable_reservation": true,
      "products": []
    }
  },
  "hotels": {},
  "attractions": {},
  "flights": {},
  "trains": {}
}`

func TestDefault_Registrations(t *testing.T) {
	r := Default()
	for _, name := range []string{"llm_agent", "llm_solo_agent"} {
		if _, err := r.Agent(name); err != nil {
			t.Errorf("agent %s should be registered: %v", name, err)
		}
	}
	for _, name := range []string{"user_simulator", "dummy_user"} {
		if _, err := r.User(name); err != nil {
			t.Errorf("user %s should be registered: %v", name, err)
		}
	}
	for _, name := range []string{"delivery", "instore", "ota", "cross_domain"} {
		if _, err := r.Domain(name); err != nil {
			t.Errorf("domain %s should be registered: %v", name, err)
		}
		if _, err := r.Tasks(name); err != nil {
			t.Errorf("task set %s should be registered: %v", name, err)
		}
	}
	if _, err := r.Domain("bogus"); err == nil {
		t.Error("unknown domain lookup must error")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	if err := r.RegisterDomain("x", nil); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterDomain("x", nil); err == nil {
		t.Error("duplicate registration must error")
	}
}

func TestCrossDomainEnvironment(t *testing.T) {
	r := Default()
	factory, err := r.Domain("cross_domain")
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	environment, err := factory(json.RawMessage(crossEnvBlob), lang.Chinese, func() time.Time { return fixed })
	if err != nil {
		t.Fatal(err)
	}
	if environment.DomainName() != "delivery+instore+ota" {
		t.Errorf("unexpected composite name %q", environment.DomainName())
	}

	// Dispatch routes by owning toolkit.
	out := environment.Call(message.ToolCall{ID: "c1", Name: "delivery_store_search_recommend",
		Arguments: map[string]any{"keywords": []any{"面"}}})
	if out.Error || !strings.Contains(out.Content, "面馆") {
		t.Errorf("delivery dispatch failed: %+v", out)
	}
	out = environment.Call(message.ToolCall{ID: "c2", Name: "instore_shop_search_recommend",
		Arguments: map[string]any{"keywords": []any{"美发"}}})
	if out.Error || !strings.Contains(out.Content, "理发店") {
		t.Errorf("instore dispatch failed: %+v", out)
	}
	out = environment.Call(message.ToolCall{ID: "c3", Name: "no_such_tool", Arguments: map[string]any{}})
	if !out.Error || out.Content != "Tool 'no_such_tool' not found" {
		t.Errorf("unknown tool dispatch failed: %+v", out)
	}

	// Orders created through one domain's toolkit are visible to the
	// shared generic tools of another (one world).
	out = environment.Call(message.ToolCall{ID: "c4", Name: "instore_book", Arguments: map[string]any{
		"user_id": "user_1", "shop_id": "SH1", "time": "2025-06-02 19:00:00",
	}})
	if out.Error {
		t.Fatalf("booking failed: %+v", out)
	}
	if _, err := environment.Hash(); err != nil {
		t.Fatalf("composite hash failed: %v", err)
	}
	dump, err := environment.Dump()
	if err != nil {
		t.Fatal(err)
	}
	var merged map[string]any
	if err := json.Unmarshal(dump, &merged); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"stores", "shops", "hotels", "books"} {
		if _, ok := merged[key]; !ok {
			t.Errorf("merged dump missing %q", key)
		}
	}
}

func TestCrossDomain_SharedOrders(t *testing.T) {
	r := Default()
	factory, _ := r.Domain("cross_domain")
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	environment, err := factory(json.RawMessage(crossEnvBlob), lang.Chinese, func() time.Time { return fixed })
	if err != nil {
		t.Fatal(err)
	}
	// No orders yet: every kit's view of the shared order book agrees.
	for _, call := range []string{"get_user_all_orders"} {
		out := environment.Call(message.ToolCall{ID: "c", Name: call, Arguments: map[string]any{}})
		if out.Content != "User currently has no order information" {
			t.Errorf("%s: %q", call, out.Content)
		}
	}
}
