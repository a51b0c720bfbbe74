package delivery

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/fuzzy"
	"github.com/vitabench/vita/internal/lang"
)

const topK = 50

// Toolkit is the delivery-domain toolkit bound to one private DB.
type Toolkit struct {
	*env.Kit
	db *DB
}

// New builds the delivery toolkit over a fresh database.
func New(db *DB, language lang.Language) *Toolkit {
	t := &Toolkit{db: db}
	t.Kit = env.NewKit("delivery", language, db.World, db, t.nearbyTargets, t.catalogLocations)
	t.registerTools()
	return t
}

// Statistics merges catalog sizes into the base toolkit statistics.
func (t *Toolkit) Statistics() map[string]any {
	stats := t.Kit.Statistics()
	for k, v := range t.db.Statistics() {
		stats[k] = v
	}
	return stats
}

func (t *Toolkit) nearbyTargets() []env.NearbyTarget {
	var targets []env.NearbyTarget
	for _, id := range t.db.sortedStoreIDs() {
		store := t.db.Stores[id]
		targets = append(targets, env.NearbyTarget{Primary: store.Location, Repr: store.Str()})
	}
	return targets
}

func (t *Toolkit) catalogLocations() []entity.Location {
	var locs []entity.Location
	for _, id := range t.db.sortedStoreIDs() {
		locs = append(locs, t.db.Stores[id].Location)
	}
	return locs
}

func (t *Toolkit) checkUser(userID string) bool {
	return userID == t.db.UserID
}

func (t *Toolkit) getStore(storeID string) (*Store, error) {
	store, ok := t.db.Stores[storeID]
	if !ok {
		return nil, fmt.Errorf("Store %s not found", storeID)
	}
	return store, nil
}

func (t *Toolkit) getProduct(productID string) (*StoreProduct, error) {
	for _, id := range t.db.sortedStoreIDs() {
		for _, p := range t.db.Stores[id].Products {
			if p.ProductID == productID {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%s not found", productID)
}

func (t *Toolkit) getOrder(orderID string) (*entity.Order, error) {
	order, ok := t.db.Orders[orderID]
	if !ok {
		return nil, fmt.Errorf("Order %s not found", orderID)
	}
	if order.OrderType != entity.TypeDelivery {
		return nil, fmt.Errorf("Order %s is not a delivery order", orderID)
	}
	return order, nil
}

// DistanceToTime converts a delivery distance in metres to minutes. The
// constants are part of the scenario contract.
func DistanceToTime(distance float64) float64 {
	return math.Round(25.00 + float64(int(distance))*0.006510)
}

func (t *Toolkit) registerTools() {
	t.Register(&env.Tool{
		Name:   "delivery_distance_to_time",
		Type:   env.ToolGeneric,
		Params: []env.Param{{Name: "distance", Type: "number"}},
		Fn: func(args map[string]any) (string, error) {
			distance, ok := env.Float(args, "distance")
			if !ok {
				return "", env.Preconditionf("distance value type should be float or int")
			}
			return fmt.Sprintf("%v", DistanceToTime(distance)), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_delivery_store_info",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "store_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			storeID, _ := env.String(args, "store_id")
			if storeID == "" {
				return "", env.Preconditionf("Store ID cannot be empty")
			}
			store, err := t.getStore(storeID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return store.Repr(), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_delivery_product_info",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "product_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			productID, _ := env.String(args, "product_id")
			if productID == "" {
				return "", env.Preconditionf("Product ID cannot be empty")
			}
			product, err := t.getProduct(productID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return product.Repr(), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "delivery_store_search_recommend",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "keywords", Type: "array", Items: "string"}},
		Fn:     t.storeSearch,
	})

	t.Register(&env.Tool{
		Name:   "delivery_product_search_recommend",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "keywords", Type: "array", Items: "string"}},
		Fn:     t.productSearch,
	})

	t.Register(&env.Tool{
		Name: "create_delivery_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "store_id", Type: "string"},
			{Name: "product_ids", Type: "array", Items: "string"},
			{Name: "product_cnts", Type: "array", Items: "integer"},
			{Name: "address", Type: "string"},
			{Name: "dispatch_time", Type: "string"},
			{Name: "attributes", Type: "array", Items: "string", Optional: true},
			{Name: "note", Type: "string", Optional: true},
		},
		Fn: t.createOrder,
	})

	t.Register(&env.Tool{
		Name:   "pay_delivery_order",
		Type:   env.ToolWrite,
		Params: []env.Param{{Name: "order_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			orderID, _ := env.String(args, "order_id")
			if orderID == "" {
				return "", env.Preconditionf("Order ID cannot be empty")
			}
			order, err := t.getOrder(orderID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if order.Status != entity.StatusUnpaid {
				return fmt.Sprintf("Order %s is not in `unpaid` status. Current status: %s", orderID, order.Status), nil
			}
			order.Status = entity.StatusPaid
			order.UpdateTime = t.World().Now("2006-01-02 15:04:05")
			return "Payment successful", nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_delivery_order_status",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "order_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			orderID, _ := env.String(args, "order_id")
			if orderID == "" {
				return "", env.Preconditionf("Order ID cannot be empty")
			}
			order, err := t.getOrder(orderID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return fmt.Sprintf("Order %s status: %s", orderID, order.Status), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "cancel_delivery_order",
		Type:   env.ToolWrite,
		Params: []env.Param{{Name: "order_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			orderID, _ := env.String(args, "order_id")
			if orderID == "" {
				return "", env.Preconditionf("Order ID cannot be empty")
			}
			order, err := t.getOrder(orderID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if order.Status == entity.StatusCancelled {
				return fmt.Sprintf("Order %s is already cancelled", orderID), nil
			}
			order.Status = entity.StatusCancelled
			order.UpdateTime = t.World().Now("2006-01-02 15:04:05")
			return fmt.Sprintf("Order %s has been cancelled.", order.OrderID), nil
		},
	})

	t.Register(&env.Tool{
		Name: "modify_delivery_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "order_id", Type: "string"},
			{Name: "note", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			orderID, _ := env.String(args, "order_id")
			if orderID == "" {
				return "", env.Preconditionf("Order ID cannot be empty")
			}
			note, ok := env.String(args, "note")
			if !ok {
				return "", env.Preconditionf("Note cannot be None (use empty string to clear note)")
			}
			order, err := t.getOrder(orderID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if order.Status == entity.StatusCancelled {
				return fmt.Sprintf("Cannot modify order %s as it is already cancelled", orderID), nil
			}
			order.Note = note
			order.UpdateTime = t.World().Now("2006-01-02 15:04:05")
			return fmt.Sprintf("Order %s has been modified.", order.OrderID), nil
		},
	})

	t.Register(&env.Tool{
		Name: "search_delivery_orders",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "status", Type: "string", Optional: true},
		},
		Fn: func(args map[string]any) (string, error) {
			userID, _ := env.String(args, "user_id")
			if userID == "" {
				return "", env.Preconditionf("User ID cannot be empty")
			}
			if !t.checkUser(userID) {
				return "", env.Preconditionf("User ID does not match")
			}
			status := entity.StatusUnpaid
			if s, ok := env.String(args, "status"); ok && s != "" {
				status = entity.OrderStatus(s)
			}
			var reprs []string
			for _, id := range env.SortedOrderIDs(t.db.Orders) {
				order := t.db.Orders[id]
				if order.OrderType == entity.TypeDelivery && order.Status == status && order.UserID == userID {
					reprs = append(reprs, order.Str())
				}
			}
			if len(reprs) == 0 {
				return "No delivery orders available", nil
			}
			return strings.Join(reprs, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_delivery_order_detail",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "order_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			orderID, _ := env.String(args, "order_id")
			if orderID == "" {
				return "", env.Preconditionf("Order ID cannot be empty")
			}
			order, err := t.getOrder(orderID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return order.Repr(), nil
		},
	})
}

func (t *Toolkit) storeSearch(args map[string]any) (string, error) {
	keywords, err := keywordList(args)
	if err != nil {
		return "", err
	}
	if len(t.db.Stores) == 0 {
		return "No stores available", nil
	}
	var candidates []fuzzy.Candidate
	for _, id := range t.db.sortedStoreIDs() {
		store := t.db.Stores[id]
		candidates = append(candidates, fuzzy.Candidate{ID: id, Text: store.Name + strings.Join(store.Tags, ",")})
	}
	ranked := fuzzy.Rerank(strings.Join(keywords, ""), candidates)
	var found []string
	for i, r := range ranked {
		if i >= topK {
			break
		}
		if store, ok := t.db.Stores[r.ID]; ok {
			found = append(found, store.Str())
		}
	}
	if len(found) == 0 {
		return "No stores found matching the keywords", nil
	}
	return strings.Join(found, "\n"), nil
}

func (t *Toolkit) productSearch(args map[string]any) (string, error) {
	keywords, err := keywordList(args)
	if err != nil {
		return "", err
	}
	var candidates []fuzzy.Candidate
	products := map[string]*StoreProduct{}
	for _, id := range t.db.sortedStoreIDs() {
		for _, p := range t.db.Stores[id].Products {
			if _, dup := products[p.ProductID]; dup {
				continue
			}
			products[p.ProductID] = p
			candidates = append(candidates, fuzzy.Candidate{
				ID:   p.ProductID,
				Text: fmt.Sprintf("%s %s %v", p.StoreName, p.Name, p.Tags),
			})
		}
	}
	if len(candidates) == 0 {
		return "No products available", nil
	}
	ranked := fuzzy.Rerank(strings.Join(keywords, ""), candidates)
	var found []string
	for i, r := range ranked {
		if i >= topK {
			break
		}
		found = append(found, products[r.ID].Repr())
	}
	if len(found) == 0 {
		return "No products found matching the keywords", nil
	}
	return strings.Join(found, "\n"), nil
}

func (t *Toolkit) createOrder(args map[string]any) (string, error) {
	userID, _ := env.String(args, "user_id")
	if userID == "" {
		return "", env.Preconditionf("User ID cannot be empty")
	}
	if !t.checkUser(userID) {
		return "", env.Preconditionf("User ID does not match")
	}
	storeID, _ := env.String(args, "store_id")
	if _, ok := t.db.Stores[storeID]; !ok {
		return "", env.Preconditionf("Store %s not found", storeID)
	}
	productIDs, _ := env.StringList(args, "product_ids")
	products := make([]*StoreProduct, len(productIDs))
	for i, pid := range productIDs {
		p, err := t.getProduct(pid)
		if err != nil {
			return "", env.Preconditionf("products %v not found", productIDs)
		}
		products[i] = p
	}
	address, _ := env.String(args, "address")
	if address == "" {
		return "", env.Preconditionf("Location %s is empty", address)
	}
	counts, _ := env.IntList(args, "product_cnts")
	if len(counts) != len(productIDs) {
		return "", env.Preconditionf("product_cnts %v list is invalid", counts)
	}
	for _, c := range counts {
		if c <= 0 {
			return "", env.Preconditionf("product_cnts %v list is invalid", counts)
		}
	}
	dispatchTime, _ := env.String(args, "dispatch_time")
	if dispatchTime == "" || !env.CheckTimeFormat(dispatchTime, "2006-01-02 15:04:05") {
		return "", env.Preconditionf("dispatch_time %s time format is invalid, yyyy-mm-dd HH:MM:SS required", dispatchTime)
	}
	now := t.World().Now("2006-01-02 15:04:05")
	dispatch, _ := env.ParseTime(dispatchTime)
	nowTime, err := env.ParseTime(now)
	if err == nil && dispatch.Before(nowTime) {
		return "", env.Preconditionf("dispatch_time %s must be in the future", dispatchTime)
	}

	store := t.db.Stores[storeID]
	lon, lat, err := t.Geocode(address)
	if err != nil {
		return "", err
	}
	distance := env.Haversine(lon, lat, store.Location.Longitude, store.Location.Latitude)
	shippingTime := DistanceToTime(distance)
	deliveryTime := env.FormatTime(dispatch.Add(time.Duration(shippingTime) * time.Minute))

	var total float64
	for i, p := range products {
		total += p.Price * float64(counts[i])
	}

	attributes, _ := env.StringList(args, "attributes")
	lines := make([]entity.OrderLine, len(products))
	for i, p := range products {
		attr := ""
		if i < len(attributes) {
			attr = attributes[i]
		}
		lines[i] = entity.OrderLine{
			Kind:       entity.LineStoreProduct,
			ProductID:  p.ProductID,
			Name:       p.Name,
			StoreID:    p.StoreID,
			StoreName:  p.StoreName,
			Price:      p.Price,
			Quantity:   counts[i],
			Attributes: attr,
			Tags:       p.Tags,
		}
	}

	note, _ := env.String(args, "note")
	orderID, err := t.World().AssignOrderID("delivery", userID, nil)
	if err != nil {
		return "", err
	}
	order := &entity.Order{
		OrderID:      orderID,
		OrderType:    entity.TypeDelivery,
		UserID:       userID,
		StoreID:      storeID,
		Location:     &entity.Location{Address: address, Longitude: lon, Latitude: lat},
		DispatchTime: dispatchTime,
		ShippingTime: shippingTime,
		DeliveryTime: deliveryTime,
		TotalPrice:   total,
		CreateTime:   now,
		UpdateTime:   now,
		Note:         note,
		Products:     lines,
		Status:       entity.StatusUnpaid,
	}
	if resp := t.World().AddOrder(order); resp != "done" {
		return resp, nil
	}
	return order.Repr(), nil
}

func keywordList(args map[string]any) ([]string, error) {
	keywords, ok := env.StringList(args, "keywords")
	if !ok || len(keywords) == 0 {
		return nil, env.Preconditionf("Keywords cannot be empty")
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return nil, env.Preconditionf("All keywords must be non-empty strings")
		}
	}
	return keywords, nil
}

