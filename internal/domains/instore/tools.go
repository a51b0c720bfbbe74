package instore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/env"
	"github.com/vitabench/vita/internal/fuzzy"
	"github.com/vitabench/vita/internal/lang"
)

const (
	topK       = 50
	timeLayout = "2006-01-02 15:04:05"
)

// Toolkit is the in-store-domain toolkit bound to one private DB.
type Toolkit struct {
	*env.Kit
	db *DB
}

// New builds the in-store toolkit over a fresh database.
func New(db *DB, language lang.Language) *Toolkit {
	t := &Toolkit{db: db}
	t.Kit = env.NewKit("instore", language, db.World, db, t.nearbyTargets, t.catalogLocations)
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
	for _, id := range t.db.sortedShopIDs() {
		shop := t.db.Shops[id]
		targets = append(targets, env.NearbyTarget{Primary: shop.Location, Repr: shop.Str()})
	}
	return targets
}

func (t *Toolkit) catalogLocations() []entity.Location {
	var locs []entity.Location
	for _, id := range t.db.sortedShopIDs() {
		locs = append(locs, t.db.Shops[id].Location)
	}
	return locs
}

func (t *Toolkit) checkUser(userID string) bool {
	return userID == t.db.UserID
}

func (t *Toolkit) getShop(shopID string) (*Shop, error) {
	shop, ok := t.db.Shops[shopID]
	if !ok {
		return nil, fmt.Errorf("Shop %s does not exist", shopID)
	}
	return shop, nil
}

func (t *Toolkit) getProduct(productID string) (*ShopProduct, error) {
	for _, id := range t.db.sortedShopIDs() {
		for _, p := range t.db.Shops[id].Products {
			if p.ProductID == productID {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("Product %s does not exist", productID)
}

func (t *Toolkit) getOrder(orderID string) (*entity.Order, error) {
	order, ok := t.db.Orders[orderID]
	if !ok {
		return nil, fmt.Errorf("Order %s not found", orderID)
	}
	if order.OrderType != entity.TypeInstore {
		return nil, fmt.Errorf("Order %s is not an instore order", orderID)
	}
	return order, nil
}

func (t *Toolkit) getBook(bookID string) (*BookInfo, error) {
	book, ok := t.db.Books[bookID]
	if !ok {
		return nil, fmt.Errorf("BookInfo %s not found", bookID)
	}
	return book, nil
}

func (t *Toolkit) getReservation(reservationID string) (*ReservationInfo, error) {
	r, ok := t.db.Reservations[reservationID]
	if !ok {
		return nil, fmt.Errorf("ReservationInfo %s not found", reservationID)
	}
	return r, nil
}

func (t *Toolkit) now() string { return t.World().Now(timeLayout) }

func (t *Toolkit) registerTools() {
	t.Register(&env.Tool{
		Name:   "instore_shop_search_recommend",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "keywords", Type: "array", Items: "string"}},
		Fn:     t.shopSearch,
	})

	t.Register(&env.Tool{
		Name:   "instore_product_search_recommend",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "keywords", Type: "array", Items: "string"}},
		Fn:     t.productSearch,
	})

	t.Register(&env.Tool{
		Name: "create_instore_product_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "shop_id", Type: "string"},
			{Name: "product_id", Type: "string"},
			{Name: "quantity", Type: "integer", Optional: true},
		},
		Fn: t.createProductOrder,
	})

	t.Register(&env.Tool{
		Name:   "pay_instore_order",
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
			order.UpdateTime = t.now()
			return "Payment successful", nil
		},
	})

	t.Register(&env.Tool{
		Name:   "instore_cancel_order",
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
				return fmt.Sprintf("Order %s is already cancelled.", order.OrderID), nil
			}
			order.Status = entity.StatusCancelled
			order.UpdateTime = t.now()
			return fmt.Sprintf("Order %s is cancelled.", order.OrderID), nil
		},
	})

	t.Register(&env.Tool{
		Name: "instore_book",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "shop_id", Type: "string"},
			{Name: "time", Type: "string"},
			{Name: "customer_count", Type: "integer", Optional: true},
		},
		Fn: t.book,
	})

	t.Register(&env.Tool{
		Name:   "pay_instore_book",
		Type:   env.ToolWrite,
		Params: []env.Param{{Name: "book_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			bookID, _ := env.String(args, "book_id")
			if bookID == "" {
				return "", env.Preconditionf("Booking ID cannot be empty")
			}
			book, err := t.getBook(bookID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if book.Status != entity.StatusUnpaid {
				return fmt.Sprintf("BookInfo %s is not in `unpaid` status. Current status: %s", book.BookID, book.Status), nil
			}
			book.Status = entity.StatusPaid
			book.UpdateTime = t.now()
			return "Payment successful", nil
		},
	})

	t.Register(&env.Tool{
		Name:   "instore_cancel_book",
		Type:   env.ToolWrite,
		Params: []env.Param{{Name: "book_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			bookID, _ := env.String(args, "book_id")
			if bookID == "" {
				return "", env.Preconditionf("Booking ID cannot be empty")
			}
			book, err := t.getBook(bookID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if book.Status == entity.StatusCancelled {
				return fmt.Sprintf("BookInfo %s is already cancelled.", book.BookID), nil
			}
			book.Status = entity.StatusCancelled
			book.UpdateTime = t.now()
			return fmt.Sprintf("BookInfo %s is cancelled.", book.BookID), nil
		},
	})

	t.Register(&env.Tool{
		Name: "instore_reservation",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "shop_id", Type: "string"},
			{Name: "time", Type: "string"},
			{Name: "customer_count", Type: "integer", Optional: true},
		},
		Fn: t.reserve,
	})

	t.Register(&env.Tool{
		Name: "instore_modify_reservation",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "reservation_id", Type: "string"},
			{Name: "time", Type: "string"},
			{Name: "customer_count", Type: "integer", Optional: true},
		},
		Fn: t.modifyReservation,
	})

	t.Register(&env.Tool{
		Name:   "instore_cancel_reservation",
		Type:   env.ToolWrite,
		Params: []env.Param{{Name: "reservation_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			reservationID, _ := env.String(args, "reservation_id")
			if reservationID == "" {
				return "", env.Preconditionf("Reservation ID cannot be empty")
			}
			r, err := t.getReservation(reservationID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if r.Status == entity.StatusCancelled {
				return fmt.Sprintf("ReservationInfo %s is already cancelled.", r.ReservationID), nil
			}
			r.Status = entity.StatusCancelled
			r.UpdateTime = t.now()
			return fmt.Sprintf("ReservationInfo %s is cancelled.", r.ReservationID), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_instore_orders",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "user_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			userID, err := t.matchedUser(args)
			if err != nil {
				return "", err
			}
			var reprs []string
			for _, id := range env.SortedOrderIDs(t.db.Orders) {
				order := t.db.Orders[id]
				if order.OrderType == entity.TypeInstore && order.UserID == userID {
					reprs = append(reprs, order.Repr())
				}
			}
			if len(reprs) == 0 {
				return fmt.Sprintf("User %s has no order information.", userID), nil
			}
			return strings.Join(reprs, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_instore_reservations",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "user_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			userID, err := t.matchedUser(args)
			if err != nil {
				return "", err
			}
			reprs := t.userReservations(userID)
			if len(reprs) == 0 {
				return fmt.Sprintf("User %s has no reservation information.", userID), nil
			}
			return strings.Join(reprs, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name:   "get_instore_books",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "user_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			userID, err := t.matchedUser(args)
			if err != nil {
				return "", err
			}
			reprs := t.userBooks(userID)
			if len(reprs) == 0 {
				return fmt.Sprintf("User %s has no book information.", userID), nil
			}
			return strings.Join(reprs, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name: "search_instore_book",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "book_id", Type: "string", Optional: true},
		},
		Fn: func(args map[string]any) (string, error) {
			userID, err := t.matchedUser(args)
			if err != nil {
				return "", err
			}
			bookID, ok := env.String(args, "book_id")
			if !ok || bookID == "" {
				reprs := t.userBooks(userID)
				if len(reprs) == 0 {
					return fmt.Sprintf("User %s has no book information.", userID), nil
				}
				return strings.Join(reprs, "\n"), nil
			}
			book, err := t.getBook(bookID)
			if err != nil {
				return "", err
			}
			if book.CustomerID != userID {
				return fmt.Sprintf("BookInfo %s is not belong to user %s.", bookID, userID), nil
			}
			return book.Repr(), nil
		},
	})

	t.Register(&env.Tool{
		Name: "search_instore_reservation",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "reservation_id", Type: "string", Optional: true},
		},
		Fn: func(args map[string]any) (string, error) {
			userID, err := t.matchedUser(args)
			if err != nil {
				return "", err
			}
			reservationID, ok := env.String(args, "reservation_id")
			if !ok || reservationID == "" {
				reprs := t.userReservations(userID)
				if len(reprs) == 0 {
					return fmt.Sprintf("User %s has no reservation information.", userID), nil
				}
				return strings.Join(reprs, "\n"), nil
			}
			r, err := t.getReservation(reservationID)
			if err != nil {
				return "", err
			}
			if r.CustomerID != userID {
				return fmt.Sprintf("ReservationInfo %s is not belong to user %s.", reservationID, userID), nil
			}
			return r.Repr(), nil
		},
	})
}

func (t *Toolkit) matchedUser(args map[string]any) (string, error) {
	userID, _ := env.String(args, "user_id")
	if userID == "" {
		return "", env.Preconditionf("User ID cannot be empty")
	}
	if !t.checkUser(userID) {
		return "", env.Preconditionf("User ID does not match")
	}
	return userID, nil
}

func (t *Toolkit) userBooks(userID string) []string {
	ids := make([]string, 0, len(t.db.Books))
	for id := range t.db.Books {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var reprs []string
	for _, id := range ids {
		if b := t.db.Books[id]; b.CustomerID == userID {
			reprs = append(reprs, b.Repr())
		}
	}
	return reprs
}

func (t *Toolkit) userReservations(userID string) []string {
	ids := make([]string, 0, len(t.db.Reservations))
	for id := range t.db.Reservations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var reprs []string
	for _, id := range ids {
		if r := t.db.Reservations[id]; r.CustomerID == userID {
			reprs = append(reprs, r.Repr())
		}
	}
	return reprs
}

func (t *Toolkit) shopSearch(args map[string]any) (string, error) {
	keywords, err := keywordList(args)
	if err != nil {
		return "", err
	}
	if len(t.db.Shops) == 0 {
		return "No shops available", nil
	}
	var candidates []fuzzy.Candidate
	for _, id := range t.db.sortedShopIDs() {
		shop := t.db.Shops[id]
		candidates = append(candidates, fuzzy.Candidate{ID: id, Text: shop.ShopName + "," + strings.Join(shop.Tags, ",")})
	}
	ranked := fuzzy.Rerank(strings.Join(keywords, ""), candidates)
	var found []string
	for i, r := range ranked {
		if i >= topK {
			break
		}
		if shop, ok := t.db.Shops[r.ID]; ok {
			found = append(found, shop.Str())
		}
	}
	if len(found) == 0 {
		return "No shops found matching the keywords", nil
	}
	return strings.Join(found, "\n"), nil
}

func (t *Toolkit) productSearch(args map[string]any) (string, error) {
	keywords, err := keywordList(args)
	if err != nil {
		return "", err
	}
	var candidates []fuzzy.Candidate
	products := map[string]*ShopProduct{}
	for _, id := range t.db.sortedShopIDs() {
		for _, p := range t.db.Shops[id].Products {
			if _, dup := products[p.ProductID]; dup {
				continue
			}
			products[p.ProductID] = p
			candidates = append(candidates, fuzzy.Candidate{ID: p.ProductID, Text: p.Name + "," + strings.Join(p.Tags, ",")})
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

func (t *Toolkit) createProductOrder(args map[string]any) (string, error) {
	userID, err := t.matchedUser(args)
	if err != nil {
		return "", err
	}
	shopID, _ := env.String(args, "shop_id")
	if shopID == "" {
		return "", env.Preconditionf("Shop ID cannot be empty")
	}
	productID, _ := env.String(args, "product_id")
	if productID == "" {
		return "", env.Preconditionf("Product ID cannot be empty")
	}
	quantity := 1
	if _, present := args["quantity"]; present {
		q, ok := env.Int(args, "quantity")
		if !ok {
			return "", env.Preconditionf("Quantity must be an integer")
		}
		quantity = q
	}
	if quantity <= 0 {
		return "", env.Preconditionf("Quantity must be greater than 0")
	}
	shop, err := t.getShop(shopID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	inShop := false
	for _, p := range shop.Products {
		if p.ProductID == productID {
			inShop = true
			break
		}
	}
	if !inShop {
		return fmt.Sprintf("Product %s does not exist in shop %s", productID, shopID), nil
	}
	product, err := t.getProduct(productID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	orderID, err := t.World().AssignOrderID("instore", userID, nil)
	if err != nil {
		return "", err
	}
	now := t.now()
	order := &entity.Order{
		OrderID:    orderID,
		OrderType:  entity.TypeInstore,
		UserID:     userID,
		StoreID:    shopID,
		TotalPrice: float64(quantity) * product.Price,
		CreateTime: now,
		UpdateTime: now,
		Status:     entity.StatusUnpaid,
		Products: []entity.OrderLine{{
			Kind:      entity.LineShopProduct,
			ProductID: product.ProductID,
			Name:      product.Name,
			StoreID:   product.ShopID,
			Price:     product.Price,
			Quantity:  quantity,
			Tags:      product.Tags,
		}},
	}
	if resp := t.World().AddOrder(order); resp != "done" {
		return fmt.Sprintf("Failed to create order: %s", resp), nil
	}
	return order.Repr(), nil
}

func (t *Toolkit) book(args map[string]any) (string, error) {
	userID, err := t.matchedUser(args)
	if err != nil {
		return "", err
	}
	shopID, _ := env.String(args, "shop_id")
	if shopID == "" {
		return "", env.Preconditionf("Shop ID cannot be empty")
	}
	bookTime, _ := env.String(args, "time")
	if bookTime == "" {
		return "", env.Preconditionf("Table booking time cannot be empty")
	}
	customerCount := 1
	if _, present := args["customer_count"]; present {
		c, ok := env.Int(args, "customer_count")
		if !ok {
			return "", env.Preconditionf("Customer count must be an integer")
		}
		customerCount = c
	}
	if customerCount <= 0 {
		return "", env.Preconditionf("Number of customers for table booking must be greater than 0")
	}
	if !env.CheckTimeFormat(bookTime, timeLayout) {
		return "", env.Preconditionf("Table booking time format is incorrect, correct format is %%Y-%%m-%%d %%H:%%M:%%S")
	}
	shop, err := t.getShop(shopID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if !shop.EnableBook {
		return fmt.Sprintf("Shop %s does not support table booking", shopID), nil
	}
	status := entity.StatusPaid
	if shop.BookPrice > 0 {
		status = entity.StatusUnpaid
	}
	bookID, err := t.World().AssignOrderID("instore_book", userID, nil)
	if err != nil {
		return "", err
	}
	book := &BookInfo{
		BookID:        bookID,
		ShopID:        shopID,
		BookTime:      bookTime,
		CustomerID:    userID,
		CustomerCount: customerCount,
		BookPrice:     shop.BookPrice,
		Status:        status,
		UpdateTime:    t.now(),
	}
	if _, exists := t.db.Books[book.BookID]; exists {
		return "Failed to create booking: BookInfo already exists", nil
	}
	t.db.Books[book.BookID] = book
	return book.Repr(), nil
}

func (t *Toolkit) reserve(args map[string]any) (string, error) {
	userID, err := t.matchedUser(args)
	if err != nil {
		return "", err
	}
	shopID, _ := env.String(args, "shop_id")
	if shopID == "" {
		return "", env.Preconditionf("Shop ID cannot be empty")
	}
	resvTime, _ := env.String(args, "time")
	if resvTime == "" {
		return "", env.Preconditionf("Reservation time cannot be empty")
	}
	customerCount := 1
	if _, present := args["customer_count"]; present {
		c, ok := env.Int(args, "customer_count")
		if !ok {
			return "", env.Preconditionf("Customer count must be an integer")
		}
		customerCount = c
	}
	if customerCount <= 0 {
		return "", env.Preconditionf("Number of customers for reservation must be greater than 0")
	}
	if !env.CheckTimeFormat(resvTime, timeLayout) {
		return "", env.Preconditionf("Reservation time format is incorrect, correct format is %%Y-%%m-%%d %%H:%%M:%%S")
	}
	if _, err := t.getShop(shopID); err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	reservationID, err := t.World().AssignOrderID("instore_reservation", userID, nil)
	if err != nil {
		return "", err
	}
	r := &ReservationInfo{
		ReservationID:   reservationID,
		ShopID:          shopID,
		ReservationTime: resvTime,
		CustomerID:      userID,
		CustomerCount:   customerCount,
		Status:          entity.StatusUnconsumed,
		UpdateTime:      t.now(),
	}
	if _, exists := t.db.Reservations[r.ReservationID]; exists {
		return "Failed to create reservation: ReservationInfo already exists", nil
	}
	t.db.Reservations[r.ReservationID] = r
	return r.Repr(), nil
}

func (t *Toolkit) modifyReservation(args map[string]any) (string, error) {
	reservationID, _ := env.String(args, "reservation_id")
	if reservationID == "" {
		return "", env.Preconditionf("Reservation ID cannot be empty")
	}
	resvTime, _ := env.String(args, "time")
	if resvTime == "" {
		return "", env.Preconditionf("Reservation time cannot be empty")
	}
	customerCount := 0
	if _, present := args["customer_count"]; present {
		c, ok := env.Int(args, "customer_count")
		if !ok {
			return "", env.Preconditionf("Customer count must be an integer")
		}
		customerCount = c
	}
	if customerCount < 0 {
		return "", env.Preconditionf("Number of customers for reservation must be greater than or equal to 0")
	}
	if !env.CheckTimeFormat(resvTime, timeLayout) {
		return "", env.Preconditionf("Reservation time format is incorrect, correct format is %%Y-%%m-%%d %%H:%%M:%%S")
	}
	r, err := t.getReservation(reservationID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if r.Status == entity.StatusConsumed || r.Status == entity.StatusCancelled {
		return fmt.Sprintf("ReservationInfo %s is already %s.", r.ReservationID, r.Status), nil
	}
	r.ReservationTime = resvTime
	r.CustomerCount = customerCount
	r.UpdateTime = t.now()
	return r.Repr(), nil
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
