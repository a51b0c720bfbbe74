package ota

import (
	"fmt"
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

// Toolkit is the OTA-domain toolkit bound to one private DB.
type Toolkit struct {
	*env.Kit
	db *DB
}

// New builds the OTA toolkit over a fresh database.
func New(db *DB, language lang.Language) *Toolkit {
	t := &Toolkit{db: db}
	t.Kit = env.NewKit("ota", language, db.World, db, t.nearbyTargets, t.catalogLocations)
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
	for _, id := range sortedKeys(t.db.Hotels) {
		h := t.db.Hotels[id]
		targets = append(targets, env.NearbyTarget{Primary: h.Location, Repr: h.Str()})
	}
	for _, id := range sortedKeys(t.db.Attractions) {
		a := t.db.Attractions[id]
		targets = append(targets, env.NearbyTarget{Primary: a.Location, Repr: a.Str()})
	}
	for _, id := range sortedKeys(t.db.Flights) {
		f := t.db.Flights[id]
		arr := f.ArrivalAirportLocation
		targets = append(targets, env.NearbyTarget{Primary: f.DepartureAirportLocation, Secondary: &arr, Repr: f.Str()})
	}
	for _, id := range sortedKeys(t.db.Trains) {
		tr := t.db.Trains[id]
		arr := tr.ArrivalStationLocation
		targets = append(targets, env.NearbyTarget{Primary: tr.DepartureStationLocation, Secondary: &arr, Repr: tr.Str()})
	}
	return targets
}

func (t *Toolkit) catalogLocations() []entity.Location {
	var locs []entity.Location
	for _, id := range sortedKeys(t.db.Hotels) {
		locs = append(locs, t.db.Hotels[id].Location)
	}
	for _, id := range sortedKeys(t.db.Attractions) {
		locs = append(locs, t.db.Attractions[id].Location)
	}
	for _, id := range sortedKeys(t.db.Flights) {
		f := t.db.Flights[id]
		locs = append(locs, f.DepartureAirportLocation, f.ArrivalAirportLocation)
	}
	for _, id := range sortedKeys(t.db.Trains) {
		tr := t.db.Trains[id]
		locs = append(locs, tr.DepartureStationLocation, tr.ArrivalStationLocation)
	}
	return locs
}

func (t *Toolkit) checkUser(userID string) bool {
	return userID == t.db.UserID
}

func (t *Toolkit) now() string { return t.World().Now(timeLayout) }

func (t *Toolkit) getOrder(orderID string) (*entity.Order, error) {
	order, ok := t.db.Orders[orderID]
	if !ok {
		return nil, fmt.Errorf("Order %s not found", orderID)
	}
	return order, nil
}

// scene labels used in user-facing error strings.
var sceneArticle = map[entity.OrderType]string{
	entity.TypeHotel:      "a hotel order",
	entity.TypeAttraction: "an attraction order",
	entity.TypeFlight:     "a flight order",
	entity.TypeTrain:      "a train order",
}

func (t *Toolkit) registerTools() {
	t.registerInfoTools()
	t.registerSearchTools()
	t.registerCreateTools()
	for _, typ := range []entity.OrderType{entity.TypeHotel, entity.TypeAttraction, entity.TypeFlight, entity.TypeTrain} {
		t.registerPayTool(typ)
		t.registerOrderSearchTool(typ)
		t.registerDetailTool(typ)
		t.registerCancelTool(typ)
	}
	t.registerModifySeatTools()
}

func (t *Toolkit) registerInfoTools() {
	t.Register(&env.Tool{
		Name:   "get_ota_hotel_info",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "hotel_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			id, _ := env.String(args, "hotel_id")
			if id == "" {
				return "", env.Preconditionf("Hotel ID cannot be empty")
			}
			h, ok := t.db.Hotels[id]
			if !ok {
				return fmt.Sprintf("Error: hotel %s not found", id), nil
			}
			return "Hotel Info:\n" + h.Repr(), nil
		},
	})
	t.Register(&env.Tool{
		Name:   "get_ota_attraction_info",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "attraction_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			id, _ := env.String(args, "attraction_id")
			if id == "" {
				return "", env.Preconditionf("Attraction ID cannot be empty")
			}
			a, ok := t.db.Attractions[id]
			if !ok {
				return fmt.Sprintf("Error: attraction %s not found", id), nil
			}
			return "Attraction Info:\n" + a.Repr(), nil
		},
	})
	t.Register(&env.Tool{
		Name:   "get_ota_flight_info",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "flight_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			id, _ := env.String(args, "flight_id")
			if id == "" {
				return "", env.Preconditionf("Flight ID cannot be empty")
			}
			f, ok := t.db.Flights[id]
			if !ok {
				return fmt.Sprintf("Error: flight %s not found", id), nil
			}
			return "Flight Info:\n" + f.Repr(), nil
		},
	})
	t.Register(&env.Tool{
		Name:   "get_ota_train_info",
		Type:   env.ToolRead,
		Params: []env.Param{{Name: "train_id", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			id, _ := env.String(args, "train_id")
			if id == "" {
				return "", env.Preconditionf("Train ID cannot be empty")
			}
			tr, ok := t.db.Trains[id]
			if !ok {
				return fmt.Sprintf("Error: train %s not found", id), nil
			}
			return "Train Info:\n" + tr.Repr(), nil
		},
	})
}

func (t *Toolkit) registerSearchTools() {
	t.Register(&env.Tool{
		Name: "hotel_search_recommend",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "city_name", Type: "string"},
			{Name: "key_words", Type: "array", Items: "string", Optional: true},
		},
		Fn: func(args map[string]any) (string, error) {
			city, _ := env.String(args, "city_name")
			if city == "" {
				return "", env.Preconditionf("City name cannot be empty")
			}
			keywords, _ := env.StringList(args, "key_words")
			var candidates []fuzzy.Candidate
			for _, id := range sortedKeys(t.db.Hotels) {
				h := t.db.Hotels[id]
				if !fuzzy.Match(city, h.Location.Address) {
					continue
				}
				candidates = append(candidates, fuzzy.Candidate{ID: id, Text: h.HotelName + strings.Join(h.Tags, ",")})
			}
			if len(candidates) == 0 {
				return "No hotels found matching the criteria.", nil
			}
			query := strings.Join(keywords, "")
			if strings.TrimSpace(query) == "" {
				return "", env.Preconditionf("Keywords cannot be empty")
			}
			ranked := fuzzy.Rerank(query, candidates)
			var found []string
			for i, r := range ranked {
				if i >= topK {
					break
				}
				found = append(found, t.db.Hotels[r.ID].Str())
			}
			if len(found) == 0 {
				return "No hotels found matching the keywords", nil
			}
			return strings.Join(found, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name: "attractions_search_recommend",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "city_name", Type: "string"},
			{Name: "key_words", Type: "array", Items: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			city, _ := env.String(args, "city_name")
			if city == "" {
				return "", env.Preconditionf("City name cannot be empty")
			}
			keywords, ok := env.StringList(args, "key_words")
			if !ok || len(keywords) == 0 {
				return "", env.Preconditionf("Key words cannot be empty")
			}
			var candidates []fuzzy.Candidate
			for _, id := range sortedKeys(t.db.Attractions) {
				a := t.db.Attractions[id]
				if !fuzzy.Match(city, a.Location.Address) {
					continue
				}
				text := fmt.Sprintf("%s,%s,%s", a.AttractionName, a.Description, a.Location.Address)
				candidates = append(candidates, fuzzy.Candidate{ID: id, Text: text})
			}
			if len(candidates) == 0 {
				return "No attractions found matching the criteria.", nil
			}
			query := strings.Join(keywords, "")
			if strings.TrimSpace(query) == "" {
				return "", env.Preconditionf("Keywords cannot be empty")
			}
			ranked := fuzzy.Rerank(query, candidates)
			var found []string
			for i, r := range ranked {
				if i >= topK {
					break
				}
				found = append(found, t.db.Attractions[r.ID].Str())
			}
			if len(found) == 0 {
				return "No attractions found matching the keywords", nil
			}
			return strings.Join(found, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name: "flight_search_recommend",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "departure", Type: "string"},
			{Name: "destination", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			departure, _ := env.String(args, "departure")
			if departure == "" {
				return "", env.Preconditionf("Departure city cannot be empty")
			}
			destination, _ := env.String(args, "destination")
			if destination == "" {
				return "", env.Preconditionf("Destination city cannot be empty")
			}
			var found []string
			for _, id := range sortedKeys(t.db.Flights) {
				f := t.db.Flights[id]
				if !fuzzy.Match(departure, f.DepartureCity) || !fuzzy.Match(destination, f.ArrivalCity) {
					continue
				}
				found = append(found, f.Str())
			}
			if len(found) == 0 {
				return "No flights found matching the criteria. Please check if the departure and destination cities are correct.", nil
			}
			return strings.Join(found, "\n"), nil
		},
	})

	t.Register(&env.Tool{
		Name: "train_ticket_search",
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "departure", Type: "string"},
			{Name: "destination", Type: "string"},
			{Name: "date", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			departure, _ := env.String(args, "departure")
			if departure == "" {
				return "", env.Preconditionf("Departure city cannot be empty")
			}
			destination, _ := env.String(args, "destination")
			if destination == "" {
				return "", env.Preconditionf("Destination city cannot be empty")
			}
			date, _ := env.String(args, "date")
			if date == "" {
				return "", env.Preconditionf("Departure date cannot be empty")
			}
			if !env.CheckDateFormat(date) {
				return "", env.Preconditionf("Date format is incorrect, correct format is %%Y-%%m-%%d")
			}
			var found []string
			for _, id := range sortedKeys(t.db.Trains) {
				tr := t.db.Trains[id]
				for _, p := range tr.Products {
					if p.Date != date {
						continue
					}
					if !fuzzy.Match(departure, tr.DepartureCity) || !fuzzy.Match(destination, tr.ArrivalCity) {
						continue
					}
					found = append(found, tr.Str())
					break
				}
			}
			if len(found) == 0 {
				return "No trains found matching the criteria", nil
			}
			return strings.Join(found, "\n"), nil
		},
	})
}

func (t *Toolkit) registerCreateTools() {
	t.Register(&env.Tool{
		Name: "create_hotel_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "hotel_id", Type: "string"},
			{Name: "room_id", Type: "string"},
			{Name: "user_id", Type: "string"},
		},
		Fn: t.createHotelOrder,
	})

	t.Register(&env.Tool{
		Name: "create_attraction_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "attraction_id", Type: "string"},
			{Name: "ticket_id", Type: "string"},
			{Name: "user_id", Type: "string"},
			{Name: "date", Type: "string"},
			{Name: "quantity", Type: "integer"},
		},
		Fn: t.createAttractionOrder,
	})

	t.Register(&env.Tool{
		Name: "create_flight_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "flight_id", Type: "string"},
			{Name: "seat_id", Type: "string"},
			{Name: "user_id", Type: "string"},
			{Name: "date", Type: "string"},
			{Name: "quantity", Type: "integer"},
		},
		Fn: t.createFlightOrder,
	})

	t.Register(&env.Tool{
		Name: "create_train_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "train_id", Type: "string"},
			{Name: "seat_id", Type: "string"},
			{Name: "user_id", Type: "string"},
			{Name: "date", Type: "string"},
			{Name: "quantity", Type: "integer"},
		},
		Fn: t.createTrainOrder,
	})
}

func (t *Toolkit) createHotelOrder(args map[string]any) (string, error) {
	hotelID, _ := env.String(args, "hotel_id")
	if hotelID == "" {
		return "", env.Preconditionf("Hotel ID cannot be empty")
	}
	roomID, _ := env.String(args, "room_id")
	if roomID == "" {
		return "", env.Preconditionf("Room ID cannot be empty")
	}
	userID, _ := env.String(args, "user_id")
	if userID == "" {
		return "", env.Preconditionf("User ID cannot be empty")
	}
	if !t.checkUser(userID) {
		return "", env.Preconditionf("User ID does not match")
	}
	hotel, ok := t.db.Hotels[hotelID]
	if !ok {
		return fmt.Sprintf("Error: hotel %s not found", hotelID), nil
	}
	var line *entity.OrderLine
	for _, p := range hotel.Products {
		if p.ProductID != roomID {
			continue
		}
		if p.Quantity <= 0 {
			return fmt.Sprintf("No available rooms at the moment for room %s", roomID), nil
		}
		p.Quantity--
		line = &entity.OrderLine{
			Kind:      entity.LineHotelRoom,
			ProductID: p.ProductID,
			Price:     p.Price,
			Date:      p.Date,
			Quantity:  1,
			RoomType:  p.RoomType,
		}
		break
	}
	if line == nil {
		return fmt.Sprintf("Room %s not found in hotel %s", roomID, hotelID), nil
	}
	orderID, err := t.World().AssignOrderID("hotel", userID, map[string]string{
		"hotel_id":   hotelID,
		"product_id": roomID,
	})
	if err != nil {
		return "", err
	}
	now := t.now()
	order := &entity.Order{
		OrderID:    orderID,
		OrderType:  entity.TypeHotel,
		UserID:     userID,
		StoreID:    hotelID,
		TotalPrice: line.Price,
		CreateTime: now,
		UpdateTime: now,
		Status:     entity.StatusUnpaid,
		Products:   []entity.OrderLine{*line},
	}
	if resp := t.World().AddOrder(order); resp != "done" {
		return fmt.Sprintf("Failed to create order: %s", resp), nil
	}
	return order.Repr(), nil
}

func (t *Toolkit) createAttractionOrder(args map[string]any) (string, error) {
	attractionID, _ := env.String(args, "attraction_id")
	if attractionID == "" {
		return "", env.Preconditionf("Attraction ID cannot be empty")
	}
	ticketID, _ := env.String(args, "ticket_id")
	if ticketID == "" {
		return "", env.Preconditionf("Ticket ID cannot be empty")
	}
	userID, date, quantity, err := t.bookingArgs(args)
	if err != nil {
		return "", err
	}
	attraction, ok := t.db.Attractions[attractionID]
	if !ok {
		return fmt.Sprintf("Error: attraction %s not found", attractionID), nil
	}
	var target *AttractionProduct
	for _, p := range attraction.Products {
		if p.Date == date && p.ProductID == ticketID {
			target = p
			break
		}
	}
	if target == nil {
		return fmt.Sprintf("The attraction %s does not have ticket %s on date %s", attractionID, ticketID, date), nil
	}
	if target.Quantity < quantity {
		return fmt.Sprintf("Insufficient ticket inventory for the specified date %s. Available: %d, Requested: %d",
			date, target.Quantity, quantity), nil
	}
	target.Quantity -= quantity
	orderID, err := t.World().AssignOrderID("attraction", userID, nil)
	if err != nil {
		return "", err
	}
	now := t.now()
	order := &entity.Order{
		OrderID:    orderID,
		OrderType:  entity.TypeAttraction,
		UserID:     userID,
		StoreID:    attractionID,
		TotalPrice: target.Price * float64(quantity),
		CreateTime: now,
		UpdateTime: now,
		Status:     entity.StatusUnpaid,
		Products: []entity.OrderLine{{
			Kind:       entity.LineTicket,
			ProductID:  target.ProductID,
			Price:      target.Price,
			Date:       date,
			Quantity:   quantity,
			TicketType: target.TicketType,
		}},
	}
	if resp := t.World().AddOrder(order); resp != "done" {
		return fmt.Sprintf("Failed to create order: %s", resp), nil
	}
	return order.Repr(), nil
}

func (t *Toolkit) createFlightOrder(args map[string]any) (string, error) {
	flightID, _ := env.String(args, "flight_id")
	if flightID == "" {
		return "", env.Preconditionf("Flight ID cannot be empty")
	}
	seatID, _ := env.String(args, "seat_id")
	if seatID == "" {
		return "", env.Preconditionf("Seat ID cannot be empty")
	}
	userID, date, quantity, err := t.bookingArgs(args)
	if err != nil {
		return "", err
	}
	flight, ok := t.db.Flights[flightID]
	if !ok {
		return fmt.Sprintf("Error: flight %s not found", flightID), nil
	}
	var target *FlightProduct
	for _, p := range flight.Products {
		if p.Date == date && p.ProductID == seatID {
			target = p
			break
		}
	}
	if target == nil {
		return fmt.Sprintf("The flight %s does not have seat %s on date %s", flightID, seatID, date), nil
	}
	if target.Quantity < quantity {
		return fmt.Sprintf("Insufficient seat inventory for the specified date %s. Available: %d, Requested: %d",
			date, target.Quantity, quantity), nil
	}
	target.Quantity -= quantity
	orderID, err := t.World().AssignOrderID("flight", userID, nil)
	if err != nil {
		return "", err
	}
	now := t.now()
	order := &entity.Order{
		OrderID:    orderID,
		OrderType:  entity.TypeFlight,
		UserID:     userID,
		StoreID:    flightID,
		TotalPrice: target.Price * float64(quantity),
		CreateTime: now,
		UpdateTime: now,
		Status:     entity.StatusUnpaid,
		Products: []entity.OrderLine{{
			Kind:      entity.LineFlightSeat,
			ProductID: target.ProductID,
			Price:     target.Price,
			Date:      date,
			Quantity:  quantity,
			SeatType:  target.SeatType,
		}},
	}
	if resp := t.World().AddOrder(order); resp != "done" {
		return fmt.Sprintf("Failed to create order: %s", resp), nil
	}
	return order.Repr(), nil
}

func (t *Toolkit) createTrainOrder(args map[string]any) (string, error) {
	trainID, _ := env.String(args, "train_id")
	if trainID == "" {
		return "", env.Preconditionf("Train ID cannot be empty")
	}
	seatID, _ := env.String(args, "seat_id")
	if seatID == "" {
		return "", env.Preconditionf("Seat ID cannot be empty")
	}
	userID, date, quantity, err := t.bookingArgs(args)
	if err != nil {
		return "", err
	}
	train, ok := t.db.Trains[trainID]
	if !ok {
		return fmt.Sprintf("Error: train %s not found", trainID), nil
	}
	var target *TrainProduct
	for _, p := range train.Products {
		if p.Date == date && p.ProductID == seatID {
			target = p
			break
		}
	}
	if target == nil {
		return fmt.Sprintf("The train %s does not have seat %s on date %s", trainID, seatID, date), nil
	}
	if target.Quantity < quantity {
		return fmt.Sprintf("Insufficient seat inventory for the specified date %s. Available: %d, Requested: %d",
			date, target.Quantity, quantity), nil
	}
	target.Quantity -= quantity
	orderID, err := t.World().AssignOrderID("train", userID, nil)
	if err != nil {
		return "", err
	}
	now := t.now()
	order := &entity.Order{
		OrderID:    orderID,
		OrderType:  entity.TypeTrain,
		UserID:     userID,
		StoreID:    trainID,
		TotalPrice: target.Price * float64(quantity),
		CreateTime: now,
		UpdateTime: now,
		Status:     entity.StatusUnpaid,
		Products: []entity.OrderLine{{
			Kind:      entity.LineTrainSeat,
			ProductID: target.ProductID,
			Price:     target.Price,
			Date:      date,
			Quantity:  quantity,
			SeatType:  target.SeatType,
		}},
	}
	if resp := t.World().AddOrder(order); resp != "done" {
		return fmt.Sprintf("Failed to create order: %s", resp), nil
	}
	return order.Repr(), nil
}

// bookingArgs validates the user/date/quantity triple shared by the dated
// create tools.
func (t *Toolkit) bookingArgs(args map[string]any) (userID, date string, quantity int, err error) {
	userID, _ = env.String(args, "user_id")
	if userID == "" {
		return "", "", 0, env.Preconditionf("User ID cannot be empty")
	}
	date, _ = env.String(args, "date")
	if date == "" {
		return "", "", 0, env.Preconditionf("Date cannot be empty")
	}
	quantity, ok := env.Int(args, "quantity")
	if !ok {
		return "", "", 0, env.Preconditionf("Quantity must be an integer")
	}
	if quantity <= 0 {
		return "", "", 0, env.Preconditionf("Booking quantity must be greater than 0")
	}
	if !env.CheckDateFormat(date) {
		return "", "", 0, env.Preconditionf("Date format is incorrect, correct format is %%Y-%%m-%%d")
	}
	if !t.checkUser(userID) {
		return "", "", 0, env.Preconditionf("User ID does not match")
	}
	return userID, date, quantity, nil
}

func (t *Toolkit) registerPayTool(typ entity.OrderType) {
	t.Register(&env.Tool{
		Name:   fmt.Sprintf("pay_%s_order", typ),
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
			if order.OrderType != typ {
				return fmt.Sprintf("Order %s is not %s", orderID, sceneArticle[typ]), nil
			}
			if order.Status != entity.StatusUnpaid {
				return fmt.Sprintf("Order status must be unpaid. Current status: %s", order.Status), nil
			}
			order.Status = entity.StatusPaid
			order.UpdateTime = t.now()
			return "Payment successful", nil
		},
	})
}

func (t *Toolkit) registerOrderSearchTool(typ entity.OrderType) {
	t.Register(&env.Tool{
		Name: fmt.Sprintf("search_%s_order", typ),
		Type: env.ToolRead,
		Params: []env.Param{
			{Name: "user_id", Type: "string"},
			{Name: "date", Type: "string", Optional: true},
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
			date, _ := env.String(args, "date")
			if date != "" && !env.CheckDateFormat(date) {
				return "", env.Preconditionf("Date format is incorrect, correct format is %%Y-%%m-%%d")
			}
			status := string(entity.StatusPaid)
			if s, ok := env.String(args, "status"); ok && s != "" {
				status = s
			}
			var found []string
			for _, id := range env.SortedOrderIDs(t.db.Orders) {
				order := t.db.Orders[id]
				if order.OrderType != typ || order.UserID != userID {
					continue
				}
				if status != "" && string(order.Status) != status {
					continue
				}
				if date != "" {
					hasDate := false
					for _, p := range order.Products {
						if p.Date == date {
							hasDate = true
							break
						}
					}
					if !hasDate {
						continue
					}
				}
				found = append(found, order.Str())
			}
			if len(found) == 0 {
				dateFilter := ""
				if date != "" {
					dateFilter = fmt.Sprintf(" on date %s", date)
				}
				statusFilter := ""
				if status != "" {
					statusFilter = fmt.Sprintf(" with status %s", status)
				}
				return fmt.Sprintf("No %s orders found for user %s%s%s", typ, userID, dateFilter, statusFilter), nil
			}
			return strings.Join(found, "\n"), nil
		},
	})
}

func (t *Toolkit) registerDetailTool(typ entity.OrderType) {
	t.Register(&env.Tool{
		Name:   fmt.Sprintf("get_%s_order_detail", typ),
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
			if order.OrderType != typ {
				return fmt.Sprintf("Order %s is not %s", orderID, sceneArticle[typ]), nil
			}
			return order.Repr(), nil
		},
	})
}

func (t *Toolkit) registerCancelTool(typ entity.OrderType) {
	t.Register(&env.Tool{
		Name: fmt.Sprintf("cancel_%s_order", typ),
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "order_id", Type: "string"},
			{Name: "user_id", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			orderID, _ := env.String(args, "order_id")
			if orderID == "" {
				return "", env.Preconditionf("Order ID cannot be empty")
			}
			userID, _ := env.String(args, "user_id")
			if userID == "" {
				return "", env.Preconditionf("User ID cannot be empty")
			}
			if !t.checkUser(userID) {
				return "", env.Preconditionf("User ID does not match")
			}
			order, err := t.getOrder(orderID)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			if order.OrderType != typ {
				return fmt.Sprintf("Order %s is not %s", orderID, sceneArticle[typ]), nil
			}
			if order.UserID != userID {
				return fmt.Sprintf("Order %s does not belong to user %s", orderID, userID), nil
			}
			if order.Status == entity.StatusCancelled {
				return fmt.Sprintf("Order %s is already cancelled", orderID), nil
			}
			// Cancellation refunds paid money but never re-credits the
			// inventory taken at creation.
			refund := 0.0
			if order.Status == entity.StatusPaid {
				refund = order.TotalPrice
			}
			order.Status = entity.StatusCancelled
			order.UpdateTime = t.now()
			return fmt.Sprintf("Cancellation successful, refund amount: %v", refund), nil
		},
	})
}

// seatInventory is the mutable view the seat-modification tools need over a
// flight or train product list.
type seatInventory struct {
	productID string
	price     float64
	date      string
	seatType  string
	quantity  *int
}

func (t *Toolkit) registerModifySeatTools() {
	t.Register(&env.Tool{
		Name: "modify_train_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "order_id", Type: "string"},
			{Name: "user_id", Type: "string"},
			{Name: "new_date", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			return t.modifySeatOrder(args, entity.TypeTrain)
		},
	})
	t.Register(&env.Tool{
		Name: "modify_flight_order",
		Type: env.ToolWrite,
		Params: []env.Param{
			{Name: "order_id", Type: "string"},
			{Name: "user_id", Type: "string"},
			{Name: "new_date", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			return t.modifySeatOrder(args, entity.TypeFlight)
		},
	})
}

func (t *Toolkit) seatProducts(typ entity.OrderType, storeID string) ([]seatInventory, bool) {
	switch typ {
	case entity.TypeTrain:
		train, ok := t.db.Trains[storeID]
		if !ok {
			return nil, false
		}
		out := make([]seatInventory, len(train.Products))
		for i, p := range train.Products {
			out[i] = seatInventory{p.ProductID, p.Price, p.Date, p.SeatType, &p.Quantity}
		}
		return out, true
	case entity.TypeFlight:
		flight, ok := t.db.Flights[storeID]
		if !ok {
			return nil, false
		}
		out := make([]seatInventory, len(flight.Products))
		for i, p := range flight.Products {
			out[i] = seatInventory{p.ProductID, p.Price, p.Date, p.SeatType, &p.Quantity}
		}
		return out, true
	}
	return nil, false
}

func (t *Toolkit) modifySeatOrder(args map[string]any, typ entity.OrderType) (string, error) {
	orderID, _ := env.String(args, "order_id")
	if orderID == "" {
		return "", env.Preconditionf("Order ID cannot be empty")
	}
	userID, _ := env.String(args, "user_id")
	if userID == "" {
		return "", env.Preconditionf("User ID cannot be empty")
	}
	newDate, _ := env.String(args, "new_date")
	if newDate == "" {
		return "", env.Preconditionf("New departure date cannot be empty")
	}
	if !env.CheckDateFormat(newDate) {
		return "", env.Preconditionf("Date format is incorrect, correct format is %%Y-%%m-%%d")
	}
	if !t.checkUser(userID) {
		return "", env.Preconditionf("User ID does not match")
	}
	order, err := t.getOrder(orderID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}
	if order.OrderType != typ {
		return fmt.Sprintf("Order %s is not %s", orderID, sceneArticle[typ]), nil
	}
	if order.UserID != userID {
		return fmt.Sprintf("Order %s does not belong to user %s", orderID, userID), nil
	}
	if order.Status != entity.StatusPaid {
		return fmt.Sprintf("Only paid orders can be modified. Current status: %s", order.Status), nil
	}
	if len(order.Products) != 1 {
		if typ == entity.TypeTrain {
			return "Only single train ticket order modification is supported", nil
		}
		return "Only single flight ticket order modification is supported", nil
	}
	old := order.Products[0]
	inventory, ok := t.seatProducts(typ, order.StoreID)
	if !ok {
		return fmt.Sprintf("Error: %s %s not found", typ, order.StoreID), nil
	}
	var target *seatInventory
	for i := range inventory {
		if inventory[i].date == newDate && inventory[i].seatType == old.SeatType {
			target = &inventory[i]
			break
		}
	}
	if target == nil {
		return fmt.Sprintf("New date %s does not have %s type seats", newDate, old.SeatType), nil
	}
	if *target.quantity < old.Quantity {
		return fmt.Sprintf("Insufficient %s seat inventory for new date %s. Available: %d, Required: %d",
			old.SeatType, newDate, *target.quantity, old.Quantity), nil
	}
	for i := range inventory {
		if inventory[i].date == old.Date && inventory[i].seatType == old.SeatType {
			*inventory[i].quantity += old.Quantity
			break
		}
	}
	*target.quantity -= old.Quantity

	oldTotal := old.Price * float64(old.Quantity)
	newTotal := target.price * float64(old.Quantity)
	diff := newTotal - oldTotal
	if diff > 0 {
		order.Status = entity.StatusUnpaid
	}
	kind := entity.LineTrainSeat
	if typ == entity.TypeFlight {
		kind = entity.LineFlightSeat
	}
	order.Products = []entity.OrderLine{{
		Kind:      kind,
		ProductID: target.productID,
		Price:     target.price,
		Date:      newDate,
		Quantity:  old.Quantity,
		SeatType:  old.SeatType,
	}}
	order.TotalPrice = newTotal
	order.UpdateTime = t.now()
	if typ == entity.TypeTrain {
		if diff > 0 {
			return fmt.Sprintf("Modification successful, need to pay additional amount: %v.", diff), nil
		}
		return fmt.Sprintf("Modification successful, price difference: %v, refunded.", diff), nil
	}
	if diff > 0 {
		return fmt.Sprintf("Modification successful, need to pay additional amount: %v, please pay as soon as possible", diff), nil
	}
	return fmt.Sprintf("Modification successful, price difference: %v, refunded", diff), nil
}
