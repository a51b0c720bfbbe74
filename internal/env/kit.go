package env

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vitabench/vita/internal/entity"
	"github.com/vitabench/vita/internal/fuzzy"
	"github.com/vitabench/vita/internal/lang"
)

// Toolkit is the set of tools registered for a domain, bound to that
// domain's private database.
type Toolkit interface {
	Domain() string
	Tools() []*Tool
	Has(name string) bool
	Use(name string, args map[string]any) (string, error)
	OpenAISchema() []map[string]any
	DBHash() (string, error)
	DumpDB() (json.RawMessage, error)
	Statistics() map[string]any
}

// NearbyTarget is one store-like entry a domain exposes to the nearby
// radius search. Secondary covers flights/trains with two endpoints.
type NearbyTarget struct {
	Primary   entity.Location
	Secondary *entity.Location
	Repr      string
}

// Kit is the base every domain toolkit embeds. It owns the registration
// order, dispatch, schema generation and the generic tools.
type Kit struct {
	domain   string
	language lang.Language
	world    *World
	db       any

	tools  []*Tool
	byName map[string]*Tool

	nearby    func() []NearbyTarget
	locations func() []entity.Location
}

// NewKit builds the base toolkit for a domain. db is the full domain
// database (embedding world) used for hashing and dumping; nearby and
// locations let the generic tools see the domain's catalog.
func NewKit(domain string, language lang.Language, world *World, db any,
	nearby func() []NearbyTarget, locations func() []entity.Location) *Kit {
	k := &Kit{
		domain:    domain,
		language:  language,
		world:     world,
		db:        db,
		byName:    make(map[string]*Tool),
		nearby:    nearby,
		locations: locations,
	}
	k.registerGenericTools()
	return k
}

func (k *Kit) Domain() string           { return k.domain }
func (k *Kit) Language() lang.Language  { return k.language }
func (k *Kit) World() *World            { return k.world }

// Register adds a tool; an existing tool with the same name is overwritten
// with a warning.
func (k *Kit) Register(t *Tool) {
	if _, exists := k.byName[t.Name]; exists {
		log.Printf("[Toolkit] WARNING: overwriting existing tool %q", t.Name)
		for i := range k.tools {
			if k.tools[i].Name == t.Name {
				k.tools[i] = t
				break
			}
		}
	} else {
		k.tools = append(k.tools, t)
	}
	k.byName[t.Name] = t
}

// Tools returns the registered tools in registration order.
func (k *Kit) Tools() []*Tool { return k.tools }

// Has reports whether a tool is registered.
func (k *Kit) Has(name string) bool {
	_, ok := k.byName[name]
	return ok
}

// Use dispatches a tool call. Precondition violations (including argument
// validation) come back as the returned string; unknown tools and genuine
// failures come back as errors so the caller can count them.
func (k *Kit) Use(name string, args map[string]any) (string, error) {
	t, ok := k.byName[name]
	if !ok {
		return "", fmt.Errorf("Tool '%s' not found", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(t, args); err != nil {
		return err.Error(), nil
	}
	out, err := t.Fn(args)
	if err != nil {
		if IsPrecondition(err) {
			return err.Error(), nil
		}
		return "", err
	}
	return out, nil
}

// OpenAISchema renders every tool as an OpenAI function-calling entry.
func (k *Kit) OpenAISchema() []map[string]any {
	out := make([]map[string]any, len(k.tools))
	for i, t := range k.tools {
		out[i] = openAISchema(k.domain, t, k.language)
	}
	return out
}

// DBHash hashes the domain database canonically.
func (k *Kit) DBHash() (string, error) {
	return CanonicalHash(k.db)
}

// DumpDB serializes the domain database for the results file.
func (k *Kit) DumpDB() (json.RawMessage, error) {
	b, err := json.Marshal(k.db)
	if err != nil {
		return nil, fmt.Errorf("dump %s db: %w", k.domain, err)
	}
	return b, nil
}

// Statistics counts tools by type.
func (k *Kit) Statistics() map[string]any {
	stats := map[string]any{"num_tools": len(k.tools)}
	counts := map[ToolType]int{}
	for _, t := range k.tools {
		counts[t.Type]++
	}
	stats["num_read_tools"] = counts[ToolRead]
	stats["num_write_tools"] = counts[ToolWrite]
	stats["num_think_tools"] = counts[ToolThink]
	stats["num_generic_tools"] = counts[ToolGeneric]
	return stats
}

// Haversine returns the great-circle distance in whole metres.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	if lon1 == lon2 && lat1 == lat2 {
		return 0
	}
	const earthRadius = 6371000
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dlon := rad(lon2) - rad(lon1)
	dlat := rad(lat2) - rad(lat1)
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Pow(math.Sin(dlon/2), 2)
	return math.Round(earthRadius * 2 * math.Asin(math.Sqrt(a)))
}

func (k *Kit) registerGenericTools() {
	k.Register(&Tool{
		Name: "longitude_latitude_to_distance",
		Type: ToolGeneric,
		Params: []Param{
			{Name: "longitude1", Type: "number"},
			{Name: "latitude1", Type: "number"},
			{Name: "longitude2", Type: "number"},
			{Name: "latitude2", Type: "number"},
		},
		Fn: func(args map[string]any) (string, error) {
			lon1, _ := Float(args, "longitude1")
			lat1, _ := Float(args, "latitude1")
			lon2, _ := Float(args, "longitude2")
			lat2, _ := Float(args, "latitude2")
			return formatFloat(Haversine(lon1, lat1, lon2, lat2)), nil
		},
	})

	k.Register(&Tool{
		Name: "weather",
		Type: ToolGeneric,
		Params: []Param{
			{Name: "address", Type: "string"},
			{Name: "date_start", Type: "string"},
			{Name: "date_end", Type: "string"},
		},
		Fn: k.weatherTool,
	})

	k.Register(&Tool{
		Name:   "address_to_longitude_latitude",
		Type:   ToolGeneric,
		Params: []Param{{Name: "address", Type: "string"}},
		Fn:     k.geocodeTool,
	})

	k.Register(&Tool{
		Name:   "get_date_holiday_info",
		Type:   ToolGeneric,
		Params: []Param{{Name: "date", Type: "string"}},
		Fn: func(args map[string]any) (string, error) {
			date, _ := String(args, "date")
			if !CheckDateFormat(date) {
				return "", Preconditionf("Date format error, should be yyyy-mm-dd, actual: %s", date)
			}
			return holidayNameForDate(date, k.language), nil
		},
	})

	k.Register(&Tool{
		Name: "get_holiday_date",
		Type: ToolGeneric,
		Params: []Param{
			{Name: "year", Type: "string"},
			{Name: "holiday_name", Type: "string"},
		},
		Fn: func(args map[string]any) (string, error) {
			year, _ := String(args, "year")
			name, _ := String(args, "holiday_name")
			if strings.TrimSpace(name) == "" {
				return "", Preconditionf("Holiday name cannot be empty")
			}
			return holidayDateForName(year, name, k.language), nil
		},
	})

	k.Register(&Tool{
		Name: "get_user_historical_behaviors",
		Type: ToolRead,
		Fn: func(map[string]any) (string, error) {
			if len(k.world.UserHistoricalBehaviors) == 0 {
				return "{}", nil
			}
			b, err := json.Marshal(k.world.UserHistoricalBehaviors)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	})

	k.Register(&Tool{
		Name: "get_user_all_orders",
		Type: ToolRead,
		Fn: func(map[string]any) (string, error) {
			if len(k.world.Orders) == 0 {
				return "User currently has no order information", nil
			}
			ids := SortedOrderIDs(k.world.Orders)
			reprs := make([]string, len(ids))
			for i, id := range ids {
				reprs[i] = k.world.Orders[id].Repr()
			}
			return strings.Join(reprs, "\n"), nil
		},
	})

	k.Register(&Tool{
		Name: "get_nearby",
		Type: ToolRead,
		Params: []Param{
			{Name: "longitude", Type: "number"},
			{Name: "latitude", Type: "number"},
			{Name: "range", Type: "number"},
		},
		Fn: func(args map[string]any) (string, error) {
			lon, _ := Float(args, "longitude")
			lat, _ := Float(args, "latitude")
			rng, _ := Float(args, "range")
			var found []string
			if k.nearby != nil {
				for _, target := range k.nearby() {
					d := Haversine(lon, lat, target.Primary.Longitude, target.Primary.Latitude)
					if d <= rng {
						found = append(found, target.Repr)
						continue
					}
					if target.Secondary != nil {
						d = Haversine(lon, lat, target.Secondary.Longitude, target.Secondary.Latitude)
						if d <= rng {
							found = append(found, target.Repr)
						}
					}
				}
			}
			if len(found) == 0 {
				return "No search results found", nil
			}
			return strings.Join(found, "\n"), nil
		},
	})
}

func (k *Kit) weatherTool(args map[string]any) (string, error) {
	address, _ := String(args, "address")
	dateStart, _ := String(args, "date_start")
	dateEnd, _ := String(args, "date_end")
	if !CheckDateFormat(dateStart) {
		return "", Preconditionf("Invalid date_start format. Expected yyyy-mm-dd, got: %s", dateStart)
	}
	if !CheckDateFormat(dateEnd) {
		return "", Preconditionf("Invalid date_end format. Expected yyyy-mm-dd, got: %s", dateEnd)
	}
	if strings.TrimSpace(address) == "" {
		return "", Preconditionf("Address cannot be empty")
	}
	var cities []fuzzy.Candidate
	seen := map[string]bool{}
	for _, w := range k.world.Weather {
		if !seen[w.City] {
			seen[w.City] = true
			cities = append(cities, fuzzy.Candidate{ID: w.City, Text: w.City})
		}
	}
	ranked := fuzzy.Rerank(address, cities)
	if len(ranked) == 0 || ranked[0].Score < 50 {
		return "", fmt.Errorf("Weather information not found for %s", address)
	}
	city := ranked[0].ID

	start, _ := time.Parse("2006-01-02", dateStart)
	end, _ := time.Parse("2006-01-02", dateEnd)
	var filtered []entity.Weather
	for _, w := range k.world.Weather {
		if w.City != city {
			continue
		}
		d, err := time.Parse("2006-01-02", w.Datetime)
		if err != nil {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return fmt.Sprintf("No weather information found for %s between %s and %s", city, dateStart, dateEnd), nil
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Datetime < filtered[j].Datetime })
	reprs := make([]string, len(filtered))
	for i, w := range filtered {
		reprs[i] = w.Repr()
	}
	return strings.Join(reprs, "\n"), nil
}

func (k *Kit) geocodeTool(args map[string]any) (string, error) {
	address, _ := String(args, "address")
	if strings.TrimSpace(address) == "" {
		return "", Preconditionf("Address cannot be empty")
	}
	all := k.allLocations()
	candidates := make([]fuzzy.Candidate, 0, len(all))
	byAddress := make(map[string]entity.Location, len(all))
	for _, loc := range all {
		if _, dup := byAddress[loc.Address]; dup {
			continue
		}
		byAddress[loc.Address] = loc
		candidates = append(candidates, fuzzy.Candidate{ID: loc.Address, Text: loc.Address})
	}
	ranked := fuzzy.Rerank(address, candidates)
	if len(ranked) == 0 || ranked[0].Score < 30 || !fuzzy.RatioMatch(address, ranked[0].ID) {
		return "", fmt.Errorf("Longitude and latitude not found for address %s", address)
	}
	loc := byAddress[ranked[0].ID]
	return fmt.Sprintf("[%s, %s]", formatFloat(loc.Longitude), formatFloat(loc.Latitude)), nil
}

// Geocode resolves an address to coordinates for intra-toolkit use (order
// creation needs the numbers, not the rendered string).
func (k *Kit) Geocode(address string) (lon, lat float64, err error) {
	if strings.TrimSpace(address) == "" {
		return 0, 0, Preconditionf("Address cannot be empty")
	}
	all := k.allLocations()
	candidates := make([]fuzzy.Candidate, 0, len(all))
	byAddress := make(map[string]entity.Location, len(all))
	for _, loc := range all {
		if _, dup := byAddress[loc.Address]; dup {
			continue
		}
		byAddress[loc.Address] = loc
		candidates = append(candidates, fuzzy.Candidate{ID: loc.Address, Text: loc.Address})
	}
	ranked := fuzzy.Rerank(address, candidates)
	if len(ranked) == 0 || ranked[0].Score < 30 || !fuzzy.RatioMatch(address, ranked[0].ID) {
		return 0, 0, fmt.Errorf("Longitude and latitude not found for address %s", address)
	}
	loc := byAddress[ranked[0].ID]
	return loc.Longitude, loc.Latitude, nil
}

func (k *Kit) allLocations() []entity.Location {
	out := append([]entity.Location(nil), k.world.Location...)
	if k.locations != nil {
		out = append(out, k.locations()...)
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
