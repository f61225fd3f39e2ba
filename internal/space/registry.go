package space

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultSeatCapacity applies when a catalog seat leaves capacity unset.
const defaultSeatCapacity = 1

// Registry is the read-only lookup service over zones and seats.
type Registry struct {
	zones       map[string]Zone
	seats       map[string]Seat
	zoneOrder   []string            // zone IDs sorted
	seatOrder   []string            // seat IDs sorted
	seatsByZone map[string][]string // zone ID -> sorted seat IDs
}

// LoadCatalog reads and validates a seat/zone catalog from a YAML file.
//
// Returns:
//   - *Registry: Immutable registry built from the catalog
//   - error: Wraps ErrInvalidCatalog on any validation failure
func LoadCatalog(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidCatalog, path, err)
	}

	return NewRegistry(cat)
}

// NewRegistry validates the catalog and builds an immutable Registry.
// An empty catalog is valid and yields an empty registry.
func NewRegistry(cat Catalog) (*Registry, error) {
	var errs []string

	r := &Registry{
		zones:       make(map[string]Zone, len(cat.Zones)),
		seats:       make(map[string]Seat, len(cat.Seats)),
		seatsByZone: make(map[string][]string, len(cat.Zones)),
	}

	for _, z := range cat.Zones {
		if err := validateZone(z); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if _, dup := r.zones[z.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate zone id %s", z.ID))
			continue
		}
		r.zones[z.ID] = z
		r.zoneOrder = append(r.zoneOrder, z.ID)
	}

	for _, s := range cat.Seats {
		if err := validateSeat(s); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if _, ok := r.zones[s.ZoneID]; !ok {
			errs = append(errs, fmt.Sprintf("seat %s references unknown zone %q", s.ID, s.ZoneID))
			continue
		}
		if _, dup := r.seats[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate seat id %s", s.ID))
			continue
		}
		if s.Capacity == 0 {
			s.Capacity = defaultSeatCapacity
		}
		r.seats[s.ID] = s
		r.seatOrder = append(r.seatOrder, s.ID)
		r.seatsByZone[s.ZoneID] = append(r.seatsByZone[s.ZoneID], s.ID)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(errs, "; "))
	}

	sort.Strings(r.zoneOrder)
	sort.Strings(r.seatOrder)
	for _, ids := range r.seatsByZone {
		sort.Strings(ids)
	}

	return r, nil
}

// GetSeat returns a seat by ID, or ErrSeatNotFound.
func (r *Registry) GetSeat(id string) (Seat, error) {
	s, ok := r.seats[id]
	if !ok {
		return Seat{}, fmt.Errorf("%w: %s", ErrSeatNotFound, id)
	}
	return s, nil
}

// HasSeat reports whether the seat exists.
func (r *Registry) HasSeat(id string) bool {
	_, ok := r.seats[id]
	return ok
}

// GetZone returns a zone by ID, or ErrZoneNotFound.
func (r *Registry) GetZone(id string) (Zone, error) {
	z, ok := r.zones[id]
	if !ok {
		return Zone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	return z, nil
}

// ZoneOf returns the zone a seat belongs to.
func (r *Registry) ZoneOf(seatID string) (Zone, error) {
	s, err := r.GetSeat(seatID)
	if err != nil {
		return Zone{}, err
	}
	return r.GetZone(s.ZoneID)
}

// ListSeatsByZone returns the seats of a zone ordered by seat ID.
// Returns ErrZoneNotFound for an unknown zone; a known zone without
// seats returns an empty slice.
func (r *Registry) ListSeatsByZone(zoneID string) ([]Seat, error) {
	if _, ok := r.zones[zoneID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	}
	ids := r.seatsByZone[zoneID]
	seats := make([]Seat, 0, len(ids))
	for _, id := range ids {
		seats = append(seats, r.seats[id])
	}
	return seats, nil
}

// ListAllSeats returns every seat ordered by seat ID.
func (r *Registry) ListAllSeats() []Seat {
	seats := make([]Seat, 0, len(r.seatOrder))
	for _, id := range r.seatOrder {
		seats = append(seats, r.seats[id])
	}
	return seats
}

// ListZones returns every zone ordered by zone ID.
func (r *Registry) ListZones() []Zone {
	zones := make([]Zone, 0, len(r.zoneOrder))
	for _, id := range r.zoneOrder {
		zones = append(zones, r.zones[id])
	}
	return zones
}

// ZoneCapacity returns the summed seat capacity of a zone.
func (r *Registry) ZoneCapacity(zoneID string) (int, error) {
	seats, err := r.ListSeatsByZone(zoneID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, s := range seats {
		total += s.Capacity
	}
	return total, nil
}

// SeatCount returns the number of seats in the catalog.
func (r *Registry) SeatCount() int {
	return len(r.seats)
}

// IsNotFound reports whether err is a zone or seat lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSeatNotFound) || errors.Is(err, ErrZoneNotFound)
}
