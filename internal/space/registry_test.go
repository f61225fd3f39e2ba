package space

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testCatalog() Catalog {
	return Catalog{
		Zones: []Zone{
			{ID: "zone-quiet", Name: "Quiet Corner", NoiseLevel: 20, ActivityType: ActivityStudy, LightingQuality: 90},
			{ID: "zone-bar", Name: "Bar", NoiseLevel: 80, ActivityType: ActivitySocial, LightingQuality: 60},
		},
		Seats: []Seat{
			{ID: "seat-b2", ZoneID: "zone-bar", Position: Point{X: 12, Y: 1}},
			{ID: "seat-q1", ZoneID: "zone-quiet", Position: Point{X: 1, Y: 1}, Capacity: 2, Comfort: 85},
			{ID: "seat-b1", ZoneID: "zone-bar", Position: Point{X: 10, Y: 1}},
		},
	}
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testCatalog())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func TestNewRegistry_Lookups(t *testing.T) {
	r := mustRegistry(t)

	if r.SeatCount() != 3 {
		t.Errorf("SeatCount() = %d, want 3", r.SeatCount())
	}

	seat, err := r.GetSeat("seat-b1")
	if err != nil {
		t.Fatalf("GetSeat() error = %v", err)
	}
	if seat.ZoneID != "zone-bar" || seat.Capacity != 1 {
		t.Errorf("GetSeat() = %+v, want zone-bar capacity 1", seat)
	}

	z, err := r.ZoneOf("seat-q1")
	if err != nil {
		t.Fatalf("ZoneOf() error = %v", err)
	}
	if z.Name != "Quiet Corner" {
		t.Errorf("ZoneOf() name = %q, want Quiet Corner", z.Name)
	}

	if !r.HasSeat("seat-b2") || r.HasSeat("seat-zz") {
		t.Error("HasSeat() mismatch")
	}
}

func TestNewRegistry_Ordering(t *testing.T) {
	r := mustRegistry(t)

	var seatIDs []string
	for _, s := range r.ListAllSeats() {
		seatIDs = append(seatIDs, s.ID)
	}
	if want := []string{"seat-b1", "seat-b2", "seat-q1"}; !reflect.DeepEqual(seatIDs, want) {
		t.Errorf("ListAllSeats() = %v, want %v", seatIDs, want)
	}

	var zoneIDs []string
	for _, z := range r.ListZones() {
		zoneIDs = append(zoneIDs, z.ID)
	}
	if want := []string{"zone-bar", "zone-quiet"}; !reflect.DeepEqual(zoneIDs, want) {
		t.Errorf("ListZones() = %v, want %v", zoneIDs, want)
	}

	bar, err := r.ListSeatsByZone("zone-bar")
	if err != nil {
		t.Fatalf("ListSeatsByZone() error = %v", err)
	}
	if len(bar) != 2 || bar[0].ID != "seat-b1" || bar[1].ID != "seat-b2" {
		t.Errorf("ListSeatsByZone(zone-bar) = %v", bar)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	r := mustRegistry(t)

	if _, err := r.GetSeat("nope"); !errors.Is(err, ErrSeatNotFound) {
		t.Errorf("GetSeat() error = %v, want ErrSeatNotFound", err)
	}
	if _, err := r.GetZone("nope"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("GetZone() error = %v, want ErrZoneNotFound", err)
	}
	if _, err := r.ListSeatsByZone("nope"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("ListSeatsByZone() error = %v, want ErrZoneNotFound", err)
	}
	if !IsNotFound(ErrSeatNotFound) || IsNotFound(ErrInvalidCatalog) {
		t.Error("IsNotFound() mismatch")
	}
}

func TestRegistry_ZoneCapacity(t *testing.T) {
	cat := testCatalog()
	cat.Zones = append(cat.Zones, Zone{ID: "zone-empty", Name: "Empty", ActivityType: ActivityRelaxation})
	r, err := NewRegistry(cat)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		zone string
		want int
	}{
		{"zone-bar", 2},
		{"zone-quiet", 2},
		{"zone-empty", 0},
	}
	for _, tt := range tests {
		got, err := r.ZoneCapacity(tt.zone)
		if err != nil {
			t.Fatalf("ZoneCapacity(%s) error = %v", tt.zone, err)
		}
		if got != tt.want {
			t.Errorf("ZoneCapacity(%s) = %d, want %d", tt.zone, got, tt.want)
		}
	}
}

func TestNewRegistry_Empty(t *testing.T) {
	r, err := NewRegistry(Catalog{})
	if err != nil {
		t.Fatalf("NewRegistry(empty) error = %v", err)
	}
	if r.SeatCount() != 0 || len(r.ListZones()) != 0 || len(r.ListAllSeats()) != 0 {
		t.Error("empty registry should have no zones or seats")
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Catalog)
		wantErr string
	}{
		{
			name:    "seat references unknown zone",
			mutate:  func(c *Catalog) { c.Seats[0].ZoneID = "zone-missing" },
			wantErr: "unknown zone",
		},
		{
			name:    "duplicate seat",
			mutate:  func(c *Catalog) { c.Seats[1].ID = c.Seats[0].ID },
			wantErr: "duplicate seat",
		},
		{
			name:    "duplicate zone",
			mutate:  func(c *Catalog) { c.Zones[1].ID = c.Zones[0].ID },
			wantErr: "duplicate zone",
		},
		{
			name:    "noise out of range",
			mutate:  func(c *Catalog) { c.Zones[0].NoiseLevel = 101 },
			wantErr: "noise_level",
		},
		{
			name:    "unknown activity",
			mutate:  func(c *Catalog) { c.Zones[0].ActivityType = "dancing" },
			wantErr: "activity_type",
		},
		{
			name:    "empty seat id",
			mutate:  func(c *Catalog) { c.Seats[0].ID = " " },
			wantErr: "seat id cannot be empty",
		},
		{
			name:    "nan position",
			mutate:  func(c *Catalog) { c.Seats[0].Position.X = math.NaN() },
			wantErr: "finite",
		},
		{
			name:    "negative capacity",
			mutate:  func(c *Catalog) { c.Seats[0].Capacity = -1 },
			wantErr: "capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := testCatalog()
			tt.mutate(&cat)
			_, err := NewRegistry(cat)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("NewRegistry() error = %v, want ErrInvalidCatalog", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
zones:
  - id: zone-window
    name: Window Bar
    noise_level: 40
    activity_type: work
    lighting_quality: 95
seats:
  - id: seat-w1
    zone_id: zone-window
    position: {x: 1.5, y: 2}
  - id: seat-w2
    zone_id: zone-window
    position: {x: 3, y: 2, z: 0.5}
    capacity: 2
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	r, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	s, err := r.GetSeat("seat-w2")
	if err != nil {
		t.Fatalf("GetSeat() error = %v", err)
	}
	if s.Position != (Point{X: 3, Y: 2, Z: 0.5}) || s.Capacity != 2 {
		t.Errorf("seat-w2 = %+v", s)
	}
	z, _ := r.GetZone("zone-window")
	if z.ActivityType != ActivityWork || z.LightingQuality != 95 {
		t.Errorf("zone-window = %+v", z)
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	if _, err := LoadCatalog("/nonexistent/catalog.yaml"); err == nil {
		t.Error("LoadCatalog() should fail for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("zones: [unclosed"), 0o600); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	if _, err := LoadCatalog(path); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("LoadCatalog() error = %v, want ErrInvalidCatalog", err)
	}
}

func TestPoint_Distance(t *testing.T) {
	tests := []struct {
		a, b Point
		want float64
	}{
		{Point{}, Point{X: 3, Y: 4}, 5},
		{Point{X: 1, Y: 1}, Point{X: 1, Y: 1}, 0},
		{Point{}, Point{X: 2, Y: 3, Z: 6}, 7},
	}
	for _, tt := range tests {
		if got := tt.a.Distance(tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%v.Distance(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
