package space

import (
	"fmt"
	"strings"
)

// Validation limits for catalog entries.
const (
	maxIDLength   = 64
	maxNameLength = 100
	maxPercent    = 100
)

// validateZone checks a single zone's attributes.
func validateZone(z Zone) error {
	if err := validateID("zone", z.ID); err != nil {
		return err
	}
	if len(z.Name) > maxNameLength {
		return fmt.Errorf("zone %s: name exceeds %d characters", z.ID, maxNameLength)
	}
	if z.NoiseLevel < 0 || z.NoiseLevel > maxPercent {
		return fmt.Errorf("zone %s: noise_level %d outside 0..100", z.ID, z.NoiseLevel)
	}
	if z.LightingQuality < 0 || z.LightingQuality > maxPercent {
		return fmt.Errorf("zone %s: lighting_quality %d outside 0..100", z.ID, z.LightingQuality)
	}
	if !ValidActivityType(string(z.ActivityType)) {
		return fmt.Errorf("zone %s: unknown activity_type %q", z.ID, z.ActivityType)
	}
	return nil
}

// validateSeat checks a single seat's attributes. Zone membership is
// checked separately because it needs the full zone set.
func validateSeat(s Seat) error {
	if err := validateID("seat", s.ID); err != nil {
		return err
	}
	if s.Capacity < 0 {
		return fmt.Errorf("seat %s: capacity cannot be negative", s.ID)
	}
	if s.Comfort < 0 || s.Comfort > maxPercent {
		return fmt.Errorf("seat %s: comfort %d outside 0..100", s.ID, s.Comfort)
	}
	if !s.Position.IsFinite() {
		return fmt.Errorf("seat %s: position must be finite", s.ID)
	}
	return nil
}

func validateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s id cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s %s: id exceeds %d characters", kind, id, maxIDLength)
	}
	return nil
}
