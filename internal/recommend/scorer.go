package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/space"
)

// Component thresholds above which a reason is attached.
const (
	socialReasonAbove  = 80
	noiseReasonAbove   = 85
	comfortReasonAbove = 80
)

// Reason strings, appended in this order.
const (
	ReasonSocial        = "Crowd level matches your social preference"
	ReasonNoise         = "Noise level suits you"
	ReasonActivity      = "Zone is set up for %s"
	ReasonComfort       = "Comfortable seating with good lighting"
	ReasonCollaborative = "Lively zone for collaborative work"
	ReasonFocused       = "Quiet zone for focused work"
	ReasonOverall       = "Strong overall match"
)

// Weights are the relative importance of each scored dimension.
type Weights struct {
	Social   float64
	Noise    float64
	Activity float64
	Comfort  float64
}

// Config tunes the scoring heuristics.
type Config struct {
	Weights Weights

	// OccupancyPerUser converts a zone's occupant count into a crowd
	// level, clamped to 100.
	OccupancyPerUser float64

	// ActivityMismatchScore is the partial credit for a zone whose
	// activity type differs from the profile's.
	ActivityMismatchScore float64

	// BaseComfort is averaged with lighting when a seat has no comfort
	// value of its own.
	BaseComfort float64

	// WorkStyleBonus is the flat, unweighted adjustment.
	WorkStyleBonus float64

	// CollaborativeMinOccupants: collaborative users get the bonus when a
	// zone has more occupants than this.
	CollaborativeMinOccupants int

	// FocusedMaxOccupants: focused users get the bonus when a zone has
	// fewer occupants than this.
	FocusedMaxOccupants int

	// ReasonThreshold is the score above which at least one reason is
	// always present.
	ReasonThreshold float64
}

// DefaultConfig returns the reference heuristics.
func DefaultConfig() Config {
	return Config{
		Weights:                   Weights{Social: 0.35, Noise: 0.25, Activity: 0.20, Comfort: 0.20},
		OccupancyPerUser:          25,
		ActivityMismatchScore:     50,
		BaseComfort:               75,
		WorkStyleBonus:            15,
		CollaborativeMinOccupants: 2,
		FocusedMaxOccupants:       2,
		ReasonThreshold:           70,
	}
}

// Scorer ranks seats. It holds no mutable state.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given heuristics.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scorer's heuristics.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Recommend scores every unoccupied seat for profile against snap and
// returns them best first. An empty catalog yields an empty slice.
func (s *Scorer) Recommend(profile Profile, snap *presence.Snapshot, catalog Catalog) []Recommendation {
	occupants := ZoneOccupants(snap, catalog)
	zones := make(map[string]space.Zone)

	seats := catalog.ListAllSeats()
	recs := make([]Recommendation, 0, len(seats))
	for _, seat := range seats {
		if snap != nil {
			if _, held := snap.OccupantOf(seat.ID); held {
				continue
			}
		}
		zone, ok := zones[seat.ZoneID]
		if !ok {
			z, err := catalog.GetZone(seat.ZoneID)
			if err != nil {
				// The registry guarantees zone membership; skip rather than fail.
				continue
			}
			zone = z
			zones[seat.ZoneID] = z
		}
		recs = append(recs, s.Score(profile, seat, zone, occupants[seat.ZoneID]))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].SeatID < recs[j].SeatID
	})
	return recs
}

// Score computes a single seat's recommendation given the number of
// occupants currently in its zone.
func (s *Scorer) Score(profile Profile, seat space.Seat, zone space.Zone, occupants int) Recommendation {
	cfg := s.cfg

	occupancy := math.Min(float64(occupants)*cfg.OccupancyPerUser, 100)
	social := 100 - math.Abs(float64(profile.SocialLevel)-occupancy)
	noise := 100 - math.Abs(float64(profile.NoisePreference-zone.NoiseLevel))

	activityMatch := profile.ActivityType == zone.ActivityType
	activity := cfg.ActivityMismatchScore
	if activityMatch {
		activity = 100
	}

	baseComfort := cfg.BaseComfort
	if seat.Comfort > 0 {
		baseComfort = float64(seat.Comfort)
	}
	comfort := (float64(zone.LightingQuality) + baseComfort) / 2

	var bonus float64
	var bonusReason string
	switch {
	case profile.WorkStyle == WorkStyleCollaborative && occupants > cfg.CollaborativeMinOccupants:
		bonus, bonusReason = cfg.WorkStyleBonus, ReasonCollaborative
	case profile.WorkStyle == WorkStyleFocused && occupants < cfg.FocusedMaxOccupants:
		bonus, bonusReason = cfg.WorkStyleBonus, ReasonFocused
	}

	w := cfg.Weights
	sum := social*w.Social + noise*w.Noise + activity*w.Activity + comfort*w.Comfort + bonus
	total := int(math.Round(clamp(sum, 0, 100)))

	var reasons []string
	if social > socialReasonAbove {
		reasons = append(reasons, ReasonSocial)
	}
	if noise > noiseReasonAbove {
		reasons = append(reasons, ReasonNoise)
	}
	if activityMatch {
		reasons = append(reasons, activityReason(zone.ActivityType))
	}
	if comfort > comfortReasonAbove {
		reasons = append(reasons, ReasonComfort)
	}
	if bonusReason != "" {
		reasons = append(reasons, bonusReason)
	}
	if len(reasons) == 0 && float64(total) > cfg.ReasonThreshold {
		reasons = append(reasons, ReasonOverall)
	}
	if reasons == nil {
		reasons = []string{}
	}

	return Recommendation{
		SeatID:        seat.ID,
		ZoneID:        zone.ID,
		Score:         total,
		SocialScore:   social,
		AmbientScore:  noise,
		ActivityScore: activity,
		ComfortScore:  comfort,
		Occupants:     occupants,
		Reasons:       reasons,
	}
}

// ZoneOccupants counts seated users per zone in snap.
func ZoneOccupants(snap *presence.Snapshot, catalog Catalog) map[string]int {
	counts := make(map[string]int)
	if snap == nil {
		return counts
	}
	for _, p := range snap.Users() {
		if !p.Seated() {
			continue
		}
		seat, err := catalog.GetSeat(p.SeatID)
		if err != nil {
			continue
		}
		counts[seat.ZoneID]++
	}
	return counts
}

func activityReason(a space.ActivityType) string {
	return fmt.Sprintf(ReasonActivity, a)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
