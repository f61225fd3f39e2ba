// Package proximity derives spatial-audio gains and "nearby users" lists
// from a presence snapshot.
//
// Compute is a pure function: the same snapshot and reference user always
// produce the same Result, so it is safe to call concurrently for many
// reference users.
package proximity

import (
	"sort"

	"github.com/nerrad567/cafe-core/internal/presence"
)

// Reference defaults.
const (
	DefaultMaxRadius = 10.0
	DefaultNearbyCap = 5
)

// Config controls range and list size.
type Config struct {
	// MaxRadius is the audio radius. Users at or beyond it get gain 0 and
	// are excluded from the result.
	MaxRadius float64

	// NearbyCap truncates the nearby list. Zero means unbounded.
	NearbyCap int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{MaxRadius: DefaultMaxRadius, NearbyCap: DefaultNearbyCap}
}

// Entry is one remote participant relative to the reference user.
type Entry struct {
	UserID   string  `json:"user_id"`
	Distance float64 `json:"distance"`
	Gain     float64 `json:"gain"`
}

// Result holds both consumer views of a proximity computation.
type Result struct {
	// Nearby is ordered by ascending distance, ties broken by user ID,
	// and truncated to Config.NearbyCap.
	Nearby []Entry `json:"nearby"`

	// Gains maps every in-range user to its gain.
	Gains map[string]float64 `json:"gains"`
}

// Gain maps a distance to an attenuation factor in [0, 1]:
// clamp(1 - distance/maxRadius, 0, 1). A non-positive radius yields 0.
func Gain(distance, maxRadius float64) float64 {
	if maxRadius <= 0 {
		return 0
	}
	g := 1 - distance/maxRadius
	switch {
	case g < 0:
		return 0
	case g > 1:
		return 1
	default:
		return g
	}
}

// Compute returns the proximity view for refUserID. A reference user that
// is not in the snapshot yields an empty Result.
func Compute(refUserID string, snap *presence.Snapshot, cfg Config) Result {
	res := Result{Nearby: []Entry{}, Gains: map[string]float64{}}
	if snap == nil {
		return res
	}
	ref, ok := snap.Get(refUserID)
	if !ok {
		return res
	}

	for _, p := range snap.Users() {
		if p.UserID == refUserID {
			continue
		}
		d := ref.Position.Distance(p.Position)
		if d >= cfg.MaxRadius {
			continue
		}
		g := Gain(d, cfg.MaxRadius)
		res.Nearby = append(res.Nearby, Entry{UserID: p.UserID, Distance: d, Gain: g})
		res.Gains[p.UserID] = g
	}

	sort.SliceStable(res.Nearby, func(i, j int) bool {
		a, b := res.Nearby[i], res.Nearby[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.UserID < b.UserID
	})

	if cfg.NearbyCap > 0 && len(res.Nearby) > cfg.NearbyCap {
		res.Nearby = res.Nearby[:cfg.NearbyCap]
	}
	return res
}
