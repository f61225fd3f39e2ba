package cafe

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/cafe-core/internal/proximity"
	"github.com/nerrad567/cafe-core/internal/recommend"
)

// batchConcurrency caps parallel scoring in GetRecommendationsBatch.
const batchConcurrency = 8

// GetNearbyUsers returns the users closest to userID, nearest first and
// capped by the proximity configuration. An absent user yields an empty list.
func (s *Service) GetNearbyUsers(userID string) []proximity.Entry {
	return proximity.Compute(userID, s.store.Snapshot(), s.proximity).Nearby
}

// GetAudioGains returns the gain of every in-range user relative to userID.
func (s *Service) GetAudioGains(userID string) map[string]float64 {
	return proximity.Compute(userID, s.store.Snapshot(), s.proximity).Gains
}

// GetProximity returns both proximity views from one snapshot.
func (s *Service) GetProximity(userID string) proximity.Result {
	return proximity.Compute(userID, s.store.Snapshot(), s.proximity)
}

// GetRecommendations ranks the free seats for profile. A limit <= 0
// returns every candidate.
func (s *Service) GetRecommendations(profile recommend.Profile, limit int) ([]recommend.Recommendation, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	recs := s.scorer.Recommend(profile, s.store.Snapshot(), s.registry)
	return truncate(recs, limit), nil
}

// GetRecommendationsBatch scores several profiles against the same
// snapshot in parallel. Results are returned in profile order. The first
// invalid profile fails the whole batch.
func (s *Service) GetRecommendationsBatch(ctx context.Context, profiles []recommend.Profile, limit int) ([][]recommend.Recommendation, error) {
	for i, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
	}

	snap := s.store.Snapshot()
	out := make([][]recommend.Recommendation, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, p := range profiles {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = truncate(s.scorer.Recommend(p, snap, s.registry), limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOccupancy reports how many seats of zoneID are held.
//
// Returns space.ErrZoneNotFound for an unknown zone.
func (s *Service) GetOccupancy(zoneID string) (Occupancy, error) {
	capacity, err := s.registry.ZoneCapacity(zoneID)
	if err != nil {
		return Occupancy{}, err
	}
	snap := s.store.Snapshot()
	counts := recommend.ZoneOccupants(snap, s.registry)
	return Occupancy{
		ZoneID:   zoneID,
		Occupied: counts[zoneID],
		Capacity: capacity,
		At:       snap.TakenAt(),
	}, nil
}

// ListOccupancy reports every zone in registry order.
func (s *Service) ListOccupancy() []Occupancy {
	snap := s.store.Snapshot()
	counts := recommend.ZoneOccupants(snap, s.registry)

	zones := s.registry.ListZones()
	out := make([]Occupancy, 0, len(zones))
	for _, z := range zones {
		capacity, err := s.registry.ZoneCapacity(z.ID)
		if err != nil {
			continue
		}
		out = append(out, Occupancy{
			ZoneID:   z.ID,
			Occupied: counts[z.ID],
			Capacity: capacity,
			At:       snap.TakenAt(),
		})
	}
	return out
}

func truncate(recs []recommend.Recommendation, limit int) []recommend.Recommendation {
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func occupancyAt(occ Occupancy, at time.Time) Occupancy {
	if !at.IsZero() {
		occ.At = at
	}
	return occ
}
