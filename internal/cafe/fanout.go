package cafe

import (
	"context"
	"time"

	"github.com/nerrad567/cafe-core/internal/presence"
)

const publishTimeout = 5 * time.Second

// enqueue runs on the store owner goroutine and must not block.
func (s *Service) enqueue(c presence.Change) {
	select {
	case s.changes <- c:
	default:
		n := s.dropped.Add(1)
		s.logger.Warn("change queue full, dropping change",
			"kind", string(c.Kind),
			"user_id", c.UserID,
			"dropped_total", n,
		)
	}
}

// fanOut delivers queued changes until ctx is cancelled.
func (s *Service) fanOut(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-s.changes:
			s.dispatch(ctx, c)
		}
	}
}

// dispatch publishes one change and, when it moved a seat, the occupancy
// of every zone it touched.
func (s *Service) dispatch(ctx context.Context, c presence.Change) {
	s.pubMu.RLock()
	pubs := append([]Publisher(nil), s.publishers...)
	metrics := s.metrics
	s.pubMu.RUnlock()

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	for _, p := range pubs {
		if err := p.PublishChange(pctx, c); err != nil {
			s.logger.Warn("publishing presence change failed", "kind", string(c.Kind), "user_id", c.UserID, "error", err)
		}
	}

	for _, zoneID := range s.affectedZones(c) {
		occ, err := s.GetOccupancy(zoneID)
		if err != nil {
			continue
		}
		occ = occupancyAt(occ, c.At)
		if metrics != nil {
			metrics.WriteZoneOccupancy(occ.ZoneID, occ.Occupied, occ.Capacity, occ.At)
		}
		for _, p := range pubs {
			if err := p.PublishOccupancy(pctx, occ); err != nil {
				s.logger.Warn("publishing zone occupancy failed", "zone_id", zoneID, "error", err)
			}
		}
	}
}

// affectedZones returns the distinct zones whose occupancy c changed,
// new seat first. Occupancy is read from the latest snapshot, which may
// already include later changes.
func (s *Service) affectedZones(c presence.Change) []string {
	switch c.Kind {
	case presence.ChangeSeat, presence.ChangeLeave, presence.ChangeExpire:
	default:
		return nil
	}

	var zones []string
	for _, seatID := range []string{c.SeatID, c.PreviousSeatID} {
		if seatID == "" {
			continue
		}
		zone, err := s.registry.ZoneOf(seatID)
		if err != nil {
			continue
		}
		if len(zones) == 1 && zones[0] == zone.ID {
			continue
		}
		zones = append(zones, zone.ID)
	}
	return zones
}
