package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/cafe-core/internal/reservation"
	"github.com/nerrad567/cafe-core/internal/space"
)

// seatView is a seat with its live state.
type seatView struct {
	space.Seat
	State    reservation.State `json:"state"`
	Occupant string            `json:"occupant,omitempty"`
}

// zoneView is a zone with its total capacity.
type zoneView struct {
	space.Zone
	Capacity int `json:"capacity"`
	Seats    int `json:"seats"`
}

func (s *Server) handleListZones(w http.ResponseWriter, _ *http.Request) {
	reg := s.svc.Registry()
	zones := reg.ListZones()
	out := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		out = append(out, s.zoneView(z))
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": out, "count": len(out)})
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	z, err := s.svc.Registry().GetZone(chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.zoneView(z))
}

func (s *Server) handleListZoneSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := s.svc.Registry().ListSeatsByZone(chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeSeats(w, seats)
}

func (s *Server) handleListSeats(w http.ResponseWriter, _ *http.Request) {
	s.writeSeats(w, s.svc.Registry().ListAllSeats())
}

func (s *Server) handleGetSeat(w http.ResponseWriter, r *http.Request) {
	seat, err := s.svc.Registry().GetSeat(chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	snap := s.svc.Snapshot()
	writeJSON(w, http.StatusOK, s.seatView(seat, snap.OccupantOf))
}

func (s *Server) handleListOccupancy(w http.ResponseWriter, _ *http.Request) {
	occ := s.svc.ListOccupancy()
	writeJSON(w, http.StatusOK, map[string]any{"zones": occ, "count": len(occ)})
}

func (s *Server) handleGetOccupancy(w http.ResponseWriter, r *http.Request) {
	occ, err := s.svc.GetOccupancy(chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

func (s *Server) writeSeats(w http.ResponseWriter, seats []space.Seat) {
	snap := s.svc.Snapshot()
	out := make([]seatView, 0, len(seats))
	for _, seat := range seats {
		out = append(out, s.seatView(seat, snap.OccupantOf))
	}
	writeJSON(w, http.StatusOK, map[string]any{"seats": out, "count": len(out)})
}

// seatView reads the pending flag from the reservation machine and the
// occupant from the snapshot the caller already holds.
func (s *Server) seatView(seat space.Seat, occupant func(string) (string, bool)) seatView {
	v := seatView{Seat: seat, State: reservation.StateAvailable}
	if st, err := s.svc.SeatState(seat.ID); err == nil {
		v.State = st
	}
	if u, ok := occupant(seat.ID); ok {
		v.Occupant = u
	}
	return v
}

func (s *Server) zoneView(z space.Zone) zoneView {
	reg := s.svc.Registry()
	capacity, _ := reg.ZoneCapacity(z.ID)
	seats, _ := reg.ListSeatsByZone(z.ID)
	return zoneView{Zone: z, Capacity: capacity, Seats: len(seats)}
}
