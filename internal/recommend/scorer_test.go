package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/cafe-core/internal/presence"
	"github.com/nerrad567/cafe-core/internal/space"
)

// cafeFixture has a quiet study zone with two free seats and a social hub
// with five seats, four of them taken.
func cafeFixture(t *testing.T) (*space.Registry, *presence.Snapshot) {
	t.Helper()

	reg, err := space.NewRegistry(space.Catalog{
		Zones: []space.Zone{
			{ID: "quiet-study", Name: "Quiet Study", NoiseLevel: 15, ActivityType: space.ActivityStudy, LightingQuality: 90},
			{ID: "social-hub", Name: "Social Hub", NoiseLevel: 70, ActivityType: space.ActivitySocial, LightingQuality: 60},
		},
		Seats: []space.Seat{
			{ID: "quiet-study-q1", ZoneID: "quiet-study"},
			{ID: "quiet-study-q2", ZoneID: "quiet-study"},
			{ID: "social-hub-b1", ZoneID: "social-hub"},
			{ID: "social-hub-b2", ZoneID: "social-hub"},
			{ID: "social-hub-b3", ZoneID: "social-hub"},
			{ID: "social-hub-b4", ZoneID: "social-hub"},
			{ID: "social-hub-b5", ZoneID: "social-hub"},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	snap := presence.NewSnapshot([]presence.UserPresence{
		{UserID: "u1", SeatID: "social-hub-b1"},
		{UserID: "u2", SeatID: "social-hub-b2"},
		{UserID: "u4", SeatID: "social-hub-b4"},
		{UserID: "u5", SeatID: "social-hub-b5"},
		{UserID: "wanderer"},
	}, time.Unix(0, 0))

	return reg, snap
}

func TestRecommend_Golden(t *testing.T) {
	reg, snap := cafeFixture(t)
	scorer := NewScorer(DefaultConfig())

	recs := scorer.Recommend(Profile{
		SocialLevel:     100,
		NoisePreference: 10,
		ActivityType:    space.ActivityStudy,
		WorkStyle:       WorkStyleFocused,
	}, snap, reg)

	type row struct {
		seat  string
		score int
	}
	var got []row
	for _, r := range recs {
		got = append(got, row{r.SeatID, r.Score})
	}
	want := []row{
		{"quiet-study-q1", 75},
		{"quiet-study-q2", 75},
		{"social-hub-b3", 69},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Recommend() = %v, want %v", got, want)
	}

	q1 := recs[0]
	if q1.AmbientScore != 95 {
		t.Errorf("quiet-study noise component = %v, want 95", q1.AmbientScore)
	}
	if q1.ComfortScore != 82.5 {
		t.Errorf("quiet-study comfort = %v, want 82.5", q1.ComfortScore)
	}
	wantReasons := []string{ReasonNoise, "Zone is set up for study", ReasonComfort, ReasonFocused}
	if !reflect.DeepEqual(q1.Reasons, wantReasons) {
		t.Errorf("reasons = %q, want %q", q1.Reasons, wantReasons)
	}

	b3 := recs[2]
	if b3.SocialScore != 100 || b3.Occupants != 4 {
		t.Errorf("social-hub-b3 social = %v occupants = %d, want 100/4", b3.SocialScore, b3.Occupants)
	}
	if !reflect.DeepEqual(b3.Reasons, []string{ReasonSocial}) {
		t.Errorf("social-hub-b3 reasons = %q", b3.Reasons)
	}
}

func TestRecommend_ExcludesOccupiedSeats(t *testing.T) {
	reg, snap := cafeFixture(t)
	recs := NewScorer(DefaultConfig()).Recommend(Profile{ActivityType: space.ActivitySocial}, snap, reg)

	for _, r := range recs {
		if _, held := snap.OccupantOf(r.SeatID); held {
			t.Errorf("occupied seat %s recommended", r.SeatID)
		}
	}
	if len(recs) != 3 {
		t.Errorf("got %d recommendations, want 3 free seats", len(recs))
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	reg, snap := cafeFixture(t)
	scorer := NewScorer(DefaultConfig())
	profile := Profile{SocialLevel: 40, NoisePreference: 40, ActivityType: space.ActivityWork, WorkStyle: WorkStyleCollaborative}

	first, err := json.Marshal(scorer.Recommend(profile, snap, reg))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, _ := json.Marshal(scorer.Recommend(profile, snap, reg))
		if string(again) != string(first) {
			t.Fatalf("run %d differs:\n%s\n%s", i, again, first)
		}
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	reg, err := space.NewRegistry(space.Catalog{})
	if err != nil {
		t.Fatal(err)
	}
	recs := NewScorer(DefaultConfig()).Recommend(Profile{}, presence.NewSnapshot(nil, time.Unix(0, 0)), reg)
	if recs == nil || len(recs) != 0 {
		t.Errorf("Recommend(empty) = %v, want empty slice", recs)
	}
}

func TestScore_WorkStyleBonus(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	zone := space.Zone{ID: "z", NoiseLevel: 50, ActivityType: space.ActivityWork, LightingQuality: 50}
	seat := space.Seat{ID: "s", ZoneID: "z"}

	tests := []struct {
		name      string
		style     WorkStyle
		occupants int
		wantBonus bool
	}{
		{"collaborative busy", WorkStyleCollaborative, 3, true},
		{"collaborative at threshold", WorkStyleCollaborative, 2, false},
		{"focused empty", WorkStyleFocused, 0, true},
		{"focused one other", WorkStyleFocused, 1, true},
		{"focused at threshold", WorkStyleFocused, 2, false},
		{"no style", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{SocialLevel: 50, NoisePreference: 50, ActivityType: space.ActivityWork, WorkStyle: tt.style}
			with := scorer.Score(p, seat, zone, tt.occupants)

			p.WorkStyle = ""
			without := scorer.Score(p, seat, zone, tt.occupants)

			diff := with.Score - without.Score
			if tt.wantBonus && diff != 15 {
				t.Errorf("bonus diff = %d, want 15", diff)
			}
			if !tt.wantBonus && diff != 0 {
				t.Errorf("bonus diff = %d, want 0", diff)
			}
		})
	}
}

func TestScore_SeatComfortOverride(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	zone := space.Zone{ID: "z", LightingQuality: 80, ActivityType: space.ActivityRelaxation}

	def := scorer.Score(Profile{}, space.Seat{ID: "a", ZoneID: "z"}, zone, 0)
	if def.ComfortScore != 77.5 {
		t.Errorf("default comfort = %v, want 77.5", def.ComfortScore)
	}
	over := scorer.Score(Profile{}, space.Seat{ID: "b", ZoneID: "z", Comfort: 100}, zone, 0)
	if over.ComfortScore != 90 {
		t.Errorf("override comfort = %v, want 90", over.ComfortScore)
	}
}

func TestScore_NovelActivityGetsPartialCredit(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	zone := space.Zone{ID: "z", ActivityType: space.ActivityWork}
	r := scorer.Score(Profile{ActivityType: "knitting"}, space.Seat{ID: "s", ZoneID: "z"}, zone, 0)
	if r.ActivityScore != 50 {
		t.Errorf("ActivityScore = %v, want 50", r.ActivityScore)
	}
}

func TestScore_BoundsAndReasons(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	styles := []WorkStyle{"", WorkStyleCollaborative, WorkStyleFocused}

	for social := 0; social <= 100; social += 20 {
		for noise := 0; noise <= 100; noise += 20 {
			for zoneNoise := 0; zoneNoise <= 100; zoneNoise += 25 {
				for occ := 0; occ <= 6; occ++ {
					for _, style := range styles {
						zone := space.Zone{ID: "z", NoiseLevel: zoneNoise, ActivityType: space.ActivityStudy, LightingQuality: 100 - zoneNoise}
						p := Profile{SocialLevel: social, NoisePreference: noise, ActivityType: space.ActivityStudy, WorkStyle: style}
						r := scorer.Score(p, space.Seat{ID: "s", ZoneID: "z"}, zone, occ)

						if r.Score < 0 || r.Score > 100 {
							t.Fatalf("score %d out of bounds for %+v occ=%d", r.Score, p, occ)
						}
						if r.Score > 70 && len(r.Reasons) == 0 {
							t.Fatalf("score %d without reasons for %+v occ=%d", r.Score, p, occ)
						}
					}
				}
			}
		}
	}
}

func TestScore_OverallReasonFallback(t *testing.T) {
	// Activity carries all the weight and mismatches, so no component
	// reason fires while the total still lands above the threshold.
	cfg := DefaultConfig()
	cfg.Weights = Weights{Activity: 1}
	cfg.ActivityMismatchScore = 80
	scorer := NewScorer(cfg)

	zone := space.Zone{ID: "z", NoiseLevel: 50, ActivityType: space.ActivityWork, LightingQuality: 0}
	r := scorer.Score(Profile{SocialLevel: 50, NoisePreference: 0, ActivityType: space.ActivitySocial}, space.Seat{ID: "s", ZoneID: "z"}, zone, 0)

	if r.Score != 80 {
		t.Fatalf("Score = %d, want 80", r.Score)
	}
	if !reflect.DeepEqual(r.Reasons, []string{ReasonOverall}) {
		t.Errorf("Reasons = %q, want [%s]", r.Reasons, ReasonOverall)
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		profile Profile
		wantErr bool
	}{
		{Profile{SocialLevel: 0, NoisePreference: 100, WorkStyle: WorkStyleFocused}, false},
		{Profile{ActivityType: "knitting"}, false},
		{Profile{SocialLevel: -1}, true},
		{Profile{NoisePreference: 101}, true},
		{Profile{WorkStyle: "chaotic"}, true},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate(%+v) error = %v, wantErr %v", tt.profile, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("error %v is not ErrInvalidProfile", err)
			}
		})
	}
}
