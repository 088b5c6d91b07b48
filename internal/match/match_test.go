package match

import (
	"testing"
	"time"

	"github.com/example/airpool/internal/models"
)

var now = time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)

// baseRequest returns a pending JFK request created an hour ago, departing an
// hour from now. Tests override fields as needed.
func baseRequest(id, userID string) models.RideRequest {
	return models.RideRequest{
		ID:            id,
		UserID:        userID,
		UserName:      "user " + userID,
		Airport:       "JFK",
		Pickup:        models.Coord{Lat: 40.8075, Lon: -73.9626},
		PickupAddress: "116th & Broadway",
		DepartureTime: now.Add(time.Hour),
		Baggage:       models.BaggageMedium,
		Gender:        models.GenderFemale,
		GenderPref:    models.PrefAny,
		Status:        models.StatusPending,
		CreatedAt:     now.Add(-time.Hour),
	}
}

func baseQuery() models.MatchQuery {
	return models.MatchQuery{
		UserID:        "me",
		UserGender:    models.GenderMale,
		Airport:       "JFK",
		Pickup:        models.Coord{Lat: 40.8075, Lon: -73.9626},
		DepartureTime: now.Add(time.Hour),
		GenderPref:    models.PrefAny,
	}
}

// pool always includes the querying user's own active request so the
// self-eligibility gate passes unless a test removes it.
func poolWith(others ...models.RideRequest) []models.RideRequest {
	pool := []models.RideRequest{baseRequest("own", "me")}
	return append(pool, others...)
}

func ids(r Result) []string {
	out := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		out = append(out, m.RequesterID)
	}
	return out
}

func TestNeverMatchesSelf(t *testing.T) {
	own2 := baseRequest("own2", "me")
	res := Select(now, poolWith(own2), baseQuery())
	if res.NoActiveRequest {
		t.Fatal("gate should pass")
	}
	if len(res.Matches) != 0 {
		t.Fatalf("own requests leaked into matches: %v", ids(res))
	}
}

func TestStatusFilter(t *testing.T) {
	accepted := baseRequest("r1", "alice")
	accepted.Status = models.StatusAccepted
	rejected := baseRequest("r2", "bob")
	rejected.Status = models.StatusRejected
	pending := baseRequest("r3", "carol")

	res := Select(now, poolWith(accepted, rejected, pending), baseQuery())
	if got := ids(res); len(got) != 1 || got[0] != "carol" {
		t.Fatalf("expected only carol, got %v", got)
	}
}

func TestAirportExactMatch(t *testing.T) {
	lga := baseRequest("r1", "alice")
	lga.Airport = "LGA"
	res := Select(now, poolWith(lga), baseQuery())
	if len(res.Matches) != 0 {
		t.Fatalf("LGA request matched a JFK query: %v", ids(res))
	}
}

func TestGenderPreferenceBothDirections(t *testing.T) {
	// Query accepts only female candidates; the female candidate requires
	// male partners. Querying user is female here, so her direction fails.
	q := baseQuery()
	q.UserGender = models.GenderFemale
	q.GenderPref = models.PrefFemale

	cand := baseRequest("r1", "alice")
	cand.Gender = models.GenderFemale
	cand.GenderPref = models.PrefMale

	res := Select(now, poolWith(cand), q)
	if len(res.Matches) != 0 {
		t.Fatalf("asymmetric preference should exclude, got %v", ids(res))
	}

	// Same candidate with no preference of her own is fine.
	cand.GenderPref = models.PrefAny
	res = Select(now, poolWith(cand), q)
	if got := ids(res); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("expected alice, got %v", got)
	}

	// And the candidate's preference alone can exclude a no-preference query.
	q2 := baseQuery() // male, no preference
	cand2 := baseRequest("r2", "bob")
	cand2.Gender = models.GenderMale
	cand2.GenderPref = models.PrefFemale
	res = Select(now, poolWith(cand2), q2)
	if len(res.Matches) != 0 {
		t.Fatalf("candidate preference should exclude male querier, got %v", ids(res))
	}
}

func TestTimeWindowBoundary(t *testing.T) {
	at120 := baseRequest("r1", "alice")
	at120.DepartureTime = baseQuery().DepartureTime.Add(120 * time.Minute)
	at121 := baseRequest("r2", "bob")
	at121.DepartureTime = baseQuery().DepartureTime.Add(121 * time.Minute)

	res := Select(now, poolWith(at120, at121), baseQuery())
	if got := ids(res); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("expected only the 120-minute candidate, got %v", got)
	}
}

func TestStalenessBoundaries(t *testing.T) {
	fresh := baseRequest("r1", "alice")
	fresh.CreatedAt = now.Add(-(23*time.Hour + 59*time.Minute))
	tooOld := baseRequest("r2", "bob")
	tooOld.CreatedAt = now.Add(-(24*time.Hour + time.Minute))

	res := Select(now, poolWith(fresh, tooOld), baseQuery())
	if got := ids(res); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("creation-age rule: expected only alice, got %v", got)
	}

	justLeft := baseRequest("r3", "carol")
	justLeft.DepartureTime = now.Add(-14 * time.Minute)
	longGone := baseRequest("r4", "dave")
	longGone.DepartureTime = now.Add(-16 * time.Minute)

	q := baseQuery()
	q.DepartureTime = now // keep both inside the 120-minute window
	res = Select(now, poolWith(justLeft, longGone), q)
	if got := ids(res); len(got) != 1 || got[0] != "carol" {
		t.Fatalf("departure-lag rule: expected only carol, got %v", got)
	}
}

func TestDeduplicationKeepsNewest(t *testing.T) {
	older := baseRequest("r1", "alice")
	older.CreatedAt = now.Add(-3 * time.Hour)
	older.PickupAddress = "old address"
	newer := baseRequest("r2", "alice")
	newer.CreatedAt = now.Add(-30 * time.Minute)
	newer.PickupAddress = "new address"

	res := Select(now, poolWith(older, newer), baseQuery())
	if len(res.Matches) != 1 {
		t.Fatalf("expected 1 deduped match, got %d", len(res.Matches))
	}
	if res.Matches[0].PickupAddress != "new address" {
		t.Fatalf("kept the older duplicate: %q", res.Matches[0].PickupAddress)
	}

	// Same outcome with insertion order reversed.
	res = Select(now, poolWith(newer, older), baseQuery())
	if len(res.Matches) != 1 || res.Matches[0].PickupAddress != "new address" {
		t.Fatal("dedup depends on pool order")
	}
}

func TestDedupFallsBackToDepartureTime(t *testing.T) {
	a := baseRequest("r1", "alice")
	a.CreatedAt = time.Time{}
	a.DepartureTime = now.Add(30 * time.Minute)
	a.PickupAddress = "earlier"
	b := baseRequest("r2", "alice")
	b.CreatedAt = time.Time{}
	b.DepartureTime = now.Add(90 * time.Minute)
	b.PickupAddress = "later"

	res := Select(now, poolWith(a, b), baseQuery())
	if len(res.Matches) != 1 || res.Matches[0].PickupAddress != "later" {
		t.Fatalf("expected departure-time fallback to keep the later row, got %+v", res.Matches)
	}
}

func TestSelfEligibilityGate(t *testing.T) {
	cand := baseRequest("r1", "alice")

	// No own request at all.
	res := Select(now, []models.RideRequest{cand}, baseQuery())
	if !res.NoActiveRequest {
		t.Fatal("expected NoActiveRequest with no own request")
	}
	if len(res.Matches) != 0 {
		t.Fatalf("gate failure must return no matches, got %v", ids(res))
	}

	// Own request exists but is accepted.
	own := baseRequest("own", "me")
	own.Status = models.StatusAccepted
	res = Select(now, []models.RideRequest{own, cand}, baseQuery())
	if !res.NoActiveRequest {
		t.Fatal("accepted own request must not satisfy the gate")
	}

	// Own request exists but is stale by creation age.
	own = baseRequest("own", "me")
	own.CreatedAt = now.Add(-25 * time.Hour)
	res = Select(now, []models.RideRequest{own, cand}, baseQuery())
	if !res.NoActiveRequest {
		t.Fatal("stale own request must not satisfy the gate")
	}

	// Own request exists but its departure is long past.
	own = baseRequest("own", "me")
	own.DepartureTime = now.Add(-30 * time.Minute)
	res = Select(now, []models.RideRequest{own, cand}, baseQuery())
	if !res.NoActiveRequest {
		t.Fatal("departed own request must not satisfy the gate")
	}
}

func TestScoringDeterministicOrdering(t *testing.T) {
	near := baseRequest("r1", "alice")
	near.Pickup = models.Coord{Lat: 40.8076, Lon: -73.9627}
	far := baseRequest("r2", "bob")
	far.Pickup = models.Coord{Lat: 40.75, Lon: -73.99}
	far.DepartureTime = baseQuery().DepartureTime.Add(90 * time.Minute)

	first := Select(now, poolWith(near, far), baseQuery())
	for i := 0; i < 5; i++ {
		again := Select(now, poolWith(near, far), baseQuery())
		if len(again.Matches) != len(first.Matches) {
			t.Fatal("non-deterministic match count")
		}
		for j := range again.Matches {
			if again.Matches[j].RequesterID != first.Matches[j].RequesterID || again.Matches[j].Score != first.Matches[j].Score {
				t.Fatalf("run %d diverged at %d: %+v vs %+v", i, j, again.Matches[j], first.Matches[j])
			}
		}
	}
	if got := ids(first); got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("expected alice before bob, got %v", got)
	}
	if first.Matches[0].Score <= first.Matches[1].Score {
		t.Fatalf("scores not descending: %d then %d", first.Matches[0].Score, first.Matches[1].Score)
	}
}

func TestEqualScoresKeepPoolOrder(t *testing.T) {
	a := baseRequest("r1", "alice")
	b := baseRequest("r2", "bob")
	res := Select(now, poolWith(a, b), baseQuery())
	if got := ids(res); len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("tie order should follow pool order, got %v", got)
	}
}

func TestEndToEndExample(t *testing.T) {
	q := models.MatchQuery{
		UserID:        "me",
		UserGender:    models.GenderFemale,
		Airport:       "JFK",
		Pickup:        models.Coord{Lat: 40.8075, Lon: -73.9626},
		DepartureTime: time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
		GenderPref:    models.PrefAny,
	}
	cand := models.RideRequest{
		ID:            "r1",
		UserID:        "alice",
		Airport:       "JFK",
		Pickup:        models.Coord{Lat: 40.8090, Lon: -73.9612},
		DepartureTime: time.Date(2024, 1, 1, 18, 10, 0, 0, time.UTC),
		Status:        models.StatusPending,
		GenderPref:    models.PrefAny,
		CreatedAt:     now,
	}
	own := baseRequest("own", "me")
	own.DepartureTime = q.DepartureTime

	res := Select(now, []models.RideRequest{own, cand}, q)
	if len(res.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(res.Matches))
	}
	m := res.Matches[0]
	// ~0.13 miles apart and a 10-minute gap: distanceScore ~44, timeScore
	// ~47, total ~91 give or take haversine precision.
	if m.Score < 88 || m.Score > 93 {
		t.Fatalf("expected score near 91, got %d (%.3f miles)", m.Score, m.DistanceMiles)
	}
}

func TestScoreFloorsAtZeroComponents(t *testing.T) {
	if s := Score(0, 0); s != 100 {
		t.Fatalf("perfect match should score 100, got %d", s)
	}
	// Two miles out: distance component floors at 0 instead of going negative.
	if s := Score(2, 0); s != 50 {
		t.Fatalf("expected 50, got %d", s)
	}
	if s := Score(0, 10*time.Minute); s != 97 {
		t.Fatalf("expected 97, got %d", s)
	}
}
