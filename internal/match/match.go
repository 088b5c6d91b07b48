package match

import (
	"math"
	"sort"
	"time"

	"github.com/example/airpool/internal/geo"
	"github.com/example/airpool/internal/models"
	"github.com/example/airpool/internal/observability"
)

const (
	// MaxRequestAge is how long a request row stays matchable after creation.
	MaxRequestAge = 24 * time.Hour
	// MaxDepartureLag is how far past its departure time a request stays matchable.
	MaxDepartureLag = 15 * time.Minute
	// MaxTimeGap is the widest departure-time difference between partners.
	MaxTimeGap = 120 * time.Minute
)

// Result is the selector outcome. NoActiveRequest and an empty Matches list
// are distinct: the former means the querying user has no pending, non-stale
// request of their own and was never shown the pool.
type Result struct {
	NoActiveRequest bool           `json:"no_active_request"`
	Matches         []models.Match `json:"matches"`
}

// Select returns ride-share candidates for q out of pool, one per requester,
// scored and sorted best-first. pool is a read-only snapshot; Select never
// mutates it. now is injected so staleness boundaries are testable.
func Select(now time.Time, pool []models.RideRequest, q models.MatchQuery) Result {
	if !hasActiveRequest(now, pool, q.UserID) {
		return Result{NoActiveRequest: true, Matches: []models.Match{}}
	}

	// Dedup map keyed by requester; order preserves first-seen requester so
	// equal scores sort deterministically.
	latest := make(map[string]models.RideRequest)
	order := make([]string, 0, len(pool))
	for _, r := range pool {
		if !viableCandidate(now, r, q) {
			continue
		}
		prev, seen := latest[r.UserID]
		if !seen {
			order = append(order, r.UserID)
			latest[r.UserID] = r
			continue
		}
		if effectiveTime(r).After(effectiveTime(prev)) {
			latest[r.UserID] = r
		}
	}

	matches := make([]models.Match, 0, len(order))
	for _, uid := range order {
		matches = append(matches, project(latest[uid], q))
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	observability.MatchQueriesTotal.Inc()
	observability.MatchCandidates.Observe(float64(len(matches)))
	return Result{Matches: matches}
}

// hasActiveRequest is the self-eligibility gate: the querying user must have
// at least one pending, non-stale request of their own.
func hasActiveRequest(now time.Time, pool []models.RideRequest, userID string) bool {
	for _, r := range pool {
		if r.UserID == userID && r.Status == models.StatusPending && !stale(now, r) {
			return true
		}
	}
	return false
}

func viableCandidate(now time.Time, r models.RideRequest, q models.MatchQuery) bool {
	if r.UserID == q.UserID {
		return false
	}
	if r.Status != models.StatusPending {
		return false
	}
	if r.Airport != q.Airport {
		return false
	}
	// Preference holds in both directions independently.
	if q.GenderPref != models.PrefAny && models.GenderPref(r.Gender) != q.GenderPref {
		return false
	}
	if r.GenderPref != models.PrefAny && models.GenderPref(q.UserGender) != r.GenderPref {
		return false
	}
	if absDuration(q.DepartureTime.Sub(r.DepartureTime)) > MaxTimeGap {
		return false
	}
	return !stale(now, r)
}

// stale applies both staleness rules independently: record age over 24 hours,
// or departure more than 15 minutes in the past.
func stale(now time.Time, r models.RideRequest) bool {
	// A row without a creation timestamp cannot fail the age rule.
	if !r.CreatedAt.IsZero() && now.Sub(r.CreatedAt) > MaxRequestAge {
		return true
	}
	if now.Sub(r.DepartureTime) > MaxDepartureLag {
		return true
	}
	return false
}

// effectiveTime orders duplicate rows from one requester: newest CreatedAt
// wins, falling back to DepartureTime for rows without one.
func effectiveTime(r models.RideRequest) time.Time {
	if r.CreatedAt.IsZero() {
		return r.DepartureTime
	}
	return r.CreatedAt
}

func project(r models.RideRequest, q models.MatchQuery) models.Match {
	miles := geo.HaversineMiles(q.Pickup.Lat, q.Pickup.Lon, r.Pickup.Lat, r.Pickup.Lon)
	return models.Match{
		RequesterID:   r.UserID,
		RequesterName: r.UserName,
		PickupAddress: r.PickupAddress,
		Pickup:        r.Pickup,
		DepartureTime: r.DepartureTime,
		Baggage:       r.Baggage,
		Gender:        r.Gender,
		GenderPref:    r.GenderPref,
		CreatedAt:     r.CreatedAt,
		DistanceMiles: miles,
		DistanceLabel: geo.DistanceLabel(miles),
		Score:         Score(miles, absDuration(q.DepartureTime.Sub(r.DepartureTime))),
	}
}

// Score combines pickup proximity and departure-time proximity into a 0-100ish
// integer. Distance contributes up to 50 points, gone by one mile out; time
// contributes up to 50, decaying 5 points per 15 minutes of gap.
func Score(miles float64, timeGap time.Duration) int {
	distanceScore := math.Max(0, 50-miles*50)
	gapMin := timeGap.Minutes()
	timeScore := math.Max(0, 50-(gapMin/15)*5)
	return int(math.Round(distanceScore + timeScore))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
