package models

import "time"

type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non-binary"
)

// GenderPref is a partner preference; PrefAny means no preference.
type GenderPref string

const (
	PrefAny       GenderPref = "no-preference"
	PrefMale      GenderPref = "male"
	PrefFemale    GenderPref = "female"
	PrefNonBinary GenderPref = "non-binary"
)

type BaggageSize string

const (
	BaggageSmall  BaggageSize = "small"
	BaggageMedium BaggageSize = "medium"
	BaggageLarge  BaggageSize = "large"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// RideRequest is one user's outstanding intent to travel to an airport.
type RideRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
	Airport       string        `json:"airport"`
	Pickup        Coord         `json:"pickup"`
	PickupAddress string        `json:"pickup_address"`
	DepartureTime time.Time     `json:"departure_time"`
	Baggage       BaggageSize   `json:"baggage"`
	Gender        Gender        `json:"gender"`
	GenderPref    GenderPref    `json:"gender_preference"`
	Status        RequestStatus `json:"status"`
	AcceptedBy    string        `json:"accepted_by,omitempty"`
	AcceptedName  string        `json:"accepted_by_name,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// MatchQuery carries the querying user's own trip parameters at match time.
type MatchQuery struct {
	UserID        string     `json:"user_id"`
	UserGender    Gender     `json:"user_gender"`
	Airport       string     `json:"airport"`
	Pickup        Coord      `json:"pickup"`
	DepartureTime time.Time  `json:"departure_time"`
	GenderPref    GenderPref `json:"gender_preference"`
}

// Match is a display-ready candidate projection. Never persisted.
type Match struct {
	RequesterID   string      `json:"requester_id"`
	RequesterName string      `json:"requester_name"`
	PickupAddress string      `json:"pickup_address"`
	Pickup        Coord       `json:"pickup"`
	DepartureTime time.Time   `json:"departure_time"`
	Baggage       BaggageSize `json:"baggage"`
	Gender        Gender      `json:"gender"`
	GenderPref    GenderPref  `json:"gender_preference"`
	CreatedAt     time.Time   `json:"created_at"`
	DistanceMiles float64     `json:"distance_miles"`
	DistanceLabel string      `json:"distance_label"`
	Score         int         `json:"match_score"`
}

type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ThreadID string    `json:"thread_id"`
	SenderID string    `json:"sender_id"`
	To       string    `json:"to"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// RideEvent is the lifecycle record published to the event pipeline.
type RideEvent struct {
	Type      string    `json:"type"` // requested, accepted, rejected, canceled
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id"`
	Airport   string    `json:"airport"`
	At        time.Time `json:"at"`
}
