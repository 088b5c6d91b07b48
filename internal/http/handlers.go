package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/example/airpool/internal/match"
	"github.com/example/airpool/internal/models"
	"github.com/example/airpool/internal/observability"
	"github.com/example/airpool/internal/payments"
	"github.com/example/airpool/internal/storage"
)

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p.UserID == "" || p.Name == "" {
		http.Error(w, "user_id and name are required", http.StatusBadRequest)
		return
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if err := s.records.SaveProfile(r.Context(), p); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.records.GetProfile(r.Context(), mux.Vars(r)["user_id"])
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	existing, err := s.records.GetProfile(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.UserID = userID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()
	if err := s.records.SaveProfile(r.Context(), p); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type createRequestPayload struct {
	UserID        string             `json:"user_id"`
	UserName      string             `json:"user_name"`
	Airport       string             `json:"airport"`
	Pickup        models.Coord       `json:"pickup"`
	PickupAddress string             `json:"pickup_address"`
	DepartureTime time.Time          `json:"departure_time"`
	Baggage       models.BaggageSize `json:"baggage"`
	Gender        models.Gender      `json:"gender"`
	GenderPref    models.GenderPref  `json:"gender_preference"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in createRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.UserID == "" || in.Airport == "" || in.DepartureTime.IsZero() {
		http.Error(w, "user_id, airport and departure_time are required", http.StatusBadRequest)
		return
	}
	if in.GenderPref == "" {
		in.GenderPref = models.PrefAny
	}
	req := models.RideRequest{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		UserName:      in.UserName,
		Airport:       in.Airport,
		Pickup:        in.Pickup,
		PickupAddress: in.PickupAddress,
		DepartureTime: in.DepartureTime,
		Baggage:       in.Baggage,
		Gender:        in.Gender,
		GenderPref:    in.GenderPref,
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.records.SaveRequest(r.Context(), req); err != nil {
		s.serverError(w, r, err)
		return
	}
	observability.RequestsCreated.Inc()
	s.publish(models.RideEvent{Type: "requested", RequestID: req.ID, UserID: req.UserID, Airport: req.Airport, At: req.CreatedAt})
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	pool, err := s.records.ListRequests(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	userID := r.URL.Query().Get("user_id")
	out := make([]models.RideRequest, 0, len(pool))
	for _, req := range pool {
		if userID == "" || req.UserID == userID {
			out = append(out, req)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type decidePayload struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

func (s *Server) handleDecideRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	accept := strings.HasSuffix(r.URL.Path, "/accept")

	var in decidePayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	req, err := s.records.GetRequest(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if req.Status != models.StatusPending {
		http.Error(w, "request already decided", http.StatusConflict)
		return
	}
	if req.UserID == in.UserID {
		http.Error(w, "cannot decide on your own request", http.StatusForbidden)
		return
	}

	event := "rejected"
	req.Status = models.StatusRejected
	if accept {
		event = "accepted"
		req.Status = models.StatusAccepted
		req.AcceptedBy = in.UserID
		req.AcceptedName = in.UserName
	}
	if err := s.records.SaveRequest(r.Context(), req); err != nil {
		s.serverError(w, r, err)
		return
	}
	observability.RequestsDecided.WithLabelValues(event).Inc()
	s.publish(models.RideEvent{Type: event, RequestID: req.ID, UserID: in.UserID, Airport: req.Airport, At: s.now()})
	if err := s.notifier.RequestDecided(r.Context(), req); err != nil {
		s.logger.Warn("decision notification failed", "request_id", req.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	req, err := s.records.GetRequest(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := s.records.DeleteRequest(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.publish(models.RideEvent{Type: "canceled", RequestID: req.ID, UserID: req.UserID, Airport: req.Airport, At: s.now()})
	w.WriteHeader(http.StatusNoContent)
}

type matchPayload struct {
	UserID      string        `json:"user_id"`
	UserGender  models.Gender `json:"user_gender"`
	Airport     string        `json:"airport"`
	Preferences struct {
		Latitude      float64           `json:"latitude"`
		Longitude     float64           `json:"longitude"`
		DepartureTime time.Time         `json:"departure_time"`
		GenderPref    models.GenderPref `json:"gender_preference"`
	} `json:"preferences"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var in matchPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.UserID == "" || in.Airport == "" || in.Preferences.DepartureTime.IsZero() {
		http.Error(w, "user_id, airport and preferences.departure_time are required", http.StatusBadRequest)
		return
	}
	if in.Preferences.GenderPref == "" {
		in.Preferences.GenderPref = models.PrefAny
	}
	pool, err := s.records.ListRequests(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	q := models.MatchQuery{
		UserID:        in.UserID,
		UserGender:    in.UserGender,
		Airport:       in.Airport,
		Pickup:        models.Coord{Lat: in.Preferences.Latitude, Lon: in.Preferences.Longitude},
		DepartureTime: in.Preferences.DepartureTime,
		GenderPref:    in.Preferences.GenderPref,
	}
	writeJSON(w, http.StatusOK, match.Select(s.now(), pool, q))
}

type chatPayload struct {
	SenderID string `json:"sender_id"`
	To       string `json:"to"`
	Body     string `json:"body"`
}

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["thread_id"]
	var in chatPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.SenderID == "" || in.Body == "" {
		http.Error(w, "sender_id and body are required", http.StatusBadRequest)
		return
	}
	msg := models.ChatMessage{
		ThreadID: threadID,
		SenderID: in.SenderID,
		To:       in.To,
		Body:     in.Body,
		SentAt:   s.now(),
	}
	if err := s.records.AppendChat(r.Context(), msg); err != nil {
		s.serverError(w, r, err)
		return
	}
	observability.ChatMessagesTotal.Inc()
	// Live delivery is best-effort; the recipient reads history on reconnect.
	if err := s.ws.Deliver(msg); err != nil && msg.To != "" {
		s.logger.Debug("ws delivery skipped", "to", msg.To, "error", err)
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleListChat(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.records.ListChat(r.Context(), mux.Vars(r)["thread_id"])
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}
	s.ws.Add(userID, conn)
	// Drain the connection so we notice the close and drop the session.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.ws.Remove(userID)
				return
			}
		}
	}()
}

type checkoutPayload struct {
	RequestID  string   `json:"request_id"`
	TotalCents int64    `json:"total_cents"`
	Currency   string   `json:"currency"`
	RiderIDs   []string `json:"rider_ids"`
	PayerID    string   `json:"payer_id"`
	SuccessURL string   `json:"success_url"`
	CancelURL  string   `json:"cancel_url"`
}

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	if s.checkout == nil {
		http.Error(w, "payments not configured", http.StatusServiceUnavailable)
		return
	}
	var in checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.Currency == "" {
		in.Currency = "usd"
	}
	shares, err := payments.SplitFare(in.TotalCents, in.RiderIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var payerShare int64 = -1
	for _, sh := range shares {
		if sh.UserID == in.PayerID {
			payerShare = sh.AmountCents
			break
		}
	}
	if payerShare < 0 {
		http.Error(w, "payer_id is not among rider_ids", http.StatusBadRequest)
		return
	}
	sess, err := s.checkout.CreateSession(r.Context(), payerShare, in.Currency, "Airport ride share "+in.RequestID, in.SuccessURL, in.CancelURL)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	observability.CheckoutSessions.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"session": sess, "shares": shares})
}

func (s *Server) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	if s.checkout == nil {
		http.Error(w, "payments not configured", http.StatusServiceUnavailable)
		return
	}
	sess, err := s.checkout.GetSession(r.Context(), mux.Vars(r)["session_id"])
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handlePopularAirports(w http.ResponseWriter, r *http.Request) {
	if s.warehouse == nil {
		http.Error(w, "analytics not configured", http.StatusServiceUnavailable)
		return
	}
	rows, err := s.warehouse.PopularAirports(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"airports": rows})
}

type pickupNotePayload struct {
	PickupAddress string    `json:"pickup_address"`
	Airport       string    `json:"airport"`
	DepartureTime time.Time `json:"departure_time"`
}

func (s *Server) handlePickupNote(w http.ResponseWriter, r *http.Request) {
	if s.assist == nil {
		http.Error(w, "assist not configured", http.StatusServiceUnavailable)
		return
	}
	var in pickupNotePayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	note, err := s.assist.PickupNote(r.Context(), in.PickupAddress, in.Airport, in.DepartureTime)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"note": note})
}

// publish sends a ride event to the pipeline if a producer is configured.
func (s *Server) publish(ev models.RideEvent) {
	if s.kafka == nil {
		return
	}
	if err := s.kafka.PublishEvent(ev); err != nil {
		s.logger.Warn("event publish failed", "type", ev.Type, "request_id", ev.RequestID, "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
