package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/airpool/internal/analytics"
	"github.com/example/airpool/internal/assist"
	"github.com/example/airpool/internal/chat"
	"github.com/example/airpool/internal/config"
	"github.com/example/airpool/internal/ingest"
	"github.com/example/airpool/internal/notify"
	"github.com/example/airpool/internal/payments"
	"github.com/example/airpool/internal/storage"
)

type Server struct {
	logger    *slog.Logger
	records   *storage.Records
	kafka     *ingest.KafkaProducer
	ws        *chat.Registry
	checkout  payments.Checkout
	warehouse *analytics.WarehouseClient
	assist    *assist.Client
	notifier  notify.Notifier
	now       func() time.Time
	mux       *mux.Router
}

// New wires a Server from config. Unconfigured collaborators degrade
// gracefully: storage falls back to memory, events go unpublished, and the
// checkout/analytics/assist endpoints report themselves unavailable.
func New(cfg config.ServerConfig, logger *slog.Logger) *Server {
	var store storage.RecordStore
	switch {
	case cfg.RedisAddr != "":
		store = storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	case cfg.PGDSN != "":
		if ps, err := storage.NewPostgresStore(cfg.PGDSN); err == nil {
			store = ps
		} else {
			logger.Error("postgres unavailable, using memory store", "error", err)
		}
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}

	var kp *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	var co payments.Checkout
	if cfg.StripeKey != "" {
		co = payments.NewStripeCheckout(cfg.StripeKey)
	}

	var wh *analytics.WarehouseClient
	if cfg.WarehouseURL != "" {
		wh = analytics.NewWarehouseClient(cfg.WarehouseURL, "", cfg.AnalyticsTTL)
	}

	var ai *assist.Client
	if cfg.AssistURL != "" {
		ai = assist.NewClient(cfg.AssistURL, "")
	}

	var nt notify.Notifier = notify.NopNotifier{}
	if cfg.NotifyURL != "" {
		nt = notify.NewWebhookNotifier(cfg.NotifyURL, "")
	}

	s := &Server{
		logger:    logger,
		records:   storage.NewRecords(store),
		kafka:     kp,
		ws:        chat.NewRegistry(),
		checkout:  co,
		warehouse: wh,
		assist:    ai,
		notifier:  nt,
		now:       time.Now,
		mux:       mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.mux.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/profiles", s.handleCreateProfile).Methods("POST")
	api.HandleFunc("/profiles/{user_id}", s.handleGetProfile).Methods("GET")
	api.HandleFunc("/profiles/{user_id}", s.handleUpdateProfile).Methods("PUT")

	api.HandleFunc("/rides/requests", s.handleCreateRequest).Methods("POST")
	api.HandleFunc("/rides/requests", s.handleListRequests).Methods("GET")
	api.HandleFunc("/rides/requests/{id}/accept", s.handleDecideRequest).Methods("POST")
	api.HandleFunc("/rides/requests/{id}/reject", s.handleDecideRequest).Methods("POST")
	api.HandleFunc("/rides/requests/{id}", s.handleCancelRequest).Methods("DELETE")
	api.HandleFunc("/rides/matches", s.handleMatch).Methods("POST")

	api.HandleFunc("/chats/{thread_id}/messages", s.handleSendChat).Methods("POST")
	api.HandleFunc("/chats/{thread_id}/messages", s.handleListChat).Methods("GET")

	api.HandleFunc("/checkout", s.handleCreateCheckout).Methods("POST")
	api.HandleFunc("/checkout/{session_id}", s.handleGetCheckout).Methods("GET")

	api.HandleFunc("/analytics/airports", s.handlePopularAirports).Methods("GET")
	api.HandleFunc("/assist/pickup-note", s.handlePickupNote).Methods("POST")

	s.mux.HandleFunc("/ws/{user_id}", s.handleWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }
