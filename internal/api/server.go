// Package api exposes the token service over HTTP: JSON endpoints for
// create/steal/transfer plus read endpoints for tokens, activity and
// price history, and a WebSocket feed for live events.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/alexdziarn/fool.fun/internal/domain"
	"github.com/alexdziarn/fool.fun/internal/engine"
	"github.com/alexdziarn/fool.fun/internal/events"
	"github.com/alexdziarn/fool.fun/internal/observability"
	"github.com/alexdziarn/fool.fun/internal/service"
	"github.com/alexdziarn/fool.fun/internal/storage"
)

// Server routes HTTP requests to the token service.
type Server struct {
	svc     *service.Service
	hub     *events.Hub
	logger  *log.Logger
	started time.Time
}

func NewServer(svc *service.Service, hub *events.Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[api] ", log.LstdFlags)
	}
	return &Server{svc: svc, hub: hub, logger: logger, started: time.Now()}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/api/tokens", s.handleTokens)
	mux.HandleFunc("/api/tokens/", s.handleToken)

	if s.hub != nil {
		mux.Handle("/ws", s.hub)
	}

	return mux
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Subscribers int    `json:"ws_subscribers"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status: "running",
		Uptime: time.Since(s.started).String(),
	}
	if s.hub != nil {
		resp.Subscribers = s.hub.SubscriberCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTokenRequest is the body for POST /api/tokens.
type CreateTokenRequest struct {
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Description    string `json:"description"`
	Image          string `json:"image"`
	Minter         string `json:"minter"`
	InitialPrice   uint64 `json:"initial_price"`
	PriceIncrement uint64 `json:"price_increment,omitempty"`
	FeePolicy      string `json:"fee_policy"`
}

// handleTokens serves GET /api/tokens (list) and POST /api/tokens (create).
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTokens(w, r)
	case http.MethodPost:
		s.createToken(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTokens(w http.ResponseWriter, r *http.Request) {
	if holder := r.URL.Query().Get("holder"); holder != "" {
		tokens, err := s.svc.ListTokensByHolder(r.Context(), holder)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokens)
		return
	}
	if minter := r.URL.Query().Get("minter"); minter != "" {
		tokens, err := s.svc.ListTokensByMinter(r.Context(), minter)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokens)
		return
	}

	order := storage.SortByPriceDesc
	switch r.URL.Query().Get("sort") {
	case "", "price_desc":
	case "price_asc":
		order = storage.SortByPriceAsc
	case "created_desc":
		order = storage.SortByCreatedDesc
	default:
		writeError(w, http.StatusBadRequest, "unknown sort order")
		return
	}

	tokens, err := s.svc.ListTokens(r.Context(), order)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := s.svc.CreateToken(r.Context(), service.CreateTokenParams{
		Name:           req.Name,
		Symbol:         req.Symbol,
		Description:    req.Description,
		Image:          req.Image,
		Minter:         req.Minter,
		Dev:            s.svc.Dev(),
		InitialPrice:   req.InitialPrice,
		PriceIncrement: req.PriceIncrement,
		FeePolicy:      domain.FeePolicyKind(req.FeePolicy),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, token)
}

// StealRequest is the body for POST /api/tokens/{address}/steal.
type StealRequest struct {
	Stealer string `json:"stealer"`
	Amount  uint64 `json:"amount"`
}

// StealResponse pairs the updated record with the settlement breakdown.
type StealResponse struct {
	Token  *domain.Token     `json:"token"`
	Event  domain.StealEvent `json:"event"`
	Refund uint64            `json:"refund"`
}

// TransferRequest is the body for POST /api/tokens/{address}/transfer.
type TransferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// handleToken dispatches /api/tokens/{address}[/steal|/transfer|/activity|/history].
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tokens/")
	address, action, _ := strings.Cut(rest, "/")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing token address")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		token, err := s.svc.GetToken(r.Context(), address)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, token)

	case "steal":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req StealRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		token, result, err := s.svc.Steal(r.Context(), address, req.Stealer, req.Amount)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StealResponse{
			Token:  token,
			Event:  result.Event,
			Refund: result.Refund,
		})

	case "transfer":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		token, err := s.svc.Transfer(r.Context(), address, req.From, req.To)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, token)

	case "activity":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		history, err := s.svc.TokenActivity(r.Context(), address)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, history)

	case "history":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		points, err := s.svc.TokenPriceHistory(r.Context(), address)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, points)

	default:
		writeError(w, http.StatusNotFound, "unknown resource")
	}
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrInsufficientPayment),
		errors.Is(err, engine.ErrNotCurrentHolder):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, engine.ErrNameTooLong),
		errors.Is(err, engine.ErrSymbolTooLong),
		errors.Is(err, engine.ErrDescriptionTooLong),
		errors.Is(err, engine.ErrImageTooLong),
		errors.Is(err, engine.ErrInvalidInitialPrice),
		errors.Is(err, engine.ErrInvalidPriceIncrement),
		errors.Is(err, engine.ErrInvalidDevAddress),
		errors.Is(err, engine.ErrInvalidFeePolicy),
		errors.Is(err, storage.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
