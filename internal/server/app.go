package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"PosBoard/internal/notify"
	"PosBoard/internal/order"
	"PosBoard/internal/service"
	"PosBoard/internal/storage"
	"PosBoard/pkg/kit"
)

const maxBody = 1 << 20

type Server struct {
	Orders       *service.OrderService
	Hub          *notify.Hub
	Storage      storage.Documents
	Log          *zap.Logger
	SSEHeartbeat time.Duration
}

type createReq struct {
	Items []order.LineItem `json:"items"`
	Total float64          `json:"total"`
}

// updateReq tolerates the id the cart UI echoes back; it is never applied.
type updateReq struct {
	ID    string            `json:"id,omitempty"`
	Items *[]order.LineItem `json:"items,omitempty"`
	Total *float64          `json:"total,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Storage.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.ListOrders(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, orders)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := kit.DecodeJSON(w, r, maxBody, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	o, err := s.Orders.Create(r.Context(), order.NewOrder{Items: req.Items, Total: req.Total})
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusCreated, o)
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateReq
	if err := kit.DecodeJSON(w, r, maxBody, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	o, err := s.Orders.Update(r.Context(), id, order.Patch{Items: req.Items, Total: req.Total})
	if err != nil {
		s.writeServiceError(w, r, err, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := s.Orders.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, id)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Orders.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) resetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Orders.ResetStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) rebuildStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Orders.RebuildStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	notify.ServeSSE(w, r, s.Hub, s.SSEHeartbeat, s.Log)
}

func (s *Server) websocket(w http.ResponseWriter, r *http.Request) {
	notify.ServeWS(w, r, s.Hub, s.Log)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, id string) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "order not found", map[string]any{"id": id})
	case errors.Is(err, storage.ErrUnavailable):
		s.Log.Error("storage unavailable", zap.Error(err), zap.String("order_id", id))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "storage unavailable", nil)
	default:
		s.Log.Error("request failed", zap.Error(err), zap.String("order_id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
