package web

import (
	"encoding/json"
	"net/http"

	"github.com/example/court-booking/internal/domain/booking"
)

// The /rpc surface serves the booking-storage contract to other instances
// running with BOOKING_BACKEND=remote. Failure payloads are 200 responses
// with success=false; infrastructure errors are 5xx so callers retry.

func (s *Server) rpcError(w http.ResponseWriter, method string, err error) {
	s.Log.Error().Err(err).Str("method", method).Msg("rpc failed")
	writeJSON(w, http.StatusInternalServerError, booking.Result{Success: false, Message: err.Error()})
}

func (s *Server) rpcAuthenticate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, booking.AuthResult{Message: "invalid request body"})
		return
	}
	res, err := s.RPC.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		s.rpcError(w, "authenticate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) rpcGetBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := s.RPC.GetBookings(r.Context())
	if err != nil {
		s.rpcError(w, "getBookings", err)
		return
	}
	out := make([]booking.Record, 0, len(bs))
	for _, b := range bs {
		out = append(out, booking.RecordOf(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) rpcSubmitBooking(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, booking.Result{Message: "invalid request body"})
		return
	}
	sub, err := booking.NormalizeSubmission(raw)
	if err != nil {
		writeJSON(w, http.StatusOK, booking.Result{Success: false, Message: err.Error()})
		return
	}
	res, err := s.RPC.SubmitBooking(r.Context(), sub)
	if err != nil {
		s.rpcError(w, "submitBooking", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) rpcCancelBooking(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RowIndex        int    `json:"rowIndex"`
		CalendarEventID string `json:"calendarEventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RowIndex < 1 {
		writeJSON(w, http.StatusBadRequest, booking.Result{Message: "rowIndex is required"})
		return
	}
	res, err := s.RPC.CancelBooking(r.Context(), in.RowIndex, in.CalendarEventID)
	if err != nil {
		s.rpcError(w, "cancelBooking", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
