package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/dashboard"
	"github.com/example/court-booking/internal/domain/booking"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type courtsResponse struct {
	Sport  booking.Sport `json:"sport"`
	Rate   float64       `json:"rate"`
	Courts []string      `json:"courts"`
}

func catalogEntry(sp booking.Sport) courtsResponse {
	rate, _ := booking.Rate(sp)
	return courtsResponse{Sport: sp, Rate: rate, Courts: booking.Courts(sp)}
}

// apiCourts lists the catalog, or one sport's courts when ?sport= is given.
func (s *Server) apiCourts(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("sport"); v != "" {
		sp, err := booking.ParseSport(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, catalogEntry(sp))
		return
	}
	out := make([]courtsResponse, 0, 3)
	for _, sp := range booking.Sports() {
		out = append(out, catalogEntry(sp))
	}
	writeJSON(w, http.StatusOK, out)
}

type availabilityResponse struct {
	Court string         `json:"court"`
	Date  string         `json:"date"`
	Slots []booking.Slot `json:"slots"`
}

func (s *Server) apiAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	court := strings.TrimSpace(q.Get("court"))
	if _, ok := booking.SportOfCourt(court); !ok {
		writeJSONError(w, http.StatusBadRequest, booking.ErrUnknownCourt)
		return
	}
	date := q.Get("date")
	if date == "" {
		date = s.today()
	}
	date, err := booking.ParseDate(date)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		Court: court,
		Date:  date,
		Slots: booking.FreeSlots(s.Store.Effective(), court, date, booking.UserHours),
	})
}

func (s *Server) apiQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sp, err := booking.ParseSport(q.Get("sport"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	start, err := booking.ParseHour(q.Get("start"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	end, err := booking.ParseHour(q.Get("end"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	quote, err := booking.ComputePrice(sp, end-start)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) apiCalendar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calendar.Week(s.Store.Effective(), s.weekFrom(r), filterFrom(r), calendar.DefaultGeometry))
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Compute(s.Store.Effective(), s.now()))
}

// apiRefresh refetches the remote partition now.
func (s *Server) apiRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Refresh(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, booking.ErrRemoteUnavailable) {
			status = http.StatusBadGateway
		}
		writeJSONError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(s.Store.Effective()),
		"refreshedAt": s.Store.RefreshedAt(),
	})
}
