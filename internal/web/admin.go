package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/dashboard"
	"github.com/example/court-booking/internal/domain/booking"
)

func filterFrom(r *http.Request) booking.Filter {
	q := r.URL.Query()
	f := booking.Filter{
		Date:             strings.TrimSpace(q.Get("date")),
		Court:            strings.TrimSpace(q.Get("court")),
		IncludeCancelled: q.Get("cancelled") != "0",
	}
	if sp, err := booking.ParseSport(q.Get("sport")); err == nil {
		f.Sport = sp
	}
	return f
}

func (s *Server) adminData(r *http.Request) tmplData {
	f := filterFrom(r)
	bs := s.Store.Filter(f)
	sortBookings(bs)
	return tmplData{
		Title:     "Admin",
		Session:   s.session(r),
		Flash:     r.URL.Query().Get("flash"),
		Sports:    booking.Sports(),
		AllCourts: booking.AllCourts(),
		Hours:     adminHours(),
		Stats:     dashboard.Compute(s.Store.Effective(), s.now()),
		Bookings:  bs,
		Filter:    f,
	}
}

func adminHours() []int {
	out := make([]int, 0, booking.AdminHours.Close-booking.AdminHours.Open+1)
	for h := booking.AdminHours.Open; h <= booking.AdminHours.Close; h++ {
		out = append(out, h)
	}
	return out
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "templates/admin.html", s.adminData(r))
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req, err := adminRequest(r)
	if err == nil {
		req.Session = s.session(r).ID
		var b booking.Booking
		if b, err = s.AdminBook.Execute(r.Context(), req); err == nil {
			http.Redirect(w, r, "/admin?flash="+url.QueryEscape(string(b.Status)+" booking created"), http.StatusSeeOther)
			return
		}
	}
	d := s.adminData(r)
	d.Error = err.Error()
	s.render(w, statusOf(err), "templates/admin.html", d)
}

func adminRequest(r *http.Request) (usecases.AdminRequest, error) {
	sport, err := booking.ParseSport(r.FormValue("sport"))
	if err != nil {
		return usecases.AdminRequest{}, err
	}
	start, err := booking.ParseHour(r.FormValue("start"))
	if err != nil {
		return usecases.AdminRequest{}, err
	}
	end, err := booking.ParseHour(r.FormValue("end"))
	if err != nil {
		return usecases.AdminRequest{}, err
	}
	date, err := booking.ParseDate(r.FormValue("date"))
	if err != nil {
		return usecases.AdminRequest{}, &booking.IntervalError{Reason: err.Error()}
	}
	req := usecases.AdminRequest{
		Sport:     sport,
		Court:     r.FormValue("court"),
		Date:      date,
		StartHour: start,
		EndHour:   end,
		Customer: booking.Customer{
			Name:    strings.TrimSpace(r.FormValue("name")),
			Contact: strings.TrimSpace(r.FormValue("contact")),
			Email:   strings.TrimSpace(r.FormValue("email")),
		},
	}
	if v := r.FormValue("status"); v != "" {
		st, err := booking.ParseStatus(v)
		if err != nil {
			return usecases.AdminRequest{}, err
		}
		req.Status = st
	}
	return req, nil
}

func (s *Server) handleAdminCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Cancel.Execute(r.Context(), s.session(r).ID, id); err != nil {
		if errors.Is(err, booking.ErrRemoteUnavailable) {
			s.Log.Warn().Err(err).Str("id", id).Msg("cancel failed")
		}
		d := s.adminData(r)
		d.Error = err.Error()
		s.render(w, statusOf(err), "templates/admin.html", d)
		return
	}
	http.Redirect(w, r, "/admin?flash=Booking+cancelled", http.StatusSeeOther)
}

// weekFrom reads ?week=YYYY-MM-DD, defaulting to the current week.
func (s *Server) weekFrom(r *http.Request) time.Time {
	if v := r.URL.Query().Get("week"); v != "" {
		if t, err := time.ParseInLocation(booking.DateLayout, v, s.now().Location()); err == nil {
			return calendar.WeekStart(t)
		}
	}
	return calendar.WeekStart(s.now())
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	start := s.weekFrom(r)
	f := filterFrom(r)
	s.render(w, http.StatusOK, "templates/calendar.html", tmplData{
		Title:     "Calendar",
		Session:   s.session(r),
		Sports:    booking.Sports(),
		AllCourts: booking.AllCourts(),
		Filter:    f,
		Week:      calendar.Week(s.Store.Effective(), start, f, calendar.DefaultGeometry),
		PrevWeek:  start.AddDate(0, 0, -7).Format(booking.DateLayout),
		NextWeek:  start.AddDate(0, 0, 7).Format(booking.DateLayout),
	})
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if s.Receipts == nil {
		http.NotFound(w, r)
		return
	}
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 1 {
		http.NotFound(w, r)
		return
	}
	rc, err := s.Receipts.Receipt(r.Context(), row)
	if errors.Is(err, booking.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.Log.Error().Err(err).Int("row", row).Msg("receipt read failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", rc.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(rc.Name, `"`, "")+`"`)
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(rc.Data)
}
