package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/auth"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/dashboard"
	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/domain/user"
	"github.com/example/court-booking/internal/infrastructure/postgres"
	"github.com/example/court-booking/internal/store"
)

//go:embed templates/*.html
var fs embed.FS

// ReceiptSource serves stored payment receipts by storage row.
type ReceiptSource interface {
	Receipt(ctx context.Context, rowIndex int) (postgres.Receipt, error)
}

type Server struct {
	Auth   *auth.Store
	Store  *store.Store
	Drafts usecases.DraftStore

	Login     usecases.Login
	Submit    usecases.SubmitBooking
	AdminBook usecases.AdminBook
	Cancel    usecases.CancelBooking

	// Receipts is nil unless receipts are stored by this instance.
	Receipts ReceiptSource
	// RPC exposes a storage service under /rpc when RPCKey is set.
	RPC    booking.StorageService
	RPCKey string

	Location *time.Location
	Log      zerolog.Logger
	Now      func() time.Time
}

type tmplData struct {
	Title   string
	Session auth.Session
	Flash   string
	Error   string

	Sports    []booking.Sport
	Courts    []string
	AllCourts []string
	Selection booking.Selection
	Slots     []booking.Slot
	Hours     []int
	Quote     *booking.Quote
	Payments  []booking.PaymentMethod
	Created   *booking.Booking

	Stats    dashboard.Stats
	Bookings []booking.Booking
	Filter   booking.Filter
	Week     calendar.WeekView
	PrevWeek string
	NextWeek string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Post("/guest", s.handleGuest)
	r.Get("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireRole(user.RoleUser, user.RoleAdmin))
		r.Get("/book", s.handleBookPage)
		r.Post("/book", s.handleBook)
		r.Post("/book/reset", s.handleReset)
		r.Get("/payment", s.handlePaymentPage)
		r.Post("/payment", s.handlePayment)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireRole(user.RoleAdmin))
		r.Get("/admin", s.handleAdmin)
		r.Post("/admin/bookings", s.handleAdminCreate)
		r.Post("/admin/bookings/{id}/cancel", s.handleAdminCancel)
		r.Get("/admin/calendar", s.handleCalendar)
		r.Get("/receipts/{row}", s.handleReceipt)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/courts", s.apiCourts)
		r.Get("/availability", s.apiAvailability)
		r.Get("/quote", s.apiQuote)
		r.Group(func(r chi.Router) {
			r.Use(s.Auth.RequireRole(user.RoleAdmin))
			r.Get("/calendar", s.apiCalendar)
			r.Get("/stats", s.apiStats)
			r.Post("/refresh", s.apiRefresh)
		})
	})

	if s.RPC != nil && s.RPCKey != "" {
		r.Route("/rpc", func(r chi.Router) {
			r.Use(auth.RequireAPIKey(s.RPCKey))
			r.Post("/authenticate", s.rpcAuthenticate)
			r.Post("/getBookings", s.rpcGetBookings)
			r.Post("/submitBooking", s.rpcSubmitBooking)
			r.Post("/cancelBooking", s.rpcCancelBooking)
		})
	}

	return r
}

func (s *Server) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

func (s *Server) today() string { return s.now().Format(booking.DateLayout) }

var funcs = template.FuncMap{
	"hour":   booking.FormatHour,
	"money":  func(v float64) string { return "₱" + strconv.FormatFloat(v, 'f', 2, 64) },
	"pct":    func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) + "%" },
	"pcts":   func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" },
	"px":     func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "px" },
	"rowTop": func(i int) float64 { return float64(i) * calendar.DefaultGeometry.RowHeight },
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data tmplData) {
	t, err := template.New("base.html").Funcs(funcs).ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.Log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// statusOf maps a domain error to the HTTP status its page is rendered with.
func statusOf(err error) int {
	switch {
	case errors.Is(err, booking.ErrInFlight), errors.Is(err, booking.ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrRemoteUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, usecases.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusUnprocessableEntity
}

func sortBookings(bs []booking.Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].Date != bs[j].Date {
			return bs[i].Date < bs[j].Date
		}
		if bs[i].StartHour != bs[j].StartHour {
			return bs[i].StartHour < bs[j].StartHour
		}
		return bs[i].Court < bs[j].Court
	})
}

func Start(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
