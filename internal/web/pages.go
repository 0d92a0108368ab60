package web

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/auth"
	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/domain/user"
)

const maxReceiptBytes = 10 << 20

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Auth.GetSession(r)
	switch {
	case !ok:
		http.Redirect(w, r, "/login", http.StatusFound)
	case sess.IsAdmin():
		http.Redirect(w, r, "/admin", http.StatusFound)
	default:
		http.Redirect(w, r, "/book", http.StatusFound)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "templates/login.html", tmplData{Title: "Login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	role, err := s.Login.Execute(r.Context(), username, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, booking.ErrRemoteUnavailable) {
			s.Log.Warn().Err(err).Msg("login failed")
		}
		s.render(w, statusOf(err), "templates/login.html", tmplData{Title: "Login", Error: err.Error()})
		return
	}
	sess := auth.NewSession(username, role)
	if err := s.Auth.SetSession(w, r, sess); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Log.Info().Str("user", username).Str("role", string(role)).Msg("login")
	if sess.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/book", http.StatusFound)
}

// handleGuest starts an anonymous customer session.
func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.SetSession(w, r, auth.NewSession("", user.RoleUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/book", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.Auth.GetSession(r); ok {
		_ = s.Drafts.Delete(r.Context(), sess.ID)
	}
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) session(r *http.Request) auth.Session {
	sess, _ := auth.SessionFromContext(r.Context())
	return sess
}

// bookData fills the booking page for sel: court list, hourly grid and quote.
func (s *Server) bookData(sess auth.Session, sel booking.Selection) tmplData {
	d := tmplData{
		Title:     "Book a court",
		Session:   sess,
		Sports:    booking.Sports(),
		Selection: sel,
		Hours:     bookableHours(),
	}
	if sel.Sport != "" {
		d.Courts = booking.Courts(sel.Sport)
	}
	if sel.Court != "" && sel.Date != "" {
		d.Slots = booking.FreeSlots(s.Store.Effective(), sel.Court, sel.Date, booking.UserHours)
	}
	if sel.Duration() > 0 {
		if q, err := sel.Quote(); err == nil {
			d.Quote = &q
		}
	}
	return d
}

func bookableHours() []int {
	out := make([]int, 0, booking.UserHours.Close-booking.UserHours.Open+1)
	for h := booking.UserHours.Open; h <= booking.UserHours.Close; h++ {
		out = append(out, h)
	}
	return out
}

func (s *Server) handleBookPage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sel, err := s.Drafts.Get(r.Context(), sess.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sel.Date == "" {
		sel.Date = s.today()
	}
	s.render(w, http.StatusOK, "templates/book.html", s.bookData(sess, sel))
}

// handleBook applies the submitted form fields to the draft in flow order.
// action=continue additionally validates the whole draft and moves on to payment.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess := s.session(r)
	sel, err := s.Drafts.Get(r.Context(), sess.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = applyForm(&sel, r)
	if perr := s.Drafts.Put(r.Context(), sess.ID, sel); perr != nil {
		http.Error(w, perr.Error(), http.StatusInternalServerError)
		return
	}
	if err == nil && r.FormValue("action") == "continue" {
		_, _, err = sel.Draft(s.Store.Effective())
		if err == nil && strings.TrimSpace(sel.Customer.Name) == "" {
			err = errors.New("please enter your name")
		}
		if err == nil {
			http.Redirect(w, r, "/payment", http.StatusSeeOther)
			return
		}
	}
	if err != nil {
		d := s.bookData(sess, sel)
		d.Error = err.Error()
		s.render(w, statusOf(err), "templates/book.html", d)
		return
	}
	http.Redirect(w, r, "/book", http.StatusSeeOther)
}

func applyForm(sel *booking.Selection, r *http.Request) error {
	sportChanged := false
	if v := r.FormValue("sport"); v != "" {
		sp, err := booking.ParseSport(v)
		if err != nil {
			return err
		}
		sportChanged = sp != sel.Sport
		if err := sel.SetSport(sp); err != nil {
			return err
		}
	}
	// a stale court from the previous sport's list is dropped, not rejected
	if v := r.FormValue("court"); v != "" && !(sportChanged && !booking.HasCourt(sel.Sport, v)) {
		if err := sel.SetCourt(v); err != nil {
			return err
		}
	}
	if v := r.FormValue("date"); v != "" {
		if err := sel.SetDate(v); err != nil {
			return err
		}
	}
	start, end := r.FormValue("start"), r.FormValue("end")
	if start != "" && end != "" {
		if err := sel.SetTimes(start, end); err != nil {
			return err
		}
	}
	if _, ok := r.Form["name"]; ok {
		sel.Customer = booking.Customer{
			Name:    strings.TrimSpace(r.FormValue("name")),
			Contact: strings.TrimSpace(r.FormValue("contact")),
			Email:   strings.TrimSpace(r.FormValue("email")),
		}
	}
	return nil
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.Drafts.Delete(r.Context(), s.session(r).ID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/book", http.StatusSeeOther)
}

func (s *Server) paymentData(sess auth.Session, sel booking.Selection, q booking.Quote) tmplData {
	return tmplData{
		Title:     "Payment",
		Session:   sess,
		Selection: sel,
		Quote:     &q,
		Payments:  []booking.PaymentMethod{booking.PaymentFull, booking.PaymentDownpayment},
	}
}

func (s *Server) handlePaymentPage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sel, err := s.Drafts.Get(r.Context(), sess.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, q, err := sel.Draft(s.Store.Effective())
	if err != nil {
		http.Redirect(w, r, "/book", http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "templates/payment.html", s.paymentData(sess, sel, q))
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes+1<<20)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		http.Error(w, "receipt upload too large or malformed", http.StatusBadRequest)
		return
	}
	sel, err := s.Drafts.Get(r.Context(), sess.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if m := r.FormValue("payment_method"); m != "" {
		if pm, err := booking.ParsePaymentMethod(m); err == nil {
			sel.PaymentMethod = pm
		}
	}

	req := usecases.SubmitRequest{Session: sess.ID, Selection: sel}
	if f, hdr, err := r.FormFile("receipt"); err == nil {
		data, rerr := io.ReadAll(io.LimitReader(f, maxReceiptBytes))
		_ = f.Close()
		if rerr != nil {
			http.Error(w, rerr.Error(), http.StatusBadRequest)
			return
		}
		if len(data) > 0 {
			req.ReceiptData = base64.StdEncoding.EncodeToString(data)
			req.ReceiptName = hdr.Filename
		}
	}

	b, q, err := s.Submit.Execute(r.Context(), req)
	if err != nil {
		d := s.paymentData(sess, sel, quoteOf(sel))
		d.Error = err.Error()
		s.render(w, statusOf(err), "templates/payment.html", d)
		return
	}
	if err := s.Drafts.Delete(r.Context(), sess.ID); err != nil {
		s.Log.Warn().Err(err).Str("session", sess.ID).Msg("draft not cleared")
	}
	d := s.paymentData(sess, booking.Selection{}, q)
	d.Created = &b
	d.Flash = "Booking confirmed!"
	s.render(w, http.StatusOK, "templates/payment.html", d)
}

func quoteOf(sel booking.Selection) booking.Quote {
	q, _ := sel.Quote()
	return q
}
