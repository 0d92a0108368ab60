package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/example/court-booking/internal/auth"
	"github.com/example/court-booking/internal/db"
	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/infrastructure/crypto"
)

// BookingService is the server-side booking.StorageService.
type BookingService struct {
	DB      *db.DB
	Users   *UserRepo
	Sealer  crypto.Sealer
	BaseURL string
	Log     zerolog.Logger
}

var _ booking.StorageService = (*BookingService)(nil)

func (s *BookingService) Authenticate(ctx context.Context, username, password string) (booking.AuthResult, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if db.IsNotFound(err) {
		return booking.AuthResult{Success: false, Message: "Invalid username or password"}, nil
	}
	if err != nil {
		return booking.AuthResult{}, err
	}
	if !auth.CheckPassword(string(u.PasswordHash), password) {
		return booking.AuthResult{Success: false, Message: "Invalid username or password"}, nil
	}
	return booking.AuthResult{Success: true, Role: string(u.Role)}, nil
}

const selectBookings = `
SELECT b.row_index, b.calendar_event_id, b.name, b.contact, b.email, b.sport, b.court,
	b.booking_date, b.start_hour, b.end_hour, b.status, b.total_price::float8, b.downpayment::float8,
	b.payment_method, b.created_at, (r.row_index IS NOT NULL) AS has_receipt
FROM bookings b
LEFT JOIN receipts r ON r.row_index = b.row_index
`

func (s *BookingService) GetBookings(ctx context.Context) ([]booking.Booking, error) {
	rows, err := s.DB.Query(ctx, selectBookings+`ORDER BY b.row_index`)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		b, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BookingService) scan(row db.Row) (booking.Booking, error) {
	var (
		b          booking.Booking
		rowIndex   int64
		sport      string
		date       time.Time
		status     string
		method     string
		hasReceipt bool
	)
	err := row.Scan(&rowIndex, &b.CalendarEventID, &b.Customer.Name, &b.Customer.Contact, &b.Customer.Email,
		&sport, &b.Court, &date, &b.StartHour, &b.EndHour, &status, &b.TotalPrice, &b.Downpayment,
		&method, &b.CreatedAt, &hasReceipt)
	if err != nil {
		return booking.Booking{}, err
	}
	b.RowIndex = int(rowIndex)
	b.ID = "row-" + strconv.Itoa(b.RowIndex)
	b.Sport = booking.Sport(sport)
	b.Date = date.Format(booking.DateLayout)
	b.Status = booking.Status(status)
	b.PaymentMethod = booking.PaymentMethod(method)
	b.Origin = booking.OriginRemote
	if hasReceipt {
		b.ReceiptURL = s.ReceiptURL(b.RowIndex)
	}
	return b, nil
}

func (s *BookingService) ReceiptURL(rowIndex int) string {
	return strings.TrimRight(s.BaseURL, "/") + "/receipts/" + strconv.Itoa(rowIndex)
}

// SubmitBooking inserts the booking if its slot is still free. Writers for
// the same court and date are serialized by an advisory lock, and the
// occupying rows are locked while the overlap check runs.
func (s *BookingService) SubmitBooking(ctx context.Context, sub booking.Submission) (booking.Result, error) {
	b := sub.Booking
	if b.Status == "" {
		b.Status = booking.StatusConfirmed
	}
	if err := booking.Validate(nil, b, booking.AdminHours); err != nil {
		return booking.Result{Success: false, Message: err.Error()}, nil
	}
	var receipt []byte
	if sub.ReceiptData != "" {
		var err error
		if receipt, err = decodeReceipt(sub.ReceiptData); err != nil {
			return booking.Result{Success: false, Message: "Receipt could not be read: " + err.Error()}, nil
		}
	}

	var (
		rowIndex int64
		rejected string
	)
	err := s.DB.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || '|' || $2::text))`, b.Court, b.Date); err != nil {
			return err
		}
		rows, err := tx.Query(ctx, selectBookings+`
WHERE b.court=$1 AND b.booking_date=$2 AND b.status IN ('Confirmed','Blocked')
FOR UPDATE OF b`, b.Court, b.Date)
		if err != nil {
			return err
		}
		var existing []booking.Booking
		for rows.Next() {
			e, err := s.scan(rows)
			if err != nil {
				rows.Close()
				return err
			}
			existing = append(existing, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if c, ok := booking.FindConflict(existing, b.Court, b.Date, b.StartHour, b.EndHour); ok {
			rejected = (&booking.ConflictError{Existing: c}).Error()
			return nil
		}

		if b.CalendarEventID == "" {
			b.CalendarEventID = uuid.NewString()
		}
		err = tx.QueryRow(ctx, `
INSERT INTO bookings (calendar_event_id, name, contact, email, sport, court, booking_date,
	start_hour, end_hour, status, total_price, downpayment, payment_method)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING row_index`,
			b.CalendarEventID, b.Customer.Name, b.Customer.Contact, b.Customer.Email, string(b.Sport), b.Court,
			b.Date, b.StartHour, b.EndHour, string(b.Status), b.TotalPrice, b.Downpayment, string(b.PaymentMethod),
		).Scan(&rowIndex)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		if receipt == nil {
			return nil
		}
		sealed, err := s.Sealer.Seal(receipt, receiptAAD(rowIndex))
		if err != nil {
			return fmt.Errorf("seal receipt: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO receipts (row_index, file_name, content_type, sealed) VALUES ($1,$2,$3,$4)`,
			rowIndex, receiptName(sub.ReceiptName), http.DetectContentType(receipt), sealed)
		return err
	})
	if err != nil {
		return booking.Result{}, err
	}
	if rejected != "" {
		return booking.Result{Success: false, Message: rejected}, nil
	}

	s.Log.Info().Int64("row", rowIndex).Str("court", b.Court).Str("date", b.Date).
		Str("time", b.TimeRange()).Bool("receipt", receipt != nil).Msg("booking stored")
	msg := "Booking confirmed."
	if receipt != nil {
		msg += " Receipt: " + s.ReceiptURL(int(rowIndex))
	}
	return booking.Result{Success: true, Message: msg, RowIndex: int(rowIndex), CalendarEventID: b.CalendarEventID}, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, rowIndex int, calendarEventID string) (booking.Result, error) {
	var affected int64
	err := s.DB.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE bookings SET status='Cancelled' WHERE row_index=$1 AND ($2 = '' OR calendar_event_id=$2)`,
			rowIndex, calendarEventID)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return booking.Result{}, fmt.Errorf("cancel booking: %w", err)
	}
	if affected == 0 {
		return booking.Result{Success: false, Message: fmt.Sprintf("Booking row %d not found", rowIndex)}, nil
	}
	s.Log.Info().Int("row", rowIndex).Msg("booking cancelled")
	return booking.Result{Success: true, Message: "Booking cancelled"}, nil
}

type Receipt struct {
	Name        string
	ContentType string
	Data        []byte
}

func (s *BookingService) Receipt(ctx context.Context, rowIndex int) (Receipt, error) {
	var (
		r      Receipt
		sealed []byte
	)
	err := s.DB.QueryRow(ctx,
		`SELECT file_name, content_type, sealed FROM receipts WHERE row_index=$1`, rowIndex,
	).Scan(&r.Name, &r.ContentType, &sealed)
	if err != nil {
		err = db.WrapNotFound(err)
		if errors.Is(err, db.ErrNotFound) {
			return Receipt{}, fmt.Errorf("%w: receipt for row %d", booking.ErrNotFound, rowIndex)
		}
		return Receipt{}, err
	}
	if r.Data, err = s.Sealer.Open(sealed, receiptAAD(int64(rowIndex))); err != nil {
		return Receipt{}, fmt.Errorf("open receipt %d: %w", rowIndex, err)
	}
	return r, nil
}

func receiptAAD(rowIndex int64) []byte {
	return []byte("receipt:" + strconv.FormatInt(rowIndex, 10))
}

// decodeReceipt accepts plain base64 or a data: URL as produced by FileReader.
func decodeReceipt(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.New("invalid base64")
	}
	if len(b) == 0 {
		return nil, booking.ErrMissingReceipt
	}
	return b, nil
}

func receiptName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "receipt"
	}
	return name
}
