package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/court-booking/internal/domain/booking"
)

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts booking events to an admin chat.
type Notifier struct {
	Bot    Sender
	ChatID int64
}

func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Notifier{Bot: bot, ChatID: chatID}, nil
}

func (n *Notifier) BookingCreated(ctx context.Context, b booking.Booking) error {
	title := "🏀 *New booking*"
	if b.Status == booking.StatusBlocked {
		title = "⛔ *Court blocked*"
	}
	return n.send(ctx, title, b)
}

func (n *Notifier) BookingCancelled(ctx context.Context, b booking.Booking) error {
	return n.send(ctx, "❌ *Booking cancelled*", b)
}

func (n *Notifier) send(ctx context.Context, title string, b booking.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.ChatID, Format(title, b))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Format renders b as a short Markdown message.
func Format(title string, b booking.Booking) string {
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	fmt.Fprintf(&sb, "%s · %s\n", escape(string(b.Sport)), escape(b.Court))
	fmt.Fprintf(&sb, "%s %s\n", b.Date, b.TimeRange())
	if name := strings.TrimSpace(b.Customer.Name); name != "" {
		fmt.Fprintf(&sb, "👤 %s", escape(name))
		if b.Customer.Contact != "" {
			fmt.Fprintf(&sb, " (%s)", escape(b.Customer.Contact))
		}
		sb.WriteString("\n")
	}
	if b.TotalPrice > 0 {
		fmt.Fprintf(&sb, "💰 ₱%.0f", b.TotalPrice)
		if b.PaymentMethod != "" {
			fmt.Fprintf(&sb, " · %s", escape(string(b.PaymentMethod)))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "`%s`", b.ID)
	return sb.String()
}

var mdEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string { return mdEscaper.Replace(s) }
