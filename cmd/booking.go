package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/dashboard"
	"github.com/example/court-booking/internal/domain/booking"
)

const cliSession = "cli"

func newBookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Inspect and manage bookings from the command line",
	}
	cmd.AddCommand(newBookingListCmd())
	cmd.AddCommand(newBookingCreateCmd())
	cmd.AddCommand(newBookingCancelCmd())
	cmd.AddCommand(newBookingCalendarCmd())
	cmd.AddCommand(newBookingStatsCmd())
	return cmd
}

// withApp wires the app without migrations and closes it when fn returns.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func writeBookings(w io.Writer, bs []booking.Booking) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tSPORT\tCOURT\tSTATUS\tCUSTOMER\tTOTAL\tORIGIN")
	for _, b := range bs {
		fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			b.ID, b.Date, booking.FormatHour(b.StartHour), booking.FormatHour(b.EndHour),
			b.Sport, b.Court, b.Status, b.Customer.Name, b.TotalPrice, b.Origin)
	}
	return tw.Flush()
}

func newBookingListCmd() *cobra.Command {
	var f booking.Filter
	var sport string

	c := &cobra.Command{
		Use:   "list",
		Short: "List the effective bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sport != "" {
				sp, err := booking.ParseSport(sport)
				if err != nil {
					return err
				}
				f.Sport = sp
			}
			return withApp(func(ctx context.Context, a *app) error {
				return writeBookings(cmd.OutOrStdout(), a.store.Filter(f))
			})
		},
	}

	c.Flags().StringVar(&f.Date, "date", "", "date substring (YYYY-MM-DD)")
	c.Flags().StringVar(&sport, "sport", "", "Whole Basketball, Half Basketball or Pickleball")
	c.Flags().StringVar(&f.Court, "court", "", "court name")
	c.Flags().BoolVar(&f.IncludeCancelled, "cancelled", false, "include cancelled bookings")
	return c
}

func newBookingCreateCmd() *cobra.Command {
	var sport, court, date, start, end, status string
	var cust booking.Customer

	c := &cobra.Command{
		Use:   "create",
		Short: "Record a walk-in or block out a court",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := booking.ParseSport(sport)
			if err != nil {
				return err
			}
			d, err := booking.ParseDate(date)
			if err != nil {
				return err
			}
			sh, err := booking.ParseHour(start)
			if err != nil {
				return err
			}
			eh, err := booking.ParseHour(end)
			if err != nil {
				return err
			}
			st, err := booking.ParseStatus(status)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				b, err := a.adminBook().Execute(ctx, usecases.AdminRequest{
					Session:   cliSession,
					Sport:     sp,
					Court:     court,
					Date:      d,
					StartHour: sh,
					EndHour:   eh,
					Status:    st,
					Customer:  cust,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s %s %s %s-%s)\n",
					b.ID, b.Status, b.Court, b.Date, booking.FormatHour(b.StartHour), booking.FormatHour(b.EndHour))
				return nil
			})
		},
	}

	c.Flags().StringVar(&sport, "sport", "", "Whole Basketball, Half Basketball or Pickleball")
	c.Flags().StringVar(&court, "court", "", "court name")
	c.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	c.Flags().StringVar(&start, "start", "", "start hour (e.g. 10 or 10:00)")
	c.Flags().StringVar(&end, "end", "", "end hour (e.g. 12 or 12:00)")
	c.Flags().StringVar(&status, "status", string(booking.StatusConfirmed), "Confirmed or Blocked")
	c.Flags().StringVar(&cust.Name, "name", "", "customer name")
	c.Flags().StringVar(&cust.Contact, "contact", "", "customer contact number")
	c.Flags().StringVar(&cust.Email, "email", "", "customer email")
	for _, name := range []string{"sport", "court", "date", "start", "end"} {
		_ = c.MarkFlagRequired(name)
	}
	return c
}

func newBookingCancelCmd() *cobra.Command {
	var id string

	c := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a booking by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if err := a.cancel().Execute(ctx, cliSession, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", id)
				return nil
			})
		},
	}

	c.Flags().StringVar(&id, "id", "", "booking id")
	_ = c.MarkFlagRequired("id")
	return c
}

func newBookingCalendarCmd() *cobra.Command {
	var week string

	c := &cobra.Command{
		Use:   "calendar",
		Short: "Print the week's lane layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				loc := a.cfg.Location()
				start := time.Now().In(loc)
				if week != "" {
					t, err := time.ParseInLocation(booking.DateLayout, week, loc)
					if err != nil {
						return fmt.Errorf("invalid week %q (want YYYY-MM-DD)", week)
					}
					start = t
				}
				v := calendar.Week(a.store.Effective(), start, booking.Filter{}, calendar.DefaultGeometry)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Week of %s\n", v.Start)
				for _, d := range v.Days {
					fmt.Fprintf(out, "\n%s %s\n", d.Weekday, d.Date)
					for _, e := range d.Events {
						b := e.Booking
						fmt.Fprintf(out, "  %s-%s  lane %d/%d  %s %s\n",
							booking.FormatHour(b.StartHour), booking.FormatHour(b.EndHour),
							e.Column+1, e.Columns, b.Court, b.Customer.Name)
					}
				}
				return nil
			})
		},
	}

	c.Flags().StringVar(&week, "week", "", "any date in the week (YYYY-MM-DD), default this week")
	return c
}

func newBookingStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				st := dashboard.Compute(a.store.Effective(), time.Now().In(a.cfg.Location()))

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Date\t%s\n", st.Date)
				fmt.Fprintf(tw, "Today\t%d (%d active, %d cancelled, %.0f%% active)\n",
					st.TodayCount, st.ActiveToday, st.CancelledToday, st.ActiveRatio)
				fmt.Fprintf(tw, "Blocked\t%d\n", st.BlockedCount)
				fmt.Fprintf(tw, "Upcoming confirmed\t%d\n", st.FutureConfirmedCount)
				fmt.Fprintf(tw, "Unique customers\t%d\n", st.UniqueCustomerCount)
				fmt.Fprintf(tw, "Courts in use today\t%d/%d (%.2f%%)\n", st.ActiveCourts, st.TotalCourts, st.CourtUtilization)
				fmt.Fprintf(tw, "This week\t%d\n", st.WeekTotal)
				for _, sc := range st.BySport {
					fmt.Fprintf(tw, "  %s\t%d\n", sc.Sport, sc.Count)
				}
				return tw.Flush()
			})
		},
	}
}
