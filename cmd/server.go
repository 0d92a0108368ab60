package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/auth"
	"github.com/example/court-booking/internal/scheduler"
	"github.com/example/court-booking/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the booking web UI, JSON API and refresh loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, migrateUp)
			if err != nil {
				return err
			}
			defer a.Close()

			s := &scheduler.Scheduler{
				Store:    a.store,
				Interval: a.cfg.RefreshInterval,
				Log:      a.log,
			}
			go func() { _ = s.Run(ctx) }()

			ws := &web.Server{
				Auth:      auth.NewStore(a.cfg.CookieHashKey, a.cfg.CookieBlockKey),
				Store:     a.store,
				Drafts:    a.drafts,
				Login:     usecases.Login{Service: a.svc},
				Submit:    a.submit(),
				AdminBook: a.adminBook(),
				Cancel:    a.cancel(),
				RPCKey:    a.cfg.RPCAPIKey,
				Location:  a.cfg.Location(),
				Log:       a.log,
			}
			if a.bookings != nil {
				ws.Receipts = a.bookings
				ws.RPC = a.bookings
			}
			return web.Start(ctx, a.cfg.ListenAddr, ws.Routes(), a.log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
