package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matijazezelj/assetutil/internal/reminder"
	"github.com/matijazezelj/assetutil/internal/server"
)

// --- serve ---

func serveCmd() *cobra.Command {
	var listen string
	var readOnly bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()
			cfg := rt.cfg

			if listen == "" {
				listen = cfg.Server.Listen
			}

			srv := server.New(rt.inv, logger, server.Options{
				Listen:         listen,
				ReadOnly:       readOnly || cfg.Server.ReadOnly,
				APIToken:       cfg.Server.APIToken,
				CORSOrigin:     cfg.Server.CORSOrigin,
				MaxUploadBytes: cfg.Server.MaxUploadBytes,
				RateLimit:      cfg.Server.RateLimit,
			})

			// Scheduled maintenance reminders
			if cfg.Maintenance.RemindersEnabled {
				alerter, cleanup, err := buildAlerter(cfg.Alerts)
				if err != nil {
					return err
				}
				defer cleanup()

				if alerter.Len() == 0 {
					logger.Warn("maintenance reminders enabled but no alert channel is configured")
				} else {
					sched, err := reminder.New(rt.inv.Maintenance, rt.inv.Assets, alerter,
						cfg.Maintenance.ReminderInterval, cfg.Maintenance.ReminderHorizon, logger)
					if err != nil {
						logger.Error("invalid reminder settings", "error", err)
					} else {
						sched.Start(ctx)
						defer sched.Stop()
					}
				}
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config or :8080)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "only register GET routes")
	return cmd
}
