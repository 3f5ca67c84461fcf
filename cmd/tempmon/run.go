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

	"tempmon-go/bus"
	"tempmon-go/services/config"
	"tempmon-go/services/console"
	"tempmon-go/services/heartbeat"
	"tempmon-go/services/report"
	"tempmon-go/services/temperature"
	"tempmon-go/x/logx"
)

func runCmd(g *globalFlags) *cobra.Command {
	var (
		httpAddr    string
		interactive bool
		quiet       bool
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Poll the sensors until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			log := logx.L()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			i2c, err := g.manager(cfg).Open(cfg.Bus)
			if err != nil {
				return err
			}
			defer i2c.Close()
			log.Info("bus open", "bus", cfg.Bus, "sim", g.sim)

			pool := temperature.NewPool(i2c, temperature.WithLockTimeout(cfg.LockTimeout))

			opts := []temperature.ServiceOption{
				temperature.WithInterval(cfg.PollInterval),
				temperature.WithBusNumber(cfg.Bus),
			}
			if !quiet && !interactive {
				opts = append(opts, temperature.WithConsole(cmd.OutOrStdout()))
			}
			svc := temperature.NewService(pool, opts...)

			b := bus.NewBus(8)
			cfgConn := b.NewConnection("config")
			if err := config.NewStaticService(cfg).Publish(ctx, cfgConn); err != nil {
				return err
			}

			if err := heartbeat.New(pool, 10*cfg.PollInterval).Start(ctx, b.NewConnection("heartbeat")); err != nil {
				return err
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				svc.Run(ctx, b.NewConnection("temperature"))
			}()

			var srv *http.Server
			if cfg.HTTPAddr != "" {
				srv = &http.Server{
					Addr:              cfg.HTTPAddr,
					Handler:           report.NewMux(pool),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					log.Info("http listening", "addr", cfg.HTTPAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("http server", "err", err)
						stop()
					}
				}()
			}

			if interactive {
				con := console.New(pool, i2c, b.NewConnection("console"), cmd.OutOrStdout())
				go func() {
					if err := con.Serve(ctx, cmd.InOrStdin()); err != nil {
						log.Warn("console", "err", err)
					}
					stop()
				}()
			}

			<-ctx.Done()
			if srv != nil {
				sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				_ = srv.Shutdown(sctx)
				cancel()
			}
			<-done
			return nil
		},
	}

	c.Flags().StringVar(&httpAddr, "http", "", "serve GET /index on this address (empty disables)")
	c.Flags().BoolVarP(&interactive, "interactive", "i", false, "read console commands from stdin")
	c.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print readings every cycle")
	return c
}
