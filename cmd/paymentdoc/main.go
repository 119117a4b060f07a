package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildwithgo/amaro-webhooks/addons/openapi"
	"github.com/buildwithgo/amaro-webhooks/internal/payments"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := newRootCommand(log).ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Fatal("paymentdoc failed")
	}
}

// newRootCommand reads the PAYMENTDOC_* environment once a subcommand runs,
// so help and usage work with a broken environment. Flags set on the command
// line override the environment.
func newRootCommand(log *logrus.Logger) *cobra.Command {
	var (
		cfg      payments.Config
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "paymentdoc",
		Short:         "Generate and serve the Payment API OpenAPI document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := payments.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = logLevel
			}
			level, err := logrus.ParseLevel(loaded.LogLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			cfg = loaded
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error), overrides PAYMENTDOC_LOG_LEVEL")

	cmd.AddCommand(addGenerateCommand(&cfg, log))
	cmd.AddCommand(addServeCommand(&cfg, log))
	return cmd
}

func addGenerateCommand(cfg *payments.Config, log *logrus.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI 3.1 document to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output") {
				cfg.Output = output
			}
			svc, err := payments.New(*cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}

			doc, err := svc.Document(cmd.Context())
			if err != nil {
				return err
			}
			if err := openapi.WriteFile(doc, cfg.Output); err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"output":   cfg.Output,
				"paths":    len(doc.Paths),
				"webhooks": len(doc.Webhooks),
			}).Info("openapi document written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "debug.json", "Path to the output file (.json, .yaml or .yml), overrides PAYMENTDOC_OUTPUT")
	return cmd
}

func addServeCommand(cfg *payments.Config, log *logrus.Logger) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API, its document and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			reg := prometheus.NewRegistry()
			svc, err := payments.New(*cfg, log, reg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           svc.App,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.Addr).Info("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address, overrides PAYMENTDOC_ADDR")
	return cmd
}
