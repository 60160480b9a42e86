package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"silosremeco/backend/internal/config"
	"silosremeco/backend/internal/contact"
	"silosremeco/backend/internal/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.load(nil)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateSecurityConfig(cfg); err != nil {
		return fmt.Errorf("invalid security configuration: %w", err)
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(log)

	api := httpapi.New(a.catalog, newContactService(cfg, log), httpapi.Config{
		AllowedOrigin: cfg.AllowedOrigin,
		PublicSiteURL: cfg.PublicSiteURL,
		Formatter:     a.formatter,
		Logger:        log,
	})

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Address()).Info("silos backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sig:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown error")
	}
	log.Info("server stopped")
	return nil
}

func newContactService(cfg config.Config, log logrus.FieldLogger) *contact.Service {
	var mailer contact.Mailer
	if cfg.SMTPHost != "" {
		mailer = contact.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.EmailReceiver)
		log.WithField("host", cfg.SMTPHost).Info("contact delivery: smtp")
	} else {
		mailer = contact.NewLogMailer(log)
		log.Info("contact delivery: log only")
	}
	if cfg.RecaptchaSecret == "" {
		log.Warn("RECAPTCHA_SECRET is empty; contact submissions will be rejected")
	}

	return contact.NewService(
		contact.NewTokenIssuer(cfg.FormTokenSecret, cfg.FormTokenTTL()),
		contact.NewRecaptchaVerifier(cfg.RecaptchaSecret, cfg.RecaptchaVerifyURL, nil),
		mailer,
		contact.WithLogger(log),
	)
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.FormTokenSecret) < 32 {
		return fmt.Errorf("FORM_TOKEN_SECRET must be set and at least 32 characters")
	}
	if cfg.SMTPHost != "" && cfg.EmailReceiver == "" {
		return fmt.Errorf("EMAIL_RECEIVER must be set when SMTP_HOST is configured")
	}
	if cfg.AllowedOrigin == "*" {
		return fmt.Errorf("ALLOWED_ORIGIN must name the site origin, not a wildcard")
	}
	return nil
}
