package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KasumiMercury/primind-overdue-reminder/internal/config"
	"github.com/KasumiMercury/primind-overdue-reminder/internal/infra/notifier"
)

func initNotifier(ctx context.Context, cfg config.NotifierConfig) (notifier.Notifier, error) {
	switch cfg.Driver {
	case config.NotifierSMTP:
		n, err := notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
			StartTLS: cfg.SMTP.StartTLS,
		})
		if err != nil {
			return nil, err
		}

		slog.Info("SMTP notifier initialized",
			"host", cfg.SMTP.Host,
			"port", cfg.SMTP.Port,
		)

		return n, nil
	case config.NotifierNATS:
		n, err := notifier.NewNATSNotifier(ctx, notifier.NATSConfig{URL: cfg.NATSURL})
		if err != nil {
			return nil, err
		}

		slog.Info("NATS notifier initialized", "url", cfg.NATSURL)

		return n, nil
	case config.NotifierLog:
		slog.Warn("log notifier selected, reminders are logged and not delivered")

		return notifier.NewLogNotifier(slog.Default()), nil
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.Driver)
	}
}
