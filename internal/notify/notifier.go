// internal/notify/notifier.go

// Package notify defines the contract for warning customers about overdue
// loans. The overdue sweeper produces the message and recipient list;
// delivery is this package's concern and nothing upstream retries it.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Notifier dispatches an overdue-loan alert to a batch of recipients.
type Notifier interface {
	NotifyLateLoans(ctx context.Context, message string, recipients []string) error
}

// SMTPConfig carries the connection settings for mail delivery.
type SMTPConfig struct {
	Addr    string `yaml:"addr"`
	From    string `yaml:"from"`
	Subject string `yaml:"subject"`
}

// SMTPNotifier delivers overdue alerts by mail.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier creates a mail-backed notifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// NotifyLateLoans sends one mail addressed to every recipient in the batch.
func (n *SMTPNotifier) NotifyLateLoans(_ context.Context, message string, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.cfg.From,
		strings.Join(recipients, ", "),
		n.cfg.Subject,
		message,
	)

	if err := smtp.SendMail(n.cfg.Addr, nil, n.cfg.From, recipients, []byte(body)); err != nil {
		return fmt.Errorf("failed to send overdue mail: %w", err)
	}
	return nil
}

// LogNotifier writes the alert to the log instead of delivering it.
// Default when no SMTP address is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyLateLoans logs the alert and its recipients.
func (n *LogNotifier) NotifyLateLoans(_ context.Context, message string, recipients []string) error {
	n.logger.Info("overdue notification",
		zap.String("message", message),
		zap.Strings("recipients", recipients))
	return nil
}
