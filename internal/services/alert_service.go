package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/workout-tracker/internal/auth"
	pkglogger "github.com/BradenHooton/workout-tracker/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// BruteForceAlertSubject is the subject line of every brute-force alert
const BruteForceAlertSubject = "Alert: Multiple Failed Login Attempts"

// DefaultAlertTimeout bounds a single alert delivery
const DefaultAlertTimeout = 10 * time.Second

// AlertNotifier delivers an operator alert
type AlertNotifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// sesSender is the subset of the SES client used for alerts
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESAlertNotifier sends alerts to the administrator through AWS SES
type SESAlertNotifier struct {
	client      sesSender
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewSESAlertNotifier creates a notifier using the default AWS credential chain
func NewSESAlertNotifier(ctx context.Context, region, fromAddress, toAddress string, logger *slog.Logger) (*SESAlertNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESAlertNotifier(ses.NewFromConfig(cfg), fromAddress, toAddress, logger), nil
}

func newSESAlertNotifier(client sesSender, fromAddress, toAddress string, logger *slog.Logger) *SESAlertNotifier {
	return &SESAlertNotifier{
		client:      client,
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}
}

// Notify sends a plain-text alert email
func (n *SESAlertNotifier) Notify(ctx context.Context, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{n.toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	messageID := ""
	if result != nil && result.MessageId != nil {
		messageID = *result.MessageId
	}
	n.logger.Info("alert email sent",
		slog.String("to", pkglogger.SanitizedEmail(n.toAddress)),
		slog.String("message_id", messageID))

	return nil
}

// LogAlertNotifier writes alerts to the structured log instead of sending them
type LogAlertNotifier struct {
	logger *slog.Logger
}

// NewLogAlertNotifier creates a log-only notifier
func NewLogAlertNotifier(logger *slog.Logger) *LogAlertNotifier {
	return &LogAlertNotifier{logger: logger}
}

// Notify never fails
func (n *LogAlertNotifier) Notify(ctx context.Context, subject, body string) error {
	n.logger.WarnContext(ctx, "operator alert",
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

// AlertDispatcher delivers brute-force alerts off the request path.
// Delivery failures are logged and audited, never returned.
type AlertDispatcher struct {
	notifier    AlertNotifier
	timeout     time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	wg          sync.WaitGroup
}

// NewAlertDispatcher creates a dispatcher; a non-positive timeout uses DefaultAlertTimeout
func NewAlertDispatcher(notifier AlertNotifier, timeout time.Duration, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AlertDispatcher {
	if timeout <= 0 {
		timeout = DefaultAlertTimeout
	}
	return &AlertDispatcher{
		notifier:    notifier,
		timeout:     timeout,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// Dispatch starts delivery of alert in the background and returns immediately
func (d *AlertDispatcher) Dispatch(alert *auth.BruteForceAlert) {
	if alert == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(alert)
	}()
}

// Wait blocks until every dispatched alert has finished or timed out
func (d *AlertDispatcher) Wait() {
	d.wg.Wait()
}

func (d *AlertDispatcher) deliver(alert *auth.BruteForceAlert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, BruteForceAlertSubject, FormatBruteForceAlert(alert)); err != nil {
		d.logger.Error("failed to deliver brute-force alert",
			slog.String("email", pkglogger.SanitizedEmail(alert.Identity)),
			slog.Any("error", err))
		d.auditLogger.LogSecurityAlert(pkglogger.AuditEvent{
			EventType:     pkglogger.EventAlertUndelivered,
			Email:         alert.Identity,
			FailureReason: "notifier_error",
		})
	}
}

// FormatBruteForceAlert renders the alert body sent to the administrator
func FormatBruteForceAlert(alert *auth.BruteForceAlert) string {
	return fmt.Sprintf("User with email %s has failed to log in %d times within %s.\nDetected at %s.",
		alert.Identity,
		alert.Attempts,
		alert.Window,
		alert.OccurredAt.UTC().Format(time.RFC3339))
}
