// Package email sends scan digest notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"

	"salespulse_backend/internal/events"
	"salespulse_backend/internal/tasks/repository"
	"salespulse_backend/platform/config"
	"salespulse_backend/platform/logger"
)

// SettingsReader looks up the tenant's digest address.
type SettingsReader interface {
	GetAISettings(ctx context.Context, tenantID uuid.UUID) (repository.AISettings, error)
}

// DigestSender emails a short digest after a scan that produced critical
// tasks. It subscribes to ScanCompleted events; delivery failures are
// logged, never propagated back to the scan.
type DigestSender struct {
	cfg      config.EmailConfig
	settings SettingsReader
	log      *logger.Logger
}

// NewDigestSender creates the digest sender.
func NewDigestSender(cfg config.EmailConfig, settings SettingsReader, log *logger.Logger) *DigestSender {
	return &DigestSender{cfg: cfg, settings: settings, log: log}
}

// RegisterHandlers subscribes to scan completion events.
func (d *DigestSender) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ScanCompleted{}.EventName(), d)
}

// Handle routes events to the digest logic.
func (d *DigestSender) Handle(ctx context.Context, event events.Event) error {
	scan, ok := event.(events.ScanCompleted)
	if !ok {
		return nil
	}
	return d.sendDigest(ctx, scan)
}

func (d *DigestSender) sendDigest(ctx context.Context, scan events.ScanCompleted) error {
	if !d.cfg.GetEmailEnabled() || scan.CriticalCount == 0 {
		return nil
	}

	settings, err := d.settings.GetAISettings(ctx, scan.TenantID)
	if err != nil {
		return err
	}
	if settings.DigestEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("%d critical sales tasks need attention", scan.CriticalCount)
	body := fmt.Sprintf(
		"<p>A %s scan finished with <strong>%d critical tasks</strong>.</p>"+
			"<p>Tasks created: %d<br>Tasks updated: %d</p>"+
			"<p>Open the tasks board to review them.</p>",
		scan.TriggerType, scan.CriticalCount, scan.TasksCreated, scan.TasksUpdated,
	)

	if err := d.send(ctx, settings.DigestEmail, subject, body); err != nil {
		d.log.Warn("digest email failed",
			"tenant_id", scan.TenantID.String(),
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (d *DigestSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(d.cfg.GetEmailFromName(), d.cfg.GetEmailFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(d.cfg.GetSMTPHost(),
		gomail.WithPort(d.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(d.cfg.GetSMTPUsername()),
		gomail.WithPassword(d.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
