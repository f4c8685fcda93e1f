package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
)

// MailNotifier queues the caregiver message as an email in an IMAP mailbox.
// The recipient is <contact>@<gateway domain>, which suits email-to-SMS
// gateways; an outgoing relay watching the mailbox does the sending.
type MailNotifier struct {
	cfg      model.MailConfig
	password string
	logger   *slog.Logger

	// appendFn stores a raw message; replaced in tests.
	appendFn func(ctx context.Context, raw []byte) error
}

// NewMailNotifier creates a notifier for the given mail settings.
func NewMailNotifier(cfg model.MailConfig, password string, logger *slog.Logger) *MailNotifier {
	n := &MailNotifier{
		cfg:      cfg,
		password: password,
		logger:   logging.OrDiscard(logger),
	}
	n.appendFn = n.imapAppend
	return n
}

// AdherenceConfirmed implements Notifier.
func (n *MailNotifier) AdherenceConfirmed(ctx context.Context, ev Event) error {
	raw, err := n.Compose(ev)
	if err != nil {
		return err
	}
	if err := n.appendFn(ctx, raw); err != nil {
		return fmt.Errorf("queueing mail for %s: %w", ev.Contact, err)
	}
	n.logger.Info("caregiver mail queued",
		slog.String("mailbox", n.cfg.Mailbox),
		slog.String("to", n.recipient(ev.Contact)),
	)
	return nil
}

// Compose renders ev as an RFC 5322 message.
func (n *MailNotifier) Compose(ev Event) ([]byte, error) {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	var h mail.Header
	h.SetDate(at)
	h.SetAddressList("From", []*mail.Address{{Name: "medreminder", Address: n.from()}})
	h.SetAddressList("To", []*mail.Address{{Address: n.recipient(ev.Contact)}})
	h.SetSubject("Medication taken: " + ev.Medication.Name)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating mail writer: %w", err)
	}
	if _, err := io.WriteString(w, Message(ev)+"\r\n"); err != nil {
		return nil, fmt.Errorf("writing mail body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing mail writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (n *MailNotifier) recipient(contact string) string {
	if strings.Contains(contact, "@") || n.cfg.GatewayDomain == "" {
		return contact
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, contact)
	return digits + "@" + n.cfg.GatewayDomain
}

func (n *MailNotifier) from() string {
	if n.cfg.From != "" {
		return n.cfg.From
	}
	return n.cfg.Username
}

// imapAppend logs in and APPENDs raw to the configured mailbox.
func (n *MailNotifier) imapAppend(ctx context.Context, raw []byte) error {
	addr := n.cfg.Host + ":" + n.cfg.Port

	var (
		client *imapclient.Client
		err    error
	)
	if n.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}
	defer client.Close()

	// Unblock pending commands if the deadline passes.
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	if err := client.Login(n.cfg.Username, n.password).Wait(); err != nil {
		return fmt.Errorf("authenticating as %s: %w", n.cfg.Username, err)
	}
	defer func() { _ = client.Logout().Wait() }()

	cmd := client.Append(n.cfg.Mailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagDraft},
		Time:  time.Now(),
	})
	if _, err := cmd.Write(raw); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("closing append: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("appending to %s: %w", n.cfg.Mailbox, err)
	}
	return nil
}
