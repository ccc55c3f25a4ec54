// Package mail sends listing notifications and error alerts over SMTP.
package mail

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"

	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
)

// SendError reports a notification the transport rejected.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("mail: send failed: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Mailer delivers email over SMTP with implicit TLS. An unconfigured
// Mailer (empty host) is usable: every send fails with a SendError,
// which the workflow reports like any other transport failure.
type Mailer struct {
	addr   string
	host   string
	from   string
	auth   smtp.Auth
	tlsCfg *tls.Config
}

// New constructs a Mailer. Auth is attached only when both username and
// password are present; from falls back to username when empty.
func New(host string, port int, username, password, from string) *Mailer {
	host = strings.TrimSpace(host)
	if port <= 0 {
		port = 465
	}
	if from = strings.TrimSpace(from); from == "" {
		from = strings.TrimSpace(username)
	}

	var auth smtp.Auth
	if strings.TrimSpace(username) != "" && strings.TrimSpace(password) != "" {
		auth = smtp.PlainAuth("", strings.TrimSpace(username), strings.TrimSpace(password), host)
	}

	return &Mailer{
		addr:   net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		host:   host,
		from:   from,
		auth:   auth,
		tlsCfg: &tls.Config{ServerName: host},
	}
}

// SendResults emails the listing summary to the criteria's notification
// address. Fails with a SendError when the transport rejects the send.
func (m *Mailer) SendResults(to string, listings []model.Listing, criteria model.SearchCriteria) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return &SendError{Err: fmt.Errorf("recipient email is required")}
	}
	msg := composeResults(m.from, to, listings, criteria)
	if err := m.send(msg, to); err != nil {
		return &SendError{Err: err}
	}
	log.Printf("[mail] Sent %d listing(s) to %s", len(listings), to)
	return nil
}

// SendErrorAlert emails a failure report to the admin address. Best
// effort: a failure here is logged, never propagated, so it cannot mask
// the error that triggered it.
func (m *Mailer) SendErrorAlert(to string, runErr error) {
	body := fmt.Sprintf("Error in eBay listing monitor:\n\n%v\n", runErr)
	msg := compose(m.from, to, "eBay Monitor - Error Alert", body)
	if err := m.send(msg, to); err != nil {
		log.Printf("[mail] Failed to send error alert to %s: %v", to, err)
		return
	}
	log.Printf("[mail] Sent error alert to %s", to)
}

// Verify performs a startup self-check: dial the server, authenticate
// when configured, quit. The caller logs a failure and carries on.
func (m *Mailer) Verify() error {
	if m.host == "" {
		return fmt.Errorf("mail: SMTP_HOST is not configured")
	}
	conn, err := tls.Dial("tcp", m.addr, m.tlsCfg)
	if err != nil {
		return fmt.Errorf("mail: dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("mail: create smtp client: %w", err)
	}
	defer client.Close()

	if m.auth != nil {
		if err := client.Auth(m.auth); err != nil {
			return fmt.Errorf("mail: authenticate: %w", err)
		}
	}
	return client.Quit()
}

// composeResults builds the plain-text notification message body: one
// block per listing with the fields a bidder needs to act quickly.
func composeResults(from, to string, listings []model.Listing, criteria model.SearchCriteria) []byte {
	subject := fmt.Sprintf("%d eBay listing(s) ending within the hour", len(listings))

	var b strings.Builder
	fmt.Fprintf(&b, "Your saved search")
	if criteria.Keyword != "" {
		fmt.Fprintf(&b, " for %q", criteria.Keyword)
	}
	fmt.Fprintf(&b, " matched %d auction(s) ending within the next hour:\n\n", len(listings))

	for i, l := range listings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l.Title)
		fmt.Fprintf(&b, "   Price: $%s (%d bids)\n", l.Price, l.Bids)
		fmt.Fprintf(&b, "   Condition: %s\n", l.Condition)
		if l.Shipping != "" {
			fmt.Fprintf(&b, "   Shipping: %s\n", l.Shipping)
		}
		fmt.Fprintf(&b, "   Ends: %s\n", l.EndTime)
		fmt.Fprintf(&b, "   %s\n\n", l.URL)
	}
	b.WriteString("Good luck bidding!\n")

	return compose(from, to, subject, b.String())
}

func compose(from, to, subject, body string) []byte {
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=utf-8",
	}

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(k)
		msg.WriteString(": ")
		msg.WriteString(v)
		msg.WriteString("\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}

func (m *Mailer) send(message []byte, to string) error {
	if m.host == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	conn, err := tls.Dial("tcp", m.addr, m.tlsCfg)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Close()

	if m.auth != nil {
		if err := client.Auth(m.auth); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("get data writer: %w", err)
	}
	if _, err := wc.Write(message); err != nil {
		wc.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return client.Quit()
}
