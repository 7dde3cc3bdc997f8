// Package mail sends an outbound position-report email, and tracks
// when previously-sent reports should be pruned from the retention
// ledger.
//
// Built on stdlib net/smtp — DESIGN.md records the justification: no
// repo or other_examples file in the pack sends email, and mpad's own
// original_source has no SMTP client to imitate either (it shells out
// to a local MTA), so there is no corpus library call to ground a
// third-party SMTP client on.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// Report is one position report queued for email delivery.
type Report struct {
	ToAddress string
	Subject   string
	Body      string
	SentAt    time.Time
}

// Client sends position-report emails via a configured SMTP relay.
type Client struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func New(host string, port int, username, password, from string) *Client {
	return &Client{Host: host, Port: port, Username: username, Password: password, From: from}
}

// Send delivers one report via SMTP with PLAIN auth over the relay.
func (c *Client) Send(r Report) error {
	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	auth := smtp.PlainAuth("", c.Username, c.Password, c.Host)

	msg := strings.Join([]string{
		"From: " + c.From,
		"To: " + r.ToAddress,
		"Subject: " + r.Subject,
		"",
		r.Body,
		"",
	}, "\r\n")

	return smtp.SendMail(addr, auth, c.From, []string{r.ToAddress}, []byte(msg))
}

// RetentionCutoff returns the instant before which a report sent at
// sentAt should be pruned, given a retention window.
func RetentionCutoff(now time.Time, retention time.Duration) time.Time {
	return now.Add(-retention)
}

// ShouldPrune reports whether r is older than the retention cutoff.
func ShouldPrune(r Report, now time.Time, retention time.Duration) bool {
	return r.SentAt.Before(RetentionCutoff(now, retention))
}
