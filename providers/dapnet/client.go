// Package dapnet sends pager messages via the DAPNET HTTP gateway,
// grounded on original_source/src/dapnet_modules.py's
// send_dapnet_message (HTTP Basic Auth POST, SSID stripped from both
// callsigns, 80-char payload budget minus the "FROM: " header).
package dapnet

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxPayload is DAPNET's hard per-message character limit.
const maxPayload = 80

var ssidRe = regexp.MustCompile(`(?i)^([A-Z0-9]{1,3}[0-9][A-Z0-9]{0,3})-([A-Z0-9]{1,2})$`)

func stripSSID(callsign string) string {
	if m := ssidRe.FindStringSubmatch(strings.ToUpper(callsign)); m != nil {
		return m[1]
	}
	return strings.ToUpper(callsign)
}

// Client posts pager messages to a DAPNET gateway for one transmitter
// group, authenticating with a DAPNET account's callsign/passcode.
type Client struct {
	APIServer         string
	TransmitterGroup  string
	LoginCallsign     string
	LoginPasscode     string
	HTTP              *http.Client
}

func New(apiServer, transmitterGroup, loginCallsign, loginPasscode string) *Client {
	return &Client{
		APIServer:        apiServer,
		TransmitterGroup: transmitterGroup,
		LoginCallsign:    loginCallsign,
		LoginPasscode:    loginPasscode,
		HTTP:             http.DefaultClient,
	}
}

// Enabled reports whether DAPNET credentials have actually been
// configured (config.NoCallSentinel means "not configured").
func (c *Client) Enabled() bool {
	return strings.ToUpper(c.LoginCallsign) != "NOCALL" && c.LoginCallsign != ""
}

type payload struct {
	Text                  string   `json:"text"`
	CallSignNames         []string `json:"callSignNames"`
	TransmitterGroupNames []string `json:"transmitterGroupNames"`
	Emergency             bool     `json:"emergency"`
}

// Send dispatches a pager message from fromCallsign to toCallsign.
// highPriority marks the message as a DAPNET emergency broadcast.
func (c *Client) Send(ctx context.Context, fromCallsign, toCallsign, message string, highPriority bool) error {
	if !c.Enabled() {
		return fmt.Errorf("dapnet: credentials not configured")
	}

	from := stripSSID(fromCallsign)
	to := stripSSID(toCallsign)

	budget := maxPayload - len(from) - 2
	if budget < 0 {
		budget = 0
	}
	if len(message) > budget {
		message = message[:budget]
	}

	body, err := json.Marshal(payload{
		Text:                  fmt.Sprintf("%s: %s", from, message),
		CallSignNames:         []string{to},
		TransmitterGroupNames: []string{c.TransmitterGroup},
		Emergency:             highPriority,
	})
	if err != nil {
		return fmt.Errorf("dapnet: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIServer, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dapnet: build request: %w", err)
	}
	req.SetBasicAuth(c.LoginCallsign, c.LoginPasscode)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("dapnet: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("dapnet: gateway returned status %d", resp.StatusCode)
	}
	return nil
}
