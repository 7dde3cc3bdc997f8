// Package ack implements the legacy ack/rej wire format and the in-band
// reply-ack variant (spec.md §4.8). Wire format grounded verbatim on
// original_source/src/aprs_communication.py::send_ack.
package ack

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

// BuildAck renders a legacy acknowledgement line addressed to recipient.
// The addressee field is padded to 9 characters per the APRS message
// format, matching aprs_communication.py's f"{users_callsign:9}" padding.
func BuildAck(fromAlias, recipient, messageID string) string {
	return fmt.Sprintf("%s>APRS::%-9s:ack%s", fromAlias, recipient, messageID)
}

// BuildReject renders a rejection line. Used only when the system
// explicitly refuses a semantically invalid but acknowledgeable message;
// ordinary semantic errors are returned as a normal response instead.
func BuildReject(fromAlias, recipient, messageID string) string {
	return fmt.Sprintf("%s>APRS::%-9s:rej%s", fromAlias, recipient, messageID)
}

var replyAckPattern = regexp.MustCompile(`\{([A-Za-z0-9]{1,5})\}([A-Za-z0-9]{1,5})$`)

// ParseReplyAck extracts (messageID, acknowledgedID) from an inbound
// payload carrying a "{msgid}ackoriginalid"-shaped trailer. ok is false
// when no such trailer is present.
func ParseReplyAck(body string) (messageID, acknowledgedID string, ok bool) {
	m := replyAckPattern.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Pending tracks outbound message ids awaiting confirmation via either a
// legacy ack/rej from the remote or an in-band reply-ack trailer. Swept on
// the same cadence as the dedup cache.
type Pending struct {
	mu   sync.Mutex
	ids  map[string]time.Time
}

// NewPending creates an empty pending-confirmation tracker.
func NewPending() *Pending {
	return &Pending{ids: make(map[string]time.Time)}
}

// Track records an outbound id as awaiting confirmation.
func (p *Pending) Track(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids[id] = time.Now()
}

// Confirm marks id as acknowledged and reports whether it had been
// tracked (i.e. whether this is a real confirmation, not a stray one).
func (p *Pending) Confirm(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[id]; !ok {
		return false
	}
	delete(p.ids, id)
	return true
}

// Sweep drops tracked ids older than maxAge. The core never retransmits
// unacked outbound (spec.md §4.8 / Non-goals); this only bounds memory.
func (p *Pending) Sweep(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.ids {
		if t.Before(cutoff) {
			delete(p.ids, id)
		}
	}
}
