// Package ingress demultiplexes inbound frames, applies the secondary
// callsign filter, repairs malformed message-id suffixes, deduplicates,
// and emits acknowledgements — spec.md §4.2.
package ingress

import (
	"context"
	"log"

	"github.com/joergschultzelutter/mpad/ack"
	"github.com/joergschultzelutter/mpad/dedup"
	"github.com/joergschultzelutter/mpad/session"
)

// Request is a structured, admitted inbound message handed to the Parser.
type Request struct {
	Sender    string
	Body      string
	MessageID string // empty if the inbound frame carried none
}

// Sender writes a rendered payload to the session at a given category. The
// Ack-emitting path uses this directly rather than going through the
// Scheduler's response queue, since acks must precede the response per
// spec.md §5 ordering guarantee.
type Sender interface {
	Send(ctx context.Context, payload string, cat session.Category) error
}

// Ingress is the admission and repair stage of the pipeline.
type Ingress struct {
	secondaryFilter map[string]struct{}
	dedup           *dedup.Cache
	pending         *ack.Pending
	sender          Sender
	alias           string
	out             chan Request
}

// New creates an Ingress stage. secondaryFilter is the core's own
// whitelist of addressees it reacts to (applied after the server-side
// filter); alias is the callsign used as the "From" of emitted acks;
// pending tracks outbound ids awaiting reply-ack confirmation.
func New(secondaryFilter []string, cache *dedup.Cache, pending *ack.Pending, sender Sender, alias string) *Ingress {
	set := make(map[string]struct{}, len(secondaryFilter))
	for _, addressee := range secondaryFilter {
		set[addressee] = struct{}{}
	}
	return &Ingress{
		secondaryFilter: set,
		dedup:           cache,
		pending:         pending,
		sender:          sender,
		alias:           alias,
		out:             make(chan Request, 64),
	}
}

// Requests returns the channel of admitted, deduplicated requests ready
// for the Parser.
func (i *Ingress) Requests() <-chan Request { return i.out }

// Run consumes decoded inbound lines from lines until ctx is done,
// admitting, repairing, deduplicating, and acking each one.
func (i *Ingress) Run(ctx context.Context, lines <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			i.handleLine(ctx, line)
		}
	}
}

func (i *Ingress) handleLine(ctx context.Context, line string) {
	frame, ok := session.ParseFrame(line)
	if !ok {
		return // malformed inbound: drop silently (spec.md §7, format errors)
	}
	if frame.Format != session.FormatMessage {
		return
	}
	if len(i.secondaryFilter) > 0 {
		if _, allowed := i.secondaryFilter[frame.Addressee]; !allowed {
			return
		}
	}

	body := frame.Body
	msgID := frame.MessageID
	if msgID == "" {
		if stripped, id, found := Repair(body); found {
			body = stripped
			msgID = id
		}
	}

	// Reply-ack trailers confirm a previously sent outbound; they are not
	// a new request and never reach the Parser.
	if _, ackedID, ok := ack.ParseReplyAck(body); ok {
		i.pending.Confirm(ackedID)
		return
	}

	key := dedup.Key{Sender: frame.Sender, MessageID: msgID, PayloadHash: hashPayload(body)}
	if !i.dedup.InsertIfAbsent(key) {
		return // duplicate within TTL: no ack, no response (spec.md §4.3/§8)
	}

	if msgID != "" {
		payload := ack.BuildAck(i.alias, frame.Sender, msgID)
		if err := i.sender.Send(ctx, payload, session.CategoryAck); err != nil {
			log.Printf("ingress: ack send failed: %v", err)
		}
	}

	select {
	case i.out <- Request{Sender: frame.Sender, Body: body, MessageID: msgID}:
	case <-ctx.Done():
	}
}
