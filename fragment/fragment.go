// Package fragment renders a dispatch.Response as one or more payloads
// that respect the APRS-IS 67-byte ceiling, and attaches outbound
// message-ids.
//
// The append-if-fits / open-new-fragment / word-split-then-hard-chop
// policy is taken directly from
// original_source/src/utility_modules.py's make_pretty_aprs_messages
// and its split_string_to_string_list fallback.
package fragment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joergschultzelutter/mpad/dispatch"
)

// MaxPayload is the APRS-IS protocol ceiling for a single fragment.
const MaxPayload = 67

// Outbound is one rendered fragment ready for the session.
type Outbound struct {
	Payload   string
	MessageID string
	ReplyAck  string
}

// Render splits resp into fragments no longer than MaxPayload bytes.
// If inboundMessageID is non-empty, each fragment is assigned a fresh
// outbound id (per spec.md §4.6's outgoing message-id policy);
// otherwise fragments carry no id.
func Render(resp dispatch.Response, inboundMessageID string, forceUnicode bool) []Outbound {
	var lines []string
	for _, ln := range resp.Lines {
		lines = append(lines, renderLine(ln, forceUnicode))
	}

	var fragments []string
	for _, ln := range lines {
		fragments = appendPretty(fragments, ln, " ", true)
	}
	if len(fragments) == 0 {
		fragments = []string{""}
	}

	out := make([]Outbound, len(fragments))
	for i, f := range fragments {
		out[i] = Outbound{Payload: f}
		if inboundMessageID != "" {
			out[i].MessageID = newOutboundID()
		}
	}
	return out
}

// WireLine renders a fragment as a complete APRS-IS message addressed
// back to recipient, in the "FROM>APRS::RECIPIENT :payload{id}" shape
// (spec.md §3's message format), ready for session.Session.Send.
func (o Outbound) WireLine(fromAlias, recipient string) string {
	line := fmt.Sprintf("%s>APRS::%-9s:%s", fromAlias, recipient, o.Payload)
	if o.MessageID != "" {
		line += "{" + o.MessageID
	}
	return line
}

func renderLine(ln dispatch.Line, forceUnicode bool) string {
	var sb strings.Builder
	for i, tok := range ln {
		text := tok.Text
		if !forceUnicode {
			text = Transliterate(text)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// appendPretty mirrors make_pretty_aprs_messages: if the addition fits
// on the current (last) fragment, append it with a separator; if it
// doesn't fit but is itself short enough, open a new fragment; if it
// exceeds MaxPayload on its own, hard-split it across as many new
// fragments as needed.
func appendPretty(dest []string, addition, sep string, addSep bool) []string {
	if len(dest) == 0 {
		dest = append(dest, "")
	}

	if len(addition) > MaxPayload {
		return append(dest, hardSplit(addition)...)
	}

	last := dest[len(dest)-1]
	delimiter := ""
	if len(last) > 0 && addSep {
		delimiter = sep
	}
	if len(last)+len(delimiter)+len(addition) <= MaxPayload {
		dest[len(dest)-1] = last + delimiter + addition
		return dest
	}
	return append(dest, addition)
}

// hardSplit breaks a too-long string on word boundaries first, falling
// back to a hard byte-67 chop for any single word that is itself too
// long.
func hardSplit(s string) []string {
	words := strings.Fields(s)
	if len(words) <= 1 {
		return chopBytes(s, MaxPayload)
	}

	var out []string
	cur := ""
	for _, w := range words {
		if len(w) > MaxPayload {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			out = append(out, chopBytes(w, MaxPayload)...)
			continue
		}
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if len(candidate) <= MaxPayload {
			cur = candidate
		} else {
			out = append(out, cur)
			cur = w
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func chopBytes(s string, maxLen int) []string {
	var out []string
	for len(s) > 0 {
		n := maxLen
		if n > len(s) {
			n = len(s)
		}
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

func newOutboundID() string {
	return strings.ToUpper(uuid.New().String())[:5]
}
