package ingress

import "regexp"

// defectiveMessageID matches a trailing brace-delimited 1-5 alphanumeric
// id that the upstream line parser failed to detect as a proper message-id
// suffix. Grounded verbatim on
// original_source/src/aprs_communication.py::extract_msgno_from_defective_message.
var defectiveMessageID = regexp.MustCompile(`(?i)^(.*)\{([a-zA-Z0-9]{1,5})\}$`)

// Repair attempts to recover a trailing message-id from body that the
// session-layer frame decode missed. It returns the stripped body and the
// recovered id; ok is false when no such suffix is present.
func Repair(body string) (strippedBody, messageID string, ok bool) {
	m := defectiveMessageID.FindStringSubmatch(body)
	if m == nil {
		return body, "", false
	}
	return m[1], m[2], true
}
