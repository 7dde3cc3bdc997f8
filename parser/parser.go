package parser

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

var knownLanguages = map[string]bool{
	"en": true, "de": true, "fr": true, "es": true, "it": true, "nl": true, "pl": true,
}

// Parse converts an admitted request's raw body plus sender callsign into
// a structured Command, following the priority order documented in
// spec.md §4.4. now supplies "today" for weekday/tonight resolution,
// senderCountry and defaultForceUnicode seed the units/unicode defaults.
func Parse(body, senderCallsign, senderCountry string, now time.Time, defaultForceUnicode bool, messageID string) Command {
	cmd := Command{
		Daytime:      "",
		Units:        DefaultUnitsForCountry(senderCountry),
		Language:     "en",
		TopN:         1,
		ForceUnicode: defaultForceUnicode,
		MessageID:    messageID,
	}

	normalized := normalize(body)
	if normalized == "" {
		cmd.Action = ActionUnknown
		return cmd
	}

	action, matchedRange, found := resolveAction(normalized)
	cmd.Action = action

	working := excise(normalized, matchedRange)
	tokens := strings.Fields(working)

	resolveTarget(&cmd, action, &tokens)
	cmd.FreeText = strings.Join(tokens, " ")
	applyModifiers(&cmd, tokens, now)

	// "metar full" combines both reports (spec.md §4.4), mirroring
	// airport_data_modules.get_metar_data(..., full_msg=True).
	if cmd.Action == ActionMetar && cmd.Daytime == DaytimeFull {
		cmd.Action = ActionMetarTafFull
	}

	if !found && cmd.Target == nil {
		// A completely unparseable line (no action keyword, no usable
		// target, no modifiers) is an ambiguous/empty intent.
		if len(tokens) == 0 {
			cmd.Action = ActionUnknown
		}
	}
	return cmd
}

// resolveAction runs the Aho-Corasick action-keyword scan, falling back
// to a single-typo Levenshtein correction, and finally defaulting to Wx
// per spec.md §4.4 resolution rules.
func resolveAction(text string) (Action, [2]int, bool) {
	if pat, start, end, ok := matchActionKeyword(text); ok {
		return pat.action, [2]int{start, end}, true
	}
	if action, start, end, ok := fuzzyActionMatch(text); ok {
		return action, [2]int{start, end}, true
	}
	return ActionWx, [2]int{-1, -1}, false
}

// fuzzyActionMatch corrects a single-character typo in the first token
// against the action keyword table (a supplemented feature, see
// DESIGN.md). Only a distance-1 best match is accepted.
func fuzzyActionMatch(text string) (Action, int, int, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", 0, 0, false
	}
	first := fields[0]
	best := -1
	var bestAction Action
	for _, p := range actionKeywords {
		d := levenshtein.ComputeDistance(first, p.word)
		if d == 1 && (best == -1 || len(p.word) < best) {
			best = len(p.word)
			bestAction = p.action
		}
	}
	if best == -1 {
		return "", 0, 0, false
	}
	return bestAction, 0, len(first), true
}

func resolveTarget(cmd *Command, action Action, tokensPtr *[]string) {
	tokens := *tokensPtr
	defer func() { *tokensPtr = tokens }()

	switch action {
	case ActionRepeater:
		filter, consumed := matchRepeaterFilters(tokens)
		cmd.Target = filter
		cmd.EchoSuppressed = len(consumed) > 0
		removeIndices(&tokens, consumed)
	case ActionDapnet, ActionDapnetHighPri:
		if len(tokens) > 0 {
			cmd.Target = DapnetUser{User: tokens[0]}
			tokens = tokens[1:]
		}
	case ActionCwop:
		if len(tokens) > 0 {
			cmd.Target = CwopStation{ID: tokens[0]}
			tokens = tokens[1:]
		}
	case ActionSatPass, ActionVisPass, ActionSatFreq:
		if len(tokens) > 0 {
			cmd.Target = SatelliteName{Name: canonicalSatelliteName(strings.Join(tokens, " "))}
			tokens = nil
		}
	case ActionOsmCategory:
		if len(tokens) > 0 {
			cmd.Target = OsmPhrase{Category: tokens[0]}
			tokens = tokens[1:]
		}
	case ActionPosMsg:
		for i, tok := range tokens {
			if emailRe.MatchString(tok) {
				cmd.Target = EmailAddress{Address: tok}
				tokens = append(tokens[:i], tokens[i+1:]...)
				break
			}
		}
	case ActionWhereIs:
		for i, tok := range tokens {
			if looksLikeCallsign(tok) {
				cmd.Target = OtherCallsign{Callsign: strings.ToUpper(tok)}
				tokens = append(tokens[:i], tokens[i+1:]...)
				break
			}
		}
		if cmd.Target == nil {
			cmd.Target = UserPosition{}
		}
	default:
		for i, tok := range tokens {
			// Modifier keywords such as "full", "morn", "eve" or "mon"
			// also fit the ICAO/IATA shapes; leave them for applyModifiers.
			if _, ok := matchDateToken(tok, time.Time{}); ok {
				continue
			}
			if _, ok := matchDaytimeToken(tok); ok {
				continue
			}
			if _, ok := matchUnitsToken(tok); ok || tok == "lang" || tok == "lng" {
				continue
			}
			if t, ok := matchBareTarget(tok); ok {
				cmd.Target = t
				tokens = append(tokens[:i], tokens[i+1:]...)
				break
			}
		}
		if cmd.Target == nil {
			// spec.md §4.4: if no target matches and the action requires
			// one, target = sender's last known position.
			cmd.Target = UserPosition{}
		}
	}
}

func applyModifiers(cmd *Command, tokens []string, now time.Time) {
	dateSet := false
	for _, tok := range tokens {
		if d, ok := matchDateToken(tok, now); ok {
			cmd.DateOffset = d
			dateSet = true
		}
	}
	for _, tok := range tokens {
		if d, ok := matchDaytimeToken(tok); ok {
			cmd.Daytime = d
			if isTonightAlias(tok) && !dateSet {
				cmd.DateOffset = DateOffset{Kind: DateToday}
			}
		}
		if u, ok := matchUnitsToken(tok); ok {
			cmd.Units = u
		}
		if n, ok := matchTopN(tok); ok {
			cmd.TopN = n
		}
		if tok == "unicode" {
			cmd.ForceUnicode = true
		}
	}
	for i := 0; i < len(tokens)-1; i++ {
		if tokens[i] == "lang" || tokens[i] == "lng" {
			code := strings.ToLower(tokens[i+1])
			if knownLanguages[code] {
				cmd.Language = code
			}
			// unknown language codes fall back to "en" silently (already default)
		}
	}
}

func removeIndices(tokens *[]string, idx []int) {
	if len(idx) == 0 {
		return
	}
	skip := make(map[int]bool, len(idx))
	for _, i := range idx {
		skip[i] = true
	}
	out := make([]string, 0, len(*tokens))
	for i, t := range *tokens {
		if !skip[i] {
			out = append(out, t)
		}
	}
	*tokens = out
}

// normalize lowercases and collapses whitespace runs, preserving the rest
// of the body for echo purposes as documented in spec.md §4.4.
func normalize(body string) string {
	return strings.Join(strings.Fields(strings.ToLower(body)), " ")
}

func excise(text string, rng [2]int) string {
	if rng[0] < 0 || rng[1] > len(text) || rng[0] > rng[1] {
		return text
	}
	return strings.TrimSpace(text[:rng[0]] + " " + text[rng[1]:])
}
