package parser

import "sync"

// acNode/acScanner reproduce the teacher's rbn/client.go Aho-Corasick
// scanner structure verbatim: the same one-pass multi-keyword tagging
// problem (classify tokens in a free-text line against a known keyword
// table) recurs here for action keywords instead of RBN spot tokens.
type acPattern struct {
	word   string
	action Action
}

type acMatch struct {
	start, end int
	pattern    acPattern
}

type acNode struct {
	fail    int
	next    map[byte]int
	outputs []int
}

type acScanner struct {
	patterns []acPattern
	nodes    []acNode
}

func newACScanner(patterns []acPattern) *acScanner {
	sc := &acScanner{
		patterns: patterns,
		nodes:    []acNode{{next: make(map[byte]int)}},
	}
	for idx, p := range patterns {
		state := 0
		for i := 0; i < len(p.word); i++ {
			ch := p.word[i]
			next, ok := sc.nodes[state].next[ch]
			if !ok {
				next = len(sc.nodes)
				sc.nodes = append(sc.nodes, acNode{next: make(map[byte]int)})
				sc.nodes[state].next[ch] = next
			}
			state = next
		}
		sc.nodes[state].outputs = append(sc.nodes[state].outputs, idx)
	}

	queue := make([]int, 0, len(sc.nodes))
	for _, next := range sc.nodes[0].next {
		queue = append(queue, next)
	}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for ch, next := range sc.nodes[state].next {
			fail := sc.nodes[state].fail
			for fail > 0 {
				if target, ok := sc.nodes[fail].next[ch]; ok {
					fail = target
					break
				}
				fail = sc.nodes[fail].fail
			}
			sc.nodes[next].fail = fail
			sc.nodes[next].outputs = append(sc.nodes[next].outputs, sc.nodes[fail].outputs...)
			queue = append(queue, next)
		}
	}
	return sc
}

// FindAll returns every pattern occurrence in text (byte-exact, case
// already normalized by the caller).
func (sc *acScanner) FindAll(text string) []acMatch {
	if sc == nil {
		return nil
	}
	state := 0
	matches := make([]acMatch, 0, 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		next, ok := sc.nodes[state].next[ch]
		for !ok && state > 0 {
			state = sc.nodes[state].fail
			next, ok = sc.nodes[state].next[ch]
		}
		if ok {
			state = next
		}
		if len(sc.nodes[state].outputs) == 0 {
			continue
		}
		end := i + 1
		for _, pid := range sc.nodes[state].outputs {
			p := sc.patterns[pid]
			start := end - len(p.word)
			if start >= 0 {
				matches = append(matches, acMatch{start: start, end: end, pattern: p})
			}
		}
	}
	return matches
}

// actionKeywords enumerates the multi-word action keywords in priority
// order 1 (spec.md §4.4). Longer/more specific spellings are listed before
// their aliases so the scanner's longest-match-at-position behavior picks
// the most specific tag.
var actionKeywords = []acPattern{
	{word: "dapnethp", action: ActionDapnetHighPri},
	{word: "dapnet", action: ActionDapnet},
	{word: "posmsg", action: ActionPosMsg},
	{word: "posrpt", action: ActionPosMsg},
	{word: "sonde", action: ActionSonde},
	{word: "satpass", action: ActionSatPass},
	{word: "vispass", action: ActionVisPass},
	{word: "satfreq", action: ActionSatFreq},
	{word: "cwop", action: ActionCwop},
	{word: "metar", action: ActionMetar},
	{word: "taf", action: ActionTaf},
	{word: "icao", action: ActionMetar},
	{word: "iata", action: ActionMetar},
	{word: "whereis", action: ActionWhereIs},
	{word: "whereami", action: ActionWhereAmI},
	{word: "riseset", action: ActionRiseSet},
	{word: "repeater", action: ActionRepeater},
	{word: "osm", action: ActionOsmCategory},
	{word: "fortuneteller", action: ActionFortune},
	{word: "magic8ball", action: ActionFortune},
	{word: "magic8", action: ActionFortune},
	{word: "m8b", action: ActionFortune},
	{word: "help", action: ActionHelp},
	{word: "info", action: ActionHelp},
	{word: "grid", action: ActionWx},
	{word: "mh", action: ActionWx},
	{word: "zip", action: ActionWx},
	{word: "wx", action: ActionWx},
}

var (
	actionScannerOnce sync.Once
	actionScanner     *acScanner
)

func getActionScanner() *acScanner {
	actionScannerOnce.Do(func() {
		actionScanner = newACScanner(actionKeywords)
	})
	return actionScanner
}

// matchActionKeyword returns the first whole-token action keyword match in
// text (a lowercased, whitespace-normalized body) and the byte range it
// occupied, scanning left to right.
func matchActionKeyword(text string) (acPattern, int, int, bool) {
	matches := getActionScanner().FindAll(text)
	best := acMatch{end: -1}
	for _, m := range matches {
		// Require a token boundary on both sides so "icao" inside a
		// longer word (e.g. a callsign) never matches.
		if !isLeftBoundary(text, m.start) || !isRightBoundary(text, m.end) {
			continue
		}
		if best.end == -1 || m.start < best.start || (m.start == best.start && len(m.pattern.word) > len(best.pattern.word)) {
			best = m
		}
	}
	if best.end == -1 {
		return acPattern{}, 0, 0, false
	}
	return best.pattern, best.start, best.end, true
}

// isLeftBoundary reports whether pos starts a new token: either the
// start of text, or immediately preceded by a space.
func isLeftBoundary(text string, pos int) bool {
	return pos <= 0 || text[pos-1] == ' '
}

// isRightBoundary reports whether pos ends a token: either the end of
// text, or immediately followed by a space.
func isRightBoundary(text string, pos int) bool {
	return pos >= len(text) || text[pos] == ' '
}
