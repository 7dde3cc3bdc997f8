package fragment

import (
	"strings"
	"testing"

	"github.com/joergschultzelutter/mpad/dispatch"
)

func tok(s string) dispatch.Token { return dispatch.Token{Text: s} }

func TestRenderRespectsMaxPayload(t *testing.T) {
	resp := dispatch.Response{Lines: []dispatch.Line{
		{tok(strings.Repeat("a", 60)), tok(strings.Repeat("b", 60))},
	}}
	out := Render(resp, "", true)
	for _, f := range out {
		if len(f.Payload) > MaxPayload {
			t.Fatalf("fragment exceeds %d bytes: %d", MaxPayload, len(f.Payload))
		}
	}
	if len(out) < 2 {
		t.Fatalf("expected overflow into a second fragment, got %d", len(out))
	}
}

func TestRenderAssignsIDsOnlyWhenInboundHadOne(t *testing.T) {
	resp := dispatch.Response{Lines: []dispatch.Line{{tok("hi")}}}

	withID := Render(resp, "1", true)
	if withID[0].MessageID == "" {
		t.Fatal("expected outbound id when inbound carried one")
	}

	withoutID := Render(resp, "", true)
	if withoutID[0].MessageID != "" {
		t.Fatal("expected no outbound id when inbound carried none")
	}
}

func TestRenderTransliteratesUnlessForceUnicode(t *testing.T) {
	resp := dispatch.Response{Lines: []dispatch.Line{{tok("Holzminden;DE Bedeckt ü")}}}

	out := Render(resp, "", false)
	for _, b := range []byte(out[0].Payload) {
		if b < 0x20 || b > 0x7E {
			t.Fatalf("payload has non-7-bit byte %x with force_unicode=false", b)
		}
	}

	unicodeOut := Render(resp, "", true)
	if !strings.Contains(unicodeOut[0].Payload, "ü") {
		t.Fatal("expected unicode to survive when force_unicode=true")
	}
}

func TestHardSplitSingleLongWord(t *testing.T) {
	long := strings.Repeat("x", 200)
	parts := hardSplit(long)
	for _, p := range parts {
		if len(p) > MaxPayload {
			t.Fatalf("chop exceeded max len: %d", len(p))
		}
	}
}
