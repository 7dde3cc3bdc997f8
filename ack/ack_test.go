package ack

import (
	"testing"
	"time"
)

func TestBuildAckFormat(t *testing.T) {
	got := BuildAck("WXBOT", "N0CALL-9", "12345")
	want := "WXBOT>APRS::N0CALL-9 :ack12345"
	if got != want {
		t.Errorf("BuildAck = %q, want %q", got, want)
	}
}

func TestBuildAckPadsShortCallsign(t *testing.T) {
	got := BuildAck("WXBOT", "N0C", "1")
	want := "WXBOT>APRS::N0C      :ack1"
	if got != want {
		t.Errorf("BuildAck = %q, want %q", got, want)
	}
}

func TestParseReplyAck(t *testing.T) {
	msgID, ackedID, ok := ParseReplyAck("Sunny skies{AB12}3")
	if !ok {
		t.Fatal("expected reply-ack trailer to parse")
	}
	if msgID != "AB12" || ackedID != "3" {
		t.Errorf("got msgID=%q ackedID=%q", msgID, ackedID)
	}
}

func TestParseReplyAckAbsent(t *testing.T) {
	if _, _, ok := ParseReplyAck("plain text with no trailer"); ok {
		t.Error("expected no reply-ack match")
	}
}

func TestPendingConfirm(t *testing.T) {
	p := NewPending()
	p.Track("42")
	if !p.Confirm("42") {
		t.Fatal("expected tracked id to confirm")
	}
	if p.Confirm("42") {
		t.Error("confirming twice should fail the second time")
	}
	if p.Confirm("99") {
		t.Error("confirming an untracked id should fail")
	}
}

func TestPendingSweep(t *testing.T) {
	p := NewPending()
	p.Track("1")
	time.Sleep(5 * time.Millisecond)
	p.Sweep(1 * time.Millisecond)
	if p.Confirm("1") {
		t.Error("expected id to be swept before it could be confirmed")
	}
}
