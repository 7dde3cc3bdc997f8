package ingress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joergschultzelutter/mpad/ack"
	"github.com/joergschultzelutter/mpad/dedup"
	"github.com/joergschultzelutter/mpad/session"
)

type recordingSender struct {
	mu       sync.Mutex
	payloads []string
}

func (r *recordingSender) Send(ctx context.Context, payload string, cat session.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingSender) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

func TestIngressAcksAndEmitsRequest(t *testing.T) {
	sender := &recordingSender{}
	ing := New([]string{"WXBOT"}, dedup.New(time.Minute, 10), ack.NewPending(), sender, "WXBOT")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	line := "N0CALL>APRS,TCPIP*::WXBOT    :wx{1"
	ing.handleLine(ctx, line)

	select {
	case req := <-ing.Requests():
		if req.Sender != "N0CALL" || req.Body != "wx" || req.MessageID != "1" {
			t.Fatalf("unexpected request: %+v", req)
		}
	default:
		t.Fatal("expected a request to be emitted")
	}

	acks := sender.snapshot()
	if len(acks) != 1 {
		t.Fatalf("expected exactly one ack sent, got %d", len(acks))
	}
}

func TestIngressDropsDuplicate(t *testing.T) {
	sender := &recordingSender{}
	ing := New(nil, dedup.New(time.Minute, 10), ack.NewPending(), sender, "WXBOT")
	ctx := context.Background()

	line := "N0CALL>APRS,TCPIP*::WXBOT    :wx"
	ing.handleLine(ctx, line)
	ing.handleLine(ctx, line)

	count := 0
	for {
		select {
		case <-ing.Requests():
			count++
		default:
			goto done
		}
	}
done:
	if count != 1 {
		t.Fatalf("expected exactly one emitted request, got %d", count)
	}
}

func TestIngressFiltersUnknownAddressee(t *testing.T) {
	sender := &recordingSender{}
	ing := New([]string{"WXBOT"}, dedup.New(time.Minute, 10), ack.NewPending(), sender, "WXBOT")
	ctx := context.Background()

	line := "N0CALL>APRS,TCPIP*::OTHERBOT :wx"
	ing.handleLine(ctx, line)

	select {
	case <-ing.Requests():
		t.Fatal("expected no request for an addressee outside the secondary filter")
	default:
	}
}
