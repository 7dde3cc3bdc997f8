package dedup

import (
	"testing"
	"time"
)

func TestInsertIfAbsentSuppressesDuplicate(t *testing.T) {
	c := New(time.Minute, 10)
	key := Key{Sender: "N0CALL", PayloadHash: "abc123"}

	if !c.InsertIfAbsent(key) {
		t.Fatal("first insert should succeed")
	}
	if c.InsertIfAbsent(key) {
		t.Fatal("second insert of the same key should be suppressed")
	}
}

func TestInsertIfAbsentDistinguishesByMessageID(t *testing.T) {
	c := New(time.Minute, 10)
	a := Key{Sender: "N0CALL", MessageID: "1", PayloadHash: "same"}
	b := Key{Sender: "N0CALL", MessageID: "2", PayloadHash: "same"}

	if !c.InsertIfAbsent(a) {
		t.Fatal("a should be new")
	}
	if !c.InsertIfAbsent(b) {
		t.Fatal("identical payload with a different message-id must be treated as a new request")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	c := New(time.Hour, 2)
	k1 := Key{Sender: "A", PayloadHash: "1"}
	k2 := Key{Sender: "B", PayloadHash: "2"}
	k3 := Key{Sender: "C", PayloadHash: "3"}

	c.InsertIfAbsent(k1)
	c.InsertIfAbsent(k2)
	c.InsertIfAbsent(k3)

	if c.Len() != 2 {
		t.Fatalf("expected capacity-bounded length 2, got %d", c.Len())
	}
	if !c.InsertIfAbsent(k1) {
		t.Error("k1 should have been evicted and therefore re-insertable")
	}
}

func TestSweepExpiresByTTL(t *testing.T) {
	c := New(10*time.Millisecond, 10)
	key := Key{Sender: "N0CALL", PayloadHash: "x"}
	c.InsertIfAbsent(key)

	time.Sleep(20 * time.Millisecond)
	c.sweep(time.Now())

	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be swept, got len=%d", c.Len())
	}
	if !c.InsertIfAbsent(key) {
		t.Error("key should be insertable again after TTL sweep")
	}
}
