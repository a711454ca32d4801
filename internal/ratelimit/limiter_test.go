package ratelimit

import (
	"testing"
	"time"
)

func TestBurstThenDeny(t *testing.T) {
	l := New(1, 3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.Allow("254700000001", now) {
			t.Fatalf("attempt %d within burst must be allowed", i)
		}
	}
	if l.Allow("254700000001", now) {
		t.Fatal("attempt beyond burst must be denied")
	}
}

func TestRefillOverTime(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()

	if !l.Allow("254700000001", now) {
		t.Fatal("first attempt must be allowed")
	}
	if l.Allow("254700000001", now) {
		t.Fatal("second immediate attempt must be denied")
	}
	if !l.Allow("254700000001", now.Add(2*time.Second)) {
		t.Fatal("attempt after refill must be allowed")
	}
}

func TestPhonesAreIndependent(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()

	if !l.Allow("254700000001", now) {
		t.Fatal("first phone must be allowed")
	}
	if !l.Allow("254700000002", now) {
		t.Fatal("second phone must have its own bucket")
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var l *PhoneLimiter
	if !l.Allow("254700000001", time.Now()) {
		t.Fatal("nil limiter must allow")
	}

	if New(0, 5, time.Minute) != nil {
		t.Fatal("invalid rate must yield a nil limiter")
	}
	if New(1, 0, time.Minute) != nil {
		t.Fatal("invalid burst must yield a nil limiter")
	}
}

func TestEmptyKeyIsAllowed(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Now()

	for i := 0; i < 5; i++ {
		if !l.Allow("  ", now) {
			t.Fatal("blank keys must not be throttled")
		}
	}
}
