package session

import (
	"testing"
)

func TestKeyFromPhone(t *testing.T) {
	if got := KeyFromPhone("KE", "254700000001"); got != "KE:254700000001" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := KeyFromPhone(" KE ", " 254700000001 "); got != "KE:254700000001" {
		t.Fatalf("whitespace must be trimmed: %q", got)
	}
}

func TestNewSessionIsUnregistered(t *testing.T) {
	s := New("254700000001", "KE")
	if s.ID != KeyFromPhone("KE", "254700000001") {
		t.Fatalf("unexpected id: %q", s.ID)
	}
	if s.AccountState != AccountUnregistered {
		t.Fatalf("unexpected account state: %q", s.AccountState)
	}
	if s.Authenticated() {
		t.Fatal("new session must not carry a credential")
	}
}

func TestActiveFederation(t *testing.T) {
	s := New("254700000001", "KE")

	if _, ok := s.ActiveFederation(); ok {
		t.Fatal("empty membership must have no active federation")
	}

	s.Federations = []Federation{
		{ID: "5", Name: "Alpha"},
		{ID: "7", Name: "Beta"},
	}
	active, ok := s.ActiveFederation()
	if !ok || active.ID != "5" {
		t.Fatalf("active federation must be the first entry, got %+v", active)
	}
}

func TestAddFederationDeduplicates(t *testing.T) {
	s := New("254700000001", "KE")

	s.AddFederation(Federation{ID: "5", Name: "Alpha"})
	s.AddFederation(Federation{ID: "7", Name: "Beta"})
	s.AddFederation(Federation{ID: "5", Name: "Alpha again"})

	if len(s.Federations) != 2 {
		t.Fatalf("expected two memberships, got %+v", s.Federations)
	}
	if s.Federations[0].ID != "5" || s.Federations[1].ID != "7" {
		t.Fatalf("join order must be preserved: %+v", s.Federations)
	}
}
