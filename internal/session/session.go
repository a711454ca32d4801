package session

import (
	"strings"
	"time"
)

// AccountState tracks the subscriber's account lifecycle.
type AccountState string

const (
	AccountUnregistered AccountState = "unregistered"
	AccountActive       AccountState = "active"
	AccountSuspended    AccountState = "suspended"
)

// MenuState is the subscriber's position in the USSD menu tree. The
// transport layer owns menu navigation; this core only round-trips the
// value through the store.
type MenuState string

const (
	MenuMain              MenuState = "main-menu"
	MenuAwaitingPIN       MenuState = "awaiting-pin"
	MenuFederationInvite  MenuState = "federation-invite-entry"
	MenuTransferRecipient MenuState = "transfer-recipient-entry"
	MenuTransferAmount    MenuState = "transfer-amount-entry"
)

// Federation is one federation membership. Insertion order is join
// order; the first entry is the subscriber's active federation.
type Federation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the per-subscriber entity persisted between USSD turns.
// It is the single source of truth for credential and membership state.
type Session struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	PhoneNumber  string       `json:"phoneNumber"`
	CountryCode  string       `json:"countryCode"`
	Credential   string       `json:"credential,omitempty"`
	AccountState AccountState `json:"accountState"`
	MenuState    MenuState    `json:"menuState,omitempty"`
	PendingInput string       `json:"pendingInput,omitempty"`
	Federations  []Federation `json:"federations,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// KeyFromPhone derives the session identifier from the subscriber's
// phone number. USSD has no cookies or device tokens, so the phone
// number is the only stable key across turns.
func KeyFromPhone(countryCode, phoneNumber string) string {
	return strings.TrimSpace(countryCode) + ":" + strings.TrimSpace(phoneNumber)
}

// New creates an unauthenticated session for a subscriber seen for the
// first time.
func New(phoneNumber, countryCode string) *Session {
	return &Session{
		ID:           KeyFromPhone(countryCode, phoneNumber),
		PhoneNumber:  phoneNumber,
		CountryCode:  countryCode,
		AccountState: AccountUnregistered,
	}
}

// Authenticated reports whether the session carries a bearer credential.
func (s *Session) Authenticated() bool {
	return s.Credential != ""
}

// ActiveFederation returns the first federation membership, the one
// balance, member and transfer actions operate on.
func (s *Session) ActiveFederation() (Federation, bool) {
	if len(s.Federations) == 0 {
		return Federation{}, false
	}
	return s.Federations[0], true
}

// AddFederation appends a membership unless the identifier is already
// present, keeping join order intact.
func (s *Session) AddFederation(f Federation) {
	for _, existing := range s.Federations {
		if existing.ID == f.ID {
			return
		}
	}
	s.Federations = append(s.Federations, f)
}
