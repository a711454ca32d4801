// Package ussd holds the session-scoped action orchestrator: one
// operation per inbound USSD action. Each operation loads the caller's
// session, runs the downstream calls the action needs, folds the
// responses into the session entity and persists it at most once.
// Menu navigation is not decided here; that belongs to the transport.
package ussd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/agrimint/ussd-service/internal/platform"
	"github.com/agrimint/ussd-service/internal/session"
)

// IdentityClient registers subscribers and exchanges secrets for
// bearer credentials.
type IdentityClient interface {
	Register(ctx context.Context, phoneNumber, countryCode, secret, name string) error
	Exchange(ctx context.Context, phoneNumber, countryCode, secret string) (string, error)
}

// FederationClient performs federation discovery and join, authenticated
// with the session's credential.
type FederationClient interface {
	Join(ctx context.Context, credential, invitationCode, name string) (platform.Federation, error)
	List(ctx context.Context, credential string) ([]platform.Federation, error)
}

// WalletClient performs balance, member, transfer and history calls
// against a federation.
type WalletClient interface {
	Balance(ctx context.Context, credential string, federationID int64) (int64, error)
	Members(ctx context.Context, credential string, federationID int64) ([]platform.Member, error)
	Transfer(ctx context.Context, credential string, federationID int64, req platform.TransferRequest, idempotencyKey string) (*platform.TransferReceipt, error)
	History(ctx context.Context, credential string, federationID int64) ([]platform.Transaction, error)
}

// AttemptLimiter throttles credential attempts per phone number.
type AttemptLimiter interface {
	Allow(key string, now time.Time) bool
}

type Orchestrator struct {
	store       session.Store
	identity    IdentityClient
	federations FederationClient
	wallet      WalletClient
	limiter     AttemptLimiter // nil disables throttling
	log         *slog.Logger

	newIdempotencyKey func() string
}

func NewOrchestrator(
	store session.Store,
	identity IdentityClient,
	federations FederationClient,
	wallet WalletClient,
	limiter AttemptLimiter,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:             store,
		identity:          identity,
		federations:       federations,
		wallet:            wallet,
		limiter:           limiter,
		log:               log,
		newIdempotencyKey: uuid.NewString,
	}
}

// Activate registers the subscriber on the identity platform and then
// logs them in with the same secret. The session entity is assembled in
// memory and written once, by the embedded login, so a failed
// registration leaves nothing behind.
func (o *Orchestrator) Activate(ctx context.Context, phoneNumber, countryCode, secret string) (*session.Session, error) {
	if phoneNumber == "" || countryCode == "" {
		return nil, fmt.Errorf("%w: phone number and country code are required", ErrInvalidArgument)
	}
	if secret == "" {
		return nil, fmt.Errorf("%w: secret is required", ErrInvalidArgument)
	}
	if err := o.allowAttempt(phoneNumber); err != nil {
		return nil, err
	}

	sess, err := o.load(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.New(phoneNumber, countryCode)
	}
	if sess.Name == "" {
		sess.Name = "ussd-" + phoneNumber
	}

	if err := o.identity.Register(ctx, phoneNumber, countryCode, secret, sess.Name); err != nil {
		mapped := classify(err)
		if errors.Is(mapped, ErrUpstreamUnavailable) {
			return nil, mapped
		}
		o.log.Warn("registration rejected", "phone", phoneNumber)
		return nil, fmt.Errorf("%w: %s", ErrRegistrationRejected, err)
	}

	return o.login(ctx, sess, secret)
}

// Login exchanges the subscriber's secret for a bearer credential and
// persists it on the session. This is the only path that populates the
// credential.
func (o *Orchestrator) Login(ctx context.Context, phoneNumber, countryCode, secret string) (*session.Session, error) {
	if phoneNumber == "" || countryCode == "" {
		return nil, fmt.Errorf("%w: phone number and country code are required", ErrInvalidArgument)
	}
	if secret == "" {
		return nil, fmt.Errorf("%w: secret is required", ErrInvalidArgument)
	}
	if err := o.allowAttempt(phoneNumber); err != nil {
		return nil, err
	}

	sess, err := o.load(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		// the platform, not this gateway, is the authority on whether
		// the subscriber is registered
		sess = session.New(phoneNumber, countryCode)
	}

	return o.login(ctx, sess, secret)
}

func (o *Orchestrator) login(ctx context.Context, sess *session.Session, secret string) (*session.Session, error) {
	token, err := o.identity.Exchange(ctx, sess.PhoneNumber, sess.CountryCode, secret)
	if err != nil {
		mapped := classify(err)
		o.log.Warn("credential exchange failed", "phone", sess.PhoneNumber)
		return nil, mapped
	}

	sess.Credential = token
	sess.AccountState = session.AccountActive

	if err := o.persist(ctx, sess); err != nil {
		return nil, err
	}

	o.log.Info("subscriber logged in", "session", sess.ID)
	return sess, nil
}

// Logout clears the session credential. Calling it on an unknown or
// already logged-out session is a no-op.
func (o *Orchestrator) Logout(ctx context.Context, phoneNumber, countryCode string) error {
	sess, err := o.load(ctx, phoneNumber, countryCode)
	if err != nil {
		return err
	}
	if sess == nil || !sess.Authenticated() {
		return nil
	}

	sess.Credential = ""
	sess.MenuState = ""
	return o.persist(ctx, sess)
}

// JoinFederation redeems an invitation code and records the membership.
// Joining a federation the session already belongs to is idempotent.
func (o *Orchestrator) JoinFederation(ctx context.Context, phoneNumber, countryCode, invitationCode string) (*session.Session, error) {
	sess, err := o.authenticated(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}
	if invitationCode == "" {
		return nil, fmt.Errorf("%w: invitation code is required", ErrInvalidArgument)
	}

	fed, err := o.federations.Join(ctx, sess.Credential, invitationCode, "USSD-"+sess.PhoneNumber)
	if err != nil {
		return nil, o.bearerFailure(ctx, sess, err)
	}

	sess.AddFederation(session.Federation{
		ID:   strconv.FormatInt(fed.ID, 10),
		Name: fed.Name,
	})

	if err := o.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListFederations returns one rendered line per federation, in platform
// order, and replaces the session's membership cache with the result.
func (o *Orchestrator) ListFederations(ctx context.Context, phoneNumber, countryCode string) ([]string, error) {
	sess, err := o.authenticated(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}

	federations, err := o.federations.List(ctx, sess.Credential)
	if err != nil {
		return nil, o.bearerFailure(ctx, sess, err)
	}

	cache := make([]session.Federation, 0, len(federations))
	for _, f := range federations {
		cache = append(cache, session.Federation{
			ID:   strconv.FormatInt(f.ID, 10),
			Name: f.Name,
		})
	}
	sess.Federations = cache

	if err := o.persist(ctx, sess); err != nil {
		return nil, err
	}
	return renderFederations(federations), nil
}

// GetBalance returns the federation balance as the platform reports it.
func (o *Orchestrator) GetBalance(ctx context.Context, phoneNumber, countryCode, federationID string) (int64, error) {
	sess, err := o.authenticated(ctx, phoneNumber, countryCode)
	if err != nil {
		return 0, err
	}

	id, err := parseID(federationID)
	if err != nil {
		return 0, fmt.Errorf("%w: federation id %q", ErrInvalidArgument, federationID)
	}

	balance, err := o.wallet.Balance(ctx, sess.Credential, id)
	if err != nil {
		return 0, o.bearerFailure(ctx, sess, err)
	}
	return balance, nil
}

// ListMembers lists the non-guardian members of the active federation.
func (o *Orchestrator) ListMembers(ctx context.Context, phoneNumber, countryCode string) ([]string, error) {
	sess, err := o.authenticated(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}

	fedID, err := o.activeFederationID(sess)
	if err != nil {
		return nil, err
	}

	members, err := o.wallet.Members(ctx, sess.Credential, fedID)
	if err != nil {
		return nil, o.bearerFailure(ctx, sess, err)
	}
	return renderMembers(members), nil
}

// SendTransfer moves sats to another member of the active federation.
// Each attempt carries a fresh idempotency key, so a turn retried after
// a timeout cannot double-spend.
func (o *Orchestrator) SendTransfer(ctx context.Context, phoneNumber, countryCode, recipientID, amount string) (*platform.TransferReceipt, error) {
	sess, err := o.authenticated(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}

	recipient, err := parseID(recipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient id %q", ErrInvalidArgument, recipientID)
	}
	sats, err := parseID(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrInvalidArgument, amount)
	}

	fedID, err := o.activeFederationID(sess)
	if err != nil {
		return nil, err
	}

	receipt, err := o.wallet.Transfer(ctx, sess.Credential, fedID, platform.TransferRequest{
		RecipientMemberID: recipient,
		Description:       fmt.Sprintf("Send %s sats to %s", amount, recipientID),
		AmountInSat:       sats,
	}, o.newIdempotencyKey())
	if err != nil {
		return nil, o.bearerFailure(ctx, sess, err)
	}

	o.log.Info("transfer sent", "session", sess.ID, "federation", fedID, "amount", sats)
	return receipt, nil
}

// TransactionHistory lists the active federation's transfer history.
func (o *Orchestrator) TransactionHistory(ctx context.Context, phoneNumber, countryCode string) ([]string, error) {
	sess, err := o.authenticated(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}

	fedID, err := o.activeFederationID(sess)
	if err != nil {
		return nil, err
	}

	history, err := o.wallet.History(ctx, sess.Credential, fedID)
	if err != nil {
		return nil, o.bearerFailure(ctx, sess, err)
	}
	return renderTransactions(history), nil
}

func (o *Orchestrator) load(ctx context.Context, phoneNumber, countryCode string) (*session.Session, error) {
	sess, err := o.store.Get(ctx, session.KeyFromPhone(countryCode, phoneNumber))
	if err != nil {
		return nil, fmt.Errorf("%w: session store: %s", ErrUpstreamUnavailable, err)
	}
	return sess, nil
}

func (o *Orchestrator) persist(ctx context.Context, sess *session.Session) error {
	if err := o.store.Put(ctx, sess); err != nil {
		return fmt.Errorf("%w: session store: %s", ErrUpstreamUnavailable, err)
	}
	return nil
}

// authenticated loads the session and requires a credential. No network
// call is made when the credential is absent.
func (o *Orchestrator) authenticated(ctx context.Context, phoneNumber, countryCode string) (*session.Session, error) {
	if phoneNumber == "" || countryCode == "" {
		return nil, fmt.Errorf("%w: phone number and country code are required", ErrInvalidArgument)
	}

	sess, err := o.load(ctx, phoneNumber, countryCode)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

// bearerFailure classifies a downstream error from a bearer-authed
// call. A 401/403 means the stored credential is no longer valid, so it
// is cleared before the failure is surfaced; this is the single
// failure-path write the orchestrator performs.
func (o *Orchestrator) bearerFailure(ctx context.Context, sess *session.Session, err error) error {
	mapped := classify(err)
	if errors.Is(mapped, ErrAuthenticationFailed) {
		sess.Credential = ""
		if perr := o.persist(ctx, sess); perr != nil {
			o.log.Error("failed to clear rejected credential", "session", sess.ID, "error", perr)
		}
	}
	return mapped
}

func (o *Orchestrator) activeFederationID(sess *session.Session) (int64, error) {
	fed, ok := sess.ActiveFederation()
	if !ok {
		return 0, fmt.Errorf("%w: no federation membership", ErrNotFound)
	}
	id, err := parseID(fed.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: federation id %q", ErrInvalidArgument, fed.ID)
	}
	return id, nil
}

func (o *Orchestrator) allowAttempt(phoneNumber string) error {
	if o.limiter == nil {
		return nil
	}
	if !o.limiter.Allow(phoneNumber, time.Now()) {
		return fmt.Errorf("%w: phone %s", ErrTooManyAttempts, phoneNumber)
	}
	return nil
}

// parseID parses a non-negative integer identifier or amount.
func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
