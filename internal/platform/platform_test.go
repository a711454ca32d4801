package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   map[string]any
}

// newServer records the last request and replies with status and reply.
func newServer(t *testing.T, status int, reply string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		rec.header = r.Header.Clone()
		rec.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func TestIdentityRegister(t *testing.T) {
	srv, rec := newServer(t, http.StatusCreated, `{}`)
	ic := NewIdentityClient(NewClient(srv.URL, time.Second, nil))

	err := ic.Register(context.Background(), "254700000001", "KE", "1234", "ussd-254700000001")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if rec.method != http.MethodPost || rec.path != "/user" {
		t.Fatalf("unexpected request: %s %s", rec.method, rec.path)
	}
	if rec.header.Get("Channel") != "USSD" {
		t.Fatalf("missing channel header: %v", rec.header)
	}
	if rec.body["phoneNumber"] != "254700000001" || rec.body["secret"] != "1234" {
		t.Fatalf("unexpected body: %v", rec.body)
	}
	if rec.body["name"] != "ussd-254700000001" {
		t.Fatalf("unexpected name: %v", rec.body["name"])
	}
}

func TestIdentityExchange(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"accessToken":"abc"}`)
	ic := NewIdentityClient(NewClient(srv.URL, time.Second, nil))

	token, err := ic.Exchange(context.Background(), "254700000001", "KE", "1234")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if token != "abc" {
		t.Fatalf("unexpected token: %q", token)
	}
	if rec.path != "/user/login" {
		t.Fatalf("unexpected path: %s", rec.path)
	}
	if rec.header.Get("Authorization") != "" {
		t.Fatal("exchange must not carry a bearer header")
	}
}

func TestExchangeRejectionSurfacesStatus(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"error":"bad secret"}`)
	ic := NewIdentityClient(NewClient(srv.URL, time.Second, nil))

	_, err := ic.Exchange(context.Background(), "254700000001", "KE", "9999")

	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if derr.Service != ServiceIdentity || derr.StatusCode != 401 {
		t.Fatalf("unexpected error: %+v", derr)
	}
}

func TestFederationJoin(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"federationId":5,"name":"Alpha"}`)
	fc := NewFederationClient(NewClient(srv.URL, time.Second, nil))

	fed, err := fc.Join(context.Background(), "abc", "invite-1", "USSD-254700000001")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if fed.ID != 5 || fed.Name != "Alpha" {
		t.Fatalf("unexpected federation: %+v", fed)
	}
	if rec.path != "/member" || rec.query["invitationCode"] != "invite-1" {
		t.Fatalf("unexpected request: %s %v", rec.path, rec.query)
	}
	if rec.header.Get("Authorization") != "Bearer abc" {
		t.Fatalf("missing bearer header: %v", rec.header)
	}
	if rec.body["name"] != "USSD-254700000001" {
		t.Fatalf("unexpected body: %v", rec.body)
	}
}

func TestFederationList(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"id":5,"name":"Alpha"},{"id":7,"name":"Beta"}]`)
	fc := NewFederationClient(NewClient(srv.URL, time.Second, nil))

	federations, err := fc.List(context.Background(), "abc")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(federations) != 2 || federations[0].ID != 5 || federations[1].Name != "Beta" {
		t.Fatalf("unexpected federations: %+v", federations)
	}
	if rec.path != "/federations" {
		t.Fatalf("unexpected path: %s", rec.path)
	}
}

func TestWalletBalance(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"balance":1000}`)
	wc := NewWalletClient(NewClient(srv.URL, time.Second, nil))

	balance, err := wc.Balance(context.Background(), "abc", 5)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 1000 {
		t.Fatalf("unexpected balance: %d", balance)
	}
	if rec.path != "/wallet/federation/5/balance" {
		t.Fatalf("unexpected path: %s", rec.path)
	}
}

func TestWalletMembersFiltersGuardians(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"id":11,"name":"wanjiku"}]`)
	wc := NewWalletClient(NewClient(srv.URL, time.Second, nil))

	members, err := wc.Members(context.Background(), "abc", 5)
	if err != nil {
		t.Fatalf("members failed: %v", err)
	}
	if len(members) != 1 || members[0].ID != 11 {
		t.Fatalf("unexpected members: %+v", members)
	}
	if rec.path != "/member/federation/5" || rec.query["guardian.equals"] != "false" {
		t.Fatalf("unexpected request: %s %v", rec.path, rec.query)
	}
}

func TestWalletTransfer(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"id":99,"recipientMemberId":12,"amountInSat":150,"status":"completed"}`)
	wc := NewWalletClient(NewClient(srv.URL, time.Second, nil))

	receipt, err := wc.Transfer(context.Background(), "abc", 5, TransferRequest{
		RecipientMemberID: 12,
		Description:       "Send 150 sats to 12",
		AmountInSat:       150,
	}, "key-1")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if receipt.ID != 99 || receipt.Status != "completed" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if rec.path != "/wallet/federation/5/transfer-mint" {
		t.Fatalf("unexpected path: %s", rec.path)
	}
	if rec.header.Get("Idempotency-Key") != "key-1" {
		t.Fatalf("missing idempotency key: %v", rec.header)
	}
	if rec.body["recipientMemberId"] != float64(12) || rec.body["amountInSat"] != float64(150) {
		t.Fatalf("unexpected body: %v", rec.body)
	}
	if rec.body["description"] != "Send 150 sats to 12" {
		t.Fatalf("unexpected description: %v", rec.body["description"])
	}
}

func TestWalletHistory(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `[{"id":1,"amount":100},{"id":2,"amount":250}]`)
	wc := NewWalletClient(NewClient(srv.URL, time.Second, nil))

	history, err := wc.History(context.Background(), "abc", 5)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 || history[1].Amount != 250 {
		t.Fatalf("unexpected history: %+v", history)
	}
	if rec.path != "/wallet/federation/5/transactions" {
		t.Fatalf("unexpected path: %s", rec.path)
	}
}

func TestTransportErrorHasZeroStatus(t *testing.T) {
	// server is closed before the call is made
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ic := NewIdentityClient(NewClient(srv.URL, time.Second, nil))
	_, err := ic.Exchange(context.Background(), "254700000001", "KE", "1234")

	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if derr.StatusCode != 0 {
		t.Fatalf("transport errors must carry status 0, got %d", derr.StatusCode)
	}
}

func TestObserveSeesEveryCall(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"balance":1}`)

	var (
		service string
		status  int
	)
	observe := func(svc string, code int, _ time.Duration) {
		service, status = svc, code
	}

	wc := NewWalletClient(NewClient(srv.URL, time.Second, observe))
	if _, err := wc.Balance(context.Background(), "abc", 5); err != nil {
		t.Fatalf("balance failed: %v", err)
	}

	if service != ServiceWallet || status != 200 {
		t.Fatalf("observe saw %s/%d", service, status)
	}
}
