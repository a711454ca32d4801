package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Member is a federation member as returned by the platform.
type Member struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is one entry of a federation's transfer history.
type Transaction struct {
	ID     int64 `json:"id"`
	Amount int64 `json:"amount"`
}

// TransferRequest is the body of a mint transfer.
type TransferRequest struct {
	RecipientMemberID int64  `json:"recipientMemberId"`
	Description       string `json:"description"`
	AmountInSat       int64  `json:"amountInSat"`
}

// TransferReceipt is returned by the platform unchanged to the caller.
type TransferReceipt struct {
	ID                int64  `json:"id"`
	RecipientMemberID int64  `json:"recipientMemberId"`
	AmountInSat       int64  `json:"amountInSat"`
	Status            string `json:"status"`
}

// WalletClient performs balance, member, transfer and history calls for
// a given federation.
type WalletClient struct {
	c *Client
}

func NewWalletClient(c *Client) *WalletClient {
	return &WalletClient{c: c}
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func (wc *WalletClient) Balance(ctx context.Context, credential string, federationID int64) (int64, error) {
	var resp balanceResponse
	err := wc.c.do(ctx, request{
		service: ServiceWallet,
		method:  http.MethodGet,
		path:    fmt.Sprintf("/wallet/federation/%d/balance", federationID),
		bearer:  credential,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Members lists the federation's members. Guardian members are filtered
// out by the platform via the query parameter.
func (wc *WalletClient) Members(ctx context.Context, credential string, federationID int64) ([]Member, error) {
	var resp []Member
	err := wc.c.do(ctx, request{
		service: ServiceWallet,
		method:  http.MethodGet,
		path:    fmt.Sprintf("/member/federation/%d", federationID),
		query:   url.Values{"guardian.equals": []string{"false"}},
		bearer:  credential,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Transfer initiates a mint transfer. idempotencyKey is unique per
// attempt so a retried turn cannot double-spend.
func (wc *WalletClient) Transfer(ctx context.Context, credential string, federationID int64, req TransferRequest, idempotencyKey string) (*TransferReceipt, error) {
	var resp TransferReceipt
	err := wc.c.do(ctx, request{
		service: ServiceWallet,
		method:  http.MethodPost,
		path:    fmt.Sprintf("/wallet/federation/%d/transfer-mint", federationID),
		bearer:  credential,
		header:  http.Header{"Idempotency-Key": []string{idempotencyKey}},
		body:    req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (wc *WalletClient) History(ctx context.Context, credential string, federationID int64) ([]Transaction, error) {
	var resp []Transaction
	err := wc.c.do(ctx, request{
		service: ServiceWallet,
		method:  http.MethodGet,
		path:    fmt.Sprintf("/wallet/federation/%d/transactions", federationID),
		bearer:  credential,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
