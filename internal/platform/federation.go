package platform

import (
	"context"
	"net/http"
	"net/url"
)

// Federation is a membership group as the platform reports it.
type Federation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FederationClient performs federation discovery and join-by-invitation.
// Every call carries the session's bearer credential.
type FederationClient struct {
	c *Client
}

func NewFederationClient(c *Client) *FederationClient {
	return &FederationClient{c: c}
}

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	FederationID int64  `json:"federationId"`
	Name         string `json:"name"`
}

// Join redeems an invitation code and returns the joined federation.
func (fc *FederationClient) Join(ctx context.Context, credential, invitationCode, name string) (Federation, error) {
	var resp joinResponse
	err := fc.c.do(ctx, request{
		service: ServiceFederation,
		method:  http.MethodPost,
		path:    "/member",
		query:   url.Values{"invitationCode": []string{invitationCode}},
		bearer:  credential,
		body:    joinRequest{Name: name},
	}, &resp)
	if err != nil {
		return Federation{}, err
	}
	return Federation{ID: resp.FederationID, Name: resp.Name}, nil
}

// List returns the federations the subscriber belongs to, in platform
// order.
func (fc *FederationClient) List(ctx context.Context, credential string) ([]Federation, error) {
	var resp []Federation
	err := fc.c.do(ctx, request{
		service: ServiceFederation,
		method:  http.MethodGet,
		path:    "/federations",
		bearer:  credential,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
