package platform

import (
	"context"
	"net/http"
)

// IdentityClient registers subscribers and exchanges their secret for a
// bearer credential.
type IdentityClient struct {
	c *Client
}

func NewIdentityClient(c *Client) *IdentityClient {
	return &IdentityClient{c: c}
}

type registerRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Secret      string `json:"secret"`
	Name        string `json:"name"`
}

// Register creates the subscriber on the identity platform. The channel
// header tells the platform the account originates from USSD.
func (ic *IdentityClient) Register(ctx context.Context, phoneNumber, countryCode, secret, name string) error {
	return ic.c.do(ctx, request{
		service: ServiceIdentity,
		method:  http.MethodPost,
		path:    "/user",
		header:  http.Header{"Channel": []string{"USSD"}},
		body: registerRequest{
			PhoneNumber: phoneNumber,
			CountryCode: countryCode,
			Secret:      secret,
			Name:        name,
		},
	}, nil)
}

type exchangeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Secret      string `json:"secret"`
}

type exchangeResponse struct {
	AccessToken string `json:"accessToken"`
}

// Exchange trades the subscriber's secret for a bearer credential.
func (ic *IdentityClient) Exchange(ctx context.Context, phoneNumber, countryCode, secret string) (string, error) {
	var resp exchangeResponse
	err := ic.c.do(ctx, request{
		service: ServiceIdentity,
		method:  http.MethodPost,
		path:    "/user/login",
		body: exchangeRequest{
			PhoneNumber: phoneNumber,
			CountryCode: countryCode,
			Secret:      secret,
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
