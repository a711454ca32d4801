// Package handler exposes one HTTP route per orchestrator action. The
// telco-facing USSD menu runs elsewhere; it drives these routes turn by
// turn and renders the returned lines to the handset.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrimint/ussd-service/internal/session"
	"github.com/agrimint/ussd-service/internal/ussd"
)

type Handler struct {
	orchestrator *ussd.Orchestrator
}

func NewHandler(orchestrator *ussd.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/ussd")

	g.POST("/activate", h.Activate)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/federations", h.JoinFederation)
	g.GET("/federations", h.ListFederations)
	g.GET("/balance", h.GetBalance)
	g.GET("/members", h.ListMembers)
	g.POST("/transfer", h.SendTransfer)
	g.GET("/transactions", h.TransactionHistory)
}

// sessionView is the session as returned to the transport layer. The
// bearer credential never leaves the gateway.
type sessionView struct {
	ID           string               `json:"id"`
	Name         string               `json:"name,omitempty"`
	PhoneNumber  string               `json:"phoneNumber"`
	CountryCode  string               `json:"countryCode"`
	AccountState session.AccountState `json:"accountState"`
	MenuState    session.MenuState    `json:"menuState,omitempty"`
	Federations  []session.Federation `json:"federations,omitempty"`
}

func viewOf(s *session.Session) sessionView {
	return sessionView{
		ID:           s.ID,
		Name:         s.Name,
		PhoneNumber:  s.PhoneNumber,
		CountryCode:  s.CountryCode,
		AccountState: s.AccountState,
		MenuState:    s.MenuState,
		Federations:  s.Federations,
	}
}

// fail maps the orchestrator taxonomy onto HTTP status codes.
func fail(c *gin.Context, err error) {
	var status int

	switch {
	case errors.Is(err, ussd.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, ussd.ErrUnauthenticated),
		errors.Is(err, ussd.ErrAuthenticationFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, ussd.ErrRegistrationRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ussd.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ussd.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
	case errors.Is(err, ussd.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
