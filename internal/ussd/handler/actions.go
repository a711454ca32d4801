package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Secret      string `json:"secret"`
}

func (h *Handler) Activate(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.orchestrator.Activate(
		c.Request.Context(),
		req.PhoneNumber,
		req.CountryCode,
		req.Secret,
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "activated",
		"session": viewOf(sess),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.orchestrator.Login(
		c.Request.Context(),
		req.PhoneNumber,
		req.CountryCode,
		req.Secret,
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "logged_in",
		"session": viewOf(sess),
	})
}

type subscriberRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
}

func (h *Handler) Logout(c *gin.Context) {
	var req subscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.orchestrator.Logout(
		c.Request.Context(),
		req.PhoneNumber,
		req.CountryCode,
	); err != nil {
		fail(c, err)
		return
	}

	// idempotent response
	c.Status(http.StatusNoContent)
}

type joinFederationRequest struct {
	PhoneNumber    string `json:"phoneNumber"`
	CountryCode    string `json:"countryCode"`
	InvitationCode string `json:"invitationCode"`
}

func (h *Handler) JoinFederation(c *gin.Context) {
	var req joinFederationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.orchestrator.JoinFederation(
		c.Request.Context(),
		req.PhoneNumber,
		req.CountryCode,
		req.InvitationCode,
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "joined",
		"session": viewOf(sess),
	})
}

func (h *Handler) ListFederations(c *gin.Context) {
	lines, err := h.orchestrator.ListFederations(
		c.Request.Context(),
		c.Query("phoneNumber"),
		c.Query("countryCode"),
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.orchestrator.GetBalance(
		c.Request.Context(),
		c.Query("phoneNumber"),
		c.Query("countryCode"),
		c.Query("federationId"),
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

func (h *Handler) ListMembers(c *gin.Context) {
	lines, err := h.orchestrator.ListMembers(
		c.Request.Context(),
		c.Query("phoneNumber"),
		c.Query("countryCode"),
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

type transferRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	RecipientID string `json:"recipientId"`
	Amount      string `json:"amount"`
}

func (h *Handler) SendTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	receipt, err := h.orchestrator.SendTransfer(
		c.Request.Context(),
		req.PhoneNumber,
		req.CountryCode,
		req.RecipientID,
		req.Amount,
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

func (h *Handler) TransactionHistory(c *gin.Context) {
	lines, err := h.orchestrator.TransactionHistory(
		c.Request.Context(),
		c.Query("phoneNumber"),
		c.Query("countryCode"),
	)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}
