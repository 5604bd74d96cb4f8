package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"

	"github.com/gin-gonic/gin"
)

var errNotAccountOwner = fmt.Errorf("%w: users may only delete their own account", shared.ErrForbidden)

func (h *Handler) RegisterUser(c *gin.Context) {
	var req inbound.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, "RegisterUser", err)
		return
	}
	user, err := h.services.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "RegisterUser", err)
		return
	}
	JSONResponse(c, http.StatusCreated, user, "user registered")
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.Accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "GetUser", err)
		return
	}
	JSONResponse(c, http.StatusOK, user, "user retrieved")
}

// DeleteUser removes the caller's account and everything that references it
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if userID != callerID(c) {
		h.writeError(c, "DeleteUser", errNotAccountOwner)
		return
	}
	if err := h.services.Accounts.DeleteUser(c.Request.Context(), userID); err != nil {
		h.writeError(c, "DeleteUser", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req inbound.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, "SubmitFeedback", err)
		return
	}
	req.UserID = callerID(c)

	fb, err := h.services.Feedback.SubmitFeedback(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "SubmitFeedback", err)
		return
	}
	JSONResponse(c, http.StatusCreated, fb, "feedback recorded")
}

func (h *Handler) ListFeedback(c *gin.Context) {
	userID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.services.Feedback.ListFeedback(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, "ListFeedback", err)
		return
	}
	JSONResponse(c, http.StatusOK, entries, "feedback retrieved")
}

func (h *Handler) FileReport(c *gin.Context) {
	var req inbound.FileReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, "FileReport", err)
		return
	}
	req.ReporterID = callerID(c)

	report, err := h.services.Feedback.FileReport(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "FileReport", err)
		return
	}
	JSONResponse(c, http.StatusCreated, report, "report filed")
}

func (h *Handler) MyNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	notes, err := h.services.Notifications.List(c.Request.Context(), callerID(c), unreadOnly)
	if err != nil {
		h.writeError(c, "MyNotifications", err)
		return
	}
	JSONResponse(c, http.StatusOK, notes, "notifications retrieved")
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Notifications.MarkRead(c.Request.Context(), callerID(c), notificationID); err != nil {
		h.writeError(c, "MarkNotificationRead", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyTransactions(c *gin.Context) {
	txs, err := h.services.Settlement.ListTransactions(c.Request.Context(), callerID(c))
	if err != nil {
		h.writeError(c, "MyTransactions", err)
		return
	}
	JSONResponse(c, http.StatusOK, txs, "transactions retrieved")
}
