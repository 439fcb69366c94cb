package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aslboq/catering-backend/internal/mailer"
)

// EmailHandler exposes direct transactional mail for admins, e.g. sending a
// published BOQ to a customer.
type EmailHandler struct {
	Mail mailer.Mailer
}

func NewEmailHandler(m mailer.Mailer) *EmailHandler {
	return &EmailHandler{Mail: m}
}

type sendEmailReq struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body"`
}

// Send delivers one email synchronously. Delivery failure is a 503, same
// as everywhere else mail is sent.
func (h *EmailHandler) Send(c echo.Context) error {
	var req sendEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.To = normalizeEmail(req.To)
	req.Subject = strings.TrimSpace(req.Subject)
	if req.To == "" || req.Subject == "" || (req.TextBody == "" && req.HTMLBody == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to/subject/body required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	msg := mailer.Message{To: req.To, Subject: req.Subject, TextBody: req.TextBody, HTMLBody: req.HTMLBody}
	if err := h.Mail.Send(ctx, msg); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "could not send email"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email sent"})
}
