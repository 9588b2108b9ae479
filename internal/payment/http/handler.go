package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/payment"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// Processor is implemented by payment.Service.
type Processor interface {
	Process(ctx context.Context, n payment.Notification) (payment.Result, error)
}

type Handler struct {
	service         Processor
	signatureKey    string
	notificationURL string
	log             *logrus.Logger
}

func NewHandler(service Processor, signatureKey, notificationURL string, log *logrus.Logger) *Handler {
	return &Handler{
		service:         service,
		signatureKey:    signatureKey,
		notificationURL: notificationURL,
		log:             log,
	}
}

// Receive verifies the notification signature and acknowledges the delivery.
// Only store failures answer 500 so the provider redelivers.
func (h *Handler) Receive(c *gin.Context) {
	if h.signatureKey == "" {
		h.log.Error("payment webhook signature key is not configured")
		c.String(http.StatusInternalServerError, "Internal Server Error: Missing signature key.")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	if !payment.Verify(h.signatureKey, h.notificationURL, body, c.GetHeader(payment.SignatureHeader)) {
		h.log.WithField("remote_addr", c.ClientIP()).Warn("payment webhook signature validation failed")
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	var n payment.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		h.log.WithError(err).Warn("payment webhook body is not valid JSON")
		c.String(http.StatusOK, "OK")
		return
	}

	result, err := h.service.Process(c.Request.Context(), n)
	if err != nil {
		h.log.WithError(err).WithField("event_id", n.EventID).Error("payment webhook processing failed")
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.log.WithFields(logrus.Fields{"event_id": n.EventID, "result": result}).Info("payment webhook handled")
	c.String(http.StatusOK, "OK")
}
