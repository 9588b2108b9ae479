package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/logger"
	"github.com/nekogravitycat/partybus-booking-backend/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	key = "test-signature-key"
	url = "https://api.example.com/v1/webhooks/payment"
)

type stubProcessor struct {
	got    *payment.Notification
	result payment.Result
	err    error
}

func (s *stubProcessor) Process(_ context.Context, n payment.Notification) (payment.Result, error) {
	s.got = &n
	return s.result, s.err
}

func setup(p Processor, signatureKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	RegisterRoutes(r.Group("/v1"), NewHandler(p, signatureKey, url, logger.Discard()))
	return r
}

func post(r *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(payment.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const completedBody = `{"type":"payment.updated","event_id":"e1","data":{"object":{"payment":{"id":"pay-1","status":"COMPLETED","buyer_email_address":"jane@example.com","amount_money":{"amount":30000,"currency":"CAD"}}}}}`

func TestReceive_ValidSignature(t *testing.T) {
	p := &stubProcessor{result: payment.ResultConfirmed}
	w := post(setup(p, key), completedBody, payment.Sign(key, url, []byte(completedBody)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	require.NotNil(t, p.got)
	assert.Equal(t, "pay-1", p.got.Data.Object.Payment.ID)
	assert.Equal(t, int64(30000), p.got.Data.Object.Payment.AmountMoney.Amount)
}

func TestReceive_BadSignature(t *testing.T) {
	p := &stubProcessor{}
	w := post(setup(p, key), completedBody, payment.Sign("wrong", url, []byte(completedBody)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, p.got)

	w = post(setup(p, key), completedBody, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReceive_MissingKey(t *testing.T) {
	w := post(setup(&stubProcessor{}, ""), completedBody, "anything")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReceive_MalformedBodyIsAcknowledged(t *testing.T) {
	p := &stubProcessor{}
	body := `not json`
	w := post(setup(p, key), body, payment.Sign(key, url, []byte(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, p.got)
}

func TestReceive_StoreFailureAsksForRedelivery(t *testing.T) {
	p := &stubProcessor{err: errors.New("db down")}
	w := post(setup(p, key), completedBody, payment.Sign(key, url, []byte(completedBody)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReceive_MethodNotAllowed(t *testing.T) {
	r := setup(&stubProcessor{}, key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/webhooks/payment", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
