package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/corporate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientID = "3b0a6c1e-7f4d-4e8a-9d2c-5a1b6c7d8e9f"

func acme() *corporate.CorporateClient {
	return &corporate.CorporateClient{
		ID:            clientID,
		Name:          "Acme Corp",
		Slug:          "acme",
		DefaultPickup: "Acme HQ",
		Status:        corporate.StatusActive,
		Notes:         "net 30 invoicing",
	}
}

type stubService struct {
	corporate.Service
	filter  corporate.Filter
	created corporate.CreateRequest
	updated corporate.UpdateRequest
	deleted string
}

func (s *stubService) List(_ context.Context, f corporate.Filter) ([]*corporate.CorporateClient, int, error) {
	s.filter = f
	return []*corporate.CorporateClient{acme()}, 1, nil
}

func (s *stubService) GetByID(_ context.Context, id string) (*corporate.CorporateClient, error) {
	if id != clientID {
		return nil, corporate.ErrNotFound
	}
	return acme(), nil
}

func (s *stubService) GetPortal(_ context.Context, slug string) (*corporate.CorporateClient, error) {
	switch slug {
	case "acme":
		return acme(), nil
	case "dormant":
		return nil, corporate.ErrInactive
	}
	return nil, corporate.ErrNotFound
}

func (s *stubService) Create(_ context.Context, req corporate.CreateRequest) (*corporate.CorporateClient, string, error) {
	s.created = req
	if req.Slug == "taken" {
		return nil, "", corporate.ErrSlugTaken
	}
	contactID := ""
	if req.PrimaryContact != nil {
		contactID = "contact-1"
	}
	c := acme()
	c.Name = req.Name
	return c, contactID, nil
}

func (s *stubService) Update(_ context.Context, id string, req corporate.UpdateRequest) (*corporate.CorporateClient, error) {
	s.updated = req
	c := acme()
	if req.Status != nil {
		c.Status = corporate.Status(*req.Status)
	}
	return c, nil
}

func (s *stubService) Delete(_ context.Context, id string) error {
	if id != clientID {
		return corporate.ErrNotFound
	}
	s.deleted = id
	return nil
}

func setup(svc corporate.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), pass)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPortal_Public(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	RegisterRoutes(r.Group("/v1"), NewHandler(&stubService{}), deny)

	w := send(r, http.MethodGet, "/v1/portal/acme", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PortalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Acme Corp", resp.Name)
	assert.Equal(t, "Acme HQ", resp.DefaultPickup)
	assert.NotContains(t, w.Body.String(), "net 30")
	assert.NotContains(t, w.Body.String(), clientID)

	w = send(r, http.MethodGet, "/v1/portal/dormant", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "booking portal is not available")

	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/v1/portal/nobody", "").Code)
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodGet, "/v1/admin/corporate-clients", "").Code)
}

func TestList(t *testing.T) {
	svc := &stubService{}
	w := send(setup(svc), http.MethodGet, "/v1/admin/corporate-clients?status=active", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []CorporateClientResponse `json:"items"`
		Total int                       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "acme", body.Items[0].Slug)
	assert.Equal(t, "active", svc.filter.Status)
	assert.Equal(t, "ASC", svc.filter.SortOrder)

	w = send(setup(svc), http.MethodGet, "/v1/admin/corporate-clients?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	w := send(r, http.MethodPost, "/v1/admin/corporate-clients",
		`{"name":"Acme Corp","slug":"acme","primary_contact":{"name":"Pat","email":"pat@acme.test"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created.PrimaryContact)
	assert.Equal(t, "pat@acme.test", svc.created.PrimaryContact.Email)
	assert.Equal(t, "corporate_signup", svc.created.PrimaryContact.Source)

	var resp CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contact-1", resp.PrimaryContactID)
	assert.Equal(t, clientID, resp.ID)

	w = send(r, http.MethodPost, "/v1/admin/corporate-clients", `{"name":"Solo"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "primary_contact_id")

	w = send(r, http.MethodPost, "/v1/admin/corporate-clients", `{"name":"Acme","primary_contact":{"name":"Pat","email":"bad"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPost, "/v1/admin/corporate-clients", `{"name":"Acme","slug":"taken"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGet(t *testing.T) {
	r := setup(&stubService{})

	w := send(r, http.MethodGet, "/v1/admin/corporate-clients/"+clientID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "net 30 invoicing")

	w = send(r, http.MethodGet, "/v1/admin/corporate-clients/00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	w := send(r, http.MethodPatch, "/v1/admin/corporate-clients/"+clientID, `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.updated.Status)
	assert.Equal(t, "inactive", *svc.updated.Status)
	assert.Nil(t, svc.updated.Name)
	assert.Contains(t, w.Body.String(), `"status":"inactive"`)

	w = send(r, http.MethodPatch, "/v1/admin/corporate-clients/"+clientID, `{"status":"paused"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	w := send(r, http.MethodDelete, "/v1/admin/corporate-clients/"+clientID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, clientID, svc.deleted)

	w = send(r, http.MethodDelete, "/v1/admin/corporate-clients/00000000-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
