package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	bus.Service
	created  bus.CreateRequest
	imageLen int
}

func (s *stubService) List(_ context.Context, f bus.Filter) ([]*bus.Bus, int, error) {
	return []*bus.Bus{{ID: "b1", Name: "Party Bus 1", Capacity: 20, Status: bus.StatusActive}}, 1, nil
}

func (s *stubService) GetByID(_ context.Context, id string) (*bus.Bus, error) {
	return nil, bus.ErrNotFound
}

func (s *stubService) Create(_ context.Context, req bus.CreateRequest) (*bus.Bus, error) {
	s.created = req
	return &bus.Bus{ID: "b2", Name: req.Name, Capacity: req.Capacity, Status: bus.StatusActive}, nil
}

func (s *stubService) UpdateImage(_ context.Context, id string, r io.Reader) (*bus.Bus, error) {
	raw, _ := io.ReadAll(r)
	s.imageLen = len(raw)
	return &bus.Bus{ID: id, Name: "Party Bus 1", Capacity: 20, ImageURL: "data:image/jpeg;base64,xx"}, nil
}

func setup(svc bus.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), pass)
	return r
}

func TestList_Public(t *testing.T) {
	r := setup(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/buses?status=active", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []BusResponse `json:"items"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "Party Bus 1", body.Items[0].Name)
	assert.Equal(t, []string{}, body.Items[0].Features)
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	r := setup(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/buses?status=scrapped", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGet_NotFound(t *testing.T) {
	r := setup(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/buses/6f1c1c62-4a34-4c0b-9a51-2bde7c5b7a10", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "bus not found")
}

func TestCreate_Admin(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/buses", bytes.NewBufferString(`{"name":"Limo Bus","capacity":14}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 14, svc.created.Capacity)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/admin/buses", bytes.NewBufferString(`{"name":"Limo Bus","capacity":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("image", "bus.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("12345"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/buses/6f1c1c62-4a34-4c0b-9a51-2bde7c5b7a10/image", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.imageLen)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/buses/6f1c1c62-4a34-4c0b-9a51-2bde7c5b7a10/image", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
