package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

type Handler struct {
	service bus.Service
}

func NewHandler(service bus.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBusesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize("ASC"); err != nil {
		response.Error(c, err)
		return
	}

	buses, total, err := h.service.List(c.Request.Context(), bus.Filter{
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BusResponse, len(buses))
	for i, b := range buses {
		items[i] = NewResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), bus.CreateRequest{
		Name:          body.Name,
		Capacity:      body.Capacity,
		Status:        body.Status,
		Color:         body.Color,
		Features:      body.Features,
		StartingPrice: body.StartingPrice,
		Notes:         body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, bus.UpdateRequest{
		Name:          body.Name,
		Capacity:      body.Capacity,
		Status:        body.Status,
		Color:         body.Color,
		Features:      body.Features,
		StartingPrice: body.StartingPrice,
		Notes:         body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(b))
}

func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	f, err := request.OpenUpload(c, request.DefaultImageField)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	b, err := h.service.UpdateImage(c.Request.Context(), uri.ID, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(b))
}
