package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/corporate"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

type Handler struct {
	service corporate.Service
}

func NewHandler(service corporate.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize("ASC"); err != nil {
		response.Error(c, err)
		return
	}

	clients, total, err := h.service.List(c.Request.Context(), corporate.Filter{
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CorporateClientResponse, len(clients))
	for i, cl := range clients {
		items[i] = NewResponse(cl)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := corporate.CreateRequest{
		Name:           body.Name,
		Slug:           body.Slug,
		LogoURL:        body.LogoURL,
		DefaultPickup:  body.DefaultPickup,
		DefaultDropoff: body.DefaultDropoff,
		Notes:          body.Notes,
	}
	if body.PrimaryContact != nil {
		req.PrimaryContact = &contact.Details{
			Name:   body.PrimaryContact.Name,
			Email:  body.PrimaryContact.Email,
			Phone:  body.PrimaryContact.Phone,
			Source: "corporate_signup",
		}
	}

	cl, contactID, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateResponse{CorporateClientResponse: NewResponse(cl), PrimaryContactID: contactID})
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	cl, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(cl))
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

	cl, err := h.service.Update(c.Request.Context(), uri.ID, corporate.UpdateRequest{
		Name:           body.Name,
		Slug:           body.Slug,
		LogoURL:        body.LogoURL,
		DefaultPickup:  body.DefaultPickup,
		DefaultDropoff: body.DefaultDropoff,
		Status:         body.Status,
		Notes:          body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(cl))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Portal serves the public landing data of a partner portal.
func (h *Handler) Portal(c *gin.Context) {
	var uri SlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	cl, err := h.service.GetPortal(c.Request.Context(), uri.Slug)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPortalResponse(cl))
}
