package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/booking"
	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
	"github.com/nekogravitycat/partybus-booking-backend/internal/corporate"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
)

// PortalLookup resolves an active partner portal. Implemented by corporate.Service.
type PortalLookup interface {
	GetPortal(ctx context.Context, slug string) (*corporate.CorporateClient, error)
}

type Handler struct {
	service booking.Service
	portals PortalLookup
}

func NewHandler(service booking.Service, portals PortalLookup) *Handler {
	return &Handler{service: service, portals: portals}
}

// Create records a public quote request as a pending booking.
func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.CheckCapacity(ctx, body.BusID, body.PassengerCount); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(ctx, body.ToDraft(booking.SourceWebQuote), body.Contact.ToDomain(string(booking.SourceWebQuote)), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPublicResponse(b))
}

func (h *Handler) CreateExpress(c *gin.Context) {
	var body ExpressRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.CheckCapacity(ctx, body.BusID, body.PassengerCount); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.CreateExpress(ctx, booking.ExpressDraft{
		BusID:          body.BusID,
		StartTime:      body.StartTime,
		PassengerCount: body.PassengerCount,
		Contact: contact.Details{
			Name:   body.Contact.Name,
			Email:  body.Contact.Email,
			Phone:  body.Contact.Phone,
			Source: "express",
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPublicResponse(b))
}

// CreatePortal books through a partner portal, linking new contacts to the partner.
func (h *Handler) CreatePortal(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	client, err := h.portals.GetPortal(ctx, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.CheckCapacity(ctx, body.BusID, body.PassengerCount); err != nil {
		response.Error(c, err)
		return
	}

	if body.PickupLocation == "" {
		body.PickupLocation = client.DefaultPickup
	}
	if body.DropoffLocation == "" {
		body.DropoffLocation = client.DefaultDropoff
	}

	b, err := h.service.Create(ctx,
		body.ToDraft(booking.SourcePartnerPortal),
		body.Contact.ToDomain(string(booking.SourcePartnerPortal)),
		&contact.CorporateInfo{ID: client.ID, Name: client.Name},
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPublicResponse(b))
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var body AdminCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.CheckCapacity(ctx, body.BusID, body.PassengerCount); err != nil {
		response.Error(c, err)
		return
	}

	source := booking.SourceAdminManual
	if body.BookingSource != "" {
		source = booking.Source(body.BookingSource)
	}
	draft := body.ToDraft(source)
	draft.QuoteAmount = body.QuoteAmount

	b, err := h.service.Create(ctx, draft, body.Contact.ToDomain(string(source)), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize("ASC"); err != nil {
		response.Error(c, err)
		return
	}

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		BusID:             req.BusID,
		DriverID:          req.DriverID,
		ContactID:         req.ContactID,
		CorporateClientID: req.CorporateClientID,
		Status:            req.Status,
		From:              req.From,
		To:                req.To,
		Page:              req.Page,
		PageSize:          req.PageSize,
		SortOrder:         req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
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

	out, err := h.service.Update(c.Request.Context(), uri.ID, body.ToDomain(), body.Contact.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOutcomeResponse(out))
}

func (h *Handler) Confirm(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body ConfirmRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	out, err := h.service.Confirm(c.Request.Context(), uri.ID, body.DriverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOutcomeResponse(out))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	out, err := h.service.Cancel(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOutcomeResponse(out))
}

// ResyncCalendar is the retry path named in sync warnings.
func (h *Handler) ResyncCalendar(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	b, err := h.service.ResyncCalendar(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(b))
}
