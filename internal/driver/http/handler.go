package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/partybus-booking-backend/internal/driver"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/response"
	"github.com/sirupsen/logrus"
)

// CalendarProvisioner creates the driver's external calendar. Implemented by calendarsync.Service.
type CalendarProvisioner interface {
	ProvisionCalendar(ctx context.Context, driverID string) (string, error)
}

var errCalendarDisabled = apperror.New(http.StatusConflict, apperror.KindProvisioningFailed, "calendar sync is disabled")

type Handler struct {
	service     driver.Service
	trips       driver.TripSource
	provisioner CalendarProvisioner
	loc         *time.Location
	log         *logrus.Logger
	now         func() time.Time
}

func NewHandler(service driver.Service, trips driver.TripSource, provisioner CalendarProvisioner, loc *time.Location, log *logrus.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		service:     service,
		trips:       trips,
		provisioner: provisioner,
		loc:         loc,
		log:         log,
		now:         time.Now,
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListDriversRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Normalize("ASC"); err != nil {
		response.Error(c, err)
		return
	}

	drivers, total, err := h.service.List(c.Request.Context(), driver.Filter{
		Status:    req.Status,
		Search:    req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]DriverResponse, len(drivers))
	for i, d := range drivers {
		items[i] = NewResponse(d)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(d))
}

// Create stores the driver and, when an email is given, provisions its calendar.
// A provisioning failure is reported as a warning; the driver exists either way.
func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	d, err := h.service.Create(ctx, driver.CreateRequest{
		Name:   body.Name,
		Phone:  body.Phone,
		Email:  body.Email,
		Status: body.Status,
		Notes:  body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := DriverOutcomeResponse{}
	if d.Email != "" && h.provisioner != nil {
		if _, err := h.provisioner.ProvisionCalendar(ctx, d.ID); err != nil {
			h.log.WithError(err).WithField("driver_id", d.ID).Warn("calendar provisioning failed for new driver")
			resp.SyncWarning = response.NewWarning(err, fmt.Sprintf("/v1/admin/drivers/%s/calendar", d.ID))
		} else if fresh, err := h.service.GetByID(ctx, d.ID); err == nil {
			d = fresh
		}
	}
	resp.Driver = NewResponse(d)
	c.JSON(http.StatusCreated, resp)
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

	d, err := h.service.Update(c.Request.Context(), uri.ID, driver.UpdateRequest{
		Name:   body.Name,
		Phone:  body.Phone,
		Email:  body.Email,
		Status: body.Status,
		Notes:  body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(d))
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

	d, err := h.service.UpdateImage(c.Request.Context(), uri.ID, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(d))
}

// SyncCalendar provisions the driver's calendar. Drivers that already have one are returned unchanged.
func (h *Handler) SyncCalendar(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if h.provisioner == nil {
		response.Error(c, errCalendarDisabled)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.provisioner.ProvisionCalendar(ctx, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	d, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(d))
}

func (h *Handler) ScheduleICS(c *gin.Context) {
	d, trips, ok := h.loadSchedule(c, false)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := driver.WriteICS(&buf, d, trips, h.now()); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="driver-%s.ics"`, d.ID))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *Handler) TripSheet(c *gin.Context) {
	d, trips, ok := h.loadSchedule(c, true)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := driver.WriteTripSheet(&buf, d, trips, h.loc, h.now()); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="tripsheet-%s.pdf"`, d.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// loadSchedule resolves the driver and its trips for the requested days.
// With defaultToday, a request without dates covers the current business day.
func (h *Handler) loadSchedule(c *gin.Context, defaultToday bool) (*driver.Driver, []driver.Trip, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, nil, false
	}
	var req ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return nil, nil, false
	}

	from, to, err := h.scheduleRange(req, defaultToday)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}

	ctx := c.Request.Context()
	d, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}

	trips, err := h.trips.DriverTrips(ctx, d.ID, from, to)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	return d, trips, true
}

func (h *Handler) scheduleRange(req ScheduleRequest, defaultToday bool) (time.Time, time.Time, error) {
	var from, to time.Time
	if req.From != "" {
		from, _ = time.ParseInLocation(time.DateOnly, req.From, h.loc)
	}
	if req.To != "" {
		day, _ := time.ParseInLocation(time.DateOnly, req.To, h.loc)
		to = day.AddDate(0, 0, 1)
	}

	if from.IsZero() && to.IsZero() && defaultToday {
		now := h.now().In(h.loc)
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
		to = from.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return time.Time{}, time.Time{}, driver.ErrInvalidRange
	}
	return from, to, nil
}
