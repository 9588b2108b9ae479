package http

import (
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/bus"
	"github.com/nekogravitycat/partybus-booking-backend/internal/pkg/request"
)

// BusTag is the short form embedded in booking responses.
type BusTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BusResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Capacity      int       `json:"capacity"`
	Status        string    `json:"status"`
	Color         string    `json:"color,omitempty"`
	Features      []string  `json:"features"`
	StartingPrice int64     `json:"starting_price"`
	ImageURL      string    `json:"image_url,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewResponse(b *bus.Bus) BusResponse {
	features := b.Features
	if features == nil {
		features = []string{}
	}
	return BusResponse{
		ID:            b.ID,
		Name:          b.Name,
		Capacity:      b.Capacity,
		Status:        string(b.Status),
		Color:         b.Color,
		Features:      features,
		StartingPrice: b.StartingPrice,
		ImageURL:      b.ImageURL,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type ListBusesRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=active maintenance inactive"`
}

type CreateRequest struct {
	Name          string   `json:"name" binding:"required"`
	Capacity      int      `json:"capacity" binding:"required,gt=0"`
	Status        string   `json:"status" binding:"omitempty,oneof=active maintenance inactive"`
	Color         string   `json:"color"`
	Features      []string `json:"features"`
	StartingPrice int64    `json:"starting_price" binding:"gte=0"`
	Notes         string   `json:"notes"`
}

type UpdateRequest struct {
	Name          *string   `json:"name"`
	Capacity      *int      `json:"capacity" binding:"omitempty,gt=0"`
	Status        *string   `json:"status" binding:"omitempty,oneof=active maintenance inactive"`
	Color         *string   `json:"color"`
	Features      *[]string `json:"features"`
	StartingPrice *int64    `json:"starting_price" binding:"omitempty,gte=0"`
	Notes         *string   `json:"notes"`
}
