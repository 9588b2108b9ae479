package driver

import (
	"context"
	"io"
	"net/mail"
	"strings"
)

type CreateRequest struct {
	Name   string
	Phone  string
	Email  string
	Status string
	Notes  string
}

type UpdateRequest struct {
	Name   *string
	Phone  *string
	Email  *string
	Status *string
	Notes  *string
}

// ImageEncoder turns an upload into the URL stored on the driver. Implemented by imaging.Processor.
type ImageEncoder interface {
	DataURL(content io.Reader) (string, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Driver, error)
	GetByID(ctx context.Context, id string) (*Driver, error)
	List(ctx context.Context, filter Filter) ([]*Driver, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Driver, error)
	UpdateImage(ctx context.Context, id string, content io.Reader) (*Driver, error)

	// SetCalendar records a provisioned calendar and marks the driver's calendar healthy.
	SetCalendar(ctx context.Context, id, calendarID string) error
	// MarkCalendarError flags the driver's calendar with the last remote failure.
	MarkCalendarError(ctx context.Context, id, message string) error
}

type service struct {
	repo   Repository
	images ImageEncoder
}

func NewService(repo Repository, images ImageEncoder) Service {
	return &service{repo: repo, images: images}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Driver, error) {
	d := &Driver{
		Name:   strings.TrimSpace(req.Name),
		Phone:  strings.TrimSpace(req.Phone),
		Email:  strings.TrimSpace(req.Email),
		Status: StatusActive,
		Notes:  req.Notes,
	}
	if req.Status != "" {
		d.Status = Status(req.Status)
	}
	if err := validate(d); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Driver, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Driver, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Driver, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		d.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		d.Email = strings.TrimSpace(*req.Email)
	}
	if req.Status != nil {
		d.Status = Status(*req.Status)
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	if err := validate(d); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) UpdateImage(ctx context.Context, id string, content io.Reader) (*Driver, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.DataURL(content)
	if err != nil {
		return nil, err
	}
	d.ImageURL = url

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) SetCalendar(ctx context.Context, id, calendarID string) error {
	return s.repo.SetCalendar(ctx, id, calendarID)
}

func (s *service) MarkCalendarError(ctx context.Context, id, message string) error {
	return s.repo.SetCalendarError(ctx, id, message)
}

func validate(d *Driver) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if !d.Status.Valid() {
		return ErrInvalidStatus
	}
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}
