package bus

import (
	"context"
	"io"
	"strings"
)

type CreateRequest struct {
	Name          string
	Capacity      int
	Status        string
	Color         string
	Features      []string
	StartingPrice int64
	Notes         string
}

type UpdateRequest struct {
	Name          *string
	Capacity      *int
	Status        *string
	Color         *string
	Features      *[]string
	StartingPrice *int64
	Notes         *string
}

// ImageEncoder turns an upload into the URL stored on the bus. Implemented by imaging.Processor.
type ImageEncoder interface {
	DataURL(content io.Reader) (string, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Bus, error)
	GetByID(ctx context.Context, id string) (*Bus, error)
	List(ctx context.Context, filter Filter) ([]*Bus, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Bus, error)
	UpdateImage(ctx context.Context, id string, content io.Reader) (*Bus, error)
}

type service struct {
	repo   Repository
	images ImageEncoder
}

func NewService(repo Repository, images ImageEncoder) Service {
	return &service{repo: repo, images: images}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Bus, error) {
	b := &Bus{
		Name:          strings.TrimSpace(req.Name),
		Capacity:      req.Capacity,
		Status:        StatusActive,
		Color:         req.Color,
		Features:      req.Features,
		StartingPrice: req.StartingPrice,
		Notes:         req.Notes,
	}
	if req.Status != "" {
		b.Status = Status(req.Status)
	}
	if err := validate(b); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Bus, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Bus, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Bus, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.Capacity != nil {
		b.Capacity = *req.Capacity
	}
	if req.Status != nil {
		b.Status = Status(*req.Status)
	}
	if req.Color != nil {
		b.Color = *req.Color
	}
	if req.Features != nil {
		b.Features = *req.Features
	}
	if req.StartingPrice != nil {
		b.StartingPrice = *req.StartingPrice
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	if err := validate(b); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) UpdateImage(ctx context.Context, id string, content io.Reader) (*Bus, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.DataURL(content)
	if err != nil {
		return nil, err
	}
	b.ImageURL = url

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func validate(b *Bus) error {
	if b.Name == "" {
		return ErrEmptyName
	}
	if b.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if !b.Status.Valid() {
		return ErrInvalidStatus
	}
	if b.StartingPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}
