package contact

import (
	"context"
	"errors"
	"strings"
)

type CreateRequest struct {
	Name              string
	Email             string
	Phone             string
	CorporateClientID string
	Source            string
	Notes             string
}

// UpdateRequest carries optional field updates. An empty CorporateClientID unlinks the contact.
type UpdateRequest struct {
	Name              *string
	Email             *string
	Phone             *string
	CorporateClientID *string
	Source            *string
	Notes             *string
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil &&
		r.CorporateClientID == nil && r.Source == nil && r.Notes == nil
}

type Service interface {
	// Resolve returns the id of the contact with details.Email, creating it when absent.
	// An existing contact is returned unchanged.
	Resolve(ctx context.Context, details Details, corporate *CorporateInfo) (string, error)

	Create(ctx context.Context, req CreateRequest) (*Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	// FindByEmail returns the contact with exactly this email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	List(ctx context.Context, filter Filter) ([]*Contact, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Contact, error)
	// ApplyUpdates writes req without reading the result back. Used inside booking transactions.
	ApplyUpdates(ctx context.Context, id string, req UpdateRequest) error
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Resolve(ctx context.Context, details Details, corporate *CorporateInfo) (string, error) {
	email := strings.TrimSpace(details.Email)
	if email == "" {
		return "", ErrEmptyEmail
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return existing.ID, nil
	case !errors.Is(err, ErrNotFound):
		return "", err
	}

	name := strings.TrimSpace(details.Name)
	if name == "" {
		return "", ErrEmptyName
	}

	c := &Contact{
		Name:   name,
		Email:  email,
		Phone:  strings.TrimSpace(details.Phone),
		Source: details.Source,
	}
	if corporate != nil {
		c.CorporateClientID = corporate.ID
		c.CompanyName = corporate.Name
	}

	created, err := s.repo.CreateIfAbsent(ctx, c)
	if err != nil {
		return "", err
	}
	if created {
		return c.ID, nil
	}

	// Another request created the contact after our lookup.
	existing, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return existing.ID, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Contact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	c := &Contact{
		Name:              name,
		Email:             strings.TrimSpace(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		CorporateClientID: req.CorporateClientID,
		Source:            req.Source,
		Notes:             req.Notes,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Contact, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Contact, error) {
	if err := s.ApplyUpdates(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ApplyUpdates(ctx context.Context, id string, req UpdateRequest) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.IsEmpty() {
		return nil
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrEmptyName
		}
		c.Name = name
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.CorporateClientID != nil {
		c.CorporateClientID = *req.CorporateClientID
	}
	if req.Source != nil {
		c.Source = *req.Source
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	return s.repo.Update(ctx, c)
}

// Delete removes the contact only. Bookings keep their contact id.
func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
