package corporate

import (
	"context"
	"strings"

	"github.com/nekogravitycat/partybus-booking-backend/internal/contact"
)

// TxManager runs fn atomically. Implemented by db.TxManager.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// ContactLinker is the part of contact.Service used to maintain corporate links.
type ContactLinker interface {
	Resolve(ctx context.Context, details contact.Details, corporate *contact.CorporateInfo) (string, error)
	ApplyUpdates(ctx context.Context, id string, req contact.UpdateRequest) error
}

// ContactUnlinker clears corporate links in bulk. Implemented by contact.Repository.
type ContactUnlinker interface {
	UnlinkCorporateClient(ctx context.Context, corporateClientID string) (int64, error)
}

type CreateRequest struct {
	Name           string
	Slug           string
	LogoURL        string
	DefaultPickup  string
	DefaultDropoff string
	Notes          string
	// PrimaryContact is created (or found by email) and linked in the same transaction.
	PrimaryContact *contact.Details
}

type UpdateRequest struct {
	Name           *string
	Slug           *string
	LogoURL        *string
	DefaultPickup  *string
	DefaultDropoff *string
	Status         *string
	Notes          *string
}

type Service interface {
	// Create returns the client and the primary contact id ("" when none was given).
	Create(ctx context.Context, req CreateRequest) (*CorporateClient, string, error)
	GetByID(ctx context.Context, id string) (*CorporateClient, error)
	// GetPortal returns an active client by slug for the public booking portal.
	GetPortal(ctx context.Context, slug string) (*CorporateClient, error)
	List(ctx context.Context, filter Filter) ([]*CorporateClient, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*CorporateClient, error)
	// Delete unlinks the client's contacts and removes the client atomically.
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	tx       TxManager
	contacts ContactLinker
	unlinker ContactUnlinker
}

func NewService(repo Repository, tx TxManager, contacts ContactLinker, unlinker ContactUnlinker) Service {
	return &service{
		repo:     repo,
		tx:       tx,
		contacts: contacts,
		unlinker: unlinker,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CorporateClient, string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, "", ErrEmptyName
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if !slugPattern.MatchString(slug) {
		return nil, "", ErrInvalidSlug
	}

	c := &CorporateClient{
		Name:           name,
		Slug:           slug,
		LogoURL:        req.LogoURL,
		DefaultPickup:  req.DefaultPickup,
		DefaultDropoff: req.DefaultDropoff,
		Status:         StatusActive,
		Notes:          req.Notes,
	}

	var contactID string
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		if req.PrimaryContact == nil {
			return nil
		}

		id, err := s.contacts.Resolve(ctx, *req.PrimaryContact, &contact.CorporateInfo{ID: c.ID, Name: c.Name})
		if err != nil {
			return err
		}
		// An existing contact keeps its fields but joins the new client.
		if err := s.contacts.ApplyUpdates(ctx, id, contact.UpdateRequest{CorporateClientID: &c.ID}); err != nil {
			return err
		}
		contactID = id
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return c, contactID, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*CorporateClient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetPortal(ctx context.Context, slug string) (*CorporateClient, error) {
	c, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if c.Status != StatusActive {
		return nil, ErrInactive
	}
	return c, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*CorporateClient, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*CorporateClient, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		c.Name = name
	}
	if req.Slug != nil {
		if !slugPattern.MatchString(*req.Slug) {
			return nil, ErrInvalidSlug
		}
		c.Slug = *req.Slug
	}
	if req.LogoURL != nil {
		c.LogoURL = *req.LogoURL
	}
	if req.DefaultPickup != nil {
		c.DefaultPickup = *req.DefaultPickup
	}
	if req.DefaultDropoff != nil {
		c.DefaultDropoff = *req.DefaultDropoff
	}
	if req.Status != nil {
		st := Status(*req.Status)
		if st != StatusActive && st != StatusInactive {
			return nil, ErrInvalidState
		}
		c.Status = st
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if _, err := s.unlinker.UnlinkCorporateClient(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
}

// Slugify derives a portal slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
