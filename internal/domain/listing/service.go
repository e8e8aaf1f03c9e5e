package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles listing business logic
type Service struct {
	repo Repository
}

// NewService creates listing service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create posts a new listing in pending state
func (s *Service) Create(ctx context.Context, sellerID uuid.UUID, role string, req *CreateListingRequest) (*Listing, error) {
	if role != "seller" && role != "broker" && role != "admin" {
		return nil, ErrNotSeller
	}

	l := &Listing{
		ID:            uuid.New(),
		SellerID:      sellerID,
		Title:         req.Title,
		Category:      req.Category,
		Description:   req.Description,
		Price:         req.Price,
		Location:      req.Location,
		SellerContact: req.SellerContact,
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	log.Info().Str("listing_id", l.ID.String()).Str("seller_id", sellerID.String()).Msg("listing created")
	return l, nil
}

// GetListing returns a listing regardless of status
func (s *Service) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// GetVisible returns a listing visible to viewer: approved and sold
// listings for everyone, any status for the seller or an admin.
func (s *Service) GetVisible(ctx context.Context, id, viewer uuid.UUID, isAdmin bool) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == StatusApproved || l.Status == StatusSold || isAdmin || (viewer != uuid.Nil && l.SellerID == viewer) {
		return l, nil
	}
	return nil, ErrListingNotFound
}

// ListPublic returns approved listings
func (s *Service) ListPublic(ctx context.Context, filter Filter, limit, offset int) ([]*Listing, int, error) {
	filter.Status = StatusApproved
	filter.SellerID = nil
	return s.repo.List(ctx, filter, limit, offset)
}

// ListBySeller returns all listings of a seller
func (s *Service) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]*Listing, int, error) {
	return s.repo.List(ctx, Filter{SellerID: &sellerID}, limit, offset)
}

// SetStatus moderates a listing
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusSold:
	default:
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	log.Info().Str("listing_id", id.String()).Str("status", string(status)).Msg("listing status changed")
	return nil
}
