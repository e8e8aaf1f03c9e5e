package listing

import (
	"time"

	"github.com/google/uuid"
)

// CreateListingRequest for POST /listings
type CreateListingRequest struct {
	Title         string `json:"title" validate:"required,min=5,max=200"`
	Category      string `json:"category" validate:"required,oneof=truck tipper trailer bus excavator loader crane tractor other"`
	Description   string `json:"description" validate:"omitempty,max=5000"`
	Price         int64  `json:"price" validate:"gte=0"`
	Location      string `json:"location" validate:"required,max=120"`
	SellerContact string `json:"seller_contact" validate:"required,phone"`
}

// UpdateStatusRequest for PATCH /admin/listings/{id}/status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,listing_status"`
}

// ListingResponse is the public view of a listing, without the contact
type ListingResponse struct {
	ID          uuid.UUID `json:"id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Location    string    `json:"location"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingResponseFromEntity converts entity to response
func ListingResponseFromEntity(l *Listing) *ListingResponse {
	return &ListingResponse{
		ID:          l.ID,
		SellerID:    l.SellerID,
		Title:       l.Title,
		Category:    l.Category,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt,
	}
}

// ListingDetailResponse is GET /listings/{id}. The contact is present once
// the viewer has unlocked the listing, owns it, or is an admin.
type ListingDetailResponse struct {
	ListingResponse
	Unlocked      bool   `json:"unlocked"`
	SellerContact string `json:"seller_contact,omitempty"`
}
