package listing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	items map[uuid.UUID]*Listing
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[uuid.UUID]*Listing{}}
}

func (m *memRepo) Create(_ context.Context, l *Listing) error {
	m.items[l.ID] = l
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Listing, error) {
	l, ok := m.items[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Listing, int, error) {
	var out []*Listing
	for _, l := range m.items {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.SellerID != nil && l.SellerID != *f.SellerID {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	l, ok := m.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.Status = status
	return nil
}

func sampleRequest() *CreateListingRequest {
	return &CreateListingRequest{
		Title:         "Ashok Leyland 2518 tipper",
		Category:      "tipper",
		Price:         1850000,
		Location:      "Pune",
		SellerContact: "+919812345678",
	}
}

func TestCreate_OnlySellersAndBrokers(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), "buyer", sampleRequest())
	assert.ErrorIs(t, err, ErrNotSeller)

	l, err := svc.Create(ctx, uuid.New(), "broker", sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, l.Status)
}

func TestGetVisible_PendingOnlyForOwnerAndAdmin(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	seller := uuid.New()

	l, err := svc.Create(ctx, seller, "seller", sampleRequest())
	require.NoError(t, err)

	_, err = svc.GetVisible(ctx, l.ID, uuid.Nil, false)
	assert.ErrorIs(t, err, ErrListingNotFound)

	_, err = svc.GetVisible(ctx, l.ID, seller, false)
	assert.NoError(t, err)

	_, err = svc.GetVisible(ctx, l.ID, uuid.New(), true)
	assert.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, l.ID, StatusApproved))
	_, err = svc.GetVisible(ctx, l.ID, uuid.Nil, false)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetStatus(ctx, l.ID, "archived"), ErrInvalidStatus)
}

func TestListHandler_HidesSellerContact(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	l, err := svc.Create(context.Background(), uuid.New(), "seller", sampleRequest())
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(context.Background(), l.ID, StatusApproved))

	h := NewHandler(svc)
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/listings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "+919812345678")

	var body struct {
		Data []ListingResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, l.ID, body.Data[0].ID)
}
