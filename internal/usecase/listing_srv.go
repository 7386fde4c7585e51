package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ListingService interface {
	CreateListing(ctx context.Context, userID *uuid.UUID, req *request.CreateListingRequest) (*response.ListingResponse, error)
	ListApprovedListings(ctx context.Context, req *request.ListingListRequest) (*response.PaginatedResponse[response.ListingResponse], error)
	GetListing(ctx context.Context, id string) (*response.ListingResponse, error)
	ListMyListings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ListingResponse], error)
	DeleteMyListing(ctx context.Context, userID uuid.UUID, id string) error

	ListListings(ctx context.Context, req *request.ListingListRequest) (*response.PaginatedResponse[response.ListingResponse], error)
	ModerateListing(ctx context.Context, id string, req *request.ModerateListingRequest) (*response.ListingResponse, error)
	DeleteListing(ctx context.Context, id string) error
}

type listingService struct {
	listings repository.ListingRepository
	users    repository.UserRepository
	notify   *notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewListingService(repo *repository.Repository, notify *notifier, deps Deps, log *zap.Logger) ListingService {
	return &listingService{
		listings: repo.Listing,
		users:    repo.User,
		notify:   notify,
		now:      deps.clock(),
		log:      log.With(zap.String("service", "listing")),
	}
}

func (s *listingService) CreateListing(ctx context.Context, userID *uuid.UUID, req *request.CreateListingRequest) (*response.ListingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// Anonymous sellers can only be reached through the contact fields.
	if userID == nil {
		missing := map[string]string{}
		for field, v := range map[string]*string{
			"contactName":  req.ContactName,
			"contactEmail": req.ContactEmail,
			"contactPhone": req.ContactPhone,
		} {
			if v == nil || strings.TrimSpace(*v) == "" {
				missing[field] = "This field is required without an account"
			}
		}
		if len(missing) > 0 {
			return nil, invalid("validation failed", missing)
		}
	}

	now := s.now()
	listing := &entity.PhoneListing{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:       userID,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Storage:      strings.TrimSpace(req.Storage),
		Condition:    entity.PhoneCondition(req.Condition),
		Price:        req.Price,
		Description:  req.Description,
		Images:       nonNil(req.Images),
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Status:       entity.ListingStatusPending,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.log.Info("Listing submitted",
		zap.String("listing_id", listing.ID.String()),
		zap.Bool("anonymous", userID == nil),
	)

	resp := response.ListingToResponse(listing)
	return &resp, nil
}

func (s *listingService) ListApprovedListings(ctx context.Context, req *request.ListingListRequest) (*response.PaginatedResponse[response.ListingResponse], error) {
	req.Normalize()
	filter := repository.ListingFilter{
		Statuses: []entity.ListingStatus{entity.ListingStatusApproved},
		Brand:    req.Brand,
	}
	return s.list(ctx, filter, req.PaginatedRequest, response.PublicListingToResponse)
}

func (s *listingService) GetListing(ctx context.Context, id string) (*response.ListingResponse, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.Status.Public() {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}

	resp := response.PublicListingToResponse(listing)
	return &resp, nil
}

func (s *listingService) ListMyListings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ListingResponse], error) {
	req.Normalize()
	return s.list(ctx, repository.ListingFilter{UserID: &userID}, *req, response.ListingToResponse)
}

func (s *listingService) DeleteMyListing(ctx context.Context, userID uuid.UUID, id string) error {
	listing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if listing.UserID == nil || *listing.UserID != userID {
		s.log.Warn("Delete of foreign listing refused",
			zap.String("listing_id", id),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("listing %s belongs to another user: %w", id, ErrForbidden)
	}

	if err := s.listings.Delete(ctx, listing.ID); err != nil {
		return mapRepoError(err, "delete listing")
	}
	return nil
}

func (s *listingService) ListListings(ctx context.Context, req *request.ListingListRequest) (*response.PaginatedResponse[response.ListingResponse], error) {
	req.Normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := repository.ListingFilter{Brand: req.Brand}
	if req.Status != "" {
		filter.Statuses = []entity.ListingStatus{entity.ListingStatus(req.Status)}
	}
	return s.list(ctx, filter, req.PaginatedRequest, response.ListingToResponse)
}

func (s *listingService) ModerateListing(ctx context.Context, id string, req *request.ModerateListingRequest) (*response.ListingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	listingID, err := parseID(id, "listing")
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.Moderate(ctx, listingID, entity.ListingStatus(req.Status), req.AdminNote)
	if err != nil {
		return nil, mapRepoError(err, "moderate listing")
	}

	if listing.Status == entity.ListingStatusApproved || listing.Status == entity.ListingStatusRejected {
		if to := s.submitterEmail(ctx, listing); to != "" {
			s.notify.ListingModerated(to, listing)
		}
	}

	s.log.Info("Listing moderated",
		zap.String("listing_id", listing.ID.String()),
		zap.String("status", string(listing.Status)),
	)

	resp := response.ListingToResponse(listing)
	return &resp, nil
}

func (s *listingService) DeleteListing(ctx context.Context, id string) error {
	listingID, err := parseID(id, "listing")
	if err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		return mapRepoError(err, "delete listing")
	}
	return nil
}

// ==================== HELPERS ====================

func (s *listingService) find(ctx context.Context, id string) (*entity.PhoneListing, error) {
	listingID, err := parseID(id, "listing")
	if err != nil {
		return nil, err
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	return listing, nil
}

func (s *listingService) list(
	ctx context.Context,
	filter repository.ListingFilter,
	page request.PaginatedRequest,
	convert func(*entity.PhoneListing) response.ListingResponse,
) (*response.PaginatedResponse[response.ListingResponse], error) {
	listings, err := s.listings.FindAll(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	total, err := s.listings.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}

	return response.NewPaginatedResponse(response.MapSlice(listings, convert), page.Page, page.Limit(), total), nil
}

func (s *listingService) submitterEmail(ctx context.Context, listing *entity.PhoneListing) string {
	if listing.ContactEmail != nil && *listing.ContactEmail != "" {
		return *listing.ContactEmail
	}
	if listing.UserID == nil {
		return ""
	}

	user, err := s.users.FindByID(ctx, *listing.UserID)
	if err != nil || user == nil {
		s.log.Warn("Listing owner not found for notification",
			zap.Error(err),
			zap.String("listing_id", listing.ID.String()),
		)
		return ""
	}
	return user.Email
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
