package app

import (
	"context"
	"strings"
	"time"

	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListingService implements item and catalog use cases
type ListingService struct {
	itemRepo          outbound.ItemRepository
	userRepo          outbound.UserRepository
	categoryRepo      outbound.CategoryRepository
	paymentMethodRepo outbound.PaymentMethodRepository
	scheduler         outbound.CloseScheduler
	broadcaster       outbound.Broadcaster
	clock             func() time.Time
	logger            zerolog.Logger
}

type ListingServiceParams struct {
	ItemRepo          outbound.ItemRepository
	UserRepo          outbound.UserRepository
	CategoryRepo      outbound.CategoryRepository
	PaymentMethodRepo outbound.PaymentMethodRepository
	Scheduler         outbound.CloseScheduler
	Broadcaster       outbound.Broadcaster
	Clock             func() time.Time
	Logger            zerolog.Logger
}

// NewListingService creates a new listing service
func NewListingService(params ListingServiceParams) *ListingService {
	return &ListingService{
		itemRepo:          params.ItemRepo,
		userRepo:          params.UserRepo,
		categoryRepo:      params.CategoryRepo,
		paymentMethodRepo: params.PaymentMethodRepo,
		scheduler:         params.Scheduler,
		broadcaster:       params.Broadcaster,
		clock:             clockOrNow(params.Clock),
		logger:            params.Logger.With().Str("component", "listing_service").Logger(),
	}
}

// SetScheduler sets the close scheduler
func (s *ListingService) SetScheduler(scheduler outbound.CloseScheduler) {
	s.scheduler = scheduler
}

// CreateItem lists a new item for auction
func (s *ListingService) CreateItem(ctx context.Context, req inbound.CreateItemRequest) (*listing.Item, error) {
	s.logger.Info().
		Str("seller_id", req.SellerID.String()).
		Str("category_id", req.CategoryID.String()).
		Str("title", req.Title).
		Msg("Attempting to create item")

	if _, err := s.userRepo.GetByID(ctx, req.SellerID); err != nil {
		s.logger.Error().Err(err).Str("seller_id", req.SellerID.String()).Msg("Seller not found")
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		s.logger.Error().Err(err).Str("category_id", req.CategoryID.String()).Msg("Category not found")
		return nil, err
	}

	now := s.clock()
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = listing.Slugify(req.Title)
	}
	item := &listing.Item{
		ID:           uuid.New(),
		SellerID:     req.SellerID,
		CategoryID:   req.CategoryID,
		Title:        strings.TrimSpace(req.Title),
		Slug:         slug,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		StartingBid:  req.StartingBid,
		ReservePrice: req.ReservePrice,
		CurrentBid:   req.StartingBid,
		Status:       listing.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := item.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("Item failed validation")
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to save item")
		return nil, err
	}

	s.schedule(ctx, item)

	s.logger.Info().
		Str("item_id", item.ID.String()).
		Time("end_time", item.EndTime).
		Msg("Item created successfully")
	return item, nil
}

func (s *ListingService) schedule(ctx context.Context, item *listing.Item) {
	if s.scheduler == nil {
		return
	}
	// Scheduling failure leaves the item open until the scheduler resyncs on start
	if err := s.scheduler.Schedule(ctx, item.ID, item.EndTime); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to schedule item close")
	}
}

// GetItem retrieves an item by ID
func (s *ListingService) GetItem(ctx context.Context, itemID uuid.UUID) (*listing.Item, error) {
	return s.itemRepo.GetByID(ctx, itemID)
}

// ListItems retrieves a page of items
func (s *ListingService) ListItems(ctx context.Context, req inbound.ListItemsRequest) ([]*listing.Item, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, shared.ErrInvalidStatus
	}
	return s.itemRepo.List(ctx, outbound.ItemFilter{
		Status:     req.Status,
		CategoryID: req.CategoryID,
		SellerID:   req.SellerID,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
}

// UpdateItem edits an active item that has not received a bid yet
func (s *ListingService) UpdateItem(ctx context.Context, req inbound.UpdateItemRequest) (*listing.Item, error) {
	item, err := s.ownedItem(ctx, req.ItemID, req.CallerID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive() {
		return nil, shared.ErrItemNotActive
	}
	if item.HasBids() {
		s.logger.Warn().Str("item_id", item.ID.String()).Msg("Cannot edit an item with bids")
		return nil, shared.ErrItemHasBids
	}

	endChanged := false
	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *req.CategoryID
	}
	if req.StartTime != nil {
		item.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		endChanged = !req.EndTime.Equal(item.EndTime)
		item.EndTime = *req.EndTime
	}
	if req.StartingBid != nil {
		item.StartingBid = *req.StartingBid
		item.CurrentBid = *req.StartingBid
	}
	if req.ReservePrice != nil {
		item.ReservePrice = *req.ReservePrice
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.UpdatedAt = s.clock()

	if err := s.itemRepo.Update(ctx, item); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to update item")
		return nil, err
	}

	if endChanged {
		s.schedule(ctx, item)
	}

	if s.broadcaster != nil {
		event := outbound.Event{
			Type:   outbound.EventTypeItemUpdated,
			ItemID: item.ID,
			Data: map[string]interface{}{
				"title":        item.Title,
				"starting_bid": item.StartingBid.String(),
				"end_time":     item.EndTime.Unix(),
			},
			Timestamp: item.UpdatedAt.Unix(),
		}
		if err := s.broadcaster.Publish(ctx, item.ID, event); err != nil {
			s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to broadcast item update")
		}
	}

	s.logger.Info().Str("item_id", item.ID.String()).Msg("Item updated successfully")
	return item, nil
}

// DeleteItem removes an item and everything attached to it
func (s *ListingService) DeleteItem(ctx context.Context, itemID, callerID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, itemID, callerID); err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to delete item")
		return err
	}
	if s.scheduler != nil {
		if err := s.scheduler.Cancel(ctx, itemID); err != nil {
			s.logger.Warn().Err(err).Str("item_id", itemID.String()).Msg("Failed to cancel scheduled close")
		}
	}
	s.logger.Info().Str("item_id", itemID.String()).Msg("Item deleted")
	return nil
}

// AddImage attaches an image URL to an item owned by callerID
func (s *ListingService) AddImage(ctx context.Context, itemID, callerID uuid.UUID, imageURL string) (*listing.Image, error) {
	if _, err := s.ownedItem(ctx, itemID, callerID); err != nil {
		return nil, err
	}
	image := &listing.Image{
		ID:       uuid.New(),
		ItemID:   itemID,
		ImageURL: strings.TrimSpace(imageURL),
	}
	if err := image.Validate(); err != nil {
		return nil, err
	}
	if err := s.itemRepo.AddImage(ctx, image); err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to add image")
		return nil, err
	}
	return image, nil
}

// ListImages retrieves the images of an item
func (s *ListingService) ListImages(ctx context.Context, itemID uuid.UUID) ([]*listing.Image, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.itemRepo.ListImages(ctx, itemID)
}

func (s *ListingService) ownedItem(ctx context.Context, itemID, callerID uuid.UUID) (*listing.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.SellerID != callerID {
		s.logger.Warn().
			Str("item_id", itemID.String()).
			Str("caller_id", callerID.String()).
			Msg("Caller does not own item")
		return nil, shared.ErrNotItemSeller
	}
	return item, nil
}

// CreateCategory adds a category
func (s *ListingService) CreateCategory(ctx context.Context, name string) (*catalog.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrCategoryNameRequired
	}
	category := &catalog.Category{ID: uuid.New(), Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info().Str("category_id", category.ID.String()).Str("name", name).Msg("Category created")
	return category, nil
}

// ListCategories retrieves all categories
func (s *ListingService) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	return s.categoryRepo.List(ctx)
}

// DeleteCategory removes a category together with its items
func (s *ListingService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return err
	}
	s.logger.Info().Str("category_id", categoryID.String()).Msg("Category deleted")
	return nil
}

// CreatePaymentMethod adds a payment method, returning the existing one for a known label
func (s *ListingService) CreatePaymentMethod(ctx context.Context, label string) (*catalog.PaymentMethod, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.ErrPaymentLabelRequired
	}
	return s.paymentMethodRepo.EnsureByLabel(ctx, label)
}

// ListPaymentMethods retrieves all payment methods
func (s *ListingService) ListPaymentMethods(ctx context.Context) ([]*catalog.PaymentMethod, error) {
	return s.paymentMethodRepo.List(ctx)
}
