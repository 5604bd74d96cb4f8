package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type placeBidBody struct {
	Amount decimal.Decimal `json:"amount"`
}

type imageBody struct {
	ImageURL string `json:"image_url" binding:"required"`
}

type categoryBody struct {
	Name string `json:"name" binding:"required"`
}

type paymentMethodBody struct {
	Label string `json:"label" binding:"required"`
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req inbound.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, "CreateItem", err)
		return
	}
	req.SellerID = callerID(c)

	item, err := h.services.Listing.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "CreateItem", err)
		return
	}
	JSONResponse(c, http.StatusCreated, item, "item created")
}

func (h *Handler) ListItems(c *gin.Context) {
	req, err := listItemsQuery(c)
	if err != nil {
		JSONError(c, http.StatusBadRequest, err, "invalid request")
		return
	}

	items, err := h.services.Listing.ListItems(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "ListItems", err)
		return
	}
	JSONResponse(c, http.StatusOK, items, "items retrieved")
}

func listItemsQuery(c *gin.Context) (inbound.ListItemsRequest, error) {
	var req inbound.ListItemsRequest
	if raw := c.Query("status"); raw != "" {
		status := listing.Status(raw)
		req.Status = &status
	}
	for key, dst := range map[string]**uuid.UUID{"category_id": &req.CategoryID, "seller_id": &req.SellerID} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be a UUID", shared.ErrValidation, key)
		}
		*dst = &id
	}
	for key, dst := range map[string]*int{"page": &req.Page, "page_size": &req.PageSize} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %s must be an integer", shared.ErrValidation, key)
		}
		*dst = n
	}
	return req, nil
}

func (h *Handler) GetItem(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.services.Listing.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, "GetItem", err)
		return
	}
	JSONResponse(c, http.StatusOK, item, "item retrieved")
}

func (h *Handler) UpdateItem(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req inbound.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, "UpdateItem", err)
		return
	}
	req.ItemID = itemID
	req.CallerID = callerID(c)

	item, err := h.services.Listing.UpdateItem(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "UpdateItem", err)
		return
	}
	JSONResponse(c, http.StatusOK, item, "item updated")
}

func (h *Handler) DeleteItem(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Listing.DeleteItem(c.Request.Context(), itemID, callerID(c)); err != nil {
		h.writeError(c, "DeleteItem", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddImage(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body imageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleBindError(c, "AddImage", err)
		return
	}
	image, err := h.services.Listing.AddImage(c.Request.Context(), itemID, callerID(c), body.ImageURL)
	if err != nil {
		h.writeError(c, "AddImage", err)
		return
	}
	JSONResponse(c, http.StatusCreated, image, "image added")
}

func (h *Handler) ListImages(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	images, err := h.services.Listing.ListImages(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, "ListImages", err)
		return
	}
	JSONResponse(c, http.StatusOK, images, "images retrieved")
}

func (h *Handler) PlaceBid(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var body placeBidBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleBindError(c, "PlaceBid", err)
		return
	}

	placed, err := h.services.Bids.PlaceBid(c.Request.Context(), inbound.PlaceBidRequest{
		ItemID:   itemID,
		BidderID: callerID(c),
		Amount:   body.Amount,
	})
	if err != nil {
		h.writeError(c, "PlaceBid", err)
		return
	}
	JSONResponse(c, http.StatusCreated, placed, "bid recorded successfully")
}

func (h *Handler) ListBids(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	bids, err := h.services.Bids.GetBids(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, "ListBids", err)
		return
	}
	JSONResponse(c, http.StatusOK, bids, "bids retrieved")
}

func (h *Handler) WinningBid(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	winning, err := h.services.Bids.GetHighestBid(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, "WinningBid", err)
		return
	}
	JSONResponse(c, http.StatusOK, winning, "winning bid retrieved")
}

// CloseItem settles an item whose window has ended; repeating it returns
// the recorded outcome
func (h *Handler) CloseItem(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	outcome, err := h.services.Settlement.CloseItem(c.Request.Context(), itemID, h.clock())
	if err != nil {
		h.writeError(c, "CloseItem", err)
		return
	}
	JSONResponse(c, http.StatusOK, outcome, "item closed")
}

func (h *Handler) GetTransaction(c *gin.Context) {
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tx, err := h.services.Settlement.GetTransaction(c.Request.Context(), itemID)
	if err != nil {
		h.writeError(c, "GetTransaction", err)
		return
	}
	JSONResponse(c, http.StatusOK, tx, "transaction retrieved")
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var body categoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleBindError(c, "CreateCategory", err)
		return
	}
	category, err := h.services.Listing.CreateCategory(c.Request.Context(), body.Name)
	if err != nil {
		h.writeError(c, "CreateCategory", err)
		return
	}
	JSONResponse(c, http.StatusCreated, category, "category created")
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.services.Listing.ListCategories(c.Request.Context())
	if err != nil {
		h.writeError(c, "ListCategories", err)
		return
	}
	JSONResponse(c, http.StatusOK, categories, "categories retrieved")
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Listing.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		h.writeError(c, "DeleteCategory", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	var body paymentMethodBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.handleBindError(c, "CreatePaymentMethod", err)
		return
	}
	method, err := h.services.Listing.CreatePaymentMethod(c.Request.Context(), body.Label)
	if err != nil {
		h.writeError(c, "CreatePaymentMethod", err)
		return
	}
	JSONResponse(c, http.StatusCreated, method, "payment method created")
}

func (h *Handler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.services.Listing.ListPaymentMethods(c.Request.Context())
	if err != nil {
		h.writeError(c, "ListPaymentMethods", err)
		return
	}
	JSONResponse(c, http.StatusOK, methods, "payment methods retrieved")
}
