package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// CardHandler handles card records.
type CardHandler struct {
	cardService services.CardServicer
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService services.CardServicer) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CreateCardRequest represents the request payload for creating a card.
type CreateCardRequest struct {
	Name   string         `json:"name" binding:"required,min=1,max=100"`
	Number string         `json:"number" binding:"required,max=32"`
	Color  string         `json:"color" binding:"omitempty,hex_color"`
	Icon   models.IconTag `json:"icon" binding:"omitempty,icon_tag"`
}

// UpdateCardRequest represents the request payload for updating a card.
type UpdateCardRequest struct {
	Name   *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Number *string         `json:"number" binding:"omitempty,min=1,max=32"`
	Color  *string         `json:"color" binding:"omitempty,hex_color"`
	Icon   *models.IconTag `json:"icon" binding:"omitempty,icon_tag"`
}

// CreateCard handles the creation of a card.
// @Summary     Create a card
// @Tags        cards
// @Accept      json
// @Produce     json
// @Param       request body CreateCardRequest true "Card details"
// @Success     201 {object} models.Card "Card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	card, err := h.cardService.CreateCard(services.CardInput{
		Name:   req.Name,
		Number: req.Number,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"card": card})
}

// GetCards handles listing cards.
// @Summary     Get cards
// @Tags        cards
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 50, max 500)"
// @Success     200 {object} pagination.PageResponse[models.Card] "Paginated cards"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards [get]
func (h *CardHandler) GetCards(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.cardService.ListCards(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCardByID handles the retrieval of a card.
// @Summary     Get card by ID
// @Tags        cards
// @Produce     json
// @Param       id path int true "Card ID"
// @Success     200 {object} models.Card "Card details"
// @Failure     400 {object} ErrorResponse "Invalid card ID"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards/{id} [get]
func (h *CardHandler) GetCardByID(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCard(cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// UpdateCard handles updating a card.
// @Summary     Update card
// @Tags        cards
// @Accept      json
// @Produce     json
// @Param       id      path int               true "Card ID"
// @Param       request body UpdateCardRequest true "Fields to update"
// @Success     200 {object} models.Card "Updated card"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards/{id} [put]
func (h *CardHandler) UpdateCard(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	card, err := h.cardService.UpdateCard(cardID, services.CardUpdate{
		Name:   req.Name,
		Number: req.Number,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// DeleteCard handles deleting a card.
// @Summary     Delete card
// @Tags        cards
// @Produce     json
// @Param       id path int true "Card ID"
// @Success     200 {object} MessageResponse "Card deleted"
// @Failure     400 {object} ErrorResponse "Invalid card ID"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cards/{id} [delete]
func (h *CardHandler) DeleteCard(c *gin.Context) {
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cardService.DeleteCard(cardID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Card deleted successfully"})
}
