package handler

import (
	"net/http"

	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	service service.FavoriteService
}

func NewFavoriteHandler(service service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// RegisterRoutes 收藏相關路由都需要登入
func (h *FavoriteHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.POST("tickets/:id/favorite", h.Toggle)
		router.GET("tickets/:id/favorite", h.IsFavorite)
		router.DELETE("tickets/:id/favorite", h.Remove)
		router.GET("users/me/favorites", h.List)
	}
}

type FavoriteResponse struct {
	TicketID  int64 `json:"ticket_id"`
	Favorited bool  `json:"favorited"`
}

func (h *FavoriteHandler) Toggle(c *gin.Context) {
	ticketID, ok := bindTicketID(c)
	if !ok {
		return
	}
	caller, ok := callerID(c)
	if !ok {
		return
	}

	favorited, err := h.service.Toggle(c, caller, ticketID)
	if err != nil {
		handleError(c, err, "ToggleFavorite")
		return
	}

	handleSuccess(c, FavoriteResponse{TicketID: ticketID, Favorited: favorited}, http.StatusOK)
}

func (h *FavoriteHandler) IsFavorite(c *gin.Context) {
	ticketID, ok := bindTicketID(c)
	if !ok {
		return
	}
	caller, ok := callerID(c)
	if !ok {
		return
	}

	favorited, err := h.service.IsFavorite(c, caller, ticketID)
	if err != nil {
		handleError(c, err, "IsFavorite")
		return
	}

	handleSuccess(c, FavoriteResponse{TicketID: ticketID, Favorited: favorited}, http.StatusOK)
}

func (h *FavoriteHandler) Remove(c *gin.Context) {
	ticketID, ok := bindTicketID(c)
	if !ok {
		return
	}
	caller, ok := callerID(c)
	if !ok {
		return
	}

	removed, err := h.service.RemoveFavorite(c, caller, ticketID)
	if err != nil {
		handleError(c, err, "RemoveFavorite")
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "favorite not found"})
		return
	}

	handleSuccess(c, nil, http.StatusNoContent)
}

func (h *FavoriteHandler) List(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}

	tickets, err := h.service.ListFavorites(c, caller)
	if err != nil {
		handleError(c, err, "ListFavorites")
		return
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}

	handleSuccess(c, tickets, http.StatusOK)
}
