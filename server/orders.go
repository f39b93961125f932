package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
)

var allowedStatuses = map[string]bool{
	contractx.OrderStatusConfirmed: true,
	contractx.OrderStatusShipped:   true,
	contractx.OrderStatusDelivered: true,
	contractx.OrderStatusCancelled: true,
}

func (s *Server) handleListOrders(c *gin.Context) {
	orders, err := s.orders.List(c.Request.Context(), authedPhone(c))
	if err != nil {
		log.Error().Err(err).Msg("list orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), authedPhone(c), c.Param("id"))
	if err != nil {
		s.orderError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleUpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !allowedStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of confirmed, shipped, delivered, cancelled"})
		return
	}

	if err := s.orders.UpdateStatus(c.Request.Context(), authedPhone(c), c.Param("id"), req.Status); err != nil {
		s.orderError(c, err, "update order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (s *Server) handleDeleteOrder(c *gin.Context) {
	if err := s.orders.Delete(c.Request.Context(), authedPhone(c), c.Param("id")); err != nil {
		s.orderError(c, err, "delete order")
		return
	}
	c.Status(http.StatusNoContent)
}

// orderError maps store errors to HTTP statuses. Missing and foreign orders
// are indistinguishable on purpose.
func (s *Server) orderError(c *gin.Context, err error, op string) {
	if errors.Is(err, contractx.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	log.Error().Err(err).Msg(op + " failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
}
