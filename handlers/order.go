package handlers

import (
	"catalog-service/internal/orders"
	"catalog-service/internal/stores/kafka"
	"catalog-service/pkg/ctxmanage"
	"catalog-service/pkg/logkey"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	// Get the traceId from the request for tracking logs
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	// Check if the size of the request body exceeds 5 KB
	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request body too large."})
		return
	}

	var newOrder orders.NewOrder
	if err := c.ShouldBindJSON(&newOrder); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}

	if err := h.validate.Struct(newOrder); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, vErr := range vErrs {
				switch vErr.Tag() {
				case "required":
					slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Field() + " value missing"})
					return
				default:
					slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
					return
				}
			}
		}

		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}

	order, err := h.o.CreateOrder(c.Request.Context(), newOrder)
	if err != nil {
		if errors.Is(err, orders.ErrProductNotFound) {
			slog.Error("product in order not found", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			slog.Error("error creating order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	// Publish the order-created event without holding up the response.
	if h.k != nil {
		go func(o orders.Order) {
			jsonData, err := json.Marshal(kafka.OrderCreatedEvent{
				OrderId:      o.ID,
				CustomerName: o.CustomerName,
				TotalPrice:   o.TotalPrice,
				CreatedAt:    o.OrderDate,
			})
			if err != nil {
				slog.Error("failed to marshal OrderCreatedEvent", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
				return
			}

			key := []byte(strconv.FormatInt(o.ID, 10))
			if err := h.k.ProduceMessage(kafka.TopicOrderCreated, key, jsonData); err != nil {
				slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			}
		}(order)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created", "id": order.ID, "total_price": order.TotalPrice})
}

func (h *Handler) ListOrders(c *gin.Context) {
	// Get the traceId from the request for tracking logs
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	orderList, err := h.o.ListOrders(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orderList)
}

func (h *Handler) GetOrder(c *gin.Context) {
	// Get the traceId from the request for tracking logs
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		slog.Error("invalid order id", slog.String(logkey.TraceID, traceId), slog.String("OrderID", c.Param("id")))
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	order, err := h.o.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Error("order not found", slog.String(logkey.TraceID, traceId), slog.Int64("OrderID", orderID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			slog.Error("error in retrieving order", slog.String(logkey.TraceID, traceId), slog.Int64("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	// Get the traceId from the request for tracking logs
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		slog.Error("invalid order id", slog.String(logkey.TraceID, traceId), slog.String("OrderID", c.Param("id")))
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	// The status is written as supplied; there is no state machine.
	var request struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.o.UpdateOrderStatus(c.Request.Context(), orderID, request.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Error("order not found", slog.String(logkey.TraceID, traceId), slog.Int64("OrderID", orderID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		} else {
			slog.Error("error updating order status", slog.String(logkey.TraceID, traceId), slog.Int64("OrderID", orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Order status update failed"})
		}
		return
	}

	if h.k != nil {
		go func(orderID int64, status string) {
			jsonData, err := json.Marshal(kafka.OrderStatusUpdatedEvent{
				OrderId:   orderID,
				Status:    status,
				UpdatedAt: time.Now().UTC(),
			})
			if err != nil {
				slog.Error("failed to marshal OrderStatusUpdatedEvent", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
				return
			}

			key := []byte(strconv.FormatInt(orderID, 10))
			if err := h.k.ProduceMessage(kafka.TopicOrderStatusUpdated, key, jsonData); err != nil {
				slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			}
		}(orderID, request.Status)
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Order status updated to %s", request.Status)})
}
