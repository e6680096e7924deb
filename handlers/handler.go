package handlers

import (
	"catalog-service/internal/orders"
	"catalog-service/internal/products"
	"catalog-service/internal/stores/kafka"
	"catalog-service/middleware"
	"catalog-service/pkg/ctxmanage"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	p        products.Conf
	o        orders.Conf
	k        *kafka.Conf
	validate *validator.Validate
}

func NewHandler(p products.Conf, o orders.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		p:        p,
		o:        o,
		k:        k,
		validate: validator.New(),
	}
}

func API(p products.Conf, o orders.Conf, k *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	h := NewHandler(p, o, k)
	//apply middleware to all the endpoints using r.Use
	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", h.CreateProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)

	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.PUT("/orders/:id/status", h.UpdateOrderStatus)

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	fmt.Println("healthCheck handler ", traceId)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
