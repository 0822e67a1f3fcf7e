/*
Package order - Order Engine and Order Status Authority HTTP controller

Error handling:
 1. binding errors: response.HandleError answers 400 directly
 2. business errors: response.HandleAppError maps the domain sentinel to a status
*/
package order

import (
	"net/http"
	"strconv"

	"fooddelivery/api/ctxutil"
	"fooddelivery/api/response"
	orderapp "fooddelivery/application/order"
	"fooddelivery/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	orderService *orderapp.ApplicationService
}

func NewController(orderService *orderapp.ApplicationService) *Controller {
	return &Controller{orderService: orderService}
}

// RegisterRoutes registers customer routes on an authenticated group.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/order", c.CreateOrder)
	router.GET("/order/user", c.GetUserOrders)
	router.GET("/order/:orderId", c.GetOrder)
}

// RegisterAdminRoutes registers restaurant-owner and admin routes.
func (c *Controller) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.DELETE("/order/:orderId", c.CancelOrder)
	router.GET("/order/restaurant/:restaurantId", c.GetRestaurantOrders)
	router.PUT("/orders/:orderId/:orderStatus", c.UpdateOrderStatus)
}

// CreateOrder POST /api/v1/order
func (c *Controller) CreateOrder(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	var req orderapp.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	created, err := c.orderService.CreateOrder(ctxutil.WithRequestID(ctx), actor, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, created, "order created successfully")
}

// GetUserOrders GET /api/v1/order/user
func (c *Controller) GetUserOrders(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	orders, err := c.orderService.GetUserOrders(ctxutil.WithRequestID(ctx), actor)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, orders, "orders retrieved successfully")
}

// GetOrder GET /api/v1/order/:orderId
func (c *Controller) GetOrder(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	o, err := c.orderService.GetOrder(ctxutil.WithRequestID(ctx), actor, ctx.Param("orderId"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order retrieved successfully")
}

// CancelOrder DELETE /api/v1/admin/order/:orderId
func (c *Controller) CancelOrder(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	orderID := ctx.Param("orderId")
	if err := c.orderService.CancelOrder(ctxutil.WithRequestID(ctx), actor, orderID); err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, gin.H{"orderId": orderID}, "Order deleted successfully")
}

// GetRestaurantOrders GET /api/v1/admin/order/restaurant/:restaurantId?order_status=
func (c *Controller) GetRestaurantOrders(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	restaurantID, err := strconv.ParseInt(ctx.Param("restaurantId"), 10, 64)
	if err != nil || restaurantID <= 0 {
		response.HandleError(ctx, err, "restaurantId must be a positive integer", http.StatusBadRequest)
		return
	}

	orders, err := c.orderService.GetRestaurantOrders(ctxutil.WithRequestID(ctx), actor, restaurantID, ctx.Query("order_status"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, orders, "orders retrieved successfully")
}

// UpdateOrderStatus PUT /api/v1/admin/orders/:orderId/:orderStatus
func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	o, err := c.orderService.UpdateStatus(ctxutil.WithRequestID(ctx), actor, ctx.Param("orderId"), ctx.Param("orderStatus"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, o, "order status updated")
}
