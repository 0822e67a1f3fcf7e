/*
Package cart - Cart Engine HTTP controller

Binding failures are answered directly with 400; everything returned by the
application service goes through response.HandleAppError.
*/
package cart

import (
	"net/http"
	"strconv"

	"fooddelivery/api/ctxutil"
	"fooddelivery/api/middleware"
	"fooddelivery/api/response"
	cartapp "fooddelivery/application/cart"
	"fooddelivery/domain/shared"
	"fooddelivery/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	cartService *cartapp.ApplicationService
}

func NewController(cartService *cartapp.ApplicationService) *Controller {
	return &Controller{cartService: cartService}
}

// RegisterRoutes expects an authenticated group.
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.PUT("/cart/add", c.AddItem)
	router.PUT("/cart-item/update", c.UpdateItemQuantity)
	router.DELETE("/cart-item/:id/remove", c.RemoveItem)
	router.GET("/cart/total", c.GetTotal)
	router.GET("/cart", c.GetCart)
	router.PUT("/cart/clear", c.ClearCart)
}

// RegisterAdminRoutes exposes cart provisioning to the identity service.
// Restaurant owners share the admin group but may not provision carts.
func (c *Controller) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.POST("/carts/:userId", middleware.RequireRole(shared.RoleAdmin), c.ProvisionCart)
}

// AddItem PUT /api/v1/cart/add
func (c *Controller) AddItem(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	var req cartapp.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}

	item, err := c.cartService.AddItem(ctxutil.WithRequestID(ctx), actor, req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, item, "item added to cart")
}

// UpdateItemQuantity PUT /api/v1/cart-item/update?cartItemId=&quantity=
func (c *Controller) UpdateItemQuantity(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	itemID := ctx.Query("cartItemId")
	if itemID == "" {
		response.HandleError(ctx, errors.BadRequest("cartItemId is required"), "cartItemId is required", http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(ctx.Query("quantity"))
	if err != nil {
		response.HandleError(ctx, err, "quantity must be an integer", http.StatusBadRequest)
		return
	}

	item, err := c.cartService.UpdateItemQuantity(ctxutil.WithRequestID(ctx), actor, itemID, quantity)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, item, "cart item updated")
}

// RemoveItem DELETE /api/v1/cart-item/:id/remove
func (c *Controller) RemoveItem(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	cart, err := c.cartService.RemoveItem(ctxutil.WithRequestID(ctx), actor, ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "cart item removed")
}

// GetTotal GET /api/v1/cart/total?cartId=
func (c *Controller) GetTotal(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	cartID := ctx.Query("cartId")
	if cartID == "" {
		response.HandleError(ctx, errors.BadRequest("cartId is required"), "cartId is required", http.StatusBadRequest)
		return
	}

	total, err := c.cartService.GetTotal(ctxutil.WithRequestID(ctx), actor, cartID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, total, "cart total calculated")
}

// GetCart GET /api/v1/cart?userId=
func (c *Controller) GetCart(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	userID, ok := optionalUserID(ctx)
	if !ok {
		return
	}

	cart, err := c.cartService.GetByUser(ctxutil.WithRequestID(ctx), actor, userID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "cart retrieved")
}

// ClearCart PUT /api/v1/cart/clear?userId=
func (c *Controller) ClearCart(ctx *gin.Context) {
	actor, ok := ctxutil.Actor(ctx)
	if !ok {
		response.HandleAppError(ctx, errors.Unauthorized("authentication required"))
		return
	}

	userID, ok := optionalUserID(ctx)
	if !ok {
		return
	}

	cart, err := c.cartService.Clear(ctxutil.WithRequestID(ctx), actor, userID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, cart, "cart cleared")
}

// ProvisionCart POST /api/v1/admin/carts/:userId
func (c *Controller) ProvisionCart(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		response.HandleError(ctx, err, "userId must be a positive integer", http.StatusBadRequest)
		return
	}

	cart, err := c.cartService.ProvisionCart(ctxutil.WithRequestID(ctx), userID)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, cart, "cart provisioned")
}

// optionalUserID parses ?userId; absent means the caller (0).
func optionalUserID(ctx *gin.Context) (int64, bool) {
	raw := ctx.Query("userId")
	if raw == "" {
		return 0, true
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		response.HandleError(ctx, err, "userId must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}
