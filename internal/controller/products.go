package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Evgen-Mutagen/atm-inventory/internal/core"
	"github.com/Evgen-Mutagen/atm-inventory/internal/middlewareinternal"
	"github.com/Evgen-Mutagen/atm-inventory/internal/model"
	"github.com/Evgen-Mutagen/atm-inventory/internal/service"
)

type ProductController struct {
	inventory core.InventoryService
	logger    *zap.Logger
}

func NewProductController(inventory core.InventoryService, logger *zap.Logger) *ProductController {
	return &ProductController{
		inventory: inventory,
		logger:    logger,
	}
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	products, err := c.inventory.ListProducts(r.Context())
	if err != nil {
		c.fail(w, r, "Failed to list products", err)
		return
	}
	render.JSON(w, r, nonNil(products))
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := c.inventory.GetProduct(r.Context(), id)
	if err != nil {
		c.fail(w, r, "Failed to get product", err)
		return
	}
	render.JSON(w, r, product)
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var input core.ProductInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	product, err := c.inventory.AddProduct(r.Context(), input)
	if err != nil {
		c.fail(w, r, "Failed to add product", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}

	var input core.ProductInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	product, err := c.inventory.UpdateProduct(r.Context(), id, input)
	if err != nil {
		c.fail(w, r, "Failed to update product", err)
		return
	}
	render.JSON(w, r, product)
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := c.inventory.DeleteProduct(r.Context(), id); err != nil {
		c.fail(w, r, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ProductController) Sell(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "Invalid product id")
		return
	}

	var request struct {
		Quantity int `json:"quantity"`
	}
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	sale, err := c.inventory.Sell(r.Context(), id, request.Quantity)
	if err != nil {
		c.fail(w, r, "Failed to record sale", err)
		return
	}

	userID, _ := middlewareinternal.GetUserIDFromContext(r.Context())
	c.logger.Debug("Sale accepted",
		zap.Int64("user_id", userID),
		zap.Int64("sale_id", sale.ID))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sale)
}

func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := c.inventory.LowStock(r.Context(), threshold(r))
	if err != nil {
		c.fail(w, r, "Failed to list low stock", err)
		return
	}
	render.JSON(w, r, nonNil(products))
}

func (c *ProductController) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, r, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, r, http.StatusUnprocessableEntity, "Quantity to sell must be between 1 and 2147483647")
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, r, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrInsufficientStock):
		writeError(w, r, http.StatusConflict, "Insufficient stock")
	default:
		c.logger.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func nonNil(products []*model.Product) []*model.Product {
	if products == nil {
		return []*model.Product{}
	}
	return products
}
