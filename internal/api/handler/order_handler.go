package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations. Creation goes
// through the admission protocol; everything else is plain CRUD.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// --- Request / Response types ---

type createOrderRequest struct {
	Title      string  `json:"title" validate:"required"`
	SupplierID string  `json:"supplier_id" validate:"required"`
	ConsumerID string  `json:"consumer_id" validate:"required"`
	Price      float64 `json:"price" validate:"required,gt=0"`
}

type updateOrderRequest struct {
	Title string  `json:"title" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

type orderResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SupplierID string    `json:"supplier_id"`
	ConsumerID string    `json:"consumer_id"`
	Price      float64   `json:"price"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:         o.ID,
		Title:      o.Title,
		SupplierID: o.SupplierID,
		ConsumerID: o.ConsumerID,
		Price:      o.Price.Dollars(),
		StartedAt:  o.StartedAt,
		FinishedAt: o.FinishedAt,
		CreatedAt:  o.CreatedAt,
	}
}

func toOrderResponses(orders []*domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// Create handles POST /v1/orders and runs the full admission protocol.
//
// @Summary      Admit a new order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      createOrderRequest  true  "Candidate order"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	price, err := domain.DollarsToCents(req.Price)
	if err != nil {
		return &domain.ValidationError{Message: "price: " + err.Error()}
	}

	order, err := h.service.Admit(c.Request().Context(), ports.AdmitOrderInput{
		Title:      req.Title,
		SupplierID: req.SupplierID,
		ConsumerID: req.ConsumerID,
		Price:      price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Update handles PUT /v1/orders/:id, a title/price correction under the same
// business-key check as admission.
func (h *OrderHandler) Update(c echo.Context) error {
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	price, err := domain.DollarsToCents(req.Price)
	if err != nil {
		return &domain.ValidationError{Message: "price: " + err.Error()}
	}

	order, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateOrderInput{
		Title: req.Title,
		Price: price,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// Delete handles DELETE /v1/orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
