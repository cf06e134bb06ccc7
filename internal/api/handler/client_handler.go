package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

// ClientHandler handles HTTP requests for client operations.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

// --- Request / Response types ---

type createClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address"`
}

type updateClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address"`
}

type clientStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type clientResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Address       string     `json:"address,omitempty"`
	Active        bool       `json:"active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type clientProfitResponse struct {
	ClientID string  `json:"client_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Active   bool    `json:"active"`
	Profit   float64 `json:"profit"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Address:       c.Address,
		Active:        c.Active,
		DeactivatedAt: c.DeactivatedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toClientResponses(clients []*domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out
}

func toProfitResponse(p *ports.ClientProfit) clientProfitResponse {
	return clientProfitResponse{
		ClientID: p.ClientID,
		Name:     p.Name,
		Email:    p.Email,
		Active:   p.Active,
		Profit:   p.Profit.Dollars(),
	}
}

// Create handles POST /v1/clients.
//
// @Summary      Register a new client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      createClientRequest  true  "Client details"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Create(c.Request().Context(), ports.CreateClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// Get handles GET /v1/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	client, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// List handles GET /v1/clients. An optional ?q= keyword searches
// name/email/address.
func (h *ClientHandler) List(c echo.Context) error {
	clients, err := h.service.ListOrSearch(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponses(clients))
}

// Update handles PUT /v1/clients/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// SetStatus handles PATCH /v1/clients/:id/status, the status mutator.
//
// @Summary      Activate or deactivate a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Client id"
// @Param        body  body      clientStatusRequest  true  "Target status"
// @Success      200   {object}  clientResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/clients/{id}/status [patch]
func (h *ClientHandler) SetStatus(c echo.Context) error {
	var req clientStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	client, err := h.service.SetActive(c.Request().Context(), c.Param("id"), *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// Orders handles GET /v1/clients/:id/orders.
func (h *ClientHandler) Orders(c echo.Context) error {
	orders, err := h.service.ListOrders(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Profit handles GET /v1/clients/:id/profit.
func (h *ClientHandler) Profit(c echo.Context) error {
	profit, err := h.service.Profit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfitResponse(profit))
}

// ProfitRange handles GET /v1/clients/profit?min=&max=, listing clients whose net
// position falls inside the (optionally half-open) range.
func (h *ClientHandler) ProfitRange(c echo.Context) error {
	var r ports.ProfitRange
	if raw := c.QueryParam("min"); raw != "" {
		v, err := parseMoneyParam("min", raw)
		if err != nil {
			return err
		}
		r.Min = &v
	}
	if raw := c.QueryParam("max"); raw != "" {
		v, err := parseMoneyParam("max", raw)
		if err != nil {
			return err
		}
		r.Max = &v
	}

	profits, err := h.service.ProfitsInRange(c.Request().Context(), r)
	if err != nil {
		return err
	}

	out := make([]clientProfitResponse, 0, len(profits))
	for _, p := range profits {
		out = append(out, toProfitResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

func parseMoneyParam(name, raw string) (domain.Cents, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	cents, err := domain.DollarsToCents(f)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+": "+err.Error())
	}
	return cents, nil
}
