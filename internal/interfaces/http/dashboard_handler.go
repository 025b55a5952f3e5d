package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subzonix/subzonix-api/internal/application/analytics"
	"github.com/subzonix/subzonix-api/internal/application/dto"
	"github.com/subzonix/subzonix-api/internal/application/retention"
	"github.com/subzonix/subzonix-api/internal/domain/entity"
)

// DashboardHandler expone los contadores en vivo del dashboard. Al consultar,
// asegura la sesión del motor de retención para el tenant del token; mientras
// no llegue el primer snapshot los contadores vienen en cero con loading=true.
type DashboardHandler struct {
	manager *retention.Manager
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(manager *retention.Manager) *DashboardHandler {
	return &DashboardHandler{manager: manager}
}

// DashboardResponse contadores + ventas ordenadas del scope activo.
type DashboardResponse struct {
	Counters analytics.Counters  `json:"counters"`
	Sales    []*dto.SaleResponse `json:"sales"`
}

// Summary devuelve el estado vivo del dashboard del tenant.
// GET /api/dashboard/summary
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "tenant_id no encontrado en el token",
		})
	}

	if _, err := h.manager.Ensure(c.Context(), tenantID); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "SESSION_UNAVAILABLE", Message: "no se pudo iniciar la sesión del dashboard",
		})
	}

	return c.JSON(DashboardResponse{
		Counters: h.manager.Counters(tenantID),
		Sales:    toSaleResponses(h.manager.Snapshot(tenantID)),
	})
}

// SwitchScope cambia el scope del dashboard a otro tenant (solo admin). La
// sesión anterior se cierra antes de abrir la nueva; la respuesta llega con
// loading=true hasta el primer snapshot.
// POST /api/dashboard/scope/:tenantID
func (h *DashboardHandler) SwitchScope(c *fiber.Ctx) error {
	current := GetTenantID(c)
	if current == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "tenant_id no encontrado en el token",
		})
	}
	target := c.Params("tenantID")
	if target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tenantID requerido"})
	}
	if target != current && GetRole(c) != entity.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo un admin puede cambiar de scope"})
	}

	if _, err := h.manager.Switch(c.Context(), current, target); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "SESSION_UNAVAILABLE", Message: "no se pudo cambiar el scope",
		})
	}

	return c.JSON(DashboardResponse{
		Counters: h.manager.Counters(target),
		Sales:    toSaleResponses(h.manager.Snapshot(target)),
	})
}

func toSaleResponses(records []entity.SaleRecord) []*dto.SaleResponse {
	out := make([]*dto.SaleResponse, 0, len(records))
	for i := range records {
		s := &records[i]
		items := make([]dto.SaleItemResponse, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, dto.SaleItemResponse{
				ID:         it.ID,
				Label:      it.Label,
				ExpiryDate: it.ExpiryDate,
				Cost:       it.Cost,
				Price:      it.Price,
			})
		}
		out = append(out, &dto.SaleResponse{
			ID:           s.ID,
			TenantID:     s.TenantID,
			ClientName:   s.ClientName,
			ClientPhone:  s.ClientPhone,
			ClientStatus: s.ClientStatus,
			VendorName:   s.VendorName,
			VendorPhone:  s.VendorPhone,
			VendorStatus: s.VendorStatus,
			Items:        items,
			TotalCost:    s.Finance.TotalCost,
			TotalSale:    s.Finance.TotalSale,
			Profit:       s.Finance.Profit,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return out
}
