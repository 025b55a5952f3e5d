package dto

import "time"

// CreateTenantRequest alta de tenant (negocio revendedor).
type CreateTenantRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

// UpdateTenantRequest actualización parcial; nil = sin cambio.
type UpdateTenantRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	Plan            *string `json:"plan"`
	RetentionMonths *string `json:"retention_months"`
}

// TenantResponse tenant en respuestas.
type TenantResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	Plan            string    `json:"plan"`
	RetentionMonths string    `json:"retention_months"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TenantModuleResponse módulo activo del tenant.
type TenantModuleResponse struct {
	ModuleName string     `json:"module_name"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}
