package entity

import "time"

// Tenant representa un negocio de reventa de suscripciones (multi-tenant).
type Tenant struct {
	ID              string
	Name            string
	Phone           string
	Email           string
	Plan            string // free, pro, business
	RetentionMonths string // ajuste propio del tenant; texto libre, se coerciona al evaluar
	Status          string // active, suspended, inactive
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Planes de suscripción de la propia consola.
const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanBusiness = "business"
)

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla tenant_modules).
const (
	ModuleRetentionAlerts = "retention_alerts"
	ModuleReports         = "reports"
	ModuleDashboard       = "dashboard"
)

// TenantModule representa la activación de un módulo SaaS en un tenant.
type TenantModule struct {
	ID          string
	TenantID    string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlanRetentionMonths meses de retención que impone cada plan.
// 0 significa "sin límite": el plan no fuerza ventana de retención.
var PlanRetentionMonths = map[string]int{
	PlanFree:     3,
	PlanPro:      12,
	PlanBusiness: 0,
}
