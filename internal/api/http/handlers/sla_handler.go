package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-automation/internal/api/dto"
	"github.com/spec-kit/helpdesk-automation/internal/domain"
	"github.com/spec-kit/helpdesk-automation/internal/service"
	apperrors "github.com/spec-kit/helpdesk-automation/pkg/util"
)

// SlaHandler exposes SLA state and administration endpoints.
type SlaHandler struct {
	service *service.SlaService
}

// NewSlaHandler constructs handler.
func NewSlaHandler(slaService *service.SlaService) *SlaHandler {
	return &SlaHandler{service: slaService}
}

// GetTicketSla GET /tickets/:id/sla.
func (h *SlaHandler) GetTicketSla(c *fiber.Ctx) error {
	instance, err := h.service.GetInstance(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaInstanceResponse(instance)})
}

// SavePolicy PUT /admin/sla/policies.
func (h *SlaHandler) SavePolicy(c *fiber.Ctx) error {
	var req dto.SavePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy := &domain.SlaPolicy{
		TeamID:             req.TeamID,
		Priority:           req.Priority,
		FirstResponseHours: req.FirstResponseHours,
		ResolutionHours:    req.ResolutionHours,
		BusinessHoursOnly:  req.BusinessHoursOnly,
	}
	if err := h.service.SavePolicy(c.Context(), policy); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// ListPolicies GET /admin/sla/policies.
func (h *SlaHandler) ListPolicies(c *fiber.Ctx) error {
	policies, err := h.service.ListPolicies(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, *policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSchedule GET /admin/sla/schedule.
func (h *SlaHandler) GetSchedule(c *fiber.Ctx) error {
	schedule, err := h.service.GetSchedule(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": schedule})
}

// SaveSchedule PUT /admin/sla/schedule.
func (h *SlaHandler) SaveSchedule(c *fiber.Ctx) error {
	var req dto.SaveScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	schedule := &domain.BusinessHoursSchedule{
		Timezone: req.Timezone,
		Days:     req.Days,
		Holidays: req.Holidays,
	}
	if err := h.service.SaveSchedule(c.Context(), schedule); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": schedule})
}

func slaInstanceResponse(instance *domain.SlaInstance) dto.SlaInstanceResponse {
	return dto.SlaInstanceResponse{
		TicketID:           instance.TicketID,
		FirstResponseDueAt: instance.FirstResponseDueAt,
		FirstResponseAt:    instance.FirstResponseAt,
		ResolutionDueAt:    instance.ResolutionDueAt,
		CompletedAt:        instance.CompletedAt,
		Paused:             instance.Paused(),
		PausedAt:           instance.SlaPausedAt,
		PausedDurationMs:   instance.PausedDurationMs,
		CreatedAt:          instance.CreatedAt,
		UpdatedAt:          instance.UpdatedAt,
	}
}

func policyResponse(policy *domain.SlaPolicy) *dto.PolicyResponse {
	return &dto.PolicyResponse{
		ID:                 policy.ID,
		TeamID:             policy.TeamID,
		Priority:           policy.Priority,
		FirstResponseHours: policy.FirstResponseHours,
		ResolutionHours:    policy.ResolutionHours,
		BusinessHoursOnly:  policy.BusinessHoursOnly,
		CreatedAt:          policy.CreatedAt,
		UpdatedAt:          policy.UpdatedAt,
	}
}
