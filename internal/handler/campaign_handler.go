package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/unionhall/outreach-engine/internal/domain"
	"github.com/unionhall/outreach-engine/internal/repository"
	"github.com/unionhall/outreach-engine/internal/service"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

type CampaignService interface {
	Create(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.Campaign, error)
	List(ctx context.Context, orgID string, params repository.CampaignListParams) ([]domain.Campaign, int64, error)
	GetSummary(ctx context.Context, orgID, id string) (*service.CampaignSummary, error)
	Start(ctx context.Context, orgID, id string) (*domain.Campaign, error)
	Pause(ctx context.Context, orgID, id string) (*domain.Campaign, error)
	Resume(ctx context.Context, orgID, id string) (*domain.Campaign, error)
	Cancel(ctx context.Context, orgID, id string) (*domain.Campaign, error)
}

type CampaignHandler struct {
	service CampaignService
}

func NewCampaignHandler(service CampaignService) (*CampaignHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("campaign service is required")
	}
	return &CampaignHandler{service: service}, nil
}

func RegisterCampaignRoutes(router fiber.Router, service CampaignService, accounts AccountResolver) error {
	h, err := NewCampaignHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1", RequireAuth(accounts))
	v1.Post("/campaigns", h.CreateCampaign)
	v1.Get("/campaigns", h.ListCampaigns)
	v1.Get("/campaigns/:id", h.GetCampaign)
	v1.Get("/campaigns/:id/summary", h.GetCampaignSummary)
	v1.Post("/campaigns/:id/start", h.StartCampaign)
	v1.Post("/campaigns/:id/pause", h.PauseCampaign)
	v1.Post("/campaigns/:id/resume", h.ResumeCampaign)
	v1.Post("/campaigns/:id/cancel", h.CancelCampaign)

	return nil
}

type createCampaignRequest struct {
	Name           string                 `json:"name"`
	Subject        string                 `json:"subject"`
	BodyHTML       string                 `json:"bodyHtml"`
	BodyText       string                 `json:"bodyText"`
	FromName       string                 `json:"fromName"`
	FromEmail      string                 `json:"fromEmail"`
	ScheduledAt    *time.Time             `json:"scheduledAt,omitempty"`
	TargetCriteria *domain.TargetCriteria `json:"targetCriteria,omitempty"`
}

type campaignResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Subject         string                `json:"subject"`
	BodyHTML        string                `json:"bodyHtml"`
	BodyText        string                `json:"bodyText,omitempty"`
	FromName        string                `json:"fromName"`
	FromEmail       string                `json:"fromEmail"`
	Status          string                `json:"status"`
	TargetCriteria  domain.TargetCriteria `json:"targetCriteria"`
	TotalRecipients int                   `json:"totalRecipients"`
	SentCount       int                   `json:"sentCount"`
	FailedCount     int                   `json:"failedCount"`
	ScheduledAt     *time.Time            `json:"scheduledAt,omitempty"`
	StartedAt       *time.Time            `json:"startedAt,omitempty"`
	PausedAt        *time.Time            `json:"pausedAt,omitempty"`
	CompletedAt     *time.Time            `json:"completedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type listCampaignsData struct {
	Campaigns []campaignResponse `json:"campaigns"`
	Meta      listMeta           `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type campaignSummaryResponse struct {
	CampaignID      string                 `json:"campaignId"`
	Status          string                 `json:"status"`
	TotalRecipients int                    `json:"totalRecipients"`
	SentCount       int                    `json:"sentCount"`
	FailedCount     int                    `json:"failedCount"`
	Counts          []recipientStatusCount `json:"counts"`
}

type recipientStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	account, err := AccountFromCtx(c)
	if err != nil {
		return err
	}

	var req createCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrValidation)
	}

	campaign := domain.Campaign{
		OrgID:       account.OrgID,
		Name:        req.Name,
		Subject:     req.Subject,
		BodyHTML:    req.BodyHTML,
		BodyText:    req.BodyText,
		FromName:    req.FromName,
		FromEmail:   req.FromEmail,
		ScheduledAt: req.ScheduledAt,
	}
	if req.TargetCriteria != nil {
		campaign.TargetCriteria = *req.TargetCriteria
	}

	created, err := h.service.Create(c.Context(), &campaign)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(successEnvelope(toCampaignResponse(created), ""))
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	account, err := AccountFromCtx(c)
	if err != nil {
		return err
	}

	campaign, err := h.service.GetByID(c.Context(), account.OrgID, c.Params("id"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(successEnvelope(toCampaignResponse(campaign), ""))
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	account, err := AccountFromCtx(c)
	if err != nil {
		return err
	}

	params, err := parseListParams(c)
	if err != nil {
		return err
	}

	campaigns, total, err := h.service.List(c.Context(), account.OrgID, params)
	if err != nil {
		return err
	}

	responses := make([]campaignResponse, 0, len(campaigns))
	for i := range campaigns {
		responses = append(responses, toCampaignResponse(&campaigns[i]))
	}

	return c.Status(fiber.StatusOK).JSON(successEnvelope(listCampaignsData{
		Campaigns: responses,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	}, ""))
}

func (h *CampaignHandler) GetCampaignSummary(c *fiber.Ctx) error {
	account, err := AccountFromCtx(c)
	if err != nil {
		return err
	}

	summary, err := h.service.GetSummary(c.Context(), account.OrgID, c.Params("id"))
	if err != nil {
		return err
	}

	counts := make([]recipientStatusCount, 0, len(summary.Counts))
	for _, count := range summary.Counts {
		counts = append(counts, recipientStatusCount{
			Status: string(count.Status),
			Count:  count.Count,
		})
	}

	return c.Status(fiber.StatusOK).JSON(successEnvelope(campaignSummaryResponse{
		CampaignID:      summary.CampaignID,
		Status:          string(summary.Status),
		TotalRecipients: summary.TotalRecipients,
		SentCount:       summary.SentCount,
		FailedCount:     summary.FailedCount,
		Counts:          counts,
	}, ""))
}

func (h *CampaignHandler) StartCampaign(c *fiber.Ctx) error {
	return h.transition(c, h.service.Start, "Campaign started")
}

func (h *CampaignHandler) PauseCampaign(c *fiber.Ctx) error {
	return h.transition(c, h.service.Pause, "Campaign paused")
}

func (h *CampaignHandler) ResumeCampaign(c *fiber.Ctx) error {
	return h.transition(c, h.service.Resume, "Campaign resumed")
}

func (h *CampaignHandler) CancelCampaign(c *fiber.Ctx) error {
	return h.transition(c, h.service.Cancel, "Campaign cancelled")
}

type transitionFunc func(ctx context.Context, orgID, id string) (*domain.Campaign, error)

// transition runs one lifecycle operation. Only ADMIN accounts may move a
// campaign between states; organizers can read but not operate.
func (h *CampaignHandler) transition(c *fiber.Ctx, fn transitionFunc, message string) error {
	account, err := AccountFromCtx(c)
	if err != nil {
		return err
	}
	if !account.IsAdmin() {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}

	campaign, err := fn(c.Context(), account.OrgID, c.Params("id"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(successEnvelope(toCampaignResponse(campaign), message))
}

func parseListParams(c *fiber.Ctx) (repository.CampaignListParams, error) {
	params := repository.CampaignListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.CampaignListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.CampaignListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseCampaignStatusFromString(rawStatus)
		if err != nil {
			return repository.CampaignListParams{}, err
		}
		params.Status = &status
	}

	return params, nil
}

func successEnvelope(data any, message string) fiber.Map {
	envelope := fiber.Map{
		"success": true,
		"data":    data,
	}
	if message != "" {
		envelope["message"] = message
	}
	return envelope
}

func toCampaignResponse(campaign *domain.Campaign) campaignResponse {
	if campaign == nil {
		return campaignResponse{}
	}

	return campaignResponse{
		ID:              campaign.ID,
		Name:            campaign.Name,
		Subject:         campaign.Subject,
		BodyHTML:        campaign.BodyHTML,
		BodyText:        campaign.BodyText,
		FromName:        campaign.FromName,
		FromEmail:       campaign.FromEmail,
		Status:          string(campaign.Status),
		TargetCriteria:  campaign.TargetCriteria,
		TotalRecipients: campaign.TotalRecipients,
		SentCount:       campaign.SentCount,
		FailedCount:     campaign.FailedCount,
		ScheduledAt:     campaign.ScheduledAt,
		StartedAt:       campaign.StartedAt,
		PausedAt:        campaign.PausedAt,
		CompletedAt:     campaign.CompletedAt,
		CreatedAt:       campaign.CreatedAt,
		UpdatedAt:       campaign.UpdatedAt,
	}
}
