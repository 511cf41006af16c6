package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/analytics"
	"sales-crm/internal/crm"
	"sales-crm/internal/templates"
)

// --- Campaigns ---

type createCampaignRequest struct {
	Name     string             `json:"name"`
	Type     crm.CampaignType   `json:"type"`
	Status   crm.CampaignStatus `json:"status"`
	Contacts int                `json:"contacts"`
	Tone     string             `json:"tone"`
	Goal     string             `json:"goal"`
	Industry string             `json:"industry"`
	CTA      string             `json:"cta"`

	TemplateID string `json:"templateId"`
}

func (h Handlers) ListCampaigns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"campaigns": h.Store.Campaigns()})
}

func (h Handlers) GetCampaign(c *gin.Context) {
	camp, ok := h.Store.Campaign(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, "campaign not found")
		return
	}
	c.JSON(http.StatusOK, camp)
}

// CreateCampaign adds a campaign directly, bypassing the wizard.
func (h Handlers) CreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		abort(c, http.StatusBadRequest, "name required")
		return
	}
	if req.Type == "" {
		req.Type = crm.CampaignTypeStandard
	}
	if !validCampaignType(req.Type) {
		abort(c, http.StatusBadRequest, "type must be ai_powered or standard")
		return
	}
	if req.Status == "" {
		req.Status = crm.CampaignStatusDraft
	}
	if !validCampaignStatus(req.Status) {
		abort(c, http.StatusBadRequest, "status must be draft, active, paused or completed")
		return
	}
	if req.Contacts < 0 {
		abort(c, http.StatusBadRequest, "contacts must not be negative")
		return
	}

	camp := h.Store.AddCampaign(crm.Campaign{
		Name:       req.Name,
		Type:       req.Type,
		Status:     req.Status,
		Contacts:   req.Contacts,
		Tone:       req.Tone,
		Goal:       req.Goal,
		Industry:   req.Industry,
		CTA:        req.CTA,
		TemplateID: req.TemplateID,
	})
	c.JSON(http.StatusCreated, camp)
}

func (h Handlers) UpdateCampaign(c *gin.Context) {
	var p crm.CampaignPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	if p.Type != nil && !validCampaignType(*p.Type) {
		abort(c, http.StatusBadRequest, "type must be ai_powered or standard")
		return
	}
	if p.Status != nil && !validCampaignStatus(*p.Status) {
		abort(c, http.StatusBadRequest, "status must be draft, active, paused or completed")
		return
	}
	camp, ok := h.Store.UpdateCampaign(c.Param("id"), p)
	if !ok {
		abort(c, http.StatusNotFound, "campaign not found")
		return
	}
	c.JSON(http.StatusOK, camp)
}

func (h Handlers) DeleteCampaign(c *gin.Context) {
	if !h.Store.DeleteCampaign(c.Param("id")) {
		abort(c, http.StatusNotFound, "campaign not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) ToggleCampaign(c *gin.Context) {
	status, ok := h.Store.ToggleCampaignStatus(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, "campaign not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": status})
}

func validCampaignType(t crm.CampaignType) bool {
	return t == crm.CampaignTypeAIPowered || t == crm.CampaignTypeStandard
}

func validCampaignStatus(s crm.CampaignStatus) bool {
	switch s {
	case crm.CampaignStatusDraft, crm.CampaignStatusActive, crm.CampaignStatusPaused, crm.CampaignStatusCompleted:
		return true
	default:
		return false
	}
}

// --- Templates ---

type renderRequest struct {
	LeadID    string            `json:"leadId"`
	Variables map[string]string `json:"variables"`
}

func (h Handlers) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.Store.Templates()})
}

func (h Handlers) CreateTemplate(c *gin.Context) {
	var t crm.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		abort(c, http.StatusBadRequest, "name required")
		return
	}
	t.ID = ""
	if err := h.Renderer.Validate(t); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Store.AddTemplate(t))
}

// RenderTemplate previews a template for one lead.
func (h Handlers) RenderTemplate(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	tpl, ok := h.Store.Template(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, "template not found")
		return
	}
	var lead crm.Lead
	if req.LeadID != "" {
		if lead, ok = h.Store.Lead(req.LeadID); !ok {
			abort(c, http.StatusNotFound, "lead not found")
			return
		}
	}
	out, err := h.Renderer.Render(tpl, templates.VarsForLead(lead, req.Variables))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Sequences ---

func (h Handlers) ListSequences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sequences": h.Store.Sequences()})
}

func (h Handlers) CreateSequence(c *gin.Context) {
	var q crm.Sequence
	if err := c.ShouldBindJSON(&q); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	q.Name = strings.TrimSpace(q.Name)
	if q.Name == "" {
		abort(c, http.StatusBadRequest, "name required")
		return
	}
	for _, st := range q.Steps {
		switch st.Type {
		case crm.SequenceStepEmail, crm.SequenceStepWait, crm.SequenceStepCondition:
		default:
			abort(c, http.StatusBadRequest, "step type must be email, wait or condition")
			return
		}
	}
	q.ID = ""
	c.JSON(http.StatusCreated, h.Store.AddSequence(q))
}

// --- Activities ---

func (h Handlers) ListActivities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"activities": h.Store.Activities()})
}

func (h Handlers) ClearActivities(c *gin.Context) {
	h.Store.ClearActivities()
	c.Status(http.StatusNoContent)
}

// --- Analytics ---

// AnalyticsSummary accepts optional RFC 3339 ?from= and ?to= bounds.
func (h Handlers) AnalyticsSummary(c *gin.Context) {
	var req analytics.SummaryRequest
	for _, b := range []struct {
		name string
		dst  *time.Time
	}{{"from", &req.Range.From}, {"to", &req.Range.To}} {
		v := c.Query(b.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			abort(c, http.StatusBadRequest, b.name+" must be an RFC 3339 timestamp")
			return
		}
		*b.dst = t
	}

	out, err := h.Analytics.Summary(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
