package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/crm"
	"sales-crm/internal/draft"
	"sales-crm/internal/wizard"
)

// draftRequest edits the wizard draft. Absent fields are left alone; a
// variable with an empty value is removed.
type draftRequest struct {
	Name       *string               `json:"name"`
	Type       *crm.CampaignType     `json:"type"`
	AIConfig   *wizard.AIConfigPatch `json:"aiConfig"`
	Contacts   []string              `json:"contacts"`
	TemplateID *string               `json:"templateId"`
	Variables  map[string]string     `json:"variables"`
	Schedule   *draft.Schedule       `json:"schedule"`
}

func (h Handlers) WizardState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Wizard.State())
}

// wizardAction adapts a no-argument controller call to a handler.
func (h Handlers) wizardAction(fn func(*wizard.Controller) (wizard.State, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := fn(h.Wizard)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func (h Handlers) WizardOpen() gin.HandlerFunc   { return h.wizardAction((*wizard.Controller).Open) }
func (h Handlers) WizardNext() gin.HandlerFunc   { return h.wizardAction((*wizard.Controller).Next) }
func (h Handlers) WizardSkip() gin.HandlerFunc   { return h.wizardAction((*wizard.Controller).Skip) }
func (h Handlers) WizardBack() gin.HandlerFunc   { return h.wizardAction((*wizard.Controller).Back) }
func (h Handlers) WizardCancel() gin.HandlerFunc { return h.wizardAction((*wizard.Controller).Cancel) }

// UpdateDraft applies each present field in turn and stops at the first
// refusal; fields applied before it stay applied.
func (h Handlers) UpdateDraft(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}

	steps := []func() (wizard.State, error){}
	if req.Name != nil {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SetName(*req.Name) })
	}
	if req.Type != nil {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SetType(*req.Type) })
	}
	if req.AIConfig != nil {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SetAIConfig(*req.AIConfig) })
	}
	if req.Contacts != nil {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SelectContacts(req.Contacts) })
	}
	if req.TemplateID != nil {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SetTemplate(*req.TemplateID) })
	}
	for k, v := range req.Variables {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SetVariable(k, v) })
	}
	if req.Schedule != nil {
		steps = append(steps, func() (wizard.State, error) { return h.Wizard.SetSchedule(*req.Schedule) })
	}

	st := h.Wizard.State()
	for _, step := range steps {
		var err error
		if st, err = step(); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, st)
}

func (h Handlers) ToggleDraftContact(c *gin.Context) {
	st, err := h.Wizard.ToggleContact(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// PreviewDraft renders the draft's template for ?leadId=.
func (h Handlers) PreviewDraft(c *gin.Context) {
	leadID := c.Query("leadId")
	if leadID == "" {
		abort(c, http.StatusBadRequest, "leadId required")
		return
	}
	out, err := h.Wizard.Preview(leadID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// LaunchCampaign blocks for the launch delay and returns the new campaign.
func (h Handlers) LaunchCampaign(c *gin.Context) {
	camp, err := h.Wizard.Launch(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, camp)
}
