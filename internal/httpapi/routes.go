package httpapi

import (
	"github.com/gin-gonic/gin"

	"sales-crm/internal/auth"
	"sales-crm/internal/rbac"
)

// Register mounts the /v1 API on r. Reads are open to every role; writes
// need admin or member.
func (h Handlers) Register(r gin.IRouter) {
	v1 := r.Group("/v1")

	v1.GET("/i18n", h.Translations)
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	api := v1.Group("")
	api.Use(auth.RequireAccessToken(h.Auth), rbac.RequireWriter())
	api.GET("/me", h.Me)

	campaigns := api.Group("/campaigns")
	{
		campaigns.GET("", h.ListCampaigns)
		campaigns.POST("", h.CreateCampaign)
		campaigns.GET("/:id", h.GetCampaign)
		campaigns.PATCH("/:id", h.UpdateCampaign)
		campaigns.DELETE("/:id", h.DeleteCampaign)
		campaigns.POST("/:id/toggle", h.ToggleCampaign)
	}

	leads := api.Group("/leads")
	{
		leads.GET("", h.ListLeads)
		leads.POST("", h.AddLeads)
		leads.POST("/import", h.ImportLeads)
		leads.GET("/:id", h.GetLead)
		leads.PATCH("/:id", h.UpdateLead)
		leads.DELETE("/:id", h.DeleteLead)
	}

	tpl := api.Group("/templates")
	{
		tpl.GET("", h.ListTemplates)
		tpl.POST("", h.CreateTemplate)
		tpl.POST("/:id/render", h.RenderTemplate)
	}

	api.GET("/sequences", h.ListSequences)
	api.POST("/sequences", h.CreateSequence)

	api.GET("/activities", h.ListActivities)
	api.DELETE("/activities", h.ClearActivities)

	wiz := api.Group("/wizard")
	{
		wiz.GET("", h.WizardState)
		wiz.POST("/open", h.WizardOpen())
		wiz.POST("/next", h.WizardNext())
		wiz.POST("/skip", h.WizardSkip())
		wiz.POST("/back", h.WizardBack())
		wiz.POST("/cancel", h.WizardCancel())
		wiz.PATCH("/draft", h.UpdateDraft)
		wiz.POST("/contacts/:id/toggle", h.ToggleDraftContact)
		wiz.GET("/preview", h.PreviewDraft)
		wiz.POST("/launch", h.LaunchCampaign)
	}

	cal := api.Group("/calendar")
	{
		cal.GET("", h.ListEvents)
		cal.GET("/:day", h.EventsOnDay)
		cal.POST("/:day", h.AddEvent)
		cal.DELETE("/:day/:id", h.DeleteEvent)
	}

	api.GET("/analytics/summary", h.AnalyticsSummary)
}
