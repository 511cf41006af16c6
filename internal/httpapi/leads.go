package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/crm"
	"sales-crm/internal/leadimport"
)

type leadInput struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Company string         `json:"company"`
	Phone   string         `json:"phone"`
	Status  crm.LeadStatus `json:"status"`
	Source  crm.LeadSource `json:"source"`
}

type addLeadsRequest struct {
	Leads []leadInput `json:"leads"`
}

// ListLeads filters by ?q= (name, company or email) and ?status=.
func (h Handlers) ListLeads(c *gin.Context) {
	leads := h.Store.SearchLeads(c.Query("q"), crm.LeadStatus(c.Query("status")))
	c.JSON(http.StatusOK, gin.H{"leads": leads, "total": len(leads)})
}

func (h Handlers) GetLead(c *gin.Context) {
	l, ok := h.Store.Lead(c.Param("id"))
	if !ok {
		abort(c, http.StatusNotFound, "lead not found")
		return
	}
	c.JSON(http.StatusOK, l)
}

// AddLeads stores a manual batch. The whole batch is refused when any entry
// lacks a name or email.
func (h Handlers) AddLeads(c *gin.Context) {
	var req addLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Leads) == 0 {
		abort(c, http.StatusBadRequest, "leads required")
		return
	}

	batch := make([]crm.Lead, 0, len(req.Leads))
	for _, in := range req.Leads {
		l := crm.Lead{
			Name:    strings.TrimSpace(in.Name),
			Email:   strings.TrimSpace(in.Email),
			Company: strings.TrimSpace(in.Company),
			Phone:   strings.TrimSpace(in.Phone),
			Status:  in.Status,
			Source:  in.Source,
		}
		if l.Name == "" || l.Email == "" {
			abort(c, http.StatusBadRequest, "every lead needs a name and email")
			return
		}
		if l.Source == "" {
			l.Source = crm.LeadSourceManual
		}
		batch = append(batch, l)
	}
	c.JSON(http.StatusCreated, gin.H{"leads": h.Store.AddLeads(batch)})
}

// ImportLeads accepts a CSV either as a multipart "file" field or as the raw
// request body.
func (h Handlers) ImportLeads(c *gin.Context) {
	var r io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			abort(c, http.StatusBadRequest, "file required")
			return
		}
		if fh.Size > leadimport.MaxFileSize {
			fail(c, leadimport.ErrTooLarge)
			return
		}
		f, err := fh.Open()
		if err != nil {
			fail(c, err)
			return
		}
		defer f.Close()
		r = f
	}

	res, err := h.Importer.Import(c.Request.Context(), r, h.Store)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"imported": len(res.Leads),
		"skipped":  res.Skipped,
		"columns":  res.Columns,
		"leads":    res.Leads,
	})
}

func (h Handlers) UpdateLead(c *gin.Context) {
	var p crm.LeadPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	l, ok := h.Store.UpdateLead(c.Param("id"), p)
	if !ok {
		abort(c, http.StatusNotFound, "lead not found")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h Handlers) DeleteLead(c *gin.Context) {
	if !h.Store.DeleteLead(c.Param("id")) {
		abort(c, http.StatusNotFound, "lead not found")
		return
	}
	c.Status(http.StatusNoContent)
}
