package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sales-crm/internal/analytics"
	"sales-crm/internal/auth"
	"sales-crm/internal/calendar"
	"sales-crm/internal/i18n"
	"sales-crm/internal/leadimport"
	"sales-crm/internal/store"
	"sales-crm/internal/templates"
	"sales-crm/internal/wizard"
	"sales-crm/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Users     *auth.Directory
	Store     *store.Store
	Wizard    *wizard.Controller
	Importer  *leadimport.Importer
	Calendar  *calendar.Service
	Analytics *analytics.Service
	Renderer  *templates.Renderer
	Catalog   *i18n.Catalog

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// --- Errors ---

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// fail maps a service error to a status code and a client-safe body.
func fail(c *gin.Context, err error) {
	var ve *wizard.ValidationError
	if errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Message, "field": ve.Field, "step": ve.Step})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", "error", err)
		abort(c, status, "internal error")
		return
	}
	abort(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, wizard.ErrLaunchInFlight),
		errors.Is(err, wizard.ErrInvalidTransition),
		errors.Is(err, wizard.ErrClosed),
		errors.Is(err, wizard.ErrNotOpen):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrUnknownLead),
		errors.Is(err, wizard.ErrUnknownTemplate),
		errors.Is(err, wizard.ErrNoTemplate),
		errors.Is(err, wizard.ErrInvalidType),
		errors.Is(err, calendar.ErrInvalidDay),
		errors.Is(err, calendar.ErrInvalidType),
		errors.Is(err, calendar.ErrNoTitle),
		errors.Is(err, leadimport.ErrEmptyFile),
		errors.Is(err, leadimport.ErrNoValidLeads),
		errors.Is(err, leadimport.ErrInvalidCSV),
		errors.Is(err, templates.ErrParse),
		errors.Is(err, analytics.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, leadimport.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// --- Health ---

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login checks the form the same way the login page does, then the
// credentials, and issues a token pair.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil || h.Users == nil {
		abort(c, http.StatusInternalServerError, "auth not configured")
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	if fe := auth.ValidateCredentials(req.Email, req.Password); len(fe) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid credentials", "fields": fe})
		return
	}
	u, err := h.Users.Authenticate(req.Email, req.Password)
	if err != nil {
		logger.FromGin(c).Info("login refused", "email", req.Email)
		abort(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	pair, err := h.Auth.IssuePair(h.now(), u)
	if err != nil {
		abort(c, http.StatusInternalServerError, "token issuance failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair, "user": u})
}

func (h Handlers) Refresh(c *gin.Context) {
	if h.Auth == nil || h.Users == nil {
		abort(c, http.StatusInternalServerError, "auth not configured")
		return
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		abort(c, http.StatusBadRequest, "refreshToken required")
		return
	}
	claims, err := h.Auth.Verify(req.RefreshToken, auth.TokenTypeRefresh, h.now())
	if err != nil {
		abort(c, http.StatusUnauthorized, "invalid token")
		return
	}
	u, ok := h.Users.Lookup(claims.UserID)
	if !ok {
		abort(c, http.StatusUnauthorized, "invalid token")
		return
	}
	pair, err := h.Auth.IssuePair(h.now(), u)
	if err != nil {
		abort(c, http.StatusInternalServerError, "token issuance failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": pair, "user": u})
}

// Me returns the caller, with the display name from the directory when known.
func (h Handlers) Me(c *gin.Context) {
	u, ok := auth.UserFrom(c.Request.Context())
	if !ok {
		abort(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	if h.Users != nil {
		if stored, found := h.Users.Lookup(u.ID); found {
			u.Name = stored.Name
		}
	}
	c.JSON(http.StatusOK, u)
}

// --- i18n ---

type language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Translations returns the message table for ?lang=, or for the best match of
// Accept-Language when lang is absent. With ?key= only that string is returned.
func (h Handlers) Translations(c *gin.Context) {
	cat := h.Catalog
	if cat == nil {
		cat = i18n.Default()
	}
	lang := c.Query("lang")
	if lang == "" {
		lang = cat.Match(c.GetHeader("Accept-Language"))
	}

	if key := c.Query("key"); key != "" {
		c.JSON(http.StatusOK, gin.H{"language": lang, "key": key, "value": cat.T(key, lang, key)})
		return
	}

	msgs := cat.Messages(lang)
	if msgs == nil {
		abort(c, http.StatusNotFound, "unknown language")
		return
	}
	langs := make([]language, 0, len(cat.Languages()))
	for _, code := range cat.Languages() {
		langs = append(langs, language{Code: code, Name: cat.Name(code)})
	}
	c.JSON(http.StatusOK, gin.H{"language": lang, "messages": msgs, "languages": langs})
}
