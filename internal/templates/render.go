// Package templates renders email templates for a lead using the Liquid
// template language. Placeholders look like {{FIRST_NAME}}.
package templates

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"sales-crm/internal/crm"
)

var ErrParse = errors.New("templates: parse failed")

// Rendered is a template resolved for one recipient.
type Rendered struct {
	TemplateID string `json:"templateId"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// Renderer caches parsed templates by template id and field.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// {{ FIRST_NAME | default: "there" }}
	engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		if s := fmt.Sprintf("%v", value); s == "" || s == "<nil>" {
			return fallback
		}
		return value
	})

	return &Renderer{engine: engine}
}

// Validate reports template syntax errors in subject or body.
func (r *Renderer) Validate(t crm.Template) error {
	if _, err := r.engine.ParseString(t.Subject); err != nil {
		return fmt.Errorf("%w: subject: %v", ErrParse, err)
	}
	if _, err := r.engine.ParseString(t.Body); err != nil {
		return fmt.Errorf("%w: body: %v", ErrParse, err)
	}
	return nil
}

// Render resolves subject and body against vars. Unknown variables render empty.
func (r *Renderer) Render(t crm.Template, vars map[string]string) (Rendered, error) {
	bindings := make(liquid.Bindings, len(vars))
	for k, v := range vars {
		bindings[k] = v
	}

	subject, err := r.render(t.ID+":subject:"+t.Subject, t.Subject, bindings)
	if err != nil {
		return Rendered{}, err
	}
	body, err := r.render(t.ID+":body:"+t.Body, t.Body, bindings)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{TemplateID: t.ID, Subject: subject, Body: body}, nil
}

func (r *Renderer) render(cacheKey, src string, b liquid.Bindings) (string, error) {
	if cached, ok := r.cache.Load(cacheKey); ok {
		return renderTemplate(cached.(*liquid.Template), b)
	}
	tpl, err := r.engine.ParseString(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	r.cache.Store(cacheKey, tpl)
	return renderTemplate(tpl, b)
}

func renderTemplate(tpl *liquid.Template, b liquid.Bindings) (string, error) {
	out, err := tpl.RenderString(b)
	if err != nil {
		return "", fmt.Errorf("templates: render: %w", err)
	}
	return out, nil
}

// VarsForLead builds the standard placeholder set for a lead. Entries in
// extra override the lead-derived values.
func VarsForLead(l crm.Lead, extra map[string]string) map[string]string {
	vars := map[string]string{
		"FIRST_NAME": firstName(l.Name),
		"NAME":       l.Name,
		"COMPANY":    l.Company,
		"EMAIL":      l.Email,
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
