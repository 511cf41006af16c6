package crm

// CampaignPatch carries a partial campaign update. Nil fields are left as-is;
// ID and CreatedAt cannot be patched.
type CampaignPatch struct {
	Name          *string         `json:"name,omitempty"`
	Type          *CampaignType   `json:"type,omitempty"`
	Status        *CampaignStatus `json:"status,omitempty"`
	Contacts      *int            `json:"contacts,omitempty"`
	Opens         *int            `json:"opens,omitempty"`
	Clicks        *int            `json:"clicks,omitempty"`
	Replies       *int            `json:"replies,omitempty"`
	Tone          *string         `json:"tone,omitempty"`
	Goal          *string         `json:"goal,omitempty"`
	Industry      *string         `json:"industry,omitempty"`
	CTA           *string         `json:"cta,omitempty"`
	TemplateID    *string         `json:"templateId,omitempty"`
	ScheduledDate *string         `json:"scheduledDate,omitempty"`
	ScheduledTime *string         `json:"scheduledTime,omitempty"`
	Timezone      *string         `json:"timezone,omitempty"`
}

// Apply merges the patch into c.
func (p CampaignPatch) Apply(c *Campaign) {
	setIf(&c.Name, p.Name)
	setIf(&c.Type, p.Type)
	setIf(&c.Status, p.Status)
	setIf(&c.Contacts, p.Contacts)
	setIf(&c.Opens, p.Opens)
	setIf(&c.Clicks, p.Clicks)
	setIf(&c.Replies, p.Replies)
	setIf(&c.Tone, p.Tone)
	setIf(&c.Goal, p.Goal)
	setIf(&c.Industry, p.Industry)
	setIf(&c.CTA, p.CTA)
	setIf(&c.TemplateID, p.TemplateID)
	setIf(&c.ScheduledDate, p.ScheduledDate)
	setIf(&c.ScheduledTime, p.ScheduledTime)
	setIf(&c.Timezone, p.Timezone)
}

// LeadPatch carries a partial lead update. The ID is immutable.
type LeadPatch struct {
	Name    *string     `json:"name,omitempty"`
	Email   *string     `json:"email,omitempty"`
	Company *string     `json:"company,omitempty"`
	Phone   *string     `json:"phone,omitempty"`
	Status  *LeadStatus `json:"status,omitempty"`
	Source  *LeadSource `json:"source,omitempty"`
}

func (p LeadPatch) Apply(l *Lead) {
	setIf(&l.Name, p.Name)
	setIf(&l.Email, p.Email)
	setIf(&l.Company, p.Company)
	setIf(&l.Phone, p.Phone)
	setIf(&l.Status, p.Status)
	setIf(&l.Source, p.Source)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }
