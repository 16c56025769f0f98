package document

// Patch is a sparse update. Only the whitelisted descriptive fields are
// settable through the API; Status is reserved for the soft-delete path
// and never bound to a request body.
type Patch struct {
	Type       *string `json:"type"`
	Title      *string `json:"title"`
	Department *string `json:"department"`
	Number     *string `json:"number"`
	Division   *string `json:"division"`
	EndDate    *string `json:"endDate"`

	Status *Status `json:"-"`
}

// IsEmpty reports whether the patch names no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Type == nil && p.Title == nil && p.Department == nil &&
		p.Number == nil && p.Division == nil && p.EndDate == nil && p.Status == nil
}

// Apply merges the named fields into d. A record whose status reached
// deleted keeps it: the terminal state never transitions away, which also
// makes repeated soft deletes idempotent.
func (p Patch) Apply(d *Document) {
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Department != nil {
		d.Department = *p.Department
	}
	if p.Number != nil {
		d.Number = *p.Number
	}
	if p.Division != nil {
		d.Division = *p.Division
	}
	if p.EndDate != nil {
		d.EndDate = *p.EndDate
	}
	if p.Status != nil && d.Status != StatusDeleted {
		d.Status = *p.Status
	}
}
