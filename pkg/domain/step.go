package domain

// Step is a single ordered transform unit.
// Its position inside the owning StepGroup is its execution order.
type Step struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Code      string `json:"code"`
	Muted     bool   `json:"muted"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// StepPatch is a partial update of a Step. Nil fields are left untouched.
type StepPatch struct {
	Title *string `json:"title,omitempty" mapstructure:"title"`
	Code  *string `json:"code,omitempty" mapstructure:"code"`
	Muted *bool   `json:"muted,omitempty" mapstructure:"muted"`
}

// Empty reports whether the patch carries no field.
func (p StepPatch) Empty() bool {
	return p.Title == nil && p.Code == nil && p.Muted == nil
}

// Apply writes the patched fields into s.
func (p StepPatch) Apply(s *Step) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Code != nil {
		s.Code = *p.Code
	}
	if p.Muted != nil {
		s.Muted = *p.Muted
	}
}

// StepGroup is a named, ordered collection of Steps plus the raw input text
// last typed while the group was active.
type StepGroup struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Steps     []Step `json:"steps"`
	InputText string `json:"inputText,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// StepIndex returns the position of the step with the given id, or -1.
func (g *StepGroup) StepIndex(id string) int {
	for i := range g.Steps {
		if g.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the group.
func (g StepGroup) Clone() StepGroup {
	out := g
	out.Steps = append([]Step(nil), g.Steps...)
	if out.Steps == nil {
		out.Steps = []Step{}
	}
	return out
}

// LibraryStep is a reusable step template. It is never executed in place.
type LibraryStep struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Code      string `json:"code"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// LibraryStepPatch is a partial update of a LibraryStep.
type LibraryStepPatch struct {
	Title *string `json:"title,omitempty" mapstructure:"title"`
	Code  *string `json:"code,omitempty" mapstructure:"code"`
}

// Apply writes the patched fields into l.
func (p LibraryStepPatch) Apply(l *LibraryStep) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Code != nil {
		l.Code = *p.Code
	}
}
