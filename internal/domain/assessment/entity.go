package assessment

import (
	"strings"
	"time"

	"github.com/yuadm/first-step-greet/internal/pkg/validator"
	"github.com/yuadm/first-step-greet/internal/pkg/wizard"
)

// FormKind identifies a multi-step form.
type FormKind string

const (
	FormSpotCheck      FormKind = "spot-check"
	FormCompetency     FormKind = "competency-assessment"
	FormJobApplication FormKind = "job-application"
)

// DraftKey is the fixed key a form's draft is stored under.
func (k FormKind) DraftKey() string {
	return string(k) + "-draft"
}

func (k FormKind) Valid() bool {
	switch k {
	case FormSpotCheck, FormCompetency, FormJobApplication:
		return true
	}
	return false
}

// Subject ties a submitted form to the compliance record it completes.
type Subject struct {
	ComplianceTypeID string `json:"compliance_type_id"`
	EmployeeID       string `json:"employee_id"`
	PeriodIdentifier string `json:"period_identifier"`
	Date             string `json:"date"` // YYYY-MM-DD
}

// Target returns the subject; forms embedding Subject expose it through this.
func (s Subject) Target() Subject {
	return s
}

func (s Subject) complete() bool {
	if validator.IsEmpty(s.ComplianceTypeID) || validator.IsEmpty(s.EmployeeID) || validator.IsEmpty(s.PeriodIdentifier) {
		return false
	}
	_, ok := validator.IsValidDate(s.Date)
	return ok
}

// ========== SPOT CHECK ==========

type Observation struct {
	Question string `json:"question"`
	Rating   int    `json:"rating"` // 1 (poor) to 5 (excellent)
	Comment  string `json:"comment,omitempty"`
}

const (
	OutcomeSatisfactory     = "satisfactory"
	OutcomeNeedsImprovement = "needs_improvement"
)

type SpotCheck struct {
	Subject
	ObserverName string        `json:"observer_name"`
	Location     string        `json:"location"`
	Observations []Observation `json:"observations"`
	Outcome      string        `json:"outcome"`
	ActionPlan   string        `json:"action_plan,omitempty"`
	SignedBy     string        `json:"signed_by"`
	Confirmed    bool          `json:"confirmed"`
}

func SpotCheckSteps() []wizard.Step[SpotCheck] {
	return []wizard.Step[SpotCheck]{
		{
			Name:     "details",
			Required: true,
			Validate: func(f SpotCheck) bool {
				return f.Subject.complete() && !validator.IsEmpty(f.ObserverName)
			},
		},
		{
			Name:     "observations",
			Required: true,
			Validate: func(f SpotCheck) bool {
				if len(f.Observations) == 0 {
					return false
				}
				for _, o := range f.Observations {
					if validator.IsEmpty(o.Question) || o.Rating < 1 || o.Rating > 5 {
						return false
					}
				}
				return true
			},
		},
		{
			Name:     "outcome",
			Required: true,
			Validate: func(f SpotCheck) bool {
				switch f.Outcome {
				case OutcomeSatisfactory:
					return true
				case OutcomeNeedsImprovement:
					return !validator.IsEmpty(f.ActionPlan)
				}
				return false
			},
		},
		{
			Name:     "sign_off",
			Required: true,
			Validate: func(f SpotCheck) bool {
				return f.Confirmed && !validator.IsEmpty(f.SignedBy)
			},
		},
	}
}

// Notes summarises the spot check for the compliance record.
func (f SpotCheck) Notes() string {
	var b strings.Builder
	b.WriteString("Spot check by ")
	b.WriteString(f.ObserverName)
	if f.Location != "" {
		b.WriteString(" at ")
		b.WriteString(f.Location)
	}
	b.WriteString(": ")
	b.WriteString(f.Outcome)
	if f.ActionPlan != "" {
		b.WriteString(". Action plan: ")
		b.WriteString(f.ActionPlan)
	}
	return b.String()
}

// ========== COMPETENCY ASSESSMENT ==========

const (
	LevelCompetent       = "competent"
	LevelNotYetCompetent = "not_yet_competent"
	LevelNotApplicable   = "not_applicable"
)

type Competency struct {
	Area     string `json:"area"`
	Level    string `json:"level"`
	Evidence string `json:"evidence,omitempty"`
}

type CompetencyAssessment struct {
	Subject
	AssessorName         string       `json:"assessor_name"`
	Competencies         []Competency `json:"competencies"`
	TrainingNeeds        string       `json:"training_needs,omitempty"`
	EmployeeAcknowledged bool         `json:"employee_acknowledged"`
	AssessorSignature    string       `json:"assessor_signature"`
}

func CompetencySteps() []wizard.Step[CompetencyAssessment] {
	return []wizard.Step[CompetencyAssessment]{
		{
			Name:     "details",
			Required: true,
			Validate: func(f CompetencyAssessment) bool {
				return f.Subject.complete() && !validator.IsEmpty(f.AssessorName)
			},
		},
		{
			Name:     "competencies",
			Required: true,
			Validate: func(f CompetencyAssessment) bool {
				if len(f.Competencies) == 0 {
					return false
				}
				for _, c := range f.Competencies {
					if validator.IsEmpty(c.Area) {
						return false
					}
					if !validator.IsInSlice(c.Level, []string{LevelCompetent, LevelNotYetCompetent, LevelNotApplicable}) {
						return false
					}
				}
				return true
			},
		},
		{
			Name:     "development",
			Required: false,
			Validate: func(f CompetencyAssessment) bool {
				return !validator.IsEmpty(f.TrainingNeeds)
			},
		},
		{
			Name:     "sign_off",
			Required: true,
			Validate: func(f CompetencyAssessment) bool {
				return f.EmployeeAcknowledged && !validator.IsEmpty(f.AssessorSignature)
			},
		},
	}
}

// Notes summarises the assessment for the compliance record.
func (f CompetencyAssessment) Notes() string {
	competent := 0
	for _, c := range f.Competencies {
		if c.Level == LevelCompetent {
			competent++
		}
	}
	var b strings.Builder
	b.WriteString("Competency assessment by ")
	b.WriteString(f.AssessorName)
	b.WriteString(": ")
	b.WriteString(validator.Itoa(competent))
	b.WriteString("/")
	b.WriteString(validator.Itoa(len(f.Competencies)))
	b.WriteString(" areas competent")
	if f.TrainingNeeds != "" {
		b.WriteString(". Training needs: ")
		b.WriteString(f.TrainingNeeds)
	}
	return b.String()
}

// ========== JOB APPLICATION ==========

type PersonalDetails struct {
	FullName           string  `json:"full_name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Address            string  `json:"address,omitempty"`
	PositionAppliedFor string  `json:"position_applied_for"`
	BranchID           *string `json:"branch_id,omitempty"`
}

type EmploymentEntry struct {
	Employer         string `json:"employer"`
	Role             string `json:"role"`
	StartDate        string `json:"start_date"`         // YYYY-MM-DD
	EndDate          string `json:"end_date,omitempty"` // empty while current
	ReasonForLeaving string `json:"reason_for_leaving,omitempty"`
}

type Reference struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// MinReferences is how many referees an application must name.
const MinReferences = 2

type JobApplication struct {
	Personal            PersonalDetails   `json:"personal"`
	EmploymentHistory   []EmploymentEntry `json:"employment_history"`
	References          []Reference       `json:"references"`
	RightToWork         bool              `json:"right_to_work"`
	DeclarationAccepted bool              `json:"declaration_accepted"`
	SignedName          string            `json:"signed_name"`
}

func JobApplicationSteps() []wizard.Step[JobApplication] {
	return []wizard.Step[JobApplication]{
		{
			Name:     "personal",
			Required: true,
			Validate: func(f JobApplication) bool {
				p := f.Personal
				return !validator.IsEmpty(p.FullName) &&
					validator.IsValidEmail(p.Email) &&
					!validator.IsEmpty(p.Phone) &&
					!validator.IsEmpty(p.PositionAppliedFor)
			},
		},
		{
			Name:     "employment_history",
			Required: true,
			Validate: func(f JobApplication) bool {
				if len(f.EmploymentHistory) == 0 {
					return false
				}
				for _, e := range f.EmploymentHistory {
					if !e.valid() {
						return false
					}
				}
				return true
			},
		},
		{
			Name:     "references",
			Required: true,
			Validate: func(f JobApplication) bool {
				if len(f.References) < MinReferences {
					return false
				}
				for _, r := range f.References {
					if validator.IsEmpty(r.Name) || validator.IsEmpty(r.Relationship) {
						return false
					}
					if !validator.IsValidEmail(r.Email) && validator.IsEmpty(r.Phone) {
						return false
					}
				}
				return true
			},
		},
		{
			Name:     "declaration",
			Required: true,
			Validate: func(f JobApplication) bool {
				return f.RightToWork && f.DeclarationAccepted &&
					strings.EqualFold(strings.TrimSpace(f.SignedName), strings.TrimSpace(f.Personal.FullName))
			},
		},
	}
}

func (e EmploymentEntry) valid() bool {
	if validator.IsEmpty(e.Employer) || validator.IsEmpty(e.Role) {
		return false
	}
	start, ok := validator.IsValidDate(e.StartDate)
	if !ok {
		return false
	}
	if e.EndDate == "" {
		return true
	}
	end, ok := validator.IsValidDate(e.EndDate)
	return ok && !end.Before(start)
}

const ApplicationStatusReceived = "received"

// Application is a submitted job application.
type Application struct {
	ID          string
	SubmittedBy string
	FullName    string
	Email       string
	Position    string
	BranchID    *string
	Status      string
	Data        JobApplication
	CreatedAt   time.Time
}

// NewApplication copies the searchable fields out of a completed form.
func NewApplication(submittedBy string, f JobApplication) Application {
	return Application{
		SubmittedBy: submittedBy,
		FullName:    strings.TrimSpace(f.Personal.FullName),
		Email:       strings.ToLower(strings.TrimSpace(f.Personal.Email)),
		Position:    strings.TrimSpace(f.Personal.PositionAppliedFor),
		BranchID:    f.Personal.BranchID,
		Status:      ApplicationStatusReceived,
		Data:        f,
	}
}
