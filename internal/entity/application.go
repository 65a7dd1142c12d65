package entity

type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "DRAFT"
	StatusSubmitted   ApplicationStatus = "SUBMITTED"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusApproved    ApplicationStatus = "APPROVED"
	StatusRejected    ApplicationStatus = "REJECTED"
	StatusCompleted   ApplicationStatus = "COMPLETED"
)

// statusTransitions encodes the application lifecycle. APPROVED, REJECTED and
// COMPLETED are terminal except that an approved document may still be
// completed after printing.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusCompleted},
	StatusRejected:    {},
	StatusCompleted:   {},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func (s ApplicationStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

func (s ApplicationStatus) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusSubmitted:
		return "Submitted"
	case StatusUnderReview:
		return "Under Review"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Application is the backend-owned ETD application record. The client only
// shapes it for display and submission and never holds an authoritative copy.
type Application struct {
	ID              string            `json:"id,omitempty"`
	TrackingID      string            `json:"tracking_id,omitempty"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	FatherName      string            `json:"father_name,omitempty"`
	MotherName      string            `json:"mother_name,omitempty"`
	Gender          string            `json:"gender,omitempty"`
	CitizenID       string            `json:"citizen_id"`
	PakistanCity    string            `json:"pakistan_city,omitempty"`
	DateOfBirth     string            `json:"date_of_birth,omitempty"`
	BirthCountry    string            `json:"birth_country,omitempty"`
	BirthCity       string            `json:"birth_city,omitempty"`
	Profession      string            `json:"profession,omitempty"`
	PakistanAddress string            `json:"pakistan_address,omitempty"`
	Height          float64           `json:"height,omitempty"`
	ColorOfHair     string            `json:"color_of_hair,omitempty"`
	ColorOfEyes     string            `json:"color_of_eyes,omitempty"`
	DepartureDate   string            `json:"departure_date,omitempty"`
	TransportMode   string            `json:"transport_mode,omitempty"`
	Investor        bool              `json:"investor,omitempty"`
	RequestedBy     string            `json:"requested_by,omitempty"`
	ReasonForDeport string            `json:"reason_for_deport,omitempty"`
	Amount          float64           `json:"amount,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	IsFiaBlacklist  bool              `json:"is_fia_blacklist,omitempty"`
	Status          ApplicationStatus `json:"status"`

	NadraResponse    *VerificationResult `json:"nadra_response,omitempty"`
	PassportResponse *VerificationResult `json:"passport_response,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
