package entity

const (
	VerificationSuccess = "SUCCESS"
	VerificationError   = "ERROR"
)

// Verification types accepted by the NADRA and Passport endpoints.
const (
	VerificationTypeBasicInfo     = "basic_info"
	VerificationTypeDocumentCheck = "document_check"
)

type VerificationRequest struct {
	CitizenID        string `json:"citizen_id"`
	VerificationType string `json:"verification_type"`
	RequesterID      string `json:"requester_id"`
	PassportNumber   string `json:"passport_number,omitempty"`
}

// PersonRecord carries the demographic fields returned by both registries.
// Passport-only fields stay empty on NADRA responses.
type PersonRecord struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	FatherName         string `json:"father_name"`
	MotherName         string `json:"mother_name"`
	PakistanCity       string `json:"pakistan_city"`
	DateOfBirth        string `json:"date_of_birth"`
	BirthCountry       string `json:"birth_country"`
	BirthCity          string `json:"birth_city"`
	Profession         string `json:"profession"`
	PakistanAddress    string `json:"pakistan_address"`
	VerificationStatus string `json:"verification_status,omitempty"`

	PassportStatus   string `json:"passport_status,omitempty"`
	IssueDate        string `json:"issue_date,omitempty"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
}

type VerificationResult struct {
	Status         string        `json:"status"`
	CitizenID      string        `json:"citizen_id,omitempty"`
	PassportNumber string        `json:"passport_number,omitempty"`
	Data           *PersonRecord `json:"data,omitempty"`
	ErrorCode      string        `json:"error_code,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	ResponseID     string        `json:"response_id,omitempty"`
	Timestamp      string        `json:"timestamp,omitempty"`
}

func (r *VerificationResult) OK() bool {
	return r != nil && r.Status == VerificationSuccess && r.Data != nil
}
