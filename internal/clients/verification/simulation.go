package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/etdpk/etdclient/internal/entity"
	"github.com/etdpk/etdclient/pkg/logger"
)

const simulatedPassportNumber = "AA1234567"

// simulateVerify returns canned registry data after a fixed delay. It stands
// in for the real services during development and demos; the delay keeps the
// UI exercising its loading states.
func (c *Client) simulateVerify(ctx context.Context, citizenID, passportNumber string) *entity.VerificationResult {
	logger.FromContext(ctx).InfoContext(ctx, "verification running in simulation mode",
		"service", c.service, "citizen_id", citizenID)

	select {
	case <-time.After(c.simDelay):
	case <-ctx.Done():
		return &entity.VerificationResult{
			Status:       entity.VerificationError,
			CitizenID:    citizenID,
			ErrorCode:    errCodeTimeout,
			ErrorMessage: ctx.Err().Error(),
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		}
	}

	record := &entity.PersonRecord{
		FirstName:       "John",
		LastName:        "Doe",
		FatherName:      "Robert Doe",
		MotherName:      "Jane Doe",
		PakistanCity:    "Karachi",
		DateOfBirth:     "1990-01-01",
		BirthCountry:    "Pakistan",
		BirthCity:       "Lahore",
		Profession:      "Software Engineer",
		PakistanAddress: "123 Main Street, Karachi",
	}

	result := &entity.VerificationResult{
		Status:     entity.VerificationSuccess,
		CitizenID:  citizenID,
		Data:       record,
		ResponseID: fmt.Sprintf("%s_SIM_%s", strings.ToUpper(c.service), simResponseID()),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	switch c.verificationType {
	case entity.VerificationTypeDocumentCheck:
		if passportNumber == "" {
			passportNumber = simulatedPassportNumber
		}

		result.PassportNumber = passportNumber
		record.PassportStatus = "ACTIVE"
		record.IssueDate = "2020-01-15"
		record.ExpiryDate = "2030-01-15"
		record.IssuingAuthority = "Passport Office Karachi"
	default:
		record.VerificationStatus = "VERIFIED"
	}

	return result
}

func simResponseID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}

	return id.String()
}
