package service

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/etdpk/etdclient/internal/entity"
)

const (
	FileNameMaxLen = 255
	NameMaxLen     = 50
)

var (
	cnicRegexp = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)

	allowedFileExtensions = map[string]struct{}{
		".pdf":  {},
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".doc":  {},
		".docx": {},
	}
)

// ValidateCitizenID checks the CNIC format NNNNN-NNNNNNN-N.
func ValidateCitizenID(citizenID string) error {
	if strings.TrimSpace(citizenID) == "" {
		return entity.ErrCitizenIDRequired
	}

	if !cnicRegexp.MatchString(citizenID) {
		return entity.ErrCitizenIDFormat
	}

	return nil
}

// NormalizeCitizenID inserts the CNIC dashes when a bare 13-digit value is
// given. Anything else passes through unchanged for ValidateCitizenID to
// reject.
func NormalizeCitizenID(citizenID string) string {
	trimmed := strings.TrimSpace(citizenID)

	digits := strings.ReplaceAll(trimmed, "-", "")
	if len(digits) != 13 {
		return trimmed
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return trimmed
		}
	}

	return digits[:5] + "-" + digits[5:12] + "-" + digits[12:]
}

func ValidateApplication(app entity.Application) error {
	if strings.TrimSpace(app.FirstName) == "" {
		return entity.ErrFirstNameRequired
	}

	if strings.TrimSpace(app.LastName) == "" {
		return entity.ErrLastNameRequired
	}

	if err := ValidateCitizenID(app.CitizenID); err != nil {
		return err
	}

	if app.DateOfBirth != "" {
		born, err := time.Parse("2006-01-02", app.DateOfBirth)
		if err == nil && born.After(time.Now()) {
			return entity.ErrBirthDateInFuture
		}
	}

	return nil
}

func ValidateUploadFile(name string, size, maxSize int64) error {
	if utf8.RuneCountInString(name) > FileNameMaxLen {
		return entity.ErrFileNameTooLong
	}

	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedFileExtensions[ext]; !ok {
		return entity.ErrFileType
	}

	if size > maxSize {
		return entity.ErrFileTooLarge
	}

	return nil
}
