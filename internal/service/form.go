package service

import (
	"net/url"
	"strconv"
	"time"

	"github.com/etdpk/etdclient/internal/entity"
)

// formFields maps the browser form field names onto the wire record. Both
// citizenId and the legacy citizenNumber feed citizen_id.
var formFields = map[string]func(*entity.Application, string){
	"firstName":       func(a *entity.Application, v string) { a.FirstName = v },
	"lastName":        func(a *entity.Application, v string) { a.LastName = v },
	"fatherName":      func(a *entity.Application, v string) { a.FatherName = v },
	"motherName":      func(a *entity.Application, v string) { a.MotherName = v },
	"gender":          func(a *entity.Application, v string) { a.Gender = v },
	"citizenId":       func(a *entity.Application, v string) { a.CitizenID = v },
	"citizenNumber":   func(a *entity.Application, v string) { a.CitizenID = v },
	"pakistanCity":    func(a *entity.Application, v string) { a.PakistanCity = v },
	"dateOfBirth":     func(a *entity.Application, v string) { a.DateOfBirth = formDate(v) },
	"birthCountry":    func(a *entity.Application, v string) { a.BirthCountry = v },
	"birthCity":       func(a *entity.Application, v string) { a.BirthCity = v },
	"profession":      func(a *entity.Application, v string) { a.Profession = v },
	"pakistanAddress": func(a *entity.Application, v string) { a.PakistanAddress = v },
	"height":          func(a *entity.Application, v string) { a.Height = formNumber(v) },
	"colorOfHair":     func(a *entity.Application, v string) { a.ColorOfHair = v },
	"colorOfEyes":     func(a *entity.Application, v string) { a.ColorOfEyes = v },
	"departureDate":   func(a *entity.Application, v string) { a.DepartureDate = formDate(v) },
	"transportMode":   func(a *entity.Application, v string) { a.TransportMode = v },
	"investor":        func(a *entity.Application, v string) { a.Investor = v == "true" },
	"requestedBy":     func(a *entity.Application, v string) { a.RequestedBy = v },
	"reasonForDeport": func(a *entity.Application, v string) { a.ReasonForDeport = v },
	"amount":          func(a *entity.Application, v string) { a.Amount = formNumber(v) },
	"currency":        func(a *entity.Application, v string) { a.Currency = v },
	"isFiaBlacklist":  func(a *entity.Application, v string) { a.IsFiaBlacklist = v == "true" },
	"status":          func(a *entity.Application, v string) { a.Status = entity.ApplicationStatus(v) },
}

// ApplicationFromForm converts submitted form values into an application
// record. Unparsable numbers become 0 and dates are normalized to
// YYYY-MM-DD; empty fields are skipped so they keep their zero values.
func ApplicationFromForm(values url.Values) entity.Application {
	var app entity.Application

	for field, set := range formFields {
		if v := values.Get(field); v != "" {
			set(&app, v)
		}
	}

	if app.Status == "" {
		app.Status = entity.StatusDraft
	}

	return app
}

func formNumber(v string) float64 {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}

	return n
}

func formDate(v string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return v
}
