package core

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// TravelRequest is the structured input accepted by the workflow. Every field
// is required; validation happens once, at the workflow boundary, before any
// agent executes.
type TravelRequest struct {
	Destination         string   `json:"destination" validate:"required"`
	TravelPurpose       string   `json:"travel_purpose" validate:"required"`
	TravelCompanions    string   `json:"travel_companions" validate:"required"`
	TravelDates         string   `json:"travel_dates" validate:"required"`
	DepartureLocation   string   `json:"departure_location" validate:"required"`
	DateFlexibility     string   `json:"date_flexibility" validate:"required"`
	AccommodationType   string   `json:"accommodation_type" validate:"required"`
	Budget              string   `json:"budget" validate:"required"`
	InterestsActivities []string `json:"interests_activities" validate:"required,min=1,dive,required"`
	TravelStyle         string   `json:"travel_style" validate:"required"`
	Duration            string   `json:"duration" validate:"required"`
	BudgetFlexibility   string   `json:"budget_flexibility" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// jsonFieldName maps a validator struct field name back to its json tag so
// callers see wire names in violation reports.
var jsonFieldName = map[string]string{
	"Destination":         "destination",
	"TravelPurpose":       "travel_purpose",
	"TravelCompanions":    "travel_companions",
	"TravelDates":         "travel_dates",
	"DepartureLocation":   "departure_location",
	"DateFlexibility":     "date_flexibility",
	"AccommodationType":   "accommodation_type",
	"Budget":              "budget",
	"InterestsActivities": "interests_activities",
	"TravelStyle":         "travel_style",
	"Duration":            "duration",
	"BudgetFlexibility":   "budget_flexibility",
}

// Validate checks the request against the input schema. It returns a
// *ValidationError naming every offending field, or nil when the request is
// well formed.
func (r TravelRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Violations: []FieldViolation{{Message: err.Error()}}}
	}

	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonFieldName[fe.StructField()]
		if name == "" {
			name = fe.StructField()
		}
		violations = append(violations, FieldViolation{
			Field:   name,
			Rule:    fe.Tag(),
			Message: fmt.Sprintf("field %q failed rule %q", name, fe.Tag()),
		})
	}

	return &ValidationError{Violations: violations}
}

// ParseTravelRequest decodes raw JSON into a TravelRequest and validates it.
// Malformed JSON and schema violations both surface as *ValidationError so the
// caller has a single rejection path.
func ParseTravelRequest(raw []byte) (TravelRequest, error) {
	var req TravelRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, &ValidationError{Violations: []FieldViolation{{
			Message: fmt.Sprintf("malformed request body: %v", err),
		}}}
	}

	if err := req.Validate(); err != nil {
		return req, err
	}

	return req, nil
}
