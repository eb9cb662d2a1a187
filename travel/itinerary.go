package travel

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Itinerary is the structured final-output contract of a planning run. The
// consolidation step emits prose; callers that need machine-checkable output
// have it emit this shape as JSON instead and verify it with Validate.
type Itinerary struct {
	Destination string          `json:"destination"`
	Summary     string          `json:"summary"`
	Days        []ItineraryDay  `json:"days"`
	Stays       []StayOption    `json:"stays"`
	Transport   []TransportLeg  `json:"transport"`
	Budget      BudgetBreakdown `json:"budget"`
	Checklist   []string        `json:"checklist,omitempty"`
}

// ItineraryDay is one day's plan.
type ItineraryDay struct {
	Day       int     `json:"day"`
	Morning   string  `json:"morning,omitempty"`
	Afternoon string  `json:"afternoon,omitempty"`
	Evening   string  `json:"evening,omitempty"`
	Cost      float64 `json:"cost,omitempty"`
}

// StayOption is one named accommodation candidate.
type StayOption struct {
	Name         string  `json:"name"`
	Area         string  `json:"area,omitempty"`
	NightlyPrice float64 `json:"nightly_price"`
	TripTotal    float64 `json:"trip_total"`
}

// TransportLeg is one named transport choice.
type TransportLeg struct {
	Name string  `json:"name"`
	Mode string  `json:"mode,omitempty"`
	Cost float64 `json:"cost"`
}

// BudgetLine is one line item in the cost table.
type BudgetLine struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// BudgetBreakdown is the validated cost table. Lines must sum to Total.
type BudgetBreakdown struct {
	Currency string       `json:"currency"`
	Lines    []BudgetLine `json:"lines"`
	Total    float64      `json:"total"`
}

// centEpsilon tolerates float noise below a hundredth of a unit.
const centEpsilon = 0.005

// CheckTotals verifies the arithmetic invariant of the cost table: the line
// items sum exactly to the grand total.
func (b BudgetBreakdown) CheckTotals() error {
	var sum float64
	for _, line := range b.Lines {
		sum += line.Amount
	}

	if math.Abs(sum-b.Total) > centEpsilon {
		return fmt.Errorf("budget lines sum to %.2f, total says %.2f", sum, b.Total)
	}

	return nil
}

// Validate checks the output contract: at least three named stay options, at
// least two named transport choices and a cost table whose lines sum to the
// total.
func (it Itinerary) Validate() error {
	var problems []string

	if len(it.Stays) < 3 {
		problems = append(problems, fmt.Sprintf("%d stay options, need at least 3", len(it.Stays)))
	}

	if len(it.Transport) < 2 {
		problems = append(problems, fmt.Sprintf("%d transport choices, need at least 2", len(it.Transport)))
	}

	if err := it.Budget.CheckTotals(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("itinerary contract: %s", strings.Join(problems, "; "))
	}

	return nil
}

// ParseItinerary decodes a final-step payload into an Itinerary and verifies
// its contract.
func ParseItinerary(raw []byte) (Itinerary, error) {
	var it Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return Itinerary{}, fmt.Errorf("decode itinerary: %w", err)
	}

	if err := it.Validate(); err != nil {
		return Itinerary{}, err
	}

	return it, nil
}
