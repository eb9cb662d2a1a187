package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/tripflow/core"
)

// contextPrompt renders a session context into the user message handed to the
// reasoning capability: the validated request first, then every upstream step
// output in recorded order so prompts are reproducible across runs.
func contextPrompt(sc *core.SessionContext) string {
	input := sc.Input()

	var sb strings.Builder
	sb.WriteString("Travel request:\n")
	fmt.Fprintf(&sb, "- destination: %s\n", input.Destination)
	fmt.Fprintf(&sb, "- travel_purpose: %s\n", input.TravelPurpose)
	fmt.Fprintf(&sb, "- travel_companions: %s\n", input.TravelCompanions)
	fmt.Fprintf(&sb, "- travel_dates: %s\n", input.TravelDates)
	fmt.Fprintf(&sb, "- departure_location: %s\n", input.DepartureLocation)
	fmt.Fprintf(&sb, "- date_flexibility: %s\n", input.DateFlexibility)
	fmt.Fprintf(&sb, "- accommodation_type: %s\n", input.AccommodationType)
	fmt.Fprintf(&sb, "- budget: %s\n", input.Budget)
	fmt.Fprintf(&sb, "- interests_activities: %s\n", strings.Join(input.InterestsActivities, ", "))
	fmt.Fprintf(&sb, "- travel_style: %s\n", input.TravelStyle)
	fmt.Fprintf(&sb, "- duration: %s\n", input.Duration)
	fmt.Fprintf(&sb, "- budget_flexibility: %s\n", input.BudgetFlexibility)

	steps := sc.StepNames()
	if len(steps) > 0 {
		sb.WriteString("\nUpstream research:\n")
		for _, step := range steps {
			payload, _ := sc.Output(step)
			fmt.Fprintf(&sb, "\n## %s\n%s\n", step, payload)
		}
	}

	return sb.String()
}
