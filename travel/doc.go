// Package travel assembles the travel planning pipeline: a parallel research
// group (weather, destination, accommodation, transport) followed by
// activities curation, local insights, budget optimization and the final
// itinerary compilation. It also defines the structured Itinerary output
// contract with its validated cost table.
package travel
