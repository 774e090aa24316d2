package strava

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// SportType is the Strava sport tag attached to every activity. Remote
// activities may carry tags outside KnownSportTypes; only filters are
// restricted to the known vocabulary.
type SportType string

// String returns the tag as sent by Strava.
func (s SportType) String() string { return string(s) }

// KnownSportTypes lists the sport types that can be selected as a filter.
var KnownSportTypes = []SportType{
	"AlpineSki",
	"BackcountrySki",
	"Badminton",
	"Canoeing",
	"Crossfit",
	"EBikeRide",
	"Elliptical",
	"EMountainBikeRide",
	"Golf",
	"GravelRide",
	"Handcycle",
	"HighIntensityIntervalTraining",
	"Hike",
	"IceSkate",
	"InlineSkate",
	"Kayaking",
	"Kitesurf",
	"MountainBikeRide",
	"NordicSki",
	"Pickleball",
	"Pilates",
	"Racquetball",
	"Ride",
	"RockClimbing",
	"RollerSki",
	"Rowing",
	"Run",
	"Sail",
	"Skateboard",
	"Snowboard",
	"Snowshoe",
	"Soccer",
	"Squash",
	"StairStepper",
	"StandUpPaddling",
	"Surfing",
	"Swim",
	"TableTennis",
	"Tennis",
	"TrailRun",
	"Velomobile",
	"VirtualRide",
	"VirtualRow",
	"VirtualRun",
	"Walk",
	"WeightTraining",
	"Wheelchair",
	"Windsurf",
	"Workout",
	"Yoga",
}

var sportTypeIndex = buildSportTypeIndex()

func buildSportTypeIndex() map[string]SportType {
	caser := cases.Fold()
	index := make(map[string]SportType, len(KnownSportTypes))
	for _, sport := range KnownSportTypes {
		index[caser.String(string(sport))] = sport
	}
	return index
}

// ParseSportType resolves a user-supplied value against KnownSportTypes.
// Matching ignores case, so "trailrun" yields TrailRun.
func ParseSportType(value string) (SportType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("sport type must not be empty")
	}
	if sport, ok := sportTypeIndex[cases.Fold().String(trimmed)]; ok {
		return sport, nil
	}
	return "", fmt.Errorf("unknown sport type %q", value)
}

// Activity is the subset of a Strava SummaryActivity the exporter needs.
type Activity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	SportType      SportType `json:"sport_type"`
}

// Athlete is the authenticated athlete's profile.
type Athlete struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// DisplayName joins first and last name.
func (a Athlete) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
