package main

import (
	"strings"

	"stravagpx/internal/strava"
)

// sportTypeFlag is a pflag.Value restricted to the known sport types.
type sportTypeFlag struct {
	value strava.SportType
}

func (f *sportTypeFlag) String() string { return string(f.value) }

func (f *sportTypeFlag) Set(raw string) error {
	value, err := strava.ParseSportType(raw)
	if err != nil {
		return err
	}
	f.value = value
	return nil
}

func (f *sportTypeFlag) Type() string { return "SportType" }

func sportTypeUsage() string {
	names := make([]string, 0, len(strava.KnownSportTypes))
	for _, st := range strava.KnownSportTypes {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}
