package domain

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// SeasonID is the portal's numeric code for a season.
type SeasonID int

const (
	Season2021 SeasonID = 42020
	Season2122 SeasonID = 42021
	Season2223 SeasonID = 42022
	Season2324 SeasonID = 42023
	Season2425 SeasonID = 42024
)

var knownSeasons = []SeasonID{
	Season2021,
	Season2122,
	Season2223,
	Season2324,
	Season2425,
}

// Seasons yields the known seasons, oldest first. Each call starts over.
func Seasons() iter.Seq[SeasonID] {
	return func(yield func(SeasonID) bool) {
		for _, s := range knownSeasons {
			if !yield(s) {
				return
			}
		}
	}
}

// SeasonsOf yields the given seasons in enumeration order, ignoring duplicates.
func SeasonsOf(selected ...SeasonID) iter.Seq[SeasonID] {
	want := make(map[SeasonID]struct{}, len(selected))
	for _, s := range selected {
		want[s] = struct{}{}
	}
	return func(yield func(SeasonID) bool) {
		for s := range Seasons() {
			if _, ok := want[s]; !ok {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

// StartYear is the calendar year the season begins in.
func (s SeasonID) StartYear() int {
	return 2000 + int(s)%100
}

func (s SeasonID) Label() string {
	start := s.StartYear()
	return fmt.Sprintf("%d/%02d", start, (start+1)%100)
}

func (s SeasonID) String() string {
	return strconv.Itoa(int(s))
}

func (s SeasonID) Known() bool {
	for _, k := range knownSeasons {
		if k == s {
			return true
		}
	}
	return false
}

// ParseSeason accepts either the numeric id ("42024") or the label ("2024/25").
func ParseSeason(v string) (SeasonID, error) {
	v = strings.TrimSpace(v)
	if id, err := strconv.Atoi(v); err == nil {
		s := SeasonID(id)
		if !s.Known() {
			return 0, fmt.Errorf("unknown season id %d", id)
		}
		return s, nil
	}
	for s := range Seasons() {
		if s.Label() == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", v)
}
