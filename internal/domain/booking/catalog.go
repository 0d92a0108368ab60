package booking

import (
	"fmt"
	"strings"
)

type Sport string

const (
	SportWholeBasketball Sport = "Whole Basketball"
	SportHalfBasketball  Sport = "Half Basketball"
	SportPickleball      Sport = "Pickleball"
)

// TotalCourtCount is the sum of all court entries across sports.
const TotalCourtCount = 7

var sports = []Sport{SportWholeBasketball, SportHalfBasketball, SportPickleball}

var courtOptions = map[Sport][]string{
	SportWholeBasketball: {"Whole Basketball Court"},
	SportHalfBasketball:  {"Half Court 1", "Half Court 2", "Half Court 3"},
	SportPickleball:      {"Court 1", "Court 2", "Court 3"},
}

var rates = map[Sport]float64{
	SportWholeBasketball: 1000,
	SportHalfBasketball:  500,
	SportPickleball:      300,
}

func Sports() []Sport {
	out := make([]Sport, len(sports))
	copy(out, sports)
	return out
}

func ParseSport(s string) (Sport, error) {
	v := strings.ToLower(strings.Join(strings.Fields(s), " "))
	for _, sp := range sports {
		if strings.ToLower(string(sp)) == v {
			return sp, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSport, s)
}

// Courts returns the court list for sport, nil when the sport is unknown.
func Courts(sport Sport) []string {
	cs := courtOptions[sport]
	if cs == nil {
		return nil
	}
	out := make([]string, len(cs))
	copy(out, cs)
	return out
}

func Rate(sport Sport) (float64, bool) {
	r, ok := rates[sport]
	return r, ok
}

func HasCourt(sport Sport, court string) bool {
	for _, c := range courtOptions[sport] {
		if c == court {
			return true
		}
	}
	return false
}

// SportOfCourt finds the sport owning court. Court names are unique across sports.
func SportOfCourt(court string) (Sport, bool) {
	for _, sp := range sports {
		if HasCourt(sp, court) {
			return sp, true
		}
	}
	return "", false
}

// AllCourts lists every court in catalog order.
func AllCourts() []string {
	out := make([]string, 0, TotalCourtCount)
	for _, sp := range sports {
		out = append(out, courtOptions[sp]...)
	}
	return out
}
