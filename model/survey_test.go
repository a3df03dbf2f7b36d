package model

import "testing"

func TestSurveyStartStation(t *testing.T) {
	valid := Shot{ID: 1, Type: ShotTypeCenter, From: "A", To: "B", Length: 10}
	invalid := Shot{ID: 0, Type: ShotTypeCenter, From: "", To: "B", Length: 10}

	cases := []struct {
		name   string
		survey Survey
		want   string
	}{
		{"explicit start wins", Survey{Start: "S0", Shots: []Shot{valid}}, "S0"},
		{"first shot from", Survey{Shots: []Shot{valid}}, "A"},
		{"skips invalid leading shot", Survey{Shots: []Shot{invalid, valid}}, "A"},
		{"no valid shots", Survey{Shots: []Shot{invalid}}, ""},
		{"no shots", Survey{}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.survey.StartStation(); got != tc.want {
				t.Errorf("StartStation() = %q, want %q", got, tc.want)
			}
		})
	}
}
