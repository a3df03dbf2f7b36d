package model

import "fmt"

// SurveyAlias declares that two differently-named stations in different
// surveys are physically the same point. The pair is unordered.
type SurveyAlias struct {
	From string
	To   string
}

// Contains reports whether name is one of the alias endpoints.
func (a SurveyAlias) Contains(name string) bool {
	return a.From == name || a.To == name
}

// Other returns the opposite endpoint of name, or "" when name is not
// part of the alias.
func (a SurveyAlias) Other(name string) string {
	switch name {
	case a.From:
		return a.To
	case a.To:
		return a.From
	default:
		return ""
	}
}

// CaveMetadata is free-form descriptive data carried with a cave.
type CaveMetadata struct {
	Settlement string
	Region     string
	Country    string
}

// Cave owns the ordered survey list, the alias list, and the optional
// geo-reference. The shared station map itself lives in the core
// package; the cave carries only the data it is rebuilt from.
//
// Invariant: survey names are unique within a cave.
type Cave struct {
	Name       string
	Metadata   CaveMetadata
	Attributes map[string]string

	Surveys []*Survey
	Aliases []SurveyAlias
	GeoData *GeoData
}

// SurveyByName returns the survey with the given name and its index, or
// nil and -1 when absent.
func (c *Cave) SurveyByName(name string) (*Survey, int) {
	for i, s := range c.Surveys {
		if s.Name == name {
			return s, i
		}
	}
	return nil, -1
}

// AddSurvey appends a survey, enforcing name uniqueness.
func (c *Cave) AddSurvey(s *Survey) error {
	if s == nil || s.Name == "" {
		return fmt.Errorf("nil or unnamed survey")
	}
	if existing, _ := c.SurveyByName(s.Name); existing != nil {
		return fmt.Errorf("survey %q already exists in cave %q", s.Name, c.Name)
	}
	c.Surveys = append(c.Surveys, s)
	return nil
}
