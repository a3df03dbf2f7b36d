// core/project_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joemeszaros/speleo-studio-sub003/model"
)

// ProjectSummary is a small summary of what was loaded from a project
// file. It's mainly useful for logging from main().
type ProjectSummary struct {
	CaveNames   []string
	SurveyCount int
	ShotCount   int
}

// projectJSON is the on-disk project shape: a named collection of cave
// export documents. Kept unexported so the format can evolve.
type projectJSON struct {
	Name  string             `json:"name"`
	Caves []model.CaveExport `json:"caves"`
}

// LoadProject reads a JSON project from r and rebuilds its caves.
// It fails on structural problems (duplicate survey names, unknown shot
// types, bad coordinate systems) the same way direct CaveFromExport
// calls do; reconstruction diagnostics are left to the engine.
func LoadProject(r io.Reader) ([]*model.Cave, *ProjectSummary, error) {
	var payload projectJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("LoadProject: decode failed: %w", err)
	}

	summary := &ProjectSummary{}
	caves := make([]*model.Cave, 0, len(payload.Caves))
	for i := range payload.Caves {
		cave, err := model.CaveFromExport(payload.Caves[i])
		if err != nil {
			return nil, nil, fmt.Errorf("LoadProject: %w", err)
		}
		caves = append(caves, cave)
		summary.CaveNames = append(summary.CaveNames, cave.Name)
		summary.SurveyCount += len(cave.Surveys)
		for _, s := range cave.Surveys {
			summary.ShotCount += len(s.Shots)
		}
	}
	return caves, summary, nil
}

// WriteProject serializes caves into the project shape consumed by
// LoadProject.
func WriteProject(w io.Writer, name string, caves []*model.Cave) error {
	payload := projectJSON{Name: name}
	for _, c := range caves {
		payload.Caves = append(payload.Caves, c.ToExport())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("WriteProject: encode failed: %w", err)
	}
	return nil
}
