// Command recalc rebuilds the station network of every cave in a
// project file and reports the diagnostics, without a running server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joemeszaros/speleo-studio-sub003/core"
	"github.com/joemeszaros/speleo-studio-sub003/model"
)

func main() {
	projectPath := flag.String("project", "project.json", "path to a JSON project file")
	outPath := flag.String("out", "", "optional path to write the recalculated project back to")
	printStations := flag.Bool("stations", false, "print every placed station with its local position")
	flag.Parse()

	f, err := os.Open(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open project %q: %v\n", *projectPath, err)
		os.Exit(1)
	}
	caves, summary, err := core.LoadProject(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded project: %d caves, %d surveys, %d shots\n",
		len(summary.CaveNames), summary.SurveyCount, summary.ShotCount)

	failed := false
	for _, cave := range caves {
		stations := core.NewStationMap()
		if err := core.ReconstructCave(cave, stations, nil); err != nil {
			fmt.Fprintf(os.Stderr, "error: cave %q: %v\n", cave.Name, err)
			failed = true
			continue
		}
		report(cave, stations, *printStations)
	}

	if *outPath != "" && !failed {
		if err := writeProject(*outPath, caves); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote recalculated project to %s\n", *outPath)
	}

	if failed {
		os.Exit(1)
	}
}

func report(cave *model.Cave, stations *core.StationMap, printStations bool) {
	fmt.Printf("\nCave %q: %d stations placed\n", cave.Name, stations.Len())

	for _, survey := range cave.Surveys {
		status := "ok"
		if survey.Isolated {
			status = "ISOLATED"
		}
		fmt.Printf("  survey %-24s start=%-12s orphans=%d duplicates=%d %s\n",
			survey.Name, survey.Start,
			len(survey.OrphanShotIDs), len(survey.DuplicateShotIDs), status)
		for _, id := range survey.OrphanShotIDs {
			fmt.Printf("    orphan shot %d\n", id)
		}
		for _, id := range survey.DuplicateShotIDs {
			fmt.Printf("    duplicate shot %d\n", id)
		}
	}

	if !printStations {
		return
	}
	for _, name := range stations.Names() {
		st := stations.Get(name)
		fmt.Printf("  %-32s (%8.2f, %8.2f, %8.2f) %s\n",
			name, st.Position.X, st.Position.Y, st.Position.Z, st.Type)
	}
}

func writeProject(path string, caves []*model.Cave) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()
	return core.WriteProject(f, "recalculated", caves)
}
