package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TranscriptSnapshot is the golden-file payload for a scenario run.
type TranscriptSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Transcript   []StepEvent `json:"transcript"`
}

// RunWithGolden executes a scenario and compares its transcript against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TranscriptSnapshot{
		ScenarioName: scenario.Name,
		Transcript:   result.Transcript,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
