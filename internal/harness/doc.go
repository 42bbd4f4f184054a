// Package harness runs conformance scenarios against the period engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: vimsottari_rohini
//	description: "Moon 40% through Rohini"
//	system: VIMSOTTARI
//	systems:                  # optional custom CUE definitions
//	  - ../systems/triad.cue
//	reference: "45:20:00"     # decimal or D:M:S degrees
//	epoch: "1990-03-14T06:30:00Z"
//	horizon_years: 13
//	balance: {ruler: Moon, consumed: "2/5"}
//	steps:
//	  - name: birth
//	    offset: "0"           # Julian years from epoch, "13/12" allowed
//	    depth: 1
//	    rulers: [Moon, Jupiter]
//	  - name: pushya
//	    longitude: "100"      # zodiac-axis systems
//	    depth: 1
//	    error: INVALID_REFERENCE
//	timeline:
//	  depth: 0
//
// Open failures are asserted with a scenario-level expect_error.
//
// # Deterministic Output
//
// Every run uses a fixed query id and discards logs, so the trace of a
// scenario is byte-identical across runs and can be compared against a
// golden snapshot in testdata/golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/rohini.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
