package e2e_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// speciesDTO mirrors the subset of the API response the tests assert on.
type speciesDTO struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Charge       int    `json:"charge"`
	Multiplicity int    `json:"multiplicity"`
	SMILES       string `json:"smiles"`
	InChI        string `json:"inchi"`
	Version      int    `json:"version"`
	Reviewed     bool   `json:"reviewed"`
	Approved     bool   `json:"approved"`
	Retracted    string `json:"retracted"`
}

type validationReport struct {
	Valid      bool `json:"valid"`
	Violations []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"violations"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func waterRecord(label string) map[string]interface{} {
	return map[string]interface{}{
		"label":        label,
		"charge":       0,
		"multiplicity": 1,
		"smiles":       "O",
		"inchi":        "InChI=1S/H2O/h1H2",
		"is_well":      true,
		"coordinates": map[string]interface{}{
			"symbols": []string{"O", "H", "H"},
			"coords": [][]float64{
				{0, 0, 0},
				{0, 0, 0.9584},
				{0.9293, 0, -0.2396},
			},
		},
	}
}

// uniqueLabel keeps repeated suite runs from colliding on conflict checks.
func uniqueLabel(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestSpeciesLifecycle(t *testing.T) {
	label := uniqueLabel("e2e-water")

	var created speciesDTO
	status := env.doJSON(t, http.MethodPost, "/api/v1/species", waterRecord(label), &created)
	if status != http.StatusCreated {
		t.Fatalf("submit: got status %d", status)
	}
	if created.ID == "" {
		t.Fatal("submit: response carries no id")
	}
	if created.Reviewed || created.Approved {
		t.Error("submit: new record must not be pre-reviewed")
	}

	var fetched speciesDTO
	status = env.doJSON(t, http.MethodGet, "/api/v1/species/"+created.ID, nil, &fetched)
	if status != http.StatusOK {
		t.Fatalf("get: got status %d", status)
	}
	if fetched.Label != label {
		t.Errorf("get: label %q, want %q", fetched.Label, label)
	}

	var reviewed speciesDTO
	status = env.doJSON(t, http.MethodPost, "/api/v1/species/"+created.ID+"/review",
		map[string]interface{}{"approved": true}, &reviewed)
	if status != http.StatusOK {
		t.Fatalf("review: got status %d", status)
	}
	if !reviewed.Reviewed || !reviewed.Approved {
		t.Error("review: record not marked reviewed and approved")
	}

	var retracted speciesDTO
	status = env.doJSON(t, http.MethodDelete,
		"/api/v1/species/"+created.ID+"?reason=e2e+cleanup", nil, &retracted)
	if status != http.StatusOK {
		t.Fatalf("retract: got status %d", status)
	}
	if retracted.Retracted == "" {
		t.Error("retract: no retraction reason recorded")
	}

	// A retracted record stays fetchable by ID for citation integrity.
	status = env.doJSON(t, http.MethodGet, "/api/v1/species/"+created.ID, nil, &fetched)
	if status != http.StatusOK {
		t.Fatalf("get after retract: got status %d", status)
	}
}

func TestSpeciesDryRunDoesNotPersist(t *testing.T) {
	label := uniqueLabel("e2e-dryrun")

	var report validationReport
	status := env.doJSON(t, http.MethodPost, "/api/v1/species/validate", waterRecord(label), &report)
	if status != http.StatusOK {
		t.Fatalf("validate: got status %d", status)
	}
	if !report.Valid {
		t.Fatalf("validate: record rejected: %+v", report.Violations)
	}

	var page struct {
		Items []speciesDTO `json:"items"`
		Total int64        `json:"total"`
	}
	status = env.doJSON(t, http.MethodGet, "/api/v1/species?label="+label, nil, &page)
	if status != http.StatusOK {
		t.Fatalf("list: got status %d", status)
	}
	if page.Total != 0 {
		t.Errorf("dry run persisted %d record(s)", page.Total)
	}
}

func TestSpeciesRejectionReportsViolations(t *testing.T) {
	record := waterRecord(uniqueLabel("e2e-bad"))
	record["multiplicity"] = 0

	var body errorBody
	status := env.doJSON(t, http.MethodPost, "/api/v1/species", record, &body)
	if status != http.StatusBadRequest {
		t.Fatalf("submit: got status %d", status)
	}
	if body.Code == "" {
		t.Error("rejection carries no error code")
	}
}

func TestCoordinateToolsRoundTrip(t *testing.T) {
	var parsed struct {
		Symbols  []string    `json:"symbols"`
		Isotopes []int       `json:"isotopes"`
		Coords   [][]float64 `json:"coords"`
	}
	status := env.doJSON(t, http.MethodPost, "/api/v1/tools/coordinates/parse",
		map[string]interface{}{"text": "O 0.0 0.0 0.0\nH 0.0 0.0 0.9584\nH 0.9293 0.0 -0.2396"},
		&parsed)
	if status != http.StatusOK {
		t.Fatalf("parse: got status %d", status)
	}
	if len(parsed.Symbols) != 3 {
		t.Fatalf("parse: got %d atoms, want 3", len(parsed.Symbols))
	}

	var formatted struct {
		Text string `json:"text"`
	}
	status = env.doJSON(t, http.MethodPost, "/api/v1/tools/coordinates/format",
		map[string]interface{}{"coordinates": parsed}, &formatted)
	if status != http.StatusOK {
		t.Fatalf("format: got status %d", status)
	}
	if formatted.Text == "" {
		t.Fatal("format: empty text block")
	}
}
