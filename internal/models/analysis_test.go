package models

import "testing"

func TestAnalysisStatusMachine(t *testing.T) {
	cases := []struct {
		from    AnalysisStatus
		to      AnalysisStatus
		allowed bool
	}{
		{AnalysisStatusProcessing, AnalysisStatusCompleted, true},
		{AnalysisStatusProcessing, AnalysisStatusFailed, true},
		{AnalysisStatusProcessing, AnalysisStatusProcessing, false},
		{AnalysisStatusCompleted, AnalysisStatusFailed, false},
		{AnalysisStatusCompleted, AnalysisStatusProcessing, false},
		{AnalysisStatusFailed, AnalysisStatusCompleted, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if AnalysisStatusProcessing.Terminal() {
		t.Errorf("processing must not be terminal")
	}
	if !AnalysisStatusCompleted.Terminal() || !AnalysisStatusFailed.Terminal() {
		t.Errorf("completed and failed must be terminal")
	}
}

func TestValidFileType(t *testing.T) {
	for _, valid := range []string{FileTypeMedicalImage, FileTypeXRay, FileTypeCTScan, FileTypeMRI, FileTypeLabReport, FileTypeDocument} {
		if !ValidFileType(valid) {
			t.Errorf("ValidFileType(%q) = false", valid)
		}
	}
	if ValidFileType("hologram") || ValidFileType("") {
		t.Errorf("unknown file types must be rejected")
	}
}

func TestValidDiseaseType(t *testing.T) {
	for _, valid := range []string{DiseaseDiabetes, DiseaseHeart, DiseaseKidney} {
		if !ValidDiseaseType(valid) {
			t.Errorf("ValidDiseaseType(%q) = false", valid)
		}
	}
	if ValidDiseaseType("covid") || ValidDiseaseType("") {
		t.Errorf("unknown disease types must be rejected")
	}
}
