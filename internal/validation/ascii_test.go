package validation

import (
	"testing"
)

func TestCheckNonASCIIClean(t *testing.T) {
	if issues := CheckNonASCII("barcode,plate\nS1,plate1\n"); len(issues) != 0 {
		t.Errorf("expected no issues, got %d", len(issues))
	}
}

func TestCheckNonASCIIFindsSmartQuote(t *testing.T) {
	issues := CheckNonASCII("barcode\nS’1\n")
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Line != 2 {
		t.Errorf("line = %d, want 2", issues[0].Line)
	}
	if issues[0].Column != 2 {
		t.Errorf("column = %d, want 2", issues[0].Column)
	}
	if issues[0].Number != 1 {
		t.Errorf("issue number = %d, want 1", issues[0].Number)
	}
}

func TestCheckNonASCIIMultiple(t *testing.T) {
	issues := CheckNonASCII("é\nü\n")
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[1].Number != 2 || issues[1].Line != 2 {
		t.Errorf("second issue = %+v", issues[1])
	}
}
