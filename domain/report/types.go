package report

// Call is the result assigned to an assay for a sample.
type Call string

const (
	CallPass    Call = "pass"
	CallFail    Call = "fail"
	CallNoCall  Call = "no-call"
	CallUnknown Call = "unknown"
)

// ParseCall normalizes the passFail column of a genotyping report.
// Anything the instrument emits outside the known vocabulary becomes
// CallUnknown, which downstream treats as a fail-candidate needing
// user confirmation.
func ParseCall(s string) Call {
	switch normalize(s) {
	case "pass", "passed", "p", "true":
		return CallPass
	case "fail", "failed", "f", "false":
		return CallFail
	case "nocall", "no-call", "nc", "":
		return CallNoCall
	default:
		return CallUnknown
	}
}

// ResultRow is one row of a genotyping results report. Immutable once
// parsed; the transformer references rows by Index.
type ResultRow struct {
	Index        int // zero-based position in the report, header excluded
	Sample       string
	Assay        string
	Plate        string
	Well         string
	Sex          string
	AlleleSymbol string
	AlleleKey    string
	AssayKey     string
	Call         Call
	Genotype     string
	Efficiency   float64
	AlleleRatio  float64
	HasMetrics   bool // Efficiency/AlleleRatio columns present and numeric
	Reason       string
}

// Failed reports whether the row is a definite failure: either the
// instrument called it failed, or the genotype is unresolved ('?').
func (r ResultRow) Failed() bool {
	if r.Call == CallFail || r.Call == CallNoCall {
		return true
	}
	return containsQuery(r.Genotype)
}

// NeedsConfirm reports whether the row carries a call outside the known
// vocabulary and should be surfaced to the user instead of silently
// included.
func (r ResultRow) NeedsConfirm() bool {
	return r.Call == CallUnknown && !containsQuery(r.Genotype)
}

func containsQuery(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '?' {
			return true
		}
	}
	return false
}
