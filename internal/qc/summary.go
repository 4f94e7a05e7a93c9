package qc

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"ngsrerun/domain/report"
)

// Summary describes the parsed run for the review page: call counts,
// per-plate failure rates and distribution summaries of the
// instrument's quality metrics.
type Summary struct {
	Total        int
	Passed       int
	Failed       int
	NeedsConfirm int

	PlateFailRates map[string]float64

	Efficiency  MetricSummary
	AlleleRatio MetricSummary

	RatioHistogram []HistogramBin
}

// MetricSummary holds descriptive statistics for one numeric report
// column.
type MetricSummary struct {
	N      int
	Mean   float64
	Median float64
	StdDev float64
	Q1     float64
	Q3     float64
}

// HistogramBin is one bar of the allele-ratio distribution.
type HistogramBin struct {
	Low   float64
	High  float64
	Count int
}

const ratioBins = 8

// Summarize computes run statistics over the parsed report rows.
func Summarize(rows []report.ResultRow) Summary {
	s := Summary{
		Total:          len(rows),
		PlateFailRates: make(map[string]float64),
	}

	plateTotal := make(map[string]int)
	plateFailed := make(map[string]int)
	var efficiency, ratio []float64

	for _, r := range rows {
		plateTotal[r.Plate]++
		switch {
		case r.Failed():
			s.Failed++
			plateFailed[r.Plate]++
		case r.NeedsConfirm():
			s.NeedsConfirm++
		default:
			s.Passed++
		}
		if r.HasMetrics {
			efficiency = append(efficiency, r.Efficiency)
			ratio = append(ratio, r.AlleleRatio)
		}
	}

	for p, n := range plateTotal {
		s.PlateFailRates[p] = float64(plateFailed[p]) / float64(n)
	}

	s.Efficiency = summarizeMetric(efficiency)
	s.AlleleRatio = summarizeMetric(ratio)
	s.RatioHistogram = histogram(ratio, ratioBins)
	return s
}

func summarizeMetric(values []float64) MetricSummary {
	m := MetricSummary{N: len(values)}
	if len(values) == 0 {
		return m
	}

	// montanaflynn copies internally, gonum's quantile wants a sorted
	// slice it can keep.
	m.Mean, _ = stats.Mean(values)
	m.Median, _ = stats.Median(values)
	if len(values) > 1 {
		m.StdDev, _ = stats.StandardDeviation(values)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	m.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	m.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	return m
}

// histogram buckets values into equal-width bins across their range.
func histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins < 1 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	low, high := sorted[0], sorted[len(sorted)-1]
	if low == high {
		return []HistogramBin{{Low: low, High: high, Count: len(values)}}
	}

	dividers := make([]float64, bins+1)
	width := (high - low) / float64(bins)
	for i := range dividers {
		dividers[i] = low + float64(i)*width
	}
	// gonum requires max(x) strictly below the final divider.
	dividers[bins] = math.Nextafter(high, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{
			Low:   dividers[i],
			High:  dividers[i+1],
			Count: int(counts[i]),
		}
	}
	return out
}
