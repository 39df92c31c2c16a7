// Package report computes wait and processing time statistics over completed
// orders.
package report

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/orderbot/core/model"
)

// Stats aggregates the timings of a set of completed orders, in seconds.
type Stats struct {
	Count          int     `json:"count"`
	MeanWait       float64 `json:"mean_wait_s"`
	MedianWait     float64 `json:"p50_wait_s"`
	P95Wait        float64 `json:"p95_wait_s"`
	MaxWait        float64 `json:"max_wait_s"`
	MeanProcessing float64 `json:"mean_processing_s"`
	MaxProcessing  float64 `json:"max_processing_s"`
	MeanTurnaround float64 `json:"mean_turnaround_s"`
}

// Summary holds overall and per class statistics.
type Summary struct {
	All     Stats                      `json:"all"`
	ByClass map[model.OrderClass]Stats `json:"by_class"`
}

// Summarize computes statistics over the orders that finished processing.
// Orders without both timestamps are ignored.
func Summarize(orders []model.Order) Summary {
	var all samples
	byClass := map[model.OrderClass]*samples{}
	for _, o := range orders {
		proc, ok := o.ProcessingTime()
		if !ok {
			continue
		}
		wait, _ := o.WaitTime()
		all.add(wait.Seconds(), proc.Seconds())
		s, ok := byClass[o.Class]
		if !ok {
			s = &samples{}
			byClass[o.Class] = s
		}
		s.add(wait.Seconds(), proc.Seconds())
	}
	sum := Summary{All: all.stats(), ByClass: make(map[model.OrderClass]Stats, len(byClass))}
	for c, s := range byClass {
		sum.ByClass[c] = s.stats()
	}
	return sum
}

type samples struct {
	wait, proc, turnaround []float64
}

func (s *samples) add(wait, proc float64) {
	s.wait = append(s.wait, wait)
	s.proc = append(s.proc, proc)
	s.turnaround = append(s.turnaround, wait+proc)
}

func (s *samples) stats() Stats {
	if len(s.wait) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), s.wait...)
	sort.Float64s(sorted)
	return Stats{
		Count:          len(s.wait),
		MeanWait:       stat.Mean(s.wait, nil),
		MedianWait:     stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95Wait:        stat.Quantile(0.95, stat.Empirical, sorted, nil),
		MaxWait:        floats.Max(s.wait),
		MeanProcessing: stat.Mean(s.proc, nil),
		MaxProcessing:  floats.Max(s.proc),
		MeanTurnaround: stat.Mean(s.turnaround, nil),
	}
}
