// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders sweep results as a fixed-width table, JSON, or YAML,
// and renders search traces as human-readable narration.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smu-check/internal/sweep"
	"github.com/pdiddy/smu-check/internal/tier"
	"github.com/pdiddy/smu-check/pkg/types"
)

// Report is the envelope written for one run.
type Report struct {
	RunID    string               `json:"run_id" yaml:"run_id"`
	Hardware types.HardwareParams `json:"hardware" yaml:"hardware"`
	Range    *types.SweepRange    `json:"range,omitempty" yaml:"range,omitempty"`
	Limits   types.Limits         `json:"limits" yaml:"limits"`
	Tiers    tier.Table           `json:"tiers" yaml:"tiers"`
	Summary  sweep.Summary        `json:"summary" yaml:"summary"`
	Points   []types.SweepPoint   `json:"points" yaml:"points"`
}

// New assembles a report for points produced with the given hardware,
// limits and tiers. rng is nil for a single search.
func New(hw types.HardwareParams, rng *types.SweepRange, limits types.Limits, tiers tier.Table, points []types.SweepPoint) Report {
	return Report{
		RunID:    uuid.NewString(),
		Hardware: hw,
		Range:    rng,
		Limits:   limits,
		Tiers:    tiers,
		Summary:  sweep.Summarize(points),
		Points:   points,
	}
}

// Write renders rep to w in the format selected by opts. Traces are included
// only when opts.Trace is set.
func Write(w io.Writer, rep Report, opts types.OutputConfig) error {
	if !opts.Trace {
		rep.Points = withoutTraces(rep.Points)
	}

	switch opts.Format {
	case types.OutputTable, "":
		return writeTable(w, rep, opts)
	case types.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case types.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", opts.Format)
	}
}

func withoutTraces(points []types.SweepPoint) []types.SweepPoint {
	out := make([]types.SweepPoint, len(points))
	for i, p := range points {
		p.Trace = nil
		out[i] = p
	}
	return out
}

func writeTable(w io.Writer, rep Report, opts types.OutputConfig) error {
	ew := &errWriter{w: w}
	st := newStyles(w, opts.Color)

	if opts.Trace {
		for _, p := range rep.Points {
			writeTrace(ew, rep.Hardware, p)
		}
		ew.printf("\n")
	}

	ew.printf("%-4s  %-14s  %-10s  %-4s  %-11s  %s\n",
		"#", "R_outer (ohm)", "R_sam", "Iter", "Current (A)", "Verdict")
	ew.printf("%s\n", strings.Repeat("-", 90))
	for i, p := range rep.Points {
		ew.printf("%-4d  %-14.4f  %-10.4g  %-4d  %-11.3e  %s\n",
			i+1, p.OuterResistance, p.SampleResistance, p.Verdict.Iterations,
			p.Verdict.Current, st.verdict(p.Verdict))
	}

	s := rep.Summary
	ew.printf("\n%d/%d passed", s.Passed, s.Total)
	if s.Passed > 0 {
		ew.printf(" (R_outer %.4f to %.4f ohm)", s.MinPassing, s.MaxPassing)
	}
	ew.printf("\n")
	for _, r := range sortedReasons(s.Counts) {
		if r == types.ReasonSuccess {
			continue
		}
		ew.printf("  %-30s %d\n", r, s.Counts[r])
	}
	return ew.err
}

// sortedReasons lists the reasons present in counts, known reasons first in
// report order.
func sortedReasons(counts map[types.Reason]int) []types.Reason {
	var out []types.Reason
	seen := make(map[types.Reason]bool)
	for _, r := range types.Reasons {
		if counts[r] > 0 {
			out = append(out, r)
			seen[r] = true
		}
	}
	var extra []types.Reason
	for r := range counts {
		if !seen[r] && counts[r] > 0 {
			extra = append(extra, r)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// WriteTrace narrates every ladder step of one sweep point.
func WriteTrace(w io.Writer, hw types.HardwareParams, p types.SweepPoint) error {
	ew := &errWriter{w: w}
	writeTrace(ew, hw, p)
	return ew.err
}

func writeTrace(ew *errWriter, hw types.HardwareParams, p types.SweepPoint) {
	ew.printf("%s\n", strings.Repeat("=", 54))
	ew.printf("Solving for R_outer = %v\n", p.OuterResistance)
	ew.printf("R_contact = %v\n", hw.ContactResistance)
	ew.printf("Gain for V_inner = %v\n", hw.Gain)
	for _, s := range p.Trace {
		ew.printf("\n  step %d\n", s.Iteration)
		ew.printf("    current   = %g A\n", s.Current)
		ew.printf("    R_series  = %g ohm\n", s.SeriesResistance)
		ew.printf("    V_dac     = %g V (code %.1f)\n", s.ControlVoltage, s.DACCode)
		if s.RealizedCurrent == 0 {
			continue
		}
		ew.printf("    R_inner   = %g ohm\n", s.RInner)
		ew.printf("    V_inner   = %g V\n", s.VInner)
		ew.printf("    V_out     = %g V\n", s.VOut)
	}
	ew.printf("\n  %s\n", p.Verdict)
}

// WriteTiers lists the series resistor table.
func WriteTiers(w io.Writer, t tier.Table) error {
	ew := &errWriter{w: w}
	ew.printf("%-14s  %s\n", "Current below", "R_series")
	ew.printf("%s\n", strings.Repeat("-", 30))
	for _, tr := range t {
		ew.printf("%-14s  %s\n", engineering(tr.MaxCurrent, "A"), engineering(tr.SeriesResistance, "ohm"))
	}
	return ew.err
}

// engineering formats v with an SI prefix, e.g. 1e-7 → "100 nA".
func engineering(v float64, unit string) string {
	prefixes := []struct {
		scale float64
		sym   string
	}{
		{1e9, "G"}, {1e6, "M"}, {1e3, "k"}, {1, ""}, {1e-3, "m"}, {1e-6, "u"}, {1e-9, "n"}, {1e-12, "p"},
	}
	for _, p := range prefixes {
		if v >= p.scale*(1-1e-12) {
			return fmt.Sprintf("%.6g %s%s", v/p.scale, p.sym, unit)
		}
	}
	return fmt.Sprintf("%g %s", v, unit)
}

type styles struct {
	pass, fail lipgloss.Style
	color      bool
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		pass:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")),
		color: color,
	}
}

func (s styles) verdict(v types.Verdict) string {
	text := fmt.Sprintf("%s: %s", v.Reason, v)
	if v.OK {
		text = "PASS"
	}
	if !s.color {
		return text
	}
	if v.OK {
		return s.pass.Render(text)
	}
	return s.fail.Render(text)
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
