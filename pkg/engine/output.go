package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
	"github.com/wildfunctions/equation_evolution/pkg/model"
)

// HallOfFameEntry is one archived individual in a report.
type HallOfFameEntry struct {
	Rank    int           `json:"rank"`
	Genome  string        `json:"genome"`
	LaTeX   string        `json:"latex"`
	Size    int           `json:"size"`
	Height  int           `json:"height"`
	Fitness []model.Float `json:"fitness"`
}

// Report summarizes one finished phase.
type Report struct {
	Phase           string            `json:"phase"`
	Objectives      []string          `json:"objectives"`
	GenerationsUsed int               `json:"generations_used"`
	MaxGenerations  int               `json:"max_generations"`
	Evaluations     int               `json:"evaluations"`
	Duration        time.Duration     `json:"duration"`
	HallOfFame      []HallOfFameEntry `json:"hall_of_fame"`
}

// NewReport builds the report of a result.
func NewReport(phase string, res *Result) Report {
	r := Report{
		Phase:           phase,
		Objectives:      res.Objectives,
		GenerationsUsed: res.GenerationsUsed,
		MaxGenerations:  res.MaxGenerations,
		Duration:        res.Duration,
		HallOfFame:      hallOfFameEntries(res.HallOfFame.Items()),
	}
	for _, rec := range res.Logbook {
		r.Evaluations += rec.NEvals
	}
	return r
}

// NewPhaseReport builds the report of a stored phase. archived is the hall
// of fame of rec, rebuilt into individuals.
func NewPhaseReport(phase string, rec *model.PhaseRecord, archived []*genome.Individual) Report {
	r := Report{
		Phase:           phase,
		Objectives:      rec.Objectives,
		GenerationsUsed: rec.GenerationsUsed,
		MaxGenerations:  rec.MaxGenerations,
		Duration:        rec.Duration,
		HallOfFame:      hallOfFameEntries(archived),
	}
	for _, l := range rec.Logbook {
		r.Evaluations += l.NEvals
	}
	return r
}

func hallOfFameEntries(inds []*genome.Individual) []HallOfFameEntry {
	out := make([]HallOfFameEntry, len(inds))
	for i, ind := range inds {
		out[i] = HallOfFameEntry{
			Rank:    i + 1,
			Genome:  ind.String(),
			LaTeX:   ind.Genome.LaTeX(),
			Size:    ind.Genome.Size(),
			Height:  ind.Genome.Height(),
			Fitness: model.Floats(ind.Fitness.Values),
		}
	}
	return out
}

// WriteTextReport writes a report in human-readable format.
func WriteTextReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "\n========== %s ==========\n", strings.ToUpper(r.Phase))
	fmt.Fprintf(w, "Generations: %s of %s\n", humanize.Comma(int64(r.GenerationsUsed)), humanize.Comma(int64(r.MaxGenerations)))
	fmt.Fprintf(w, "Evaluations: %s\n", humanize.Comma(int64(r.Evaluations)))
	fmt.Fprintf(w, "Duration:    %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Objectives:  %s\n", strings.Join(r.Objectives, ", "))
	fmt.Fprintln(w, "--- Hall of Fame ---")
	for _, e := range r.HallOfFame {
		fmt.Fprintf(w, "  #%d: %s | size %d, height %d | %s\n",
			e.Rank, formatFitness(e.Fitness), e.Size, e.Height, e.Genome)
	}
}

// WriteJSONReport writes any report value as indented JSON.
func WriteJSONReport(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// latexEscape escapes underscores for LaTeX text mode.
func latexEscape(s string) string {
	return strings.ReplaceAll(s, "_", `\_`)
}

// WriteHallOfFameLatex writes a compilable LaTeX document listing the hall
// of fame of each report.
func WriteHallOfFameLatex(w io.Writer, title string, reports ...Report) {
	fmt.Fprintln(w, `\documentclass{article}`)
	fmt.Fprintln(w, `\usepackage{amsmath}`)
	fmt.Fprintln(w, `\usepackage{geometry}`)
	fmt.Fprintln(w, `\geometry{margin=1in}`)
	fmt.Fprintf(w, "\\title{%s}\n", latexEscape(title))
	fmt.Fprintln(w, `\date{\today}`)
	fmt.Fprintln(w, `\begin{document}`)
	fmt.Fprintln(w, `\maketitle`)

	for _, r := range reports {
		fmt.Fprintf(w, "\n\\section*{%s}\n", latexEscape(r.Phase))
		fmt.Fprintf(w, "\\noindent Generations: %d of %d\n\n", r.GenerationsUsed, r.MaxGenerations)
		for _, e := range r.HallOfFame {
			fmt.Fprintf(w, "\\subsection*{\\#%d --- fitness %s}\n", e.Rank, formatFitness(e.Fitness))
			fmt.Fprintln(w, `\[`)
			fmt.Fprintf(w, "  %s\n", e.LaTeX)
			fmt.Fprintln(w, `\]`)
		}
	}

	fmt.Fprintln(w, `\end{document}`)
}

func formatFitness(values []model.Float) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.4g", float64(v))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
