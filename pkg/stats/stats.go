package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wildfunctions/equation_evolution/pkg/genome"
)

// SizeField is the statistics field holding tree sizes.
const SizeField = "size"

// Summary is the population spread of one field. Std is the population
// standard deviation.
type Summary struct {
	Avg float64 `json:"avg"`
	Std float64 `json:"std"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summarize computes the summary of a non-empty sample.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	return Summary{
		Avg: mean,
		Std: std,
		Min: floats.Min(xs),
		Max: floats.Max(xs),
	}
}

// Record is one row of the logbook.
type Record struct {
	Gen    int                `json:"gen"`
	NEvals int                `json:"nevals"`
	Fields map[string]Summary `json:"fields"`
}

// Compile summarizes each objective and the tree size over pop. objectives
// names the fitness values in order.
func Compile(gen, nevals int, pop []*genome.Individual, objectives []string) Record {
	rec := Record{Gen: gen, NEvals: nevals, Fields: make(map[string]Summary, len(objectives)+1)}

	column := make([]float64, len(pop))
	for o, name := range objectives {
		for i, ind := range pop {
			column[i] = ind.Fitness.Values[o]
		}
		rec.Fields[name] = Summarize(column)
	}
	for i, ind := range pop {
		column[i] = float64(ind.Genome.Size())
	}
	rec.Fields[SizeField] = Summarize(column)
	return rec
}

// Logbook is the append-only per-generation statistics log.
type Logbook []Record

// Fields returns the field names present in the logbook, sorted.
func (l Logbook) Fields() []string {
	seen := map[string]bool{}
	for _, r := range l {
		for k := range r.Fields {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WriteTable prints the logbook as an aligned table with min and avg of
// every field.
func (l Logbook) WriteTable(w io.Writer) error {
	fields := l.Fields()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "gen\tnevals")
	for _, f := range fields {
		fmt.Fprintf(tw, "\t%s.min\t%s.avg", f, f)
	}
	fmt.Fprintln(tw)
	for _, r := range l {
		fmt.Fprintf(tw, "%d\t%d", r.Gen, r.NEvals)
		for _, f := range fields {
			s := r.Fields[f]
			fmt.Fprintf(tw, "\t%s\t%s", short(s.Min), short(s.Avg))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func short(v float64) string {
	return strconv.FormatFloat(v, 'g', 5, 64)
}
