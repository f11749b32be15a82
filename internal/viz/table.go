package viz

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// WriteTable prints one tab separated row per sample: the time followed by
// every component, all with two decimals. The header capitalizes labels,
// so prey/predator gives "Time\tPrey\tPredator".
func WriteTable(w io.Writer, traj dynamo.Trajectory, labels []string) error {
	if len(labels) != traj.Dim() {
		labels = dynamo.DefaultLabels(traj.Dim())
	}

	bw := bufio.NewWriter(w)

	header := make([]string, 0, len(labels)+1)
	header = append(header, "Time")
	for _, l := range labels {
		header = append(header, capitalize(l))
	}
	fmt.Fprintln(bw, strings.Join(header, "\t"))

	for _, s := range traj {
		fmt.Fprintf(bw, "%.2f", s.T)
		for _, v := range s.Y {
			fmt.Fprintf(bw, "\t%.2f", v)
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
