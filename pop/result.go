package pop

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Chain holds the stored hyper-posterior samples from a sampling run.
// Samples is indexed [step][parameter], matching the order of Names.
type Chain struct {
	Names    []string
	Samples  [][]float64
	LogProb  []float64
	Accepted int
	Steps    int
}

// AcceptanceRate returns the fraction of proposed moves that were accepted.
func (c *Chain) AcceptanceRate() float64 {
	if c.Steps == 0 {
		return 0
	}
	return float64(c.Accepted) / float64(c.Steps)
}

// column extracts one parameter's samples across all stored steps.
func (c *Chain) column(idx int) []float64 {
	out := make([]float64, len(c.Samples))
	for i, row := range c.Samples {
		out[i] = row[idx]
	}
	return out
}

// Summary describes one hyper-parameter's marginal posterior.
type Summary struct {
	Name    string
	Mean    float64
	StdDev  float64
	Median  float64
	Lower90 float64 // 5th percentile
	Upper90 float64 // 95th percentile
}

// Summaries computes per-parameter marginal statistics.
func (c *Chain) Summaries() []Summary {
	out := make([]Summary, len(c.Names))
	for i, name := range c.Names {
		col := c.column(i)
		mean, std := stat.MeanStdDev(col, nil)
		sorted := make([]float64, len(col))
		copy(sorted, col)
		sort.Float64s(sorted)
		out[i] = Summary{
			Name:    name,
			Mean:    mean,
			StdDev:  std,
			Median:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Lower90: stat.Quantile(0.05, stat.Empirical, sorted, nil),
			Upper90: stat.Quantile(0.95, stat.Empirical, sorted, nil),
		}
	}
	return out
}

// Correlation returns the sample correlation matrix of the stored chain,
// ordered as Names. Entries for parameters with zero variance (fixed
// priors) are NaN.
func (c *Chain) Correlation() *mat.SymDense {
	x := mat.NewDense(len(c.Samples), len(c.Names), nil)
	for i, row := range c.Samples {
		x.SetRow(i, row)
	}
	corr := mat.NewSymDense(len(c.Names), nil)
	stat.CorrelationMatrix(corr, x, nil)
	return corr
}

// LogSummaries writes the marginal statistics through logrus at info level,
// flagging strongly correlated parameter pairs.
func (c *Chain) LogSummaries() {
	logrus.Infof("chain: %d stored steps, acceptance rate %.3f", len(c.Samples), c.AcceptanceRate())
	for _, s := range c.Summaries() {
		logrus.Infof("  %-14s mean=%.4f std=%.4f median=%.4f 90%%CI=[%.4f, %.4f]",
			s.Name, s.Mean, s.StdDev, s.Median, s.Lower90, s.Upper90)
	}
	corr := c.Correlation()
	for i := range c.Names {
		for j := i + 1; j < len(c.Names); j++ {
			if r := corr.At(i, j); math.Abs(r) > 0.9 {
				logrus.Infof("  strong degeneracy between %s and %s (r=%.3f)", c.Names[i], c.Names[j], r)
			}
		}
	}
}

// WriteCSV saves the chain as a headed CSV: one column per hyper-parameter
// plus log_prob, one row per stored step.
func (c *Chain) WriteCSV(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating chain file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, name := range c.Names {
		if i > 0 {
			if _, err := w.WriteString(","); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(name); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(",log_prob\n"); err != nil {
		return err
	}
	for step, row := range c.Samples {
		for i, v := range row {
			if i > 0 {
				if _, err := w.WriteString(","); err != nil {
					return err
				}
			}
			if _, err := w.WriteString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, ",%s\n", strconv.FormatFloat(c.LogProb[step], 'g', -1, 64)); err != nil {
			return err
		}
	}
	return w.Flush()
}
