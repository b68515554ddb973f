package vicar

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the finite samples of one band
type Stats struct {
	Band   int     `json:"band"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	P01    float64 `json:"p01"`
	P99    float64 `json:"p99"`
}

// BandStats computes summary statistics for band b of p. NaN and infinite
// samples are ignored.
func BandStats(p Pixels, b int) (Stats, error) {
	samples, err := Band(p, b)
	if err != nil {
		return Stats{}, err
	}
	finite := samples[:0]
	for _, v := range samples {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	st := Stats{Band: b, Count: len(finite)}
	if len(finite) == 0 {
		return st, nil
	}
	sort.Float64s(finite)
	st.Min, st.Max = finite[0], finite[len(finite)-1]
	st.Mean, st.StdDev = stat.MeanStdDev(finite, nil)
	if len(finite) == 1 {
		st.StdDev = 0
	}
	st.P01 = stat.Quantile(0.01, stat.LinInterp, finite, nil)
	st.P99 = stat.Quantile(0.99, stat.LinInterp, finite, nil)
	return st, nil
}
