package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CoverageStats holds aggregated sensor coverage for a window of frames.
type CoverageStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Frames aggregated in this window
	Frames   int `csv:"frames"`
	Dropouts int `csv:"dropouts"` // Frames with no sensor geometry

	// Pixel outcome totals over the window
	Background      int64 `csv:"background_px"`
	TerrainExcluded int64 `csv:"terrain_px"`
	OutsideFrustum  int64 `csv:"outside_px"`
	OutOfRange      int64 `csv:"out_of_range_px"`
	Visible         int64 `csv:"visible_px"`
	NearPlane       int64 `csv:"near_plane_px"`
	Shadowed        int64 `csv:"shadowed_px"`

	// Per-frame visible fraction distribution (visible / covered)
	VisibleFracMean float64 `csv:"visible_frac_mean"`
	VisibleFracStd  float64 `csv:"visible_frac_std"`
	VisibleFracP10  float64 `csv:"visible_frac_p10"`
	VisibleFracP50  float64 `csv:"visible_frac_p50"`
	VisibleFracP90  float64 `csv:"visible_frac_p90"`

	// Mean fraction of the viewport the sensor cone covered
	CoveredFracMean float64 `csv:"covered_frac_mean"`

	// Observer-target range over the window, meters
	ViewDistMean float64 `csv:"view_dist_mean"`
	ViewDistMin  float64 `csv:"view_dist_min"`
	ViewDistMax  float64 `csv:"view_dist_max"`
}

// SeriesStats summarizes one per-frame series.
type SeriesStats struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// ComputeSeriesStats calculates mean, standard deviation and percentiles
// of a per-frame sample series. Returns zeros for an empty series.
func ComputeSeriesStats(values []float64) SeriesStats {
	n := len(values)
	if n == 0 {
		return SeriesStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := SeriesStats{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
	if n > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

// seriesRange returns min and max of a series, zeros when empty.
func seriesRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// LogValue implements slog.LogValuer for structured logging.
func (s CoverageStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("dropouts", s.Dropouts),
		slog.Int64("background_px", s.Background),
		slog.Int64("terrain_px", s.TerrainExcluded),
		slog.Int64("outside_px", s.OutsideFrustum),
		slog.Int64("out_of_range_px", s.OutOfRange),
		slog.Int64("visible_px", s.Visible),
		slog.Int64("near_plane_px", s.NearPlane),
		slog.Int64("shadowed_px", s.Shadowed),
		slog.Float64("visible_frac_mean", s.VisibleFracMean),
		slog.Float64("visible_frac_std", s.VisibleFracStd),
		slog.Float64("visible_frac_p10", s.VisibleFracP10),
		slog.Float64("visible_frac_p50", s.VisibleFracP50),
		slog.Float64("visible_frac_p90", s.VisibleFracP90),
		slog.Float64("covered_frac_mean", s.CoveredFracMean),
		slog.Float64("view_dist_mean", s.ViewDistMean),
		slog.Float64("view_dist_min", s.ViewDistMin),
		slog.Float64("view_dist_max", s.ViewDistMax),
	)
}

// LogStats logs the window stats using slog.
func (s CoverageStats) LogStats() {
	slog.Info("coverage",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"frames", s.Frames,
		"dropouts", s.Dropouts,
		"visible_px", s.Visible,
		"shadowed_px", s.Shadowed,
		"visible_frac_mean", s.VisibleFracMean,
		"visible_frac_p50", s.VisibleFracP50,
		"covered_frac_mean", s.CoveredFracMean,
		"view_dist_mean", s.ViewDistMean,
	)
}
