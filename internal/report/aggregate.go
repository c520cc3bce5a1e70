package report

// MetricsAggregate holds the field-wise minimum, maximum and average over the
// [Metrics] of multiple runs.
type MetricsAggregate struct {
	Min Metrics `json:"min"`
	Max Metrics `json:"max"`
	Avg Metrics `json:"avg"`
}

// PhaseAggregate pairs the upload and download aggregates of one test.
type PhaseAggregate struct {
	Upload   *MetricsAggregate `json:"upload,omitempty"`
	Download *MetricsAggregate `json:"download,omitempty"`
}

// Summary is the multi-run aggregation block of a [Report].
type Summary struct {
	LargeFile  PhaseAggregate `json:"large_file"`
	SmallFiles PhaseAggregate `json:"small_files"`
}

func newSummary(runs []RunResult) *Summary {
	return &Summary{
		LargeFile: PhaseAggregate{
			Upload:   aggregate(runs, func(r RunResult) *Metrics { return r.LargeFile.Upload }),
			Download: aggregate(runs, func(r RunResult) *Metrics { return r.LargeFile.Download }),
		},
		SmallFiles: PhaseAggregate{
			Upload:   aggregate(runs, func(r RunResult) *Metrics { return r.SmallFiles.Upload }),
			Download: aggregate(runs, func(r RunResult) *Metrics { return r.SmallFiles.Download }),
		},
	}
}

// aggregate collects the selected phase metrics over all runs and reduces
// them field-wise. Runs where the phase was skipped do not contribute; nil is
// returned when no run measured the phase at all.
func aggregate(runs []RunResult, pick func(RunResult) *Metrics) *MetricsAggregate {
	var samples []Metrics

	for _, run := range runs {
		if m := pick(run); m != nil {
			samples = append(samples, *m)
		}
	}

	if len(samples) == 0 {
		return nil
	}

	agg := &MetricsAggregate{
		Min: samples[0],
		Max: samples[0],
	}

	var sum Metrics

	for _, s := range samples {
		agg.Min.Seconds = min(agg.Min.Seconds, s.Seconds)
		agg.Min.Mbps = min(agg.Min.Mbps, s.Mbps)
		agg.Min.MBPerSec = min(agg.Min.MBPerSec, s.MBPerSec)
		agg.Min.MiBPerSec = min(agg.Min.MiBPerSec, s.MiBPerSec)
		agg.Min.FilesPerSec = min(agg.Min.FilesPerSec, s.FilesPerSec)

		agg.Max.Seconds = max(agg.Max.Seconds, s.Seconds)
		agg.Max.Mbps = max(agg.Max.Mbps, s.Mbps)
		agg.Max.MBPerSec = max(agg.Max.MBPerSec, s.MBPerSec)
		agg.Max.MiBPerSec = max(agg.Max.MiBPerSec, s.MiBPerSec)
		agg.Max.FilesPerSec = max(agg.Max.FilesPerSec, s.FilesPerSec)

		sum.Seconds += s.Seconds
		sum.Mbps += s.Mbps
		sum.MBPerSec += s.MBPerSec
		sum.MiBPerSec += s.MiBPerSec
		sum.FilesPerSec += s.FilesPerSec
	}

	n := float64(len(samples))

	agg.Avg = Metrics{
		Seconds:     roundTo(sum.Seconds/n, 3),     //nolint:mnd
		Mbps:        roundTo(sum.Mbps/n, 2),        //nolint:mnd
		MBPerSec:    roundTo(sum.MBPerSec/n, 2),    //nolint:mnd
		MiBPerSec:   roundTo(sum.MiBPerSec/n, 2),   //nolint:mnd
		FilesPerSec: roundTo(sum.FilesPerSec/n, 1), //nolint:mnd
	}

	return agg
}
