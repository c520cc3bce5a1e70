package report

import (
	"math"
	"time"
)

const (
	megabyte = 1_000_000
	mebibyte = 1_048_576
	megabit  = 1_000_000
)

// Metrics holds the derived performance figures of a single timed phase.
// The field rounding is part of the report format: seconds to three decimal
// places, rates to two, file throughput to one.
type Metrics struct {
	Seconds     float64 `json:"seconds"`
	Mbps        float64 `json:"mbps"`
	MBPerSec    float64 `json:"MB_s"`
	MiBPerSec   float64 `json:"MiB_s"`
	FilesPerSec float64 `json:"files_sec"`
}

// Calculate derives the [Metrics] for a transfer of bytesTransferred bytes in
// fileCount files over the given elapsed wall-clock time. A zero elapsed time
// yields zero-valued metrics, as no meaningful rate can be derived.
func Calculate(bytesTransferred uint64, elapsed time.Duration, fileCount int) Metrics {
	seconds := elapsed.Seconds()
	if seconds == 0 {
		return Metrics{}
	}

	return Metrics{
		Seconds:     roundTo(seconds, 3),                                               //nolint:mnd
		Mbps:        roundTo(float64(bytesTransferred)*8/megabit/seconds, 2),           //nolint:mnd
		MBPerSec:    roundTo(float64(bytesTransferred)/megabyte/seconds, 2),            //nolint:mnd
		MiBPerSec:   roundTo(float64(bytesTransferred)/mebibyte/seconds, 2),            //nolint:mnd
		FilesPerSec: roundTo(float64(fileCount)/seconds, 1),                            //nolint:mnd
	}
}

// IsZero reports whether the metrics carry no measurement.
func (m Metrics) IsZero() bool {
	return m == Metrics{}
}

// BytesToMB converts a byte count to binary megabytes, rounded to two decimal
// places for the report configuration block.
func BytesToMB(bytes uint64) float64 {
	return roundTo(float64(bytes)/1024/1024, 2) //nolint:mnd
}

// BytesToKB converts a byte count to binary kilobytes, rounded to two decimal
// places for the report configuration block.
func BytesToKB(bytes uint64) float64 {
	return roundTo(float64(bytes)/1024, 2) //nolint:mnd
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow10(decimals)

	return math.Round(value*factor) / factor
}
