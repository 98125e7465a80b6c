package candle

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Base column names populated by FromCandles.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// ErrMissingColumn is returned when a required named column is absent.
var ErrMissingColumn = errors.New("missing column")

// Series is a columnar view over an ordered bar sequence: one timestamp per
// row plus named float columns and named boolean flag columns, all aligned
// by index. Derived columns may carry NaN over an indicator's warm-up
// prefix; DropNaN removes such rows before strategy evaluation.
type Series struct {
	Times   []time.Time
	columns map[string][]float64
	flags   map[string][]bool
}

// NewSeries creates an empty series over the given timestamps.
func NewSeries(times []time.Time) *Series {
	return &Series{
		Times:   times,
		columns: make(map[string][]float64),
		flags:   make(map[string][]bool),
	}
}

// FromCandles builds a series with the base OHLCV columns.
func FromCandles(candles []Candle) *Series {
	times := make([]time.Time, len(candles))
	open := make([]float64, len(candles))
	high := make([]float64, len(candles))
	low := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	volume := make([]float64, len(candles))
	for i, c := range candles {
		times[i] = c.Time
		open[i] = c.Open
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = c.Volume
	}
	s := NewSeries(times)
	s.columns[ColOpen] = open
	s.columns[ColHigh] = high
	s.columns[ColLow] = low
	s.columns[ColClose] = closes
	s.columns[ColVolume] = volume
	return s
}

// Len returns the number of rows.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// Column returns a named float column.
func (s *Series) Column(name string) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	col, ok := s.columns[name]
	return col, ok
}

// Flag returns a named boolean column.
func (s *Series) Flag(name string) ([]bool, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.flags[name]
	return f, ok
}

// SetColumn adds or replaces a float column. The column must match the
// series length.
func (s *Series) SetColumn(name string, values []float64) error {
	if len(values) != s.Len() {
		return fmt.Errorf("column %s has %d values, series has %d rows", name, len(values), s.Len())
	}
	s.columns[name] = values
	return nil
}

// SetFlag adds or replaces a boolean column.
func (s *Series) SetFlag(name string, values []bool) error {
	if len(values) != s.Len() {
		return fmt.Errorf("flag %s has %d values, series has %d rows", name, len(values), s.Len())
	}
	s.flags[name] = values
	return nil
}

// ColumnNames returns the float column names in sorted order.
func (s *Series) ColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Require fails with ErrMissingColumn when any named column is absent.
func (s *Series) Require(names ...string) error {
	for _, name := range names {
		if _, ok := s.columns[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return nil
}

// Clone returns a deep copy of the series.
func (s *Series) Clone() *Series {
	out := NewSeries(append([]time.Time(nil), s.Times...))
	for name, col := range s.columns {
		out.columns[name] = append([]float64(nil), col...)
	}
	for name, f := range s.flags {
		out.flags[name] = append([]bool(nil), f...)
	}
	return out
}

// DropNaN returns a new series containing only the rows where every float
// column holds a defined value. Flags and times are realigned.
func (s *Series) DropNaN() *Series {
	keep := make([]int, 0, s.Len())
	for i := range s.Times {
		valid := true
		for _, col := range s.columns {
			if math.IsNaN(col[i]) {
				valid = false
				break
			}
		}
		if valid {
			keep = append(keep, i)
		}
	}

	out := NewSeries(make([]time.Time, len(keep)))
	for j, i := range keep {
		out.Times[j] = s.Times[i]
	}
	for name, col := range s.columns {
		filtered := make([]float64, len(keep))
		for j, i := range keep {
			filtered[j] = col[i]
		}
		out.columns[name] = filtered
	}
	for name, f := range s.flags {
		filtered := make([]bool, len(keep))
		for j, i := range keep {
			filtered[j] = f[i]
		}
		out.flags[name] = filtered
	}
	return out
}
