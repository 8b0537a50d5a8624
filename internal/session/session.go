package session

import (
	"fmt"
	"sync"
	"time"

	"dashviz/domain/chart"
	"dashviz/domain/core"
	domainDataset "dashviz/domain/dataset"
	"dashviz/internal"
	"dashviz/internal/charts"
	"dashviz/internal/dataset"
	"dashviz/internal/errors"
	"dashviz/internal/export"
	"dashviz/internal/profiling"
)

// Layout bounds
const (
	MinColumns     = 1
	MaxColumns     = 4
	DefaultColumns = 2
)

// Layout controls how the dashboard arranges its charts
type Layout struct {
	Columns int      `json:"columns"`
	Order   []string `json:"order"`
}

// DefaultCharts returns the four starting chart slots.
func DefaultCharts() map[string]chart.Spec {
	return map[string]chart.Spec{
		"chart1": chart.Empty(chart.KindBar),
		"chart2": chart.Empty(chart.KindLine),
		"chart3": chart.Empty(chart.KindScatter),
		"chart4": chart.Empty(chart.KindPie),
	}
}

// Session is one user's dashboard: the uploaded table, the working table
// derived from it and the chart configuration rendered over the latter.
type Session struct {
	ID        core.ID
	Dataset   *domainDataset.Dataset
	CreatedAt time.Time

	mu          sync.RWMutex
	base        *domainDataset.Table
	working     *domainDataset.Table
	filters     dataset.FilterSet
	aggregation *dataset.AggregationSpec
	charts      map[string]chart.Spec
	layout      Layout
	lastAccess  time.Time

	mapper   *charts.Mapper
	reporter *profiling.Reporter
	logger   *internal.Logger
}

// New creates a session over base with the default charts filled from the
// table's columns. record may be nil for tables that did not come from an
// upload.
func New(base *domainDataset.Table, record *domainDataset.Dataset, columns int) *Session {
	if columns < MinColumns || columns > MaxColumns {
		columns = DefaultColumns
	}
	now := time.Now()
	s := &Session{
		ID:         core.NewID(),
		Dataset:    record,
		CreatedAt:  now,
		base:       base,
		working:    base.Clone(),
		charts:     DefaultCharts(),
		layout:     Layout{Columns: columns, Order: []string{"chart1", "chart2", "chart3", "chart4"}},
		lastAccess: now,
		mapper:     charts.NewMapper(),
		reporter:   profiling.NewReporter(),
		logger:     internal.DefaultLogger,
	}
	s.autoConfigure()
	return s
}

// Base returns the table as loaded.
func (s *Session) Base() *domainDataset.Table {
	return s.base
}

// Working returns the table charts and summaries are computed from.
func (s *Session) Working() *domainDataset.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.working
}

// Filters returns a copy of the filters in effect.
func (s *Session) Filters() dataset.FilterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(dataset.FilterSet, len(s.filters))
	for k, v := range s.filters {
		out[k] = v
	}
	return out
}

// Aggregation returns the aggregation in effect, nil when none.
func (s *Session) Aggregation() *dataset.AggregationSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aggregation == nil {
		return nil
	}
	agg := *s.aggregation
	return &agg
}

// ApplyFilters replaces the filters and recomputes the working table from
// the base table. Any aggregation is dropped.
func (s *Session) ApplyFilters(filters dataset.FilterSet) *domainDataset.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = make(dataset.FilterSet, len(filters))
	for k, v := range filters {
		s.filters[k] = v
	}
	s.aggregation = nil
	s.working = dataset.ApplyFilters(s.base, s.filters)

	s.logger.Debug("[Session] %s: %d filters, %d of %d rows kept",
		s.ID, len(s.filters), s.working.Len(), s.base.Len())
	return s.working
}

// ResetFilters restores the working table to a copy of the base table.
func (s *Session) ResetFilters() *domainDataset.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = nil
	s.aggregation = nil
	s.working = s.base.Clone()
	return s.working
}

// Aggregate replaces the working table with its aggregation. The working
// table is left untouched on error.
func (s *Session) Aggregate(spec dataset.AggregationSpec) (*domainDataset.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := spec.Apply(s.working)
	if err != nil {
		return nil, err
	}
	s.working = result
	s.aggregation = &spec

	s.logger.Debug("[Session] %s: aggregated %s by %s into %d groups",
		s.ID, spec.OutputColumn(), spec.GroupBy, result.Len())
	return result, nil
}

// ClearAggregation recomputes the working table from the base table and the
// current filters.
func (s *Session) ClearAggregation() *domainDataset.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aggregation = nil
	s.working = dataset.ApplyFilters(s.base, s.filters)
	return s.working
}

// ChartNames returns the chart names in layout order.
func (s *Session) ChartNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.layout.Order...)
}

// Chart returns the spec configured under name.
func (s *Session) Chart(name string) (chart.Spec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.charts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrChartNotFound, name)
	}
	return spec, nil
}

// SetChart stores spec under name. New names are appended to the layout.
func (s *Session) SetChart(name string, spec chart.Spec) error {
	if name == "" {
		return errors.ValidationError("chart name is required")
	}
	if spec == nil {
		return errors.ValidationError("chart configuration is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.charts[name]; !exists {
		s.layout.Order = append(s.layout.Order, name)
	}
	s.charts[name] = spec
	return nil
}

// RemoveChart drops a chart and its layout slot.
func (s *Session) RemoveChart(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charts[name]; !ok {
		return fmt.Errorf("%w: %q", core.ErrChartNotFound, name)
	}
	delete(s.charts, name)
	order := s.layout.Order[:0]
	for _, n := range s.layout.Order {
		if n != name {
			order = append(order, n)
		}
	}
	s.layout.Order = order
	return nil
}

// Layout returns a copy of the layout.
func (s *Session) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Layout{Columns: s.layout.Columns, Order: append([]string(nil), s.layout.Order...)}
}

// SetLayout validates and applies l. An empty order keeps the current one;
// otherwise it must list every chart exactly once.
func (s *Session) SetLayout(l Layout) error {
	if l.Columns < MinColumns || l.Columns > MaxColumns {
		return errors.ValidationError(fmt.Sprintf("columns must be between %d and %d, got %d",
			MinColumns, MaxColumns, l.Columns))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.layout.Order
	if len(l.Order) > 0 {
		if len(l.Order) != len(s.charts) {
			return errors.ValidationError(fmt.Sprintf("layout order lists %d charts, session has %d",
				len(l.Order), len(s.charts)))
		}
		seen := make(map[string]bool, len(l.Order))
		for _, name := range l.Order {
			if _, ok := s.charts[name]; !ok {
				return fmt.Errorf("%w: %q", core.ErrChartNotFound, name)
			}
			if seen[name] {
				return errors.ValidationError(fmt.Sprintf("chart %q appears twice in layout order", name))
			}
			seen[name] = true
		}
		order = append([]string(nil), l.Order...)
	}
	s.layout = Layout{Columns: l.Columns, Order: order}
	return nil
}

// AutoConfigure fills unset or stale chart fields from the working table:
// category-like fields take the first column and measures the first numeric
// column. Optional fields naming absent columns are cleared.
func (s *Session) AutoConfigure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoConfigure()
}

func (s *Session) autoConfigure() {
	for name, spec := range s.charts {
		s.charts[name] = Defaults(s.working, spec)
	}
}

// Figures maps every configured chart over the working table, in layout
// order.
func (s *Session) Figures() []export.NamedFigure {
	s.mu.Lock()
	s.lastAccess = time.Now()
	working := s.working
	specs := make([]export.NamedFigure, 0, len(s.layout.Order))
	for _, name := range s.layout.Order {
		specs = append(specs, export.NamedFigure{Name: name})
	}
	configured := make(map[string]chart.Spec, len(s.charts))
	for k, v := range s.charts {
		configured[k] = v
	}
	s.mu.Unlock()

	for i := range specs {
		specs[i].Figure = s.mapper.Map(working, configured[specs[i].Name])
	}
	return specs
}

// Figure maps a single chart over the working table.
func (s *Session) Figure(name string) (charts.Figure, error) {
	spec, err := s.Chart(name)
	if err != nil {
		return nil, err
	}
	return s.mapper.Map(s.Working(), spec), nil
}

// Heatmap is the correlation heatmap of the working table.
func (s *Session) Heatmap() charts.Figure {
	return s.mapper.Heatmap(s.Working())
}

// Histogram is the distribution of one column of the working table.
func (s *Session) Histogram(column string, bins int) charts.Figure {
	return s.mapper.Histogram(s.Working(), column, bins)
}

// Summary profiles the working table.
func (s *Session) Summary() profiling.Summary {
	return s.reporter.Summarize(s.Working())
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

// LastAccess returns when the session was last used.
func (s *Session) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

// State is the JSON view of a session
type State struct {
	ID          core.ID                       `json:"id"`
	Dataset     *domainDataset.Dataset        `json:"dataset,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
	Rows        int                           `json:"rows"`
	BaseRows    int                           `json:"base_rows"`
	Columns     []string                      `json:"columns"`
	Filters     map[string]dataset.FilterSpec `json:"filters"`
	Aggregation *dataset.AggregationSpec      `json:"aggregation"`
	Charts      map[string]chart.Config       `json:"charts"`
	Layout      Layout                        `json:"layout"`
}

// State snapshots the session configuration.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filters := make(map[string]dataset.FilterSpec, len(s.filters))
	for col, f := range s.filters {
		filters[col] = dataset.Describe(f)
	}
	configs := make(map[string]chart.Config, len(s.charts))
	for name, spec := range s.charts {
		configs[name] = chart.ToConfig(spec)
	}
	var agg *dataset.AggregationSpec
	if s.aggregation != nil {
		a := *s.aggregation
		agg = &a
	}
	return State{
		ID:          s.ID,
		Dataset:     s.Dataset,
		CreatedAt:   s.CreatedAt,
		Rows:        s.working.Len(),
		BaseRows:    s.base.Len(),
		Columns:     s.working.ColumnNames(),
		Filters:     filters,
		Aggregation: agg,
		Charts:      configs,
		Layout:      Layout{Columns: s.layout.Columns, Order: append([]string(nil), s.layout.Order...)},
	}
}

