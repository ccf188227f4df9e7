// Package dashboard holds the per-domain session state behind the CLI and
// HTTP surfaces: the current row collection, its diagnostics, the upload it
// came from and the active FilterState.
package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sheetmetrics/internal/aggregate"
	"github.com/sells-group/sheetmetrics/internal/filter"
	"github.com/sells-group/sheetmetrics/internal/ingest"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/store"
)

// Settings are the aggregation constants of a session.
type Settings struct {
	Thresholds aggregate.Thresholds
	Scoring    aggregate.Scoring
	TopN       int
}

// DefaultSettings mirrors the dashboards' fixed constants.
func DefaultSettings() Settings {
	return Settings{
		Thresholds: aggregate.DefaultThresholds,
		Scoring:    aggregate.DefaultScoring,
		TopN:       6,
	}
}

// Snapshot is one immutable row collection. A session swaps whole
// snapshots and never edits a published one.
type Snapshot struct {
	Projects    []model.Project
	Instruments []model.Instrument
	Warnings    []string
	Errors      []string
	Upload      *model.UploadMetadata
}

// Session is the state of one domain's dashboard. It is safe for
// concurrent use.
type Session struct {
	domain   model.Domain
	ingestor *ingest.Ingestor
	store    store.Store
	settings Settings

	mu      sync.RWMutex
	snap    *Snapshot
	filters model.FilterState
}

// NewSession returns an empty session. The store may be nil, in which case
// Restore, Persist and upload history are no-ops.
func NewSession(domain model.Domain, in *ingest.Ingestor, st store.Store, settings Settings) *Session {
	return &Session{
		domain:   domain,
		ingestor: in,
		store:    st,
		settings: settings,
		snap:     &Snapshot{},
		filters:  model.DefaultFilterState(),
	}
}

// Domain returns the session's domain.
func (s *Session) Domain() model.Domain {
	return s.domain
}

// Restore rehydrates the saved FilterState, if any.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	fs, err := s.store.LoadFilterState(ctx, s.domain)
	if err != nil {
		return eris.Wrap(err, "dashboard: restore filters")
	}
	if fs == nil {
		return nil
	}
	return s.SetFilters(*fs)
}

// Persist saves the current FilterState.
func (s *Session) Persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return eris.Wrap(s.store.SaveFilterState(ctx, s.domain, s.Filters()), "dashboard: persist filters")
}

// LoadResult reports what an upload did to the session.
type LoadResult struct {
	Upload   model.UploadMetadata `json:"upload"`
	Accepted bool                 `json:"accepted"`
	Warnings []string             `json:"warnings"`
	Errors   []string             `json:"errors"`
}

// Load ingests a workbook and, when the batch is not rejected outright,
// replaces the whole row collection with it. A batch is rejected when it
// has structural errors and no surviving rows; the previous collection is
// then kept.
func (s *Session) Load(ctx context.Context, wb *model.Workbook) (*LoadResult, error) {
	snap := &Snapshot{}
	switch s.domain {
	case model.DomainBudget:
		res := s.ingestor.Budget(wb)
		snap.Projects, snap.Warnings, snap.Errors = res.Rows, res.Warnings, res.Errors
	case model.DomainInstrument:
		res := s.ingestor.Instrument(wb)
		snap.Instruments, snap.Warnings, snap.Errors = res.Rows, res.Warnings, res.Errors
	default:
		return nil, eris.Errorf("dashboard: unknown domain %q", s.domain)
	}

	meta := model.UploadMetadata{
		ID:        uuid.New().String(),
		Domain:    s.domain,
		Filename:  wb.Filename,
		Timestamp: time.Now().UTC(),
		Rows:      len(snap.Projects) + len(snap.Instruments),
		Warnings:  len(snap.Warnings),
		Errors:    len(snap.Errors),
	}
	out := &LoadResult{Upload: meta, Warnings: snap.Warnings, Errors: snap.Errors}
	if len(snap.Errors) > 0 && meta.Rows == 0 {
		zap.L().Warn("dashboard: upload rejected",
			zap.String("domain", string(s.domain)),
			zap.String("file", wb.Filename),
			zap.Strings("errors", snap.Errors),
		)
		return out, nil
	}

	if s.store != nil {
		recorded, err := s.store.RecordUpload(ctx, meta)
		if err != nil {
			return nil, eris.Wrap(err, "dashboard: record upload")
		}
		meta = *recorded
		out.Upload = meta
	}
	snap.Upload = &meta
	s.Replace(snap)
	out.Accepted = true
	return out, nil
}

// Replace swaps in a new row collection atomically.
func (s *Session) Replace(snap *Snapshot) {
	if snap == nil {
		snap = &Snapshot{}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the current collection. Callers must not modify it.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetFilters validates and installs a FilterState. The session keeps its
// own copy.
func (s *Session) SetFilters(fs model.FilterState) error {
	if fs.SortBy == "" {
		fs.SortBy = model.SortDateDesc
	}
	if _, err := model.ParseSortKey(string(fs.SortBy)); err != nil {
		return eris.Wrap(err, "dashboard: set filters")
	}
	for _, st := range fs.GroupStatuses {
		if !slices.Contains(model.BudgetStatuses, st) {
			return eris.Errorf("dashboard: unknown group status %q", st)
		}
	}
	s.mu.Lock()
	s.filters = fs.Clone()
	s.mu.Unlock()
	return nil
}

// Filters returns a copy of the active FilterState.
func (s *Session) Filters() model.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// View is every derived view of the current collection under the active
// filters.
type View struct {
	Domain      model.Domain              `json:"domain"`
	Upload      *model.UploadMetadata     `json:"upload,omitempty"`
	Filters     model.FilterState         `json:"filters"`
	Warnings    []string                  `json:"warnings"`
	Errors      []string                  `json:"errors"`
	Columns     []string                  `json:"columns"`
	Projects    []model.Project           `json:"projects,omitempty"`
	Instruments []model.Instrument        `json:"instruments,omitempty"`
	Budget      *aggregate.BudgetView     `json:"budget,omitempty"`
	Groups      []model.GroupMetric       `json:"groups,omitempty"`
	Instrument  *aggregate.InstrumentView `json:"instrument,omitempty"`
}

// View recomputes the filtered rows and metrics. groupBy selects an extra
// budget rollup dimension; the discipline rollup is always computed.
func (s *Session) View(groupBy string) View {
	s.mu.RLock()
	snap, fs := s.snap, s.filters.Clone()
	s.mu.RUnlock()

	v := View{
		Domain:   s.domain,
		Upload:   snap.Upload,
		Filters:  fs,
		Warnings: snap.Warnings,
		Errors:   snap.Errors,
	}
	switch s.domain {
	case model.DomainBudget:
		v.Columns = fs.SelectedColumns(model.ProjectColumns)
		v.Projects = filter.Apply(snap.Projects, fs)
		b := aggregate.Budget(v.Projects, fs.GroupStatuses, s.settings.Thresholds)
		v.Budget = &b
		if groupBy != "" && groupBy != model.DimDiscipline {
			v.Groups = aggregate.FilterGroups(aggregate.ProjectGroups(v.Projects, func(p model.Project) string {
				return p.Category(groupBy)
			}, s.settings.Thresholds), fs.GroupStatuses)
		}
	case model.DomainInstrument:
		v.Columns = fs.SelectedColumns(model.InstrumentColumns)
		v.Instruments = filter.Apply(snap.Instruments, fs)
		iv := aggregate.Instrument(v.Instruments, s.settings.Scoring, s.settings.TopN)
		v.Instrument = &iv
	}
	return v
}
