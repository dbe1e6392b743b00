package session

import (
	"github.com/paulmach/orb"

	"github.com/cornmazecad/engine/pkg/carve"
	"github.com/cornmazecad/engine/pkg/constraints"
	"github.com/cornmazecad/engine/pkg/emergency"
	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/field"
	"github.com/cornmazecad/engine/pkg/flow"
	"github.com/cornmazecad/engine/pkg/geomkernel"
	"github.com/cornmazecad/engine/pkg/livevalidate"
	"github.com/cornmazecad/engine/pkg/metrics"
	"github.com/cornmazecad/engine/pkg/pathfind"
	"github.com/cornmazecad/engine/pkg/project"
	"github.com/cornmazecad/engine/pkg/raster"
	"github.com/cornmazecad/engine/pkg/rows"
)

// Session holds every piece of mutable state a design owns, per §3/§5: the
// field, standing rows, the uncarve baseline, the carve state (merged
// carved area + per-element polygons + carved-path list), and the
// entrance/exit/emergency-exit sets. All fields are unexported; every
// mutation goes through a Session method so the atomic build-then-swap
// discipline in §5/§7 is enforced in one place.
type Session struct {
	cfg Config
	k   *geomkernel.Kernel

	hasField bool
	field    field.Field

	rows         orb.MultiLineString
	originalRows orb.MultiLineString
	baselineSet  bool

	carveState carve.State

	entrances      []orb.Point
	exits          []orb.Point
	emergencyExits []orb.Point
}

// New creates an empty Session with its own GEOS kernel. Call Close when
// the session ends.
func New(cfg Config) *Session {
	return &Session{
		cfg:        cfg,
		k:          geomkernel.NewKernel(),
		carveState: carve.NewState(),
	}
}

// Close releases the session's GEOS context.
func (s *Session) Close() {
	s.k.Close()
}

// Config returns the session's current configuration.
func (s *Session) Config() Config { return s.cfg }

// SetConfig replaces the session's configuration. It does not regenerate
// rows or re-run any check; callers that change Rows or Constraints and
// want that reflected must call the relevant regenerate/validate method
// themselves.
func (s *Session) SetConfig(cfg Config) { s.cfg = cfg }

// Field returns the current field and whether one has been set.
func (s *Session) Field() (field.Field, bool) { return s.field, s.hasField }

// Rows returns the current standing-row set.
func (s *Session) Rows() orb.MultiLineString { return s.rows }

// CarveState returns the current accumulated carve state.
func (s *Session) CarveState() carve.State { return s.carveState }

// Entrances, Exits, EmergencyExits return the current point sets.
func (s *Session) Entrances() []orb.Point      { return s.entrances }
func (s *Session) Exits() []orb.Point          { return s.exits }
func (s *Session) EmergencyExits() []orb.Point { return s.emergencyExits }

// SetEntrances, SetExits, SetEmergencyExits replace a point set wholesale.
func (s *Session) SetEntrances(pts []orb.Point)      { s.entrances = pts }
func (s *Session) SetExits(pts []orb.Point)          { s.exits = pts }
func (s *Session) SetEmergencyExits(pts []orb.Point) { s.emergencyExits = pts }

// SetField imports geom as the authoritative field and resets every piece
// of derived state, per §4.3/§4.4's "replacing it resets walls, carved
// areas, carved per-element polygons, and carved-path list" rule. The
// import itself is validated before anything is reset, so an invalid
// field leaves the session untouched.
func (s *Session) SetField(geom orb.Geometry, crs string) ([]field.Warning, error) {
	result, err := field.Import(geom, crs, s.k)
	if err != nil {
		return nil, err
	}
	s.field = result.Field
	s.hasField = true
	s.rows = nil
	s.originalRows = nil
	s.baselineSet = false
	s.carveState = carve.NewState()
	s.entrances = nil
	s.exits = nil
	s.emergencyExits = nil
	return result.Warnings, nil
}

// SetRows generates the standing-row multi-polyline from the current
// field and cfg. Per §9's Open Question resolution, the *original rows*
// uncarve baseline is captured the first time SetRows is called after a
// field load; subsequent calls update the working rows without moving the
// baseline.
func (s *Session) SetRows(cfg rows.Config) error {
	if !s.hasField {
		return engineerr.Newf("session.SetRows", engineerr.MissingPrerequisite, "no field set")
	}
	generated, err := rows.Generate(s.field, cfg, s.k)
	if err != nil {
		return err
	}
	s.rows = generated
	s.cfg.Rows = cfg
	if !s.baselineSet {
		s.originalRows = generated
		s.baselineSet = true
	}
	return nil
}

// RegenerateRows re-generates rows and resets the uncarve baseline to the
// freshly generated set, per §9's "reset on any explicit regenerate" rule.
// Any carved area is preserved; callers that want a clean slate should
// call SetField again instead.
func (s *Session) RegenerateRows(cfg rows.Config) error {
	if !s.hasField {
		return engineerr.Newf("session.RegenerateRows", engineerr.MissingPrerequisite, "no field set")
	}
	generated, err := rows.Generate(s.field, cfg, s.k)
	if err != nil {
		return err
	}
	s.rows = generated
	s.originalRows = generated
	s.baselineSet = true
	s.cfg.Rows = cfg
	return nil
}

// Carve resolves intent into an eraser and subtracts it from the current
// rows, atomically replacing rows and carve state on success. elementType
// tags the new per-element polygon entry.
func (s *Session) Carve(elementType string, intent carve.Intent) (string, error) {
	if !s.hasField {
		return "", engineerr.Newf("session.Carve", engineerr.MissingPrerequisite, "no field set")
	}
	result, err := carve.Apply(s.rows, s.field.WKT(), s.carveState, elementType, intent, s.k)
	if err != nil {
		return "", err
	}
	s.rows = result.Rows
	s.carveState = result.State
	return result.Warning, nil
}

// Uncarve restores standing corn within region against the uncarve
// baseline, per §4.5.
func (s *Session) Uncarve(region orb.Polygon) error {
	if !s.hasField {
		return engineerr.Newf("session.Uncarve", engineerr.MissingPrerequisite, "no field set")
	}
	if !s.baselineSet {
		return engineerr.Newf("session.Uncarve", engineerr.MissingPrerequisite, "no uncarve baseline captured yet (call SetRows first)")
	}
	result, err := carve.Uncarve(s.rows, s.originalRows, region, s.carveState, s.k)
	if err != nil {
		return err
	}
	s.rows = result.Rows
	s.carveState = result.State
	return nil
}

// Validate runs the constraint checker against the current rows and
// field. Per §7, this never fails on violations: it always succeeds and
// returns whatever it found.
func (s *Session) Validate() ([]constraints.Violation, error) {
	if !s.hasField {
		return nil, engineerr.Newf("session.Validate", engineerr.MissingPrerequisite, "no field set")
	}
	return constraints.Validate(s.rows, s.field, s.cfg.Constraints, s.k)
}

// LiveValidate runs the pre-carve live validator against pending, a batch
// of not-yet-carved design elements, per §4.7.
func (s *Session) LiveValidate(pending []livevalidate.PendingElement) ([]livevalidate.Violation, error) {
	if !s.hasField {
		return nil, engineerr.Newf("session.LiveValidate", engineerr.MissingPrerequisite, "no field set")
	}
	return livevalidate.Validate(pending, s.carveState.CarvedArea, s.field, s.cfg.Constraints, s.k)
}

// AutoFix runs the §4.7 heuristic translate-to-fix pass against pending
// given violations previously returned by LiveValidate. It is explicitly
// non-converging; callers re-run LiveValidate after to check progress.
func (s *Session) AutoFix(pending []livevalidate.PendingElement, violations []livevalidate.Violation) []livevalidate.PendingElement {
	return livevalidate.AutoFix(pending, violations, s.field, s.carveState.CarvedArea, s.cfg.Constraints, s.k)
}

// BuildGrid rasterizes the current field and rows into a walkability grid
// at the session's configured resolution, per §4.8.
func (s *Session) BuildGrid() (*raster.Grid, error) {
	if !s.hasField {
		return nil, engineerr.Newf("session.BuildGrid", engineerr.MissingPrerequisite, "no field set")
	}
	return raster.Build(s.field, geomkernel.FromOrb(s.rows), s.cfg.Resolution, s.k)
}

// FindPath builds a grid (if g is nil) and runs A* from start to goal,
// per §4.9.
func (s *Session) FindPath(g *raster.Grid, start, goal orb.Point) ([]orb.Point, bool, error) {
	if g == nil {
		var err error
		g, err = s.BuildGrid()
		if err != nil {
			return nil, false, err
		}
	}
	path, ok := pathfind.FindPath(g, start, goal)
	if !ok {
		return nil, false, nil
	}
	return path, true, nil
}

// Metrics computes the §4.10 graph-snap metrics and difficulty score for
// the current rows and field.
func (s *Session) Metrics() (metrics.Metrics, error) {
	if !s.hasField {
		return metrics.Metrics{}, engineerr.Newf("session.Metrics", engineerr.MissingPrerequisite, "no field set")
	}
	return metrics.Compute(s.rows, s.field, s.k)
}

// EmergencyCoverage computes the §4.11 coverage analysis for the current
// emergency-exit set over a grid built at the session's resolution.
func (s *Session) EmergencyCoverage(g *raster.Grid) (emergency.Coverage, error) {
	if g == nil {
		var err error
		g, err = s.BuildGrid()
		if err != nil {
			return emergency.Coverage{}, err
		}
	}
	return emergency.Analyze(g, s.emergencyExits, s.cfg.MaxExitDist), nil
}

// SuggestEmergencyExits greedily adds boundary emergency-exit points until
// coverage target is met, per §4.11, and stores the result as the
// session's emergency-exit set.
func (s *Session) SuggestEmergencyExits(g *raster.Grid) error {
	if !s.hasField {
		return engineerr.Newf("session.SuggestEmergencyExits", engineerr.MissingPrerequisite, "no field set")
	}
	if g == nil {
		var err error
		g, err = s.BuildGrid()
		if err != nil {
			return err
		}
	}
	suggested, err := emergency.SuggestExits(g, s.field, s.emergencyExits, s.cfg.MaxExitDist)
	if err != nil {
		return err
	}
	s.emergencyExits = suggested
	return nil
}

// RunFlowSimulation runs the §4.12 agent-based visitor simulation using
// the session's configured seed and visitor count against the current
// entrance/exit sets.
func (s *Session) RunFlowSimulation(g *raster.Grid) (flow.Result, error) {
	if g == nil {
		var err error
		g, err = s.BuildGrid()
		if err != nil {
			return flow.Result{}, err
		}
	}
	return flow.Run(g, s.entrances, s.exits, flow.Config{Seed: s.cfg.FlowSeed, VisitorCost: s.cfg.FlowCount})
}

// Document snapshots the session's entire state into a project.Document
// ready for project.Save, per §4.13.
func (s *Session) Document(name string) (project.Document, error) {
	if !s.hasField {
		return project.Document{}, engineerr.Newf("session.Document", engineerr.MissingPrerequisite, "no field set")
	}
	return project.Document{
		Name:           name,
		Field:          project.FieldToDoc(s.field),
		Walls:          project.WallsToDoc(s.rows),
		Elements:       project.ElementsToDoc(s.carveState.Elements),
		Paths:          project.PathsToDoc(s.carveState.Paths),
		Entrances:      s.entrances,
		Exits:          s.exits,
		EmergencyExits: s.emergencyExits,
		Constraints:    s.cfg.Constraints,
	}, nil
}

// RestoreDocument replaces the session's entire state from doc, as Load
// does after reading a project.Document from disk. The merged carved area
// is rebuilt from the per-element polygon list by unioning them, since
// the document does not persist the merged form separately (it is
// reconstructible, per §3).
func (s *Session) RestoreDocument(doc project.Document) error {
	f, err := project.FieldFromDoc(doc.Field)
	if err != nil {
		return err
	}
	elements := project.ElementsFromDoc(doc.Elements)
	merged, err := mergeElements(elements, s.k)
	if err != nil {
		return err
	}

	s.field = f
	s.hasField = true
	s.rows = project.WallsFromDoc(doc.Walls)
	s.originalRows = s.rows
	s.baselineSet = true
	s.carveState = carve.State{
		CarvedArea: merged,
		Elements:   elements,
		Paths:      project.PathsFromDoc(doc.Paths),
	}
	s.entrances = doc.Entrances
	s.exits = doc.Exits
	s.emergencyExits = doc.EmergencyExits
	s.cfg.Constraints = doc.Constraints
	return nil
}

// LoadField restores only the field (project.LoadBoundaryOnly) and resets
// every derived piece of state, for starting a new design on an existing
// field, per §4.13.
func (s *Session) LoadField(f field.Field) {
	s.field = f
	s.hasField = true
	s.rows = nil
	s.originalRows = nil
	s.baselineSet = false
	s.carveState = carve.NewState()
	s.entrances = nil
	s.exits = nil
	s.emergencyExits = nil
}

// Preview snapshots the fields project.RenderDebugSVG needs to draw the
// current design state.
func (s *Session) Preview() project.Preview {
	return project.Preview{
		FieldWKT:       s.field.WKT(),
		RowsWKT:        geomkernel.FromOrb(s.rows),
		CarvedAreaWKT:  s.carveState.CarvedArea,
		Entrances:      s.entrances,
		Exits:          s.exits,
		EmergencyExits: s.emergencyExits,
	}
}

func mergeElements(elements []carve.ElementPolygon, k *geomkernel.Kernel) (geomkernel.WKT, error) {
	acc := geomkernel.WKT("GEOMETRYCOLLECTION EMPTY")
	for _, e := range elements {
		u, err := k.Union(acc, e.WKT)
		if err != nil {
			return "", engineerr.New("session.mergeElements", engineerr.GeometricFailure, err)
		}
		acc = u
	}
	return acc, nil
}
