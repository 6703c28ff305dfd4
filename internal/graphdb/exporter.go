package graphdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"webofworlds/internal/domain"
)

const (
	mergeRunCypher = `MERGE (r:Run {id: $id})
SET r.empire = $empire, r.algorithm = $algorithm, r.start_date = $start_date,
    r.size = $size, r.exhausted = $exhausted`

	mergeStarsCypher = `UNWIND $stars AS s
MERGE (n:Star {id: s.id})
SET n.name = s.name, n.x = s.x, n.y = s.y, n.z = s.z
WITH n, s
MATCH (r:Run {id: $run_id})
MERGE (n)-[e:EXPLORED_IN]->(r)
SET e.arrival_time = s.arrival_time, e.empire = $empire`

	mergeWormholesCypher = `UNWIND $wormholes AS w
MATCH (a:Star {id: w.from}), (b:Star {id: w.to})
MERGE (a)-[h:WORMHOLE {id: w.id, run_id: $run_id}]-(b)
SET h.length = w.length`

	deleteRunCypher = `MATCH (r:Run {id: $id})
OPTIONAL MATCH ()-[h:WORMHOLE {run_id: $id}]-()
DELETE h
DETACH DELETE r`

	mirrorCypher = `MATCH (r:Run {id: $id})
OPTIONAL MATCH (s:Star)-[:EXPLORED_IN]->(r)
WITH r, count(s) AS stars
OPTIONAL MATCH ()-[h:WORMHOLE {run_id: $id}]->()
RETURN r.size AS size, stars, count(h) AS wormholes`
)

// ErrNotMirrored is returned when the graph has no node for a run
var ErrNotMirrored = errors.New("run not mirrored")

// Mirror is what the graph holds for one run
type Mirror struct {
	RunID     string `json:"run_id"`
	Size      int    `json:"size"`
	Stars     int    `json:"stars"`
	Wormholes int    `json:"wormholes"`
	Complete  bool   `json:"complete"`
}

// Exporter writes run fragments to a graph database
type Exporter struct {
	store  Store
	logger *slog.Logger
}

// NewExporter creates an exporter over store
func NewExporter(store Store, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, logger: logger}
}

// ExportRun merges a run, its stars and its wormholes. Re-exporting the same
// run is idempotent.
func (e *Exporter) ExportRun(ctx context.Context, f *domain.Fragment) error {
	if f == nil || f.Run.ID == "" {
		return fmt.Errorf("export run: missing run id")
	}

	runParams := map[string]any{
		"id":         f.Run.ID,
		"empire":     f.Run.Empire,
		"algorithm":  string(f.Run.Algorithm),
		"start_date": f.Run.StartDate,
		"size":       int64(f.Run.Size),
		"exhausted":  f.Run.Exhausted,
	}
	if _, err := e.store.Write(ctx, mergeRunCypher, runParams); err != nil {
		return fmt.Errorf("merge run %s: %w", f.Run.ID, err)
	}

	if len(f.Stars) > 0 {
		params := map[string]any{
			"run_id": f.Run.ID,
			"empire": f.Run.Empire,
			"stars":  starRows(f),
		}
		if _, err := e.store.Write(ctx, mergeStarsCypher, params); err != nil {
			return fmt.Errorf("merge stars for run %s: %w", f.Run.ID, err)
		}
	}

	if len(f.Wormholes) > 0 {
		params := map[string]any{
			"run_id":    f.Run.ID,
			"wormholes": wormholeRows(f.Wormholes),
		}
		if _, err := e.store.Write(ctx, mergeWormholesCypher, params); err != nil {
			return fmt.Errorf("merge wormholes for run %s: %w", f.Run.ID, err)
		}
	}

	e.logger.Info("run exported to graph",
		"run", f.Run.ID,
		"stars", len(f.Stars),
		"wormholes", len(f.Wormholes))
	return nil
}

// DeleteRun removes a run node and the wormholes it opened. Star nodes stay.
func (e *Exporter) DeleteRun(ctx context.Context, runID string) error {
	if _, err := e.store.Write(ctx, deleteRunCypher, map[string]any{"id": runID}); err != nil {
		return fmt.Errorf("delete run %s from graph: %w", runID, err)
	}
	return nil
}

// Mirror reads back how much of a run the graph holds. A run counts as
// complete when every one of its stars has an EXPLORED_IN link.
func (e *Exporter) Mirror(ctx context.Context, runID string) (*Mirror, error) {
	rows, err := e.store.Read(ctx, mirrorCypher, map[string]any{"id": runID})
	if err != nil {
		return nil, fmt.Errorf("read mirror of run %s: %w", runID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotMirrored)
	}

	size, _ := rows[0].Int("size")
	stars, _ := rows[0].Int("stars")
	wormholes, _ := rows[0].Int("wormholes")
	return &Mirror{
		RunID:     runID,
		Size:      int(size),
		Stars:     int(stars),
		Wormholes: int(wormholes),
		Complete:  stars == size,
	}, nil
}

func starRows(f *domain.Fragment) []map[string]any {
	arrivals := make(map[int64]float64, len(f.Vertices))
	for _, v := range f.Vertices {
		arrivals[v.StarID] = v.ArrivalTime
	}

	rows := make([]map[string]any, 0, len(f.Stars))
	for _, s := range f.Stars {
		arrival, ok := arrivals[s.ID]
		if !ok && s.ArrivalTime != nil {
			arrival = *s.ArrivalTime
		}
		rows = append(rows, map[string]any{
			"id":           s.ID,
			"name":         s.Name,
			"x":            s.Position.X,
			"y":            s.Position.Y,
			"z":            s.Position.Z,
			"arrival_time": arrival,
		})
	}
	return rows
}

func wormholeRows(ws []domain.Wormhole) []map[string]any {
	rows := make([]map[string]any, 0, len(ws))
	for _, w := range ws {
		rows = append(rows, map[string]any{
			"id":     w.ID,
			"from":   w.FromID,
			"to":     w.ToID,
			"length": w.Length,
		})
	}
	return rows
}
