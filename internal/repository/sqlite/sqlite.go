package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"webofworlds/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise open its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stars (
		id INTEGER PRIMARY KEY,
		name TEXT,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		distance REAL NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		empire TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		start_date REAL NOT NULL,
		size INTEGER NOT NULL,
		exhausted INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_vertices (
		run_id TEXT NOT NULL,
		star_id INTEGER NOT NULL,
		arrival_time REAL NOT NULL,
		parent_id INTEGER,
		seq INTEGER NOT NULL,
		PRIMARY KEY (run_id, star_id),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS run_wormholes (
		run_id TEXT NOT NULL,
		id TEXT NOT NULL,
		from_id INTEGER NOT NULL,
		to_id INTEGER NOT NULL,
		length REAL NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (run_id, id),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_stars_seq ON stars(seq);
	CREATE INDEX IF NOT EXISTS idx_stars_name ON stars(name);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// ============================================================================
// Stars
// ============================================================================

// ImportStars upserts stars in one transaction. New stars are appended to the
// catalog order; existing ids keep their place and take the new values.
func (r *Repository) ImportStars(ctx context.Context, stars []*domain.Star) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) + 1 FROM stars`).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to read catalog order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stars (id, name, x, y, z, distance, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			x = excluded.x,
			y = excluded.y,
			z = excluded.z,
			distance = excluded.distance
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare star insert: %w", err)
	}
	defer stmt.Close()

	for i, star := range stars {
		if star == nil {
			return 0, fmt.Errorf("star %d is nil", i)
		}
		if _, err := stmt.ExecContext(ctx, starInsertArgs(star, next+i)...); err != nil {
			return 0, fmt.Errorf("failed to insert star %d: %w", star.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit stars: %w", err)
	}
	return len(stars), nil
}

// ListStars returns the catalog in import order
func (r *Repository) ListStars(ctx context.Context) ([]*domain.Star, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+starColumns+` FROM stars ORDER BY seq, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stars: %w", err)
	}
	defer rows.Close()

	stars := make([]*domain.Star, 0)
	for rows.Next() {
		var row starRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan star: %w", err)
		}
		stars = append(stars, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stars: %w", err)
	}
	return stars, nil
}

// CountStars returns the catalog size
func (r *Repository) CountStars(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stars`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count stars: %w", err)
	}
	return n, nil
}

// ============================================================================
// Runs
// ============================================================================

// CreateRun stores a run with its vertices and wormholes in one transaction
func (r *Repository) CreateRun(ctx context.Context, fragment *domain.Fragment) error {
	run := fragment.Run
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runInsertArgs(&run)...); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	vertexStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_vertices (run_id, star_id, arrival_time, parent_id, seq)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare vertex insert: %w", err)
	}
	defer vertexStmt.Close()

	for i, v := range fragment.Vertices {
		if _, err := vertexStmt.ExecContext(ctx, run.ID, v.StarID, v.ArrivalTime, int64PtrToNull(v.ParentID), i); err != nil {
			return fmt.Errorf("failed to insert vertex %d: %w", v.StarID, err)
		}
	}

	wormholeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_wormholes (run_id, id, from_id, to_id, length, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare wormhole insert: %w", err)
	}
	defer wormholeStmt.Close()

	for i, w := range fragment.Wormholes {
		id := w.ID
		if id == "" {
			id = w.GenerateID()
		}
		if _, err := wormholeStmt.ExecContext(ctx, run.ID, id, w.FromID, w.ToID, w.Length, i); err != nil {
			return fmt.Errorf("failed to insert wormhole %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run's metadata by ID
func (r *Repository) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	var row runRow
	err := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return row.toDomain(), nil
}

// ListRuns returns all runs, newest first
func (r *Repository) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.Run, 0)
	for rows.Next() {
		var row runRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRunFragment loads a run with its reached stars, vertices and wormholes.
// Reached stars carry the run's arrival dates, empire and wormhole lists.
func (r *Repository) GetRunFragment(ctx context.Context, id string) (*domain.Fragment, error) {
	run, err := r.GetRun(ctx, id)
	if err != nil || run == nil {
		return nil, err
	}
	fragment := domain.NewFragment(*run)

	wormholes, err := r.queryWormholes(ctx, id)
	if err != nil {
		return nil, err
	}
	links := make(map[int64][]int64)
	for _, w := range wormholes {
		links[w.FromID] = append(links[w.FromID], w.ToID)
		links[w.ToID] = append(links[w.ToID], w.FromID)
		fragment.AddWormhole(w)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT v.arrival_time, v.parent_id, s.id, s.name, s.x, s.y, s.z, s.distance
		FROM run_vertices v
		JOIN stars s ON s.id = v.star_id
		WHERE v.run_id = ?
		ORDER BY v.seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run vertices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			arrival float64
			parent  sql.NullInt64
			row     starRow
		)
		args := append([]interface{}{&arrival, &parent}, row.scanArgs()...)
		if err := rows.Scan(args...); err != nil {
			return nil, fmt.Errorf("failed to scan run vertex: %w", err)
		}

		star := row.toDomain()
		star.SetExplored(arrival, run.Empire)
		star.WormholesTo = links[star.ID]
		fragment.AddStar(*star)
		fragment.AddVertex(domain.RunVertex{
			StarID:      star.ID,
			ArrivalTime: arrival,
			ParentID:    nullToInt64Ptr(parent),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run vertices: %w", err)
	}
	return fragment, nil
}

func (r *Repository) queryWormholes(ctx context.Context, runID string) ([]domain.Wormhole, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, from_id, to_id, length
		FROM run_wormholes
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run wormholes: %w", err)
	}
	defer rows.Close()

	wormholes := make([]domain.Wormhole, 0)
	for rows.Next() {
		var w domain.Wormhole
		if err := rows.Scan(&w.ID, &w.FromID, &w.ToID, &w.Length); err != nil {
			return nil, fmt.Errorf("failed to scan wormhole: %w", err)
		}
		wormholes = append(wormholes, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run wormholes: %w", err)
	}
	return wormholes, nil
}

// GetRunGraph returns the renderer view of a run
func (r *Repository) GetRunGraph(ctx context.Context, id string) (*domain.Graph, error) {
	fragment, err := r.GetRunFragment(ctx, id)
	if err != nil || fragment == nil {
		return nil, err
	}
	return domain.DeriveGraph(fragment), nil
}

// DeleteRun removes a run with its vertices and wormholes
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}
