package sqlite

import (
	"database/sql"
	"time"

	"webofworlds/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToInt64Ptr converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// int64PtrToNull converts *int64 to sql.NullInt64
func int64PtrToNull(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores booleans as 0/1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the stars or runs table:
// 1. Add field to the row struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update the columns constant - APPEND to end
// 4. Update toDomain() to map the new field
// 5. Add migration in sqlite.go migrate()
//
// CRITICAL: Column order must match between the columns constant, scanArgs()
// and all SELECT queries using the constant.

// ============================================================================
// Star Row Scanner
// ============================================================================

// starRow holds all columns from a star query for scanning
type starRow struct {
	ID       int64
	Name     sql.NullString
	X, Y, Z  float64
	Distance float64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match starColumns order exactly: id, name, x, y, z, distance
func (r *starRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,       // 1
		&r.Name,     // 2
		&r.X,        // 3
		&r.Y,        // 4
		&r.Z,        // 5
		&r.Distance, // 6
	}
}

// toDomain converts the scanned row to a domain.Star
func (r *starRow) toDomain() *domain.Star {
	star := domain.NewStar(r.ID, nullToString(r.Name), domain.NewPosition(r.X, r.Y, r.Z))
	star.DistanceFromOrigin = r.Distance
	return star
}

// starColumns is the SELECT column list for star queries
const starColumns = `id, name, x, y, z, distance`

// ============================================================================
// Run Row Scanner
// ============================================================================

// runRow holds all columns from a run query for scanning
type runRow struct {
	ID        string
	Empire    string
	Algorithm string
	StartDate float64
	Size      int
	Exhausted int
	CreatedAt time.Time
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match runColumns order exactly:
// id, empire, algorithm, start_date, size, exhausted, created_at
func (r *runRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Empire,    // 2
		&r.Algorithm, // 3
		&r.StartDate, // 4
		&r.Size,      // 5
		&r.Exhausted, // 6
		&r.CreatedAt, // 7
	}
}

// toDomain converts the scanned row to a domain.Run
func (r *runRow) toDomain() *domain.Run {
	return &domain.Run{
		ID:        r.ID,
		Empire:    r.Empire,
		Algorithm: domain.Algorithm(r.Algorithm),
		StartDate: r.StartDate,
		Size:      r.Size,
		Exhausted: r.Exhausted != 0,
		CreatedAt: r.CreatedAt,
	}
}

// runColumns is the SELECT column list for run queries
const runColumns = `id, empire, algorithm, start_date, size, exhausted, created_at`

// ============================================================================
// Write Helpers
// ============================================================================

// starInsertArgs prepares arguments for star UPSERT
// Returns: id, name, x, y, z, distance, seq
func starInsertArgs(star *domain.Star, seq int) []interface{} {
	return []interface{}{
		star.ID,
		stringToNull(star.Name),
		star.Position.X,
		star.Position.Y,
		star.Position.Z,
		star.DistanceFromOrigin,
		seq,
	}
}

// runInsertArgs prepares arguments for run INSERT
// Returns: id, empire, algorithm, start_date, size, exhausted, created_at
func runInsertArgs(run *domain.Run) []interface{} {
	return []interface{}{
		run.ID,
		run.Empire,
		string(run.Algorithm),
		run.StartDate,
		run.Size,
		boolToInt(run.Exhausted),
		run.CreatedAt.UTC(),
	}
}
