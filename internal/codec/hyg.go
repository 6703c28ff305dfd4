package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"webofworlds/internal/domain"
)

// LightYearsPerParsec converts HYG distances and coordinates
const LightYearsPerParsec = 3.26156

// HYGCodec reads and writes star catalogs in the column layout of the HYG
// database. Columns are located by header name, so extra columns are ignored.
type HYGCodec struct{}

// NewHYGCodec creates a new HYG CSV codec
func NewHYGCodec() *HYGCodec {
	return &HYGCodec{}
}

// Format returns the codec format identifier
func (c *HYGCodec) Format() string {
	return "hyg"
}

var hygRequired = []string{"id", "x", "y", "z"}

// hygNames lists designation columns by naming priority, with the prefix
// used when that designation becomes the star's name
var hygNames = []struct {
	column string
	prefix string
}{
	{"proper", ""},
	{"bf", ""},
	{"gl", ""},
	{"hr", "HR "},
	{"hd", "HD "},
	{"hip", "HIP "},
}

// ParseStars reads stars from HYG CSV. Coordinates are converted from parsecs
// to light-years.
func (c *HYGCodec) ParseStars(r io.Reader) ([]*domain.Star, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse CSV: missing header")
		}
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range hygRequired {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("failed to parse CSV: missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		v := strings.TrimSpace(record[i])
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	stars := make([]*domain.Star, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}

		id, err := strconv.ParseInt(field(record, "id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id: %w", line, err)
		}

		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			v, err := strconv.ParseFloat(field(record, axis), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", line, axis, err)
			}
			xyz[i] = v * LightYearsPerParsec
		}

		star := domain.NewStar(id, hygName(record, id, field), domain.NewPosition(xyz[0], xyz[1], xyz[2]))
		stars = append(stars, star)
	}

	return stars, nil
}

// hygName picks the highest-priority designation present, falling back to the id
func hygName(record []string, id int64, field func([]string, string) string) string {
	for _, n := range hygNames {
		v := field(record, n.column)
		if v == "" {
			continue
		}
		// Catalogue numbers are sometimes written as floats
		if n.prefix != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f == math.Trunc(f) {
				v = strconv.FormatInt(int64(f), 10)
			}
		}
		return n.prefix + v
	}
	return strconv.FormatInt(id, 10)
}

var hygExportHeader = []string{"id", "proper", "dist", "x", "y", "z", "arrival_time", "empire", "wormholes_to"}

// ExportStars writes stars as HYG CSV, positions in parsecs, followed by the
// exploration columns. Unexplored stars leave those columns empty.
func (c *HYGCodec) ExportStars(stars []*domain.Star, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(hygExportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	pc := func(ly float64) string {
		return strconv.FormatFloat(ly/LightYearsPerParsec, 'g', -1, 64)
	}

	for _, s := range stars {
		arrival := ""
		if s.ArrivalTime != nil {
			arrival = strconv.FormatFloat(*s.ArrivalTime, 'f', -1, 64)
		}
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			pc(s.DistanceFromOrigin),
			pc(s.Position.X),
			pc(s.Position.Y),
			pc(s.Position.Z),
			arrival,
			s.Empire,
			s.WormholesString(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write star %d: %w", s.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
