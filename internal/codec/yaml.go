package codec

import (
	"fmt"
	"io"
	"time"

	"webofworlds/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlFragment is a flatter, hand-editable layout of a run
type yamlFragment struct {
	Run       yamlRun        `yaml:"run"`
	Stars     []yamlStar     `yaml:"stars"`
	Wormholes []yamlWormhole `yaml:"wormholes"`
}

type yamlRun struct {
	ID        string    `yaml:"id,omitempty"`
	Empire    string    `yaml:"empire"`
	Algorithm string    `yaml:"algorithm"`
	StartDate float64   `yaml:"start_date"`
	Exhausted bool      `yaml:"exhausted,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

type yamlStar struct {
	ID      int64     `yaml:"id"`
	Name    string    `yaml:"name"`
	XYZ     []float64 `yaml:"xyz,flow"`
	Arrival float64   `yaml:"arrival"`
	Parent  *int64    `yaml:"parent,omitempty"`
	Empire  string    `yaml:"empire,omitempty"`
}

type yamlWormhole struct {
	ID     string  `yaml:"id,omitempty"`
	FromID int64   `yaml:"from_id"`
	ToID   int64   `yaml:"to_id"`
	Length float64 `yaml:"length"`
}

// Parse imports a run fragment from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Fragment, error) {
	var yf yamlFragment
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	algorithm := domain.Algorithm(yf.Run.Algorithm)
	if algorithm != "" && !algorithm.Valid() {
		return nil, fmt.Errorf("unknown algorithm %q", yf.Run.Algorithm)
	}

	fragment := domain.NewFragment(domain.Run{
		ID:        yf.Run.ID,
		Empire:    yf.Run.Empire,
		Algorithm: algorithm,
		StartDate: yf.Run.StartDate,
		Size:      len(yf.Stars),
		Exhausted: yf.Run.Exhausted,
		CreatedAt: yf.Run.CreatedAt,
	})

	for _, ys := range yf.Stars {
		if len(ys.XYZ) != 3 {
			return nil, fmt.Errorf("star %d: expected 3 coordinates, got %d", ys.ID, len(ys.XYZ))
		}
		star := domain.NewStar(ys.ID, ys.Name, domain.NewPosition(ys.XYZ[0], ys.XYZ[1], ys.XYZ[2]))
		star.SetExplored(ys.Arrival, ys.Empire)
		fragment.AddStar(*star)
		fragment.AddVertex(domain.RunVertex{
			StarID:      ys.ID,
			ArrivalTime: ys.Arrival,
			ParentID:    ys.Parent,
		})
	}

	for _, yw := range yf.Wormholes {
		w := domain.Wormhole{
			ID:     yw.ID,
			FromID: yw.FromID,
			ToID:   yw.ToID,
			Length: yw.Length,
		}
		if w.ID == "" {
			w.ID = w.GenerateID()
		}
		fragment.AddWormhole(w)
	}

	return fragment, nil
}

// Export exports a run fragment to YAML
func (c *YAMLCodec) Export(fragment *domain.Fragment, w io.Writer) error {
	yf := yamlFragment{
		Run: yamlRun{
			ID:        fragment.Run.ID,
			Empire:    fragment.Run.Empire,
			Algorithm: string(fragment.Run.Algorithm),
			StartDate: fragment.Run.StartDate,
			Exhausted: fragment.Run.Exhausted,
			CreatedAt: fragment.Run.CreatedAt,
		},
		Stars:     make([]yamlStar, 0, len(fragment.Stars)),
		Wormholes: make([]yamlWormhole, 0, len(fragment.Wormholes)),
	}

	vertices := make(map[int64]domain.RunVertex, len(fragment.Vertices))
	for _, v := range fragment.Vertices {
		vertices[v.StarID] = v
	}

	for _, star := range fragment.Stars {
		ys := yamlStar{
			ID:     star.ID,
			Name:   star.Name,
			XYZ:    []float64{star.Position.X, star.Position.Y, star.Position.Z},
			Empire: star.Empire,
		}
		if v, ok := vertices[star.ID]; ok {
			ys.Arrival = v.ArrivalTime
			ys.Parent = v.ParentID
		} else if star.ArrivalTime != nil {
			ys.Arrival = *star.ArrivalTime
		}
		yf.Stars = append(yf.Stars, ys)
	}

	for _, wh := range fragment.Wormholes {
		yf.Wormholes = append(yf.Wormholes, yamlWormhole{
			ID:     wh.ID,
			FromID: wh.FromID,
			ToID:   wh.ToID,
			Length: wh.Length,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yf); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
