package domain

// Fragment is a run's reached stars and wormholes, used for import/export
type Fragment struct {
	Run       Run         `json:"run" yaml:"run"`
	Stars     []Star      `json:"stars" yaml:"stars"`
	Vertices  []RunVertex `json:"vertices" yaml:"vertices"`
	Wormholes []Wormhole  `json:"wormholes" yaml:"wormholes"`
}

// NewFragment creates an empty fragment for a run
func NewFragment(run Run) *Fragment {
	return &Fragment{
		Run:       run,
		Stars:     make([]Star, 0),
		Vertices:  make([]RunVertex, 0),
		Wormholes: make([]Wormhole, 0),
	}
}

// AddStar adds a star to the fragment
func (f *Fragment) AddStar(star Star) {
	f.Stars = append(f.Stars, star)
}

// AddVertex adds a vertex to the fragment
func (f *Fragment) AddVertex(v RunVertex) {
	f.Vertices = append(f.Vertices, v)
}

// AddWormhole adds a wormhole to the fragment
func (f *Fragment) AddWormhole(w Wormhole) {
	f.Wormholes = append(f.Wormholes, w)
}
