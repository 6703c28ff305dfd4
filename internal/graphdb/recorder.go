package graphdb

import (
	"context"
	"maps"
	"sync"
)

// Statement is one Cypher call seen by a Recorder
type Statement struct {
	Write  bool
	Cypher string
	Params map[string]any
}

// Recorder is an in-memory Store. It keeps every statement it is given and
// answers reads from rows queued with Reply, in order.
type Recorder struct {
	mu         sync.Mutex
	statements []Statement
	replies    [][]Row
	err        error
	pingErr    error
}

// NewRecorder returns an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every later statement fail with err
func (r *Recorder) FailWith(err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	return r
}

// FailPing makes Ping return err
func (r *Recorder) FailPing(err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pingErr = err
	return r
}

// Reply queues the rows returned by the next Read
func (r *Recorder) Reply(rows ...Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, rows)
}

func (r *Recorder) Write(_ context.Context, cypher string, params map[string]any) ([]Row, error) {
	return nil, r.record(true, cypher, params)
}

func (r *Recorder) Read(_ context.Context, cypher string, params map[string]any) ([]Row, error) {
	if err := r.record(false, cypher, params); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return nil, nil
	}
	rows := r.replies[0]
	r.replies = r.replies[1:]
	return rows, nil
}

func (r *Recorder) record(write bool, cypher string, params map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.statements = append(r.statements, Statement{Write: write, Cypher: cypher, Params: maps.Clone(params)})
	return nil
}

func (r *Recorder) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pingErr
}

func (r *Recorder) Close(context.Context) error {
	return nil
}

// Writes returns the recorded write statements
func (r *Recorder) Writes() []Statement {
	return r.filter(true)
}

// Reads returns the recorded read statements
func (r *Recorder) Reads() []Statement {
	return r.filter(false)
}

func (r *Recorder) filter(write bool) []Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Statement
	for _, s := range r.statements {
		if s.Write == write {
			out = append(out, s)
		}
	}
	return out
}
