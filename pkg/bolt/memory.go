package bolt

import (
	"context"
	"sync"
)

// MemoryConn is a scripted in-memory Conn used to unit test persistence
// logic without a running database. Statements are recorded in order;
// fetch results are served from a queue filled with PushResult.
//
// Example:
//
//	conn := bolt.NewMemoryConn()
//	conn.PushResult([]bolt.Row{{"node": bolt.Node{ID: 1, Labels: []string{"Person"}}}})
//	rows, _ := conn.ExecuteAndFetch(ctx, "MATCH (node:Person) RETURN node;", nil)
type MemoryConn struct {
	mu         sync.Mutex
	statements []ExecutedStatement
	results    [][]Row
	err        error
	closed     bool
}

// ExecutedStatement captures one statement issued on the conn.
type ExecutedStatement struct {
	Query  string
	Params map[string]any
}

// NewMemoryConn returns an empty scripted connection.
func NewMemoryConn() *MemoryConn {
	return &MemoryConn{}
}

// PushResult queues rows to be returned by the next ExecuteAndFetch call.
// Each call consumes one queued result; an empty queue yields no rows.
func (m *MemoryConn) PushResult(rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, rows)
}

// FailWith makes every subsequent call return err until reset with
// FailWith(nil).
func (m *MemoryConn) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Statements returns every statement executed so far, in order.
func (m *MemoryConn) Statements() []ExecutedStatement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ExecutedStatement, len(m.statements))
	copy(out, m.statements)
	return out
}

// LastStatement returns the most recently executed statement text, or ""
// when nothing has run.
func (m *MemoryConn) LastStatement() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statements) == 0 {
		return ""
	}
	return m.statements[len(m.statements)-1].Query
}

func (m *MemoryConn) Execute(_ context.Context, query string, params map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrConnClosed
	}
	if m.err != nil {
		return m.err
	}
	m.statements = append(m.statements, ExecutedStatement{Query: query, Params: cloneParams(params)})
	return nil
}

func (m *MemoryConn) ExecuteAndFetch(_ context.Context, query string, params map[string]any) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrConnClosed
	}
	if m.err != nil {
		return nil, m.err
	}
	m.statements = append(m.statements, ExecutedStatement{Query: query, Params: cloneParams(params)})

	if len(m.results) == 0 {
		return nil, nil
	}
	rows := m.results[0]
	m.results = m.results[1:]
	return rows, nil
}

func (m *MemoryConn) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
