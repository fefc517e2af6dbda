package query

import "context"

type row struct {
	ID    string
	Name  string
	Order int
}

type orderCall struct {
	Column string
	Dir    Direction
}

type joinCall struct {
	Path  string
	Alias string
}

// fakeSession records every call and serves rows from memory.
type fakeSession struct {
	alias          string
	orders         []orderCall
	includeDeleted bool
	joins          []joinCall
	conditions     []Predicate
	skip, take     int

	rows  []row
	total int
	err   error
}

func (s *fakeSession) OrderBy(column string, dir Direction) {
	s.orders = append(s.orders, orderCall{column, dir})
}

func (s *fakeSession) IncludeDeleted() { s.includeDeleted = true }

func (s *fakeSession) JoinRelation(path, alias string) {
	s.joins = append(s.joins, joinCall{path, alias})
}

func (s *fakeSession) AddCondition(fragment string, binds map[string]any) {
	s.conditions = append(s.conditions, Predicate{Fragment: fragment, Binds: binds})
}

func (s *fakeSession) Skip(n int) { s.skip = n }
func (s *fakeSession) Take(n int) { s.take = n }

func (s *fakeSession) GetOne(ctx context.Context) (*row, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rows) == 0 {
		return nil, nil
	}
	r := s.rows[0]
	return &r, nil
}

func (s *fakeSession) GetMany(ctx context.Context) ([]row, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeSession) GetManyAndCount(ctx context.Context) ([]row, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	end := min(s.skip+s.take, len(s.rows))
	if s.skip >= len(s.rows) {
		return []row{}, s.total, nil
	}
	return s.rows[s.skip:end], s.total, nil
}

// fakeSource hands out fresh sessions seeded with the same rows and keeps
// the last one for inspection.
type fakeSource struct {
	rows    []row
	total   int
	err     error
	created []*fakeSession
}

func (f *fakeSource) NewSession(alias string) Session[row] {
	s := &fakeSession{alias: alias, rows: f.rows, total: f.total, err: f.err}
	f.created = append(f.created, s)
	return s
}

func (f *fakeSource) last() *fakeSession {
	if len(f.created) == 0 {
		panic("no session created")
	}
	return f.created[len(f.created)-1]
}
