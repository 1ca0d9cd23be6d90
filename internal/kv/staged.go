package kv

import "context"

// Staged buffers writes over a parent client until Commit.
// Reads see the buffered writes first.
type Staged struct {
	parent  Client
	pending map[string]Write
	order   []string
}

func NewStaged(parent Client) *Staged {
	return &Staged{parent: parent, pending: make(map[string]Write)}
}

func (s *Staged) Get(ctx context.Context, key string) (string, bool, error) {
	if w, ok := s.pending[key]; ok {
		if w.Delete {
			return "", false, nil
		}
		return w.Value, true, nil
	}
	return s.parent.Get(ctx, key)
}

func (s *Staged) Apply(_ context.Context, writes []Write) error {
	for _, w := range writes {
		if _, seen := s.pending[w.Key]; !seen {
			s.order = append(s.order, w.Key)
		}
		s.pending[w.Key] = w
	}
	return nil
}

func (s *Staged) Commit(ctx context.Context) error {
	if len(s.order) == 0 {
		return nil
	}
	writes := make([]Write, 0, len(s.order))
	for _, key := range s.order {
		writes = append(writes, s.pending[key])
	}
	if err := s.parent.Apply(ctx, writes); err != nil {
		return err
	}
	s.Discard()
	return nil
}

func (s *Staged) Discard() {
	s.pending = make(map[string]Write)
	s.order = nil
}

func (s *Staged) Pending() int {
	return len(s.order)
}

func (s *Staged) Ping(ctx context.Context) error {
	return s.parent.Ping(ctx)
}

func (s *Staged) Close() error {
	return nil
}
