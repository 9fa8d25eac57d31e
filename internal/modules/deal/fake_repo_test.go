package deal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type memoryRepo struct {
	deals map[uuid.UUID]*Deal
}

func newMemoryRepo(seed ...*Deal) *memoryRepo {
	r := &memoryRepo{deals: map[uuid.UUID]*Deal{}}
	for _, d := range seed {
		r.deals[d.ID] = d
	}
	return r
}

func (r *memoryRepo) Create(_ context.Context, d *Deal) error {
	d.CreatedAt, d.UpdatedAt = time.Now(), time.Now()
	cp := *d
	r.deals[d.ID] = &cp
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Deal, error) {
	d, ok := r.deals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memoryRepo) List(_ context.Context, f ListFilter) ([]*Deal, error) {
	var out []*Deal
	for _, d := range r.deals {
		if f.Status != "" && string(d.Status) != f.Status {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(d.ClientName+" "+d.EventTitle), strings.ToLower(f.Query)) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, d *Deal) error {
	if _, ok := r.deals[d.ID]; !ok {
		return ErrNotFound
	}
	cp := *d
	r.deals[d.ID] = &cp
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.deals[id]; !ok {
		return ErrNotFound
	}
	delete(r.deals, id)
	return nil
}
