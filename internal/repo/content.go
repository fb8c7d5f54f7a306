package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/coachden/coachden/internal/entities"
)

// Content repositories for the per-coach catalog kinds. Create assigns a
// fresh id when the caller leaves it empty.

type Videos struct {
	crud[entities.Video]
}

func (r *Videos) Create(ctx context.Context, v entities.Video) (entities.Video, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return r.put(ctx, v)
}

func (r *Videos) ByCoach(ctx context.Context, coach string) ([]entities.Video, error) {
	return r.s.GetByPrefix(ctx, coach)
}

type Challenges struct {
	crud[entities.Challenge]
}

func (r *Challenges) Create(ctx context.Context, c entities.Challenge) (entities.Challenge, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.put(ctx, c)
}

func (r *Challenges) ByCoach(ctx context.Context, coach string) ([]entities.Challenge, error) {
	return r.s.GetByPrefix(ctx, coach)
}

type Lives struct {
	crud[entities.Live]
}

func (r *Lives) Create(ctx context.Context, l entities.Live) (entities.Live, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.put(ctx, l)
}

func (r *Lives) ByCoach(ctx context.Context, coach string) ([]entities.Live, error) {
	return r.s.GetByPrefix(ctx, coach)
}

type Locations struct {
	crud[entities.Location]
}

func (r *Locations) Create(ctx context.Context, l entities.Location) (entities.Location, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.put(ctx, l)
}

func (r *Locations) ByCoach(ctx context.Context, coach string) ([]entities.Location, error) {
	return r.s.GetByPrefix(ctx, coach)
}

type Links struct {
	crud[entities.Link]
}

func (r *Links) Create(ctx context.Context, l entities.Link) (entities.Link, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.put(ctx, l)
}

func (r *Links) ByCoach(ctx context.Context, coach string) ([]entities.Link, error) {
	return r.s.GetByPrefix(ctx, coach)
}

type LandingPages struct {
	crud[entities.LandingPage]
}

func (r *LandingPages) Create(ctx context.Context, p entities.LandingPage) (entities.LandingPage, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.put(ctx, p)
}

func (r *LandingPages) ByCoach(ctx context.Context, coach string) ([]entities.LandingPage, error) {
	return r.s.GetByPrefix(ctx, coach)
}

type Categories struct {
	crud[entities.Category]
}

func (r *Categories) Create(ctx context.Context, c entities.Category) (entities.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.put(ctx, c)
}

func (r *Categories) ByCoach(ctx context.Context, coach string) ([]entities.Category, error) {
	return r.s.GetByPrefix(ctx, coach)
}
