package handler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/envirowatch/internal/model"
	"github.com/iliyamo/envirowatch/internal/queue"
	"github.com/iliyamo/envirowatch/internal/repository"
)

var errDown = errors.New("connection refused")

// fakeUsers is an in-memory user repository.  calls counts every method
// invocation so tests can assert that nothing reached the store.
type fakeUsers struct {
	mu     sync.Mutex
	users  map[uint64]*model.User
	nextID uint64
	calls  int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{users: map[uint64]*model.User{}}
	for _, u := range users {
		f.users[u.ID] = &u
		f.nextID = max(f.nextID, u.ID)
	}
	return f
}

func (f *fakeUsers) get(id uint64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUsers) Create(_ context.Context, email, hash, fullName string, role model.Role) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return nil, repository.ErrEmailExists
		}
	}
	f.nextID++
	u := &model.User{ID: f.nextID, Email: email, PasswordHash: hash, FullName: fullName, Role: role, IsActive: true}
	f.users[u.ID] = u
	return f.get(u.ID)
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return f.get(u.ID)
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.get(id)
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := []model.User{}
	for id := uint64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, fullName, hash *string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if fullName != nil {
		u.FullName = *fullName
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	return f.get(id)
}

func (f *fakeUsers) UpdateRole(_ context.Context, id uint64, role model.Role) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Role = role
	return f.get(id)
}

func (f *fakeUsers) UpdateActive(_ context.Context, id uint64, active bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.IsActive = active
	return f.get(id)
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) Stats(context.Context) (model.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var st model.UserStats
	for _, u := range f.users {
		st.TotalUsers++
		if u.Role == model.RoleAdmin {
			st.AdminCount++
		} else {
			st.UserCount++
		}
		if u.IsActive {
			st.ActiveCount++
		}
	}
	return st, nil
}

// fakePoints is an in-memory point repository.
type fakePoints struct {
	points map[uint64]model.MonitoringPoint
	nextID uint64
}

func newFakePoints(points ...model.MonitoringPoint) *fakePoints {
	f := &fakePoints{points: map[uint64]model.MonitoringPoint{}}
	for _, p := range points {
		f.points[p.ID] = p
		f.nextID = max(f.nextID, p.ID)
	}
	return f
}

func (f *fakePoints) Create(_ context.Context, p model.MonitoringPoint) (*model.MonitoringPoint, error) {
	f.nextID++
	p.ID = f.nextID
	if p.Status == "" {
		p.Status = model.StatusActive
	}
	f.points[p.ID] = p
	return &p, nil
}

func (f *fakePoints) GetByID(_ context.Context, id uint64) (*model.MonitoringPoint, error) {
	p, ok := f.points[id]
	if !ok {
		return nil, repository.ErrPointNotFound
	}
	return &p, nil
}

func (f *fakePoints) List(_ context.Context, fl model.PointFilter) ([]model.MonitoringPoint, error) {
	out := []model.MonitoringPoint{}
	for id := uint64(1); id <= f.nextID; id++ {
		p, ok := f.points[id]
		if !ok || (fl.Type != "" && p.Type != fl.Type) || (fl.Status != "" && p.Status != fl.Status) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePoints) Update(_ context.Context, id uint64, u model.PointUpdate) (*model.MonitoringPoint, error) {
	p, ok := f.points[id]
	if !ok {
		return nil, repository.ErrPointNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	f.points[id] = p
	return &p, nil
}

func (f *fakePoints) Delete(_ context.Context, id uint64) error {
	if _, ok := f.points[id]; !ok {
		return repository.ErrPointNotFound
	}
	delete(f.points, id)
	return nil
}

func (f *fakePoints) StatsByType(context.Context) ([]model.PointTypeStats, error) {
	byType := map[model.PointType]*model.PointTypeStats{}
	var out []model.PointTypeStats
	for _, t := range []model.PointType{model.PointAir, model.PointMarine, model.PointRiver} {
		byType[t] = &model.PointTypeStats{Type: t}
	}
	for _, p := range f.points {
		byType[p.Type].Count++
		if p.Status == model.StatusActive {
			byType[p.Type].ActiveCount++
		}
	}
	for _, t := range []model.PointType{model.PointAir, model.PointMarine, model.PointRiver} {
		if byType[t].Count > 0 {
			out = append(out, *byType[t])
		}
	}
	return out, nil
}

// fakeRecords is an in-memory record repository.
type fakeRecords struct {
	created []model.MonitoringRecord
	latest  map[uint64]*model.MonitoringRecord
	stats   model.PointStats
	dash    model.DashboardStats
	purged  int
	err     error
}

func (f *fakeRecords) Create(_ context.Context, pointID uint64, at time.Time, rd model.Reading, notes *string) (*model.MonitoringRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if at.IsZero() {
		at = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	}
	rec := model.MonitoringRecord{ID: uint64(len(f.created) + 1), MonitoringPointID: pointID, RecordedAt: at, Reading: rd, Notes: notes}
	f.created = append(f.created, rec)
	return &rec, nil
}

func (f *fakeRecords) GetByID(_ context.Context, id uint64) (*model.MonitoringRecord, error) {
	if id == 0 || int(id) > len(f.created) {
		return nil, repository.ErrRecordNotFound
	}
	rec := f.created[id-1]
	return &rec, nil
}

func (f *fakeRecords) List(_ context.Context, fl model.RecordFilter) ([]model.RecordWithPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.RecordWithPoint{}
	for _, r := range f.created {
		if fl.PointID != 0 && r.MonitoringPointID != fl.PointID {
			continue
		}
		out = append(out, model.RecordWithPoint{MonitoringRecord: r})
	}
	if len(out) > fl.Limit {
		out = out[:fl.Limit]
	}
	return out, nil
}

func (f *fakeRecords) LatestForPoint(_ context.Context, pointID uint64) (*model.MonitoringRecord, error) {
	return f.latest[pointID], nil
}

func (f *fakeRecords) LatestForAllPoints(context.Context) ([]model.LatestReading, error) {
	return []model.LatestReading{}, f.err
}

func (f *fakeRecords) StatsByPoint(_ context.Context, _ uint64, days int) (model.PointStats, error) {
	return f.stats, f.err
}

func (f *fakeRecords) TimeSeries(_ context.Context, _ uint64, _ string, start, end time.Time) ([]model.TimeSeriesPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.TimeSeriesPoint{{RecordedAt: start, Value: 1}, {RecordedAt: end, Value: 2}}, nil
}

func (f *fakeRecords) DashboardStats(context.Context) (model.DashboardStats, error) {
	return f.dash, f.err
}

func (f *fakeRecords) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	f.purged = days
	return 12, f.err
}

// fakeCache counts invalidations.
type fakeCache struct{ invalidated int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

// fakePublisher records published events.
type fakePublisher struct{ events []queue.RecordCreatedEvent }

func (f *fakePublisher) PublishRecordCreated(_ context.Context, ev queue.RecordCreatedEvent) error {
	f.events = append(f.events, ev)
	return errors.New("broker offline")
}

// fakeSystem reports a fixed ping result.
type fakeSystem struct{ err error }

func (f fakeSystem) Ping(context.Context) (time.Duration, error) {
	return 1500 * time.Microsecond, f.err
}

func (f fakeSystem) TableStats(context.Context) ([]repository.TableStat, error) {
	return []repository.TableStat{{Name: "users", Rows: 3}}, nil
}
