package controllers

import (
	"bitlibro/src/models"
	"bitlibro/src/repositories"
	"bitlibro/src/types"
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// memStore is an in-memory ReservationStore. Atomic snapshots every table and
// restores the snapshot when the callback fails.
type memStore struct {
	mu           sync.Mutex
	books        map[uint]models.Book
	users        map[uint]models.User
	reservations map[uint]models.Reservation
	nextUserID   uint
	nextResID    uint

	failCreateReservation error
}

func newMemStore() *memStore {
	return &memStore{
		books:        map[uint]models.Book{},
		users:        map[uint]models.User{},
		reservations: map[uint]models.Reservation{},
		nextUserID:   100,
		nextResID:    1,
	}
}

func (s *memStore) addBook(id uint, name string) {
	s.books[id] = models.Book{ID: id, Name: name}
}

func (s *memStore) addUser(id uint, name, lastName string, role types.Role) {
	s.users[id] = models.User{ID: id, Name: name, LastName: lastName, Role: role, Ci: strings.Repeat("9", 9) + string(rune('0'+id%10))}
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memStore) reservationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *memStore) Atomic(ctx context.Context, fn func(tx repositories.ReservationTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := copyMap(s.books)
	users := copyMap(s.users)
	reservations := copyMap(s.reservations)
	nextUserID, nextResID := s.nextUserID, s.nextResID

	if err := fn(&memTx{s: s}); err != nil {
		s.books, s.users, s.reservations = books, users, reservations
		s.nextUserID, s.nextResID = nextUserID, nextResID
		return err
	}
	return nil
}

func (s *memStore) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *memStore) IsOverlapping(ctx context.Context, bookID uint, start, end time.Time, excludeID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlapping(bookID, start, end, excludeID), nil
}

func (s *memStore) BookExists(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.books[id]
	return ok, nil
}

func (s *memStore) GetUser(ctx context.Context, id uint, role types.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != role {
		return nil, types.NewNotFoundError("%s %d not found", strings.ToLower(role.String()), id)
	}
	return &u, nil
}

func (s *memStore) ListReservations(ctx context.Context, f types.ReservationFilter) ([]models.Reservation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []models.Reservation
	for id, r := range s.reservations {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.EmployeeID > 0 && r.EmployeeID != f.EmployeeID {
			continue
		}
		if f.ClientID > 0 && r.ClientID != f.ClientID {
			continue
		}
		if f.From != nil && r.StartDate.Before(*f.From) {
			continue
		}
		if f.To != nil && r.StartDate.After(*f.To) {
			continue
		}
		if f.ClientName != "" && !nameMatches(s.users[r.ClientID], f.ClientName) {
			continue
		}
		if f.EmployeeName != "" && !nameMatches(s.users[r.EmployeeID], f.EmployeeName) {
			continue
		}
		full, _ := s.load(id)
		rows = append(rows, *full)
	}
	sort.Slice(rows, func(i, j int) bool {
		if f.OrderBy == types.ORDER_START_DESC {
			return rows[i].StartDate.After(rows[j].StartDate)
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	total := int64(len(rows))
	from := (f.Page - 1) * f.PageSize
	if from > len(rows) {
		from = len(rows)
	}
	to := min(from+f.PageSize, len(rows))
	return rows[from:to], total, nil
}

func nameMatches(u models.User, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.LastName), term)
}

func (s *memStore) overlapping(bookID uint, start, end time.Time, excludeID uint) bool {
	for id, r := range s.reservations {
		if id == excludeID || r.BookID != bookID || !r.IsPending() {
			continue
		}
		if rangesOverlap(r.StartDate, r.EndDate, start, end) {
			return true
		}
	}
	return false
}

func (s *memStore) load(id uint) (*models.Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, types.NewNotFoundError("reservation %d not found", id)
	}
	if b, ok := s.books[r.BookID]; ok {
		r.Book = &b
	}
	if e, ok := s.users[r.EmployeeID]; ok {
		r.Employee = &e
	}
	if c, ok := s.users[r.ClientID]; ok {
		r.Client = &c
	}
	return &r, nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) LockBook(id uint) (*models.Book, error) {
	b, ok := t.s.books[id]
	if !ok {
		return nil, types.NewNotFoundError("book %d not found", id)
	}
	return &b, nil
}

func (t *memTx) IsOverlapping(bookID uint, start, end time.Time, excludeID uint) (bool, error) {
	return t.s.overlapping(bookID, start, end, excludeID), nil
}

func (t *memTx) FindClient(id uint) (*models.User, error) {
	u, ok := t.s.users[id]
	if !ok || u.Role != types.ROLE_CLIENT {
		return nil, types.NewNotFoundError("client %d not found", id)
	}
	return &u, nil
}

func (t *memTx) CiExists(ci string) (bool, error) {
	for _, u := range t.s.users {
		if u.Ci == ci {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateClient(client *models.User) error {
	client.ID = t.s.nextUserID
	t.s.nextUserID++
	t.s.users[client.ID] = *client
	return nil
}

func (t *memTx) CreateReservation(r *models.Reservation) error {
	if t.s.failCreateReservation != nil {
		return t.s.failCreateReservation
	}
	r.ID = t.s.nextResID
	t.s.nextResID++
	r.CreatedAt = time.Unix(int64(r.ID), 0)
	t.s.reservations[r.ID] = *r
	return nil
}

func (t *memTx) LockReservation(id uint) (*models.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, types.NewNotFoundError("reservation %d not found", id)
	}
	return &r, nil
}

func (t *memTx) SaveReservation(r *models.Reservation) error {
	saved := *r
	saved.Book, saved.Employee, saved.Client = nil, nil, nil
	t.s.reservations[r.ID] = saved
	return nil
}

func (t *memTx) LoadReservation(id uint) (*models.Reservation, error) {
	return t.s.load(id)
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type recordingPublisher struct {
	events []types.ReservationEvent
}

func (p *recordingPublisher) PublishReservationEvent(ctx context.Context, evt types.ReservationEvent) {
	p.events = append(p.events, evt)
}

// rangesOverlap reports whether the closed date ranges [aStart, aEnd] and [bStart, bEnd] share a day.
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func TestRangesOverlap(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	cases := []struct {
		name     string
		aStart   string
		aEnd     string
		bStart   string
		bEnd     string
		expected bool
	}{
		{"shared boundary day", "2024-01-10", "2024-01-15", "2024-01-15", "2024-01-20", true},
		{"day after end", "2024-01-10", "2024-01-15", "2024-01-16", "2024-01-20", false},
		{"contained", "2024-01-10", "2024-01-20", "2024-01-12", "2024-01-13", true},
		{"ends the day before", "2024-01-10", "2024-01-15", "2024-01-01", "2024-01-09", false},
		{"ends on start day", "2024-01-10", "2024-01-15", "2024-01-01", "2024-01-10", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, rangesOverlap(day(c.aStart), day(c.aEnd), day(c.bStart), day(c.bEnd)))
			assert.Equal(t, c.expected, rangesOverlap(day(c.bStart), day(c.bEnd), day(c.aStart), day(c.aEnd)))
		})
	}
}
