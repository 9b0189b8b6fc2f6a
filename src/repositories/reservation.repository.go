package repositories

import (
	"bitlibro/src/models"
	"bitlibro/src/models/scopes"
	"bitlibro/src/types"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationStore is the persistence boundary of the reservation workflow.
// Writes only happen through the handle passed to Atomic.
type ReservationStore interface {
	Atomic(ctx context.Context, fn func(tx ReservationTx) error) error
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)
	ListReservations(ctx context.Context, filter types.ReservationFilter) ([]models.Reservation, int64, error)
	IsOverlapping(ctx context.Context, bookID uint, start, end time.Time, excludeID uint) (bool, error)
	BookExists(ctx context.Context, id uint) (bool, error)
	GetUser(ctx context.Context, id uint, role types.Role) (*models.User, error)
}

// ReservationTx is a transaction handle. Lock* methods return mutable rows that
// stay locked until the transaction ends.
type ReservationTx interface {
	LockBook(id uint) (*models.Book, error)
	IsOverlapping(bookID uint, start, end time.Time, excludeID uint) (bool, error)
	FindClient(id uint) (*models.User, error)
	CiExists(ci string) (bool, error)
	CreateClient(client *models.User) error
	CreateReservation(reservation *models.Reservation) error
	LockReservation(id uint) (*models.Reservation, error)
	SaveReservation(reservation *models.Reservation) error
	LoadReservation(id uint) (*models.Reservation, error)
}

type GormReservationStore struct {
	db *gorm.DB
}

func NewReservationStore(db *gorm.DB) *GormReservationStore {
	return &GormReservationStore{db: db}
}

func (s *GormReservationStore) Atomic(ctx context.Context, fn func(tx ReservationTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormReservationTx{tx: tx})
	})
}

func (s *GormReservationStore) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	return loadReservation(s.db.WithContext(ctx), id)
}

func (s *GormReservationStore) IsOverlapping(ctx context.Context, bookID uint, start, end time.Time, excludeID uint) (bool, error) {
	return isOverlapping(s.db.WithContext(ctx), bookID, start, end, excludeID)
}

func (s *GormReservationStore) BookExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Book{}).
		Scopes(scopes.WithID(id)).
		Count(&count).
		Error
	return count > 0, err
}

func (s *GormReservationStore) GetUser(ctx context.Context, id uint, role types.Role) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(scopes.WithRole(role)).
		First(&user, id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("%s %d not found", strings.ToLower(role.String()), id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormReservationStore) ListReservations(ctx context.Context, f types.ReservationFilter) ([]models.Reservation, int64, error) {
	db := s.db.WithContext(ctx)
	query := func() *gorm.DB {
		q := db.Model(&models.Reservation{}).
			Joins("JOIN users AS clients ON clients.id = reservations.client_id").
			Joins("JOIN users AS employees ON employees.id = reservations.employee_id")
		if f.Status != "" {
			q = q.Scopes(scopes.WithReservationStatus(f.Status))
		}
		if f.EmployeeID > 0 {
			q = q.Where("reservations.employee_id = ?", f.EmployeeID)
		}
		if f.ClientID > 0 {
			q = q.Where("reservations.client_id = ?", f.ClientID)
		}
		if f.From != nil {
			q = q.Where("reservations.start_date >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("reservations.start_date <= ?", *f.To)
		}
		return q.Scopes(
			scopes.ILike(f.ClientName, "clients.name", "clients.last_name"),
			scopes.ILike(f.EmployeeName, "employees.name", "employees.last_name"),
		)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := f.OrderBy
	if order == "" {
		order = types.ORDER_CREATED_DESC
	}
	var rows []models.Reservation
	err := withProjection(query()).
		Order(order).
		Scopes(scopes.Paginate(f.Page, f.PageSize)).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

type gormReservationTx struct {
	tx *gorm.DB
}

func (t *gormReservationTx) LockBook(id uint) (*models.Book, error) {
	var book models.Book
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("book %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (t *gormReservationTx) IsOverlapping(bookID uint, start, end time.Time, excludeID uint) (bool, error) {
	return isOverlapping(t.tx, bookID, start, end, excludeID)
}

func (t *gormReservationTx) FindClient(id uint) (*models.User, error) {
	var client models.User
	err := t.tx.
		Scopes(scopes.WithRole(types.ROLE_CLIENT)).
		First(&client, id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("client %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (t *gormReservationTx) CiExists(ci string) (bool, error) {
	var count int64
	err := t.tx.
		Unscoped().
		Model(&models.User{}).
		Where("ci = ?", ci).
		Count(&count).
		Error
	return count > 0, err
}

func (t *gormReservationTx) CreateClient(client *models.User) error {
	return t.tx.Create(client).Error
}

func (t *gormReservationTx) CreateReservation(reservation *models.Reservation) error {
	return t.tx.Omit(clause.Associations).Create(reservation).Error
}

func (t *gormReservationTx) LockReservation(id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("reservation %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (t *gormReservationTx) SaveReservation(reservation *models.Reservation) error {
	return t.tx.Omit(clause.Associations).Save(reservation).Error
}

func (t *gormReservationTx) LoadReservation(id uint) (*models.Reservation, error) {
	return loadReservation(t.tx, id)
}

// isOverlapping counts Pending reservations on the book whose closed interval meets [start, end].
func isOverlapping(db *gorm.DB, bookID uint, start, end time.Time, excludeID uint) (bool, error) {
	q := db.Model(&models.Reservation{}).
		Scopes(scopes.WithPendingStatus).
		Where("reservations.book_id = ? AND reservations.start_date <= ? AND reservations.end_date >= ?", bookID, end, start)
	if excludeID > 0 {
		q = q.Where("reservations.id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func withProjection(db *gorm.DB) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	}
	return db.
		Preload("Book", unscoped).
		Preload("Book.Genres").
		Preload("Book.Images").
		Preload("Employee", unscoped).
		Preload("Client", unscoped)
}

func loadReservation(db *gorm.DB, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := withProjection(db).First(&reservation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewNotFoundError("reservation %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
