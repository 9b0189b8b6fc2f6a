package common

import (
	"bitlibro/src/lib"
	"bitlibro/src/models"
	"bitlibro/src/types"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeMailer struct {
	sent []*lib.SendMailInput
	fail map[string]error
}

func (m *fakeMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	if err := m.fail[input.To[0]]; err != nil {
		return err
	}
	m.sent = append(m.sent, input)
	return nil
}

func employee(id uint) *models.User {
	return &models.User{ID: id, Name: faker.FirstName(), LastName: faker.LastName(), Email: faker.Email(), Role: types.ROLE_EMPLOYEE}
}

func TestGroupAndNotifyOverdue(t *testing.T) {
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	grace, alan := employee(10), employee(11)
	book := &models.Book{ID: 1, Name: "Dune"}
	client := &models.User{ID: 20, Name: "Ada", LastName: "Lovelace"}
	rows := []models.Reservation{
		{ID: 3, EmployeeID: 11, Employee: alan, Book: book, Client: client, EndDate: today.AddDate(0, 0, -1)},
		{ID: 1, EmployeeID: 10, Employee: grace, Book: book, Client: client, EndDate: today.AddDate(0, 0, -9)},
		{ID: 2, EmployeeID: 10, Employee: grace, Book: book, Client: client, EndDate: today.AddDate(0, 0, -3)},
	}

	groups := GroupOverdueByEmployee(rows)
	require.Len(t, groups, 2)
	assert.Equal(t, uint(10), groups[0].Employee.ID)
	assert.Len(t, groups[0].Reservations, 2)
	assert.Len(t, groups[1].Reservations, 1)

	summary := OverdueSummary(groups[0], today)
	assert.Contains(t, summary, "#1 Dune, borrowed by Ada Lovelace, due 2024-01-23")
	assert.Contains(t, summary, "#2 Dune")

	m := &fakeMailer{fail: map[string]error{alan.Email: errors.New("mailbox full")}}
	err := NotifyOverdue(context.Background(), m, groups, today)
	assert.Error(t, err)
	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{grace.Email}, m.sent[0].To)
	assert.Equal(t, "2 overdue reservation(s)", m.sent[0].Subject)
}

func TestFindOverdueReservations(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)

	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE reservations.end_date < \$1 AND reservations.status = \$2 .*ORDER BY reservations.employee_id, reservations.end_date`).
		WithArgs(today, "Pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "book_id", "employee_id", "client_id", "status", "end_date"}).
			AddRow(1, 1, 10, 20, "Pending", today.AddDate(0, 0, -2)))
	mock.ExpectQuery(`SELECT \* FROM "books"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Dune"))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "last_name"}).AddRow(20, "Ada", "Lovelace"))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(10, "Grace", "grace@example.com"))

	rows, err := FindOverdueReservations(gormDB, today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Book)
	assert.Equal(t, "Dune", rows[0].Book.Name)
	require.NotNil(t, rows[0].Employee)
	assert.Equal(t, "grace@example.com", rows[0].Employee.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationEventMessage(t *testing.T) {
	r := models.Reservation{
		ID:        5,
		BookID:    1,
		Status:    types.RESERVATION_CANCELLED,
		StartDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	msg, err := ReservationEventMessage(r.Event("reservation.updated", time.Now()))
	require.NoError(t, err)

	assert.Equal(t, "reservation.updated", gjson.Get(msg, "type").String())
	assert.Equal(t, int64(5), gjson.Get(msg, "reservation_id").Int())
	assert.Equal(t, "Cancelled", gjson.Get(msg, "status").String())
	assert.Equal(t, "2024-01-10", gjson.Get(msg, "start_date").String())
}

func TestNewReservationEventPublisherDisabled(t *testing.T) {
	t.Setenv("RESERVATION_EVENTS_TOPIC_ARN", "")
	assert.Nil(t, NewReservationEventPublisher())
}
