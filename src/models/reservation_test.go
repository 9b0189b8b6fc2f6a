package models

import (
	"bitlibro/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestReservationEvent(t *testing.T) {
	r := Reservation{
		ID:         7,
		BookID:     3,
		EmployeeID: 2,
		StartDate:  day("2024-01-10"),
		EndDate:    day("2024-01-15"),
		Status:     types.RESERVATION_PENDING,
	}
	at := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	evt := r.Event("reservation.created", at)

	assert.Equal(t, uint(7), evt.ReservationID)
	assert.Equal(t, "2024-01-10", evt.StartDate)
	assert.Equal(t, "2024-01-15", evt.EndDate)
	assert.Equal(t, types.RESERVATION_PENDING, evt.Status)
	assert.True(t, r.IsPending())
}

func TestUserFullName(t *testing.T) {
	u := User{Name: "Ada", LastName: "Lovelace", Role: types.ROLE_CLIENT}
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, []string{"Client"}, u.Roles())
}
