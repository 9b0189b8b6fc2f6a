package models

import (
	"bitlibro/src/types"
	"time"
)

type Reservation struct {
	ID         uint                    `gorm:"primarykey" json:"id"`
	BookID     uint                    `gorm:"index;not null" json:"book_id"`
	EmployeeID uint                    `gorm:"index;not null" json:"employee_id"`
	ClientID   uint                    `gorm:"index;not null" json:"client_id"`
	StartDate  time.Time               `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time               `gorm:"type:date;not null" json:"end_date"`
	Status     types.ReservationStatus `gorm:"size:20;index;default:'Pending';not null" json:"status"`

	Book     *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Employee *User `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Client   *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	types.Timestamps
}

func (r *Reservation) IsPending() bool {
	return r.Status == types.RESERVATION_PENDING
}

func (r *Reservation) Event(kind string, at time.Time) types.ReservationEvent {
	return types.ReservationEvent{
		Type:          kind,
		ReservationID: r.ID,
		BookID:        r.BookID,
		EmployeeID:    r.EmployeeID,
		Status:        r.Status,
		StartDate:     r.StartDate.Format("2006-01-02"),
		EndDate:       r.EndDate.Format("2006-01-02"),
		OccurredAt:    at,
	}
}
