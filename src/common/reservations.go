package common

import (
	"bitlibro/src/config"
	"bitlibro/src/db"
	"bitlibro/src/lib"
	"bitlibro/src/lib/mailer"
	"bitlibro/src/models"
	"bitlibro/src/models/scopes"
	"bitlibro/src/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

const OVERDUE_JOB_NAME = "overdue-reservations"

// OverdueGroup is one employee's overdue reservations.
type OverdueGroup struct {
	Employee     *models.User
	Reservations []models.Reservation
}

func FindOverdueReservations(db *gorm.DB, today time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Scopes(scopes.WithPendingStatus).
		Where("reservations.end_date < ?", today).
		Preload("Book").
		Preload("Employee").
		Preload("Client").
		Order("reservations.employee_id, reservations.end_date").
		Find(&rows).
		Error
	return rows, err
}

func GroupOverdueByEmployee(rows []models.Reservation) []OverdueGroup {
	byEmployee := map[uint]*OverdueGroup{}
	var ids []uint
	for _, r := range rows {
		g, ok := byEmployee[r.EmployeeID]
		if !ok {
			g = &OverdueGroup{Employee: r.Employee}
			byEmployee[r.EmployeeID] = g
			ids = append(ids, r.EmployeeID)
		}
		g.Reservations = append(g.Reservations, r)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	groups := make([]OverdueGroup, 0, len(ids))
	for _, id := range ids {
		groups = append(groups, *byEmployee[id])
	}
	return groups
}

func OverdueSummary(g OverdueGroup, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nThe following reservations were due before %s and are still pending:\n\n",
		g.Employee.FullName(), today.Format(config.DATE_PARSE_FORMAT))
	for _, r := range g.Reservations {
		book, client := "unknown book", "unknown client"
		if r.Book != nil {
			book = r.Book.Name
		}
		if r.Client != nil {
			client = r.Client.FullName()
		}
		fmt.Fprintf(&b, "- #%d %s, borrowed by %s, due %s\n", r.ID, book, client, r.EndDate.Format(config.DATE_PARSE_FORMAT))
	}
	b.WriteString("\nPlease finish or cancel them once the books are back.\n")
	return b.String()
}

// NotifyOverdue mails every employee their overdue reservations. It keeps going
// after a failed send and returns the joined errors.
func NotifyOverdue(ctx context.Context, m mailer.Mailer, groups []OverdueGroup, today time.Time) error {
	from := config.GetEnv("MAIL_FROM", "no-reply@bitlibro.local")
	var errs []error
	for _, g := range groups {
		if g.Employee == nil || g.Employee.Email == "" {
			continue
		}
		err := m.Send(ctx, &lib.SendMailInput{
			From:     from,
			FromName: "BitLibro",
			To:       []string{g.Employee.Email},
			Subject:  fmt.Sprintf("%d overdue reservation(s)", len(g.Reservations)),
			Body:     OverdueSummary(g, today),
		})
		if err != nil {
			log.Printf("[%s] Error mailing %s: %s\n", OVERDUE_JOB_NAME, g.Employee.Email, err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func OverdueReservationsJob() {
	ctx := context.Background()
	today := utils.StartOfDay(time.Now())
	rows, err := FindOverdueReservations(db.GetDb().WithContext(ctx), today)
	if err != nil {
		log.Printf("[%s] Error loading reservations: %s\n", OVERDUE_JOB_NAME, err.Error())
		return
	}
	groups := GroupOverdueByEmployee(rows)
	log.Printf("[%s] %d overdue reservation(s) across %d employee(s)\n", OVERDUE_JOB_NAME, len(rows), len(groups))
	if err := NotifyOverdue(ctx, mailer.NewMailer(), groups, today); err != nil {
		log.Printf("[%s] Finished with errors: %s\n", OVERDUE_JOB_NAME, err.Error())
	}
}

func ScheduleOverdueNotifier() {
	crontab := config.GetEnv("OVERDUE_CRON", "0 8 * * *")
	if os.Getenv("OVERDUE_CRON") == "off" {
		log.Printf("[%s] Disabled\n", OVERDUE_JOB_NAME)
		return
	}
	if _, err := lib.CreateCronJob(OVERDUE_JOB_NAME, crontab, OverdueReservationsJob); err != nil {
		log.Printf("[%s] Could not schedule: %s\n", OVERDUE_JOB_NAME, err.Error())
	}
}
