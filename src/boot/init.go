package boot

import (
	"bitlibro/src/common"
	"bitlibro/src/config"
	"bitlibro/src/db"
	"bitlibro/src/lib"
	"bitlibro/src/models"
	"bitlibro/src/types"
	"bitlibro/src/utils"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

const (
	DEFAULT_ADMIN_EMAIL    = "admin@example.com"
	DEFAULT_ADMIN_PASSWORD = "Admin123!"
	ADMIN_CI               = "1311220211"

	RESERVATION_OVERLAP_CONSTRAINT = "reservations_no_overlap"
)

// Models lists every table the API owns, in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Genre{},
		&models.Book{},
		&models.BookGenre{},
		&models.Image{},
		&models.Reservation{},
	}
}

func InitDb() *gorm.DB {
	db := db.GetDb()
	if err := Migrate(db); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	if err := SeedAdmin(db); err != nil {
		log.Fatalf("error seeding admin: %s", err.Error())
	}
	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Book{}, "Genres", &models.BookGenre{}); err != nil {
		return err
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return ensureOverlapConstraint(db)
}

// ensureOverlapConstraint keeps two pending reservations of one book from sharing a day.
func ensureOverlapConstraint(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return err
	}
	var exists int64
	if err := db.Raw("SELECT count(*) FROM pg_constraint WHERE conname = ?", RESERVATION_OVERLAP_CONSTRAINT).
		Scan(&exists).
		Error; err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}
	log.Printf("[Migrate] Adding constraint %s\n", RESERVATION_OVERLAP_CONSTRAINT)
	return db.Exec(OverlapConstraintDDL()).Error
}

func OverlapConstraintDDL() string {
	return fmt.Sprintf(
		`ALTER TABLE reservations ADD CONSTRAINT %s EXCLUDE USING gist (book_id WITH =, daterange(start_date, end_date, '[]') WITH &&) WHERE (status = '%s')`,
		RESERVATION_OVERLAP_CONSTRAINT,
		types.RESERVATION_PENDING,
	)
}

// SeedAdmin creates the administrator account once.
func SeedAdmin(db *gorm.DB) error {
	email := strings.ToLower(config.GetEnv("ADMIN_EMAIL", DEFAULT_ADMIN_EMAIL))
	var admin models.User
	err := db.Unscoped().Where(&models.User{Email: email}).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := utils.HashPassword(config.GetEnv("ADMIN_PASSWORD", DEFAULT_ADMIN_PASSWORD))
	if err != nil {
		return err
	}
	admin = models.User{
		Email:        email,
		Username:     email,
		PasswordHash: hash,
		Name:         "Admin",
		LastName:     "System",
		Ci:           ADMIN_CI,
		Role:         types.ROLE_ADMIN,
	}
	if err := db.Create(&admin).Error; err != nil {
		return utils.TranslatePgError(err)
	}
	log.Printf("[Seeder] Created admin %s\n", email)
	return nil
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	common.ScheduleOverdueNotifier()
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
