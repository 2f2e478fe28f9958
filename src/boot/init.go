package boot

import (
	"clubdesk/src/common"
	"clubdesk/src/config"
	"clubdesk/src/db"
	"clubdesk/src/lib"
	"clubdesk/src/models"
	"clubdesk/src/types"
	"clubdesk/src/utils"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Sector{},
		&models.VenueTable{},
		&models.Package{},
		&models.Event{},
		&models.GuestRequest{},
		&models.GuestEntry{},
		&models.ScanLog{},
		&models.ActivityEntry{},
		&models.TrailLog{},
		&models.JobRun{},
		&models.Setting{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitTempDir makes sure rendered QR images and flyers have somewhere to go.
func InitTempDir() {
	dir := config.TempDir()
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("Could not create temp dir %s: %s\n", dir, err.Error())
		}
	}
}

// SeedAdmin creates the first administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD when no administrator exists yet.
func SeedAdmin() error {
	email, password := config.AdminSeed()
	if email == "" || password == "" {
		return nil
	}
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var admins int64
		if err := tx.
			Model(&models.User{}).
			Where("role = ?", types.ROLE_ADMIN).
			Count(&admins).
			Error; err != nil {
			return err
		}
		if admins > 0 {
			return nil
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		admin := models.User{
			Name:         "Administrator",
			Email:        email,
			PasswordHash: hash,
			Role:         types.ROLE_ADMIN,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		log.Printf("Seeded administrator [%d] %s\n", admin.ID, email)
		return nil
	})
}

// RecordJobRun runs job and keeps a JobRun row with its outcome.
func RecordJobRun(name string, job func() (int64, error)) {
	run := models.JobRun{Name: name, StartedAt: time.Now()}
	affected, err := job()
	finished := time.Now()
	run.FinishedAt = &finished
	run.Affected = affected
	run.Status = models.JOB_RUN_SUCCEEDED
	if err != nil {
		msg := err.Error()
		run.Status = models.JOB_RUN_FAILED
		run.Error = &msg
		log.Printf("Job %s failed: %s\n", name, msg)
	} else if affected > 0 {
		log.Printf("Job %s affected %d rows\n", name, affected)
	}
	if err := db.GetDb().Create(&run).Error; err != nil {
		log.Printf("Error recording run of job %s: %s\n", name, err.Error())
	}
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	every := config.HousekeepingInterval()
	if _, err := lib.CreateCronJob("events.complete", RecordJobRun, every, "events.complete", common.CompletePastEvents); err != nil {
		log.Printf("Error scheduling job: %s\n", err.Error())
	}
	if _, err := lib.CreateCronJob("requests.expire", RecordJobRun, every, "requests.expire", common.ExpireStaleRequests); err != nil {
		log.Printf("Error scheduling job: %s\n", err.Error())
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

// ScheduleEventCompletion adds a one-off completion sweep for when the
// event's grace period ends.
func ScheduleEventCompletion(eventID uint, at time.Time) {
	if !at.After(time.Now()) {
		return
	}
	name := utils.WithSuffix(fmt.Sprintf("events.complete.%d", eventID))
	if _, err := lib.CreateOneTimeCronJob(name, at, RecordJobRun, name, common.CompletePastEvents); err != nil {
		log.Printf("Error scheduling completion of event %d: %s\n", eventID, err.Error())
	}
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
