package utils

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lms/config"
	"lms/database"
	"lms/models"
)

// InitializePurgeScheduler sets up the nightly tombstone purge job.
func InitializePurgeScheduler() {
	log.Println("[PURGE-SCHEDULER] Initializing tombstone purge scheduler...")

	c := cron.New()

	// Run daily at 3 AM
	c.AddFunc("0 3 * * *", func() {
		log.Println("[PURGE-SCHEDULER] Running daily tombstone purge...")
		PurgeExpiredTombstones(database.Database.Db)
	})

	c.Start()
	log.Printf("[PURGE-SCHEDULER] Purge scheduler started - retention %d days", config.AppConfig.PurgeRetentionDays)
}

// PurgeExpiredTombstones hard-deletes records that were soft-deleted more
// than the retention window ago. Courses that still have enrollments and
// lessons that still have progress rows are protected and skipped; they
// stay in the trash until those references are gone.
func PurgeExpiredTombstones(db *gorm.DB) {
	cutoff := time.Now().AddDate(0, 0, -config.AppConfig.PurgeRetentionDays)

	// Lessons first so module/course purges don't strand children.
	res := db.Unscoped().
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Where("id NOT IN (?)", db.Model(&models.LessonProgress{}).Select("lesson_id")).
		Delete(&models.Lesson{})
	if res.Error != nil {
		log.Printf("[PURGE-SCHEDULER] Error purging lessons: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[PURGE-SCHEDULER] Purged %d lessons", res.RowsAffected)
	}

	res = db.Unscoped().
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Where("id NOT IN (?)", db.Model(&models.Lesson{}).Select("module_id")).
		Delete(&models.Module{})
	if res.Error != nil {
		log.Printf("[PURGE-SCHEDULER] Error purging modules: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[PURGE-SCHEDULER] Purged %d modules", res.RowsAffected)
	}

	res = db.Unscoped().
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Where("id NOT IN (?)", db.Model(&models.Enrollment{}).Select("course_id")).
		Where("id NOT IN (?)", db.Model(&models.Module{}).Select("course_id")).
		Delete(&models.Course{})
	if res.Error != nil {
		log.Printf("[PURGE-SCHEDULER] Error purging courses: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[PURGE-SCHEDULER] Purged %d courses", res.RowsAffected)
	}
}
