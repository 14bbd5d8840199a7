package main

import (
	"encoding/csv"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lms/config"
	"lms/database"
	"lms/models"
)

// Imports a course catalog from catalog.csv. Expected columns:
// instructor_email, instructor_name, course_title, course_description,
// module_title, module_order, lesson_title, lesson_order, lesson_content
//
// One row per lesson; instructor/course/module rows are deduplicated, so
// the file can be re-run after edits.
func main() {
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	file, err := os.Open("catalog.csv")
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Map header indices
	header := records[0]
	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.TrimSpace(h)] = i
	}
	field := func(row []string, name string) string {
		idx, ok := headerIndex[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	log.Printf("Total rows to import: %d", len(records)-1)

	inserted := 0
	skipped := 0

	for i, row := range records[1:] {
		email := strings.ToLower(field(row, "instructor_email"))
		courseTitle := field(row, "course_title")
		moduleTitle := field(row, "module_title")
		lessonTitle := field(row, "lesson_title")
		if email == "" || courseTitle == "" || moduleTitle == "" || lessonTitle == "" {
			log.Printf("Skipping row %d: missing required fields", i+1)
			skipped++
			continue
		}

		instructor, err := seedInstructor(db, email, field(row, "instructor_name"))
		if err != nil {
			log.Fatalf("Row %d: failed to seed instructor %s: %v", i+1, email, err)
		}

		course, err := seedCourse(db, instructor.ID, courseTitle, field(row, "course_description"))
		if err != nil {
			log.Fatalf("Row %d: failed to seed course %q: %v", i+1, courseTitle, err)
		}

		moduleOrder, _ := strconv.Atoi(field(row, "module_order"))
		module, err := seedModule(db, course.ID, moduleTitle, moduleOrder)
		if err != nil {
			log.Fatalf("Row %d: failed to seed module %q: %v", i+1, moduleTitle, err)
		}

		lessonOrder, _ := strconv.Atoi(field(row, "lesson_order"))
		created, err := seedLesson(db, module.ID, lessonTitle, lessonOrder, field(row, "lesson_content"))
		if err != nil {
			log.Fatalf("Row %d: failed to seed lesson %q: %v", i+1, lessonTitle, err)
		}
		if created {
			inserted++
		} else {
			skipped++
		}
	}

	log.Printf("Import completed: %d lessons inserted, %d rows skipped", inserted, skipped)
}

func seedInstructor(db *gorm.DB, email, name string) (*models.Instructor, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), config.AppConfig.SaltRound)
		if err != nil {
			return nil, err
		}
		user = models.User{Name: name, Email: email, Role: "INSTRUCTOR", Password: string(hashed)}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	var instructor models.Instructor
	err = db.Where("user_id = ?", user.ID).First(&instructor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		instructor = models.Instructor{UserID: user.ID}
		if err := db.Create(&instructor).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func seedCourse(db *gorm.DB, instructorID uint, title, description string) (*models.Course, error) {
	var course models.Course
	err := db.Where("instructor_id = ? AND title = ? AND is_deleted = ?", instructorID, title, false).
		First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		course = models.Course{Title: title, Description: description, InstructorID: instructorID}
		if err := db.Create(&course).Error; err != nil {
			return nil, err
		}
		log.Printf("Created course %q (slug %s)", course.Title, course.Slug)
	} else if err != nil {
		return nil, err
	}
	return &course, nil
}

func seedModule(db *gorm.DB, courseID uint, title string, order int) (*models.Module, error) {
	var module models.Module
	err := db.Where("course_id = ? AND title = ? AND is_deleted = ?", courseID, title, false).
		First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		module = models.Module{CourseID: courseID, Title: title, OrderIndex: order}
		if err := db.Create(&module).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &module, nil
}

func seedLesson(db *gorm.DB, moduleID uint, title string, order int, content string) (bool, error) {
	var lesson models.Lesson
	err := db.Where("module_id = ? AND title = ? AND is_deleted = ?", moduleID, title, false).
		First(&lesson).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	lesson = models.Lesson{ModuleID: moduleID, Title: title, OrderIndex: order, Content: content}
	if err := db.Create(&lesson).Error; err != nil {
		return false, err
	}
	return true, nil
}
