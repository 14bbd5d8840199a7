package controllers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/routers/courseRoutes"
	"lms/store"
)

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:               "0",
		JWTKey:             "test-secret",
		SaltRound:          4,
		MaxVideoSizeMB:     500,
		UploadDir:          t.TempDir(),
		PurgeRetentionDays: 30,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, database.Migrate(db))

	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Role: role, Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Course {
	t.Helper()
	instructor := &models.Instructor{UserID: owner.ID}
	require.NoError(t, db.Where("user_id = ?", owner.ID).FirstOrCreate(instructor).Error)
	course := &models.Course{Title: title, InstructorID: instructor.ID}
	require.NoError(t, db.Create(course).Error)
	return course
}

func authToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token, body string) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	return resp.StatusCode, parsed
}

func TestEnrollIsIdempotent(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Go Basics")
	student := seedUser(t, db, "Stu", "stu@example.com", "USER")
	token := authToken(t, student)

	code, resp := doRequest(t, app, http.MethodPost, "/course/"+course.Slug+"/enroll", token, "")
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Status)

	var first models.Enrollment
	require.NoError(t, json.Unmarshal(resp.Data, &first))

	code, resp = doRequest(t, app, http.MethodPost, "/course/"+course.Slug+"/enroll", token, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Status)

	var second models.Enrollment
	require.NoError(t, json.Unmarshal(resp.Data, &second))
	assert.Equal(t, first.ID, second.ID, "second enroll must return the first row")

	var n int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// The student profile was provisioned lazily, exactly once.
	require.NoError(t, db.Model(&models.Student{}).Where("user_id = ?", student.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestEnrollUnknownSlugIsNotFound(t *testing.T) {
	app, db := newTestApp(t)

	student := seedUser(t, db, "Stu", "stu@example.com", "USER")
	token := authToken(t, student)

	code, resp := doRequest(t, app, http.MethodPost, "/course/no-such-course/enroll", token, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Status)
}

func TestProgressWithZeroLessonsIsZeroPercent(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Empty Course")
	student := seedUser(t, db, "Stu", "stu@example.com", "USER")
	token := authToken(t, student)

	code, _ := doRequest(t, app, http.MethodPost, "/course/"+course.Slug+"/enroll", token, "")
	require.Equal(t, http.StatusCreated, code)

	code, resp := doRequest(t, app, http.MethodGet, "/course/"+course.Slug+"/progress", token, "")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		CompletedLessons int64   `json:"completed_lessons"`
		TotalLessons     int64   `json:"total_lessons"`
		Percent          float64 `json:"percent"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Zero(t, data.TotalLessons)
	assert.Zero(t, data.Percent)
}

func TestToggleLessonProgress(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Go Basics")
	module := models.Module{CourseID: course.ID, Title: "Intro", OrderIndex: 0}
	require.NoError(t, db.Create(&module).Error)
	lesson := models.Lesson{ModuleID: module.ID, Title: "Hello", OrderIndex: 0}
	require.NoError(t, db.Create(&lesson).Error)

	student := seedUser(t, db, "Stu", "stu@example.com", "USER")
	token := authToken(t, student)

	code, _ := doRequest(t, app, http.MethodPost, "/course/"+course.Slug+"/enroll", token, "")
	require.Equal(t, http.StatusCreated, code)

	path := fmt.Sprintf("/course/%s/lesson/%d/progress", course.Slug, lesson.ID)

	code, resp := doRequest(t, app, http.MethodPost, path, token, `{"is_completed":true}`)
	require.Equal(t, http.StatusOK, code)

	var progress models.LessonProgress
	require.NoError(t, json.Unmarshal(resp.Data, &progress))
	assert.True(t, progress.IsCompleted)
	assert.NotNil(t, progress.CompletedAt)

	code, resp = doRequest(t, app, http.MethodPost, path, token, `{"is_completed":false}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &progress))
	assert.False(t, progress.IsCompleted)
	assert.Nil(t, progress.CompletedAt)

	code, resp = doRequest(t, app, http.MethodGet, "/course/"+course.Slug+"/progress", token, "")
	require.Equal(t, http.StatusOK, code)
	var data struct {
		CompletedLessons int64 `json:"completed_lessons"`
		TotalLessons     int64 `json:"total_lessons"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, int64(0), data.CompletedLessons)
	assert.Equal(t, int64(1), data.TotalLessons)
}

func TestHardDeleteRejectedWhileEnrollmentsExist(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Popular Course")
	student := seedUser(t, db, "Stu", "stu@example.com", "USER")

	code, _ := doRequest(t, app, http.MethodPost, "/course/"+course.Slug+"/enroll", authToken(t, student), "")
	require.Equal(t, http.StatusCreated, code)

	path := fmt.Sprintf("/admin/course/%d/permanent", course.ID)
	code, resp := doRequest(t, app, http.MethodDelete, path, authToken(t, instructor), "")
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Status)

	var n int64
	require.NoError(t, db.Model(&models.Course{}).Count(&n).Error)
	assert.Equal(t, int64(1), n, "course row must survive the rejected hard delete")
}

func TestSoftDeleteCourseCascadesToChildren(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Doomed Course")
	module := models.Module{CourseID: course.ID, Title: "Intro", OrderIndex: 0}
	require.NoError(t, db.Create(&module).Error)
	lesson := models.Lesson{ModuleID: module.ID, Title: "Hello", OrderIndex: 0}
	require.NoError(t, db.Create(&lesson).Error)

	path := fmt.Sprintf("/admin/course/%d", course.ID)
	code, resp := doRequest(t, app, http.MethodDelete, path, authToken(t, instructor), "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Status)

	var active int64
	require.NoError(t, store.New[models.Course](db).Query().Count(&active).Error)
	assert.Zero(t, active)
	require.NoError(t, store.New[models.Module](db).Query().Count(&active).Error)
	assert.Zero(t, active)
	require.NoError(t, store.New[models.Lesson](db).Query().Count(&active).Error)
	assert.Zero(t, active)

	// All rows still exist as tombstones.
	var all int64
	require.NoError(t, store.New[models.Lesson](db).QueryAll().Count(&all).Error)
	assert.Equal(t, int64(1), all)
}

func TestOnlyOwnerMayMutateCourse(t *testing.T) {
	app, db := newTestApp(t)

	owner := seedUser(t, db, "Owner", "owner@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, owner, "Owned Course")
	rival := seedUser(t, db, "Rival", "rival@example.com", "INSTRUCTOR")

	path := fmt.Sprintf("/admin/course/%d", course.ID)
	code, resp := doRequest(t, app, http.MethodPut, path, authToken(t, rival), `{"title":"Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, resp.Status)

	// Admins may.
	admin := seedUser(t, db, "Admin", "admin@example.com", "ADMIN")
	code, resp = doRequest(t, app, http.MethodPut, path, authToken(t, admin), `{"title":"Renamed by Admin"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Status)
}

func TestCourseDetailListsModulesAndFirstLesson(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Structured Course")
	for m := 0; m < 2; m++ {
		module := models.Module{CourseID: course.ID, Title: fmt.Sprintf("Module %d", m+1), OrderIndex: m}
		require.NoError(t, db.Create(&module).Error)
		for l := 0; l < 2; l++ {
			lesson := models.Lesson{ModuleID: module.ID, Title: fmt.Sprintf("Lesson %d.%d", m+1, l+1), OrderIndex: l}
			require.NoError(t, db.Create(&lesson).Error)
		}
	}

	student := seedUser(t, db, "Stu", "stu@example.com", "USER")

	code, resp := doRequest(t, app, http.MethodGet, "/course/"+course.Slug, authToken(t, student), "")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Modules []struct {
			Title        string `json:"title"`
			LessonsCount int64  `json:"lessons_count"`
		} `json:"modules"`
		IsEnrolled  bool `json:"is_enrolled"`
		FirstLesson *struct {
			Title string `json:"title"`
		} `json:"first_lesson"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	require.Len(t, data.Modules, 2)
	assert.Equal(t, int64(2), data.Modules[0].LessonsCount)
	assert.False(t, data.IsEnrolled)
	require.NotNil(t, data.FirstLesson)
	assert.Equal(t, "Lesson 1.1", data.FirstLesson.Title)
}

func TestLessonDetailNavigationTriple(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Nav Course")

	var lessons []models.Lesson
	for m := 0; m < 2; m++ {
		module := models.Module{CourseID: course.ID, Title: "M", OrderIndex: m}
		require.NoError(t, db.Create(&module).Error)
		for l := 0; l < 2; l++ {
			lesson := models.Lesson{ModuleID: module.ID, Title: fmt.Sprintf("L%d", m*2+l+1), OrderIndex: l}
			require.NoError(t, db.Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
	}

	student := seedUser(t, db, "Stu", "stu@example.com", "USER")
	token := authToken(t, student)

	// Second lesson: previous is the first, next is the third — which
	// lives in the following module.
	path := fmt.Sprintf("/course/%s/lesson/%d", course.Slug, lessons[1].ID)
	code, resp := doRequest(t, app, http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Lesson   models.Lesson  `json:"lesson"`
		Previous *models.Lesson `json:"previous_lesson"`
		Next     *models.Lesson `json:"next_lesson"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, lessons[1].ID, data.Lesson.ID)
	require.NotNil(t, data.Previous)
	assert.Equal(t, lessons[0].ID, data.Previous.ID)
	require.NotNil(t, data.Next)
	assert.Equal(t, lessons[2].ID, data.Next.ID)

	// First lesson has no previous; last has no next.
	path = fmt.Sprintf("/course/%s/lesson/%d", course.Slug, lessons[0].ID)
	code, resp = doRequest(t, app, http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Nil(t, data.Previous)

	path = fmt.Sprintf("/course/%s/lesson/%d", course.Slug, lessons[3].ID)
	code, resp = doRequest(t, app, http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Nil(t, data.Next)
}

func TestCourseListIncludesCounts(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	course := seedCourse(t, db, instructor, "Counted Course")
	module := models.Module{CourseID: course.ID, Title: "M", OrderIndex: 0}
	require.NoError(t, db.Create(&module).Error)
	require.NoError(t, db.Create(&models.Lesson{ModuleID: module.ID, Title: "L", OrderIndex: 0}).Error)

	student := seedUser(t, db, "Stu", "stu@example.com", "USER")
	token := authToken(t, student)

	code, _ := doRequest(t, app, http.MethodPost, "/course/"+course.Slug+"/enroll", token, "")
	require.Equal(t, http.StatusCreated, code)

	code, resp := doRequest(t, app, http.MethodGet, "/course/list?page=1&limit=10", token, "")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Courses []struct {
			Slug             string `json:"slug"`
			ModulesCount     int64  `json:"modules_count"`
			LessonsCount     int64  `json:"lessons_count"`
			EnrollmentsCount int64  `json:"enrollments_count"`
		} `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Courses, 1)
	assert.Equal(t, course.Slug, data.Courses[0].Slug)
	assert.Equal(t, int64(1), data.Courses[0].ModulesCount)
	assert.Equal(t, int64(1), data.Courses[0].LessonsCount)
	assert.Equal(t, int64(1), data.Courses[0].EnrollmentsCount)
}

func TestCreateCourseAssignsSuffixedSlugs(t *testing.T) {
	app, db := newTestApp(t)

	instructor := seedUser(t, db, "Teach", "teach@example.com", "INSTRUCTOR")
	token := authToken(t, instructor)

	code, resp := doRequest(t, app, http.MethodPost, "/admin/course/create", token, `{"title":"Go Basics","description":"intro"}`)
	require.Equal(t, http.StatusCreated, code)
	var first models.Course
	require.NoError(t, json.Unmarshal(resp.Data, &first))
	assert.Equal(t, "go-basics", first.Slug)

	code, resp = doRequest(t, app, http.MethodPost, "/admin/course/create", token, `{"title":"Go Basics","description":"again"}`)
	require.Equal(t, http.StatusCreated, code)
	var second models.Course
	require.NoError(t, json.Unmarshal(resp.Data, &second))
	assert.Equal(t, "go-basics-2", second.Slug)

	var n int64
	require.NoError(t, db.Model(&models.Course{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
