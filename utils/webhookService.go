package utils

import (
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"lms/config"
)

// EnrollmentEvent is the payload POSTed to the enrollment webhook.
type EnrollmentEvent struct {
	EnrollmentID uint      `json:"enrollment_id"`
	StudentID    uint      `json:"student_id"`
	CourseID     uint      `json:"course_id"`
	CourseSlug   string    `json:"course_slug"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// NotifyEnrollment posts the event to ENROLLMENT_WEBHOOK_URL when one is
// configured. Delivery is best-effort; failures are only logged.
func NotifyEnrollment(event EnrollmentEvent) {
	url := config.AppConfig.EnrollWebhookURL
	if url == "" {
		return
	}

	client := resty.New()
	client.SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(url)
	if err != nil {
		log.Printf("[WEBHOOK] Failed to deliver enrollment event %d: %v", event.EnrollmentID, err)
		return
	}
	if resp.IsError() {
		log.Printf("[WEBHOOK] Enrollment event %d rejected with status %d", event.EnrollmentID, resp.StatusCode())
	}
}
