package utils

import (
	"fmt"
	"log"
	"net/smtp"

	"lms/config"
)

// SendEnrollmentEmail sends an email notification when a student enrolls
// in a course. Failures are logged, never fatal to the request.
func SendEnrollmentEmail(email, userName, courseTitle string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	if from == "" || password == "" {
		log.Println("Email sender not configured, skipping enrollment email.")
		return nil
	}

	to := []string{email}

	subject := "Subject: Course Enrollment Confirmation\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"

	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 500px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #333333; text-align: center;">Enrollment Confirmed</h2>
					<p style="font-size: 16px; color: #555555;">Hi %s,</p>
					<p style="font-size: 16px; color: #555555;">You are now enrolled in <strong>%s</strong>. Head over to your dashboard to start learning.</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 30px;">Thank you for learning with us.</p>
				</div>
			</body>
		</html>
	`, userName, courseTitle)

	message := []byte(subject + "\n" + body)

	// Auth setup
	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, message); err != nil {
		log.Printf("Error sending enrollment email to %s: %v", email, err)
		return err
	}

	log.Println("Enrollment email sent successfully to", email)
	return nil
}
