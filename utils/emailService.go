package utils

import (
	"fmt"
	"lms/config"
	"lms/database"
	"lms/models"
	"log"
	"net/smtp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers through SendGrid when an API key is configured,
// otherwise over plain SMTP. With no sender configured the send is skipped.
func SendEmail(to []string, subject string, htmlBody string) error {
	from := config.AppConfig.EmailSender
	if from == "" {
		log.Printf("[MAILER] No sender configured, skipping email: %s", subject)
		return nil
	}

	if config.AppConfig.SendGridKey != "" {
		m := mail.NewV3Mail()
		m.SetFrom(mail.NewEmail("LMS", from))
		m.Subject = subject

		p := mail.NewPersonalization()
		for _, addr := range to {
			p.AddTos(mail.NewEmail("", addr))
		}
		m.AddPersonalizations(p)
		m.AddContent(mail.NewContent("text/html", htmlBody))

		client := sendgrid.NewSendClient(config.AppConfig.SendGridKey)
		resp, err := client.Send(m)
		if err != nil {
			log.Printf("[MAILER] SendGrid error: %v", err)
			return err
		}
		if resp.StatusCode >= 400 {
			log.Printf("[MAILER] SendGrid rejected email: %d %s", resp.StatusCode, resp.Body)
			return fmt.Errorf("sendgrid status %d", resp.StatusCode)
		}
		return nil
	}

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	password := config.AppConfig.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: LMS <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("[MAILER] Error sending email: %v", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.content h2 { color: #1A237E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #5C6BC0; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNSPHERE</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 LearnSphere. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// createNotification records an in-app notification row
func createNotification(userID uint, notifType, title, body string) {
	notification := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	if err := database.Database.Db.Create(&notification).Error; err != nil {
		log.Printf("[NOTIFY] Failed to store notification for user %d: %v", userID, err)
	}
}

// --- Triggers ---

// 1. Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to LearnSphere"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>LearnSphere</strong>! Your account has been created successfully.</p>
		<p>Browse the course catalog and enroll to start learning.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Enrollment approved
func NotifyEnrollmentApproved(student models.User, courseTitle string) {
	createNotification(student.ID, "ENROLLMENT", "Enrollment approved",
		fmt.Sprintf("Your enrollment in %s has been approved.", courseTitle))

	subject := "Enrollment Approved: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your enrollment in <strong>%s</strong> has been approved by the instructor.</p>
		<p>You can now access the lessons, quiz and assignments.</p>
	`, student.Name, courseTitle)

	go SendEmail([]string{student.Email}, subject, getEmailTemplate("Enrollment Approved", body))
}

// 3. Short question submission graded
func NotifySubmissionGraded(student models.User, courseTitle string, percentage int, passed bool) {
	result := "not passed"
	if passed {
		result = "passed"
	}
	createNotification(student.ID, "GRADING", "Submission graded",
		fmt.Sprintf("Your answers for %s were graded: %d%% (%s).", courseTitle, percentage, result))

	subject := "Your Submission Has Been Graded: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your short question answers for <strong>%s</strong> have been graded.</p>
		<div class="info-box">
			<strong>Score:</strong> %d%% (%s)
		</div>
		<p>Login to review the feedback from your instructor.</p>
	`, student.Name, courseTitle, percentage, result)

	go SendEmail([]string{student.Email}, subject, getEmailTemplate("Submission Graded", body))
}

// 4. Certificate issued
func NotifyCertificateIssued(student models.User, courseTitle, certNumber string) {
	createNotification(student.ID, "CERTIFICATE", "Certificate issued",
		fmt.Sprintf("Your certificate for %s is ready. Serial: %s", courseTitle, certNumber))

	subject := "Certificate Issued: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have completed <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Certificate number:</strong> %s
		</div>
		<p>You can view your certificates from your dashboard.</p>
	`, student.Name, courseTitle, certNumber)

	go SendEmail([]string{student.Email}, subject, getEmailTemplate("Certificate Issued", body))
}
