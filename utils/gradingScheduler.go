package utils

import (
	"fmt"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
	"log"

	"github.com/robfig/cron/v3"
)

// InitializeGradingScheduler sets up the daily grading reminder scheduler
func InitializeGradingScheduler() {
	log.Println("[GRADING-SCHEDULER] Initializing grading scheduler...")

	c := cron.New()

	// Run daily at 8 AM to remind instructors of ungraded submissions
	c.AddFunc("0 8 * * *", func() {
		log.Println("[GRADING-SCHEDULER] Running daily grading reminder check...")
		ProcessPendingGradingReminders()
	})

	c.Start()
	log.Println("[GRADING-SCHEDULER] Grading scheduler started - runs daily at 8 AM")
}

// ProcessPendingGradingReminders emails each instructor a digest of their
// submissions still waiting for grades
func ProcessPendingGradingReminders() {
	db := database.Database.Db

	type pendingRow struct {
		InstructorID uint
		CourseTitle  string
		Pending      int64
	}

	var rows []pendingRow
	if err := db.Model(&courseModels.ShortQuestionSubmission{}).
		Select("courses.instructor_id as instructor_id, courses.title as course_title, COUNT(*) as pending").
		Joins("JOIN courses ON courses.id = short_question_submissions.course_id").
		Where("short_question_submissions.status = ? AND short_question_submissions.is_deleted = ?", courseModels.SubmissionPending, false).
		Group("courses.instructor_id, courses.title").
		Scan(&rows).Error; err != nil {
		log.Printf("[GRADING-SCHEDULER] Error fetching pending submissions: %v", err)
		return
	}

	if len(rows) == 0 {
		log.Println("[GRADING-SCHEDULER] No pending submissions")
		return
	}

	// One digest per instructor
	digests := make(map[uint]string)
	for _, row := range rows {
		digests[row.InstructorID] += fmt.Sprintf("<li><strong>%s</strong>: %d submission(s) waiting</li>", row.CourseTitle, row.Pending)
	}

	for instructorID, items := range digests {
		var instructor models.User
		if err := db.Where("id = ? AND is_deleted = ?", instructorID, false).First(&instructor).Error; err != nil {
			log.Printf("[GRADING-SCHEDULER] Error fetching instructor %d: %v", instructorID, err)
			continue
		}

		SendGradingReminderEmail(instructor.Email, instructor.Name, items)
		log.Printf("[GRADING-SCHEDULER] Sent grading digest to %s", instructor.Email)
	}
}

// SendGradingReminderEmail sends the pending-grading digest to an instructor
func SendGradingReminderEmail(email, name, items string) {
	subject := "Submissions Waiting for Your Grades"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Students are waiting for feedback. The following courses have ungraded short question submissions:</p>
		<ul>%s</ul>
		<p>Login to your dashboard to grade them.</p>
	`, name, items)

	go SendEmail([]string{email}, subject, getEmailTemplate("Grading Reminder", body))
}
