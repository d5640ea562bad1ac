package email

const (
	subjectFollowUpReminderFmt = "Follow-up due: %s"
)
