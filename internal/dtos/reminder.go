package dtos

// ReminderSweepResults summarizes one pass over incomplete onboardings.
type ReminderSweepResults struct {
	Processed         int `json:"processed"`
	Day1RemindersSent int `json:"day1_reminders_sent"`
	Day3RemindersSent int `json:"day3_reminders_sent"`
	Errors            int `json:"errors"`
}

type ReminderSweepResponse struct {
	Success bool                 `json:"success"`
	Results ReminderSweepResults `json:"results"`
}
