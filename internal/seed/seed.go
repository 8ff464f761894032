// Package seed holds the demo dataset the panel starts with: six employees,
// five jobs and five communications.
package seed

import (
	"time"

	"github.com/elecmate/commsdesk/internal/models"
)

// anchor is the "today" the demo communications were written against.
// Messages are rebased so the same day offsets apply to the caller's today.
var anchor = time.Date(2024, time.February, 13, 0, 0, 0, 0, time.UTC)

// Employees returns the demo team. passwordHash is set on every account so
// the team can log in during development.
func Employees(passwordHash string) []models.Employee {
	employees := []models.Employee{
		{ID: "1", Name: "James Wilson", Role: "Senior Electrician", TeamRole: models.RoleSupervisor, Status: "Active", Email: "james.wilson@example.com"},
		{ID: "2", Name: "Sarah Mitchell", Role: "Electrician", TeamRole: models.RoleOperative, Status: "Active", Email: "sarah.mitchell@example.com"},
		{ID: "3", Name: "David Brown", Role: "Apprentice", TeamRole: models.RoleApprentice, Status: "Active", Email: "david.brown@example.com"},
		{ID: "4", Name: "Emma Thompson", Role: "Senior Electrician", TeamRole: models.RoleSupervisor, Status: "On Leave", Email: "emma.thompson@example.com"},
		{ID: "5", Name: "Michael Chen", Role: "Electrician", TeamRole: models.RoleOperative, Status: "Active", Email: "michael.chen@example.com"},
		{ID: "6", Name: "Lisa Parker", Role: "Project Manager", TeamRole: models.RoleQS, Status: "Active", Email: "lisa.parker@example.com"},
	}
	for i := range employees {
		employees[i].PasswordHash = passwordHash
	}
	return employees
}

func Jobs() []models.Job {
	return []models.Job{
		{ID: "1", Title: "Commercial Rewiring", Client: "Tesco Express", Status: "Active"},
		{ID: "2", Title: "New Build Installation", Client: "Barratt Homes", Status: "Active"},
		{ID: "3", Title: "Office Lighting Upgrade", Client: "WeWork", Status: "Pending"},
		{ID: "4", Title: "EV Charging Points", Client: "NCP Car Parks", Status: "Completed"},
		{ID: "5", Title: "Factory Maintenance", Client: "JCB Ltd", Status: "Active"},
	}
}

// Messages returns the demo communications with dates shifted so that the
// newest ones land on today.
func Messages(today time.Time) []models.Message {
	job := func(s string) *string { return &s }
	all := []string{"1", "2", "3", "4", "5", "6"}

	msgs := []models.Message{
		{
			ID: "COMM-001", Type: models.TypeJobMessage,
			Title: "Materials delivery update", Body: "Cable delivery confirmed for tomorrow 8am at Tesco site.",
			Sender: "Lisa Parker", Recipients: []string{"1", "2", "5"}, Job: job("Commercial Rewiring"),
			Date: "2024-02-13", Time: "14:30", ReadBy: []string{"1", "2"}, Priority: models.PriorityNormal,
		},
		{
			ID: "COMM-002", Type: models.TypeSafetyWarning,
			Title: "Weather Alert - High Winds", Body: "Met Office amber warning for high winds. Review working at height activities.",
			Sender: "System", Recipients: all,
			Date: "2024-02-13", Time: "10:00", ReadBy: []string{"1", "4", "6"}, Priority: models.PriorityHigh,
		},
		{
			ID: "COMM-003", Type: models.TypeTeamBroadcast,
			Title: "Monthly Safety Meeting", Body: "Reminder: Monthly safety meeting this Friday at 08:00 in the office.",
			Sender: "Lisa Parker", Recipients: all,
			Date: "2024-02-12", Time: "16:00", ReadBy: []string{"1", "2", "3", "4", "5", "6"}, Priority: models.PriorityNormal,
		},
		{
			ID: "COMM-004", Type: models.TypeMandatoryReading,
			Title: "Updated Risk Assessment Procedure", Body: "Please review and sign off the updated risk assessment procedure by Friday.",
			Sender: "Lisa Parker", Recipients: all,
			Date: "2024-02-11", Time: "09:00", ReadBy: []string{"1", "4"}, SignedOffBy: []string{"1"}, Priority: models.PriorityHigh,
		},
		{
			ID: "COMM-005", Type: models.TypeJobMessage,
			Title: "Client meeting confirmed", Body: "Site meeting with Barratt Homes PM confirmed for Thursday 10am.",
			Sender: "Lisa Parker", Recipients: []string{"1", "4", "6"}, Job: job("New Build Installation"),
			Date: "2024-02-13", Time: "11:15", ReadBy: []string{"1", "6"}, Priority: models.PriorityNormal,
		},
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	shift := int(day.Sub(anchor).Hours() / 24)
	for i := range msgs {
		msgs[i].Status = models.StatusSent
		d, err := time.Parse(models.DateLayout, msgs[i].Date)
		if err != nil {
			continue
		}
		msgs[i].Date = d.AddDate(0, 0, shift).Format(models.DateLayout)
	}
	return msgs
}
