package services

import (
	"context"
	"sync"
	"testing"

	"github.com/bugpredictor/database"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/utils"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
}

type stubPredictor struct {
	severity models.Severity
	err      error
	calls    []string
}

func (p *stubPredictor) Predict(_ context.Context, description string) (models.Severity, error) {
	p.calls = append(p.calls, description)
	return p.severity, p.err
}

type sentMail struct {
	To       string
	Subject  string
	Template string
	Data     map[string]string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(to, subject, template string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, _ := data.(map[string]string)
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Template: template, Data: d})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

const testPassword = "correct-horse"

func createProject(t *testing.T, name string) models.Project {
	t.Helper()
	p := models.Project{Name: name}
	require.NoError(t, database.DB.Create(&p).Error)
	return p
}

func createUser(t *testing.T, username string, role models.Role, project *models.Project) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword(testPassword)
	require.NoError(t, err)
	u := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		FullName: username,
		Role:     role,
		Verified: true,
	}
	if project != nil {
		u.ProjectID = &project.ID
	}
	require.NoError(t, database.DB.Create(&u).Error)
	return &u
}

func createBug(t *testing.T, title string, project models.Project, reporter *models.User, assignee *models.User) models.Bug {
	t.Helper()
	b := models.Bug{
		Title:         title,
		Description:   title + " description",
		Status:        models.StatusNew,
		Priority:      models.PriorityMedium,
		Severity:      models.SeverityNormal,
		IsPredicted:   true,
		ProjectID:     project.ID,
		SubmittedByID: reporter.ID,
	}
	if assignee != nil {
		b.AssignedToID = &assignee.ID
	}
	require.NoError(t, database.DB.Create(&b).Error)
	return b
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
