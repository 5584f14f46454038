package postgresql_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/domain/employee"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
	"github.com/yuadm/first-step-greet/internal/pkg/period"
	"github.com/yuadm/first-step-greet/internal/pkg/wizard"
	"github.com/yuadm/first-step-greet/internal/repository/postgresql"
)

// setupDB connects to TEST_DATABASE_URL, applies the schema and truncates
// every table. Tests skip when no database is configured.
func setupDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../../migrations/001_compliance.sql")
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = db.Exec(ctx, `TRUNCATE TABLE job_applications, form_drafts, employee_compliance_period_records,
		client_compliance_period_records, compliance_types, employees, clients, users, branches CASCADE`)
	require.NoError(t, err)

	return db
}

func seedEmployee(t *testing.T, db *database.DB, name, status string, branchID *string) string {
	t.Helper()
	var id string
	err := db.QueryRow(context.Background(),
		`INSERT INTO employees (full_name, employment_status, branch_id) VALUES ($1, $2, $3) RETURNING id`,
		name, status, branchID,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestComplianceTypeRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewComplianceTypeRepository(db)

	created, err := repo.Create(ctx, compliance.Type{
		Name:        "Supervision",
		Frequency:   period.FrequencyQuarterly,
		TargetTable: compliance.TargetEmployees,
		IsActive:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, period.FrequencyQuarterly, created.Frequency)

	_, err = repo.Create(ctx, compliance.Type{Name: "Supervision", Frequency: period.FrequencyAnnual, TargetTable: compliance.TargetEmployees})
	require.Error(t, err)

	created.IsActive = false
	require.NoError(t, repo.Update(ctx, created))

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, compliance.ErrTypeNotFound)
}

func TestComplianceRecordRepository_Upsert(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	types := postgresql.NewComplianceTypeRepository(db)
	records := postgresql.NewComplianceRecordRepository(db)

	ct, err := types.Create(ctx, compliance.Type{Name: "Spot check", Frequency: period.FrequencyMonthly, TargetTable: compliance.TargetEmployees, IsActive: true})
	require.NoError(t, err)
	empID := seedEmployee(t, db, "Ada", "active", nil)

	first, err := records.Upsert(ctx, compliance.TargetEmployees, compliance.Record{
		ComplianceTypeID: ct.ID,
		EntityID:         empID,
		PeriodIdentifier: "2025-03",
		Status:           "in progress",
	})
	require.NoError(t, err)

	done := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	second, err := records.Upsert(ctx, compliance.TargetEmployees, compliance.Record{
		ComplianceTypeID: ct.ID,
		EntityID:         empID,
		PeriodIdentifier: "2025-03",
		Status:           "completed",
		CompletionDate:   &done,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsCompleted())

	require.NoError(t, records.UpdateEvidence(ctx, compliance.TargetEmployees, second.ID, "compliance/x.pdf"))

	listed, err := records.List(ctx, compliance.TargetEmployees, ct.ID, compliance.RecordFilter{PeriodPrefix: "2025-"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].EvidencePath)
	assert.Equal(t, "compliance/x.pdf", *listed[0].EvidencePath)

	require.NoError(t, records.Delete(ctx, compliance.TargetEmployees, second.ID))
	err = records.Delete(ctx, compliance.TargetEmployees, second.ID)
	assert.ErrorIs(t, err, compliance.ErrRecordNotFound)
}

func TestEmployeeRepository_ListActiveOnly(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(db)

	seedEmployee(t, db, "Ada", "active", nil)
	seedEmployee(t, db, "Brook", "inactive", nil)

	active, err := repo.List(ctx, employee.Filter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ada", active[0].FullName)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	_, err := db.Exec(ctx, `INSERT INTO users (email, full_name, role) VALUES ('Manager@Example.com', 'Mia', 'manager')`)
	require.NoError(t, err)

	u, err := repo.GetByEmail(ctx, "manager@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, u.Role)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestFormDraftRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	store := postgresql.NewFormDraftRepository(db)

	var userID string
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO users (email, full_name) VALUES ('s@example.com', 'Sam') RETURNING id`).Scan(&userID))

	_, err := store.Load(ctx, userID, "spot_check")
	assert.ErrorIs(t, err, wizard.ErrDraftNotFound)

	require.NoError(t, store.Save(ctx, wizard.Draft{OwnerID: userID, FormKey: "spot_check", CurrentStep: 2, Data: json.RawMessage(`{"a":1}`)}))
	require.NoError(t, store.Save(ctx, wizard.Draft{OwnerID: userID, FormKey: "spot_check", CurrentStep: 3, Data: json.RawMessage(`{"a":2}`)}))

	d, err := store.Load(ctx, userID, "spot_check")
	require.NoError(t, err)
	assert.Equal(t, 3, d.CurrentStep)
	assert.JSONEq(t, `{"a":2}`, string(d.Data))

	require.NoError(t, store.Clear(ctx, userID, "spot_check"))
	require.NoError(t, store.Clear(ctx, userID, "spot_check"))
}

func TestJobApplicationRepository_Create(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := postgresql.NewJobApplicationRepository(db)

	var userID string
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO users (email, full_name) VALUES ('r@example.com', 'Ria') RETURNING id`).Scan(&userID))

	form := assessment.JobApplication{
		Personal: assessment.PersonalDetails{FullName: "Ada Lane", Email: "Ada@Example.com", Phone: "0700", PositionAppliedFor: "Care Worker"},
	}
	saved, err := repo.Create(ctx, assessment.NewApplication(userID, form))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, "ada@example.com", saved.Email)

	var position, status string
	var data []byte
	require.NoError(t, db.QueryRow(ctx, `SELECT position, status, data FROM job_applications WHERE id = $1`, saved.ID).Scan(&position, &status, &data))
	assert.Equal(t, "Care Worker", position)
	assert.Equal(t, assessment.ApplicationStatusReceived, status)

	var stored assessment.JobApplication
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, "Ada Lane", stored.Personal.FullName)
}

func TestTransactor_AfterCommitHooks(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(db)

	committed := 0
	require.NoError(t, tx.WithinTransaction(ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { committed++ })
		assert.Equal(t, 0, committed)
		return nil
	}))
	assert.Equal(t, 1, committed)

	rolledBack := 0
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { rolledBack++ })
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, rolledBack)
}

func TestTransactor_RollsBack(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(db)
	repo := postgresql.NewComplianceTypeRepository(db)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Create(ctx, compliance.Type{Name: "Rolled back", Frequency: period.FrequencyAnnual, TargetTable: compliance.TargetClients, IsActive: true})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, all)
}
