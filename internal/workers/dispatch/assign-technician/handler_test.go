package assigntechnician

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/roster"
)

const (
	lockJobPattern     = `SELECT status, assigned_technician_id, assignment_id, assigned_at FROM service_jobs WHERE id = \$1 FOR UPDATE`
	lockAccountPattern = `SELECT role, metadata FROM accounts WHERE id = \$1 FOR UPDATE`
)

var (
	fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	jobCols  = []string{"status", "assigned_technician_id", "assignment_id", "assigned_at"}
	techCols = []string{"role", "metadata"}
)

type testEnv struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	redis   *miniredis.Miniredis
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	log := logger.NewTestLogger(t)
	store := roster.NewStore(db, redis.NewClient(&redis.Options{Addr: mr.Addr()}), roster.Options{CacheTTL: time.Minute}, log)

	h := NewHandler(DefaultConfig(), db, store, nil, log)
	h.now = func() time.Time { return fixedNow }
	return &testEnv{handler: h, mock: mock, redis: mr}
}

func TestHandler_Execute_Assigns(t *testing.T) {
	env := setup(t)
	require.NoError(t, env.redis.Set(roster.ProfileKey("tech-1"), `{"id":"tech-1"}`))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(lockJobPattern).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow("pending", nil, nil, nil))
	env.mock.ExpectQuery(lockAccountPattern).
		WithArgs("tech-1").
		WillReturnRows(sqlmock.NewRows(techCols).
			AddRow("technician", []byte(`{"availabilityStatus":"available","currentJobIds":["job-0"],"maxJobsPerDay":3}`)))
	env.mock.ExpectExec(`UPDATE service_jobs SET status = 'assigned'`).
		WithArgs("job-1", "tech-1", sqlmock.AnyArg(), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec(`UPDATE accounts SET metadata = jsonb_set(.+)COALESCE\(NULLIF\(metadata->'currentJobIds', 'null'::jsonb\), '\[\]'::jsonb\)`).
		WithArgs("tech-1", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	output, err := env.handler.Execute(context.Background(), &Input{JobID: "job-1", TechnicianID: "tech-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, output.AssignmentID)
	assert.Equal(t, "assigned", output.Status)
	assert.Equal(t, fixedNow, output.AssignedAt)
	assert.Equal(t, 2, output.CurrentJobCount)
	assert.False(t, output.AlreadyAssigned)
	assert.False(t, env.redis.Exists(roster.ProfileKey("tech-1")), "profile cache is invalidated")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_Execute_Redelivery(t *testing.T) {
	env := setup(t)
	require.NoError(t, env.redis.Set(roster.ProfileKey("tech-1"), `{"id":"tech-1"}`))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(lockJobPattern).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow("assigned", "tech-1", "asg-1", fixedNow))
	env.mock.ExpectCommit()

	output, err := env.handler.Execute(context.Background(), &Input{JobID: "job-1", TechnicianID: "tech-1"})
	require.NoError(t, err)
	assert.True(t, output.AlreadyAssigned)
	assert.Equal(t, "asg-1", output.AssignmentID)
	assert.True(t, env.redis.Exists(roster.ProfileKey("tech-1")))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_Execute_RedeliveryKeepsJobStatus(t *testing.T) {
	env := setup(t)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(lockJobPattern).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow("in_progress", "tech-1", "asg-1", fixedNow))
	env.mock.ExpectCommit()

	output, err := env.handler.Execute(context.Background(), &Input{JobID: "job-1", TechnicianID: "tech-1"})
	require.NoError(t, err)
	assert.True(t, output.AlreadyAssigned)
	assert.Equal(t, "in_progress", output.Status)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_Execute_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		jobRow   []driver.Value
		techRow  []driver.Value
		expected errors.ErrorCode
	}{
		{
			name:     "job assigned to someone else",
			jobRow:   []driver.Value{"assigned", "tech-9", "asg-9", fixedNow},
			expected: errors.ErrCodeJobAlreadyAssigned,
		},
		{
			name:     "technician offline",
			jobRow:   []driver.Value{"pending", nil, nil, nil},
			techRow:  []driver.Value{"technician", []byte(`{"availabilityStatus":"offline","maxJobsPerDay":3}`)},
			expected: errors.ErrCodeTechnicianOffline,
		},
		{
			name:     "technician at capacity",
			jobRow:   []driver.Value{"pending", nil, nil, nil},
			techRow:  []driver.Value{"technician", []byte(`{"availabilityStatus":"busy","currentJobIds":["a","b"],"maxJobsPerDay":2}`)},
			expected: errors.ErrCodeTechnicianAtCapacity,
		},
		{
			name:     "completed job held by the same technician",
			jobRow:   []driver.Value{"completed", "tech-1", "asg-1", fixedNow},
			expected: "BUSINESS_RULE_VIOLATION",
		},
		{
			name:     "customer account",
			jobRow:   []driver.Value{"pending", nil, nil, nil},
			techRow:  []driver.Value{"customer", []byte(`{}`)},
			expected: errors.ErrCodeTechnicianNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t)

			env.mock.ExpectBegin()
			env.mock.ExpectQuery(lockJobPattern).
				WithArgs("job-1").
				WillReturnRows(sqlmock.NewRows(jobCols).AddRow(tt.jobRow...))
			if tt.techRow != nil {
				env.mock.ExpectQuery(lockAccountPattern).
					WithArgs("tech-1").
					WillReturnRows(sqlmock.NewRows(techCols).AddRow(tt.techRow...))
			}
			env.mock.ExpectRollback()

			_, err := env.handler.Execute(context.Background(), &Input{JobID: "job-1", TechnicianID: "tech-1"})
			require.Error(t, err)
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expected, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			assert.NoError(t, env.mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_MissingRows(t *testing.T) {
	t.Run("job", func(t *testing.T) {
		env := setup(t)
		env.mock.ExpectBegin()
		env.mock.ExpectQuery(lockJobPattern).WithArgs("job-x").WillReturnError(sql.ErrNoRows)
		env.mock.ExpectRollback()

		_, err := env.handler.Execute(context.Background(), &Input{JobID: "job-x", TechnicianID: "tech-1"})
		assert.True(t, errors.HasCode(err, errors.ErrCodeJobNotFound))
	})

	t.Run("technician", func(t *testing.T) {
		env := setup(t)
		env.mock.ExpectBegin()
		env.mock.ExpectQuery(lockJobPattern).
			WithArgs("job-1").
			WillReturnRows(sqlmock.NewRows(jobCols).AddRow("pending", nil, nil, nil))
		env.mock.ExpectQuery(lockAccountPattern).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
		env.mock.ExpectRollback()

		_, err := env.handler.Execute(context.Background(), &Input{JobID: "job-1", TechnicianID: "ghost"})
		assert.True(t, errors.HasCode(err, errors.ErrCodeTechnicianNotFound))
	})
}

func TestHandler_Execute_WriteFailureIsRetryable(t *testing.T) {
	env := setup(t)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(lockJobPattern).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(jobCols).AddRow("pending", nil, nil, nil))
	env.mock.ExpectQuery(lockAccountPattern).
		WithArgs("tech-1").
		WillReturnRows(sqlmock.NewRows(techCols).AddRow("technician", []byte(`{"availabilityStatus":"available"}`)))
	env.mock.ExpectExec(`UPDATE service_jobs`).
		WillReturnError(stderrors.New("deadlock detected"))
	env.mock.ExpectRollback()

	_, err := env.handler.Execute(context.Background(), &Input{JobID: "job-1", TechnicianID: "tech-1"})
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAssignmentFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "deadlock detected")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHandler_ParseInput(t *testing.T) {
	env := setup(t)

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"jobId":"job-1","technicianId":"tech-1"}`}}
	input, err := env.handler.parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, "tech-1", input.TechnicianID)

	// An empty ranking leaves topTechnicianId blank.
	job = entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2, Variables: `{"jobId":"job-1","technicianId":""}`}}
	_, err = env.handler.parseInput(job)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJobRequirements))
}
