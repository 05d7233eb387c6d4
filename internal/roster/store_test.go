package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
)

const seniorMetadata = `{"skills":["ac_installation","ac_repair"],"serviceAreas":["Dubai Marina"],` +
	`"availabilityStatus":"available","level":"senior","yearsOfExperience":6,` +
	`"currentJobIds":["job-9"],"maxJobsPerDay":4}`

var accountCols = []string{"id", "display_name", "email", "phone", "role", "metadata"}

func newStore(t *testing.T, db *sql.DB, rc *redis.Client) *Store {
	return NewStore(db, rc, Options{CacheTTL: time.Minute, DefaultMaxJobsPerDay: 4}, logger.NewTestLogger(t))
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGetTechnician_CacheMissThenHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, rc := newMiniredis(t)
	store := newStore(t, db, rc)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, display_name, email, phone, role, metadata FROM accounts WHERE id = \$1`).
		WithArgs("tech-1").
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow("tech-1", "Omar Haddad", "omar@example.com", "+971500000001", "technician", []byte(seniorMetadata)))

	tech, err := store.GetTechnician(ctx, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, "tech-1", tech.ID)
	assert.Equal(t, "Omar Haddad", tech.DisplayName)
	assert.Equal(t, "+971500000001", tech.Contact.Phone)
	assert.Equal(t, []matching.Skill{matching.SkillACInstallation, matching.SkillACRepair}, tech.Skills)
	assert.Equal(t, matching.LevelSenior, tech.Level)
	assert.Equal(t, 4, tech.MaxJobsPerDay)
	assert.True(t, mr.Exists(ProfileKey("tech-1")))

	// Served from Redis: no further query is expected.
	again, err := store.GetTechnician(ctx, "tech-1")
	require.NoError(t, err)
	assert.Equal(t, tech, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTechnician_CacheHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rc, redisMock := redismock.NewClientMock()
	cached := matching.TechnicianProfile{ID: "tech-2", AvailabilityStatus: matching.StatusAvailable, MaxJobsPerDay: 3}
	data, _ := json.Marshal(cached)
	redisMock.ExpectGet(ProfileKey("tech-2")).SetVal(string(data))

	tech, err := newStore(t, db, rc).GetTechnician(context.Background(), "tech-2")
	require.NoError(t, err)
	assert.Equal(t, cached, tech)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTechnician_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM accounts WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(accountCols))

	_, err = newStore(t, db, nil).GetTechnician(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTechnicianNotFound))
}

func TestGetTechnician_CustomerRecordIsNotATechnician(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM accounts WHERE id = \$1`).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow("cust-1", "Layla", "layla@example.com", nil, "customer", []byte(`{"city":"Dubai"}`)))

	_, err = newStore(t, db, nil).GetTechnician(context.Background(), "cust-1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTechnicianNotFound))

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, "customer", stdErr.Metadata["role"])
}

func TestGetTechnician_DatabaseErrorIsRetryable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM accounts WHERE id = \$1`).
		WithArgs("tech-1").
		WillReturnError(stderrors.New("connection reset by peer"))

	_, err = newStore(t, db, nil).GetTechnician(context.Background(), "tech-1")
	require.Error(t, err)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeRosterLoadFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestGetTechnician_MaxJobsDefault(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		expected int
	}{
		{"absent uses default", `{"availabilityStatus":"available"}`, 4},
		{"explicit zero is kept", `{"availabilityStatus":"available","maxJobsPerDay":0}`, 0},
		{"explicit value is kept", `{"maxJobsPerDay":7}`, 7},
		{"no metadata uses default", ``, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			var md interface{}
			if tt.metadata != "" {
				md = []byte(tt.metadata)
			}
			mock.ExpectQuery(`FROM accounts WHERE id = \$1`).
				WithArgs("tech-1").
				WillReturnRows(sqlmock.NewRows(accountCols).
					AddRow("tech-1", "Omar", nil, nil, "technician", md))

			tech, err := newStore(t, db, nil).GetTechnician(context.Background(), "tech-1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tech.MaxJobsPerDay)
		})
	}
}

func TestListTechnicians(t *testing.T) {
	t.Run("all technicians, skipping broken records", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM accounts WHERE role = 'technician' ORDER BY id`).
			WillReturnRows(sqlmock.NewRows(accountCols).
				AddRow("tech-1", "Omar", nil, nil, "technician", []byte(seniorMetadata)).
				AddRow("tech-2", "Broken", nil, nil, "technician", []byte(`{not json`)).
				AddRow("tech-3", "Sara", nil, nil, "technician", []byte(`{"availabilityStatus":"busy"}`)))

		techs, err := newStore(t, db, nil).ListTechnicians(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, techs, 2)
		assert.Equal(t, "tech-1", techs[0].ID)
		assert.Equal(t, "tech-3", techs[1].ID)
		assert.Equal(t, 4, techs[1].MaxJobsPerDay)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("restricted to ids", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ids := []string{"tech-1", "tech-9"}
		mock.ExpectQuery(`AND id = ANY\(\$1\) ORDER BY id`).
			WithArgs(pq.Array(ids)).
			WillReturnRows(sqlmock.NewRows(accountCols).
				AddRow("tech-1", "Omar", nil, nil, "technician", []byte(seniorMetadata)))

		techs, err := newStore(t, db, nil).ListTechnicians(context.Background(), ids)
		require.NoError(t, err)
		require.Len(t, techs, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty roster is not an error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM accounts WHERE role = 'technician'`).
			WillReturnRows(sqlmock.NewRows(accountCols))

		techs, err := newStore(t, db, nil).ListTechnicians(context.Background(), nil)
		require.NoError(t, err)
		assert.NotNil(t, techs)
		assert.Empty(t, techs)
	})
}

func TestGetJob(t *testing.T) {
	jobCols := []string{"id", "customer_id", "required_skills", "service_area", "complexity",
		"emergency", "requires_vehicle", "status", "assigned_technician_id"}

	t.Run("decodes requirements", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM service_jobs WHERE id = \$1`).
			WithArgs("job-1").
			WillReturnRows(sqlmock.NewRows(jobCols).
				AddRow("job-1", "cust-1", []byte(`["ac_repair","gas_refill"]`), "JLT", "complex",
					true, false, "pending", nil))

		job, err := newStore(t, db, nil).GetJob(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusPending, job.Status)
		assert.Empty(t, job.AssignedTechnicianID)

		req := job.Requirements()
		assert.Equal(t, []matching.Skill{matching.SkillACRepair, matching.SkillGasRefill}, req.RequiredSkills)
		assert.Equal(t, "JLT", req.ServiceArea)
		assert.Equal(t, matching.ComplexityComplex, req.Complexity)
		assert.True(t, req.Emergency)
	})

	t.Run("missing job", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM service_jobs WHERE id = \$1`).
			WithArgs("job-x").
			WillReturnRows(sqlmock.NewRows(jobCols))

		_, err = newStore(t, db, nil).GetJob(context.Background(), "job-x")
		assert.True(t, errors.HasCode(err, errors.ErrCodeJobNotFound))
	})
}

func TestInvalidate(t *testing.T) {
	mr, rc := newMiniredis(t)
	require.NoError(t, mr.Set(ProfileKey("tech-1"), `{"id":"tech-1"}`))

	newStore(t, nil, rc).Invalidate(context.Background(), "tech-1")
	assert.False(t, mr.Exists(ProfileKey("tech-1")))

	assert.NotPanics(t, func() {
		newStore(t, nil, nil).Invalidate(context.Background(), "tech-1")
	})
}

func TestDecodeInline(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"id":"a","availabilityStatus":"available"}`),
		json.RawMessage(`{"id":"b","maxJobsPerDay":0}`),
	}

	techs, err := DecodeInline(raw, 4)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, 4, techs[0].MaxJobsPerDay)
	assert.Equal(t, 0, techs[1].MaxJobsPerDay)

	_, err = DecodeInline([]json.RawMessage{json.RawMessage(`[]`)}, 4)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJobRequirements))
}
