// internal/roster/store.go
package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"ac-dispatch-workers/internal/common/errors"
	"ac-dispatch-workers/internal/common/logger"
	"ac-dispatch-workers/internal/matching"
	"ac-dispatch-workers/internal/models"
)

const (
	profileKeyPrefix = "technician:profile:"

	accountColumns = `id, display_name, email, phone, role, metadata`

	selectAccountQuery = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	selectTechniciansQuery = `SELECT ` + accountColumns + ` FROM accounts
		WHERE role = 'technician' ORDER BY id`

	selectTechniciansByIDQuery = `SELECT ` + accountColumns + ` FROM accounts
		WHERE role = 'technician' AND id = ANY($1) ORDER BY id`

	selectJobQuery = `SELECT id, customer_id, required_skills, service_area, complexity,
		emergency, requires_vehicle, status, assigned_technician_id
		FROM service_jobs WHERE id = $1`
)

type Options struct {
	CacheTTL             time.Duration
	DefaultMaxJobsPerDay int
}

// Store reads technicians and service jobs from Postgres, caching single
// technician profiles in Redis. A nil Redis client disables the cache.
type Store struct {
	db     *sql.DB
	redis  *redis.Client
	opts   Options
	logger logger.Logger
}

func NewStore(db *sql.DB, redisClient *redis.Client, opts Options, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  redisClient,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "roster"}),
	}
}

func ProfileKey(technicianID string) string {
	return profileKeyPrefix + technicianID
}

// GetTechnician loads one technician. Accounts with any other role are
// reported as not found.
func (s *Store) GetTechnician(ctx context.Context, technicianID string) (matching.TechnicianProfile, error) {
	if tech, ok := s.cached(ctx, technicianID); ok {
		return tech, nil
	}

	row := s.db.QueryRowContext(ctx, selectAccountQuery, technicianID)
	rec, err := scanAccount(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return matching.TechnicianProfile{}, errors.NewTechnicianNotFoundError(technicianID)
		}
		return matching.TechnicianProfile{}, loadError(err)
	}

	tech, err := s.toTechnician(rec)
	if err != nil {
		return matching.TechnicianProfile{}, err
	}

	s.cache(ctx, tech)
	return tech, nil
}

// ListTechnicians loads every technician account, or only those in ids when
// ids is non-empty. Records that fail to decode are skipped.
func (s *Store) ListTechnicians(ctx context.Context, ids []string) ([]matching.TechnicianProfile, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(ids) == 0 {
		rows, err = s.db.QueryContext(ctx, selectTechniciansQuery)
	} else {
		rows, err = s.db.QueryContext(ctx, selectTechniciansByIDQuery, pq.Array(ids))
	}
	if err != nil {
		return nil, loadError(err)
	}
	defer rows.Close()

	techs := make([]matching.TechnicianProfile, 0)
	for rows.Next() {
		rec, err := scanAccount(rows)
		if err != nil {
			return nil, loadError(err)
		}
		tech, err := s.toTechnician(rec)
		if err != nil {
			s.logger.Warn("skipping technician record", map[string]interface{}{
				"technicianId": rec.id,
				"error":        err.Error(),
			})
			continue
		}
		techs = append(techs, tech)
	}
	if err := rows.Err(); err != nil {
		return nil, loadError(err)
	}

	return techs, nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (models.ServiceJob, error) {
	var (
		job        models.ServiceJob
		skills     []byte
		complexity sql.NullString
		status     sql.NullString
		assignedTo sql.NullString
	)
	err := s.db.QueryRowContext(ctx, selectJobQuery, jobID).Scan(
		&job.ID, &job.CustomerID, &skills, &job.ServiceArea, &complexity,
		&job.Emergency, &job.RequiresVehicle, &status, &assignedTo,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.ServiceJob{}, errors.NewJobNotFoundError(jobID)
		}
		return models.ServiceJob{}, loadError(err)
	}

	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &job.RequiredSkills); err != nil {
			return models.ServiceJob{}, errors.NewInvalidJobRequirementsError(
				fmt.Sprintf("job %s: required_skills: %v", jobID, err))
		}
	}
	job.Complexity = matching.Complexity(complexity.String)
	job.Status = models.JobStatus(status.String)
	job.AssignedTechnicianID = assignedTo.String

	return job, nil
}

// Invalidate drops the cached profile after the technician's record changed.
func (s *Store) Invalidate(ctx context.Context, technicianID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, ProfileKey(technicianID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate technician cache", map[string]interface{}{
			"technicianId": technicianID,
			"error":        err.Error(),
		})
	}
}

func (s *Store) cached(ctx context.Context, technicianID string) (matching.TechnicianProfile, bool) {
	if s.redis == nil {
		return matching.TechnicianProfile{}, false
	}
	val, err := s.redis.Get(ctx, ProfileKey(technicianID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("technician cache read failed", map[string]interface{}{
				"technicianId": technicianID,
				"error":        err.Error(),
			})
		}
		return matching.TechnicianProfile{}, false
	}
	var tech matching.TechnicianProfile
	if err := json.Unmarshal([]byte(val), &tech); err != nil {
		return matching.TechnicianProfile{}, false
	}
	return tech, true
}

func (s *Store) cache(ctx context.Context, tech matching.TechnicianProfile) {
	if s.redis == nil || s.opts.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(tech)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, ProfileKey(tech.ID), data, s.opts.CacheTTL).Err(); err != nil {
		s.logger.Debug("technician cache write failed", map[string]interface{}{
			"technicianId": tech.ID,
			"error":        err.Error(),
		})
	}
}

type accountRecord struct {
	id          string
	displayName string
	email       sql.NullString
	phone       sql.NullString
	role        string
	metadata    []byte
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row scanner) (accountRecord, error) {
	var rec accountRecord
	err := row.Scan(&rec.id, &rec.displayName, &rec.email, &rec.phone, &rec.role, &rec.metadata)
	return rec, err
}

func (s *Store) toTechnician(rec accountRecord) (matching.TechnicianProfile, error) {
	tech, err := DecodeTechnician(rec.id, rec.role, rec.metadata, s.opts.DefaultMaxJobsPerDay)
	if err != nil {
		return matching.TechnicianProfile{}, err
	}
	tech.DisplayName = rec.displayName
	tech.Contact = matching.Contact{Email: rec.email.String, Phone: rec.phone.String}
	return tech, nil
}

// DecodeTechnician builds the engine view of an account row from its role and
// metadata. Non-technician accounts are reported as not found, and defaultMax
// applies when the metadata has no maxJobsPerDay.
func DecodeTechnician(id, role string, metadata []byte, defaultMax int) (matching.TechnicianProfile, error) {
	profile, err := models.DecodeProfile(models.Role(role), metadata)
	if err != nil {
		return matching.TechnicianProfile{}, errors.NewRosterLoadFailedError(err).
			WithMetadata("technicianId", id)
	}

	account := models.Account{ID: id, Profile: profile}
	tech, ok := account.Technician()
	if !ok {
		return matching.TechnicianProfile{}, errors.NewTechnicianNotFoundError(id).
			WithMetadata("role", role)
	}

	if !hasMaxJobs(metadata) {
		tech.MaxJobsPerDay = defaultMax
	}
	return tech, nil
}

// hasMaxJobs reports whether the record sets maxJobsPerDay explicitly. An
// explicit zero is kept.
func hasMaxJobs(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	var probe struct {
		MaxJobsPerDay *int `json:"maxJobsPerDay"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.MaxJobsPerDay != nil
}

// DecodeInline decodes technicians passed directly in job variables, applying
// defaultMax where maxJobsPerDay is absent.
func DecodeInline(raw []json.RawMessage, defaultMax int) ([]matching.TechnicianProfile, error) {
	techs := make([]matching.TechnicianProfile, 0, len(raw))
	for i, r := range raw {
		var tech matching.TechnicianProfile
		if err := json.Unmarshal(r, &tech); err != nil {
			return nil, errors.NewInvalidJobRequirementsError(fmt.Sprintf("technicians[%d]: %v", i, err))
		}
		if !hasMaxJobs(r) {
			tech.MaxJobsPerDay = defaultMax
		}
		techs = append(techs, tech)
	}
	return techs, nil
}

func loadError(err error) *errors.StandardError {
	return errors.FromContext(err,
		func() *errors.StandardError { return errors.NewQueryTimeoutError("roster") },
		errors.NewRosterLoadFailedError,
	)
}
