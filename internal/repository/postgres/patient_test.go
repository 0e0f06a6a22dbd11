package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

func TestPatientRepositoryListAppliesScope(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

	// Patient scope renders as a username equality filter.
	mock.ExpectQuery(`SELECT username, name, birthdate\s+FROM patients\s+WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "name", "birthdate"}).
			AddRow("alice", "Alice Jones", birth))

	patients, err := repo.List(context.Background(), policy.Scope{Patient: "alice"})
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "alice", patients[0].Username)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryListUnrestricted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	mock.ExpectQuery(`SELECT username, name, birthdate\s+FROM patients\s+WHERE TRUE`).
		WillReturnRows(sqlmock.NewRows([]string{"username", "name", "birthdate"}).
			AddRow("alice", "Alice Jones", time.Now()).
			AddRow("bob", "Bob Smith", time.Now()))

	patients, err := repo.List(context.Background(), policy.Scope{All: true})
	require.NoError(t, err)
	assert.Len(t, patients, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryGetScopedOutIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	// The row exists for someone else; the scope filter excludes it, and
	// the caller cannot tell that from plain absence.
	mock.ExpectQuery(`WHERE username = \$1 AND username = \$2`).
		WithArgs("bob", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "name", "birthdate"}))

	_, err := repo.Get(context.Background(), "bob", policy.Scope{Patient: "alice"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryDoctorScopeUsesRelationship(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	mock.ExpectQuery(`WHERE username IN \(SELECT patient_id FROM diagnosis WHERE doctor_id = \$1\)`).
		WithArgs("drew").
		WillReturnRows(sqlmock.NewRows([]string{"username", "name", "birthdate"}).
			AddRow("alice", "Alice Jones", time.Now()))

	patients, err := repo.List(context.Background(), policy.Scope{Doctor: "drew"})
	require.NoError(t, err)
	assert.Len(t, patients, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	mock.ExpectQuery(`INSERT INTO patients`).
		WithArgs("alice", "Alice Jones", sqlmock.AnyArg()).
		WillReturnError(errDuplicateRow())

	_, err := repo.Create(context.Background(), &model.PatientCreate{
		Username:  "alice",
		Name:      "Alice Jones",
		BirthDate: time.Now(),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientRepositoryDeleteDenyScope(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPatientRepository(NewBaseRepository(db))

	mock.ExpectExec(`DELETE FROM patients WHERE username = \$1 AND FALSE`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "alice", policy.Scope{Deny: true})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
