package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/pkg/hasher"
)

// Bootstrap creates the schema, the database roles the per-account grants
// attach to, the row-level security policies, and optionally the fixture
// accounts. Every statement is idempotent so it is safe to run on each
// startup.
func Bootstrap(ctx context.Context, db *sqlx.DB, h hasher.PasswordHasher, seedTestUsers bool) error {
	statements := []string{
		patientsTable,
		doctorsTable,
		diagnosisTable,
		appointmentsTable,
		filesTable,
		usersTable,
		rolesSQL,
		grantsSQL,
		rlsCoreSQL,
		rlsAppointmentsSQL,
		rlsFilesSQL,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap statement failed: %w", err)
		}
	}

	if seedTestUsers {
		if err := seedFixtureUsers(ctx, db, h); err != nil {
			return err
		}
	}

	return nil
}

// seedFixtureUsers inserts the development accounts. Existing rows are
// left alone so repeated startups do not rotate their hashes.
func seedFixtureUsers(ctx context.Context, db *sqlx.DB, h hasher.PasswordHasher) error {
	fixtures := []struct {
		username string
		password string
		role     model.Role
	}{
		{"test_patient", "pass123", model.RolePatient},
		{"test_doctor", "pass123", model.RoleDoctor},
		{"test_admin", "pass123", model.RoleAdmin},
	}

	for _, f := range fixtures {
		digest, err := h.Hash(f.password)
		if err != nil {
			return fmt.Errorf("failed to hash fixture password: %w", err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO users (username, hashed_password, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (username) DO NOTHING
		`, f.username, digest, f.role); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", f.username, err)
		}
	}

	return nil
}

const patientsTable = `
CREATE TABLE IF NOT EXISTS patients (
	username VARCHAR(50) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	birthdate DATE NOT NULL
)`

const doctorsTable = `
CREATE TABLE IF NOT EXISTS doctors (
	username VARCHAR(50) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	specialty VARCHAR(100)
)`

const diagnosisTable = `
CREATE TABLE IF NOT EXISTS diagnosis (
	id_diagnosis SERIAL PRIMARY KEY,
	diagnosis_date DATE NOT NULL,
	icd VARCHAR(7),
	description TEXT,
	patient_id VARCHAR(50) NOT NULL REFERENCES patients(username) ON DELETE CASCADE,
	doctor_id VARCHAR(50) REFERENCES doctors(username) ON DELETE SET NULL
)`

const appointmentsTable = `
CREATE TABLE IF NOT EXISTS appointments (
	id_appointment SERIAL PRIMARY KEY,
	appointment_date TIMESTAMP NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'scheduled',
	reason TEXT,
	patient_id VARCHAR(50) NOT NULL REFERENCES patients(username) ON DELETE CASCADE,
	doctor_id VARCHAR(50) REFERENCES doctors(username) ON DELETE SET NULL
)`

const filesTable = `
CREATE TABLE IF NOT EXISTS files (
	id_file SERIAL PRIMARY KEY,
	file_name VARCHAR(255) NOT NULL,
	original_name VARCHAR(255),
	url TEXT NOT NULL,
	mime_type VARCHAR(100),
	uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	patient_id VARCHAR(50) NOT NULL REFERENCES patients(username) ON DELETE CASCADE,
	doctor_id VARCHAR(50) REFERENCES doctors(username) ON DELETE SET NULL,
	diagnosis_id INTEGER REFERENCES diagnosis(id_diagnosis) ON DELETE CASCADE,
	appointment_id INTEGER REFERENCES appointments(id_appointment) ON DELETE CASCADE
)`

const usersTable = `
CREATE TABLE IF NOT EXISTS users (
	username VARCHAR(50) PRIMARY KEY,
	hashed_password TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('patient', 'doctor', 'admin')),
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// rolesSQL creates the group roles that CreateWithGrants attaches
// per-account roles to.
const rolesSQL = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = 'patient') THEN
		CREATE ROLE patient;
	END IF;

	IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = 'doctor') THEN
		CREATE ROLE doctor;
	END IF;

	IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = 'admin') THEN
		CREATE ROLE admin;
	END IF;

	IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = 'anonymous') THEN
		CREATE ROLE anonymous;
	END IF;
END $$`

const grantsSQL = `
GRANT SELECT ON ALL TABLES IN SCHEMA public TO patient;
GRANT SELECT ON ALL TABLES IN SCHEMA public TO doctor;
GRANT SELECT ON ALL TABLES IN SCHEMA public TO admin`

// The RLS policies duplicate the row scopes the application enforces.
// They only matter for sessions that SET ROLE to an account role, but
// keeping them in the schema means a direct database connection sees the
// same rows the API would serve.
const rlsCoreSQL = `
ALTER TABLE patients ENABLE ROW LEVEL SECURITY;
ALTER TABLE doctors ENABLE ROW LEVEL SECURITY;
ALTER TABLE diagnosis ENABLE ROW LEVEL SECURITY;

DO $$
BEGIN
	BEGIN
		CREATE POLICY patients_patient ON patients
			FOR SELECT TO patient
			USING (username = current_user);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY diagnosis_patient ON diagnosis
			FOR SELECT TO patient
			USING (patient_id = current_user);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY doctors_patient ON doctors
			FOR SELECT TO patient
			USING (
				username IN (SELECT doctor_id FROM diagnosis WHERE patient_id = current_user)
			);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY diagnosis_doctor ON diagnosis
			FOR SELECT TO doctor
			USING (doctor_id = current_user);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY patients_doctor ON patients
			FOR SELECT TO doctor
			USING (
				username IN (SELECT patient_id FROM diagnosis WHERE doctor_id = current_user)
			);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY diagnosis_anonymous ON diagnosis
			FOR SELECT TO anonymous
			USING (false);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;
END $$`

const rlsAppointmentsSQL = `
ALTER TABLE appointments ENABLE ROW LEVEL SECURITY;

DO $$
BEGIN
	BEGIN
		CREATE POLICY appointments_patient_select ON appointments
			FOR SELECT TO patient
			USING (patient_id = current_user);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY appointments_doctor_select ON appointments
			FOR SELECT TO doctor
			USING (doctor_id = current_user);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY appointments_anonymous_noaccess ON appointments
			FOR SELECT TO anonymous
			USING (false);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;
END $$`

const rlsFilesSQL = `
ALTER TABLE files ENABLE ROW LEVEL SECURITY;

DO $$
BEGIN
	BEGIN
		CREATE POLICY files_patient_select ON files
			FOR SELECT TO patient
			USING (patient_id = current_user);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY files_doctor_select ON files
			FOR SELECT TO doctor
			USING (
				patient_id IN (SELECT patient_id FROM diagnosis WHERE doctor_id = current_user)
				OR diagnosis_id IN (SELECT id_diagnosis FROM diagnosis WHERE doctor_id = current_user)
				OR appointment_id IN (SELECT id_appointment FROM appointments WHERE doctor_id = current_user)
			);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;

	BEGIN
		CREATE POLICY files_anonymous_noaccess ON files
			FOR SELECT TO anonymous
			USING (false);
	EXCEPTION WHEN duplicate_object THEN NULL;
	END;
END $$`
