package router

// In-memory repositories honoring the same scope semantics the SQL layer
// applies, used to exercise full request flows without a database.

import (
	"context"
	"io"
	"sync"

	"github.com/clinicmgr/clinic-api/internal/model"
	"github.com/clinicmgr/clinic-api/internal/policy"
	apperrors "github.com/clinicmgr/clinic-api/pkg/errors"
)

type memoryStore struct {
	mu           sync.Mutex
	users        map[string]*model.User
	patients     map[string]*model.Patient
	doctors      map[string]*model.Doctor
	diagnoses    map[int64]*model.Diagnosis
	appointments map[int64]*model.Appointment
	files        map[int64]*model.File
	nextID       int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:        map[string]*model.User{},
		patients:     map[string]*model.Patient{},
		doctors:      map[string]*model.Doctor{},
		diagnoses:    map[int64]*model.Diagnosis{},
		appointments: map[int64]*model.Appointment{},
		files:        map[int64]*model.File{},
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

// doctorTreats mirrors the diagnosis-relationship subquery.
func (m *memoryStore) doctorTreats(doctor, patient string) bool {
	for _, d := range m.diagnoses {
		if d.DoctorID != nil && *d.DoctorID == doctor && d.PatientID == patient {
			return true
		}
	}
	return false
}

func (m *memoryStore) patientVisible(p *model.Patient, scope policy.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.Patient != "":
		return p.Username == scope.Patient
	case scope.Doctor != "":
		return m.doctorTreats(scope.Doctor, p.Username)
	}
	return false
}

func (m *memoryStore) doctorVisible(d *model.Doctor, scope policy.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.Patient != "":
		return m.doctorTreats(d.Username, scope.Patient)
	}
	return false
}

func (m *memoryStore) diagnosisVisible(d *model.Diagnosis, scope policy.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.Patient != "":
		return d.PatientID == scope.Patient
	case scope.Doctor != "":
		return d.DoctorID != nil && *d.DoctorID == scope.Doctor
	}
	return false
}

func (m *memoryStore) appointmentVisible(a *model.Appointment, scope policy.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.Patient != "":
		return a.PatientID == scope.Patient
	case scope.Doctor != "":
		return a.DoctorID != nil && *a.DoctorID == scope.Doctor
	}
	return false
}

func (m *memoryStore) fileVisible(f *model.File, scope policy.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.Patient != "":
		return f.PatientID == scope.Patient
	case scope.Doctor != "":
		if f.DoctorID != nil && *f.DoctorID == scope.Doctor {
			return true
		}
		return m.doctorTreats(scope.Doctor, f.PatientID)
	}
	return false
}

// --- UserRepository ---

type memUserRepo struct{ s *memoryStore }

func (r memUserRepo) Get(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[username]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (r memUserRepo) CreateWithGrants(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Username]; ok {
		return apperrors.Conflict("username already exists", nil)
	}
	r.s.users[user.Username] = user
	return nil
}

// --- PatientRepository ---

type memPatientRepo struct{ s *memoryStore }

func (r memPatientRepo) Create(_ context.Context, req *model.PatientCreate) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[req.Username]; ok {
		return nil, apperrors.Conflict("patient username already exists", nil)
	}
	p := &model.Patient{Username: req.Username, Name: req.Name, BirthDate: req.BirthDate}
	r.s.patients[req.Username] = p
	return p, nil
}

func (r memPatientRepo) List(_ context.Context, scope policy.Scope) ([]*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	visible := []*model.Patient{}
	for _, p := range r.s.patients {
		if r.s.patientVisible(p, scope) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (r memPatientRepo) Get(_ context.Context, username string, scope policy.Scope) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[username]
	if !ok || !r.s.patientVisible(p, scope) {
		return nil, apperrors.NotFound("patient", nil)
	}
	return p, nil
}

func (r memPatientRepo) Update(ctx context.Context, username string, req *model.PatientUpdate, scope policy.Scope) (*model.Patient, error) {
	p, err := r.Get(ctx, username, scope)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.BirthDate != nil {
		p.BirthDate = *req.BirthDate
	}
	return p, nil
}

func (r memPatientRepo) Delete(ctx context.Context, username string, scope policy.Scope) error {
	if _, err := r.Get(ctx, username, scope); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.patients, username)
	return nil
}

// --- DoctorRepository ---

type memDoctorRepo struct{ s *memoryStore }

func (r memDoctorRepo) Create(_ context.Context, req *model.DoctorCreate) (*model.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doctors[req.Username]; ok {
		return nil, apperrors.Conflict("doctor username already exists", nil)
	}
	d := &model.Doctor{Username: req.Username, Name: req.Name, Specialty: req.Specialty}
	r.s.doctors[req.Username] = d
	return d, nil
}

func (r memDoctorRepo) List(_ context.Context, scope policy.Scope) ([]*model.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	visible := []*model.Doctor{}
	for _, d := range r.s.doctors {
		if r.s.doctorVisible(d, scope) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

func (r memDoctorRepo) Get(_ context.Context, username string, scope policy.Scope) (*model.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[username]
	if !ok || !r.s.doctorVisible(d, scope) {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (r memDoctorRepo) Update(ctx context.Context, username string, req *model.DoctorUpdate, scope policy.Scope) (*model.Doctor, error) {
	d, err := r.Get(ctx, username, scope)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Specialty != nil {
		d.Specialty = req.Specialty
	}
	return d, nil
}

func (r memDoctorRepo) Delete(ctx context.Context, username string, scope policy.Scope) error {
	if _, err := r.Get(ctx, username, scope); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.doctors, username)
	return nil
}

// --- DiagnosisRepository ---

type memDiagnosisRepo struct{ s *memoryStore }

func (r memDiagnosisRepo) Create(_ context.Context, req *model.DiagnosisCreate) (*model.Diagnosis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := &model.Diagnosis{
		ID:            r.s.id(),
		DiagnosisDate: req.DiagnosisDate,
		ICD:           req.ICD,
		Description:   req.Description,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
	}
	r.s.diagnoses[d.ID] = d
	return d, nil
}

func (r memDiagnosisRepo) List(_ context.Context, scope policy.Scope) ([]*model.Diagnosis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	visible := []*model.Diagnosis{}
	for _, d := range r.s.diagnoses {
		if r.s.diagnosisVisible(d, scope) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

func (r memDiagnosisRepo) Get(_ context.Context, id int64, scope policy.Scope) (*model.Diagnosis, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.diagnoses[id]
	if !ok || !r.s.diagnosisVisible(d, scope) {
		return nil, apperrors.NotFound("diagnosis", nil)
	}
	return d, nil
}

func (r memDiagnosisRepo) Update(ctx context.Context, id int64, req *model.DiagnosisUpdate, scope policy.Scope) (*model.Diagnosis, error) {
	d, err := r.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.DiagnosisDate != nil {
		d.DiagnosisDate = *req.DiagnosisDate
	}
	if req.ICD != nil {
		d.ICD = req.ICD
	}
	if req.Description != nil {
		d.Description = req.Description
	}
	return d, nil
}

func (r memDiagnosisRepo) Delete(ctx context.Context, id int64, scope policy.Scope) error {
	if _, err := r.Get(ctx, id, scope); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.diagnoses, id)
	return nil
}

// --- AppointmentRepository ---

type memAppointmentRepo struct{ s *memoryStore }

func (r memAppointmentRepo) Create(_ context.Context, req *model.AppointmentCreate) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := &model.Appointment{
		ID:              r.s.id(),
		AppointmentDate: req.AppointmentDate,
		Status:          model.AppointmentScheduled,
		Reason:          req.Reason,
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
	}
	r.s.appointments[a.ID] = a
	return a, nil
}

func (r memAppointmentRepo) List(_ context.Context, scope policy.Scope) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	visible := []*model.Appointment{}
	for _, a := range r.s.appointments {
		if r.s.appointmentVisible(a, scope) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

func (r memAppointmentRepo) Get(_ context.Context, id int64, scope policy.Scope) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || !r.s.appointmentVisible(a, scope) {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return a, nil
}

func (r memAppointmentRepo) Update(ctx context.Context, id int64, req *model.AppointmentUpdate, scope policy.Scope) (*model.Appointment, error) {
	a, err := r.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.AppointmentDate != nil {
		a.AppointmentDate = *req.AppointmentDate
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.Reason != nil {
		a.Reason = req.Reason
	}
	return a, nil
}

func (r memAppointmentRepo) Delete(ctx context.Context, id int64, scope policy.Scope) error {
	if _, err := r.Get(ctx, id, scope); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.appointments, id)
	return nil
}

func (r memAppointmentRepo) ListUpcoming(context.Context, int) ([]*model.Appointment, error) {
	return nil, nil
}

// --- FileRepository ---

type memFileRepo struct{ s *memoryStore }

func (r memFileRepo) Create(_ context.Context, file *model.File) (*model.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	file.ID = r.s.id()
	r.s.files[file.ID] = file
	return file, nil
}

func (r memFileRepo) List(_ context.Context, scope policy.Scope) ([]*model.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	visible := []*model.File{}
	for _, f := range r.s.files {
		if r.s.fileVisible(f, scope) {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

func (r memFileRepo) Get(_ context.Context, id int64, scope policy.Scope) (*model.File, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.files[id]
	if !ok || !r.s.fileVisible(f, scope) {
		return nil, apperrors.NotFound("file", nil)
	}
	return f, nil
}

func (r memFileRepo) Delete(ctx context.Context, id int64, scope policy.Scope) error {
	if _, err := r.Get(ctx, id, scope); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.files, id)
	return nil
}

// --- RelationStore ---

type memRelations struct{ s *memoryStore }

func (r memRelations) DoctorTreatsPatient(_ context.Context, doctor, patient string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.doctorTreats(doctor, patient), nil
}

func (r memRelations) DoctorAuthoredDiagnosis(_ context.Context, doctor string, diagnosisID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.diagnoses[diagnosisID]
	return ok && d.DoctorID != nil && *d.DoctorID == doctor, nil
}

func (r memRelations) DoctorHasAppointment(_ context.Context, doctor string, appointmentID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[appointmentID]
	return ok && a.DoctorID != nil && *a.DoctorID == doctor, nil
}

// --- ObjectStore ---

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: map[string][]byte{}}
}

func (m *memObjectStore) Upload(_ context.Context, objectName, _ string, payload io.Reader) (string, error) {
	data, err := io.ReadAll(payload)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = data
	return "https://gateway.test/ipfs/" + objectName, nil
}

func (m *memObjectStore) Remove(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectName)
	return nil
}
