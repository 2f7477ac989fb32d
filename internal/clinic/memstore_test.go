package clinic

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	redisclient "github.com/hackgods/clinic-booking/internal/redis"
)

// memStore is an in-memory BookingStore and RegistryStore.
type memStore struct {
	mu sync.Mutex

	departments  map[int]Department
	doctors      map[int]Doctor
	patients     map[int]*Patient
	appointments map[int]*Appointment
	timeslots    map[int][]string
	capacity     map[int]int
	links        map[int]int // appointment -> doctor
	visits       map[VisitRecord]bool

	writes int
	fail   map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		departments:  map[int]Department{},
		doctors:      map[int]Doctor{},
		patients:     map[int]*Patient{},
		appointments: map[int]*Appointment{},
		timeslots:    map[int][]string{},
		capacity:     map[int]int{},
		links:        map[int]int{},
		visits:       map[VisitRecord]bool{},
		fail:         map[string]error{},
	}
}

// seed helpers

func (m *memStore) addDepartment(id, hospitalID int, name string) {
	m.departments[id] = Department{ID: id, Name: name, HospitalID: hospitalID}
}

func (m *memStore) addDoctor(id, departmentID, maxPerHour int, slots ...string) {
	m.doctors[id] = Doctor{ID: id, Name: "Doctor", Specialty: "General", DepartmentID: departmentID}
	if len(slots) > 0 {
		m.timeslots[id] = slots
	}
	if maxPerHour >= 0 {
		m.capacity[id] = maxPerHour
	}
}

func (m *memStore) addPatient(id int) {
	m.patients[id] = &Patient{ID: id, Name: "Pat", Gender: "F", Age: 30, Address: "Main St"}
}

func (m *memStore) addAppointment(id int, slot string, status Status) {
	m.appointments[id] = &Appointment{ID: id, Date: "2024-01-01", Timeslot: slot, Status: status}
}

func (m *memStore) status(id int) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appointments[id].Status
}

func (m *memStore) linkCount(doctorID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.links {
		if d == doctorID {
			n++
		}
	}
	return n
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memStore) failure(op string) error {
	return m.fail[op]
}

// BookingStore

func (m *memStore) DoctorExists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("DoctorExists"); err != nil {
		return false, &StoreError{Op: "doctor exists", Err: err}
	}
	_, ok := m.doctors[id]
	return ok, nil
}

func (m *memStore) AppointmentExists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.appointments[id]
	return ok, nil
}

func (m *memStore) PatientExists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.patients[id]
	return ok, nil
}

func (m *memStore) DoctorEligibleTimeslots(_ context.Context, doctorID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.timeslots[doctorID]), nil
}

func (m *memStore) DoctorMaxPatientsPerHour(_ context.Context, doctorID int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit, ok := m.capacity[doctorID]
	return limit, ok, nil
}

func (m *memStore) DoctorCurrentLinkCount(_ context.Context, doctorID int) (int, error) {
	return m.linkCount(doctorID), nil
}

func (m *memStore) AppointmentTimeslot(_ context.Context, id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return "", notFound(EntityAppointment, id)
	}
	return a.Timeslot, nil
}

func (m *memStore) AppointmentStatus(_ context.Context, id int) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return "", notFound(EntityAppointment, id)
	}
	return a.Status, nil
}

func (m *memStore) SetAppointmentStatus(_ context.Context, id int, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("SetAppointmentStatus"); err != nil {
		return &StoreError{Op: "set appointment status", Err: err}
	}
	a, ok := m.appointments[id]
	if !ok {
		return notFound(EntityAppointment, id)
	}
	a.Status = status
	m.writes++
	return nil
}

func (m *memStore) BoundDoctorOf(_ context.Context, appointmentID int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.links[appointmentID]
	return d, ok, nil
}

func (m *memStore) CreateLink(_ context.Context, appointmentID, doctorID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[appointmentID]; ok {
		return false, nil
	}
	m.links[appointmentID] = doctorID
	m.writes++
	return true, nil
}

func (m *memStore) CreateVisitRecord(_ context.Context, v VisitRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("CreateVisitRecord"); err != nil {
		return false, &StoreError{Op: "create visit record", Err: err}
	}
	v.CreatedAt = time.Time{}
	if m.visits[v] {
		return false, nil
	}
	m.visits[v] = true
	m.writes++
	return true, nil
}

func (m *memStore) FacilityOf(_ context.Context, doctorID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[doctorID]
	if !ok {
		return 0, notFound(EntityDoctor, doctorID)
	}
	return m.departments[d.DepartmentID].HospitalID, nil
}

func (m *memStore) IncrementVisitCount(_ context.Context, patientID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[patientID]
	if !ok {
		return notFound(EntityPatient, patientID)
	}
	p.VisitCount++
	m.writes++
	return nil
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.failure("InTx"); err != nil {
		return err
	}
	return fn(ctx)
}

// RegistryStore

func (m *memStore) MaxID(_ context.Context, rel Relation) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int
	switch rel {
	case RelationDoctor:
		for id := range m.doctors {
			ids = append(ids, id)
		}
	case RelationPatient:
		for id := range m.patients {
			ids = append(ids, id)
		}
	case RelationAppointment:
		for id := range m.appointments {
			ids = append(ids, id)
		}
	default:
		return 0, false, errors.New("unknown relation")
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return slices.Max(ids), true, nil
}

func (m *memStore) DepartmentExists(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.departments[id]
	return ok, nil
}

func (m *memStore) FindDoctor(_ context.Context, name, specialty string, departmentID int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if d.Name == name && d.Specialty == specialty && d.DepartmentID == departmentID {
			return d.ID, true, nil
		}
	}
	return 0, false, nil
}

func (m *memStore) FindPatient(_ context.Context, name, gender string, age int, address string) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.Name == name && p.Gender == gender && p.Age == age && p.Address == address {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindAppointment(_ context.Context, date, timeslot string, status Status) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.appointments {
		if a.Date == date && a.Timeslot == timeslot && a.Status == status {
			return a.ID, true, nil
		}
	}
	return 0, false, nil
}

func (m *memStore) InsertDoctor(_ context.Context, d Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doctors[d.ID] = d
	return nil
}

func (m *memStore) InsertPatient(_ context.Context, p Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patients[p.ID] = &p
	return nil
}

func (m *memStore) InsertAppointment(_ context.Context, a Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appointments[a.ID] = &a
	return nil
}

// keyedLocker blocks per key, like a lock that waits instead of failing.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: map[string]*sync.Mutex{}}
}

func (l *keyedLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// busyLocker reports every key in busy as held by someone else.
type busyLocker struct {
	busy map[string]bool
}

func (l busyLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if l.busy[key] {
		return redisclient.ErrLockNotAcquired
	}
	return fn(ctx)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveBooking(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}
