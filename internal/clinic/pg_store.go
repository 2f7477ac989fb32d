package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/clinic-booking/internal/db"
)

// PgStore is the Postgres implementation of BookingStore, RegistryStore and
// ReportStore. Every statement is parameterized.
type PgStore struct {
	pool db.Beginner
}

func NewPgStore(pool db.Beginner) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, s.pool)
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// Helpers

func (s *PgStore) exists(ctx context.Context, op, query string, args ...any) (bool, error) {
	var ok bool
	if err := s.conn(ctx).QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, storeErr(op, err)
	}
	return ok, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string

	if err := row.Scan(&a.ID, &a.Date, &a.Timeslot, &status); err != nil {
		return nil, err
	}

	a.Status = Status(status)
	return &a, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(&p.ID, &p.Name, &p.Gender, &p.Age, &p.Address, &p.VisitCount)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PgStore) listAppointments(ctx context.Context, op, query string, args ...any) ([]Appointment, error) {
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return result, nil
}

// Transactions

func (s *PgStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := db.InSerializableTx(ctx, s.pool, fn)
	if err != nil && db.IsConflict(err) {
		return fmt.Errorf("%w: %v", ErrBookingConflict, err)
	}
	return err
}

// Existence checks

func (s *PgStore) DoctorExists(ctx context.Context, id int) (bool, error) {
	return s.exists(ctx, "doctor exists",
		`SELECT EXISTS (SELECT 1 FROM doctor WHERE doctor_id = $1)`, id)
}

func (s *PgStore) AppointmentExists(ctx context.Context, id int) (bool, error) {
	return s.exists(ctx, "appointment exists",
		`SELECT EXISTS (SELECT 1 FROM appointment WHERE appnt_id = $1)`, id)
}

func (s *PgStore) PatientExists(ctx context.Context, id int) (bool, error) {
	return s.exists(ctx, "patient exists",
		`SELECT EXISTS (SELECT 1 FROM patient WHERE patient_id = $1)`, id)
}

func (s *PgStore) DepartmentExists(ctx context.Context, id int) (bool, error) {
	return s.exists(ctx, "department exists",
		`SELECT EXISTS (SELECT 1 FROM department WHERE dept_id = $1)`, id)
}

func (s *PgStore) DepartmentNameExists(ctx context.Context, name string) (bool, error) {
	return s.exists(ctx, "department name exists",
		`SELECT EXISTS (SELECT 1 FROM department WHERE name = $1)`, name)
}

// ID allocation

var maxIDQueries = map[Relation]string{
	RelationDoctor:      `SELECT COALESCE(MAX(doctor_id), 0) FROM doctor`,
	RelationPatient:     `SELECT COALESCE(MAX(patient_id), 0) FROM patient`,
	RelationAppointment: `SELECT COALESCE(MAX(appnt_id), 0) FROM appointment`,
}

// MaxID returns ok=false on an empty relation. Identifiers start at 1, so
// the COALESCE sentinel 0 never collides with a real row.
func (s *PgStore) MaxID(ctx context.Context, rel Relation) (int, bool, error) {
	query, found := maxIDQueries[rel]
	if !found {
		return 0, false, fmt.Errorf("max id: unknown relation %q", rel)
	}

	var highest int
	if err := s.conn(ctx).QueryRow(ctx, query).Scan(&highest); err != nil {
		return 0, false, storeErr("max id "+string(rel), err)
	}
	if highest == 0 {
		return 0, false, nil
	}
	return highest, true, nil
}

// Eligibility reference data

func (s *PgStore) DoctorEligibleTimeslots(ctx context.Context, doctorID int) ([]string, error) {
	rows, err := s.conn(ctx).Query(ctx, `
		SELECT time_slot
		FROM doctor_timeslot
		WHERE doctor_id = $1
		ORDER BY time_slot
	`, doctorID)
	if err != nil {
		return nil, storeErr("doctor timeslots", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, storeErr("doctor timeslots", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("doctor timeslots", err)
	}
	return slots, nil
}

func (s *PgStore) DoctorMaxPatientsPerHour(ctx context.Context, doctorID int) (int, bool, error) {
	var limit int
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT patients_per_hour
		FROM doctor_capacity
		WHERE doctor_id = $1
	`, doctorID).Scan(&limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, storeErr("doctor capacity", err)
	}
	return limit, true, nil
}

func (s *PgStore) DoctorCurrentLinkCount(ctx context.Context, doctorID int) (int, error) {
	var n int
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM doctor_appointment
		WHERE doctor_id = $1
	`, doctorID).Scan(&n)
	if err != nil {
		return 0, storeErr("doctor link count", err)
	}
	return n, nil
}

// Appointment state

func (s *PgStore) AppointmentTimeslot(ctx context.Context, appointmentID int) (string, error) {
	var slot string
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT time_slot FROM appointment WHERE appnt_id = $1
	`, appointmentID).Scan(&slot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", notFound(EntityAppointment, appointmentID)
		}
		return "", storeErr("appointment timeslot", err)
	}
	return slot, nil
}

func (s *PgStore) AppointmentStatus(ctx context.Context, appointmentID int) (Status, error) {
	var status string
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT status FROM appointment WHERE appnt_id = $1
	`, appointmentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", notFound(EntityAppointment, appointmentID)
		}
		return "", storeErr("appointment status", err)
	}
	return Status(status), nil
}

func (s *PgStore) SetAppointmentStatus(ctx context.Context, appointmentID int, status Status) error {
	tag, err := s.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status = $2 WHERE appnt_id = $1
	`, appointmentID, string(status))
	if err != nil {
		return storeErr("set appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(EntityAppointment, appointmentID)
	}
	return nil
}

// Linkage

func (s *PgStore) BoundDoctorOf(ctx context.Context, appointmentID int) (int, bool, error) {
	var doctorID int
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT doctor_id FROM doctor_appointment WHERE appnt_id = $1
	`, appointmentID).Scan(&doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, storeErr("bound doctor", err)
	}
	return doctorID, true, nil
}

func (s *PgStore) CreateLink(ctx context.Context, appointmentID, doctorID int) (bool, error) {
	tag, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_appointment (appnt_id, doctor_id)
		VALUES ($1, $2)
		ON CONFLICT (appnt_id) DO NOTHING
	`, appointmentID, doctorID)
	if err != nil {
		return false, storeErr("create link", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgStore) CreateVisitRecord(ctx context.Context, v VisitRecord) (bool, error) {
	tag, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO visit (hospital_id, patient_id, appnt_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, v.HospitalID, v.PatientID, v.AppointmentID)
	if err != nil {
		return false, storeErr("create visit record", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgStore) FacilityOf(ctx context.Context, doctorID int) (int, error) {
	var hospitalID int
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT dep.hospital_id
		FROM doctor d
		JOIN department dep ON dep.dept_id = d.dept_id
		WHERE d.doctor_id = $1
	`, doctorID).Scan(&hospitalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, notFound(EntityDoctor, doctorID)
		}
		return 0, storeErr("facility of doctor", err)
	}
	return hospitalID, nil
}

func (s *PgStore) IncrementVisitCount(ctx context.Context, patientID int) error {
	tag, err := s.conn(ctx).Exec(ctx, `
		UPDATE patient SET number_of_appts = number_of_appts + 1 WHERE patient_id = $1
	`, patientID)
	if err != nil {
		return storeErr("increment visit count", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(EntityPatient, patientID)
	}
	return nil
}

// Registration

func (s *PgStore) FindDoctor(ctx context.Context, name, specialty string, departmentID int) (int, bool, error) {
	var id int
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT doctor_id FROM doctor
		WHERE name = $1 AND specialty = $2 AND dept_id = $3
		ORDER BY doctor_id
		LIMIT 1
	`, name, specialty, departmentID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, storeErr("find doctor", err)
	}
	return id, true, nil
}

func (s *PgStore) FindPatient(ctx context.Context, name, gender string, age int, address string) (*Patient, error) {
	row := s.conn(ctx).QueryRow(ctx, `
		SELECT patient_id, name, gender, age, address, number_of_appts
		FROM patient
		WHERE name = $1 AND gender = $2 AND age = $3 AND address = $4
		ORDER BY patient_id
		LIMIT 1
	`, name, gender, age, address)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("find patient", err)
	}
	return p, nil
}

func (s *PgStore) FindAppointment(ctx context.Context, date, timeslot string, status Status) (int, bool, error) {
	var id int
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT appnt_id FROM appointment
		WHERE adate = $1::date AND time_slot = $2 AND status = $3
		ORDER BY appnt_id
		LIMIT 1
	`, date, timeslot, string(status)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, storeErr("find appointment", err)
	}
	return id, true, nil
}

func (s *PgStore) InsertDoctor(ctx context.Context, d Doctor) error {
	_, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (doctor_id, name, specialty, dept_id)
		VALUES ($1, $2, $3, $4)
	`, d.ID, d.Name, d.Specialty, d.DepartmentID)
	if err != nil {
		return storeErr("insert doctor", err)
	}
	return nil
}

func (s *PgStore) InsertPatient(ctx context.Context, p Patient) error {
	_, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO patient (patient_id, name, gender, age, address, number_of_appts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.Gender, p.Age, p.Address, p.VisitCount)
	if err != nil {
		return storeErr("insert patient", err)
	}
	return nil
}

func (s *PgStore) InsertAppointment(ctx context.Context, a Appointment) error {
	_, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (appnt_id, adate, time_slot, status)
		VALUES ($1, $2::date, $3, $4)
	`, a.ID, a.Date, a.Timeslot, string(a.Status))
	if err != nil {
		return storeErr("insert appointment", err)
	}
	return nil
}

// Reports

func (s *PgStore) DoctorAppointments(ctx context.Context, doctorID int, from, to string) ([]Appointment, error) {
	return s.listAppointments(ctx, "doctor appointments", `
		SELECT a.appnt_id, to_char(a.adate, 'YYYY-MM-DD'), a.time_slot, a.status
		FROM appointment a
		JOIN doctor_appointment l ON l.appnt_id = a.appnt_id
		WHERE l.doctor_id = $1
		  AND a.adate BETWEEN $2::date AND $3::date
		  AND a.status IN ('AC', 'AV')
		ORDER BY a.adate, a.appnt_id
	`, doctorID, from, to)
}

func (s *PgStore) AvailableByDepartment(ctx context.Context, departmentName, date string) ([]Appointment, error) {
	return s.listAppointments(ctx, "available by department", `
		SELECT a.appnt_id, to_char(a.adate, 'YYYY-MM-DD'), a.time_slot, a.status
		FROM appointment a
		JOIN doctor_appointment l ON l.appnt_id = a.appnt_id
		JOIN doctor d ON d.doctor_id = l.doctor_id
		JOIN department dep ON dep.dept_id = d.dept_id
		WHERE a.status = 'AV'
		  AND a.adate = $2::date
		  AND dep.name = $1
		ORDER BY a.appnt_id
	`, departmentName, date)
}

func (s *PgStore) StatusCountsPerDoctor(ctx context.Context) ([]DoctorStatusCounts, error) {
	const op = "status counts per doctor"

	rows, err := s.conn(ctx).Query(ctx, `
		SELECT d.doctor_id, d.name, a.status, COUNT(a.appnt_id) AS num_appnt
		FROM doctor d
		JOIN doctor_appointment l ON l.doctor_id = d.doctor_id
		JOIN appointment a ON a.appnt_id = l.appnt_id
		GROUP BY d.doctor_id, d.name, a.status
		ORDER BY d.doctor_id ASC, num_appnt DESC, a.status ASC
	`)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var result []DoctorStatusCounts
	for rows.Next() {
		var (
			doctorID int
			name     string
			status   string
			count    int
		)
		if err := rows.Scan(&doctorID, &name, &status, &count); err != nil {
			return nil, storeErr(op, err)
		}
		if n := len(result); n == 0 || result[n-1].DoctorID != doctorID {
			result = append(result, DoctorStatusCounts{DoctorID: doctorID, DoctorName: name})
		}
		last := &result[len(result)-1]
		last.Counts = append(last.Counts, StatusCount{Status: Status(status), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return result, nil
}

func (s *PgStore) PatientsPerDoctor(ctx context.Context, status Status) ([]DoctorPatientCount, error) {
	const op = "patients per doctor"

	rows, err := s.conn(ctx).Query(ctx, `
		SELECT d.doctor_id, d.name, COUNT(DISTINCT v.patient_id)
		FROM doctor d
		JOIN doctor_appointment l ON l.doctor_id = d.doctor_id
		JOIN appointment a ON a.appnt_id = l.appnt_id
		JOIN visit v ON v.appnt_id = a.appnt_id
		WHERE a.status = $1
		GROUP BY d.doctor_id, d.name
		ORDER BY d.doctor_id
	`, string(status))
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var result []DoctorPatientCount
	for rows.Next() {
		var c DoctorPatientCount
		if err := rows.Scan(&c.DoctorID, &c.DoctorName, &c.Patients); err != nil {
			return nil, storeErr(op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return result, nil
}

func (s *PgStore) CapacityViolations(ctx context.Context) ([]CapacityViolation, error) {
	const op = "capacity violations"

	rows, err := s.conn(ctx).Query(ctx, `
		SELECT c.doctor_id, COUNT(l.appnt_id), c.patients_per_hour
		FROM doctor_capacity c
		JOIN doctor_appointment l ON l.doctor_id = c.doctor_id
		GROUP BY c.doctor_id, c.patients_per_hour
		HAVING COUNT(l.appnt_id) > c.patients_per_hour
		ORDER BY c.doctor_id
	`)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	var result []CapacityViolation
	for rows.Next() {
		var v CapacityViolation
		if err := rows.Scan(&v.DoctorID, &v.Links, &v.MaxPatientsPerHour); err != nil {
			return nil, storeErr(op, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return result, nil
}
