package db

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS hospital (
		hospital_id INTEGER PRIMARY KEY,
		name        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS department (
		dept_id     INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		hospital_id INTEGER NOT NULL REFERENCES hospital (hospital_id)
	)`,
	`CREATE TABLE IF NOT EXISTS doctor (
		doctor_id INTEGER PRIMARY KEY,
		name      TEXT NOT NULL,
		specialty TEXT NOT NULL,
		dept_id   INTEGER NOT NULL REFERENCES department (dept_id)
	)`,
	`CREATE TABLE IF NOT EXISTS patient (
		patient_id      INTEGER PRIMARY KEY,
		name            TEXT NOT NULL,
		gender          CHAR(1) NOT NULL CHECK (gender IN ('F', 'M')),
		age             INTEGER NOT NULL CHECK (age BETWEEN 0 AND 150),
		address         TEXT NOT NULL,
		number_of_appts INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS appointment (
		appnt_id  INTEGER PRIMARY KEY,
		adate     DATE NOT NULL,
		time_slot TEXT NOT NULL,
		status    CHAR(2) NOT NULL CHECK (status IN ('PA', 'AC', 'AV', 'WL'))
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_capacity (
		doctor_id         INTEGER PRIMARY KEY REFERENCES doctor (doctor_id),
		patients_per_hour INTEGER NOT NULL CHECK (patients_per_hour >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_timeslot (
		doctor_id INTEGER NOT NULL REFERENCES doctor (doctor_id),
		time_slot TEXT NOT NULL,
		PRIMARY KEY (doctor_id, time_slot)
	)`,
	`CREATE TABLE IF NOT EXISTS doctor_appointment (
		appnt_id  INTEGER PRIMARY KEY REFERENCES appointment (appnt_id),
		doctor_id INTEGER NOT NULL REFERENCES doctor (doctor_id)
	)`,
	`CREATE INDEX IF NOT EXISTS doctor_appointment_doctor_idx ON doctor_appointment (doctor_id)`,
	`CREATE TABLE IF NOT EXISTS visit (
		hospital_id INTEGER NOT NULL REFERENCES hospital (hospital_id),
		patient_id  INTEGER NOT NULL REFERENCES patient (patient_id),
		appnt_id    INTEGER NOT NULL REFERENCES appointment (appnt_id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (hospital_id, patient_id, appnt_id)
	)`,
}

// EnsureSchema creates the clinic tables when they are missing.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
