package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-booking/internal/clinic"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/logging"
	"github.com/hackgods/clinic-booking/internal/validate"
)

var departmentNames = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
}

func main() {
	hospitals := flag.Int("hospitals", 3, "number of hospitals")
	doctors := flag.Int("doctors", 60, "number of doctors")
	patients := flag.Int("patients", 500, "number of patients")
	days := flag.Int("days", 14, "days of appointment slots starting today")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	if err := logging.Setup("seed", cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logging setup error")
	}
	log.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	faker := gofakeit.New(uint64(time.Now().UnixNano()))
	store := clinic.NewPgStore(pool)
	reg := clinic.NewRegistry(store)
	bg := context.Background()

	departments, err := seedFacilities(bg, pool, faker, *hospitals)
	if err != nil {
		log.Fatal().Err(err).Msg("seed facilities")
	}
	doctorIDs, err := seedDoctors(bg, reg, faker, departments, *doctors)
	if err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedCapacity(bg, pool, faker, doctorIDs); err != nil {
		log.Fatal().Err(err).Msg("seed capacity rules")
	}
	if err := seedPatients(bg, reg, faker, *patients); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedAppointments(bg, reg, *days); err != nil {
		log.Fatal().Err(err).Msg("seed appointments")
	}

	log.Info().Msg("seed complete")
}

// hourSlots are the bookable one-hour ranges of a working day.
func hourSlots() []string {
	var slots []string
	for h := 8; h < 17; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00-%02d:00", h, h+1))
	}
	return slots
}

// alphaName draws names until one passes the name validator; faker output
// occasionally carries apostrophes or hyphens.
func alphaName(faker *gofakeit.Faker) string {
	for {
		name := faker.FirstName() + " " + faker.LastName()
		if validate.Name(name) {
			return name
		}
	}
}

// seedFacilities returns the new departments keyed by id.
func seedFacilities(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int) (map[int]string, error) {
	log.Info().Int("hospitals", count).Msg("seeding hospitals and departments")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var hospitalBase, deptBase int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(hospital_id), 0) FROM hospital`).Scan(&hospitalBase); err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(dept_id), 0) FROM department`).Scan(&deptBase); err != nil {
		return nil, err
	}

	departments := make(map[int]string)
	for i := 1; i <= count; i++ {
		hospitalID := hospitalBase + i
		_, err := tx.Exec(ctx, `
			INSERT INTO hospital (hospital_id, name)
			VALUES ($1, $2)
		`, hospitalID, faker.City()+" General Hospital")
		if err != nil {
			return nil, err
		}

		for _, name := range departmentNames {
			deptBase++
			_, err := tx.Exec(ctx, `
				INSERT INTO department (dept_id, name, hospital_id)
				VALUES ($1, $2, $3)
			`, deptBase, name, hospitalID)
			if err != nil {
				return nil, err
			}
			departments[deptBase] = name
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return departments, nil
}

func seedDoctors(ctx context.Context, reg *clinic.Registry, faker *gofakeit.Faker, departments map[int]string, count int) ([]int, error) {
	log.Info().Int("doctors", count).Msg("seeding doctors")

	deptIDs := make([]int, 0, len(departments))
	for id := range departments {
		deptIDs = append(deptIDs, id)
	}
	if len(deptIDs) == 0 {
		return nil, errors.New("no departments to place doctors in")
	}

	var ids []int
	for len(ids) < count {
		deptID := deptIDs[faker.Number(0, len(deptIDs)-1)]
		d, err := reg.AddDoctor(ctx, clinic.DoctorInput{
			Name:         alphaName(faker),
			Specialty:    departments[deptID],
			DepartmentID: deptID,
		})
		if errors.Is(err, clinic.ErrDuplicateEntry) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// seedCapacity gives each doctor a patients-per-hour bound and a random
// subset of the working-day slots.
func seedCapacity(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, doctorIDs []int) error {
	log.Info().Int("doctors", len(doctorIDs)).Msg("seeding capacity rules")

	slots := hourSlots()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range doctorIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO doctor_capacity (doctor_id, patients_per_hour)
			VALUES ($1, $2)
			ON CONFLICT (doctor_id) DO UPDATE SET patients_per_hour = EXCLUDED.patients_per_hour
		`, id, faker.Number(1, 6))
		if err != nil {
			return err
		}

		for _, slot := range slots {
			if !faker.Bool() {
				continue
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO doctor_timeslot (doctor_id, time_slot)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, id, slot)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedPatients(ctx context.Context, reg *clinic.Registry, faker *gofakeit.Faker, count int) error {
	log.Info().Int("patients", count).Msg("seeding patients")

	genders := []string{"F", "M"}
	for i := 0; i < count; i++ {
		addr := faker.Address()
		_, err := reg.AddPatient(ctx, clinic.PatientInput{
			Name:    alphaName(faker),
			Gender:  genders[faker.Number(0, 1)],
			Age:     faker.Number(validate.MinAge, 99),
			Address: addr.Street + ", " + addr.City,
		})
		if err != nil && !errors.Is(err, clinic.ErrDuplicateEntry) {
			return err
		}
		if (i+1)%100 == 0 {
			log.Info().Int("done", i+1).Int("total", count).Msg("patients seeded")
		}
	}
	return nil
}

// seedAppointments opens one AV slot per hour per day. Dates the validator
// rejects (February 29) are skipped.
func seedAppointments(ctx context.Context, reg *clinic.Registry, days int) error {
	log.Info().Int("days", days).Msg("seeding appointments")

	today := time.Now()
	for d := 0; d < days; d++ {
		date := today.AddDate(0, 0, d).Format("2006-01-02")
		for _, slot := range hourSlots() {
			_, err := reg.AddAppointment(ctx, clinic.AppointmentInput{
				Date:     date,
				Timeslot: slot,
				Status:   string(clinic.StatusAvailable),
			})
			switch {
			case err == nil, errors.Is(err, clinic.ErrDuplicateEntry):
			case errors.Is(err, clinic.ErrInvalidInput):
				log.Warn().Str("date", date).Msg("skipping date")
			default:
				return err
			}
		}
	}
	return nil
}
