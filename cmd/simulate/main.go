package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-booking/internal/api"
	"github.com/hackgods/clinic-booking/internal/clinic"
	"github.com/hackgods/clinic-booking/internal/config"
	"github.com/hackgods/clinic-booking/internal/db"
	"github.com/hackgods/clinic-booking/internal/logging"
)

type SimConfig struct {
	APIBaseURL      string
	Duration        time.Duration
	Workers         int
	BookingRatio    float64
	ReadRatio       float64
	MatchRatio      float64 // share of bookings aimed at a doctor that accepts the slot
	HotAppointments int     // bookings concentrate on this many appointments
	PatientLimit    int
	PostgresDSN     string
}

type DataPool struct {
	Patients     []int
	Doctors      []int
	Appointments []int
	slotOf       map[int]string // appointment -> time_slot
	acceptedBy   map[string][]int
}

// doctorFor picks a doctor that accepts the appointment's slot when one
// exists and match is set, otherwise any doctor.
func (dp *DataPool) doctorFor(appt int, match bool, rng *rand.Rand) int {
	if match {
		if ds := dp.acceptedBy[dp.slotOf[appt]]; len(ds) > 0 {
			return ds[rng.Intn(len(ds))]
		}
	}
	return dp.Doctors[rng.Intn(len(dp.Doctors))]
}

type OperationMetrics struct {
	Total     int64
	Latencies []time.Duration
	outcomes  map[string]int64
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, outcome string) {
	atomic.AddInt64(&om.Total, 1)

	om.mu.Lock()
	defer om.mu.Unlock()
	if om.outcomes == nil {
		om.outcomes = make(map[string]int64)
	}
	om.outcomes[outcome]++
	om.Latencies = append(om.Latencies, latency)
}

func (om *OperationMetrics) Stats() (avg, fastest, slowest, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	fastest = latencies[0]
	slowest = latencies[len(latencies)-1]
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	return avg, fastest, slowest, p50, p95
}

type Metrics struct {
	Booking      OperationMetrics
	DoctorAppts  OperationMetrics
	StatusCounts OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load base config")
	}
	if err := logging.Setup("simulate", baseCfg.LogLevel, baseCfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("logging setup error")
	}

	cfg := loadConfig(baseCfg)
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("booking", cfg.BookingRatio).
		Float64("read", cfg.ReadRatio).
		Int("hot_appointments", cfg.HotAppointments).
		Msg("simulator starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}

	log.Info().
		Int("patients", len(dataPool.Patients)).
		Int("doctors", len(dataPool.Doctors)).
		Int("appointments", len(dataPool.Appointments)).
		Msg("data pool loaded")

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()

	verifyCtx, cancelVerify := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelVerify()
	if !verifyCapacity(verifyCtx, pgPool) {
		os.Exit(1)
	}
}

func loadConfig(base config.Config) SimConfig {
	cfg := SimConfig{
		APIBaseURL:      getEnv("SIM_API_BASE_URL", "http://localhost:"+base.HTTPPort),
		Duration:        getDuration("SIM_DURATION", 30*time.Second),
		Workers:         getInt("SIM_WORKERS", 10),
		BookingRatio:    getFloat("SIM_BOOKING_RATIO", 0.8),
		ReadRatio:       getFloat("SIM_READ_RATIO", 0.2),
		MatchRatio:      getFloat("SIM_MATCH_RATIO", 0.8),
		HotAppointments: getInt("SIM_HOT_APPOINTMENTS", 20),
		PatientLimit:    getInt("SIM_PATIENT_LIMIT", 2000),
		PostgresDSN:     base.PostgresDSN,
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.HotAppointments <= 0 {
		return fmt.Errorf("SIM_HOT_APPOINTMENTS must be > 0")
	}
	return nil
}

func queryInts(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) ([]int, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dp := &DataPool{
		slotOf:     make(map[int]string),
		acceptedBy: make(map[string][]int),
	}

	var err error
	dp.Patients, err = queryInts(ctx, pool, `SELECT patient_id FROM patient ORDER BY patient_id LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	dp.Doctors, err = queryInts(ctx, pool, `SELECT doctor_id FROM doctor ORDER BY doctor_id`)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	rows, err := pool.Query(ctx, `
		SELECT appnt_id, time_slot FROM appointment
		WHERE status = 'AV'
		ORDER BY appnt_id
		LIMIT $1
	`, cfg.HotAppointments)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	for rows.Next() {
		var id int
		var slot string
		if err := rows.Scan(&id, &slot); err != nil {
			rows.Close()
			return nil, err
		}
		dp.Appointments = append(dp.Appointments, id)
		dp.slotOf[id] = slot
	}
	rows.Close()

	rows, err = pool.Query(ctx, `SELECT doctor_id, time_slot FROM doctor_timeslot`)
	if err != nil {
		return nil, fmt.Errorf("load timeslots: %w", err)
	}
	for rows.Next() {
		var id int
		var slot string
		if err := rows.Scan(&id, &slot); err != nil {
			rows.Close()
			return nil, err
		}
		dp.acceptedBy[slot] = append(dp.acceptedBy[slot], id)
	}
	rows.Close()

	switch {
	case len(dp.Patients) == 0:
		return nil, fmt.Errorf("no patients loaded")
	case len(dp.Doctors) == 0:
		return nil, fmt.Errorf("no doctors loaded")
	case len(dp.Appointments) == 0:
		return nil, fmt.Errorf("no AV appointments loaded")
	}
	return dp, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if rng.Float64() < s.config.BookingRatio {
				s.doBooking(ctx, rng)
			} else if rng.Intn(2) == 0 {
				s.doDoctorAppointments(ctx, rng)
			} else {
				s.doStatusCounts(ctx)
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	appt := s.pool.Appointments[rng.Intn(len(s.pool.Appointments))]
	patient := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	doctor := s.pool.doctorFor(appt, rng.Float64() < s.config.MatchRatio, rng)

	body, _ := json.Marshal(api.CreateBookingRequest{
		PatientID:     &patient,
		DoctorID:      doctor,
		AppointmentID: appt,
	})

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			s.metrics.Booking.Record(latency, "transport_error")
		}
		return
	}
	defer resp.Body.Close()

	outcome := clinic.OutcomeBooked
	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusOK:
		outcome = clinic.OutcomeNoop
	default:
		var e api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) != nil || e.Error == "" {
			e.Error = "http_" + strconv.Itoa(resp.StatusCode)
		}
		outcome = e.Error
	}
	s.metrics.Booking.Record(latency, outcome)
}

func (s *Simulator) doDoctorAppointments(ctx context.Context, rng *rand.Rand) {
	doctor := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]
	from := time.Now().Format("2006-01-02")
	to := time.Now().AddDate(0, 0, 30).Format("2006-01-02")

	s.get(ctx, &s.metrics.DoctorAppts,
		fmt.Sprintf("%s/doctors/%d/appointments?from=%s&to=%s", s.config.APIBaseURL, doctor, from, to))
}

func (s *Simulator) doStatusCounts(ctx context.Context) {
	s.get(ctx, &s.metrics.StatusCounts, s.config.APIBaseURL+"/reports/status-counts")
}

func (s *Simulator) get(ctx context.Context, om *OperationMetrics, url string) {
	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			om.Record(latency, "transport_error")
		}
		return
	}
	defer resp.Body.Close()
	om.Record(latency, "http_"+strconv.Itoa(resp.StatusCode))
}

// verifyCapacity checks after the run that no doctor holds more linked
// appointments than its per-hour bound allows.
func verifyCapacity(ctx context.Context, pool *pgxpool.Pool) bool {
	violations, err := clinic.NewReports(clinic.NewPgStore(pool)).CapacityViolations(ctx)
	if err != nil {
		log.Error().Err(err).Msg("capacity check failed")
		return false
	}
	for _, v := range violations {
		log.Error().
			Int("doctor_id", v.DoctorID).
			Int("links", v.Links).
			Int("max_patients_per_hour", v.MaxPatientsPerHour).
			Msg("capacity invariant violated")
	}
	if len(violations) == 0 {
		log.Info().Msg("capacity invariant holds")
	}
	return len(violations) == 0
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Doctor appointments", &s.metrics.DoctorAppts)
	printOperationReport("Status counts", &s.metrics.StatusCounts)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	avg, fastest, slowest, p50, p95 := om.Stats()

	om.mu.Lock()
	outcomes := make([]string, 0, len(om.outcomes))
	for k := range om.outcomes {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	for _, k := range outcomes {
		n := om.outcomes[k]
		fmt.Printf("  %s: %d (%.1f%%)\n", k, n, float64(n)/float64(total)*100)
	}
	om.mu.Unlock()

	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), fastest.Round(time.Millisecond), slowest.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
