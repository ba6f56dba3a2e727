package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/config"
	"github.com/hackgods/patient-portal-scheduling/internal/logging"
)

type SimConfig struct {
	APIBaseURL     string
	Duration       time.Duration
	Workers        int
	ConfirmRatio   float64 // share of proposals confirmed, the rest are discarded
	CancelRatio    float64 // chance of cancelling an upcoming appointment per round
	InvalidRatio   float64 // chance of submitting a draft with a past date
	BookingHorizon int     // days ahead a draft date is picked from
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

// Record counts a call. rejected means the server answered with an expected
// 4xx, e.g. a validation failure on a deliberately invalid draft.
func (om *OperationMetrics) Record(latency time.Duration, success bool, rejected bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if rejected {
		atomic.AddInt64(&om.Rejected, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0
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
	p50 = latencies[min(len(latencies)*50/100, len(latencies)-1)]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	max = latencies[len(latencies)-1]
	return avg, p50, p95, max
}

type Metrics struct {
	Session     OperationMetrics
	FieldChange OperationMetrics
	Propose     OperationMetrics
	Confirm     OperationMetrics
	Discard     OperationMetrics
	Cancel      OperationMetrics
	List        OperationMetrics
}

type Simulator struct {
	config  SimConfig
	catalog catalogResponse
	client  *http.Client
	logger  zerolog.Logger
	metrics Metrics
}

type catalogResponse struct {
	Practitioners []catalog.Practitioner `json:"practitioners"`
	Services      []catalog.Service      `json:"services"`
	TimeSlots     []catalog.TimeSlot     `json:"timeSlots"`
}

type appointmentView struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func main() {
	baseCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(baseCfg.Env, baseCfg.LogLevel)

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Float64("confirm_ratio", cfg.ConfirmRatio).
		Float64("cancel_ratio", cfg.CancelRatio).
		Msg("simulator starting")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = sim.getJSON(ctx, "/catalog", &sim.catalog)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("load catalog")
	}
	if len(sim.catalog.Practitioners) == 0 || len(sim.catalog.Services) == 0 || len(sim.catalog.TimeSlots) == 0 {
		logger.Fatal().Msg("server returned an empty catalog")
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL:     strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:       getDuration("SIM_DURATION", 30*time.Second),
		Workers:        getInt("SIM_WORKERS", 10),
		ConfirmRatio:   getFloat("SIM_CONFIRM_RATIO", 0.7),
		CancelRatio:    getFloat("SIM_CANCEL_RATIO", 0.2),
		InvalidRatio:   getFloat("SIM_INVALID_RATIO", 0.1),
		BookingHorizon: getInt("SIM_BOOKING_HORIZON_DAYS", 30),
	}
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.BookingHorizon <= 0 {
		return fmt.Errorf("SIM_BOOKING_HORIZON_DAYS must be > 0")
	}
	for name, r := range map[string]float64{
		"SIM_CONFIRM_RATIO": cfg.ConfirmRatio,
		"SIM_CANCEL_RATIO":  cfg.CancelRatio,
		"SIM_INVALID_RATIO": cfg.InvalidRatio,
	} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info().Msg("simulation running")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info().Msg("simulation complete")
}

// worker plays one patient: it opens a session and keeps booking through the
// form until the run ends, then closes the session.
func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	faker := gofakeit.New(uint64(rng.Int63()))

	var created struct {
		ID string `json:"id"`
	}
	status, err := s.call(ctx, &s.metrics.Session, http.MethodPost, "/sessions", nil, &created, http.StatusCreated)
	if err != nil || status != http.StatusCreated {
		s.logger.Warn().Err(err).Int("worker", workerID).Msg("could not open session")
		return
	}
	base := "/sessions/" + created.ID

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.call(cleanupCtx, &s.metrics.Session, http.MethodDelete, base, nil, nil, http.StatusNoContent)
	}()

	for ctx.Err() == nil {
		s.bookingRound(ctx, rng, faker, base)

		if rng.Float64() < s.config.CancelRatio {
			s.cancelRound(ctx, rng, base)
		}
	}
}

func (s *Simulator) bookingRound(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker, base string) {
	practitioner := s.catalog.Practitioners[rng.Intn(len(s.catalog.Practitioners))]
	service := s.catalog.Services[rng.Intn(len(s.catalog.Services))]
	slot := s.catalog.TimeSlots[rng.Intn(len(s.catalog.TimeSlots))]

	date := time.Now().AddDate(0, 0, rng.Intn(s.config.BookingHorizon))
	invalid := rng.Float64() < s.config.InvalidRatio
	if invalid {
		date = time.Now().AddDate(0, 0, -2-rng.Intn(30))
	}

	fields := [][2]string{
		{"practitionerId", practitioner.ID},
		{"serviceId", service.ID},
		{"date", date.Format(time.DateOnly)},
		{"timeSlot", string(slot)},
		{"reason", truncate(faker.Sentence(8), 200)},
	}
	for _, f := range fields {
		body := map[string]string{"field": f[0], "value": f[1]}
		if _, err := s.call(ctx, &s.metrics.FieldChange, http.MethodPatch, base+"/form", body, nil, http.StatusOK); err != nil {
			return
		}
	}

	status, err := s.call(ctx, &s.metrics.Propose, http.MethodPost, base+"/form/submit", nil, nil, http.StatusCreated)
	if err != nil || status != http.StatusCreated {
		// An invalid draft stays in the form; start the next round clean.
		_, _ = s.call(ctx, &s.metrics.FieldChange, http.MethodDelete, base+"/form", nil, nil, http.StatusOK)
		return
	}

	if rng.Float64() < s.config.ConfirmRatio {
		_, _ = s.call(ctx, &s.metrics.Confirm, http.MethodPost, base+"/proposal/confirm", nil, nil, http.StatusCreated)
		return
	}
	_, _ = s.call(ctx, &s.metrics.Discard, http.MethodDelete, base+"/proposal", nil, nil, http.StatusNoContent)
	_, _ = s.call(ctx, &s.metrics.FieldChange, http.MethodDelete, base+"/form", nil, nil, http.StatusOK)
}

func (s *Simulator) cancelRound(ctx context.Context, rng *rand.Rand, base string) {
	var views struct {
		Upcoming []appointmentView `json:"upcoming"`
	}
	if _, err := s.call(ctx, &s.metrics.List, http.MethodGet, base+"/appointments", nil, &views, http.StatusOK); err != nil {
		return
	}
	if len(views.Upcoming) == 0 {
		return
	}

	target := views.Upcoming[rng.Intn(len(views.Upcoming))]
	_, _ = s.call(ctx, &s.metrics.Cancel, http.MethodPost, base+"/appointments/"+target.ID+"/cancel", nil, nil, http.StatusOK)
}

// call sends one request and records it against om. A response with a
// status other than want counts as rejected when it is a 4xx.
func (s *Simulator) call(ctx context.Context, om *OperationMetrics, method, path string, body, out any, want int) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			om.Record(latency, false, false)
		}
		return 0, err
	}
	defer resp.Body.Close()

	success := resp.StatusCode == want
	rejected := !success && resp.StatusCode >= 400 && resp.StatusCode < 500
	om.Record(latency, success, rejected)

	if success && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, out any) error {
	var om OperationMetrics
	status, err := s.call(ctx, &om, http.MethodGet, path, nil, out, http.StatusOK)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, status)
	}
	return nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Sessions", &s.metrics.Session)
	printOperationReport("Form field changes", &s.metrics.FieldChange)
	printOperationReport("Proposals", &s.metrics.Propose)
	printOperationReport("Confirmations", &s.metrics.Confirm)
	printOperationReport("Discards", &s.metrics.Discard)
	printOperationReport("Cancellations", &s.metrics.Cancel)
	printOperationReport("Appointment lists", &s.metrics.List)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	rejected := atomic.LoadInt64(&om.Rejected)
	failed := atomic.LoadInt64(&om.Error)

	avg, p50, p95, max := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", rejected, float64(rejected)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n",
		avg.Round(time.Microsecond), p50.Round(time.Microsecond),
		p95.Round(time.Microsecond), max.Round(time.Microsecond))
	fmt.Println()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

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
