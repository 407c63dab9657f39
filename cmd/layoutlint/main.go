package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"busline/internal/backend"
	"busline/internal/seatmap"
	"busline/internal/shared/config"
	"busline/internal/shared/middleware"
	"busline/internal/vehicles"

	"github.com/joho/godotenv"
)

// Report is the outcome of checking one layout
type Report struct {
	Source     string
	Seats      int
	Violations []error
	// seat types present in the grid with no fare
	Unpriced []seatmap.SeatType
}

func (r Report) OK() bool {
	return len(r.Violations) == 0 && len(r.Unpriced) == 0
}

// Linter checks vehicle layouts from files or from the backend
type Linter struct {
	vehicles vehicles.Repository
}

func main() {
	vehicleID := flag.String("vehicle", "", "check a vehicle fetched from the booking backend")
	token := flag.String("token", os.Getenv("BACKEND_TOKEN"), "bearer token forwarded to the backend")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: layoutlint [-vehicle ID [-token T]] [layout.json ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *vehicleID == "" && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	linter := &Linter{}
	var reports []Report

	if *vehicleID != "" {
		_ = godotenv.Load()
		cfg := config.Load()
		linter.vehicles = vehicles.NewRepository(backend.NewClient(cfg.Backend, nil))

		ctx, cancel := context.WithTimeout(middleware.WithToken(context.Background(), *token), 30*time.Second)
		report, err := linter.LintVehicle(ctx, *vehicleID)
		cancel()
		if err != nil {
			log.Fatalf("Failed to load vehicle %s: %v", *vehicleID, err)
		}
		reports = append(reports, report)
	}

	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", path, err)
		}
		report, err := linter.Lint(path, f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		reports = append(reports, report)
	}

	failed := 0
	for _, report := range reports {
		printReport(os.Stdout, report)
		if !report.OK() {
			failed++
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d layouts have problems\n", failed, len(reports))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d layouts are valid\n", len(reports))
}

// Lint reads a vehicle record, a {"data": vehicle} envelope or a bare seat
// map from r
func (l *Linter) Lint(source string, r io.Reader) (Report, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Report{}, err
	}

	vehicle, err := backend.DecodeData[vehicles.Vehicle](body)
	if err != nil {
		return Report{}, err
	}

	if len(vehicle.SeatMap.Rows) == 0 && len(vehicle.SeatMap.Seats) == 0 {
		seatMap, err := backend.DecodeData[seatmap.SeatMap](body)
		if err != nil {
			return Report{}, err
		}
		return check(source, seatMap, nil), nil
	}
	return check(source, vehicle.SeatMap, vehicle.Pricing), nil
}

// LintVehicle fetches a vehicle from the backend and checks it
func (l *Linter) LintVehicle(ctx context.Context, id string) (Report, error) {
	vehicle, err := l.vehicles.GetVehicleByID(ctx, id)
	if err != nil {
		return Report{}, err
	}
	return check("vehicle "+id, vehicle.SeatMap, vehicle.Pricing), nil
}

// check validates m; pricing is only checked when one was given
func check(source string, m seatmap.SeatMap, pricing map[seatmap.SeatType]float64) Report {
	report := Report{
		Source:     source,
		Violations: m.Violations(),
	}

	types := make(map[seatmap.SeatType]bool)
	for _, key := range m.Keys() {
		report.Seats++
		if info, ok := m.Lookup(key); ok {
			types[info.Type] = true
		}
	}

	if pricing != nil {
		for t := range types {
			if pricing[t] <= 0 {
				report.Unpriced = append(report.Unpriced, t)
			}
		}
		sort.Slice(report.Unpriced, func(i, j int) bool { return report.Unpriced[i] < report.Unpriced[j] })
	}

	return report
}

func printReport(w io.Writer, report Report) {
	if report.OK() {
		fmt.Fprintf(w, "✅ %s: %d seats\n", report.Source, report.Seats)
		return
	}

	fmt.Fprintf(w, "❌ %s: %d seats\n", report.Source, report.Seats)
	for _, v := range report.Violations {
		fmt.Fprintf(w, "    %v\n", v)
	}
	for _, t := range report.Unpriced {
		fmt.Fprintf(w, "    no fare for seat type %s\n", t)
	}
}
