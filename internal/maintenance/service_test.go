package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/internal/vehicles"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

func newLog(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:maintenance_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  designation TEXT NOT NULL,
  chassis_number TEXT NOT NULL UNIQUE,
  plate_number TEXT NOT NULL UNIQUE,
  acquisition_date DATETIME NOT NULL,
  acquirer TEXT,
  reception_commission TEXT,
  observations TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehicle_assignments (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  region TEXT NOT NULL,
  recipient TEXT NOT NULL,
  structure TEXT,
  district TEXT,
  assigned_at DATETIME NOT NULL,
  released_at DATETIME,
  released_by TEXT,
  release_reason TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehicle_reforms (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL UNIQUE,
  reason TEXT NOT NULL,
  agent TEXT NOT NULL,
  destination TEXT NOT NULL,
  notes TEXT,
  reformed_at DATETIME NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS maintenance_records (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  type TEXT NOT NULL,
  date DATETIME NOT NULL,
  mileage INTEGER,
  cost NUMERIC NOT NULL DEFAULT 0,
  agent TEXT NOT NULL,
  next_date DATETIME,
  next_mileage INTEGER,
  observations TEXT,
  created_at DATETIME
);`,
	} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	svc, err := NewService(NewRepository(db), vehicles.NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func seedVehicle(t *testing.T, db *gorm.DB) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		ID:              uuid.New(),
		Type:            "berline",
		Designation:     "Peugeot 301",
		ChassisNumber:   "CH-" + uuid.NewString()[:12],
		PlateNumber:     "PL-" + uuid.NewString()[:10],
		AcquisitionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return vehicle
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestRecordAppendsEntry(t *testing.T) {
	t.Parallel()

	svc, db := newLog(t)
	ctx := context.Background()
	vehicle := seedVehicle(t, db)
	mileage := 84200

	record, err := svc.Record(ctx, RecordInput{
		VehicleID: vehicle.ID,
		Type:      "vidange",
		Date:      time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		Mileage:   &mileage,
		Cost:      decimal.NewFromInt(6500),
		Agent:     "atelier central",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if record.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	list, err := svc.ListByVehicle(ctx, vehicle.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Type != "vidange" {
		t.Fatalf("unexpected log: %+v", list)
	}
}

func TestRecordRequiresExistingVehicle(t *testing.T) {
	t.Parallel()

	svc, _ := newLog(t)

	_, err := svc.Record(context.Background(), RecordInput{
		VehicleID: uuid.New(),
		Type:      "vidange",
		Date:      time.Now(),
		Cost:      decimal.NewFromInt(100),
		Agent:     "atelier",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordRejectsNegativeCost(t *testing.T) {
	t.Parallel()

	svc, db := newLog(t)
	vehicle := seedVehicle(t, db)

	_, err := svc.Record(context.Background(), RecordInput{
		VehicleID: vehicle.ID,
		Type:      "freins",
		Date:      time.Now(),
		Cost:      decimal.NewFromInt(-5),
		Agent:     "atelier",
	})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDueSoonWindowIsInclusive(t *testing.T) {
	t.Parallel()

	svc, db := newLog(t)
	ctx := context.Background()
	vehicle := seedVehicle(t, db)
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		next *time.Time
		due  bool
	}{
		{"today", datePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)), true},
		{"boundary day seven", datePtr(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)), true},
		{"day eight", datePtr(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)), false},
		{"yesterday", datePtr(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)), false},
		{"no follow-up", nil, false},
	}
	for _, tc := range cases {
		if _, err := svc.Record(ctx, RecordInput{
			VehicleID: vehicle.ID,
			Type:      tc.name,
			Date:      time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			Cost:      decimal.NewFromInt(1000),
			Agent:     "atelier",
			NextDate:  tc.next,
		}); err != nil {
			t.Fatalf("record %s: %v", tc.name, err)
		}
	}

	due, err := svc.DueSoon(ctx, now)
	if err != nil {
		t.Fatalf("due soon: %v", err)
	}
	gotTypes := map[string]bool{}
	for _, record := range due {
		gotTypes[record.Type] = true
	}
	for _, tc := range cases {
		if gotTypes[tc.name] != tc.due {
			t.Fatalf("%s: expected due=%v, got %v", tc.name, tc.due, gotTypes[tc.name])
		}
	}
}

func TestMaintenanceIgnoresVehicleStatus(t *testing.T) {
	t.Parallel()

	svc, db := newLog(t)
	ctx := context.Background()
	vehicle := seedVehicle(t, db)
	if err := db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).Update("status", "reformed").Error; err != nil {
		t.Fatalf("reform vehicle: %v", err)
	}

	_, err := svc.Record(ctx, RecordInput{
		VehicleID: vehicle.ID,
		Type:      "controle technique",
		Date:      time.Now(),
		Cost:      decimal.NewFromInt(2000),
		Agent:     "atelier",
	})
	if err != nil {
		t.Fatalf("record on reformed vehicle: %v", err)
	}
}
