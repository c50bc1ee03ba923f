package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  critical_threshold INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS stock_ledger_entries (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  delta INTEGER NOT NULL,
  reason TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  created_at DATETIME
);`
	if err := db.Exec(products).Error; err != nil {
		t.Fatalf("create products: %v", err)
	}
	if err := db.Exec(entries).Error; err != nil {
		t.Fatalf("create ledger entries: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, qty int) models.Product {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		Reference: "REF-" + uuid.NewString()[:8],
		Name:      "chaise de bureau",
		Quantity:  qty,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestDecreaseSubtractsAndAudits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	actor := uuid.New()
	ledg := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledg.Decrease(ctx, tx, product.ID, 4, actor)
	})
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", got.Quantity)
	}

	var entry models.StockLedgerEntry
	if err := db.First(&entry, "product_id = ?", product.ID).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Delta != -4 || entry.Reason != enums.LedgerReasonStockOut || entry.ActorID != actor {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
}

func TestDecreaseInsufficientStockLeavesNoTrace(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	ledg := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledg.Decrease(ctx, tx, product.ID, 12, uuid.New())
	})
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Quantity != 10 {
		t.Fatalf("quantity must be unchanged, got %d", got.Quantity)
	}
	var count int64
	if err := db.Model(&models.StockLedgerEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no audit entries, got %d", count)
	}
}

func TestDecreaseExactQuantityReachesZero(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5)
	ledg := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledg.Decrease(ctx, tx, product.ID, 5, uuid.New())
	})
	if err != nil {
		t.Fatalf("decrease to zero: %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Quantity != 0 {
		t.Fatalf("expected zero, got %d", got.Quantity)
	}
}

func TestReverseRestoresExactQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10)
	actor := uuid.New()
	ledg := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ledg.Decrease(ctx, tx, product.ID, 7, actor); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return ledg.Reverse(ctx, tx, product.ID, 7, actor)
	})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}

	var got models.Product
	if err := db.First(&got, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if got.Quantity != 10 {
		t.Fatalf("expected 10 after reversal, got %d", got.Quantity)
	}

	var entries []models.StockLedgerEntry
	if err := db.Order("created_at ASC").Find(&entries).Error; err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Reason != enums.LedgerReasonReversal || entries[1].Delta != 7 {
		t.Fatalf("reversal entry mismatch: %+v", entries[1])
	}
}

func TestIncreaseUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledg := NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledg.Increase(context.Background(), tx, uuid.New(), 3, uuid.New())
	})
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLedgerRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	product := seedProduct(t, db, 3)
	ledg := NewLedger()

	for _, qty := range []int{0, -2} {
		err := db.Transaction(func(tx *gorm.DB) error {
			return ledg.Increase(context.Background(), tx, product.ID, qty, uuid.New())
		})
		if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("qty=%d: expected validation error, got %v", qty, err)
		}
	}
}
