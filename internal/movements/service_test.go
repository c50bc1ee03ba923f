package movements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adelferjani/stockparc-backend/internal/approvals"
	"github.com/adelferjani/stockparc-backend/internal/inventory"
	"github.com/adelferjani/stockparc-backend/pkg/auth"
	"github.com/adelferjani/stockparc-backend/pkg/db/models"
	"github.com/adelferjani/stockparc-backend/pkg/enums"
	pkgerrors "github.com/adelferjani/stockparc-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	db    *gorm.DB
	svc   Service
	queue approvals.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dsn := "file:movements_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  critical_threshold INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS stock_ledger_entries (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  delta INTEGER NOT NULL,
  reason TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS pending_operations (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  payload TEXT,
  submitted_by TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  resolved_by TEXT,
  resolved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'none',
  occurred_at DATETIME NOT NULL,
  notes TEXT,
  created_by TEXT NOT NULL,
  pending_operation_id TEXT,
  supplier TEXT,
  agent TEXT,
  acquirer TEXT,
  persons_present TEXT,
  product_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 0,
  beneficiary TEXT,
  exit_kind TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS receipt_items (
  id TEXT PRIMARY KEY,
  movement_id TEXT NOT NULL,
  name TEXT NOT NULL,
  reference TEXT,
  category TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  product_id TEXT,
  created_at DATETIME
);`,
	} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	runner := gormTxRunner{db: db}
	queue, err := approvals.NewService(runner, approvals.NewRepository(db), auth.RolePolicy{})
	if err != nil {
		t.Fatalf("approvals service: %v", err)
	}
	svc, err := NewService(runner, NewRepository(db), inventory.NewRepository(db), inventory.NewLedger(), queue, auth.RolePolicy{})
	if err != nil {
		t.Fatalf("movements service: %v", err)
	}
	return fixture{db: db, svc: svc, queue: queue}
}

func (f fixture) seedProduct(t *testing.T, reference string, qty int) models.Product {
	t.Helper()
	product := models.Product{
		ID:        uuid.New(),
		Reference: reference,
		Name:      "article " + reference,
		Quantity:  qty,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f fixture) productQty(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := f.db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.Quantity
}

func manager() approvals.Actor {
	return approvals.Actor{ID: uuid.New(), Role: enums.ActorRoleManager}
}

func agent() approvals.Actor {
	return approvals.Actor{ID: uuid.New(), Role: enums.ActorRoleAgent}
}

func receiptInput(lines ...ReceiptLineInput) CreateReceiptInput {
	return CreateReceiptInput{
		Supplier:   "SARL Fournitures du Sud",
		Agent:      "K. Haddad",
		Acquirer:   "Service des moyens",
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Items:      lines,
	}
}

func TestDirectReceiptCreditsStockAndCreatesProducts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	existing := f.seedProduct(t, "RAM-16", 3)
	ref := "RAM-16"

	movement, err := f.svc.CreateReceipt(ctx, receiptInput(
		ReceiptLineInput{Name: "barrette RAM 16Go", Reference: &ref, Quantity: 5, UnitPrice: decimal.NewFromFloat(780.500)},
		ReceiptLineInput{Name: "onduleur 1500VA", Quantity: 2, UnitPrice: decimal.NewFromInt(9200)},
	), manager())
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	if movement.Status != enums.MovementStatusCompleted {
		t.Fatalf("expected completed, got %s", movement.Status)
	}
	if movement.PendingOperationID != nil {
		t.Fatal("direct receipt must not queue an operation")
	}
	if got := f.productQty(t, existing.ID); got != 8 {
		t.Fatalf("expected 8 on hand, got %d", got)
	}

	// The unknown line created its product with the received quantity.
	var created models.Product
	if err := f.db.First(&created, "name = ?", "onduleur 1500VA").Error; err != nil {
		t.Fatalf("load created product: %v", err)
	}
	if created.Quantity != 2 {
		t.Fatalf("expected created product qty 2, got %d", created.Quantity)
	}
	if created.Reference == "" {
		t.Fatal("created product must carry a generated reference")
	}

	for _, item := range movement.Items {
		if item.ProductID == nil {
			t.Fatalf("receipt line %q not linked to a product", item.Name)
		}
	}
}

func TestDirectStockOutDeducts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "TONER-05", 10)

	movement, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  4,
		Kind:      enums.StockOutKindDefinitive,
	}, manager())
	if err != nil {
		t.Fatalf("create stock-out: %v", err)
	}
	if movement.Status != enums.MovementStatusCompleted {
		t.Fatalf("expected completed, got %s", movement.Status)
	}
	if got := f.productQty(t, product.ID); got != 6 {
		t.Fatalf("expected 6 on hand, got %d", got)
	}
}

func TestDirectStockOutInsufficientLeavesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "CABLE-UTP", 2)

	_, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  5,
		Kind:      enums.StockOutKindDefinitive,
	}, manager())
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := f.productQty(t, product.ID); got != 2 {
		t.Fatalf("stock must be untouched, got %d", got)
	}
	var count int64
	if err := f.db.Model(&models.StockMovement{}).Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed stock-out must leave no movement, got %d", count)
	}
}

func TestAssignmentStockOutRequiresBeneficiary(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	product := f.seedProduct(t, "CHAIR-STD", 6)

	_, err := f.svc.CreateStockOut(context.Background(), CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  1,
		Kind:      enums.StockOutKindAssignment,
	}, manager())
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAgentReceiptQueuesUntilApproved(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	submitter := agent()

	movement, err := f.svc.CreateReceipt(ctx, receiptInput(
		ReceiptLineInput{Name: "ramette papier A4", Quantity: 40, UnitPrice: decimal.NewFromInt(350)},
	), submitter)
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if movement.Status != enums.MovementStatusPendingApproval {
		t.Fatalf("expected pending approval, got %s", movement.Status)
	}
	if movement.PendingOperationID == nil {
		t.Fatal("queued receipt must link its pending operation")
	}

	// Nothing entered stock yet.
	var count int64
	if err := f.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 0 {
		t.Fatalf("no product may exist before approval, got %d", count)
	}

	if _, err := f.queue.Approve(ctx, *movement.PendingOperationID, manager()); err != nil {
		t.Fatalf("approve: %v", err)
	}

	approved, err := f.svc.Get(ctx, movement.ID)
	if err != nil {
		t.Fatalf("reload movement: %v", err)
	}
	if approved.Status != enums.MovementStatusCompleted {
		t.Fatalf("expected completed after approval, got %s", approved.Status)
	}
	var product models.Product
	if err := f.db.First(&product, "name = ?", "ramette papier A4").Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Quantity != 40 {
		t.Fatalf("expected 40 on hand, got %d", product.Quantity)
	}
}

func TestAgentStockOutRejectedLeavesStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "DISQUE-1T", 9)

	movement, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  3,
		Kind:      enums.StockOutKindDefinitive,
	}, agent())
	if err != nil {
		t.Fatalf("create stock-out: %v", err)
	}
	if movement.Status != enums.MovementStatusPendingApproval {
		t.Fatalf("expected pending approval, got %s", movement.Status)
	}
	if got := f.productQty(t, product.ID); got != 9 {
		t.Fatalf("queued stock-out must not deduct, got %d", got)
	}

	if _, err := f.queue.Reject(ctx, *movement.PendingOperationID, manager()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	rejected, err := f.svc.Get(ctx, movement.ID)
	if err != nil {
		t.Fatalf("reload movement: %v", err)
	}
	if rejected.Status != enums.MovementStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if got := f.productQty(t, product.ID); got != 9 {
		t.Fatalf("rejected stock-out must not deduct, got %d", got)
	}
}

func TestApproveQueuedStockOutFailsOnInsufficientStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "ECRAN-24", 1)

	movement, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  4,
		Kind:      enums.StockOutKindDefinitive,
	}, agent())
	if err != nil {
		t.Fatalf("create stock-out: %v", err)
	}

	_, err = f.queue.Approve(ctx, *movement.PendingOperationID, manager())
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// The failed approval rolled back: operation still pending, movement still
	// parked, stock untouched.
	op, err := f.queue.Get(ctx, *movement.PendingOperationID)
	if err != nil {
		t.Fatalf("reload operation: %v", err)
	}
	if op.Status != enums.PendingOperationStatusPending {
		t.Fatalf("operation must stay pending, got %s", op.Status)
	}
	reloaded, err := f.svc.Get(ctx, movement.ID)
	if err != nil {
		t.Fatalf("reload movement: %v", err)
	}
	if reloaded.Status != enums.MovementStatusPendingApproval {
		t.Fatalf("movement must stay pending approval, got %s", reloaded.Status)
	}
	if got := f.productQty(t, product.ID); got != 1 {
		t.Fatalf("stock must be untouched, got %d", got)
	}
}

func TestProvisionalLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	actor := manager()
	product := f.seedProduct(t, "GROUPE-ELEC", 4)

	movement, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  1,
		Kind:      enums.StockOutKindProvisional,
	}, actor)
	if err != nil {
		t.Fatalf("create provisional: %v", err)
	}
	if movement.Status != enums.MovementStatusNone {
		t.Fatalf("expected open provisional, got %s", movement.Status)
	}
	if got := f.productQty(t, product.ID); got != 3 {
		t.Fatalf("provisional must deduct at creation, got %d", got)
	}

	validated, err := f.svc.ValidateStockOut(ctx, movement.ID, actor)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.Status != enums.MovementStatusCompleted {
		t.Fatalf("expected completed, got %s", validated.Status)
	}
	if got := f.productQty(t, product.ID); got != 3 {
		t.Fatalf("validation must not touch stock, got %d", got)
	}

	// Terminal: neither validate nor return may fire again.
	if _, err := f.svc.ValidateStockOut(ctx, movement.ID, actor); !pkgerrors.Is(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := f.svc.ReturnStockOut(ctx, movement.ID, actor); !pkgerrors.Is(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestProvisionalReturnRestoresStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	actor := manager()
	product := f.seedProduct(t, "PERCEUSE", 2)

	movement, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  2,
		Kind:      enums.StockOutKindProvisional,
	}, actor)
	if err != nil {
		t.Fatalf("create provisional: %v", err)
	}
	if got := f.productQty(t, product.ID); got != 0 {
		t.Fatalf("expected 0 on hand, got %d", got)
	}

	returned, err := f.svc.ReturnStockOut(ctx, movement.ID, actor)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.Status != enums.MovementStatusReturned {
		t.Fatalf("expected returned, got %s", returned.Status)
	}
	if got := f.productQty(t, product.ID); got != 2 {
		t.Fatalf("return must restore stock, got %d", got)
	}

	var entry models.StockLedgerEntry
	if err := f.db.First(&entry, "product_id = ? AND reason = ?", product.ID, enums.LedgerReasonReversal).Error; err != nil {
		t.Fatalf("load reversal entry: %v", err)
	}
	if entry.Delta != 2 {
		t.Fatalf("expected reversal delta 2, got %d", entry.Delta)
	}
}

func TestValidateRejectsNonProvisional(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	actor := manager()
	product := f.seedProduct(t, "IMPRIMANTE", 5)

	movement, err := f.svc.CreateStockOut(ctx, CreateStockOutInput{
		ProductID: product.ID,
		Quantity:  1,
		Kind:      enums.StockOutKindDefinitive,
	}, actor)
	if err != nil {
		t.Fatalf("create stock-out: %v", err)
	}

	if _, err := f.svc.ValidateStockOut(ctx, movement.ID, actor); !pkgerrors.Is(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}
