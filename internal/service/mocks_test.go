package service

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/pkg/database"
)

// mockProductRepository is a mock implementation of ProductRepositoryInterface.
type mockProductRepository struct {
	listFn           func(ctx context.Context, query string, limit, offset int) ([]model.Product, error)
	getByIDFn        func(ctx context.Context, id int64) (*model.Product, error)
	getForUpdateFn   func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error)
	listForUpdateFn  func(ctx context.Context, tx database.TxQuerier, ids []int64) ([]model.Product, error)
	decrementStockFn func(ctx context.Context, tx database.TxQuerier, id int64, quantity int) error
}

func (m *mockProductRepository) List(ctx context.Context, query string, limit, offset int) ([]model.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx, query, limit, offset)
	}
	return []model.Product{}, nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrProductNotFound
}

func (m *mockProductRepository) ListForUpdate(ctx context.Context, tx database.TxQuerier, ids []int64) ([]model.Product, error) {
	if m.listForUpdateFn != nil {
		return m.listForUpdateFn(ctx, tx, ids)
	}
	return []model.Product{}, nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, tx database.TxQuerier, id int64, quantity int) error {
	if m.decrementStockFn != nil {
		return m.decrementStockFn(ctx, tx, id, quantity)
	}
	return nil
}

// mockCartRepository is a mock implementation of CartRepositoryInterface.
type mockCartRepository struct {
	getLinesFn          func(ctx context.Context, userID int64) ([]model.CartLine, error)
	getLinesForUpdateFn func(ctx context.Context, tx database.TxQuerier, userID int64) ([]model.CartLine, error)
	upsertFn            func(ctx context.Context, tx database.TxQuerier, userID, productID int64, quantity, maxQuantity int) error
	setQuantityFn       func(ctx context.Context, userID, productID int64, quantity int) error
	removeFn            func(ctx context.Context, userID, productID int64) error
	clearFn             func(ctx context.Context, tx database.TxQuerier, userID int64) error
}

func (m *mockCartRepository) GetLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	if m.getLinesFn != nil {
		return m.getLinesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCartRepository) GetLinesForUpdate(ctx context.Context, tx database.TxQuerier, userID int64) ([]model.CartLine, error) {
	if m.getLinesForUpdateFn != nil {
		return m.getLinesForUpdateFn(ctx, tx, userID)
	}
	return nil, nil
}

func (m *mockCartRepository) Upsert(ctx context.Context, tx database.TxQuerier, userID, productID int64, quantity, maxQuantity int) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, tx, userID, productID, quantity, maxQuantity)
	}
	return nil
}

func (m *mockCartRepository) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if m.setQuantityFn != nil {
		return m.setQuantityFn(ctx, userID, productID, quantity)
	}
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, userID, productID int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, userID, productID)
	}
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, tx database.TxQuerier, userID int64) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, tx, userID)
	}
	return nil
}

// mockUserCouponRepository is a mock implementation of UserCouponRepositoryInterface.
type mockUserCouponRepository struct {
	getForUpdateFn         func(ctx context.Context, tx database.TxQuerier, userID int64, code string) (*model.UserCoupon, error)
	markUsedFn             func(ctx context.Context, tx database.TxQuerier, userCouponID, orderID int64) error
	listByUserFn           func(ctx context.Context, userID int64) ([]model.UserCoupon, error)
	existsFn               func(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error)
	issueFn                func(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error)
	typesForTiersFn        func(ctx context.Context, tx database.TxQuerier, tiers []model.Tier) ([]model.CouponType, error)
	deleteUnusedForTiersFn func(ctx context.Context, tx database.TxQuerier, userID int64, tiers []model.Tier) (int64, error)
}

func (m *mockUserCouponRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, userID int64, code string) (*model.UserCoupon, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, userID, code)
	}
	return nil, ErrCouponNotFound
}

func (m *mockUserCouponRepository) MarkUsed(ctx context.Context, tx database.TxQuerier, userCouponID, orderID int64) error {
	if m.markUsedFn != nil {
		return m.markUsedFn(ctx, tx, userCouponID, orderID)
	}
	return nil
}

func (m *mockUserCouponRepository) ListByUser(ctx context.Context, userID int64) ([]model.UserCoupon, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserCouponRepository) Exists(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, tx, userID, code)
	}
	return false, nil
}

func (m *mockUserCouponRepository) Issue(ctx context.Context, tx database.TxQuerier, userID int64, code string) (bool, error) {
	if m.issueFn != nil {
		return m.issueFn(ctx, tx, userID, code)
	}
	return true, nil
}

func (m *mockUserCouponRepository) TypesForTiers(ctx context.Context, tx database.TxQuerier, tiers []model.Tier) ([]model.CouponType, error) {
	if m.typesForTiersFn != nil {
		return m.typesForTiersFn(ctx, tx, tiers)
	}
	return nil, nil
}

func (m *mockUserCouponRepository) DeleteUnusedForTiers(ctx context.Context, tx database.TxQuerier, userID int64, tiers []model.Tier) (int64, error) {
	if m.deleteUnusedForTiersFn != nil {
		return m.deleteUnusedForTiersFn(ctx, tx, userID, tiers)
	}
	return 0, nil
}

// mockOrderRepository is a mock implementation of OrderRepositoryInterface.
type mockOrderRepository struct {
	createFn        func(ctx context.Context, tx database.TxQuerier, order *model.Order) error
	insertLineFn    func(ctx context.Context, tx database.TxQuerier, line model.OrderLine) error
	listByUserFn    func(ctx context.Context, userID int64) ([]model.Order, error)
	listLinesFn     func(ctx context.Context, orderIDs []int64) ([]model.OrderLine, error)
	lifetimeSpendFn func(ctx context.Context, q database.TxQuerier, userID int64) (int64, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, tx database.TxQuerier, order *model.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, order)
	}
	order.ID = 1
	return nil
}

func (m *mockOrderRepository) InsertLine(ctx context.Context, tx database.TxQuerier, line model.OrderLine) error {
	if m.insertLineFn != nil {
		return m.insertLineFn(ctx, tx, line)
	}
	return nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockOrderRepository) ListLines(ctx context.Context, orderIDs []int64) ([]model.OrderLine, error) {
	if m.listLinesFn != nil {
		return m.listLinesFn(ctx, orderIDs)
	}
	return []model.OrderLine{}, nil
}

func (m *mockOrderRepository) LifetimeSpend(ctx context.Context, q database.TxQuerier, userID int64) (int64, error) {
	if m.lifetimeSpendFn != nil {
		return m.lifetimeSpendFn(ctx, q, userID)
	}
	return 0, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []model.OrderPlacedEvent
	err    error
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

// mockRecorder records checkout outcomes.
type mockRecorder struct {
	outcomes []string
}

func (m *mockRecorder) RecordCheckout(ctx context.Context, outcome string, breakdown *model.Breakdown) {
	m.outcomes = append(m.outcomes, outcome)
}

// mockLedger is a mock implementation of MembershipLedger.
type mockLedger struct {
	calls []int64
	err   error
}

func (m *mockLedger) EnsureTierCoupons(ctx context.Context, userID int64) (*model.ClaimResult, error) {
	m.calls = append(m.calls, userID)
	if m.err != nil {
		return nil, m.err
	}
	return &model.ClaimResult{Level: model.TierLV1, Issued: []model.IssuedCoupon{}}, nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error

	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		if err := m.commitFn(ctx); err != nil {
			return err
		}
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
	begun   int
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	m.begun++
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func poolWith(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return tx, nil
		},
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
