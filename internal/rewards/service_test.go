package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/loyaltyhub/backend/internal/catalog"
	"github.com/loyaltyhub/backend/internal/fulfillment"
	"github.com/loyaltyhub/backend/internal/models"
)

// ---------------------------------------------------------------------------
// noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called.
// ---------------------------------------------------------------------------

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// ---------------------------------------------------------------------------
// Resolver mock: serves a fixed set of definitions by id.
// ---------------------------------------------------------------------------

type stubResolver struct {
	defs map[string]*models.RewardDefinition
}

func (s *stubResolver) ResolveReward(_ context.Context, itemID string, _ uuid.UUID) (*models.RewardDefinition, error) {
	def, ok := s.defs[itemID]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return def, nil
}

// ---------------------------------------------------------------------------
// RedemptionStore mock: compare-and-swap stock decrement and the request-id
// uniqueness behave like the real conditional update and unique index.
// ---------------------------------------------------------------------------

type mockRedemptionStore struct {
	mu             sync.Mutex
	stock          map[uuid.UUID]int
	redemptions    []*models.Redemption
	seenRequests   map[string]bool
	decrementCalls int
}

func newMockRedemptionStore() *mockRedemptionStore {
	return &mockRedemptionStore{
		stock:        make(map[uuid.UUID]int),
		seenRequests: make(map[string]bool),
	}
}

func (m *mockRedemptionStore) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

func (m *mockRedemptionStore) DecrementStock(_ context.Context, _ pgx.Tx, rewardID, _ uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decrementCalls++
	if m.stock[rewardID] < 1 {
		return false, nil
	}
	m.stock[rewardID]--
	return true, nil
}

func (m *mockRedemptionStore) InsertRedemption(_ context.Context, _ pgx.Tx, red *models.Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if red.RequestID != nil {
		key := red.UserID.String() + "|" + *red.RequestID
		if m.seenRequests[key] {
			return errDuplicateRequest
		}
		m.seenRequests[key] = true
	}
	red.ID = uuid.New()
	red.RedeemedAt = time.Now().UTC()
	cp := *red
	m.redemptions = append(m.redemptions, &cp)
	return nil
}

func (m *mockRedemptionStore) MarkCompleted(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.redemptions {
		if r.ID == id && r.Status == models.RedemptionStatusPending {
			r.Status = models.RedemptionStatusCompleted
			return nil
		}
	}
	return errors.New("no pending redemption")
}

func (m *mockRedemptionStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redemptions)
}

// ---------------------------------------------------------------------------
// ledger.Service mock
// ---------------------------------------------------------------------------

type mockLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int
	entries  []*models.PointTransaction
}

func newMockLedger() *mockLedger { return &mockLedger{balances: make(map[uuid.UUID]int)} }

func (m *mockLedger) EnsureMembership(_ context.Context, _ pgx.Tx, userID, _ uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[userID]; ok {
		return false, nil
	}
	m.balances[userID] = 0
	return true, nil
}

func (m *mockLedger) Credit(_ context.Context, _ pgx.Tx, userID, projectID uuid.UUID, points int, description string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += points
	m.entries = append(m.entries, &models.PointTransaction{
		UserID: userID, ProjectID: projectID,
		Type: models.TransactionEarned, Points: points, Description: description,
	})
	return m.balances[userID], nil
}

func (m *mockLedger) Debit(_ context.Context, _ pgx.Tx, userID, projectID uuid.UUID, points int, description string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID] < points {
		return 0, ErrInsufficientPoints
	}
	m.balances[userID] -= points
	m.entries = append(m.entries, &models.PointTransaction{
		UserID: userID, ProjectID: projectID,
		Type: models.TransactionSpent, Points: points, Description: description,
	})
	return m.balances[userID], nil
}

func (m *mockLedger) History(context.Context, uuid.UUID, *uuid.UUID) ([]*models.PointTransaction, error) {
	return nil, nil
}

func (m *mockLedger) balance(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

func (m *mockLedger) seed(userID uuid.UUID, points int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = points
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type enqueueRecorder struct {
	mu   sync.Mutex
	args []fulfillment.FulfillRedemptionArgs
}

func (r *enqueueRecorder) insert(_ context.Context, _ pgx.Tx, args fulfillment.FulfillRedemptionArgs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = append(r.args, args)
	return nil
}

func stockedReward(projectID uuid.UUID, cost int) (*models.RewardDefinition, uuid.UUID) {
	id := uuid.New()
	stock := 3
	return &models.RewardDefinition{
		ID: id.String(), ProjectID: projectID, Name: "Branded Mug",
		PointsRequired: cost, StockQuantity: &stock, IsActive: true,
	}, id
}

// ---------------------------------------------------------------------------
// Redemption flow
// ---------------------------------------------------------------------------

func TestRedeem_Success(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	def, rewardUUID := stockedReward(projectID, 50)

	store := newMockRedemptionStore()
	store.stock[rewardUUID] = 3
	led := newMockLedger()
	led.seed(userID, 100)
	enq := &enqueueRecorder{}
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, enq.insert)

	res, err := svc.Redeem(context.Background(), userID, projectID, def.ID, nil)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if res.PointsSpent != 50 || res.NewBalance != 50 {
		t.Errorf("got spent %d balance %d, want 50/50", res.PointsSpent, res.NewBalance)
	}
	if got := store.stock[rewardUUID]; got != 2 {
		t.Errorf("stock after redeem: got %d, want 2", got)
	}
	if store.count() != 1 {
		t.Fatalf("redemption rows: got %d, want 1", store.count())
	}
	red := store.redemptions[0]
	if red.Status != models.RedemptionStatusPending {
		t.Errorf("redemption status: got %q, want pending", red.Status)
	}
	if red.PointsSpent != 50 {
		t.Errorf("redemption points: got %d, want 50", red.PointsSpent)
	}
	if len(enq.args) != 1 || enq.args[0].RedemptionID != red.ID {
		t.Error("fulfillment job should be enqueued with the redemption id")
	}
}

func TestRedeem_InsufficientPoints(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	def, rewardUUID := stockedReward(projectID, 50)

	store := newMockRedemptionStore()
	store.stock[rewardUUID] = 3
	led := newMockLedger()
	led.seed(userID, 40)
	enq := &enqueueRecorder{}
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, enq.insert)

	_, err := svc.Redeem(context.Background(), userID, projectID, def.ID, nil)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if got := led.balance(userID); got != 40 {
		t.Errorf("balance after rejection: got %d, want 40", got)
	}
	if got := store.stock[rewardUUID]; got != 3 {
		t.Errorf("stock after rejection: got %d, want 3", got)
	}
	if store.count() != 0 {
		t.Error("no redemption row should exist")
	}
	if len(enq.args) != 0 {
		t.Error("no fulfillment job should be enqueued")
	}
}

func TestRedeem_OutOfStock(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	def, rewardUUID := stockedReward(projectID, 50)

	store := newMockRedemptionStore()
	store.stock[rewardUUID] = 0
	led := newMockLedger()
	led.seed(userID, 100)
	enq := &enqueueRecorder{}
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, enq.insert)

	_, err := svc.Redeem(context.Background(), userID, projectID, def.ID, nil)
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if store.count() != 0 {
		t.Error("no redemption row should exist")
	}
	if len(enq.args) != 0 {
		t.Error("no fulfillment job should be enqueued")
	}
}

func TestRedeem_BuiltinSkipsStock(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	def := &models.RewardDefinition{
		ID: "a1b2c3d4-coffee-voucher", ProjectID: projectID, Name: "Free Coffee Voucher",
		PointsRequired: 50, IsActive: true, Virtual: true,
	}

	store := newMockRedemptionStore()
	led := newMockLedger()
	led.seed(userID, 60)
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, nil)

	res, err := svc.Redeem(context.Background(), userID, projectID, def.ID, nil)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if res.NewBalance != 10 {
		t.Errorf("balance: got %d, want 10", res.NewBalance)
	}
	if store.decrementCalls != 0 {
		t.Error("built-in rewards must not touch the stock table")
	}
}

func TestRedeem_UnknownReward(t *testing.T) {
	svc := NewService(&stubResolver{}, newMockRedemptionStore(), newMockLedger(), nil)

	_, err := svc.Redeem(context.Background(), uuid.New(), uuid.New(), "no-such-reward", nil)
	if !errors.Is(err, ErrInvalidReward) {
		t.Fatalf("expected ErrInvalidReward, got %v", err)
	}
}

func TestRedeem_InactiveReward(t *testing.T) {
	projectID := uuid.New()
	def, _ := stockedReward(projectID, 50)
	def.IsActive = false

	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, newMockRedemptionStore(), newMockLedger(), nil)

	_, err := svc.Redeem(context.Background(), uuid.New(), projectID, def.ID, nil)
	if !errors.Is(err, ErrInvalidReward) {
		t.Fatalf("expected ErrInvalidReward, got %v", err)
	}
}

func TestRedeem_DuplicateRequest(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	def, rewardUUID := stockedReward(projectID, 10)

	store := newMockRedemptionStore()
	store.stock[rewardUUID] = 5
	led := newMockLedger()
	led.seed(userID, 100)
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, nil)

	reqID := "client-retry-42"
	if _, err := svc.Redeem(context.Background(), userID, projectID, def.ID, &reqID); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	_, err := svc.Redeem(context.Background(), userID, projectID, def.ID, &reqID)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
	if store.count() != 1 {
		t.Errorf("redemption rows: got %d, want 1", store.count())
	}
}

// ---------------------------------------------------------------------------
// No oversell: concurrent redemptions against stock 1 yield exactly one
// winner; everyone else gets ErrOutOfStock.
// ---------------------------------------------------------------------------

func TestRedeem_NoOversellUnderConcurrency(t *testing.T) {
	projectID := uuid.New()
	def, rewardUUID := stockedReward(projectID, 50)

	store := newMockRedemptionStore()
	store.stock[rewardUUID] = 1
	led := newMockLedger()
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, nil)

	const n = 8
	users := make([]uuid.UUID, n)
	for i := range users {
		users[i] = uuid.New()
		led.seed(users[i], 100)
	}

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Redeem(context.Background(), users[i], projectID, def.ID, nil)
		}(i)
	}
	wg.Wait()

	wins, outOfStock := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners: got %d, want exactly 1", wins)
	}
	if outOfStock != n-1 {
		t.Errorf("out-of-stock rejections: got %d, want %d", outOfStock, n-1)
	}
	if got := store.stock[rewardUUID]; got != 0 {
		t.Errorf("final stock: got %d, want 0", got)
	}
	if store.count() != 1 {
		t.Errorf("redemption rows: got %d, want 1", store.count())
	}
}

// ---------------------------------------------------------------------------
// Fulfillment
// ---------------------------------------------------------------------------

func TestMarkRedemptionCompleted(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	def, rewardUUID := stockedReward(projectID, 10)

	store := newMockRedemptionStore()
	store.stock[rewardUUID] = 1
	led := newMockLedger()
	led.seed(userID, 50)
	svc := NewService(&stubResolver{defs: map[string]*models.RewardDefinition{def.ID: def}}, store, led, nil)

	if _, err := svc.Redeem(context.Background(), userID, projectID, def.ID, nil); err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	red := store.redemptions[0]

	if err := svc.MarkRedemptionCompleted(context.Background(), red.ID); err != nil {
		t.Fatalf("MarkRedemptionCompleted: %v", err)
	}
	if red.Status != models.RedemptionStatusCompleted {
		t.Errorf("status: got %q, want completed", red.Status)
	}

	// A second completion finds no pending row.
	if err := svc.MarkRedemptionCompleted(context.Background(), red.ID); err == nil {
		t.Error("completing twice should fail")
	}
}
