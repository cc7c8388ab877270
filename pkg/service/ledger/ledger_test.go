package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/domain/money"
	"github.com/amirasaad/walletfx/pkg/provider"
	"github.com/amirasaad/walletfx/pkg/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- in-memory unit of work -------------------------------------------------

type balanceKey struct {
	userID   uuid.UUID
	currency currency.Code
}

// memStore emulates the balance store and transaction log with transactional
// semantics: units of work serialize, roll back on error, and can be made to
// fail in targeted ways.
type memStore struct {
	txMu sync.Mutex // serializes units of work
	mu   sync.Mutex // guards the maps below

	users    map[uuid.UUID]bool
	balances map[balanceKey]int64
	entries  []*ledger.Entry

	entryCreateErr error
	conflictsLeft  int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]bool),
		balances: make(map[balanceKey]int64),
	}
}

func (st *memStore) snapshot() (map[balanceKey]int64, int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	balances := make(map[balanceKey]int64, len(st.balances))
	for k, v := range st.balances {
		balances[k] = v
	}
	return balances, len(st.entries)
}

func (st *memStore) restore(balances map[balanceKey]int64, entryCount int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.balances = balances
	st.entries = st.entries[:entryCount]
}

type memUoW struct {
	store *memStore
}

func (u *memUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	st := u.store
	st.txMu.Lock()
	defer st.txMu.Unlock()

	if st.conflictsLeft > 0 {
		st.conflictsLeft--
		return ledger.ErrPersistenceConflict
	}

	balances, entryCount := st.snapshot()
	if err := fn(&memUoW{store: st}); err != nil {
		st.restore(balances, entryCount)
		return err
	}
	return nil
}

func (u *memUoW) Balances() repository.BalanceRepository         { return &memBalances{u.store} }
func (u *memUoW) Transactions() repository.TransactionRepository { return &memEntries{u.store} }
func (u *memUoW) Users() repository.UserRepository               { return &memUsers{u.store} }

type memBalances struct{ store *memStore }

func (r *memBalances) Get(
	ctx context.Context,
	userID uuid.UUID,
	code currency.Code,
) (*ledger.Balance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	amount, _ := money.NewFromSmallestUnit(r.store.balances[balanceKey{userID, code}], code)
	return &ledger.Balance{UserID: userID, Amount: amount}, nil
}

func (r *memBalances) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Balance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*ledger.Balance
	for k, v := range r.store.balances {
		if k.userID != userID {
			continue
		}
		amount, _ := money.NewFromSmallestUnit(v, k.currency)
		result = append(result, &ledger.Balance{UserID: userID, Amount: amount})
	}
	return result, nil
}

func (r *memBalances) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Money,
) (*ledger.Balance, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := balanceKey{userID, amount.Currency()}
	r.store.balances[key] += amount.Amount()
	updated, _ := money.NewFromSmallestUnit(r.store.balances[key], amount.Currency())
	return &ledger.Balance{UserID: userID, Amount: updated}, nil
}

func (r *memBalances) Debit(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Money,
) (*ledger.Balance, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := balanceKey{userID, amount.Currency()}
	if r.store.balances[key] < amount.Amount() {
		return nil, ledger.ErrInsufficientBalance
	}
	r.store.balances[key] -= amount.Amount()
	updated, _ := money.NewFromSmallestUnit(r.store.balances[key], amount.Currency())
	return &ledger.Balance{UserID: userID, Amount: updated}, nil
}

type memEntries struct{ store *memStore }

func (r *memEntries) Create(ctx context.Context, entry *ledger.Entry) error {
	if r.store.entryCreateErr != nil {
		return r.store.entryCreateErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.entries = append(r.store.entries, entry)
	return nil
}

func (r *memEntries) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*ledger.Entry
	for i := len(r.store.entries) - 1; i >= 0; i-- {
		if r.store.entries[i].UserID == userID {
			result = append(result, r.store.entries[i])
		}
	}
	return result, nil
}

type memUsers struct{ store *memStore }

func (r *memUsers) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.users[userID], nil
}

// --- rate source stub -------------------------------------------------------

type stubRates struct {
	mu    sync.Mutex
	rate  decimal.Decimal
	src   provider.QuoteSource
	err   error
	calls int
}

func (s *stubRates) GetRate(
	ctx context.Context,
	from, to currency.Code,
) (*provider.RateQuote, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	src := s.src
	if src == "" {
		src = provider.SourceLive
	}
	return &provider.RateQuote{
		From: from, To: to, Rate: s.rate, FetchedAt: time.Now(), Source: src,
	}, nil
}

// --- fixtures ---------------------------------------------------------------

func newFixture(t *testing.T, rates RateSource) (*Service, *memStore, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	userID := uuid.New()
	store.users[userID] = true
	if rates == nil {
		rates = &stubRates{rate: dec("0.00062")}
	}
	svc := NewService(&memUoW{store: store}, rates, testLogger())
	return svc, store, userID
}

func mustFund(t *testing.T, svc *Service, userID uuid.UUID, code currency.Code, amount string) {
	t.Helper()
	_, err := svc.Fund(context.Background(), userID, code, dec(amount))
	require.NoError(t, err)
}

// --- tests ------------------------------------------------------------------

func TestFund_Success(t *testing.T) {
	svc, store, userID := newFixture(t, nil)

	b, err := svc.Fund(context.Background(), userID, "NGN", dec("1000"))
	require.NoError(t, err)
	assert.Equal(t, int64(100000), b.Amount.Amount())
	assert.Equal(t, currency.Code("NGN"), b.Currency())

	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, ledger.KindFund, entry.Kind)
	assert.Equal(t, int64(100000), entry.Amount.Amount())
	assert.Equal(t, currency.Code("NGN"), entry.FromCurrency)
	assert.Equal(t, currency.Code("NGN"), entry.ToCurrency)
	assert.Nil(t, entry.Rate)
	assert.Equal(t, ledger.StatusSuccess, entry.Status)
}

func TestFund_InvalidAmount(t *testing.T) {
	svc, store, userID := newFixture(t, nil)

	for _, amount := range []string{"0", "-5"} {
		_, err := svc.Fund(context.Background(), userID, "USD", dec(amount))
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount, amount)
	}
	assert.Empty(t, store.entries)
}

func TestFund_UserNotFound(t *testing.T) {
	svc, store, _ := newFixture(t, nil)

	_, err := svc.Fund(context.Background(), uuid.New(), "USD", dec("10"))
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
	assert.Empty(t, store.entries)
	assert.Empty(t, store.balances)
}

func TestFund_InvalidCurrency(t *testing.T) {
	svc, _, userID := newFixture(t, nil)

	_, err := svc.Fund(context.Background(), userID, "usd", dec("10"))
	assert.ErrorIs(t, err, ledger.ErrInvalidCurrencyCode)
}

func TestConvert_Success(t *testing.T) {
	rates := &stubRates{rate: dec("0.00062")}
	svc, store, userID := newFixture(t, rates)
	mustFund(t, svc, userID, "NGN", "1000")

	res, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	require.NoError(t, err)

	// 500 * 0.00062 = 0.31 USD
	assert.Equal(t, int64(31), res.ConvertedAmount.Amount())
	assert.Equal(t, currency.Code("USD"), res.ConvertedAmount.Currency())
	assert.True(t, res.Rate.Equal(dec("0.00062")))

	// Conservation: source lost exactly 500, target gained exactly 0.31.
	ngn := store.balances[balanceKey{userID, "NGN"}]
	usd := store.balances[balanceKey{userID, "USD"}]
	assert.Equal(t, int64(50000), ngn)
	assert.Equal(t, int64(31), usd)

	require.Len(t, store.entries, 2) // fund + convert
	entry := store.entries[1]
	assert.Equal(t, ledger.KindConvert, entry.Kind)
	assert.Equal(t, int64(50000), entry.Amount.Amount())
	assert.Equal(t, currency.Code("NGN"), entry.FromCurrency)
	assert.Equal(t, currency.Code("USD"), entry.ToCurrency)
	require.NotNil(t, entry.Rate)
	assert.True(t, entry.Rate.Equal(dec("0.00062")))
}

func TestConvert_InsufficientBalance(t *testing.T) {
	svc, store, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")

	_, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("99999"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	assert.Equal(t, int64(100000), store.balances[balanceKey{userID, "NGN"}])
	assert.Len(t, store.entries, 1) // only the fund
}

func TestConvert_IdentityPair(t *testing.T) {
	rates := &stubRates{rate: dec("0.5")}
	svc, store, userID := newFixture(t, rates)
	mustFund(t, svc, userID, "USD", "100")

	res, err := svc.Convert(context.Background(), userID, "USD", "USD", dec("40"))
	require.NoError(t, err)
	assert.True(t, res.Rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int64(4000), res.ConvertedAmount.Amount())
	assert.Zero(t, rates.calls, "identity pairs must not hit the rate source")
	assert.Equal(t, int64(10000), store.balances[balanceKey{userID, "USD"}])
}

func TestConvert_RateUnavailableLeavesNoTrace(t *testing.T) {
	rates := &stubRates{err: ledger.ErrRateUnavailable}
	svc, store, userID := newFixture(t, rates)
	mustFund(t, svc, userID, "NGN", "1000")

	_, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	assert.ErrorIs(t, err, ledger.ErrRateUnavailable)

	assert.Equal(t, int64(100000), store.balances[balanceKey{userID, "NGN"}])
	assert.Zero(t, store.balances[balanceKey{userID, "USD"}])
	assert.Len(t, store.entries, 1)
}

func TestConvert_FallbackRateIsRecorded(t *testing.T) {
	rates := &stubRates{rate: dec("0.00062"), src: provider.SourceFallback}
	svc, store, userID := newFixture(t, rates)
	mustFund(t, svc, userID, "NGN", "1000")

	res, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	require.NoError(t, err)
	assert.Equal(t, string(provider.SourceFallback), res.RateSource)

	entry := store.entries[1]
	require.NotNil(t, entry.Rate)
	assert.True(t, entry.Rate.Equal(dec("0.00062")))
}

func TestConvert_AtomicOnLogFailure(t *testing.T) {
	svc, store, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")
	store.entryCreateErr = errors.New("disk full")

	_, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	require.Error(t, err)

	// Nothing committed: both balances and the log are untouched.
	assert.Equal(t, int64(100000), store.balances[balanceKey{userID, "NGN"}])
	assert.Zero(t, store.balances[balanceKey{userID, "USD"}])
	assert.Len(t, store.entries, 1)
}

func TestConvert_AmountRoundsToZeroInTarget(t *testing.T) {
	svc, store, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")

	// 1 NGN at 0.00062 is 0.00062 USD, which rounds to zero cents.
	_, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("1"))
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	assert.Equal(t, int64(100000), store.balances[balanceKey{userID, "NGN"}])
	assert.Equal(t, int64(0), store.balances[balanceKey{userID, "USD"}])
	require.Len(t, store.entries, 1) // only the funding entry
	assert.Equal(t, ledger.KindFund, store.entries[0].Kind)
}

func TestConvert_RetriesConflicts(t *testing.T) {
	svc, store, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")
	store.conflictsLeft = 2

	res, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	require.NoError(t, err)
	assert.Equal(t, int64(31), res.ConvertedAmount.Amount())
	assert.Len(t, store.entries, 2)
}

func TestConvert_ConflictRetriesExhausted(t *testing.T) {
	svc, store, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")
	store.conflictsLeft = conflictRetries + 1

	_, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	assert.ErrorIs(t, err, ledger.ErrPersistenceConflict)
	assert.Equal(t, int64(100000), store.balances[balanceKey{userID, "NGN"}])
}

func TestTrade_LogsTradeKind(t *testing.T) {
	svc, store, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")

	_, err := svc.Trade(context.Background(), userID, "NGN", "USD", dec("500"))
	require.NoError(t, err)

	entry := store.entries[1]
	assert.Equal(t, ledger.KindTrade, entry.Kind)
}

func TestConcurrentConverts_OnlyOneSucceeds(t *testing.T) {
	rates := &stubRates{rate: dec("0.9")}
	svc, store, userID := newFixture(t, rates)
	mustFund(t, svc, userID, "USD", "100")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Convert(context.Background(), userID, "USD", "EUR", dec("80"))
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two converts must fail")

	final := store.balances[balanceKey{userID, "USD"}]
	assert.Equal(t, int64(2000), final)
	assert.GreaterOrEqual(t, final, int64(0))
}

func TestGetBalances(t *testing.T) {
	svc, _, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")
	mustFund(t, svc, userID, "USD", "25")

	first, err := svc.GetBalances(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Idempotent read: no mutation in between means identical results.
	second, err := svc.GetBalances(context.Background(), userID)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}

func TestGetBalances_UserNotFound(t *testing.T) {
	svc, _, _ := newFixture(t, nil)
	_, err := svc.GetBalances(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestGetHistory_NewestFirst(t *testing.T) {
	svc, _, userID := newFixture(t, nil)
	mustFund(t, svc, userID, "NGN", "1000")
	_, err := svc.Convert(context.Background(), userID, "NGN", "USD", dec("500"))
	require.NoError(t, err)

	history, err := svc.GetHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ledger.KindConvert, history[0].Kind)
	assert.Equal(t, ledger.KindFund, history[1].Kind)
}

func TestGetRate_IdentityPair(t *testing.T) {
	rates := &stubRates{rate: dec("2")}
	svc, _, _ := newFixture(t, rates)

	quote, err := svc.GetRate(context.Background(), "EUR", "EUR")
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(decimal.NewFromInt(1)))
	assert.Zero(t, rates.calls)
}

func TestGetRate_Passthrough(t *testing.T) {
	rates := &stubRates{rate: dec("0.85")}
	svc, _, _ := newFixture(t, rates)

	quote, err := svc.GetRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, quote.Rate.Equal(dec("0.85")))
	assert.Equal(t, 1, rates.calls)
}
