package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
	"github.com/ardiansyahnr/event-ticketing/internal/queue"
	"github.com/ardiansyahnr/event-ticketing/internal/repository"
)

type fakeTxStore struct {
	created      *model.Transaction
	details      map[uint64]repository.TransactionDetail
	updateErr    error
	updatedTo    model.TransactionStatus
	updatedFrom  model.TransactionStatus
	updatedNotes *string
}

func (f *fakeTxStore) Create(_ context.Context, t *model.Transaction) error {
	t.ID = 100
	f.created = t
	if f.details == nil {
		f.details = map[uint64]repository.TransactionDetail{}
	}
	f.details[t.ID] = repository.TransactionDetail{Transaction: *t}
	return nil
}

func (f *fakeTxStore) GetByID(_ context.Context, id uint64) (repository.TransactionDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return repository.TransactionDetail{}, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeTxStore) List(_ context.Context, _ repository.TransactionFilter) ([]repository.TransactionDetail, repository.Pagination, error) {
	return nil, repository.Pagination{}, nil
}

func (f *fakeTxStore) UpdateStatus(_ context.Context, id uint64, from, to model.TransactionStatus, notes *string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedFrom, f.updatedTo, f.updatedNotes = from, to, notes
	d := f.details[id]
	d.Status = to
	f.details[id] = d
	return nil
}

func (f *fakeTxStore) Stats(_ context.Context, _, _ uint64) ([]repository.StatusCount, error) {
	return nil, nil
}

func (f *fakeTxStore) ListExpiring(_ context.Context, _ int) ([]repository.TransactionDetail, error) {
	return nil, nil
}

type fakeEventStore struct {
	event        model.Event
	getErr       error
	decremented  int
	incremented  int
	decrementErr error
}

func (f *fakeEventStore) GetByID(_ context.Context, _ uint64) (model.Event, error) {
	return f.event, f.getErr
}

func (f *fakeEventStore) DecrementQuantity(_ context.Context, _ uint64) error {
	if f.decrementErr != nil {
		return f.decrementErr
	}
	f.decremented++
	return nil
}

func (f *fakeEventStore) IncrementQuantity(_ context.Context, _ uint64) error {
	f.incremented++
	return nil
}

type fakeUserStore struct {
	user model.User
}

func (f *fakeUserStore) GetByID(_ context.Context, _ uint64) (model.User, error) {
	return f.user, nil
}

type fakeCouponEngine struct {
	coupon      model.Coupon
	getErr      error
	useErr      error
	used        int
	rolledBack  int
	rollbackErr error
}

func (f *fakeCouponEngine) Get(_ context.Context, _ uint64) (model.Coupon, error) {
	return f.coupon, f.getErr
}

func (f *fakeCouponEngine) UseCoupon(_ context.Context, _ uint64) (model.Coupon, error) {
	if f.useErr != nil {
		return model.Coupon{}, f.useErr
	}
	f.used++
	return f.coupon, nil
}

func (f *fakeCouponEngine) RollbackUsage(_ context.Context, _ uint64) (model.Coupon, error) {
	if f.rollbackErr != nil {
		return model.Coupon{}, f.rollbackErr
	}
	f.rolledBack++
	return f.coupon, nil
}

type fakeNotifier struct {
	events []queue.NotificationEvent
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, ev queue.NotificationEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func upcomingEvent() model.Event {
	return model.Event{
		ID:       1,
		Title:    "Jazz Night",
		Quantity: 10,
		PriceIDR: 100000,
		StartsAt: testNow.Add(48 * time.Hour),
		EndsAt:   testNow.Add(52 * time.Hour),
	}
}

func newTestTxService(txs *fakeTxStore, events *fakeEventStore, users *fakeUserStore, coupons *fakeCouponEngine, n Notifier) *TransactionService {
	svc := NewTransactionService(txs, events, users, coupons, n)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateTransaction(t *testing.T) {
	txs := &fakeTxStore{}
	events := &fakeEventStore{event: upcomingEvent()}
	svc := newTestTxService(txs, events, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	detail, err := svc.Create(context.Background(), 7, CreateTransactionInput{EventID: 1})
	require.NoError(t, err)

	assert.Equal(t, model.StatusWaitingForPayment, detail.Status)
	assert.Equal(t, int64(100000), detail.TotalIDR)
	assert.Equal(t, uint64(7), detail.UserID)
	assert.NotEmpty(t, txs.created.Reference)
	assert.Equal(t, 1, events.decremented)
}

func TestCreateTransactionWithCouponAndPoints(t *testing.T) {
	txs := &fakeTxStore{}
	events := &fakeEventStore{event: upcomingEvent()}
	users := &fakeUserStore{user: model.User{ID: 7, Points: 50000}}
	coupons := &fakeCouponEngine{coupon: model.Coupon{ID: 4, DiscountIDR: 30000}}
	svc := newTestTxService(txs, events, users, coupons, nil)

	couponID := uint64(4)
	detail, err := svc.Create(context.Background(), 7, CreateTransactionInput{
		EventID: 1, CouponID: &couponID, PointsUsed: 20000,
	})
	require.NoError(t, err)

	// 100000 - 30000 coupon - 20000 points
	assert.Equal(t, int64(50000), detail.TotalIDR)
	assert.Equal(t, 1, coupons.used)
}

func TestCreateTransactionTotalFloorsAtZero(t *testing.T) {
	txs := &fakeTxStore{}
	events := &fakeEventStore{event: upcomingEvent()}
	coupons := &fakeCouponEngine{coupon: model.Coupon{ID: 4, DiscountIDR: 250000}}
	svc := newTestTxService(txs, events, &fakeUserStore{}, coupons, nil)

	couponID := uint64(4)
	detail, err := svc.Create(context.Background(), 7, CreateTransactionInput{
		EventID: 1, CouponID: &couponID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), detail.TotalIDR)
}

func TestCreateTransactionFreeEvent(t *testing.T) {
	ev := upcomingEvent()
	ev.IsFree = true
	txs := &fakeTxStore{}
	svc := newTestTxService(txs, &fakeEventStore{event: ev}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	detail, err := svc.Create(context.Background(), 7, CreateTransactionInput{EventID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), detail.TotalIDR)
}

func TestCreateTransactionSoldOut(t *testing.T) {
	ev := upcomingEvent()
	ev.Quantity = 0
	svc := newTestTxService(&fakeTxStore{}, &fakeEventStore{event: ev}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.Create(context.Background(), 7, CreateTransactionInput{EventID: 1})
	assert.ErrorIs(t, err, ErrSoldOut)
}

func TestCreateTransactionEventStarted(t *testing.T) {
	ev := upcomingEvent()
	ev.StartsAt = testNow.Add(-time.Hour)
	svc := newTestTxService(&fakeTxStore{}, &fakeEventStore{event: ev}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.Create(context.Background(), 7, CreateTransactionInput{EventID: 1})
	assert.ErrorIs(t, err, ErrEventStarted)
}

func TestCreateTransactionInsufficientPoints(t *testing.T) {
	users := &fakeUserStore{user: model.User{ID: 7, Points: 500}}
	svc := newTestTxService(&fakeTxStore{}, &fakeEventStore{event: upcomingEvent()}, users, &fakeCouponEngine{}, nil)

	_, err := svc.Create(context.Background(), 7, CreateTransactionInput{EventID: 1, PointsUsed: 20000})
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestCreateTransactionLosesLastSeat(t *testing.T) {
	// Quantity read 1 but another purchase took it before our decrement.
	events := &fakeEventStore{event: upcomingEvent(), decrementErr: repository.ErrSoldOut}
	svc := newTestTxService(&fakeTxStore{}, events, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.Create(context.Background(), 7, CreateTransactionInput{EventID: 1})
	assert.ErrorIs(t, err, ErrSoldOut)
}

func waitingAdminDetail() repository.TransactionDetail {
	return repository.TransactionDetail{
		Transaction: model.Transaction{
			ID:      100,
			UserID:  7,
			EventID: 1,
			Status:  model.StatusWaitingForAdmin,
		},
		User:  repository.UserSummary{ID: 7, Name: "Rina", Email: "rina@example.com"},
		Event: repository.EventSummary{ID: 1, Title: "Jazz Night"},
	}
}

func TestUpdateStatusDoneNotifies(t *testing.T) {
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: waitingAdminDetail()}}
	events := &fakeEventStore{}
	notifier := &fakeNotifier{}
	svc := newTestTxService(txs, events, &fakeUserStore{}, &fakeCouponEngine{}, notifier)

	detail, err := svc.UpdateStatus(context.Background(), 100, UpdateStatusInput{Status: model.StatusDone})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDone, detail.Status)
	assert.Equal(t, model.StatusWaitingForAdmin, txs.updatedFrom)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "rina@example.com", notifier.events[0].ToEmail)
	assert.Equal(t, "transaction-accepted", notifier.events[0].Template)
	assert.Equal(t, 0, events.incremented)
}

func TestUpdateStatusRejectedRestoresSeatAndCoupon(t *testing.T) {
	d := waitingAdminDetail()
	couponID := uint64(4)
	d.CouponID = &couponID
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: d}}
	events := &fakeEventStore{}
	coupons := &fakeCouponEngine{}
	notifier := &fakeNotifier{}
	svc := newTestTxService(txs, events, &fakeUserStore{}, coupons, notifier)

	notes := "payment proof missing"
	detail, err := svc.UpdateStatus(context.Background(), 100, UpdateStatusInput{
		Status: model.StatusRejected, AdminNotes: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, detail.Status)
	assert.Equal(t, 1, events.incremented)
	assert.Equal(t, 1, coupons.rolledBack)
	require.NotNil(t, txs.updatedNotes)
	assert.Equal(t, notes, *txs.updatedNotes)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "transaction-rejected", notifier.events[0].Template)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	d := waitingAdminDetail()
	d.Status = model.StatusDone
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: d}}
	svc := newTestTxService(txs, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.UpdateStatus(context.Background(), 100, UpdateStatusInput{Status: model.StatusRejected})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, model.StatusDone, te.From)
	assert.Equal(t, model.StatusRejected, te.To)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc := newTestTxService(&fakeTxStore{}, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.UpdateStatus(context.Background(), 100, UpdateStatusInput{Status: "PAID"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusLosesRace(t *testing.T) {
	txs := &fakeTxStore{
		details:   map[uint64]repository.TransactionDetail{100: waitingAdminDetail()},
		updateErr: repository.ErrStaleStatus,
	}
	svc := newTestTxService(txs, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.UpdateStatus(context.Background(), 100, UpdateStatusInput{Status: model.StatusDone})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusNotifyFailureDoesNotFail(t *testing.T) {
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: waitingAdminDetail()}}
	notifier := &fakeNotifier{err: errors.New("broker down")}
	svc := newTestTxService(txs, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, notifier)

	detail, err := svc.UpdateStatus(context.Background(), 100, UpdateStatusInput{Status: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, detail.Status)
}

func waitingPaymentDetail() repository.TransactionDetail {
	d := waitingAdminDetail()
	d.Status = model.StatusWaitingForPayment
	return d
}

func TestCancelTransaction(t *testing.T) {
	d := waitingPaymentDetail()
	couponID := uint64(4)
	d.CouponID = &couponID
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: d}}
	events := &fakeEventStore{}
	coupons := &fakeCouponEngine{}
	svc := newTestTxService(txs, events, &fakeUserStore{}, coupons, nil)

	detail, err := svc.Cancel(context.Background(), 100, 7)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCanceled, detail.Status)
	assert.Equal(t, 1, events.incremented)
	assert.Equal(t, 1, coupons.rolledBack)
}

func TestCancelTransactionWrongUser(t *testing.T) {
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: waitingPaymentDetail()}}
	svc := newTestTxService(txs, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.Cancel(context.Background(), 100, 999)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelTransactionWrongState(t *testing.T) {
	txs := &fakeTxStore{details: map[uint64]repository.TransactionDetail{100: waitingAdminDetail()}}
	svc := newTestTxService(txs, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.Cancel(context.Background(), 100, 7)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelTransactionNotFound(t *testing.T) {
	svc := newTestTxService(&fakeTxStore{details: map[uint64]repository.TransactionDetail{}}, &fakeEventStore{}, &fakeUserStore{}, &fakeCouponEngine{}, nil)

	_, err := svc.Cancel(context.Background(), 42, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
