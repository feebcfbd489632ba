package hiring

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"jobgujarat-backend/internal/aadhaar"
	"jobgujarat-backend/internal/applications"
	"jobgujarat-backend/internal/jobs"
	"jobgujarat-backend/internal/payments"
	"jobgujarat-backend/internal/queue"
	localstore "jobgujarat-backend/internal/shared/storage/object/local"
)

const testKeySecret = "test_key_secret"

type fakeQueue struct {
	sent []queue.Message
	err  error
}

func (q *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

type countingGateway struct {
	inner payments.PlaceholderGateway
	calls int
}

func (g *countingGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (payments.Order, error) {
	g.calls++
	return g.inner.CreateOrder(ctx, amount, currency, receipt)
}

type fixture struct {
	svc     *Service
	apps    *applications.MemoryRepo
	intents *MemoryRepo
	pays    *payments.MemoryRepo
	queue   *fakeQueue
	gateway *countingGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := localstore.New(t.TempDir())
	jobsRepo := jobs.NewMemoryRepo()
	appsRepo := applications.NewMemoryRepo()
	aadhaarRepo := aadhaar.NewMemoryRepo()
	paysRepo := payments.NewMemoryRepo()
	intentsRepo := NewMemoryRepo()
	q := &fakeQueue{}
	gw := &countingGateway{}

	now := time.Now().UTC()
	job := jobs.Job{
		ID:            "job-1",
		CompanyID:     "company-1",
		CompanyName:   "Sardar Textiles",
		Title:         "Loom Operator",
		MonthlySalary: 1800000,
		Status:        jobs.StatusOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := jobsRepo.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	app := applications.Application{
		ID:          "app-1",
		JobID:       "job-1",
		SeekerID:    "seeker-1",
		Status:      applications.StatusHired,
		ApprovalFee: 50000,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := appsRepo.Create(context.Background(), app); err != nil {
		t.Fatalf("create application: %v", err)
	}

	svc := &Service{
		Intents:   intentsRepo,
		Payments:  paysRepo,
		Gateway:   gw,
		KeySecret: testKeySecret,
		Apps:      &applications.Service{Repo: appsRepo, Jobs: jobsRepo, Store: store},
		Aadhaar:   aadhaar.NewService(aadhaarRepo, store),
		Queue:     q,
	}
	return &fixture{svc: svc, apps: appsRepo, intents: intentsRepo, pays: paysRepo, queue: q, gateway: gw}
}

func signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func jpegUpload(name string) aadhaar.ImageUpload {
	data := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x11}, 256)...)
	return aadhaar.ImageUpload{
		FileName: name,
		Mime:     "image/jpeg",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}
}

func textUpload(name string) aadhaar.ImageUpload {
	data := []byte("definitely not an image")
	return aadhaar.ImageUpload{
		FileName: name,
		Mime:     "image/jpeg",
		Size:     int64(len(data)),
		Body:     bytes.NewReader(data),
	}
}

func TestCreateOrderUsesStoredFee(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", payments.TypeApprovalFee)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Amount != 50000 {
		t.Fatalf("expected order amount 50000, got %d", order.Amount)
	}

	intent, err := fx.intents.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if intent.State != StateOrderCreated {
		t.Fatalf("expected order_created, got %s", intent.State)
	}
}

func TestCreateOrderRejectsMismatchedAmount(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateOrder(context.Background(), "seeker-1", "app-1", "", 100, "INR", "")
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if fx.gateway.calls != 0 {
		t.Fatalf("expected no gateway call, got %d", fx.gateway.calls)
	}
}

func TestCreateOrderRequiresHiredStatus(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	app := applications.Application{
		ID:        "app-2",
		JobID:     "job-1",
		SeekerID:  "seeker-2",
		Status:    applications.StatusApplied,
		CreatedAt: time.Now().UTC(),
	}
	if err := fx.apps.Create(ctx, app); err != nil {
		t.Fatalf("create application: %v", err)
	}

	_, err := fx.svc.CreateOrder(ctx, "seeker-2", "app-2", "", 0, "INR", "")
	if !errors.Is(err, applications.ErrNotHired) {
		t.Fatalf("expected ErrNotHired, got %v", err)
	}
}

func TestCreateOrderIdempotencyKeyReturnsOriginal(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "key-1", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	second, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "key-1", 0, "INR", "")
	if err != nil {
		t.Fatalf("repeat create order: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same order id, got %s and %s", first.ID, second.ID)
	}
	if fx.gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", fx.gateway.calls)
	}
}

// missingFirstLookupRepo hides the stored intent from the first idempotency
// lookup, reproducing two concurrent calls both passing the pre-insert check.
type missingFirstLookupRepo struct {
	Repo
	misses int
}

func (r *missingFirstLookupRepo) GetByIdempotencyKey(ctx context.Context, applicationID, idempotencyKey string) (ApprovalIntent, error) {
	if r.misses > 0 {
		r.misses--
		return ApprovalIntent{}, ErrNotFound
	}
	return r.Repo.GetByIdempotencyKey(ctx, applicationID, idempotencyKey)
}

func TestCreateOrderIdempotencyRaceReturnsWinner(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "race-key", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// The racing call misses the lookup, hits the unique constraint on
	// insert, and must still come back with the winner's order.
	fx.svc.Intents = &missingFirstLookupRepo{Repo: fx.intents, misses: 1}
	second, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "race-key", 0, "INR", "")
	if err != nil {
		t.Fatalf("racing create order: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected winning order %s, got %s", first.ID, second.ID)
	}
	if fx.gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", fx.gateway.calls)
	}
}

func TestCreateOrderForbidsOtherSeeker(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateOrder(context.Background(), "seeker-2", "app-1", "", 0, "INR", "")
	if !errors.Is(err, applications.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConfirmPaymentRejectsBadSignature(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	err = fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", "deadbeef")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}

	intent, err := fx.intents.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if intent.State != StateFailed {
		t.Fatalf("expected failed intent, got %s", intent.State)
	}
	payment, err := fx.pays.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != payments.StatusFailed {
		t.Fatalf("expected failed payment, got %s", payment.Status)
	}
	if len(fx.queue.sent) != 0 {
		t.Fatalf("expected no reconcile message, got %d", len(fx.queue.sent))
	}
}

func TestConfirmPaymentMovesIntentBeforeDocuments(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	intent, err := fx.intents.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if intent.State != StatePaymentConfirmed {
		t.Fatalf("expected payment_confirmed, got %s", intent.State)
	}
	if len(fx.queue.sent) != 1 || fx.queue.sent[0].IntentID != intent.ID {
		t.Fatalf("expected one reconcile message for %s, got %+v", intent.ID, fx.queue.sent)
	}

	// A duplicate callback is a no-op.
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}
	if len(fx.queue.sent) != 1 {
		t.Fatalf("expected no extra message, got %d", len(fx.queue.sent))
	}
}

func TestConfirmPaymentEnqueueFailureStillConfirms(t *testing.T) {
	fx := newFixture(t)
	fx.queue.err = errors.New("sqs unavailable")
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	intent, err := fx.intents.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if intent.State != StatePaymentConfirmed {
		t.Fatalf("expected payment_confirmed despite enqueue failure, got %s", intent.State)
	}
}

func TestSubmitDocumentsCompletesIntent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	app, pair, err := fx.svc.SubmitDocuments(ctx, "seeker-1", "app-1", jpegUpload("front.jpg"), jpegUpload("back.jpg"))
	if err != nil {
		t.Fatalf("submit documents: %v", err)
	}
	if app.Status != applications.StatusHired {
		t.Fatalf("expected HIRED application, got %s", app.Status)
	}
	if pair.FrontURL == "" || pair.BackURL == "" {
		t.Fatalf("expected stored pair urls, got %+v", pair)
	}

	intent, err := fx.intents.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if intent.State != StateCompleted {
		t.Fatalf("expected completed, got %s", intent.State)
	}
}

func TestSubmitDocumentsBeforePayment(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, _, err := fx.svc.SubmitDocuments(ctx, "seeker-1", "app-1", jpegUpload("front.jpg"), jpegUpload("back.jpg"))
	if !errors.Is(err, ErrPaymentPending) {
		t.Fatalf("expected ErrPaymentPending with no intent, got %v", err)
	}

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	_ = order

	_, _, err = fx.svc.SubmitDocuments(ctx, "seeker-1", "app-1", jpegUpload("front.jpg"), jpegUpload("back.jpg"))
	if !errors.Is(err, ErrPaymentPending) {
		t.Fatalf("expected ErrPaymentPending before confirmation, got %v", err)
	}
}

func TestSubmitDocumentsRejectedUploadKeepsIntentOpen(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	_, _, err = fx.svc.SubmitDocuments(ctx, "seeker-1", "app-1", textUpload("front.jpg"), jpegUpload("back.jpg"))
	if !errors.Is(err, aadhaar.ErrImageFormat) {
		t.Fatalf("expected ErrImageFormat, got %v", err)
	}

	intent, err := fx.intents.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if intent.State != StatePaymentConfirmed {
		t.Fatalf("expected intent to stay payment_confirmed, got %s", intent.State)
	}
	if intent.Attempts != 1 || intent.LastError == "" {
		t.Fatalf("expected recorded attempt, got attempts=%d lastError=%q", intent.Attempts, intent.LastError)
	}

	// Retry with a valid pair succeeds.
	if _, _, err := fx.svc.SubmitDocuments(ctx, "seeker-1", "app-1", jpegUpload("front.jpg"), jpegUpload("back.jpg")); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
}

func TestReconcileCompletesWhenDocumentsExist(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if _, err := fx.svc.Aadhaar.SavePair(ctx, "seeker-1", jpegUpload("front.jpg"), jpegUpload("back.jpg")); err != nil {
		t.Fatalf("save pair: %v", err)
	}

	intent, _ := fx.intents.GetByOrderID(ctx, order.ID)
	if err := fx.svc.Reconcile(ctx, intent.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	updated, _ := fx.intents.GetByID(ctx, intent.ID)
	if updated.State != StateCompleted {
		t.Fatalf("expected completed after reconcile, got %s", updated.State)
	}
}

func TestReconcileStallsOverdueIntent(t *testing.T) {
	fx := newFixture(t)
	fx.svc.StallAfter = time.Millisecond
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	intent, _ := fx.intents.GetByOrderID(ctx, order.ID)
	if err := fx.svc.Reconcile(ctx, intent.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	updated, _ := fx.intents.GetByID(ctx, intent.ID)
	if updated.State != StateStalled {
		t.Fatalf("expected stalled, got %s", updated.State)
	}

	// A stalled intent still completes once the documents arrive.
	if _, _, err := fx.svc.SubmitDocuments(ctx, "seeker-1", "app-1", jpegUpload("front.jpg"), jpegUpload("back.jpg")); err != nil {
		t.Fatalf("submit after stall: %v", err)
	}
	final, _ := fx.intents.GetByID(ctx, intent.ID)
	if final.State != StateCompleted {
		t.Fatalf("expected completed after late submission, got %s", final.State)
	}
}

func TestSweepReconcilesOverdueIntents(t *testing.T) {
	fx := newFixture(t)
	fx.svc.StallAfter = time.Millisecond
	ctx := context.Background()

	order, err := fx.svc.CreateOrder(ctx, "seeker-1", "app-1", "", 0, "INR", "")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := fx.svc.ConfirmPayment(ctx, "seeker-1", "app-1", order.ID, "pay-1", signature(order.ID, "pay-1")); err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	swept, err := fx.svc.Sweep(ctx, 10)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept intent, got %d", swept)
	}

	intent, _ := fx.intents.GetByOrderID(ctx, order.ID)
	if intent.State != StateStalled {
		t.Fatalf("expected stalled after sweep, got %s", intent.State)
	}
}
