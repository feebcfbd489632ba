package hiring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobgujarat-backend/internal/aadhaar"
	"jobgujarat-backend/internal/applications"
	"jobgujarat-backend/internal/payments"
	"jobgujarat-backend/internal/queue"
	"jobgujarat-backend/internal/shared/metrics"
	"jobgujarat-backend/internal/shared/telemetry"
)

const DefaultStallAfter = 30 * time.Minute

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("approval access denied")
	ErrAmountMismatch     = errors.New("amount does not match approval fee")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrPaymentPending     = errors.New("payment not confirmed")
	ErrIntentFailed       = errors.New("approval attempt already failed")
)

// Service runs the hire-confirmation workflow: fee lookup, order creation,
// payment verification, and Aadhaar document submission, tracked by a durable
// approval intent per attempt.
type Service struct {
	Intents    Repo
	Payments   payments.Repo
	Gateway    payments.Gateway
	KeySecret  string
	Apps       *applications.Service
	Aadhaar    *aadhaar.Service
	Queue      queue.Client
	StallAfter time.Duration
}

func (s *Service) stallAfter() time.Duration {
	if s.StallAfter > 0 {
		return s.StallAfter
	}
	return DefaultStallAfter
}

// CreateOrder creates a gateway order for an application's approval fee. The
// fee is read fresh from the application record; a non-zero client amount
// that disagrees with it is rejected. A repeated idempotency key returns the
// original order without touching the gateway again.
func (s *Service) CreateOrder(ctx context.Context, seekerID, applicationID, idempotencyKey string, clientAmount int64, currency, paymentType string) (payments.Order, error) {
	if strings.TrimSpace(seekerID) == "" || strings.TrimSpace(applicationID) == "" {
		return payments.Order{}, ErrInvalidInput
	}
	if paymentType != "" && paymentType != payments.TypeApprovalFee {
		return payments.Order{}, ErrInvalidInput
	}
	if currency == "" {
		currency = "INR"
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.Intents.GetByIdempotencyKey(ctx, applicationID, idempotencyKey)
		if err == nil && existing.OrderID != "" && existing.State != StateFailed {
			if existing.SeekerID != seekerID {
				return payments.Order{}, ErrForbidden
			}
			return payments.Order{ID: existing.OrderID, Amount: existing.Amount, Currency: currency}, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return payments.Order{}, err
		}
	}

	quote, err := s.Apps.FeeQuote(ctx, seekerID, applicationID)
	if err != nil {
		return payments.Order{}, err
	}
	if clientAmount != 0 && clientAmount != quote.ApprovalFee {
		return payments.Order{}, ErrAmountMismatch
	}

	now := time.Now().UTC()
	intent := ApprovalIntent{
		ID:             uuid.NewString(),
		ApplicationID:  applicationID,
		SeekerID:       seekerID,
		IdempotencyKey: idempotencyKey,
		Amount:         quote.ApprovalFee,
		State:          StateCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Intents.Create(ctx, intent); err != nil {
		if errors.Is(err, ErrDuplicate) && idempotencyKey != "" {
			// Lost a concurrent race on the same key; hand back the winner's
			// order if it already exists.
			winner, getErr := s.Intents.GetByIdempotencyKey(ctx, applicationID, idempotencyKey)
			if getErr != nil {
				return payments.Order{}, err
			}
			if winner.SeekerID != seekerID {
				return payments.Order{}, ErrForbidden
			}
			if winner.OrderID != "" && winner.State != StateFailed {
				return payments.Order{ID: winner.OrderID, Amount: winner.Amount, Currency: currency}, nil
			}
		}
		return payments.Order{}, err
	}

	order, err := s.Gateway.CreateOrder(ctx, quote.ApprovalFee, currency, applicationID)
	if err != nil {
		_ = s.Intents.Advance(ctx, intent.ID, StateCreated, StateFailed, IntentUpdate{
			LastError:    err.Error(),
			BumpAttempts: true,
		})
		return payments.Order{}, err
	}

	payment := payments.Payment{
		ID:             uuid.NewString(),
		ApplicationID:  applicationID,
		OrderID:        order.ID,
		Amount:         quote.ApprovalFee,
		Currency:       currency,
		PaymentType:    payments.TypeApprovalFee,
		Status:         payments.StatusCreated,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Payments.Create(ctx, payment); err != nil {
		if errors.Is(err, payments.ErrDuplicate) && idempotencyKey != "" {
			// Lost a concurrent race on the same key; hand back the winner.
			winner, getErr := s.Payments.GetByIdempotencyKey(ctx, applicationID, idempotencyKey)
			if getErr == nil {
				return payments.Order{ID: winner.OrderID, Amount: winner.Amount, Currency: winner.Currency}, nil
			}
		}
		return payments.Order{}, err
	}

	if err := s.Intents.Advance(ctx, intent.ID, StateCreated, StateOrderCreated, IntentUpdate{
		OrderID: order.ID,
		Amount:  quote.ApprovalFee,
	}); err != nil {
		return payments.Order{}, err
	}

	metrics.IncApprovalOrderCreated()
	telemetry.Info("approval.order.created", map[string]any{
		"intentId":      intent.ID,
		"applicationId": applicationID,
		"orderId":       order.ID,
		"amount":        quote.ApprovalFee,
	})
	return payments.Order{ID: order.ID, Amount: quote.ApprovalFee, Currency: currency}, nil
}

// ConfirmPayment verifies the signed checkout result. Success moves the
// intent to payment_confirmed before any document upload is considered;
// failure marks it failed and no upload will be accepted.
func (s *Service) ConfirmPayment(ctx context.Context, seekerID, applicationID, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" {
		return ErrInvalidInput
	}

	intent, err := s.Intents.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if intent.SeekerID != seekerID {
		return ErrForbidden
	}
	if applicationID != "" && intent.ApplicationID != applicationID {
		return ErrInvalidInput
	}
	if intent.State == StatePaymentConfirmed || intent.State == StateCompleted {
		return nil
	}
	if intent.State != StateOrderCreated {
		return ErrIntentFailed
	}

	if !payments.VerifySignature(orderID, paymentID, signature, s.KeySecret) {
		_ = s.Payments.UpdateStatus(ctx, orderID, paymentID, payments.StatusFailed)
		_ = s.Intents.Advance(ctx, intent.ID, StateOrderCreated, StateFailed, IntentUpdate{
			PaymentID:    paymentID,
			LastError:    "signature verification failed",
			BumpAttempts: true,
		})
		metrics.IncPaymentVerifyFailed()
		telemetry.Info("approval.payment.rejected", map[string]any{
			"intentId": intent.ID,
			"orderId":  orderID,
		})
		return ErrVerificationFailed
	}

	if err := s.Payments.UpdateStatus(ctx, orderID, paymentID, payments.StatusPaid); err != nil {
		return err
	}
	if err := s.Intents.Advance(ctx, intent.ID, StateOrderCreated, StatePaymentConfirmed, IntentUpdate{
		PaymentID: paymentID,
	}); err != nil {
		if errors.Is(err, ErrStaleState) {
			return nil
		}
		return err
	}

	metrics.IncPaymentVerified()
	telemetry.Info("approval.payment.confirmed", map[string]any{
		"intentId":      intent.ID,
		"applicationId": intent.ApplicationID,
		"orderId":       orderID,
	})

	if s.Queue != nil {
		msg := queue.Message{
			IntentID:   intent.ID,
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			// Reconciliation also runs from the periodic sweep, so a
			// dropped message delays it rather than losing it.
			telemetry.Error("approval.enqueue.failed", map[string]any{
				"intentId": intent.ID,
				"error":    err.Error(),
			})
		}
	}
	return nil
}

// SubmitDocuments stores the Aadhaar pair for a payment-confirmed intent and
// completes it. An upload failure leaves the intent in payment_confirmed with
// the error recorded for reconciliation.
func (s *Service) SubmitDocuments(ctx context.Context, seekerID, applicationID string, front, back aadhaar.ImageUpload) (applications.Application, aadhaar.DocumentPair, error) {
	if strings.TrimSpace(applicationID) == "" {
		return applications.Application{}, aadhaar.DocumentPair{}, ErrInvalidInput
	}

	intent, err := s.Intents.LatestByApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return applications.Application{}, aadhaar.DocumentPair{}, ErrPaymentPending
		}
		return applications.Application{}, aadhaar.DocumentPair{}, err
	}
	if intent.SeekerID != seekerID {
		return applications.Application{}, aadhaar.DocumentPair{}, ErrForbidden
	}
	switch intent.State {
	case StatePaymentConfirmed, StateStalled:
	case StateFailed:
		return applications.Application{}, aadhaar.DocumentPair{}, ErrIntentFailed
	case StateCompleted:
		// Re-submission after completion refreshes the stored pair below.
	default:
		return applications.Application{}, aadhaar.DocumentPair{}, ErrPaymentPending
	}

	pair, err := s.Aadhaar.SavePair(ctx, seekerID, front, back)
	if err != nil {
		if intent.Active() {
			_ = s.Intents.Advance(ctx, intent.ID, intent.State, intent.State, IntentUpdate{
				LastError:    err.Error(),
				BumpAttempts: true,
			})
		}
		return applications.Application{}, aadhaar.DocumentPair{}, err
	}

	if intent.State != StateCompleted {
		if err := s.Intents.Advance(ctx, intent.ID, intent.State, StateCompleted, IntentUpdate{}); err != nil && !errors.Is(err, ErrStaleState) {
			return applications.Application{}, aadhaar.DocumentPair{}, err
		}
		metrics.ObserveApprovalDurationMs(float64(time.Since(intent.CreatedAt).Milliseconds()))
		telemetry.Info("approval.completed", map[string]any{
			"intentId":      intent.ID,
			"applicationId": applicationID,
		})
	}

	app, err := s.Apps.Get(ctx, seekerID, applicationID)
	if err != nil {
		return applications.Application{}, aadhaar.DocumentPair{}, err
	}
	return app, pair, nil
}

// CheckAadhaar reports whether the seeker already has a confirmed pair.
func (s *Service) CheckAadhaar(ctx context.Context, seekerID string) (aadhaar.DocumentPair, bool, error) {
	return s.Aadhaar.Check(ctx, seekerID)
}

// Reconcile retries the completion check for one intent. Called from the
// queue worker after payment confirmation and from the periodic sweep.
func (s *Service) Reconcile(ctx context.Context, intentID string) error {
	metrics.IncReconcileRun()

	intent, err := s.Intents.GetByID(ctx, intentID)
	if err != nil {
		return err
	}
	if !intent.Active() {
		return nil
	}
	if intent.State == StateCreated || intent.State == StateOrderCreated {
		return nil
	}

	_, hasPair, err := s.Aadhaar.Check(ctx, intent.SeekerID)
	if err != nil {
		return err
	}
	if hasPair {
		if err := s.Intents.Advance(ctx, intent.ID, intent.State, StateCompleted, IntentUpdate{}); err != nil {
			if errors.Is(err, ErrStaleState) {
				return nil
			}
			return err
		}
		telemetry.Info("approval.reconciled", map[string]any{
			"intentId":      intent.ID,
			"applicationId": intent.ApplicationID,
		})
		return nil
	}

	if intent.State == StatePaymentConfirmed && time.Since(intent.UpdatedAt) > s.stallAfter() {
		if err := s.Intents.Advance(ctx, intent.ID, StatePaymentConfirmed, StateStalled, IntentUpdate{
			LastError: "documents missing past deadline",
		}); err != nil {
			if errors.Is(err, ErrStaleState) {
				return nil
			}
			return err
		}
		metrics.IncIntentStalled()
		telemetry.Error("approval.stalled", map[string]any{
			"intentId":      intent.ID,
			"applicationId": intent.ApplicationID,
			"seekerId":      intent.SeekerID,
		})
	}
	return nil
}

// Sweep reconciles payment_confirmed intents that have sat past the deadline.
func (s *Service) Sweep(ctx context.Context, limit int) (int, error) {
	cutoff := time.Now().UTC().Add(-s.stallAfter())
	intents, err := s.Intents.ListInState(ctx, StatePaymentConfirmed, cutoff, limit)
	if err != nil {
		return 0, err
	}
	for _, intent := range intents {
		if err := s.Reconcile(ctx, intent.ID); err != nil {
			telemetry.Error("approval.sweep.failed", map[string]any{
				"intentId": intent.ID,
				"error":    err.Error(),
			})
		}
	}
	return len(intents), nil
}
