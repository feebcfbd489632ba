package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateNullsEmptyOptionalColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	payment := Payment{
		ID:            "payment-1",
		ApplicationID: "app-1",
		OrderID:       "order-1",
		Amount:        50000,
		Currency:      "INR",
		PaymentType:   TypeApprovalFee,
		Status:        StatusCreated,
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(
			payment.ID,
			payment.ApplicationID,
			payment.OrderID,
			nil, // payment_id unknown until checkout completes
			payment.Amount,
			payment.Currency,
			payment.PaymentType,
			payment.Status,
			nil, // idempotency_key
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), payment); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsDuplicateKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "payments_app_idem_key"`))

	err = repo.Create(context.Background(), Payment{
		ID:             "payment-2",
		ApplicationID:  "app-1",
		OrderID:        "order-2",
		Amount:         50000,
		Currency:       "INR",
		PaymentType:    TypeApprovalFee,
		Status:         StatusCreated,
		IdempotencyKey: "idem-1",
		CreatedAt:      time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPGRepoUpdateStatusMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE payments").
		WithArgs("order-missing", "pay-1", StatusPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), "order-missing", "pay-1", StatusPaid)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "application_id", "order_id", "payment_id", "amount", "currency",
		"payment_type", "status", "idempotency_key", "created_at", "updated_at",
	}).AddRow("payment-1", "app-1", "order-1", "pay-1", int64(50000), "INR",
		TypeApprovalFee, StatusPaid, nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs("order-1").
		WillReturnRows(rows)

	payment, err := repo.GetByOrderID(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if payment.PaymentID != "pay-1" || payment.Status != StatusPaid {
		t.Fatalf("unexpected payment: %+v", payment)
	}
	if payment.IdempotencyKey != "" {
		t.Fatalf("expected empty idempotency key, got %q", payment.IdempotencyKey)
	}
}
