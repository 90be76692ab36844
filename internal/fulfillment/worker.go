package fulfillment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// FulfillRedemptionArgs is enqueued, via InsertTx, in the same transaction
// that commits a redemption, so a job exists if and only if the redemption
// does.
type FulfillRedemptionArgs struct {
	RedemptionID uuid.UUID `json:"redemption_id"`
}

func (FulfillRedemptionArgs) Kind() string { return "fulfill_redemption" }

// RedemptionService is the contract the worker needs to finalize a
// redemption.
type RedemptionService interface {
	MarkRedemptionCompleted(ctx context.Context, redemptionID uuid.UUID) error
}

// FulfillWorker moves committed redemptions from pending to completed.
// Fulfillment (voucher delivery, notifications) is retryable here without
// ever touching the points ledger again.
type FulfillWorker struct {
	river.WorkerDefaults[FulfillRedemptionArgs]
	redemptions RedemptionService
	log         *slog.Logger
}

func NewFulfillWorker(redemptions RedemptionService, log *slog.Logger) *FulfillWorker {
	if log == nil {
		log = slog.Default()
	}
	return &FulfillWorker{redemptions: redemptions, log: log}
}

func (w *FulfillWorker) Work(ctx context.Context, job *river.Job[FulfillRedemptionArgs]) error {
	if err := w.redemptions.MarkRedemptionCompleted(ctx, job.Args.RedemptionID); err != nil {
		return err
	}
	w.log.Info("redemption fulfilled", "redemption_id", job.Args.RedemptionID)
	return nil
}
