package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pantrysense/pantrysense/internal/bonnyclient"
	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/observability/metrics"
	"github.com/pantrysense/pantrysense/internal/receipt/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReceiptSource is the slice of the retail API the sync pipeline needs.
type ReceiptSource interface {
	Receipts(ctx context.Context, offset, limit int) (*bonnyclient.ReceiptsPage, error)
	Receipt(ctx context.Context, receiptID string) (*bonnyclient.ReceiptDetail, error)
}

type SyncedReceipt struct {
	ID                string    `json:"id"`
	TransactionMoment time.Time `json:"transaction_moment"`
	TotalAmount       float64   `json:"total_amount"`
	StoreName         string    `json:"store_name,omitempty"`
}

type SyncError struct {
	ReceiptID string `json:"receipt_id"`
	Error     string `json:"error"`
}

// Result accumulates the outcome of one sync run.
type Result struct {
	SyncedCount    int             `json:"synced_count"`
	SkippedCount   int             `json:"skipped_count"`
	ErrorCount     int             `json:"error_count"`
	SyncedReceipts []SyncedReceipt `json:"synced_receipts"`
	Errors         []SyncError     `json:"errors"`
}

func newResult() *Result {
	return &Result{
		SyncedReceipts: []SyncedReceipt{},
		Errors:         []SyncError{},
	}
}

func (r *Result) addSynced(receipt domain.Receipt) {
	r.SyncedCount++
	r.SyncedReceipts = append(r.SyncedReceipts, SyncedReceipt{
		ID:                receipt.ID,
		TransactionMoment: receipt.TransactionMoment,
		TotalAmount:       receipt.TotalAmount,
		StoreName:         receipt.StoreName,
	})
}

func (r *Result) addSkipped() {
	r.SkippedCount++
}

func (r *Result) addError(receiptID, message string) {
	r.ErrorCount++
	r.Errors = append(r.Errors, SyncError{ReceiptID: receiptID, Error: message})
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Source  ReceiptSource
	Clock   clock.Clock
	Config  config.Config
	Metrics *metrics.Metrics
}

// Service pulls receipts from the retail API into the local store.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	source  ReceiptSource
	clock   clock.Clock
	metrics *metrics.Metrics

	batchSize         int
	existingThreshold int
	requestDelay      time.Duration
}

func New(p Params) *Service {
	return &Service{
		db:                p.DB,
		log:               p.Log.Named("sync.service"),
		genID:             p.GenID,
		repo:              p.Repo,
		source:            p.Source,
		clock:             p.Clock,
		metrics:           p.Metrics,
		batchSize:         p.Config.SyncBatchSize,
		existingThreshold: p.Config.SyncExistingThreshold,
		requestDelay:      p.Config.SyncRequestDelay,
	}
}

// Run pages remote receipt summaries and stores receipts not yet known
// locally. In incremental mode it stops after a run of consecutive
// already-known receipts; a full sync walks every page.
func (s *Service) Run(ctx context.Context, fullSync bool) (*Result, error) {
	result := newResult()

	existing, err := s.repo.ExistingIDs(ctx, s.db)
	if err != nil {
		return nil, err
	}

	mode := "incremental"
	if fullSync {
		mode = "full"
	}
	s.log.Info("sync started", zap.String("mode", mode), zap.Int("known_receipts", len(existing)))

	consecutiveExisting := 0
	offset := 0

	for {
		page, err := s.source.Receipts(ctx, offset, s.batchSize)
		if err != nil {
			result.addError("batch_fetch", fmt.Sprintf("failed to fetch receipts at offset %d: %v", offset, err))
			s.metrics.RecordSyncError(ctx, "batch_fetch")
			break
		}
		if page == nil || len(page.Receipts) == 0 {
			break
		}

		for _, summary := range page.Receipts {
			if summary.ID == "" {
				continue
			}

			if _, ok := existing[summary.ID]; ok {
				result.addSkipped()
				consecutiveExisting++
				if !fullSync && consecutiveExisting >= s.existingThreshold {
					s.logFinished(mode, result)
					return result, nil
				}
				continue
			}
			consecutiveExisting = 0

			if err := s.sleep(ctx); err != nil {
				return result, err
			}

			detail, err := s.source.Receipt(ctx, summary.ID)
			if err != nil {
				result.addError(summary.ID, err.Error())
				s.metrics.RecordSyncError(ctx, "detail_fetch")
				continue
			}
			if detail == nil {
				result.addError(summary.ID, "empty receipt details returned")
				s.metrics.RecordSyncError(ctx, "detail_fetch")
				continue
			}

			if err := s.insert(ctx, detail, result); err == nil {
				s.metrics.RecordReceiptSynced(ctx, mode)
			}
		}

		offset += s.batchSize

		if err := s.sleep(ctx); err != nil {
			return result, err
		}

		if offset >= page.Pagination.TotalElements {
			break
		}
	}

	s.logFinished(mode, result)
	return result, nil
}

func (s *Service) insert(ctx context.Context, detail *bonnyclient.ReceiptDetail, result *Result) error {
	now := s.clock.Now()
	receipt := mapReceipt(detail, now)
	items := mapItems(s.genID, receipt.ID, detail.Products, now)
	discounts := mapDiscounts(s.genID, receipt.ID, detail.Discounts, now)
	vatEntries := mapVAT(s.genID, receipt.ID, detail.VAT, now)

	if err := s.repo.InsertWithChildren(ctx, s.db, &receipt, items, discounts, vatEntries); err != nil {
		result.addError(receipt.ID, fmt.Sprintf("database error: %v", err))
		s.metrics.RecordSyncError(ctx, "insert")
		return err
	}

	result.addSynced(receipt)
	return nil
}

func (s *Service) sleep(ctx context.Context) error {
	if s.requestDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.requestDelay):
		return nil
	}
}

func (s *Service) logFinished(mode string, result *Result) {
	s.log.Info("sync finished",
		zap.String("mode", mode),
		zap.Int("synced", result.SyncedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("errors", result.ErrorCount),
	)
}
