package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// OwnerKind labels cart metrics by who owns the cart.
type OwnerKind string

const (
	OwnerKindGuest OwnerKind = "guest"
	OwnerKindUser  OwnerKind = "user"
)

// MergeOutcome labels the result of a guest cart merge at login.
type MergeOutcome string

const (
	MergeOutcomeReowned    MergeOutcome = "reowned"
	MergeOutcomeMerged     MergeOutcome = "merged"
	MergeOutcomeNoCart     MergeOutcome = "no_cart"
	MergeOutcomeEmptyGuest MergeOutcome = "empty_guest"
)

// PaymentStatus labels payment verification outcomes.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// StoreMetricsProvider supplies the store state sampled by the periodic
// gauges without tying the telemetry layer to the domain packages.
type StoreMetricsProvider interface {
	GetOpenCartCount(ctx context.Context) (int64, error)
	GetOutOfStockCount(ctx context.Context) (int64, error)
	GetPublishedProductCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig configures BusinessMetrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration
	StoreProvider   StoreMetricsProvider
}

// BusinessMetrics tracks cart activity, merge outcomes, order placement
// and catalog health.
type BusinessMetrics struct {
	logger *zap.Logger

	cartCreatedTotal *Counter
	cartItemsAdded   *Counter
	cartMergeTotal   *Counter
	orderPlacedTotal *Counter
	orderAmountTotal *Counter
	paymentTotal     *Counter

	openCartCount       *Gauge
	outOfStockCount     *Gauge
	publishedProductCnt *Gauge

	storeProvider StoreMetricsProvider
	stopChan      chan struct{}
	stopOnce      sync.Once
	collectOnce   sync.Once
}

// NewBusinessMetrics registers the storefront instruments on the meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, errors.New("business metrics: meter is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		logger:        logger,
		storeProvider: cfg.StoreProvider,
		stopChan:      make(chan struct{}),
	}

	var err error
	if bm.cartCreatedTotal, err = NewCounter(cfg.Meter, "store_cart_created_total",
		"Carts created, by owner kind", "{carts}"); err != nil {
		return nil, err
	}
	if bm.cartItemsAdded, err = NewCounter(cfg.Meter, "store_cart_items_added_total",
		"Quantity of items added to carts", "{items}"); err != nil {
		return nil, err
	}
	if bm.cartMergeTotal, err = NewCounter(cfg.Meter, "store_cart_merge_total",
		"Guest cart merge attempts at login, by outcome", "{merges}"); err != nil {
		return nil, err
	}
	if bm.orderPlacedTotal, err = NewCounter(cfg.Meter, "store_order_placed_total",
		"Orders placed", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderAmountTotal, err = NewCounter(cfg.Meter, "store_order_amount_total",
		"Order revenue in cents", "{cents}"); err != nil {
		return nil, err
	}
	if bm.paymentTotal, err = NewCounter(cfg.Meter, "store_payment_total",
		"Payment verification attempts, by method and status", "{payments}"); err != nil {
		return nil, err
	}
	if bm.openCartCount, err = NewGauge(cfg.Meter, "store_open_cart_count",
		"Carts currently holding items", "{carts}"); err != nil {
		return nil, err
	}
	if bm.outOfStockCount, err = NewGauge(cfg.Meter, "store_out_of_stock_count",
		"Published products with zero stock", "{products}"); err != nil {
		return nil, err
	}
	if bm.publishedProductCnt, err = NewGauge(cfg.Meter, "store_published_product_count",
		"Published products", "{products}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordCartCreated counts a cart creation.
func (bm *BusinessMetrics) RecordCartCreated(ctx context.Context, owner OwnerKind) {
	bm.cartCreatedTotal.Inc(ctx, AttrOwnerKind.String(string(owner)))
}

// RecordCartItemsAdded counts quantity added to a cart.
func (bm *BusinessMetrics) RecordCartItemsAdded(ctx context.Context, owner OwnerKind, quantity int64) {
	bm.cartItemsAdded.Add(ctx, quantity, AttrOwnerKind.String(string(owner)))
}

// RecordCartMerge counts a login-time merge resolution by outcome.
func (bm *BusinessMetrics) RecordCartMerge(ctx context.Context, outcome MergeOutcome) {
	bm.cartMergeTotal.Inc(ctx, AttrMergeOutcome.String(string(outcome)))
}

// RecordOrderWithAmount counts a placed order and its revenue in cents.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, amount decimal.Decimal) {
	bm.orderPlacedTotal.Inc(ctx)
	bm.orderAmountTotal.Add(ctx, amount.Mul(decimal.NewFromInt(100)).IntPart())
}

// RecordPayment counts a payment verification attempt.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, paymentMethod string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(status)),
	)
}

// StartPeriodicCollection samples the store gauges on the given
// interval until Stop is called or ctx is cancelled. Safe to call once;
// later calls are ignored.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.collectLoop(ctx, interval)
	})
}

func (bm *BusinessMetrics) collectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.sampleStoreGauges(ctx)

	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.sampleStoreGauges(ctx)
		}
	}
}

func (bm *BusinessMetrics) sampleStoreGauges(ctx context.Context) {
	if bm.storeProvider == nil {
		return
	}

	if count, err := bm.storeProvider.GetOpenCartCount(ctx); err != nil {
		bm.logger.Warn("Failed to get open cart count", zap.Error(err))
	} else {
		bm.openCartCount.Record(ctx, count)
	}

	if count, err := bm.storeProvider.GetOutOfStockCount(ctx); err != nil {
		bm.logger.Warn("Failed to get out of stock count", zap.Error(err))
	} else {
		bm.outOfStockCount.Record(ctx, count)
	}

	if count, err := bm.storeProvider.GetPublishedProductCount(ctx); err != nil {
		bm.logger.Warn("Failed to get published product count", zap.Error(err))
	} else {
		bm.publishedProductCnt.Record(ctx, count)
	}
}

// Stop ends periodic collection. Idempotent.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
