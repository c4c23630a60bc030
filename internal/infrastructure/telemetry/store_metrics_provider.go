// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormStoreMetricsProvider implements StoreMetricsProvider using GORM.
// It queries the carts and products tables directly for aggregated metrics.
type GormStoreMetricsProvider struct {
	db *gorm.DB
}

// NewGormStoreMetricsProvider creates a new GormStoreMetricsProvider.
func NewGormStoreMetricsProvider(db *gorm.DB) *GormStoreMetricsProvider {
	return &GormStoreMetricsProvider{db: db}
}

// GetOpenCartCount returns the number of carts currently holding items.
func (p *GormStoreMetricsProvider) GetOpenCartCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("carts").
		Where("EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id)").
		Count(&count).Error

	return count, err
}

// GetOutOfStockCount returns the number of published products with zero stock.
func (p *GormStoreMetricsProvider) GetOutOfStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("is_published = ? AND count_in_stock <= 0", true).
		Count(&count).Error

	return count, err
}

// GetPublishedProductCount returns the number of published products.
func (p *GormStoreMetricsProvider) GetPublishedProductCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("products").
		Where("is_published = ?", true).
		Count(&count).Error

	return count, err
}

// Ensure GormStoreMetricsProvider implements StoreMetricsProvider
var _ StoreMetricsProvider = (*GormStoreMetricsProvider)(nil)
