package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// WatchlistSymbol is one configured instrument, ordered by Position.
// The whole list is replaced on every configuration change so the basket
// survives restarts.
type WatchlistSymbol struct {
	ID uint `gorm:"primaryKey"`

	Symbol   string `gorm:"type:text;not null;uniqueIndex:idx_watchlist_symbol"`
	Position int    `gorm:"not null"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (WatchlistSymbol) TableName() string {
	return "watchlist_symbol"
}

// ReplaceWatchlist swaps the persisted symbol list in one transaction.
func (p *PostgresClient) ReplaceWatchlist(ctx context.Context, symbols []string) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&WatchlistSymbol{}).Error; err != nil {
			return err
		}
		for i, sym := range symbols {
			record := WatchlistSymbol{Symbol: sym, Position: i}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadWatchlist returns the persisted symbols in configured order.
// An empty slice means nothing was ever persisted; callers fall back to
// the configured defaults.
func (p *PostgresClient) LoadWatchlist(ctx context.Context) ([]string, error) {
	var records []WatchlistSymbol
	err := p.DB.WithContext(ctx).
		Order("position asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(records))
	for _, r := range records {
		symbols = append(symbols, r.Symbol)
	}
	return symbols, nil
}
