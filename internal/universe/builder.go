package universe

import (
	"context"
	"log/slog"

	"jpxcli/internal/config"
	"jpxcli/internal/infrastructure"
	"jpxcli/internal/schema"
	"jpxcli/pkg/contracts/domain"
)

// ListingSource fetches the raw listing file.
type ListingSource interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Builder runs listing -> grid -> header -> mapping -> records.
type Builder struct {
	source  ListingSource
	cfg     config.ListingConfig
	aliases schema.AliasTable
	metrics *infrastructure.IngestMetrics
	logger  *slog.Logger
}

// NewBuilder validates the aliases required by cfg.Mode once.
func NewBuilder(source ListingSource, cfg config.ListingConfig, aliases schema.AliasTable,
	metrics *infrastructure.IngestMetrics, logger *slog.Logger) (*Builder, error) {
	required, err := schema.ForMode(cfg.Mode, aliases)
	if err != nil {
		return nil, err
	}
	return &Builder{
		source:  source,
		cfg:     cfg,
		aliases: required,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "universe"),
	}, nil
}

// Fields returns the ticker list columns for the configured mode.
func (b *Builder) Fields() []string {
	return b.aliases.Keys()
}

// Build fetches the listing and extracts the instrument universe.
func (b *Builder) Build(ctx context.Context) ([]domain.InstrumentRecord, error) {
	data, err := b.source.Fetch(ctx, b.cfg.URL)
	if err != nil {
		return nil, err
	}
	return b.FromBytes(ctx, data)
}

// FromBytes extracts the universe from an already fetched listing.
func (b *Builder) FromBytes(ctx context.Context, data []byte) ([]domain.InstrumentRecord, error) {
	grid, err := schema.DecodeGrid(data, b.cfg.Sheet)
	if err != nil {
		return nil, err
	}

	headerRow, err := schema.Locate(grid, b.aliases, b.cfg.MaxScanRows)
	if err != nil {
		return nil, err
	}

	mapping, err := schema.MapColumns(grid[headerRow], b.aliases)
	if err != nil {
		return nil, err
	}
	for _, key := range b.aliases.Keys() {
		ref := mapping[key]
		b.logger.DebugContext(ctx, "Column mapped",
			slog.String("key", key),
			slog.String("label", ref.Label),
			slog.Int("index", ref.Index))
	}

	records, err := Extract(grid, headerRow, mapping)
	if err != nil {
		return nil, err
	}

	b.metrics.RecordExtracted(ctx, len(records))
	b.logger.InfoContext(ctx, "Instrument universe extracted",
		slog.Int("header_row", headerRow),
		slog.Int("grid_rows", len(grid)),
		slog.Int("instruments", len(records)),
		slog.String("mode", b.cfg.Mode))
	return records, nil
}
