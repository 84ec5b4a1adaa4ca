// Package overview summarises every sector's first feed page side by side.
package overview

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kevinmichaelchen/velocity-feed/internal/dashboard"
	"github.com/kevinmichaelchen/velocity-feed/internal/filter"
	"github.com/kevinmichaelchen/velocity-feed/internal/models"
)

const (
	DefaultConcurrency = 4
	DefaultTopN        = 3
)

// Fetcher loads one feed page. *api.Client satisfies it.
type Fetcher interface {
	FetchPage(ctx context.Context, sel filter.Selection, page, pageSize int) (*models.FeedPage, error)
}

type Options struct {
	// Base supplies sort, tag and time horizon. Its sector is replaced per row.
	Base filter.Selection
	// Sectors defaults to every catalog sector except "all".
	Sectors     []string
	PageSize    int
	TopN        int
	Concurrency int
	Logger      *slog.Logger
}

// Row is one sector's result. Err is set instead of failing the whole run.
type Row struct {
	Sector   filter.Sector
	Analysis models.Analysis
	Top      []models.Repo
	Err      error
}

// Run fetches page 1 for each sector concurrently and returns rows in the
// order the sectors were given. It only fails when ctx is done.
func Run(ctx context.Context, f Fetcher, opts Options) ([]Row, error) {
	sectors, err := resolveSectors(opts.Sectors)
	if err != nil {
		return nil, err
	}
	if opts.PageSize <= 0 {
		opts.PageSize = dashboard.DefaultPageSize
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rows := make([]Row, len(sectors))
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, sector := range sectors {
		g.Go(func() error {
			rows[i] = fetchRow(gCtx, f, sector, opts)
			if rows[i].Err != nil {
				logger.Warn("sector fetch failed", "sector", sector.ID, "error", rows[i].Err)
			}
			n := done.Add(1)
			logger.Debug("sector fetched", "sector", sector.ID, "done", n, "total", len(sectors))
			return nil // continue with other sectors
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func fetchRow(ctx context.Context, f Fetcher, sector filter.Sector, opts Options) Row {
	row := Row{Sector: sector}
	sel := opts.Base.WithSector(sector.ID)
	if opts.Base.Tag != "" {
		sel = sel.WithTag(opts.Base.Tag)
	}

	page, err := f.FetchPage(ctx, sel, 1, opts.PageSize)
	if err != nil {
		row.Err = fmt.Errorf("fetching %s: %w", sector.ID, err)
		return row
	}

	if page.Analysis != nil {
		row.Analysis = *page.Analysis
	} else {
		row.Analysis = dashboard.ComputeAnalysis(page.Repos)
	}

	for _, r := range page.Repos {
		if len(row.Top) == opts.TopN {
			break
		}
		if !r.Hidden() {
			row.Top = append(row.Top, r)
		}
	}
	return row
}

func resolveSectors(ids []string) ([]filter.Sector, error) {
	if len(ids) == 0 {
		var out []filter.Sector
		for _, s := range filter.Sectors {
			if s.ID != filter.AllSectors {
				out = append(out, s)
			}
		}
		return out, nil
	}
	out := make([]filter.Sector, 0, len(ids))
	for _, id := range ids {
		s, err := filter.ParseSector(id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
