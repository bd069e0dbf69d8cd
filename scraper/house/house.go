package house

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"congress-trades/config"
	"congress-trades/models"
	"congress-trades/services"
	"congress-trades/storage"
	"congress-trades/utils"
)

const chamber = "house"

// TextFunc recovers the text layer of a downloaded report.
type TextFunc func(data []byte) (string, error)

// Scraper downloads House periodic transaction reports and extracts their
// trades.
type Scraper struct {
	cfg      *config.Config
	logger   *utils.Logger
	fetcher  Fetcher
	docs     *storage.DocCache
	retry    *utils.RetryConfig
	seenDocs *cache.Cache
	texts    *cache.Cache
	textOf   TextFunc

	// Downloads are paced; documents already on disk are not.
	downloads *utils.WorkerPool
	cached    *utils.WorkerPool

	mu     sync.Mutex
	trades []*models.Trade
}

// New creates a ready-to-use House Scraper.
func New(cfg *config.Config, logger *utils.Logger, fetcher Fetcher, docs *storage.DocCache) *Scraper {
	return &Scraper{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		docs:     docs,
		seenDocs: cache.New(cache.NoExpiration, 0),
		texts:    cache.New(time.Hour, 2*time.Hour),
		textOf:   PDFText,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		downloads: utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		cached:    utils.NewWorkerPool(cfg.MaxConcurrency, 0),
		trades:    make([]*models.Trade, 0),
	}
}

func (s *Scraper) indexURL(year int) string {
	return fmt.Sprintf("%s/public_disc/financial-pdfs/%dFD.zip", s.cfg.BaseURL, year)
}

func (s *Scraper) documentURL(f *models.Filing) string {
	return fmt.Sprintf("%s/public_disc/ptr-pdfs/%d/%s.pdf", s.cfg.BaseURL, f.Year, f.DocID)
}

// Filings downloads the bulk index of every year concurrently and returns
// their periodic transaction reports in year order. A year that fails is
// logged and skipped; an error is returned only when every year fails.
func (s *Scraper) Filings(ctx context.Context, years []int) ([]*models.Filing, error) {
	perYear := make([][]*models.Filing, len(years))
	errs := make([]error, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			s.logger.Info("[house] Downloading %d bulk data...", year)
			filings, err := s.yearFilings(gctx, year)
			if err != nil {
				s.logger.Error("[house] %d index failed: %v", year, err)
				errs[i] = err
				return nil
			}
			s.logger.Info("[house] %d: found %d PTR filings", year, len(filings))
			perYear[i] = filings
			return nil
		})
	}
	_ = g.Wait()

	var all []*models.Filing
	failed := 0
	for i := range years {
		if errs[i] != nil {
			failed++
			continue
		}
		all = append(all, perYear[i]...)
	}
	if len(years) > 0 && failed == len(years) {
		return nil, fmt.Errorf("house: all year indexes failed: %w", errors.Join(errs...))
	}
	return all, nil
}

func (s *Scraper) yearFilings(ctx context.Context, year int) ([]*models.Filing, error) {
	var archive []byte
	err := s.retry.Do(ctx, fmt.Sprintf("index-%d", year), func() error {
		data, err := s.fetcher.Fetch(ctx, s.indexURL(year))
		if err != nil {
			return err
		}
		archive = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	filings, err := ParseIndex(archive, year)
	if errors.Is(err, ErrNoIndexXML) {
		s.logger.Warn("[house] No %dFD.xml in ZIP", year)
		return nil, nil
	}
	return filings, err
}

// Scrape extracts the trades of every periodic transaction report filed in
// the given years. It returns only after every document job has finished.
// A Scraper may be run again; document text extracted by an earlier run is
// reused.
func (s *Scraper) Scrape(ctx context.Context, years []int) ([]*models.Trade, error) {
	filings, err := s.Filings(ctx, years)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.trades = make([]*models.Trade, 0)
	s.mu.Unlock()
	s.seenDocs.Flush()

	total := len(filings)
	for i, f := range filings {
		if s.seenDocs.Add(f.DocID, struct{}{}, cache.NoExpiration) != nil {
			s.logger.Debug("[house] Skipping duplicate document %s", f.DocID)
			continue
		}
		idx, filing := i+1, f

		pool := s.downloads
		if s.docs != nil && s.docs.Has(filing.DocID) {
			pool = s.cached
		}
		pool.Submit(func() {
			trades := s.processFiling(ctx, filing, idx, total)
			s.mu.Lock()
			s.trades = append(s.trades, trades...)
			s.mu.Unlock()
		})
	}
	s.downloads.Wait()
	s.cached.Wait()

	s.logger.Info("[house] Scrape complete — %d filings, %d trades", s.seenDocs.ItemCount(), len(s.trades))
	return s.trades, nil
}

// processFiling never fails: a document that cannot be fetched or read
// contributes no trades.
func (s *Scraper) processFiling(ctx context.Context, f *models.Filing, idx, total int) []*models.Trade {
	if ctx.Err() != nil {
		return nil
	}

	text, err := s.documentText(ctx, f)
	if err != nil {
		s.logger.Warn("[house] [%d/%d] %s: %v", idx, total, f.Name, err)
		return nil
	}

	trades := services.ExtractTrades(text)
	s.logger.Info("[house] [%d/%d] %s: %d trades", idx, total, f.Name, len(trades))

	enrich(trades, f)
	return trades
}

func (s *Scraper) documentText(ctx context.Context, f *models.Filing) (string, error) {
	if text, ok := s.texts.Get(f.DocID); ok {
		s.logger.Debug("[house] Reusing extracted text of %s", f.DocID)
		return text.(string), nil
	}

	data, err := s.document(ctx, f)
	if err != nil {
		return "", fmt.Errorf("download error - %w", err)
	}
	text, err := s.textOf(data)
	if err != nil {
		return "", fmt.Errorf("PDF extraction error - %w", err)
	}

	s.texts.Set(f.DocID, text, cache.DefaultExpiration)
	return text, nil
}

func (s *Scraper) document(ctx context.Context, f *models.Filing) ([]byte, error) {
	if s.docs != nil {
		data, ok, err := s.docs.Get(f.DocID)
		if err != nil {
			s.logger.Warn("[house] %v", err)
		}
		if ok {
			return data, nil
		}
	}

	var data []byte
	err := s.retry.Do(ctx, "document-"+f.DocID, func() error {
		d, err := s.fetcher.Fetch(ctx, s.documentURL(f))
		if err != nil {
			return err
		}
		data = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.docs != nil {
		if err := s.docs.Put(f.DocID, data); err != nil {
			s.logger.Warn("[house] %v", err)
		}
	}
	return data, nil
}

// enrich attaches the filer's identity to trades extracted from its report.
func enrich(trades []*models.Trade, f *models.Filing) {
	for _, t := range trades {
		t.Politician = f.Name
		t.StateDistrict = f.StateDistrict
		t.FilingDate = f.FilingDate
		t.DocID = f.DocID
		t.Chamber = chamber
	}
}
