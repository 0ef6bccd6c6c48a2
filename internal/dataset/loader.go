// internal/dataset/loader.go
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"green-genie/internal/common/config"
	stderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/common/metrics"
	"green-genie/internal/models"
)

// Fetcher fetches a raw object from the dataset bucket.
// *aws.S3Client satisfies it; tests substitute a stub.
type Fetcher interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Service loads the three CSV datasets and holds the current snapshot.
// S3 is tried first; when the fetch fails and a local fallback file exists
// it is used instead. Refresh swaps the snapshot atomically.
type Service struct {
	fetcher Fetcher
	cfg     config.DatasetsConfig
	bucket  string
	timeout int
	sectors []string // static fallback sector list
	logger  logger.Logger

	mu       sync.RWMutex
	snapshot *models.Snapshot
}

func NewService(fetcher Fetcher, cfg config.DatasetsConfig, bucket string, timeoutMs int, fallbackSectors []string, log logger.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		cfg:     cfg,
		bucket:  bucket,
		timeout: timeoutMs,
		sectors: fallbackSectors,
		logger: log.With(map[string]interface{}{
			"component": "dataset",
		}),
	}
}

// Snapshot returns the current dataset snapshot, or nil before the first load.
func (s *Service) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh reloads all datasets and swaps the snapshot on success.
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.logger.Info("datasets refreshed", map[string]interface{}{
		"esgRows":   len(snap.ESG),
		"priceRows": len(snap.Prices),
		"sectors":   len(snap.Sectors),
	})
	return nil
}

func (s *Service) load(ctx context.Context) (*models.Snapshot, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(s.timeout))
		defer cancel()
	}

	esgHeader, esgRows, err := s.loadCSV(ctx, models.DatasetESGRankings, s.cfg.Keys.ESGRankings)
	if err != nil {
		return nil, err
	}
	priceHeader, priceRows, err := s.loadCSV(ctx, models.DatasetHistoricalPrices, s.cfg.Keys.HistoricalPrices)
	if err != nil {
		return nil, err
	}
	balanceHeader, balanceRows, err := s.loadCSV(ctx, models.DatasetBalanceSheets, s.cfg.Keys.BalanceSheets)
	if err != nil {
		return nil, err
	}

	esg := normalizeESG(esgHeader, esgRows)
	if len(esg) == 0 {
		return nil, stderrors.NewDatasetEmptyError(string(models.DatasetESGRankings))
	}

	snap := &models.Snapshot{
		ESG:     esg,
		Sectors: distinctSectors(esg, s.sectors),
	}
	for _, rec := range normalizeTable(priceHeader, priceRows) {
		snap.Prices = append(snap.Prices, models.PriceRecord{Company: rec["Company"], Fields: rec})
	}
	for _, rec := range normalizeTable(balanceHeader, balanceRows) {
		snap.Balance = append(snap.Balance, models.BalanceRecord{Company: rec["Company"], Fields: rec})
	}

	return snap, nil
}

// loadCSV fetches one dataset from S3, falling back to the local directory
// when the fetch fails.
func (s *Service) loadCSV(ctx context.Context, name models.DatasetName, key string) ([]string, [][]string, error) {
	data, err := s.fetcher.GetObject(ctx, s.bucket, key)
	if err == nil {
		header, rows, perr := parseCSV(data)
		if perr != nil {
			metrics.DatasetLoadsTotal.WithLabelValues(string(name), "s3", "parse_error").Inc()
			return nil, nil, stderrors.NewCSVParseFailedError(string(name), perr)
		}
		metrics.DatasetLoadsTotal.WithLabelValues(string(name), "s3", "success").Inc()
		return header, rows, nil
	}

	s3Err := stderrors.NewS3FetchFailedError(key, err)
	s.logger.Warn("S3 fetch failed, trying local fallback", map[string]interface{}{
		"dataset": string(name),
		"key":     key,
		"error":   s3Err.Error(),
	})
	metrics.DatasetLoadsTotal.WithLabelValues(string(name), "s3", "error").Inc()

	local := filepath.Join(s.cfg.LocalDir, key)
	data, ferr := os.ReadFile(local)
	if ferr != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(string(name), "local", "error").Inc()
		return nil, nil, stderrors.NewDatasetLoadFailedError(string(name),
			fmt.Errorf("%v; local %s: %v", s3Err, local, ferr))
	}

	header, rows, perr := parseCSV(data)
	if perr != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(string(name), "local", "parse_error").Inc()
		return nil, nil, stderrors.NewCSVParseFailedError(string(name), perr)
	}
	metrics.DatasetLoadsTotal.WithLabelValues(string(name), "local", "success").Inc()
	return header, rows, nil
}
