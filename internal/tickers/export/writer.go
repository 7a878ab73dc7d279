package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sebuszqo/TickerUpdater/internal/tickers/models"
	"go.uber.org/zap"
)

const (
	TickersDir  = "tickers"
	IndustryDir = "by_industry"
	AllFile     = "all.csv"
)

// TopSizes are the prefix files written next to all.csv.
var TopSizes = []int{50, 100, 200}

var ErrNoTickers = errors.New("no tickers to save")

var header = []string{"symbol", "name", "price", "marketCap", "volume", "industry"}

type Writer struct {
	outDir string
	logger *zap.Logger
}

func NewWriter(outDir string, logger *zap.Logger) *Writer {
	if outDir == "" {
		outDir = "."
	}
	return &Writer{outDir: outDir, logger: logger}
}

// Save writes the ranked lists and the per-industry partitions.
// Empty input is rejected before anything touches the disk. A failed file does not stop
// the remaining writes; every failure is joined into the returned error.
func (w *Writer) Save(tickers []models.Ticker) error {
	if len(tickers) == 0 {
		w.logger.Warn("no tickers to save")
		return ErrNoTickers
	}

	sorted := SortByMarketCap(tickers)

	tickersDir := filepath.Join(w.outDir, TickersDir)
	industryDir := filepath.Join(w.outDir, IndustryDir)
	for _, dir := range []string{tickersDir, industryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	var errs []error

	allPath := filepath.Join(tickersDir, AllFile)
	if err := writeCSV(allPath, sorted); err != nil {
		errs = append(errs, err)
	} else {
		w.logger.Info("saved ticker list", zap.String("file", allPath), zap.Int("rows", len(sorted)))
	}

	for _, n := range TopSizes {
		path := filepath.Join(tickersDir, fmt.Sprintf("top_%d.csv", n))
		top := sorted[:min(n, len(sorted))]
		if err := writeCSV(path, top); err != nil {
			errs = append(errs, err)
			continue
		}
		w.logger.Info("saved ticker list", zap.String("file", path), zap.Int("rows", len(top)))
	}

	for _, industry := range Industries(sorted) {
		name := SanitizeIndustry(industry)
		if name == "" {
			w.logger.Warn("industry has no usable filename, skipping", zap.String("industry", industry))
			continue
		}
		members := ByIndustry(sorted, industry)
		path := filepath.Join(industryDir, name+".csv")
		if err := writeCSV(path, members); err != nil {
			errs = append(errs, err)
			continue
		}
		w.logger.Info("saved industry", zap.String("file", path), zap.Int("tickers", len(members)))
	}

	return errors.Join(errs...)
}

// SortByMarketCap returns a copy ordered by market cap, largest first. Tickers without a
// market cap go last and keep their relative order.
func SortByMarketCap(tickers []models.Ticker) []models.Ticker {
	sorted := slices.Clone(tickers)
	slices.SortStableFunc(sorted, func(a, b models.Ticker) int {
		switch {
		case a.MarketCap == nil && b.MarketCap == nil:
			return 0
		case a.MarketCap == nil:
			return 1
		case b.MarketCap == nil:
			return -1
		}
		return b.MarketCap.Cmp(*a.MarketCap)
	})
	return sorted
}

// Industries returns the distinct non-blank industry values in lexicographic order.
func Industries(tickers []models.Ticker) []string {
	seen := make(map[string]struct{})
	var industries []string
	for _, t := range tickers {
		if strings.TrimSpace(t.Industry) == "" {
			continue
		}
		if _, ok := seen[t.Industry]; ok {
			continue
		}
		seen[t.Industry] = struct{}{}
		industries = append(industries, t.Industry)
	}
	slices.Sort(industries)
	return industries
}

// ByIndustry selects tickers whose industry equals industry exactly.
func ByIndustry(tickers []models.Ticker, industry string) []models.Ticker {
	var members []models.Ticker
	for _, t := range tickers {
		if t.Industry == industry {
			members = append(members, t)
		}
	}
	return members
}

func writeCSV(path string, tickers []models.Ticker) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, t := range tickers {
		if err := cw.Write(record(t)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func record(t models.Ticker) []string {
	row := []string{t.Symbol, t.Name, "", "", "", t.Industry}
	if t.Price != nil {
		row[2] = t.Price.String()
	}
	if t.MarketCap != nil {
		row[3] = t.MarketCap.String()
	}
	if t.Volume != nil {
		row[4] = strconv.FormatInt(*t.Volume, 10)
	}
	return row
}
