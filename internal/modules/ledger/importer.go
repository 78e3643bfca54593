package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Importer parses broker trade-history CSV exports into TradeRecords.
//
// Exports carry the instrument name in a "Market" column; tickerByMarket maps
// those names to tickers. Rows whose instrument cannot be mapped are skipped
// and counted rather than failing the whole import. Resolving unknown names
// is out of scope here and happens upstream.
type Importer struct {
	tickerByMarket map[string]string
	log            zerolog.Logger
}

// NewImporter creates a new trade-history importer
func NewImporter(tickerByMarket map[string]string, log zerolog.Logger) *Importer {
	return &Importer{
		tickerByMarket: tickerByMarket,
		log:            log.With().Str("component", "importer").Logger(),
	}
}

// ImportResult summarizes one parsed trade-history file
type ImportResult struct {
	Trades  []TradeRecord
	Skipped int
}

// Trade-history exports use day-first dates, in a couple of variants.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"2006-01-02",
}

// AccountFromFilename extracts the account identifier from a trade-history
// filename such as "TradeHistory-QX2B3-(2024).csv". Falls back to "default"
// when the filename does not follow that pattern.
func AccountFromFilename(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return "default"
}

// Parse reads a trade-history CSV and returns the records it contains
func (i *Importer) Parse(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.TrimSpace(name)] = idx
	}

	for _, required := range []string{"TextDate", "Market", "Quantity", "Price", "Currency", "Activity"} {
		if _, ok := cols[required]; !ok {
			return ImportResult{}, fmt.Errorf("trade-history file is missing column %q", required)
		}
	}

	var result ImportResult
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		line++

		market := strings.TrimSpace(row[cols["Market"]])
		ticker, ok := i.tickerByMarket[market]
		if !ok || ticker == "" {
			i.log.Warn().Str("market", market).Msg("No ticker mapping for instrument, row skipped")
			result.Skipped++
			continue
		}

		date, err := parseDayFirst(row[cols["TextDate"]])
		if err != nil {
			i.log.Warn().Err(err).Int("row", line).Msg("Unparseable trade date, row skipped")
			result.Skipped++
			continue
		}

		quantity, err := parseNumber(row[cols["Quantity"]])
		if err != nil {
			i.log.Warn().Err(err).Int("row", line).Msg("Unparseable quantity, row skipped")
			result.Skipped++
			continue
		}

		price, err := parseNumber(row[cols["Price"]])
		if err != nil {
			i.log.Warn().Err(err).Int("row", line).Msg("Unparseable price, row skipped")
			result.Skipped++
			continue
		}

		ticker = strings.ToUpper(ticker)

		// LSE exports quote prices in pence; ledger prices are kept in the
		// major unit so every downstream price is pounds, not pence.
		if strings.HasSuffix(ticker, ".L") {
			price /= 100
		}

		result.Trades = append(result.Trades, TradeRecord{
			Ticker:   ticker,
			Date:     date,
			Quantity: quantity,
			Price:    price,
			Currency: strings.ToUpper(strings.TrimSpace(row[cols["Currency"]])),
			Activity: strings.ToUpper(strings.TrimSpace(row[cols["Activity"]])),
		})
	}

	if result.Skipped > 0 {
		i.log.Warn().
			Int("skipped", result.Skipped).
			Msg("Rows were excluded from import; results may undercount holdings")
	}

	return result, nil
}

func parseDayFirst(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}
