package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TimestampLayout is the "Created At" format of exported transaction logs.
const TimestampLayout = "2/1/2006, 15:04:05"

const (
	colCreatedAt   = "Created At"
	colType        = "Type"
	colCurrency    = "Currency"
	colAmount      = "Amount"
	colDescription = "Description"

	donationType = "donation"
)

// Load reads the transaction log at path. A missing file yields an empty
// ledger.
func Load(path string, opts Options) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log := opts.logger()
			log.Debug().Str("path", path).Msg("ledger: transaction log not found, starting empty")
			return FromEntries(nil, opts), nil
		}
		return nil, fmt.Errorf("ledger: open transaction log: %w", err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read builds a ledger from a CSV transaction log. Only donation rows are
// kept; rows that fail to parse are skipped.
func Read(r io.Reader, opts Options) (*Ledger, error) {
	entries, stats, err := ParseEntries(r, opts)
	if err != nil {
		return nil, err
	}
	log := opts.logger()
	log.Info().
		Int("rows", stats.Rows).
		Int("kept", stats.Kept).
		Int("skipped", stats.Malformed).
		Msg("ledger: transaction log loaded")
	return FromEntries(entries, opts), nil
}

// ParseStats counts the rows seen while parsing a transaction log.
type ParseStats struct {
	Rows      int
	Kept      int
	Ignored   int
	Malformed int
}

// ParseEntries decodes the donation rows of a CSV transaction log without
// building a ledger. A leading byte-order mark is discarded.
func ParseEntries(r io.Reader, opts Options) ([]Entry, ParseStats, error) {
	log := opts.logger()
	var stats ParseStats

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, nil
		}
		return nil, stats, fmt.Errorf("ledger: read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		stats.Rows++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.Malformed++
				log.Debug().Int("line", line).Err(err).Msg("ledger: unreadable row skipped")
				continue
			}
			return nil, stats, fmt.Errorf("ledger: read row: %w", err)
		}
		row := csvRow{cols: cols, values: rec}
		if !strings.EqualFold(strings.TrimSpace(row.get(colType)), donationType) {
			stats.Ignored++
			continue
		}
		entry, err := row.entry()
		if err != nil {
			stats.Malformed++
			log.Debug().Int("line", line).Err(err).Msg("ledger: malformed donation row skipped")
			continue
		}
		stats.Kept++
		entries = append(entries, entry)
	}
	return entries, stats, nil
}

type csvRow struct {
	cols   map[string]int
	values []string
}

func (r csvRow) lookup(col string) (string, bool) {
	i, ok := r.cols[col]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

func (r csvRow) get(col string) string {
	v, _ := r.lookup(col)
	return v
}

func (r csvRow) require(col string) (string, error) {
	v, ok := r.lookup(col)
	if !ok {
		return "", fmt.Errorf("missing %q", col)
	}
	return v, nil
}

func (r csvRow) entry() (Entry, error) {
	created, err := r.require(colCreatedAt)
	if err != nil {
		return Entry{}, err
	}
	rawAmount, err := r.require(colAmount)
	if err != nil {
		return Entry{}, err
	}
	cur, err := r.require(colCurrency)
	if err != nil {
		return Entry{}, err
	}
	desc, err := r.require(colDescription)
	if err != nil {
		return Entry{}, err
	}

	ts, err := ParseTimestamp(strings.Trim(created, `" `))
	if err != nil {
		return Entry{}, fmt.Errorf("parse %q: %w", colCreatedAt, err)
	}
	amount, err := decimal.NewFromString(strings.Trim(rawAmount, `" `))
	if err != nil {
		return Entry{}, fmt.Errorf("parse %q: %w", colAmount, err)
	}
	if amount.IsNegative() {
		return Entry{}, fmt.Errorf("negative %q", colAmount)
	}
	return Entry{
		Timestamp:   ts,
		Amount:      amount,
		Currency:    cur,
		Beneficiary: desc,
	}, nil
}

// ParseTimestamp parses a "Created At" value. Every date and clock field may
// be one or two digits, so "1/3/2024, 10:0:5" is accepted.
func ParseTimestamp(value string) (time.Time, error) {
	date, clock, ok := strings.Cut(value, ", ")
	if !ok {
		return time.Parse(TimestampLayout, value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return time.Parse(TimestampLayout, value)
	}
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return time.Parse(TimestampLayout, date+", "+strings.Join(parts, ":"))
}
