// Package export assembles the public transparency bundle: the disclosure
// note, shareholder shares, the resolution projection and the open queue.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"campaignops/internal/ledger"
	"campaignops/internal/liquidity"
	"campaignops/internal/trust"
)

// Bundle is the content of one transparency archive.
type Bundle struct {
	GeneratedAt  time.Time
	BaseCurrency string
	Locale       liquidity.Locale
	Goal         string
	Disclosure   string
	Split        liquidity.Split
	Summary      ledger.Summary
	Shareholders []trust.ShareholderStat
	Projection   trust.Projection
	Queue        []ledger.Donation
}

type file struct {
	name string
	data []byte
}

type manifest struct {
	GeneratedAt  string   `yaml:"generated_at"`
	BaseCurrency string   `yaml:"base_currency"`
	Locale       string   `yaml:"locale"`
	Goal         string   `yaml:"goal,omitempty"`
	Outstanding  string   `yaml:"outstanding_debt"`
	Donations    int      `yaml:"donations"`
	Files        []string `yaml:"files"`
}

// Write encodes b as a zip archive into w. Entry timestamps are GeneratedAt,
// so equal bundles produce identical archives.
func Write(w io.Writer, b Bundle) error {
	files, err := b.files()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.name,
			Method:   zip.Deflate,
			Modified: b.GeneratedAt,
		})
		if err != nil {
			return fmt.Errorf("export: add %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("export: write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: close archive: %w", err)
	}
	return nil
}

// Archive is Write into memory.
func Archive(b Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b Bundle) files() ([]file, error) {
	split, err := json.MarshalIndent(b.Split, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode split: %w", err)
	}
	shareholders, err := json.MarshalIndent(b.Shareholders, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode shareholders: %w", err)
	}
	projection, err := json.MarshalIndent(b.Projection, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode projection: %w", err)
	}
	queue, err := queueCSV(b.Queue)
	if err != nil {
		return nil, err
	}

	files := []file{
		{name: "disclosure.txt", data: []byte(b.Disclosure + "\n")},
		{name: "split.json", data: split},
		{name: "shareholders.json", data: shareholders},
		{name: "projection.json", data: projection},
		{name: "queue.csv", data: queue},
	}
	m := manifest{
		GeneratedAt:  b.GeneratedAt.UTC().Format(time.RFC3339),
		BaseCurrency: b.BaseCurrency,
		Locale:       string(b.Locale),
		Goal:         b.Goal,
		Outstanding:  b.Summary.Outstanding.StringFixed(2),
		Donations:    b.Summary.Donations,
	}
	for _, f := range files {
		m.Files = append(m.Files, f.name)
	}
	manifestYAML, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("export: encode manifest: %w", err)
	}
	return append([]file{{name: "manifest.yaml", data: manifestYAML}}, files...), nil
}

func queueCSV(queue []ledger.Donation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"donation_id", "donated_at", "beneficiary", "original_amount", "original_currency", "amount_base", "remaining", "status"})
	for _, d := range queue {
		_ = w.Write([]string{
			fmt.Sprint(int(d.ID)),
			d.Timestamp.UTC().Format(time.RFC3339),
			d.Beneficiary,
			d.OriginalAmount.String(),
			d.OriginalCurrency,
			d.AmountBase.StringFixed(2),
			d.Remaining.StringFixed(2),
			string(d.Status),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: encode queue: %w", err)
	}
	return buf.Bytes(), nil
}

// Build gathers a bundle from the live services. The split is previewed, so
// building never changes the ledger.
func Build(calc *liquidity.Calculator, view *trust.View, goal string, locale liquidity.Locale, velocity decimal.Decimal, now time.Time) Bundle {
	l := calc.Ledger()
	if l == nil {
		l = ledger.Empty()
	}
	split := calc.Preview(goal)
	return Bundle{
		GeneratedAt:  now,
		BaseCurrency: l.BaseCurrency(),
		Locale:       locale,
		Goal:         goal,
		Disclosure:   liquidity.Disclosure(split, calc.Policy(), locale),
		Split:        split,
		Summary:      l.Summary(),
		Shareholders: view.ShareholderStats(),
		Projection:   view.ProjectResolution(velocity),
		Queue:        l.PriorityQueue(),
	}
}
