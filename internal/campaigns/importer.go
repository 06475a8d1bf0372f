package campaigns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"campaignops/internal/currency"
)

// flexString decodes a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

type chuffedRecord struct {
	ID        flexString `json:"id"`
	Title     string     `json:"title"`
	Raised    flexString `json:"raised"`
	Goal      flexString `json:"goal"`
	Currency  string     `json:"currency"`
	CreatedAt string     `json:"created_at"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
}

type whydonateRecord struct {
	Title          string     `json:"project_title"`
	TotalRaisedEUR flexString `json:"total_raised_eur"`
	Goal           flexString `json:"goal"`
	URL            string     `json:"url"`
}

// Importer converts platform exports to Campaigns and stores them.
type Importer struct {
	store  Store
	norm   *currency.Normalizer
	logger zerolog.Logger
}

func NewImporter(store Store, norm *currency.Normalizer, logger *zerolog.Logger) *Importer {
	imp := &Importer{store: store, norm: norm, logger: zerolog.Nop()}
	if imp.norm == nil {
		imp.norm = currency.NewDefault()
	}
	if logger != nil {
		imp.logger = *logger
	}
	return imp
}

// Import reads a JSON array exported from platform and upserts every
// campaign. It returns the imported campaigns in file order.
func (imp *Importer) Import(ctx context.Context, platform string, r io.Reader) ([]Campaign, error) {
	var (
		out []Campaign
		err error
	)
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case PlatformChuffed:
		out, err = imp.decodeChuffed(r)
	case PlatformWhydonate:
		out, err = imp.decodeWhydonate(r)
	default:
		return nil, fmt.Errorf("campaigns: unknown platform %q", platform)
	}
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		if err := imp.store.Put(ctx, c); err != nil {
			return nil, err
		}
	}
	log := imp.logger
	log.Info().Str("platform", platform).Int("campaigns", len(out)).Msg("campaigns imported")
	return out, nil
}

func (imp *Importer) decodeChuffed(r io.Reader) ([]Campaign, error) {
	var records []chuffedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("campaigns: decode chuffed export: %w", err)
	}
	out := make([]Campaign, 0, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(string(rec.ID))
		if id == "" {
			id = "unknown"
		}
		cur := strings.TrimSpace(rec.Currency)
		if cur == "" {
			cur = imp.norm.BaseCurrency()
		}
		status := rec.Status
		if status == "" {
			status = "unknown"
		}
		title := strings.TrimSpace(rec.Title)
		names := ExtractNames(title)
		out = append(out, Campaign{
			ID:          PlatformChuffed + "_" + id,
			Platform:    PlatformChuffed,
			Title:       title,
			DisplayName: names.DisplayName,
			FirstName:   names.FirstName,
			Goal:        string(rec.Goal),
			Raised:      imp.norm.ConvertToBase(amountOf(rec.Raised), cur),
			Currency:    strings.ToUpper(cur),
			URL:         rec.URL,
			Status:      status,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}

func (imp *Importer) decodeWhydonate(r io.Reader) ([]Campaign, error) {
	var records []whydonateRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("campaigns: decode whydonate export: %w", err)
	}
	out := make([]Campaign, 0, len(records))
	for i, rec := range records {
		title := strings.TrimSpace(rec.Title)
		names := ExtractNames(title)
		out = append(out, Campaign{
			ID:          PlatformWhydonate + "_" + whydonateSlug(title, i),
			Platform:    PlatformWhydonate,
			Title:       title,
			DisplayName: names.DisplayName,
			FirstName:   names.FirstName,
			Goal:        string(rec.Goal),
			Raised:      amountOf(rec.TotalRaisedEUR),
			Currency:    imp.norm.BaseCurrency(),
			URL:         rec.URL,
			Status:      "unknown",
		})
	}
	return out, nil
}

func whydonateSlug(title string, index int) string {
	if title == "" {
		return fmt.Sprintf("campaign_%d", index)
	}
	slug := strings.ReplaceAll(strings.ToLower(title), " ", "-")
	if runes := []rune(slug); len(runes) > 50 {
		slug = string(runes[:50])
	}
	return slug
}

func amountOf(s flexString) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(string(s)))
	if err != nil || v.IsNegative() {
		return decimal.Zero
	}
	return v
}
