package liquidity

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Locale selects the disclosure language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

var localeMatcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// ParseLocale maps a BCP 47 tag or Accept-Language value to a supported
// locale, falling back to English.
func ParseLocale(raw string) Locale {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return LocaleEnglish
	}
	if idx == 1 {
		return LocaleArabic
	}
	return LocaleEnglish
}

type disclosureText struct {
	policy      string
	beneficiary string
}

var disclosures = map[Locale]disclosureText{
	LocaleEnglish: {
		policy:      "This campaign includes a %[1]s%% resolution policy (%[1]s%% of total). From the total goal, %[2]s is dedicated to historical debt stabilization, and approximately %[3]s covers transactional liquidity costs.",
		beneficiary: " This contribution directly supports the resolution of debt for: %s.",
	},
	LocaleArabic: {
		policy:      "تتضمن هذه الحملة سياسة تسوية بنسبة %[1]s%% (%[1]s%% من الإجمالي). من إجمالي الهدف، يُخصَّص %[2]s لتسوية الديون التاريخية، ويغطي ما يقارب %[3]s تكاليف السيولة للمعاملات.",
		beneficiary: " تدعم هذه المساهمة مباشرةً تسوية الديون لصالح: %s.",
	},
}

// Disclosure renders the public note for s. When s carries resolutions the
// first beneficiary is named.
func Disclosure(s Split, p Policy, locale Locale) string {
	text, ok := disclosures[locale]
	if !ok {
		text = disclosures[LocaleEnglish]
	}
	ratio := p.TransparentRatio().Mul(decimal.NewFromInt(100)).StringFixed(0)
	note := fmt.Sprintf(text.policy, ratio, FormatAmount(s.DebtResolution), FormatAmount(s.TransactionFees))
	if len(s.Resolutions) > 0 {
		note += fmt.Sprintf(text.beneficiary, s.Resolutions[0].Beneficiary)
	}
	return note
}
