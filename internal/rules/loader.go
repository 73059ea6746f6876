package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// Supported log format for the [log] section.
const logFormatEDI = "edi"

var loadOptions = ini.LoadOptions{
	Insensitive:         true,
	IgnoreInlineComment: true,
}

// Load reads and validates an INI rules file. Any structural problem is fatal
// since no log can be judged without a complete rule set.
func Load(path string) (*Rules, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: load %s", path)
	}
	r, err := build(f)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: %s", path)
	}
	r.path = path

	zap.L().Debug("rules: loaded",
		zap.String("path", path),
		zap.String("contest", r.name),
		zap.Int("bands", len(r.bands)),
		zap.Int("periods", len(r.periods)),
		zap.Int("categories", len(r.categories)),
	)
	return r, nil
}

// Parse builds rules from INI content held in memory.
func Parse(data []byte) (*Rules, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, eris.Wrap(err, "rules: parse")
	}
	return build(f)
}

func build(f *ini.File) (*Rules, error) {
	contest, err := f.GetSection("contest")
	if err != nil {
		return nil, eris.New("rules: [contest] section is missing")
	}
	for _, key := range []string{"begindate", "enddate", "beginhour", "endhour", "bands", "periods", "categories"} {
		if !contest.HasKey(key) {
			return nil, eris.Errorf("rules: [contest] section has no %q field", key)
		}
	}

	r := &Rules{
		name:   contest.Key("name").String(),
		extras: make(map[Extra]bool),
	}

	if r.beginDate, err = ParseDate(contest.Key("begindate").String()); err != nil {
		return nil, eris.Wrap(err, "rules: contest begin date")
	}
	if r.endDate, err = ParseDate(contest.Key("enddate").String()); err != nil {
		return nil, eris.Wrap(err, "rules: contest end date")
	}
	if r.beginHour, err = ParseClock(contest.Key("beginhour").String()); err != nil {
		return nil, eris.Wrap(err, "rules: contest begin hour")
	}
	if r.endHour, err = ParseClock(contest.Key("endhour").String()); err != nil {
		return nil, eris.Wrap(err, "rules: contest end hour")
	}
	if r.endDate.Before(r.beginDate) {
		return nil, eris.New("rules: contest end date is before begin date")
	}

	if fmtSec, err := f.GetSection("log"); err == nil && fmtSec.HasKey("format") {
		if format := strings.ToLower(fmtSec.Key("format").String()); format != logFormatEDI {
			return nil, eris.Errorf("rules: unsupported log format %q", format)
		}
	}

	if r.modes, err = parseModes(contest); err != nil {
		return nil, err
	}

	nBands, err := sectionCount(contest, "bands")
	if err != nil {
		return nil, err
	}
	bandIDs := make(map[string]bool, nBands)
	for i := 1; i <= nBands; i++ {
		b, err := buildBand(f, i)
		if err != nil {
			return nil, err
		}
		bandIDs[b.ID] = true
		r.bands = append(r.bands, b)
	}

	nPeriods, err := sectionCount(contest, "periods")
	if err != nil {
		return nil, err
	}
	for i := 1; i <= nPeriods; i++ {
		p, err := buildPeriod(f, i, bandIDs)
		if err != nil {
			return nil, err
		}
		r.periods = append(r.periods, p)
	}

	nCategories, err := sectionCount(contest, "categories")
	if err != nil {
		return nil, err
	}
	for i := 1; i <= nCategories; i++ {
		c, err := buildCategory(f, i, bandIDs)
		if err != nil {
			return nil, err
		}
		r.categories = append(r.categories, c)
	}

	if extra, err := f.GetSection("extra"); err == nil {
		for _, e := range []Extra{ExtraEmail, ExtraAddress, ExtraName} {
			if !extra.HasKey(string(e)) {
				continue
			}
			on, err := extra.Key(string(e)).Bool()
			if err != nil {
				return nil, eris.Wrapf(err, "rules: [extra] %s", e)
			}
			r.extras[e] = on
		}
		if p := strings.TrimSpace(extra.Key("callsignregexp").String()); p != "" {
			re, err := compilePattern(p)
			if err != nil {
				return nil, eris.Wrap(err, "rules: [extra] callsignregexp")
			}
			r.callsign = re
		}
	}

	return r, nil
}

// sectionCount reads a positive section count from [contest].
func sectionCount(contest *ini.Section, key string) (int, error) {
	n, err := contest.Key(key).Int()
	if err != nil {
		return 0, eris.Errorf("rules: invalid %q value in [contest] section", key)
	}
	if n < 1 {
		return 0, eris.Errorf("rules: %q in [contest] section must be at least 1", key)
	}
	return n, nil
}

func requireKeys(sec *ini.Section, keys ...string) error {
	for _, k := range keys {
		if !sec.HasKey(k) {
			return eris.Errorf("rules: [%s] section has no %q field", sec.Name(), k)
		}
	}
	return nil
}

func buildBand(f *ini.File, n int) (Band, error) {
	id := fmt.Sprintf("band%d", n)
	sec, err := f.GetSection(id)
	if err != nil {
		return Band{}, eris.Errorf("rules: [%s] section is missing", id)
	}
	if err := requireKeys(sec, "band", "regexp"); err != nil {
		return Band{}, err
	}
	re, err := compilePattern(sec.Key("regexp").String())
	if err != nil {
		return Band{}, eris.Wrapf(err, "rules: [%s] regexp", id)
	}
	mult := 1
	if sec.HasKey("multiplier") {
		if mult, err = sec.Key("multiplier").Int(); err != nil || mult < 1 {
			return Band{}, eris.Errorf("rules: [%s] multiplier must be a positive integer", id)
		}
	}
	return Band{
		ID:         id,
		Name:       sec.Key("band").String(),
		Pattern:    re,
		Multiplier: mult,
	}, nil
}

func buildPeriod(f *ini.File, n int, bandIDs map[string]bool) (Period, error) {
	id := fmt.Sprintf("period%d", n)
	sec, err := f.GetSection(id)
	if err != nil {
		return Period{}, eris.Errorf("rules: [%s] section is missing", id)
	}
	if err := requireKeys(sec, "begindate", "enddate", "beginhour", "endhour", "bands"); err != nil {
		return Period{}, err
	}

	p := Period{Number: n}
	if p.BeginDate, err = ParseDate(sec.Key("begindate").String()); err != nil {
		return Period{}, eris.Wrapf(err, "rules: period %d begin date", n)
	}
	if p.EndDate, err = ParseDate(sec.Key("enddate").String()); err != nil {
		return Period{}, eris.Wrapf(err, "rules: period %d end date", n)
	}
	if p.BeginHour, err = ParseClock(sec.Key("beginhour").String()); err != nil {
		return Period{}, eris.Wrapf(err, "rules: period %d begin hour", n)
	}
	if p.EndHour, err = ParseClock(sec.Key("endhour").String()); err != nil {
		return Period{}, eris.Wrapf(err, "rules: period %d end hour", n)
	}
	if p.Bands, err = bandList(sec, bandIDs); err != nil {
		return Period{}, err
	}
	return p, nil
}

func buildCategory(f *ini.File, n int, bandIDs map[string]bool) (Category, error) {
	id := fmt.Sprintf("category%d", n)
	sec, err := f.GetSection(id)
	if err != nil {
		return Category{}, eris.Errorf("rules: [%s] section is missing", id)
	}
	if err := requireKeys(sec, "name", "regexp", "bands"); err != nil {
		return Category{}, err
	}
	re, err := compilePattern(sec.Key("regexp").String())
	if err != nil {
		return Category{}, eris.Wrapf(err, "rules: [%s] regexp", id)
	}
	bands, err := bandList(sec, bandIDs)
	if err != nil {
		return Category{}, err
	}
	return Category{
		ID:      id,
		Name:    sec.Key("name").String(),
		Pattern: re,
		Bands:   bands,
	}, nil
}

// bandList reads a comma separated band reference list and checks that every
// entry names a configured band section.
func bandList(sec *ini.Section, bandIDs map[string]bool) ([]string, error) {
	var out []string
	for _, b := range sec.Key("bands").Strings(",") {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		if !bandIDs[b] {
			return nil, eris.Errorf("rules: [%s] references unknown band %q", sec.Name(), b)
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, eris.Errorf("rules: [%s] has an empty bands list", sec.Name())
	}
	return out, nil
}

// parseModes reads the optional accepted modes list. EDI modes are single
// digits; without a list every mode 0-9 is accepted.
func parseModes(contest *ini.Section) ([]int, error) {
	if !contest.HasKey("modes") {
		return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, nil
	}
	var modes []int
	for _, m := range contest.Key("modes").Strings(",") {
		v, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil || v < 0 || v > 9 {
			return nil, eris.Errorf("rules: invalid mode %q in [contest] section", m)
		}
		modes = append(modes, v)
	}
	if len(modes) == 0 {
		return nil, eris.New("rules: empty modes list in [contest] section")
	}
	return modes, nil
}
