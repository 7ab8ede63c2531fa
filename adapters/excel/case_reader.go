package excel

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"drugwatch/domain/core"
	"drugwatch/domain/signal"
	"drugwatch/internal/errors"
	"drugwatch/ports"
)

// CaseReader implements ports.MetricsProvider over a case workbook. The
// whole sheet loads into memory once at construction; aggregation per query
// happens over the in-memory rows. Intended for review datasets, not for
// production-scale databases.
//
// Expected columns on Sheet1, header row first:
//
//	drug | event | serious | report_date | source | source_confidence | outcome | region | age
type CaseReader struct {
	cases []caseRow
}

type caseRow struct {
	drug       core.DrugKey
	event      core.EventKey
	serious    bool
	reportDate time.Time
	source     string
	confidence float64
	outcome    string
	region     string
	age        int
}

// NewCaseReader loads the workbook and parses every case row
func NewCaseReader(filePath string) (*CaseReader, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, errors.ConfigInvalid(fmt.Sprintf("case workbook %s does not exist", filePath))
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open case workbook %s", filePath)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read Sheet1")
	}
	if len(rows) < 2 {
		return nil, errors.ConfigInvalid("case workbook needs a header row and at least one case")
	}

	columns := columnIndex(rows[0])
	reader := &CaseReader{}
	for i, row := range rows[1:] {
		parsed, err := parseCaseRow(row, columns)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d invalid", i+2)
		}
		reader.cases = append(reader.cases, parsed)
	}
	return reader, nil
}

var _ ports.MetricsProvider = (*CaseReader)(nil)

// FetchEvidence aggregates the in-memory cases for one pair
func (r *CaseReader) FetchEvidence(ctx context.Context, drug core.DrugKey, event core.EventKey, spec signal.QuerySpec) (signal.Evidence, error) {
	if err := ctx.Err(); err != nil {
		return signal.Evidence{}, err
	}

	window := spec.Window.Resolve(time.Now())
	var n11, serious, drugTotal, eventTotal, total int
	var pairCases []caseRow

	for _, c := range r.cases {
		if !matchesFilters(c, spec, window) {
			continue
		}
		total++
		hasDrug := c.drug == drug
		hasEvent := c.event == event
		if hasDrug {
			drugTotal++
		}
		if hasEvent {
			eventTotal++
		}
		if hasDrug && hasEvent {
			n11++
			if c.serious {
				serious++
			}
			pairCases = append(pairCases, c)
		}
	}

	if n11 == 0 {
		return signal.Evidence{}, core.ErrEvidenceUnavailable
	}

	table, err := signal.NewContingencyTable(n11, drugTotal-n11, eventTotal-n11, total-drugTotal-eventTotal+n11)
	if err != nil {
		return signal.Evidence{}, err
	}

	evidence := signal.Evidence{
		Count:        n11,
		SeriousCount: serious,
		TotalCases:   total,
		Table:        &table,
	}
	fillTimeline(pairCases, &evidence)
	fillSources(pairCases, &evidence)
	evidence.Outcomes = collectOutcomes(pairCases)
	return evidence, nil
}

// collectOutcomes returns the distinct reported outcomes for the pair, sorted
func collectOutcomes(cases []caseRow) []string {
	seen := make(map[string]bool)
	var outcomes []string
	for _, c := range cases {
		if c.outcome == "" || seen[c.outcome] {
			continue
		}
		seen[c.outcome] = true
		outcomes = append(outcomes, c.outcome)
	}
	sort.Strings(outcomes)
	return outcomes
}

// TotalCases counts all cases passing the query's filters
func (r *CaseReader) TotalCases(ctx context.Context, spec signal.QuerySpec) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	window := spec.Window.Resolve(time.Now())
	total := 0
	for _, c := range r.cases {
		if matchesFilters(c, spec, window) {
			total++
		}
	}
	return total, nil
}

func matchesFilters(c caseRow, spec signal.QuerySpec, window core.ReportWindow) bool {
	if spec.SeriousOnly && !c.serious {
		return false
	}
	if !c.reportDate.IsZero() && !window.Contains(c.reportDate) {
		return false
	}
	if len(spec.Regions) > 0 {
		found := false
		for _, region := range spec.Regions {
			if strings.EqualFold(region, c.region) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if spec.AgeRange != nil && (c.age < spec.AgeRange.Min || c.age > spec.AgeRange.Max) {
		return false
	}
	return true
}

// fillTimeline buckets the pair's cases by month
func fillTimeline(cases []caseRow, evidence *signal.Evidence) {
	buckets := make(map[time.Time]int)
	var first, latest time.Time
	for _, c := range cases {
		if c.reportDate.IsZero() {
			continue
		}
		month := time.Date(c.reportDate.Year(), c.reportDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		buckets[month]++
		if first.IsZero() || c.reportDate.Before(first) {
			first = c.reportDate
		}
		if c.reportDate.After(latest) {
			latest = c.reportDate
		}
	}
	if len(buckets) == 0 {
		return
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	counts := make([]int, len(months))
	for i, m := range months {
		counts[i] = buckets[m]
	}
	series, err := signal.NewTimeSeriesData(months, counts)
	if err != nil {
		return
	}
	evidence.Series = &series
	evidence.FirstReportDate = first
	evidence.Dates = []time.Time{latest}
}

func fillSources(cases []caseRow, evidence *signal.Evidence) {
	type agg struct {
		n          int
		serious    int
		confidence float64
	}
	bySource := make(map[string]*agg)
	for _, c := range cases {
		name := c.source
		if name == "" {
			name = "unknown"
		}
		a, ok := bySource[name]
		if !ok {
			a = &agg{}
			bySource[name] = a
		}
		a.n++
		if c.serious {
			a.serious++
		}
		a.confidence += c.confidence
	}

	names := make([]string, 0, len(bySource))
	for name := range bySource {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := bySource[name]
		evidence.Sources = append(evidence.Sources, signal.Source{
			Name:            name,
			ReportCount:     a.n,
			Confidence:      a.confidence / float64(a.n),
			SeriousFraction: float64(a.serious) / float64(a.n),
		})
	}
}

// columnIndex maps lowercased header names to their positions
func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func parseCaseRow(row []string, columns map[string]int) (caseRow, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	drug, err := core.ParseDrugKey(cell("drug"))
	if err != nil {
		return caseRow{}, err
	}
	event, err := core.ParseEventKey(cell("event"))
	if err != nil {
		return caseRow{}, err
	}

	parsed := caseRow{
		drug:       drug,
		event:      event,
		source:     strings.ToLower(cell("source")),
		outcome:    strings.ToLower(cell("outcome")),
		region:     cell("region"),
		confidence: 0.5,
	}
	if v := cell("serious"); v != "" {
		parsed.serious, _ = strconv.ParseBool(v)
	}
	if v := cell("report_date"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			return caseRow{}, err
		}
		parsed.reportDate = date
	}
	if v := cell("source_confidence"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			parsed.confidence = f
		}
	}
	if v := cell("age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			parsed.age = n
		}
	}
	return parsed, nil
}

// parseDate accepts the formats excelize surfaces for date cells
func parseDate(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01-02-06", "1/2/2006", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}
