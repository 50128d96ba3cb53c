package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/rankscrape/models"
	"golang.org/x/net/html"
)

// compiledRule is a Rule with its selectors parsed once up front.
// A rule whose selectors fail to compile stays in the set and always
// yields an empty value.
type compiledRule struct {
	Rule
	rows  cascadia.Selector
	cells cascadia.Selector
	err   error
}

// Extractor applies a fixed rule set to rendered HTML.
// It is read-only after New and safe for concurrent use.
type Extractor struct {
	rules []compiledRule
}

// New compiles rules. Invalid selectors are logged, not returned.
func New(rules []Rule) *Extractor {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr := compiledRule{Rule: r}
		cr.rows, cr.err = cascadia.Compile(r.Selector)
		if cr.err == nil && r.Cardinality == Repeated {
			cr.cells, cr.err = cascadia.Compile(r.CellSelector)
		}
		if cr.err != nil {
			slog.Warn("extraction rule disabled: invalid selector",
				"field", r.Field,
				"selector", r.Selector,
				"error", cr.err,
			)
		}
		compiled = append(compiled, cr)
	}
	return &Extractor{rules: compiled}
}

// Extract builds a record from rawHTML. It never fails: every per-field or
// per-row fault degrades to an empty or omitted value.
func (e *Extractor) Extract(rawHTML string, capturedAt time.Time) models.ScrapedRecord {
	rec := models.NewScrapedRecord(capturedAt)

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("extract: html parse failed, returning empty record", "error", err)
		return rec
	}
	doc := goquery.NewDocumentFromNode(root)

	for _, r := range e.rules {
		switch r.Cardinality {
		case Single:
			setField(&rec, r.Field, e.single(doc, r))
		case Repeated:
			if r.Field == FieldTableRows {
				rec.TableRows = toTableRows(e.repeated(doc, r))
			}
		}
	}
	return rec
}

// single returns the trimmed text of the first match, or "".
func (e *Extractor) single(doc *goquery.Document, r compiledRule) (value string) {
	if r.err != nil {
		return ""
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("extract: field evaluation panicked", "field", r.Field, "panic", fmt.Sprint(rec))
			value = ""
		}
	}()

	first := doc.FindMatcher(r.rows).First()
	if first.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(first.Text())
}

// repeated returns one map per qualifying row, in document order.
func (e *Extractor) repeated(doc *goquery.Document, r compiledRule) []map[string]string {
	rows := []map[string]string{}
	if r.err != nil {
		return rows
	}

	doc.FindMatcher(r.rows).Each(func(i int, row *goquery.Selection) {
		if m, ok := e.row(row, r, i); ok {
			rows = append(rows, m)
		}
	})
	return rows
}

func (e *Extractor) row(row *goquery.Selection, r compiledRule, idx int) (m map[string]string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("extract: row evaluation panicked, skipping row",
				"field", r.Field, "row", idx, "panic", fmt.Sprint(rec))
			m, ok = nil, false
		}
	}()

	cells := row.FindMatcher(r.cells)
	n := cells.Length()
	if n < r.MinCells {
		return nil, false
	}

	m = make(map[string]string, len(r.Columns))
	for _, col := range r.Columns {
		if col.Index < n {
			m[col.Field] = strings.TrimSpace(cells.Eq(col.Index).Text())
		} else {
			m[col.Field] = ""
		}
	}
	return m, true
}

func setField(rec *models.ScrapedRecord, field, value string) {
	switch field {
	case FieldZoneName:
		rec.ZoneName = value
	case FieldBossName:
		rec.BossName = value
	}
}

func toTableRows(rows []map[string]string) []models.TableRow {
	out := make([]models.TableRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, models.TableRow{
			JobName: m[FieldJobName],
			Score:   m[FieldScore],
			Count:   m[FieldCount],
		})
	}
	return out
}
