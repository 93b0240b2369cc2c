package dataset

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ════════════════════════════════════════════════════════════════════
// Aggregate types
// ════════════════════════════════════════════════════════════════════

// Total is a summed sales figure for one key (platform, genre).
type Total struct {
	Key   string          `json:"key"`
	Sales decimal.Decimal `json:"sales"`
}

// Cell is one Genre × Platform bucket.
type Cell struct {
	Genre    string          `json:"genre"`
	Platform string          `json:"platform"`
	Sales    decimal.Decimal `json:"sales"`
}

// YearTotal is summed sales for a release year.
type YearTotal struct {
	Year  int             `json:"year"`
	Sales decimal.Decimal `json:"sales"`
}

// ════════════════════════════════════════════════════════════════════
// Platform totals
// ════════════════════════════════════════════════════════════════════

// SalesByPlatform sums global sales per platform, largest first. Ties keep
// the order in which the platforms first appear in the table.
func SalesByPlatform(t *Table) []Total {
	if t == nil {
		return nil
	}
	index := make(map[string]int)
	var out []Total
	for _, r := range t.Records {
		i, ok := index[r.Platform]
		if !ok {
			i = len(out)
			index[r.Platform] = i
			out = append(out, Total{Key: r.Platform, Sales: decimal.Zero})
		}
		out[i].Sales = out[i].Sales.Add(r.GlobalSales)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Sales.GreaterThan(out[b].Sales)
	})
	return out
}

// TopPlatforms returns the names of the n best-selling platforms. n <= 0
// returns every platform.
func TopPlatforms(t *Table, n int) []string {
	totals := SalesByPlatform(t)
	if n > 0 && n < len(totals) {
		totals = totals[:n]
	}
	names := make([]string, len(totals))
	for i, tot := range totals {
		names[i] = tot.Key
	}
	return names
}

// FilterPlatforms returns a table restricted to the given platforms. The
// source is shared; records are copied by value.
func FilterPlatforms(t *Table, platforms []string) *Table {
	keep := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		keep[p] = true
	}
	out := &Table{}
	if t == nil {
		return out
	}
	out.Source = t.Source
	for _, r := range t.Records {
		if keep[r.Platform] {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Genre × Platform
// ════════════════════════════════════════════════════════════════════

// SalesByGenrePlatform sums sales per (genre, platform) pair. Cells are
// ordered by genre, then platform.
func SalesByGenrePlatform(t *Table) []Cell {
	if t == nil {
		return nil
	}
	type key struct{ genre, platform string }
	sums := make(map[key]decimal.Decimal)
	for _, r := range t.Records {
		k := key{r.Genre, r.Platform}
		sums[k] = sums[k].Add(r.GlobalSales)
	}
	out := make([]Cell, 0, len(sums))
	for k, v := range sums {
		out = append(out, Cell{Genre: k.genre, Platform: k.platform, Sales: v})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Genre != out[b].Genre {
			return out[a].Genre < out[b].Genre
		}
		return out[a].Platform < out[b].Platform
	})
	return out
}

// Genres returns the distinct genres, sorted.
func Genres(t *Table) []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Records {
		if !seen[r.Genre] {
			seen[r.Genre] = true
			out = append(out, r.Genre)
		}
	}
	sort.Strings(out)
	return out
}

// ════════════════════════════════════════════════════════════════════
// Years
// ════════════════════════════════════════════════════════════════════

// SalesByYear sums sales per release year in ascending year order. Records
// without a year are left out.
func SalesByYear(t *Table) []YearTotal {
	if t == nil {
		return nil
	}
	return yearTotals(t.Records, func(Record) bool { return true })
}

// SalesByPlatformYear returns per-year totals for each platform. Records
// without a year are left out.
func SalesByPlatformYear(t *Table) map[string][]YearTotal {
	if t == nil {
		return nil
	}
	out := make(map[string][]YearTotal)
	for _, p := range TopPlatforms(t, 0) {
		platform := p
		if yt := yearTotals(t.Records, func(r Record) bool { return r.Platform == platform }); len(yt) > 0 {
			out[platform] = yt
		}
	}
	return out
}

// Years returns the distinct known years, ascending.
func Years(t *Table) []int {
	if t == nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, r := range t.Records {
		if r.HasYear && !seen[r.Year] {
			seen[r.Year] = true
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}

func yearTotals(records []Record, keep func(Record) bool) []YearTotal {
	sums := make(map[int]decimal.Decimal)
	for _, r := range records {
		if !r.HasYear || !keep(r) {
			continue
		}
		sums[r.Year] = sums[r.Year].Add(r.GlobalSales)
	}
	out := make([]YearTotal, 0, len(sums))
	for y, s := range sums {
		out = append(out, YearTotal{Year: y, Sales: s})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Year < out[b].Year })
	return out
}
