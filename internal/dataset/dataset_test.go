package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiny = `Name,Platform,Year,Genre,Global_Sales
A,Wii,2006,Sports,10
B,DS,2006,Platform,4.5
C,Wii,N/A,Sports,2
D,DS,,Racing,
E,PS2,2001,Racing,4.5
F,DS,2005,Racing,1.25
`

func mustParse(t *testing.T, s string) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return tbl
}

// ════════════════════════════════════════════════════════════════════
// Parse
// ════════════════════════════════════════════════════════════════════

func TestParse(t *testing.T) {
	tbl := mustParse(t, tiny)
	require.Equal(t, 6, tbl.Len())

	a := tbl.Records[0]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, "Wii", a.Platform)
	assert.Equal(t, "Sports", a.Genre)
	assert.True(t, a.HasYear)
	assert.Equal(t, 2006, a.Year)
	assert.True(t, decimal.NewFromInt(10).Equal(a.GlobalSales))

	assert.False(t, tbl.Records[2].HasYear, "N/A year is absent")
	assert.False(t, tbl.Records[3].HasYear, "empty year is absent")
	assert.True(t, tbl.Records[3].GlobalSales.IsZero(), "empty sales count as zero")
}

func TestParseHeaderVariants(t *testing.T) {
	tbl := mustParse(t, "\ufeffPlatform, Genre,Year,Global_Sales\nWii,Sports,2006.0,1\n")
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, 2006, tbl.Records[0].Year)
	assert.Empty(t, tbl.Records[0].Name, "name is optional")
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2006", 2006, true},
		{"1985.0", 1985, true},
		{"0", 0, true},
		{"9999", 9999, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
		{"1e300", 0, false},
		{"-1e300", 0, false},
		{"-1", 0, false},
		{"10000", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	tbl := mustParse(t, "Platform,Genre,Year,Global_Sales\nWii,Sports,1e300,1\n")
	assert.False(t, tbl.Records[0].HasYear)
	assert.Empty(t, SalesByYear(tbl))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
		missing bool
	}{
		{"empty input", "", "empty input", true},
		{"missing genre", "Platform,Year,Global_Sales\nWii,2006,1\n", `"Genre"`, true},
		{"bad sales", "Platform,Genre,Year,Global_Sales\nWii,Sports,2006,1\nDS,Racing,2005,lots\n", "line 3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.missing {
				assert.Equal(t, ErrMissingColumn, errors.Cause(err))
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Load
// ════════════════════════════════════════════════════════════════════

func TestLoadEmbeddedSample(t *testing.T) {
	tbl, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, SampleSource, tbl.Source)
	assert.Equal(t, 60, tbl.Len())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.csv")
	require.NoError(t, os.WriteFile(path, []byte(tiny), 0o644))

	tbl, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Source)
	assert.Equal(t, 6, tbl.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Source, "nope.csv")
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestLoadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games.csv" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(tiny))
	}))
	defer srv.Close()

	tbl, err := Load(context.Background(), srv.URL+"/games.csv")
	require.NoError(t, err)
	assert.Equal(t, 6, tbl.Len())

	_, err = Load(context.Background(), srv.URL+"/missing.csv")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestLoadHTTPCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tiny))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, srv.URL)
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

// ════════════════════════════════════════════════════════════════════
// Aggregates
// ════════════════════════════════════════════════════════════════════

func totalsOf(ts []Total) map[string]string {
	out := make(map[string]string, len(ts))
	for _, t := range ts {
		out[t.Key] = t.Sales.String()
	}
	return out
}

func TestSalesByPlatform(t *testing.T) {
	got := SalesByPlatform(mustParse(t, tiny))
	require.Len(t, got, 3)
	assert.Equal(t, "Wii", got[0].Key)
	// DS (5.75) before PS2 (4.5).
	assert.Equal(t, "DS", got[1].Key)
	assert.Equal(t, map[string]string{"Wii": "12", "DS": "5.75", "PS2": "4.5"}, totalsOf(got))
}

func TestSalesByPlatformTiesKeepFirstAppearance(t *testing.T) {
	tbl := mustParse(t, "Platform,Genre,Year,Global_Sales\nB,x,1,1\nA,x,1,1\nC,x,1,2\n")
	assert.Equal(t, []string{"C", "B", "A"}, TopPlatforms(tbl, 0))
}

func TestSalesByPlatformIsExact(t *testing.T) {
	tbl := mustParse(t, "Platform,Genre,Year,Global_Sales\nX,a,1,0.1\nX,a,1,0.2\n")
	assert.Equal(t, "0.3", SalesByPlatform(tbl)[0].Sales.String())
}

func TestTopPlatforms(t *testing.T) {
	tbl, err := Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Wii", "DS", "GB"}, TopPlatforms(tbl, 3))
	assert.Len(t, TopPlatforms(tbl, 12), 12)
	assert.Len(t, TopPlatforms(tbl, 100), 15)
	assert.Nil(t, TopPlatforms(nil, 3))
}

func TestFilterPlatforms(t *testing.T) {
	tbl := mustParse(t, tiny)
	got := FilterPlatforms(tbl, []string{"DS"})
	require.Equal(t, 3, got.Len())
	for _, r := range got.Records {
		assert.Equal(t, "DS", r.Platform)
	}
	assert.Zero(t, FilterPlatforms(tbl, nil).Len())
}

func TestSalesByGenrePlatform(t *testing.T) {
	got := SalesByGenrePlatform(mustParse(t, tiny))
	require.Len(t, got, 4)
	assert.Equal(t, "Platform", got[0].Genre)
	assert.Equal(t, "4.5", got[0].Sales.String())
	assert.Equal(t, "Racing", got[1].Genre)
	assert.Equal(t, "DS", got[1].Platform)
	assert.Equal(t, "1.25", got[1].Sales.String())
	assert.Equal(t, "PS2", got[2].Platform)
	assert.Equal(t, "Sports", got[3].Genre)
	assert.Equal(t, "12", got[3].Sales.String())
}

func TestSalesByYear(t *testing.T) {
	got := SalesByYear(mustParse(t, tiny))
	require.Len(t, got, 3)
	assert.Equal(t, []int{2001, 2005, 2006}, []int{got[0].Year, got[1].Year, got[2].Year})
	assert.Equal(t, "14.5", got[2].Sales.String(), "the N/A row is excluded")
}

func TestSalesByPlatformYear(t *testing.T) {
	got := SalesByPlatformYear(mustParse(t, tiny))
	require.Contains(t, got, "DS")
	ds := got["DS"]
	require.Len(t, ds, 2)
	assert.Equal(t, 2005, ds[0].Year)
	assert.Equal(t, 2006, ds[1].Year)
	assert.Len(t, got["Wii"], 1)
}

func TestGenresAndYears(t *testing.T) {
	tbl := mustParse(t, tiny)
	assert.Equal(t, []string{"Platform", "Racing", "Sports"}, Genres(tbl))
	assert.Equal(t, []int{2001, 2005, 2006}, Years(tbl))
}
