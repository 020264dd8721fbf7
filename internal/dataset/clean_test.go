package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playersRaw() *Raw {
	return &Raw{
		Header: []string{
			"sofifa_id", "player_url", "short_name", "age", "dob", "overall", "potential",
			"value_eur", "nationality", "club_name", "preferred_foot", "player_positions",
			"Work Rate", "pace-rating",
		},
		Rows: [][]string{
			{"1", "http://x/1", "L. Messi", "33", "1987-06-24", "93", "93", "67500000", "Argentina", "FC Barcelona", "Left", "RW, ST, CF", "Medium/Low", "85"},
			{"2", "http://x/2", "Cristiano Ronaldo", "", "1985-02-05", "92", "92", "46000000", "Portugal", "", "Right", "ST, LW", "High/Low", ""},
			{"3", "http://x/3", "", "27", "not a date", "91", "93", "", "", "Juventus", "Right", "ST", "NA", "91"},
			{"4", "http://x/4", "K. Mbappé", "21", "", "90", "95", "105500000", "France", "Paris Saint-Germain", "Right", "ST, LW, RW", "High/Low", "96"},
		},
	}
}

func mustClean(t *testing.T, raw *Raw) *Dataset {
	t.Helper()
	ds, _, err := Clean(raw)
	require.NoError(t, err)
	return ds
}

func TestClean_DropsDeniedColumns(t *testing.T) {
	ds, report, err := Clean(playersRaw())
	require.NoError(t, err)

	_, ok := ds.Column(ColSofifaID)
	assert.False(t, ok)
	_, ok = ds.Column(ColPlayerURL)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{ColSofifaID, ColPlayerURL}, report.DroppedColumns)
}

func TestClean_AbsentDeniedColumnsAreNotAnError(t *testing.T) {
	raw := &Raw{Header: []string{"age"}, Rows: [][]string{{"20"}}}
	ds, report, err := Clean(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, ds.Names())
	assert.Empty(t, report.DroppedColumns)
}

func TestClean_FillsNumericWithMedian(t *testing.T) {
	raw := &Raw{
		Header: []string{"overall", "age", "value_eur", "potential"},
		Rows: [][]string{
			{"70", "22", "500000", "75"},
			{"80", "", "1000000", "85"},
			{"75", "24", "750000", "80"},
			{"72", "26", "600000", "78"},
		},
	}
	ds := mustClean(t, raw)

	age, err := ds.RequireNumeric(ColAge)
	require.NoError(t, err)
	assert.Equal(t, 24.0, age.Number(1))
	assert.Equal(t, []float64{22, 24, 24, 26}, age.Numbers())
}

func TestClean_MedianOfEvenCountAverages(t *testing.T) {
	raw := &Raw{
		Header: []string{"wage_eur"},
		Rows:   [][]string{{"10"}, {"20"}, {""}, {"40"}, {"30"}},
	}
	ds := mustClean(t, raw)
	c, _ := ds.Column(ColWageEUR)
	assert.Equal(t, 25.0, c.Number(2))
}

func TestClean_AllMissingNumericColumnFallsBackToZero(t *testing.T) {
	raw := &Raw{
		Header: []string{"age", "mystery"},
		Rows:   [][]string{{"", "NaN"}, {"NA", ""}},
	}
	ds, report, err := Clean(raw)
	require.NoError(t, err)

	for _, name := range []string{"age", "mystery"} {
		c, ok := ds.Column(name)
		require.True(t, ok)
		assert.Equal(t, KindNumeric, c.Kind)
		assert.Equal(t, []float64{0, 0}, c.Numbers())
	}
	assert.Equal(t, []string{"age", "mystery"}, report.ZeroFilledColumns)
}

func TestClean_FillsTextWithUnknown(t *testing.T) {
	ds := mustClean(t, playersRaw())

	name, _ := ds.Column("short_name")
	assert.Equal(t, KindText, name.Kind)
	assert.Equal(t, UnknownText, name.Text(2))

	club, _ := ds.Column(ColClubName)
	assert.Equal(t, UnknownText, club.Text(1))

	rate, _ := ds.Column("work_rate")
	assert.Equal(t, UnknownText, rate.Text(2))
}

func TestClean_NoMissingValuesRemain(t *testing.T) {
	ds := mustClean(t, playersRaw())
	for _, c := range ds.Columns() {
		for i := 0; i < c.Len(); i++ {
			switch c.Kind {
			case KindNumeric:
				assert.False(t, IsMissing(c.String(i)), "column %s row %d", c.Name, i)
			case KindText:
				assert.NotEmpty(t, c.Text(i), "column %s row %d", c.Name, i)
			}
		}
	}
}

func TestClean_ParsesDOB(t *testing.T) {
	ds := mustClean(t, playersRaw())

	dob, err := ds.Require(ColDOB)
	require.NoError(t, err)
	assert.Equal(t, KindDate, dob.Kind)

	assert.True(t, dob.Date(0).Valid)
	assert.Equal(t, "1987-06-24", dob.String(0))
	assert.False(t, dob.Date(2).Valid, "unparseable value becomes the marker")
	assert.False(t, dob.Date(3).Valid, "missing value becomes the marker")
	assert.Nil(t, dob.Value(3))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"1987-06-24", "1987-06-24", true},
		{"1987/06/24", "1987-06-24", true},
		{"06/24/1987", "1987-06-24", true},
		{"24 June 1987", "1987-06-24", true},
		{"Jun 24, 1987", "1987-06-24", true},
		{"1987-06-24 10:30:00", "1987-06-24 10:30:00", true},
		{"Unknown", "", false},
		{"24/24/1987", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := ParseDate(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestClean_TagsCategoricalColumns(t *testing.T) {
	ds := mustClean(t, playersRaw())

	for _, name := range CategoricalColumns {
		c, ok := ds.Column(name)
		require.True(t, ok, name)
		assert.True(t, c.Categorical, name)
	}
	short, _ := ds.Column("short_name")
	assert.False(t, short.Categorical)

	nat, _ := ds.Column(ColNationality)
	assert.Equal(t, []string{"Argentina", "France", "Portugal", UnknownText}, nat.Levels())
}

func TestClean_NormalizesNamesLast(t *testing.T) {
	ds := mustClean(t, playersRaw())
	assert.Equal(t, []string{
		"short_name", "age", "dob", "overall", "potential", "value_eur", "nationality",
		"club_name", "preferred_foot", "player_positions", "work_rate", "pace_rating",
	}, ds.Names())
}

func TestClean_EmptyInput(t *testing.T) {
	raw := &Raw{Header: []string{"player_url", "Short Name", "age", "nationality", "dob"}}
	ds, report, err := Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, []string{"short_name", "age", "nationality", "dob"}, ds.Names())

	age, _ := ds.Column(ColAge)
	assert.Equal(t, KindNumeric, age.Kind)
	nat, _ := ds.Column(ColNationality)
	assert.Equal(t, KindText, nat.Kind)
	assert.True(t, nat.Categorical)
	dob, _ := ds.Column(ColDOB)
	assert.Equal(t, KindDate, dob.Kind)
	assert.Contains(t, report.ZeroFilledColumns, "age")
}

func TestClean_IsIdempotent(t *testing.T) {
	first := mustClean(t, playersRaw())
	second := mustClean(t, first.Raw())

	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first.Head(-1), second.Head(-1))
	for _, c := range first.Columns() {
		other, ok := second.Column(c.Name)
		require.True(t, ok)
		assert.Equal(t, c.Kind, other.Kind, c.Name)
		assert.Equal(t, c.Categorical, other.Categorical, c.Name)
		assert.Equal(t, c.Levels(), other.Levels(), c.Name)
	}
}

func TestClean_IsDeterministic(t *testing.T) {
	a, ra, err := Clean(playersRaw())
	require.NoError(t, err)
	b, rb, err := Clean(playersRaw())
	require.NoError(t, err)
	assert.Equal(t, a.Head(-1), b.Head(-1))
	assert.Equal(t, ra, rb)
}

func TestClean_RejectsMalformedShape(t *testing.T) {
	tests := []struct {
		name string
		raw  *Raw
		want error
	}{
		{
			name: "duplicate header",
			raw:  &Raw{Header: []string{"age", "age"}},
			want: ErrDuplicateColumn,
		},
		{
			name: "collision after normalization",
			raw:  &Raw{Header: []string{"Club Name", "club-name"}},
			want: ErrDuplicateColumn,
		},
		{
			name: "ragged row",
			raw:  &Raw{Header: []string{"age", "overall"}, Rows: [][]string{{"20"}}},
			want: ErrRaggedRow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Clean(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Overall", "overall"},
		{"Club Name", "club_name"},
		{"pace-rating", "pace_rating"},
		{"Work Rate-Defence", "work_rate_defence"},
		{"already_clean", "already_clean"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			once := NormalizeName(tt.in)
			assert.Equal(t, tt.want, once)
			assert.Equal(t, once, NormalizeName(once))
		})
	}
}

func TestIsMissing(t *testing.T) {
	for _, s := range []string{"", "  ", "NA", "NaN", "null", "None", "#N/A", "<NA>"} {
		assert.True(t, IsMissing(s), "%q", s)
	}
	for _, s := range []string{"0", "Unknown", "n", "NAN"} {
		assert.False(t, IsMissing(s), "%q", s)
	}
}

func TestMedian(t *testing.T) {
	_, ok := Median(nil)
	assert.False(t, ok)

	m, ok := Median([]float64{3, 1, 2})
	assert.True(t, ok)
	assert.Equal(t, 2.0, m)
}

func TestClean_SchemaRulesMatchRawNames(t *testing.T) {
	// Drop, date and categorical rules run before names are normalized, so
	// they only apply to headers already spelled in canonical form.
	raw := &Raw{
		Header: []string{"Player URL", "DOB", "Nationality"},
		Rows:   [][]string{{"http://x/1", "1987-06-24", "Argentina"}},
	}
	ds, report, err := Clean(raw)
	require.NoError(t, err)

	assert.Empty(t, report.DroppedColumns)
	assert.Equal(t, []string{ColPlayerURL, ColDOB, ColNationality}, ds.Names())

	dob, err := ds.Require(ColDOB)
	require.NoError(t, err)
	assert.Equal(t, KindText, dob.Kind)

	nat, err := ds.Require(ColNationality)
	require.NoError(t, err)
	assert.False(t, nat.Categorical)
}
