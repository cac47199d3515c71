package history

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sample() []Record {
	return []Record{
		{CreatedAt: "2024-05-02T10:00:00", Source: "text", Label: "Positive", Pos: 0.7, Compound: 0.8, TextSnippet: "great"},
		{CreatedAt: "2024-05-01T09:00:00", Source: "file", Label: "Negative", Neg: 0.6, Compound: -0.5, TextSnippet: "awful"},
		{CreatedAt: "2024-05-03T08:00:00", Source: "chat", Label: "Positive", Pos: 0.4, Compound: 0.3, TextSnippet: "nice"},
	}
}

func labels(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func createdAt(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.CreatedAt
	}
	return out
}

func TestView_NotLoadedVersusEmpty(t *testing.T) {
	tbl := NewTable()
	require.Equal(t, NotLoaded, tbl.View().State)

	tbl.SetSnapshot(nil)
	v := tbl.View()
	require.Equal(t, Empty, v.State)
	require.Empty(t, v.Rows)

	tbl.SetSnapshot(sample())
	tbl.SetFilter("zzz")
	require.Equal(t, Empty, tbl.View().State)
}

func TestView_FilterKeepsSnapshotOrder(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot([]Record{
		{Label: "Positive", TextSnippet: "a"},
		{Label: "Negative", TextSnippet: "b"},
		{Label: "Positive", TextSnippet: "c"},
	})
	tbl.SetFilter("pos")

	v := tbl.View()
	require.Equal(t, Rows, v.State)
	require.Len(t, v.Rows, 2)
	require.Equal(t, "a", v.Rows[0].TextSnippet)
	require.Equal(t, "c", v.Rows[1].TextSnippet)
}

func TestView_FilterMatchesSourceCaseInsensitively(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot(sample())

	tbl.SetFilter("  FILE ")
	v := tbl.View()
	require.Len(t, v.Rows, 1)
	require.Equal(t, "Negative", v.Rows[0].Label)

	tbl.SetFilter("")
	require.Len(t, tbl.View().Rows, 3, "clearing the filter restores the full row count")
}

func TestView_IsPureAndIdempotent(t *testing.T) {
	tbl := NewTable()
	snap := sample()
	tbl.SetSnapshot(snap)
	tbl.SetFilter("o")
	require.NoError(t, tbl.SetSort(KeyCompound, Asc))

	first := tbl.View()
	second := tbl.View()
	require.Equal(t, first, second)
	require.Equal(t, sample(), tbl.Snapshot(), "snapshot must never be reordered")

	snap[0].Label = "mutated by caller"
	require.Equal(t, "Positive", tbl.Snapshot()[0].Label, "snapshot is copied on set")
}

func TestView_DefaultSortIsNewestFirst(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot(sample())
	require.Equal(t,
		[]string{"2024-05-03T08:00:00", "2024-05-02T10:00:00", "2024-05-01T09:00:00"},
		createdAt(tbl.View().Rows))
}

func TestView_AscThenDescIsReversed(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot(sample())

	require.NoError(t, tbl.SetSort(KeyCreatedAt, Asc))
	asc := createdAt(tbl.View().Rows)
	require.NoError(t, tbl.SetSort(KeyCreatedAt, Desc))
	desc := createdAt(tbl.View().Rows)

	require.Len(t, desc, len(asc))
	for i := range asc {
		require.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestView_MissingCreatedAtSortsFirstAscending(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot(append(sample(), Record{Label: "Neutral", Source: "text"}))
	require.NoError(t, tbl.SetSort(KeyCreatedAt, Asc))

	rows := tbl.View().Rows
	require.Equal(t, "", rows[0].CreatedAt)
	require.Equal(t, "Neutral", rows[0].Label)
}

func TestView_NumericColumnsCompareAsNumbers(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot([]Record{
		{Label: "a", Compound: 0.9},
		{Label: "b", Compound: -0.25},
		{Label: "c", Compound: 0.1},
	})
	require.NoError(t, tbl.SetSort(KeyCompound, Asc))
	require.Equal(t, []string{"b", "c", "a"}, labels(tbl.View().Rows))
}

func TestView_TiesKeepSnapshotOrder(t *testing.T) {
	tbl := NewTable()
	tbl.SetSnapshot(sample())
	require.NoError(t, tbl.SetSort(KeyLabel, Asc))

	rows := tbl.View().Rows
	require.Equal(t, []string{"Negative", "Positive", "Positive"}, labels(rows))
	require.Equal(t, "great", rows[1].TextSnippet)
	require.Equal(t, "nice", rows[2].TextSnippet)
}

func TestToggleSort(t *testing.T) {
	tbl := NewTable()

	s, err := tbl.ToggleSort(KeyCreatedAt)
	require.NoError(t, err)
	require.Equal(t, Sort{Key: KeyCreatedAt, Dir: Asc}, s, "active desc column flips to asc")

	s, err = tbl.ToggleSort(KeyCreatedAt)
	require.NoError(t, err)
	require.Equal(t, Desc, s.Dir)

	s, err = tbl.ToggleSort(KeyLabel)
	require.NoError(t, err)
	require.Equal(t, Sort{Key: KeyLabel, Dir: Asc}, s, "new column resets to asc")

	_, err = tbl.ToggleSort("mood")
	require.Error(t, err)
	require.Equal(t, Sort{Key: KeyLabel, Dir: Asc}, tbl.CurrentSort())
}

func TestSetSort_Rejects(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.SetSort("mood", Asc))
	require.Error(t, tbl.SetSort(KeyLabel, "sideways"))
}
