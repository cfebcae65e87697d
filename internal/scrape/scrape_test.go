package scrape

import (
	"testing"

	"bordtennis-ranking/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileFragment(onclick string) string {
	return `<div class="playerprofile">
  <table><tr>
    <td>Ranglistepoint</td>
    <td><a href="#" title="Vis opnåede point" onclick="` + onclick + `">1250</a></td>
  </tr></table>
</div>`
}

func TestHandlerArgs(t *testing.T) {
	testCases := []struct {
		name    string
		handler string
		want    []string
		wantErr bool
	}{
		{name: "plain", handler: "ShowPoints(42024, 328804, 7, 99)", want: []string{"42024", "328804", "7", "99"}},
		{name: "extra spaces", handler: "ShowPoints(42024,  328804 ,7,99)", want: []string{"42024", "328804", "7", "99"}},
		{name: "trailing script", handler: "ShowPoints(1,2,3,4); return false;", want: []string{"1", "2", "3", "4"}},
		{name: "first pair only", handler: "A(1,2) B(3,4,5,6)", want: []string{"1", "2"}},
		{name: "no parens", handler: "ShowPoints", wantErr: true},
		{name: "unterminated", handler: "ShowPoints(1,2", wantErr: true},
		{name: "empty list", handler: "ShowPoints()", wantErr: true},
		{name: "empty arg", handler: "ShowPoints(1,,3,4)", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HandlerArgs(tc.handler)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrParameterExtraction))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProfileParams(t *testing.T) {
	want := ShowPointsParams{
		SeasonID:            "42024",
		PlayerID:            "328804",
		RankingListID:       "7",
		RankingListPlayerID: "99",
	}

	for _, onclick := range []string{
		"ShowPoints(42024, 328804, 7, 99)",
		"ShowPoints(42024,  328804 ,7,99)",
	} {
		got, ok, err := ProfileParams(profileFragment(onclick))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestProfileParamsAbsentAnchor(t *testing.T) {
	fragment := `<div class="playerprofile"><a href="#" title="Vis kampe" onclick="ShowMatches(1,2,3,4)">x</a></div>`

	_, ok, err := ProfileParams(fragment)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ProfileParams("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileParamsRejectsWrongArity(t *testing.T) {
	for _, onclick := range []string{
		"ShowPoints(42024, 328804, 7)",
		"ShowPoints(42024, 328804, 7, 99, 1)",
	} {
		_, ok, err := ProfileParams(profileFragment(onclick))
		require.Error(t, err, onclick)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, domain.ErrParameterExtraction))
	}
}

func TestProfileParamsMissingHandler(t *testing.T) {
	_, _, err := ProfileParams(`<a title="Vis opnåede point" href="#">1250</a>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParameterExtraction))
}

func TestShowPointsParamsQuery(t *testing.T) {
	p := ShowPointsParams{SeasonID: "42024", PlayerID: "328804", RankingListID: "7", RankingListPlayerID: "99"}
	q := p.Query("key")

	assert.Equal(t, domain.RankingQueryParams{
		CallbackContextKey:  "key",
		SeasonID:            "42024",
		PlayerID:            "328804",
		RankingListID:       "7",
		RankingListPlayerID: "99",
		GetPlayerData:       true,
	}, q)
}

const rankingFragment = `<div>
<table class="playerprofilerankingpointstable wide">
  <tr><th> Date </th><th>Tournament</th><th>Points </th></tr>
  <tr><td>01-09-2024</td><td> Danish Open </td><td>12</td></tr>
  <tr class="spacer"></tr>
  <tr><td>15-10-2024</td><td>Region Cup</td><td> 8</td></tr>
</table>
</div>`

func TestRankingTable(t *testing.T) {
	records, ok, err := RankingTable(rankingFragment)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, records, 2)

	header := []string{"Date", "Tournament", "Points"}
	assert.Equal(t, header, records[0].Keys())
	assert.Equal(t, []string{"01-09-2024", "Danish Open", "12"}, records[0].Values())
	assert.Equal(t, header, records[1].Keys())
	assert.Equal(t, []string{"15-10-2024", "Region Cup", "8"}, records[1].Values())
}

func TestRankingTableShortRowKeepsLeadingColumns(t *testing.T) {
	fragment := `<table class="playerprofilerankingpointstable">
  <tr><th>Date</th><th>Tournament</th><th>Points</th></tr>
  <tr><td colspan="2">Total</td></tr>
</table>`

	records, ok, err := RankingTable(fragment)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Date"}, records[0].Keys())
}

func TestRankingTableNoDataRows(t *testing.T) {
	for _, fragment := range []string{
		`<table class="playerprofilerankingpointstable"><tr><th>Date</th></tr><tr></tr></table>`,
		`<table class="playerprofilerankingpointstable"><tr><th>Date</th></tr></table>`,
		`<table class="playerprofilerankingpointstable"></table>`,
	} {
		records, ok, err := RankingTable(fragment)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, records)
	}
}

func TestRankingTableMissing(t *testing.T) {
	_, _, err := RankingTable(`<table class="other"><tr><th>Date</th></tr></table>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTableNotFound))
}

func TestRankingTableTooManyCells(t *testing.T) {
	fragment := `<table class="playerprofilerankingpointstable">
  <tr><th>Date</th></tr>
  <tr><td>01-09-2024</td><td>extra</td></tr>
</table>`

	_, _, err := RankingTable(fragment)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}

func TestCallbackContextKey(t *testing.T) {
	page := `<html><head>
<script type="text/javascript">var SR_CallbackContext = 'ABC123DEF';var x = 1;</script>
<script>var other = 'nope';</script>
</head><body></body></html>`

	key, ok, err := CallbackContextKey(page)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ABC123DEF", key)

	_, ok, err = CallbackContextKey(`<html><head><script>var a = 1;</script></head></html>`)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = CallbackContextKey(`<html><body>no scripts</body></html>`)
	require.NoError(t, err)
	assert.False(t, ok)
}
