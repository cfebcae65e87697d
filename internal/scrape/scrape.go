// Package scrape turns the portal's HTML fragments into domain values.
//
// Every function here is pure: fragment in, values out. Lookups that may
// legitimately miss report ok=false; markup that no longer matches what the
// portal used to send is an error.
package scrape

import (
	"regexp"
	"strings"

	"bordtennis-ranking/internal/constants"
	"bordtennis-ranking/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// ShowPointsParams is the argument list of the "show points" click handler.
type ShowPointsParams struct {
	SeasonID            string
	PlayerID            string
	RankingListID       string
	RankingListPlayerID string
}

func (p ShowPointsParams) Query(callbackContextKey string) domain.RankingQueryParams {
	return domain.RankingQueryParams{
		CallbackContextKey:  callbackContextKey,
		SeasonID:            p.SeasonID,
		PlayerID:            p.PlayerID,
		RankingListID:       p.RankingListID,
		RankingListPlayerID: p.RankingListPlayerID,
		GetPlayerData:       true,
	}
}

// ProfileParams finds the show-points anchor in a profile fragment and
// extracts its handler arguments. ok is false when the player has no ranking
// points for the season.
func ProfileParams(fragment string) (ShowPointsParams, bool, error) {
	doc, err := parse(fragment)
	if err != nil {
		return ShowPointsParams{}, false, err
	}

	anchor := doc.Find("a[title]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("title", "") == constants.ShowPointsTitle
	}).First()
	if anchor.Length() == 0 {
		return ShowPointsParams{}, false, nil
	}

	onclick, exists := anchor.Attr("onclick")
	if !exists {
		return ShowPointsParams{}, false, errors.Wrap(domain.ErrParameterExtraction, "show points anchor has no onclick handler")
	}

	args, err := HandlerArgs(onclick)
	if err != nil {
		return ShowPointsParams{}, false, err
	}
	if len(args) != 4 {
		return ShowPointsParams{}, false, errors.Wrapf(domain.ErrParameterExtraction,
			"expected 4 handler arguments, got %d in %q", len(args), onclick)
	}

	return ShowPointsParams{
		SeasonID:            args[0],
		PlayerID:            args[1],
		RankingListID:       args[2],
		RankingListPlayerID: args[3],
	}, true, nil
}

// HandlerArgs returns the comma separated arguments between the first "(" and
// the following ")" of an inline handler, each trimmed. Empty arguments are
// rejected.
func HandlerArgs(handler string) ([]string, error) {
	open := strings.IndexByte(handler, '(')
	if open < 0 {
		return nil, errors.Wrapf(domain.ErrParameterExtraction, "no argument list in %q", handler)
	}
	closing := strings.IndexByte(handler[open+1:], ')')
	if closing < 0 {
		return nil, errors.Wrapf(domain.ErrParameterExtraction, "unterminated argument list in %q", handler)
	}

	inner := handler[open+1 : open+1+closing]
	parts := strings.Split(inner, ",")
	args := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.Wrapf(domain.ErrParameterExtraction, "argument %d is empty in %q", i, handler)
		}
		args = append(args, p)
	}
	return args, nil
}

// RankingTable flattens the ranking points table. Rows without data cells are
// spacers and are skipped; ok is false when no data rows remain.
func RankingTable(fragment string) ([]domain.RankingRecord, bool, error) {
	doc, err := parse(fragment)
	if err != nil {
		return nil, false, err
	}

	table := doc.Find("table." + constants.RankingTableClass).First()
	if table.Length() == 0 {
		return nil, false, errors.Wrapf(domain.ErrTableNotFound, "no table.%s in fragment", constants.RankingTableClass)
	}

	headers := table.Find("th").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil, false, nil
	}

	var records []domain.RankingRecord
	var rowErr error
	rows.Slice(1, goquery.ToEnd).EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return true
		}
		if cells.Length() > len(headers) {
			rowErr = errors.Wrapf(domain.ErrMalformedResponse,
				"row %d has %d cells but the table has %d headers", i+1, cells.Length(), len(headers))
			return false
		}

		record := domain.NewRankingRecord()
		cells.Each(func(j int, cell *goquery.Selection) {
			record.Set(headers[j], strings.TrimSpace(cell.Text()))
		})
		records = append(records, record)
		return true
	})
	if rowErr != nil {
		return nil, false, rowErr
	}

	if len(records) == 0 {
		return nil, false, nil
	}
	return records, true, nil
}

var callbackContextPattern = regexp.MustCompile(`SR_CallbackContext\s*=\s*'([^']+)'`)

// CallbackContextKey reads the session key the portal publishes in the
// first inline script of its home page.
func CallbackContextKey(page string) (string, bool, error) {
	doc, err := parse(page)
	if err != nil {
		return "", false, err
	}

	script := doc.Find("script").First()
	if script.Length() == 0 {
		return "", false, nil
	}

	m := callbackContextPattern.FindStringSubmatch(script.Text())
	if m == nil {
		return "", false, nil
	}
	return m[1], true, nil
}

func parse(fragment string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse html fragment"), domain.ErrMalformedResponse)
	}
	return doc, nil
}
