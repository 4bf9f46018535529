package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches all pages from a Notion database, following the cursor
// until the API reports no more results. Pages are requested one after the
// other and returned in API order. Only Filter, Sorts and PageSize are taken
// from req; the cursor is managed here.
func QueryAll(ctx context.Context, c Client, dbID string, req *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	next := &notionapi.DatabaseQueryRequest{}
	if req != nil {
		next.Filter = req.Filter
		next.Sorts = req.Sorts
		next.PageSize = req.PageSize
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, next)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}

		next = &notionapi.DatabaseQueryRequest{
			Filter:      next.Filter,
			Sorts:       next.Sorts,
			PageSize:    next.PageSize,
			StartCursor: resp.NextCursor,
		}
	}

	return all, nil
}

// DateWindow builds a query selecting pages whose date property falls on a
// calendar day in [start, end], both ends inclusive. Dates carrying a time
// of day on the end date are included.
func DateWindow(property string, start, end time.Time) *notionapi.DatabaseQueryRequest {
	from := notionapi.Date(startOfDay(start))
	until := notionapi.Date(startOfDay(end).AddDate(0, 0, 1))
	return &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: property,
			Date: &notionapi.DateFilterCondition{
				OnOrAfter: &from,
				Before:    &until,
			},
		},
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
