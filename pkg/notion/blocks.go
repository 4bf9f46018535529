package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

var (
	ErrNoChildBlocks    = eris.New("page has no child blocks")
	ErrNotChildDatabase = eris.New("first child block is not an inline database")
)

// FirstChildDatabase returns the ID of the inline database that must be the
// first child block of pageID. Recipe pages keep their ingredient table there.
func FirstChildDatabase(ctx context.Context, c Client, pageID string) (string, error) {
	resp, err := c.GetBlockChildren(ctx, pageID, &notionapi.Pagination{PageSize: 1})
	if err != nil {
		return "", eris.Wrap(err, "notion: first child database")
	}
	if len(resp.Results) == 0 || resp.Results[0] == nil {
		return "", eris.Wrapf(ErrNoChildBlocks, "page %s", pageID)
	}

	first := resp.Results[0]
	if first.GetType() != notionapi.BlockTypeChildDatabase {
		return "", eris.Wrapf(ErrNotChildDatabase, "page %s starts with %s", pageID, first.GetType())
	}
	return string(first.GetID()), nil
}
