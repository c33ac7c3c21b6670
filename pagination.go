package firedoc

import "context"

// FetchAllPages drives a chunked read to completion. fetch receives the
// continuation token ("" for the first call) and returns one chunk of items
// plus the next token; FetchAllPages appends chunks in order until the next
// token comes back empty.
//
// Fetches are strictly sequential: continuation tokens are only valid
// relative to the immediately preceding request.
func FetchAllPages[T any](ctx context.Context, fetch func(ctx context.Context, pageToken string) ([]T, string, error)) ([]T, error) {
	var out []T
	token := ""
	for {
		items, next, err := fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if next == "" {
			return out, nil
		}
		token = next
	}
}
