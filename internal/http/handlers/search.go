package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mmourani/hscode-scraper/internal/lookup"
)

// SearchHandler serves scored description search.
type SearchHandler struct {
	searcher *lookup.Searcher
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(searcher *lookup.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SearchInput represents a search request.
type SearchInput struct {
	Query   string `query:"q" required:"true" doc:"Words to match against code descriptions"`
	Country string `query:"country" doc:"ISO country code to search; all countries when empty"`
	Limit   int    `query:"limit" default:"10" minimum:"1" maximum:"100" doc:"Maximum number of results"`
}

// SearchHitOutput is one ranked match.
type SearchHitOutput struct {
	ISOCode       string  `json:"iso_code"`
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	Duty          *string `json:"duty"`
	ExtraInfo     any     `json:"extra_info"`
	ExtraInfoKind string  `json:"extra_info_kind,omitempty"`
	Score         int     `json:"score" doc:"3 exact description, 2 description contains the query, 1 a query word matches"`
}

// SearchOutput represents a search response.
type SearchOutput struct {
	Body struct {
		Query   string            `json:"query"`
		Country string            `json:"country,omitempty"`
		Results []SearchHitOutput `json:"results"`
	}
}

// Search ranks HS code descriptions against the query.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = lookup.DefaultLimit
	}

	hits, err := h.searcher.Search(ctx, input.Country, input.Query, limit)
	if errors.Is(err, lookup.ErrEmptyQuery) {
		return nil, huma.Error400BadRequest("q must not be blank")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("search failed: " + err.Error())
	}

	out := &SearchOutput{}
	out.Body.Query = input.Query
	out.Body.Country = input.Country
	out.Body.Results = make([]SearchHitOutput, 0, len(hits))
	for _, hit := range hits {
		r := SearchHitOutput{
			ISOCode:     hit.ISOCode,
			Code:        hit.Row.Code,
			Description: hit.Row.Description,
			Duty:        hit.Row.Duty,
			Score:       hit.Score,
		}
		if hit.Row.ExtraInfo != nil {
			r.ExtraInfo = hit.Row.ExtraInfo
			r.ExtraInfoKind = hit.Row.ExtraInfo.Kind()
		}
		out.Body.Results = append(out.Body.Results, r)
	}
	return out, nil
}
