package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/productmap"
)

// ProductMapSource provides the current global product map.
type ProductMapSource interface {
	ProductMap(ctx context.Context) (models.ProductMap, error)
}

// ProductHandler serves product map queries.
type ProductHandler struct {
	source ProductMapSource
}

// NewProductHandler creates a product handler.
func NewProductHandler(source ProductMapSource) *ProductHandler {
	return &ProductHandler{source: source}
}

// ListProductsInput represents a product map query. Filters apply in the
// order code, keyword, type; the first one given is used.
type ListProductsInput struct {
	Code    string `query:"code" doc:"Exact HS code key"`
	Keyword string `query:"keyword" doc:"Keyword listed on the entry, e.g. drone"`
	Type    string `query:"type" doc:"Entry type, e.g. radio"`
	Limit   int    `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum number of entries"`
}

// ProductOutput is one product map entry.
type ProductOutput struct {
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Keywords []string          `json:"keywords"`
	HSCodes  map[string]string `json:"hs_codes" doc:"Code per ISO country code"`
}

// ListProductsOutput represents a product map query response.
type ListProductsOutput struct {
	Body struct {
		Products []ProductOutput `json:"products"`
		Total    int             `json:"total" doc:"Matches before the limit was applied"`
	}
}

// ListProducts filters the product map.
func (h *ProductHandler) ListProducts(ctx context.Context, input *ListProductsInput) (*ListProductsOutput, error) {
	m, err := h.source.ProductMap(ctx)
	if errors.Is(err, productmap.ErrNoProductMap) {
		return nil, huma.Error503ServiceUnavailable("product map has not been generated")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load product map: " + err.Error())
	}

	var matches []productmap.Match
	switch {
	case input.Code != "":
		if match, ok := productmap.ByCode(m, strings.TrimSpace(input.Code)); ok {
			matches = []productmap.Match{match}
		}
	case input.Keyword != "":
		matches = productmap.ByKeyword(m, strings.ToLower(strings.TrimSpace(input.Keyword)))
	case input.Type != "":
		matches = productmap.ByType(m, strings.ToLower(strings.TrimSpace(input.Type)))
	default:
		matches = productmap.Filter(m, func(*models.ProductMapEntry) bool { return true })
	}

	out := &ListProductsOutput{}
	out.Body.Total = len(matches)
	if input.Limit > 0 && len(matches) > input.Limit {
		matches = matches[:input.Limit]
	}
	out.Body.Products = make([]ProductOutput, 0, len(matches))
	for _, match := range matches {
		out.Body.Products = append(out.Body.Products, ProductOutput{
			Code:     match.Code,
			Name:     match.Entry.Name,
			Type:     match.Entry.Type,
			Keywords: match.Entry.Keywords,
			HSCodes:  match.Entry.HSCodes,
		})
	}
	return out, nil
}
