package handlers

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mmourani/hscode-scraper/internal/models"
	"github.com/mmourani/hscode-scraper/internal/repository"
)

// CodeRowOutput is one country's tariff line in API responses.
type CodeRowOutput struct {
	ISOCode       string  `json:"iso_code,omitempty" doc:"ISO 3166 alpha-2 code of the schedule's country"`
	Country       string  `json:"country" doc:"Country name"`
	Code          string  `json:"code" doc:"HS code as stored in the country's schedule"`
	Description   string  `json:"description"`
	Duty          *string `json:"duty" doc:"Duty rate text, null when unknown"`
	ExtraInfo     any     `json:"extra_info" doc:"Additional per-line data, null when absent"`
	ExtraInfoKind string  `json:"extra_info_kind,omitempty" doc:"schedule, tariff_line, compliance, provenance, empty or raw"`
}

// CodeDetailOutput is a tariff line together with its requirements.
type CodeDetailOutput struct {
	CodeRowOutput
	Customs []models.CustomsClearanceRequirement `json:"customs_clearance_requirements"`
	CIQ     []models.CIQInspectionRequirement    `json:"ciq_inspection_requirements"`
}

func newCodeRow(c *models.Country, h *models.HSCode) CodeRowOutput {
	out := CodeRowOutput{
		ISOCode:     c.ISOCode,
		Country:     c.Name,
		Code:        h.Code,
		Description: h.Description,
		Duty:        h.Duty,
	}
	if h.ExtraInfo != nil {
		out.ExtraInfo = h.ExtraInfo
		out.ExtraInfoKind = h.ExtraInfo.Kind()
	}
	return out
}

// HSCodeHandler serves per-code lookups.
type HSCodeHandler struct {
	repos *repository.Repositories
}

// NewHSCodeHandler creates an HS code handler.
func NewHSCodeHandler(repos *repository.Repositories) *HSCodeHandler {
	return &HSCodeHandler{repos: repos}
}

// GetHSCodeInput represents a code lookup request.
type GetHSCodeInput struct {
	Code    string `path:"code" doc:"HS code, e.g. 85269200"`
	Country string `query:"country" doc:"Only return the row of this ISO country code, e.g. AE"`
}

// GetHSCodeOutput represents a code lookup response.
type GetHSCodeOutput struct {
	Body struct {
		Code      string             `json:"code"`
		Countries []CodeDetailOutput `json:"countries"`
	}
}

// GetHSCode returns every country's row for a code, with customs and CIQ requirements.
func (h *HSCodeHandler) GetHSCode(ctx context.Context, input *GetHSCodeInput) (*GetHSCodeOutput, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, huma.Error400BadRequest("code is required")
	}

	rows, err := h.repos.HSCode.ListByCode(ctx, code)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to look up HS code: " + err.Error())
	}

	countries := make(map[int64]*models.Country)
	details := make([]CodeDetailOutput, 0, len(rows))
	for _, row := range rows {
		c, ok := countries[row.CountryID]
		if !ok {
			c, err = h.repos.Country.GetByID(ctx, row.CountryID)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to load country: " + err.Error())
			}
			countries[row.CountryID] = c
		}
		if c == nil {
			continue
		}
		if input.Country != "" && !strings.EqualFold(c.ISOCode, input.Country) {
			continue
		}

		customs, err := h.repos.Requirement.ListCustoms(ctx, row.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load customs requirements: " + err.Error())
		}
		ciq, err := h.repos.Requirement.ListCIQ(ctx, row.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load CIQ requirements: " + err.Error())
		}
		details = append(details, CodeDetailOutput{
			CodeRowOutput: newCodeRow(c, row),
			Customs:       customs,
			CIQ:           ciq,
		})
	}

	if len(details) == 0 {
		if input.Country != "" {
			return nil, huma.Error404NotFound("HS code " + code + " not found for " + strings.ToUpper(input.Country))
		}
		return nil, huma.Error404NotFound("HS code " + code + " not found")
	}

	out := &GetHSCodeOutput{}
	out.Body.Code = code
	out.Body.Countries = details
	return out, nil
}
