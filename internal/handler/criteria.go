package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

// searchCriteria is the filter set shared by the list query string and the search body.
type searchCriteria struct {
	Types            []string         `json:"types"`
	Statuses         []string         `json:"statuses"`
	Sources          []string         `json:"sources"`
	Countries        []string         `json:"countries"`
	Industries       []string         `json:"industries"`
	FundingStages    []string         `json:"funding_stages"`
	CompanySizes     []string         `json:"company_sizes"`
	MinScore         *decimal.Decimal `json:"min_score"`
	MaxScore         *decimal.Decimal `json:"max_score"`
	MinFunding       *decimal.Decimal `json:"min_funding"`
	MaxFunding       *decimal.Decimal `json:"max_funding"`
	DiscoveredAfter  *time.Time       `json:"discovered_after"`
	DiscoveredBefore *time.Time       `json:"discovered_before"`
	Search           string           `json:"search"`
	Tags             []string         `json:"tags"`
	Active           *bool            `json:"active"`
	SortBy           string           `json:"sort_by"`
	Order            string           `json:"order"`
	Limit            int              `json:"limit"`
	Offset           int              `json:"offset"`
}

func criteriaFromQuery(c *gin.Context) searchCriteria {
	return searchCriteria{
		Types:            listQuery(c, "type"),
		Statuses:         listQuery(c, "status"),
		Sources:          listQuery(c, "source"),
		Countries:        listQuery(c, "country"),
		Industries:       listQuery(c, "industry"),
		FundingStages:    listQuery(c, "funding_stage"),
		CompanySizes:     listQuery(c, "company_size"),
		MinScore:         decimalQueryPtr(c, "min_score"),
		MaxScore:         decimalQueryPtr(c, "max_score"),
		MinFunding:       decimalQueryPtr(c, "min_funding"),
		MaxFunding:       decimalQueryPtr(c, "max_funding"),
		DiscoveredAfter:  timeQueryPtr(c, "discovered_after"),
		DiscoveredBefore: timeQueryPtr(c, "discovered_before"),
		Search:           strings.TrimSpace(c.Query("search")),
		Tags:             listQuery(c, "tag"),
		Active:           boolQueryPtr(c, "active"),
		SortBy:           c.Query("sort_by"),
		Order:            c.Query("order"),
		Limit:            intQuery(c, "limit", 20),
		Offset:           intQuery(c, "offset", 0),
	}
}

// params validates every enum value; an unknown value is a client error rather than
// an empty result.
func (s searchCriteria) params() (repository.ListOpportunitiesParams, error) {
	p := repository.ListOpportunitiesParams{
		Limit:            pageLimit(s.Limit),
		Offset:           max(s.Offset, 0),
		MinScore:         s.MinScore,
		MaxScore:         s.MaxScore,
		MinFunding:       s.MinFunding,
		MaxFunding:       s.MaxFunding,
		DiscoveredAfter:  s.DiscoveredAfter,
		DiscoveredBefore: s.DiscoveredBefore,
		Tags:             s.Tags,
		Active:           s.Active,
		OrderBy:          repository.OpportunityOrderColumn(s.SortBy),
		Asc:              boolPtr(strings.EqualFold(strings.TrimSpace(s.Order), "asc")),
	}
	if p.Active == nil {
		p.Active = boolPtr(true)
	}
	if p.OrderBy == "" {
		p.OrderBy = "score"
	}
	if term := strings.TrimSpace(s.Search); term != "" {
		p.Search = &term
	}
	for _, v := range s.Types {
		t, ok := models.ParseOpportunityType(v)
		if !ok {
			return p, fmt.Errorf("unknown type %q", v)
		}
		p.Types = append(p.Types, t)
	}
	for _, v := range s.Statuses {
		st, ok := models.ParseOpportunityStatus(v)
		if !ok {
			return p, fmt.Errorf("unknown status %q", v)
		}
		p.Statuses = append(p.Statuses, st)
	}
	for _, v := range s.Sources {
		src, ok := models.ParseDataSource(v)
		if !ok {
			return p, fmt.Errorf("unknown source %q", v)
		}
		p.Sources = append(p.Sources, src)
	}
	for _, v := range s.Countries {
		ct, ok := models.ParseCountry(v)
		if !ok {
			return p, fmt.Errorf("unknown country %q", v)
		}
		p.Countries = append(p.Countries, ct)
	}
	for _, v := range s.Industries {
		p.Industries = append(p.Industries, models.Industry(enumValue(v)))
	}
	for _, v := range s.FundingStages {
		p.FundingStages = append(p.FundingStages, models.FundingStage(enumValue(v)))
	}
	for _, v := range s.CompanySizes {
		p.CompanySizes = append(p.CompanySizes, models.CompanySize(enumValue(v)))
	}
	return p, nil
}

func enumValue(v string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(v)))
}
