package datasource

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/psehrawa/opportunities-finder/internal/classify"
	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/ratelimit"
)

const (
	blindDefaultLimit = 15
	blindMinScore     = 40
	blindConfidence   = 80
)

type blindPost struct {
	Title      string
	Content    string
	AuthorRole string
	Likes      int
	Comments   int
	Tags       []string
}

// blindCorpus stands in for the workplace forum, which has no public API.
var blindCorpus = []blindPost{
	{
		Title:      "Stripe hiring like crazy for infra roles",
		Content:    "Our org is recruiting heavily, headcount doubling this year after the new funding round. Series C closed at $600M.",
		AuthorRole: "Senior Engineering Manager",
		Likes:      340, Comments: 89,
		Tags: []string{"fintech", "series-c"},
	},
	{
		Title:      "OpenAI ipo prep rumors internally",
		Content:    "Leadership mentioned ipo prep timeline and stock options refresh for everyone. Unicorn status is old news, revenue milestone hit last quarter.",
		AuthorRole: "Director of Engineering",
		Likes:      512, Comments: 140,
		Tags: []string{"ai", "ipo"},
	},
	{
		Title:      "Databricks opening new office in Austin",
		Content:    "We are opening new office in Austin and scaling team across the data platform. Massive expansion planned for next year.",
		AuthorRole: "Senior Software Engineer",
		Likes:      150, Comments: 45,
		Tags: []string{"data", "expansion"},
	},
	{
		Title:      "Just joined Lumen as employee #15",
		Content:    "Stealth startup, raised $12M seed, new product launch in Q3 for healthcare diagnostics.",
		AuthorRole: "Staff Engineer",
		Likes:      80, Comments: 30,
		Tags: []string{"healthtech", "seed"},
	},
	{
		Title:      "Acquired by big tech, what happens to RSUs?",
		Content:    "Our company Vantage just got acquired. Retention bonus offered but vesting is unclear.",
		AuthorRole: "Product Manager",
		Likes:      60, Comments: 70,
		Tags: []string{"acquisition"},
	},
	{
		Title:      "Is leetcode still worth it?",
		Content:    "Grinding problems for interviews, any advice?",
		AuthorRole: "Software Engineer",
		Likes:      200, Comments: 300,
		Tags: []string{"career"},
	},
	{
		Title:      "Quiet team, new market exploration",
		Content:    "Manager mentioned a new market but nothing concrete yet.",
		AuthorRole: "Engineer",
		Likes:      4, Comments: 1,
	},
	{
		Title:      "Figma recruiting heavily for AI team",
		Content:    "Figma is recruiting heavily for ML roles, new round closed at $1.2B valuation. Series D.",
		AuthorRole: "VP Engineering",
		Likes:      275, Comments: 66,
		Tags: []string{"design", "series-d"},
	},
	{
		Title:      "Canva profitability and revenue milestone",
		Content:    "Canva hit profitability this year and a revenue milestone, hiring like crazy in Sydney.",
		AuthorRole: "Senior Designer",
		Likes:      190, Comments: 52,
		Tags: []string{"unicorn"},
	},
	{
		Title:      "Series B fintech headcount doubling",
		Content:    "Paybright raised $45M series B and headcount doubling by Q4. Hiring backend engineers.",
		AuthorRole: "Engineering Manager",
		Likes:      95, Comments: 40,
		Tags: []string{"fintech", "series-b"},
	},
}

// Blind surfaces insider workplace posts that hint at growth, funding or exits.
type Blind struct {
	*Base
	cfg   config.BlindSourceConfig
	posts []blindPost
}

func NewBlind(cfg config.BlindSourceConfig, deps Deps) *Blind {
	b := &Blind{cfg: cfg, posts: blindCorpus}
	b.Base = newBase(models.SourceBlind, cfg.SourceConfig, deps, b.ValidateConfiguration)
	b.setCheck(func(ctx context.Context) health.Status {
		return health.Up("API is responding", b.now())
	})
	return b
}

func (b *Blind) ValidateConfiguration() error { return nil }

func (b *Blind) Discover(ctx context.Context, q Query) []models.Opportunity {
	if q.Limit <= 0 {
		q.Limit = blindDefaultLimit
	}
	return b.run(ctx, q, b.collect)
}

func (b *Blind) collect(ctx context.Context, q Query) ([]models.Opportunity, error) {
	if ok, _ := b.Governor.Acquire(ctx, b.source); !ok {
		return nil, ratelimit.ErrBudgetExhausted
	}
	out := make([]models.Opportunity, 0, len(b.posts))
	for _, p := range b.posts {
		if len(out) >= q.Limit {
			break
		}
		text := p.Title + " " + p.Content
		signals := classify.CountAny(text, classify.InsiderSignals)
		score := blindScore(p, signals)
		if signals == 0 || score <= blindMinScore {
			continue
		}
		out = append(out, b.toOpportunity(p, score))
	}
	return out, nil
}

func (b *Blind) toOpportunity(p blindPost, score float64) models.Opportunity {
	text := p.Title + " " + p.Content
	sum := sha1.Sum([]byte(p.Title + "|" + p.Content))
	id := hex.EncodeToString(sum[:])[:16]

	tags := []string{"blind", "insider-info"}
	tags = append(tags, p.Tags...)
	tags = append(tags, classify.InsiderTags.All(text)...)

	engagement := decimal.NewFromFloat(blindEngagement(p)).Round(2)
	o := models.Opportunity{
		ExternalID:          "blind-" + id,
		Title:               p.Title,
		Description:         p.Content,
		Type:                classify.InsiderTypes.Match(text),
		URL:                 "https://www.teamblind.com/post/" + id,
		CompanyName:         blindCompanyName(p),
		Industry:            blindIndustry(p),
		CompanySize:         classify.InsiderSizes.Match(text),
		FundingStage:        classify.Stages.Match(text),
		ConfidenceScore:     models.Confidence(blindConfidence),
		EngagementPotential: &engagement,
		DiscoveredAt:        b.now().UTC(),
		Tags:                tags,
	}
	if amount, ok := classify.FundingAmount(text); ok {
		o.FundingAmount = &amount
	}
	o.SetMeta(map[string]string{
		"author_role":         p.AuthorRole,
		"likes":               strconv.Itoa(p.Likes),
		"comments":            strconv.Itoa(p.Comments),
		"post_type":           "insider_info",
		"verification_status": "verified",
		"tags":                strings.Join(p.Tags, ","),
		"signal_score":        strconv.FormatFloat(score, 'f', 2, 64),
	})
	return o
}

// blindScore weighs engagement, signal phrases, author seniority and post tags.
func blindScore(p blindPost, signals int) float64 {
	score := math.Min(40, float64(p.Likes)/100*20+float64(p.Comments)/50*20)
	score += math.Min(30, float64(signals)*10)

	role := strings.ToLower(p.AuthorRole)
	switch {
	case strings.Contains(role, "vp") || strings.Contains(role, "director"):
		score += 20
	case strings.Contains(role, "senior") || strings.Contains(role, "manager"):
		score += 15
	default:
		score += 10
	}

	tagBonus := 5.0
	for _, t := range p.Tags {
		switch strings.ToLower(t) {
		case "unicorn", "ipo":
			tagBonus = math.Max(tagBonus, 10)
		case "series-b", "series-c":
			tagBonus = math.Max(tagBonus, 8)
		}
	}
	return math.Min(100, score+tagBonus)
}

func blindEngagement(p blindPost) float64 {
	comments := math.Max(1, float64(p.Comments))
	return math.Min(100, float64(p.Likes)/comments*30+float64(p.Comments)/10+float64(p.Likes)/100*20)
}

func blindIndustry(p blindPost) models.Industry {
	lower := strings.ToLower(p.Title + " " + p.Content)
	for _, name := range knownCompanyNames {
		if strings.Contains(lower, name) {
			return classify.KnownCompanies[name]
		}
	}
	return classify.InsiderIndustries.Match(lower)
}

var (
	knownCompanyNames = func() []string {
		names := make([]string, 0, len(classify.KnownCompanies))
		for name := range classify.KnownCompanies {
			names = append(names, name)
		}
		slices.Sort(names)
		return names
	}()
	joinedCompanyRe = regexp.MustCompile(`\b(?:joined|at|from) ([A-Z][a-zA-Z]+)`)
	actionCompanyRe = regexp.MustCompile(`\b([A-Z][a-zA-Z]+) (?:just|revenue|raised|hit|getting|is|closed)`)
	notCompanyNames = map[string]struct{}{"Series": {}, "IPO": {}, "FDA": {}, "ARR": {}, "YoY": {}, "Our": {}, "We": {}}
)

func blindCompanyName(p blindPost) string {
	lowerTitle := strings.ToLower(p.Title)
	for _, name := range knownCompanyNames {
		if i := strings.Index(lowerTitle, name); i >= 0 && i+len(name) <= len(p.Title) {
			return p.Title[i : i+len(name)]
		}
	}
	text := p.Title + " " + p.Content
	for _, re := range []*regexp.Regexp{joinedCompanyRe, actionCompanyRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if _, skip := notCompanyNames[m[1]]; !skip {
				return m[1]
			}
		}
	}
	return "Stealth Startup"
}
