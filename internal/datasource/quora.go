package datasource

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"math"
	"regexp"
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
	quoraDefaultLimit = 20
	quoraConfidence   = 70
)

type quoraThread struct {
	Question string
	Answer   string
	Topic    string
	Views    int
	Answers  int
}

// quoraCorpus stands in for the Q&A site, which has no public API.
var quoraCorpus = []quoraThread{
	{"What are some promising AI startups to watch in 2025?", "I've been following several exciting AI startups. NeuralFlow just raised $15M Series A for their conversational AI platform.", "AI Startups", 1250, 45},
	{"Which machine learning companies are hiring aggressively?", "DeepSense is on a hiring spree after their $30M Series B. They're building ML infrastructure for enterprises.", "Machine Learning Jobs", 980, 38},
	{"What AI companies recently got funded?", "VisionAI just announced $25M funding for computer vision platform. They're disrupting quality control in manufacturing.", "AI Funding", 1560, 62},
	{"How did you validate your SaaS idea before building?", "We launched DataSync last month after validating with 50 beta users. We're now looking for early adopters.", "SaaS Validation", 890, 32},
	{"What B2B SaaS companies are growing fastest?", "CloudOps has grown 400% YoY. They just opened Series B at $40M valuation. Building DevOps automation tools.", "B2B SaaS Growth", 2100, 89},
	{"Which SaaS startups are looking for co-founders?", "MetricsHub founder is looking for a technical co-founder. They have $500K pre-seed and early customers.", "SaaS Co-founders", 670, 25},
	{"What fintech companies are disrupting traditional banking?", "PaymentBridge is revolutionizing cross-border payments. They just announced their seed funding round.", "Fintech Innovation", 2100, 67},
	{"Which crypto startups are actually solving real problems?", "ChainSecure raised $20M for blockchain security infrastructure. Major banks are already piloting their solution.", "Crypto Infrastructure", 1890, 73},
	{"What payment startups are worth watching?", "FastPay just hit 1M users in 6 months. They're making instant payments possible for gig workers. Series A coming.", "Payment Innovation", 1340, 52},
	{"Best practices for launching a developer tool startup?", "We're building CodeAssist, an AI-powered code review tool. Looking for beta testers from the community.", "Developer Tools", 560, 28},
	{"What dev tools companies are getting traction?", "APIHub seeing explosive growth, 10K developers in 2 months. They simplify API integration. Just raised seed.", "Dev Tools Traction", 780, 31},
	{"Which developer productivity startups to watch?", "DevFlow automating CI/CD pipelines with AI. GitHub integration launched last week. 500+ teams already using it.", "Developer Productivity", 920, 41},
	{"How to find technical co-founders for a healthtech startup?", "I'm working on MedTrack, a patient monitoring platform. We have initial funding and looking for a CTO.", "Healthtech Startups", 430, 19},
	{"What digital health startups got FDA approval recently?", "HealthAI's diagnostic tool just got FDA clearance. They're hiring regulatory and engineering talent.", "Digital Health", 1670, 68},
	{"Which telemedicine platforms are expanding?", "TeleDoc raised $50M Series C. Opening new engineering hub in Austin. 100+ positions available.", "Telemedicine Growth", 1230, 49},
	{"What marketplace startups are disrupting traditional retail?", "LocalMart connecting neighborhood stores online. $15M Series A, expanding to 50 cities this year.", "Marketplace Innovation", 980, 37},
	{"Which D2C brands are scaling successfully?", "EcoWear sustainable fashion brand hit $10M ARR in year one. Opening Series A round next month.", "D2C Brands", 1120, 44},
	{"What edtech startups are transforming online learning?", "SkillPath's AI tutor showing 3x better outcomes. Just partnered with major universities. Hiring curriculum designers.", "EdTech Innovation", 890, 35},
	{"Which coding bootcamps are expanding globally?", "CodeCamp raised $30M to expand to Asia. Looking for local partners and instructors in 10 countries.", "Coding Education", 760, 29},
	{"What climate tech startups are getting funded?", "CarbonZero raised $40M for carbon capture tech. Hiring chemical engineers and data scientists.", "Climate Tech", 1450, 58},
	{"Which renewable energy startups to watch?", "SolarGrid making solar accessible for renters. $20M Series A, expanding to 20 states this year.", "Renewable Energy", 1280, 51},
	{"What cybersecurity startups are solving real problems?", "ZeroTrust raised $35M for identity management platform. Fortune 500 clients already onboard.", "Cybersecurity", 1680, 67},
	{"Which privacy-focused startups are gaining traction?", "PrivacyShield helps companies comply with data regulations. Growing 200% QoQ. Series A discussions ongoing.", "Privacy Tech", 920, 36},
	{"What remote work tools are companies adopting?", "WorkSync revolutionizing async collaboration. 10K teams onboarded last quarter. Hiring across all roles.", "Remote Work Tools", 1340, 53},
	{"Which virtual office startups are worth watching?", "VirtualHQ creating immersive remote workspaces. Just closed $25M Series B. Building metaverse for work.", "Virtual Office", 890, 34},
}

// Quora surfaces Q&A threads where founders and insiders talk about funding,
// launches and hiring.
type Quora struct {
	*Base
	cfg     config.QuoraSourceConfig
	threads []quoraThread
}

func NewQuora(cfg config.QuoraSourceConfig, deps Deps) *Quora {
	q := &Quora{cfg: cfg, threads: quoraCorpus}
	q.Base = newBase(models.SourceQuora, cfg.SourceConfig, deps, q.ValidateConfiguration)
	q.setCheck(func(ctx context.Context) health.Status {
		return health.Up("API is responding", q.now())
	})
	return q
}

func (q *Quora) ValidateConfiguration() error { return nil }

func (q *Quora) Discover(ctx context.Context, query Query) []models.Opportunity {
	if query.Limit <= 0 {
		query.Limit = quoraDefaultLimit
	}
	return q.run(ctx, query, q.collect)
}

// collect charges one budget unit per pass, like a single listing request.
func (q *Quora) collect(ctx context.Context, query Query) ([]models.Opportunity, error) {
	if ok, _ := q.Governor.Acquire(ctx, q.source); !ok {
		return nil, ratelimit.ErrBudgetExhausted
	}
	out := make([]models.Opportunity, 0, min(query.Limit, len(q.threads)))
	for _, t := range q.threads {
		if len(out) >= query.Limit {
			break
		}
		if _, ok := classify.AnswerSignals.Lookup(t.Question + " " + t.Answer); !ok {
			continue
		}
		out = append(out, q.toOpportunity(t))
	}
	return out, nil
}

func (q *Quora) toOpportunity(t quoraThread) models.Opportunity {
	text := t.Question + " " + t.Answer
	id := quoraThreadID(t)

	tags := []string{"quora", strings.ToLower(strings.ReplaceAll(t.Topic, " ", "-"))}
	tags = append(tags, classify.AnswerTags.All(text)...)

	engagement := decimal.NewFromFloat(math.Min(100, float64(t.Answers)*2.5)).Round(2)
	o := models.Opportunity{
		ExternalID:          id,
		Title:               t.Question,
		Description:         t.Answer,
		Type:                classify.AnswerTypes.Match(t.Answer),
		URL:                 "https://www.quora.com/simulated/" + id,
		CompanyName:         answerCompanyName(t.Answer),
		Industry:            classify.AnswerIndustries.Match(text),
		CompanySize:         models.SizeStartup,
		FundingStage:        classify.Stages.Match(t.Answer),
		ConfidenceScore:     models.Confidence(quoraConfidence),
		EngagementPotential: &engagement,
		DiscoveredAt:        q.now().UTC(),
		Tags:                tags,
	}
	if amount, ok := classify.FundingAmount(t.Answer); ok {
		o.FundingAmount = &amount
	}
	o.SetMeta(map[string]string{
		"topic":         t.Topic,
		"views":         strconv.Itoa(t.Views),
		"answers":       strconv.Itoa(t.Answers),
		"question_type": "startup_opportunity",
		"source_type":   "qa_platform",
		"signal_score":  strconv.FormatFloat(quoraScore(t), 'f', 2, 64),
	})
	return o
}

// quoraThreadID is stable across passes so repeated discovery updates instead of
// inserting.
func quoraThreadID(t quoraThread) string {
	sum := sha1.Sum([]byte(t.Question + "|" + t.Topic))
	return "quora-" + hex.EncodeToString(sum[:])[:16]
}

// quoraScore weighs reach, discussion depth and topic relevance on a 0..100 scale.
func quoraScore(t quoraThread) float64 {
	score := math.Min(40, float64(t.Views)/1000*20)
	score += math.Min(30, float64(t.Answers)/20*30)
	if strings.Contains(t.Topic, "Startup") || strings.Contains(t.Topic, "AI") || strings.Contains(t.Topic, "Fintech") {
		score += 30
	} else {
		score += 15
	}
	return math.Min(100, score)
}

var (
	buildingCompanyRe = regexp.MustCompile(`(?:[Ww]e're building|I'm working on|launched|building) ([A-Z][a-z][a-zA-Z]+)`)
	capitalizedWordRe = regexp.MustCompile(`\b([A-Z][a-zA-Z]{3,})\b`)
	notAnswerNames    = map[string]struct{}{"Series": {}, "They": {}, "Just": {}, "Looking": {}, "Opening": {}, "Hiring": {}, "Building": {}, "Major": {}}
)

func answerCompanyName(answer string) string {
	if m := buildingCompanyRe.FindStringSubmatch(answer); m != nil {
		return m[1]
	}
	for _, m := range capitalizedWordRe.FindAllStringSubmatch(answer, -1) {
		if _, skip := notAnswerNames[m[1]]; !skip {
			return m[1]
		}
	}
	return "Unknown Startup"
}
