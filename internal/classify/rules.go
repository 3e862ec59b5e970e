package classify

import "github.com/psehrawa/opportunities-finder/internal/models"

// Industries classifies free-form posts and articles.
var Industries = &Set[models.Industry]{
	Name: "industries",
	Rules: []Rule[models.Industry]{
		{Value: models.IndustryFintech, Keywords: []string{"fintech", "finance", "payment"}},
		{Value: models.IndustryAI, Keywords: []string{"machine learning", "artificial intelligence"}, Patterns: []string{`\bai\b`, `\bllm`}},
		{Value: models.IndustryEnterpriseSoftware, Keywords: []string{"saas", "software"}},
		{Value: models.IndustryHealthtech, Keywords: []string{"health", "medical"}},
		{Value: models.IndustryEdtech, Keywords: []string{"education", "edtech"}},
		{Value: models.IndustryBlockchain, Keywords: []string{"blockchain", "crypto"}},
		{Value: models.IndustryCybersecurity, Keywords: []string{"cybersecurity", "security"}},
		{Value: models.IndustryEcommerce, Keywords: []string{"ecommerce", "e-commerce", "marketplace"}},
	},
	Fallback: models.IndustryEnterpriseSoftware,
}

// InsiderIndustries classifies workplace insider posts once known companies are ruled out.
var InsiderIndustries = &Set[models.Industry]{
	Name: "insider_industries",
	Rules: []Rule[models.Industry]{
		{Value: models.IndustryAI, Keywords: []string{"machine learning"}, Patterns: []string{`\bai\b`, `\bml\b`}},
		{Value: models.IndustryFintech, Keywords: []string{"fintech", "payment", "banking"}},
		{Value: models.IndustryHealthtech, Keywords: []string{"health", "medical", "diagnostic"}},
		{Value: models.IndustryCloudComputing, Keywords: []string{"cloud", "infrastructure"}},
		{Value: models.IndustryBlockchain, Keywords: []string{"crypto", "blockchain"}},
		{Value: models.IndustryDataAnalytics, Keywords: []string{"data", "analytics"}},
		{Value: models.IndustryDevOps, Keywords: []string{"devtool", "developer"}},
	},
	Fallback: models.IndustryEnterpriseSoftware,
}

// KnownCompanies maps well-known company names to their industry.
var KnownCompanies = map[string]models.Industry{
	"stripe":     models.IndustryFintech,
	"openai":     models.IndustryAI,
	"databricks": models.IndustryDataAnalytics,
	"snowflake":  models.IndustryCloudComputing,
	"figma":      models.IndustryEnterpriseSoftware,
	"canva":      models.IndustryConsumerSoftware,
	"discord":    models.IndustryConsumerSoftware,
	"notion":     models.IndustryEnterpriseSoftware,
}

// RepositoryIndustries classifies source repositories by description and topics.
// Language-based fallbacks are applied by the caller.
var RepositoryIndustries = &Set[models.Industry]{
	Name: "repository_industries",
	Rules: []Rule[models.Industry]{
		{Value: models.IndustryFintech, Keywords: []string{"fintech", "finance", "payment", "banking"}},
		{Value: models.IndustryAI, Keywords: []string{"machine learning", "machine-learning", "artificial intelligence"}, Patterns: []string{`\bai\b`, `\bml\b`, `\bllm`}},
		{Value: models.IndustryDevOps, Keywords: []string{"devops", "deployment", "ci/cd", "docker"}},
	},
}

// Types classifies posts and articles into opportunity types. Callers supply the fallback.
var Types = &Set[models.OpportunityType]{
	Name: "types",
	Rules: []Rule[models.OpportunityType]{
		{Value: models.TypeStartupFunding, Keywords: []string{"raised", "raises", "funding", "series", "seed"}},
		{Value: models.TypeProductLaunch, Keywords: []string{"launch", "beta", "mvp", "released"}},
		{Value: models.TypeJobPostingSignal, Keywords: []string{"hiring", "jobs", "positions"}},
		{Value: models.TypePartnership, Keywords: []string{"partner", "collaboration"}},
		{Value: models.TypeAcquisitionTarget, Keywords: []string{"acquire", "acquisition"}},
	},
}

// InsiderTypes classifies insider post content.
var InsiderTypes = &Set[models.OpportunityType]{
	Name: "insider_types",
	Rules: []Rule[models.OpportunityType]{
		{Value: models.TypeMarketExpansion, Patterns: []string{`\bipo\b`}},
		{Value: models.TypeAcquisitionTarget, Keywords: []string{"acquired", "acquisition"}},
		{Value: models.TypeStartupFunding, Keywords: []string{"raised", "funding", "series"}},
		{Value: models.TypeJobPostingSignal, Keywords: []string{"hiring", "headcount", "recruiting"}},
		{Value: models.TypeProductLaunch, Keywords: []string{"launch", "new product"}},
		{Value: models.TypeMarketExpansion, Keywords: []string{"revenue", "growth"}},
	},
	Fallback: models.TypeTechnologyTrend,
}

var InsiderSizes = &Set[models.CompanySize]{
	Name: "insider_sizes",
	Rules: []Rule[models.CompanySize]{
		{Value: models.SizeLarge, Keywords: []string{"unicorn"}, Patterns: []string{`\bipo\b`}},
		{Value: models.SizeStartup, Keywords: []string{"#15", "founding", "stealth"}},
		{Value: models.SizeMedium, Keywords: []string{"series c", "series d"}},
		{Value: models.SizeSmall, Keywords: []string{"series a", "series b"}},
	},
	Fallback: models.SizeSmall,
}

var Stages = &Set[models.FundingStage]{
	Name: "stages",
	Rules: []Rule[models.FundingStage]{
		{Value: models.StageSeed, Keywords: []string{"seed"}},
		{Value: models.StageSeriesA, Keywords: []string{"series a"}},
		{Value: models.StageSeriesB, Keywords: []string{"series b"}},
		{Value: models.StageSeriesC, Keywords: []string{"series c"}},
		{Value: models.StageSeriesDPlus, Keywords: []string{"series d", "series e"}},
		{Value: models.StageIPO, Patterns: []string{`\bipo\b`}},
		{Value: models.StageAcquisition, Keywords: []string{"acquired", "acquisition"}},
	},
	Fallback: models.StageUnknown,
}

// TechTags picks technology and stage tags out of post text.
var TechTags = &Set[string]{
	Name: "tech_tags",
	Rules: []Rule[string]{
		{Value: "javascript", Keywords: []string{"javascript", "react", "node"}},
		{Value: "python", Keywords: []string{"python"}},
		{Value: "java", Patterns: []string{`\bjava\b`}},
		{Value: "golang", Keywords: []string{"golang", " go "}},
		{Value: "rust", Keywords: []string{"rust"}},
		{Value: "seed-stage", Keywords: []string{"seed"}},
		{Value: "series-a", Keywords: []string{"series a"}},
		{Value: "series-b", Keywords: []string{"series b"}},
		{Value: "ipo", Patterns: []string{`\bipo\b`}},
	},
}

// InsiderTags picks growth, technology and market tags out of insider post content.
var InsiderTags = &Set[string]{
	Name: "insider_tags",
	Rules: []Rule[string]{
		{Value: "hypergrowth", Keywords: []string{"hypergrowth", "300%"}},
		{Value: "unicorn", Keywords: []string{"unicorn"}},
		{Value: "retention-bonus", Keywords: []string{"retention"}},
		{Value: "infrastructure", Keywords: []string{"infrastructure"}},
		{Value: "machine-learning", Keywords: []string{"ml ", "machine learning"}},
		{Value: "security", Keywords: []string{"security"}},
		{Value: "b2b", Keywords: []string{"b2b"}},
		{Value: "enterprise", Keywords: []string{"enterprise"}},
		{Value: "institutional", Keywords: []string{"institutional"}},
	},
}

// OpportunityKeywords flag forum posts worth keeping.
var OpportunityKeywords = []string{
	"funding", "raised", "series", "seed", "investment", "venture capital",
	"angel investor", "pre-seed", "valuation", "unicorn", "cap table", "term sheet",
	"due diligence", "launch", "launching", "beta", "mvp", "pre-launch", "early access",
	"product hunt", "show hn", "feedback", "beta testers", "pilot", "soft launch",
	"going live", "release", "v1", "alpha", "hiring", "scaling", "growth", "expanding",
	"opening office", "doubling team", "recruitment", "talent", "headcount", "remote team",
	"10x", "hockey stick", "traction", "pmf", "product market fit", "startup", "founded",
	"building", "bootstrapped", "profitable", "revenue", "arr", "mrr", "burn rate", "runway",
	"break even", "acquisition", "acquired", "ipo", "exit", "merger", "looking for",
	"co-founder", "partner", "advisor", "mentor", "accelerator", "incubator", "yc",
	"techstars", "500 startups", "disrupting", "revolutionizing", "game changer",
	"breakthrough", "first of its kind", "novel approach", "patented", "proprietary",
}

// InsiderSignals are the phrases that make an insider post an opportunity.
var InsiderSignals = []string{
	"hiring like crazy", "massive expansion", "new funding", "ipo prep", "acquired",
	"new product launch", "scaling team", "opening new office", "stock options",
	"recruiting heavily", "headcount doubling", "new round", "unicorn status",
	"revenue milestone", "profitability", "new market",
}

// AnswerIndustries classifies Q&A threads. Order matters: a thread about AI in
// payments is an AI thread.
var AnswerIndustries = &Set[models.Industry]{
	Name: "answer_industries",
	Rules: []Rule[models.Industry]{
		{Value: models.IndustryAI, Keywords: []string{"artificial intelligence", "machine learning", "neural"}, Patterns: []string{`\bai\b`}},
		{Value: models.IndustryFintech, Keywords: []string{"fintech", "payment", "banking", "finance"}},
		{Value: models.IndustryHealthtech, Keywords: []string{"health", "medical", "patient"}},
		{Value: models.IndustryEdtech, Keywords: []string{"education", "learning", "edtech"}},
		{Value: models.IndustryDevOps, Keywords: []string{"developer", "code", "devops"}},
		{Value: models.IndustryEnterpriseSoftware, Keywords: []string{"saas", "software"}},
		{Value: models.IndustryCybersecurity, Keywords: []string{"cyber", "security"}},
		{Value: models.IndustryDataAnalytics, Keywords: []string{"data", "analytics"}},
	},
	Fallback: models.IndustryEnterpriseSoftware,
}

// AnswerTypes classifies the answer body of a Q&A thread.
var AnswerTypes = &Set[models.OpportunityType]{
	Name: "answer_types",
	Rules: []Rule[models.OpportunityType]{
		{Value: models.TypeStartupFunding, Keywords: []string{"raised", "funding", "series", "seed"}},
		{Value: models.TypeProductLaunch, Keywords: []string{"launch", "beta", "early access"}},
		{Value: models.TypeJobPostingSignal, Keywords: []string{"co-founder", "hiring", "looking for"}},
		{Value: models.TypePartnership, Keywords: []string{"partner", "collaboration"}},
	},
	Fallback: models.TypeTechnologyTrend,
}

// AnswerTags picks technology, stage and business model tags out of Q&A threads.
var AnswerTags = &Set[string]{
	Name: "answer_tags",
	Rules: []Rule[string]{
		{Value: "ai", Keywords: []string{"artificial intelligence"}, Patterns: []string{`\bai\b`}},
		{Value: "machine-learning", Keywords: []string{"machine learning"}},
		{Value: "blockchain", Keywords: []string{"blockchain"}},
		{Value: "iot", Patterns: []string{`\biot\b`}},
		{Value: "saas", Keywords: []string{"saas"}},
		{Value: "mvp", Patterns: []string{`\bmvp\b`}},
		{Value: "beta", Keywords: []string{"beta"}},
		{Value: "seed-stage", Keywords: []string{"seed"}},
		{Value: "series-a", Keywords: []string{"series a"}},
		{Value: "b2b", Keywords: []string{"b2b"}},
		{Value: "b2c", Keywords: []string{"b2c"}},
		{Value: "marketplace", Keywords: []string{"marketplace"}},
	},
}

// AnswerSignals are the patterns that make a Q&A thread an opportunity.
var AnswerSignals = &Set[string]{
	Name: "answer_signals",
	Rules: []Rule[string]{
		{Value: "funding", Keywords: []string{"just raised", "seed round", "funding"}, Patterns: []string{`series [a-z]\b`}},
		{Value: "launch", Keywords: []string{"announcing", "we built", "launching", "beta testers", "early access", "mvp"}},
		{Value: "hiring", Keywords: []string{"hiring", "looking for"}},
		{Value: "exit", Keywords: []string{"acquired"}},
		{Value: "validation", Keywords: []string{"feedback on", "validate"}},
	},
}
