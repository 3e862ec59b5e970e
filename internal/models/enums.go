package models

import (
	"math"
	"strings"
)

// DataSource identifies the upstream channel an opportunity was discovered from.
type DataSource string

const (
	SourceGitHub          DataSource = "GITHUB"
	SourceHackerNews      DataSource = "HACKER_NEWS"
	SourceReddit          DataSource = "REDDIT"
	SourceProductHunt     DataSource = "PRODUCT_HUNT"
	SourceSECEdgar        DataSource = "SEC_EDGAR"
	SourceUSPTOPatent     DataSource = "USPTO_PATENT"
	SourceCrunchbaseBasic DataSource = "CRUNCHBASE_BASIC"
	SourceGoogleTrends    DataSource = "GOOGLE_TRENDS"
	SourceNewsAPI         DataSource = "NEWS_API"
	SourceTwitterAPI      DataSource = "TWITTER_API"
	SourceLinkedInAPI     DataSource = "LINKEDIN_API"
	SourceYouTubeAPI      DataSource = "YOUTUBE_API"
	SourceCrunchbasePro   DataSource = "CRUNCHBASE_PRO"
	SourcePitchbook       DataSource = "PITCHBOOK"
	SourceOwler           DataSource = "OWLER"
	SourceAngelList       DataSource = "ANGELLIST"
	SourceBlind           DataSource = "BLIND"
	SourceQuora           DataSource = "QUORA"
)

type dataSourceInfo struct {
	displayName string
	free        bool
	dailyLimit  int
}

var dataSources = []DataSource{
	SourceGitHub, SourceHackerNews, SourceReddit, SourceProductHunt, SourceSECEdgar,
	SourceUSPTOPatent, SourceCrunchbaseBasic, SourceGoogleTrends, SourceNewsAPI,
	SourceTwitterAPI, SourceLinkedInAPI, SourceYouTubeAPI, SourceCrunchbasePro,
	SourcePitchbook, SourceOwler, SourceAngelList, SourceBlind, SourceQuora,
}

var dataSourceInfos = map[DataSource]dataSourceInfo{
	SourceGitHub:          {"GitHub API", true, 5000},
	SourceHackerNews:      {"Hacker News API", true, 0},
	SourceReddit:          {"Reddit API", false, 100},
	SourceProductHunt:     {"Product Hunt API", false, 100},
	SourceSECEdgar:        {"SEC EDGAR API", true, 1000},
	SourceUSPTOPatent:     {"USPTO Patent API", true, 1000},
	SourceCrunchbaseBasic: {"Crunchbase Basic", false, 200},
	SourceGoogleTrends:    {"Google Trends API", false, 1000},
	SourceNewsAPI:         {"News API", false, 1000},
	SourceTwitterAPI:      {"Twitter/X API", false, 300},
	SourceLinkedInAPI:     {"LinkedIn API", false, 500},
	SourceYouTubeAPI:      {"YouTube API", false, 10000},
	SourceCrunchbasePro:   {"Crunchbase Pro", false, 1000},
	SourcePitchbook:       {"PitchBook API", false, 500},
	SourceOwler:           {"Owler API", false, 1000},
	SourceAngelList:       {"AngelList API", false, 500},
	SourceBlind:           {"Blind API", true, 1000},
	SourceQuora:           {"Quora API", true, 1000},
}

func AllDataSources() []DataSource {
	out := make([]DataSource, len(dataSources))
	copy(out, dataSources)
	return out
}

func (d DataSource) Valid() bool {
	_, ok := dataSourceInfos[d]
	return ok
}

func (d DataSource) DisplayName() string {
	if info, ok := dataSourceInfos[d]; ok {
		return info.displayName
	}
	return string(d)
}

func (d DataSource) IsFree() bool {
	return dataSourceInfos[d].free
}

// DailyLimit is the vendor-published daily request allowance; 0 means unmetered.
func (d DataSource) DailyLimit() int {
	return dataSourceInfos[d].dailyLimit
}

// ParseDataSource matches a source name case-insensitively; "hacker-news" and
// "hacker news" resolve to HACKER_NEWS.
func ParseDataSource(name string) (DataSource, bool) {
	key := normalizeEnumKey(name)
	if key == "" {
		return "", false
	}
	d := DataSource(key)
	if !d.Valid() {
		return "", false
	}
	return d, true
}

type OpportunityType string

const (
	TypeStartupFunding         OpportunityType = "STARTUP_FUNDING"
	TypeProductLaunch          OpportunityType = "PRODUCT_LAUNCH"
	TypeTechnologyTrend        OpportunityType = "TECHNOLOGY_TREND"
	TypeMarketExpansion        OpportunityType = "MARKET_EXPANSION"
	TypePartnership            OpportunityType = "PARTNERSHIP"
	TypeAcquisitionTarget      OpportunityType = "ACQUISITION_TARGET"
	TypeJobPostingSignal       OpportunityType = "JOB_POSTING_SIGNAL"
	TypePatentFiling           OpportunityType = "PATENT_FILING"
	TypeConferenceAnnouncement OpportunityType = "CONFERENCE_ANNOUNCEMENT"
	TypeRegulatoryChange       OpportunityType = "REGULATORY_CHANGE"
	TypeCompetitorAnalysis     OpportunityType = "COMPETITOR_ANALYSIS"
	TypeTechnologyAdoption     OpportunityType = "TECHNOLOGY_ADOPTION"
)

var opportunityTypes = map[OpportunityType]struct{}{
	TypeStartupFunding: {}, TypeProductLaunch: {}, TypeTechnologyTrend: {}, TypeMarketExpansion: {},
	TypePartnership: {}, TypeAcquisitionTarget: {}, TypeJobPostingSignal: {}, TypePatentFiling: {},
	TypeConferenceAnnouncement: {}, TypeRegulatoryChange: {}, TypeCompetitorAnalysis: {},
	TypeTechnologyAdoption: {},
}

func ParseOpportunityType(v string) (OpportunityType, bool) {
	t := OpportunityType(normalizeEnumKey(v))
	_, ok := opportunityTypes[t]
	return t, ok
}

type OpportunityStatus string

const (
	StatusDiscovered OpportunityStatus = "DISCOVERED"
	StatusAnalyzed   OpportunityStatus = "ANALYZED"
	StatusEngaged    OpportunityStatus = "ENGAGED"
	StatusDiscarded  OpportunityStatus = "DISCARDED"
	StatusMonitoring OpportunityStatus = "MONITORING"
	StatusConverted  OpportunityStatus = "CONVERTED"
	StatusExpired    OpportunityStatus = "EXPIRED"
	StatusDuplicate  OpportunityStatus = "DUPLICATE"
)

var opportunityStatuses = map[OpportunityStatus]struct{}{
	StatusDiscovered: {}, StatusAnalyzed: {}, StatusEngaged: {}, StatusDiscarded: {},
	StatusMonitoring: {}, StatusConverted: {}, StatusExpired: {}, StatusDuplicate: {},
}

func ParseOpportunityStatus(v string) (OpportunityStatus, bool) {
	s := OpportunityStatus(normalizeEnumKey(v))
	_, ok := opportunityStatuses[s]
	return s, ok
}

type Country string

var countries = map[Country]struct{}{
	"US": {}, "GB": {}, "CA": {}, "AU": {}, "DE": {}, "FR": {}, "IN": {}, "SG": {}, "JP": {}, "CN": {},
	"BR": {}, "MX": {}, "NL": {}, "SE": {}, "CH": {}, "IL": {}, "KR": {}, "IE": {}, "NO": {}, "DK": {},
}

func ParseCountry(v string) (Country, bool) {
	c := Country(strings.ToUpper(strings.TrimSpace(v)))
	_, ok := countries[c]
	return c, ok
}

type Industry string

const (
	IndustryFintech            Industry = "FINTECH"
	IndustryHealthtech         Industry = "HEALTHTECH"
	IndustryEdtech             Industry = "EDTECH"
	IndustryEnterpriseSoftware Industry = "ENTERPRISE_SOFTWARE"
	IndustryConsumerSoftware   Industry = "CONSUMER_SOFTWARE"
	IndustryAI                 Industry = "ARTIFICIAL_INTELLIGENCE"
	IndustryCybersecurity      Industry = "CYBERSECURITY"
	IndustryBlockchain         Industry = "BLOCKCHAIN"
	IndustryIoT                Industry = "IOT"
	IndustryCloudComputing     Industry = "CLOUD_COMPUTING"
	IndustryDevOps             Industry = "DEVOPS"
	IndustryDataAnalytics      Industry = "DATA_ANALYTICS"
	IndustryMobileTechnology   Industry = "MOBILE_TECHNOLOGY"
	IndustryWebDevelopment     Industry = "WEB_DEVELOPMENT"
	IndustryGaming             Industry = "GAMING"
	IndustryEcommerce          Industry = "ECOMMERCE"
	IndustryLogistics          Industry = "LOGISTICS"
	IndustryRenewableEnergy    Industry = "RENEWABLE_ENERGY"
	IndustryBiotechnology      Industry = "BIOTECHNOLOGY"
	IndustryRobotics           Industry = "ROBOTICS"
	IndustryAutonomousVehicles Industry = "AUTONOMOUS_VEHICLES"
	IndustryVirtualReality     Industry = "VIRTUAL_REALITY"
	IndustryRealEstate         Industry = "REAL_ESTATE"
	IndustryAgriculture        Industry = "AGRICULTURE"
	IndustryManufacturing      Industry = "MANUFACTURING"
	IndustryTelecommunications Industry = "TELECOMMUNICATIONS"
	IndustryAerospace          Industry = "AEROSPACE"
	IndustryMediaEntertainment Industry = "MEDIA_ENTERTAINMENT"
	IndustryTravelHospitality  Industry = "TRAVEL_HOSPITALITY"
	IndustryFoodBeverage       Industry = "FOOD_BEVERAGE"
)

type FundingStage string

const (
	StagePreSeed       FundingStage = "PRE_SEED"
	StageSeed          FundingStage = "SEED"
	StageSeriesA       FundingStage = "SERIES_A"
	StageSeriesB       FundingStage = "SERIES_B"
	StageSeriesC       FundingStage = "SERIES_C"
	StageSeriesDPlus   FundingStage = "SERIES_D_PLUS"
	StageIPO           FundingStage = "IPO"
	StageAcquisition   FundingStage = "ACQUISITION"
	StagePrivateEquity FundingStage = "PRIVATE_EQUITY"
	StageDebtFinancing FundingStage = "DEBT_FINANCING"
	StageGrant         FundingStage = "GRANT"
	StageCrowdfunding  FundingStage = "CROWDFUNDING"
	StageRevenueBased  FundingStage = "REVENUE_BASED"
	StageUnknown       FundingStage = "UNKNOWN"
)

type amountRange struct {
	stage    FundingStage
	min, max int64
}

// Declaration order matters: the first range containing the amount wins.
var fundingRanges = []amountRange{
	{StagePreSeed, 0, 100_000},
	{StageSeed, 100_000, 2_000_000},
	{StageSeriesA, 2_000_000, 15_000_000},
	{StageSeriesB, 15_000_000, 50_000_000},
	{StageSeriesC, 50_000_000, 100_000_000},
	{StageSeriesDPlus, 100_000_000, math.MaxInt64},
}

// FundingStageFromAmount maps a round size in USD to the earliest stage whose range contains it.
func FundingStageFromAmount(amount int64) FundingStage {
	for _, r := range fundingRanges {
		if amount >= r.min && amount <= r.max {
			return r.stage
		}
	}
	return StageUnknown
}

type CompanySize string

const (
	SizeStartup    CompanySize = "STARTUP"
	SizeSmall      CompanySize = "SMALL"
	SizeMedium     CompanySize = "MEDIUM"
	SizeLarge      CompanySize = "LARGE"
	SizeEnterprise CompanySize = "ENTERPRISE"
	SizeUnknown    CompanySize = "UNKNOWN"
)

func CompanySizeFromEmployees(n int) CompanySize {
	switch {
	case n >= 1 && n <= 10:
		return SizeStartup
	case n >= 11 && n <= 50:
		return SizeSmall
	case n >= 51 && n <= 200:
		return SizeMedium
	case n >= 201 && n <= 1000:
		return SizeLarge
	case n > 1000:
		return SizeEnterprise
	default:
		return SizeUnknown
	}
}

func normalizeEnumKey(v string) string {
	v = strings.TrimSpace(v)
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	return strings.ToUpper(v)
}
