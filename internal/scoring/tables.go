package scoring

import "github.com/psehrawa/opportunities-finder/internal/models"

const neutral = 50.0

var fundingStageScores = map[models.FundingStage]float64{
	models.StagePreSeed:       60,
	models.StageSeed:          75,
	models.StageSeriesA:       85,
	models.StageSeriesB:       90,
	models.StageSeriesC:       95,
	models.StageSeriesDPlus:   90,
	models.StageIPO:           70,
	models.StageAcquisition:   60,
	models.StagePrivateEquity: 80,
	models.StageDebtFinancing: 65,
	models.StageGrant:         70,
	models.StageCrowdfunding:  55,
	models.StageRevenueBased:  75,
	models.StageUnknown:       50,
}

var companySizeScores = map[models.CompanySize]float64{
	models.SizeStartup:    85,
	models.SizeSmall:      80,
	models.SizeMedium:     75,
	models.SizeLarge:      60,
	models.SizeEnterprise: 40,
	models.SizeUnknown:    50,
}

var industryScores = map[models.Industry]float64{
	models.IndustryAI:                 95,
	models.IndustryFintech:            90,
	models.IndustryHealthtech:         88,
	models.IndustryCybersecurity:      85,
	models.IndustryBlockchain:         82,
	models.IndustryCloudComputing:     85,
	models.IndustryIoT:                80,
	models.IndustryEdtech:             78,
	models.IndustryDevOps:             75,
	models.IndustryDataAnalytics:      83,
	models.IndustryMobileTechnology:   70,
	models.IndustryWebDevelopment:     65,
	models.IndustryEnterpriseSoftware: 75,
	models.IndustryConsumerSoftware:   70,
	models.IndustryGaming:             68,
	models.IndustryEcommerce:          72,
	models.IndustryAutonomousVehicles: 88,
	models.IndustryVirtualReality:     80,
	models.IndustryRenewableEnergy:    85,
	models.IndustryBiotechnology:      87,
	models.IndustryRobotics:           84,
	models.IndustryAerospace:          78,
}

// otherIndustry applies to known industries without a trend entry.
const otherIndustry = 60.0

var sourceScores = map[models.DataSource]float64{
	models.SourceGitHub:          85,
	models.SourceCrunchbasePro:   95,
	models.SourceCrunchbaseBasic: 80,
	models.SourceSECEdgar:        90,
	models.SourceLinkedInAPI:     75,
	models.SourceHackerNews:      70,
	models.SourceProductHunt:     75,
	models.SourceReddit:          60,
	models.SourceTwitterAPI:      65,
	models.SourceNewsAPI:         70,
	models.SourceGoogleTrends:    60,
	models.SourceUSPTOPatent:     85,
	models.SourcePitchbook:       95,
	models.SourceOwler:           80,
	models.SourceAngelList:       85,
	models.SourceYouTubeAPI:      55,
	models.SourceBlind:           80,
	models.SourceQuora:           65,
}

var typeMultipliers = map[models.OpportunityType]float64{
	models.TypeStartupFunding:         1.2,
	models.TypeAcquisitionTarget:      1.15,
	models.TypeTechnologyTrend:        1.1,
	models.TypeMarketExpansion:        1.1,
	models.TypeProductLaunch:          1.05,
	models.TypePartnership:            1.0,
	models.TypeJobPostingSignal:       0.9,
	models.TypePatentFiling:           0.95,
	models.TypeConferenceAnnouncement: 0.8,
	models.TypeRegulatoryChange:       0.9,
	models.TypeCompetitorAnalysis:     0.85,
	models.TypeTechnologyAdoption:     1.0,
}

var countryMultipliers = map[models.Country]float64{
	"US": 1.1,
	"GB": 1.05,
	"CA": 1.02,
	"AU": 1.0,
	"DE": 1.05,
	"FR": 1.03,
	"IN": 1.08,
	"SG": 1.06,
	"JP": 1.04,
	"CN": 1.08,
	"IL": 1.1,
	"IE": 1.05,
	"NL": 1.03,
	"SE": 1.04,
	"CH": 1.06,
}
