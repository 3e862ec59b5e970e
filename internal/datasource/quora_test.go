package datasource

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psehrawa/opportunities-finder/internal/config"
	"github.com/psehrawa/opportunities-finder/internal/health"
	"github.com/psehrawa/opportunities-finder/internal/models"
)

func newTestQuora(deps Deps) *Quora {
	return NewQuora(config.QuoraSourceConfig{SourceConfig: testSourceConfig("")}, deps)
}

func TestQuoraDiscoverIsDeterministic(t *testing.T) {
	q := newTestQuora(testDeps(nil))
	first := q.Discover(context.Background(), Query{})
	second := q.Discover(context.Background(), Query{})

	require.Len(t, first, quoraDefaultLimit)
	require.Len(t, second, quoraDefaultLimit)
	for i := range first {
		require.Equal(t, first[i].ExternalID, second[i].ExternalID)
		require.True(t, strings.HasPrefix(first[i].ExternalID, "quora-"))
	}

	names := make([]string, 0, 4)
	for _, o := range first[:4] {
		names = append(names, o.CompanyName)
	}
	require.Equal(t, []string{"NeuralFlow", "DeepSense", "VisionAI", "DataSync"}, names)
}

func TestQuoraSkipsThreadsWithoutSignals(t *testing.T) {
	q := newTestQuora(testDeps(nil))
	got := q.Discover(context.Background(), Query{Limit: 100})
	require.Len(t, got, 22)
	for _, o := range got {
		require.NotContains(t, o.Description, "ChainSecure")
		require.NotContains(t, o.Description, "DevFlow")
		require.NotContains(t, o.Description, "ZeroTrust")
	}
}

func TestQuoraRecordFields(t *testing.T) {
	q := newTestQuora(testDeps(nil))
	got := q.Discover(context.Background(), Query{Limit: 5})
	require.Len(t, got, 5)

	neural := got[0]
	require.Equal(t, models.SourceQuora, neural.Source)
	require.Equal(t, models.IndustryAI, neural.Industry)
	require.Equal(t, models.TypeStartupFunding, neural.Type)
	require.Equal(t, models.StageSeriesA, neural.FundingStage)
	require.Equal(t, models.SizeStartup, neural.CompanySize)
	require.Equal(t, "15000000", neural.FundingAmount.String())
	require.Equal(t, "70", neural.ConfidenceScore.String())
	require.Equal(t, "100", neural.EngagementPotential.String())
	require.Equal(t, "85.00", neural.Meta()["signal_score"])
	require.Equal(t, "qa_platform", neural.Meta()["source_type"])
	require.Equal(t, "https://www.quora.com/simulated/"+neural.ExternalID, neural.URL)
	require.Contains(t, []string(neural.Tags), "ai-startups")
	require.Contains(t, []string(neural.Tags), "ai")

	dataSync := got[3]
	require.Equal(t, models.TypeProductLaunch, dataSync.Type)
	require.Equal(t, models.IndustryEnterpriseSoftware, dataSync.Industry)
}

func TestQuoraChargesOneUnitPerPass(t *testing.T) {
	deps := testDeps(map[models.DataSource]int{models.SourceQuora: 2})
	q := newTestQuora(deps)

	require.Len(t, q.Discover(context.Background(), Query{Limit: 3}), 3)
	require.Equal(t, 1, q.RateLimitStatus(context.Background()).Remaining)
	require.Len(t, q.Discover(context.Background(), Query{Limit: 3}), 3)
	require.Empty(t, q.Discover(context.Background(), Query{Limit: 3}))
	require.Equal(t, health.StateUp, q.HealthStatus(context.Background()).State)
}

func TestQuoraScore(t *testing.T) {
	require.InDelta(t, 85, quoraScore(quoraThread{Topic: "AI Startups", Views: 1250, Answers: 45}), 0.001)
	// 8.6 + 25.5 + 15
	require.InDelta(t, 49.1, quoraScore(quoraThread{Topic: "Climate", Views: 430, Answers: 17}), 0.001)
}

func TestAnswerCompanyName(t *testing.T) {
	require.Equal(t, "MedTrack", answerCompanyName("I'm working on MedTrack, a patient monitoring platform."))
	require.Equal(t, "DeepSense", answerCompanyName("DeepSense is growing. They're building ML infrastructure."))
	require.Equal(t, "Unknown Startup", answerCompanyName("just raised a round"))
}
