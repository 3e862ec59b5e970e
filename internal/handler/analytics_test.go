package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/psehrawa/opportunities-finder/internal/models"
	"github.com/psehrawa/opportunities-finder/internal/opportunity"
	"github.com/psehrawa/opportunities-finder/internal/repository"
)

type stubAnalytics struct {
	days int
	err  error
}

func (s *stubAnalytics) Dashboard(context.Context) (*opportunity.Dashboard, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &opportunity.Dashboard{Totals: repository.Totals{Total: 7, Active: 5}}, nil
}

func (s *stubAnalytics) TimeSeries(_ context.Context, days int) ([]repository.DailyCount, error) {
	s.days = days
	return []repository.DailyCount{{Count: 2}}, s.err
}

func (s *stubAnalytics) Funnel(context.Context) (*opportunity.Funnel, error) {
	return &opportunity.Funnel{Stages: []opportunity.FunnelStage{{Status: models.StatusDiscovered, Count: 4, Rate: 100}}}, s.err
}

func (s *stubAnalytics) SourcePerformance(context.Context) ([]repository.SourcePerformance, error) {
	return []repository.SourcePerformance{{Source: models.SourceGitHub, Total: 4, Conversions: 1, ConversionRate: 25}}, s.err
}

func analyticsRouter(svc AnalyticsService) *gin.Engine {
	r := gin.New()
	(&AnalyticsHandler{Service: svc}).Register(r)
	return r
}

func TestAnalyticsRoutes(t *testing.T) {
	svc := &stubAnalytics{}
	r := analyticsRouter(svc)

	w, resp := do(t, r, http.MethodGet, "/api/v1/analytics/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", w.Code)
	}
	var d opportunity.Dashboard
	if err := json.Unmarshal(resp.Data, &d); err != nil || d.Totals.Total != 7 || d.Totals.Active != 5 {
		t.Fatalf("dashboard=%+v,%v", d, err)
	}

	w, resp = do(t, r, http.MethodGet, "/api/v1/analytics/timeseries", "")
	if w.Code != http.StatusOK || svc.days != 30 {
		t.Fatalf("timeseries status=%d days=%d want 200,30", w.Code, svc.days)
	}
	if resp.Meta["days"] != float64(30) {
		t.Fatalf("meta=%v", resp.Meta)
	}
	if w, _ := do(t, r, http.MethodGet, "/api/v1/analytics/timeseries?days=7", ""); w.Code != http.StatusOK || svc.days != 7 {
		t.Fatalf("timeseries status=%d days=%d want 200,7", w.Code, svc.days)
	}

	w, resp = do(t, r, http.MethodGet, "/api/v1/analytics/funnel", "")
	if w.Code != http.StatusOK {
		t.Fatalf("funnel status=%d", w.Code)
	}
	var f opportunity.Funnel
	if err := json.Unmarshal(resp.Data, &f); err != nil || len(f.Stages) != 1 || f.Stages[0].Status != models.StatusDiscovered {
		t.Fatalf("funnel=%+v,%v", f, err)
	}

	w, resp = do(t, r, http.MethodGet, "/api/v1/analytics/sources", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sources status=%d", w.Code)
	}
	var perf []map[string]any
	if err := json.Unmarshal(resp.Data, &perf); err != nil || len(perf) != 1 || perf[0]["conversion_rate"] != float64(25) {
		t.Fatalf("sources=%v,%v", perf, err)
	}
}

func TestAnalyticsErrorStatuses(t *testing.T) {
	r := analyticsRouter(&stubAnalytics{err: opportunity.ErrAnalyticsUnavailable})
	if w, _ := do(t, r, http.MethodGet, "/api/v1/analytics/dashboard", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unavailable status=%d want=503", w.Code)
	}

	r = analyticsRouter(&stubAnalytics{err: errors.New("connection refused")})
	for _, path := range []string{"/api/v1/analytics/timeseries", "/api/v1/analytics/funnel", "/api/v1/analytics/sources"} {
		if w, _ := do(t, r, http.MethodGet, path, ""); w.Code != http.StatusBadGateway {
			t.Fatalf("%s status=%d want=502", path, w.Code)
		}
	}

	if w, _ := do(t, analyticsRouter(nil), http.MethodGet, "/api/v1/analytics/funnel", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("nil service status=%d want=500", w.Code)
	}
}
