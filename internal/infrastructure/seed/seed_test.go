package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/infrastructure/repository/memory"
)

var seedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func TestLoadEmbeddedDefault(t *testing.T) {
	data, err := Load("", seedNow)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(data.Reports) != 1 || data.Reports[0].PatientInitials != "JD" || data.Reports[0].Severity != domain.SeverityMedium {
		t.Fatalf("unexpected reports: %+v", data.Reports)
	}
	if len(data.Posts) != 2 || len(data.Posts[0].Comments) != 2 || data.Posts[1].Likes != 24 {
		t.Fatalf("unexpected posts: %+v", data.Posts)
	}
	if !data.Posts[0].CreatedAt.Equal(seedNow.Add(-3 * time.Hour)) {
		t.Fatalf("expected post age resolved against now, got %s", data.Posts[0].CreatedAt)
	}
	if len(data.Notifications) != 3 || !data.Notifications[2].IsRead || data.Notifications[0].Age != 12*time.Minute {
		t.Fatalf("unexpected notification templates: %+v", data.Notifications)
	}
	if !strings.Contains(data.Notifications[2].Message, "{medical_id}") {
		t.Fatalf("template placeholder must survive loading")
	}
	if !data.Reference.HasState("Karnataka") || len(data.Reference.NetworkStats) != 3 {
		t.Fatalf("unexpected reference: %+v", data.Reference)
	}
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := "reference:\n  states: [Kerala]\nposts: []\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	data, err := Load(path, seedNow)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !data.Reference.HasState("Kerala") || data.Reference.HasState("Delhi") {
		t.Fatalf("expected states overridden: %+v", data.Reference.States)
	}
	if !data.Reference.HasSpecialty(domain.DefaultSpecialty) {
		t.Fatalf("missing sections must fall back to defaults")
	}
}

func TestParseRejectsBadSeed(t *testing.T) {
	cases := map[string]string{
		"severity": "reports:\n  - {id: r, severity: SEVERE, incident_date: '2024-01-01'}\n",
		"date":     "reports:\n  - {id: r, severity: LOW, incident_date: '15/05/2024'}\n",
		"age":      "posts:\n  - {id: p, age: yesterday}\n",
		"type":     "notifications:\n  - {type: PROMO, title: t}\n",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw), seedNow); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	data, err := Load("", seedNow)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	reports := memory.NewReportRepository()
	community := memory.NewCommunityRepository()
	ctx := context.Background()

	if err := Apply(ctx, data, reports, community); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := Apply(ctx, data, reports, community); err != nil {
		t.Fatalf("second Apply() error: %v", err)
	}

	if n, _ := reports.Count(ctx); n != 1 {
		t.Fatalf("expected 1 seeded report, got %d", n)
	}
	posts, _ := community.ListPosts(ctx)
	if len(posts) != 2 || posts[0].ID != "p1" || len(posts[0].Comments) != 2 {
		t.Fatalf("unexpected feed: %+v", posts)
	}
}
