// Package seed loads the initial network content: reference tables, the
// sample report, the discussion feed and the inbox templates.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/medguard/internal/core/domain"
	"github.com/kirillkom/medguard/internal/core/ports"
)

//go:embed seed.yaml
var defaultSeed []byte

type Data struct {
	Reference     domain.Reference
	Reports       []domain.Report
	Posts         []domain.Post
	Notifications []domain.NotificationTemplate
}

type file struct {
	Reference struct {
		States       []string `yaml:"states"`
		Specialties  []string `yaml:"specialties"`
		NetworkStats []struct {
			Label string `yaml:"label"`
			Value string `yaml:"value"`
			Color string `yaml:"color"`
		} `yaml:"network_stats"`
	} `yaml:"reference"`
	Reports []struct {
		ID              string `yaml:"id"`
		PatientInitials string `yaml:"patient_initials"`
		IncidentDate    string `yaml:"incident_date"`
		BehaviorType    string `yaml:"behavior_type"`
		Severity        string `yaml:"severity"`
		Description     string `yaml:"description"`
		DoctorName      string `yaml:"doctor_name"`
		ClinicID        string `yaml:"clinic_id"`
		AISummary       string `yaml:"ai_summary"`
		State           string `yaml:"state"`
		City            string `yaml:"city"`
	} `yaml:"reports"`
	Posts []struct {
		ID       string   `yaml:"id"`
		Author   string   `yaml:"author"`
		Content  string   `yaml:"content"`
		Age      string   `yaml:"age"`
		Likes    int      `yaml:"likes"`
		Tags     []string `yaml:"tags"`
		Comments []struct {
			ID      string `yaml:"id"`
			Author  string `yaml:"author"`
			Content string `yaml:"content"`
			Age     string `yaml:"age"`
		} `yaml:"comments"`
	} `yaml:"posts"`
	Notifications []struct {
		Type    string `yaml:"type"`
		Title   string `yaml:"title"`
		Message string `yaml:"message"`
		Age     string `yaml:"age"`
		Read    bool   `yaml:"read"`
	} `yaml:"notifications"`
}

// Load reads the seed at path, or the embedded default when path is empty.
// Relative ages in the file are resolved against now.
func Load(path string, now time.Time) (*Data, error) {
	raw := defaultSeed
	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = content
	}
	return Parse(raw, now)
}

func Parse(raw []byte, now time.Time) (*Data, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}

	data := &Data{Reference: domain.DefaultReference()}
	if len(f.Reference.States) > 0 {
		data.Reference.States = f.Reference.States
	}
	if len(f.Reference.Specialties) > 0 {
		data.Reference.Specialties = f.Reference.Specialties
	}
	if len(f.Reference.NetworkStats) > 0 {
		data.Reference.NetworkStats = make([]domain.NetworkStat, 0, len(f.Reference.NetworkStats))
		for _, s := range f.Reference.NetworkStats {
			data.Reference.NetworkStats = append(data.Reference.NetworkStats, domain.NetworkStat{Label: s.Label, Value: s.Value, Color: s.Color})
		}
	}

	for i, r := range f.Reports {
		severity, ok := domain.ParseSeverity(r.Severity)
		if !ok {
			return nil, fmt.Errorf("seed report %d: unknown severity %q", i+1, r.Severity)
		}
		if r.ID == "" {
			return nil, fmt.Errorf("seed report %d: id is required", i+1)
		}
		createdAt, err := time.Parse(domain.IncidentDateLayout, r.IncidentDate)
		if err != nil {
			return nil, fmt.Errorf("seed report %s: incident date: %w", r.ID, err)
		}
		behavior := r.BehaviorType
		if behavior == "" {
			behavior = domain.DefaultBehaviorType
		}
		data.Reports = append(data.Reports, domain.Report{
			ID:              r.ID,
			PatientInitials: r.PatientInitials,
			IncidentDate:    r.IncidentDate,
			BehaviorType:    behavior,
			Severity:        severity,
			Description:     r.Description,
			DoctorName:      r.DoctorName,
			ClinicID:        r.ClinicID,
			AISummary:       r.AISummary,
			State:           r.State,
			City:            r.City,
			CreatedAt:       createdAt.UTC(),
		})
	}

	for _, p := range f.Posts {
		if p.ID == "" {
			return nil, errors.New("seed post: id is required")
		}
		age, err := parseAge(p.Age)
		if err != nil {
			return nil, fmt.Errorf("seed post %s: %w", p.ID, err)
		}
		post := domain.Post{
			ID:        p.ID,
			Author:    p.Author,
			Content:   p.Content,
			Likes:     p.Likes,
			Tags:      append([]string(nil), p.Tags...),
			CreatedAt: now.Add(-age),
		}
		for _, c := range p.Comments {
			cAge, err := parseAge(c.Age)
			if err != nil {
				return nil, fmt.Errorf("seed comment %s: %w", c.ID, err)
			}
			post.Comments = append(post.Comments, domain.Comment{
				ID:        c.ID,
				Author:    c.Author,
				Content:   c.Content,
				CreatedAt: now.Add(-cAge),
			})
		}
		data.Posts = append(data.Posts, post)
	}

	for i, n := range f.Notifications {
		kind := domain.NotificationType(strings.ToUpper(n.Type))
		switch kind {
		case domain.NotificationCritical, domain.NotificationCommunity, domain.NotificationSystem:
		default:
			return nil, fmt.Errorf("seed notification %d: unknown type %q", i+1, n.Type)
		}
		age, err := parseAge(n.Age)
		if err != nil {
			return nil, fmt.Errorf("seed notification %d: %w", i+1, err)
		}
		data.Notifications = append(data.Notifications, domain.NotificationTemplate{
			Type:    kind,
			Title:   n.Title,
			Message: n.Message,
			Age:     age,
			IsRead:  n.Read,
		})
	}
	return data, nil
}

func parseAge(raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	age, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse age %q: %w", raw, err)
	}
	if age < 0 {
		return 0, fmt.Errorf("age %q is negative", raw)
	}
	return age, nil
}

// Apply writes the sample report and posts into empty stores. Stores that
// already hold content are left alone so restarts against Postgres are idempotent.
func Apply(ctx context.Context, data *Data, reports ports.ReportRepository, community ports.CommunityRepository) error {
	count, err := reports.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed reports: %w", err)
	}
	if count == 0 {
		for i := range data.Reports {
			if err := reports.Create(ctx, &data.Reports[i]); err != nil {
				return fmt.Errorf("seed report %s: %w", data.Reports[i].ID, err)
			}
		}
	}

	posts, err := community.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}
	if len(posts) > 0 {
		return nil
	}
	for i := range data.Posts {
		post := data.Posts[i]
		comments := post.Comments
		post.Comments = nil
		if err := community.CreatePost(ctx, &post); err != nil {
			return fmt.Errorf("seed post %s: %w", post.ID, err)
		}
		for j := range comments {
			if err := community.AddComment(ctx, post.ID, &comments[j]); err != nil {
				return fmt.Errorf("seed comment %s: %w", comments[j].ID, err)
			}
		}
	}
	return nil
}
