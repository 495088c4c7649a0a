package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Sternrassler/swecha-admin/internal/config"
	"github.com/Sternrassler/swecha-admin/internal/testutil"
	"github.com/Sternrassler/swecha-admin/pkg/dashboard"
	"github.com/Sternrassler/swecha-admin/pkg/stats"
)

func loadTestConfig(t *testing.T, baseURL, token string) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ADMIN_BACKEND_URL", baseURL)
	t.Setenv("ADMIN_TOKEN", token)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestRunStats(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetUsers(testutil.GenerateUsers(4))
	mock.SetContributions("user-0001", 2)
	mock.SetContributions("user-0003", 9)
	mock.FailContributions("user-0004")

	cfg := loadTestConfig(t, mock.URL(), testutil.MockToken)

	var out, errOut bytes.Buffer
	if err := runStats(context.Background(), cfg, 2, true, &out, &errOut); err != nil {
		t.Fatalf("runStats failed: %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"Users: 4 (active 2, inactive 2, 50.0% active)",
		"GENDER",
		"Contributing users: 2 of 4 (50.0%)",
		"Contribution lookups failed for 1 users",
		"1     User 3",
		"2     User 1",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Output missing %q:\n%s", want, report)
		}
	}
	if !strings.Contains(errOut.String(), "Looking up contributions: 4/4") {
		t.Errorf("Expected progress on stderr, got %q", errOut.String())
	}
}

func TestRunStats_Token(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"missing", "", "ADMIN_TOKEN is required"},
		{"rejected", "stale-token", "ADMIN_TOKEN was rejected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t, mock.URL(), tt.token)

			var out bytes.Buffer
			err := runStats(context.Background(), cfg, 5, false, &out, &out)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
			if out.Len() != 0 {
				t.Errorf("Expected no output, got %q", out.String())
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, stats.UserSummary{
		Total:         3,
		Active:        1,
		Inactive:      2,
		ActivePercent: 100.0 / 3,
		Gender:        map[string]int{"male": 1, "unknown": 2},
		GenderPercent: map[string]float64{"male": 100.0 / 3, "unknown": 200.0 / 3},
	})

	want := "Users: 3 (active 1, inactive 2, 33.3% active)\n" +
		"GENDER   USERS  SHARE\n" +
		"male     1      33.3%\n" +
		"unknown  2      66.7%\n"
	if out.String() != want {
		t.Errorf("printSummary output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, &dashboard.ActivityReport{
		Users:        2,
		ActiveUsers:  1,
		ActivityRate: 50,
		TopContributors: []dashboard.Contributor{
			{ID: "u-1", Name: "Asha", Phone: "900", Contributions: 12},
		},
	})

	want := "\nContributing users: 1 of 2 (50.0%)\n" +
		"RANK  NAME  PHONE  CONTRIBUTIONS\n" +
		"1     Asha  900    12\n"
	if out.String() != want {
		t.Errorf("printReport output:\n%q\nwant:\n%q", out.String(), want)
	}
}
