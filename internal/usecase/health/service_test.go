package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockReferenceChecker struct {
	err error
}

func (m *mockReferenceChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name       string
		db         DBPinger
		references ReferenceChecker
		status     Status
		checks     map[string]CheckResult
	}{
		{
			"all healthy", &mockDBPinger{}, &mockReferenceChecker{}, Healthy,
			map[string]CheckResult{ComponentDatabase: CheckOK, ComponentReferences: CheckOK},
		},
		{
			"database down", &mockDBPinger{err: down}, &mockReferenceChecker{}, Degraded,
			map[string]CheckResult{ComponentDatabase: CheckError, ComponentReferences: CheckOK},
		},
		{
			"breaker open", &mockDBPinger{}, &mockReferenceChecker{err: down}, Degraded,
			map[string]CheckResult{ComponentDatabase: CheckOK, ComponentReferences: CheckError},
		},
		{
			"both down", &mockDBPinger{err: down}, &mockReferenceChecker{err: down}, Unhealthy,
			map[string]CheckResult{ComponentDatabase: CheckError, ComponentReferences: CheckError},
		},
		{
			"no database", nil, &mockReferenceChecker{}, Healthy,
			map[string]CheckResult{ComponentReferences: CheckOK},
		},
		{
			"no database, references down", nil, &mockReferenceChecker{err: down}, Unhealthy,
			map[string]CheckResult{ComponentReferences: CheckError},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(tc.db, tc.references).Check(context.Background())
			if r.Status != tc.status {
				t.Errorf("expected %q, got %q", tc.status, r.Status)
			}
			if len(r.Checks) != len(tc.checks) {
				t.Fatalf("expected checks %v, got %v", tc.checks, r.Checks)
			}
			for k, want := range tc.checks {
				if r.Checks[k] != want {
					t.Errorf("expected %s %q, got %q", k, want, r.Checks[k])
				}
			}
		})
	}
}
