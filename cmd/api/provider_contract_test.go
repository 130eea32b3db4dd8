//go:build contract

package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pact-foundation/pact-go/v2/models"
	pact "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/internal/domain"
)

// mutableRoster lets provider states swap the pickers the API serves
type mutableRoster struct {
	mu      sync.Mutex
	pickers map[string]*domain.Picker
}

func (r *mutableRoster) set(pickers ...*domain.Picker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pickers = make(map[string]*domain.Picker, len(pickers))
	for _, p := range pickers {
		r.pickers[p.PickerID] = p
	}
}

func (r *mutableRoster) repo() *stubPickerRepo {
	return &stubPickerRepo{
		FindByIDFn: func(ctx context.Context, pickerID string) (*domain.Picker, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			return r.pickers[pickerID], nil
		},
		FindAllFn: func(ctx context.Context, limit, offset int) ([]*domain.Picker, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			out := make([]*domain.Picker, 0, len(r.pickers))
			for _, p := range r.pickers {
				out = append(out, p)
			}
			return out, nil
		},
	}
}

func TestPactProvider(t *testing.T) {
	absPactDir, err := filepath.Abs("../../contracts/pacts")
	require.NoError(t, err)

	if _, err := os.Stat(absPactDir); os.IsNotExist(err) {
		t.Skip("No pacts found - run consumer tests first")
	}

	roster := &mutableRoster{}
	server := httptest.NewServer(newTestRouter(roster.repo(), &stubSnapshotRepo{}, devAdmin))
	defer server.Close()

	john, err := domain.NewPicker("P-1", "John Smith", 100)
	require.NoError(t, err)
	require.NoError(t, john.RecordHourlyLines(9, 12))

	verifier := pact.NewVerifier()
	err = verifier.VerifyProvider(t, pact.VerifyRequest{
		Provider:        serviceName,
		ProviderBaseURL: server.URL,
		PactDirs:        []string{absPactDir},
		StateHandlers: models.StateHandlers{
			"a picker exists": func(setup bool, state models.ProviderState) (models.ProviderStateResponse, error) {
				if setup {
					roster.set(john)
				}
				return nil, nil
			},
			"no pickers exist": func(setup bool, state models.ProviderState) (models.ProviderStateResponse, error) {
				if setup {
					roster.set()
				}
				return nil, nil
			},
		},
	})
	require.NoError(t, err)
}
