package inventorysync_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory-sync/core/inventory"
	"inventory-sync/core/reconcile"
	"inventory-sync/feature/inventorysync"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRunner struct {
	err  error
	last reconcile.Options
}

func (s *stubRunner) Run(ctx context.Context, opts reconcile.Options) (*reconcile.Report, error) {
	s.last = opts
	state := reconcile.StateCompleted
	if s.err != nil {
		state = reconcile.StateFailed
	}
	return &reconcile.Report{ID: "run-42", State: state, DryRun: opts.DryRun, Started: time.Now()}, s.err
}

func setupApp(runner inventorysync.Runner) *fiber.App {
	svc := inventorysync.NewService(runner, nil, reconcile.Options{Workers: 2}, zap.NewNop())
	app := fiber.New()
	feature := inventorysync.NewFeature(svc)
	if feature.IsEnabled() {
		_ = feature.Load(app)
	}
	return app
}

func TestHandleStartRun(t *testing.T) {
	runner := &stubRunner{}
	app := setupApp(runner)

	req := httptest.NewRequest("POST", "/sync/runs", strings.NewReader(`{"kinds":["device"],"dry_run":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var report reconcile.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "run-42", report.ID)
	assert.True(t, report.DryRun)
	assert.Equal(t, []inventory.Kind{inventory.KindDevice}, runner.last.Kinds)

	// The report is now retrievable.
	resp, err = app.Test(httptest.NewRequest("GET", "/sync/runs/run-42", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleStartRun_EmptyBodyUsesDefaults(t *testing.T) {
	runner := &stubRunner{}
	app := setupApp(runner)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/runs", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.False(t, runner.last.DryRun)
	assert.Equal(t, 2, runner.last.Workers)
}

func TestHandleStartRun_BadRequest(t *testing.T) {
	app := setupApp(&stubRunner{})

	req := httptest.NewRequest("POST", "/sync/runs", strings.NewReader(`{"kinds":["racks"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("POST", "/sync/runs", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleStartRun_Unreachable(t *testing.T) {
	app := setupApp(&stubRunner{err: errors.Join(reconcile.ErrTargetUnavailable, errors.New("connection refused"))})

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/runs", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	var report reconcile.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, reconcile.StateFailed, report.State)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	app := setupApp(&stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/runs/missing", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleListRuns(t *testing.T) {
	app := setupApp(&stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/runs", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(body))
}

func TestHandleListKinds(t *testing.T) {
	app := setupApp(&stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/kinds", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var kinds []inventorysync.KindInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&kinds))
	require.Len(t, kinds, 6)
	assert.Equal(t, inventory.KindCircuit, kinds[5].Kind)
	assert.Equal(t, reconcile.StrategyFlag, kinds[5].Strategy)
}
