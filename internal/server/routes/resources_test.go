package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofahub/sofahub/internal/metrics"
	"github.com/sofahub/sofahub/internal/resource"
)

func TestEncodeResourcesSortsAndAttachesCounters(t *testing.T) {
	metas := []resource.Metadata{
		{Type: "b_type", Policy: resource.TTLPolicy(time.Hour)},
		{Type: "a_type", Layout: resource.LayoutPaged, Policy: resource.ForeverPolicy()},
	}
	counts := map[string]metrics.CacheCounts{"a_type": {Hits: 3}}

	encoded := encodeResources(metas, resource.Policies{"b_type": resource.TTLPolicy(2 * time.Hour)}, counts)
	require.Len(t, encoded, 2)
	assert.Equal(t, "a_type", encoded[0].Name)
	assert.Equal(t, "paged", encoded[0].Layout)
	require.NotNil(t, encoded[0].Counters)
	assert.Equal(t, uint64(3), encoded[0].Counters.Hits)

	assert.Equal(t, "flat", encoded[1].Layout)
	assert.Nil(t, encoded[1].Counters)
	assert.Equal(t, int64(7200), encoded[1].Policy.TTLSeconds, "configured policy wins over the default")
}

func TestResourceRoutes(t *testing.T) {
	reg := metrics.New()
	reg.Cache.ObserveLookup(string(resource.MatchDict), metrics.ResultHit)

	app := fiber.New()
	RegisterResourceRoutes(app, resource.DefaultPolicies(), reg.Cache.Snapshot)
	RegisterMetricsRoute(app, reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/resources", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Resources []resourcePayload `json:"resources"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list.Resources, len(resource.List()))

	resp, err = app.Test(httptest.NewRequest("GET", "/-/resources/match_dict", nil))
	require.NoError(t, err)
	var detail resourcePayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.True(t, detail.Policy.Forever)
	require.NotNil(t, detail.Counters)
	assert.Equal(t, uint64(1), detail.Counters.Hits)

	resp, err = app.Test(httptest.NewRequest("GET", "/-/resources/unknown", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/-/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "sofahub_cache_lookups_total"), string(body))
}
