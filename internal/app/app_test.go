package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/pkg/milestone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t      *testing.T
	app    *Application
	header http.Header
}

func setup(t *testing.T) (*Application, func()) {
	catalog, err := milestone.NewCatalog([]milestone.Entry{
		{Id: "sprout", Name: "Sprout", ThresholdHours: 1},
		{Id: "fox", Name: "Fox", ThresholdHours: 10},
	})
	require.NoError(t, err)
	application := newApplication(config.Defaults(), MemoryStores(), catalog)
	return application, func() {
		t.Log("Teardown after test")
		require.NoError(t, application.close())
	}
}

func (c testClient) do(method string, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&reader).Encode(body))
	}
	req := httptest.NewRequest(method, target, &reader)
	for k, v := range c.header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	c.app.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRoutes_StudyWeek(t *testing.T) {
	application, teardown := setup(t)
	defer teardown()
	client := testClient{t: t, app: application, header: http.Header{userIdHeader: {"user-1"}}}

	rec := client.do("PUT", "/api/category", []map[string]string{{"id": "math", "name": "Math"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = client.do("PUT", "/api/schedule/slot", map[string]string{
		"date": "2024-03-06", "day": "day1", "hour": "hour10", "categoryId": "math",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slot := decode[map[string]string](t, rec)
	assert.Equal(t, "2024-03-04", slot["date"])

	rec = client.do("PUT", "/api/achievement", map[string]string{
		"date": "2024-03-04", "day": "day1", "hour": "hour10", "status": "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = client.do("GET", "/api/stats/weekly?date=2024-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	weekly := decode[map[string]any](t, rec)
	assert.Equal(t, "2024-03-04", weekly["weekStart"])
	assert.Equal(t, 1.0, weekly["totalHours"])
	assert.Equal(t, 100.0, weekly["completionRate"])

	rec = client.do("GET", "/api/stats/weekly?date=2024-03-10&format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Week of 2024-03-04,Math,SUM")

	rec = client.do("GET", "/api/milestone/next", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[milestone.NextDTO](t, rec)
	require.NotNil(t, next.Milestone)
	assert.Equal(t, "sprout", next.Milestone.Id)

	rec = client.do("POST", "/api/milestone/sprout/shown", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = client.do("GET", "/api/milestone/next", nil)
	assert.Nil(t, decode[milestone.NextDTO](t, rec).Milestone)

	rec = client.do("POST", "/api/milestone/unicorn/shown", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do("DELETE", "/api/schedule/slot?date=2024-03-04&day=day1&hour=hour10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = client.do("GET", "/api/achievement?date=2024-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = client.do("GET", "/api/stats/alltime", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.0, decode[map[string]any](t, rec)["hours"])
}

func TestRoutes_Sessions(t *testing.T) {
	application, teardown := setup(t)
	defer teardown()
	regular := testClient{t: t, app: application, header: http.Header{userIdHeader: {"user-1"}}}
	demo := testClient{t: t, app: application, header: http.Header{userIdHeader: {"user-1"}, demoSessionHeader: {"true"}}}
	anonymous := testClient{t: t, app: application, header: http.Header{}}

	rec := regular.do("PUT", "/api/category", []map[string]string{{"id": "math", "name": "Math"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = demo.do("GET", "/api/category", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]map[string]string](t, rec), "demo sessions use their own backend")

	rec = regular.do("GET", "/api/category", nil)
	assert.Len(t, decode[[]map[string]string](t, rec), 1)

	rec = anonymous.do("GET", "/api/category", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	invalidDemo := testClient{t: t, app: application, header: http.Header{userIdHeader: {"user-1"}, demoSessionHeader: {"maybe"}}}
	rec = invalidDemo.do("GET", "/api/category", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
