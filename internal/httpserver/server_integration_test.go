package httpserver_test

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"covidtracking.org/statecards/internal/httpserver"
	"covidtracking.org/statecards/internal/panel"
	htmltest "covidtracking.org/statecards/internal/testutil"
)

func get(t *testing.T, target string, htmx bool) (*http.Response, []byte) {
	t.Helper()
	return do(t, http.MethodGet, target, htmx)
}

func do(t *testing.T, method, target string, htmx bool) (*http.Response, []byte) {
	t.Helper()
	return send(t, method, target, nil, htmx)
}

func send(t *testing.T, method, target string, form url.Values, htmx bool) (*http.Response, []byte) {
	t.Helper()

	var payload io.Reader
	if form != nil {
		payload = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, payload)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestStatePageMountsSession(t *testing.T) {
	t.Parallel()

	metrics := httpserver.NewMetrics()
	registry := panel.NewRegistry(panel.RegistryConfig{Observer: metrics})
	ts := htmltest.NewServer(t, htmltest.WithRegistry(registry), htmltest.WithMetrics(metrics))

	resp, body := get(t, ts.URL+"/data/state/ny", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	doc := htmltest.ParseHTML(t, body)
	require.Equal(t, "New York", doc.Find("h1").First().Text())
	pageID := doc.Find("body").AttrOr("data-page-id", "")
	require.NotEmpty(t, pageID)
	require.Equal(t, 1, registry.Len())

	_, ok := registry.Lookup(pageID)
	require.True(t, ok)
	_, body = get(t, ts.URL+"/metrics", false)
	require.Contains(t, string(body), "statecards_active_pages 1\n")
}

func TestUnknownStateIs404(t *testing.T) {
	t.Parallel()

	ts := htmltest.NewServer(t)
	resp, _ := get(t, ts.URL+"/data/state/zz", false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDefinitionsPanelLifecycle(t *testing.T) {
	t.Parallel()

	metrics := httpserver.NewMetrics()
	registry := panel.NewRegistry(panel.RegistryConfig{Observer: metrics})
	ts := htmltest.NewServer(t, htmltest.WithRegistry(registry), htmltest.WithMetrics(metrics))

	_, body := get(t, ts.URL+"/data/state/ny", false)
	doc := htmltest.ParseHTML(t, body)
	pageID := doc.Find("body").AttrOr("data-page-id", "")

	testsCard := doc.Find(`section.state-card[data-category="tests"]`).First()
	href, ok := testsCard.Find("button.definitions-button").First().Attr("hx-post")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(href, "/pages/"+pageID+"/definitions?"))

	// fragment routes only answer htmx
	resp, _ := do(t, http.MethodPost, ts.URL+href, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// opening changes state, so GET is not routed
	resp, _ = get(t, ts.URL+href, true)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	pending, ok := registry.Lookup(pageID)
	require.True(t, ok)
	_, open := pending.Current()
	require.False(t, open)

	for i := 0; i < 2; i++ {
		resp, body = do(t, http.MethodPost, ts.URL+href, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		fragment := htmltest.ParseHTML(t, body)
		entries := fragment.Find("aside#definitions-panel div.definition")
		require.Equal(t, 3, entries.Length())
		require.Equal(t, "totalTestResults", fragment.Find(".definition--highlighted").AttrOr("data-field", ""))
	}

	controller, ok := registry.Lookup(pageID)
	require.True(t, ok)
	current, open := controller.Current()
	require.True(t, open)
	require.Equal(t, []string{"negative", "positive", "totalTestResults"}, current.Fields())
	require.Equal(t, "totalTestResults", current.Highlight())

	series, err := testutil.GatherAndCount(metrics.Registry(), "statecards_definition_opens_total")
	require.NoError(t, err)
	require.Equal(t, 2, series)
	_, body = get(t, ts.URL+"/metrics", false)
	require.Contains(t, string(body), `statecards_definition_opens_total{highlight="totalTestResults",repeated="false"} 1`)
	require.Contains(t, string(body), `statecards_definition_opens_total{highlight="totalTestResults",repeated="true"} 1`)

	resp, body = do(t, http.MethodDelete, ts.URL+"/pages/"+pageID+"/definitions", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, hidden := htmltest.ParseHTML(t, body).Find("aside#definitions-panel").Attr("hidden")
	require.True(t, hidden)
	_, open = controller.Current()
	require.False(t, open)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/pages/"+pageID, true)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.False(t, controller.Mounted())

	resp, _ = do(t, http.MethodPost, ts.URL+href, true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDefinitionsAcceptsFormBody(t *testing.T) {
	t.Parallel()

	registry := panel.NewRegistry(panel.RegistryConfig{})
	ts := htmltest.NewServer(t, htmltest.WithRegistry(registry))
	controller := registry.Mount()

	form := url.Values{"field": {"recovered", "death"}, "highlight": {"death"}}
	resp, body := send(t, http.MethodPost, ts.URL+"/pages/"+controller.ID()+"/definitions", form, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "death", htmltest.ParseHTML(t, body).Find(".definition--highlighted").AttrOr("data-field", ""))

	current, open := controller.Current()
	require.True(t, open)
	require.Equal(t, []string{"recovered", "death"}, current.Fields())
}

func TestPageSessionsAreCapped(t *testing.T) {
	t.Parallel()

	registry := panel.NewRegistry(panel.RegistryConfig{MaxSessions: 2})
	ts := htmltest.NewServer(t, htmltest.WithRegistry(registry))

	var ids []string
	for i := 0; i < 3; i++ {
		resp, body := get(t, ts.URL+"/data/state/ny", false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		ids = append(ids, htmltest.ParseHTML(t, body).Find("body").AttrOr("data-page-id", ""))
	}
	require.Equal(t, 2, registry.Len())

	_, ok := registry.Lookup(ids[2])
	require.True(t, ok)
	resp, _ := do(t, http.MethodDelete, ts.URL+"/pages/"+ids[2], true)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, 1, registry.Len())
}

func TestDefinitionsRejectsInvalidQuery(t *testing.T) {
	t.Parallel()

	registry := panel.NewRegistry(panel.RegistryConfig{})
	ts := htmltest.NewServer(t, htmltest.WithRegistry(registry))
	controller := registry.Mount()

	cases := map[string]string{
		"no fields":          "?highlight=positive",
		"duplicate field":    "?field=positive&field=positive&highlight=positive",
		"highlight missing":  "?field=positive&field=negative&highlight=death",
		"highlight is blank": "?field=positive",
	}
	for name, query := range cases {
		name, query := name, query
		t.Run(name, func(t *testing.T) {
			resp, _ := do(t, http.MethodPost, ts.URL+"/pages/"+controller.ID()+"/definitions"+query, true)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	_, open := controller.Current()
	require.False(t, open)
}

func TestHealthzMetricsAndStatic(t *testing.T) {
	t.Parallel()

	ts := htmltest.NewServer(t)

	resp, body := get(t, ts.URL+"/healthz", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok\n", string(body))

	_, _ = get(t, ts.URL+"/data/state/ca", false)
	resp, body = get(t, ts.URL+"/metrics", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `statecards_pages_rendered_total{state="ca"} 1`)

	resp, body = get(t, ts.URL+"/static/statecards.css", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), ".definitions-panel")
}
