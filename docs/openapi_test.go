package docs

import (
	"encoding/json"
	"testing"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/go-openapi/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"
)

func build(t *testing.T, info Info) spec.Swagger {
	t.Helper()
	doc, err := Build(endpoint.Default(), info)
	require.NoError(t, err)

	var out spec.Swagger
	require.NoError(t, json.Unmarshal([]byte(doc.ReadDoc()), &out))
	return out
}

func TestBuild(t *testing.T) {
	t.Run("documents every tool endpoint", func(t *testing.T) {
		out := build(t, DefaultInfo())

		assert.Equal(t, "2.0", out.Swagger)
		assert.Equal(t, "EveryToolsAPI", out.Info.Title)
		for _, ep := range endpoint.Default().All() {
			item, ok := out.Paths.Paths["/api/{version}/"+ep.Path()]
			require.True(t, ok, ep.Path())
			assert.NotNil(t, item.Get, ep.Path())
		}
		assert.Contains(t, out.Paths.Paths, "/api/status")
		assert.Contains(t, out.Paths.Paths, "/api/{version}/endpoints")
		assert.Contains(t, out.Paths.Paths, "/health")
		assert.Contains(t, out.Definitions, "Envelope")
	})

	t.Run("maps parameter types", func(t *testing.T) {
		out := build(t, DefaultInfo())

		op := out.Paths.Paths["/api/{version}/parser/sec-to-hms"].Get
		require.NotNil(t, op)
		var query *spec.Parameter
		for i := range op.Parameters {
			if op.Parameters[i].Name == "query" {
				query = &op.Parameters[i]
			}
		}
		require.NotNil(t, query)
		assert.Equal(t, "query", query.In)
		assert.Equal(t, "integer", query.Type)
		assert.True(t, query.Required)
		assert.Contains(t, op.Responses.StatusCodeResponses, 429)
	})

	t.Run("admin routes are opt-in", func(t *testing.T) {
		out := build(t, DefaultInfo())
		assert.NotContains(t, out.Paths.Paths, "/api/{version}/admin/login")
		assert.Empty(t, out.SecurityDefinitions)

		info := DefaultInfo()
		info.Admin = true
		out = build(t, info)
		assert.Contains(t, out.Paths.Paths, "/api/{version}/admin/login")
		stats := out.Paths.Paths["/api/{version}/admin/requests/stats"].Get
		require.NotNil(t, stats)
		require.Len(t, stats.Security, 1)
		assert.Contains(t, stats.Security[0], "BearerAuth")
		assert.Contains(t, out.SecurityDefinitions, "BearerAuth")
	})
}

func TestRegister(t *testing.T) {
	first, err := Build(endpoint.Default(), DefaultInfo())
	require.NoError(t, err)
	info := DefaultInfo()
	info.Admin = true
	second, err := Build(endpoint.Default(), info)
	require.NoError(t, err)

	Register(first)
	assert.NotPanics(t, func() { Register(second) })

	served, err := swag.ReadDoc()
	require.NoError(t, err)
	assert.Equal(t, second.ReadDoc(), served)
}
