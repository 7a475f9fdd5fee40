// Package docs builds the OpenAPI document served by the Swagger UI.
//
// The tool routes are generated from the endpoint catalogue, so the document
// is assembled at startup instead of being generated by swag init.
package docs

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/go-openapi/spec"
	"github.com/swaggo/swag/v2"
)

// Info holds the top level document metadata
type Info struct {
	Title       string
	Description string
	Version     string
	Host        string
	// Admin adds the request log administration routes
	Admin bool
}

// DefaultInfo returns the metadata used by the server
func DefaultInfo() Info {
	return Info{
		Title:       "EveryToolsAPI",
		Description: "A collection of small parsers, randomizers, scrapers and utility tools behind one JSON API.",
		Version:     endpoint.LatestVersion,
	}
}

// Doc is a rendered OpenAPI document. It implements swag.Swagger.
type Doc struct {
	raw []byte
}

// ReadDoc returns the JSON document
func (d *Doc) ReadDoc() string {
	return string(d.raw)
}

// Build renders the document for every endpoint of the registry
func Build(registry *endpoint.Registry, info Info) (*Doc, error) {
	doc := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			Host:     info.Host,
			BasePath: "/",
			Info: &spec.Info{InfoProps: spec.InfoProps{
				Title:       info.Title,
				Description: info.Description,
				Version:     info.Version,
			}},
			Produces:    []string{"application/json"},
			Paths:       &spec.Paths{Paths: map[string]spec.PathItem{}},
			Definitions: definitions(),
		},
	}

	categories := map[endpoint.Category]struct{}{}
	for _, ep := range registry.All() {
		categories[ep.Category] = struct{}{}
		op := toolOperation(ep)
		item := doc.Paths.Paths["/api/{version}/"+ep.Path()]
		methods := ep.Methods
		if len(methods) == 0 {
			methods = []string{http.MethodGet}
		}
		for _, m := range methods {
			setOperation(&item, m, op)
		}
		doc.Paths.Paths["/api/{version}/"+ep.Path()] = item
	}

	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, string(c))
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Tags = append(doc.Tags, spec.NewTag(name, "", nil))
	}

	addServerPaths(doc)
	if info.Admin {
		addAdminPaths(doc)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return &Doc{raw: raw}, nil
}

var (
	current  atomic.Pointer[Doc]
	register sync.Once
)

type registered struct{}

func (registered) ReadDoc() string {
	if d := current.Load(); d != nil {
		return d.ReadDoc()
	}
	return "{}"
}

// Register publishes doc under the default swag instance name. swag panics on
// duplicate names, so later calls only replace the served document.
func Register(doc *Doc) {
	current.Store(doc)
	register.Do(func() {
		swag.Register(swag.Name, registered{})
	})
}

func toolOperation(ep endpoint.Endpoint) *spec.Operation {
	op := spec.NewOperation(strings.ReplaceAll(string(ep.Category)+"_"+ep.Name, "-", "_")).
		WithSummary(ep.Title).
		WithDescription(describe(ep)).
		WithTags(string(ep.Category)).
		AddParam(versionParam())

	for _, p := range ep.Parameters {
		param := spec.QueryParam(p.Name).WithDescription(p.Description)
		switch p.Type {
		case endpoint.ParamInteger:
			param.Typed("integer", "int64")
		case endpoint.ParamNumber:
			param.Typed("number", "double")
		case endpoint.ParamBoolean:
			param.Typed("boolean", "")
		case endpoint.ParamURL:
			param.Typed("string", "uri")
		default:
			param.Typed("string", "")
		}
		if p.Required {
			param.AsRequired()
		}
		if len(p.Enum) > 0 {
			values := make([]interface{}, len(p.Enum))
			for i, v := range p.Enum {
				values[i] = v
			}
			param.WithEnum(values...)
		}
		if p.Default != "" {
			param.WithDefault(p.Default)
		}
		op.AddParam(param)
	}

	return op.
		RespondsWith(http.StatusOK, envelopeResponse("Successful response")).
		RespondsWith(http.StatusBadRequest, errorResponse("Invalid or missing parameter")).
		RespondsWith(http.StatusTooManyRequests, errorResponse("Rate limit exceeded")).
		RespondsWith(http.StatusServiceUnavailable, errorResponse("Endpoint not available")).
		RespondsWith(http.StatusInternalServerError, errorResponse("Unexpected error"))
}

func describe(ep endpoint.Endpoint) string {
	var b strings.Builder
	b.WriteString(ep.Description)
	if ep.RateLimit != "" {
		b.WriteString("\n\nRate limit: ")
		b.WriteString(ep.RateLimit)
	}
	if !ep.Ready {
		b.WriteString("\n\nThis endpoint is not available yet.")
	}
	return b.String()
}

func addServerPaths(doc *spec.Swagger) {
	status := spec.NewOperation("status").
		WithSummary("Server status").
		WithTags("server").
		RespondsWith(http.StatusOK, envelopeResponse("Server is running")).
		RespondsWith(http.StatusTooManyRequests, errorResponse("Rate limit exceeded"))
	doc.Paths.Paths["/api/status"] = spec.PathItem{PathItemProps: spec.PathItemProps{Get: status}}

	list := spec.NewOperation("listEndpoints").
		WithSummary("List endpoints").
		WithTags("catalog").
		AddParam(versionParam()).
		RespondsWith(http.StatusOK, envelopeResponse("Endpoint catalogue")).
		RespondsWith(http.StatusBadRequest, errorResponse("Unsupported version"))
	doc.Paths.Paths["/api/{version}/endpoints"] = spec.PathItem{PathItemProps: spec.PathItemProps{Get: list}}

	health := spec.NewOperation("health").
		WithSummary("Health check").
		WithTags("server").
		RespondsWith(http.StatusOK, spec.NewResponse().WithDescription("Healthy")).
		RespondsWith(http.StatusServiceUnavailable, spec.NewResponse().WithDescription("A dependency is down"))
	doc.Paths.Paths["/health"] = spec.PathItem{PathItemProps: spec.PathItemProps{Get: health}}
}

func addAdminPaths(doc *spec.Swagger) {
	doc.SecurityDefinitions = spec.SecurityDefinitions{
		"BearerAuth": spec.APIKeyAuth("Authorization", "header"),
	}

	credentials := new(spec.Schema).Typed("object", "").
		SetProperty("username", *spec.StringProperty()).
		SetProperty("password", *spec.StringProperty()).
		WithRequired("username", "password")
	login := spec.NewOperation("adminLogin").
		WithSummary("Admin login").
		WithTags("admin").
		WithConsumes("application/json").
		AddParam(versionParam()).
		AddParam(spec.BodyParam("request", credentials).AsRequired()).
		RespondsWith(http.StatusOK, envelopeResponse("Access token")).
		RespondsWith(http.StatusBadRequest, errorResponse("Invalid body")).
		RespondsWith(http.StatusUnauthorized, errorResponse("Invalid credentials"))
	doc.Paths.Paths["/api/{version}/admin/login"] = spec.PathItem{PathItemProps: spec.PathItemProps{Post: login}}

	logout := secured(spec.NewOperation("adminLogout").
		WithSummary("Admin logout").
		RespondsWith(http.StatusOK, envelopeResponse("Token revoked")))
	doc.Paths.Paths["/api/{version}/admin/logout"] = spec.PathItem{PathItemProps: spec.PathItemProps{Post: logout}}

	stats := secured(spec.NewOperation("adminRequestStats").
		WithSummary("Request statistics").
		AddParam(spec.QueryParam("since").Typed("string", "").
			WithDescription("RFC 3339 timestamp or look-back duration, default 24h")).
		AddParam(spec.QueryParam("top").Typed("integer", "int64").
			WithDescription("Number of top routes")).
		RespondsWith(http.StatusOK, envelopeResponse("Aggregated statistics")).
		RespondsWith(http.StatusBadRequest, errorResponse("Invalid query")))
	doc.Paths.Paths["/api/{version}/admin/requests/stats"] = spec.PathItem{PathItemProps: spec.PathItemProps{Get: stats}}

	request := secured(spec.NewOperation("adminGetRequest").
		WithSummary("Get a request").
		AddParam(spec.PathParam("id").Typed("integer", "int64")).
		RespondsWith(http.StatusOK, envelopeResponse("Recorded request")).
		RespondsWith(http.StatusNotFound, errorResponse("Unknown request")))
	doc.Paths.Paths["/api/{version}/admin/requests/{id}"] = spec.PathItem{PathItemProps: spec.PathItemProps{Get: request}}
}

func secured(op *spec.Operation) *spec.Operation {
	return op.
		WithTags("admin").
		SecuredWith("BearerAuth").
		AddParam(versionParam()).
		RespondsWith(http.StatusUnauthorized, errorResponse("Missing, invalid or revoked token"))
}

func setOperation(item *spec.PathItem, method string, op *spec.Operation) {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodDelete:
		item.Delete = op
	}
}

func versionParam() *spec.Parameter {
	return spec.PathParam("version").
		Typed("string", "").
		WithDescription("API version").
		WithDefault(endpoint.LatestVersion)
}

func envelopeResponse(description string) *spec.Response {
	return spec.NewResponse().
		WithDescription(description).
		WithSchema(spec.RefSchema("#/definitions/Envelope"))
}

func errorResponse(description string) *spec.Response {
	return spec.NewResponse().
		WithDescription(description).
		WithSchema(spec.RefSchema("#/definitions/ErrorEnvelope"))
}

func definitions() spec.Definitions {
	apiInfo := new(spec.Schema).Typed("object", "").
		SetProperty("status", *spec.BoolProperty()).
		SetProperty("errorMessage", *spec.StringProperty()).
		SetProperty("elapsedTime", *spec.Float64Property()).
		SetProperty("version", *spec.StringProperty().WithExample(endpoint.LatestVersion)).
		WithRequired("status", "errorMessage", "elapsedTime", "version")

	envelope := new(spec.Schema).Typed("object", "").
		SetProperty("api", *spec.RefSchema("#/definitions/APIInfo")).
		SetProperty("response", *new(spec.Schema).Typed("object", "")).
		WithRequired("api", "response")

	errEnvelope := new(spec.Schema).Typed("object", "").
		SetProperty("api", *spec.RefSchema("#/definitions/APIInfo")).
		SetProperty("response", *new(spec.Schema).Typed("object", "").
			WithDescription("Always empty")).
		WithRequired("api", "response")

	return spec.Definitions{
		"APIInfo":       *apiInfo,
		"Envelope":      *envelope,
		"ErrorEnvelope": *errEnvelope,
	}
}
