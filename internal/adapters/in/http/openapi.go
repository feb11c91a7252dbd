package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Contract is the loaded API description. It validates incoming requests and backs
// the /swagger UI.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
	json   string
}

// LoadContract parses and validates the embedded OpenAPI document.
func LoadContract() (*Contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAPI router: %w", err)
	}

	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to render OpenAPI document: %w", err)
	}

	return &Contract{doc: doc, router: router, json: string(raw)}, nil
}

// ReadDoc implements swag.Swagger so the swagger UI serves the same document the
// validator enforces.
func (c *Contract) ReadDoc() string {
	return c.json
}

// Register publishes the document under swag's default instance name. Registering
// twice panics inside swag, so the second call is ignored.
func (c *Contract) Register() {
	if _, err := swag.ReadDoc(); err == nil {
		return
	}
	swag.Register(swag.Name, c)
}

// ValidateRequest checks method, parameters and body against the document. Paths the
// document does not describe (metrics, swagger, health) pass through untouched.
func (c *Contract) ValidateRequest(req *http.Request) error {
	route, pathParams, err := c.router.FindRoute(req)
	if err != nil {
		if errors.Is(err, routers.ErrPathNotFound) {
			return nil
		}
		return err
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError: true,
		},
	}
	return openapi3filter.ValidateRequest(req.Context(), input)
}

// Middleware rejects requests that break the contract with 400 before they reach a
// handler.
func (c *Contract) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := c.ValidateRequest(ctx.Request()); err != nil {
				if errors.Is(err, routers.ErrMethodNotAllowed) {
					return writeError(ctx, http.StatusMethodNotAllowed, "MethodNotAllowed", err.Error())
				}
				return writeError(ctx, http.StatusBadRequest, "ContractViolation", err.Error())
			}
			return next(ctx)
		}
	}
}
