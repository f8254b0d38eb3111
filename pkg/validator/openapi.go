package validator

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"character-image-generator/backend/pkg/errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var embeddedSchema []byte

// Schema returns the API description bundled with the binary.
func Schema() []byte {
	return embeddedSchema
}

// OpenAPIValidator validates requests against an OpenAPI document
type OpenAPIValidator struct {
	doc    *openapi3.T
	router routers.Router
	prefix string
	mutex  sync.RWMutex
}

// NewOpenAPIValidator builds a validator from the embedded schema. Requests
// whose path starts with prefix are matched with the prefix removed, so the
// same document covers both mounts of the API.
func NewOpenAPIValidator(prefix string) (*OpenAPIValidator, error) {
	return NewOpenAPIValidatorFromData(embeddedSchema, prefix)
}

// NewOpenAPIValidatorFromData builds a validator from a YAML or JSON document
func NewOpenAPIValidatorFromData(data []byte, prefix string) (*OpenAPIValidator, error) {
	v := &OpenAPIValidator{prefix: strings.TrimSuffix(prefix, "/")}
	if err := v.Load(data); err != nil {
		return nil, err
	}
	return v, nil
}

// Load replaces the current document
func (v *OpenAPIValidator) Load(data []byte) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return fmt.Errorf("failed to load OpenAPI schema: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("invalid OpenAPI schema: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return fmt.Errorf("error creating OpenAPI router: %w", err)
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()
	v.doc = doc
	v.router = router
	return nil
}

// Middleware validates requests for documented routes. Undocumented routes
// pass through untouched.
func (v *OpenAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		v.mutex.RLock()
		router := v.router
		v.mutex.RUnlock()

		route, pathParams, err := router.FindRoute(v.lookupRequest(c.Request))
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         false,
			},
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.Error(errors.NewBadRequestError(errors.CodeValidation, "Request does not match the API schema").
				WithDetails(map[string]string{"reason": reason(err)}).
				WithCause(err))
			c.Abort()
			return
		}

		c.Next()
	}
}

// lookupRequest strips the mount prefix so routes match the document paths.
func (v *OpenAPIValidator) lookupRequest(r *http.Request) *http.Request {
	if v.prefix == "" {
		return r
	}
	path := r.URL.Path
	if path != v.prefix && !strings.HasPrefix(path, v.prefix+"/") {
		return r
	}

	clone := r.Clone(r.Context())
	clone.URL.Path = strings.TrimPrefix(path, v.prefix)
	clone.URL.RawPath = ""
	if clone.URL.Path == "" {
		clone.URL.Path = "/"
	}
	return clone
}

func reason(err error) string {
	if reqErr, ok := err.(*openapi3filter.RequestError); ok {
		if reqErr.Parameter != nil {
			return fmt.Sprintf("parameter %q: %s", reqErr.Parameter.Name, reqErr.Reason)
		}
		if reqErr.Err != nil {
			return reqErr.Err.Error()
		}
		return reqErr.Reason
	}
	return err.Error()
}
