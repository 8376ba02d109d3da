package authkit

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPControllerRoutes holds the route paths, relative to the group the
// controller is registered on.
type HTTPControllerRoutes struct {
	Login    string
	Register string
	Refresh  string
	Logout   string
	Session  string
}

// HTTPController exposes the session lifecycle as a JSON API.
type HTTPController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Gate   *Gate
	Routes *HTTPControllerRoutes
}

// HTTPControllerOption mutates the controller during construction.
type HTTPControllerOption func(*HTTPController) *HTTPController

// NewHTTPController builds the controller. Auther and Gate are required.
func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger: defLogger{},
		Routes: &HTTPControllerRoutes{
			Login:    "/login",
			Register: "/register",
			Refresh:  "/refresh",
			Logout:   "/logout",
			Session:  "/session",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Gate == nil {
		panic("Missing Gate in auth controller...")
	}

	return c
}

// WithControllerAuthenticator sets the session engine.
func WithControllerAuthenticator(auther Authenticator) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Auther = auther
		return c
	}
}

// WithControllerGate sets the authorization gate.
func WithControllerGate(gate *Gate) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Gate = gate
		return c
	}
}

// WithControllerLogger sets the logger.
func WithControllerLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerDebug enables request/response dumps.
func WithControllerDebug(debug bool) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Debug = debug
		return c
	}
}

// RegisterRoutes registers the session routes on the given group.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post(c.Routes.Login, c.Login)
	group.Post(c.Routes.Register, c.Register)
	group.Post(c.Routes.Refresh, c.Refresh)
	group.Post(c.Routes.Logout, c.Logout)
	group.Get(c.Routes.Session, c.Session)
}

// Login authenticates an email/password pair. Unknown email and wrong
// password collapse into the same response here so the endpoint cannot be
// used to probe which emails have accounts.
func (c *HTTPController) Login(ctx router.Context) error {
	payload := new(LoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, validationError(err, "invalid login payload"))
	}

	if err := payload.Validate(); err != nil {
		return c.renderError(ctx, validationError(err, "invalid login payload"))
	}

	if c.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(map[string]string{"email": payload.Email}))
		fmt.Println("=========================")
	}

	result, err := c.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		if HasTextCode(err, TextCodeIdentityNotFound) || HasTextCode(err, TextCodeInvalidCredentials) {
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": "invalid email or password",
				"code":  TextCodeInvalidCredentials,
			})
		}
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// Register creates a new identity and returns its first session.
func (c *HTTPController) Register(ctx router.Context) error {
	payload := new(RegisterPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, validationError(err, "invalid registration payload"))
	}

	result, err := c.Auther.Register(ctx.Context(), *payload)
	if err != nil {
		return c.renderError(ctx, err)
	}

	if c.Debug {
		fmt.Println("======= AUTH REGISTER ===")
		fmt.Println(print.MaybePrettyJSON(result.User))
		fmt.Println("=========================")
	}

	return ctx.JSON(router.StatusCreated, result)
}

// RefreshRequest is the refresh and logout payload.
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new access token.
func (c *HTTPController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, validationError(err, "invalid refresh payload"))
	}

	result, err := c.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, result)
}

// Logout revokes the caller's refresh token. The caller is identified by the
// bearer access token; the refresh token to revoke travels in the body.
func (c *HTTPController) Logout(ctx router.Context) error {
	principal := c.principal(ctx)
	if principal == nil {
		return c.unauthorized(ctx)
	}

	payload := new(RefreshRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.renderError(ctx, validationError(err, "invalid logout payload"))
	}

	if err := c.Auther.Logout(ctx.Context(), principal.UserID, payload.RefreshToken); err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "logged_out",
	})
}

// Session resolves the identity behind the bearer access token.
func (c *HTTPController) Session(ctx router.Context) error {
	principal := c.principal(ctx)
	if principal == nil {
		return c.unauthorized(ctx)
	}

	user, err := c.Gate.users.FindByID(ctx.Context(), principal.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.unauthorized(ctx)
		}
		return c.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserSnapshot(user))
}

func (c *HTTPController) principal(ctx router.Context) *Principal {
	return c.Gate.PrincipalFromToken(bearerToken(ctx.GetString(router.HeaderAuthorization, "")))
}

func (c *HTTPController) unauthorized(ctx router.Context) error {
	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": "authentication required",
		"code":  TextCodeTokenInvalid,
	})
}

func (c *HTTPController) renderError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	c.Logger.Info(
		"Request error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	body := map[string]any{
		"error": richErr.Message,
		"code":  richErr.TextCode,
	}

	if verrs, ok := richErr.Source.(validation.Errors); ok {
		body["fields"] = FormatValidationErrorToMap(verrs)
	}

	status := richErr.Code
	if status <= 0 {
		status = router.StatusInternalServerError
	}

	return ctx.JSON(status, body)
}

// bearerToken strips the Bearer scheme from an Authorization header value.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
