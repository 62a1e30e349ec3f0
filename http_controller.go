package signin

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-signin/middleware/sessionware"
)

type Controller struct {
	Logger   Logger
	Auther   Authenticator
	Profiles Profiles
	Config   Config
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = logger
		return c
	}
}

func WithAuthenticator(auther Authenticator) ControllerOption {
	return func(c *Controller) *Controller {
		c.Auther = auther
		return c
	}
}

func WithProfiles(profiles Profiles) ControllerOption {
	return func(c *Controller) *Controller {
		c.Profiles = profiles
		return c
	}
}

func WithConfig(cfg Config) ControllerOption {
	return func(c *Controller) *Controller {
		c.Config = cfg
		return c
	}
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in signin controller...")
	}

	if c.Profiles == nil {
		panic("Missing Profiles in signin controller...")
	}

	if c.Config == nil {
		panic("Missing Config in signin controller...")
	}

	return c
}

// RegisterRoutes mounts the HTTP surface on the app. Session gated
// routes run behind the token middleware.
func RegisterRoutes(app fiber.Router, opts ...ControllerOption) *Controller {
	controller := NewController(opts...)
	protected := controller.SessionMiddleware()

	app.Post("/auth/google", controller.AuthGoogle)
	app.Post("/auth/signout", protected, controller.SignOut)

	app.Get("/profile", protected, controller.ProfileShow)
	app.Put("/profile", protected, controller.ProfileUpdate)
	app.Delete("/profile", protected, controller.ProfileDeactivate)

	app.Get("/exists", controller.EmailExists)

	return controller
}

// SessionMiddleware builds the token gate for protected routes.
func (a *Controller) SessionMiddleware() fiber.Handler {
	return sessionware.New(sessionware.Config{
		TokenValidator: sessionValidator{auther: a.Auther},
		ContextKey:     a.Config.GetContextKey(),
		TokenLookup:    a.Config.GetTokenLookup(),
		AuthScheme:     a.Config.GetAuthScheme(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var richErr *errors.Error
			if !errors.As(err, &richErr) {
				richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
					WithCode(errors.CodeUnauthorized)
			}
			return RespondError(c, richErr)
		},
	})
}

// GoogleAuthRequest payload
type GoogleAuthRequest struct {
	IDToken string `json:"idToken"`
}

// Validate will run validation rules
func (r GoogleAuthRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.IDToken,
			validation.Required,
		),
	)
}

// AuthGoogle exchanges a Google ID token for a session token and the
// profile view it is bound to.
func (a *Controller) AuthGoogle(c *fiber.Ctx) error {
	payload := new(GoogleAuthRequest)

	if err := c.BodyParser(payload); err != nil {
		return RespondError(c, errors.Wrap(err, errors.CategoryValidation, "Invalid request payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, errors.Wrap(err, errors.CategoryValidation, "idToken is required").
			WithCode(errors.CodeBadRequest))
	}

	result, err := a.Auther.Authenticate(c.Context(), payload.IDToken)
	if err != nil {
		a.Logger.Error("AuthGoogle authentication error", "error", err)

		// A duplicate email mid authentication surfaces as an auth
		// failure on this path, not a conflict.
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict {
			return RespondError(c, richErr.Clone().WithCode(errors.CodeUnauthorized))
		}

		return RespondError(c, err)
	}

	return RespondData(c, fiber.StatusOK, "authenticated", fiber.Map{
		"user":  result.User.View(),
		"token": result.Token,
	})
}

// SignOut is stateless by design: tokens carry their own expiry and no
// session table exists, so there is nothing to revoke server side.
func (a *Controller) SignOut(c *fiber.Ctx) error {
	return RespondData(c, fiber.StatusOK, "signed out", nil)
}

// ProfileShow returns the profile the session references.
func (a *Controller) ProfileShow(c *fiber.Ctx) error {
	claims, err := a.sessionClaims(c)
	if err != nil {
		return RespondError(c, err)
	}

	view, err := a.Profiles.Get(c.Context(), claims)
	if err != nil {
		return RespondError(c, err)
	}

	return RespondData(c, fiber.StatusOK, "profile", view)
}

// UpdateProfileRequest payload. Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Picture  *string `json:"picture"`
	IsActive *bool   `json:"isActive"`
}

// Validate will run validation rules
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, MaxNameLength),
		),
		validation.Field(
			&r.Picture,
			is.URL,
		),
	)
}

// ProfileUpdate applies a partial update to the session's profile.
func (a *Controller) ProfileUpdate(c *fiber.Ctx) error {
	claims, err := a.sessionClaims(c)
	if err != nil {
		return RespondError(c, err)
	}

	payload := new(UpdateProfileRequest)
	if err := c.BodyParser(payload); err != nil {
		return RespondError(c, errors.Wrap(err, errors.CategoryValidation, "Invalid request payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RespondError(c, errors.Wrap(err, errors.CategoryValidation, "Invalid profile update").
			WithCode(errors.CodeBadRequest))
	}

	view, err := a.Profiles.Update(c.Context(), claims, ProfileUpdate{
		Name:    payload.Name,
		Picture: payload.Picture,
		Active:  payload.IsActive,
	})
	if err != nil {
		return RespondError(c, err)
	}

	return RespondData(c, fiber.StatusOK, "profile updated", view)
}

// ProfileDeactivate logically deletes the session's profile.
func (a *Controller) ProfileDeactivate(c *fiber.Ctx) error {
	claims, err := a.sessionClaims(c)
	if err != nil {
		return RespondError(c, err)
	}

	if err := a.Profiles.Deactivate(c.Context(), claims); err != nil {
		return RespondError(c, err)
	}

	return RespondData(c, fiber.StatusOK, "profile deactivated", nil)
}

// EmailExists reports whether an active account claims the email.
func (a *Controller) EmailExists(c *fiber.Ctx) error {
	email := c.Query("email")

	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return RespondError(c, errors.Wrap(err, errors.CategoryValidation, "a valid email query param is required").
			WithCode(errors.CodeBadRequest))
	}

	exists, err := a.Profiles.EmailExists(c.Context(), email)
	if err != nil {
		return RespondError(c, err)
	}

	return RespondData(c, fiber.StatusOK, "email checked", fiber.Map{
		"exists": exists,
	})
}

func (a *Controller) sessionClaims(c *fiber.Ctx) (AuthClaims, error) {
	claims, ok := c.Locals(a.Config.GetContextKey()).(AuthClaims)
	if !ok || claims == nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// sessionValidator bridges the Authenticator into the middleware's
// validator interface.
type sessionValidator struct {
	auther Authenticator
}

func (v sessionValidator) Validate(tokenString string) (sessionware.AuthClaims, error) {
	claims, err := v.auther.SessionFromToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
