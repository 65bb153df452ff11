package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config; initAuth fills
	// it in before the server registers any route.
	appJWTConfig middleware.JWTConfig

	signingKey         []byte
	jwtExpirationDelta time.Duration
	tokenIssuer        string

	contextUserKey = "user"
)

func initAuth(conf *core.Config) {
	signingKey = []byte(conf.SecretKey)
	jwtExpirationDelta = conf.Server.JWTExpirationDelta
	tokenIssuer = conf.AppName
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    signingKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	IsOwner bool   `json:"is_owner,omitempty"`
	// Impersonator is the admin's user ID when this session was minted by
	// the impersonation endpoint.
	Impersonator string `json:"impersonator,omitempty"`
}

func GetUserClaims(usr user.User, impersonator ...string) *Claims {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    tokenIssuer,
			Subject:   usr.ID,
			ExpiresAt: now.Add(jwtExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:    usr.Name,
		Email:   usr.Email,
		Role:    usr.Role,
		IsAdmin: usr.IsAdmin,
		IsOwner: usr.IsOwner,
	}
	if len(impersonator) > 0 {
		claims.Impersonator = impersonator[0]
	}
	return claims
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type authApi struct {
	svc      user.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.Service, validate *validator.Validate) {
	api := authApi{svc: svc, validate: validate}

	g.POST("/login", api.login)

	// impersonation changes the caller's authenticated identity; the client
	// must treat success as a full context reset
	ag := g.Group("/admin", jwt, adminMiddleware(svc))
	ag.POST("/impersonate", api.impersonate)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	if usr.IsDisabled {
		return errAccountDisabled
	}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, AuthResponse{User: usr, Token: token})
}

func (api *authApi) impersonate(ctx echo.Context) error {
	var data ImpersonateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ImpersonateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	target, err := api.svc.Impersonate(ctx.Request().Context(), actor, data.TargetUserID)
	if err != nil {
		return errors.Wrap(err, "impersonating user")
	}

	token, err := GenerateToken(GetUserClaims(target, actor.ID))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, AuthResponse{
		User:    target,
		Token:   token,
		Message: "Successfully impersonating " + target.Name,
	})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	ImpersonateRequest struct {
		TargetUserID string `json:"targetUserId" validate:"required"`
	}

	AuthResponse struct {
		User    user.User `json:"user"`
		Token   string    `json:"token"`
		Message string    `json:"message,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (ir *ImpersonateRequest) Validate(validate *validator.Validate) error {
	ir.TargetUserID = core.CleanString(ir.TargetUserID)
	return validate.Struct(ir)
}
