package app

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "admin_token"

// adminToken returns the session token of the request, from the cookie or a Bearer header.
func adminToken(ctx *gin.Context) string {
	if h := ctx.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	token, _ := ctx.Cookie(sessionCookie)
	return token
}

func (app *App) isAdmin(ctx *gin.Context) bool {
	return app.sessions.Valid(adminToken(ctx))
}

// requireAdmin redirects visitors without a valid session to the login page.
func (app *App) requireAdmin(ctx *gin.Context) {
	if !app.isAdmin(ctx) {
		ctx.Redirect(http.StatusSeeOther, "/login")
		ctx.Abort()
		return
	}
	ctx.Next()
}

// requireAdminAPI rejects API calls without a valid session.
func (app *App) requireAdminAPI(ctx *gin.Context) {
	if !app.isAdmin(ctx) {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx.Next()
}

func (app *App) checkCredentials(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(email)), []byte(app.config.AdminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(app.config.AdminPassword)) == 1
	return emailOK && passwordOK
}

type loginPageData struct {
	Title string
	Email string
	Error string
}

func (app *App) loginPageHandler(ctx *gin.Context, _ *slog.Logger) (any, error) {
	if app.isAdmin(ctx) {
		return redirectTo("/admin-dashboard"), nil
	}
	return loginPageData{Title: "Admin Login"}, nil
}

type loginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (app *App) loginSubmitHandler(ctx *gin.Context, logger *slog.Logger) (any, error) {
	var form loginForm
	if err := ctx.ShouldBind(&form); err != nil {
		return nil, badRequest(err)
	}
	if !app.checkCredentials(form.Email, form.Password) {
		logger.Warn("Failed admin login", "email", form.Email)
		ctx.Status(http.StatusUnauthorized)
		return loginPageData{
			Title: "Admin Login",
			Email: form.Email,
			Error: "Invalid credentials",
		}, nil
	}
	token := app.sessions.Create()
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(sessionCookie, token, int(app.config.SessionTTL.Seconds()), "/", "", false, true)
	logger.Info("Admin logged in")
	return redirectTo("/admin-dashboard"), nil
}

func (app *App) logoutAction(ctx *gin.Context, logger *slog.Logger) (string, error) {
	app.sessions.Revoke(adminToken(ctx))
	ctx.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	logger.Info("Admin logged out")
	return "/", nil
}

// apiLoginHandler issues a token for API clients.
func (app *App) apiLoginHandler(ctx *gin.Context) {
	var form loginForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !app.checkCredentials(form.Email, form.Password) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": app.sessions.Create()})
}
