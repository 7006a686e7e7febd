package handler

import (
	"log"
	"net/http"

	"github.com/blogai/internal/form"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

// ShowLanding renders the public home page.
func (a *API) ShowLanding(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "landing.html", gin.H{
		"title": "BlogAI - AI-powered blog writing",
	})
}

// ShowLogin renders the login form.
func (a *API) ShowLogin(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Log in",
		"form":  form.LoginForm{},
	})
}

// Login exchanges the credentials for a backend token and starts the session.
func (a *API) Login(c *gin.Context) {
	var f form.LoginForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login form")
		return
	}
	render := func(status int, errs form.Errors) {
		f.Password = ""
		a.renderHTML(c, status, "login.html", gin.H{
			"title":  "Log in",
			"form":   f,
			"errors": errs,
		})
	}

	if errs := f.Validate(); !errs.Empty() {
		render(http.StatusUnprocessableEntity, errs)
		return
	}

	key := "login:" + c.ClientIP()
	if !a.logins.Check(key) {
		session.Failure(c, "Login failed", service.ErrTooManyLoginTrials.Error())
		render(http.StatusTooManyRequests, nil)
		return
	}

	result, err := a.auth.Login(c.Request.Context(), f)
	if err != nil {
		a.logins.Record(key)
		notifyFailure(c, "Login failed", err, "Invalid email or password.")
		render(http.StatusUnauthorized, nil)
		return
	}
	a.logins.Reset(key)

	if err := a.startSession(c, result); err != nil {
		session.Failure(c, "Login failed", "Could not save your session. Please try again.")
		render(http.StatusInternalServerError, nil)
		return
	}
	session.Success(c, "Welcome back!", "You have successfully logged in.")
	c.Redirect(http.StatusFound, "/dashboard")
}

// ShowSignup renders the signup form.
func (a *API) ShowSignup(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "signup.html", gin.H{
		"title": "Create your account",
		"form":  form.SignupForm{},
	})
}

// Signup creates the account and continues to onboarding.
func (a *API) Signup(c *gin.Context) {
	var f form.SignupForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid signup form")
		return
	}
	render := func(status int, errs form.Errors) {
		f.Password = ""
		a.renderHTML(c, status, "signup.html", gin.H{
			"title":  "Create your account",
			"form":   f,
			"errors": errs,
		})
	}

	if errs := f.Validate(); !errs.Empty() {
		render(http.StatusUnprocessableEntity, errs)
		return
	}

	result, err := a.auth.Signup(c.Request.Context(), f)
	if err != nil {
		notifyFailure(c, "Signup failed", err, "Could not create your account. Please try again.")
		render(http.StatusBadGateway, nil)
		return
	}
	if err := a.startSession(c, result); err != nil {
		session.Failure(c, "Signup failed", "Could not save your session. Please try again.")
		render(http.StatusInternalServerError, nil)
		return
	}
	session.Success(c, "Account created!", "Tell us about your business to get started.")
	c.Redirect(http.StatusFound, "/onboarding")
}

func (a *API) startSession(c *gin.Context, result *service.AuthResult) error {
	user := session.User{Name: result.User.Name, Email: result.User.Email}
	if err := a.sessions.Start(c, user, result.Token); err != nil {
		log.Printf("[AUTH] failed to start session for %s: %v", user.Email, err)
		return err
	}
	return nil
}

// Logout tells the backend, clears the session and returns to the login page.
func (a *API) Logout(c *gin.Context) {
	a.auth.Logout(session.Context(c))
	if err := a.sessions.Clear(c); err != nil {
		log.Printf("[AUTH] failed to clear session: %v", err)
	}
	session.Success(c, "Logged out", "See you soon.")
	c.Redirect(http.StatusFound, "/login")
}
