package handler

import (
	"log"
	"net/http"

	"github.com/blogai/internal/form"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

// ShowOnboarding renders the business profile form shown after signup.
func (a *API) ShowOnboarding(c *gin.Context) {
	a.renderOnboarding(c, http.StatusOK, form.OnboardingForm{Industry: form.DefaultIndustry}, nil)
}

func (a *API) renderOnboarding(c *gin.Context, status int, f form.OnboardingForm, errs form.Errors) {
	a.renderHTML(c, status, "onboarding.html", gin.H{
		"title":      "Set up your business profile",
		"form":       f,
		"errors":     errs,
		"industries": form.Industries(),
	})
}

// SubmitOnboarding stores the business profile and refreshes the session
// profile when the backend returns one.
func (a *API) SubmitOnboarding(c *gin.Context) {
	var f form.OnboardingForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid onboarding form")
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		a.renderOnboarding(c, http.StatusUnprocessableEntity, f, errs)
		return
	}

	profile, err := a.settings.Onboard(session.Context(c), f)
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to save business profile")
		a.renderOnboarding(c, http.StatusBadGateway, f, nil)
		return
	}
	if profile != nil {
		user := session.User{Name: profile.Name, Email: profile.Email}
		if err := a.sessions.Update(c, user); err != nil {
			log.Printf("[AUTH] failed to refresh profile for %s: %v", user.Email, err)
		}
	}

	session.Success(c, "Success!", "Business profile saved!")
	c.Redirect(http.StatusFound, "/dashboard")
}
