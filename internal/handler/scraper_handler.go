package handler

import (
	"net/http"

	"github.com/blogai/internal/editor"
	"github.com/blogai/internal/form"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
	"github.com/gin-gonic/gin"
)

func (a *API) renderScraper(c *gin.Context, status int, data gin.H) {
	payload := gin.H{"title": "Web scraper"}
	for key, value := range data {
		payload[key] = value
	}
	if _, ok := payload["form"]; !ok {
		payload["form"] = form.DefaultScrapeForm()
	}
	a.renderHTML(c, status, "scraper.html", payload)
}

// ShowScraper renders the scrape form with its default options.
func (a *API) ShowScraper(c *gin.Context) {
	a.renderScraper(c, http.StatusOK, nil)
}

// Scrape extracts the page and shows the preview tabs.
func (a *API) Scrape(c *gin.Context) {
	var f form.ScrapeForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid scrape form")
		return
	}
	if errs := f.Validate(); !errs.Empty() {
		a.renderScraper(c, http.StatusUnprocessableEntity, gin.H{"form": f, "errors": errs})
		return
	}

	content, err := a.scraper.Scrape(session.Context(c), f)
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to scrape content. Please check the URL and try again.")
		a.renderScraper(c, http.StatusBadGateway, gin.H{"form": f})
		return
	}

	session.Success(c, "Success", "Content scraped successfully")
	a.renderScraper(c, http.StatusOK, gin.H{
		"form":    f,
		"scraped": content,
		"preview": editor.ToHTML(content.Content),
		"process": form.ProcessForm{Title: content.Title, Content: content.Content},
	})
}

// ProcessScraped sends the scraped content to the AI generator and opens
// the resulting post in the editor.
func (a *API) ProcessScraped(c *gin.Context) {
	var f form.ProcessForm
	if err := c.ShouldBind(&f); err != nil {
		respondError(c, http.StatusBadRequest, "invalid process form")
		return
	}
	scraped := &service.ScrapedContent{
		Title:     f.Title,
		Content:   f.Content,
		SourceURL: c.PostForm("sourceUrl"),
	}
	rerender := func(status int, errs form.Errors) {
		a.renderScraper(c, status, gin.H{
			"scraped":       scraped,
			"preview":       editor.ToHTML(scraped.Content),
			"process":       f,
			"processErrors": errs,
		})
	}

	if errs := f.Validate(); !errs.Empty() {
		rerender(http.StatusUnprocessableEntity, errs)
		return
	}

	postID, err := a.scraper.Process(session.Context(c), f)
	if err != nil {
		if a.backendUnauthorized(c, err) {
			return
		}
		notifyFailure(c, "Error", err, "Failed to process content")
		rerender(http.StatusBadGateway, nil)
		return
	}

	session.Success(c, "Success", "Content processed successfully")
	c.Redirect(http.StatusFound, "/write/"+postID)
}
