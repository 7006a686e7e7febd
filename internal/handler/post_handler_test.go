package handler

import (
	"bytes"
	"errors"
	"html"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/blogai/internal/apiclient"
	"github.com/blogai/internal/form"
	"github.com/blogai/internal/media"
	"github.com/blogai/internal/service"
	"github.com/blogai/internal/session"
)

const postsFixture = `{"posts":[
	{"_id":"p1","title":"Published one","status":"published","content":"hello"},
	{"_id":"p2","title":"Draft one","status":"draft","content":"hello"},
	{"_id":"p3","title":"Draft two","status":"DRAFT","body":"hello"}
]}`

func pngFile(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDashboardShowsStats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("GET /api/posts/user", http.StatusOK, postsFixture)

	rec := env.do(http.MethodGet, "/dashboard", nil, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	name, data := env.html.rendered(t)
	if name != "dashboard.html" {
		t.Fatalf("expected dashboard template, got %s", name)
	}
	stats := data["stats"].(service.PostStats)
	if stats.Total != 3 || stats.Published != 1 || stats.Drafts != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if calls := env.backend.callsTo("GET /api/posts/user"); len(calls) != 1 || calls[0].Token != testToken {
		t.Fatalf("expected the token to be forwarded, got %+v", calls)
	}
}

func TestDashboardLoadFailureNotifies(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("GET /api/posts/user", http.StatusInternalServerError, `{"message":"database offline"}`)

	env.do(http.MethodGet, "/dashboard", nil, true)

	_, data := env.html.rendered(t)
	if data["loadError"] != true {
		t.Fatal("expected the dashboard to flag the load error")
	}
	if !hasNotification(notificationsOf(t, data), session.KindError, "database offline") {
		t.Fatalf("expected backend message, got %+v", data["notifications"])
	}
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("GET /api/posts", http.StatusUnauthorized, `{"message":"jwt expired"}`)

	rec := env.do(http.MethodGet, "/posts", nil, true)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDeletePostRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("DELETE /api/posts/p1", http.StatusOK, `{"success":true}`)

	rec := env.do(http.MethodPost, "/posts/p1/delete", url.Values{"redirect": {"/posts"}}, true)
	if rec.Header().Get("Location") != "/posts" {
		t.Fatalf("expected declined dialog to return to list, got %q", rec.Header().Get("Location"))
	}
	if len(env.backend.callsTo("DELETE /api/posts/p1")) != 0 {
		t.Fatal("declined dialog must not delete")
	}

	rec = env.do(http.MethodPost, "/posts/p1/delete", url.Values{"confirm": {"yes"}, "redirect": {"/posts"}}, true)
	if rec.Header().Get("Location") != "/posts" {
		t.Fatalf("expected redirect to posts, got %q", rec.Header().Get("Location"))
	}
	if len(env.backend.callsTo("DELETE /api/posts/p1")) != 1 {
		t.Fatal("expected confirmed delete to reach the backend")
	}
}

func TestDeletePostIgnoresForeignRedirect(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("DELETE /api/posts/p1", http.StatusOK, `{}`)

	rec := env.do(http.MethodPost, "/posts/p1/delete", url.Values{"confirm": {"yes"}, "redirect": {"//evil.example.com"}}, true)

	if rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected fallback redirect, got %q", rec.Header().Get("Location"))
	}
}

func TestConfirmDeleteRendersDialog(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("GET /api/posts/p2", http.StatusOK, `{"post":{"_id":"p2","title":"Draft one"}}`)

	env.do(http.MethodGet, "/posts/p2/delete?redirect=/posts", nil, true)

	name, data := env.html.rendered(t)
	if name != "post_delete.html" {
		t.Fatalf("expected confirmation dialog, got %s", name)
	}
	if post := data["post"].(*service.Post); post.Title != "Draft one" || data["redirect"] != "/posts" {
		t.Fatalf("unexpected dialog data %+v", data)
	}
	if len(env.backend.callsTo("DELETE /api/posts/p2")) != 0 {
		t.Fatal("showing the dialog must not delete")
	}
}

func TestToggleStatusPatchesPost(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("PATCH /api/posts/p2", http.StatusOK, `{"post":{"_id":"p2","status":"published"}}`)

	rec := env.do(http.MethodPost, "/posts/p2/status", url.Values{"status": {"published"}}, true)

	if rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %q", rec.Header().Get("Location"))
	}
	calls := env.backend.callsTo("PATCH /api/posts/p2")
	if len(calls) != 1 || calls[0].Body["status"] != "published" {
		t.Fatalf("unexpected patch calls %+v", calls)
	}

	env.do(http.MethodPost, "/posts/p2/status", url.Values{"status": {"archived"}}, true)
	if len(env.backend.callsTo("PATCH /api/posts/p2")) != 1 {
		t.Fatal("invalid status must not reach the backend")
	}
}

func TestCreatePostValidationKeepsInput(t *testing.T) {
	env := newTestEnv(t, nil)
	values := validPostForm()
	values.Set("title", "SEO")

	rec := env.do(http.MethodPost, "/write", values, true)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	name, data := env.html.rendered(t)
	if name != "write.html" {
		t.Fatalf("expected write page, got %s", name)
	}
	errs := data["errors"].(form.Errors)
	if !errs.Has("title") {
		t.Fatalf("expected title error, got %+v", errs)
	}
	if f := data["form"].(form.PostForm); f.Tags != "seo, writing" {
		t.Fatalf("expected input to be kept, got %+v", f)
	}
	if len(env.backend.callsTo("POST /api/posts")) != 0 {
		t.Fatal("invalid form must not reach the backend")
	}
}

func TestCreatePostUploadsImageBeforeSaving(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("POST /api/posts", http.StatusCreated, `{"post":{"_id":"new"}}`)
	values := validPostForm()
	values.Set("imagePreview", media.EncodeDataURL("image/png", []byte("png-bytes")))

	rec := env.do(http.MethodPost, "/write", values, true)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if env.uploader.calls != 1 {
		t.Fatalf("expected one upload, got %d", env.uploader.calls)
	}
	calls := env.backend.callsTo("POST /api/posts")
	if len(calls) != 1 {
		t.Fatalf("expected one create call, got %d", len(calls))
	}
	if calls[0].Body["featuredImage"] != env.uploader.url {
		t.Fatalf("expected uploaded url to be saved, got %v", calls[0].Body["featuredImage"])
	}
	if calls[0].Body["slug"] != "ten-practical-seo-tips" {
		t.Fatalf("expected slug derived from title, got %v", calls[0].Body["slug"])
	}
}

func TestCreatePostUploadFailureAbortsSave(t *testing.T) {
	env := newTestEnv(t, nil)
	env.useTemplates(t)
	env.uploader.err = errors.New("network down")
	env.backend.handle("POST /api/posts", http.StatusCreated, `{"post":{"_id":"new"}}`)
	pending := media.EncodeDataURL("image/png", []byte("png-bytes"))
	values := validPostForm()
	values.Set("imagePreview", pending)

	rec := env.do(http.MethodPost, "/write", values, true)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if len(env.backend.callsTo("POST /api/posts")) != 0 {
		t.Fatal("a failed upload must abort the save")
	}
	body := rec.Body.String()
	if !strings.Contains(body, `value="Ten Practical SEO Tips"`) {
		t.Fatal("expected the title to be kept")
	}
	if !strings.Contains(body, `<input type="hidden" name="imagePreview" value="`+pending+`">`) {
		t.Fatalf("expected the pending image to be resubmittable, got %s", body)
	}
	if !strings.Contains(body, "Failed to upload image") {
		t.Fatal("expected the upload failure toast")
	}
}

func TestCreatePostValidationKeepsAttachedImage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.useTemplates(t)
	file := pngFile(t, 40, 20)
	values := validPostForm()
	values.Set("title", "Hey")

	rec := env.doMultipart(t, "/write", values, "cover.png", file)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if env.uploader.calls != 0 {
		t.Fatal("an invalid form must not upload")
	}
	want := `<input type="hidden" name="imagePreview" value="` + media.EncodeDataURL("image/png", file) + `">`
	if !strings.Contains(html.UnescapeString(rec.Body.String()), want) {
		t.Fatal("expected the attached file to survive the re-render")
	}
}

func TestSavePostDetailFailureKeepsPendingImage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.useTemplates(t)
	env.uploader.err = errors.New("network down")
	pending := media.EncodeDataURL("image/png", []byte("png-bytes"))
	values := validPostForm()
	values.Set("imagePreview", pending)
	values.Set("featuredImage", "https://cdn.example.com/old.png")

	rec := env.do(http.MethodPost, "/posts/p2", values, true)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if len(env.backend.callsTo("PATCH /api/posts/p2")) != 0 {
		t.Fatal("a failed upload must abort the save")
	}
	if !strings.Contains(rec.Body.String(), `name="imagePreview" value="`+pending+`"`) {
		t.Fatal("expected the pending image to be kept over the old url")
	}
}

func TestCreatePostUploadsOriginalFile(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("POST /api/posts", http.StatusCreated, `{"post":{"_id":"new"}}`)
	file := pngFile(t, 1600, 100)

	rec := env.doMultipart(t, "/write", validPostForm(), "wide.png", file)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if env.uploader.calls != 1 || !bytes.Equal(env.uploader.data, file) {
		t.Fatalf("expected the selected file to be uploaded unchanged, got %d bytes", len(env.uploader.data))
	}
	if env.uploader.name != "image.png" {
		t.Fatalf("expected png upload name, got %q", env.uploader.name)
	}
}

func TestUpdatePostUsesPut(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("PUT /api/posts/p2", http.StatusOK, `{"post":{"_id":"p2"}}`)

	rec := env.do(http.MethodPost, "/write/p2", validPostForm(), true)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if len(env.backend.callsTo("PUT /api/posts/p2")) != 1 {
		t.Fatal("expected PUT /posts/p2")
	}
}

func TestEditPageLoadsPost(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("GET /api/posts/p2", http.StatusOK, `{"data":{"id":"p2","title":"Draft one","tags":"go,web","status":"draft"}}`)

	env.do(http.MethodGet, "/write/p2", nil, true)

	name, data := env.html.rendered(t)
	if name != "write.html" || data["action"] != "/write/p2" {
		t.Fatalf("unexpected edit page %s %+v", name, data["action"])
	}
	if f := data["form"].(form.PostForm); f.Tags != "go, web" {
		t.Fatalf("expected tags joined for the form, got %q", f.Tags)
	}
}

func TestSavePostDetailPublishes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("PATCH /api/posts/p2", http.StatusOK, `{"post":{"_id":"p2"}}`)
	values := validPostForm()
	values.Set("action", "publish")

	rec := env.do(http.MethodPost, "/posts/p2", values, true)

	if rec.Header().Get("Location") != "/posts/p2" {
		t.Fatalf("expected redirect back to the post, got %q", rec.Header().Get("Location"))
	}
	calls := env.backend.callsTo("PATCH /api/posts/p2")
	if len(calls) != 1 || calls[0].Body["status"] != "published" {
		t.Fatalf("expected publish patch, got %+v", calls)
	}
}

func TestSEOSuggestionsFragment(t *testing.T) {
	env := newTestEnv(t, nil)
	env.backend.handle("GET /api/posts/p1", http.StatusOK, `{"post":{"_id":"p1","title":"Short","content":"<p>tiny</p>","description":"short"}}`)

	req := httptest.NewRequest(http.MethodGet, "/posts/p1/seo", nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(&http.Cookie{Name: apiclient.TokenCookieName, Value: testToken})
	env.router.ServeHTTP(httptest.NewRecorder(), req)

	name, data := env.html.rendered(t)
	if name != "seo_modal.html" {
		t.Fatalf("expected modal fragment, got %s", name)
	}
	suggestions := data["suggestions"].([]service.SEOSuggestion)
	if len(suggestions) != 6 {
		t.Fatalf("expected six checks, got %d", len(suggestions))
	}
}

func TestPreviewImageFragment(t *testing.T) {
	env := newTestEnv(t, nil)

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1200, 600))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("image", "cover.png")
	part.Write(img.Bytes())
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/media/preview", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	name, data := env.html.rendered(t)
	if name != "image_preview.html" {
		t.Fatalf("expected preview fragment, got %s", name)
	}
	preview := data["preview"].(media.Preview)
	if !preview.Resized || preview.Width != 800 || !strings.HasPrefix(preview.DataURL, "data:image/jpeg") {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Original != media.EncodeDataURL("image/png", img.Bytes()) {
		t.Fatal("expected the original file to be carried for upload")
	}
	if env.uploader.calls != 0 {
		t.Fatal("preview must not upload")
	}
}
