package editor

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	videoLinePattern = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s]+)>?\s*$`)
	videoTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`)
	listIndexPattern = regexp.MustCompile(`^\d+\.\s+`)
)

// applyVideoEmbeds replaces lines holding only a YouTube link with an iframe.
// Fenced and indented code, quotes and list items are left alone.
func applyVideoEmbeds(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || skipEmbedLine(line, trimmed) {
			continue
		}

		match := videoLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		embedURL, ok := youtubeEmbedURL(match[1])
		if !ok {
			continue
		}
		lines[i] = fmt.Sprintf(
			`<div class="video-embed" data-video-embed="youtube"><iframe src="%s" title="YouTube video" loading="lazy" allowfullscreen></iframe></div>`,
			html.EscapeString(embedURL),
		)
	}
	return strings.Join(lines, "\n")
}

func fenceMarker(line string) string {
	switch {
	case strings.HasPrefix(line, "```"):
		return "```"
	case strings.HasPrefix(line, "~~~"):
		return "~~~"
	}
	return ""
}

func skipEmbedLine(line, trimmed string) bool {
	if trimmed == "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return true
	}
	if strings.HasPrefix(trimmed, ">") {
		return true
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		return true
	}
	return listIndexPattern.MatchString(trimmed)
}

func youtubeEmbedURL(raw string) (string, bool) {
	raw = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "<"), ">")
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		for _, prefix := range []string{"youtube.com/", "www.youtube.com/", "youtu.be/"} {
			if strings.HasPrefix(lower, prefix) {
				raw = "https://" + raw
				break
			}
		}
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		path := strings.Trim(u.Path, "/")
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			id = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			id = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "live/"):
			id = strings.TrimPrefix(path, "live/")
		}
	default:
		return "", false
	}
	if i := strings.Index(id, "/"); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("modestbranding", "1")
	if start := youtubeStart(u.Query()); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id) + "?" + values.Encode(), true
}

// youtubeStart reads `start` or `t`, in seconds or the 1h2m3s form.
func youtubeStart(query url.Values) int {
	value := strings.TrimSpace(query.Get("start"))
	if value == "" {
		value = strings.TrimSpace(query.Get("t"))
	}
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(strings.TrimSuffix(value, "s")); err == nil {
		return seconds
	}
	total := 0
	for _, m := range videoTimePattern.FindAllStringSubmatch(value, -1) {
		n, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		default:
			total += n
		}
	}
	return total
}
