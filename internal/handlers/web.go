package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"youtube-summarizer/internal/config"
	"youtube-summarizer/internal/fetch"
	"youtube-summarizer/internal/pipeline"
)

// indexData feeds the form template. Error is set when a previous
// submission failed so the form re-renders with the inputs intact.
type indexData struct {
	URL       string
	ModelPath string
	SampleURL string
	Error     string
}

// resultData feeds the result template.
type resultData struct {
	URL              string
	VideoID          string
	Title            string
	Duration         string
	Summary          string
	Transcript       string
	Warnings         []string
	CachedTranscript bool
	CachedSummary    bool
	Elapsed          string
}

// indexHandler renders the summarization form
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, indexData{
		URL:       config.DefaultSampleURL,
		ModelPath: s.config.ModelPath,
		SampleURL: config.DefaultSampleURL,
	})
}

// formSummarizeHandler handles the form submission and renders the result
func (s *Server) formSummarizeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	url := r.FormValue("url")
	modelPath := r.FormValue("model_path")

	data := indexData{
		URL:       url,
		ModelPath: modelPath,
		SampleURL: config.DefaultSampleURL,
	}

	if url == "" {
		data.Error = "Please enter a YouTube video URL."
		s.renderIndex(w, data)
		return
	}
	if _, err := fetch.ParseVideoID(url); err != nil {
		data.Error = fmt.Sprintf("That does not look like a YouTube video URL: %v", err)
		s.renderIndex(w, data)
		return
	}

	runner, err := s.runnerFor(modelPath)
	if err != nil {
		data.Error = err.Error()
		s.renderIndex(w, data)
		return
	}

	result, err := runner.Run(r.Context(), url)
	if err != nil {
		data.Error = err.Error()
		s.renderIndex(w, data)
		return
	}

	s.notifyCompleted(result)

	s.render(w, resultTemplate, resultData{
		URL:              result.URL,
		VideoID:          result.VideoID,
		Title:            result.Title,
		Duration:         formatDuration(result.Duration),
		Summary:          result.Summary,
		Transcript:       result.Transcript,
		Warnings:         result.Warnings,
		CachedTranscript: result.CachedTranscript,
		CachedSummary:    result.CachedSummary,
		Elapsed:          formatElapsed(result),
	})
}

func formatElapsed(result *pipeline.SummaryResult) string {
	return fmt.Sprintf("%.1fs", result.Elapsed.Seconds())
}

// formatDuration renders video length as m:ss, empty when unknown.
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (s *Server) renderIndex(w http.ResponseWriter, data indexData) {
	s.render(w, indexTemplate, data)
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		log.Printf("Error rendering template: %v", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>YouTube Video Summarizer</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; padding: 0 1em; color: #222; }
input[type=text] { width: 100%; padding: 0.5em; margin: 0.25em 0 1em; box-sizing: border-box; }
button { padding: 0.6em 1.5em; font-size: 1em; cursor: pointer; }
.error { background: #fdd; border: 1px solid #c00; padding: 0.75em; margin-bottom: 1em; }
.about { margin-top: 3em; font-size: 0.9em; color: #555; border-top: 1px solid #ddd; padding-top: 1em; }
label { font-weight: bold; }
</style>
</head>
<body>
<h1>YouTube Video Summarizer</h1>
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
<form method="POST" action="/summarize">
<label for="url">Video URL</label>
<input type="text" id="url" name="url" value="{{.URL}}" placeholder="{{.SampleURL}}">
<label for="model_path">Model path (GGUF)</label>
<input type="text" id="model_path" name="model_path" value="{{.ModelPath}}">
<button type="submit">Summarize</button>
</form>
<p>Summarization downloads the audio track, transcribes it locally and
condenses the transcript with a local language model. Long videos take
several minutes.</p>
<div class="about">
<h2>About</h2>
<p>Everything runs on this machine: audio is fetched with yt-dlp,
transcribed with whisper.cpp and summarized with llama.cpp. No video
content leaves the server.</p>
</div>
</body>
</html>
`))

var resultTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Summary — {{if .Title}}{{.Title}}{{else}}{{.URL}}{{end}}</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; padding: 0 1em; color: #222; }
iframe { width: 100%; aspect-ratio: 16 / 9; border: 0; }
.summary { background: #f6f6f6; padding: 1em; white-space: pre-wrap; }
.meta { color: #555; font-size: 0.9em; }
.warning { background: #ffefc4; border: 1px solid #d4a017; padding: 0.5em 0.75em; margin: 0.5em 0; font-size: 0.9em; }
details { margin-top: 1.5em; }
details pre { white-space: pre-wrap; background: #f6f6f6; padding: 1em; }
a { color: #06c; }
</style>
</head>
<body>
<h1>{{if .Title}}{{.Title}}{{else}}Summary{{end}}</h1>
{{if .VideoID}}<iframe src="https://www.youtube.com/embed/{{.VideoID}}" allowfullscreen></iframe>{{end}}
<p class="meta">{{if .Duration}}Video length {{.Duration}}. {{end}}Completed in {{.Elapsed}}{{if .CachedSummary}} (summary served from cache){{else if .CachedTranscript}} (transcript served from cache){{end}}.</p>
{{range .Warnings}}<div class="warning">{{.}}</div>{{end}}
<h2>Summary</h2>
<div class="summary">{{.Summary}}</div>
<details>
<summary>Full transcript</summary>
<pre>{{.Transcript}}</pre>
</details>
<p><a href="/">Summarize another video</a></p>
</body>
</html>
`))
