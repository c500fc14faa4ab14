package http

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

const unknownCallbackError = "unknown"

// BuildDeepLink appends ?session=<token> or ?error=<message> to base.
func BuildDeepLink(base, sessionToken, errMsg string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	switch {
	case sessionToken != "":
		return base + sep + "session=" + encodeURIComponent(sessionToken)
	case errMsg != "":
		return base + sep + "error=" + encodeURIComponent(errMsg)
	default:
		return base + sep + "error=" + unknownCallbackError
	}
}

// encodeURIComponent escapes spaces as %20, which app link parsers expect.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

type redirectPageData struct {
	Success  bool
	Error    string
	DeepLink template.URL
}

var redirectPageTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{if .Success}}Connected{{else}}Error{{end}} | Luma</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      display: flex;
      align-items: center;
      justify-content: center;
      min-height: 100vh;
      margin: 0;
      background: linear-gradient(135deg, #1E1E1E 0%, #2A2A2A 100%);
      color: white;
      padding: 20px;
    }
    .container { text-align: center; max-width: 400px; }
    .spinner {
      width: 50px;
      height: 50px;
      margin: 20px auto;
      border: 4px solid #444;
      border-top-color: #FC2652;
      border-radius: 50%;
      animation: spin 1s linear infinite;
    }
    @keyframes spin { to { transform: rotate(360deg); } }
    h1 { font-size: 24px; margin-bottom: 10px; }
    h1.ok { color: #4CAF50; }
    h1.failed { color: #FF5252; }
    p { color: #999; font-size: 16px; margin-bottom: 30px; }
    .button {
      display: none;
      margin-top: 20px;
      padding: 14px 32px;
      background: #FC2652;
      color: white;
      border-radius: 24px;
      font-size: 16px;
      font-weight: 600;
      text-decoration: none;
    }
    .error-message {
      background: rgba(255, 82, 82, 0.1);
      border: 1px solid #FF5252;
      border-radius: 12px;
      padding: 16px;
      margin-top: 20px;
      font-size: 14px;
      color: #FF8A80;
    }
  </style>
</head>
<body>
  <div class="container">
{{- if .Success}}
    <h1 class="ok">TikTok connected</h1>
    <p>Returning to the Luma app...</p>
    <div class="spinner"></div>
{{- else}}
    <h1 class="failed">Connection failed</h1>
    <p>Something went wrong while connecting your TikTok account.</p>
    {{- if .Error}}
    <div class="error-message">{{.Error}}</div>
    {{- end}}
{{- end}}
    <a href="{{.DeepLink}}" class="button" id="manualLink">Open Luma</a>
  </div>
  <script>
    setTimeout(function() {
      window.location.href = {{.DeepLink}};
    }, 500);
    setTimeout(function() {
      document.getElementById('manualLink').style.display = 'inline-block';
    }, 3000);
  </script>
</body>
</html>
`))

// RenderRedirectPage returns the HTML page that hands control back to the app.
func RenderRedirectPage(deepLinkBase, sessionToken, errMsg string) ([]byte, error) {
	data := redirectPageData{
		Success:  sessionToken != "",
		Error:    errMsg,
		DeepLink: template.URL(BuildDeepLink(deepLinkBase, sessionToken, errMsg)),
	}
	var buf bytes.Buffer
	if err := redirectPageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
