package auth

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

var page = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
  <head><title>acc-docs-sync</title></head>
  <body>
    {{if .OK}}<h3>Sign-in complete</h3><p>You can close this window and return to acc-docs-sync.</p>
    {{else}}<h3>Sign-in failed</h3><p>{{.Message}}</p>{{end}}
  </body>
</html>
`))

type reply struct {
	code string
	err  error
}

// callback is a single-use loopback listener for the authorization redirect. Only
// the first request to the redirect path is delivered; later requests still get
// a page.
type callback struct {
	srv    *http.Server
	addr   string
	result chan reply
	once   sync.Once
}

func listen(redirect, state string) (*callback, error) {
	u, err := url.Parse(redirect)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %v (%w)", redirect, err)
	}

	if u.Scheme != "http" || u.Host == "" {
		return nil, fmt.Errorf("invalid redirect URI %v (expected http://<loopback address>:<port>/...)", redirect)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %v (%w)", u.Host, err)
	}

	cb := callback{
		addr:   ln.Addr().String(),
		result: make(chan reply, 1),
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		cb.handle(w, r, state)
	}

	router := chi.NewRouter()
	router.Get(path, handler)
	if p := strings.TrimSuffix(path, "/"); p != "" && p != path {
		router.Get(p, handler)
	}

	cb.srv = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := cb.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			warnf("callback listener %v", err)
		}
	}()

	return &cb, nil
}

func (cb *callback) handle(w http.ResponseWriter, r *http.Request, state string) {
	q := r.URL.Query()
	rsp := reply{}

	switch {
	case q.Get("error") != "":
		rsp.err = &ProviderError{Code: q.Get("error"), Description: q.Get("error_description")}

	case q.Get("state") != state:
		rsp.err = ErrStateMismatch

	case q.Get("code") == "":
		rsp.err = &ProviderError{Code: "missing_code", Description: "authorization response did not include a code"}

	default:
		rsp.code = q.Get("code")
	}

	var b bytes.Buffer
	content := struct {
		OK      bool
		Message string
	}{
		OK: rsp.err == nil,
	}

	if rsp.err != nil {
		content.Message = rsp.err.Error()
	}

	if err := page.Execute(&b, content); err != nil {
		http.Error(w, "Error formatting page", http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(b.Bytes())
	}

	cb.once.Do(func() {
		cb.result <- rsp
	})
}

func (cb *callback) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cb.srv.Shutdown(ctx); err != nil {
		warnf("callback listener shutdown (%v)", err)
		cb.srv.Close()
	}
}
