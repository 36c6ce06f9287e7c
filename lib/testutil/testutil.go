package testutil

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"

	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/telemetry"
)

const (
	FakeEmail    = "someone@example.com"
	FakePassword = "hunter2"

	loginToken   = "login-token"
	uploadToken  = "upload-token"
	sessionValue = "fake-session"
)

type FakeFile struct {
	Data []byte
	// no Content-Type header is sent when empty
	ContentType string
	Token       string
	Folder      bool
}

// FakeDropbox serves the subset of the web UI that the client scrapes.
type FakeDropbox struct {
	Server *httptest.Server

	mu       sync.Mutex
	dirs     map[string]map[string]FakeFile
	counter  int
	requests []string
}

// Setup enables test telemetry for `name` and returns the cleanup function.
func Setup(t testing.TB, name string) func() {
	return telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", name))
}

func NewFakeDropbox(t testing.TB) *FakeDropbox {
	f := &FakeDropbox{
		dirs: map[string]map[string]FakeFile{"/": {}},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeDropbox) Endpoints() core.Endpoints {
	return core.Endpoints{
		Login:        f.Server.URL + "/login",
		Home:         f.Server.URL + "/home",
		Listing:      f.Server.URL + "/browse_plain",
		Content:      f.Server.URL + "/get",
		Upload:       f.Server.URL + "/upload",
		HomeLocation: "/home",
	}
}

func (f *FakeDropbox) ClientOptions() core.ClientOptions {
	return core.ClientOptions{
		Email:     FakeEmail,
		Password:  FakePassword,
		Endpoints: f.Endpoints(),
	}
}

func (f *FakeDropbox) ensureDir(dir string) map[string]FakeFile {
	dir = core.CleanPath(dir)
	entries, ok := f.dirs[dir]
	if ok {
		return entries
	}
	entries = map[string]FakeFile{}
	f.dirs[dir] = entries
	if dir != "/" {
		parent := f.ensureDir(path.Dir(dir))
		parent[path.Base(dir)] = FakeFile{Folder: true}
	}
	return entries
}

// AddFile stores a file and returns its download token.
func (f *FakeDropbox) AddFile(dir, name string, data []byte, contentType string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counter++
	token := fmt.Sprintf("w%04d", f.counter)
	f.ensureDir(dir)[name] = FakeFile{
		Data:        data,
		ContentType: contentType,
		Token:       token,
	}
	return token
}

func (f *FakeDropbox) File(dir, name string) (FakeFile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.dirs[core.CleanPath(dir)][name]
	return file, ok
}

// Requests returns "METHOD /path" for every request served so far.
func (f *FakeDropbox) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *FakeDropbox) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie("jar")
	return err == nil && cookie.Value == sessionValue
}

func (f *FakeDropbox) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch {
	case r.URL.Path == "/login":
		f.serveLogin(w, r)
	case r.URL.Path == "/home":
		f.serveHome(w, r)
	case r.URL.Path == "/upload":
		f.serveUpload(w, r)
	case strings.HasPrefix(r.URL.Path, "/browse_plain"):
		f.serveListing(w, r, strings.TrimPrefix(r.URL.Path, "/browse_plain"))
	case strings.HasPrefix(r.URL.Path, "/get"):
		f.serveContent(w, r, strings.TrimPrefix(r.URL.Path, "/get"))
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeDropbox) serveLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost &&
		r.FormValue("login_email") == FakeEmail &&
		r.FormValue("login_password") == FakePassword &&
		r.FormValue("t") == loginToken {
		http.SetCookie(w, &http.Cookie{Name: "jar", Value: sessionValue, Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "lid", Value: "anonymous", Path: "/"})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html><body>
<form action="/search"><input type="hidden" name="t" value="not-this-one"></form>
<form method="post" action="%s/login" id="login">
	<input type="hidden" name="t" value="%s">
	<input type="text" name="login_email">
	<input type="password" name="login_password">
</form>
</body></html>`, f.Server.URL, loginToken)
}

func (f *FakeDropbox) serveHome(w http.ResponseWriter, r *http.Request) {
	if !f.authenticated(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html><body>
<form action="%s/upload" method="post" enctype="multipart/form-data">
	<input type="hidden" name="plain" value="yes">
	<input type="hidden" name="t" value="%s">
	<input type="hidden" name="dest" value="">
	<input type="file" name="file">
</form>
</body></html>`, f.Server.URL, uploadToken)
}

func (f *FakeDropbox) serveUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !f.authenticated(r) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	err := r.ParseMultipartForm(32 << 20)
	if err != nil || r.FormValue("t") != uploadToken || r.FormValue("plain") != "yes" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	f.counter++
	f.ensureDir(r.FormValue("dest"))[header.Filename] = FakeFile{
		Data:  data,
		Token: fmt.Sprintf("w%04d", f.counter),
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (f *FakeDropbox) serveListing(w http.ResponseWriter, r *http.Request, dir string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !f.authenticated(r) {
		fmt.Fprint(w, `<html><body><a href="/login">Log in</a></body></html>`)
		return
	}

	dir = core.CleanPath(dir)
	entries := f.dirs[dir]
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(`<html><body><div id="browse-files">`)
	if dir != "/" {
		fmt.Fprintf(
			&sb,
			`<div class="browse-file-box-details"><div class="details-icon"><img class="sprite s_folder_up"></div>`+
				`<div class="details-filename"><a href="%s/browse_plain%s?no_js=true">Parent folder</a></div></div>`,
			f.Server.URL, escapePath(path.Dir(dir)),
		)
	}
	for _, name := range names {
		entry := entries[name]
		full := path.Join(dir, name)
		icon := "page_white"
		href := fmt.Sprintf("%s/get%s?w=%s", f.Server.URL, escapePath(full), entry.Token)
		size := fmt.Sprintf("%d bytes", len(entry.Data))
		if entry.Folder {
			icon = "folder"
			href = fmt.Sprintf("%s/browse_plain%s?no_js=true", f.Server.URL, escapePath(full))
			size = "--"
		}
		fmt.Fprintf(
			&sb,
			`<div class="browse-file-box-details">`+
				`<div class="details-icon"><img src="/static/spacer.gif" class="sprite s_%s"></div>`+
				`<div class="details-filename"><a href="%s">%s</a></div>`+
				`<div class="details-size">%s</div>`+
				`<div class="details-modified">1 min ago</div>`+
				`</div>`,
			icon, href, html.EscapeString(name), size,
		)
	}
	sb.WriteString(`</div></body></html>`)
	fmt.Fprint(w, sb.String())
}

func (f *FakeDropbox) serveContent(w http.ResponseWriter, r *http.Request, fullPath string) {
	fullPath = core.CleanPath(fullPath)
	entry, ok := f.dirs[path.Dir(fullPath)][path.Base(fullPath)]
	if !ok || entry.Folder || entry.Token != r.URL.Query().Get("w") {
		http.NotFound(w, r)
		return
	}
	if entry.ContentType == "" {
		// stops net/http from sniffing one
		w.Header()["Content-Type"] = nil
	} else {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	w.Write(entry.Data)
}
