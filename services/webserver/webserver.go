package webserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"dbxbridge/lib/scrapers/dropbox/core"
	"dbxbridge/lib/scrapers/dropbox/scrape"
	"dbxbridge/lib/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("dbxbridge/services/webserver")

const NotFoundBody = "Error 404: File Not Found"

var DefaultDocuments = []string{"index.html", "index.htm", "index.php"}

type Remote interface {
	ListFiles(ctx context.Context, dir string) ([]scrape.Entry, error)
	FetchFile(ctx context.Context, path, token string) (core.File, error)
}

type Options struct {
	// remote folder that request paths are relative to, defaults to "/"
	RootFolder string
	// tried in order when the request names a folder or a missing file,
	// defaults to DefaultDocuments
	DefaultDocuments []string
}

// Server serves remote files over HTTP. Requests are handled one at a time
// since the remote client keeps per-session state.
type Server struct {
	remote           Remote
	root             string
	defaultDocuments []string

	lock sync.Mutex
}

func NewServer(remote Remote, opts Options) *Server {
	root := opts.RootFolder
	if root == "" {
		root = "/"
	}
	defaults := opts.DefaultDocuments
	if defaults == nil {
		defaults = DefaultDocuments
	}
	return &Server{
		remote:           remote,
		root:             core.CleanPath(root),
		defaultDocuments: defaults,
	}
}

// Handler returns the routes wrapped with tracing.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", "dbxbridge"))
	r.Get("/*", s.serveFile)
	r.Head("/*", s.serveFile)
	return otelhttp.NewHandler(r, "dbxbridge/webserver")
}

// splitRequest turns "a/b/c.html" into ("a/b", "c.html") and a single
// segment "a" into ("a", "").
func splitRequest(requestPath string) (folder, file string) {
	var segments []string
	for _, s := range strings.Split(requestPath, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	switch len(segments) {
	case 0:
		return "", ""
	case 1:
		return segments[0], ""
	default:
		return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1]
	}
}

func requestPath(r *http.Request) string {
	param := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return param
	}
	unescaped, err := url.PathUnescape(param)
	if err != nil {
		return param
	}
	return unescaped
}

// candidates lists what to serve, in order: the exact file name, then the
// first default document that exists.
func (s *Server) candidates(entries []scrape.Entry, file string) []scrape.Entry {
	available := map[string]scrape.Entry{}
	for _, e := range entries {
		if e.IsFolder() || e.Name == "" {
			continue
		}
		_, seen := available[e.Name]
		if !seen {
			available[e.Name] = e
		}
	}

	var out []scrape.Entry
	if file != "" {
		e, ok := available[file]
		if ok {
			out = append(out, e)
		}
	}
	for _, name := range s.defaultDocuments {
		e, ok := available[name]
		if ok {
			out = append(out, e)
			break
		}
	}
	return out
}

func (s *Server) fetch(ctx context.Context, folder string, entry scrape.Entry) (core.File, bool) {
	file, err := s.remote.FetchFile(ctx, core.JoinPath(folder, entry.Name), entry.Token)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch file", "folder", folder, "name", entry.Name, "err", err)
		return core.File{}, false
	}
	if len(file.Data) == 0 {
		return core.File{}, false
	}
	return file, true
}

func (s *Server) lookup(ctx context.Context, requested string) (core.File, bool) {
	ctx, span := tracer.Start(ctx, "lookup")
	defer span.End()

	s.lock.Lock()
	defer s.lock.Unlock()

	folder, name := splitRequest(requested)
	folder = core.JoinPath(s.root, folder)
	span.SetAttributes(
		attribute.String("folder", folder),
		attribute.String("file", name),
	)

	entries, err := s.remote.ListFiles(ctx, folder)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list folder")
		slog.WarnContext(ctx, "failed to list folder", "folder", folder, "err", err)
		return core.File{}, false
	}

	for i, entry := range s.candidates(entries, name) {
		if i > 0 || entry.Name != name {
			span.AddEvent("serving default document", trace.WithAttributes(
				attribute.String("name", entry.Name),
			))
		}
		file, ok := s.fetch(ctx, folder, entry)
		if ok {
			return file, true
		}
	}
	span.SetStatus(codes.Error, "not found")
	return core.File{}, false
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	file, ok := s.lookup(r.Context(), requestPath(r))
	if !ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(NotFoundBody))
		return
	}
	if file.ContentType != "" {
		w.Header().Set("Content-Type", file.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(file.Data)
}
