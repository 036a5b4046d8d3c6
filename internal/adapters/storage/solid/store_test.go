package solid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"idhealth/internal/platform/httpclient"
	"idhealth/internal/ports/pod"
)

// fakePod es un servidor LDP mínimo: documentos turtle con etag y
// contenedores implícitos.
type fakePod struct {
	mu      sync.Mutex
	docs    map[string]string
	etags   map[string]string
	version int
	auth    []string
}

func newFakePod() *fakePod {
	return &fakePod{docs: map[string]string{}, etags: map[string]string{}}
}

func (p *fakePod) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.auth = append(p.auth, r.Header.Get("Authorization"))

	path := r.URL.Path
	if r.Header.Get("Authorization") == "Bearer expired" {
		http.Error(w, "expired", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if strings.HasSuffix(path, "/") {
			p.serveContainer(w, r, path)
			return
		}
		body, ok := p.docs[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("ETag", p.etags[path])
		w.Header().Set("Content-Type", "text/turtle")
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, body)
		}
	case http.MethodPut:
		cur, exists := p.etags[path]
		if strings.HasSuffix(path, "/") {
			_, exists = p.docs[path]
		}
		if r.Header.Get("If-None-Match") == "*" && exists {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		if m := r.Header.Get("If-Match"); m != "" && m != cur {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		b, _ := io.ReadAll(r.Body)
		p.version++
		p.docs[path] = string(b)
		p.etags[path] = fmt.Sprintf(`"v%d"`, p.version)
		w.Header().Set("ETag", p.etags[path])
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (p *fakePod) serveContainer(w http.ResponseWriter, r *http.Request, path string) {
	children := map[string]struct{}{}
	for k := range p.docs {
		if !strings.HasPrefix(k, path) || k == path {
			continue
		}
		rest := k[len(path):]
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i+1]
		}
		children[rest] = struct{}{}
	}
	if _, ok := p.docs[path]; !ok && len(children) == 0 {
		http.NotFound(w, r)
		return
	}
	var b strings.Builder
	b.WriteString("@prefix ldp: <http://www.w3.org/ns/ldp#> .\n<> a ldp:BasicContainer")
	for c := range children {
		fmt.Fprintf(&b, " ;\n\tldp:contains <%s>", c)
	}
	b.WriteString(" .\n")
	if r.Method == http.MethodGet {
		_, _ = io.WriteString(w, b.String())
	}
}

func newTestStore(t *testing.T) (*Store, *fakePod, string) {
	t.Helper()
	fp := newFakePod()
	srv := httptest.NewServer(fp)
	t.Cleanup(srv.Close)
	return NewStore(httpclient.New(2 * time.Second)), fp, srv.URL
}

func TestStore_SaveThenGet_ConditionalWrites(t *testing.T) {
	st, fp, base := newTestStore(t)
	ctx := pod.WithAccessToken(context.Background(), "tok-1")
	url := base + "/measuraments/2025-01-10/index.ttl"

	ds := pod.NewDataset(url)
	ds.Ensure(ds.ThingURL("m1")).Set(pod.SchemaTime, pod.String("G at 13:00"))
	if err := st.SaveDataset(ctx, ds); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ds.ETag == "" {
		t.Fatalf("expected etag after save")
	}

	// Segundo create sin etag: ya existe.
	again := pod.NewDataset(url)
	if err := st.SaveDataset(ctx, again); !errors.Is(err, pod.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}

	got, err := st.GetDataset(ctx, url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	th, ok := got.Thing(ds.ThingURL("m1"))
	if !ok {
		t.Fatalf("m1 missing")
	}
	if v, _ := th.String(pod.SchemaTime); v != "G at 13:00" {
		t.Fatalf("time = %q", v)
	}

	// Escritura con etag viejo.
	stale := got.Clone()
	got.Ensure(got.ThingURL("m2"))
	if err := st.SaveDataset(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.SaveDataset(ctx, stale); !errors.Is(err, pod.ErrPreconditionFailed) {
		t.Fatalf("expected stale write rejected, got %v", err)
	}

	for _, a := range fp.auth {
		if a != "Bearer tok-1" {
			t.Fatalf("unexpected Authorization header %q", a)
		}
	}
}

func TestStore_NotFoundAndUnauthorized(t *testing.T) {
	st, _, base := newTestStore(t)

	_, err := st.GetDataset(context.Background(), base+"/patient/Patient.ttl")
	if !errors.Is(err, pod.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ctx := pod.WithAccessToken(context.Background(), "expired")
	_, err = st.ListContained(ctx, base+"/measuraments/")
	if !errors.Is(err, pod.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if httpclient.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected status in chain, got %d", httpclient.StatusOf(err))
	}
}

func TestStore_ContainersAndExists(t *testing.T) {
	st, _, base := newTestStore(t)
	ctx := context.Background()

	if err := st.CreateContainer(ctx, base+"/training_date"); err != nil {
		t.Fatalf("create container: %v", err)
	}
	if err := st.CreateContainer(ctx, base+"/training_date/"); err != nil {
		t.Fatalf("create container twice should be ok: %v", err)
	}

	for _, d := range []string{"2025-01-10", "2025-01-11"} {
		ds := pod.NewDataset(base + "/measuraments/" + d + "/index.ttl")
		ds.Ensure(ds.ThingURL("m")).Set(pod.SchemaTime, pod.String("G at Waking"))
		if err := st.SaveDataset(ctx, ds); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := st.ListContained(ctx, base+"/measuraments/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != base+"/measuraments/2025-01-10/" {
		t.Fatalf("unexpected children %v", got)
	}

	ok, err := st.Exists(ctx, base+"/measuraments/2025-01-10/index.ttl")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
	ok, err = st.Exists(ctx, base+"/patient/Patient.ttl")
	if err != nil || ok {
		t.Fatalf("expected missing, got %v %v", ok, err)
	}
}

func TestStore_TransportErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/x.ttl"
	srv.Close()

	st := NewStore(httpclient.New(time.Second))
	_, err := st.GetDataset(context.Background(), url)
	if !errors.Is(err, pod.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
