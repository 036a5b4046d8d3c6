package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"idhealth/internal/ports/pod"
)

type podDoc struct {
	ds   *pod.Dataset
	etag string
}

// PodStore es un pod en memoria para dev y tests. Respeta las mismas
// precondiciones que un servidor Solid.
type PodStore struct {
	mu         sync.RWMutex
	docs       map[string]podDoc
	containers map[string]struct{}
	version    int
}

func NewPodStore() *PodStore {
	return &PodStore{
		docs:       make(map[string]podDoc),
		containers: make(map[string]struct{}),
	}
}

// Seed escribe un dataset sin precondiciones (fixtures de dev/tests).
func (s *PodStore) Seed(ds *pod.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(ds)
}

func (s *PodStore) GetDataset(ctx context.Context, url string) (*pod.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[url]
	if !ok {
		return nil, fmt.Errorf("memory: get %s: %w", url, pod.ErrNotFound)
	}
	out := d.ds.Clone()
	out.ETag = d.etag
	return out, nil
}

func (s *PodStore) SaveDataset(ctx context.Context, ds *pod.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.docs[ds.URL]
	if ds.ETag == "" && exists {
		return fmt.Errorf("memory: create %s: %w", ds.URL, pod.ErrPreconditionFailed)
	}
	if ds.ETag != "" && (!exists || cur.etag != ds.ETag) {
		return fmt.Errorf("memory: update %s: %w", ds.URL, pod.ErrPreconditionFailed)
	}

	ds.ETag = s.put(ds)
	return nil
}

func (s *PodStore) CreateContainer(ctx context.Context, url string) error {
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.containers[url] = struct{}{}
	for _, a := range pod.Ancestors(url) {
		s.containers[a] = struct{}{}
	}
	return nil
}

func (s *PodStore) ListContained(ctx context.Context, containerURL string) ([]string, error) {
	if !strings.HasSuffix(containerURL, "/") {
		containerURL += "/"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.containers[containerURL]; !ok {
		return nil, fmt.Errorf("memory: list %s: %w", containerURL, pod.ErrNotFound)
	}

	all := make([]string, 0, len(s.docs)+len(s.containers))
	for u := range s.docs {
		all = append(all, u)
	}
	for u := range s.containers {
		all = append(all, u)
	}
	return pod.DirectChildren(containerURL, all), nil
}

func (s *PodStore) Exists(ctx context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.docs[url]; ok {
		return true, nil
	}
	_, ok := s.containers[url]
	return ok, nil
}

// put guarda una copia y crea los contenedores padres. Requiere s.mu tomado.
func (s *PodStore) put(ds *pod.Dataset) string {
	s.version++
	etag := fmt.Sprintf(`W/"%d"`, s.version)
	s.docs[ds.URL] = podDoc{ds: ds.Clone(), etag: etag}
	for _, a := range pod.Ancestors(ds.URL) {
		s.containers[a] = struct{}{}
	}
	return etag
}
