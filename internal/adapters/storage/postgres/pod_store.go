package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"idhealth/internal/adapters/storage/turtle"
	"idhealth/internal/ports/pod"

	"github.com/google/uuid"
)

// PodStore guarda cada recurso del pod como una fila con su Turtle y etag.
// Las escrituras condicionales se resuelven con el WHERE sobre etag.
type PodStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPodStore(db *sql.DB) *PodStore {
	return &PodStore{db: db, now: time.Now}
}

func (s *PodStore) GetDataset(ctx context.Context, url string) (*pod.Dataset, error) {
	var body, etag string
	err := s.db.QueryRowContext(ctx, `
		SELECT body, etag
		FROM pod_resources
		WHERE url = $1 AND is_container = FALSE
	`, url).Scan(&body, &etag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("postgres: get %s: %w", url, pod.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s: %w: %w", url, pod.ErrUpstream, err)
	}

	ds, err := turtle.Decode(url, []byte(body))
	if err != nil {
		return nil, err
	}
	ds.ETag = etag
	return ds, nil
}

func (s *PodStore) SaveDataset(ctx context.Context, ds *pod.Dataset) error {
	body, err := turtle.Encode(ds)
	if err != nil {
		return err
	}
	next := uuid.NewString()
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w: %w", pod.ErrUpstream, err)
	}
	defer func() { _ = tx.Rollback() }()

	var res sql.Result
	if ds.ETag == "" {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO pod_resources (url, is_container, body, etag, updated_at)
			VALUES ($1, FALSE, $2, $3, $4)
			ON CONFLICT (url) DO NOTHING
		`, ds.URL, string(body), next, now)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE pod_resources
			SET body = $2, etag = $3, updated_at = $4
			WHERE url = $1 AND etag = $5 AND is_container = FALSE
		`, ds.URL, string(body), next, now, ds.ETag)
	}
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w: %w", ds.URL, pod.ErrUpstream, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("postgres: save %s: %w", ds.URL, pod.ErrPreconditionFailed)
	}

	if err := ensureContainers(ctx, tx, pod.Ancestors(ds.URL), now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w: %w", pod.ErrUpstream, err)
	}

	ds.ETag = next
	return nil
}

func (s *PodStore) CreateContainer(ctx context.Context, url string) error {
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w: %w", pod.ErrUpstream, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureContainers(ctx, tx, append([]string{url}, pod.Ancestors(url)...), now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w: %w", pod.ErrUpstream, err)
	}
	return nil
}

func (s *PodStore) ListContained(ctx context.Context, containerURL string) ([]string, error) {
	if !strings.HasSuffix(containerURL, "/") {
		containerURL += "/"
	}

	ok, err := s.Exists(ctx, containerURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("postgres: list %s: %w", containerURL, pod.ErrNotFound)
	}

	// starts_with evita que "_" del path actúe como comodín de LIKE.
	rows, err := s.db.QueryContext(ctx, `
		SELECT url
		FROM pod_resources
		WHERE starts_with(url, $1) AND url <> $1
	`, containerURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s: %w: %w", containerURL, pod.ErrUpstream, err)
	}
	defer rows.Close()

	all := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("postgres: list %s: %w: %w", containerURL, pod.ErrUpstream, err)
		}
		all = append(all, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list %s: %w: %w", containerURL, pod.ErrUpstream, err)
	}
	return pod.DirectChildren(containerURL, all), nil
}

func (s *PodStore) Exists(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM pod_resources WHERE url = $1`, url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("postgres: exists %s: %w: %w", url, pod.ErrUpstream, err)
	}
	return true, nil
}

func ensureContainers(ctx context.Context, tx *sql.Tx, urls []string, now time.Time) error {
	for _, u := range urls {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pod_resources (url, is_container, etag, updated_at)
			VALUES ($1, TRUE, $2, $3)
			ON CONFLICT (url) DO NOTHING
		`, u, uuid.NewString(), now)
		if err != nil {
			return fmt.Errorf("postgres: container %s: %w: %w", u, pod.ErrUpstream, err)
		}
	}
	return nil
}
