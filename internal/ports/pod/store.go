package pod

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("pod: resource not found")
	ErrUnauthorized       = errors.New("pod: unauthorized")
	ErrPreconditionFailed = errors.New("pod: precondition failed")
	ErrUpstream           = errors.New("pod: upstream error")
)

// Store es el acceso al almacenamiento del pod (Solid, memoria o Postgres).
//
// SaveDataset es condicional: con ds.ETag vacío solo crea (If-None-Match: *),
// con ETag solo reemplaza esa versión (If-Match). Si la condición falla
// devuelve ErrPreconditionFailed. En éxito actualiza ds.ETag.
type Store interface {
	GetDataset(ctx context.Context, url string) (*Dataset, error)
	SaveDataset(ctx context.Context, ds *Dataset) error
	CreateContainer(ctx context.Context, url string) error
	ListContained(ctx context.Context, containerURL string) ([]string, error)
	Exists(ctx context.Context, url string) (bool, error)
}

type tokenKey struct{}

// WithAccessToken guarda el token del usuario para que el adapter Solid lo
// reenvíe al pod. Viaja en el context del request, no en estado global.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func AccessToken(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}

// Join une la raíz de storage con un path relativo.
func Join(storage, rel string) string {
	return strings.TrimRight(storage, "/") + "/" + strings.TrimLeft(rel, "/")
}

// ContainerOf devuelve el contenedor padre de una URL de recurso.
func ContainerOf(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}

// DirectChildren calcula ldp:contains a partir de un listado plano de URLs:
// recursos directos y sub-contenedores (implícitos incluidos), ordenados.
func DirectChildren(container string, urls []string) []string {
	if !strings.HasSuffix(container, "/") {
		container += "/"
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, u := range urls {
		if !strings.HasPrefix(u, container) || u == container {
			continue
		}
		rest := u[len(container):]
		child := u
		if i := strings.Index(rest, "/"); i >= 0 {
			child = container + rest[:i+1]
		}
		if _, ok := seen[child]; ok {
			continue
		}
		seen[child] = struct{}{}
		out = append(out, child)
	}
	sort.Strings(out)
	return out
}

// Ancestors devuelve los contenedores que contienen url, del más cercano a la
// raíz del host.
func Ancestors(url string) []string {
	out := make([]string, 0)
	for c := ContainerOf(url); c != "" && !strings.HasSuffix(c, "//"); c = ContainerOf(c) {
		out = append(out, c)
	}
	return out
}
