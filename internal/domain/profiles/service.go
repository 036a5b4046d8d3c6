package profiles

import (
	"context"
	"net/url"
	"strings"
	"time"

	"idhealth/internal/platform/apperr"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"
)

const DefaultSessionTTL = 8 * time.Hour

type Options struct {
	Cache Cache
	TTL   time.Duration

	// StorageOverride fija la raíz de storage para despliegues de un solo pod.
	// Vacío = se toma pim:storage del WebID.
	StorageOverride string
}

type Service struct {
	store   pod.Store
	updater *pod.Updater
	opts    Options
	log     logger.Logger
}

func NewService(store pod.Store, log logger.Logger, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store:   store,
		updater: pod.NewUpdater(store),
		opts:    opts,
		log:     log.With(map[string]any{"component": "profiles"}),
	}
}

// Resolve lee storage, nombre, email y rol del usuario.
// Un rol ausente o desconocido es Unauthorized: el llamador debe cerrar sesión.
func (s *Service) Resolve(ctx context.Context, webID string) (Profile, error) {
	webID = strings.TrimSpace(webID)
	if webID == "" {
		return Profile{}, apperr.Unauthorized("missing identity", nil)
	}

	if s.opts.Cache != nil {
		p, ok, err := s.opts.Cache.Get(ctx, webID)
		if err != nil {
			s.log.Warn("profile cache get failed", map[string]any{"web_id": webID, "error": err})
		}
		if ok {
			return p, nil
		}
	}

	storage, err := s.storageFor(ctx, webID)
	if err != nil {
		return Profile{}, err
	}

	profileURL := pod.Join(storage, pod.ProfileDocument)
	ds, err := s.store.GetDataset(ctx, profileURL)
	if err != nil {
		appErr := pod.AppError(err, "profile")
		if apperr.KindOf(appErr) == apperr.KindNotFound {
			s.log.Warn("profile document missing", map[string]any{"web_id": webID, "url": profileURL})
			return Profile{}, apperr.Unauthorized("profile has no role", err)
		}
		s.log.Error("profile fetch failed", map[string]any{"web_id": webID, "url": profileURL, "error": err})
		return Profile{}, appErr
	}

	p := Profile{
		WebID:           webID,
		StorageLocation: storage,
		Name:            profileName(ds, webID),
		Email:           profileEmail(ds, webID),
	}

	me, ok := ds.Thing(webID)
	if ok {
		if raw, ok := me.String(pod.VCardRole); ok {
			p.Role = Role(strings.ToLower(strings.TrimSpace(raw)))
		}
	}
	if !p.Role.Valid() {
		s.log.Warn("invalid role", map[string]any{"web_id": webID, "role": string(p.Role)})
		return Profile{}, apperr.Unauthorized("role missing or not recognized", nil).With("role", string(p.Role))
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(ctx, p, s.opts.TTL); err != nil {
			s.log.Warn("profile cache set failed", map[string]any{"web_id": webID, "error": err})
		}
	}
	return p, nil
}

// Forget descarta el perfil cacheado (logout forzado).
func (s *Service) Forget(ctx context.Context, webID string) {
	if s.opts.Cache == nil {
		return
	}
	if err := s.opts.Cache.Delete(ctx, webID); err != nil {
		s.log.Warn("profile cache delete failed", map[string]any{"web_id": webID, "error": err})
	}
}

// SeedInput es el perfil mínimo que Resolve necesita encontrar en el pod.
type SeedInput struct {
	// Storage vacío = override configurado o el origen del WebID.
	Storage string
	Name    string
	Email   string
	Role    Role
}

// Seed escribe pim:storage en el documento WebID y nombre, email y rol en
// {storage}profile. El resto de ambos documentos se conserva.
func (s *Service) Seed(ctx context.Context, webID string, in SeedInput) (Profile, error) {
	webID = strings.TrimSpace(webID)
	if !absoluteURL(webID) {
		return Profile{}, apperr.InvalidInput("webid must be an absolute http(s) URL")
	}
	role := Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if !role.Valid() {
		return Profile{}, apperr.InvalidInput("role must be patient or doctor")
	}

	storage := strings.TrimSpace(in.Storage)
	if storage == "" {
		storage = s.opts.StorageOverride
	}
	if storage == "" {
		storage = origin(webID)
	}
	if !absoluteURL(storage) {
		return Profile{}, apperr.InvalidInput("storage must be an absolute http(s) URL")
	}
	storage = ensureSlash(storage)

	docURL := documentOf(webID)
	err := s.updater.Update(ctx, docURL, true, func(ds *pod.Dataset) error {
		ds.Ensure(webID).Set(pod.PimStorage, pod.IRI(storage))
		return nil
	})
	if err != nil {
		s.log.Error("webid seed failed", map[string]any{"url": docURL, "error": err})
		return Profile{}, pod.AppError(err, "webid")
	}

	profURL := pod.Join(storage, pod.ProfileDocument)
	err = s.updater.Update(ctx, profURL, true, func(ds *pod.Dataset) error {
		me := ds.Ensure(webID)
		if name := strings.TrimSpace(in.Name); name != "" {
			me.Set(pod.VCardFn, pod.String(name))
		}
		if email := stripMailto(in.Email); email != "" {
			me.Set(pod.VCardHasEmail, pod.IRI("mailto:"+email))
		}
		me.Set(pod.VCardRole, pod.String(string(role)))
		return nil
	})
	if err != nil {
		s.log.Error("profile seed failed", map[string]any{"url": profURL, "error": err})
		return Profile{}, pod.AppError(err, "profile")
	}

	s.log.Info("profile seeded", map[string]any{"web_id": webID, "storage": storage, "role": string(role)})
	s.Forget(ctx, webID)
	return s.Resolve(ctx, webID)
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

func origin(webID string) string {
	u, err := url.Parse(webID)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

func documentOf(webID string) string {
	if i := strings.Index(webID, "#"); i >= 0 {
		return webID[:i]
	}
	return webID
}

func (s *Service) storageFor(ctx context.Context, webID string) (string, error) {
	if s.opts.StorageOverride != "" {
		return ensureSlash(s.opts.StorageOverride), nil
	}

	docURL := documentOf(webID)
	ds, err := s.store.GetDataset(ctx, docURL)
	if err != nil {
		s.log.Error("webid fetch failed", map[string]any{"web_id": webID, "error": err})
		return "", pod.AppError(err, "webid")
	}

	me, ok := ds.Thing(webID)
	if !ok {
		return "", apperr.NotFound("webid document does not describe the identity").With("web_id", webID)
	}
	urls := me.URLs(pod.PimStorage)
	if len(urls) == 0 {
		return "", apperr.NotFound("webid has no storage").With("web_id", webID)
	}
	return ensureSlash(urls[0]), nil
}

func profileName(ds *pod.Dataset, webID string) string {
	if me, ok := ds.Thing(webID); ok {
		if v, ok := me.String(pod.VCardFn); ok {
			return v
		}
	}
	for _, th := range ds.Things() {
		if v, ok := th.String(pod.VCardFn); ok {
			return v
		}
	}
	return ""
}

// profileEmail acepta vcard:hasEmail como literal, IRI mailto: o nodo con vcard:value.
func profileEmail(ds *pod.Dataset, webID string) string {
	things := ds.Things()
	if me, ok := ds.Thing(webID); ok {
		things = append([]*pod.Thing{me}, things...)
	}
	for _, th := range things {
		for _, v := range th.Values(pod.VCardHasEmail) {
			if v.Kind == pod.KindLiteral || strings.HasPrefix(v.Lexical, "mailto:") {
				return stripMailto(v.Lexical)
			}
			node, ok := ds.Thing(v.Lexical)
			if !ok {
				continue
			}
			for _, ev := range node.Values(pod.VCardValue) {
				return stripMailto(ev.Lexical)
			}
		}
	}
	return ""
}

func stripMailto(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "mailto:")
}

func ensureSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
