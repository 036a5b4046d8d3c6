package measurements

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"idhealth/internal/platform/apperr"
)

// GrantChecker responde si el paciente dueño de storage autorizó al doctor.
type GrantChecker interface {
	GrantsDoctor(ctx context.Context, storage, doctorWebID string) (bool, error)
}

// DoctorAccess limita qué pods puede leer un doctor. Un pod se lee solo si
// su host está en Hosts y la ficha del paciente lista al doctor.
type DoctorAccess struct {
	// Hosts vacío deshabilita la lectura por doctores.
	Hosts  []string
	Grants GrantChecker
}

var (
	errPodHostNotAllowed = errors.New("pod host not allowed")
	errNotGranted        = errors.New("patient has not granted access")
)

// patientStorage valida el storage pedido y lo normaliza con "/" final.
func (a DoctorAccess) patientStorage(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", apperr.InvalidInput("storage must be an absolute URL")
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", apperr.InvalidInput("storage must not carry credentials, query or fragment")
	}
	if !a.hostAllowed(u.Host) {
		return "", errPodHostNotAllowed
	}
	s := u.String()
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s, nil
}

func (a DoctorAccess) hostAllowed(host string) bool {
	for _, h := range a.Hosts {
		if strings.EqualFold(strings.TrimSpace(h), host) {
			return true
		}
	}
	return false
}

// authorize devuelve el storage normalizado si doctorWebID puede leerlo.
func (a DoctorAccess) authorize(ctx context.Context, raw, doctorWebID string) (string, error) {
	storage, err := a.patientStorage(raw)
	if err != nil {
		return "", err
	}
	if a.Grants == nil {
		return "", errNotGranted
	}
	ok, err := a.Grants.GrantsDoctor(ctx, storage, doctorWebID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errNotGranted
	}
	return storage, nil
}
