package patients

import "time"

// DiabetesType del paciente.
// @Enum type1, type2, gestational, other
type DiabetesType string

const (
	DiabetesType1           DiabetesType = "type1"
	DiabetesType2           DiabetesType = "type2"
	DiabetesTypeGestational DiabetesType = "gestational"
	DiabetesTypeOther       DiabetesType = "other"
)

// PatientRecord es la ficha del paciente guardada en patient/Patient.ttl.
// Su ausencia significa "perfil todavía no configurado".
type PatientRecord struct {
	WebID        string
	GivenName    string
	FamilyName   string
	BirthDate    *time.Time
	Gender       string
	DiabetesType DiabetesType
	CreatedAt    string

	// Doctors son los WebID autorizados a leer las mediciones.
	Doctors []string

	// Extra conserva otros literales del documento, indexados por predicado.
	Extra map[string]string
}
