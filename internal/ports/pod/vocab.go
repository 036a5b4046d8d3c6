package pod

// Predicados usados en los pods. Se mantienen los IRIs que ya escribe la
// aplicación web para no romper datos existentes.
const (
	PimStorage   = "http://www.w3.org/ns/pim/space#storage"
	LDPContains  = "http://www.w3.org/ns/ldp#contains"
	LDPContainer = "http://www.w3.org/ns/ldp#BasicContainer"

	VCardFn       = "http://www.w3.org/2006/vcard/ns#fn"
	VCardHasEmail = "http://www.w3.org/2006/vcard/ns#hasEmail"
	VCardValue    = "http://www.w3.org/2006/vcard/ns#value"
	VCardRole     = "http://www.w3.org/2006/vcard/ns#role"

	SchemaTime             = "http://schema.org/time"
	SchemaGlucoseValue     = "http://schema.org/glucoseValue"
	SchemaTimestamp        = "http://schema.org/timestamp"
	SchemaPredictedInsulin = "http://schema.org/predictedInsulin"

	SchemaGivenName   = "http://schema.org/givenName"
	SchemaFamilyName  = "http://schema.org/familyName"
	SchemaBirthDate   = "http://schema.org/birthDate"
	SchemaGender      = "http://schema.org/gender"
	SchemaDiagnosis   = "http://schema.org/diagnosis"
	SchemaDateCreated = "http://schema.org/dateCreated"

	// ACLAgent en la ficha del paciente lista los WebID de doctores autorizados.
	ACLAgent = "http://www.w3.org/ns/auth/acl#agent"

	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDDate     = "http://www.w3.org/2001/XMLSchema#date"
)

// Rutas relativas a la raíz de storage del usuario.
const (
	// "measuraments" es el nombre histórico del contenedor en los pods existentes.
	MeasurementsContainer = "measuraments/"
	PredictionsContainer  = "prediction/"
	TrainingContainer     = "training_date/"
	PatientDocument       = "patient/Patient.ttl"
	ProfileDocument       = "profile"

	// Documento que guarda los registros de un contenedor diario.
	DayDocument = "index.ttl"
)
