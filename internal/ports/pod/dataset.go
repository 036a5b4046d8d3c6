package pod

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind distingue IRIs, nodos blancos y literales.
type ValueKind int

const (
	KindLiteral ValueKind = iota
	KindIRI
	KindBlank
)

// Value es el objeto de un triple.
type Value struct {
	Kind     ValueKind
	Lexical  string
	Datatype string // solo literales; vacío = xsd:string
}

func String(s string) Value {
	return Value{Kind: KindLiteral, Lexical: s}
}

func Decimal(f float64) Value {
	return Value{Kind: KindLiteral, Lexical: strconv.FormatFloat(f, 'f', -1, 64), Datatype: XSDDecimal}
}

func IRI(u string) Value {
	return Value{Kind: KindIRI, Lexical: u}
}

func Blank(id string) Value {
	return Value{Kind: KindBlank, Lexical: id}
}

// Thing es un recurso sin esquema dentro de un dataset: URL + pares
// predicado/valores. El orden de inserción de predicados se conserva.
type Thing struct {
	URL   string
	props map[string][]Value
	order []string
}

func NewThing(url string) *Thing {
	return &Thing{URL: url, props: make(map[string][]Value)}
}

func (t *Thing) Add(pred string, v Value) {
	if _, ok := t.props[pred]; !ok {
		t.order = append(t.order, pred)
	}
	t.props[pred] = append(t.props[pred], v)
}

// Set reemplaza todos los valores del predicado.
func (t *Thing) Set(pred string, v Value) {
	if _, ok := t.props[pred]; !ok {
		t.order = append(t.order, pred)
	}
	t.props[pred] = []Value{v}
}

func (t *Thing) Values(pred string) []Value {
	return t.props[pred]
}

func (t *Thing) Predicates() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// String devuelve el primer literal del predicado.
func (t *Thing) String(pred string) (string, bool) {
	for _, v := range t.props[pred] {
		if v.Kind == KindLiteral {
			return v.Lexical, true
		}
	}
	return "", false
}

// Decimal interpreta el primer literal como número, sea cual sea su datatype:
// los pods existentes guardan algunos valores como xsd:string.
func (t *Thing) Decimal(pred string) (float64, bool) {
	s, ok := t.String(pred)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// URLs devuelve los objetos IRI/blank del predicado.
func (t *Thing) URLs(pred string) []string {
	out := make([]string, 0)
	for _, v := range t.props[pred] {
		if v.Kind != KindLiteral {
			out = append(out, v.Lexical)
		}
	}
	return out
}

func (t *Thing) clone() *Thing {
	c := NewThing(t.URL)
	for _, p := range t.order {
		vals := make([]Value, len(t.props[p]))
		copy(vals, t.props[p])
		c.props[p] = vals
		c.order = append(c.order, p)
	}
	return c
}

// Dataset es el contenido RDF de un recurso del pod.
// ETag identifica la versión leída y habilita escrituras condicionales;
// vacío significa "el recurso todavía no existe".
type Dataset struct {
	URL  string
	ETag string

	things map[string]*Thing
	order  []string
}

func NewDataset(url string) *Dataset {
	return &Dataset{URL: url, things: make(map[string]*Thing)}
}

// ThingURL arma la URL de un Thing nombrado dentro del dataset.
func (d *Dataset) ThingURL(name string) string {
	return d.URL + "#" + name
}

func (d *Dataset) Thing(url string) (*Thing, bool) {
	t, ok := d.things[url]
	return t, ok
}

// Things devuelve los Things en orden de inserción.
func (d *Dataset) Things() []*Thing {
	out := make([]*Thing, 0, len(d.order))
	for _, u := range d.order {
		out = append(out, d.things[u])
	}
	return out
}

// SetThing agrega o reemplaza el Thing por URL.
func (d *Dataset) SetThing(t *Thing) {
	if _, ok := d.things[t.URL]; !ok {
		d.order = append(d.order, t.URL)
	}
	d.things[t.URL] = t
}

// RemoveThing borra el Thing; false si no existía.
func (d *Dataset) RemoveThing(url string) bool {
	if _, ok := d.things[url]; !ok {
		return false
	}
	delete(d.things, url)
	for i, u := range d.order {
		if u == url {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Ensure devuelve el Thing existente o uno nuevo ya agregado.
func (d *Dataset) Ensure(url string) *Thing {
	if t, ok := d.things[url]; ok {
		return t
	}
	t := NewThing(url)
	d.SetThing(t)
	return t
}

func (d *Dataset) Len() int {
	return len(d.order)
}

func (d *Dataset) Clone() *Dataset {
	c := NewDataset(d.URL)
	c.ETag = d.ETag
	for _, u := range d.order {
		c.SetThing(d.things[u].clone())
	}
	return c
}
