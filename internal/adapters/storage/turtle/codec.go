// Package turtle convierte entre documentos Turtle de un pod y pod.Dataset.
package turtle

import (
	"bytes"
	"fmt"
	"strings"

	"idhealth/internal/ports/pod"

	"github.com/knakk/rdf"
)

const ContentType = "text/turtle"

// Decode parsea body usando url como base para IRIs relativas (<#me>, <./>).
func Decode(url string, body []byte) (*pod.Dataset, error) {
	ds := pod.NewDataset(url)
	if len(bytes.TrimSpace(body)) == 0 {
		return ds, nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "@base <%s> .\n", url)
	buf.Write(body)

	triples, err := rdf.NewTripleDecoder(&buf, rdf.Turtle).DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("turtle: decode %s: %w", url, err)
	}

	for _, tr := range triples {
		subj := termID(tr.Subj)
		th := ds.Ensure(subj)
		th.Add(tr.Pred.String(), toValue(tr.Obj))
	}
	return ds, nil
}

// Encode serializa el dataset con IRIs absolutas.
func Encode(ds *pod.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	enc := rdf.NewTripleEncoder(&buf, rdf.Turtle)

	for _, th := range ds.Things() {
		subj, err := subject(th.URL)
		if err != nil {
			return nil, err
		}
		for _, p := range th.Predicates() {
			pred, err := rdf.NewIRI(p)
			if err != nil {
				return nil, fmt.Errorf("turtle: predicate %q: %w", p, err)
			}
			for _, v := range th.Values(p) {
				obj, err := object(v)
				if err != nil {
					return nil, err
				}
				if err := enc.Encode(rdf.Triple{Subj: subj, Pred: pred, Obj: obj}); err != nil {
					return nil, fmt.Errorf("turtle: encode: %w", err)
				}
			}
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("turtle: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Contained lee ldp:contains del documento de un contenedor.
func Contained(containerURL string, body []byte) ([]string, error) {
	ds, err := Decode(containerURL, body)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0)
	for _, th := range ds.Things() {
		out = append(out, th.URLs(pod.LDPContains)...)
	}
	return pod.DirectChildren(containerURL, out), nil
}

func termID(t rdf.Term) string {
	if t.Type() == rdf.TermBlank {
		return "_:" + strings.TrimPrefix(t.String(), "_:")
	}
	return t.String()
}

func toValue(o rdf.Object) pod.Value {
	switch o.Type() {
	case rdf.TermIRI:
		return pod.IRI(o.String())
	case rdf.TermBlank:
		return pod.Blank(termID(o))
	}
	lit, ok := o.(rdf.Literal)
	if !ok {
		return pod.String(o.String())
	}
	dt := lit.DataType.String()
	if dt == pod.XSDString || dt == "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString" {
		dt = ""
	}
	return pod.Value{Kind: pod.KindLiteral, Lexical: lit.String(), Datatype: dt}
}

func subject(id string) (rdf.Subject, error) {
	if strings.HasPrefix(id, "_:") {
		b, err := rdf.NewBlank(strings.TrimPrefix(id, "_:"))
		if err != nil {
			return nil, fmt.Errorf("turtle: blank %q: %w", id, err)
		}
		return b, nil
	}
	iri, err := rdf.NewIRI(id)
	if err != nil {
		return nil, fmt.Errorf("turtle: subject %q: %w", id, err)
	}
	return iri, nil
}

func object(v pod.Value) (rdf.Object, error) {
	switch v.Kind {
	case pod.KindIRI:
		iri, err := rdf.NewIRI(v.Lexical)
		if err != nil {
			return nil, fmt.Errorf("turtle: object %q: %w", v.Lexical, err)
		}
		return iri, nil
	case pod.KindBlank:
		b, err := rdf.NewBlank(strings.TrimPrefix(v.Lexical, "_:"))
		if err != nil {
			return nil, fmt.Errorf("turtle: blank %q: %w", v.Lexical, err)
		}
		return b, nil
	}
	dt := v.Datatype
	if dt == "" {
		dt = pod.XSDString
	}
	dtIRI, err := rdf.NewIRI(dt)
	if err != nil {
		return nil, fmt.Errorf("turtle: datatype %q: %w", dt, err)
	}
	return rdf.NewTypedLiteral(v.Lexical, dtIRI), nil
}
