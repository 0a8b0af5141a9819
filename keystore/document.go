package keystore

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/xostack/docsum/provider"
)

var errCorrupt = errors.New("credential file is not a valid JSON object")

// record is one provider entry of the persisted document.
type record struct {
	APIKey  string `json:"api_key"`
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`

	hasKey bool
}

// document is the persisted credential file. Provider order is the order
// providers were first added and is kept across load and save.
type document struct {
	order           []string
	providers       map[string]record
	defaultProvider string
}

func newDocument() document {
	return document{providers: map[string]record{}}
}

// clone returns a copy that shares no mutable state with d.
func (d *document) clone() document {
	c := document{
		order:           slices.Clone(d.order),
		providers:       maps.Clone(d.providers),
		defaultProvider: d.defaultProvider,
	}
	if c.providers == nil {
		c.providers = map[string]record{}
	}
	return c
}

func (d *document) has(id string) bool {
	_, ok := d.providers[id]
	return ok
}

func (d *document) put(id string, r record) {
	if !d.has(id) {
		d.order = append(d.order, id)
	}
	d.providers[id] = r
}

func (d *document) remove(id string) {
	delete(d.providers, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
}

// parseDocument reads the JSON layout
//
//	{"providers": {"<id>": {"api_key": "...", "enabled": true, "model": "..."}}, "default_provider": "<id>" | null}
//
// walking the providers object in file order. Unknown fields are ignored.
// A default that names no stored provider is dropped.
func parseDocument(data []byte) (document, error) {
	if !gjson.ValidBytes(data) {
		return document{}, errCorrupt
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return document{}, errCorrupt
	}

	doc := newDocument()
	root.Get("providers").ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		id := provider.NormalizeID(key.String())
		if id == "" {
			return true
		}

		r := record{Enabled: true}
		if k := value.Get("api_key"); k.Type == gjson.String {
			r.APIKey = k.String()
			r.hasKey = true
		}
		if e := value.Get("enabled"); e.Exists() {
			r.Enabled = e.Bool()
		}
		if m := value.Get("model"); m.Type == gjson.String {
			r.Model = m.String()
		}
		doc.put(id, r)
		return true
	})

	if def := root.Get("default_provider"); def.Type == gjson.String {
		id := provider.NormalizeID(def.String())
		if doc.has(id) {
			doc.defaultProvider = id
		}
	}
	return doc, nil
}

// MarshalJSON writes providers in insertion order and a null default when
// none is set.
func (d document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"providers":{`)
	for i, id := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.providers[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString(`},"default_provider":`)

	var def *string
	if d.defaultProvider != "" {
		def = &d.defaultProvider
	}
	val, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	buf.Write(val)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
