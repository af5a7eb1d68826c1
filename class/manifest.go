package class

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is a class hierarchy declared in YAML:
//
//	namespace: shapes
//	config:
//	  discriminator_field: discriminator
//	types:
//	  Length: float
//	classes:
//	  - name: Shape
//	    abstract: true
//	    subclasses:
//	      - name: Circle
//	        params:
//	          - {name: radius, type: Length}
//	  - name: Square
//	    extends: Shape
//	    params:
//	      - {name: side, type: float, default: 1}
type Manifest struct {
	Namespace string
	// Config is the synthesis configuration declared by the manifest.
	Config map[string]any
	// Types resolves the named types declared under "types".
	Types Types
	// Roots are the declared roots, or every class without a parent.
	Roots []Class
	// Classes lists every declared class in document order.
	Classes []*Def
}

type manifestDoc struct {
	Namespace string            `yaml:"namespace"`
	Config    map[string]any    `yaml:"config"`
	Types     map[string]string `yaml:"types"`
	Roots     []string          `yaml:"roots"`
	Classes   []manifestClass   `yaml:"classes"`
}

type manifestClass struct {
	Name       string          `yaml:"name"`
	Namespace  string          `yaml:"namespace"`
	Doc        string          `yaml:"doc"`
	Extends    nameList        `yaml:"extends"`
	Abstract   bool            `yaml:"abstract"`
	Opaque     bool            `yaml:"opaque"`
	Params     []manifestParam `yaml:"params"`
	Subclasses []manifestClass `yaml:"subclasses"`
}

type manifestParam struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Doc     string    `yaml:"doc"`
	Default yaml.Node `yaml:"default"`
}

// nameList accepts a single name as well as a list of names.
type nameList []string

func (l *nameList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = nameList{n.Value}
		return nil
	}
	var names []string
	if err := n.Decode(&names); err != nil {
		return err
	}
	*l = names
	return nil
}

// LoadManifestFile reads a manifest from path.
func LoadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadManifest reads a manifest document from r.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var doc manifestDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("class: empty manifest")
		}
		return nil, fmt.Errorf("class: manifest: %w", err)
	}
	return doc.build()
}

func (doc *manifestDoc) build() (*Manifest, error) {
	m := &Manifest{Namespace: doc.Namespace, Config: doc.Config, Types: Types{}}
	for name, expr := range doc.Types {
		t, _, err := ParseType(expr)
		if err != nil {
			return nil, fmt.Errorf("class: types.%s: %w", name, err)
		}
		m.Types[name] = t
	}

	byName := map[string]*Def{}
	pending := map[*Def][]string{}
	var declare func(mc manifestClass, parent *Def) error
	declare = func(mc manifestClass, parent *Def) error {
		if mc.Name == "" {
			return errors.New("class: manifest class without a name")
		}
		ns := mc.Namespace
		if ns == "" {
			ns = doc.Namespace
		}
		d := Define(ns, mc.Name).Doc(mc.Doc)
		if _, dup := byName[mc.Name]; dup {
			return fmt.Errorf("class: manifest declares %q twice", mc.Name)
		}
		byName[mc.Name] = d
		byName[QualifiedName(d)] = d
		m.Classes = append(m.Classes, d)
		if mc.Abstract {
			d.Abstract()
		}
		if mc.Opaque {
			d.Opaque(nil)
		}
		for _, mp := range mc.Params {
			p, err := mp.param()
			if err != nil {
				return fmt.Errorf("class: %s.%s: %w", mc.Name, mp.Name, err)
			}
			d.params = append(d.params, p)
			d.own = true
		}
		if parent != nil {
			d.Extends(parent)
		}
		pending[d] = mc.Extends
		for _, sc := range mc.Subclasses {
			if err := declare(sc, d); err != nil {
				return err
			}
		}
		return nil
	}
	for _, mc := range doc.Classes {
		if err := declare(mc, nil); err != nil {
			return nil, err
		}
	}
	for _, d := range m.Classes {
		for _, pn := range pending[d] {
			p, ok := byName[pn]
			if !ok {
				return nil, fmt.Errorf("class: %s extends unknown class %q", d.Name(), pn)
			}
			d.Extends(p)
		}
	}

	if len(doc.Roots) > 0 {
		for _, rn := range doc.Roots {
			d, ok := byName[rn]
			if !ok {
				return nil, fmt.Errorf("class: unknown root %q", rn)
			}
			m.Roots = append(m.Roots, d)
		}
	} else {
		for _, d := range m.Classes {
			if d.parent == nil {
				m.Roots = append(m.Roots, d)
			}
		}
	}
	return m, nil
}

func (mp manifestParam) param() (Param, error) {
	if mp.Name == "" {
		return Param{}, errors.New("parameter without a name")
	}
	t, optional, err := ParseType(mp.Type)
	if err != nil {
		return Param{}, err
	}
	p := Param{Name: mp.Name, Type: t, Doc: mp.Doc}
	if mp.Default.Kind != 0 {
		var dv any
		if err := mp.Default.Decode(&dv); err != nil {
			return Param{}, err
		}
		p.Default, p.HasDefault = dv, true
	} else if optional {
		p.HasDefault = true
	}
	return p, nil
}
