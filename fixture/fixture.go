// Package fixture loads declarative class-hierarchy descriptions from
// TOML files. Fixtures drive the dtab CLI and scenario tests.
package fixture

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/dtab/hierarchy"
)

// File is the top-level TOML document.
type File struct {
	Designations DesignationsSection `toml:"designations"`
	Classes      []ClassSection      `toml:"class"`
	Selectors    []SelectorSection   `toml:"selector"`
}

// DesignationsSection names the distinguished classes and members by name.
type DesignationsSection struct {
	Object       string `toml:"object"`
	Top          string `toml:"top"`
	WasmBase     string `toml:"wasm_base"`
	Function     string `toml:"function"`
	Type         string `toml:"type"`
	NoSuchMethod string `toml:"no_such_method"`
	Equals       string `toml:"equals"`
}

// ClassSection declares one class. Classes receive dense ids in file
// order, so superclasses must be declared before their subclasses.
type ClassSection struct {
	Name      string          `toml:"name"`
	Super     string          `toml:"super"`
	Abstract  bool            `toml:"abstract"`
	Synthetic bool            `toml:"synthetic"`
	Members   []MemberSection `toml:"member"`
}

// MemberSection declares one member. Types are written "Class" or
// "Class?"; the empty string is void.
type MemberSection struct {
	Kind     string `toml:"kind"` // field|method|getter|setter
	Name     string `toml:"name"`
	Abstract bool   `toml:"abstract"`
	Static   bool   `toml:"static"`

	Type      string `toml:"type"` // fields
	HasSetter bool   `toml:"has_setter"`
	Covariant bool   `toml:"covariant"`

	TypeParams int            `toml:"type_params"`
	Params     []ParamSection `toml:"param"`
	Return     string         `toml:"return"`

	GetterSelector int  `toml:"getter_selector"`
	MethodSelector int  `toml:"method_selector"`
	DynamicGetter  bool `toml:"dynamic_getter"`
	DynamicMethod  bool `toml:"dynamic_method"`
	TearOff        bool `toml:"tear_off"`
}

// ParamSection declares one parameter; a non-empty Name makes it named.
type ParamSection struct {
	Name      string `toml:"name"`
	Type      string `toml:"type"`
	Covariant bool   `toml:"covariant"`
	Default   bool   `toml:"default"`
}

// SelectorSection supplies call-count estimates by selector id.
type SelectorSection struct {
	ID        int `toml:"id"`
	CallCount int `toml:"call_count"`
}

// Load reads and resolves a fixture file.
func Load(path string) (*hierarchy.Hierarchy, hierarchy.Designations, *hierarchy.StaticMetadata, error) {
	var file File
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, hierarchy.Designations{}, nil, fmt.Errorf("fixture: cannot load %q: %w", path, err)
	}
	return Resolve(&file)
}

// Parse reads a fixture from TOML source text.
func Parse(source string) (*hierarchy.Hierarchy, hierarchy.Designations, *hierarchy.StaticMetadata, error) {
	var file File
	if _, err := toml.Decode(source, &file); err != nil {
		return nil, hierarchy.Designations{}, nil, fmt.Errorf("fixture: parse: %w", err)
	}
	return Resolve(&file)
}

// Resolve turns a decoded fixture into a hierarchy, designations, and
// metadata. Class names resolve to ids assigned in declaration order.
func Resolve(file *File) (*hierarchy.Hierarchy, hierarchy.Designations, *hierarchy.StaticMetadata, error) {
	var des hierarchy.Designations
	byName := make(map[string]hierarchy.ClassID, len(file.Classes))
	for i, cs := range file.Classes {
		if _, dup := byName[cs.Name]; dup {
			return nil, des, nil, fmt.Errorf("fixture: duplicate class %q", cs.Name)
		}
		byName[cs.Name] = hierarchy.ClassID(i)
	}

	classOf := func(name string) (hierarchy.ClassID, error) {
		if name == "" {
			return hierarchy.NoClass, nil
		}
		id, ok := byName[name]
		if !ok {
			return hierarchy.NoClass, fmt.Errorf("fixture: unknown class %q", name)
		}
		return id, nil
	}

	typeOf := func(spec string) (hierarchy.TypeRef, error) {
		if spec == "" {
			return hierarchy.Void, nil
		}
		nullable := strings.HasSuffix(spec, "?")
		id, err := classOf(strings.TrimSuffix(spec, "?"))
		if err != nil {
			return hierarchy.Void, err
		}
		return hierarchy.TypeRef{Class: id, Nullable: nullable}, nil
	}

	meta := hierarchy.NewStaticMetadata()
	classes := make([]*hierarchy.Class, 0, len(file.Classes))
	var noSuchMethod *hierarchy.Member
	for i, cs := range file.Classes {
		super, err := classOf(cs.Super)
		if err != nil {
			return nil, des, nil, err
		}
		c := &hierarchy.Class{
			ID:        hierarchy.ClassID(i),
			Name:      cs.Name,
			Super:     super,
			Abstract:  cs.Abstract,
			Synthetic: cs.Synthetic,
		}
		for _, ms := range cs.Members {
			m, err := resolveMember(&ms, c.ID, typeOf)
			if err != nil {
				return nil, des, nil, fmt.Errorf("fixture: class %q member %q: %w", cs.Name, ms.Name, err)
			}
			c.Members = append(c.Members, m)
			meta.SetMember(m, hierarchy.MemberMetadata{
				GetterSelector:                  hierarchy.SelectorID(ms.GetterSelector),
				MethodOrSetterSelector:          hierarchy.SelectorID(ms.MethodSelector),
				GetterCalledDynamically:         ms.DynamicGetter,
				MethodOrSetterCalledDynamically: ms.DynamicMethod,
				HasTearOffUses:                  ms.TearOff,
			})
			if file.Designations.NoSuchMethod != "" && m.Name == file.Designations.NoSuchMethod {
				noSuchMethod = m
			}
		}
		classes = append(classes, c)
	}

	h, err := hierarchy.New(classes)
	if err != nil {
		return nil, des, nil, err
	}

	if des.ObjectClass, err = classOf(file.Designations.Object); err != nil {
		return nil, des, nil, err
	}
	if des.TopClass, err = classOf(file.Designations.Top); err != nil {
		return nil, des, nil, err
	}
	if des.WasmTypesBase, err = classOf(file.Designations.WasmBase); err != nil {
		return nil, des, nil, err
	}
	if des.FunctionClass, err = classOf(file.Designations.Function); err != nil {
		return nil, des, nil, err
	}
	if des.TypeClass, err = classOf(file.Designations.Type); err != nil {
		return nil, des, nil, err
	}
	des.NoSuchMethod = noSuchMethod
	des.EqualsName = file.Designations.Equals

	for _, ss := range file.Selectors {
		meta.SetCallCount(hierarchy.SelectorID(ss.ID), ss.CallCount)
	}
	return h, des, meta, nil
}

func resolveMember(ms *MemberSection, class hierarchy.ClassID, typeOf func(string) (hierarchy.TypeRef, error)) (*hierarchy.Member, error) {
	m := &hierarchy.Member{
		Name:       ms.Name,
		Class:      class,
		Abstract:   ms.Abstract,
		Static:     ms.Static,
		HasSetter:  ms.HasSetter,
		Covariant:  ms.Covariant,
		TypeParams: ms.TypeParams,
	}
	switch ms.Kind {
	case "field":
		m.Kind = hierarchy.FieldMember
	case "method":
		m.Kind = hierarchy.MethodMember
	case "getter":
		m.Kind = hierarchy.GetterMember
	case "setter":
		m.Kind = hierarchy.SetterMember
	default:
		return nil, fmt.Errorf("unknown member kind %q", ms.Kind)
	}

	var err error
	if m.Type, err = typeOf(ms.Type); err != nil {
		return nil, err
	}
	if m.Return, err = typeOf(ms.Return); err != nil {
		return nil, err
	}
	for _, ps := range ms.Params {
		t, err := typeOf(ps.Type)
		if err != nil {
			return nil, err
		}
		p := hierarchy.Param{Type: t, Covariant: ps.Covariant, HasDefault: ps.Default}
		if ps.Name == "" {
			m.Positional = append(m.Positional, p)
		} else {
			m.Named = append(m.Named, hierarchy.NamedParam{Name: ps.Name, Param: p})
		}
	}
	return m, nil
}

// MustLoad is Load for tests and tools that treat a broken fixture as
// unrecoverable.
func MustLoad(path string) (*hierarchy.Hierarchy, hierarchy.Designations, *hierarchy.StaticMetadata) {
	h, des, meta, err := Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture: %v\n", err)
		os.Exit(1)
	}
	return h, des, meta
}
