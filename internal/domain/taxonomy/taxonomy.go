// Package taxonomy holds the immutable domain → skills table that every
// progress operation validates against.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Domain is one subject area and its fixed list of skill names.
// Skills keep their declared order; the first skill is the fallback.
type Domain struct {
	Key    string   `json:"key" koanf:"key"`
	Name   string   `json:"name" koanf:"name"`
	Skills []string `json:"skills" koanf:"skills"`
}

// FirstSkill returns the deterministic fallback skill of the domain.
func (d Domain) FirstSkill() string {
	return d.Skills[0]
}

// HasSkill reports whether name is listed under d (exact, case-sensitive).
func (d Domain) HasSkill(name string) bool {
	for _, s := range d.Skills {
		if s == name {
			return true
		}
	}
	return false
}

// Taxonomy is a read-only lookup table. It is safe for concurrent use
// because nothing mutates it after New returns.
type Taxonomy struct {
	byKey  map[string]Domain
	byName map[string]string // display name -> key
	skills map[string]struct{}
	keys   []string
}

// New validates domains and builds a taxonomy from them. Skill slices are
// copied so later changes by the caller do not leak in.
func New(domains []Domain) (*Taxonomy, error) {
	if len(domains) == 0 {
		return nil, ErrEmptyTaxonomy
	}
	t := &Taxonomy{
		byKey:  make(map[string]Domain, len(domains)),
		byName: make(map[string]string, len(domains)),
		skills: make(map[string]struct{}),
	}
	for _, d := range domains {
		key := strings.TrimSpace(d.Key)
		name := strings.TrimSpace(d.Name)
		switch {
		case key == "":
			return nil, fmt.Errorf("%w: empty domain key", ErrInvalidTaxonomy)
		case name == "":
			return nil, fmt.Errorf("%w: domain %q has no display name", ErrInvalidTaxonomy, key)
		case len(d.Skills) == 0:
			return nil, fmt.Errorf("%w: domain %q has no skills", ErrInvalidTaxonomy, key)
		}
		if _, dup := t.byKey[key]; dup {
			return nil, fmt.Errorf("%w: duplicate domain key %q", ErrInvalidTaxonomy, key)
		}
		if other, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("%w: display name %q used by %q and %q", ErrInvalidTaxonomy, name, other, key)
		}
		skills := make([]string, 0, len(d.Skills))
		seen := make(map[string]struct{}, len(d.Skills))
		for _, s := range d.Skills {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("%w: domain %q has a blank skill", ErrInvalidTaxonomy, key)
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			skills = append(skills, s)
			t.skills[s] = struct{}{}
		}
		t.byKey[key] = Domain{Key: key, Name: name, Skills: skills}
		t.byName[name] = key
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)
	return t, nil
}

// Resolve returns the domain for key or ErrInvalidDomain.
func (t *Taxonomy) Resolve(key string) (Domain, error) {
	d, ok := t.byKey[key]
	if !ok {
		return Domain{}, fmt.Errorf("%w: %q", ErrInvalidDomain, key)
	}
	return d.clone(), nil
}

// ByName returns the domain whose display name is name.
func (t *Taxonomy) ByName(name string) (Domain, bool) {
	key, ok := t.byName[name]
	if !ok {
		return Domain{}, false
	}
	return t.byKey[key].clone(), true
}

// IsCategory reports whether name is the display name of a domain.
func (t *Taxonomy) IsCategory(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// HasSkill reports whether any domain lists the skill.
func (t *Taxonomy) HasSkill(name string) bool {
	_, ok := t.skills[name]
	return ok
}

// Keys returns the domain keys in sorted order.
func (t *Taxonomy) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Domains returns every domain sorted by key.
func (t *Taxonomy) Domains() []Domain {
	out := make([]Domain, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.byKey[k].clone())
	}
	return out
}

// CategoryNames returns the display names sorted alphabetically.
func (t *Taxonomy) CategoryNames() []string {
	out := make([]string, 0, len(t.byName))
	for n := range t.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (d Domain) clone() Domain {
	skills := make([]string, len(d.Skills))
	copy(skills, d.Skills)
	d.Skills = skills
	return d
}
