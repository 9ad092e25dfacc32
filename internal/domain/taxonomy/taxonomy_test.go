package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTaxonomy(t *testing.T) {
	Convey("Given the built-in taxonomy", t, func() {
		tax := Default()

		Convey("Then it exposes the three domains", func() {
			So(tax.Keys(), ShouldResemble, []string{"finance", "hr", "tech"})
			So(tax.CategoryNames(), ShouldResemble, []string{"Finance", "Human Resources", "Technology"})
		})

		Convey("When resolving a known key", func() {
			d, err := tax.Resolve("finance")

			Convey("Then the first skill is the fallback", func() {
				So(err, ShouldBeNil)
				So(d.Name, ShouldEqual, "Finance")
				So(d.FirstSkill(), ShouldEqual, "Financial Analysis")
				So(d.Skills, ShouldHaveLength, 10)
			})
		})

		Convey("When resolving an unknown key", func() {
			_, err := tax.Resolve("astrology")

			Convey("Then ErrInvalidDomain is returned", func() {
				So(errors.Is(err, ErrInvalidDomain), ShouldBeTrue)
			})
		})

		Convey("When looking up names", func() {
			So(tax.IsCategory("Technology"), ShouldBeTrue)
			So(tax.IsCategory("technology"), ShouldBeFalse)
			So(tax.IsCategory("Obsolete Domain"), ShouldBeFalse)
			So(tax.HasSkill("Conflict Resolution"), ShouldBeTrue)
			So(tax.HasSkill("Quantum Telepathy"), ShouldBeFalse)
			d, ok := tax.ByName("Human Resources")
			So(ok, ShouldBeTrue)
			So(d.Key, ShouldEqual, "hr")
		})

		Convey("When a caller mutates a resolved domain", func() {
			d, _ := tax.Resolve("tech")
			d.Skills[0] = "Tampered"

			Convey("Then the table is unchanged", func() {
				again, _ := tax.Resolve("tech")
				So(again.FirstSkill(), ShouldEqual, "Programming Languages")
			})
		})
	})
}

func TestNewValidation(t *testing.T) {
	Convey("Given invalid domain tables", t, func() {
		cases := map[string][]Domain{
			"no domains":     nil,
			"empty key":      {{Key: " ", Name: "X", Skills: []string{"a"}}},
			"empty name":     {{Key: "x", Skills: []string{"a"}}},
			"no skills":      {{Key: "x", Name: "X"}},
			"blank skill":    {{Key: "x", Name: "X", Skills: []string{""}}},
			"duplicate key":  {{Key: "x", Name: "X", Skills: []string{"a"}}, {Key: "x", Name: "Y", Skills: []string{"b"}}},
			"duplicate name": {{Key: "x", Name: "X", Skills: []string{"a"}}, {Key: "y", Name: "X", Skills: []string{"b"}}},
		}
		for name, domains := range cases {
			_, err := New(domains)
			So(err, ShouldNotBeNil)
			So(name, ShouldNotBeEmpty)
		}
	})

	Convey("Given duplicate skills inside one domain", t, func() {
		tax, err := New([]Domain{{Key: "x", Name: "X", Skills: []string{"b", "a", "b"}}})
		So(err, ShouldBeNil)
		d, _ := tax.Resolve("x")
		So(d.Skills, ShouldResemble, []string{"b", "a"})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a YAML taxonomy file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "taxonomy.yaml")
		content := `domains:
  - key: law
    name: Law
    skills:
      - Contract Drafting
      - Litigation
`
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			tax, err := LoadFile(path)

			Convey("Then it replaces the built-in table", func() {
				So(err, ShouldBeNil)
				So(tax.Keys(), ShouldResemble, []string{"law"})
				d, _ := tax.Resolve("law")
				So(d.FirstSkill(), ShouldEqual, "Contract Drafting")
				So(tax.IsCategory("Technology"), ShouldBeFalse)
			})
		})

		Convey("When the file is missing", func() {
			_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}
