package skill

import (
	"errors"
	"testing"

	"github.com/okian/intervue/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidatorStrict(t *testing.T) {
	Convey("Given a strict validator over the default taxonomy", t, func() {
		v := NewValidator(taxonomy.Default(), Strict)

		Convey("When the skill belongs to the domain", func() {
			dec, err := v.Validate("System Design", "tech")

			Convey("Then it is returned unchanged", func() {
				So(err, ShouldBeNil)
				So(dec.Skill, ShouldEqual, "System Design")
				So(dec.Substituted, ShouldBeFalse)
				So(dec.Domain.Name, ShouldEqual, "Technology")
			})
		})

		Convey("When the skill is unknown", func() {
			dec, err := v.Validate("Quantum Telepathy", "finance")

			Convey("Then the first finance skill is substituted", func() {
				So(err, ShouldBeNil)
				So(dec.Skill, ShouldEqual, "Financial Analysis")
				So(dec.Requested, ShouldEqual, "Quantum Telepathy")
				So(dec.Substituted, ShouldBeTrue)
			})

			Convey("Then repeating the call gives the same substitute", func() {
				for i := 0; i < 5; i++ {
					again, _ := v.Validate("Quantum Telepathy", "finance")
					So(again.Skill, ShouldEqual, dec.Skill)
				}
			})
		})

		Convey("When the skill belongs to another domain", func() {
			dec, err := v.Validate("Recruitment", "tech")

			Convey("Then strict mode still substitutes", func() {
				So(err, ShouldBeNil)
				So(dec.Skill, ShouldEqual, "Programming Languages")
				So(dec.Substituted, ShouldBeTrue)
			})
		})

		Convey("When the domain is unknown", func() {
			_, err := v.Validate("Recruitment", "marketing")

			Convey("Then the observation is rejected", func() {
				So(errors.Is(err, taxonomy.ErrInvalidDomain), ShouldBeTrue)
			})
		})

		Convey("When matching is case sensitive", func() {
			dec, _ := v.Validate("system design", "tech")
			So(dec.Substituted, ShouldBeTrue)
		})
	})
}

func TestValidatorPermissive(t *testing.T) {
	Convey("Given a permissive validator", t, func() {
		v := NewValidator(taxonomy.Default(), Permissive)

		Convey("Then a skill from any domain is accepted", func() {
			dec, err := v.Validate("Recruitment", "tech")
			So(err, ShouldBeNil)
			So(dec.Skill, ShouldEqual, "Recruitment")
			So(dec.Substituted, ShouldBeFalse)
		})

		Convey("Then unknown skills still fall back", func() {
			dec, _ := v.Validate("Juggling", "hr")
			So(dec.Skill, ShouldEqual, "Recruitment")
			So(dec.Substituted, ShouldBeTrue)
		})
	})
}

func TestParseMode(t *testing.T) {
	Convey("Given mode strings", t, func() {
		m, err := ParseMode("")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, Strict)
		m, err = ParseMode(" Permissive ")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, Permissive)
		_, err = ParseMode("lenient")
		So(err, ShouldNotBeNil)
		So(NewValidator(taxonomy.Default(), "").Mode(), ShouldEqual, Strict)
	})
}
