// Package models defines the core domain entities: lottery variants,
// historical draws, frequency statistics, and generated analysis results.
package models

// Variant describes one lottery game: its number pool, how many numbers
// the official draw selects, and how many numbers a suggested game carries.
type Variant struct {
	Slug         string
	Name         string
	TotalNumbers int
	DrawSize     int
	DefaultPick  int
	// BaseScore is the hand-tuned starting point for the presentation
	// score. It is not derived from any measured outcome.
	BaseScore float64
}

var (
	Lotofacil = Variant{Slug: "lotofacil", Name: "Lotofácil", TotalNumbers: 25, DrawSize: 15, DefaultPick: 15, BaseScore: 72}
	MegaSena  = Variant{Slug: "megasena", Name: "Mega-Sena", TotalNumbers: 60, DrawSize: 6, DefaultPick: 6, BaseScore: 68}
	Quina     = Variant{Slug: "quina", Name: "Quina", TotalNumbers: 80, DrawSize: 5, DefaultPick: 5, BaseScore: 70}
	Lotomania = Variant{Slug: "lotomania", Name: "Lotomania", TotalNumbers: 100, DrawSize: 20, DefaultPick: 50, BaseScore: 69}
)

var variants = []Variant{Lotofacil, MegaSena, Quina, Lotomania}

// Variants returns all supported lottery variants.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// VariantBySlug looks up a variant by its slug.
func VariantBySlug(slug string) (Variant, bool) {
	for _, v := range variants {
		if v.Slug == slug {
			return v, true
		}
	}
	return Variant{}, false
}
