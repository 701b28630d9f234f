package models

import "sort"

// Modifier is a Kotlin declaration modifier keyword
type Modifier string

const (
	ModPublic     Modifier = "public"
	ModProtected  Modifier = "protected"
	ModInternal   Modifier = "internal"
	ModPrivate    Modifier = "private"
	ModExpect     Modifier = "expect"
	ModActual     Modifier = "actual"
	ModFinal      Modifier = "final"
	ModOpen       Modifier = "open"
	ModAbstract   Modifier = "abstract"
	ModSealed     Modifier = "sealed"
	ModConst      Modifier = "const"
	ModExternal   Modifier = "external"
	ModOverride   Modifier = "override"
	ModLateinit   Modifier = "lateinit"
	ModTailrec    Modifier = "tailrec"
	ModSuspend    Modifier = "suspend"
	ModInner      Modifier = "inner"
	ModEnum       Modifier = "enum"
	ModAnnotation Modifier = "annotation"
	ModFun        Modifier = "fun"
	ModCompanion  Modifier = "companion"
	ModInline     Modifier = "inline"
	ModValue      Modifier = "value"
	ModInfix      Modifier = "infix"
	ModOperator   Modifier = "operator"
	ModData       Modifier = "data"
)

// modifierGroups lists modifiers in the order recommended by the Kotlin
// coding conventions; modifiers in one group share a rank.
var modifierGroups = [][]Modifier{
	{ModPublic, ModProtected, ModPrivate, ModInternal},
	{ModExpect, ModActual},
	{ModFinal, ModOpen, ModAbstract, ModSealed, ModConst},
	{ModExternal},
	{ModOverride},
	{ModLateinit},
	{ModTailrec},
	{ModSuspend},
	{ModInner},
	{ModEnum, ModAnnotation, ModFun},
	{ModCompanion},
	{ModInline, ModValue},
	{ModInfix},
	{ModOperator},
	{ModData},
}

var modifierOrder = func() map[Modifier]int {
	order := make(map[Modifier]int)
	for i, group := range modifierGroups {
		for _, m := range group {
			order[m] = i
		}
	}
	return order
}()

// IsVisibility reports whether the modifier is a visibility modifier
func (m Modifier) IsVisibility() bool {
	switch m {
	case ModPublic, ModProtected, ModInternal, ModPrivate:
		return true
	}
	return false
}

// Modifiers is an ordered set of modifiers. Values are never mutated in
// place; With and Without return new sets.
type Modifiers []Modifier

// Has reports whether m is in the set
func (ms Modifiers) Has(m Modifier) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

// With returns a copy including every given modifier
func (ms Modifiers) With(add ...Modifier) Modifiers {
	out := append(Modifiers(nil), ms...)
	for _, m := range add {
		if !out.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// Without returns a copy excluding every given modifier
func (ms Modifiers) Without(remove ...Modifier) Modifiers {
	out := make(Modifiers, 0, len(ms))
	for _, m := range ms {
		if !Modifiers(remove).Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// Visibility returns the explicit visibility modifier, if any
func (ms Modifiers) Visibility() (Modifier, bool) {
	for _, m := range ms {
		if m.IsVisibility() {
			return m, true
		}
	}
	return "", false
}

// Sorted returns a copy in conventional Kotlin order
func (ms Modifiers) Sorted() Modifiers {
	out := append(Modifiers(nil), ms...)
	sort.SliceStable(out, func(i, j int) bool {
		return modifierOrder[out[i]] < modifierOrder[out[j]]
	})
	return out
}

// Strings returns the sorted keywords
func (ms Modifiers) Strings() []string {
	sorted := ms.Sorted()
	out := make([]string, len(sorted))
	for i, m := range sorted {
		out[i] = string(m)
	}
	return out
}
