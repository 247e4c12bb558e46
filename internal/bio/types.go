package bio

import (
	"sort"

	"golang.org/x/text/cases"
)

// EntityTypes lists the canonical entity types the clinical model emits.
var EntityTypes = []string{
	"Age",
	"Biological_structure",
	"Date",
	"Detailed_description",
	"Disease_disorder",
	"Dosage",
	"Duration",
	"Medication",
	"Sex",
	"Sign_symptom",
	"Therapeutic_procedure",
}

var displayLabels = map[string]string{
	"Age":                   "Age",
	"Biological_structure":  "Biological Structure",
	"Date":                  "Date",
	"Detailed_description":  "Detailed Description",
	"Disease_disorder":      "Disease/Disorder",
	"Dosage":                "Dosage",
	"Duration":              "Duration",
	"Medication":            "Medication",
	"Sex":                   "Sex",
	"Sign_symptom":          "Sign/Symptom",
	"Therapeutic_procedure": "Therapeutic Procedure",
}

// canonicalTypes maps case-folded type names to their canonical spelling.
var canonicalTypes = func() map[string]string {
	m := make(map[string]string, len(EntityTypes))
	for _, t := range EntityTypes {
		m[foldType(t)] = t
	}
	return m
}()

// Casers carry transform state, so each call gets its own.
func foldType(s string) string {
	return cases.Fold().String(s)
}

// Canonical returns the canonical spelling of an entity type. Matching is
// case-insensitive; unknown types are returned unchanged.
func Canonical(raw string) string {
	if c, ok := canonicalTypes[foldType(raw)]; ok {
		return c
	}
	return raw
}

// DisplayLabel returns a human-readable label for an entity type,
// falling back to the raw type.
func DisplayLabel(typ string) string {
	if l, ok := displayLabels[Canonical(typ)]; ok {
		return l
	}
	return typ
}

// ModelTags is the tag vocabulary of the token classifier, in class-id order.
// Both casings of therapeutic_procedure are present because the training
// annotations used both.
var ModelTags = []string{
	"B-Age", "B-Biological_structure", "B-Date", "B-Detailed_description",
	"B-Disease_disorder", "B-Dosage", "B-Duration", "B-Medication",
	"B-Sex", "B-Sign_symptom", "B-Therapeutic_procedure", "B-therapeutic_procedure",
	"I-Age", "I-Biological_structure", "I-Date", "I-Detailed_description",
	"I-Disease_disorder", "I-Dosage", "I-Duration", "I-Medication",
	"I-Sex", "I-Sign_symptom", "I-Therapeutic_procedure", "I-therapeutic_procedure",
	"O",
}

// Labels returns the sorted, distinct raw entity types in ModelTags.
func Labels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tag := range ModelTags {
		t := ParseTag(tag)
		if t.Prefix != PrefixBegin || seen[t.Type] {
			continue
		}
		seen[t.Type] = true
		out = append(out, t.Type)
	}
	sort.Strings(out)
	return out
}
