package ai

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Response schemas keep malformed model output from leaking into the API.
// Validation happens on the raw JSON before it is unmarshalled.

const studyPlanSchema = `{
	"type": "object",
	"required": ["summary", "schedule", "sequence"],
	"properties": {
		"summary": {"type": "string"},
		"schedule": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["day", "focus", "minutes"],
				"properties": {
					"day": {"type": "string"},
					"focus": {"type": "string"},
					"minutes": {"type": "integer", "minimum": 0}
				}
			}
		},
		"sequence": {"type": "array", "items": {"type": "string"}}
	}
}`

const recommendationsSchema = `{
	"type": "object",
	"required": ["recommendations"],
	"properties": {
		"recommendations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title", "objective"],
				"properties": {
					"title": {"type": "string"},
					"objective": {"type": "string"},
					"estimated_minutes": {"type": "integer", "minimum": 0},
					"difficulty": {"type": "string"},
					"reason": {"type": "string"}
				}
			}
		}
	}
}`

const analysisSchema = `{
	"type": "object",
	"required": ["summary"],
	"properties": {
		"summary": {"type": "string"},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"improvements": {"type": "array", "items": {"type": "string"}},
		"motivation_tips": {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}}
	}
}`

const milestonesSchema = `{
	"type": "object",
	"required": ["milestones"],
	"properties": {
		"milestones": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title"],
				"properties": {
					"title": {"type": "string"},
					"description": {"type": "string"},
					"estimated_hours": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

func compileSchema(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(fmt.Sprintf("ai: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("ai: compile schema %s: %v", name, err))
	}
	return schema
}

var (
	studyPlanResponseSchema       = compileSchema("study_plan.json", studyPlanSchema)
	recommendationsResponseSchema = compileSchema("recommendations.json", recommendationsSchema)
	analysisResponseSchema        = compileSchema("analysis.json", analysisSchema)
	milestonesResponseSchema      = compileSchema("milestones.json", milestonesSchema)
)
